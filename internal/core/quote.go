package core

import (
	"context"
	"time"
)

type QuoteStatus string

const (
	QuoteStatusFresh      QuoteStatus = "fresh"
	QuoteStatusExpired    QuoteStatus = "expired"
	QuoteStatusCheckedOut QuoteStatus = "checked_out"
)

// Quote is a priced, time-window-bound cover offer. It is an immutable
// snapshot: editing the underlying request produces a brand-new quote
// with a bumped revision, never an in-place mutation.
type Quote struct {
	ID       string      `json:"id"`
	Status   QuoteStatus `json:"status"`
	Revision int         `json:"revision"`

	Total              float64   `json:"total"`
	BasePrice          float64   `json:"base_price"`
	DurationMultiplier float64   `json:"duration_multiplier"`
	Breakdown          Breakdown `json:"breakdown"`

	// Cover window. StartLabel/ExpiryLabel are the dd/mm/yy hh:mm
	// renderings persisted alongside the instants.
	StartTime   time.Time `json:"start_time"`
	ExpiryTime  time.Time `json:"expiry_time"`
	StartLabel  string    `json:"start_label"`
	ExpiryLabel string    `json:"expiry_label"`

	// CreatedAt drives the shopping-cart validity window. It is the
	// quoting instant, not the cover start.
	CreatedAt time.Time `json:"created_at"`

	Input QuoteInput `json:"input"`

	// Applied promo, cleared on every recompute.
	PromoCode      string  `json:"promo_code,omitempty"`
	DiscountAmount float64 `json:"discount_amount,omitempty"`
}

// PayableTotal is the final amount after any applied promo discount,
// floored at zero.
func (q Quote) PayableTotal() float64 {
	total := round2(q.Total - q.DiscountAmount)
	if total < 0 {
		return 0
	}
	return total
}

type QuoteRepo interface {
	Create(ctx context.Context, q Quote) error
	Get(ctx context.Context, id string) (Quote, error)
	Update(ctx context.Context, q Quote) error
	// ListOlderThan returns non-terminal quotes created before cutoff.
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]Quote, error)
}

// FormulaRepo serves the read-only quote formula configuration.
type FormulaRepo interface {
	Get(ctx context.Context) (QuoteFormula, error)
}
