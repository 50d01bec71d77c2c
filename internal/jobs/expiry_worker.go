package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/draycott/shortcover/internal/core"
)

// ExpiryWorker marks quotes whose validity window has lapsed as
// expired. Checkout re-checks the window synchronously; the sweep
// keeps the store honest for everything the customer abandoned.
type ExpiryWorker struct {
	BaseWorker
	quotes   core.QuoteRepo
	validity time.Duration
	clock    func() time.Time
}

// NewExpiryWorker creates a new expiry sweep worker.
func NewExpiryWorker(
	quotes core.QuoteRepo,
	validity time.Duration,
	interval time.Duration,
	log *slog.Logger,
) *ExpiryWorker {
	return &ExpiryWorker{
		BaseWorker: NewBaseWorker("quote-expiry", interval, log),
		quotes:     quotes,
		validity:   validity,
		clock:      time.Now,
	}
}

// Start begins the worker polling loop.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.Poll(ctx, w.sweep)
}

// Name returns the worker name.
func (w *ExpiryWorker) Name() string {
	return w.name
}

// sweep finds fresh quotes past their validity window and expires them.
func (w *ExpiryWorker) sweep(ctx context.Context) error {
	cutoff := w.clock().Add(-w.validity)
	stale, err := w.quotes.ListOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	if len(stale) == 0 {
		return nil
	}

	w.log.Info("found lapsed quotes", "count", len(stale))

	for _, q := range stale {
		q.Status = core.QuoteStatusExpired
		// An expired quote also loses its discount.
		q.PromoCode = ""
		q.DiscountAmount = 0
		if err := w.quotes.Update(ctx, q); err != nil {
			w.log.Error("failed to expire quote", "quote_id", q.ID, "err", err)
			continue
		}
		w.log.Info("quote expired", "quote_id", q.ID, "created_at", q.CreatedAt)
	}

	return nil
}
