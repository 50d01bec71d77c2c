package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// QuoteRecord is the persisted shape handed to the payment stage. The
// quote itself travels as a JSON string in QuoteData; the payment
// collaborators re-parse it, so the string round-trip is part of the
// contract and must carry the authoritative discounted total.
type QuoteRecord struct {
	ID             string  `json:"id"`
	QuoteData      string  `json:"quoteData"`
	PromoCode      string  `json:"promoCode,omitempty"`
	DiscountAmount float64 `json:"discountAmount,omitempty"`
}

// EncodeRecord serializes a quote into its persisted record form.
func EncodeRecord(q Quote) (QuoteRecord, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return QuoteRecord{}, fmt.Errorf("encode quote %s: %w", q.ID, err)
	}
	return QuoteRecord{
		ID:             q.ID,
		QuoteData:      string(data),
		PromoCode:      q.PromoCode,
		DiscountAmount: q.DiscountAmount,
	}, nil
}

// CheckoutPayload is what the payment stage reads: the re-serialized
// quote data with the payable total injected, plus the chosen method.
type CheckoutPayload struct {
	QuoteID       string  `json:"quoteId"`
	QuoteData     string  `json:"quoteData"`
	Total         float64 `json:"total"`
	PaymentMethod string  `json:"paymentMethod"`
}

type CheckoutService interface {
	// Checkout gates payment on the quote's validity window and, when
	// allowed, produces the payload the payment stage consumes. An
	// expired quote is rejected here, before any payment-provider
	// call, and marked expired so it cannot be retried.
	Checkout(ctx context.Context, quoteID, paymentMethod string) (CheckoutPayload, error)
}

type checkoutService struct {
	quotes   QuoteRepo
	validity time.Duration
	clock    func() time.Time
}

func NewCheckoutService(quotes QuoteRepo, validity time.Duration) CheckoutService {
	return &checkoutService{
		quotes:   quotes,
		validity: validity,
		clock:    time.Now,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, quoteID, paymentMethod string) (CheckoutPayload, error) {
	if quoteID == "" {
		return CheckoutPayload{}, fmt.Errorf("%w: missing quote ID", ErrValidation)
	}

	q, err := s.quotes.Get(ctx, quoteID)
	if err != nil {
		return CheckoutPayload{}, err
	}
	if q.Status == QuoteStatusExpired {
		return CheckoutPayload{}, ErrQuoteExpired
	}
	if q.Status == QuoteStatusCheckedOut {
		return CheckoutPayload{}, fmt.Errorf("%w: quote already checked out", ErrInvalidState)
	}

	now := s.clock()
	monitor := NewMonitor(q.CreatedAt, s.validity, 0)
	if !monitor.CheckoutAllowed(now) {
		q.Status = QuoteStatusExpired
		if uerr := s.quotes.Update(ctx, q); uerr != nil {
			return CheckoutPayload{}, uerr
		}
		return CheckoutPayload{}, ErrQuoteExpired
	}

	record, err := EncodeRecord(q)
	if err != nil {
		return CheckoutPayload{}, err
	}

	// Round-trip: re-parse the persisted quote data, inject the
	// authoritative discounted total, re-serialize. The payment stage
	// reads its figures from this string, not from the quote row.
	var decoded map[string]any
	if err := json.Unmarshal([]byte(record.QuoteData), &decoded); err != nil {
		return CheckoutPayload{}, fmt.Errorf("decode quote data %s: %w", q.ID, err)
	}
	decoded["total"] = q.PayableTotal()
	reencoded, err := json.Marshal(decoded)
	if err != nil {
		return CheckoutPayload{}, fmt.Errorf("re-encode quote data %s: %w", q.ID, err)
	}

	q.Status = QuoteStatusCheckedOut
	if err := s.quotes.Update(ctx, q); err != nil {
		return CheckoutPayload{}, err
	}

	return CheckoutPayload{
		QuoteID:       q.ID,
		QuoteData:     string(reencoded),
		Total:         q.PayableTotal(),
		PaymentMethod: paymentMethod,
	}, nil
}
