package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func checkoutFixtures(now time.Time) (*memQuoteRepo, *checkoutService) {
	quotes := newMemQuoteRepo()
	svc := NewCheckoutService(quotes, 15*time.Minute).(*checkoutService)
	svc.clock = func() time.Time { return now }
	return quotes, svc
}

func TestCheckoutInjectsPayableTotal(t *testing.T) {
	quotes, svc := checkoutFixtures(ratingNow.Add(5 * time.Minute))
	ctx := context.Background()
	quotes.Create(ctx, Quote{
		ID: "q1", Status: QuoteStatusFresh, Revision: 1, Total: 50,
		PromoCode: "WELCOME10", DiscountAmount: 5, CreatedAt: ratingNow,
	})

	payload, err := svc.Checkout(ctx, "q1", "card")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if payload.QuoteID != "q1" || payload.PaymentMethod != "card" {
		t.Errorf("payload header wrong: %+v", payload)
	}
	if payload.Total != 45 {
		t.Errorf("total = %v, want discounted 45", payload.Total)
	}

	// The payment stage reads its figures from the quote-data string,
	// so the discounted total must round-trip through it.
	var decoded map[string]any
	if err := json.Unmarshal([]byte(payload.QuoteData), &decoded); err != nil {
		t.Fatalf("quote data is not JSON: %v", err)
	}
	if got, _ := decoded["total"].(float64); got != 45 {
		t.Errorf("quoteData total = %v, want 45", got)
	}

	stored, _ := quotes.Get(ctx, "q1")
	if stored.Status != QuoteStatusCheckedOut {
		t.Errorf("status = %v, want checked_out", stored.Status)
	}
}

func TestCheckoutExpiredBeforePayment(t *testing.T) {
	quotes, svc := checkoutFixtures(ratingNow.Add(16 * time.Minute))
	ctx := context.Background()
	quotes.Create(ctx, Quote{ID: "q1", Status: QuoteStatusFresh, Revision: 1, Total: 50, CreatedAt: ratingNow})

	_, err := svc.Checkout(ctx, "q1", "card")
	if !errors.Is(err, ErrQuoteExpired) {
		t.Fatalf("got %v, want ErrQuoteExpired", err)
	}

	// The lapse is recorded so a retry fails the same way.
	stored, _ := quotes.Get(ctx, "q1")
	if stored.Status != QuoteStatusExpired {
		t.Errorf("status = %v, want expired", stored.Status)
	}
	if _, err := svc.Checkout(ctx, "q1", "card"); !errors.Is(err, ErrQuoteExpired) {
		t.Fatalf("retry: got %v, want ErrQuoteExpired", err)
	}
}

func TestCheckoutAlreadyCheckedOut(t *testing.T) {
	quotes, svc := checkoutFixtures(ratingNow.Add(5 * time.Minute))
	ctx := context.Background()
	quotes.Create(ctx, Quote{ID: "q1", Status: QuoteStatusCheckedOut, Revision: 1, Total: 50, CreatedAt: ratingNow})

	_, err := svc.Checkout(ctx, "q1", "card")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
}

func TestCheckoutMissingQuote(t *testing.T) {
	_, svc := checkoutFixtures(ratingNow)

	if _, err := svc.Checkout(context.Background(), "nope", "card"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if _, err := svc.Checkout(context.Background(), "", "card"); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty ID: got %v, want ErrValidation", err)
	}
}

func TestEncodeRecord(t *testing.T) {
	q := Quote{
		ID: "q1", Status: QuoteStatusFresh, Revision: 1, Total: 50,
		PromoCode: "FIVER", DiscountAmount: 5, CreatedAt: ratingNow,
	}
	record, err := EncodeRecord(q)
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}
	if record.ID != "q1" || record.PromoCode != "FIVER" || record.DiscountAmount != 5 {
		t.Errorf("record = %+v", record)
	}

	var decoded Quote
	if err := json.Unmarshal([]byte(record.QuoteData), &decoded); err != nil {
		t.Fatalf("quote data is not JSON: %v", err)
	}
	if decoded.ID != q.ID || decoded.Total != q.Total {
		t.Errorf("round-trip lost data: %+v", decoded)
	}
}
