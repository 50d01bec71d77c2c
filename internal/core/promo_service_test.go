package core

import (
	"context"
	"errors"
	"testing"
)

func promoFixtures() (*memQuoteRepo, *memCouponRepo, PromoService) {
	quotes := newMemQuoteRepo()
	coupons := newMemCouponRepo(
		Coupon{Code: "WELCOME10", Type: DiscountPercentage, Value: 10, Active: true},
		Coupon{Code: "HALFPRICE", Type: DiscountPercentage, Value: 50, MaxDiscount: 5, Active: true},
		Coupon{Code: "FIVER", Type: DiscountFixed, Value: 5, Active: true},
		Coupon{Code: "DORMANT", Type: DiscountPercentage, Value: 20, Active: false},
		Coupon{Code: "SMITHONLY", Type: DiscountFixed, Value: 7.50, Active: true, Eligibility: Eligibility{LastName: "Smith"}},
	)
	return quotes, coupons, NewPromoService(coupons, quotes)
}

func TestValidateNormalizesCase(t *testing.T) {
	_, _, svc := promoFixtures()

	c, applied, err := svc.Validate(context.Background(), "welcome10", 50, EligibilityContext{})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Code != "WELCOME10" {
		t.Errorf("code = %q, want WELCOME10", c.Code)
	}
	if applied.Amount != 5.00 {
		t.Errorf("amount = %v, want 5.00", applied.Amount)
	}
}

func TestValidateFailuresCollapseToInvalidPromo(t *testing.T) {
	_, _, svc := promoFixtures()
	ctx := context.Background()

	for _, code := range []string{"", "NOSUCH", "DORMANT", "SMITHONLY"} {
		_, _, err := svc.Validate(ctx, code, 50, EligibilityContext{LastName: "Jones"})
		if !errors.Is(err, ErrInvalidPromo) {
			t.Errorf("Validate(%q): got %v, want ErrInvalidPromo", code, err)
		}
	}
}

func TestValidateClampsToMaxDiscount(t *testing.T) {
	_, _, svc := promoFixtures()

	_, applied, err := svc.Validate(context.Background(), "HALFPRICE", 20, EligibilityContext{})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if applied.Amount != 5 {
		t.Errorf("amount = %v, want cap of 5", applied.Amount)
	}
}

func TestApplyAttachesDiscount(t *testing.T) {
	quotes, _, svc := promoFixtures()
	ctx := context.Background()
	quotes.Create(ctx, Quote{ID: "q1", Status: QuoteStatusFresh, Revision: 1, Total: 50, CreatedAt: ratingNow})

	q, err := svc.Apply(ctx, "q1", 1, "WELCOME10", EligibilityContext{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if q.PromoCode != "WELCOME10" || q.DiscountAmount != 5.00 {
		t.Errorf("got %q/%v, want WELCOME10/5.00", q.PromoCode, q.DiscountAmount)
	}
	if q.PayableTotal() != 45.00 {
		t.Errorf("payable = %v, want 45.00", q.PayableTotal())
	}

	stored, _ := quotes.Get(ctx, "q1")
	if stored.PromoCode != "WELCOME10" {
		t.Errorf("discount not persisted: %+v", stored)
	}
}

func TestApplyRevisionMismatch(t *testing.T) {
	quotes, _, svc := promoFixtures()
	ctx := context.Background()
	quotes.Create(ctx, Quote{ID: "q1", Status: QuoteStatusFresh, Revision: 3, Total: 50, CreatedAt: ratingNow})

	_, err := svc.Apply(ctx, "q1", 2, "WELCOME10", EligibilityContext{})
	if !errors.Is(err, ErrStaleTotal) {
		t.Fatalf("got %v, want ErrStaleTotal", err)
	}

	stored, _ := quotes.Get(ctx, "q1")
	if stored.PromoCode != "" {
		t.Errorf("stale apply must not attach a discount: %+v", stored)
	}
}

func TestApplyExpiredQuote(t *testing.T) {
	quotes, _, svc := promoFixtures()
	ctx := context.Background()
	quotes.Create(ctx, Quote{ID: "q1", Status: QuoteStatusExpired, Revision: 1, Total: 50, CreatedAt: ratingNow})

	_, err := svc.Apply(ctx, "q1", 1, "WELCOME10", EligibilityContext{})
	if !errors.Is(err, ErrQuoteExpired) {
		t.Fatalf("got %v, want ErrQuoteExpired", err)
	}
}

func TestApplyFailureClearsPriorDiscount(t *testing.T) {
	quotes, _, svc := promoFixtures()
	ctx := context.Background()
	quotes.Create(ctx, Quote{
		ID: "q1", Status: QuoteStatusFresh, Revision: 1, Total: 50,
		PromoCode: "WELCOME10", DiscountAmount: 5, CreatedAt: ratingNow,
	})

	_, err := svc.Apply(ctx, "q1", 1, "NOSUCH", EligibilityContext{})
	if !errors.Is(err, ErrInvalidPromo) {
		t.Fatalf("got %v, want ErrInvalidPromo", err)
	}

	stored, _ := quotes.Get(ctx, "q1")
	if stored.PromoCode != "" || stored.DiscountAmount != 0 {
		t.Errorf("prior discount must be cleared on failed validation: %+v", stored)
	}
}

func TestApplyInFlightConflict(t *testing.T) {
	quotes, _, svc := promoFixtures()
	ctx := context.Background()
	quotes.Create(ctx, Quote{ID: "q1", Status: QuoteStatusFresh, Revision: 1, Total: 50, CreatedAt: ratingNow})

	ps := svc.(*promoService)
	if err := ps.acquire("q1"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer ps.release("q1")

	_, err := svc.Apply(ctx, "q1", 1, "WELCOME10", EligibilityContext{})
	if !errors.Is(err, ErrPromoInFlight) {
		t.Fatalf("got %v, want ErrPromoInFlight", err)
	}

	// A different quote is unaffected.
	quotes.Create(ctx, Quote{ID: "q2", Status: QuoteStatusFresh, Revision: 1, Total: 20, CreatedAt: ratingNow})
	if _, err := svc.Apply(ctx, "q2", 1, "FIVER", EligibilityContext{}); err != nil {
		t.Fatalf("Apply on free quote: %v", err)
	}
}

func TestApplyReleasesInFlightSlot(t *testing.T) {
	quotes, _, svc := promoFixtures()
	ctx := context.Background()
	quotes.Create(ctx, Quote{ID: "q1", Status: QuoteStatusFresh, Revision: 1, Total: 50, CreatedAt: ratingNow})

	if _, err := svc.Apply(ctx, "q1", 1, "WELCOME10", EligibilityContext{}); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	// The slot is free again once the attempt finishes.
	if _, err := svc.Apply(ctx, "q1", 1, "FIVER", EligibilityContext{}); err != nil {
		t.Fatalf("second Apply: %v", err)
	}
}

func TestRemoveClearsDiscount(t *testing.T) {
	quotes, _, svc := promoFixtures()
	ctx := context.Background()
	quotes.Create(ctx, Quote{
		ID: "q1", Status: QuoteStatusFresh, Revision: 1, Total: 50,
		PromoCode: "WELCOME10", DiscountAmount: 5, CreatedAt: ratingNow,
	})

	q, err := svc.Remove(ctx, "q1")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if q.PromoCode != "" || q.DiscountAmount != 0 {
		t.Errorf("discount survived removal: %+v", q)
	}
	if q.PayableTotal() != 50 {
		t.Errorf("payable = %v, want 50", q.PayableTotal())
	}
}
