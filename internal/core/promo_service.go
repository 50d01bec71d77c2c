package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// PromoService is the coupon authority: it validates codes against the
// server-held coupon set and attaches the resulting discount to a
// quote. One validation per quote may be in flight at a time; a second
// attempt while one is outstanding is rejected rather than queued.
type PromoService interface {
	// Validate resolves a code against a total and an eligibility
	// context, without touching any quote. Failures come back as
	// ErrInvalidPromo regardless of cause, so the caller can show a
	// single "invalid code" message.
	Validate(ctx context.Context, code string, total float64, elig EligibilityContext) (Coupon, AppliedDiscount, error)

	// Apply validates and attaches the discount to the quote. The
	// revision pins the total the discount was computed against; a
	// mismatch means the quote was recomputed mid-flight and the
	// stale result is dropped.
	Apply(ctx context.Context, quoteID string, revision int, code string, elig EligibilityContext) (Quote, error)

	// Remove clears any applied discount from the quote.
	Remove(ctx context.Context, quoteID string) (Quote, error)
}

type promoService struct {
	coupons CouponRepo
	quotes  QuoteRepo
	clock   func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewPromoService(coupons CouponRepo, quotes QuoteRepo) PromoService {
	return &promoService{
		coupons:  coupons,
		quotes:   quotes,
		clock:    time.Now,
		inFlight: make(map[string]struct{}),
	}
}

func (s *promoService) Validate(ctx context.Context, code string, total float64, elig EligibilityContext) (Coupon, AppliedDiscount, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return Coupon{}, AppliedDiscount{}, fmt.Errorf("%w: empty code", ErrInvalidPromo)
	}

	c, err := s.coupons.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Coupon{}, AppliedDiscount{}, ErrInvalidPromo
		}
		return Coupon{}, AppliedDiscount{}, err
	}
	if !c.Active {
		return Coupon{}, AppliedDiscount{}, ErrInvalidPromo
	}
	if !c.Eligible(elig) {
		return Coupon{}, AppliedDiscount{}, ErrInvalidPromo
	}

	amount, err := c.ComputeDiscount(total)
	if err != nil {
		return Coupon{}, AppliedDiscount{}, err
	}
	return c, AppliedDiscount{Code: c.Code, Amount: amount}, nil
}

func (s *promoService) Apply(ctx context.Context, quoteID string, revision int, code string, elig EligibilityContext) (Quote, error) {
	if err := s.acquire(quoteID); err != nil {
		return Quote{}, err
	}
	defer s.release(quoteID)

	q, err := s.quotes.Get(ctx, quoteID)
	if err != nil {
		return Quote{}, err
	}
	if q.Status == QuoteStatusExpired {
		return Quote{}, ErrQuoteExpired
	}
	if q.Revision != revision {
		// The quote was recomputed since the caller saw it; the
		// discount would be against the wrong total.
		return Quote{}, ErrStaleTotal
	}

	_, applied, err := s.Validate(ctx, code, q.Total, elig)
	if err != nil {
		// A failed validation also clears any previously applied
		// discount; a stale one must never survive.
		if q.PromoCode != "" {
			q.PromoCode = ""
			q.DiscountAmount = 0
			if uerr := s.quotes.Update(ctx, q); uerr != nil {
				return Quote{}, uerr
			}
		}
		return Quote{}, err
	}

	q.PromoCode = applied.Code
	q.DiscountAmount = applied.Amount
	if err := s.quotes.Update(ctx, q); err != nil {
		return Quote{}, err
	}
	return q, nil
}

func (s *promoService) Remove(ctx context.Context, quoteID string) (Quote, error) {
	q, err := s.quotes.Get(ctx, quoteID)
	if err != nil {
		return Quote{}, err
	}
	q.PromoCode = ""
	q.DiscountAmount = 0
	if err := s.quotes.Update(ctx, q); err != nil {
		return Quote{}, err
	}
	return q, nil
}

func (s *promoService) acquire(quoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[quoteID]; busy {
		return ErrPromoInFlight
	}
	s.inFlight[quoteID] = struct{}{}
	return nil
}

func (s *promoService) release(quoteID string) {
	s.mu.Lock()
	delete(s.inFlight, quoteID)
	s.mu.Unlock()
}
