package core

import (
	"context"
	"sync"
	"time"
)

// In-memory repos for service tests.

type memQuoteRepo struct {
	mu     sync.Mutex
	quotes map[string]Quote
}

func newMemQuoteRepo() *memQuoteRepo {
	return &memQuoteRepo{quotes: make(map[string]Quote)}
}

func (r *memQuoteRepo) Create(_ context.Context, q Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quotes[q.ID]; ok {
		return ErrConflict
	}
	r.quotes[q.ID] = q
	return nil
}

func (r *memQuoteRepo) Get(_ context.Context, id string) (Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok {
		return Quote{}, ErrNotFound
	}
	return q, nil
}

func (r *memQuoteRepo) Update(_ context.Context, q Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quotes[q.ID]; !ok {
		return ErrNotFound
	}
	r.quotes[q.ID] = q
	return nil
}

func (r *memQuoteRepo) ListOlderThan(_ context.Context, cutoff time.Time) ([]Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Quote
	for _, q := range r.quotes {
		if q.Status == QuoteStatusFresh && q.CreatedAt.Before(cutoff) {
			out = append(out, q)
		}
	}
	return out, nil
}

type memFormulaRepo struct {
	mu      sync.Mutex
	formula *QuoteFormula
}

func (r *memFormulaRepo) Get(_ context.Context) (QuoteFormula, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.formula == nil {
		return QuoteFormula{}, ErrNotFound
	}
	return *r.formula, nil
}

type memCouponRepo struct {
	mu      sync.Mutex
	coupons map[string]Coupon
}

func newMemCouponRepo(coupons ...Coupon) *memCouponRepo {
	r := &memCouponRepo{coupons: make(map[string]Coupon)}
	for _, c := range coupons {
		r.coupons[NormalizeCode(c.Code)] = c
	}
	return r
}

func (r *memCouponRepo) GetByCode(_ context.Context, code string) (Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[NormalizeCode(code)]
	if !ok {
		return Coupon{}, ErrNotFound
	}
	return c, nil
}

func (r *memCouponRepo) Create(_ context.Context, c Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := NormalizeCode(c.Code)
	if _, ok := r.coupons[key]; ok {
		return ErrConflict
	}
	r.coupons[key] = c
	return nil
}
