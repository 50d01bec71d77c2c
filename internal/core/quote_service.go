package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/draycott/shortcover/internal/platform/ids"
)

// QuoteService prices requests and owns the quote snapshots.
type QuoteService interface {
	// Price rates a submission and persists the resulting quote.
	Price(ctx context.Context, in QuoteInput) (Quote, error)

	// Reprice supersedes an existing quote with a freshly rated one.
	// Any applied promo discount is discarded; the new total needs a
	// new validation.
	Reprice(ctx context.Context, id string, in QuoteInput) (Quote, error)

	Get(ctx context.Context, id string) (Quote, error)

	// Formula returns the loaded formula for the quote-settings
	// endpoint, or ErrConfigMissing before it is available.
	Formula(ctx context.Context) (QuoteFormula, error)
}

type quoteService struct {
	quotes  QuoteRepo
	formula FormulaRepo
	clock   func() time.Time

	// The formula is read-only once loaded, so it is fetched at most
	// once per process and served from here after that.
	mu     sync.RWMutex
	cached *QuoteFormula
}

func NewQuoteService(quotes QuoteRepo, formula FormulaRepo) QuoteService {
	return &quoteService{
		quotes:  quotes,
		formula: formula,
		clock:   time.Now,
	}
}

func (s *quoteService) loadFormula(ctx context.Context) (*QuoteFormula, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	f, err := s.formula.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrConfigMissing
		}
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = &f
	s.mu.Unlock()
	return &f, nil
}

func (s *quoteService) Formula(ctx context.Context) (QuoteFormula, error) {
	f, err := s.loadFormula(ctx)
	if err != nil {
		return QuoteFormula{}, err
	}
	return *f, nil
}

func (s *quoteService) Price(ctx context.Context, in QuoteInput) (Quote, error) {
	q, err := s.build(ctx, in, 1)
	if err != nil {
		return Quote{}, err
	}
	if err := s.quotes.Create(ctx, q); err != nil {
		return Quote{}, err
	}
	return q, nil
}

func (s *quoteService) Reprice(ctx context.Context, id string, in QuoteInput) (Quote, error) {
	old, err := s.quotes.Get(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	if old.Status == QuoteStatusExpired {
		return Quote{}, ErrQuoteExpired
	}
	if old.Status == QuoteStatusCheckedOut {
		return Quote{}, fmt.Errorf("%w: quote already checked out", ErrInvalidState)
	}

	q, err := s.build(ctx, in, old.Revision+1)
	if err != nil {
		return Quote{}, err
	}
	q.ID = old.ID
	// The superseding quote carries no promo; the discount was a
	// function of the old total.
	if err := s.quotes.Update(ctx, q); err != nil {
		return Quote{}, err
	}
	return q, nil
}

func (s *quoteService) build(ctx context.Context, in QuoteInput, revision int) (Quote, error) {
	f, err := s.loadFormula(ctx)
	if err != nil {
		return Quote{}, err
	}

	now := s.clock()
	breakdown, err := Rate(f, in, now)
	if err != nil {
		return Quote{}, err
	}
	window, err := ComputeWindow(now, in.Start, in.Duration)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		ID:                 ids.New(),
		Status:             QuoteStatusFresh,
		Revision:           revision,
		Total:              breakdown.Total,
		BasePrice:          breakdown.BasePrice,
		DurationMultiplier: breakdown.DurationMultiplier,
		Breakdown:          breakdown,
		StartTime:          window.Start,
		ExpiryTime:         window.Expiry,
		StartLabel:         window.StartLabel(),
		ExpiryLabel:        window.ExpiryLabel(),
		CreatedAt:          now,
		Input:              in,
	}, nil
}

func (s *quoteService) Get(ctx context.Context, id string) (Quote, error) {
	if id == "" {
		return Quote{}, fmt.Errorf("%w: missing quote ID", ErrValidation)
	}
	return s.quotes.Get(ctx, id)
}
