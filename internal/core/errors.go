package core

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state transition")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConfigMissing means the quote formula has not been loaded yet.
	// Callers must treat this as "not ready", never as a zero-cost quote.
	ErrConfigMissing = errors.New("quote formula not loaded")

	// ErrInvalidPromo covers unknown, expired and ineligible promo codes.
	ErrInvalidPromo = errors.New("invalid or expired promo code")

	// ErrPromoInFlight is returned when a promo validation is attempted
	// while another one for the same quote is still outstanding.
	ErrPromoInFlight = errors.New("promo validation already in progress")

	// ErrStaleTotal means a discount was computed against a quote total
	// that has since changed; the coupon must be re-validated.
	ErrStaleTotal = errors.New("discount computed against a stale total")

	// ErrQuoteExpired means the shopping-cart validity window has passed.
	ErrQuoteExpired = errors.New("quote expired")
)
