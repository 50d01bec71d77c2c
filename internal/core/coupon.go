package core

import (
	"context"
	"fmt"
	"strings"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Eligibility is the optional per-coupon constraint set. Empty fields
// match anything.
type Eligibility struct {
	LastName     string `json:"last_name,omitempty"`
	DateOfBirth  string `json:"date_of_birth,omitempty"` // ISO yyyy-mm-dd
	Registration string `json:"registration,omitempty"`
}

// EligibilityContext is the customer-side data a coupon's constraints
// are matched against.
type EligibilityContext struct {
	LastName     string `json:"lastName"`
	DateOfBirth  string `json:"dateOfBirth"` // ISO yyyy-mm-dd
	Registration string `json:"registration"`
}

// Coupon is a promotional code granting a percentage or fixed discount,
// optionally capped. Codes are case-insensitive; repos store and look
// them up upper-cased.
type Coupon struct {
	Code        string       `json:"promoCode"`
	Type        DiscountType `json:"type"`
	Value       float64      `json:"value"`
	MaxDiscount float64      `json:"max_discount,omitempty"` // 0 = uncapped
	Eligibility Eligibility  `json:"eligibility,omitempty"`
	Active      bool         `json:"active"`
}

// AppliedDiscount is a coupon resolved against a specific quote total.
type AppliedDiscount struct {
	Code   string  `json:"promoCode"`
	Amount float64 `json:"amount"`
}

// NormalizeCode upper-cases and trims a user-supplied promo code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Eligible reports whether ctx satisfies the coupon's constraints.
// Name matching is case-insensitive; dates and registrations compare
// after trimming.
func (c Coupon) Eligible(ctx EligibilityContext) bool {
	if c.Eligibility.LastName != "" &&
		!strings.EqualFold(c.Eligibility.LastName, strings.TrimSpace(ctx.LastName)) {
		return false
	}
	if c.Eligibility.DateOfBirth != "" &&
		c.Eligibility.DateOfBirth != strings.TrimSpace(ctx.DateOfBirth) {
		return false
	}
	if c.Eligibility.Registration != "" &&
		!strings.EqualFold(c.Eligibility.Registration, strings.TrimSpace(ctx.Registration)) {
		return false
	}
	return true
}

// ComputeDiscount resolves the coupon against a quote total: percentage
// or fixed value, clamped first by MaxDiscount when configured, then by
// the total itself so a discount can never exceed what it applies to.
func (c Coupon) ComputeDiscount(total float64) (float64, error) {
	if total < 0 {
		return 0, fmt.Errorf("%w: negative total", ErrValidation)
	}

	var amount float64
	switch c.Type {
	case DiscountPercentage:
		amount = total * c.Value / 100
	case DiscountFixed:
		amount = c.Value
	default:
		return 0, fmt.Errorf("%w: unknown discount type %q", ErrValidation, c.Type)
	}

	if c.MaxDiscount > 0 && amount > c.MaxDiscount {
		amount = c.MaxDiscount
	}
	if amount > total {
		amount = total
	}
	return round2(amount), nil
}

type CouponRepo interface {
	// GetByCode looks up a coupon by its normalized (upper-cased) code.
	GetByCode(ctx context.Context, code string) (Coupon, error)
	Create(ctx context.Context, c Coupon) error
}
