package core

import (
	"math"
	"time"
)

// AppliedFactor is one named discount recorded in a breakdown, in the
// order it was applied.
type AppliedFactor struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// Breakdown is the itemised result of rating a request.
type Breakdown struct {
	BasePrice          float64         `json:"base_price"`
	DurationMultiplier float64         `json:"duration_multiplier"`
	Discounts          []AppliedFactor `json:"discounts"`
	Duration           string          `json:"duration"`
	Reason             string          `json:"reason"`
	Total              float64         `json:"total"`
}

// Rate prices a request against a formula. It is pure: same inputs,
// same output, no I/O. A nil formula yields ErrConfigMissing so the
// caller can show a loading state instead of a bogus price.
//
// The multipliers are multiplied together unrounded; rounding happens
// once, on the final total, so intermediate steps cannot compound
// rounding error.
func Rate(f *QuoteFormula, in QuoteInput, now time.Time) (Breakdown, error) {
	if f == nil {
		return Breakdown{}, ErrConfigMissing
	}
	if err := in.Validate(now); err != nil {
		return Breakdown{}, err
	}

	var base float64
	switch in.Duration.Unit {
	case UnitHours:
		base = f.BaseHourlyRate * float64(in.Duration.Amount)
	case UnitDays:
		base = f.BaseDailyRate * float64(in.Duration.Amount)
	case UnitWeeks:
		// Weeks are billed as 7x the daily rate before discount.
		base = f.BaseDailyRate * 7 * float64(in.Duration.Amount)
	}

	multiplier := 1.0
	var discounts []AppliedFactor

	// Multi-period discount: days/weeks only, and only past one period.
	// Hours never qualify regardless of amount.
	switch {
	case in.Duration.Unit == UnitDays && in.Duration.Amount > 1 && f.MultiDayDiscountPct > 0:
		multiplier *= 1 - f.MultiDayDiscountPct/100
		discounts = append(discounts, AppliedFactor{Name: "multi-day", Percent: f.MultiDayDiscountPct})
	case in.Duration.Unit == UnitWeeks && in.Duration.Amount > 1 && f.MultiWeekDiscountPct > 0:
		multiplier *= 1 - f.MultiWeekDiscountPct/100
		discounts = append(discounts, AppliedFactor{Name: "multi-week", Percent: f.MultiWeekDiscountPct})
	}

	if pct := f.AgeDiscounts.Resolve(yearsBetween(in.DateOfBirth, now)); pct > 0 {
		multiplier *= 1 - pct/100
		discounts = append(discounts, AppliedFactor{Name: "age", Percent: pct})
	}

	if pct := f.LicenceDiscounts.Resolve(in.LicenceHeldMonths); pct > 0 {
		multiplier *= 1 - pct/100
		discounts = append(discounts, AppliedFactor{Name: "licence-held", Percent: pct})
	}

	total := round2(base * multiplier)
	if total < 0 {
		total = 0
	}

	return Breakdown{
		BasePrice:          base,
		DurationMultiplier: multiplier,
		Discounts:          discounts,
		Duration:           in.Duration.Label(),
		Reason:             in.Reason,
		Total:              total,
	}, nil
}

// round2 rounds half-up to 2 decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
