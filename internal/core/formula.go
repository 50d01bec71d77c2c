package core

import "fmt"

// DiscountTier maps a threshold (driver age in years, or licence held
// in months) to a percentage discount.
type DiscountTier struct {
	Threshold int     `json:"threshold"`
	Percent   float64 `json:"discount"`
}

// TierTable is a validated, ascending sequence of discount tiers.
// It is constructed once at config-load time; malformed or unsorted
// input is rejected there rather than trusted at lookup time.
type TierTable struct {
	tiers []DiscountTier
}

func NewTierTable(tiers []DiscountTier) (TierTable, error) {
	for i, t := range tiers {
		if t.Percent < 0 || t.Percent > 100 {
			return TierTable{}, fmt.Errorf("%w: tier %d discount %.2f out of range", ErrValidation, i, t.Percent)
		}
		if i > 0 {
			prev := tiers[i-1]
			if t.Threshold <= prev.Threshold {
				return TierTable{}, fmt.Errorf("%w: tier thresholds must be strictly ascending (%d after %d)",
					ErrValidation, t.Threshold, prev.Threshold)
			}
			if t.Percent < prev.Percent {
				return TierTable{}, fmt.Errorf("%w: tier discounts must be non-decreasing (%.2f after %.2f)",
					ErrValidation, t.Percent, prev.Percent)
			}
		}
	}
	out := make([]DiscountTier, len(tiers))
	copy(out, tiers)
	return TierTable{tiers: out}, nil
}

// Resolve returns the discount of the greatest threshold not exceeding v,
// or 0 when v is below every threshold.
func (t TierTable) Resolve(v int) float64 {
	percent := 0.0
	for _, tier := range t.tiers {
		if v < tier.Threshold {
			break
		}
		percent = tier.Percent
	}
	return percent
}

func (t TierTable) Tiers() []DiscountTier {
	out := make([]DiscountTier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// QuoteFormula holds the base rates and discount tables used by the
// rating engine. It is loaded once per session and read-only after that.
type QuoteFormula struct {
	BaseHourlyRate float64
	BaseDailyRate  float64

	MultiDayDiscountPct  float64
	MultiWeekDiscountPct float64

	AgeDiscounts     TierTable
	LicenceDiscounts TierTable
}

func (f *QuoteFormula) Validate() error {
	if f.BaseHourlyRate <= 0 {
		return fmt.Errorf("%w: base hourly rate must be > 0", ErrValidation)
	}
	if f.BaseDailyRate <= 0 {
		return fmt.Errorf("%w: base daily rate must be > 0", ErrValidation)
	}
	if f.MultiDayDiscountPct < 0 || f.MultiDayDiscountPct > 100 {
		return fmt.Errorf("%w: multi-day discount out of range", ErrValidation)
	}
	if f.MultiWeekDiscountPct < 0 || f.MultiWeekDiscountPct > 100 {
		return fmt.Errorf("%w: multi-week discount out of range", ErrValidation)
	}
	return nil
}
