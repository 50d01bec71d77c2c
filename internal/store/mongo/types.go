package mongo

import (
	"time"

	"github.com/draycott/shortcover/internal/core"
)

const (
	ColQuotes  = "quotes"
	ColFormula = "quote_formula"
	ColCoupons = "coupons"
)

// Quote

type breakdownDoc struct {
	BasePrice          float64     `bson:"base_price"`
	DurationMultiplier float64     `bson:"duration_multiplier"`
	Discounts          []factorDoc `bson:"discounts,omitempty"`
	Duration           string      `bson:"duration"`
	Reason             string      `bson:"reason,omitempty"`
	Total              float64     `bson:"total"`
}

type factorDoc struct {
	Name    string  `bson:"name"`
	Percent float64 `bson:"percent"`
}

type startDoc struct {
	Immediate bool   `bson:"immediate"`
	Day       int    `bson:"day,omitempty"`
	Month     string `bson:"month,omitempty"`
	Hour      int    `bson:"hour,omitempty"`
	Minute    int    `bson:"minute,omitempty"`
}

type inputDoc struct {
	DurationUnit      string    `bson:"duration_unit"`
	DurationAmount    int       `bson:"duration_amount"`
	DateOfBirth       time.Time `bson:"date_of_birth"`
	LicenceHeldMonths int       `bson:"licence_held_months"`
	VehicleValueBand  string    `bson:"vehicle_value_band,omitempty"`
	Registration      string    `bson:"registration,omitempty"`
	Reason            string    `bson:"reason,omitempty"`
	Start             startDoc  `bson:"start"`
}

type QuoteDoc struct {
	ID                 string       `bson:"_id"`
	Status             string       `bson:"status"`
	Revision           int          `bson:"revision"`
	Total              float64      `bson:"total"`
	BasePrice          float64      `bson:"base_price"`
	DurationMultiplier float64      `bson:"duration_multiplier"`
	Breakdown          breakdownDoc `bson:"breakdown"`
	StartTime          time.Time    `bson:"start_time"`
	ExpiryTime         time.Time    `bson:"expiry_time"`
	StartLabel         string       `bson:"start_label"`
	ExpiryLabel        string       `bson:"expiry_label"`
	CreatedAt          time.Time    `bson:"created_at"`
	Input              inputDoc     `bson:"input"`
	PromoCode          string       `bson:"promo_code,omitempty"`
	DiscountAmount     float64      `bson:"discount_amount,omitempty"`
}

func toQuoteDoc(q core.Quote) QuoteDoc {
	factors := make([]factorDoc, 0, len(q.Breakdown.Discounts))
	for _, f := range q.Breakdown.Discounts {
		factors = append(factors, factorDoc{Name: f.Name, Percent: f.Percent})
	}
	return QuoteDoc{
		ID:                 q.ID,
		Status:             string(q.Status),
		Revision:           q.Revision,
		Total:              q.Total,
		BasePrice:          q.BasePrice,
		DurationMultiplier: q.DurationMultiplier,
		Breakdown: breakdownDoc{
			BasePrice:          q.Breakdown.BasePrice,
			DurationMultiplier: q.Breakdown.DurationMultiplier,
			Discounts:          factors,
			Duration:           q.Breakdown.Duration,
			Reason:             q.Breakdown.Reason,
			Total:              q.Breakdown.Total,
		},
		StartTime:   q.StartTime,
		ExpiryTime:  q.ExpiryTime,
		StartLabel:  q.StartLabel,
		ExpiryLabel: q.ExpiryLabel,
		CreatedAt:   q.CreatedAt,
		Input: inputDoc{
			DurationUnit:      string(q.Input.Duration.Unit),
			DurationAmount:    q.Input.Duration.Amount,
			DateOfBirth:       q.Input.DateOfBirth,
			LicenceHeldMonths: q.Input.LicenceHeldMonths,
			VehicleValueBand:  q.Input.VehicleValueBand,
			Registration:      q.Input.Registration,
			Reason:            q.Input.Reason,
			Start: startDoc{
				Immediate: q.Input.Start.Immediate,
				Day:       q.Input.Start.Day,
				Month:     q.Input.Start.Month,
				Hour:      q.Input.Start.Hour,
				Minute:    q.Input.Start.Minute,
			},
		},
		PromoCode:      q.PromoCode,
		DiscountAmount: q.DiscountAmount,
	}
}

func fromQuoteDoc(d QuoteDoc) core.Quote {
	factors := make([]core.AppliedFactor, 0, len(d.Breakdown.Discounts))
	for _, f := range d.Breakdown.Discounts {
		factors = append(factors, core.AppliedFactor{Name: f.Name, Percent: f.Percent})
	}
	return core.Quote{
		ID:                 d.ID,
		Status:             core.QuoteStatus(d.Status),
		Revision:           d.Revision,
		Total:              d.Total,
		BasePrice:          d.BasePrice,
		DurationMultiplier: d.DurationMultiplier,
		Breakdown: core.Breakdown{
			BasePrice:          d.Breakdown.BasePrice,
			DurationMultiplier: d.Breakdown.DurationMultiplier,
			Discounts:          factors,
			Duration:           d.Breakdown.Duration,
			Reason:             d.Breakdown.Reason,
			Total:              d.Breakdown.Total,
		},
		StartTime:   d.StartTime,
		ExpiryTime:  d.ExpiryTime,
		StartLabel:  d.StartLabel,
		ExpiryLabel: d.ExpiryLabel,
		CreatedAt:   d.CreatedAt,
		Input: core.QuoteInput{
			Duration: core.Duration{
				Unit:   core.DurationUnit(d.Input.DurationUnit),
				Amount: d.Input.DurationAmount,
			},
			DateOfBirth:       d.Input.DateOfBirth,
			LicenceHeldMonths: d.Input.LicenceHeldMonths,
			VehicleValueBand:  d.Input.VehicleValueBand,
			Registration:      d.Input.Registration,
			Reason:            d.Input.Reason,
			Start: core.StartSelection{
				Immediate: d.Input.Start.Immediate,
				Day:       d.Input.Start.Day,
				Month:     d.Input.Start.Month,
				Hour:      d.Input.Start.Hour,
				Minute:    d.Input.Start.Minute,
			},
		},
		PromoCode:      d.PromoCode,
		DiscountAmount: d.DiscountAmount,
	}
}

// Formula

type tierDoc struct {
	Threshold int     `bson:"threshold"`
	Discount  float64 `bson:"discount"`
}

type FormulaDoc struct {
	ID                   string    `bson:"_id"`
	BaseHourlyRate       float64   `bson:"base_hourly_rate"`
	BaseDailyRate        float64   `bson:"base_daily_rate"`
	MultiDayDiscountPct  float64   `bson:"multi_day_discount_pct"`
	MultiWeekDiscountPct float64   `bson:"multi_week_discount_pct"`
	AgeDiscounts         []tierDoc `bson:"age_discounts"`
	LicenceDiscounts     []tierDoc `bson:"licence_discounts"`
}

// FormulaDocID: the formula is a singleton document.
const FormulaDocID = "current"

func toFormulaDoc(f core.QuoteFormula) FormulaDoc {
	return FormulaDoc{
		ID:                   FormulaDocID,
		BaseHourlyRate:       f.BaseHourlyRate,
		BaseDailyRate:        f.BaseDailyRate,
		MultiDayDiscountPct:  f.MultiDayDiscountPct,
		MultiWeekDiscountPct: f.MultiWeekDiscountPct,
		AgeDiscounts:         toTierDocs(f.AgeDiscounts.Tiers()),
		LicenceDiscounts:     toTierDocs(f.LicenceDiscounts.Tiers()),
	}
}

func fromFormulaDoc(d FormulaDoc) (core.QuoteFormula, error) {
	age, err := core.NewTierTable(fromTierDocs(d.AgeDiscounts))
	if err != nil {
		return core.QuoteFormula{}, err
	}
	licence, err := core.NewTierTable(fromTierDocs(d.LicenceDiscounts))
	if err != nil {
		return core.QuoteFormula{}, err
	}
	return core.QuoteFormula{
		BaseHourlyRate:       d.BaseHourlyRate,
		BaseDailyRate:        d.BaseDailyRate,
		MultiDayDiscountPct:  d.MultiDayDiscountPct,
		MultiWeekDiscountPct: d.MultiWeekDiscountPct,
		AgeDiscounts:         age,
		LicenceDiscounts:     licence,
	}, nil
}

func toTierDocs(tiers []core.DiscountTier) []tierDoc {
	out := make([]tierDoc, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, tierDoc{Threshold: t.Threshold, Discount: t.Percent})
	}
	return out
}

func fromTierDocs(docs []tierDoc) []core.DiscountTier {
	out := make([]core.DiscountTier, 0, len(docs))
	for _, d := range docs {
		out = append(out, core.DiscountTier{Threshold: d.Threshold, Percent: d.Discount})
	}
	return out
}

// Coupon

type CouponDoc struct {
	Code            string  `bson:"_id"`
	Type            string  `bson:"type"`
	Value           float64 `bson:"value"`
	MaxDiscount     float64 `bson:"max_discount,omitempty"`
	EligLastName    string  `bson:"elig_last_name,omitempty"`
	EligDateOfBirth string  `bson:"elig_date_of_birth,omitempty"`
	EligRegistration string `bson:"elig_registration,omitempty"`
	Active          bool    `bson:"active"`
}

func toCouponDoc(c core.Coupon) CouponDoc {
	return CouponDoc{
		Code:             core.NormalizeCode(c.Code),
		Type:             string(c.Type),
		Value:            c.Value,
		MaxDiscount:      c.MaxDiscount,
		EligLastName:     c.Eligibility.LastName,
		EligDateOfBirth:  c.Eligibility.DateOfBirth,
		EligRegistration: c.Eligibility.Registration,
		Active:           c.Active,
	}
}

func fromCouponDoc(d CouponDoc) core.Coupon {
	return core.Coupon{
		Code:        d.Code,
		Type:        core.DiscountType(d.Type),
		Value:       d.Value,
		MaxDiscount: d.MaxDiscount,
		Eligibility: core.Eligibility{
			LastName:     d.EligLastName,
			DateOfBirth:  d.EligDateOfBirth,
			Registration: d.EligRegistration,
		},
		Active: d.Active,
	}
}
