package core

import (
	"fmt"
	"strconv"
	"strings"
)

type DurationUnit string

const (
	UnitHours DurationUnit = "hours"
	UnitDays  DurationUnit = "days"
	UnitWeeks DurationUnit = "weeks"
)

// Duration is the structured cover length. Free-text labels like
// "3 hours" are converted to this at the boundary where they are first
// produced; the rating engine and the time window calculator never
// re-parse text.
type Duration struct {
	Unit   DurationUnit `json:"unit"`
	Amount int          `json:"amount"`
}

func (d Duration) Validate() error {
	switch d.Unit {
	case UnitHours, UnitDays, UnitWeeks:
	default:
		return fmt.Errorf("%w: unknown duration unit %q", ErrValidation, d.Unit)
	}
	if d.Amount <= 0 {
		return fmt.Errorf("%w: duration amount must be > 0", ErrValidation)
	}
	return nil
}

// Label renders the human form used in breakdowns, e.g. "3 hours" or "1 day".
func (d Duration) Label() string {
	unit := string(d.Unit)
	if d.Amount == 1 {
		unit = strings.TrimSuffix(unit, "s")
	}
	return fmt.Sprintf("%d %s", d.Amount, unit)
}

// ParseDuration converts a "<amount> <unit>" label into a Duration.
// Unparsable labels are a contract violation by the producer of the
// label, so no default is guessed.
func ParseDuration(label string) (Duration, error) {
	fields := strings.Fields(strings.ToLower(label))
	if len(fields) != 2 {
		return Duration{}, fmt.Errorf("%w: malformed duration label %q", ErrValidation, label)
	}
	amount, err := strconv.Atoi(fields[0])
	if err != nil {
		return Duration{}, fmt.Errorf("%w: duration amount %q is not an integer", ErrValidation, fields[0])
	}

	unit := fields[1]
	if !strings.HasSuffix(unit, "s") {
		unit += "s"
	}
	d := Duration{Unit: DurationUnit(unit), Amount: amount}
	if err := d.Validate(); err != nil {
		return Duration{}, err
	}
	return d, nil
}
