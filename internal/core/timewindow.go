package core

import (
	"fmt"
	"time"
)

// WindowTimeLayout is the fixed dd/mm/yy hh:mm rendering used for
// display and for the persisted quote.
const WindowTimeLayout = "02/01/06 15:04"

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func monthByName(name string) (time.Month, error) {
	for i, m := range monthNames {
		if m == name {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown month %q", ErrValidation, name)
}

// Window is the cover period: the instant cover begins and the instant
// it runs out.
type Window struct {
	Start  time.Time `json:"start"`
	Expiry time.Time `json:"expiry"`
}

func (w Window) StartLabel() string  { return w.Start.Format(WindowTimeLayout) }
func (w Window) ExpiryLabel() string { return w.Expiry.Format(WindowTimeLayout) }

// ComputeWindow resolves the start selection to a concrete instant and
// adds the duration.
//
// Immediate starts snap forward to the next 5-minute boundary, with
// seconds zeroed; an instant already on a boundary is not advanced.
//
// Explicit starts are built from the selected day, month name and the
// current year. When the chosen day/month has already passed this
// year the start lands in the past; that is the shipped behaviour and
// stays until the product owner specifies year rollover.
//
// Day and week durations go through AddDate so month and year
// boundaries roll over on the calendar, never by fixed day counts.
func ComputeWindow(now time.Time, sel StartSelection, d Duration) (Window, error) {
	if err := d.Validate(); err != nil {
		return Window{}, err
	}
	if err := sel.Validate(); err != nil {
		return Window{}, err
	}

	var start time.Time
	if sel.Immediate {
		start = snapToNextFiveMinutes(now)
	} else {
		month, err := monthByName(sel.Month)
		if err != nil {
			return Window{}, err
		}
		start = time.Date(now.Year(), month, sel.Day, sel.Hour, sel.Minute, 0, 0, now.Location())
	}

	var expiry time.Time
	switch d.Unit {
	case UnitHours:
		expiry = start.Add(time.Duration(d.Amount) * time.Hour)
	case UnitDays:
		expiry = start.AddDate(0, 0, d.Amount)
	case UnitWeeks:
		expiry = start.AddDate(0, 0, d.Amount*7)
	}

	return Window{Start: start, Expiry: expiry}, nil
}

func snapToNextFiveMinutes(t time.Time) time.Time {
	t = t.Truncate(time.Minute)
	if rem := t.Minute() % 5; rem != 0 {
		t = t.Add(time.Duration(5-rem) * time.Minute)
	}
	return t
}
