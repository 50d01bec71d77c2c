package core

import (
	"fmt"
	"time"
)

// MinDriverAge is the youngest driver the product covers. Younger
// drivers are rejected up front, before rating is attempted.
const MinDriverAge = 17

// StartSelection is the symbolic cover start choice: either "start now"
// or an explicit day-of-month / month name / hour / minute. The
// explicit branch always resolves against the current calendar year,
// even when that day has already passed this year (see timewindow.go).
type StartSelection struct {
	Immediate bool   `json:"immediate"`
	Day       int    `json:"day,omitempty"`
	Month     string `json:"month,omitempty"`
	Hour      int    `json:"hour,omitempty"`
	Minute    int    `json:"minute,omitempty"`
}

func (s StartSelection) Validate() error {
	if s.Immediate {
		return nil
	}
	if s.Day < 1 || s.Day > 31 {
		return fmt.Errorf("%w: start day %d out of range", ErrValidation, s.Day)
	}
	if _, err := monthByName(s.Month); err != nil {
		return err
	}
	if s.Hour < 0 || s.Hour > 23 {
		return fmt.Errorf("%w: start hour %d out of range", ErrValidation, s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("%w: start minute %d out of range", ErrValidation, s.Minute)
	}
	return nil
}

// QuoteInput is the immutable submission the engine prices. The form
// collaborator builds it incrementally; once submitted it is never
// patched, only replaced wholesale.
type QuoteInput struct {
	Duration    Duration       `json:"duration"`
	DateOfBirth time.Time      `json:"date_of_birth"`
	// LicenceHeldMonths is how long the driver has held a full licence.
	LicenceHeldMonths int            `json:"licence_held_months"`
	VehicleValueBand  string         `json:"vehicle_value_band"`
	Registration      string         `json:"registration"`
	Reason            string         `json:"reason"`
	Start             StartSelection `json:"start"`
}

func (in QuoteInput) Validate(now time.Time) error {
	if err := in.Duration.Validate(); err != nil {
		return err
	}
	if in.DateOfBirth.IsZero() {
		return fmt.Errorf("%w: missing date of birth", ErrValidation)
	}
	if age := yearsBetween(in.DateOfBirth, now); age < MinDriverAge {
		return fmt.Errorf("%w: driver must be at least %d", ErrValidation, MinDriverAge)
	}
	if in.LicenceHeldMonths < 0 {
		return fmt.Errorf("%w: licence held months must be >= 0", ErrValidation)
	}
	return in.Start.Validate()
}

// yearsBetween is the driver's whole-year age at ref: the raw year
// difference, decremented when the birthday has not yet been reached.
func yearsBetween(dob, ref time.Time) int {
	years := ref.Year() - dob.Year()
	if ref.Month() < dob.Month() ||
		(ref.Month() == dob.Month() && ref.Day() < dob.Day()) {
		years--
	}
	return years
}
