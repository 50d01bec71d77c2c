package core

import "testing"

func TestDurationLabel(t *testing.T) {
	cases := []struct {
		d    Duration
		want string
	}{
		{Duration{Unit: UnitHours, Amount: 1}, "1 hour"},
		{Duration{Unit: UnitHours, Amount: 3}, "3 hours"},
		{Duration{Unit: UnitDays, Amount: 1}, "1 day"},
		{Duration{Unit: UnitDays, Amount: 5}, "5 days"},
		{Duration{Unit: UnitWeeks, Amount: 2}, "2 weeks"},
	}
	for _, tc := range cases {
		if got := tc.d.Label(); got != tc.want {
			t.Errorf("Label(%+v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		label string
		want  Duration
	}{
		{"1 hour", Duration{Unit: UnitHours, Amount: 1}},
		{"3 hours", Duration{Unit: UnitHours, Amount: 3}},
		{"1 day", Duration{Unit: UnitDays, Amount: 1}},
		{"2 weeks", Duration{Unit: UnitWeeks, Amount: 2}},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.label)
		if err != nil {
			t.Errorf("ParseDuration(%q): %v", tc.label, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDuration(%q) = %+v, want %+v", tc.label, got, tc.want)
		}
	}
}

func TestParseDurationRejectsGarbage(t *testing.T) {
	for _, label := range []string{"", "3", "hours", "3 fortnights", "x hours", "0 days", "-1 days"} {
		if _, err := ParseDuration(label); err == nil {
			t.Errorf("ParseDuration(%q) accepted garbage", label)
		}
	}
}

func TestDurationValidate(t *testing.T) {
	if err := (Duration{Unit: UnitDays, Amount: 3}).Validate(); err != nil {
		t.Errorf("valid duration rejected: %v", err)
	}
	if err := (Duration{Unit: UnitDays, Amount: 0}).Validate(); err == nil {
		t.Error("zero amount accepted")
	}
	if err := (Duration{Unit: "fortnights", Amount: 1}).Validate(); err == nil {
		t.Error("unknown unit accepted")
	}
}
