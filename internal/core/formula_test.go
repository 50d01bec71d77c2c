package core

import "testing"

func TestNewTierTableRejectsUnsortedThresholds(t *testing.T) {
	_, err := NewTierTable([]DiscountTier{
		{Threshold: 25, Percent: 10},
		{Threshold: 21, Percent: 5},
	})
	if err == nil {
		t.Fatal("want error for descending thresholds")
	}
}

func TestNewTierTableRejectsDecreasingDiscounts(t *testing.T) {
	_, err := NewTierTable([]DiscountTier{
		{Threshold: 21, Percent: 10},
		{Threshold: 25, Percent: 5},
	})
	if err == nil {
		t.Fatal("want error for decreasing discounts")
	}
}

func TestNewTierTableRejectsOutOfRangePercent(t *testing.T) {
	_, err := NewTierTable([]DiscountTier{{Threshold: 21, Percent: 120}})
	if err == nil {
		t.Fatal("want error for >100% discount")
	}
}

func TestResolveTierDiscount(t *testing.T) {
	table, err := NewTierTable([]DiscountTier{
		{Threshold: 21, Percent: 5},
		{Threshold: 25, Percent: 10},
		{Threshold: 30, Percent: 15},
	})
	if err != nil {
		t.Fatalf("NewTierTable: %v", err)
	}

	tests := []struct {
		value int
		want  float64
	}{
		{17, 0},
		{20, 0},
		{21, 5},
		{24, 5},
		{25, 10},
		{29, 10},
		{30, 15},
		{75, 15},
	}
	for _, tt := range tests {
		if got := table.Resolve(tt.value); got != tt.want {
			t.Errorf("Resolve(%d) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestResolveTierDiscountMonotonic(t *testing.T) {
	table, err := NewTierTable([]DiscountTier{
		{Threshold: 21, Percent: 5},
		{Threshold: 25, Percent: 10},
		{Threshold: 30, Percent: 15},
	})
	if err != nil {
		t.Fatalf("NewTierTable: %v", err)
	}

	prev := -1.0
	for v := 0; v <= 100; v++ {
		got := table.Resolve(v)
		if got < prev {
			t.Fatalf("Resolve(%d) = %v < Resolve(%d) = %v; must be non-decreasing", v, got, v-1, prev)
		}
		prev = got
	}
}

func TestEmptyTierTableResolvesZero(t *testing.T) {
	table, err := NewTierTable(nil)
	if err != nil {
		t.Fatalf("NewTierTable: %v", err)
	}
	if got := table.Resolve(99); got != 0 {
		t.Errorf("Resolve = %v, want 0", got)
	}
}
