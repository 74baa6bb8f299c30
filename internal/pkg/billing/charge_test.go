package billing

import (
	"math"
	"testing"
	"time"
)

func TestBillableHours(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		expected int64
	}{
		{"zero duration bills minimum hour", 0, 1},
		{"negative duration bills minimum hour", -time.Minute, 1},
		{"one millisecond", time.Millisecond, 1},
		{"one second", time.Second, 1},
		{"59 minutes", 59 * time.Minute, 1},
		{"exactly one hour", time.Hour, 1},
		{"one hour plus one millisecond", time.Hour + time.Millisecond, 2},
		{"90 minutes", 90 * time.Minute, 2},
		{"exactly two hours", 2 * time.Hour, 2},
		{"two hours plus one millisecond", 2*time.Hour + time.Millisecond, 3},
		{"ten hours", 10 * time.Hour, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BillableHours(tt.elapsed); got != tt.expected {
				t.Fatalf("BillableHours(%v) = %d, want %d", tt.elapsed, got, tt.expected)
			}
		})
	}
}

func TestCreditCharge(t *testing.T) {
	tests := []struct {
		name       string
		elapsed    time.Duration
		rate       float64
		wantHours  int64
		wantCharge float64
	}{
		{"ten minutes at rate 50", 10 * time.Minute, 50, 1, 50},
		{"90 minutes at rate 50", 90 * time.Minute, 50, 2, 100},
		{"exactly one hour at rate 10", time.Hour, 10, 1, 10},
		{"just over an hour at rate 10", time.Hour + time.Millisecond, 10, 2, 20},
		{"zero elapsed still bills one hour", 0, 25, 1, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours, charge := CreditCharge(tt.elapsed, tt.rate)
			if hours != tt.wantHours {
				t.Fatalf("hours = %d, want %d", hours, tt.wantHours)
			}
			if charge != tt.wantCharge {
				t.Fatalf("charge = %v, want %v", charge, tt.wantCharge)
			}
		})
	}
}

func TestConsumedHours(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		expected float64
	}{
		{"zero", 0, 0},
		{"30 minutes", 30 * time.Minute, 0.5},
		{"one hour", time.Hour, 1},
		{"two and a half hours", 2*time.Hour + 30*time.Minute, 2.5},
		{"90 seconds", 90 * time.Second, 0.025},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConsumedHours(tt.elapsed)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Fatalf("ConsumedHours(%v) = %v, want %v", tt.elapsed, got, tt.expected)
			}
		})
	}
}

func TestConsumedHoursNoRounding(t *testing.T) {
	// Fractional consumption is exact: splitting a span across two sessions
	// consumes the same total as one uninterrupted session.
	whole := ConsumedHours(3*time.Hour + 45*time.Minute)
	split := ConsumedHours(2*time.Hour+15*time.Minute) + ConsumedHours(time.Hour+30*time.Minute)
	if math.Abs(whole-split) > 1e-9 {
		t.Fatalf("split consumption %v differs from whole %v", split, whole)
	}
}

func TestApplyConsumption(t *testing.T) {
	tests := []struct {
		name          string
		remaining     float64
		consumed      float64
		wantRemaining float64
		wantExpired   bool
	}{
		{"plenty left", 10, 2.5, 7.5, false},
		{"exact exhaustion", 2, 2, 0, true},
		{"overrun clamps at zero", 1, 1.5, 0, true},
		{"no consumption", 5, 0, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining, expired := ApplyConsumption(tt.remaining, tt.consumed)
			if math.Abs(remaining-tt.wantRemaining) > 1e-9 {
				t.Fatalf("remaining = %v, want %v", remaining, tt.wantRemaining)
			}
			if expired != tt.wantExpired {
				t.Fatalf("expired = %v, want %v", expired, tt.wantExpired)
			}
		})
	}
}

func TestClampDebit(t *testing.T) {
	tests := []struct {
		name    string
		balance float64
		charge  float64
		want    float64
	}{
		{"charge within balance", 100, 40, 60},
		{"charge equals balance", 50, 50, 0},
		{"charge exceeds balance clamps to zero", 30, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampDebit(tt.balance, tt.charge); got != tt.want {
				t.Fatalf("ClampDebit(%v, %v) = %v, want %v", tt.balance, tt.charge, got, tt.want)
			}
		})
	}
}
