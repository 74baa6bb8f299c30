package billing

import "time"

const millisPerHour = 3_600_000

// BillableHours converts elapsed time into whole billable hours for credit
// sessions: always rounded up to the next full hour, minimum one hour.
// A session of exactly 60 minutes bills one hour; 60 minutes and one
// millisecond bills two.
func BillableHours(elapsed time.Duration) int64 {
	ms := elapsed.Milliseconds()
	if ms <= 0 {
		return 1
	}
	hours := (ms + millisPerHour - 1) / millisPerHour
	if hours < 1 {
		hours = 1
	}
	return hours
}

// CreditCharge computes the whole-hour charge for a credit session.
func CreditCharge(elapsed time.Duration, hourlyRate float64) (int64, float64) {
	hours := BillableHours(elapsed)
	return hours, float64(hours) * hourlyRate
}

// ConsumedHours converts elapsed time into fractional hours for subscription
// sessions. No rounding: pre-paid hours are a finite pool and must be
// conserved exactly.
func ConsumedHours(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed.Milliseconds()) / float64(millisPerHour)
}

// ApplyConsumption debits consumed hours from a remaining pool, clamping at
// zero. It reports the new remaining balance and whether the pool is now
// exhausted.
func ApplyConsumption(remaining, consumed float64) (float64, bool) {
	newRemaining := remaining - consumed
	if newRemaining <= 0 {
		return 0, true
	}
	return newRemaining, false
}

// ClampDebit limits a charge to the available balance so the balance never
// goes negative. The full charge is still recorded as spent.
func ClampDebit(balance, charge float64) float64 {
	if charge > balance {
		return balance
	}
	return charge
}
