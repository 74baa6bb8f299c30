package billing

import "time"

// Session kinds used in results and notifications.
const (
	KindCredit       = "credit"
	KindSubscription = "subscription"
)

// CreditCloseResult reports the outcome of EndCreditSession.
type CreditCloseResult struct {
	SessionID     uint          `json:"session_id"`
	Duration      time.Duration `json:"-"`
	DurationMs    int64         `json:"duration_ms"`
	HoursBilled   int64         `json:"hours_billed"`
	CreditsUsed   float64       `json:"credits_used"`
	NewBalance    float64       `json:"new_balance"`
	AlreadyClosed bool          `json:"already_closed"`
}

// SubscriptionCloseResult reports the outcome of EndSubscriptionSession.
type SubscriptionCloseResult struct {
	SessionID      uint          `json:"session_id"`
	SubscriptionID uint          `json:"subscription_id"`
	Duration       time.Duration `json:"-"`
	DurationMs     int64         `json:"duration_ms"`
	HoursConsumed  float64       `json:"hours_consumed"`
	RemainingHours float64       `json:"remaining_hours"`
	HoursUsed      float64       `json:"hours_used"`
	Expired        bool          `json:"expired"`
	AlreadyClosed  bool          `json:"already_closed"`
}
