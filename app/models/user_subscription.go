package models

import "time"

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"
)

// UserSubscription is the pre-paid side of the ledger: a purchased hour pool.
// TotalHours is snapshotted from the package at purchase; RemainingHours only
// decreases (session close), never increases.
type UserSubscription struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	UserID         uint                `gorm:"not null;index" json:"user_id"`
	User           User                `gorm:"foreignKey:UserID" json:"-"`
	PackageID      uint                `gorm:"not null;index" json:"package_id"`
	Package        SubscriptionPackage `gorm:"foreignKey:PackageID" json:"-"`
	TotalHours     float64             `gorm:"not null" json:"total_hours"`
	RemainingHours float64             `gorm:"not null" json:"remaining_hours"`
	HoursUsed      float64             `gorm:"not null;default:0" json:"hours_used"`
	Status         string              `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	PurchaseDate   time.Time           `gorm:"not null" json:"purchase_date"`
	ActivationDate *time.Time          `gorm:"type:timestamp;default:null" json:"activation_date,omitempty"`
	ExpiryDate     *time.Time          `gorm:"type:timestamp;default:null" json:"expiry_date,omitempty"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsUsable reports whether a new session may be opened against this
// subscription.
func (s *UserSubscription) IsUsable() bool {
	return s.Status == SubscriptionStatusActive && s.RemainingHours > 0
}

// SubscriptionSession is a pre-paid-hours occupancy of a table. "Pause" and
// "end" are the same terminal transition; pausing closes the session and a
// later resume opens a fresh one against the same subscription.
type SubscriptionSession struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	UserID         uint             `gorm:"not null;index" json:"user_id"`
	User           User             `gorm:"foreignKey:UserID" json:"-"`
	TableID        uint             `gorm:"not null;index:idx_subscription_sessions_table_status,priority:1" json:"table_id"`
	Table          Table            `gorm:"foreignKey:TableID" json:"-"`
	SubscriptionID uint             `gorm:"not null;index:idx_subscription_sessions_sub_status,priority:1" json:"subscription_id"`
	Subscription   UserSubscription `gorm:"foreignKey:SubscriptionID" json:"-"`
	StartTime      time.Time        `gorm:"not null" json:"start_time"`
	EndTime        *time.Time       `gorm:"type:timestamp;default:null" json:"end_time,omitempty"`
	Status         string           `gorm:"type:varchar(20);not null;default:'active';index:idx_subscription_sessions_table_status,priority:2;index:idx_subscription_sessions_sub_status,priority:2" json:"status"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsOpen reports whether the session still holds its table.
func (s *SubscriptionSession) IsOpen() bool {
	return s.Status == SessionStatusActive
}
