package models

import "time"

// UserCredits is the pay-per-use side of the ledger. Balance never goes
// negative: charges beyond the balance are clamped at zero while TotalSpent
// still records the full computed amount.
type UserCredits struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
	Balance    float64   `gorm:"not null;default:0" json:"balance"`
	TotalSpent float64   `gorm:"not null;default:0" json:"total_spent"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

const (
	CreditTxTypeTopup  = "topup"
	CreditTxTypeCharge = "charge"
)

// CreditTransaction is the audit trail of every ledger mutation. Charge rows
// record the full computed charge even when the balance debit was clamped.
type CreditTransaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Type      string    `gorm:"type:varchar(20);not null" json:"type"`
	SessionID *uint     `gorm:"index" json:"session_id,omitempty"`
	Notes     string    `gorm:"type:varchar(255)" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
