package models

import "time"

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// CreditSession is a pay-per-use occupancy of a table. CreditsUsed, EndTime
// and Status are written exactly once, together, when the session closes.
type CreditSession struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"-"`
	TableID     uint       `gorm:"not null;index:idx_credit_sessions_table_status,priority:1" json:"table_id"`
	Table       Table      `gorm:"foreignKey:TableID" json:"-"`
	StartTime   time.Time  `gorm:"not null" json:"start_time"`
	EndTime     *time.Time `gorm:"type:timestamp;default:null" json:"end_time,omitempty"`
	CreditsUsed float64    `gorm:"not null;default:0" json:"credits_used"`
	Status      string     `gorm:"type:varchar(20);not null;default:'active';index:idx_credit_sessions_table_status,priority:2" json:"status"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsOpen reports whether the session still holds its table.
func (s *CreditSession) IsOpen() bool {
	return s.Status == SessionStatusActive
}

// Duration returns elapsed time against now for open sessions, or the
// recorded span for closed ones.
func (s *CreditSession) Duration(now time.Time) time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}
