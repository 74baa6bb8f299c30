package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Table is a physical study table that one user can occupy at a time.
// There is no embedded occupant pointer; the current occupant is resolved
// through the session tables so occupancy has a single source of truth.
type Table struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QRCode     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"qr_code"`
	HourlyRate float64   `gorm:"not null" json:"hourly_rate" validate:"required,gt=0"`
	Capacity   int       `gorm:"not null;default:1" json:"capacity" validate:"required,gt=0"`
	Location   string    `gorm:"type:varchar(150)" json:"location" validate:"max=150"`
	IsOccupied bool      `gorm:"not null;default:false;index" json:"is_occupied"`
	IsDisabled bool      `gorm:"not null;default:false" json:"is_disabled"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Table) Validate() error {
	v := validator.New()

	return v.Struct(t)
}

// NewTable creates a table with a fresh QR token.
func NewTable(hourlyRate float64, capacity int, location string) (*Table, error) {
	t := &Table{
		QRCode:     uuid.NewString(),
		HourlyRate: hourlyRate,
		Capacity:   capacity,
		Location:   location,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// IsAvailable reports whether a new session may start on this table.
func (t *Table) IsAvailable() bool {
	return !t.IsOccupied && !t.IsDisabled
}
