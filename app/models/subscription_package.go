package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	PackageTypeHourly  = "hourly"
	PackageTypeDaily   = "daily"
	PackageTypeWeekly  = "weekly"
	PackageTypeMonthly = "monthly"
)

// SubscriptionPackage is a purchasable pre-paid hour allotment. Price and
// derived hours are snapshotted onto UserSubscription at purchase, so later
// edits to a package never change what an existing subscriber owns.
type SubscriptionPackage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=3,max=150"`
	PackageType   string    `gorm:"type:varchar(20);not null" json:"package_type" validate:"oneof=hourly daily weekly monthly"`
	DurationValue int       `gorm:"not null" json:"duration_value" validate:"required,gt=0"`
	Price         float64   `gorm:"not null" json:"price" validate:"required,gt=0"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *SubscriptionPackage) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// TotalHours derives the hour allotment from the package type and duration:
// hourly counts as-is, daily 24h/unit, weekly 168h/unit, monthly 720h/unit.
func (p *SubscriptionPackage) TotalHours() float64 {
	switch p.PackageType {
	case PackageTypeDaily:
		return float64(p.DurationValue) * 24
	case PackageTypeWeekly:
		return float64(p.DurationValue) * 168
	case PackageTypeMonthly:
		return float64(p.DurationValue) * 720
	default:
		return float64(p.DurationValue)
	}
}
