package registry

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/DevEdward666/study-hub-app/app/models"
)

// Occupant describes who currently holds a table and through which kind of
// session.
type Occupant struct {
	UserID    uint      `json:"user_id"`
	SessionID uint      `json:"session_id"`
	Kind      string    `json:"kind"` // credit | subscription
	StartTime time.Time `json:"start_time"`
}

// Registry is the read-only occupancy view. The occupant is resolved through
// the session tables, never from a pointer stored on the table, so occupancy
// has a single source of truth. All mutation happens through the billing
// engine.
type Registry struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// IsAvailable reports whether a table can accept a new session: it exists,
// is not occupied, and is not disabled.
func (r *Registry) IsAvailable(tableID uint) (bool, error) {
	var t models.Table
	if err := r.db.First(&t, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, gorm.ErrRecordNotFound
		}
		return false, err
	}
	return t.IsAvailable(), nil
}

// ActiveOccupant resolves the open session holding a table, if any.
func (r *Registry) ActiveOccupant(tableID uint) (*Occupant, error) {
	var cs models.CreditSession
	err := r.db.Where("table_id = ? AND status = ?", tableID, models.SessionStatusActive).
		First(&cs).Error
	if err == nil {
		return &Occupant{UserID: cs.UserID, SessionID: cs.ID, Kind: "credit", StartTime: cs.StartTime}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var ss models.SubscriptionSession
	err = r.db.Where("table_id = ? AND status = ?", tableID, models.SessionStatusActive).
		First(&ss).Error
	if err == nil {
		return &Occupant{UserID: ss.UserID, SessionID: ss.ID, Kind: "subscription", StartTime: ss.StartTime}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, nil
}
