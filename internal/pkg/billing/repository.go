package billing

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DevEdward666/study-hub-app/app/models"
)

// Repository provides the storage operations the engine composes into atomic
// transitions. Mutating operations are meant to run inside Transact so a
// start or close either fully commits or fully rolls back.
type Repository interface {
	// Transact runs fn against a transactional view of the repository.
	Transact(fn func(Repository) error) error

	GetTable(id uint) (*models.Table, error)
	GetUserCredits(userID uint) (*models.UserCredits, error)
	GetSubscription(id uint) (*models.UserSubscription, error)
	GetCreditSession(id uint) (*models.CreditSession, error)
	GetSubscriptionSession(id uint) (*models.SubscriptionSession, error)

	UserHasOpenSession(userID uint) (bool, error)
	SubscriptionHasOpenSession(subscriptionID uint) (bool, error)

	// LockUserCredits loads the user's credit row under a row lock, creating
	// it on first use. Inside Transact it serializes concurrent session
	// starts by the same user, so the open-session checks that follow it see
	// every committed session. A subscription is owned by exactly one user,
	// which makes this lock cover the one-session-per-subscription invariant
	// as well.
	LockUserCredits(userID uint) (*models.UserCredits, error)

	// OccupyTable flips is_occupied from false to true. It reports false
	// when the compare-and-set loses (already occupied or disabled).
	OccupyTable(tableID uint) (bool, error)
	FreeTable(tableID uint) error

	CreateCreditSession(s *models.CreditSession) error
	CreateSubscriptionSession(s *models.SubscriptionSession) error
	ActivateSubscription(subscriptionID uint, at time.Time) error

	// CloseCreditSession flips status active->completed, setting end time and
	// the full computed charge together. Reports false when the session was
	// closed concurrently.
	CloseCreditSession(sessionID uint, endTime time.Time, creditsUsed float64) (bool, error)
	CloseSubscriptionSession(sessionID uint, endTime time.Time) (bool, error)

	// DebitCredits clamps the balance at zero while recording the full
	// charge in total_spent and the transaction audit trail.
	DebitCredits(userID uint, charge float64, sessionID uint) error
	UpdateSubscriptionUsage(subscriptionID uint, remaining, hoursUsed float64, expired bool, at time.Time) error

	StaleCreditSessions(olderThan time.Time) ([]models.CreditSession, error)
	StaleSubscriptionSessions(olderThan time.Time) ([]models.SubscriptionSession, error)
	OpenSubscriptionSessions() ([]models.SubscriptionSession, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an engine repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transact(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) GetTable(id uint) (*models.Table, error) {
	var t models.Table
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) GetUserCredits(userID uint) (*models.UserCredits, error) {
	var uc models.UserCredits
	err := r.db.Where(models.UserCredits{UserID: userID}).
		FirstOrCreate(&uc).Error
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func (r *gormRepository) GetSubscription(id uint) (*models.UserSubscription, error) {
	var s models.UserSubscription
	if err := r.db.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) GetCreditSession(id uint) (*models.CreditSession, error) {
	var s models.CreditSession
	if err := r.db.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) GetSubscriptionSession(id uint) (*models.SubscriptionSession, error) {
	var s models.SubscriptionSession
	if err := r.db.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) UserHasOpenSession(userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.CreditSession{}).
		Where("user_id = ? AND status = ?", userID, models.SessionStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	err = r.db.Model(&models.SubscriptionSession{}).
		Where("user_id = ? AND status = ?", userID, models.SessionStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormRepository) LockUserCredits(userID uint) (*models.UserCredits, error) {
	var uc models.UserCredits
	err := r.db.Where(models.UserCredits{UserID: userID}).FirstOrCreate(&uc).Error
	if err != nil {
		return nil, err
	}
	err = r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&uc).Error
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func (r *gormRepository) SubscriptionHasOpenSession(subscriptionID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.SubscriptionSession{}).
		Where("subscription_id = ? AND status = ?", subscriptionID, models.SessionStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormRepository) OccupyTable(tableID uint) (bool, error) {
	res := r.db.Model(&models.Table{}).
		Where("id = ? AND is_occupied = ? AND is_disabled = ?", tableID, false, false).
		Update("is_occupied", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) FreeTable(tableID uint) error {
	return r.db.Model(&models.Table{}).
		Where("id = ?", tableID).
		Update("is_occupied", false).Error
}

func (r *gormRepository) CreateCreditSession(s *models.CreditSession) error {
	return r.db.Create(s).Error
}

func (r *gormRepository) CreateSubscriptionSession(s *models.SubscriptionSession) error {
	return r.db.Create(s).Error
}

func (r *gormRepository) ActivateSubscription(subscriptionID uint, at time.Time) error {
	return r.db.Model(&models.UserSubscription{}).
		Where("id = ? AND activation_date IS NULL", subscriptionID).
		Update("activation_date", at).Error
}

func (r *gormRepository) CloseCreditSession(sessionID uint, endTime time.Time, creditsUsed float64) (bool, error) {
	res := r.db.Model(&models.CreditSession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionStatusActive).
		Updates(map[string]interface{}{
			"end_time":     endTime,
			"credits_used": creditsUsed,
			"status":       models.SessionStatusCompleted,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) CloseSubscriptionSession(sessionID uint, endTime time.Time) (bool, error) {
	res := r.db.Model(&models.SubscriptionSession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionStatusActive).
		Updates(map[string]interface{}{
			"end_time": endTime,
			"status":   models.SessionStatusCompleted,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) DebitCredits(userID uint, charge float64, sessionID uint) error {
	err := r.db.Model(&models.UserCredits{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance":     gorm.Expr("GREATEST(0, balance - ?)", charge),
			"total_spent": gorm.Expr("total_spent + ?", charge),
		}).Error
	if err != nil {
		return err
	}
	tx := &models.CreditTransaction{
		UserID:    userID,
		Amount:    charge,
		Type:      models.CreditTxTypeCharge,
		SessionID: &sessionID,
		Notes:     "credit session charge",
	}
	return r.db.Create(tx).Error
}

func (r *gormRepository) UpdateSubscriptionUsage(subscriptionID uint, remaining, hoursUsed float64, expired bool, at time.Time) error {
	updates := map[string]interface{}{
		"remaining_hours": remaining,
		"hours_used":      hoursUsed,
	}
	if expired {
		updates["status"] = models.SubscriptionStatusExpired
		updates["expiry_date"] = at
	}
	return r.db.Model(&models.UserSubscription{}).
		Where("id = ?", subscriptionID).
		Updates(updates).Error
}

func (r *gormRepository) StaleCreditSessions(olderThan time.Time) ([]models.CreditSession, error) {
	var sessions []models.CreditSession
	err := r.db.Where("status = ? AND start_time < ?", models.SessionStatusActive, olderThan).
		Find(&sessions).Error
	return sessions, err
}

func (r *gormRepository) StaleSubscriptionSessions(olderThan time.Time) ([]models.SubscriptionSession, error) {
	var sessions []models.SubscriptionSession
	err := r.db.Where("status = ? AND start_time < ?", models.SessionStatusActive, olderThan).
		Find(&sessions).Error
	return sessions, err
}

func (r *gormRepository) OpenSubscriptionSessions() ([]models.SubscriptionSession, error) {
	var sessions []models.SubscriptionSession
	err := r.db.Where("status = ?", models.SessionStatusActive).
		Find(&sessions).Error
	return sessions, err
}
