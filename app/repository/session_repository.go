package repository

import (
	"time"

	"github.com/DevEdward666/study-hub-app/app/models"
	"gorm.io/gorm"
)

// sessionRepository implements the SessionRepository interface
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository instance
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// CreditHistory retrieves a user's credit sessions, newest first
func (r *sessionRepository) CreditHistory(userID uint, offset, limit int) ([]models.CreditSession, error) {
	var sessions []models.CreditSession
	err := r.db.Preload("Table").
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Offset(offset).
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

// SubscriptionHistory retrieves a user's subscription sessions, newest first
func (r *sessionRepository) SubscriptionHistory(userID uint, offset, limit int) ([]models.SubscriptionSession, error) {
	var sessions []models.SubscriptionSession
	err := r.db.Preload("Table").
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Offset(offset).
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

// ActiveCreditSession returns the user's open credit session, or nil
func (r *sessionRepository) ActiveCreditSession(userID uint) (*models.CreditSession, error) {
	var session models.CreditSession
	err := r.db.Preload("Table").
		Where("user_id = ? AND status = ?", userID, models.SessionStatusActive).
		First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ActiveSubscriptionSession returns the user's open subscription session, or nil
func (r *sessionRepository) ActiveSubscriptionSession(userID uint) (*models.SubscriptionSession, error) {
	var session models.SubscriptionSession
	err := r.db.Preload("Table").
		Where("user_id = ? AND status = ?", userID, models.SessionStatusActive).
		First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CountActive returns the number of open sessions across both kinds
func (r *sessionRepository) CountActive() (int64, error) {
	var credit, subscription int64
	if err := r.db.Model(&models.CreditSession{}).
		Where("status = ?", models.SessionStatusActive).
		Count(&credit).Error; err != nil {
		return 0, err
	}
	if err := r.db.Model(&models.SubscriptionSession{}).
		Where("status = ?", models.SessionStatusActive).
		Count(&subscription).Error; err != nil {
		return 0, err
	}
	return credit + subscription, nil
}

// CountCompletedSince returns sessions closed since the given time, both kinds
func (r *sessionRepository) CountCompletedSince(since time.Time) (int64, error) {
	var credit, subscription int64
	if err := r.db.Model(&models.CreditSession{}).
		Where("status = ? AND end_time >= ?", models.SessionStatusCompleted, since).
		Count(&credit).Error; err != nil {
		return 0, err
	}
	if err := r.db.Model(&models.SubscriptionSession{}).
		Where("status = ? AND end_time >= ?", models.SessionStatusCompleted, since).
		Count(&subscription).Error; err != nil {
		return 0, err
	}
	return credit + subscription, nil
}
