package repository

import (
	"fmt"
	"time"

	"github.com/DevEdward666/study-hub-app/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Purchase creates a subscription for the user, snapshotting the package's
// derived hours so later package edits never change what was bought.
// Activation is deferred until the first session opens against it.
func (r *subscriptionRepository) Purchase(userID uint, pkg *models.SubscriptionPackage) (*models.UserSubscription, error) {
	if !pkg.IsActive {
		return nil, fmt.Errorf("package %d is not available for purchase", pkg.ID)
	}

	hours := pkg.TotalHours()
	sub := &models.UserSubscription{
		UserID:         userID,
		PackageID:      pkg.ID,
		TotalHours:     hours,
		RemainingHours: hours,
		HoursUsed:      0,
		Status:         models.SubscriptionStatusActive,
		PurchaseDate:   time.Now(),
	}

	if err := r.db.Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// GetByID retrieves a subscription by its ID
func (r *subscriptionRepository) GetByID(id uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.Preload("Package").First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByUserID retrieves all subscriptions for a user, newest first
func (r *subscriptionRepository) GetByUserID(userID uint) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.Preload("Package").
		Where("user_id = ?", userID).
		Order("purchase_date DESC").
		Find(&subs).Error
	return subs, err
}

// GetUsableByUserID retrieves subscriptions a new session could open against
func (r *subscriptionRepository) GetUsableByUserID(userID uint) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.Preload("Package").
		Where("user_id = ? AND status = ? AND remaining_hours > 0", userID, models.SubscriptionStatusActive).
		Order("purchase_date ASC").
		Find(&subs).Error
	return subs, err
}

// Cancel marks a subscription cancelled. Only the owner may cancel, and only
// while the subscription is still active.
func (r *subscriptionRepository) Cancel(id uint, userID uint) error {
	result := r.db.Model(&models.UserSubscription{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, models.SubscriptionStatusActive).
		Update("status", models.SubscriptionStatusCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count returns the total number of subscriptions
func (r *subscriptionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.UserSubscription{}).Count(&count).Error
	return count, err
}

// CountActive returns the number of active subscriptions
func (r *subscriptionRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.UserSubscription{}).
		Where("status = ?", models.SubscriptionStatusActive).
		Count(&count).Error
	return count, err
}
