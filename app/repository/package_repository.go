package repository

import (
	"github.com/DevEdward666/study-hub-app/app/models"
	"gorm.io/gorm"
)

// packageRepository implements the PackageRepository interface
type packageRepository struct {
	db *gorm.DB
}

// NewPackageRepository creates a new package repository instance
func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepository{db: db}
}

// Create creates a new subscription package
func (r *packageRepository) Create(pkg *models.SubscriptionPackage) error {
	return r.db.Create(pkg).Error
}

// GetByID retrieves a package by its ID
func (r *packageRepository) GetByID(id uint) (*models.SubscriptionPackage, error) {
	var pkg models.SubscriptionPackage
	err := r.db.First(&pkg, id).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// GetActive retrieves packages currently offered for purchase
func (r *packageRepository) GetActive() ([]models.SubscriptionPackage, error) {
	var packages []models.SubscriptionPackage
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&packages).Error
	return packages, err
}

// GetAll retrieves every package including deactivated ones
func (r *packageRepository) GetAll() ([]models.SubscriptionPackage, error) {
	var packages []models.SubscriptionPackage
	err := r.db.Order("price ASC").Find(&packages).Error
	return packages, err
}

// Update updates an existing package. Existing subscriptions are unaffected
// since they carry their own hour and price snapshots.
func (r *packageRepository) Update(pkg *models.SubscriptionPackage) error {
	return r.db.Save(pkg).Error
}

// Delete removes a package by ID
func (r *packageRepository) Delete(id uint) error {
	return r.db.Delete(&models.SubscriptionPackage{}, id).Error
}
