package repository

import (
	"github.com/DevEdward666/study-hub-app/app/models"
	"gorm.io/gorm"
)

// tableRepository implements the TableRepository interface
type tableRepository struct {
	db *gorm.DB
}

// NewTableRepository creates a new table repository instance
func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

// Create creates a new study table
func (r *tableRepository) Create(table *models.Table) error {
	return r.db.Create(table).Error
}

// GetByID retrieves a table by its ID
func (r *tableRepository) GetByID(id uint) (*models.Table, error) {
	var table models.Table
	err := r.db.First(&table, id).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// GetByQRCode retrieves a table by its QR token
func (r *tableRepository) GetByQRCode(qrCode string) (*models.Table, error) {
	var table models.Table
	err := r.db.Where("qr_code = ?", qrCode).First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// GetAll retrieves every table
func (r *tableRepository) GetAll() ([]models.Table, error) {
	var tables []models.Table
	err := r.db.Order("id ASC").Find(&tables).Error
	return tables, err
}

// GetAvailable retrieves tables that are free and not disabled
func (r *tableRepository) GetAvailable() ([]models.Table, error) {
	var tables []models.Table
	err := r.db.Where("is_occupied = ? AND is_disabled = ?", false, false).
		Order("id ASC").
		Find(&tables).Error
	return tables, err
}

// Update updates an existing table
func (r *tableRepository) Update(table *models.Table) error {
	return r.db.Save(table).Error
}

// SetDisabled toggles the disabled flag. Disabling a table does not touch
// its occupancy; an open session still closes normally.
func (r *tableRepository) SetDisabled(id uint, disabled bool) error {
	result := r.db.Model(&models.Table{}).
		Where("id = ?", id).
		Update("is_disabled", disabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a table by ID
func (r *tableRepository) Delete(id uint) error {
	return r.db.Delete(&models.Table{}, id).Error
}

// Count returns the total number of tables
func (r *tableRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Table{}).Count(&count).Error
	return count, err
}

// CountOccupied returns the number of currently occupied tables
func (r *tableRepository) CountOccupied() (int64, error) {
	var count int64
	err := r.db.Model(&models.Table{}).Where("is_occupied = ?", true).Count(&count).Error
	return count, err
}
