package repository

import (
	"fmt"

	"github.com/DevEdward666/study-hub-app/app/models"
	"gorm.io/gorm"
)

// walletRepository implements the WalletRepository interface
type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository instance
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

// GetByUserID retrieves the credit ledger for a user, creating an empty one
// on first access
func (r *walletRepository) GetByUserID(userID uint) (*models.UserCredits, error) {
	var credits models.UserCredits
	err := r.db.Where(models.UserCredits{UserID: userID}).FirstOrCreate(&credits).Error
	if err != nil {
		return nil, err
	}
	return &credits, nil
}

// Topup adds credits to a user's balance and records the transaction.
// Both writes happen in one database transaction.
func (r *walletRepository) Topup(userID uint, amount float64, notes string) (*models.UserCredits, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("topup amount must be positive, got %v", amount)
	}

	var credits models.UserCredits
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.UserCredits{UserID: userID}).FirstOrCreate(&credits).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.UserCredits{}).
			Where("user_id = ?", userID).
			Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err
		}

		txRow := models.CreditTransaction{
			UserID: userID,
			Amount: amount,
			Type:   models.CreditTxTypeTopup,
			Notes:  notes,
		}
		if err := tx.Create(&txRow).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", userID).First(&credits).Error
	})
	if err != nil {
		return nil, err
	}
	return &credits, nil
}

// Transactions retrieves a user's ledger history with pagination
func (r *walletRepository) Transactions(userID uint, offset, limit int) ([]models.CreditTransaction, error) {
	var transactions []models.CreditTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}

// CountTransactions returns the number of ledger entries for a user
func (r *walletRepository) CountTransactions(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CreditTransaction{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// TotalRevenue sums all charge transactions across users
func (r *walletRepository) TotalRevenue() (float64, error) {
	var total float64
	err := r.db.Model(&models.CreditTransaction{}).
		Where("type = ?", models.CreditTxTypeCharge).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
