package repository

import (
	"time"

	"github.com/DevEdward666/study-hub-app/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
}

// TableRepository defines the interface for study table operations
type TableRepository interface {
	Create(table *models.Table) error
	GetByID(id uint) (*models.Table, error)
	GetByQRCode(qrCode string) (*models.Table, error)
	GetAll() ([]models.Table, error)
	GetAvailable() ([]models.Table, error)
	Update(table *models.Table) error
	SetDisabled(id uint, disabled bool) error
	Delete(id uint) error
	Count() (int64, error)
	CountOccupied() (int64, error)
}

// WalletRepository defines the interface for the credit ledger
type WalletRepository interface {
	GetByUserID(userID uint) (*models.UserCredits, error)
	Topup(userID uint, amount float64, notes string) (*models.UserCredits, error)
	Transactions(userID uint, offset, limit int) ([]models.CreditTransaction, error)
	CountTransactions(userID uint) (int64, error)
	TotalRevenue() (float64, error)
}

// PackageRepository defines the interface for subscription package operations
type PackageRepository interface {
	Create(pkg *models.SubscriptionPackage) error
	GetByID(id uint) (*models.SubscriptionPackage, error)
	GetActive() ([]models.SubscriptionPackage, error)
	GetAll() ([]models.SubscriptionPackage, error)
	Update(pkg *models.SubscriptionPackage) error
	Delete(id uint) error
}

// SubscriptionRepository defines the interface for user subscription operations
type SubscriptionRepository interface {
	Purchase(userID uint, pkg *models.SubscriptionPackage) (*models.UserSubscription, error)
	GetByID(id uint) (*models.UserSubscription, error)
	GetByUserID(userID uint) ([]models.UserSubscription, error)
	GetUsableByUserID(userID uint) ([]models.UserSubscription, error)
	Cancel(id uint, userID uint) error
	Count() (int64, error)
	CountActive() (int64, error)
}

// SessionRepository defines read-side queries over both session tables.
// Session lifecycle transitions live in the billing engine, not here.
type SessionRepository interface {
	CreditHistory(userID uint, offset, limit int) ([]models.CreditSession, error)
	SubscriptionHistory(userID uint, offset, limit int) ([]models.SubscriptionSession, error)
	ActiveCreditSession(userID uint) (*models.CreditSession, error)
	ActiveSubscriptionSession(userID uint) (*models.SubscriptionSession, error)
	CountActive() (int64, error)
	CountCompletedSince(since time.Time) (int64, error)
}

// NotificationRepository defines the interface for user notifications
type NotificationRepository interface {
	GetByUserID(userID uint, offset, limit int) ([]models.Notification, error)
	CountUnread(userID uint) (int64, error)
	MarkRead(id uint, userID uint) error
	MarkAllRead(userID uint) error
}

// SettingRepository defines the interface for application settings
type SettingRepository interface {
	Get() (*models.AppSettings, error)
	Save(settings *models.AppSettings) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Table        TableRepository
	Wallet       WalletRepository
	Package      PackageRepository
	Subscription SubscriptionRepository
	Session      SessionRepository
	Notification NotificationRepository
	Setting      SettingRepository
}
