package repository

import (
	"time"

	"github.com/pledgefox/PledgeFox/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for member-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByPublicID(publicID string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByInviteToken(token string) (*models.User, error)
	GetByBillingCustomerRef(ref string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
	Search(query, status string) ([]models.User, error)
	SumMonthlyPledgeCents() (int64, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// PledgeEventRepository defines the interface for the pledge_events audit table
type PledgeEventRepository interface {
	CreateIfNotExists(event *models.PledgeEvent) (bool, error)
	ListByUser(userID uint, kinds []string, limit int) ([]models.PledgeEvent, error)
	ListRecent(limit int) ([]models.PledgeEvent, error)
}

// LedgerRepository defines the interface for the capital ledger
type LedgerRepository interface {
	Create(entry *models.LedgerEntry) error
	ListByUser(userID uint) ([]models.LedgerEntry, error)
	SumByUser(userID uint) (int64, error)
	SumTotal() (int64, error)
}

// SettingRepository defines the interface for setting-related database operations
type SettingRepository interface {
	Get(key string) (*models.Setting, error)
	Set(key, value, settingType string) error
	GetAll() ([]models.Setting, error)
}

// ProviderAccountRepository defines the interface for linked OAuth identities
type ProviderAccountRepository interface {
	Upsert(account *models.ProviderAccount) error
	GetByProviderUserID(provider, providerUserID string) (*models.ProviderAccount, error)
	ListByUser(userID uint) ([]models.ProviderAccount, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User            UserRepository
	PledgeEvent     PledgeEventRepository
	Ledger          LedgerRepository
	Setting         SettingRepository
	ProviderAccount ProviderAccountRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:            NewUserRepository(db),
		PledgeEvent:     NewPledgeEventRepository(db),
		Ledger:          NewLedgerRepository(db),
		Setting:         NewSettingRepository(db),
		ProviderAccount: NewProviderAccountRepository(db),
	}
}
