package repository

import (
	"github.com/pledgefox/PledgeFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// providerAccountRepository implements the ProviderAccountRepository interface
type providerAccountRepository struct {
	db *gorm.DB
}

// NewProviderAccountRepository creates a new provider account repository instance
func NewProviderAccountRepository(db *gorm.DB) ProviderAccountRepository {
	return &providerAccountRepository{db: db}
}

// Upsert creates or refreshes an OAuth identity linkage
func (r *providerAccountRepository) Upsert(account *models.ProviderAccount) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"access_token",
			"refresh_token",
			"expires_at",
			"updated_at",
		}),
	}).Create(account).Error; err != nil {
		return err
	}

	return r.db.Where("provider = ? AND provider_user_id = ?", account.Provider, account.ProviderUserID).
		First(account).Error
}

// GetByProviderUserID resolves an external identity to its linkage row
func (r *providerAccountRepository) GetByProviderUserID(provider, providerUserID string) (*models.ProviderAccount, error) {
	var account models.ProviderAccount
	err := r.db.Where("provider = ? AND provider_user_id = ?", provider, providerUserID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ListByUser returns all linked identities for a user
func (r *providerAccountRepository) ListByUser(userID uint) ([]models.ProviderAccount, error) {
	var accounts []models.ProviderAccount
	err := r.db.Where("user_id = ?", userID).Find(&accounts).Error
	return accounts, err
}
