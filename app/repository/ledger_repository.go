package repository

import (
	"github.com/pledgefox/PledgeFox/app/models"
	"gorm.io/gorm"
)

// ledgerRepository implements the LedgerRepository interface
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository instance
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// Create appends a new ledger entry
func (r *ledgerRepository) Create(entry *models.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	return r.db.Create(entry).Error
}

// ListByUser returns a member's ledger entries newest-first
func (r *ledgerRepository) ListByUser(userID uint) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&entries).Error
	return entries, err
}

// SumByUser returns a member's ledger balance in cents
func (r *ledgerRepository) SumByUser(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.LedgerEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount_cents), 0)").
		Row().Scan(&total)
	return total, err
}

// SumTotal returns the ledger balance across all members in cents
func (r *ledgerRepository) SumTotal() (int64, error) {
	var total int64
	err := r.db.Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Row().Scan(&total)
	return total, err
}
