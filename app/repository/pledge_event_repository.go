package repository

import (
	"github.com/pledgefox/PledgeFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pledgeEventRepository implements the PledgeEventRepository interface
type pledgeEventRepository struct {
	db *gorm.DB
}

// NewPledgeEventRepository creates a new pledge event repository instance
func NewPledgeEventRepository(db *gorm.DB) PledgeEventRepository {
	return &pledgeEventRepository{db: db}
}

// CreateIfNotExists inserts an audit row unless one with the same provider
// event id already exists. Returns whether a new row was created.
func (r *pledgeEventRepository) CreateIfNotExists(event *models.PledgeEvent) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// ListByUser returns a member's audit rows newest-first, optionally filtered
// to a set of kinds, capped at limit.
func (r *pledgeEventRepository) ListByUser(userID uint, kinds []string, limit int) ([]models.PledgeEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []models.PledgeEvent
	q := r.db.Where("user_id = ?", userID)
	if len(kinds) > 0 {
		q = q.Where("kind IN ?", kinds)
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

// ListRecent returns the newest audit rows across all members (admin view)
func (r *pledgeEventRepository) ListRecent(limit int) ([]models.PledgeEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []models.PledgeEvent
	err := r.db.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}
