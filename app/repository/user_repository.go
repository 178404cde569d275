package repository

import (
	"strings"
	"time"

	"github.com/pledgefox/PledgeFox/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByPublicID retrieves a user by their public identifier
func (r *userRepository) GetByPublicID(publicID string) (*models.User, error) {
	var user models.User
	err := r.db.Where("public_id = ?", publicID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByInviteToken retrieves a user by their invite token
func (r *userRepository) GetByInviteToken(token string) (*models.User, error) {
	var user models.User
	err := r.db.Where("invite_token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByBillingCustomerRef resolves a payment-provider customer reference.
func (r *userRepository) GetByBillingCustomerRef(ref string) (*models.User, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user models.User
	err := r.db.Where("billing_customer_ref = ?", trimmed).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete soft-deletes a user by ID
func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// List returns users ordered by creation date with pagination
func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of users with the given status
func (r *userRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// Search finds users by name or email, optionally filtered by status.
// Both filters empty lists everyone (bounded).
func (r *userRepository) Search(query, status string) ([]models.User, error) {
	var users []models.User
	q := r.db.Model(&models.User{})
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		like := "%" + trimmed + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}
	if status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Limit(200).Find(&users).Error
	return users, err
}

// SumMonthlyPledgeCents totals the current recurring pledges of active members.
func (r *userRepository) SumMonthlyPledgeCents() (int64, error) {
	var total int64
	err := r.db.Model(&models.User{}).
		Where("status = ?", models.STATUS_ACTIVE).
		Select("COALESCE(SUM(monthly_pledge_cents), 0)").
		Row().Scan(&total)
	return total, err
}

// GetDailyStats returns new-member counts per day in the given range
func (r *userRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	var stats []models.DailyStats
	err := r.db.Model(&models.User{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&stats).Error
	return stats, err
}
