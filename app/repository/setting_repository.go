package repository

import (
	"github.com/pledgefox/PledgeFox/app/models"
	"gorm.io/gorm"
)

// settingRepository implements the SettingRepository interface
type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new setting repository instance
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// Get retrieves a setting by key
func (r *settingRepository) Get(key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.Where("setting_key = ?", key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Set creates or updates a setting
func (r *settingRepository) Set(key, value, settingType string) error {
	var setting models.Setting
	err := r.db.Where("setting_key = ?", key).First(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			setting = models.Setting{Key: key, Value: value, Type: settingType}
			return r.db.Create(&setting).Error
		}
		return err
	}
	setting.Value = value
	setting.Type = settingType
	return r.db.Save(&setting).Error
}

// GetAll returns all settings
func (r *settingRepository) GetAll() ([]models.Setting, error) {
	var settings []models.Setting
	err := r.db.Find(&settings).Error
	return settings, err
}
