package models

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Setting represents a system setting
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;size:255;not null;uniqueIndex" json:"key" validate:"required,min=1,max=255"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:50;not null" json:"type" validate:"required"` // string, boolean, integer
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppSettings represents the application settings structure
type AppSettings struct {
	SiteTitle           string `json:"site_title" validate:"required,min=1,max=255"`
	SiteDescription     string `json:"site_description" validate:"max=500"`
	RegistrationEnabled bool   `json:"registration_enabled"`
	MinPledgeDollars    int    `json:"min_pledge_dollars" validate:"min=0"`
	MaxPledgeDollars    int    `json:"max_pledge_dollars" validate:"min=0"`
	mu                  sync.RWMutex
}

// Global settings instance
var (
	appSettings *AppSettings
	settingsMu  sync.RWMutex
)

// GetAppSettings returns the current application settings
func GetAppSettings() *AppSettings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	if appSettings == nil {
		return &AppSettings{
			SiteTitle:           "PledgeFox",
			SiteDescription:     "Membership and contribution management",
			RegistrationEnabled: true,
			MinPledgeDollars:    5,
			MaxPledgeDollars:    1000,
		}
	}
	return appSettings
}

// LoadSettings loads settings from database into memory
func LoadSettings(db *gorm.DB) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	// Initialize with defaults
	appSettings = &AppSettings{
		SiteTitle:           "PledgeFox",
		SiteDescription:     "Membership and contribution management",
		RegistrationEnabled: true,
		MinPledgeDollars:    5,
		MaxPledgeDollars:    1000,
	}

	var settings []Setting
	if err := db.Find(&settings).Error; err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	for _, setting := range settings {
		switch setting.Key {
		case "site_title":
			appSettings.SiteTitle = setting.Value
		case "site_description":
			appSettings.SiteDescription = setting.Value
		case "registration_enabled":
			appSettings.RegistrationEnabled = setting.Value == "true"
		case "min_pledge_dollars":
			if n, err := strconv.Atoi(setting.Value); err == nil {
				appSettings.MinPledgeDollars = n
			}
		case "max_pledge_dollars":
			if n, err := strconv.Atoi(setting.Value); err == nil {
				appSettings.MaxPledgeDollars = n
			}
		}
	}

	return nil
}

// SaveSettings saves current settings to database
func SaveSettings(db *gorm.DB, settings *AppSettings) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	if err := settings.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	settingsMap := map[string]interface{}{
		"site_title":           settings.SiteTitle,
		"site_description":     settings.SiteDescription,
		"registration_enabled": fmt.Sprintf("%t", settings.RegistrationEnabled),
		"min_pledge_dollars":   strconv.Itoa(settings.MinPledgeDollars),
		"max_pledge_dollars":   strconv.Itoa(settings.MaxPledgeDollars),
	}

	for key, value := range settingsMap {
		var setting Setting
		result := db.Where("setting_key = ?", key).First(&setting)

		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				setting = Setting{
					Key:   key,
					Value: fmt.Sprintf("%v", value),
					Type:  getSettingType(key),
				}
				if err := db.Create(&setting).Error; err != nil {
					return fmt.Errorf("failed to create setting %s: %w", key, err)
				}
			} else {
				return fmt.Errorf("failed to query setting %s: %w", key, result.Error)
			}
		} else {
			setting.Value = fmt.Sprintf("%v", value)
			if err := db.Save(&setting).Error; err != nil {
				return fmt.Errorf("failed to update setting %s: %w", key, err)
			}
		}
	}

	appSettings = settings
	return nil
}

// getSettingType returns the type of a setting based on its key
func getSettingType(key string) string {
	switch key {
	case "registration_enabled":
		return "boolean"
	case "min_pledge_dollars", "max_pledge_dollars":
		return "integer"
	default:
		return "string"
	}
}

// Validate validates the settings
func (s *AppSettings) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// GetSiteTitle returns the site title
func (s *AppSettings) GetSiteTitle() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SiteTitle
}

// IsRegistrationEnabled returns whether self-service registration is open
func (s *AppSettings) IsRegistrationEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.RegistrationEnabled
}

// PledgeBounds returns the allowed pledge range in whole dollars.
func (s *AppSettings) PledgeBounds() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MinPledgeDollars, s.MaxPledgeDollars
}
