package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_MEMBER = "member"
	ROLE_ADMIN  = "admin"

	STATUS_ACTIVE   = "active"
	STATUS_INVITED  = "invited"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

// User is a member of the collective. Billing state (customer/subscription
// references, current pledge) mirrors what the external payment provider
// reports; the provider remains the source of truth.
type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	PublicID           string         `gorm:"type:varchar(36);uniqueIndex" json:"public_id"`
	Name               string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Email              string         `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	Password           string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role               string         `gorm:"type:varchar(50);default:'member'" json:"role" validate:"oneof=member admin"`
	Status             string         `gorm:"type:varchar(50);default:'invited'" json:"status" validate:"oneof=active invited inactive disabled"`
	Bio                string         `gorm:"type:text;default:null" json:"bio" validate:"max=1000"`
	AvatarURL          string         `gorm:"type:varchar(255);default:null" json:"avatar_url" validate:"max=255"`
	MonthlyPledgeCents int64          `gorm:"default:0" json:"monthly_pledge_cents"`
	ProfileViewCount   int64          `gorm:"default:0" json:"profile_view_count"`
	BillingCustomerRef string         `gorm:"type:varchar(100);index" json:"-"`
	BillingSubRef      string         `gorm:"type:varchar(100);index" json:"-"`
	MembershipCancelAt *time.Time     `gorm:"type:timestamp;default:null" json:"membership_cancel_at"`
	InviteToken        string         `gorm:"type:varchar(100);index" json:"-"`
	InviteSentAt       *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	LastLoginAt        *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns the stable public identifier used in admin APIs.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.PublicID == "" {
		u.PublicID = uuid.NewString()
	}
	return nil
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(name string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     name,
		Email:    email,
		Password: pw,
		Role:     ROLE_MEMBER,
		Status:   STATUS_ACTIVE,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// GenerateInviteToken creates a random token and sets InviteSentAt
func (u *User) GenerateInviteToken() error {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	u.InviteToken = hex.EncodeToString(b)
	now := time.Now()
	u.InviteSentAt = &now
	return nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}
