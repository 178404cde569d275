package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// LedgerEntry is one append-only row in the capital ledger: a credit (or
// correction) attributed to a member. Entries are never updated or deleted.
type LedgerEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	AmountCents int64     `gorm:"not null" json:"amount_cents" validate:"required"`
	Note        string    `gorm:"type:varchar(255)" json:"note" validate:"max=255"`
	CreatedByID uint      `gorm:"index" json:"created_by_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (l *LedgerEntry) Validate() error {
	v := validator.New()

	return v.Struct(l)
}
