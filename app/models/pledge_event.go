package models

import (
	"encoding/json"
	"time"
)

// Pledge event kinds as written by the billing webhook ingest. The activity
// package re-parses these into its closed EventKind enum for composition.
const (
	EventPledgeChange       = "pledge-change"
	EventSubCancelScheduled = "sub-cancel-scheduled"
	EventSubResumed         = "sub-resumed"
	EventSubCancelled       = "sub-cancelled"
	EventPaymentFailed      = "payment-failed"
)

// PledgeEvent is an append-only audit row describing a change to a member's
// recurring contribution or subscription lifecycle. Rows are written once by
// the webhook ingest and never mutated.
type PledgeEvent struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	Kind            string    `gorm:"type:varchar(50);index;not null" json:"type"`
	OldCents        int64     `gorm:"default:0" json:"old_cents"`
	NewCents        int64     `gorm:"default:0" json:"new_cents"`
	MetaJSON        string    `gorm:"type:text" json:"-"`
	ProviderEventID string    `gorm:"type:varchar(100);uniqueIndex" json:"-"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// EventMeta is the loosely-typed bag attached to lifecycle events. Only the
// fields relevant to a given kind are populated.
type EventMeta struct {
	CancelAtUnix int64  `json:"cancel_at_unix,omitempty"`
	CancelAtISO  string `json:"cancel_at_iso,omitempty"`
	AmountDue    int64  `json:"amount_due,omitempty"`
	PrevCents    int64  `json:"prev_cents,omitempty"`
	InvoiceID    string `json:"invoice_id,omitempty"`
}

// Meta decodes MetaJSON; malformed or empty payloads yield a zero meta.
func (e *PledgeEvent) Meta() EventMeta {
	var m EventMeta
	if e.MetaJSON == "" {
		return m
	}
	_ = json.Unmarshal([]byte(e.MetaJSON), &m)
	return m
}

// SetMeta encodes and stores the meta bag.
func (e *PledgeEvent) SetMeta(m EventMeta) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	e.MetaJSON = string(raw)
	return nil
}
