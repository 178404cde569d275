// Package activity composes a member's recent invoices, pledge changes and
// subscription lifecycle events into one deduplicated, chronologically ordered
// feed, plus the "cancellation scheduled" banner state. Composition is pure:
// the only wall-clock input is the reference time passed in for the
// upcoming-charge freshness check.
package activity

import (
	"fmt"
	"time"

	"github.com/pledgefox/PledgeFox/app/models"
)

// ItemType classifies a rendered feed row.
type ItemType string

const (
	TypePaid         ItemType = "paid"
	TypeUpcoming     ItemType = "upcoming"
	TypeFailed       ItemType = "failed"
	TypePledgeChange ItemType = "pledge-change"
)

// priority breaks same-second ordering ties: a just-scheduled future charge
// sorts above the day's completed charge.
func priority(t ItemType) int {
	switch t {
	case TypeUpcoming:
		return 3
	case TypePledgeChange:
		return 2
	case TypePaid:
		return 1
	default: // TypeFailed and anything unknown
		return 0
	}
}

// EventKind is the closed set of audit-row kinds the composer understands.
// Unknown kinds are carried as KindUnknown and ignored during composition, so
// a new producer-side kind degrades to a no-op instead of a surprise row.
type EventKind int

const (
	KindUnknown EventKind = iota
	KindPledgeChange
	KindCancelScheduled
	KindResumed
	KindCancelled
	KindPaymentFailed
)

// ParseEventKind maps the audit-table discriminator strings to EventKind.
func ParseEventKind(s string) EventKind {
	switch s {
	case models.EventPledgeChange:
		return KindPledgeChange
	case models.EventSubCancelScheduled:
		return KindCancelScheduled
	case models.EventSubResumed:
		return KindResumed
	case models.EventSubCancelled:
		return KindCancelled
	case models.EventPaymentFailed:
		return KindPaymentFailed
	default:
		return KindUnknown
	}
}

func (k EventKind) String() string {
	switch k {
	case KindPledgeChange:
		return models.EventPledgeChange
	case KindCancelScheduled:
		return models.EventSubCancelScheduled
	case KindResumed:
		return models.EventSubResumed
	case KindCancelled:
		return models.EventSubCancelled
	case KindPaymentFailed:
		return models.EventPaymentFailed
	default:
		return "unknown"
	}
}

// Event is a normalized audit row, adapted from models.PledgeEvent.
type Event struct {
	ID        uint
	Kind      EventKind
	CreatedAt time.Time
	OldCents  int64
	NewCents  int64
	Meta      models.EventMeta
}

// FromPledgeEvent adapts a stored audit row for composition.
func FromPledgeEvent(e models.PledgeEvent) Event {
	return Event{
		ID:        e.ID,
		Kind:      ParseEventKind(e.Kind),
		CreatedAt: e.CreatedAt,
		OldCents:  e.OldCents,
		NewCents:  e.NewCents,
		Meta:      e.Meta(),
	}
}

// Item is one displayable feed row.
type Item struct {
	Type     ItemType `json:"type"`
	DateUnix int64    `json:"date_unix"`
	Title    string   `json:"title"`
	Amount   string   `json:"amount"`
	Right    string   `json:"right"`
	Href     string   `json:"href,omitempty"`

	dedupeKey string
}

// DedupeKey returns the explicit key assigned during normalization, or the
// fallback composite of the item's identifying fields.
func (it Item) DedupeKey() string {
	if it.dedupeKey != "" {
		return it.dedupeKey
	}
	return fmt.Sprintf("%s|%d|%s|%s|%s", it.Type, it.DateUnix, it.Right, it.Amount, it.Href)
}

// StatusSummary is the slice of the contribution-status snapshot the composer
// needs to synthesize the upcoming-charge row.
type StatusSummary struct {
	PledgeCents     int64
	NextBillingUnix int64
}

// Banner describes a still-active scheduled cancellation.
type Banner struct {
	CreatedAt   time.Time `json:"created_at"`
	CancelAtISO string    `json:"cancel_at_iso"`
}

// Feed is the composed output: ordered items plus the optional banner.
type Feed struct {
	Items     []Item  `json:"items"`
	Scheduled *Banner `json:"scheduled,omitempty"`
}
