package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pledgefox/PledgeFox/app/models"
)

const webhookProvider = "billing-functions"

// UserResolver resolves members by their billing customer reference.
type UserResolver interface {
	GetByBillingCustomerRef(ref string) (*models.User, error)
	Update(user *models.User) error
}

// EventWriter appends audit rows, skipping rows whose provider event id was
// already recorded.
type EventWriter interface {
	CreateIfNotExists(event *models.PledgeEvent) (bool, error)
}

// IngestService turns verified webhook deliveries into audit rows and member
// state updates. Every delivery is stored first, then processed; redelivery
// of an already-stored event is a no-op.
type IngestService struct {
	repo   Repository
	users  UserResolver
	events EventWriter
}

func NewIngestService(repo Repository, users UserResolver, events EventWriter) *IngestService {
	return &IngestService{repo: repo, users: users, events: events}
}

// NewIngestServiceFromDB wires the ingest service straight from a GORM handle
// plus the app-level repositories.
func NewIngestServiceFromDB(db *gorm.DB, users UserResolver, events EventWriter) *IngestService {
	return NewIngestService(NewRepository(db), users, events)
}

// Ingest records and processes one webhook delivery. The raw payload is
// persisted before any processing so a crash mid-processing never loses the
// delivery. Returns false when the event was a duplicate.
func (s *IngestService) Ingest(ctx context.Context, payload []byte, signatureValid bool) (bool, error) {
	ev, err := ParseWebhookEvent(payload)
	if err != nil {
		return false, err
	}

	stored := &models.BillingWebhookEvent{
		Provider:        webhookProvider,
		ProviderEventID: strings.TrimSpace(ev.EventID),
		EventType:       strings.TrimSpace(ev.Type),
		PayloadJSON:     string(payload),
		SignatureValid:  signatureValid,
	}
	created, stored, err := s.repo.CreateWebhookEventIfNotExists(stored)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	// Unverified deliveries are stored for the audit trail but never applied.
	if !signatureValid {
		if err := s.repo.MarkWebhookProcessed(stored.ID, "invalid webhook signature"); err != nil {
			log.Printf("Failed to mark webhook %d processed: %v", stored.ID, err)
		}
		return true, nil
	}

	procErr := s.process(ctx, ev)
	errMsg := ""
	if procErr != nil {
		errMsg = procErr.Error()
	}
	if err := s.repo.MarkWebhookProcessed(stored.ID, errMsg); err != nil {
		log.Printf("Failed to mark webhook %d processed: %v", stored.ID, err)
	}
	return true, procErr
}

func (s *IngestService) process(ctx context.Context, ev WebhookEvent) error {
	_ = ctx

	user, err := s.users.GetByBillingCustomerRef(ev.CustomerRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A customer we never provisioned; store-and-skip.
			return fmt.Errorf("no member for customer ref %s", ev.CustomerRef)
		}
		return err
	}

	row, ok := ev.ToPledgeEvent(user.ID)
	if !ok {
		return nil
	}
	if _, err := s.events.CreateIfNotExists(&row); err != nil {
		return err
	}

	return s.applyToUser(user, ev)
}

// applyToUser mirrors the event onto the member record so pages that only
// read the local store stay current.
func (s *IngestService) applyToUser(user *models.User, ev WebhookEvent) error {
	changed := false

	switch kind, _ := ev.AuditKind(); kind {
	case models.EventPledgeChange:
		if ev.NewCents >= 0 && user.MonthlyPledgeCents != ev.NewCents {
			user.MonthlyPledgeCents = ev.NewCents
			changed = true
		}
	case models.EventSubCancelScheduled:
		if ev.Meta.CancelAtUnix > 0 {
			at := time.Unix(ev.Meta.CancelAtUnix, 0)
			user.MembershipCancelAt = &at
			changed = true
		}
	case models.EventSubResumed:
		if user.MembershipCancelAt != nil {
			user.MembershipCancelAt = nil
			changed = true
		}
	case models.EventSubCancelled:
		user.MonthlyPledgeCents = 0
		user.MembershipCancelAt = nil
		changed = true
	}

	if !changed {
		return nil
	}
	return s.users.Update(user)
}
