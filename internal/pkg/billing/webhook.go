package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pledgefox/PledgeFox/app/models"
)

// webhookKinds maps billing-function event types to audit-row kinds. Types
// outside this table are acknowledged and dropped.
var webhookKinds = map[string]string{
	"pledge.changed":                models.EventPledgeChange,
	"subscription.cancel_scheduled": models.EventSubCancelScheduled,
	"subscription.resumed":          models.EventSubResumed,
	"subscription.cancelled":        models.EventSubCancelled,
	"invoice.payment_failed":        models.EventPaymentFailed,
}

// ParseWebhookEvent decodes and validates a webhook payload.
func ParseWebhookEvent(payload []byte) (WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ev, fmt.Errorf("malformed webhook payload: %w", err)
	}
	if strings.TrimSpace(ev.EventID) == "" {
		return ev, errors.New("webhook event missing event_id")
	}
	if strings.TrimSpace(ev.Type) == "" {
		return ev, errors.New("webhook event missing type")
	}
	if strings.TrimSpace(ev.CustomerRef) == "" {
		return ev, errors.New("webhook event missing customer_ref")
	}
	return ev, nil
}

// AuditKind returns the pledge_events kind for this event, or false when the
// type is not one we record.
func (ev WebhookEvent) AuditKind() (string, bool) {
	kind, ok := webhookKinds[ev.Type]
	return kind, ok
}

// ToPledgeEvent converts the webhook event into the audit row to persist for
// the given user. Returns false for event types that are not recorded.
func (ev WebhookEvent) ToPledgeEvent(userID uint) (models.PledgeEvent, bool) {
	kind, ok := ev.AuditKind()
	if !ok {
		return models.PledgeEvent{}, false
	}

	row := models.PledgeEvent{
		UserID:          userID,
		Kind:            kind,
		OldCents:        ev.OldCents,
		NewCents:        ev.NewCents,
		ProviderEventID: ev.EventID,
	}
	_ = row.SetMeta(models.EventMeta{
		CancelAtUnix: ev.Meta.CancelAtUnix,
		CancelAtISO:  ev.Meta.CancelAtISO,
		AmountDue:    ev.Meta.AmountDue,
		PrevCents:    ev.Meta.PrevCents,
		InvoiceID:    ev.Meta.InvoiceID,
	})
	return row, true
}
