package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pledgefox/PledgeFox/app/models"
)

func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"event_id":"evt_1"}`)
	secret := "whsec_test"
	sig := signPayload(payload, secret)

	assert.True(t, VerifyWebhookSignature(payload, sig, secret))
	assert.True(t, VerifyWebhookSignature(payload, "sha256="+sig, secret))
	assert.False(t, VerifyWebhookSignature(payload, sig, "wrong"))
	assert.False(t, VerifyWebhookSignature([]byte(`tampered`), sig, secret))
	assert.False(t, VerifyWebhookSignature(payload, "", secret))
	assert.False(t, VerifyWebhookSignature(payload, sig, ""))
	assert.False(t, VerifyWebhookSignature(payload, "not-hex!", secret))
}

func TestParseWebhookEvent(t *testing.T) {
	payload := []byte(`{
		"event_id": "evt_1",
		"type": "pledge.changed",
		"customer_ref": "cus_1",
		"old_cents": 5000,
		"new_cents": 7500
	}`)

	ev, err := ParseWebhookEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.EventID)
	assert.Equal(t, int64(7500), ev.NewCents)

	_, err = ParseWebhookEvent([]byte(`not json`))
	assert.Error(t, err)
	_, err = ParseWebhookEvent([]byte(`{"type":"pledge.changed","customer_ref":"cus_1"}`))
	assert.Error(t, err)
	_, err = ParseWebhookEvent([]byte(`{"event_id":"evt_1","customer_ref":"cus_1"}`))
	assert.Error(t, err)
	_, err = ParseWebhookEvent([]byte(`{"event_id":"evt_1","type":"pledge.changed"}`))
	assert.Error(t, err)
}

func TestWebhookEventToPledgeEvent(t *testing.T) {
	ev := WebhookEvent{
		EventID:     "evt_2",
		Type:        "subscription.cancel_scheduled",
		CustomerRef: "cus_1",
	}
	ev.Meta.CancelAtUnix = 1701000000
	ev.Meta.CancelAtISO = "2025-11-26T12:00:00Z"

	row, ok := ev.ToPledgeEvent(42)
	require.True(t, ok)
	assert.Equal(t, uint(42), row.UserID)
	assert.Equal(t, models.EventSubCancelScheduled, row.Kind)
	assert.Equal(t, "evt_2", row.ProviderEventID)
	meta := row.Meta()
	assert.Equal(t, int64(1701000000), meta.CancelAtUnix)
	assert.Equal(t, "2025-11-26T12:00:00Z", meta.CancelAtISO)
}

func TestWebhookEventUnknownTypeDropped(t *testing.T) {
	ev := WebhookEvent{EventID: "evt_3", Type: "customer.updated", CustomerRef: "cus_1"}
	_, ok := ev.ToPledgeEvent(1)
	assert.False(t, ok)
}
