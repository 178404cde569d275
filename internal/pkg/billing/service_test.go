package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pledgefox/PledgeFox/app/models"
)

type fakeWebhookRepo struct {
	seen      map[string]bool
	stored    []models.BillingWebhookEvent
	processed []uint
	nextID    uint
}

func newFakeWebhookRepo() *fakeWebhookRepo {
	return &fakeWebhookRepo{seen: make(map[string]bool)}
}

func (r *fakeWebhookRepo) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	if r.seen[event.ProviderEventID] {
		return false, event, nil
	}
	r.seen[event.ProviderEventID] = true
	r.nextID++
	event.ID = r.nextID
	r.stored = append(r.stored, *event)
	return true, event, nil
}

func (r *fakeWebhookRepo) MarkWebhookProcessed(id uint, processingError string) error {
	r.processed = append(r.processed, id)
	return nil
}

type fakeUsers struct {
	byRef   map[string]*models.User
	updated *models.User
}

func (f *fakeUsers) GetByBillingCustomerRef(ref string) (*models.User, error) {
	if u, ok := f.byRef[ref]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) Update(user *models.User) error {
	f.updated = user
	return nil
}

type fakeWriter struct {
	rows []models.PledgeEvent
}

func (f *fakeWriter) CreateIfNotExists(event *models.PledgeEvent) (bool, error) {
	f.rows = append(f.rows, *event)
	return true, nil
}

func TestIngestRecordsEventAndUpdatesUser(t *testing.T) {
	repo := newFakeWebhookRepo()
	users := &fakeUsers{byRef: map[string]*models.User{
		"cus_1": {ID: 7, MonthlyPledgeCents: 5000, BillingCustomerRef: "cus_1"},
	}}
	writer := &fakeWriter{}
	svc := NewIngestService(repo, users, writer)

	payload := []byte(`{"event_id":"evt_1","type":"pledge.changed","customer_ref":"cus_1","old_cents":5000,"new_cents":7500}`)
	created, err := svc.Ingest(context.Background(), payload, true)
	require.NoError(t, err)
	assert.True(t, created)

	require.Len(t, writer.rows, 1)
	assert.Equal(t, models.EventPledgeChange, writer.rows[0].Kind)
	assert.Equal(t, uint(7), writer.rows[0].UserID)

	require.NotNil(t, users.updated)
	assert.Equal(t, int64(7500), users.updated.MonthlyPledgeCents)
	assert.Equal(t, []uint{1}, repo.processed)
}

func TestIngestDuplicateIsNoOp(t *testing.T) {
	repo := newFakeWebhookRepo()
	users := &fakeUsers{byRef: map[string]*models.User{"cus_1": {ID: 7}}}
	writer := &fakeWriter{}
	svc := NewIngestService(repo, users, writer)

	payload := []byte(`{"event_id":"evt_1","type":"pledge.changed","customer_ref":"cus_1","new_cents":7500}`)
	created, err := svc.Ingest(context.Background(), payload, true)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Ingest(context.Background(), payload, true)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, writer.rows, 1)
}

func TestIngestCancelScheduledSetsCancelAt(t *testing.T) {
	repo := newFakeWebhookRepo()
	user := &models.User{ID: 7}
	users := &fakeUsers{byRef: map[string]*models.User{"cus_1": user}}
	svc := NewIngestService(repo, users, &fakeWriter{})

	payload := []byte(`{"event_id":"evt_2","type":"subscription.cancel_scheduled","customer_ref":"cus_1","meta":{"cancel_at_unix":1701000000}}`)
	_, err := svc.Ingest(context.Background(), payload, true)
	require.NoError(t, err)

	require.NotNil(t, user.MembershipCancelAt)
	assert.Equal(t, int64(1701000000), user.MembershipCancelAt.Unix())
}

func TestIngestResumeClearsCancelAt(t *testing.T) {
	repo := newFakeWebhookRepo()
	user := &models.User{ID: 7}
	at := user.CreatedAt
	user.MembershipCancelAt = &at
	users := &fakeUsers{byRef: map[string]*models.User{"cus_1": user}}
	svc := NewIngestService(repo, users, &fakeWriter{})

	payload := []byte(`{"event_id":"evt_3","type":"subscription.resumed","customer_ref":"cus_1"}`)
	_, err := svc.Ingest(context.Background(), payload, true)
	require.NoError(t, err)
	assert.Nil(t, user.MembershipCancelAt)
}

func TestIngestUnsignedDeliveryIsStoredButNotApplied(t *testing.T) {
	repo := newFakeWebhookRepo()
	user := &models.User{ID: 7, MonthlyPledgeCents: 5000, BillingCustomerRef: "cus_1"}
	users := &fakeUsers{byRef: map[string]*models.User{"cus_1": user}}
	writer := &fakeWriter{}
	svc := NewIngestService(repo, users, writer)

	payload := []byte(`{"event_id":"evt_forged","type":"pledge.changed","customer_ref":"cus_1","new_cents":1}`)
	created, err := svc.Ingest(context.Background(), payload, false)
	require.NoError(t, err)
	assert.True(t, created)

	// Stored for the audit trail, with the honest verification outcome.
	require.Len(t, repo.stored, 1)
	assert.False(t, repo.stored[0].SignatureValid)
	assert.Equal(t, []uint{1}, repo.processed)

	// The member record and audit log stay untouched.
	assert.Empty(t, writer.rows)
	assert.Nil(t, users.updated)
	assert.Equal(t, int64(5000), user.MonthlyPledgeCents)
}

func TestIngestUnknownCustomerStoresButErrors(t *testing.T) {
	repo := newFakeWebhookRepo()
	users := &fakeUsers{byRef: map[string]*models.User{}}
	svc := NewIngestService(repo, users, &fakeWriter{})

	payload := []byte(`{"event_id":"evt_4","type":"pledge.changed","customer_ref":"cus_missing","new_cents":5000}`)
	created, err := svc.Ingest(context.Background(), payload, true)
	assert.True(t, created)
	assert.Error(t, err)
	// The delivery is still stored, so a redelivery stays a duplicate.
	assert.True(t, repo.seen["evt_4"])
}
