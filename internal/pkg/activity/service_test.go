package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pledgefox/PledgeFox/app/models"
	"github.com/pledgefox/PledgeFox/internal/pkg/billing"
)

type fakeBilling struct {
	page      billing.InvoicePage
	pageErr   error
	status    billing.ContributionStatus
	statusErr error
}

func (f *fakeBilling) ListInvoices(ctx context.Context, customerRef string, limit int, startingAfter string) (billing.InvoicePage, error) {
	return f.page, f.pageErr
}

func (f *fakeBilling) GetContributionStatus(ctx context.Context, customerRef string) (billing.ContributionStatus, error) {
	return f.status, f.statusErr
}

type fakeEvents struct {
	rows []models.PledgeEvent
	err  error
}

func (f *fakeEvents) ListByUser(userID uint, kinds []string, limit int) ([]models.PledgeEvent, error) {
	return f.rows, f.err
}

func TestBuildFeedMergesAllSources(t *testing.T) {
	fb := &fakeBilling{
		page: billing.InvoicePage{Invoices: []billing.Invoice{
			{ID: "in_1", Status: "paid", AmountPaid: 5000, PaidAtUnix: 1700000000},
		}},
	}
	fe := &fakeEvents{rows: []models.PledgeEvent{
		{Kind: models.EventPledgeChange, OldCents: 2500, NewCents: 5000, CreatedAt: time.Unix(1699990000, 0)},
	}}

	svc := NewService(fb, fe)
	user := &models.User{ID: 1, BillingCustomerRef: "cus_1"}
	feed, err := svc.BuildFeed(context.Background(), user, FeedOptions{Limit: CapCompact})
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, TypePaid, feed.Items[0].Type)
	assert.Equal(t, TypePledgeChange, feed.Items[1].Type)
}

func TestBuildFeedToleratesBillingFailure(t *testing.T) {
	fb := &fakeBilling{
		pageErr:   errors.New("upstream down"),
		statusErr: errors.New("upstream down"),
	}
	fe := &fakeEvents{rows: []models.PledgeEvent{
		{Kind: models.EventSubResumed, CreatedAt: time.Unix(1700000000, 0)},
	}}

	svc := NewService(fb, fe)
	user := &models.User{ID: 1, BillingCustomerRef: "cus_1"}
	feed, err := svc.BuildFeed(context.Background(), user, FeedOptions{})
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "Cancellation removed", feed.Items[0].Title)
}

func TestBuildFeedFailsOnlyWhenAllSourcesFail(t *testing.T) {
	fb := &fakeBilling{
		pageErr:   errors.New("upstream down"),
		statusErr: errors.New("upstream down"),
	}
	fe := &fakeEvents{err: errors.New("db down")}

	svc := NewService(fb, fe)
	user := &models.User{ID: 1, BillingCustomerRef: "cus_1"}
	_, err := svc.BuildFeed(context.Background(), user, FeedOptions{})
	assert.Error(t, err)
}

func TestBuildFeedWithoutBillingRefSkipsBilling(t *testing.T) {
	fe := &fakeEvents{err: errors.New("db down")}
	svc := NewService(&fakeBilling{}, fe)

	// Events are the only source, so their failure is a feed failure.
	_, err := svc.BuildFeed(context.Background(), &models.User{ID: 2}, FeedOptions{})
	assert.Error(t, err)
}
