package activity

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pledgefox/PledgeFox/app/models"
	"github.com/pledgefox/PledgeFox/internal/pkg/billing"
)

// InvoiceSource is the slice of the billing client the feed needs.
type InvoiceSource interface {
	ListInvoices(ctx context.Context, customerRef string, limit int, startingAfter string) (billing.InvoicePage, error)
	GetContributionStatus(ctx context.Context, customerRef string) (billing.ContributionStatus, error)
}

// EventSource is the slice of the audit-row repository the feed needs.
type EventSource interface {
	ListByUser(userID uint, kinds []string, limit int) ([]models.PledgeEvent, error)
}

// Service fans out to the billing API and the audit table, tolerates partial
// failure, and composes the member's activity feed.
type Service struct {
	invoices InvoiceSource
	events   EventSource
}

func NewService(invoices InvoiceSource, events EventSource) *Service {
	return &Service{invoices: invoices, events: events}
}

// feedKinds are the audit-row kinds the feed renders or derives state from.
var feedKinds = []string{
	models.EventPledgeChange,
	models.EventSubCancelScheduled,
	models.EventSubResumed,
	models.EventSubCancelled,
	models.EventPaymentFailed,
}

// FeedOptions controls one feed build.
type FeedOptions struct {
	Limit            int
	IncludeScheduled bool
}

// BuildFeed fetches status, invoices and audit events concurrently and
// composes them. A failed source contributes nothing rather than failing the
// whole feed; only when every source fails does BuildFeed return an error.
func (s *Service) BuildFeed(ctx context.Context, user *models.User, opts FeedOptions) (Feed, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = CapCompact
	}

	var (
		wg       sync.WaitGroup
		invoices []billing.Invoice
		events   []Event
		status   StatusSummary

		invErr, evErr, statusErr error
	)

	hasBilling := user.BillingCustomerRef != ""
	if hasBilling {
		wg.Add(2)
		go func() {
			defer wg.Done()
			page, err := s.invoices.ListInvoices(ctx, user.BillingCustomerRef, limit, "")
			if err != nil {
				invErr = err
				return
			}
			invoices = page.Invoices
		}()
		go func() {
			defer wg.Done()
			st, err := s.invoices.GetContributionStatus(ctx, user.BillingCustomerRef)
			if err != nil {
				statusErr = err
				return
			}
			status = StatusSummary{
				PledgeCents:     st.PledgeCents(),
				NextBillingUnix: st.NextBillingUnix,
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		rows, err := s.events.ListByUser(user.ID, feedKinds, limit*2)
		if err != nil {
			evErr = err
			return
		}
		events = eventsFromModels(rows)
	}()

	wg.Wait()

	for _, err := range []error{invErr, statusErr, evErr} {
		if err != nil {
			log.Printf("Activity feed partial fetch failure for user %d: %v", user.ID, err)
		}
	}
	allFailed := evErr != nil && (!hasBilling || (invErr != nil && statusErr != nil))
	if allFailed {
		return Feed{}, evErr
	}

	in := Input{
		Invoices:         invoices,
		Events:           events,
		Status:           status,
		IncludeScheduled: opts.IncludeScheduled,
	}
	return Compose(in, time.Now(), limit), nil
}
