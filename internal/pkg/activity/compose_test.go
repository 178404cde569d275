package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pledgefox/PledgeFox/app/models"
	"github.com/pledgefox/PledgeFox/internal/pkg/billing"
)

var composeNow = time.Unix(1700100000, 0)

func event(kind string, createdAt time.Time, old, new int64, meta models.EventMeta) Event {
	ev := models.PledgeEvent{
		Kind:      kind,
		CreatedAt: createdAt,
		OldCents:  old,
		NewCents:  new,
	}
	_ = ev.SetMeta(meta)
	return FromPledgeEvent(ev)
}

func TestComposeIdempotent(t *testing.T) {
	in := Input{
		Invoices: []billing.Invoice{
			{ID: "in_1", Status: "paid", AmountPaid: 5000, CreatedUnix: 1700000000},
			{ID: "in_2", Status: "open", AmountDue: 5000, PeriodEndUnix: 1700050000},
		},
		Events: []Event{
			event(models.EventPledgeChange, time.Unix(1699990000, 0), 5000, 7500, models.EventMeta{}),
		},
		Status: StatusSummary{PledgeCents: 7500, NextBillingUnix: 1700090000},
	}

	a := Compose(in, composeNow, CapFull)
	b := Compose(in, composeNow, CapFull)
	assert.Equal(t, a, b)
}

func TestComposeNoDuplicateKeys(t *testing.T) {
	in := Input{
		Invoices: []billing.Invoice{
			{ID: "in_1", Status: "open", AmountDue: 5000, PeriodEndUnix: 1700090000},
			{ID: "in_1", Status: "open", AmountDue: 5000, PeriodEndUnix: 1700090000},
		},
		Events: []Event{
			event(models.EventSubResumed, time.Unix(1699990000, 0), 0, 0, models.EventMeta{}),
			event(models.EventSubResumed, time.Unix(1699980000, 0), 0, 0, models.EventMeta{}),
		},
		Status: StatusSummary{PledgeCents: 5000, NextBillingUnix: 1700090000},
	}

	feed := Compose(in, composeNow, CapFull)
	seen := make(map[string]bool)
	for _, it := range feed.Items {
		require.False(t, seen[it.DedupeKey()], "duplicate key %q", it.DedupeKey())
		seen[it.DedupeKey()] = true
	}
	// Two identical upcoming invoices collapse, the synthesized row collapses
	// into them, and the two resumed events collapse. Two rows remain.
	assert.Len(t, feed.Items, 2)
}

func TestComposeOrderingAndTieBreak(t *testing.T) {
	sameDay := int64(1700000000)
	in := Input{
		Invoices: []billing.Invoice{
			{ID: "in_paid", Status: "paid", AmountPaid: 5000, PaidAtUnix: sameDay},
			{ID: "in_up", Status: "open", AmountDue: 7500, PeriodEndUnix: sameDay},
			{ID: "in_void", Status: "void", AmountDue: 2000}, // no timestamp, sorts last
			{ID: "in_old", Status: "paid", AmountPaid: 5000, PaidAtUnix: sameDay - 86400},
		},
	}

	feed := Compose(in, composeNow, CapFull)
	require.Len(t, feed.Items, 4)

	for i := 0; i+1 < len(feed.Items); i++ {
		a, b := feed.Items[i], feed.Items[i+1]
		ok := a.DateUnix > b.DateUnix ||
			(a.DateUnix == b.DateUnix && priority(a.Type) >= priority(b.Type))
		assert.True(t, ok, "items %d and %d out of order", i, i+1)
	}

	// Same-second tie: the future charge sorts above the completed one.
	assert.Equal(t, TypeUpcoming, feed.Items[0].Type)
	assert.Equal(t, TypePaid, feed.Items[1].Type)
	// Timestampless item sorts last.
	assert.Equal(t, TypeFailed, feed.Items[3].Type)
	assert.Equal(t, int64(0), feed.Items[3].DateUnix)
}

func TestComposeCapKeepsNewest(t *testing.T) {
	var invoices []billing.Invoice
	base := int64(1700000000)
	for i := 0; i < 20; i++ {
		invoices = append(invoices, billing.Invoice{
			ID:         "in_" + string(rune('a'+i)),
			Status:     "paid",
			AmountPaid: int64(1000 + i),
			PaidAtUnix: base + int64(i)*3600,
		})
	}

	feed := Compose(Input{Invoices: invoices}, composeNow, CapCompact)
	require.Len(t, feed.Items, CapCompact)
	// Newest retained, oldest five dropped.
	assert.Equal(t, base+19*3600, feed.Items[0].DateUnix)
	assert.Equal(t, base+5*3600, feed.Items[len(feed.Items)-1].DateUnix)
}

func TestBannerShownForActiveSchedule(t *testing.T) {
	t1 := time.Unix(1700000000, 0)
	in := Input{
		Events: []Event{
			event(models.EventSubCancelScheduled, t1, 0, 0, models.EventMeta{CancelAtISO: "2025-12-01"}),
		},
	}

	feed := Compose(in, composeNow, CapCompact)
	require.NotNil(t, feed.Scheduled)
	assert.Equal(t, t1, feed.Scheduled.CreatedAt)
	assert.Equal(t, "2025-12-01", feed.Scheduled.CancelAtISO)
}

func TestBannerClearedByLaterResume(t *testing.T) {
	t1 := time.Unix(1700000000, 0)
	t2 := t1.Add(time.Hour)
	in := Input{
		Events: []Event{
			event(models.EventSubCancelScheduled, t1, 0, 0, models.EventMeta{CancelAtISO: "2025-12-01"}),
			event(models.EventSubResumed, t2, 0, 0, models.EventMeta{}),
		},
	}

	feed := Compose(in, composeNow, CapCompact)
	assert.Nil(t, feed.Scheduled)
}

func TestBannerRescheduledAfterResume(t *testing.T) {
	t1 := time.Unix(1700000000, 0)
	in := Input{
		Events: []Event{
			event(models.EventSubCancelScheduled, t1, 0, 0, models.EventMeta{CancelAtISO: "2025-12-01"}),
			event(models.EventSubResumed, t1.Add(time.Hour), 0, 0, models.EventMeta{}),
			event(models.EventSubCancelScheduled, t1.Add(2*time.Hour), 0, 0, models.EventMeta{CancelAtISO: "2026-01-01"}),
		},
	}

	feed := Compose(in, composeNow, CapCompact)
	require.NotNil(t, feed.Scheduled)
	assert.Equal(t, "2026-01-01", feed.Scheduled.CancelAtISO)
}

func TestSynthesizedUpcomingSuppressedByRealInvoice(t *testing.T) {
	periodEnd := int64(1700090000)
	in := Input{
		Invoices: []billing.Invoice{
			{ID: "in_next", Status: "open", AmountDue: 5000, PeriodEndUnix: periodEnd, HostedInvoiceURL: "https://pay.example/in_next"},
		},
		Status: StatusSummary{PledgeCents: 5000, NextBillingUnix: periodEnd},
	}

	feed := Compose(in, composeNow, CapCompact)
	require.Len(t, feed.Items, 1)
	// The real invoice wins the key and keeps its payment link.
	assert.Equal(t, TypeUpcoming, feed.Items[0].Type)
	assert.Equal(t, "https://pay.example/in_next", feed.Items[0].Href)
}

func TestSynthesizedUpcomingWithoutInvoice(t *testing.T) {
	in := Input{
		Status: StatusSummary{PledgeCents: 5000, NextBillingUnix: composeNow.Add(72 * time.Hour).Unix()},
	}

	feed := Compose(in, composeNow, CapCompact)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, TypeUpcoming, feed.Items[0].Type)
	assert.Equal(t, "$50.00", feed.Items[0].Amount)
}

func TestScheduledRowOnlyInLongVariant(t *testing.T) {
	events := []Event{
		event(models.EventSubCancelScheduled, time.Unix(1700000000, 0), 0, 0,
			models.EventMeta{CancelAtUnix: 1701000000}),
	}

	compact := Compose(Input{Events: events}, composeNow, CapCompact)
	assert.Empty(t, compact.Items)
	require.NotNil(t, compact.Scheduled)

	long := Compose(Input{Events: events, IncludeScheduled: true}, composeNow, CapFull)
	require.Len(t, long.Items, 1)
	assert.Equal(t, TypeUpcoming, long.Items[0].Type)
	assert.Equal(t, "Cancellation scheduled", long.Items[0].Title)
}
