package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pledgefox/PledgeFox/app/models"
	"github.com/pledgefox/PledgeFox/internal/pkg/billing"
	"github.com/pledgefox/PledgeFox/internal/pkg/format"
)

func TestPickUnix(t *testing.T) {
	assert.Equal(t, int64(10), pickUnix(0, 10, 20))
	assert.Equal(t, int64(5), pickUnix(5, 10))
	assert.Equal(t, int64(0), pickUnix(0, 0, 0))
	assert.Equal(t, int64(0), pickUnix())
	// Negative candidates never win.
	assert.Equal(t, int64(7), pickUnix(-3, 7))
}

func TestInvoiceTimestampPreference(t *testing.T) {
	inv := billing.Invoice{
		PaidAtUnix:    100,
		PeriodEndUnix: 300,
		CreatedUnix:   400,
	}
	inv.StatusTransitions.FinalizedAt = 200
	assert.Equal(t, int64(100), invoiceDateUnix(inv))

	inv.PaidAtUnix = 0
	assert.Equal(t, int64(200), invoiceDateUnix(inv))

	inv.StatusTransitions.FinalizedAt = 0
	assert.Equal(t, int64(300), invoiceDateUnix(inv))

	inv.PeriodEndUnix = 0
	assert.Equal(t, int64(400), invoiceDateUnix(inv))
}

func TestNormalizePaidInvoice(t *testing.T) {
	it := NormalizeInvoice(billing.Invoice{
		ID:          "in_1",
		Status:      "paid",
		AmountPaid:  5000,
		CreatedUnix: 1700000000,
	})
	assert.Equal(t, TypePaid, it.Type)
	assert.Equal(t, int64(1700000000), it.DateUnix)
	assert.Equal(t, "$50.00", it.Amount)
}

func TestNormalizeVoidInvoiceWithoutTimestamp(t *testing.T) {
	it := NormalizeInvoice(billing.Invoice{
		ID:        "in_2",
		Status:    "void",
		AmountDue: 2000,
	})
	assert.Equal(t, TypeFailed, it.Type)
	assert.Equal(t, int64(0), it.DateUnix)
	assert.Equal(t, "$20.00", it.Amount)
	assert.Empty(t, it.Right)
}

func TestClassifyInvoice(t *testing.T) {
	tests := []struct {
		status string
		want   ItemType
	}{
		{"paid", TypePaid},
		{"void", TypeFailed},
		{"uncollectible", TypeFailed},
		{"open", TypeUpcoming},
		{"draft", TypeUpcoming},
		{"unpaid", TypeUpcoming},
		{"", TypeUpcoming},
		{"something_new", TypeUpcoming},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyInvoice(tt.status), "status %q", tt.status)
	}
}

func TestNormalizePledgeChangeRendersWholeDollars(t *testing.T) {
	it, ok := NormalizeEvent(event(models.EventPledgeChange, time.Unix(1700000000, 0), 5000, 7500, models.EventMeta{}))
	require.True(t, ok)
	assert.Equal(t, TypePledgeChange, it.Type)
	assert.Equal(t, "$50 → $75", it.Amount)

	// Decrease renders old-left, new-right just the same.
	it, ok = NormalizeEvent(event(models.EventPledgeChange, time.Unix(1700000000, 0), 7500, 5000, models.EventMeta{}))
	require.True(t, ok)
	assert.Equal(t, "$75 → $50", it.Amount)
}

func TestNormalizePledgeChangeFallbackOldAmount(t *testing.T) {
	it, ok := NormalizeEvent(event(models.EventPledgeChange, time.Unix(1700000000, 0), 0, 7500,
		models.EventMeta{PrevCents: 5000}))
	require.True(t, ok)
	assert.Equal(t, "$50 → $75", it.Amount)
}

func TestNormalizeCancelledShowsTransitionToZero(t *testing.T) {
	it, ok := NormalizeEvent(event(models.EventSubCancelled, time.Unix(1700000000, 0), 0, 0,
		models.EventMeta{PrevCents: 5000}))
	require.True(t, ok)
	assert.Equal(t, TypeFailed, it.Type)
	assert.Equal(t, "Membership cancelled", it.Title)
	assert.Equal(t, "$50 → $0", it.Amount)
}

func TestNormalizePaymentFailed(t *testing.T) {
	it, ok := NormalizeEvent(event(models.EventPaymentFailed, time.Unix(1700000000, 0), 0, 0,
		models.EventMeta{AmountDue: 2500, InvoiceID: "in_9"}))
	require.True(t, ok)
	assert.Equal(t, TypeFailed, it.Type)
	assert.Equal(t, "$25.00", it.Amount)
	assert.Equal(t, "invfail|in_9|2500", it.DedupeKey())
}

func TestNormalizeUnknownKindSkipped(t *testing.T) {
	_, ok := NormalizeEvent(event("some-future-kind", time.Unix(1700000000, 0), 0, 0, models.EventMeta{}))
	assert.False(t, ok)
}

func TestNormalizeScheduledOrdersByEventTime(t *testing.T) {
	created := time.Unix(1700000000, 0)
	it, ok := NormalizeScheduled(event(models.EventSubCancelScheduled, created, 0, 0,
		models.EventMeta{CancelAtUnix: 1701000000}))
	require.True(t, ok)
	assert.Equal(t, TypeUpcoming, it.Type)
	// Sorts by when the cancellation was scheduled, not by the end date.
	assert.Equal(t, created.Unix(), it.DateUnix)
	assert.Equal(t, "Ends "+format.LocalDate(1701000000), it.Amount)
	assert.Equal(t, "sched|1701000000", it.DedupeKey())
}

func TestNormalizeScheduledWithoutDateFallsBackToEndOfPeriod(t *testing.T) {
	it, ok := NormalizeScheduled(event(models.EventSubCancelScheduled, time.Unix(1700000000, 0), 0, 0,
		models.EventMeta{}))
	require.True(t, ok)
	assert.Equal(t, "Ends end of period", it.Amount)
	assert.Equal(t, "sched|0", it.DedupeKey())
}

func TestScheduledCancelUnixResolution(t *testing.T) {
	assert.Equal(t, int64(1701000000), scheduledCancelUnix(models.EventMeta{CancelAtUnix: 1701000000}))

	want := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC).Unix()
	assert.Equal(t, want, scheduledCancelUnix(models.EventMeta{CancelAtISO: "2025-12-01T00:00:00Z"}))
	assert.Equal(t, want, scheduledCancelUnix(models.EventMeta{CancelAtISO: "2025-12-01"}))
	assert.Equal(t, int64(0), scheduledCancelUnix(models.EventMeta{CancelAtISO: "not a date"}))
}

func TestSynthesizeUpcoming(t *testing.T) {
	now := time.Unix(1700100000, 0)

	it, ok := SynthesizeUpcoming(StatusSummary{PledgeCents: 5000, NextBillingUnix: now.Add(48 * time.Hour).Unix()}, now)
	require.True(t, ok)
	assert.Equal(t, TypeUpcoming, it.Type)
	assert.Equal(t, "$50.00", it.Amount)

	// No pledge, no row.
	_, ok = SynthesizeUpcoming(StatusSummary{PledgeCents: 0, NextBillingUnix: now.Unix()}, now)
	assert.False(t, ok)

	// No next-billing timestamp, no row.
	_, ok = SynthesizeUpcoming(StatusSummary{PledgeCents: 5000}, now)
	assert.False(t, ok)

	// A few hours past is still fresh.
	_, ok = SynthesizeUpcoming(StatusSummary{PledgeCents: 5000, NextBillingUnix: now.Add(-6 * time.Hour).Unix()}, now)
	assert.True(t, ok)

	// More than a day past is stale.
	_, ok = SynthesizeUpcoming(StatusSummary{PledgeCents: 5000, NextBillingUnix: now.Add(-25 * time.Hour).Unix()}, now)
	assert.False(t, ok)
}

func TestSynthesizedKeyMatchesRealInvoiceKey(t *testing.T) {
	periodEnd := int64(1700090000)
	inv := NormalizeInvoice(billing.Invoice{ID: "in_n", Status: "open", AmountDue: 5000, PeriodEndUnix: periodEnd})
	synth, ok := SynthesizeUpcoming(StatusSummary{PledgeCents: 5000, NextBillingUnix: periodEnd}, time.Unix(1700000000, 0))
	require.True(t, ok)
	assert.Equal(t, inv.DedupeKey(), synth.DedupeKey())
}

func TestFallbackDedupeKey(t *testing.T) {
	it := Item{Type: TypePaid, DateUnix: 1700000000, Right: "Nov 14, 2023", Amount: "$50.00", Href: "https://x"}
	assert.Equal(t, "paid|1700000000|Nov 14, 2023|$50.00|https://x", it.DedupeKey())
}
