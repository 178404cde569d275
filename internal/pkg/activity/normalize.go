package activity

import (
	"fmt"
	"math"
	"time"

	"github.com/pledgefox/PledgeFox/app/models"
	"github.com/pledgefox/PledgeFox/internal/pkg/billing"
	"github.com/pledgefox/PledgeFox/internal/pkg/format"
)

// maxUpcomingLag is how far past its next-billing moment an upcoming charge
// remains worth showing. Beyond that the snapshot is stale and we skip the
// synthesized row rather than advertise a charge that already settled.
const maxUpcomingLag = 24 * time.Hour

// pickUnix returns the first positive candidate, so a missing (zero) timestamp
// never wins over a later, populated one.
func pickUnix(candidates ...int64) int64 {
	for _, c := range candidates {
		if c > 0 {
			return c
		}
	}
	return 0
}

// invoiceDateUnix resolves an invoice's display timestamp. Paid time beats the
// finalization time, which beats the covered period's end, which beats the
// record creation time.
func invoiceDateUnix(inv billing.Invoice) int64 {
	return pickUnix(
		inv.PaidAtUnix, inv.StatusTransitions.PaidAt,
		inv.FinalizedAtUnix, inv.StatusTransitions.FinalizedAt,
		inv.PeriodEndUnix, inv.PeriodEnd,
		inv.CreatedUnix, inv.Created,
	)
}

// classifyInvoice maps provider invoice statuses onto the three row types the
// feed renders. Anything that is neither settled nor written off is treated as
// still upcoming (draft, open, empty).
func classifyInvoice(status string) ItemType {
	switch status {
	case "paid":
		return TypePaid
	case "void", "uncollectible":
		return TypeFailed
	default:
		return TypeUpcoming
	}
}

// roundedDollars collapses an amount in cents to whole dollars the same way
// for real and synthesized upcoming rows, so the two agree on a dedupe key.
func roundedDollars(cents int64) int64 {
	return int64(math.Round(float64(cents) / 100.0))
}

// NormalizeInvoice adapts one provider invoice into a feed row.
func NormalizeInvoice(inv billing.Invoice) Item {
	typ := classifyInvoice(inv.Status)
	dateUnix := invoiceDateUnix(inv)

	amountCents := inv.AmountPaid
	if amountCents <= 0 {
		amountCents = inv.AmountDue
	}

	it := Item{
		Type:     typ,
		DateUnix: dateUnix,
		Amount:   format.Cents(amountCents),
		Right:    format.LocalDate(dateUnix),
		Href:     inv.HostedURL(),
	}

	switch typ {
	case TypePaid:
		it.Title = "Contribution payment"
	case TypeFailed:
		it.Title = "Payment failed"
		it.dedupeKey = fmt.Sprintf("invfail|%s|%d", inv.ID, inv.AmountDue)
	case TypeUpcoming:
		it.Title = "Upcoming charge"
		// Shared with the synthesized upcoming row so only one survives.
		it.dedupeKey = fmt.Sprintf("upcoming|%d|%d", dateUnix, roundedDollars(amountCents))
	}
	return it
}

// pledgeDollars renders a pledge amount in whole dollars ("$50"); pledges are
// whole-dollar amounts everywhere they are shown.
func pledgeDollars(cents int64) string {
	return format.Dollars0(float64(cents) / 100.0)
}

// NormalizeEvent adapts a stored audit row into a feed row. The boolean is
// false for kinds that do not render as list rows here: unknown kinds, and
// cancel-scheduled rows, which feed the banner (and, in the long feed
// variant, NormalizeScheduled).
func NormalizeEvent(ev Event) (Item, bool) {
	created := ev.CreatedAt.Unix()
	if ev.CreatedAt.IsZero() {
		created = 0
	}

	switch ev.Kind {
	case KindPledgeChange:
		old := ev.OldCents
		if old == 0 && ev.Meta.PrevCents > 0 {
			old = ev.Meta.PrevCents
		}
		return Item{
			Type:     TypePledgeChange,
			DateUnix: created,
			Title:    "Pledge updated",
			Amount:   fmt.Sprintf("%s → %s", pledgeDollars(old), pledgeDollars(ev.NewCents)),
			Right:    format.LocalDate(created),
		}, true
	case KindResumed:
		return Item{
			Type:      TypePledgeChange,
			DateUnix:  created,
			Title:     "Cancellation removed",
			Right:     format.LocalDate(created),
			dedupeKey: "resumed",
		}, true
	case KindCancelled:
		amount := pledgeDollars(0)
		if ev.Meta.PrevCents > 0 {
			amount = fmt.Sprintf("%s → %s", pledgeDollars(ev.Meta.PrevCents), pledgeDollars(0))
		}
		return Item{
			Type:      TypeFailed,
			DateUnix:  created,
			Title:     "Membership cancelled",
			Amount:    amount,
			Right:     format.LocalDate(created),
			dedupeKey: "cancelled",
		}, true
	case KindPaymentFailed:
		return Item{
			Type:      TypeFailed,
			DateUnix:  created,
			Title:     "Payment failed",
			Amount:    format.Cents(ev.Meta.AmountDue),
			Right:     format.LocalDate(created),
			dedupeKey: fmt.Sprintf("invfail|%s|%d", ev.Meta.InvoiceID, ev.Meta.AmountDue),
		}, true
	default:
		return Item{}, false
	}
}

// scheduledCancelUnix resolves the effective cancellation moment, preferring
// the unix field over the ISO string.
func scheduledCancelUnix(meta models.EventMeta) int64 {
	if meta.CancelAtUnix > 0 {
		return meta.CancelAtUnix
	}
	if meta.CancelAtISO != "" {
		if t, err := time.Parse(time.RFC3339, meta.CancelAtISO); err == nil {
			return t.Unix()
		}
		if t, err := time.Parse("2006-01-02", meta.CancelAtISO); err == nil {
			return t.Unix()
		}
	}
	return 0
}

// NormalizeScheduled turns a cancel-scheduled audit row into the long-feed
// list row. The row sorts by when the cancellation was scheduled, not by the
// end date it announces; distinct rows carrying the same effective end date
// dedupe together.
func NormalizeScheduled(ev Event) (Item, bool) {
	if ev.Kind != KindCancelScheduled {
		return Item{}, false
	}
	created := ev.CreatedAt.Unix()
	if ev.CreatedAt.IsZero() {
		created = 0
	}
	cancelAt := scheduledCancelUnix(ev.Meta)
	ends := "end of period"
	if cancelAt > 0 {
		ends = format.LocalDate(cancelAt)
	}
	return Item{
		Type:      TypeUpcoming,
		DateUnix:  created,
		Title:     "Cancellation scheduled",
		Amount:    fmt.Sprintf("Ends %s", ends),
		Right:     format.LocalDate(created),
		dedupeKey: fmt.Sprintf("sched|%d", cancelAt),
	}, true
}

// SynthesizeUpcoming fabricates the next-charge row from the contribution
// status snapshot when the member has an active positive pledge and the next
// billing moment is current (not more than maxUpcomingLag in the past).
func SynthesizeUpcoming(status StatusSummary, now time.Time) (Item, bool) {
	if status.PledgeCents <= 0 || status.NextBillingUnix <= 0 {
		return Item{}, false
	}
	next := time.Unix(status.NextBillingUnix, 0)
	if now.Sub(next) > maxUpcomingLag {
		return Item{}, false
	}
	return Item{
		Type:      TypeUpcoming,
		DateUnix:  status.NextBillingUnix,
		Title:     "Upcoming charge",
		Amount:    format.Cents(status.PledgeCents),
		Right:     format.LocalDate(status.NextBillingUnix),
		dedupeKey: fmt.Sprintf("upcoming|%d|%d", status.NextBillingUnix, roundedDollars(status.PledgeCents)),
	}, true
}

// bannerFrom decides whether a scheduled cancellation is still in force: the
// newest cancel-scheduled row must be strictly newer than the newest resumed
// or cancelled row.
func bannerFrom(events []Event) *Banner {
	var latestSched *Event
	var latestOverride time.Time
	for i := range events {
		ev := &events[i]
		switch ev.Kind {
		case KindCancelScheduled:
			if latestSched == nil || ev.CreatedAt.After(latestSched.CreatedAt) {
				latestSched = ev
			}
		case KindResumed, KindCancelled:
			if ev.CreatedAt.After(latestOverride) {
				latestOverride = ev.CreatedAt
			}
		}
	}
	if latestSched == nil || !latestSched.CreatedAt.After(latestOverride) {
		return nil
	}
	iso := latestSched.Meta.CancelAtISO
	if iso == "" && latestSched.Meta.CancelAtUnix > 0 {
		iso = time.Unix(latestSched.Meta.CancelAtUnix, 0).UTC().Format(time.RFC3339)
	}
	return &Banner{CreatedAt: latestSched.CreatedAt, CancelAtISO: iso}
}

// eventsFromModels adapts stored audit rows in bulk.
func eventsFromModels(rows []models.PledgeEvent) []Event {
	out := make([]Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromPledgeEvent(r))
	}
	return out
}
