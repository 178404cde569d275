package activity

import (
	"sort"
	"time"

	"github.com/pledgefox/PledgeFox/internal/pkg/billing"
)

// Default feed caps. The account page shows a short feed, the dedicated
// activity view a longer one.
const (
	CapCompact = 15
	CapFull    = 50
)

// Input bundles the three upstream sources for one composition pass.
type Input struct {
	Invoices []billing.Invoice
	Events   []Event
	Status   StatusSummary

	// IncludeScheduled renders cancel-scheduled events as list rows showing
	// the scheduled end date (the long feed); the compact feed leaves them to
	// the banner only.
	IncludeScheduled bool
}

// Compose merges invoices, audit events and the synthesized upcoming charge
// into one deduplicated feed, newest first, capped at limit items. now is the
// reference time for the upcoming-charge freshness check; composing the same
// input with the same now always yields the same feed.
func Compose(in Input, now time.Time, limit int) Feed {
	if limit <= 0 {
		limit = CapCompact
	}

	seen := make(map[string]struct{})
	items := make([]Item, 0, len(in.Invoices)+len(in.Events)+1)
	add := func(it Item) {
		key := it.DedupeKey()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		items = append(items, it)
	}

	// Invoices first: where a real invoice and a synthesized row collide on
	// an upcoming key, the invoice wins and carries its payment link.
	for _, inv := range in.Invoices {
		add(NormalizeInvoice(inv))
	}
	for _, ev := range in.Events {
		if it, ok := NormalizeEvent(ev); ok {
			add(it)
		}
	}
	if in.IncludeScheduled {
		for _, ev := range in.Events {
			if it, ok := NormalizeScheduled(ev); ok {
				add(it)
			}
		}
	}
	if it, ok := SynthesizeUpcoming(in.Status, now); ok {
		add(it)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DateUnix != items[j].DateUnix {
			return items[i].DateUnix > items[j].DateUnix
		}
		return priority(items[i].Type) > priority(items[j].Type)
	})

	if len(items) > limit {
		items = items[:limit]
	}

	return Feed{Items: items, Scheduled: bannerFrom(in.Events)}
}
