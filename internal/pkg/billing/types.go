package billing

// Invoice is one invoice snapshot as returned by the list-invoices function.
// The function normalizes most payment-provider fields, but older deployments
// still ship the raw provider shape, so every timestamp candidate is kept and
// resolution happens in the activity adapter with a fixed preference order.
type Invoice struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`

	PaidAtUnix      int64 `json:"paid_at_unix"`
	FinalizedAtUnix int64 `json:"finalized_at_unix"`
	PeriodEndUnix   int64 `json:"period_end_unix"`
	PeriodEnd       int64 `json:"period_end"`
	CreatedUnix     int64 `json:"created_unix"`
	Created         int64 `json:"created"`

	StatusTransitions struct {
		PaidAt      int64 `json:"paid_at"`
		FinalizedAt int64 `json:"finalized_at"`
	} `json:"status_transitions"`

	HostedInvoiceURL string `json:"hosted_invoice_url"`
	InvoicePDF       string `json:"invoice_pdf"`
	URL              string `json:"url"`
}

// HostedURL returns the best receipt link for an invoice, if any.
func (i Invoice) HostedURL() string {
	switch {
	case i.HostedInvoiceURL != "":
		return i.HostedInvoiceURL
	case i.InvoicePDF != "":
		return i.InvoicePDF
	default:
		return i.URL
	}
}

// InvoicePage is the paginated response of the list-invoices function.
type InvoicePage struct {
	Invoices   []Invoice `json:"invoices"`
	HasMore    bool      `json:"has_more"`
	NextCursor string    `json:"next_cursor"`
}

// ContributionStatus is the per-member snapshot returned by the
// get-contribution-status function: current pledge, subscription state and the
// default payment method.
type ContributionStatus struct {
	Member struct {
		FullName                 string `json:"full_name"`
		Email                    string `json:"email"`
		MonthlyContributionCents int64  `json:"monthly_contribution_cents"`
		BillingCustomerRef       string `json:"billing_customer_ref"`
		BillingSubscriptionRef   string `json:"billing_subscription_ref"`
		MembershipCancelAt       string `json:"membership_cancel_at"`
	} `json:"member"`
	CurrentCents    int64  `json:"current_cents"`
	NextBillingUnix int64  `json:"next_billing_unix"`
	NextBillingISO  string `json:"next_billing_iso"`
	Subscription    *struct {
		Status            string `json:"status"`
		CancelAt          int64  `json:"cancel_at"`
		CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	} `json:"subscription"`
	DefaultPaymentMethod *struct {
		Brand    string `json:"brand"`
		Last4    string `json:"last4"`
		ExpMonth int    `json:"exp_month"`
		ExpYear  int    `json:"exp_year"`
	} `json:"default_payment_method"`
}

// PledgeCents resolves the member's current monthly pledge, preferring the
// member record over the top-level fallback field.
func (s ContributionStatus) PledgeCents() int64 {
	if s.Member.MonthlyContributionCents > 0 {
		return s.Member.MonthlyContributionCents
	}
	return s.CurrentCents
}

// HasSubscription reports whether the snapshot carries any subscription-like
// state (an active-ish status or a stored subscription reference).
func (s ContributionStatus) HasSubscription() bool {
	if s.Subscription != nil {
		switch s.Subscription.Status {
		case "active", "trialing", "past_due", "unpaid":
			return true
		}
	}
	return s.Member.BillingSubscriptionRef != ""
}

// StartContributionResult is the union returned by start-contribution: either
// the pledge was updated in place, or the caller must redirect the member to a
// checkout or billing-portal URL.
type StartContributionResult struct {
	Updated          bool   `json:"updated"`
	CheckoutURL      string `json:"checkout_url"`
	BillingPortalURL string `json:"billing_portal_url"`
	URL              string `json:"url"`
	CustomerRef      string `json:"customer_ref"`
}

// RedirectURL returns the URL the member should be sent to, if any.
func (r StartContributionResult) RedirectURL() string {
	switch {
	case r.CheckoutURL != "":
		return r.CheckoutURL
	case r.BillingPortalURL != "":
		return r.BillingPortalURL
	default:
		return r.URL
	}
}

// AdminMember is one row of the admin-list-members function.
type AdminMember struct {
	MemberRef          string `json:"member_ref"`
	Email              string `json:"email"`
	FullName           string `json:"full_name"`
	Status             string `json:"status"`
	MonthlyCents       int64  `json:"monthly_cents"`
	SubscriptionStatus string `json:"subscription_status"`
	CancelAtISO        string `json:"cancel_at_iso"`
}

// AdminMemberDetail is the drawer payload of admin-get-member.
type AdminMemberDetail struct {
	AdminMember
	Invoices []Invoice `json:"invoices"`
}

// WebhookEvent is the payload the billing functions POST back to us when the
// payment provider reports a subscription lifecycle change. One event maps to
// at most one pledge_events audit row.
type WebhookEvent struct {
	EventID     string `json:"event_id"`
	Type        string `json:"type"`
	CustomerRef string `json:"customer_ref"`
	CreatedUnix int64  `json:"created_unix"`
	OldCents    int64  `json:"old_cents"`
	NewCents    int64  `json:"new_cents"`
	Meta        struct {
		CancelAtUnix int64  `json:"cancel_at_unix"`
		CancelAtISO  string `json:"cancel_at_iso"`
		AmountDue    int64  `json:"amount_due"`
		PrevCents    int64  `json:"prev_cents"`
		InvoiceID    string `json:"invoice_id"`
	} `json:"meta"`
}
