package billing

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ListMembers queries the admin member list. query filters by name/email
// substring, status by subscription status; both may be empty.
func (c *Client) ListMembers(ctx context.Context, query, status string) ([]AdminMember, error) {
	params := url.Values{}
	if query = strings.TrimSpace(query); query != "" {
		params.Set("q", query)
	}
	if status = strings.TrimSpace(status); status != "" {
		params.Set("status", status)
	}
	var out struct {
		Members []AdminMember `json:"members"`
	}
	if err := c.get(ctx, "admin-list-members", params, &out); err != nil {
		return nil, err
	}
	return out.Members, nil
}

// GetMember fetches one member's detail including recent invoices, for the
// admin drawer.
func (c *Client) GetMember(ctx context.Context, memberRef string) (AdminMemberDetail, error) {
	var out AdminMemberDetail
	if strings.TrimSpace(memberRef) == "" {
		return out, errors.New("member ref is required")
	}
	params := url.Values{}
	params.Set("member", memberRef)
	err := c.get(ctx, "admin-get-member", params, &out)
	return out, err
}

// OpenPortalForMember creates a billing-portal session on a member's behalf.
func (c *Client) OpenPortalForMember(ctx context.Context, memberRef string, returnURL string) (string, error) {
	if strings.TrimSpace(memberRef) == "" {
		return "", errors.New("member ref is required")
	}
	var out struct {
		URL string `json:"url"`
	}
	payload := map[string]any{
		"member":     memberRef,
		"return_url": returnURL,
	}
	if err := c.post(ctx, "admin-open-portal", payload, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.URL) == "" {
		return "", errors.New("billing portal returned empty url")
	}
	return out.URL, nil
}

// CancelSubscription schedules a member's subscription to end at period end.
func (c *Client) CancelSubscription(ctx context.Context, memberRef string) error {
	if strings.TrimSpace(memberRef) == "" {
		return errors.New("member ref is required")
	}
	return c.post(ctx, "admin-cancel-subscription", map[string]any{"member": memberRef}, nil)
}

// ResendInvoice asks the provider to re-send the email for an open invoice.
func (c *Client) ResendInvoice(ctx context.Context, invoiceID string) error {
	if strings.TrimSpace(invoiceID) == "" {
		return errors.New("invoice id is required")
	}
	return c.post(ctx, "admin-resend-invoice", map[string]any{"invoice": invoiceID}, nil)
}

// InviteMember provisions a billing customer for an invited member and
// returns the new customer ref.
func (c *Client) InviteMember(ctx context.Context, email, fullName string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", errors.New("email is required")
	}
	var out struct {
		CustomerRef string `json:"customer_ref"`
	}
	payload := map[string]any{
		"email":     email,
		"full_name": fullName,
	}
	if err := c.post(ctx, "admin-invite-member", payload, &out); err != nil {
		return "", err
	}
	return out.CustomerRef, nil
}
