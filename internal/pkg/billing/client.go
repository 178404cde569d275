// Package billing talks to the external billing functions: a small HTTP API
// in front of the payment provider that owns customers, subscriptions and
// invoices. This application never holds payment-provider credentials itself;
// everything goes through these functions with a service token.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pledgefox/PledgeFox/internal/pkg/env"
)

const defaultFunctionsBaseURL = "http://localhost:9000/functions/v1"

// Client invokes the billing functions.
type Client struct {
	BaseURL      string
	ServiceToken string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from BILLING_FUNCTIONS_URL and
// BILLING_SERVICE_TOKEN.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL:      strings.TrimRight(env.GetEnv("BILLING_FUNCTIONS_URL", defaultFunctionsBaseURL), "/"),
		ServiceToken: strings.TrimSpace(env.GetEnv("BILLING_SERVICE_TOKEN", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// post invokes one function with a JSON body and decodes the JSON response
// into out.
func (c *Client) post(ctx context.Context, fn string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+fn, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.ServiceToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.ServiceToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("billing function %s failed: status=%d body=%s", fn, resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// get invokes one read-only function with query parameters.
func (c *Client) get(ctx context.Context, fn string, params url.Values, out any) error {
	u := c.BaseURL + "/" + fn
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.ServiceToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.ServiceToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("billing function %s failed: status=%d body=%s", fn, resp.StatusCode, string(raw))
	}
	return json.Unmarshal(raw, out)
}

// GetContributionStatus fetches the member's current pledge, subscription
// state and default payment method.
func (c *Client) GetContributionStatus(ctx context.Context, customerRef string) (ContributionStatus, error) {
	var out ContributionStatus
	if strings.TrimSpace(customerRef) == "" {
		return out, errors.New("customer ref is required")
	}
	params := url.Values{}
	params.Set("customer", customerRef)
	err := c.get(ctx, "get-contribution-status", params, &out)
	return out, err
}

// ListInvoices fetches up to limit invoices for a member, newest first.
// startingAfter is the cursor from a previous page's NextCursor.
func (c *Client) ListInvoices(ctx context.Context, customerRef string, limit int, startingAfter string) (InvoicePage, error) {
	var out InvoicePage
	if strings.TrimSpace(customerRef) == "" {
		return out, errors.New("customer ref is required")
	}
	if limit <= 0 {
		limit = 15
	}
	params := url.Values{}
	params.Set("customer", customerRef)
	params.Set("limit", strconv.Itoa(limit))
	if startingAfter != "" {
		params.Set("starting_after", startingAfter)
	}
	err := c.get(ctx, "list-invoices", params, &out)
	return out, err
}

// StartContribution sets or changes the member's monthly pledge. For a member
// with an active subscription the amount is updated in place; otherwise the
// result carries a checkout URL to redirect to.
func (c *Client) StartContribution(ctx context.Context, customerRef string, email string, amountCents int64, returnURL string) (StartContributionResult, error) {
	var out StartContributionResult
	if amountCents <= 0 {
		return out, errors.New("amount must be positive")
	}
	payload := map[string]any{
		"customer":     customerRef,
		"email":        email,
		"amount_cents": amountCents,
		"return_url":   returnURL,
	}
	err := c.post(ctx, "start-contribution", payload, &out)
	return out, err
}

// OpenBillingPortal creates a short-lived billing-portal session for the
// member and returns its URL.
func (c *Client) OpenBillingPortal(ctx context.Context, customerRef string, returnURL string) (string, error) {
	if strings.TrimSpace(customerRef) == "" {
		return "", errors.New("customer ref is required")
	}
	var out struct {
		URL string `json:"url"`
	}
	payload := map[string]any{
		"customer":   customerRef,
		"return_url": returnURL,
	}
	if err := c.post(ctx, "open-billing-portal", payload, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.URL) == "" {
		return "", errors.New("billing portal returned empty url")
	}
	return out.URL, nil
}
