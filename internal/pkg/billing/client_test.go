package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		BaseURL:      srv.URL,
		ServiceToken: "svc_test",
		HTTPClient:   &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGetContributionStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get-contribution-status", r.URL.Path)
		assert.Equal(t, "cus_1", r.URL.Query().Get("customer"))
		assert.Equal(t, "Bearer svc_test", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"current_cents":     5000,
			"next_billing_unix": 1700090000,
		})
	})

	st, err := c.GetContributionStatus(context.Background(), "cus_1")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), st.PledgeCents())
	assert.Equal(t, int64(1700090000), st.NextBillingUnix)
}

func TestGetContributionStatusRequiresCustomer(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not be sent")
	})
	_, err := c.GetContributionStatus(context.Background(), "  ")
	assert.Error(t, err)
}

func TestListInvoicesPaging(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list-invoices", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "in_5", r.URL.Query().Get("starting_after"))
		_ = json.NewEncoder(w).Encode(InvoicePage{
			Invoices:   []Invoice{{ID: "in_6", Status: "paid", AmountPaid: 5000}},
			HasMore:    true,
			NextCursor: "in_6",
		})
	})

	page, err := c.ListInvoices(context.Background(), "cus_1", 50, "in_5")
	require.NoError(t, err)
	require.Len(t, page.Invoices, 1)
	assert.True(t, page.HasMore)
	assert.Equal(t, "in_6", page.NextCursor)
}

func TestStartContributionUpdatesInPlace(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/start-contribution", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 7500, body["amount_cents"])
		_ = json.NewEncoder(w).Encode(StartContributionResult{Updated: true})
	})

	res, err := c.StartContribution(context.Background(), "cus_1", "m@example.com", 7500, "https://app/contribute")
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Empty(t, res.RedirectURL())
}

func TestStartContributionRedirectsToCheckout(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(StartContributionResult{CheckoutURL: "https://pay.example/cs_1"})
	})

	res, err := c.StartContribution(context.Background(), "", "m@example.com", 5000, "")
	require.NoError(t, err)
	assert.False(t, res.Updated)
	assert.Equal(t, "https://pay.example/cs_1", res.RedirectURL())
}

func TestOpenBillingPortal(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/open-billing-portal", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://portal.example/s_1"})
	})

	u, err := c.OpenBillingPortal(context.Background(), "cus_1", "https://app/account")
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example/s_1", u)
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"provider unavailable"}`))
	})

	_, err := c.ListInvoices(context.Background(), "cus_1", 15, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=502")
	assert.Contains(t, err.Error(), "provider unavailable")
}

func TestAdminListMembers(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin-list-members", r.URL.Path)
		assert.Equal(t, "ada", r.URL.Query().Get("q"))
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"members": []AdminMember{{MemberRef: "mem_1", Email: "ada@example.com", MonthlyCents: 5000}},
		})
	})

	members, err := c.ListMembers(context.Background(), "ada", "active")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "mem_1", members[0].MemberRef)
}

func TestAdminCancelSubscription(t *testing.T) {
	var called bool
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "/admin-cancel-subscription", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})

	require.NoError(t, c.CancelSubscription(context.Background(), "mem_1"))
	assert.True(t, called)
}

func TestInvoiceHostedURLPreference(t *testing.T) {
	inv := Invoice{HostedInvoiceURL: "a", InvoicePDF: "b", URL: "c"}
	assert.Equal(t, "a", inv.HostedURL())
	inv.HostedInvoiceURL = ""
	assert.Equal(t, "b", inv.HostedURL())
	inv.InvoicePDF = ""
	assert.Equal(t, "c", inv.HostedURL())
}
