package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCreateLink(t *testing.T) {
	var gotBody CreateLinkRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)
		assert.Equal(t, "/payment_links", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(PaymentLink{
			ID:          "plink_123",
			ShortURL:    "https://rzp.io/i/abc",
			ReferenceID: gotBody.ReferenceID,
			Status:      "created",
			Amount:      gotBody.Amount,
			Currency:    gotBody.Currency,
		})
	}))
	defer srv.Close()

	c := NewClient("rzp_test_key", "rzp_test_secret", srv.URL)
	link, err := c.CreateLink(context.Background(), CreateLinkRequest{
		Amount:        50000,
		Currency:      "INR",
		AcceptPartial: true,
		ReferenceID:   "INV-1",
		Notes:         map[string]string{"invoice_name": "INV-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "plink_123", link.ID)
	assert.Equal(t, "https://rzp.io/i/abc", link.ShortURL)
	assert.True(t, gotBody.AcceptPartial)
	assert.Equal(t, "INV-1", gotBody.Notes["invoice_name"])
}

func TestClientRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(PaymentLink{ID: "plink_ok"})
	}))
	defer srv.Close()

	c := NewClient("k", "s", srv.URL)
	link, err := c.CreateLink(context.Background(), CreateLinkRequest{Amount: 100, Currency: "INR"})
	require.NoError(t, err)
	assert.Equal(t, "plink_ok", link.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"description":"amount missing"}}`))
	}))
	defer srv.Close()

	c := NewClient("k", "s", srv.URL)
	_, err := c.CreateLink(context.Background(), CreateLinkRequest{})
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	assert.False(t, perr.Transient())
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestClientGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("k", "s", srv.URL)
	_, err := c.CreateLink(context.Background(), CreateLinkRequest{Amount: 100})
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.Transient())
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

func TestClientNotifyBy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment_links/plink_123/notify_by/sms", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := NewClient("k", "s", srv.URL)
	require.NoError(t, c.NotifyBy(context.Background(), "plink_123", "sms"))
}
