package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4csolutions/razorpay-payments/internal/modules/payments"
)

const webhookSecret = "whsec_handler_test"

type memRecords struct {
	existing map[string]bool
	applied  []payments.PaymentRecord
}

func (m *memRecords) ExistsPaymentRecord(_ context.Context, referenceNo string) (bool, error) {
	return m.existing[referenceNo], nil
}

func (m *memRecords) ApplyPayment(_ context.Context, rec payments.PaymentRecord) error {
	m.applied = append(m.applied, rec)
	return nil
}

type memEventLog struct {
	events []payments.WebhookEventLog
}

func (m *memEventLog) Record(_ context.Context, e payments.WebhookEventLog) error {
	m.events = append(m.events, e)
	return nil
}

type memQueue struct {
	tasks []payments.ApplyTask
}

func (m *memQueue) EnqueueApply(_ context.Context, task payments.ApplyTask) error {
	m.tasks = append(m.tasks, task)
	return nil
}

func newTestServer(records *memRecords) (*gin.Engine, *memQueue) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	queue := &memQueue{}
	rec := payments.NewReconciler(webhookSecret, records, &memEventLog{}, queue, logger)

	r := gin.New()
	r.POST("/webhooks/razorpay", NewWebhookHandler(logger, rec).Handle)
	return r, queue
}

func signBody(body string) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func paidBody(invoice, txn string) string {
	return `{
		"event": "payment_link.paid",
		"payload": {
			"payment": {"entity": {"id": "` + txn + `", "amount": 50000, "notes": {"invoice_name": "` + invoice + `"}}},
			"payment_link": {"entity": {"id": "plink_1", "reference_id": "` + invoice + `"}}
		}
	}`
}

func post(r *gin.Engine, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(payments.SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookMissingSignature(t *testing.T) {
	records := &memRecords{existing: map[string]bool{}}
	r, queue := newTestServer(records)

	w := post(r, paidBody("INV-1", "pay_abc"), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing signature", w.Body.String())
	assert.Empty(t, queue.tasks)
}

func TestWebhookInvalidSignature(t *testing.T) {
	records := &memRecords{existing: map[string]bool{}}
	r, queue := newTestServer(records)

	w := post(r, paidBody("INV-1", "pay_abc"), strings.Repeat("ab", 32))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(payments.AckInvalidSignature), w.Body.String())
	assert.Empty(t, queue.tasks)
}

func TestWebhookAccepted(t *testing.T) {
	records := &memRecords{existing: map[string]bool{}}
	r, queue := newTestServer(records)

	body := paidBody("INV-1", "pay_abc")
	w := post(r, body, signBody(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(payments.AckOK), w.Body.String())

	require.Len(t, queue.tasks, 1)
	task := queue.tasks[0]
	assert.Equal(t, "INV-1", task.InvoiceName)
	assert.Equal(t, "pay_abc", task.TxnID)
	assert.Equal(t, int64(50000), task.AmountMinor)
}

func TestWebhookUnhandledEvent(t *testing.T) {
	records := &memRecords{existing: map[string]bool{}}
	r, queue := newTestServer(records)

	body := `{"event": "refund.processed", "payload": {}}`
	w := post(r, body, signBody(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(payments.AckEventNotHandled), w.Body.String())
	assert.Empty(t, queue.tasks)
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	records := &memRecords{existing: map[string]bool{"pay_abc": true}}
	r, queue := newTestServer(records)

	body := paidBody("INV-1", "pay_abc")
	w := post(r, body, signBody(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(payments.AckAlreadyRecorded), w.Body.String())
	assert.Empty(t, queue.tasks)
}
