package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"payment_link.paid","payload":{}}`)
	secret := "top-secret"
	sig := sign(body, secret)

	require.NoError(t, VerifySignature(body, sig, secret))

	// uppercase hex is accepted
	require.NoError(t, VerifySignature(body, "  "+sig+"  ", secret))

	// any single-bit mutation of the body must fail
	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		assert.ErrorIs(t, VerifySignature(mutated, sig, secret), ErrInvalidSignature, "flipped byte %d", i)
	}

	assert.ErrorIs(t, VerifySignature(body, sig, "wrong-secret"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature(body, "not-hex", secret), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature(body, "deadbeef", secret), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature(body, sig, ""), ErrMissingSecret)
}

func TestDecodeEventRecognized(t *testing.T) {
	tests := []struct {
		event      string
		recognized bool
	}{
		{"payment_link.paid", true},
		{"payment_link.partially_paid", true},
		{"payment.captured", true},
		{"payment.failed", false},
		{"refund.processed", false},
		{"", false},
	}

	for _, tt := range tests {
		ev := Event{Type: tt.event}
		assert.Equal(t, tt.recognized, ev.Recognized(), "event %q", tt.event)
	}
}

func TestDecodeEventExtraction(t *testing.T) {
	body := []byte(`{
		"event": "payment_link.paid",
		"payload": {
			"payment": {"entity": {"id": "pay_abc", "amount": 50000, "currency": "INR", "notes": {"invoice_name": "ACC-SINV-2026-00042"}}},
			"payment_link": {"entity": {"id": "plink_xyz", "reference_id": "ACC-SINV-2026-00042", "amount": 50000, "amount_paid": 50000}}
		}
	}`)

	ev, err := DecodeEvent(body)
	require.NoError(t, err)
	require.NotNil(t, ev.Payment)
	require.NotNil(t, ev.Link)

	assert.Equal(t, "payment_link.paid", ev.Type)
	assert.Equal(t, "pay_abc", ev.TxnID())
	assert.Equal(t, int64(50000), ev.AmountMinor())
	assert.Equal(t, "ACC-SINV-2026-00042", ev.InvoiceName())
}

func TestDecodeEventLinkOnly(t *testing.T) {
	// payment_link events may arrive without a payment entity; the link
	// carries the amounts and the reference.
	body := []byte(`{
		"event": "payment_link.paid",
		"payload": {
			"payment_link": {"entity": {"id": "plink_xyz", "reference_id": "ACC-SINV-2026-00007", "amount": 12000, "amount_paid": 12000, "notes": {}}}
		}
	}`)

	ev, err := DecodeEvent(body)
	require.NoError(t, err)
	require.Nil(t, ev.Payment)

	assert.Equal(t, "plink_xyz", ev.TxnID())
	assert.Equal(t, int64(12000), ev.AmountMinor())
	assert.Equal(t, "ACC-SINV-2026-00007", ev.InvoiceName(), "falls back to reference_id when notes are empty")
}

func TestDecodeEventNotesWinOverReferenceID(t *testing.T) {
	body := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {"entity": {"id": "pay_1", "amount": 100, "notes": {"invoice_name": "FROM-NOTES"}}},
			"payment_link": {"entity": {"id": "plink_1", "reference_id": "FROM-REFERENCE"}}
		}
	}`)

	ev, err := DecodeEvent(body)
	require.NoError(t, err)
	assert.Equal(t, "FROM-NOTES", ev.InvoiceName())
}

func TestDecodeEventMissingEverything(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"event":"payment.captured","payload":{}}`))
	require.NoError(t, err)

	assert.Nil(t, ev.Payment)
	assert.Nil(t, ev.Link)
	assert.Empty(t, ev.TxnID())
	assert.Empty(t, ev.InvoiceName())
	assert.Zero(t, ev.AmountMinor())
}

func TestDecodeEventGarbage(t *testing.T) {
	_, err := DecodeEvent([]byte(`not json`))
	require.Error(t, err)
}
