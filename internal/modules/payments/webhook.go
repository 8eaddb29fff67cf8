package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// SignatureHeader is set by Razorpay on every webhook delivery.
const SignatureHeader = "X-Razorpay-Signature"

// Recognized webhook event types. Anything else is acknowledged and
// dropped without side effects.
const (
	EventLinkPaid          = "payment_link.paid"
	EventLinkPartiallyPaid = "payment_link.partially_paid"
	EventPaymentCaptured   = "payment.captured"
)

// VerifySignature checks the hex HMAC-SHA256 of the exact raw body
// bytes against the provided header value. The comparison must run on
// the unparsed body: re-serializing JSON is not byte-stable.
func VerifySignature(body []byte, signature, secret string) error {
	if secret == "" {
		return ErrMissingSecret
	}
	sig, err := hex.DecodeString(strings.TrimSpace(strings.ToLower(signature)))
	if err != nil {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), sig) {
		return ErrInvalidSignature
	}
	return nil
}

type PaymentEntity struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"` // minor units
	Currency string            `json:"currency"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes"`
}

type PaymentLinkEntity struct {
	ID          string            `json:"id"`
	ReferenceID string            `json:"reference_id"`
	ShortURL    string            `json:"short_url"`
	Amount      int64             `json:"amount"`      // minor units
	AmountPaid  int64             `json:"amount_paid"` // minor units
	Currency    string            `json:"currency"`
	Status      string            `json:"status"`
	Notes       map[string]string `json:"notes"`
}

// Event is the decoded webhook body. Depending on the event type either
// the payment or the payment_link entity may be absent, never both.
type Event struct {
	Type    string
	Payment *PaymentEntity
	Link    *PaymentLinkEntity
}

type wireEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity *PaymentEntity `json:"entity"`
		} `json:"payment"`
		PaymentLink *struct {
			Entity *PaymentLinkEntity `json:"entity"`
		} `json:"payment_link"`
	} `json:"payload"`
}

// DecodeEvent parses a verified body. Call VerifySignature first.
func DecodeEvent(body []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(body, &w); err != nil {
		return Event{}, fmt.Errorf("decode webhook body: %w", err)
	}
	ev := Event{Type: w.Event}
	if w.Payload.Payment != nil {
		ev.Payment = w.Payload.Payment.Entity
	}
	if w.Payload.PaymentLink != nil {
		ev.Link = w.Payload.PaymentLink.Entity
	}
	return ev, nil
}

// Recognized reports whether the event type is in the handled set.
func (ev Event) Recognized() bool {
	switch ev.Type {
	case EventLinkPaid, EventLinkPartiallyPaid, EventPaymentCaptured:
		return true
	}
	return false
}

// TxnID returns the provider transaction identifier: the payment id
// when present, otherwise the payment link id.
func (ev Event) TxnID() string {
	if ev.Payment != nil && ev.Payment.ID != "" {
		return ev.Payment.ID
	}
	if ev.Link != nil {
		return ev.Link.ID
	}
	return ""
}

// AmountMinor returns the paid amount in minor currency units.
func (ev Event) AmountMinor() int64 {
	if ev.Payment != nil && ev.Payment.Amount > 0 {
		return ev.Payment.Amount
	}
	if ev.Link != nil && ev.Link.AmountPaid > 0 {
		return ev.Link.AmountPaid
	}
	return 0
}

// InvoiceName resolves the invoice reference. Revisions of the
// provider's event shapes populate either the notes attached at link
// creation or the link's own reference_id; both are honored, notes
// first.
func (ev Event) InvoiceName() string {
	if ev.Payment != nil {
		if name := ev.Payment.Notes["invoice_name"]; name != "" {
			return name
		}
	}
	if ev.Link != nil {
		if name := ev.Link.Notes["invoice_name"]; name != "" {
			return name
		}
		if ev.Link.ReferenceID != "" {
			return ev.Link.ReferenceID
		}
	}
	return ""
}
