package payments

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/4csolutions/razorpay-payments/internal/modules/invoices"
)

// InvoiceStore is the slice of the invoice ledger the payment flow
// needs.
type InvoiceStore interface {
	Get(ctx context.Context, name string) (invoices.SalesInvoice, error)
	SetPaymentLink(ctx context.Context, name, linkID, linkURL string) error
}

// RecordStore persists payment records. ApplyPayment must be atomic
// (record insert + outstanding decrement in one transaction) and must
// return ErrDuplicateRecord when the reference_no uniqueness
// constraint rejects the write.
type RecordStore interface {
	ExistsPaymentRecord(ctx context.Context, referenceNo string) (bool, error)
	ApplyPayment(ctx context.Context, rec PaymentRecord) error
}

// EventLog keeps accepted deliveries for audit and manual recovery.
// Failures here are logged, never surfaced to the provider.
type EventLog interface {
	Record(ctx context.Context, e WebhookEventLog) error
}

// AccountResolver maps the payment channel and the paying party onto
// ledger accounts.
type AccountResolver interface {
	ReceivingAccount(ctx context.Context, company string) (string, error)
	ReceivableAccount(ctx context.Context, customer, company string) (string, error)
}

// ApplyTask is the deferred unit of work that mutates the invoice.
type ApplyTask struct {
	InvoiceName string `json:"invoice_name"`
	AmountMinor int64  `json:"amount_minor"`
	TxnID       string `json:"txn_id"`
	EventType   string `json:"event_type"`
}

// Enqueuer hands an apply task to the background queue. Callers must
// invoke it only after their own writes have committed.
type Enqueuer interface {
	EnqueueApply(ctx context.Context, task ApplyTask) error
}

// Ack is the plain-text acknowledgment returned to the provider. Every
// Ack is delivered with HTTP 200 so the provider stops retrying
// permanently-failing events.
type Ack string

const (
	AckOK                  Ack = "OK"
	AckFailed              Ack = "Failed"
	AckInvalidSignature    Ack = "Invalid signature"
	AckEventNotHandled     Ack = "Event not handled"
	AckInvoiceNameNotFound Ack = "Invoice name not found"
	AckAlreadyRecorded     Ack = "Payment Already Recorded"
)

// Reconciler runs the inbound half of webhook reconciliation:
// authenticate, classify, extract, advisory idempotency check, then
// enqueue the apply task. It never mutates the invoice itself.
type Reconciler struct {
	secret   string
	records  RecordStore
	eventLog EventLog
	queue    Enqueuer
	logger   *slog.Logger
}

func NewReconciler(secret string, records RecordStore, eventLog EventLog, queue Enqueuer, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{secret: secret, records: records, eventLog: eventLog, queue: queue, logger: logger}
}

// Receive processes one webhook delivery and returns the acknowledgment
// for the provider. Errors never propagate: every outcome is translated
// into an Ack so the delivery is not retried forever.
func (r *Reconciler) Receive(ctx context.Context, body []byte, signature string) Ack {
	if err := VerifySignature(body, signature, r.secret); err != nil {
		// Do not log the computed signature.
		r.logger.WarnContext(ctx, "webhook authentication failed", "err", err)
		return AckInvalidSignature
	}

	ev, err := DecodeEvent(body)
	if err != nil {
		r.logger.ErrorContext(ctx, "webhook body undecodable", "err", err)
		return AckFailed
	}

	if !ev.Recognized() {
		r.logger.InfoContext(ctx, "webhook event skipped", "event", ev.Type)
		return AckEventNotHandled
	}

	if ev.Payment == nil && ev.Link == nil {
		r.logger.ErrorContext(ctx, "webhook event malformed", "event", ev.Type, "err", ErrMissingEntity)
		return AckFailed
	}

	txnID := ev.TxnID()
	if txnID == "" {
		r.logger.ErrorContext(ctx, "webhook event has no transaction id", "event", ev.Type)
		return AckFailed
	}

	invoiceName := ev.InvoiceName()
	if invoiceName == "" {
		// Accepted data loss: keep the full payload on the event log
		// so the payment can be reconciled by hand.
		r.logger.ErrorContext(ctx, "webhook missing invoice reference",
			"event", ev.Type, "txn_id", txnID)
		r.record(ctx, ev, txnID, nil, OutcomeMissingReference, "invoice reference missing in notes and reference_id", body)
		return AckInvoiceNameNotFound
	}

	// Advisory check; the unique index on reference_no decides.
	exists, err := r.records.ExistsPaymentRecord(ctx, txnID)
	if err != nil {
		r.logger.ErrorContext(ctx, "idempotency lookup failed", "txn_id", txnID, "err", err)
		return AckFailed
	}
	if exists {
		r.logger.InfoContext(ctx, "webhook deduplicated", "txn_id", txnID, "invoice", invoiceName)
		r.record(ctx, ev, txnID, &invoiceName, OutcomeDuplicate, "", body)
		return AckAlreadyRecorded
	}

	// The event log write commits before the enqueue so a worker can
	// never observe the task ahead of the delivery marker.
	r.record(ctx, ev, txnID, &invoiceName, OutcomeEnqueued, "", body)

	task := ApplyTask{
		InvoiceName: invoiceName,
		AmountMinor: ev.AmountMinor(),
		TxnID:       txnID,
		EventType:   ev.Type,
	}
	if err := r.queue.EnqueueApply(ctx, task); err != nil {
		r.logger.ErrorContext(ctx, "enqueue apply task failed",
			"txn_id", txnID, "invoice", invoiceName, "err", err)
		return AckFailed
	}

	r.logger.InfoContext(ctx, "webhook accepted",
		"event", ev.Type, "txn_id", txnID, "invoice", invoiceName, "amount_minor", task.AmountMinor)
	return AckOK
}

func (r *Reconciler) record(ctx context.Context, ev Event, txnID string, invoiceName *string, outcome, note string, body []byte) {
	e := WebhookEventLog{
		ID:          uuid.NewString(),
		EventType:   ev.Type,
		TxnID:       txnID,
		InvoiceName: invoiceName,
		PayloadJSON: datatypes.JSON(body),
		Outcome:     outcome,
		ReceivedAt:  time.Now(),
	}
	if note != "" {
		e.Note = &note
	}
	if err := r.eventLog.Record(ctx, e); err != nil {
		r.logger.ErrorContext(ctx, "event log write failed", "txn_id", txnID, "err", err)
	}
}
