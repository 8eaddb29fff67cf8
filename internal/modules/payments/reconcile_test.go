package payments

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

type fakeRecords struct {
	mu       sync.Mutex
	existing map[string]bool
	err      error
}

func (f *fakeRecords) ExistsPaymentRecord(_ context.Context, referenceNo string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.existing[referenceNo], nil
}

func (f *fakeRecords) ApplyPayment(_ context.Context, rec PaymentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existing[rec.ReferenceNo] {
		return ErrDuplicateRecord
	}
	if f.existing == nil {
		f.existing = map[string]bool{}
	}
	f.existing[rec.ReferenceNo] = true
	return nil
}

type fakeEventLog struct {
	mu      sync.Mutex
	Entries []WebhookEventLog
	Err     error
}

func (f *fakeEventLog) Record(_ context.Context, e WebhookEventLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Entries = append(f.Entries, e)
	return nil
}

type fakeQueue struct {
	mu    sync.Mutex
	Tasks []ApplyTask
	Err   error
}

func (f *fakeQueue) EnqueueApply(_ context.Context, task ApplyTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Tasks = append(f.Tasks, task)
	return nil
}

func paidBody(invoice, txnID string, amount int64) []byte {
	return []byte(`{
		"event": "payment_link.paid",
		"payload": {
			"payment": {"entity": {"id": "` + txnID + `", "amount": ` + strconv.FormatInt(amount, 10) + `, "currency": "INR", "notes": {"invoice_name": "` + invoice + `"}}},
			"payment_link": {"entity": {"id": "plink_1", "reference_id": "` + invoice + `"}}
		}
	}`)
}

func newTestReconciler(records *fakeRecords, log *fakeEventLog, queue *fakeQueue) *Reconciler {
	return NewReconciler(testSecret, records, log, queue, nil)
}

func TestReceiveOK(t *testing.T) {
	records := &fakeRecords{}
	eventLog := &fakeEventLog{}
	queue := &fakeQueue{}
	r := newTestReconciler(records, eventLog, queue)

	body := paidBody("ACC-SINV-2026-00042", "pay_abc", 50000)
	ack := r.Receive(context.Background(), body, sign(body, testSecret))

	assert.Equal(t, AckOK, ack)
	require.Len(t, queue.Tasks, 1)
	assert.Equal(t, ApplyTask{
		InvoiceName: "ACC-SINV-2026-00042",
		AmountMinor: 50000,
		TxnID:       "pay_abc",
		EventType:   EventLinkPaid,
	}, queue.Tasks[0])

	require.Len(t, eventLog.Entries, 1)
	assert.Equal(t, OutcomeEnqueued, eventLog.Entries[0].Outcome)
	assert.JSONEq(t, string(body), string(eventLog.Entries[0].PayloadJSON))
}

func TestReceiveInvalidSignature(t *testing.T) {
	queue := &fakeQueue{}
	r := newTestReconciler(&fakeRecords{}, &fakeEventLog{}, queue)

	body := paidBody("ACC-SINV-2026-00042", "pay_abc", 50000)
	ack := r.Receive(context.Background(), body, sign(body, "other-secret"))

	assert.Equal(t, AckInvalidSignature, ack)
	assert.Empty(t, queue.Tasks)
}

func TestReceiveUnrecognizedEvent(t *testing.T) {
	queue := &fakeQueue{}
	eventLog := &fakeEventLog{}
	r := newTestReconciler(&fakeRecords{}, eventLog, queue)

	body := []byte(`{"event":"refund.processed","payload":{"payment":{"entity":{"id":"pay_x","amount":100}}}}`)
	ack := r.Receive(context.Background(), body, sign(body, testSecret))

	assert.Equal(t, AckEventNotHandled, ack)
	assert.Empty(t, queue.Tasks)
	assert.Empty(t, eventLog.Entries)
}

func TestReceiveUndecodableBody(t *testing.T) {
	queue := &fakeQueue{}
	r := newTestReconciler(&fakeRecords{}, &fakeEventLog{}, queue)

	body := []byte(`{{not json`)
	ack := r.Receive(context.Background(), body, sign(body, testSecret))

	assert.Equal(t, AckFailed, ack)
	assert.Empty(t, queue.Tasks)
}

func TestReceiveMissingReference(t *testing.T) {
	queue := &fakeQueue{}
	eventLog := &fakeEventLog{}
	r := newTestReconciler(&fakeRecords{}, eventLog, queue)

	body := []byte(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {"id": "pay_orphan", "amount": 900, "notes": {}}}}
	}`)
	ack := r.Receive(context.Background(), body, sign(body, testSecret))

	assert.Equal(t, AckInvoiceNameNotFound, ack)
	assert.Empty(t, queue.Tasks)

	// the full payload must survive for manual reconciliation
	require.Len(t, eventLog.Entries, 1)
	assert.Equal(t, OutcomeMissingReference, eventLog.Entries[0].Outcome)
	assert.Equal(t, "pay_orphan", eventLog.Entries[0].TxnID)
	assert.JSONEq(t, string(body), string(eventLog.Entries[0].PayloadJSON))
}

func TestReceiveDuplicate(t *testing.T) {
	records := &fakeRecords{existing: map[string]bool{"pay_abc": true}}
	queue := &fakeQueue{}
	eventLog := &fakeEventLog{}
	r := newTestReconciler(records, eventLog, queue)

	body := paidBody("ACC-SINV-2026-00042", "pay_abc", 50000)
	ack := r.Receive(context.Background(), body, sign(body, testSecret))

	assert.Equal(t, AckAlreadyRecorded, ack)
	assert.Empty(t, queue.Tasks)
	require.Len(t, eventLog.Entries, 1)
	assert.Equal(t, OutcomeDuplicate, eventLog.Entries[0].Outcome)
}

func TestReceiveEnqueueFailure(t *testing.T) {
	queue := &fakeQueue{Err: errors.New("redis down")}
	r := newTestReconciler(&fakeRecords{}, &fakeEventLog{}, queue)

	body := paidBody("ACC-SINV-2026-00042", "pay_abc", 50000)
	ack := r.Receive(context.Background(), body, sign(body, testSecret))

	assert.Equal(t, AckFailed, ack)
}

func TestReceiveEventLogFailureStillAcks(t *testing.T) {
	// The event log is advisory: a failed audit write must not turn a
	// valid delivery into a provider-visible failure.
	queue := &fakeQueue{}
	r := newTestReconciler(&fakeRecords{}, &fakeEventLog{Err: errors.New("db down")}, queue)

	body := paidBody("ACC-SINV-2026-00042", "pay_abc", 50000)
	ack := r.Receive(context.Background(), body, sign(body, testSecret))

	assert.Equal(t, AckOK, ack)
	assert.Len(t, queue.Tasks, 1)
}

// keep the compiler honest about the fakes
var (
	_ RecordStore = (*fakeRecords)(nil)
	_ EventLog    = (*fakeEventLog)(nil)
	_ Enqueuer    = (*fakeQueue)(nil)
)
