package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/4csolutions/razorpay-payments/internal/shared/apperr"
)

// ModeOfPayment is the payment channel designation the receiving
// account mapping is keyed by.
const ModeOfPayment = "Razorpay"

var minorUnitsPerMajor = decimal.NewFromInt(100)

// ApplyService runs the deferred apply task: it turns an accepted
// webhook event into a durable PaymentRecord against the invoice.
type ApplyService struct {
	invoices InvoiceStore
	records  RecordStore
	accounts AccountResolver
	logger   *slog.Logger

	// capAllocation caps the allocated amount at the invoice's
	// outstanding balance.
	capAllocation bool
}

func NewApplyService(invoices InvoiceStore, records RecordStore, accounts AccountResolver, capAllocation bool, logger *slog.Logger) *ApplyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplyService{
		invoices:      invoices,
		records:       records,
		accounts:      accounts,
		capAllocation: capAllocation,
		logger:        logger,
	}
}

// Apply is idempotent under retries and concurrent duplicate tasks:
// the advisory existence check short-circuits the common case and the
// store's uniqueness constraint on reference_no settles races. Errors
// propagate so the queue's retry and failure bookkeeping observes
// them; apperr marks configuration and not-found failures permanent.
func (s *ApplyService) Apply(ctx context.Context, task ApplyTask) error {
	if task.AmountMinor <= 0 {
		return apperr.UnprocessableErr(
			fmt.Sprintf("payment %s for %s carries no positive amount", task.TxnID, task.InvoiceName))
	}

	exists, err := s.records.ExistsPaymentRecord(ctx, task.TxnID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if exists {
		s.logger.InfoContext(ctx, "apply skipped, payment already recorded", "txn_id", task.TxnID)
		return nil
	}

	// The store maps a missing row to an apperr not-found, which the
	// queue treats as permanent.
	inv, err := s.invoices.Get(ctx, task.InvoiceName)
	if err != nil {
		return fmt.Errorf("load invoice %s: %w", task.InvoiceName, err)
	}
	if !inv.Submitted() {
		return apperr.ConflictErr(fmt.Sprintf("invoice %s is not submitted", inv.Name))
	}

	paidTo, err := s.accounts.ReceivingAccount(ctx, inv.Company)
	if err != nil {
		return err
	}
	paidFrom, err := s.accounts.ReceivableAccount(ctx, inv.Customer, inv.Company)
	if err != nil {
		return err
	}

	paid := decimal.NewFromInt(task.AmountMinor).Div(minorUnitsPerMajor)
	allocated := paid
	if s.capAllocation && allocated.GreaterThan(inv.OutstandingAmount) {
		s.logger.WarnContext(ctx, "paid amount exceeds outstanding, capping allocation",
			"invoice", inv.Name, "paid", paid.String(), "outstanding", inv.OutstandingAmount.String())
		allocated = inv.OutstandingAmount
	}

	now := time.Now()
	rec := PaymentRecord{
		ID:              uuid.NewString(),
		ReferenceNo:     task.TxnID,
		InvoiceName:     inv.Name,
		Company:         inv.Company,
		Customer:        inv.Customer,
		ModeOfPayment:   ModeOfPayment,
		PaidFromAccount: paidFrom,
		PaidToAccount:   paidTo,
		Currency:        inv.Currency,
		PaidAmount:      paid,
		AllocatedAmount: allocated,
		PostingDate:     now,
		CreatedAt:       now,
	}

	if err := s.records.ApplyPayment(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicateRecord) {
			// A concurrent task won the race; this one is a no-op.
			s.logger.InfoContext(ctx, "apply raced a duplicate, treating as recorded", "txn_id", task.TxnID)
			return nil
		}
		return fmt.Errorf("apply payment %s to %s: %w", task.TxnID, inv.Name, err)
	}

	s.logger.InfoContext(ctx, "payment record created",
		"txn_id", task.TxnID, "invoice", inv.Name,
		"allocated", allocated.String(), "event", task.EventType)
	return nil
}
