package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/4csolutions/razorpay-payments/internal/modules/invoices"
	"github.com/4csolutions/razorpay-payments/internal/shared/apperr"
)

// Store is the GORM-backed implementation of InvoiceStore, RecordStore
// and EventLog.
type Store struct{ db *gorm.DB }

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Get(ctx context.Context, name string) (invoices.SalesInvoice, error) {
	var inv invoices.SalesInvoice
	if err := s.db.WithContext(ctx).First(&inv, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invoices.SalesInvoice{}, apperr.NotFoundErr(fmt.Sprintf("invoice %s not found", name))
		}
		return invoices.SalesInvoice{}, err
	}
	return inv, nil
}

func (s *Store) GetCustomer(ctx context.Context, name string) (invoices.Customer, error) {
	var cust invoices.Customer
	if err := s.db.WithContext(ctx).First(&cust, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invoices.Customer{}, apperr.NotFoundErr(fmt.Sprintf("customer %s not found", name))
		}
		return invoices.Customer{}, err
	}
	return cust, nil
}

func (s *Store) SetPaymentLink(ctx context.Context, name, linkID, linkURL string) error {
	return s.db.WithContext(ctx).Model(&invoices.SalesInvoice{}).
		Where("name = ?", name).
		Updates(map[string]any{
			"payment_link_id":  linkID,
			"payment_link_url": linkURL,
			"updated_at":       time.Now(),
		}).Error
}

func (s *Store) ExistsPaymentRecord(ctx context.Context, referenceNo string) (bool, error) {
	var cnt int64
	if err := s.db.WithContext(ctx).Model(&PaymentRecord{}).
		Where("reference_no = ?", referenceNo).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// ApplyPayment inserts the record and decrements the invoice's
// outstanding balance in one transaction. The invoice row is locked so
// concurrent allocations for different transactions serialize; the
// unique index on reference_no turns a duplicate-task race into
// ErrDuplicateRecord.
func (s *Store) ApplyPayment(ctx context.Context, rec PaymentRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv invoices.SalesInvoice
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&inv, "name = ?", rec.InvoiceName).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundErr(fmt.Sprintf("invoice %s not found", rec.InvoiceName))
			}
			return err
		}

		if err := tx.WithContext(ctx).Create(&rec).Error; err != nil {
			if isDup(err) {
				return ErrDuplicateRecord
			}
			return err
		}

		now := time.Now()
		outstanding := inv.OutstandingAmount.Sub(rec.AllocatedAmount)
		updates := map[string]any{
			"outstanding_amount": outstanding,
			"updated_at":         now,
		}
		if outstanding.IsZero() || outstanding.IsNegative() {
			updates["status"] = invoices.StatusPaid
		}
		return tx.WithContext(ctx).Model(&invoices.SalesInvoice{}).
			Where("name = ?", inv.Name).
			Updates(updates).Error
	})
}

func (s *Store) Record(ctx context.Context, e WebhookEventLog) error {
	return s.db.WithContext(ctx).Create(&e).Error
}

func isDup(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
