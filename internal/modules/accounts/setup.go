package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/4csolutions/razorpay-payments/internal/modules/invoices"
)

// Setup provisions the payment-channel ledger objects for a company:
// a bank account named after the mode under the company's bank group,
// and the mode-of-payment mapping pointing at it. Every step is
// idempotent so re-running against an already-provisioned company is a
// no-op.
type Setup struct {
	db     *gorm.DB
	mode   string
	logger *slog.Logger
}

func NewSetup(db *gorm.DB, mode string, logger *slog.Logger) *Setup {
	if logger == nil {
		logger = slog.Default()
	}
	return &Setup{db: db, mode: mode, logger: logger}
}

// EnsureCompany provisions the given company, or the first company on
// record when name is empty.
func (s *Setup) EnsureCompany(ctx context.Context, name string) error {
	var comp invoices.Company
	q := s.db.WithContext(ctx)
	if name != "" {
		q = q.Where("name = ?", name)
	}
	if err := q.Order("created_at ASC").First(&comp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no company on record")
		}
		return err
	}

	account, err := s.ensureBankAccount(ctx, comp)
	if err != nil {
		return err
	}
	return s.ensureModeMapping(ctx, comp.Name, account)
}

func (s *Setup) ensureBankAccount(ctx context.Context, comp invoices.Company) (string, error) {
	var acc Account
	err := s.db.WithContext(ctx).
		First(&acc, "account_name = ? AND company = ? AND account_type = ?", s.mode, comp.Name, TypeBank).Error
	if err == nil {
		return acc.Name, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var parent Account
	err = s.db.WithContext(ctx).
		First(&parent, "account_type = ? AND is_group = ? AND company = ?", TypeBank, true, comp.Name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("no bank group account for company %s", comp.Name)
		}
		return "", err
	}

	acc = Account{
		Name:          fmt.Sprintf("%s - %s", s.mode, comp.Abbr),
		AccountName:   s.mode,
		Company:       comp.Name,
		AccountType:   TypeBank,
		ParentAccount: &parent.Name,
		IsGroup:       false,
		Currency:      comp.DefaultCurrency,
		CreatedAt:     time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&acc).Error; err != nil {
		return "", fmt.Errorf("create %s account for %s: %w", s.mode, comp.Name, err)
	}

	s.logger.InfoContext(ctx, "ledger account created", "account", acc.Name, "company", comp.Name)
	return acc.Name, nil
}

func (s *Setup) ensureModeMapping(ctx context.Context, company, account string) error {
	var existing ModeOfPaymentAccount
	err := s.db.WithContext(ctx).
		First(&existing, "mode_of_payment = ? AND company = ?", s.mode, company).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	mapping := ModeOfPaymentAccount{
		ID:             uuid.NewString(),
		ModeOfPayment:  s.mode,
		Company:        company,
		DefaultAccount: account,
		CreatedAt:      time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&mapping).Error; err != nil {
		return fmt.Errorf("link %s mode of payment for %s: %w", s.mode, company, err)
	}

	s.logger.InfoContext(ctx, "mode of payment linked", "mode", s.mode, "company", company, "account", account)
	return nil
}
