package accounts

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/4csolutions/razorpay-payments/internal/modules/invoices"
	"github.com/4csolutions/razorpay-payments/internal/shared/apperr"
)

// Resolver derives the ledger accounts an apply task posts against.
// Missing mappings are configuration errors: retrying without fixing
// the setup repeats the failure, so they are marked permanent.
type Resolver struct {
	db   *gorm.DB
	mode string
}

func NewResolver(db *gorm.DB, mode string) *Resolver {
	return &Resolver{db: db, mode: mode}
}

// ReceivingAccount returns the account money lands on for this
// company's payment-channel mapping.
func (r *Resolver) ReceivingAccount(ctx context.Context, company string) (string, error) {
	var mop ModeOfPaymentAccount
	err := r.db.WithContext(ctx).
		First(&mop, "mode_of_payment = ? AND company = ?", r.mode, company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.ConfigErr(
				fmt.Sprintf("no default account for mode of payment %s in company %s", r.mode, company), err)
		}
		return "", err
	}
	return mop.DefaultAccount, nil
}

// ReceivableAccount returns the customer's designated receivable
// account for the company, falling back to the company default.
func (r *Resolver) ReceivableAccount(ctx context.Context, customer, company string) (string, error) {
	var pa PartyAccount
	err := r.db.WithContext(ctx).
		First(&pa, "party_type = ? AND party = ? AND company = ?", "Customer", customer, company).Error
	if err == nil {
		return pa.Account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var comp invoices.Company
	if err := r.db.WithContext(ctx).First(&comp, "name = ?", company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.ConfigErr(fmt.Sprintf("company %s not found", company), err)
		}
		return "", err
	}
	if comp.DefaultReceivableAccount == nil || *comp.DefaultReceivableAccount == "" {
		return "", apperr.ConfigErr(
			fmt.Sprintf("no receivable account for customer %s in company %s", customer, company), nil)
	}
	return *comp.DefaultReceivableAccount, nil
}
