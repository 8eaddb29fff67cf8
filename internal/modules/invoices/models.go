package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

type Company struct {
	Name                     string    `gorm:"type:varchar(140);primaryKey"`
	Abbr                     string    `gorm:"type:varchar(10);not null"`
	DefaultCurrency          string    `gorm:"type:char(3);not null"`
	DefaultReceivableAccount *string   `gorm:"type:varchar(140)"`
	CreatedAt                time.Time `gorm:"type:datetime(3);not null"`
}

func (Company) TableName() string { return "companies" }

type Customer struct {
	Name         string    `gorm:"type:varchar(140);primaryKey"`
	CustomerName string    `gorm:"type:varchar(140);not null"`
	Email        *string   `gorm:"type:varchar(140)"`
	MobileNo     *string   `gorm:"type:varchar(20)"`
	CreatedAt    time.Time `gorm:"type:datetime(3);not null"`
}

func (Customer) TableName() string { return "customers" }

// SalesInvoice is the payable document being settled. PaymentLinkID and
// PaymentLinkURL hold the hosted checkout link once one is created
// (at most one active link per invoice).
type SalesInvoice struct {
	Name              string          `gorm:"type:varchar(140);primaryKey"`
	Company           string          `gorm:"type:varchar(140);not null;index:ix_sales_invoices_company"`
	Customer          string          `gorm:"type:varchar(140);not null;index:ix_sales_invoices_customer"`
	Currency          string          `gorm:"type:char(3);not null"`
	GrandTotal        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	OutstandingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status            string          `gorm:"type:varchar(20);not null"`

	PaymentMobileNo *string `gorm:"type:varchar(20)"`
	PaymentLinkID   *string `gorm:"type:varchar(64);index:ix_sales_invoices_payment_link_id"`
	PaymentLinkURL  *string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (SalesInvoice) TableName() string { return "sales_invoices" }

// Submitted reports whether the invoice is finalized and may take
// payment records.
func (inv SalesInvoice) Submitted() bool { return inv.Status == StatusSubmitted }
