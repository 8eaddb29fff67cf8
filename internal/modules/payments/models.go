package payments

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentRecord is a reconciled receipt applied to one invoice. The
// unique index on reference_no is the authoritative duplicate guard:
// the application-level existence checks are advisory only.
type PaymentRecord struct {
	ID          string `gorm:"type:char(36);primaryKey"`
	ReferenceNo string `gorm:"type:varchar(64);not null;uniqueIndex:ux_payment_records_reference_no"`
	InvoiceName string `gorm:"type:varchar(140);not null;index:ix_payment_records_invoice"`
	Company     string `gorm:"type:varchar(140);not null"`
	Customer    string `gorm:"type:varchar(140);not null"`

	ModeOfPayment   string `gorm:"type:varchar(64);not null"`
	PaidFromAccount string `gorm:"type:varchar(140);not null"`
	PaidToAccount   string `gorm:"type:varchar(140);not null"`

	Currency        string          `gorm:"type:char(3);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	PostingDate time.Time `gorm:"type:date;not null"`
	CreatedAt   time.Time `gorm:"type:datetime(3);not null"`
}

func (PaymentRecord) TableName() string { return "payment_records" }

// Webhook delivery outcomes recorded on the event log.
const (
	OutcomeEnqueued         = "enqueued"
	OutcomeDuplicate        = "duplicate"
	OutcomeMissingReference = "missing_reference"
)

// WebhookEventLog keeps every accepted delivery with its full raw
// payload so dropped events (missing invoice reference) stay
// recoverable by hand.
type WebhookEventLog struct {
	ID          string         `gorm:"type:char(36);primaryKey"`
	EventType   string         `gorm:"type:varchar(64);not null"`
	TxnID       string         `gorm:"type:varchar(64);not null;index:ix_webhook_event_logs_txn"`
	InvoiceName *string        `gorm:"type:varchar(140)"`
	PayloadJSON datatypes.JSON `gorm:"type:json;not null"`
	Outcome     string         `gorm:"type:varchar(32);not null"`
	Note        *string        `gorm:"type:varchar(255)"`
	ReceivedAt  time.Time      `gorm:"type:datetime(3);not null"`
}

func (WebhookEventLog) TableName() string { return "webhook_event_logs" }
