package accounts

import "time"

const (
	TypeBank       = "bank"
	TypeReceivable = "receivable"
)

type Account struct {
	Name          string    `gorm:"type:varchar(140);primaryKey"`
	AccountName   string    `gorm:"type:varchar(140);not null"`
	Company       string    `gorm:"type:varchar(140);not null;index:ix_accounts_company"`
	AccountType   string    `gorm:"type:varchar(32);not null"`
	ParentAccount *string   `gorm:"type:varchar(140)"`
	IsGroup       bool      `gorm:"not null;default:false"`
	Currency      string    `gorm:"type:char(3);not null"`
	CreatedAt     time.Time `gorm:"type:datetime(3);not null"`
}

func (Account) TableName() string { return "accounts" }

// ModeOfPaymentAccount maps a payment channel designation onto the
// ledger account that receives its money, per company.
type ModeOfPaymentAccount struct {
	ID             string    `gorm:"type:char(36);primaryKey"`
	ModeOfPayment  string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_mop_accounts_mode_company,priority:1"`
	Company        string    `gorm:"type:varchar(140);not null;uniqueIndex:ux_mop_accounts_mode_company,priority:2"`
	DefaultAccount string    `gorm:"type:varchar(140);not null"`
	CreatedAt      time.Time `gorm:"type:datetime(3);not null"`
}

func (ModeOfPaymentAccount) TableName() string { return "mode_of_payment_accounts" }

// PartyAccount is a party's designated receivable account for one
// company, overriding the company default.
type PartyAccount struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	PartyType string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_party_accounts_party_company,priority:1"`
	Party     string    `gorm:"type:varchar(140);not null;uniqueIndex:ux_party_accounts_party_company,priority:2"`
	Company   string    `gorm:"type:varchar(140);not null;uniqueIndex:ux_party_accounts_party_company,priority:3"`
	Account   string    `gorm:"type:varchar(140);not null"`
	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (PartyAccount) TableName() string { return "party_accounts" }
