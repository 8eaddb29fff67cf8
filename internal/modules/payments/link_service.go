package payments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/4csolutions/razorpay-payments/internal/modules/invoices"
	"github.com/4csolutions/razorpay-payments/internal/shared/apperr"
)

// CustomerStore looks up the invoice's paying party for contact info.
type CustomerStore interface {
	GetCustomer(ctx context.Context, name string) (invoices.Customer, error)
}

// LinkProvider is the outbound payment-link API surface.
type LinkProvider interface {
	CreateLink(ctx context.Context, req CreateLinkRequest) (PaymentLink, error)
	NotifyBy(ctx context.Context, linkID, medium string) error
}

// LinkService creates and resends hosted payment links for submitted
// invoices.
type LinkService struct {
	invoices  InvoiceStore
	customers CustomerStore
	provider  LinkProvider
	logger    *slog.Logger
}

func NewLinkService(invoiceStore InvoiceStore, customers CustomerStore, provider LinkProvider, logger *slog.Logger) *LinkService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkService{invoices: invoiceStore, customers: customers, provider: provider, logger: logger}
}

// CreateForInvoice creates a link over the invoice's outstanding
// balance and stores its id and short URL on the invoice. The invoice
// must be submitted with a positive outstanding amount, and the
// customer must be reachable by mobile or email.
func (s *LinkService) CreateForInvoice(ctx context.Context, invoiceName string) (PaymentLink, error) {
	inv, err := s.invoices.Get(ctx, invoiceName)
	if err != nil {
		return PaymentLink{}, err
	}
	if !inv.Submitted() || !inv.OutstandingAmount.IsPositive() {
		return PaymentLink{}, apperr.ConflictErr(fmt.Sprintf("invoice %s is not payable", inv.Name))
	}

	cust, err := s.customers.GetCustomer(ctx, inv.Customer)
	if err != nil {
		return PaymentLink{}, err
	}

	contact := stringOr(inv.PaymentMobileNo, stringOr(cust.MobileNo, ""))
	email := stringOr(cust.Email, "")
	if contact == "" && email == "" {
		return PaymentLink{}, apperr.InvalidErr("Missing customer mobile/email. Cannot send payment link.", nil)
	}

	req := CreateLinkRequest{
		Amount:        inv.OutstandingAmount.Mul(minorUnitsPerMajor).IntPart(),
		Currency:      currencyOr(inv.Currency),
		AcceptPartial: true,
		ReferenceID:   inv.Name,
		Description:   fmt.Sprintf("Invoice %s", inv.Name),
		Customer: LinkCustomer{
			Name:    cust.CustomerName,
			Contact: contact,
			Email:   email,
		},
		Notify:         map[string]bool{"sms": true, "email": true},
		ReminderEnable: true,
		Notes:          map[string]string{"invoice_name": inv.Name},
	}

	link, err := s.provider.CreateLink(ctx, req)
	if err != nil {
		return PaymentLink{}, fmt.Errorf("create payment link for %s: %w", inv.Name, err)
	}

	if err := s.invoices.SetPaymentLink(ctx, inv.Name, link.ID, link.ShortURL); err != nil {
		return PaymentLink{}, fmt.Errorf("store payment link for %s: %w", inv.Name, err)
	}

	s.logger.InfoContext(ctx, "payment link created",
		"invoice", inv.Name, "link_id", link.ID, "has_contact", contact != "")
	return link, nil
}

// Resend notifies the customer again over the given medium ("sms" or
// "email"). The invoice must already carry a link.
func (s *LinkService) Resend(ctx context.Context, invoiceName, via string) error {
	inv, err := s.invoices.Get(ctx, invoiceName)
	if err != nil {
		return err
	}
	if inv.PaymentLinkID == nil || *inv.PaymentLinkID == "" {
		return apperr.ConflictErr("No Payment Link ID found. Create link first.")
	}

	if err := s.provider.NotifyBy(ctx, *inv.PaymentLinkID, via); err != nil {
		return fmt.Errorf("resend payment link for %s: %w", inv.Name, err)
	}

	s.logger.InfoContext(ctx, "payment link resent", "invoice", inv.Name, "via", via)
	return nil
}

func stringOr(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}

func currencyOr(c string) string {
	if c == "" {
		return "INR"
	}
	return c
}

var _ LinkProvider = (*Client)(nil)
