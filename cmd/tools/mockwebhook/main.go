package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
)

type entityWrapper[T any] struct {
	Entity T `json:"entity"`
}

type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment     *entityWrapper[paymentEntity] `json:"payment,omitempty"`
		PaymentLink *entityWrapper[linkEntity]    `json:"payment_link,omitempty"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes"`
}

type linkEntity struct {
	ID          string            `json:"id"`
	ReferenceID string            `json:"reference_id"`
	Amount      int64             `json:"amount"`
	AmountPaid  int64             `json:"amount_paid"`
	Currency    string            `json:"currency"`
	Status      string            `json:"status"`
	Notes       map[string]string `json:"notes"`
}

func main() {
	url := flag.String("url", "http://localhost:8080/webhooks/razorpay", "Webhook URL")
	secret := flag.String("secret", os.Getenv("RAZORPAY_WEBHOOK_SECRET"), "Webhook secret")
	eventType := flag.String("type", "payment_link.paid", "Event type (payment_link.paid, payment_link.partially_paid, payment.captured)")
	invoice := flag.String("invoice", "ACC-SINV-2026-00001", "Invoice name put into notes")
	txnID := flag.String("txn-id", "pay_"+randomHex(8), "Payment id")
	linkID := flag.String("link-id", "plink_"+randomHex(8), "Payment link id")
	amount := flag.Int64("amount", 50000, "Amount in minor units (paise)")
	currency := flag.String("currency", "INR", "Currency")
	dryRun := flag.Bool("dry-run", false, "Only print signature header, don't send")

	flag.Parse()

	if *secret == "" {
		fmt.Fprintf(os.Stderr, "Error: secret not provided and RAZORPAY_WEBHOOK_SECRET not set\n")
		os.Exit(1)
	}

	notes := map[string]string{"invoice_name": *invoice}

	var payload webhookPayload
	payload.Event = *eventType
	payload.Payload.Payment = &entityWrapper[paymentEntity]{Entity: paymentEntity{
		ID:       *txnID,
		Amount:   *amount,
		Currency: *currency,
		Status:   "captured",
		Notes:    notes,
	}}
	payload.Payload.PaymentLink = &entityWrapper[linkEntity]{Entity: linkEntity{
		ID:          *linkID,
		ReferenceID: *invoice,
		Amount:      *amount,
		AmountPaid:  *amount,
		Currency:    *currency,
		Status:      "paid",
		Notes:       notes,
	}}

	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
		os.Exit(1)
	}

	sig := computeSig([]byte(*secret), body)

	fmt.Printf("X-Razorpay-Signature: %s\n", sig)
	fmt.Printf("Body: %s\n", string(body))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	fmt.Printf("\nSending to %s...\n", *url)
	req, err := http.NewRequest("POST", *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating request: %v\n", err)
		os.Exit(1)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Razorpay-Signature", sig)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", string(respBody))

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

func computeSig(secret, body []byte) string {
	m := hmac.New(sha256.New, secret)
	m.Write(body)
	return hex.EncodeToString(m.Sum(nil))
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)[:n]
}
