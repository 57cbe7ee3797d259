// Package billing owns the invoice lifecycle, the customer credit ledger and
// the statement generator. An Invoice and its CreditEntry are independently
// stored records referencing each other by id; keeping them consistent is the
// protocol implemented by Service.
package billing

import (
	"time"

	"github.com/CodingBreaker07/nema-traders/internal/platform/kv"
)

// Record store collections owned by this package.
const (
	InvoiceCollection = "invoices"
	CreditCollection  = "credits"
)

// DocumentStatus enumerates invoice and credit entry statuses.
type DocumentStatus string

const (
	StatusPending DocumentStatus = "pending"
	StatusPaid    DocumentStatus = "paid"
)

// Payment method markers written by the lifecycle itself, as opposed to
// user-chosen methods (cash, upi, cheque, card).
const (
	MethodAdvance    = "advance"
	MethodPartial    = "partial"
	MethodSettlement = "invoice_payment"
)

// InvoiceItem is one line of an invoice.
type InvoiceItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Rate      float64 `json:"rate"`
	Amount    float64 `json:"amount"`
}

// Invoice model. InvoiceNumber is assigned once at creation and never
// reassigned. RemainingAmount caches the outstanding balance: total minus
// payments recorded against the linked credit entry while pending, zero once
// paid.
type Invoice struct {
	kv.Meta
	InvoiceNumber   string         `json:"invoiceNumber"`
	CustomerID      string         `json:"customerId"`
	InvoiceDate     time.Time      `json:"invoiceDate"`
	DueDate         *time.Time     `json:"dueDate,omitempty"`
	PaymentDate     *time.Time     `json:"paymentDate,omitempty"`
	PaymentMethod   *string        `json:"paymentMethod,omitempty"`
	Items           []InvoiceItem  `json:"items"`
	Subtotal        float64        `json:"subtotal"`
	Total           float64        `json:"total"`
	Status          DocumentStatus `json:"status"`
	RemainingAmount float64        `json:"remainingAmount"`
	Notes           *string        `json:"notes,omitempty"`
	ConvertedFrom   *string        `json:"convertedFrom,omitempty"`
}

// CreditPayment is one settlement recorded against a credit entry.
type CreditPayment struct {
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
	Method string    `json:"method"`
}

// CreditEntry is the accounts-receivable shadow of an invoice: at most one
// per invoice, created lazily on first save. RemainingAmount equals the
// original amount minus the sum of payments; status flips to paid exactly
// when it drops to zero or below.
type CreditEntry struct {
	kv.Meta
	CustomerID      string          `json:"customerId"`
	InvoiceID       string          `json:"invoiceId"`
	Amount          float64         `json:"amount"`
	RemainingAmount float64         `json:"remainingAmount"`
	DueDate         *time.Time      `json:"dueDate,omitempty"`
	Status          DocumentStatus  `json:"status"`
	Notes           *string         `json:"notes,omitempty"`
	Payments        []CreditPayment `json:"payments"`
}

// AgingBucket summarises outstanding credit by days overdue.
type AgingBucket struct {
	Current   float64 `json:"current"`
	Bucket30  float64 `json:"bucket30"`
	Bucket60  float64 `json:"bucket60"`
	Bucket90  float64 `json:"bucket90"`
	Bucket120 float64 `json:"bucket120"`
}
