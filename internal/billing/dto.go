package billing

import "time"

// DraftItem is one line of a draft invoice as entered by the caller.
type DraftItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	Rate      float64 `json:"rate" validate:"gte=0"`
}

// DraftInvoice is the explicit draft object passed into SaveInvoice. An empty
// ID creates a new invoice; a non-empty ID edits the existing one.
// PartialPayment is the amount already received against the invoice,
// NewPayment is a payment entered together with this save.
type DraftInvoice struct {
	ID             string         `json:"id,omitempty"`
	CustomerID     string         `json:"customerId"`
	InvoiceDate    *time.Time     `json:"invoiceDate,omitempty"`
	DueDate        *time.Time     `json:"dueDate,omitempty"`
	Status         DocumentStatus `json:"status" validate:"required,oneof=pending paid"`
	PaymentDate    *time.Time     `json:"paymentDate,omitempty"`
	PaymentMethod  *string        `json:"paymentMethod,omitempty"`
	PartialPayment float64        `json:"partialPayment" validate:"gte=0"`
	NewPayment     float64        `json:"newPayment" validate:"gte=0"`
	Items          []DraftItem    `json:"items"`
	Notes          *string        `json:"notes,omitempty"`
}

// FromQuotationInput carries the fields copied from a quotation into a new
// pending invoice.
type FromQuotationInput struct {
	QuotationID     string
	QuotationNumber string
	CustomerID      string
	Items           []InvoiceItem
	Total           float64
	Notes           *string
}

// RecordPaymentRequest applies one incoming customer payment across that
// customer's outstanding credit entries.
type RecordPaymentRequest struct {
	CustomerID string     `json:"customerId" validate:"required"`
	Amount     float64    `json:"amount"`
	Date       *time.Time `json:"date,omitempty"`
	Method     string     `json:"method,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

// AllocationResult reports how a payment was spread across credit entries.
// Unallocated is the remainder left after every pending entry was settled;
// it is discarded, not carried forward.
type AllocationResult struct {
	Entries     []*CreditEntry `json:"entries"`
	Allocated   float64        `json:"allocated"`
	Unallocated float64        `json:"unallocated"`
}

// ListInvoicesRequest filters invoice listings.
type ListInvoicesRequest struct {
	Status     DocumentStatus
	CustomerID string
}

// ListCreditsRequest filters credit entry listings.
type ListCreditsRequest struct {
	Status     DocumentStatus
	CustomerID string
}
