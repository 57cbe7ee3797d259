package quotations

import (
	"time"

	"github.com/CodingBreaker07/nema-traders/internal/billing"
	"github.com/CodingBreaker07/nema-traders/internal/platform/kv"
)

// Collection is the record store collection holding quotations.
const Collection = "quotations"

type QuotationStatus string

const (
	StatusPending   QuotationStatus = "pending"
	StatusConverted QuotationStatus = "converted"
)

// Quotation never touches stock or credit; converting one creates a new
// pending invoice and makes the quotation terminal.
type Quotation struct {
	kv.Meta
	QuotationNumber string                `json:"quotationNumber"`
	CustomerID      string                `json:"customerId"`
	ValidUntil      *time.Time            `json:"validUntil,omitempty"`
	Items           []billing.InvoiceItem `json:"items"`
	Total           float64               `json:"total"`
	Status          QuotationStatus       `json:"status"`
	Notes           *string               `json:"notes,omitempty"`
}
