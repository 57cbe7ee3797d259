package quotations

import (
	"time"

	"github.com/CodingBreaker07/nema-traders/internal/billing"
)

// DraftQuotation is the draft object passed into Save. An empty ID creates a
// new quotation; a non-empty ID edits the existing one.
type DraftQuotation struct {
	ID         string              `json:"id,omitempty"`
	CustomerID string              `json:"customerId"`
	ValidUntil *time.Time          `json:"validUntil,omitempty"`
	Items      []billing.DraftItem `json:"items"`
	Notes      *string             `json:"notes,omitempty"`
}

// ListQuotationsRequest filters quotation listings.
type ListQuotationsRequest struct {
	Status     QuotationStatus
	CustomerID string
}
