package quotations

import (
	"context"
	"fmt"

	"github.com/CodingBreaker07/nema-traders/internal/billing"
	"github.com/CodingBreaker07/nema-traders/internal/customers"
	"github.com/CodingBreaker07/nema-traders/internal/platform/httpx"
)

type Service struct {
	repo         Repository
	customerRepo customers.Repository
	billing      *billing.Service
}

func NewService(repo Repository, customerRepo customers.Repository, billingService *billing.Service) *Service {
	return &Service{
		repo:         repo,
		customerRepo: customerRepo,
		billing:      billingService,
	}
}

// Save creates or updates a quotation. Converted quotations are terminal and
// reject further edits.
func (s *Service) Save(ctx context.Context, draft DraftQuotation) (*Quotation, error) {
	if draft.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer is required", httpx.ErrValidation)
	}
	items := keepItems(draft.Items)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", httpx.ErrValidation)
	}
	if _, err := s.customerRepo.Get(ctx, draft.CustomerID); err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}

	var total float64
	for _, it := range items {
		total += it.Amount
	}

	quotation := &Quotation{Status: StatusPending}
	if draft.ID != "" {
		existing, err := s.repo.Get(ctx, draft.ID)
		if err != nil {
			return nil, fmt.Errorf("get quotation: %w", err)
		}
		if existing.Status == StatusConverted {
			return nil, fmt.Errorf("%w: converted quotations cannot be edited", httpx.ErrConflict)
		}
		quotation.Meta = existing.Meta
		quotation.QuotationNumber = existing.QuotationNumber
	} else {
		number, err := s.repo.GenerateNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("generate quotation number: %w", err)
		}
		quotation.QuotationNumber = number
	}
	quotation.CustomerID = draft.CustomerID
	quotation.ValidUntil = draft.ValidUntil
	quotation.Items = items
	quotation.Total = total
	quotation.Notes = draft.Notes

	saved, err := s.repo.Save(ctx, quotation)
	if err != nil {
		return nil, fmt.Errorf("save quotation: %w", err)
	}
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Quotation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]*Quotation, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Quotation, 0, len(all))
	for _, q := range all {
		if req.Status != "" && q.Status != req.Status {
			continue
		}
		if req.CustomerID != "" && q.CustomerID != req.CustomerID {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("get quotation: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

// Convert copies the quotation into a new pending invoice and marks the
// quotation converted. The new invoice takes no stock and gets no credit
// entry until it is next saved through the invoice lifecycle.
func (s *Service) Convert(ctx context.Context, id string) (*billing.Invoice, error) {
	quotation, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if quotation.Status == StatusConverted {
		return nil, fmt.Errorf("%w: quotation already converted", httpx.ErrConflict)
	}

	invoice, err := s.billing.CreateFromQuotation(ctx, billing.FromQuotationInput{
		QuotationID:     quotation.ID,
		QuotationNumber: quotation.QuotationNumber,
		CustomerID:      quotation.CustomerID,
		Items:           quotation.Items,
		Total:           quotation.Total,
		Notes:           quotation.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("convert quotation: %w", err)
	}

	quotation.Status = StatusConverted
	if _, err := s.repo.Save(ctx, quotation); err != nil {
		return nil, fmt.Errorf("mark quotation converted: %w", err)
	}
	return invoice, nil
}

// HasDocuments reports whether any quotation references the customer.
func (s *Service) HasDocuments(ctx context.Context, customerID string) (bool, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return false, err
	}
	for _, q := range all {
		if q.CustomerID == customerID {
			return true, nil
		}
	}
	return false, nil
}

func keepItems(items []billing.DraftItem) []billing.InvoiceItem {
	out := make([]billing.InvoiceItem, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			continue
		}
		out = append(out, billing.InvoiceItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Rate:      it.Rate,
			Amount:    float64(it.Quantity) * it.Rate,
		})
	}
	return out
}
