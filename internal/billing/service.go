package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CodingBreaker07/nema-traders/internal/customers"
	"github.com/CodingBreaker07/nema-traders/internal/platform/httpx"
	"github.com/CodingBreaker07/nema-traders/internal/products"
	"github.com/CodingBreaker07/nema-traders/internal/shared"
)

// Service implements the invoice lifecycle, payment allocation and statement
// generation over the record store.
type Service struct {
	repo         Repository
	customerRepo customers.Repository
	productRepo  products.Repository
	locks        *shared.KeyedMutex
}

// NewService builds Service instance.
func NewService(repo Repository, customerRepo customers.Repository, productRepo products.Repository) *Service {
	return &Service{
		repo:         repo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		locks:        shared.NewKeyedMutex(),
	}
}

// SaveInvoice creates or updates an invoice, adjusts product stock and
// reconciles the linked credit entry. The draft's PartialPayment plus
// NewPayment must stay strictly below the total for a pending invoice.
func (s *Service) SaveInvoice(ctx context.Context, draft DraftInvoice) (*Invoice, error) {
	if draft.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer is required", httpx.ErrValidation)
	}
	items := keepItems(draft.Items)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", httpx.ErrValidation)
	}
	if draft.Status != StatusPending && draft.Status != StatusPaid {
		return nil, fmt.Errorf("%w: status must be pending or paid", httpx.ErrValidation)
	}
	if _, err := s.customerRepo.Get(ctx, draft.CustomerID); err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}

	var total float64
	for _, it := range items {
		total += it.Amount
	}
	received := draft.PartialPayment + draft.NewPayment
	if draft.Status == StatusPending && received >= total {
		return nil, fmt.Errorf("%w: amount received must be less than the total for a pending invoice", httpx.ErrValidation)
	}

	unlock := s.locks.Lock(shared.CustomerLockKey(draft.CustomerID))
	defer unlock()

	var existing *Invoice
	if draft.ID != "" {
		var err error
		existing, err = s.repo.GetInvoice(ctx, draft.ID)
		if err != nil {
			return nil, fmt.Errorf("get invoice: %w", err)
		}
	}

	now := time.Now()
	invoice := &Invoice{}
	if existing != nil {
		invoice.Meta = existing.Meta
		invoice.InvoiceNumber = existing.InvoiceNumber
		invoice.ConvertedFrom = existing.ConvertedFrom
	} else {
		number, err := s.repo.GenerateInvoiceNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("generate invoice number: %w", err)
		}
		invoice.InvoiceNumber = number
	}
	invoice.CustomerID = draft.CustomerID
	invoice.InvoiceDate = now
	if draft.InvoiceDate != nil {
		invoice.InvoiceDate = *draft.InvoiceDate
	}
	invoice.DueDate = draft.DueDate
	invoice.Items = items
	invoice.Subtotal = total
	invoice.Total = total
	invoice.Status = draft.Status
	invoice.Notes = draft.Notes
	if draft.Status == StatusPaid {
		paymentDate := now
		if draft.PaymentDate != nil {
			paymentDate = *draft.PaymentDate
		}
		invoice.PaymentDate = &paymentDate
		invoice.PaymentMethod = draft.PaymentMethod
		invoice.RemainingAmount = 0
	} else {
		invoice.PaymentDate = nil
		invoice.PaymentMethod = nil
		invoice.RemainingAmount = total - received
	}

	// Reverse the previous item list, then apply the new one: stock ends up
	// reflecting only the latest items, never double-counted.
	if existing != nil {
		if err := s.adjustStock(ctx, existing.Items, +1); err != nil {
			return nil, err
		}
	}
	if err := s.adjustStock(ctx, invoice.Items, -1); err != nil {
		return nil, err
	}

	saved, err := s.repo.SaveInvoice(ctx, invoice)
	if err != nil {
		return nil, fmt.Errorf("save invoice: %w", err)
	}

	if err := s.reconcileCredit(ctx, saved, draft); err != nil {
		return nil, err
	}
	return saved, nil
}

// reconcileCredit keeps the invoice's credit entry consistent after a save.
// At most one credit entry ever exists per invoice: the lookup runs first.
func (s *Service) reconcileCredit(ctx context.Context, invoice *Invoice, draft DraftInvoice) error {
	credit, err := s.repo.CreditByInvoice(ctx, invoice.ID)
	if err != nil {
		return fmt.Errorf("find credit entry: %w", err)
	}

	switch invoice.Status {
	case StatusPending:
		if credit == nil {
			notes := fmt.Sprintf("From invoice #%s", invoice.InvoiceNumber)
			credit = &CreditEntry{
				CustomerID:      invoice.CustomerID,
				InvoiceID:       invoice.ID,
				Amount:          invoice.Total,
				RemainingAmount: invoice.Total,
				DueDate:         invoice.DueDate,
				Status:          StatusPending,
				Notes:           &notes,
				Payments:        []CreditPayment{},
			}
			if draft.PartialPayment > 0 {
				credit.RemainingAmount -= draft.PartialPayment
				credit.Payments = append(credit.Payments, CreditPayment{
					Amount: draft.PartialPayment,
					Date:   invoice.InvoiceDate,
					Method: MethodAdvance,
				})
			}
			if _, err := s.repo.SaveCredit(ctx, credit); err != nil {
				return fmt.Errorf("create credit entry: %w", err)
			}
			return nil
		}

		if draft.NewPayment > 0 {
			credit.Payments = append(credit.Payments, CreditPayment{
				Amount: draft.NewPayment,
				Date:   time.Now(),
				Method: MethodPartial,
			})
		}
		credit.RemainingAmount = invoice.Total - (draft.PartialPayment + draft.NewPayment)
		if credit.RemainingAmount <= 0 {
			credit.Status = StatusPaid
			now := time.Now()
			invoice.Status = StatusPaid
			invoice.RemainingAmount = 0
			invoice.PaymentDate = &now
			if _, err := s.repo.SaveInvoice(ctx, invoice); err != nil {
				return fmt.Errorf("mark invoice paid: %w", err)
			}
		}
		if _, err := s.repo.SaveCredit(ctx, credit); err != nil {
			return fmt.Errorf("update credit entry: %w", err)
		}
		return nil

	case StatusPaid:
		settledAt := time.Now()
		if invoice.PaymentDate != nil {
			settledAt = *invoice.PaymentDate
		}
		method := MethodSettlement
		if invoice.PaymentMethod != nil && *invoice.PaymentMethod != "" {
			method = *invoice.PaymentMethod
		}
		if credit == nil {
			notes := fmt.Sprintf("From paid invoice #%s", invoice.InvoiceNumber)
			credit = &CreditEntry{
				CustomerID:      invoice.CustomerID,
				InvoiceID:       invoice.ID,
				Amount:          invoice.Total,
				RemainingAmount: 0,
				DueDate:         invoice.DueDate,
				Status:          StatusPaid,
				Notes:           &notes,
				Payments: []CreditPayment{{
					Amount: invoice.Total,
					Date:   settledAt,
					Method: method,
				}},
			}
			if _, err := s.repo.SaveCredit(ctx, credit); err != nil {
				return fmt.Errorf("create settled credit entry: %w", err)
			}
			return nil
		}
		credit.RemainingAmount = 0
		credit.Status = StatusPaid
		credit.Payments = []CreditPayment{{
			Amount: credit.Amount,
			Date:   settledAt,
			Method: method,
		}}
		if _, err := s.repo.SaveCredit(ctx, credit); err != nil {
			return fmt.Errorf("settle credit entry: %w", err)
		}
		return nil
	}
	return nil
}

// DeleteInvoice removes the linked credit entry, then the invoice. Stock
// consumed by the invoice is deliberately not restored.
func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	invoice, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return fmt.Errorf("get invoice: %w", err)
	}

	unlock := s.locks.Lock(shared.CustomerLockKey(invoice.CustomerID))
	defer unlock()

	credit, err := s.repo.CreditByInvoice(ctx, id)
	if err != nil {
		return fmt.Errorf("find credit entry: %w", err)
	}
	if credit != nil {
		if err := s.repo.DeleteCredit(ctx, credit.ID); err != nil {
			return fmt.Errorf("delete credit entry: %w", err)
		}
	}
	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// CreateFromQuotation writes a new pending invoice copied from a quotation.
// This path skips the stock adjustment and the credit reconciliation that
// SaveInvoice performs; both run only when the invoice is next saved.
func (s *Service) CreateFromQuotation(ctx context.Context, input FromQuotationInput) (*Invoice, error) {
	number, err := s.repo.GenerateInvoiceNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate invoice number: %w", err)
	}
	notes := fmt.Sprintf("Converted from Quotation #%s", input.QuotationNumber)
	if input.Notes != nil && *input.Notes != "" {
		notes += "\n" + *input.Notes
	}
	invoice := &Invoice{
		InvoiceNumber:   number,
		CustomerID:      input.CustomerID,
		InvoiceDate:     time.Now(),
		Items:           input.Items,
		Subtotal:        input.Total,
		Total:           input.Total,
		Status:          StatusPending,
		RemainingAmount: input.Total,
		Notes:           &notes,
		ConvertedFrom:   &input.QuotationID,
	}
	saved, err := s.repo.SaveInvoice(ctx, invoice)
	if err != nil {
		return nil, fmt.Errorf("save converted invoice: %w", err)
	}
	return saved, nil
}

// GetInvoice returns one invoice by id.
func (s *Service) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

// ListInvoices returns invoices matching the filter, in creation order.
func (s *Service) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]*Invoice, error) {
	all, err := s.repo.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Invoice, 0, len(all))
	for _, inv := range all {
		if req.Status != "" && inv.Status != req.Status {
			continue
		}
		if req.CustomerID != "" && inv.CustomerID != req.CustomerID {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

// ListCredits returns credit entries matching the filter, in creation order.
func (s *Service) ListCredits(ctx context.Context, req ListCreditsRequest) ([]*CreditEntry, error) {
	all, err := s.repo.ListCredits(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*CreditEntry, 0, len(all))
	for _, c := range all {
		if req.Status != "" && c.Status != req.Status {
			continue
		}
		if req.CustomerID != "" && c.CustomerID != req.CustomerID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// HasDocuments reports whether any invoice references the customer. Used by
// the customers module to guard deletes.
func (s *Service) HasDocuments(ctx context.Context, customerID string) (bool, error) {
	all, err := s.repo.ListInvoices(ctx)
	if err != nil {
		return false, err
	}
	for _, inv := range all {
		if inv.CustomerID == customerID {
			return true, nil
		}
	}
	return false, nil
}

// adjustStock applies sign*quantity to every referenced product's stock.
// Products deleted since the invoice was written are skipped.
func (s *Service) adjustStock(ctx context.Context, items []InvoiceItem, sign int) error {
	for _, item := range items {
		if item.ProductID == "" {
			continue
		}
		product, err := s.productRepo.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				continue
			}
			return fmt.Errorf("get product: %w", err)
		}
		product.CurrentStock += sign * item.Quantity
		if _, err := s.productRepo.Save(ctx, product); err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
	}
	return nil
}

// keepItems drops lines without a product reference and computes amounts.
func keepItems(items []DraftItem) []InvoiceItem {
	out := make([]InvoiceItem, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			continue
		}
		out = append(out, InvoiceItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Rate:      it.Rate,
			Amount:    float64(it.Quantity) * it.Rate,
		})
	}
	return out
}
