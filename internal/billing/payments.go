package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/CodingBreaker07/nema-traders/internal/platform/httpx"
	"github.com/CodingBreaker07/nema-traders/internal/shared"
)

// RecordPayment applies an incoming customer payment across the customer's
// pending credit entries, oldest first. Entries settled by the allocation are
// marked paid and their linked invoices flip to paid with this payment's
// date and method. Any amount left after all entries are settled is
// discarded, not carried forward as customer credit.
func (s *Service) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*AllocationResult, error) {
	if req.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer is required", httpx.ErrValidation)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", httpx.ErrValidation)
	}
	if _, err := s.customerRepo.Get(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}

	paidAt := time.Now()
	if req.Date != nil {
		paidAt = *req.Date
	}
	method := req.Method
	if method == "" {
		method = "cash"
	}

	unlock := s.locks.Lock(shared.CustomerLockKey(req.CustomerID))
	defer unlock()

	pending, err := s.ListCredits(ctx, ListCreditsRequest{
		CustomerID: req.CustomerID,
		Status:     StatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("list pending credits: %w", err)
	}

	result := &AllocationResult{}
	toAllocate := req.Amount
	for _, credit := range pending {
		if toAllocate <= 0 {
			break
		}
		share := min(toAllocate, credit.RemainingAmount)
		credit.RemainingAmount -= share
		toAllocate -= share
		credit.Payments = append(credit.Payments, CreditPayment{
			Amount: share,
			Date:   paidAt,
			Method: method,
		})
		if credit.RemainingAmount <= 0 {
			credit.Status = StatusPaid
			if credit.InvoiceID != "" {
				if err := s.settleInvoice(ctx, credit.InvoiceID, paidAt, method); err != nil {
					return nil, err
				}
			}
		}
		saved, err := s.repo.SaveCredit(ctx, credit)
		if err != nil {
			return nil, fmt.Errorf("save credit entry: %w", err)
		}
		result.Entries = append(result.Entries, saved)
		result.Allocated += share
	}
	result.Unallocated = toAllocate
	return result, nil
}

// settleInvoice flips a pending invoice to paid after its credit entry was
// fully allocated.
func (s *Service) settleInvoice(ctx context.Context, invoiceID string, paidAt time.Time, method string) error {
	invoice, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("get linked invoice: %w", err)
	}
	if invoice.Status != StatusPending {
		return nil
	}
	invoice.Status = StatusPaid
	invoice.RemainingAmount = 0
	invoice.PaymentDate = &paidAt
	invoice.PaymentMethod = &method
	if _, err := s.repo.SaveInvoice(ctx, invoice); err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}
	return nil
}

// Outstanding sums the remaining amounts of a customer's pending credits.
func (s *Service) Outstanding(ctx context.Context, customerID string) (float64, error) {
	pending, err := s.ListCredits(ctx, ListCreditsRequest{
		CustomerID: customerID,
		Status:     StatusPending,
	})
	if err != nil {
		return 0, err
	}
	var total float64
	for _, c := range pending {
		total += c.RemainingAmount
	}
	return total, nil
}

// Aging groups outstanding credit by days overdue relative to asOf. Entries
// without a due date count as current.
func (s *Service) Aging(ctx context.Context, asOf time.Time) (AgingBucket, error) {
	pending, err := s.ListCredits(ctx, ListCreditsRequest{Status: StatusPending})
	if err != nil {
		return AgingBucket{}, err
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}
	var bucket AgingBucket
	for _, c := range pending {
		days := 0
		if c.DueDate != nil {
			days = int(asOf.Sub(*c.DueDate).Hours() / 24)
		}
		switch {
		case days <= 0:
			bucket.Current += c.RemainingAmount
		case days <= 30:
			bucket.Bucket30 += c.RemainingAmount
		case days <= 60:
			bucket.Bucket60 += c.RemainingAmount
		case days <= 90:
			bucket.Bucket90 += c.RemainingAmount
		default:
			bucket.Bucket120 += c.RemainingAmount
		}
	}
	return bucket, nil
}
