package billing

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// StatementRow is one ledger line: an invoice debit or a payment credit.
// Balance is the running balance accumulated from the opening balance.
type StatementRow struct {
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	RefID       string    `json:"refId"`
	Particulars string    `json:"particulars"`
	Debit       float64   `json:"debit"`
	Credit      float64   `json:"credit"`
	Balance     float64   `json:"balance"`
}

// StatementSummary carries the period totals.
type StatementSummary struct {
	OpeningBalance float64 `json:"openingBalance"`
	TotalDebits    float64 `json:"totalDebits"`
	TotalCredits   float64 `json:"totalCredits"`
	ClosingBalance float64 `json:"closingBalance"`
}

// CustomerStatement is the chronological debit/credit view for one customer
// over a date range.
type CustomerStatement struct {
	Summary      StatementSummary `json:"summary"`
	Transactions []StatementRow   `json:"transactions"`
}

// Statement reconstructs the customer ledger between from and to, inclusive.
// Every invoice contributes a debit dated at its invoice date; every payment
// on the customer's credit entries contributes a credit dated at the payment
// date. Transactions strictly before start-of-day(from) form the opening
// balance. The function is read-only and recomputes from the store each call.
func (s *Service) Statement(ctx context.Context, customerID string, from, to time.Time) (*CustomerStatement, error) {
	if _, err := s.customerRepo.Get(ctx, customerID); err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}

	invoices, err := s.ListInvoices(ctx, ListInvoicesRequest{CustomerID: customerID})
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	credits, err := s.ListCredits(ctx, ListCreditsRequest{CustomerID: customerID})
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}

	// Invoices are appended before payments so the stable sort keeps debits
	// ahead of same-day credits.
	var all []StatementRow
	for _, inv := range invoices {
		date := inv.InvoiceDate
		if date.IsZero() {
			date = inv.CreatedAt
		}
		all = append(all, StatementRow{
			Date:        date,
			Type:        "invoice",
			RefID:       inv.ID,
			Particulars: fmt.Sprintf("Invoice #%s", inv.InvoiceNumber),
			Debit:       inv.Total,
		})
	}
	for _, credit := range credits {
		for _, p := range credit.Payments {
			all = append(all, StatementRow{
				Date:        p.Date,
				Type:        "payment",
				RefID:       credit.ID,
				Particulars: fmt.Sprintf("Payment Received (%s)", p.Method),
				Credit:      p.Amount,
			})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.Before(all[j].Date)
	})

	start := startOfDay(from)
	end := endOfDay(to)

	statement := &CustomerStatement{Transactions: []StatementRow{}}
	for _, tx := range all {
		switch {
		case tx.Date.Before(start):
			statement.Summary.OpeningBalance += tx.Debit - tx.Credit
		case !tx.Date.After(end):
			statement.Summary.TotalDebits += tx.Debit
			statement.Summary.TotalCredits += tx.Credit
			statement.Transactions = append(statement.Transactions, tx)
		}
	}
	statement.Summary.ClosingBalance = statement.Summary.OpeningBalance +
		statement.Summary.TotalDebits - statement.Summary.TotalCredits

	balance := statement.Summary.OpeningBalance
	for i := range statement.Transactions {
		balance += statement.Transactions[i].Debit - statement.Transactions[i].Credit
		statement.Transactions[i].Balance = balance
	}
	return statement, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
