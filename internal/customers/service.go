package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/CodingBreaker07/nema-traders/internal/platform/httpx"
)

// ReferenceChecker reports whether another module still holds documents for a
// customer. Wired in at startup to keep deletes from orphaning receivables.
type ReferenceChecker interface {
	HasDocuments(ctx context.Context, customerID string) (bool, error)
}

type Service struct {
	repo     Repository
	checkers []ReferenceChecker
}

func NewService(repo Repository, checkers ...ReferenceChecker) *Service {
	return &Service{repo: repo, checkers: checkers}
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	customer := &Customer{
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		GSTNumber: req.GSTNumber,
		Address:   req.Address,
	}
	saved, err := s.repo.Save(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return saved, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateCustomerRequest) (*Customer, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Phone != nil {
		existing.Phone = *req.Phone
	}
	if req.Email != nil {
		existing.Email = req.Email
	}
	if req.GSTNumber != nil {
		existing.GSTNumber = req.GSTNumber
	}
	if req.Address != nil {
		existing.Address = req.Address
	}
	saved, err := s.repo.Save(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns customers, optionally filtered by a case-insensitive search
// over name, phone and email.
func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]*Customer, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if req.Search == "" {
		return all, nil
	}
	term := strings.ToLower(req.Search)
	var out []*Customer
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(c.Phone, req.Search) ||
			(c.Email != nil && strings.Contains(strings.ToLower(*c.Email), term)) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Delete removes a customer. Blocked while invoices or quotations still
// reference the customer.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("get customer: %w", err)
	}
	for _, checker := range s.checkers {
		has, err := checker.HasDocuments(ctx, id)
		if err != nil {
			return fmt.Errorf("check customer references: %w", err)
		}
		if has {
			return fmt.Errorf("%w: customer has existing invoices or quotations", httpx.ErrConflict)
		}
	}
	return s.repo.Delete(ctx, id)
}
