package products

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	product := &Product{
		Name:          req.Name,
		Category:      req.Category,
		SKU:           req.SKU,
		CurrentStock:  req.CurrentStock,
		MinStock:      req.MinStock,
		PurchasePrice: req.PurchasePrice,
		SellingPrice:  req.SellingPrice,
		Unit:          unit,
	}
	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return saved, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Category != nil {
		existing.Category = req.Category
	}
	if req.SKU != nil {
		existing.SKU = req.SKU
	}
	if req.CurrentStock != nil {
		existing.CurrentStock = *req.CurrentStock
	}
	if req.MinStock != nil {
		existing.MinStock = *req.MinStock
	}
	if req.PurchasePrice != nil {
		existing.PurchasePrice = *req.PurchasePrice
	}
	if req.SellingPrice != nil {
		existing.SellingPrice = *req.SellingPrice
	}
	if req.Unit != nil {
		existing.Unit = *req.Unit
	}
	saved, err := s.repo.Save(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]*Product, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Product
	for _, p := range all {
		if req.Category != "" && (p.Category == nil || *p.Category != req.Category) {
			continue
		}
		if req.Search != "" {
			term := strings.ToLower(req.Search)
			if !strings.Contains(strings.ToLower(p.Name), term) &&
				(p.SKU == nil || !strings.Contains(strings.ToLower(*p.SKU), term)) {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

// AdjustStock applies a signed delta to a product's running stock.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (*Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	product.CurrentStock += delta
	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	return saved, nil
}

// LowStock lists products at or below their reorder threshold. Products
// without their own MinStock fall back to the supplied default.
func (s *Service) LowStock(ctx context.Context, defaultThreshold int) ([]*Product, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Product
	for _, p := range all {
		threshold := p.MinStock
		if threshold == 0 {
			threshold = defaultThreshold
		}
		if p.CurrentStock <= threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories returns the distinct product categories in use, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range all {
		if p.Category == nil || *p.Category == "" || seen[*p.Category] {
			continue
		}
		seen[*p.Category] = true
		out = append(out, *p.Category)
	}
	sort.Strings(out)
	return out, nil
}
