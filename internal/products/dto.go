package products

type CreateProductRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Category      *string `json:"category,omitempty" validate:"omitempty,max=100"`
	SKU           *string `json:"sku,omitempty" validate:"omitempty,max=100"`
	CurrentStock  int     `json:"currentStock"`
	MinStock      int     `json:"minStock" validate:"gte=0"`
	PurchasePrice float64 `json:"purchasePrice" validate:"gte=0"`
	SellingPrice  float64 `json:"sellingPrice" validate:"gte=0"`
	Unit          string  `json:"unit" validate:"max=20"`
}

type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Category      *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	SKU           *string  `json:"sku,omitempty" validate:"omitempty,max=100"`
	CurrentStock  *int     `json:"currentStock,omitempty"`
	MinStock      *int     `json:"minStock,omitempty" validate:"omitempty,gte=0"`
	PurchasePrice *float64 `json:"purchasePrice,omitempty" validate:"omitempty,gte=0"`
	SellingPrice  *float64 `json:"sellingPrice,omitempty" validate:"omitempty,gte=0"`
	Unit          *string  `json:"unit,omitempty" validate:"omitempty,max=20"`
}

type ListProductsRequest struct {
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
}
