package products

import "github.com/CodingBreaker07/nema-traders/internal/platform/kv"

// Collection is the record store collection holding products.
const Collection = "products"

// Product tracks catalog data and running stock. CurrentStock may go
// negative when oversold; no hard floor is enforced.
type Product struct {
	kv.Meta
	Name          string  `json:"name"`
	Category      *string `json:"category,omitempty"`
	SKU           *string `json:"sku,omitempty"`
	CurrentStock  int     `json:"currentStock"`
	MinStock      int     `json:"minStock"`
	PurchasePrice float64 `json:"purchasePrice"`
	SellingPrice  float64 `json:"sellingPrice"`
	Unit          string  `json:"unit"`
}
