package customers

import "github.com/CodingBreaker07/nema-traders/internal/platform/kv"

// Collection is the record store collection holding customers.
const Collection = "customers"

// Customer is the identity key for all receivables.
type Customer struct {
	kv.Meta
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email,omitempty"`
	GSTNumber *string `json:"gstNumber,omitempty"`
	Address   *string `json:"address,omitempty"`
}
