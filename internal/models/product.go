// internal/models/product.go
package models

// Product is one row of the catalog snapshot handed to the parser.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
	Unit  string  `json:"unit,omitempty"`
}

// Names returns the product names in catalog order.
func Names(products []Product) []string {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	return names
}
