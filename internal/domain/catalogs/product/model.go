// Package product provides the Product catalog entry mirrored from the
// document store.
package product

import (
	"mminv/internal/core/schema"
	"mminv/internal/domain/store"
)

// Product is one product document. Quantities are non-negative integers by
// upstream convention; MaxQuantity >= MinQuantity is an unenforced
// data-quality assumption inherited from data entry.
type Product struct {
	ID          string
	Name        string
	MinQuantity int
	Quantity    int
	MaxQuantity int
	SupplierID  string
}

// FromDoc decodes a product document snapshot.
func FromDoc(id string, doc store.Document) Product {
	return Product{
		ID:          id,
		Name:        doc.Str(schema.ProductName),
		MinQuantity: doc.Int(schema.MinimumQuantity),
		Quantity:    doc.Int(schema.Quantity),
		MaxQuantity: doc.Int(schema.MaximumQuantity),
		SupplierID:  doc.Str(schema.SupplierID),
	}
}
