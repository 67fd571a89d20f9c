// Package supplier provides the Supplier catalog entry mirrored from the
// document store. Suppliers are created and edited externally; this service
// only reads them.
package supplier

import (
	"mminv/internal/core/schema"
	"mminv/internal/domain/store"
)

// Supplier is one supplier document.
type Supplier struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// FromDoc decodes a supplier document snapshot.
func FromDoc(id string, doc store.Document) Supplier {
	return Supplier{
		ID:    id,
		Name:  doc.Str(schema.SupplierName),
		Email: doc.Str(schema.EmailAddress),
		Phone: doc.Str(schema.PhoneNumber),
	}
}
