// Package schema declares the collection and field names used as the wire
// contract with the remote document store.
package schema

// Collections.
const (
	Suppliers = "suppliers"
	Products  = "products"
	Orders    = "orders"
)

// Supplier document fields.
const (
	SupplierID   = "supplier_id"
	SupplierName = "supplier_name"
	EmailAddress = "email_address"
	PhoneNumber  = "phone_number"
)

// Product document fields.
const (
	ProductID       = "product_id"
	ProductName     = "product_name"
	MinimumQuantity = "minimum_quantity"
	Quantity        = "quantity"
	MaximumQuantity = "maximum_quantity"
)

// Order document fields. Orders are write-only: this service creates them
// and never reads them back.
const (
	OrderProducts = "products"
	OrderDate     = "order_date"
)

// Transient input columns of the transactional views. These are not stored
// fields; they exist only while the user is collecting a batch.
const (
	InputReceived = "received"
	InputOutgoing = "outgoing"
)
