package reorder

import (
	"context"
	"fmt"
	"strings"

	"mminv/pkg/logger"
)

// OrderLine is one requested product within an order summary.
type OrderLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// OrderSummary is the user-visible confirmation of one synthesized purchase
// order: supplier contact info plus every ordered product and quantity.
type OrderSummary struct {
	SupplierID   string      `json:"supplier_id"`
	SupplierName string      `json:"supplier_name"`
	Email        string      `json:"email_address"`
	Phone        string      `json:"phone_number"`
	Lines        []OrderLine `json:"lines"`
}

// Text renders the summary as the classic one-order confirmation block.
func (s OrderSummary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order to %s %s:\n", s.SupplierName, s.Email)
	for _, line := range s.Lines {
		fmt.Fprintf(&b, "    %s %s: %d\n", line.ProductID, line.ProductName, line.Quantity)
	}
	return b.String()
}

// Notifier receives order confirmations after a successful outgoing apply.
// Notification is a side effect only: failures carry no retry semantics.
type Notifier interface {
	OrderPlaced(ctx context.Context, summary OrderSummary)
}

// LogNotifier writes order confirmations to the log. It is the default when
// no other notifier is configured.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithComponent("orders")}
}

// OrderPlaced implements Notifier.
func (n *LogNotifier) OrderPlaced(_ context.Context, summary OrderSummary) {
	n.log.Infow("order placed",
		"supplier_id", summary.SupplierID,
		"supplier_name", summary.SupplierName,
		"email", summary.Email,
		"lines", len(summary.Lines),
		"summary", summary.Text(),
	)
}
