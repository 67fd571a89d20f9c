// Package reorder implements the min-max reorder policy: it turns a batch of
// user-entered stock transactions into product quantity updates and, for the
// outgoing flow, supplier purchase orders that restore stock to its maximum.
package reorder

import (
	"context"
	"sort"
	"strconv"

	"mminv/internal/core/apperror"
	"mminv/internal/core/schema"
	"mminv/internal/domain/cache"
	"mminv/internal/domain/catalogs/product"
	"mminv/internal/domain/catalogs/supplier"
	"mminv/internal/domain/store"
	"mminv/internal/domain/view"
	"mminv/pkg/logger"
)

// Engine validates and applies transaction batches.
//
// Writes are fire-and-forget: the engine never mutates the caches itself and
// never waits for a write to land. The store's change stream echoes every
// effect back through the read pipeline; an absent echo is the only signal a
// write failed.
type Engine struct {
	store     store.Store
	suppliers *cache.Mirror
	products  *cache.Mirror
	notifier  Notifier
	log       *logger.Logger
}

// NewEngine creates an engine over the given store and collection mirrors.
func NewEngine(st store.Store, suppliers, products *cache.Mirror, n Notifier, log *logger.Logger) *Engine {
	if n == nil {
		n = NewLogNotifier(log)
	}
	return &Engine{
		store:     st,
		suppliers: suppliers,
		products:  products,
		notifier:  n,
		log:       log.WithComponent("reorder"),
	}
}

// entry is one validated (product, amount) pair, in view row order.
type entry struct {
	productID string
	amount    int
}

// SubmitReceiving applies a receiving batch: for each valid input, new
// quantity = cached quantity + received amount, written as one independent
// update per product. Receiving never inspects minimum or maximum quantity
// and never produces orders. Inputs are cleared only after a successful
// apply.
func (e *Engine) SubmitReceiving(ctx context.Context, v *view.View) error {
	updates, err := e.validate(v, false)
	if err != nil {
		return err
	}

	for _, u := range updates {
		doc, ok := e.products.Get(u.productID)
		if !ok {
			continue
		}
		prod := product.FromDoc(u.productID, doc)
		e.updateQuantity(ctx, u.productID, prod.Quantity+u.amount)
	}

	v.ClearInputs()
	return nil
}

// SubmitOutgoing applies an outgoing batch: for each valid input, new
// quantity = cached quantity - outgoing amount, written as one independent
// update per product. Every product whose new quantity falls strictly below
// its minimum is grouped under its supplier with an order quantity of
// maximum - new; one order document per supplier is then written to the
// orders collection. Returns the synthesized order summaries.
func (e *Engine) SubmitOutgoing(ctx context.Context, v *view.View) ([]OrderSummary, error) {
	updates, err := e.validate(v, true)
	if err != nil {
		return nil, err
	}

	// supplier id -> product id -> quantity to order
	orders := make(map[string]map[string]int)
	for _, u := range updates {
		doc, ok := e.products.Get(u.productID)
		if !ok {
			continue
		}
		prod := product.FromDoc(u.productID, doc)

		quant := prod.Quantity - u.amount
		e.updateQuantity(ctx, u.productID, quant)

		if quant < prod.MinQuantity {
			group := orders[prod.SupplierID]
			if group == nil {
				group = make(map[string]int)
				orders[prod.SupplierID] = group
			}
			group[u.productID] = prod.MaxQuantity - quant
		}
	}

	summaries := e.placeOrders(ctx, orders)

	v.ClearInputs()
	return summaries, nil
}

// validate checks every non-blank transient input across the view's rows.
// Values must round-trip as non-negative integers; for the outgoing flow the
// value must also not exceed the product's current cached quantity. Any
// failure rejects the whole batch: no writes happen and inputs are kept for
// the user to correct.
func (e *Engine) validate(v *view.View, outgoing bool) ([]entry, error) {
	var updates []entry
	for _, row := range v.Rows() {
		if row.Input == "" {
			continue
		}

		amount, err := strconv.Atoi(row.Input)
		if err != nil || amount < 0 {
			return nil, apperror.NewValidation("quantity must be a non-negative integer").
				WithDetail("product_id", row.ID).
				WithDetail("value", row.Input)
		}

		doc, ok := e.products.Get(row.ID)
		if !ok {
			return nil, apperror.NewValidation("unknown product").
				WithDetail("product_id", row.ID)
		}

		if outgoing {
			available := product.FromDoc(row.ID, doc).Quantity
			if amount > available {
				return nil, apperror.NewInsufficientStock(row.ID, amount, available)
			}
		}

		updates = append(updates, entry{productID: row.ID, amount: amount})
	}
	return updates, nil
}

// updateQuantity issues one fire-and-forget quantity write. Failures are
// logged, not retried: the missing change stream echo is the user's signal.
func (e *Engine) updateQuantity(ctx context.Context, productID string, quantity int) {
	err := e.store.UpdateDocument(ctx, schema.Products, productID,
		store.Document{schema.Quantity: quantity})
	if err != nil {
		e.log.Warnw("quantity update failed",
			"product_id", productID,
			"quantity", quantity,
			"error", err,
		)
	}
}

// placeOrders writes one order document per supplier and notifies each
// synthesized order. Suppliers are processed in sorted order so order
// creation is deterministic for a given batch.
func (e *Engine) placeOrders(ctx context.Context, orders map[string]map[string]int) []OrderSummary {
	if len(orders) == 0 {
		return nil
	}

	supplierIDs := make([]string, 0, len(orders))
	for id := range orders {
		supplierIDs = append(supplierIDs, id)
	}
	sort.Strings(supplierIDs)

	summaries := make([]OrderSummary, 0, len(supplierIDs))
	for _, suplrID := range supplierIDs {
		group := orders[suplrID]

		products := make(store.Document, len(group))
		for prodID, quant := range group {
			products[prodID] = quant
		}
		doc := store.Document{
			schema.SupplierID:    suplrID,
			schema.OrderProducts: products,
			schema.OrderDate:     store.ServerTimestamp,
		}
		if err := e.store.AddDocument(ctx, schema.Orders, doc); err != nil {
			e.log.Warnw("order write failed", "supplier_id", suplrID, "error", err)
		}

		summary := e.summarize(suplrID, group)
		summaries = append(summaries, summary)
		e.notifier.OrderPlaced(ctx, summary)
	}
	return summaries
}

// summarize resolves supplier contact info and product names for the
// user-visible confirmation of one order.
func (e *Engine) summarize(suplrID string, group map[string]int) OrderSummary {
	summary := OrderSummary{SupplierID: suplrID}
	if doc, ok := e.suppliers.Get(suplrID); ok {
		s := supplier.FromDoc(suplrID, doc)
		summary.SupplierName = s.Name
		summary.Email = s.Email
		summary.Phone = s.Phone
	}

	prodIDs := make([]string, 0, len(group))
	for id := range group {
		prodIDs = append(prodIDs, id)
	}
	sort.Strings(prodIDs)

	for _, prodID := range prodIDs {
		line := OrderLine{ProductID: prodID, Quantity: group[prodID]}
		if doc, ok := e.products.Get(prodID); ok {
			line.ProductName = product.FromDoc(prodID, doc).Name
		}
		summary.Lines = append(summary.Lines, line)
	}
	return summary
}
