// Package inventory wires the mirrors, sorted views and reorder engine into
// one workspace. The workspace owns all reactive state and serializes every
// change-stream delivery and user command on a single lock, which gives the
// rest of the domain the cooperative single-threaded model it assumes.
package inventory

import (
	"context"
	"sync"
	"sync/atomic"

	"mminv/internal/core/apperror"
	"mminv/internal/core/schema"
	"mminv/internal/domain/cache"
	"mminv/internal/domain/reorder"
	"mminv/internal/domain/store"
	"mminv/internal/domain/view"
	"mminv/pkg/logger"
)

// View names.
const (
	ViewSuppliers = "suppliers"
	ViewProducts  = "products"
	ViewReceiving = "receiving"
	ViewOutgoing  = "outgoing"
)

// Workspace owns one suppliers mirror, one products mirror, the four sorted
// views over them, and the reorder engine.
type Workspace struct {
	mu sync.Mutex

	store     store.Store
	suppliers *cache.Mirror
	products  *cache.Mirror

	views      map[string]*view.View
	inputViews map[string]*view.View

	engine *reorder.Engine
	log    *logger.Logger
	ready  atomic.Bool
}

// New builds a workspace over the given store. Views are subscribed before
// the change feeds start, so replay is empty and every document arrives as a
// live Added event; a view subscribed later would be replayed the full cache
// first.
func New(st store.Store, notifier reorder.Notifier, log *logger.Logger) *Workspace {
	w := &Workspace{
		store:     st,
		suppliers: cache.NewMirror(schema.Suppliers),
		products:  cache.NewMirror(schema.Products),
		log:       log.WithComponent("inventory"),
	}

	supplierView := view.New(ViewSuppliers, schema.SupplierName, map[string]view.KeyExtractor{
		schema.SupplierID:   view.TextKey(schema.SupplierID),
		schema.SupplierName: view.TextKey(schema.SupplierName),
		schema.EmailAddress: view.TextKey(schema.EmailAddress),
		schema.PhoneNumber:  view.TextKey(schema.PhoneNumber),
	})
	productView := view.New(ViewProducts, schema.ProductName, map[string]view.KeyExtractor{
		schema.ProductID:       view.TextKey(schema.ProductID),
		schema.ProductName:     view.TextKey(schema.ProductName),
		schema.MinimumQuantity: view.NumberKey(schema.MinimumQuantity),
		schema.Quantity:        view.NumberKey(schema.Quantity),
		schema.MaximumQuantity: view.NumberKey(schema.MaximumQuantity),
		schema.SupplierID:      view.TextKey(schema.SupplierID),
	})
	receivingView := view.New(ViewReceiving, schema.ProductName, map[string]view.KeyExtractor{
		schema.ProductID:     view.TextKey(schema.ProductID),
		schema.ProductName:   view.TextKey(schema.ProductName),
		schema.Quantity:      view.NumberKey(schema.Quantity),
		schema.InputReceived: view.InputKey(schema.InputReceived),
	})
	outgoingView := view.New(ViewOutgoing, schema.ProductName, map[string]view.KeyExtractor{
		schema.ProductID:     view.TextKey(schema.ProductID),
		schema.ProductName:   view.TextKey(schema.ProductName),
		schema.Quantity:      view.NumberKey(schema.Quantity),
		schema.InputOutgoing: view.InputKey(schema.InputOutgoing),
	})

	w.suppliers.Subscribe(supplierView)
	w.products.Subscribe(productView)
	w.products.Subscribe(receivingView)
	w.products.Subscribe(outgoingView)

	w.views = map[string]*view.View{
		ViewSuppliers: supplierView,
		ViewProducts:  productView,
		ViewReceiving: receivingView,
		ViewOutgoing:  outgoingView,
	}
	w.inputViews = map[string]*view.View{
		ViewReceiving: receivingView,
		ViewOutgoing:  outgoingView,
	}

	w.engine = reorder.NewEngine(st, w.suppliers, w.products, notifier, log)
	return w
}

// Start attaches the change feeds. Feed errors freeze the affected mirror at
// its last known state; they are diagnostic only and never fatal.
func (w *Workspace) Start(ctx context.Context) {
	w.listen(ctx, schema.Suppliers, w.suppliers)
	w.listen(ctx, schema.Products, w.products)
	w.ready.Store(true)
	w.log.Infow("change feeds attached",
		"collections", []string{schema.Suppliers, schema.Products})
}

func (w *Workspace) listen(ctx context.Context, collection string, m *cache.Mirror) {
	w.store.Listen(ctx, collection,
		func(ev store.ChangeEvent) {
			w.mu.Lock()
			defer w.mu.Unlock()
			m.Apply(ev)
		},
		func(err error) {
			connErr := apperror.NewConnection(collection, err)
			w.log.Errorw("change stream error",
				"collection", collection,
				"code", connErr.Code,
				"error", err,
			)
		},
	)
}

// Ready reports whether the change feeds have been attached.
func (w *Workspace) Ready() bool { return w.ready.Load() }

// RowSnapshot is a render-ready copy of one view row.
type RowSnapshot struct {
	ID     string
	Fields store.Document
	Input  string
}

// ViewSnapshot is a render-ready copy of one view in its current order.
type ViewSnapshot struct {
	Name       string
	SortColumn string
	Rows       []RowSnapshot
}

// Snapshot returns the named view's rows in current sort order.
func (w *Workspace) Snapshot(name string) (ViewSnapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	v, ok := w.views[name]
	if !ok {
		return ViewSnapshot{}, apperror.NewNotFound("view", name)
	}

	snap := ViewSnapshot{
		Name:       name,
		SortColumn: v.SortColumn(),
		Rows:       make([]RowSnapshot, 0, v.Len()),
	}
	for _, row := range v.Rows() {
		snap.Rows = append(snap.Rows, RowSnapshot{
			ID:     row.ID,
			Fields: row.Data.Clone(),
			Input:  row.Input,
		})
	}
	return snap, nil
}

// Sort re-sorts the named view by the given column.
func (w *Workspace) Sort(name, column string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	v, ok := w.views[name]
	if !ok {
		return apperror.NewNotFound("view", name)
	}
	return v.Resort(column)
}

// SetInputs records transient inputs on a transactional view. The whole set
// is rejected if any product identity is unknown, so a partial batch never
// sticks.
func (w *Workspace) SetInputs(name string, inputs map[string]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	v, err := w.inputView(name)
	if err != nil {
		return err
	}

	snap := v.Rows()
	known := make(map[string]bool, len(snap))
	for _, row := range snap {
		known[row.ID] = true
	}
	for id := range inputs {
		if !known[id] {
			return apperror.NewValidation("unknown product").
				WithDetail("view", name).
				WithDetail("product_id", id)
		}
	}

	for id, value := range inputs {
		if err := v.SetInput(id, value); err != nil {
			return err
		}
	}
	return nil
}

// ClearInputs blanks all transient inputs on a transactional view.
func (w *Workspace) ClearInputs(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	v, err := w.inputView(name)
	if err != nil {
		return err
	}
	v.ClearInputs()
	return nil
}

// Submit validates and applies the named view's current batch. The outgoing
// flow returns the synthesized purchase orders; receiving always returns
// none.
func (w *Workspace) Submit(ctx context.Context, name string) ([]reorder.OrderSummary, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	v, err := w.inputView(name)
	if err != nil {
		return nil, err
	}

	switch name {
	case ViewReceiving:
		return nil, w.engine.SubmitReceiving(ctx, v)
	default:
		return w.engine.SubmitOutgoing(ctx, v)
	}
}

func (w *Workspace) inputView(name string) (*view.View, error) {
	v, ok := w.inputViews[name]
	if !ok {
		return nil, apperror.NewNotFound("transactional view", name)
	}
	return v, nil
}
