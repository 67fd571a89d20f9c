package reorder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mminv/internal/core/apperror"
	"mminv/internal/core/schema"
	"mminv/internal/domain/cache"
	"mminv/internal/domain/store"
	"mminv/internal/domain/view"
	"mminv/pkg/logger"
)

// fakeStore records writes without echoing them back.
type fakeStore struct {
	adds []struct {
		collection string
		doc        store.Document
	}
	updates []struct {
		collection string
		id         string
		fields     store.Document
	}
	failWrites bool
}

func (f *fakeStore) Listen(context.Context, string, func(store.ChangeEvent), func(error)) {}

func (f *fakeStore) AddDocument(_ context.Context, collection string, doc store.Document) error {
	if f.failWrites {
		return errors.New("write refused")
	}
	f.adds = append(f.adds, struct {
		collection string
		doc        store.Document
	}{collection, doc})
	return nil
}

func (f *fakeStore) UpdateDocument(_ context.Context, collection, id string, fields store.Document) error {
	if f.failWrites {
		return errors.New("write refused")
	}
	f.updates = append(f.updates, struct {
		collection string
		id         string
		fields     store.Document
	}{collection, id, fields})
	return nil
}

func (f *fakeStore) quantityWrites(t *testing.T) map[string]int {
	t.Helper()
	out := make(map[string]int)
	for _, u := range f.updates {
		require.Equal(t, schema.Products, u.collection)
		out[u.id] = u.fields.Int(schema.Quantity)
	}
	return out
}

// captureNotifier records order confirmations.
type captureNotifier struct {
	summaries []OrderSummary
}

func (n *captureNotifier) OrderPlaced(_ context.Context, s OrderSummary) {
	n.summaries = append(n.summaries, s)
}

type fixture struct {
	store     *fakeStore
	suppliers *cache.Mirror
	products  *cache.Mirror
	notifier  *captureNotifier
	engine    *Engine
	outgoing  *view.View
	receiving *view.View
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     &fakeStore{},
		suppliers: cache.NewMirror(schema.Suppliers),
		products:  cache.NewMirror(schema.Products),
		notifier:  &captureNotifier{},
	}
	log, err := logger.New(logger.Config{Level: "error"})
	require.NoError(t, err)
	f.engine = NewEngine(f.store, f.suppliers, f.products, f.notifier, log)

	keys := func(input string) map[string]view.KeyExtractor {
		return map[string]view.KeyExtractor{
			schema.ProductID:   view.TextKey(schema.ProductID),
			schema.ProductName: view.TextKey(schema.ProductName),
			schema.Quantity:    view.NumberKey(schema.Quantity),
			input:              view.InputKey(input),
		}
	}
	f.receiving = view.New("receiving", schema.ProductName, keys(schema.InputReceived))
	f.outgoing = view.New("outgoing", schema.ProductName, keys(schema.InputOutgoing))
	f.products.Subscribe(f.receiving)
	f.products.Subscribe(f.outgoing)
	return f
}

func (f *fixture) addSupplier(id, name, email string) {
	f.suppliers.Apply(store.ChangeEvent{Kind: store.Added, ID: id, Data: store.Document{
		schema.SupplierName: name,
		schema.EmailAddress: email,
		schema.PhoneNumber:  "555-0100",
	}})
}

func (f *fixture) addProduct(id, name string, min, quantity, max int, supplierID string) {
	f.products.Apply(store.ChangeEvent{Kind: store.Added, ID: id, Data: store.Document{
		schema.ProductName:     name,
		schema.MinimumQuantity: min,
		schema.Quantity:        quantity,
		schema.MaximumQuantity: max,
		schema.SupplierID:      supplierID,
	}})
}

func TestSubmitReceiving_AddsToStock(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "bolt", 10, 15, 50, "s1")
	f.addProduct("p2", "nut", 5, 8, 20, "s1")

	require.NoError(t, f.receiving.SetInput("p1", "7"))
	require.NoError(t, f.engine.SubmitReceiving(context.Background(), f.receiving))

	assert.Equal(t, map[string]int{"p1": 22}, f.store.quantityWrites(t))
	assert.Empty(t, f.store.adds)
}

func TestSubmitReceiving_NeverOrders(t *testing.T) {
	f := newFixture(t)
	f.addSupplier("s1", "Acme", "orders@acme.test")
	// Already below minimum; receiving must still not inspect thresholds.
	f.addProduct("p1", "bolt", 10, 2, 50, "s1")

	require.NoError(t, f.receiving.SetInput("p1", "1"))
	require.NoError(t, f.engine.SubmitReceiving(context.Background(), f.receiving))

	assert.Equal(t, map[string]int{"p1": 3}, f.store.quantityWrites(t))
	assert.Empty(t, f.store.adds)
	assert.Empty(t, f.notifier.summaries)
}

func TestSubmitReceiving_ClearsInputsOnSuccess(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "bolt", 10, 15, 50, "s1")
	require.NoError(t, f.receiving.SetInput("p1", "7"))

	require.NoError(t, f.engine.SubmitReceiving(context.Background(), f.receiving))

	for _, row := range f.receiving.Rows() {
		assert.Empty(t, row.Input)
	}
}

func TestValidate_RejectsWholeBatch(t *testing.T) {
	cases := []struct {
		name  string
		value string
	}{
		{"negative", "-1"},
		{"fractional", "2.5"},
		{"non-numeric", "abc"},
		{"exponent", "1e2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.addProduct("p1", "bolt", 10, 15, 50, "s1")
			f.addProduct("p2", "nut", 5, 8, 20, "s1")

			require.NoError(t, f.receiving.SetInput("p1", "3"))
			require.NoError(t, f.receiving.SetInput("p2", tc.value))

			err := f.engine.SubmitReceiving(context.Background(), f.receiving)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))

			// Atomic rejection: the valid p1 input produced no write either,
			// and inputs are kept for the user to correct.
			assert.Empty(t, f.store.updates)
			rows := f.receiving.Rows()
			inputs := map[string]string{}
			for _, r := range rows {
				inputs[r.ID] = r.Input
			}
			assert.Equal(t, "3", inputs["p1"])
		})
	}
}

func TestSubmitOutgoing_RejectsOverCurrentQuantity(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "bolt", 10, 15, 50, "s1")

	require.NoError(t, f.outgoing.SetInput("p1", "16"))
	_, err := f.engine.SubmitOutgoing(context.Background(), f.outgoing)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Empty(t, f.store.updates)
}

func TestSubmitOutgoing_BlankInputsIgnored(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "bolt", 10, 15, 50, "s1")
	f.addProduct("p2", "nut", 5, 8, 20, "s1")

	require.NoError(t, f.outgoing.SetInput("p1", "2"))

	summaries, err := f.engine.SubmitOutgoing(context.Background(), f.outgoing)
	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.Equal(t, map[string]int{"p1": 13}, f.store.quantityWrites(t))
}

func TestSubmitOutgoing_AggregatesOrdersPerSupplier(t *testing.T) {
	f := newFixture(t)
	f.addSupplier("s1", "Acme", "orders@acme.test")
	f.addProduct("p1", "bolt", 10, 15, 50, "s1")
	f.addProduct("p2", "nut", 5, 8, 20, "s1")

	// Drop p1 to 4 (< min 10) and p2 to 3 (< min 5).
	require.NoError(t, f.outgoing.SetInput("p1", "11"))
	require.NoError(t, f.outgoing.SetInput("p2", "5"))

	summaries, err := f.engine.SubmitOutgoing(context.Background(), f.outgoing)
	require.NoError(t, err)

	// Two independent quantity updates.
	assert.Equal(t, map[string]int{"p1": 4, "p2": 3}, f.store.quantityWrites(t))

	// Exactly one order for s1, restoring both products to their maximums.
	require.Len(t, f.store.adds, 1)
	order := f.store.adds[0]
	assert.Equal(t, schema.Orders, order.collection)
	assert.Equal(t, "s1", order.doc.Str(schema.SupplierID))
	assert.True(t, store.IsServerTimestamp(order.doc[schema.OrderDate]))

	products, ok := order.doc[schema.OrderProducts].(store.Document)
	require.True(t, ok)
	assert.Equal(t, store.Document{"p1": 46, "p2": 17}, products)

	// One confirmation with supplier contact info and resolved product names.
	require.Len(t, summaries, 1)
	s := summaries[0]
	assert.Equal(t, "Acme", s.SupplierName)
	assert.Equal(t, "orders@acme.test", s.Email)
	require.Len(t, s.Lines, 2)
	assert.Equal(t, OrderLine{ProductID: "p1", ProductName: "bolt", Quantity: 46}, s.Lines[0])
	assert.Equal(t, OrderLine{ProductID: "p2", ProductName: "nut", Quantity: 17}, s.Lines[1])
	assert.Equal(t, summaries, f.notifier.summaries)
}

func TestSubmitOutgoing_OneOrderPerSupplier(t *testing.T) {
	f := newFixture(t)
	f.addSupplier("s1", "Acme", "orders@acme.test")
	f.addSupplier("s2", "Globex", "buy@globex.test")
	f.addProduct("p1", "bolt", 10, 12, 50, "s1")
	f.addProduct("p2", "nut", 5, 6, 20, "s2")
	f.addProduct("p3", "screw", 8, 9, 30, "s2")

	require.NoError(t, f.outgoing.SetInput("p1", "10"))
	require.NoError(t, f.outgoing.SetInput("p2", "4"))
	require.NoError(t, f.outgoing.SetInput("p3", "6"))

	summaries, err := f.engine.SubmitOutgoing(context.Background(), f.outgoing)
	require.NoError(t, err)

	require.Len(t, f.store.adds, 2)
	require.Len(t, summaries, 2)
	assert.Equal(t, "s1", summaries[0].SupplierID)
	assert.Equal(t, "s2", summaries[1].SupplierID)
	assert.Len(t, summaries[1].Lines, 2)
}

func TestSubmitOutgoing_AtOrAboveMinimumNoOrder(t *testing.T) {
	f := newFixture(t)
	f.addSupplier("s1", "Acme", "orders@acme.test")
	f.addProduct("p1", "bolt", 10, 15, 50, "s1")

	// New quantity lands exactly on the minimum: strictly-below rule, no order.
	require.NoError(t, f.outgoing.SetInput("p1", "5"))

	summaries, err := f.engine.SubmitOutgoing(context.Background(), f.outgoing)
	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.Empty(t, f.store.adds)
	assert.Equal(t, map[string]int{"p1": 10}, f.store.quantityWrites(t))
}

func TestSubmitOutgoing_WriteFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.store.failWrites = true
	f.addSupplier("s1", "Acme", "orders@acme.test")
	f.addProduct("p1", "bolt", 10, 12, 50, "s1")

	require.NoError(t, f.outgoing.SetInput("p1", "10"))

	// Store refusals are diagnostic only; the batch still completes and the
	// inputs are cleared. The cache simply never shows the change.
	summaries, err := f.engine.SubmitOutgoing(context.Background(), f.outgoing)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	for _, row := range f.outgoing.Rows() {
		assert.Empty(t, row.Input)
	}
}

func TestOrderSummary_Text(t *testing.T) {
	s := OrderSummary{
		SupplierID:   "s1",
		SupplierName: "Acme",
		Email:        "orders@acme.test",
		Lines: []OrderLine{
			{ProductID: "p1", ProductName: "bolt", Quantity: 46},
		},
	}
	assert.Equal(t, "Order to Acme orders@acme.test:\n    p1 bolt: 46\n", s.Text())
}
