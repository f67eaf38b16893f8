package orders

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/gold360/backoffice/internal/app/domain/customer"
	"github.com/gold360/backoffice/internal/app/domain/inventory"
	"github.com/gold360/backoffice/internal/app/domain/order"
	"github.com/gold360/backoffice/internal/app/domain/product"
	"github.com/gold360/backoffice/internal/app/domain/warehouse"
	inventorysvc "github.com/gold360/backoffice/internal/app/services/inventory"
	loyaltysvc "github.com/gold360/backoffice/internal/app/services/loyalty"
	"github.com/gold360/backoffice/internal/app/storage/memory"
	"github.com/gold360/backoffice/pkg/logger"
)

type fixture struct {
	svc       *Service
	inventory *inventorysvc.Service
	loyalty   *loyaltysvc.Service

	customerID  string
	warehouseID string
	ringID      string
	chainID     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	log := logger.NewDefault("orders-test")
	log.SetOutput(io.Discard)

	c, err := store.CreateCustomer(ctx, customer.Customer{FirstName: "Ayse", LastName: "Demir", Email: "ayse@example.com"})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	w, err := store.CreateWarehouse(ctx, warehouse.Warehouse{Code: "IST-01", Name: "Istanbul", Active: true})
	if err != nil {
		t.Fatalf("seed warehouse: %v", err)
	}
	ring, err := store.CreateProduct(ctx, product.Product{SKU: "AU-RING", Name: "Ring", Metal: product.MetalGold, UnitPrice: 500, Currency: "USD", Active: true})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	chain, err := store.CreateProduct(ctx, product.Product{SKU: "AU-CHAIN", Name: "Chain", Metal: product.MetalGold, UnitPrice: 300, Currency: "USD", Active: true})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}

	inv := inventorysvc.New(store, store, store, log)
	loy := loyaltysvc.New(store, store, log)

	for _, productID := range []string{ring.ID, chain.ID} {
		if _, err := inv.RecordTransaction(ctx, inventory.StockTransaction{
			ProductID:   productID,
			WarehouseID: w.ID,
			Type:        inventory.TransactionAdd,
			Quantity:    10,
			Reference:   "grn:seed",
		}); err != nil {
			t.Fatalf("seed stock: %v", err)
		}
	}

	return &fixture{
		svc:         New(store, store, store, store, inv, loy, log),
		inventory:   inv,
		loyalty:     loy,
		customerID:  c.ID,
		warehouseID: w.ID,
		ringID:      ring.ID,
		chainID:     chain.ID,
	}
}

func TestCreateSnapshotsPricesAndTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	o, err := f.svc.Create(ctx, f.customerID, f.warehouseID, []Line{
		{ProductID: f.ringID, Quantity: 2},
		{ProductID: f.chainID, Quantity: 1},
	}, 100, "birthday gift")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if o.Status != order.StatusPending {
		t.Fatalf("expected PENDING, got %s", o.Status)
	}
	if o.Subtotal != 1300 {
		t.Fatalf("expected subtotal 1300, got %v", o.Subtotal)
	}
	if o.Total != 1200 {
		t.Fatalf("expected total 1200, got %v", o.Total)
	}
	if len(o.Items) != 2 {
		t.Fatalf("expected two items, got %d", len(o.Items))
	}
	if o.Items[0].SKU != "AU-RING" || o.Items[0].UnitPrice != 500 || o.Items[0].LineTotal != 1000 {
		t.Fatalf("unexpected first item: %+v", o.Items[0])
	}

	// Creation reserves nothing; stock is untouched until fulfilment.
	if got := f.inventory.Available(ctx, f.ringID, f.warehouseID); got != 10 {
		t.Fatalf("expected 10 rings still on hand, got %d", got)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := []struct {
		name     string
		customer string
		lines    []Line
		discount float64
	}{
		{"unknown customer", "999", []Line{{ProductID: f.ringID, Quantity: 1}}, 0},
		{"no items", f.customerID, nil, 0},
		{"zero quantity", f.customerID, []Line{{ProductID: f.ringID, Quantity: 0}}, 0},
		{"duplicate product", f.customerID, []Line{{ProductID: f.ringID, Quantity: 1}, {ProductID: f.ringID, Quantity: 2}}, 0},
		{"unknown product", f.customerID, []Line{{ProductID: "999", Quantity: 1}}, 0},
		{"negative discount", f.customerID, []Line{{ProductID: f.ringID, Quantity: 1}}, -5},
		{"discount over subtotal", f.customerID, []Line{{ProductID: f.ringID, Quantity: 1}}, 600},
	}
	for _, tc := range cases {
		if _, err := f.svc.Create(ctx, tc.customer, f.warehouseID, tc.lines, tc.discount, ""); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestCreateRequiresAvailableStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, f.customerID, f.warehouseID, []Line{{ProductID: f.ringID, Quantity: 11}}, 0, "")
	if !errors.Is(err, inventorysvc.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.loyalty.ConfigureProgram(ctx, "Gold Club", 0.1, 0.05, 12, true); err != nil {
		t.Fatalf("configure program: %v", err)
	}

	o, err := f.svc.Create(ctx, f.customerID, f.warehouseID, []Line{{ProductID: f.ringID, Quantity: 3}}, 0, "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// PENDING orders cannot be fulfilled directly.
	if _, err := f.svc.Fulfil(ctx, o.ID); err == nil {
		t.Fatal("expected fulfilment of PENDING order to fail")
	}

	o, err = f.svc.MarkPaid(ctx, o.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if o.Status != order.StatusPaid || o.PaidAt.IsZero() {
		t.Fatalf("expected PAID with timestamp, got %+v", o)
	}
	if _, err := f.svc.MarkPaid(ctx, o.ID); err == nil {
		t.Fatal("expected second payment to fail")
	}

	o, err = f.svc.Fulfil(ctx, o.ID)
	if err != nil {
		t.Fatalf("fulfil: %v", err)
	}
	if o.Status != order.StatusFulfilled || o.FulfilledAt.IsZero() {
		t.Fatalf("expected FULFILLED with timestamp, got %+v", o)
	}

	// Stock left the fulfilment warehouse with an order reference.
	if got := f.inventory.Available(ctx, f.ringID, f.warehouseID); got != 7 {
		t.Fatalf("expected 7 rings on hand, got %d", got)
	}
	txs, err := f.inventory.ListTransactions(ctx, f.ringID, f.warehouseID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	last := txs[len(txs)-1]
	if last.Type != inventory.TransactionSubtract || last.Reference != "order:"+o.ID {
		t.Fatalf("unexpected journal entry: %+v", last)
	}

	// Loyalty points accrued on the order total: floor(1500 * 0.1).
	balance, err := f.loyalty.Balance(ctx, f.customerID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 150 {
		t.Fatalf("expected 150 points, got %d", balance)
	}

	// Fulfilled orders cannot be cancelled.
	if _, err := f.svc.Cancel(ctx, o.ID); err == nil {
		t.Fatal("expected cancellation of FULFILLED order to fail")
	}
}

func TestCancelPendingOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	o, err := f.svc.Create(ctx, f.customerID, f.warehouseID, []Line{{ProductID: f.ringID, Quantity: 2}}, 0, "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	o, err = f.svc.Cancel(ctx, o.ID)
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if o.Status != order.StatusCancelled || o.CancelledAt.IsZero() {
		t.Fatalf("expected CANCELLED with timestamp, got %+v", o)
	}

	// Nothing was deducted, so nothing comes back.
	if got := f.inventory.Available(ctx, f.ringID, f.warehouseID); got != 10 {
		t.Fatalf("expected 10 rings on hand, got %d", got)
	}
}

func TestFulfilChecksStockAtFulfilmentTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	o, err := f.svc.Create(ctx, f.customerID, f.warehouseID, []Line{{ProductID: f.ringID, Quantity: 8}}, 0, "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := f.svc.MarkPaid(ctx, o.ID); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	// Stock drains between payment and fulfilment.
	if _, err := f.inventory.RecordTransaction(ctx, inventory.StockTransaction{
		ProductID:   f.ringID,
		WarehouseID: f.warehouseID,
		Type:        inventory.TransactionSubtract,
		Quantity:    5,
		Reference:   "shrinkage",
	}); err != nil {
		t.Fatalf("drain stock: %v", err)
	}

	if _, err := f.svc.Fulfil(ctx, o.ID); !errors.Is(err, inventorysvc.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.Create(ctx, f.customerID, f.warehouseID, []Line{{ProductID: f.ringID, Quantity: 1}}, 0, "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := f.svc.Create(ctx, f.customerID, f.warehouseID, []Line{{ProductID: f.chainID, Quantity: 1}}, 0, ""); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := f.svc.MarkPaid(ctx, first.ID); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	paid, err := f.svc.List(ctx, f.customerID, order.StatusPaid)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(paid) != 1 || paid[0].ID != first.ID {
		t.Fatalf("expected one paid order, got %+v", paid)
	}

	if _, err := f.svc.List(ctx, "", "SHIPPED"); err == nil {
		t.Fatal("expected unknown status to be rejected")
	}
}
