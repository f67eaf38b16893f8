package inventory

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/gold360/backoffice/internal/app/domain/inventory"
	"github.com/gold360/backoffice/internal/app/domain/product"
	"github.com/gold360/backoffice/internal/app/domain/warehouse"
	"github.com/gold360/backoffice/internal/app/storage/memory"
	"github.com/gold360/backoffice/pkg/logger"
)

func newTestService(t *testing.T) (*Service, string, string) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	p, err := store.CreateProduct(ctx, product.Product{SKU: "AU-001", Name: "Ring", Metal: product.MetalGold, Active: true})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	w, err := store.CreateWarehouse(ctx, warehouse.Warehouse{Code: "IST-01", Name: "Istanbul", Active: true})
	if err != nil {
		t.Fatalf("seed warehouse: %v", err)
	}

	log := logger.NewDefault("inventory-test")
	log.SetOutput(io.Discard)
	return New(store, store, store, log), p.ID, w.ID
}

func TestRecordTransactionAddAndSubtract(t *testing.T) {
	ctx := context.Background()
	svc, productID, warehouseID := newTestService(t)

	tx, err := svc.RecordTransaction(ctx, inventory.StockTransaction{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        inventory.TransactionAdd,
		Quantity:    10,
		Reference:   "grn:1",
	})
	if err != nil {
		t.Fatalf("add stock: %v", err)
	}
	if tx.QuantityBefore != 0 || tx.QuantityAfter != 10 {
		t.Fatalf("expected 0 -> 10, got %d -> %d", tx.QuantityBefore, tx.QuantityAfter)
	}

	tx, err = svc.RecordTransaction(ctx, inventory.StockTransaction{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        inventory.TransactionSubtract,
		Quantity:    4,
	})
	if err != nil {
		t.Fatalf("subtract stock: %v", err)
	}
	if tx.QuantityBefore != 10 || tx.QuantityAfter != 6 {
		t.Fatalf("expected 10 -> 6, got %d -> %d", tx.QuantityBefore, tx.QuantityAfter)
	}

	if got := svc.Available(ctx, productID, warehouseID); got != 6 {
		t.Fatalf("expected 6 available, got %d", got)
	}
}

func TestSubtractBelowZeroFails(t *testing.T) {
	ctx := context.Background()
	svc, productID, warehouseID := newTestService(t)

	if _, err := svc.RecordTransaction(ctx, inventory.StockTransaction{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        inventory.TransactionAdd,
		Quantity:    3,
	}); err != nil {
		t.Fatalf("add stock: %v", err)
	}

	_, err := svc.RecordTransaction(ctx, inventory.StockTransaction{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        inventory.TransactionSubtract,
		Quantity:    5,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// The failed subtraction must not touch the level or the journal.
	if got := svc.Available(ctx, productID, warehouseID); got != 3 {
		t.Fatalf("expected 3 available after failed subtract, got %d", got)
	}
	txs, err := svc.ListTransactions(ctx, productID, warehouseID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected one journal entry, got %d", len(txs))
	}
}

func TestSetReplacesQuantity(t *testing.T) {
	ctx := context.Background()
	svc, productID, warehouseID := newTestService(t)

	if _, err := svc.RecordTransaction(ctx, inventory.StockTransaction{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        inventory.TransactionAdd,
		Quantity:    10,
	}); err != nil {
		t.Fatalf("add stock: %v", err)
	}

	tx, err := svc.RecordTransaction(ctx, inventory.StockTransaction{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        inventory.TransactionSet,
		Quantity:    0,
		Note:        "stocktake correction",
	})
	if err != nil {
		t.Fatalf("set stock: %v", err)
	}
	if tx.QuantityBefore != 10 || tx.QuantityAfter != 0 {
		t.Fatalf("expected 10 -> 0, got %d -> %d", tx.QuantityBefore, tx.QuantityAfter)
	}
}

func TestRecordTransactionValidation(t *testing.T) {
	ctx := context.Background()
	svc, productID, warehouseID := newTestService(t)

	cases := []struct {
		name string
		tx   inventory.StockTransaction
	}{
		{"missing product", inventory.StockTransaction{WarehouseID: warehouseID, Type: inventory.TransactionAdd, Quantity: 1}},
		{"missing warehouse", inventory.StockTransaction{ProductID: productID, Type: inventory.TransactionAdd, Quantity: 1}},
		{"bad type", inventory.StockTransaction{ProductID: productID, WarehouseID: warehouseID, Type: "MOVE", Quantity: 1}},
		{"negative quantity", inventory.StockTransaction{ProductID: productID, WarehouseID: warehouseID, Type: inventory.TransactionAdd, Quantity: -1}},
		{"zero add", inventory.StockTransaction{ProductID: productID, WarehouseID: warehouseID, Type: inventory.TransactionAdd, Quantity: 0}},
		{"unknown product", inventory.StockTransaction{ProductID: "999", WarehouseID: warehouseID, Type: inventory.TransactionAdd, Quantity: 1}},
		{"unknown warehouse", inventory.StockTransaction{ProductID: productID, WarehouseID: "999", Type: inventory.TransactionAdd, Quantity: 1}},
	}
	for _, tc := range cases {
		if _, err := svc.RecordTransaction(ctx, tc.tx); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestReorderPointAndLowStock(t *testing.T) {
	ctx := context.Background()
	svc, productID, warehouseID := newTestService(t)

	if _, err := svc.SetReorderPoint(ctx, productID, warehouseID, 5); err != nil {
		t.Fatalf("set reorder point: %v", err)
	}

	low, err := svc.ListBelowReorder(ctx)
	if err != nil {
		t.Fatalf("list low stock: %v", err)
	}
	if len(low) != 1 {
		t.Fatalf("expected one low stock row, got %d", len(low))
	}

	if _, err := svc.RecordTransaction(ctx, inventory.StockTransaction{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        inventory.TransactionAdd,
		Quantity:    8,
	}); err != nil {
		t.Fatalf("add stock: %v", err)
	}

	low, err = svc.ListBelowReorder(ctx)
	if err != nil {
		t.Fatalf("list low stock: %v", err)
	}
	if len(low) != 0 {
		t.Fatalf("expected no low stock rows, got %d", len(low))
	}
}
