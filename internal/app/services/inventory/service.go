package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gold360/backoffice/internal/app/domain/inventory"
	"github.com/gold360/backoffice/internal/app/metrics"
	"github.com/gold360/backoffice/internal/app/storage"
	"github.com/gold360/backoffice/pkg/logger"
)

// ErrInsufficientStock is returned when a subtraction would drive the on-hand
// quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// Service manages inventory levels through the stock transaction journal.
// Every quantity change goes through RecordTransaction so the journal stays
// the authoritative history of stock movements.
type Service struct {
	products   storage.ProductStore
	warehouses storage.WarehouseStore
	store      storage.InventoryStore
	log        *logger.Logger
}

// New constructs an inventory service.
func New(products storage.ProductStore, warehouses storage.WarehouseStore, store storage.InventoryStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("inventory")
	}
	return &Service{
		products:   products,
		warehouses: warehouses,
		store:      store,
		log:        log,
	}
}

// RecordTransaction applies a stock mutation to the level row for the
// product/warehouse pair and journals it. ADD increments, SUBTRACT decrements
// and fails with ErrInsufficientStock when the result would be negative, SET
// replaces the quantity. A missing level row is treated as quantity zero.
func (s *Service) RecordTransaction(ctx context.Context, tx inventory.StockTransaction) (inventory.StockTransaction, error) {
	tx.ProductID = strings.TrimSpace(tx.ProductID)
	tx.WarehouseID = strings.TrimSpace(tx.WarehouseID)

	if tx.ProductID == "" {
		return inventory.StockTransaction{}, fmt.Errorf("product_id is required")
	}
	if tx.WarehouseID == "" {
		return inventory.StockTransaction{}, fmt.Errorf("warehouse_id is required")
	}
	if !tx.Type.Valid() {
		return inventory.StockTransaction{}, fmt.Errorf("unsupported transaction type %s", tx.Type)
	}
	if tx.Quantity < 0 {
		return inventory.StockTransaction{}, fmt.Errorf("quantity cannot be negative")
	}
	if tx.Quantity == 0 && tx.Type != inventory.TransactionSet {
		return inventory.StockTransaction{}, fmt.Errorf("quantity must be positive")
	}

	if s.products != nil {
		if _, err := s.products.GetProduct(ctx, tx.ProductID); err != nil {
			return inventory.StockTransaction{}, fmt.Errorf("product validation failed: %w", err)
		}
	}
	if s.warehouses != nil {
		if _, err := s.warehouses.GetWarehouse(ctx, tx.WarehouseID); err != nil {
			return inventory.StockTransaction{}, fmt.Errorf("warehouse validation failed: %w", err)
		}
	}

	lvl, err := s.store.GetLevel(ctx, tx.ProductID, tx.WarehouseID)
	if err != nil {
		lvl = inventory.Level{
			ProductID:   tx.ProductID,
			WarehouseID: tx.WarehouseID,
		}
	}

	tx.QuantityBefore = lvl.Quantity
	switch tx.Type {
	case inventory.TransactionAdd:
		lvl.Quantity += tx.Quantity
	case inventory.TransactionSubtract:
		if lvl.Quantity < tx.Quantity {
			return inventory.StockTransaction{}, fmt.Errorf("%w: %d on hand, %d requested for product %s in warehouse %s",
				ErrInsufficientStock, lvl.Quantity, tx.Quantity, tx.ProductID, tx.WarehouseID)
		}
		lvl.Quantity -= tx.Quantity
	case inventory.TransactionSet:
		lvl.Quantity = tx.Quantity
	}
	tx.QuantityAfter = lvl.Quantity

	if _, err := s.store.UpsertLevel(ctx, lvl); err != nil {
		return inventory.StockTransaction{}, err
	}
	created, err := s.store.CreateStockTransaction(ctx, tx)
	if err != nil {
		return inventory.StockTransaction{}, err
	}

	metrics.RecordStockTransaction(string(created.Type), created.Quantity)
	s.log.WithField("product_id", created.ProductID).
		WithField("warehouse_id", created.WarehouseID).
		WithField("type", created.Type).
		WithField("quantity", created.Quantity).
		WithField("quantity_after", created.QuantityAfter).
		Info("stock transaction recorded")
	return created, nil
}

// GetLevel returns the on-hand quantity for a product in a warehouse.
func (s *Service) GetLevel(ctx context.Context, productID, warehouseID string) (inventory.Level, error) {
	return s.store.GetLevel(ctx, productID, warehouseID)
}

// Available reports the on-hand quantity, treating a missing level row as
// zero.
func (s *Service) Available(ctx context.Context, productID, warehouseID string) int {
	lvl, err := s.store.GetLevel(ctx, productID, warehouseID)
	if err != nil {
		return 0
	}
	return lvl.Quantity
}

// ListLevels returns inventory levels filtered by product and/or warehouse.
func (s *Service) ListLevels(ctx context.Context, productID, warehouseID string) ([]inventory.Level, error) {
	return s.store.ListLevels(ctx, productID, warehouseID)
}

// ListBelowReorder returns levels whose quantity has fallen below their
// reorder point.
func (s *Service) ListBelowReorder(ctx context.Context) ([]inventory.Level, error) {
	return s.store.ListLevelsBelowReorder(ctx)
}

// SetReorderPoint sets the reorder threshold on a level row, creating the row
// at quantity zero when absent.
func (s *Service) SetReorderPoint(ctx context.Context, productID, warehouseID string, reorderPoint int) (inventory.Level, error) {
	if reorderPoint < 0 {
		return inventory.Level{}, fmt.Errorf("reorder_point cannot be negative")
	}
	lvl, err := s.store.GetLevel(ctx, productID, warehouseID)
	if err != nil {
		lvl = inventory.Level{
			ProductID:   productID,
			WarehouseID: warehouseID,
		}
	}
	lvl.ReorderPoint = reorderPoint
	return s.store.UpsertLevel(ctx, lvl)
}

// ListTransactions returns journal entries filtered by product and/or
// warehouse.
func (s *Service) ListTransactions(ctx context.Context, productID, warehouseID string) ([]inventory.StockTransaction, error) {
	return s.store.ListStockTransactions(ctx, productID, warehouseID)
}
