package transfers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gold360/backoffice/internal/app/domain/inventory"
	"github.com/gold360/backoffice/internal/app/domain/transfer"
	"github.com/gold360/backoffice/internal/app/metrics"
	"github.com/gold360/backoffice/internal/app/storage"
	inventorysvc "github.com/gold360/backoffice/internal/app/services/inventory"
	"github.com/gold360/backoffice/pkg/logger"
)

// Line is one requested transfer position.
type Line struct {
	ProductID string
	Quantity  int
}

// Receipt reports how many units of a product actually arrived at the
// destination.
type Receipt struct {
	ProductID string
	Quantity  int
}

// Service moves stock between warehouses. Dispatch subtracts from the source,
// receive adds the confirmed quantities to the destination. Shortfalls stay
// visible on the transfer items.
type Service struct {
	products   storage.ProductStore
	warehouses storage.WarehouseStore
	store      storage.TransferStore
	inventory  *inventorysvc.Service
	log        *logger.Logger
}

// New constructs a transfer service.
func New(products storage.ProductStore, warehouses storage.WarehouseStore, store storage.TransferStore, inv *inventorysvc.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("transfers")
	}
	return &Service{
		products:   products,
		warehouses: warehouses,
		store:      store,
		inventory:  inv,
		log:        log,
	}
}

// Create opens a PENDING transfer between two distinct warehouses. Stock does
// not move until dispatch.
func (s *Service) Create(ctx context.Context, code, sourceID, destinationID string, lines []Line, note string) (transfer.Transfer, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	sourceID = strings.TrimSpace(sourceID)
	destinationID = strings.TrimSpace(destinationID)

	if code == "" {
		return transfer.Transfer{}, fmt.Errorf("code is required")
	}
	if sourceID == "" {
		return transfer.Transfer{}, fmt.Errorf("source_id is required")
	}
	if destinationID == "" {
		return transfer.Transfer{}, fmt.Errorf("destination_id is required")
	}
	if sourceID == destinationID {
		return transfer.Transfer{}, fmt.Errorf("source and destination must differ")
	}
	if len(lines) == 0 {
		return transfer.Transfer{}, fmt.Errorf("transfer requires at least one item")
	}

	if _, err := s.warehouses.GetWarehouse(ctx, sourceID); err != nil {
		return transfer.Transfer{}, fmt.Errorf("source validation failed: %w", err)
	}
	if _, err := s.warehouses.GetWarehouse(ctx, destinationID); err != nil {
		return transfer.Transfer{}, fmt.Errorf("destination validation failed: %w", err)
	}

	seen := make(map[string]bool, len(lines))
	items := make([]transfer.Item, 0, len(lines))
	for _, line := range lines {
		productID := strings.TrimSpace(line.ProductID)
		if productID == "" {
			return transfer.Transfer{}, fmt.Errorf("product_id is required on every item")
		}
		if line.Quantity <= 0 {
			return transfer.Transfer{}, fmt.Errorf("quantity must be positive for product %s", productID)
		}
		if seen[productID] {
			return transfer.Transfer{}, fmt.Errorf("product %s appears more than once", productID)
		}
		seen[productID] = true

		if _, err := s.products.GetProduct(ctx, productID); err != nil {
			return transfer.Transfer{}, fmt.Errorf("product validation failed: %w", err)
		}
		items = append(items, transfer.Item{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}

	t := transfer.Transfer{
		Code:          code,
		SourceID:      sourceID,
		DestinationID: destinationID,
		Status:        transfer.StatusPending,
		Items:         items,
		Note:          strings.TrimSpace(note),
	}
	t, err := s.store.CreateTransfer(ctx, t)
	if err != nil {
		return transfer.Transfer{}, err
	}

	metrics.RecordTransferTransition(string(transfer.StatusPending))
	s.log.WithField("transfer_id", t.ID).
		WithField("code", t.Code).
		WithField("source_id", sourceID).
		WithField("destination_id", destinationID).
		Info("transfer created")
	return t, nil
}

// Dispatch transitions a PENDING transfer to IN_TRANSIT and subtracts every
// item from the source warehouse.
func (s *Service) Dispatch(ctx context.Context, id string) (transfer.Transfer, error) {
	t, err := s.store.GetTransfer(ctx, id)
	if err != nil {
		return transfer.Transfer{}, err
	}
	if t.Status != transfer.StatusPending {
		return transfer.Transfer{}, fmt.Errorf("transfer %s is %s, only PENDING transfers can be dispatched", id, t.Status)
	}

	// Verify everything is on hand before any stock moves.
	for _, item := range t.Items {
		if available := s.inventory.Available(ctx, item.ProductID, t.SourceID); available < item.Quantity {
			return transfer.Transfer{}, fmt.Errorf("%w: %d on hand, %d required for product %s in warehouse %s",
				inventorysvc.ErrInsufficientStock, available, item.Quantity, item.ProductID, t.SourceID)
		}
	}

	reference := "transfer:" + t.ID
	for _, item := range t.Items {
		if _, err := s.inventory.RecordTransaction(ctx, inventory.StockTransaction{
			ProductID:   item.ProductID,
			WarehouseID: t.SourceID,
			Type:        inventory.TransactionSubtract,
			Quantity:    item.Quantity,
			Reference:   reference,
		}); err != nil {
			return transfer.Transfer{}, fmt.Errorf("deduct stock for product %s: %w", item.ProductID, err)
		}
	}

	t.Status = transfer.StatusInTransit
	t.DispatchedAt = time.Now().UTC()
	t, err = s.store.UpdateTransfer(ctx, t)
	if err != nil {
		return transfer.Transfer{}, err
	}

	metrics.RecordTransferTransition(string(transfer.StatusInTransit))
	s.log.WithField("transfer_id", t.ID).WithField("code", t.Code).Info("transfer dispatched")
	return t, nil
}

// Receive completes an IN_TRANSIT transfer. Each receipt confirms how many
// units arrived; confirmed quantities are added at the destination. Items
// without a receipt count as received in full. A receipt cannot exceed the
// shipped quantity.
func (s *Service) Receive(ctx context.Context, id string, receipts []Receipt) (transfer.Transfer, error) {
	t, err := s.store.GetTransfer(ctx, id)
	if err != nil {
		return transfer.Transfer{}, err
	}
	if t.Status != transfer.StatusInTransit {
		return transfer.Transfer{}, fmt.Errorf("transfer %s is %s, only IN_TRANSIT transfers can be received", id, t.Status)
	}

	confirmed := make(map[string]int, len(receipts))
	for _, r := range receipts {
		productID := strings.TrimSpace(r.ProductID)
		if productID == "" {
			return transfer.Transfer{}, fmt.Errorf("product_id is required on every receipt")
		}
		if r.Quantity < 0 {
			return transfer.Transfer{}, fmt.Errorf("received quantity cannot be negative for product %s", productID)
		}
		if _, dup := confirmed[productID]; dup {
			return transfer.Transfer{}, fmt.Errorf("product %s appears more than once", productID)
		}
		confirmed[productID] = r.Quantity
	}

	for i := range t.Items {
		item := &t.Items[i]
		received, ok := confirmed[item.ProductID]
		if !ok {
			received = item.Quantity
		} else {
			delete(confirmed, item.ProductID)
		}
		if received > item.Quantity {
			return transfer.Transfer{}, fmt.Errorf("received %d exceeds shipped %d for product %s", received, item.Quantity, item.ProductID)
		}
		item.ReceivedQuantity = received
	}
	for productID := range confirmed {
		return transfer.Transfer{}, fmt.Errorf("product %s is not part of transfer %s", productID, id)
	}

	reference := "transfer:" + t.ID
	for _, item := range t.Items {
		if item.ReceivedQuantity == 0 {
			continue
		}
		if _, err := s.inventory.RecordTransaction(ctx, inventory.StockTransaction{
			ProductID:   item.ProductID,
			WarehouseID: t.DestinationID,
			Type:        inventory.TransactionAdd,
			Quantity:    item.ReceivedQuantity,
			Reference:   reference,
		}); err != nil {
			return transfer.Transfer{}, fmt.Errorf("receive stock for product %s: %w", item.ProductID, err)
		}
	}

	t.Status = transfer.StatusCompleted
	t.CompletedAt = time.Now().UTC()
	t, err = s.store.UpdateTransfer(ctx, t)
	if err != nil {
		return transfer.Transfer{}, err
	}

	metrics.RecordTransferTransition(string(transfer.StatusCompleted))
	s.log.WithField("transfer_id", t.ID).WithField("code", t.Code).Info("transfer received")
	return t, nil
}

// Cancel aborts a PENDING or IN_TRANSIT transfer. Cancelling an IN_TRANSIT
// transfer returns the dispatched stock to the source warehouse.
func (s *Service) Cancel(ctx context.Context, id string) (transfer.Transfer, error) {
	t, err := s.store.GetTransfer(ctx, id)
	if err != nil {
		return transfer.Transfer{}, err
	}
	if t.Status != transfer.StatusPending && t.Status != transfer.StatusInTransit {
		return transfer.Transfer{}, fmt.Errorf("transfer %s is %s and cannot be cancelled", id, t.Status)
	}

	if t.Status == transfer.StatusInTransit {
		reference := "transfer:" + t.ID
		for _, item := range t.Items {
			if _, err := s.inventory.RecordTransaction(ctx, inventory.StockTransaction{
				ProductID:   item.ProductID,
				WarehouseID: t.SourceID,
				Type:        inventory.TransactionAdd,
				Quantity:    item.Quantity,
				Reference:   reference,
			}); err != nil {
				return transfer.Transfer{}, fmt.Errorf("return stock for product %s: %w", item.ProductID, err)
			}
		}
	}

	t.Status = transfer.StatusCancelled
	t.CancelledAt = time.Now().UTC()
	t, err = s.store.UpdateTransfer(ctx, t)
	if err != nil {
		return transfer.Transfer{}, err
	}

	metrics.RecordTransferTransition(string(transfer.StatusCancelled))
	s.log.WithField("transfer_id", t.ID).WithField("code", t.Code).Info("transfer cancelled")
	return t, nil
}

// Get retrieves a transfer by identifier.
func (s *Service) Get(ctx context.Context, id string) (transfer.Transfer, error) {
	return s.store.GetTransfer(ctx, id)
}

// List returns transfers filtered by warehouse and/or status.
func (s *Service) List(ctx context.Context, warehouseID string, status transfer.Status) ([]transfer.Transfer, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unsupported status %s", status)
	}
	return s.store.ListTransfers(ctx, warehouseID, status)
}
