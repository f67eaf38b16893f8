package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gold360/backoffice/internal/app/domain/inventory"
	"github.com/gold360/backoffice/internal/app/domain/order"
	"github.com/gold360/backoffice/internal/app/metrics"
	"github.com/gold360/backoffice/internal/app/storage"
	inventorysvc "github.com/gold360/backoffice/internal/app/services/inventory"
	loyaltysvc "github.com/gold360/backoffice/internal/app/services/loyalty"
	"github.com/gold360/backoffice/pkg/logger"
)

// Line is one requested order position.
type Line struct {
	ProductID string
	Quantity  int
}

// Service manages customer orders. Stock leaves the fulfilment warehouse only
// when an order is fulfilled; creation just verifies availability.
type Service struct {
	customers  storage.CustomerStore
	products   storage.ProductStore
	warehouses storage.WarehouseStore
	store      storage.OrderStore
	inventory  *inventorysvc.Service
	loyalty    *loyaltysvc.Service
	log        *logger.Logger
}

// New constructs an order service.
func New(customers storage.CustomerStore, products storage.ProductStore, warehouses storage.WarehouseStore, store storage.OrderStore, inv *inventorysvc.Service, loy *loyaltysvc.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("orders")
	}
	return &Service{
		customers:  customers,
		products:   products,
		warehouses: warehouses,
		store:      store,
		inventory:  inv,
		loyalty:    loy,
		log:        log,
	}
}

// Create places a new order. Unit prices are snapshotted from the catalog and
// every line must be available in the fulfilment warehouse.
func (s *Service) Create(ctx context.Context, customerID, warehouseID string, lines []Line, discount float64, note string) (order.Order, error) {
	customerID = strings.TrimSpace(customerID)
	warehouseID = strings.TrimSpace(warehouseID)

	if customerID == "" {
		return order.Order{}, fmt.Errorf("customer_id is required")
	}
	if warehouseID == "" {
		return order.Order{}, fmt.Errorf("warehouse_id is required")
	}
	if len(lines) == 0 {
		return order.Order{}, fmt.Errorf("order requires at least one item")
	}
	if discount < 0 {
		return order.Order{}, fmt.Errorf("discount cannot be negative")
	}

	if _, err := s.customers.GetCustomer(ctx, customerID); err != nil {
		return order.Order{}, fmt.Errorf("customer validation failed: %w", err)
	}
	wh, err := s.warehouses.GetWarehouse(ctx, warehouseID)
	if err != nil {
		return order.Order{}, fmt.Errorf("warehouse validation failed: %w", err)
	}
	if !wh.Active {
		return order.Order{}, fmt.Errorf("warehouse %s is not active", warehouseID)
	}

	seen := make(map[string]bool, len(lines))
	items := make([]order.Item, 0, len(lines))
	subtotal := 0.0
	currency := ""
	for _, line := range lines {
		productID := strings.TrimSpace(line.ProductID)
		if productID == "" {
			return order.Order{}, fmt.Errorf("product_id is required on every item")
		}
		if line.Quantity <= 0 {
			return order.Order{}, fmt.Errorf("quantity must be positive for product %s", productID)
		}
		if seen[productID] {
			return order.Order{}, fmt.Errorf("product %s appears more than once", productID)
		}
		seen[productID] = true

		p, err := s.products.GetProduct(ctx, productID)
		if err != nil {
			return order.Order{}, fmt.Errorf("product validation failed: %w", err)
		}
		if !p.Active {
			return order.Order{}, fmt.Errorf("product %s is not active", p.SKU)
		}
		if currency == "" {
			currency = p.Currency
		} else if currency != p.Currency {
			return order.Order{}, fmt.Errorf("mixed currencies %s and %s in one order", currency, p.Currency)
		}

		if available := s.inventory.Available(ctx, productID, warehouseID); available < line.Quantity {
			return order.Order{}, fmt.Errorf("%w: %d on hand, %d requested for product %s in warehouse %s",
				inventorysvc.ErrInsufficientStock, available, line.Quantity, p.SKU, warehouseID)
		}

		lineTotal := p.UnitPrice * float64(line.Quantity)
		subtotal += lineTotal
		items = append(items, order.Item{
			ProductID: productID,
			SKU:       p.SKU,
			Quantity:  line.Quantity,
			UnitPrice: p.UnitPrice,
			LineTotal: lineTotal,
		})
	}

	if discount > subtotal {
		return order.Order{}, fmt.Errorf("discount %.2f exceeds subtotal %.2f", discount, subtotal)
	}

	o := order.Order{
		CustomerID:  customerID,
		WarehouseID: warehouseID,
		Status:      order.StatusPending,
		Items:       items,
		Subtotal:    subtotal,
		Discount:    discount,
		Total:       subtotal - discount,
		Currency:    currency,
		Note:        strings.TrimSpace(note),
		PlacedAt:    time.Now().UTC(),
	}
	o, err = s.store.CreateOrder(ctx, o)
	if err != nil {
		return order.Order{}, err
	}

	metrics.RecordOrderTransition(string(order.StatusPending))
	s.log.WithField("order_id", o.ID).
		WithField("customer_id", customerID).
		WithField("total", o.Total).
		Info("order placed")
	return o, nil
}

// MarkPaid transitions an order from PENDING to PAID.
func (s *Service) MarkPaid(ctx context.Context, id string) (order.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	if o.Status != order.StatusPending {
		return order.Order{}, fmt.Errorf("order %s is %s, only PENDING orders can be paid", id, o.Status)
	}

	o.Status = order.StatusPaid
	o.PaidAt = time.Now().UTC()
	o, err = s.store.UpdateOrder(ctx, o)
	if err != nil {
		return order.Order{}, err
	}

	metrics.RecordOrderTransition(string(order.StatusPaid))
	s.log.WithField("order_id", o.ID).Info("order paid")
	return o, nil
}

// Fulfil transitions an order from PAID to FULFILLED, subtracts each item
// from the fulfilment warehouse and accrues loyalty points on the order
// total.
func (s *Service) Fulfil(ctx context.Context, id string) (order.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	if o.Status != order.StatusPaid {
		return order.Order{}, fmt.Errorf("order %s is %s, only PAID orders can be fulfilled", id, o.Status)
	}

	// Check the whole order before mutating any stock.
	for _, item := range o.Items {
		if available := s.inventory.Available(ctx, item.ProductID, o.WarehouseID); available < item.Quantity {
			return order.Order{}, fmt.Errorf("%w: %d on hand, %d required for product %s in warehouse %s",
				inventorysvc.ErrInsufficientStock, available, item.Quantity, item.SKU, o.WarehouseID)
		}
	}

	reference := "order:" + o.ID
	for _, item := range o.Items {
		if _, err := s.inventory.RecordTransaction(ctx, inventory.StockTransaction{
			ProductID:   item.ProductID,
			WarehouseID: o.WarehouseID,
			Type:        inventory.TransactionSubtract,
			Quantity:    item.Quantity,
			Reference:   reference,
		}); err != nil {
			return order.Order{}, fmt.Errorf("deduct stock for product %s: %w", item.SKU, err)
		}
	}

	o.Status = order.StatusFulfilled
	o.FulfilledAt = time.Now().UTC()
	o, err = s.store.UpdateOrder(ctx, o)
	if err != nil {
		return order.Order{}, err
	}

	if s.loyalty != nil && o.Total > 0 {
		if _, err := s.loyalty.Accrue(ctx, o.CustomerID, o.Total, reference); err != nil {
			s.log.WithError(err).
				WithField("order_id", o.ID).
				Warn("loyalty accrual failed")
		}
	}

	metrics.RecordOrderTransition(string(order.StatusFulfilled))
	s.log.WithField("order_id", o.ID).
		WithField("customer_id", o.CustomerID).
		Info("order fulfilled")
	return o, nil
}

// Cancel transitions a PENDING or PAID order to CANCELLED. Fulfilled orders
// cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (order.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	if o.Status != order.StatusPending && o.Status != order.StatusPaid {
		return order.Order{}, fmt.Errorf("order %s is %s and cannot be cancelled", id, o.Status)
	}

	o.Status = order.StatusCancelled
	o.CancelledAt = time.Now().UTC()
	o, err = s.store.UpdateOrder(ctx, o)
	if err != nil {
		return order.Order{}, err
	}

	metrics.RecordOrderTransition(string(order.StatusCancelled))
	s.log.WithField("order_id", o.ID).Info("order cancelled")
	return o, nil
}

// Get retrieves an order by identifier.
func (s *Service) Get(ctx context.Context, id string) (order.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// List returns orders filtered by customer and/or status.
func (s *Service) List(ctx context.Context, customerID string, status order.Status) ([]order.Order, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unsupported status %s", status)
	}
	return s.store.ListOrders(ctx, customerID, status)
}
