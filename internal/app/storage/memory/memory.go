package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gold360/backoffice/internal/app/domain/customer"
	"github.com/gold360/backoffice/internal/app/domain/inventory"
	"github.com/gold360/backoffice/internal/app/domain/loyalty"
	"github.com/gold360/backoffice/internal/app/domain/order"
	"github.com/gold360/backoffice/internal/app/domain/product"
	"github.com/gold360/backoffice/internal/app/domain/shipment"
	"github.com/gold360/backoffice/internal/app/domain/transfer"
	"github.com/gold360/backoffice/internal/app/domain/warehouse"
	"github.com/gold360/backoffice/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local
// development.
type Store struct {
	mu     sync.RWMutex
	nextID int64

	products          map[string]product.Product
	warehouses        map[string]warehouse.Warehouse
	levels            map[string]inventory.Level // keyed productID|warehouseID
	stockTransactions []inventory.StockTransaction
	customers         map[string]customer.Customer
	orders            map[string]order.Order
	transfers         map[string]transfer.Transfer
	shipments         map[string]shipment.Shipment
	shipmentEvents    map[string][]shipment.Event
	program           loyalty.Program
	hasProgram        bool
	loyaltyEntries    map[string]loyalty.Entry
}

var _ storage.ProductStore = (*Store)(nil)
var _ storage.WarehouseStore = (*Store)(nil)
var _ storage.InventoryStore = (*Store)(nil)
var _ storage.CustomerStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)
var _ storage.TransferStore = (*Store)(nil)
var _ storage.ShipmentStore = (*Store)(nil)
var _ storage.LoyaltyStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:         1,
		products:       make(map[string]product.Product),
		warehouses:     make(map[string]warehouse.Warehouse),
		levels:         make(map[string]inventory.Level),
		customers:      make(map[string]customer.Customer),
		orders:         make(map[string]order.Order),
		transfers:      make(map[string]transfer.Transfer),
		shipments:      make(map[string]shipment.Shipment),
		shipmentEvents: make(map[string][]shipment.Event),
		loyaltyEntries: make(map[string]loyalty.Entry),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

func levelKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}

// ProductStore implementation --------------------------------------------------

func (s *Store) CreateProduct(_ context.Context, p product.Product) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	} else if _, exists := s.products[p.ID]; exists {
		return product.Product{}, fmt.Errorf("product %s already exists", p.ID)
	}
	for _, existing := range s.products {
		if strings.EqualFold(existing.SKU, p.SKU) {
			return product.Product{}, fmt.Errorf("product with sku %s already exists", p.SKU)
		}
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	s.products[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProduct(_ context.Context, p product.Product) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.products[p.ID]
	if !ok {
		return product.Product{}, fmt.Errorf("product %s not found", p.ID)
	}

	p.SKU = original.SKU
	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	s.products[p.ID] = p
	return p, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return product.Product{}, fmt.Errorf("product %s not found", id)
	}
	return p, nil
}

func (s *Store) GetProductBySKU(_ context.Context, sku string) (product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if strings.EqualFold(p.SKU, sku) {
			return p, nil
		}
	}
	return product.Product{}, fmt.Errorf("product with sku %s not found", sku)
}

func (s *Store) ListProducts(_ context.Context, category string) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]product.Product, 0)
	for _, p := range s.products {
		if category == "" || strings.EqualFold(p.Category, category) {
			result = append(result, p)
		}
	}
	sortByCreated(result, func(p product.Product) time.Time { return p.CreatedAt })
	return result, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %s not found", id)
	}
	delete(s.products, id)
	return nil
}

// WarehouseStore implementation -------------------------------------------------

func (s *Store) CreateWarehouse(_ context.Context, w warehouse.Warehouse) (warehouse.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.ID == "" {
		w.ID = s.nextIDLocked()
	} else if _, exists := s.warehouses[w.ID]; exists {
		return warehouse.Warehouse{}, fmt.Errorf("warehouse %s already exists", w.ID)
	}
	for _, existing := range s.warehouses {
		if strings.EqualFold(existing.Code, w.Code) {
			return warehouse.Warehouse{}, fmt.Errorf("warehouse with code %s already exists", w.Code)
		}
	}

	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now

	s.warehouses[w.ID] = w
	return w, nil
}

func (s *Store) UpdateWarehouse(_ context.Context, w warehouse.Warehouse) (warehouse.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.warehouses[w.ID]
	if !ok {
		return warehouse.Warehouse{}, fmt.Errorf("warehouse %s not found", w.ID)
	}

	w.Code = original.Code
	w.CreatedAt = original.CreatedAt
	w.UpdatedAt = time.Now().UTC()

	s.warehouses[w.ID] = w
	return w, nil
}

func (s *Store) GetWarehouse(_ context.Context, id string) (warehouse.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.warehouses[id]
	if !ok {
		return warehouse.Warehouse{}, fmt.Errorf("warehouse %s not found", id)
	}
	return w, nil
}

func (s *Store) GetWarehouseByCode(_ context.Context, code string) (warehouse.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.warehouses {
		if strings.EqualFold(w.Code, code) {
			return w, nil
		}
	}
	return warehouse.Warehouse{}, fmt.Errorf("warehouse with code %s not found", code)
}

func (s *Store) ListWarehouses(_ context.Context) ([]warehouse.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]warehouse.Warehouse, 0, len(s.warehouses))
	for _, w := range s.warehouses {
		result = append(result, w)
	}
	sortByCreated(result, func(w warehouse.Warehouse) time.Time { return w.CreatedAt })
	return result, nil
}

func (s *Store) DeleteWarehouse(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.warehouses[id]; !ok {
		return fmt.Errorf("warehouse %s not found", id)
	}
	delete(s.warehouses, id)
	return nil
}

// InventoryStore implementation -------------------------------------------------

func (s *Store) UpsertLevel(_ context.Context, lvl inventory.Level) (inventory.Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := levelKey(lvl.ProductID, lvl.WarehouseID)
	now := time.Now().UTC()
	if existing, ok := s.levels[key]; ok {
		lvl.ID = existing.ID
		lvl.CreatedAt = existing.CreatedAt
	} else {
		if lvl.ID == "" {
			lvl.ID = s.nextIDLocked()
		}
		lvl.CreatedAt = now
	}
	lvl.UpdatedAt = now

	s.levels[key] = lvl
	return lvl, nil
}

func (s *Store) GetLevel(_ context.Context, productID, warehouseID string) (inventory.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lvl, ok := s.levels[levelKey(productID, warehouseID)]
	if !ok {
		return inventory.Level{}, fmt.Errorf("inventory level for product %s in warehouse %s not found", productID, warehouseID)
	}
	return lvl, nil
}

func (s *Store) ListLevels(_ context.Context, productID, warehouseID string) ([]inventory.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]inventory.Level, 0)
	for _, lvl := range s.levels {
		if productID != "" && lvl.ProductID != productID {
			continue
		}
		if warehouseID != "" && lvl.WarehouseID != warehouseID {
			continue
		}
		result = append(result, lvl)
	}
	sortByCreated(result, func(l inventory.Level) time.Time { return l.CreatedAt })
	return result, nil
}

func (s *Store) ListLevelsBelowReorder(_ context.Context) ([]inventory.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]inventory.Level, 0)
	for _, lvl := range s.levels {
		if lvl.ReorderPoint > 0 && lvl.Quantity < lvl.ReorderPoint {
			result = append(result, lvl)
		}
	}
	sortByCreated(result, func(l inventory.Level) time.Time { return l.CreatedAt })
	return result, nil
}

func (s *Store) CreateStockTransaction(_ context.Context, tx inventory.StockTransaction) (inventory.StockTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ID == "" {
		tx.ID = s.nextIDLocked()
	}
	tx.CreatedAt = time.Now().UTC()

	s.stockTransactions = append(s.stockTransactions, tx)
	return tx, nil
}

func (s *Store) ListStockTransactions(_ context.Context, productID, warehouseID string) ([]inventory.StockTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]inventory.StockTransaction, 0)
	for _, tx := range s.stockTransactions {
		if productID != "" && tx.ProductID != productID {
			continue
		}
		if warehouseID != "" && tx.WarehouseID != warehouseID {
			continue
		}
		result = append(result, tx)
	}
	return result, nil
}

// CustomerStore implementation --------------------------------------------------

func (s *Store) CreateCustomer(_ context.Context, c customer.Customer) (customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = s.nextIDLocked()
	} else if _, exists := s.customers[c.ID]; exists {
		return customer.Customer{}, fmt.Errorf("customer %s already exists", c.ID)
	}
	for _, existing := range s.customers {
		if strings.EqualFold(existing.Email, c.Email) {
			return customer.Customer{}, fmt.Errorf("customer with email %s already exists", c.Email)
		}
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	s.customers[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCustomer(_ context.Context, c customer.Customer) (customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.customers[c.ID]
	if !ok {
		return customer.Customer{}, fmt.Errorf("customer %s not found", c.ID)
	}
	for _, existing := range s.customers {
		if existing.ID != c.ID && strings.EqualFold(existing.Email, c.Email) {
			return customer.Customer{}, fmt.Errorf("customer with email %s already exists", c.Email)
		}
	}

	c.CreatedAt = original.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	s.customers[c.ID] = c
	return c, nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return customer.Customer{}, fmt.Errorf("customer %s not found", id)
	}
	return c, nil
}

func (s *Store) GetCustomerByEmail(_ context.Context, email string) (customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.customers {
		if strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return customer.Customer{}, fmt.Errorf("customer with email %s not found", email)
}

func (s *Store) ListCustomers(_ context.Context, query string) ([]customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	result := make([]customer.Customer, 0)
	for _, c := range s.customers {
		if query != "" && !customerMatches(c, query) {
			continue
		}
		result = append(result, c)
	}
	sortByCreated(result, func(c customer.Customer) time.Time { return c.CreatedAt })
	return result, nil
}

func customerMatches(c customer.Customer, query string) bool {
	return strings.Contains(strings.ToLower(c.FirstName), query) ||
		strings.Contains(strings.ToLower(c.LastName), query) ||
		strings.Contains(strings.ToLower(c.Email), query)
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return fmt.Errorf("customer %s not found", id)
	}
	delete(s.customers, id)
	return nil
}

// OrderStore implementation -----------------------------------------------------

func (s *Store) CreateOrder(_ context.Context, o order.Order) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = s.nextIDLocked()
	} else if _, exists := s.orders[o.ID]; exists {
		return order.Order{}, fmt.Errorf("order %s already exists", o.ID)
	}

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	o.Items = cloneOrderItems(o.Items)
	for i := range o.Items {
		if o.Items[i].ID == "" {
			o.Items[i].ID = s.nextIDLocked()
		}
		o.Items[i].OrderID = o.ID
	}

	s.orders[o.ID] = o
	return cloneOrder(o), nil
}

func (s *Store) UpdateOrder(_ context.Context, o order.Order) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.orders[o.ID]
	if !ok {
		return order.Order{}, fmt.Errorf("order %s not found", o.ID)
	}

	o.CustomerID = original.CustomerID
	o.CreatedAt = original.CreatedAt
	o.UpdatedAt = time.Now().UTC()
	o.Items = cloneOrderItems(o.Items)

	s.orders[o.ID] = o
	return cloneOrder(o), nil
}

func (s *Store) GetOrder(_ context.Context, id string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, fmt.Errorf("order %s not found", id)
	}
	return cloneOrder(o), nil
}

func (s *Store) ListOrders(_ context.Context, customerID string, status order.Status) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]order.Order, 0)
	for _, o := range s.orders {
		if customerID != "" && o.CustomerID != customerID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		result = append(result, cloneOrder(o))
	}
	sortByCreated(result, func(o order.Order) time.Time { return o.CreatedAt })
	return result, nil
}

// TransferStore implementation --------------------------------------------------

func (s *Store) CreateTransfer(_ context.Context, t transfer.Transfer) (transfer.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = s.nextIDLocked()
	} else if _, exists := s.transfers[t.ID]; exists {
		return transfer.Transfer{}, fmt.Errorf("transfer %s already exists", t.ID)
	}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Items = cloneTransferItems(t.Items)
	for i := range t.Items {
		if t.Items[i].ID == "" {
			t.Items[i].ID = s.nextIDLocked()
		}
		t.Items[i].TransferID = t.ID
	}

	s.transfers[t.ID] = t
	return cloneTransfer(t), nil
}

func (s *Store) UpdateTransfer(_ context.Context, t transfer.Transfer) (transfer.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.transfers[t.ID]
	if !ok {
		return transfer.Transfer{}, fmt.Errorf("transfer %s not found", t.ID)
	}

	t.SourceID = original.SourceID
	t.DestinationID = original.DestinationID
	t.CreatedAt = original.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	t.Items = cloneTransferItems(t.Items)

	s.transfers[t.ID] = t
	return cloneTransfer(t), nil
}

func (s *Store) GetTransfer(_ context.Context, id string) (transfer.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transfers[id]
	if !ok {
		return transfer.Transfer{}, fmt.Errorf("transfer %s not found", id)
	}
	return cloneTransfer(t), nil
}

func (s *Store) ListTransfers(_ context.Context, warehouseID string, status transfer.Status) ([]transfer.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]transfer.Transfer, 0)
	for _, t := range s.transfers {
		if warehouseID != "" && t.SourceID != warehouseID && t.DestinationID != warehouseID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		result = append(result, cloneTransfer(t))
	}
	sortByCreated(result, func(t transfer.Transfer) time.Time { return t.CreatedAt })
	return result, nil
}

// ShipmentStore implementation --------------------------------------------------

func (s *Store) CreateShipment(_ context.Context, sh shipment.Shipment) (shipment.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sh.ID == "" {
		sh.ID = s.nextIDLocked()
	} else if _, exists := s.shipments[sh.ID]; exists {
		return shipment.Shipment{}, fmt.Errorf("shipment %s already exists", sh.ID)
	}
	for _, existing := range s.shipments {
		if existing.TrackingNumber != "" && strings.EqualFold(existing.TrackingNumber, sh.TrackingNumber) {
			return shipment.Shipment{}, fmt.Errorf("shipment with tracking number %s already exists", sh.TrackingNumber)
		}
	}

	now := time.Now().UTC()
	sh.CreatedAt = now
	sh.UpdatedAt = now

	s.shipments[sh.ID] = sh
	return sh, nil
}

func (s *Store) UpdateShipment(_ context.Context, sh shipment.Shipment) (shipment.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.shipments[sh.ID]
	if !ok {
		return shipment.Shipment{}, fmt.Errorf("shipment %s not found", sh.ID)
	}

	sh.OrderID = original.OrderID
	sh.TransferID = original.TransferID
	sh.CreatedAt = original.CreatedAt
	sh.UpdatedAt = time.Now().UTC()

	s.shipments[sh.ID] = sh
	return sh, nil
}

func (s *Store) GetShipment(_ context.Context, id string) (shipment.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, ok := s.shipments[id]
	if !ok {
		return shipment.Shipment{}, fmt.Errorf("shipment %s not found", id)
	}
	return sh, nil
}

func (s *Store) GetShipmentByTracking(_ context.Context, trackingNumber string) (shipment.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sh := range s.shipments {
		if strings.EqualFold(sh.TrackingNumber, trackingNumber) {
			return sh, nil
		}
	}
	return shipment.Shipment{}, fmt.Errorf("shipment with tracking number %s not found", trackingNumber)
}

func (s *Store) ListShipments(_ context.Context, orderID, transferID string) ([]shipment.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]shipment.Shipment, 0)
	for _, sh := range s.shipments {
		if orderID != "" && sh.OrderID != orderID {
			continue
		}
		if transferID != "" && sh.TransferID != transferID {
			continue
		}
		result = append(result, sh)
	}
	sortByCreated(result, func(sh shipment.Shipment) time.Time { return sh.CreatedAt })
	return result, nil
}

func (s *Store) CreateShipmentEvent(_ context.Context, ev shipment.Event) (shipment.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shipments[ev.ShipmentID]; !ok {
		return shipment.Event{}, fmt.Errorf("shipment %s not found", ev.ShipmentID)
	}
	if ev.ID == "" {
		ev.ID = s.nextIDLocked()
	}
	ev.CreatedAt = time.Now().UTC()

	s.shipmentEvents[ev.ShipmentID] = append(s.shipmentEvents[ev.ShipmentID], ev)
	return ev, nil
}

func (s *Store) ListShipmentEvents(_ context.Context, shipmentID string) ([]shipment.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.shipmentEvents[shipmentID]
	result := make([]shipment.Event, len(events))
	copy(result, events)
	return result, nil
}

// LoyaltyStore implementation ---------------------------------------------------

func (s *Store) UpsertProgram(_ context.Context, p loyalty.Program) (loyalty.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if s.hasProgram {
		p.ID = s.program.ID
		p.CreatedAt = s.program.CreatedAt
	} else {
		if p.ID == "" {
			p.ID = s.nextIDLocked()
		}
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	s.program = p
	s.hasProgram = true
	return p, nil
}

func (s *Store) GetActiveProgram(_ context.Context) (loyalty.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasProgram || !s.program.Active {
		return loyalty.Program{}, fmt.Errorf("no active loyalty program")
	}
	return s.program, nil
}

func (s *Store) CreateLoyaltyEntry(_ context.Context, e loyalty.Entry) (loyalty.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = s.nextIDLocked()
	}
	e.CreatedAt = time.Now().UTC()

	s.loyaltyEntries[e.ID] = e
	return e, nil
}

func (s *Store) ListLoyaltyEntries(_ context.Context, customerID string) ([]loyalty.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]loyalty.Entry, 0)
	for _, e := range s.loyaltyEntries {
		if customerID == "" || e.CustomerID == customerID {
			result = append(result, e)
		}
	}
	sortByCreated(result, func(e loyalty.Entry) time.Time { return e.CreatedAt })
	return result, nil
}

func (s *Store) ListExpirableEntries(_ context.Context, before time.Time) ([]loyalty.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]loyalty.Entry, 0)
	for _, e := range s.loyaltyEntries {
		if e.Kind != loyalty.KindEarn || e.Expired || e.ExpiresAt.IsZero() {
			continue
		}
		if e.ExpiresAt.Before(before) {
			result = append(result, e)
		}
	}
	sortByCreated(result, func(e loyalty.Entry) time.Time { return e.CreatedAt })
	return result, nil
}

func (s *Store) MarkEntryExpired(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.loyaltyEntries[id]
	if !ok {
		return fmt.Errorf("loyalty entry %s not found", id)
	}
	e.Expired = true
	s.loyaltyEntries[id] = e
	return nil
}

// helpers ------------------------------------------------------------------------

func cloneOrder(o order.Order) order.Order {
	o.Items = cloneOrderItems(o.Items)
	return o
}

func cloneOrderItems(items []order.Item) []order.Item {
	if items == nil {
		return nil
	}
	out := make([]order.Item, len(items))
	copy(out, items)
	return out
}

func cloneTransfer(t transfer.Transfer) transfer.Transfer {
	t.Items = cloneTransferItems(t.Items)
	return t
}

func cloneTransferItems(items []transfer.Item) []transfer.Item {
	if items == nil {
		return nil
	}
	out := make([]transfer.Item, len(items))
	copy(out, items)
	return out
}

func sortByCreated[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).Before(createdAt(items[j]))
	})
}
