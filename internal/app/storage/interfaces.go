package storage

import (
	"context"
	"time"

	"github.com/gold360/backoffice/internal/app/domain/customer"
	"github.com/gold360/backoffice/internal/app/domain/inventory"
	"github.com/gold360/backoffice/internal/app/domain/loyalty"
	"github.com/gold360/backoffice/internal/app/domain/order"
	"github.com/gold360/backoffice/internal/app/domain/product"
	"github.com/gold360/backoffice/internal/app/domain/shipment"
	"github.com/gold360/backoffice/internal/app/domain/transfer"
	"github.com/gold360/backoffice/internal/app/domain/warehouse"
)

// ProductStore persists catalog products.
type ProductStore interface {
	CreateProduct(ctx context.Context, p product.Product) (product.Product, error)
	UpdateProduct(ctx context.Context, p product.Product) (product.Product, error)
	GetProduct(ctx context.Context, id string) (product.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (product.Product, error)
	ListProducts(ctx context.Context, category string) ([]product.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// WarehouseStore persists warehouses.
type WarehouseStore interface {
	CreateWarehouse(ctx context.Context, w warehouse.Warehouse) (warehouse.Warehouse, error)
	UpdateWarehouse(ctx context.Context, w warehouse.Warehouse) (warehouse.Warehouse, error)
	GetWarehouse(ctx context.Context, id string) (warehouse.Warehouse, error)
	GetWarehouseByCode(ctx context.Context, code string) (warehouse.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]warehouse.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id string) error
}

// InventoryStore persists inventory levels and the stock transaction journal.
type InventoryStore interface {
	UpsertLevel(ctx context.Context, lvl inventory.Level) (inventory.Level, error)
	GetLevel(ctx context.Context, productID, warehouseID string) (inventory.Level, error)
	ListLevels(ctx context.Context, productID, warehouseID string) ([]inventory.Level, error)
	ListLevelsBelowReorder(ctx context.Context) ([]inventory.Level, error)

	CreateStockTransaction(ctx context.Context, tx inventory.StockTransaction) (inventory.StockTransaction, error)
	ListStockTransactions(ctx context.Context, productID, warehouseID string) ([]inventory.StockTransaction, error)
}

// CustomerStore persists CRM records.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error)
	UpdateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error)
	GetCustomer(ctx context.Context, id string) (customer.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (customer.Customer, error)
	ListCustomers(ctx context.Context, query string) ([]customer.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

// OrderStore persists orders and their items.
type OrderStore interface {
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
	UpdateOrder(ctx context.Context, o order.Order) (order.Order, error)
	GetOrder(ctx context.Context, id string) (order.Order, error)
	ListOrders(ctx context.Context, customerID string, status order.Status) ([]order.Order, error)
}

// TransferStore persists stock transfers and their items.
type TransferStore interface {
	CreateTransfer(ctx context.Context, t transfer.Transfer) (transfer.Transfer, error)
	UpdateTransfer(ctx context.Context, t transfer.Transfer) (transfer.Transfer, error)
	GetTransfer(ctx context.Context, id string) (transfer.Transfer, error)
	ListTransfers(ctx context.Context, warehouseID string, status transfer.Status) ([]transfer.Transfer, error)
}

// ShipmentStore persists shipments and tracking events.
type ShipmentStore interface {
	CreateShipment(ctx context.Context, sh shipment.Shipment) (shipment.Shipment, error)
	UpdateShipment(ctx context.Context, sh shipment.Shipment) (shipment.Shipment, error)
	GetShipment(ctx context.Context, id string) (shipment.Shipment, error)
	GetShipmentByTracking(ctx context.Context, trackingNumber string) (shipment.Shipment, error)
	ListShipments(ctx context.Context, orderID, transferID string) ([]shipment.Shipment, error)

	CreateShipmentEvent(ctx context.Context, ev shipment.Event) (shipment.Event, error)
	ListShipmentEvents(ctx context.Context, shipmentID string) ([]shipment.Event, error)
}

// LoyaltyStore persists the loyalty program configuration and point ledger.
type LoyaltyStore interface {
	UpsertProgram(ctx context.Context, p loyalty.Program) (loyalty.Program, error)
	GetActiveProgram(ctx context.Context) (loyalty.Program, error)

	CreateLoyaltyEntry(ctx context.Context, e loyalty.Entry) (loyalty.Entry, error)
	ListLoyaltyEntries(ctx context.Context, customerID string) ([]loyalty.Entry, error)
	ListExpirableEntries(ctx context.Context, before time.Time) ([]loyalty.Entry, error)
	MarkEntryExpired(ctx context.Context, id string) error
}
