package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	catalogsvc "github.com/gold360/backoffice/internal/app/services/catalog"
	customersvc "github.com/gold360/backoffice/internal/app/services/customers"
	inventorysvc "github.com/gold360/backoffice/internal/app/services/inventory"
	loyaltysvc "github.com/gold360/backoffice/internal/app/services/loyalty"
	orderssvc "github.com/gold360/backoffice/internal/app/services/orders"
	shipmentssvc "github.com/gold360/backoffice/internal/app/services/shipments"
	transferssvc "github.com/gold360/backoffice/internal/app/services/transfers"
	warehousesvc "github.com/gold360/backoffice/internal/app/services/warehouses"
	"github.com/gold360/backoffice/internal/app/storage"
	"github.com/gold360/backoffice/internal/app/storage/memory"
	"github.com/gold360/backoffice/internal/app/system"
	"github.com/gold360/backoffice/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Products   storage.ProductStore
	Warehouses storage.WarehouseStore
	Inventory  storage.InventoryStore
	Customers  storage.CustomerStore
	Orders     storage.OrderStore
	Transfers  storage.TransferStore
	Shipments  storage.ShipmentStore
	Loyalty    storage.LoyaltyStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Catalog    *catalogsvc.Service
	Warehouses *warehousesvc.Service
	Inventory  *inventorysvc.Service
	Customers  *customersvc.Service
	Orders     *orderssvc.Service
	Transfers  *transferssvc.Service
	Shipments  *shipmentssvc.Service
	Loyalty    *loyaltysvc.Service
}

// Option adjusts application construction.
type Option func(*options)

type options struct {
	loyaltySchedule string
}

// WithLoyaltySchedule sets the cron schedule for the loyalty expiry sweep.
// Unset, the LOYALTY_EXPIRY_SCHEDULE environment variable applies.
func WithLoyaltySchedule(schedule string) Option {
	return func(o *options) { o.loyaltySchedule = schedule }
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger, opts ...Option) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	mem := memory.New()
	if stores.Products == nil {
		stores.Products = mem
	}
	if stores.Warehouses == nil {
		stores.Warehouses = mem
	}
	if stores.Inventory == nil {
		stores.Inventory = mem
	}
	if stores.Customers == nil {
		stores.Customers = mem
	}
	if stores.Orders == nil {
		stores.Orders = mem
	}
	if stores.Transfers == nil {
		stores.Transfers = mem
	}
	if stores.Shipments == nil {
		stores.Shipments = mem
	}
	if stores.Loyalty == nil {
		stores.Loyalty = mem
	}

	manager := system.NewManager()

	catalogService := catalogsvc.New(stores.Products, log)
	warehouseService := warehousesvc.New(stores.Warehouses, log)
	customerService := customersvc.New(stores.Customers, log)
	inventoryService := inventorysvc.New(stores.Products, stores.Warehouses, stores.Inventory, log)
	loyaltyService := loyaltysvc.New(stores.Customers, stores.Loyalty, log)
	orderService := orderssvc.New(stores.Customers, stores.Products, stores.Warehouses, stores.Orders, inventoryService, loyaltyService, log)
	transferService := transferssvc.New(stores.Products, stores.Warehouses, stores.Transfers, inventoryService, log)
	shipmentService := shipmentssvc.New(stores.Orders, stores.Transfers, stores.Shipments, log)

	for _, name := range []string{"catalog", "warehouses", "customers", "inventory"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	schedule := strings.TrimSpace(o.loyaltySchedule)
	if schedule == "" {
		schedule = strings.TrimSpace(os.Getenv("LOYALTY_EXPIRY_SCHEDULE"))
	}
	expirer, err := loyaltysvc.NewExpirer(loyaltyService, schedule, log)
	if err != nil {
		return nil, fmt.Errorf("configure loyalty expirer: %w", err)
	}
	if err := manager.Register(expirer); err != nil {
		return nil, fmt.Errorf("register %s: %w", expirer.Name(), err)
	}

	return &Application{
		manager:    manager,
		log:        log,
		Catalog:    catalogService,
		Warehouses: warehouseService,
		Inventory:  inventoryService,
		Customers:  customerService,
		Orders:     orderService,
		Transfers:  transferService,
		Shipments:  shipmentService,
		Loyalty:    loyaltyService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
