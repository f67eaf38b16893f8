package warehouses

import (
	"context"
	"fmt"
	"strings"

	"github.com/gold360/backoffice/internal/app/domain/warehouse"
	"github.com/gold360/backoffice/internal/app/storage"
	"github.com/gold360/backoffice/pkg/logger"
)

// Service manages warehouse records.
type Service struct {
	store storage.WarehouseStore
	log   *logger.Logger
}

// New constructs a warehouse service.
func New(store storage.WarehouseStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("warehouses")
	}
	return &Service{
		store: store,
		log:   log,
	}
}

// Create registers a new warehouse. The code is uppercased and must be unique.
func (s *Service) Create(ctx context.Context, w warehouse.Warehouse) (warehouse.Warehouse, error) {
	w.Code = strings.ToUpper(strings.TrimSpace(w.Code))
	w.Name = strings.TrimSpace(w.Name)

	if w.Code == "" {
		return warehouse.Warehouse{}, fmt.Errorf("code is required")
	}
	if w.Name == "" {
		return warehouse.Warehouse{}, fmt.Errorf("name is required")
	}
	if existing, err := s.store.GetWarehouseByCode(ctx, w.Code); err == nil {
		return warehouse.Warehouse{}, fmt.Errorf("warehouse with code %s already exists (id %s)", w.Code, existing.ID)
	}
	w.Active = true

	created, err := s.store.CreateWarehouse(ctx, w)
	if err != nil {
		return warehouse.Warehouse{}, err
	}
	s.log.WithField("warehouse_id", created.ID).
		WithField("code", created.Code).
		Info("warehouse created")
	return created, nil
}

// Update patches mutable fields on a warehouse. The code is immutable.
func (s *Service) Update(ctx context.Context, id string, name, address, city, country, phone *string) (warehouse.Warehouse, error) {
	w, err := s.store.GetWarehouse(ctx, id)
	if err != nil {
		return warehouse.Warehouse{}, err
	}

	if name != nil {
		if trimmed := strings.TrimSpace(*name); trimmed != "" {
			w.Name = trimmed
		} else {
			return warehouse.Warehouse{}, fmt.Errorf("name cannot be empty")
		}
	}
	if address != nil {
		w.Address = strings.TrimSpace(*address)
	}
	if city != nil {
		w.City = strings.TrimSpace(*city)
	}
	if country != nil {
		w.Country = strings.TrimSpace(*country)
	}
	if phone != nil {
		w.Phone = strings.TrimSpace(*phone)
	}

	w, err = s.store.UpdateWarehouse(ctx, w)
	if err != nil {
		return warehouse.Warehouse{}, err
	}
	s.log.WithField("warehouse_id", w.ID).Info("warehouse updated")
	return w, nil
}

// SetActive toggles whether the warehouse participates in stock operations.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (warehouse.Warehouse, error) {
	w, err := s.store.GetWarehouse(ctx, id)
	if err != nil {
		return warehouse.Warehouse{}, err
	}
	if w.Active == active {
		return w, nil
	}

	w.Active = active
	w, err = s.store.UpdateWarehouse(ctx, w)
	if err != nil {
		return warehouse.Warehouse{}, err
	}
	s.log.WithField("warehouse_id", w.ID).
		WithField("active", active).
		Info("warehouse state changed")
	return w, nil
}

// Get retrieves a warehouse by identifier.
func (s *Service) Get(ctx context.Context, id string) (warehouse.Warehouse, error) {
	return s.store.GetWarehouse(ctx, id)
}

// GetByCode retrieves a warehouse by its code.
func (s *Service) GetByCode(ctx context.Context, code string) (warehouse.Warehouse, error) {
	return s.store.GetWarehouseByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// List returns all warehouses.
func (s *Service) List(ctx context.Context) ([]warehouse.Warehouse, error) {
	return s.store.ListWarehouses(ctx)
}

// Delete removes a warehouse.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteWarehouse(ctx, id); err != nil {
		return err
	}
	s.log.WithField("warehouse_id", id).Info("warehouse deleted")
	return nil
}
