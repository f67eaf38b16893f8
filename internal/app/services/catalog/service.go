package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/gold360/backoffice/internal/app/domain/product"
	"github.com/gold360/backoffice/internal/app/storage"
	"github.com/gold360/backoffice/pkg/logger"
)

// Cache is an optional read-through cache for product lookups by ID.
type Cache interface {
	GetProduct(ctx context.Context, id string) (product.Product, bool)
	SetProduct(ctx context.Context, p product.Product)
	InvalidateProduct(ctx context.Context, id string)
}

// Service manages the product catalog.
type Service struct {
	store storage.ProductStore
	cache Cache
	log   *logger.Logger
}

// New constructs a catalog service.
func New(store storage.ProductStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("catalog")
	}
	return &Service{
		store: store,
		log:   log,
	}
}

// WithCache assigns an optional product cache.
func (s *Service) WithCache(cache Cache) {
	s.cache = cache
}

// Create registers a new product. The SKU is uppercased and must be unique.
func (s *Service) Create(ctx context.Context, p product.Product) (product.Product, error) {
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))

	if p.SKU == "" {
		return product.Product{}, fmt.Errorf("sku is required")
	}
	if p.Name == "" {
		return product.Product{}, fmt.Errorf("name is required")
	}
	if p.Metal == "" {
		p.Metal = product.MetalOther
	}
	if !p.Metal.Valid() {
		return product.Product{}, fmt.Errorf("unsupported metal %s", p.Metal)
	}
	if p.PurityKarat < 0 || p.PurityKarat > 24 {
		return product.Product{}, fmt.Errorf("purity_karat must be between 0 and 24")
	}
	if p.WeightGrams < 0 {
		return product.Product{}, fmt.Errorf("weight_grams cannot be negative")
	}
	if p.UnitPrice < 0 {
		return product.Product{}, fmt.Errorf("unit_price cannot be negative")
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	p.Active = true

	if existing, err := s.store.GetProductBySKU(ctx, p.SKU); err == nil {
		return product.Product{}, fmt.Errorf("product with sku %s already exists (id %s)", p.SKU, existing.ID)
	}

	created, err := s.store.CreateProduct(ctx, p)
	if err != nil {
		return product.Product{}, err
	}
	s.log.WithField("product_id", created.ID).
		WithField("sku", created.SKU).
		Info("product created")
	return created, nil
}

// Update patches mutable fields on a product. The SKU is immutable.
func (s *Service) Update(ctx context.Context, id string, name, description, category, barcode, currency *string, purityKarat *int, weightGrams, unitPrice *float64) (product.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return product.Product{}, err
	}

	if name != nil {
		if trimmed := strings.TrimSpace(*name); trimmed != "" {
			p.Name = trimmed
		} else {
			return product.Product{}, fmt.Errorf("name cannot be empty")
		}
	}
	if description != nil {
		p.Description = strings.TrimSpace(*description)
	}
	if category != nil {
		p.Category = strings.TrimSpace(*category)
	}
	if barcode != nil {
		p.Barcode = strings.TrimSpace(*barcode)
	}
	if currency != nil {
		if trimmed := strings.ToUpper(strings.TrimSpace(*currency)); trimmed != "" {
			p.Currency = trimmed
		} else {
			return product.Product{}, fmt.Errorf("currency cannot be empty")
		}
	}
	if purityKarat != nil {
		if *purityKarat < 0 || *purityKarat > 24 {
			return product.Product{}, fmt.Errorf("purity_karat must be between 0 and 24")
		}
		p.PurityKarat = *purityKarat
	}
	if weightGrams != nil {
		if *weightGrams < 0 {
			return product.Product{}, fmt.Errorf("weight_grams cannot be negative")
		}
		p.WeightGrams = *weightGrams
	}
	if unitPrice != nil {
		if *unitPrice < 0 {
			return product.Product{}, fmt.Errorf("unit_price cannot be negative")
		}
		p.UnitPrice = *unitPrice
	}

	p, err = s.store.UpdateProduct(ctx, p)
	if err != nil {
		return product.Product{}, err
	}
	s.invalidate(ctx, p.ID)
	s.log.WithField("product_id", p.ID).Info("product updated")
	return p, nil
}

// SetActive toggles whether the product can be sold or transferred.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (product.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return product.Product{}, err
	}
	if p.Active == active {
		return p, nil
	}

	p.Active = active
	p, err = s.store.UpdateProduct(ctx, p)
	if err != nil {
		return product.Product{}, err
	}
	s.invalidate(ctx, p.ID)
	s.log.WithField("product_id", p.ID).
		WithField("active", active).
		Info("product state changed")
	return p, nil
}

// Get retrieves a product by identifier, consulting the cache first.
func (s *Service) Get(ctx context.Context, id string) (product.Product, error) {
	if s.cache != nil {
		if p, ok := s.cache.GetProduct(ctx, id); ok {
			return p, nil
		}
	}
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return product.Product{}, err
	}
	if s.cache != nil {
		s.cache.SetProduct(ctx, p)
	}
	return p, nil
}

// GetBySKU retrieves a product by its SKU.
func (s *Service) GetBySKU(ctx context.Context, sku string) (product.Product, error) {
	return s.store.GetProductBySKU(ctx, strings.ToUpper(strings.TrimSpace(sku)))
}

// List returns products, optionally filtered by category.
func (s *Service) List(ctx context.Context, category string) ([]product.Product, error) {
	return s.store.ListProducts(ctx, strings.TrimSpace(category))
}

// Delete removes a product from the catalog.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.InvalidateProduct(ctx, id)
	}
}
