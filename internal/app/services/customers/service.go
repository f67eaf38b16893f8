package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gold360/backoffice/internal/app/domain/customer"
	"github.com/gold360/backoffice/internal/app/storage"
	"github.com/gold360/backoffice/pkg/logger"
)

// Service manages CRM customer records.
type Service struct {
	store storage.CustomerStore
	log   *logger.Logger
}

// New constructs a customer service.
func New(store storage.CustomerStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("customers")
	}
	return &Service{
		store: store,
		log:   log,
	}
}

// Create registers a new customer. The email is lowercased and must be unique.
func (s *Service) Create(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))

	if c.FirstName == "" || c.LastName == "" {
		return customer.Customer{}, fmt.Errorf("first_name and last_name are required")
	}
	if c.Email == "" {
		return customer.Customer{}, fmt.Errorf("email is required")
	}
	if !strings.Contains(c.Email, "@") {
		return customer.Customer{}, fmt.Errorf("email %s is not valid", c.Email)
	}
	if existing, err := s.store.GetCustomerByEmail(ctx, c.Email); err == nil {
		return customer.Customer{}, fmt.Errorf("customer with email %s already exists (id %s)", c.Email, existing.ID)
	}

	created, err := s.store.CreateCustomer(ctx, c)
	if err != nil {
		return customer.Customer{}, err
	}
	s.log.WithField("customer_id", created.ID).
		WithField("email", created.Email).
		Info("customer created")
	return created, nil
}

// Update patches mutable fields on a customer.
func (s *Service) Update(ctx context.Context, id string, firstName, lastName, email, phone, address, city, country, note *string, birthday *time.Time) (customer.Customer, error) {
	c, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return customer.Customer{}, err
	}

	if firstName != nil {
		if trimmed := strings.TrimSpace(*firstName); trimmed != "" {
			c.FirstName = trimmed
		} else {
			return customer.Customer{}, fmt.Errorf("first_name cannot be empty")
		}
	}
	if lastName != nil {
		if trimmed := strings.TrimSpace(*lastName); trimmed != "" {
			c.LastName = trimmed
		} else {
			return customer.Customer{}, fmt.Errorf("last_name cannot be empty")
		}
	}
	if email != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*email))
		if trimmed == "" || !strings.Contains(trimmed, "@") {
			return customer.Customer{}, fmt.Errorf("email %s is not valid", trimmed)
		}
		c.Email = trimmed
	}
	if phone != nil {
		c.Phone = strings.TrimSpace(*phone)
	}
	if address != nil {
		c.Address = strings.TrimSpace(*address)
	}
	if city != nil {
		c.City = strings.TrimSpace(*city)
	}
	if country != nil {
		c.Country = strings.TrimSpace(*country)
	}
	if note != nil {
		c.Note = strings.TrimSpace(*note)
	}
	if birthday != nil {
		c.Birthday = birthday.UTC()
	}

	c, err = s.store.UpdateCustomer(ctx, c)
	if err != nil {
		return customer.Customer{}, err
	}
	s.log.WithField("customer_id", c.ID).Info("customer updated")
	return c, nil
}

// Get retrieves a customer by identifier.
func (s *Service) Get(ctx context.Context, id string) (customer.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

// GetByEmail retrieves a customer by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (customer.Customer, error) {
	return s.store.GetCustomerByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List returns customers, optionally filtered by a name or email substring.
func (s *Service) List(ctx context.Context, query string) ([]customer.Customer, error) {
	return s.store.ListCustomers(ctx, query)
}

// Delete removes a customer record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.log.WithField("customer_id", id).Info("customer deleted")
	return nil
}
