package loyalty

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gold360/backoffice/internal/app/domain/loyalty"
	"github.com/gold360/backoffice/internal/app/metrics"
	"github.com/gold360/backoffice/internal/app/storage"
	"github.com/gold360/backoffice/pkg/logger"
)

// ErrInsufficientPoints is returned when a redemption exceeds the customer's
// balance.
var ErrInsufficientPoints = errors.New("insufficient loyalty points")

// Service manages the loyalty program configuration and the per-customer
// point ledger.
type Service struct {
	customers storage.CustomerStore
	store     storage.LoyaltyStore
	log       *logger.Logger
}

// New constructs a loyalty service.
func New(customers storage.CustomerStore, store storage.LoyaltyStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("loyalty")
	}
	return &Service{
		customers: customers,
		store:     store,
		log:       log,
	}
}

// ConfigureProgram creates or replaces the loyalty program configuration.
func (s *Service) ConfigureProgram(ctx context.Context, name string, earnRate, redeemRate float64, expiryMonths int, active bool) (loyalty.Program, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return loyalty.Program{}, fmt.Errorf("name is required")
	}
	if earnRate < 0 {
		return loyalty.Program{}, fmt.Errorf("earn_rate cannot be negative")
	}
	if redeemRate < 0 {
		return loyalty.Program{}, fmt.Errorf("redeem_rate cannot be negative")
	}
	if expiryMonths < 0 {
		return loyalty.Program{}, fmt.Errorf("expiry_months cannot be negative")
	}

	program, err := s.store.UpsertProgram(ctx, loyalty.Program{
		Name:         name,
		EarnRate:     earnRate,
		RedeemRate:   redeemRate,
		ExpiryMonths: expiryMonths,
		Active:       active,
	})
	if err != nil {
		return loyalty.Program{}, err
	}
	s.log.WithField("program_id", program.ID).
		WithField("earn_rate", earnRate).
		WithField("expiry_months", expiryMonths).
		WithField("active", active).
		Info("loyalty program configured")
	return program, nil
}

// Program returns the active program configuration.
func (s *Service) Program(ctx context.Context) (loyalty.Program, error) {
	return s.store.GetActiveProgram(ctx)
}

// Accrue awards points for a monetary amount using the active program's earn
// rate. Amounts that round down to zero points accrue nothing. Accrual is a
// no-op without an active program.
func (s *Service) Accrue(ctx context.Context, customerID string, amount float64, reference string) (loyalty.Entry, error) {
	if amount <= 0 {
		return loyalty.Entry{}, fmt.Errorf("amount must be positive")
	}
	if err := s.validateCustomer(ctx, customerID); err != nil {
		return loyalty.Entry{}, err
	}

	program, err := s.store.GetActiveProgram(ctx)
	if err != nil {
		return loyalty.Entry{}, nil
	}

	points := int(math.Floor(amount * program.EarnRate))
	if points <= 0 {
		return loyalty.Entry{}, nil
	}

	entry := loyalty.Entry{
		CustomerID: customerID,
		Kind:       loyalty.KindEarn,
		Points:     points,
		Reference:  reference,
	}
	if program.ExpiryMonths > 0 {
		entry.ExpiresAt = time.Now().UTC().AddDate(0, program.ExpiryMonths, 0)
	}

	entry, err = s.store.CreateLoyaltyEntry(ctx, entry)
	if err != nil {
		return loyalty.Entry{}, err
	}
	metrics.RecordLoyaltyPoints(string(loyalty.KindEarn), points)
	s.log.WithField("customer_id", customerID).
		WithField("points", points).
		WithField("reference", reference).
		Info("loyalty points accrued")
	return entry, nil
}

// Redeem consumes points from a customer's balance.
func (s *Service) Redeem(ctx context.Context, customerID string, points int, reference string) (loyalty.Entry, error) {
	if points <= 0 {
		return loyalty.Entry{}, fmt.Errorf("points must be positive")
	}
	if err := s.validateCustomer(ctx, customerID); err != nil {
		return loyalty.Entry{}, err
	}
	if _, err := s.store.GetActiveProgram(ctx); err != nil {
		return loyalty.Entry{}, fmt.Errorf("redemption unavailable: %w", err)
	}

	balance, err := s.Balance(ctx, customerID)
	if err != nil {
		return loyalty.Entry{}, err
	}
	if balance < points {
		return loyalty.Entry{}, fmt.Errorf("%w: balance %d, requested %d", ErrInsufficientPoints, balance, points)
	}

	entry, err := s.store.CreateLoyaltyEntry(ctx, loyalty.Entry{
		CustomerID: customerID,
		Kind:       loyalty.KindRedeem,
		Points:     -points,
		Reference:  reference,
	})
	if err != nil {
		return loyalty.Entry{}, err
	}
	metrics.RecordLoyaltyPoints(string(loyalty.KindRedeem), points)
	s.log.WithField("customer_id", customerID).
		WithField("points", points).
		Info("loyalty points redeemed")
	return entry, nil
}

// Adjust applies a manual correction in either direction. The balance may not
// go negative.
func (s *Service) Adjust(ctx context.Context, customerID string, points int, reference string) (loyalty.Entry, error) {
	if points == 0 {
		return loyalty.Entry{}, fmt.Errorf("points cannot be zero")
	}
	if err := s.validateCustomer(ctx, customerID); err != nil {
		return loyalty.Entry{}, err
	}

	if points < 0 {
		balance, err := s.Balance(ctx, customerID)
		if err != nil {
			return loyalty.Entry{}, err
		}
		if balance+points < 0 {
			return loyalty.Entry{}, fmt.Errorf("%w: balance %d, adjustment %d", ErrInsufficientPoints, balance, points)
		}
	}

	entry, err := s.store.CreateLoyaltyEntry(ctx, loyalty.Entry{
		CustomerID: customerID,
		Kind:       loyalty.KindAdjust,
		Points:     points,
		Reference:  reference,
	})
	if err != nil {
		return loyalty.Entry{}, err
	}
	metrics.RecordLoyaltyPoints(string(loyalty.KindAdjust), points)
	s.log.WithField("customer_id", customerID).
		WithField("points", points).
		Info("loyalty points adjusted")
	return entry, nil
}

// Balance returns the sum of a customer's ledger entries.
func (s *Service) Balance(ctx context.Context, customerID string) (int, error) {
	entries, err := s.store.ListLoyaltyEntries(ctx, customerID)
	if err != nil {
		return 0, err
	}
	balance := 0
	for _, e := range entries {
		balance += e.Points
	}
	return balance, nil
}

// History returns a customer's ledger entries in accrual order.
func (s *Service) History(ctx context.Context, customerID string) ([]loyalty.Entry, error) {
	if err := s.validateCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return s.store.ListLoyaltyEntries(ctx, customerID)
}

// ExpireDue offsets EARN entries whose expiry passed. An expired entry never
// removes more points than the customer still holds, so points already
// redeemed are not expired twice. Returns the number of entries processed.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.store.ListExpirableEntries(ctx, now.UTC())
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, entry := range due {
		balance, err := s.Balance(ctx, entry.CustomerID)
		if err != nil {
			return processed, err
		}

		expire := entry.Points
		if expire > balance {
			expire = balance
		}
		if expire > 0 {
			if _, err := s.store.CreateLoyaltyEntry(ctx, loyalty.Entry{
				CustomerID: entry.CustomerID,
				Kind:       loyalty.KindExpire,
				Points:     -expire,
				Reference:  "entry:" + entry.ID,
			}); err != nil {
				return processed, err
			}
			metrics.RecordLoyaltyPoints(string(loyalty.KindExpire), expire)
		}
		if err := s.store.MarkEntryExpired(ctx, entry.ID); err != nil {
			return processed, err
		}
		processed++
		s.log.WithField("customer_id", entry.CustomerID).
			WithField("entry_id", entry.ID).
			WithField("points", expire).
			Info("loyalty points expired")
	}
	return processed, nil
}

func (s *Service) validateCustomer(ctx context.Context, customerID string) error {
	if strings.TrimSpace(customerID) == "" {
		return fmt.Errorf("customer_id is required")
	}
	if s.customers != nil {
		if _, err := s.customers.GetCustomer(ctx, customerID); err != nil {
			return fmt.Errorf("customer validation failed: %w", err)
		}
	}
	return nil
}
