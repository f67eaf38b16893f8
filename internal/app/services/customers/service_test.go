package customers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/gold360/backoffice/internal/app/domain/customer"
	"github.com/gold360/backoffice/internal/app/storage/memory"
	"github.com/gold360/backoffice/pkg/logger"
)

func newTestService() *Service {
	log := logger.NewDefault("customers-test")
	log.SetOutput(io.Discard)
	return New(memory.New(), log)
}

func TestCreateNormalizesEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	c, err := svc.Create(ctx, customer.Customer{
		FirstName: "Ayse",
		LastName:  "Demir",
		Email:     " Ayse.Demir@Example.COM ",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if c.Email != "ayse.demir@example.com" {
		t.Fatalf("expected lowercased email, got %q", c.Email)
	}

	if _, err := svc.Create(ctx, customer.Customer{FirstName: "Other", LastName: "Person", Email: "AYSE.DEMIR@example.com"}); err == nil {
		t.Fatal("expected duplicate email to be rejected")
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.Create(ctx, customer.Customer{LastName: "Demir", Email: "a@b.c"}); err == nil {
		t.Fatal("expected missing first name to be rejected")
	}
	if _, err := svc.Create(ctx, customer.Customer{FirstName: "Ayse", LastName: "Demir", Email: "not-an-email"}); err == nil {
		t.Fatal("expected malformed email to be rejected")
	}
}

func TestUpdatePatchesFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	c, err := svc.Create(ctx, customer.Customer{FirstName: "Ayse", LastName: "Demir", Email: "ayse@example.com"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	phone := "+90 532 000 0000"
	birthday := time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC)
	c, err = svc.Update(ctx, c.ID, nil, nil, nil, &phone, nil, nil, nil, nil, &birthday)
	if err != nil {
		t.Fatalf("update customer: %v", err)
	}
	if c.Phone != phone {
		t.Fatalf("expected updated phone, got %q", c.Phone)
	}
	if !c.Birthday.Equal(birthday) {
		t.Fatalf("expected birthday %v, got %v", birthday, c.Birthday)
	}
}

func TestListFiltersByQuery(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.Create(ctx, customer.Customer{FirstName: "Ayse", LastName: "Demir", Email: "ayse@example.com"}); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if _, err := svc.Create(ctx, customer.Customer{FirstName: "Mehmet", LastName: "Kaya", Email: "mehmet@example.com"}); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	matches, err := svc.List(ctx, "demir")
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if len(matches) != 1 || matches[0].LastName != "Demir" {
		t.Fatalf("expected one match for demir, got %+v", matches)
	}

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two customers, got %d", len(all))
	}
}

func TestGetByEmailAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	c, err := svc.Create(ctx, customer.Customer{FirstName: "Ayse", LastName: "Demir", Email: "ayse@example.com"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	got, err := svc.GetByEmail(ctx, "AYSE@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != c.ID {
		t.Fatalf("expected customer %s, got %s", c.ID, got.ID)
	}

	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete customer: %v", err)
	}
	if _, err := svc.Get(ctx, c.ID); err == nil {
		t.Fatal("expected deleted customer to be gone")
	}
}
