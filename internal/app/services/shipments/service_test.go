package shipments

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/gold360/backoffice/internal/app/domain/customer"
	"github.com/gold360/backoffice/internal/app/domain/order"
	"github.com/gold360/backoffice/internal/app/domain/shipment"
	"github.com/gold360/backoffice/internal/app/domain/transfer"
	"github.com/gold360/backoffice/internal/app/storage/memory"
	"github.com/gold360/backoffice/pkg/logger"
)

type fixture struct {
	svc        *Service
	orderID    string
	transferID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	log := logger.NewDefault("shipments-test")
	log.SetOutput(io.Discard)

	c, err := store.CreateCustomer(ctx, customer.Customer{FirstName: "Ayse", LastName: "Demir", Email: "ayse@example.com"})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	o, err := store.CreateOrder(ctx, order.Order{CustomerID: c.ID, WarehouseID: "1", Status: order.StatusPaid})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	tr, err := store.CreateTransfer(ctx, transfer.Transfer{Code: "TR-1", SourceID: "1", DestinationID: "2", Status: transfer.StatusInTransit})
	if err != nil {
		t.Fatalf("seed transfer: %v", err)
	}

	return &fixture{
		svc:        New(store, store, store, log),
		orderID:    o.ID,
		transferID: tr.ID,
	}
}

func TestCreateRequiresExactlyOneParent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.Create(ctx, "", "", "UPS", "1Z999"); err == nil {
		t.Fatal("expected shipment without parent to be rejected")
	}
	if _, err := f.svc.Create(ctx, f.orderID, f.transferID, "UPS", "1Z999"); err == nil {
		t.Fatal("expected shipment with both parents to be rejected")
	}
	if _, err := f.svc.Create(ctx, "999", "", "UPS", "1Z999"); err == nil {
		t.Fatal("expected unknown order to be rejected")
	}
	if _, err := f.svc.Create(ctx, f.orderID, "", "", "1Z999"); err == nil {
		t.Fatal("expected missing carrier to be rejected")
	}
	if _, err := f.svc.Create(ctx, f.orderID, "", "UPS", ""); err == nil {
		t.Fatal("expected missing tracking number to be rejected")
	}

	sh, err := f.svc.Create(ctx, f.orderID, "", "UPS", " 1z999aa10123456784 ")
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	if sh.Status != shipment.StatusCreated {
		t.Fatalf("expected CREATED, got %s", sh.Status)
	}
	if sh.TrackingNumber != "1Z999AA10123456784" {
		t.Fatalf("expected normalized tracking number, got %q", sh.TrackingNumber)
	}

	if _, err := f.svc.Create(ctx, "", f.transferID, "UPS", "1Z999AA10123456784"); err == nil {
		t.Fatal("expected duplicate tracking number to be rejected")
	}
}

func TestEventsAdvanceStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sh, err := f.svc.Create(ctx, f.orderID, "", "UPS", "1Z999")
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}

	pickedUp := time.Date(2026, time.August, 20, 9, 0, 0, 0, time.UTC)
	if _, err := f.svc.AddEvent(ctx, sh.ID, shipment.StatusInTransit, "Istanbul hub", "picked up", pickedUp); err != nil {
		t.Fatalf("add event: %v", err)
	}

	sh, err = f.svc.Get(ctx, sh.ID)
	if err != nil {
		t.Fatalf("get shipment: %v", err)
	}
	if sh.Status != shipment.StatusInTransit {
		t.Fatalf("expected IN_TRANSIT, got %s", sh.Status)
	}
	if !sh.ShippedAt.Equal(pickedUp) {
		t.Fatalf("expected ShippedAt %v, got %v", pickedUp, sh.ShippedAt)
	}
	if !sh.DeliveredAt.IsZero() {
		t.Fatal("expected DeliveredAt to be unset")
	}

	delivered := pickedUp.Add(48 * time.Hour)
	if _, err := f.svc.AddEvent(ctx, sh.ID, shipment.StatusOutForDelivery, "Ankara depot", "", pickedUp.Add(24*time.Hour)); err != nil {
		t.Fatalf("add event: %v", err)
	}
	if _, err := f.svc.AddEvent(ctx, sh.ID, shipment.StatusDelivered, "Ankara", "signed", delivered); err != nil {
		t.Fatalf("add event: %v", err)
	}

	sh, err = f.svc.Get(ctx, sh.ID)
	if err != nil {
		t.Fatalf("get shipment: %v", err)
	}
	if sh.Status != shipment.StatusDelivered {
		t.Fatalf("expected DELIVERED, got %s", sh.Status)
	}
	if !sh.DeliveredAt.Equal(delivered) {
		t.Fatalf("expected DeliveredAt %v, got %v", delivered, sh.DeliveredAt)
	}
	if !sh.ShippedAt.Equal(pickedUp) {
		t.Fatalf("ShippedAt must keep the first movement, got %v", sh.ShippedAt)
	}

	events, err := f.svc.ListEvents(ctx, sh.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected three events, got %d", len(events))
	}

	// Delivered is terminal.
	if _, err := f.svc.AddEvent(ctx, sh.ID, shipment.StatusReturned, "", "", time.Time{}); err == nil {
		t.Fatal("expected event on DELIVERED shipment to be rejected")
	}
}

func TestAddEventValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sh, err := f.svc.Create(ctx, "", f.transferID, "DHL", "JD014600003")
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}

	if _, err := f.svc.AddEvent(ctx, sh.ID, "LOST", "", "", time.Time{}); err == nil {
		t.Fatal("expected unknown status to be rejected")
	}
	if _, err := f.svc.AddEvent(ctx, "999", shipment.StatusInTransit, "", "", time.Time{}); err == nil {
		t.Fatal("expected unknown shipment to be rejected")
	}
}

func TestGetByTrackingAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	orderShip, err := f.svc.Create(ctx, f.orderID, "", "UPS", "1Z999")
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	if _, err := f.svc.Create(ctx, "", f.transferID, "DHL", "JD0146"); err != nil {
		t.Fatalf("create shipment: %v", err)
	}

	got, err := f.svc.GetByTracking(ctx, "1z999")
	if err != nil {
		t.Fatalf("get by tracking: %v", err)
	}
	if got.ID != orderShip.ID {
		t.Fatalf("expected shipment %s, got %s", orderShip.ID, got.ID)
	}

	forOrder, err := f.svc.List(ctx, f.orderID, "")
	if err != nil {
		t.Fatalf("list shipments: %v", err)
	}
	if len(forOrder) != 1 || forOrder[0].ID != orderShip.ID {
		t.Fatalf("expected one shipment for order, got %+v", forOrder)
	}

	all, err := f.svc.List(ctx, "", "")
	if err != nil {
		t.Fatalf("list shipments: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two shipments, got %d", len(all))
	}
}
