package shipments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gold360/backoffice/internal/app/domain/shipment"
	"github.com/gold360/backoffice/internal/app/storage"
	"github.com/gold360/backoffice/pkg/logger"
)

// Service tracks parcels for orders and stock transfers. A shipment's status
// always mirrors its latest tracking event.
type Service struct {
	orders    storage.OrderStore
	transfers storage.TransferStore
	store     storage.ShipmentStore
	log       *logger.Logger
}

// New constructs a shipment service.
func New(orders storage.OrderStore, transfers storage.TransferStore, store storage.ShipmentStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("shipments")
	}
	return &Service{
		orders:    orders,
		transfers: transfers,
		store:     store,
		log:       log,
	}
}

// Create registers a shipment for exactly one order or one stock transfer.
func (s *Service) Create(ctx context.Context, orderID, transferID, carrier, trackingNumber string) (shipment.Shipment, error) {
	orderID = strings.TrimSpace(orderID)
	transferID = strings.TrimSpace(transferID)
	carrier = strings.TrimSpace(carrier)
	trackingNumber = strings.ToUpper(strings.TrimSpace(trackingNumber))

	if (orderID == "") == (transferID == "") {
		return shipment.Shipment{}, fmt.Errorf("exactly one of order_id and transfer_id is required")
	}
	if carrier == "" {
		return shipment.Shipment{}, fmt.Errorf("carrier is required")
	}
	if trackingNumber == "" {
		return shipment.Shipment{}, fmt.Errorf("tracking_number is required")
	}

	if orderID != "" {
		if _, err := s.orders.GetOrder(ctx, orderID); err != nil {
			return shipment.Shipment{}, fmt.Errorf("order validation failed: %w", err)
		}
	}
	if transferID != "" {
		if _, err := s.transfers.GetTransfer(ctx, transferID); err != nil {
			return shipment.Shipment{}, fmt.Errorf("transfer validation failed: %w", err)
		}
	}

	sh, err := s.store.CreateShipment(ctx, shipment.Shipment{
		OrderID:        orderID,
		TransferID:     transferID,
		Carrier:        carrier,
		TrackingNumber: trackingNumber,
		Status:         shipment.StatusCreated,
	})
	if err != nil {
		return shipment.Shipment{}, err
	}

	s.log.WithField("shipment_id", sh.ID).
		WithField("carrier", carrier).
		WithField("tracking_number", trackingNumber).
		Info("shipment created")
	return sh, nil
}

// AddEvent appends a tracking event and advances the shipment's status. A
// shipment in a terminal state accepts no further events. The first move out
// of CREATED stamps ShippedAt; DELIVERED stamps DeliveredAt.
func (s *Service) AddEvent(ctx context.Context, shipmentID string, status shipment.Status, location, note string, occurredAt time.Time) (shipment.Event, error) {
	if !status.Valid() {
		return shipment.Event{}, fmt.Errorf("unsupported status %s", status)
	}

	sh, err := s.store.GetShipment(ctx, shipmentID)
	if err != nil {
		return shipment.Event{}, err
	}
	if sh.Status.Terminal() {
		return shipment.Event{}, fmt.Errorf("shipment %s is %s, no further events accepted", shipmentID, sh.Status)
	}

	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	ev, err := s.store.CreateShipmentEvent(ctx, shipment.Event{
		ShipmentID: sh.ID,
		Status:     status,
		Location:   strings.TrimSpace(location),
		Note:       strings.TrimSpace(note),
		OccurredAt: occurredAt.UTC(),
	})
	if err != nil {
		return shipment.Event{}, err
	}

	if sh.Status == shipment.StatusCreated && status != shipment.StatusCreated && sh.ShippedAt.IsZero() {
		sh.ShippedAt = occurredAt.UTC()
	}
	if status == shipment.StatusDelivered {
		sh.DeliveredAt = occurredAt.UTC()
	}
	sh.Status = status
	if _, err := s.store.UpdateShipment(ctx, sh); err != nil {
		return shipment.Event{}, err
	}

	s.log.WithField("shipment_id", sh.ID).
		WithField("status", status).
		WithField("location", ev.Location).
		Info("shipment event recorded")
	return ev, nil
}

// Get retrieves a shipment by identifier.
func (s *Service) Get(ctx context.Context, id string) (shipment.Shipment, error) {
	return s.store.GetShipment(ctx, id)
}

// GetByTracking retrieves a shipment by its carrier tracking number.
func (s *Service) GetByTracking(ctx context.Context, trackingNumber string) (shipment.Shipment, error) {
	return s.store.GetShipmentByTracking(ctx, strings.ToUpper(strings.TrimSpace(trackingNumber)))
}

// List returns shipments filtered by order and/or transfer.
func (s *Service) List(ctx context.Context, orderID, transferID string) ([]shipment.Shipment, error) {
	return s.store.ListShipments(ctx, orderID, transferID)
}

// ListEvents returns a shipment's tracking events in occurrence order.
func (s *Service) ListEvents(ctx context.Context, shipmentID string) ([]shipment.Event, error) {
	if _, err := s.store.GetShipment(ctx, shipmentID); err != nil {
		return nil, err
	}
	return s.store.ListShipmentEvents(ctx, shipmentID)
}
