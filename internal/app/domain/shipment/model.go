package shipment

import "time"

// Status is the delivery state of a shipment. It always reflects the most
// recent tracking event.
type Status string

const (
	StatusCreated        Status = "CREATED"
	StatusInTransit      Status = "IN_TRANSIT"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusReturned       Status = "RETURNED"
)

// Valid reports whether the status is a known shipment state.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusInTransit, StatusOutForDelivery, StatusDelivered, StatusReturned:
		return true
	}
	return false
}

// Terminal reports whether no further tracking events are accepted.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusReturned
}

// Shipment tracks a parcel for either an order or a stock transfer, never
// both.
type Shipment struct {
	ID             string
	OrderID        string
	TransferID     string
	Carrier        string
	TrackingNumber string
	Status         Status
	ShippedAt      time.Time
	DeliveredAt    time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Event is one tracking update for a shipment.
type Event struct {
	ID         string
	ShipmentID string
	Status     Status
	Location   string
	Note       string
	OccurredAt time.Time
	CreatedAt  time.Time
}
