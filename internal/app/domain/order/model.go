package order

import "time"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusFulfilled Status = "FULFILLED"
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether the status is a known order state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFulfilled, StatusCancelled:
		return true
	}
	return false
}

// Order is a customer purchase fulfilled from a single warehouse.
type Order struct {
	ID          string
	CustomerID  string
	WarehouseID string
	Status      Status
	Items       []Item
	Subtotal    float64
	Discount    float64
	Total       float64
	Currency    string
	Note        string
	PlacedAt    time.Time
	PaidAt      time.Time
	FulfilledAt time.Time
	CancelledAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Item is one order line. UnitPrice is snapshotted from the catalog when the
// order is created.
type Item struct {
	ID        string
	OrderID   string
	ProductID string
	SKU       string
	Quantity  int
	UnitPrice float64
	LineTotal float64
}
