package transfer

import "time"

// Status is the lifecycle state of a stock transfer.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusInTransit Status = "IN_TRANSIT"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether the status is a known transfer state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Transfer moves quantities of products between two warehouses.
type Transfer struct {
	ID            string
	Code          string
	SourceID      string
	DestinationID string
	Status        Status
	Items         []Item
	Note          string
	DispatchedAt  time.Time
	CompletedAt   time.Time
	CancelledAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Item is one transferred product line. ReceivedQuantity is recorded when the
// transfer completes and may fall short of Quantity.
type Item struct {
	ID               string
	TransferID       string
	ProductID        string
	Quantity         int
	ReceivedQuantity int
}
