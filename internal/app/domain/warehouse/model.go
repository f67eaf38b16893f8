package warehouse

import "time"

// Warehouse is a physical storage location holding inventory.
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Address   string
	City      string
	Country   string
	Phone     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
