package inventory

import "time"

// TransactionType describes how a stock transaction mutates the level row.
type TransactionType string

const (
	// TransactionAdd increments the on-hand quantity.
	TransactionAdd TransactionType = "ADD"
	// TransactionSubtract decrements the on-hand quantity.
	TransactionSubtract TransactionType = "SUBTRACT"
	// TransactionSet replaces the on-hand quantity.
	TransactionSet TransactionType = "SET"
)

// Valid reports whether the type is one of the supported mutations.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionAdd, TransactionSubtract, TransactionSet:
		return true
	}
	return false
}

// Level is the on-hand quantity of one product in one warehouse. There is at
// most one level row per (product, warehouse) pair.
type Level struct {
	ID           string
	ProductID    string
	WarehouseID  string
	Quantity     int
	ReorderPoint int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StockTransaction records a single applied stock mutation together with the
// quantity observed before and after it.
type StockTransaction struct {
	ID             string
	ProductID      string
	WarehouseID    string
	Type           TransactionType
	Quantity       int
	QuantityBefore int
	QuantityAfter  int
	Reference      string
	Note           string
	CreatedAt      time.Time
}
