package loyalty

import "time"

// EntryKind classifies a loyalty ledger entry.
type EntryKind string

const (
	// KindEarn is a positive accrual, usually from a fulfilled order.
	KindEarn EntryKind = "EARN"
	// KindRedeem is a negative entry consuming points.
	KindRedeem EntryKind = "REDEEM"
	// KindExpire is a negative entry offsetting an expired accrual.
	KindExpire EntryKind = "EXPIRE"
	// KindAdjust is a manual correction in either direction.
	KindAdjust EntryKind = "ADJUST"
)

// Valid reports whether the kind is a known entry kind.
func (k EntryKind) Valid() bool {
	switch k {
	case KindEarn, KindRedeem, KindExpire, KindAdjust:
		return true
	}
	return false
}

// Program holds the accrual and redemption configuration. At most one program
// is active at a time.
type Program struct {
	ID           string
	Name         string
	EarnRate     float64
	RedeemRate   float64
	ExpiryMonths int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Entry is one movement on a customer's point ledger. A customer's balance is
// the sum of their entries.
type Entry struct {
	ID         string
	CustomerID string
	Kind       EntryKind
	Points     int
	Reference  string
	ExpiresAt  time.Time
	Expired    bool
	CreatedAt  time.Time
}
