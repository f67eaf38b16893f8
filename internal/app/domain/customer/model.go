package customer

import "time"

// Customer is a CRM record. Email is unique across customers.
type Customer struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	Country   string
	Birthday  time.Time
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
