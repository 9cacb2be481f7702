package types

import "time"

// Customer is a contact record. The phone number is the natural key:
// it is unique and used for duplicate detection on import.
type Customer struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CustomerInput carries the writable fields of a customer for
// single creation and bulk import.
type CustomerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
