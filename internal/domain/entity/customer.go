package entity

import "time"

// Customer representa un cliente de la farmacia (facturación).
type Customer struct {
	ID        string
	Name      string
	TaxID     string // RNC o cédula
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
