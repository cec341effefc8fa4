package entity

import "time"

// Supplier representa un proveedor (laboratorio o distribuidora).
type Supplier struct {
	ID        string
	Name      string
	TaxID     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
