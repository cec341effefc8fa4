package entity

// Line cantidad de un medicamento dentro de un documento, sin precios.
type Line struct {
	MedicineID string
	Quantity   int64
}
