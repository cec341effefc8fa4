package entity

import "time"

// NCFSequence contador persistido por prefijo de comprobante fiscal.
// NextNumber es el próximo número a emitir. RangeStart/RangeEnd describen el rango
// autorizado (0 = sin rango configurado); el rango se reporta pero no bloquea la emisión.
type NCFSequence struct {
	Prefix     string
	NextNumber int64
	RangeStart int64
	RangeEnd   int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasRange indica si hay un rango autorizado configurado.
func (s *NCFSequence) HasRange() bool {
	return s.RangeEnd > 0
}
