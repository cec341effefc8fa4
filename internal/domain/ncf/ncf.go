// Package ncf formatea Números de Comprobante Fiscal y evalúa el rango autorizado de un prefijo.
package ncf

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// DefaultWidth dígitos de la parte numérica (B01 + 8 dígitos).
const DefaultWidth = 8

// DefaultLowThreshold números restantes por debajo de los cuales se advierte baja capacidad.
const DefaultLowThreshold = 10

// NormalizePrefix limpia espacios y pasa a mayúsculas ("b01 " -> "B01").
func NormalizePrefix(prefix string) string {
	return strings.ToUpper(strings.TrimSpace(prefix))
}

// ValidatePrefix exige un prefijo alfanumérico no vacío de hasta 10 caracteres.
func ValidatePrefix(prefix string) error {
	if prefix == "" || len(prefix) > 10 {
		return domain.ErrInvalidInput
	}
	for _, r := range prefix {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// Format arma el NCF: prefijo + número con ceros a la izquierda hasta width dígitos.
// Falla si el número no cabe en el ancho fijo.
func Format(prefix string, number int64, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if number <= 0 {
		return "", fmt.Errorf("número %d: %w", number, domain.ErrInvalidInput)
	}
	digits := fmt.Sprintf("%0*d", width, number)
	if len(digits) > width {
		return "", fmt.Errorf("el número %d excede %d dígitos para %s: %w", number, width, prefix, domain.ErrConflict)
	}
	return prefix + digits, nil
}

// RangeStatus reporte (no bloqueante) del número emitido frente al rango autorizado.
type RangeStatus struct {
	HasRange    bool
	InRange     bool
	Remaining   int64 // números disponibles después del emitido; 0 si está fuera de rango
	LowCapacity bool
}

// Evaluate compara number con el rango del contador. Sin rango configurado todo número se considera válido.
func Evaluate(seq *entity.NCFSequence, number int64, threshold int64) RangeStatus {
	if seq == nil || !seq.HasRange() {
		return RangeStatus{InRange: true}
	}
	st := RangeStatus{HasRange: true}
	st.InRange = number >= seq.RangeStart && number <= seq.RangeEnd
	if st.InRange {
		st.Remaining = seq.RangeEnd - number
	}
	st.LowCapacity = st.Remaining < threshold
	return st
}

// Remaining números que aún se pueden emitir desde NextNumber hasta el fin del rango. -1 sin rango.
func Remaining(seq *entity.NCFSequence) int64 {
	if seq == nil || !seq.HasRange() {
		return -1
	}
	if seq.NextNumber > seq.RangeEnd {
		return 0
	}
	start := seq.NextNumber
	if start < seq.RangeStart {
		start = seq.RangeStart
	}
	return seq.RangeEnd - start + 1
}
