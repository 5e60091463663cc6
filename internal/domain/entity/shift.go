package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShiftStatus estado del turno de caja.
type ShiftStatus string

// Estados del turno.
const (
	ShiftPending   ShiftStatus = "PENDING"   // programado, sin iniciar
	ShiftActive    ShiftStatus = "ACTIVE"    // en curso; habilita ventas
	ShiftCompleted ShiftStatus = "COMPLETED" // terminado con arqueo de caja
	ShiftCancelled ShiftStatus = "CANCELLED"
)

// shiftTransitions transiciones válidas del turno.
var shiftTransitions = map[ShiftStatus][]ShiftStatus{
	ShiftPending: {ShiftActive, ShiftCancelled},
	ShiftActive:  {ShiftCompleted},
}

// CanTransitionTo indica si el paso de s a next es válido.
func (s ShiftStatus) CanTransitionTo(next ShiftStatus) bool {
	for _, allowed := range shiftTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Shift turno de trabajo de un cajero en una tienda, con arqueo de caja al cierre.
// Un usuario solo puede tener un turno ACTIVE a la vez (restricción global,
// verificada transaccionalmente al iniciar).
type Shift struct {
	ID        string
	StoreID   string
	UserID    string
	ShiftDate time.Time // fecha del turno (solo fecha)

	StartedAt         *time.Time
	EndedAt           *time.Time
	ExpectedStartTime *time.Time
	ExpectedEndTime   *time.Time

	StartingCash decimal.Decimal
	EndingCash   *decimal.Decimal
	ExpectedCash *decimal.Decimal
	// CashDifference = EndingCash - ExpectedCash; solo se calcula al cierre
	// y queda sin definir si ExpectedCash no fue suministrado.
	CashDifference *decimal.Decimal

	Status  ShiftStatus
	Notes   string
	EndedBy string
	Audit
}

// Close cierra el turno con el arqueo de caja. La diferencia solo se calcula
// cuando el monto esperado fue suministrado.
func (s *Shift) Close(now time.Time, endedBy string, endingCash decimal.Decimal, expectedCash *decimal.Decimal, notes string) {
	s.EndedAt = &now
	s.EndedBy = endedBy
	s.EndingCash = &endingCash
	s.ExpectedCash = expectedCash
	if expectedCash != nil {
		diff := endingCash.Sub(*expectedCash)
		s.CashDifference = &diff
	}
	if notes != "" {
		s.Notes = notes
	}
	s.Status = ShiftCompleted
}
