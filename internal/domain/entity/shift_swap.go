package entity

import "time"

// SwapStatus estado de la solicitud de intercambio de turno.
type SwapStatus string

// Estados del intercambio.
const (
	SwapPending         SwapStatus = "PENDING"          // esperando respuesta del empleado solicitado
	SwapApproved        SwapStatus = "APPROVED"         // aceptado por el empleado, falta el gerente
	SwapManagerApproved SwapStatus = "MANAGER_APPROVED" // aprobado totalmente
	SwapRejected        SwapStatus = "REJECTED"
	SwapCancelled       SwapStatus = "CANCELLED"
)

// swapTransitions transiciones válidas del intercambio.
var swapTransitions = map[SwapStatus][]SwapStatus{
	SwapPending:  {SwapApproved, SwapRejected, SwapCancelled},
	SwapApproved: {SwapManagerApproved, SwapRejected, SwapCancelled},
}

// CanTransitionTo indica si el paso de s a next es válido.
func (s SwapStatus) CanTransitionTo(next SwapStatus) bool {
	for _, allowed := range swapTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active indica si el intercambio sigue vivo (cuenta para la restricción de
// unicidad: a lo sumo un intercambio activo por turno/fecha).
func (s SwapStatus) Active() bool {
	return s == SwapPending || s == SwapApproved
}

// ShiftSwap solicitud de intercambio de turno entre dos empleados.
// La aprobación del gerente reasigna el turno original; esa reasignación es el
// paso explícito final, no un efecto implícito de la aprobación del empleado.
type ShiftSwap struct {
	ID                string
	StoreID           string
	OriginalShiftID   string
	RequestedByUserID string
	RequestedToUserID string
	OriginalShiftDate time.Time
	SwapShiftDate     time.Time
	Status            SwapStatus
	Reason            string
	ManagerNotes      string
	ApprovedBy        string
	RejectedBy        string
	ApprovedAt        *time.Time
	RejectedAt        *time.Time
	Audit
}
