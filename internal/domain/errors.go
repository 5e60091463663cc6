package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los devuelven tal cual y la capa HTTP los traduce a códigos de estado.
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrDuplicate               = errors.New("recurso duplicado")
	ErrUnauthorized            = errors.New("no autorizado")
	ErrForbidden               = errors.New("acceso denegado")
	ErrInsufficientStock       = errors.New("stock insuficiente")
	ErrInvalidQuantity         = errors.New("cantidad inválida")
	ErrInconsistentReservation = errors.New("reserva inconsistente con el stock")
	ErrIllegalTransition       = errors.New("transición de estado no permitida")
	ErrShiftAlreadyActive      = errors.New("el usuario ya tiene un turno activo")
	ErrDuplicateSwapRequest    = errors.New("ya existe un intercambio activo para ese turno")
)
