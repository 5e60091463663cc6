package shift

import (
	"context"

	"github.com/jhoicas/multitienda-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repositorios de
// turnos e intercambios atados a esa tx. La verificación de unicidad de turno
// activo y el insert ocurren en la misma transacción; lo mismo para la unicidad
// de intercambio activo.
type TxRunner interface {
	RunShift(ctx context.Context, fn func(
		shiftRepo repository.ShiftRepository,
		swapRepo repository.ShiftSwapRepository,
	) error) error
}
