package ledger

import (
	"context"

	"github.com/jhoicas/multitienda-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza atomicidad para las operaciones del libro: si fn falla,
// todo lo hecho dentro se revierte antes de que el caller observe el error.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		invRepo repository.InventoryRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}
