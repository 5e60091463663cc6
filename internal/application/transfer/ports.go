package transfer

import (
	"context"

	"github.com/jhoicas/multitienda-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repositorios del
// workflow de traslados atados a esa tx. Cada transición (approve, ship, receive,
// cancel) es su propia unidad atómica: entre pasos no se retiene ningún bloqueo.
type TxRunner interface {
	RunTransfer(ctx context.Context, fn func(
		invRepo repository.InventoryRepository,
		movRepo repository.StockMovementRepository,
		transferRepo repository.StockTransferRepository,
	) error) error
}
