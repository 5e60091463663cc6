package receiving

import (
	"context"

	"github.com/jhoicas/multitienda-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repositorios de
// la verificación de stock recibido atados a esa tx. La verificación y su entrada
// al libro son una sola unidad atómica.
type TxRunner interface {
	RunReceiving(ctx context.Context, fn func(
		invRepo repository.InventoryRepository,
		movRepo repository.StockMovementRepository,
		receivedRepo repository.ReceivedStockRepository,
	) error) error
}
