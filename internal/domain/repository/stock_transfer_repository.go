package repository

import (
	"context"

	"github.com/jhoicas/multitienda-api/internal/domain/entity"
)

// StockTransferRepository define el puerto para traslados de stock y sus items.
// El traslado es dueño de sus items: Create los persiste en cascada y Delete no existe
// (los traslados terminales se conservan como historial).
type StockTransferRepository interface {
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	// Update persiste cabecera (estado, actores, fechas, notas); no toca items.
	Update(ctx context.Context, transfer *entity.StockTransfer) error
	// UpdateItems persiste las cantidades recibidas/dañadas de los items.
	UpdateItems(ctx context.Context, items []*entity.StockTransferItem) error

	// GetByID devuelve el traslado con sus items, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	// GetForUpdate bloquea la cabecera del traslado durante la transición.
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error)

	// ListByStore lista traslados donde la tienda es origen o destino; status nil = todos.
	ListByStore(ctx context.Context, storeID string, status *entity.TransferStatus, limit, offset int) ([]*entity.StockTransfer, error)
}
