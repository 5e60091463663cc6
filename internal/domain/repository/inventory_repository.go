package repository

import (
	"context"

	"github.com/jhoicas/multitienda-api/internal/domain/entity"
)

// InventoryRepository define el puerto para consultar/actualizar registros de stock
// por producto+ubicación. Las mutaciones del libro siempre pasan por GetForUpdate
// dentro de una transacción para garantizar consistencia.
type InventoryRepository interface {
	// Get devuelve el registro o nil si no existe.
	Get(ctx context.Context, productID, locationID string) (*entity.InventoryRecord, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); si no existe, la materializa
	// en cero dentro de la transacción para que el bloqueo sea efectivo.
	GetForUpdate(ctx context.Context, productID, locationID string) (*entity.InventoryRecord, error)
	Upsert(ctx context.Context, rec *entity.InventoryRecord) error

	ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.InventoryRecord, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryRecord, error)
	// ListOutOfStock devuelve los registros con disponible <= 0 en la ubicación.
	ListOutOfStock(ctx context.Context, locationID string) ([]*entity.InventoryRecord, error)
}
