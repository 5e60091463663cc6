package repository

import (
	"context"

	"github.com/jhoicas/multitienda-api/internal/domain/entity"
)

// ReceivedStockRepository define el puerto para líneas de stock recibido de proveedores.
type ReceivedStockRepository interface {
	Create(ctx context.Context, rs *entity.ReceivedStock) error
	Update(ctx context.Context, rs *entity.ReceivedStock) error
	// GetByID devuelve la línea o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.ReceivedStock, error)
	// GetForUpdate bloquea la línea durante la verificación.
	GetForUpdate(ctx context.Context, id string) (*entity.ReceivedStock, error)

	ListByStatus(ctx context.Context, status entity.ReceivedStockStatus, limit, offset int) ([]*entity.ReceivedStock, error)
	// ListByUpload devuelve las líneas de una carga masiva, ordenadas por fila.
	ListByUpload(ctx context.Context, uploadID string) ([]*entity.ReceivedStock, error)
	ListPending(ctx context.Context, limit, offset int) ([]*entity.ReceivedStock, error)
	ListDiscrepancies(ctx context.Context, limit, offset int) ([]*entity.ReceivedStock, error)
}
