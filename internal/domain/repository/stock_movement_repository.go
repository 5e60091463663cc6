package repository

import (
	"context"
	"time"

	"github.com/jhoicas/multitienda-api/internal/domain/entity"
)

// StockMovementRepository define el puerto para la traza de movimientos del libro.
// Los movimientos son inmutables: solo se insertan y se consultan.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByLocation(ctx context.Context, locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	// ListByTransaction devuelve todos los movimientos de una misma unidad atómica.
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error)
}
