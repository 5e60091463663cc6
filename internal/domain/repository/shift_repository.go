package repository

import (
	"context"
	"time"

	"github.com/jhoicas/multitienda-api/internal/domain/entity"
)

// ShiftRepository define el puerto para turnos de caja.
// La unicidad de turno ACTIVE por usuario se verifica dentro de la misma transacción
// que el insert (HasActiveShift + Create bajo TxRunner) y se respalda con un índice
// único parcial en la base.
type ShiftRepository interface {
	Create(ctx context.Context, shift *entity.Shift) error
	Update(ctx context.Context, shift *entity.Shift) error
	// GetByID devuelve el turno o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Shift, error)
	// GetForUpdate bloquea el turno durante la transición.
	GetForUpdate(ctx context.Context, id string) (*entity.Shift, error)

	// HasActiveShift indica si el usuario tiene un turno ACTIVE en cualquier tienda.
	HasActiveShift(ctx context.Context, userID string) (bool, error)
	GetActiveShift(ctx context.Context, storeID, userID string) (*entity.Shift, error)

	ListByStoreAndDate(ctx context.Context, storeID string, date time.Time) ([]*entity.Shift, error)
	ListByStoreAndStatus(ctx context.Context, storeID string, status entity.ShiftStatus) ([]*entity.Shift, error)
	ListActiveByStore(ctx context.Context, storeID string) ([]*entity.Shift, error)
	ListByDateRange(ctx context.Context, storeID string, from, to time.Time) ([]*entity.Shift, error)
}
