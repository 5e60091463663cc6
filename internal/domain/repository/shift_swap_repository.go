package repository

import (
	"context"
	"time"

	"github.com/jhoicas/multitienda-api/internal/domain/entity"
)

// ShiftSwapRepository define el puerto para solicitudes de intercambio de turno.
type ShiftSwapRepository interface {
	Create(ctx context.Context, swap *entity.ShiftSwap) error
	Update(ctx context.Context, swap *entity.ShiftSwap) error
	// GetByID devuelve la solicitud o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.ShiftSwap, error)

	// ExistsActiveSwap indica si ya hay un intercambio PENDING/APPROVED para ese
	// turno y par de fechas. Se consulta antes del insert, en la misma transacción.
	ExistsActiveSwap(ctx context.Context, shiftID string, originalDate, swapDate time.Time) (bool, error)

	ListByRequestedTo(ctx context.Context, userID string, status entity.SwapStatus) ([]*entity.ShiftSwap, error)
	ListByRequestedBy(ctx context.Context, userID string) ([]*entity.ShiftSwap, error)
	ListByStore(ctx context.Context, storeID string) ([]*entity.ShiftSwap, error)
}
