package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/jhoicas/multitienda-api/internal/domain/repository"
)

// Usecase expone las operaciones del libro de inventario a los callers externos
// (checkout POS, API de ajustes). Cada operación es su propia unidad atómica con
// bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback; devuelve la foto actualizada
// del registro o un error tipado sin aplicación parcial.
type Usecase struct {
	txRunner TxRunner
	invRepo  repository.InventoryRepository
	movRepo  repository.StockMovementRepository
}

// New construye el caso de uso del libro. invRepo y movRepo (sobre el pool)
// atienden las lecturas; las mutaciones usan los repos atados a la tx del TxRunner.
func New(txRunner TxRunner, invRepo repository.InventoryRepository, movRepo repository.StockMovementRepository) *Usecase {
	return &Usecase{txRunner: txRunner, invRepo: invRepo, movRepo: movRepo}
}

// TransferResult fotos de origen y destino tras un traslado directo.
type TransferResult struct {
	Source      *entity.InventoryRecord
	Destination *entity.InventoryRecord
}

// Reserve aparta stock para una venta en curso.
func (uc *Usecase) Reserve(ctx context.Context, productID, locationID string, qty int, actorID string) (*entity.InventoryRecord, error) {
	return uc.runOne(ctx, func(ctx context.Context, invRepo repository.InventoryRepository, movRepo repository.StockMovementRepository, now time.Time, txID string) (*entity.InventoryRecord, error) {
		return ReserveInTx(ctx, invRepo, movRepo, productID, locationID, qty, actorID, now, txID)
	})
}

// Release libera una reserva (venta abandonada, timeout del carrito).
func (uc *Usecase) Release(ctx context.Context, productID, locationID string, qty int, actorID string) (*entity.InventoryRecord, error) {
	return uc.runOne(ctx, func(ctx context.Context, invRepo repository.InventoryRepository, movRepo repository.StockMovementRepository, now time.Time, txID string) (*entity.InventoryRecord, error) {
		return ReleaseInTx(ctx, invRepo, movRepo, productID, locationID, qty, actorID, now, txID)
	})
}

// Commit confirma la salida del stock reservado al completar el checkout.
func (uc *Usecase) Commit(ctx context.Context, productID, locationID string, qty int, actorID string) (*entity.InventoryRecord, error) {
	return uc.runOne(ctx, func(ctx context.Context, invRepo repository.InventoryRepository, movRepo repository.StockMovementRepository, now time.Time, txID string) (*entity.InventoryRecord, error) {
		return CommitInTx(ctx, invRepo, movRepo, productID, locationID, qty, actorID, now, txID)
	})
}

// Receive suma una entrada de proveedor con recálculo de costo promedio ponderado.
func (uc *Usecase) Receive(ctx context.Context, productID, locationID string, qty int, unitCost decimal.Decimal, actorID string) (*entity.InventoryRecord, error) {
	return uc.runOne(ctx, func(ctx context.Context, invRepo repository.InventoryRepository, movRepo repository.StockMovementRepository, now time.Time, txID string) (*entity.InventoryRecord, error) {
		return ReceiveInTx(ctx, invRepo, movRepo, productID, locationID, qty, unitCost, actorID, now, txID)
	})
}

// Adjust aplica una corrección directa con motivo (merma, rotura, conteo).
func (uc *Usecase) Adjust(ctx context.Context, productID, locationID string, delta int, reason, actorID string) (*entity.InventoryRecord, error) {
	return uc.runOne(ctx, func(ctx context.Context, invRepo repository.InventoryRepository, movRepo repository.StockMovementRepository, now time.Time, txID string) (*entity.InventoryRecord, error) {
		return AdjustInTx(ctx, invRepo, movRepo, productID, locationID, delta, reason, actorID, now, txID)
	})
}

// Transfer mueve stock directamente entre dos ubicaciones sin flujo de aprobación
// (uso administrativo). Ambas mutaciones ocurren en una sola transacción: si la
// entrada en destino falla, la salida en origen se revierte antes de responder.
func (uc *Usecase) Transfer(ctx context.Context, productID, fromLocationID, toLocationID string, qty int, actorID string) (*TransferResult, error) {
	var result TransferResult
	now := time.Now()
	txID := uuid.New().String()
	err := uc.txRunner.Run(ctx, func(invRepo repository.InventoryRepository, movRepo repository.StockMovementRepository) error {
		src, err := TransferOutInTx(ctx, invRepo, movRepo, productID, fromLocationID, qty, false, actorID, now, txID)
		if err != nil {
			return err
		}
		dst, err := TransferInInTx(ctx, invRepo, movRepo, productID, toLocationID, qty, src.UnitCost, actorID, now, txID)
		if err != nil {
			return err
		}
		result.Source = src
		result.Destination = dst
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Get devuelve la foto actual del registro (lectura, sin bloqueo).
func (uc *Usecase) Get(ctx context.Context, productID, locationID string) (*entity.InventoryRecord, error) {
	return uc.invRepo.Get(ctx, productID, locationID)
}

// ListByLocation lista los registros de una ubicación.
func (uc *Usecase) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	return uc.invRepo.ListByLocation(ctx, locationID, limit, offset)
}

// ListOutOfStock lista los registros agotados de una ubicación.
func (uc *Usecase) ListOutOfStock(ctx context.Context, locationID string) ([]*entity.InventoryRecord, error) {
	return uc.invRepo.ListOutOfStock(ctx, locationID)
}

// ListByProduct lista el stock de un producto en todas las ubicaciones.
func (uc *Usecase) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryRecord, error) {
	return uc.invRepo.ListByProduct(ctx, productID)
}

// ListMovements lista la traza de movimientos de una ubicación, con rango de
// fechas opcional y paginación.
func (uc *Usecase) ListMovements(ctx context.Context, locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movRepo.ListByLocation(ctx, locationID, from, to, limit, offset)
}

// MovementsByTransaction devuelve los movimientos de una misma unidad atómica
// (ej. el TRANSFER_OUT y TRANSFER_IN de un envío).
func (uc *Usecase) MovementsByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error) {
	return uc.movRepo.ListByTransaction(ctx, transactionID)
}

type intxFn func(ctx context.Context, invRepo repository.InventoryRepository, movRepo repository.StockMovementRepository, now time.Time, txID string) (*entity.InventoryRecord, error)

func (uc *Usecase) runOne(ctx context.Context, fn intxFn) (*entity.InventoryRecord, error) {
	var snapshot *entity.InventoryRecord
	now := time.Now()
	txID := uuid.New().String()
	err := uc.txRunner.Run(ctx, func(invRepo repository.InventoryRepository, movRepo repository.StockMovementRepository) error {
		rec, err := fn(ctx, invRepo, movRepo, now, txID)
		if err != nil {
			return err
		}
		snapshot = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
