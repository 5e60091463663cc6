package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/multitienda-api/internal/domain"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	domaininv "github.com/jhoicas/multitienda-api/internal/domain/inventory"
	"github.com/jhoicas/multitienda-api/internal/domain/repository"
)

// Primitivas del libro ejecutadas con repositorios atados a la transacción del caller.
// Los workflows (traslados, recepción) las componen en unidades atómicas mayores:
// si cualquier sub-paso falla, el TxRunner del caller revierte todos los anteriores.
// Cada primitiva bloquea la fila (GetForUpdate), valida, muta, recalcula los derivados
// y deja un movimiento en la traza.

// ReserveInTx aparta qty unidades. Falla con ErrInsufficientStock si disponible < qty.
func ReserveInTx(
	ctx context.Context,
	invRepo repository.InventoryRepository,
	movRepo repository.StockMovementRepository,
	productID, locationID string,
	qty int,
	actorID string,
	now time.Time,
	txID string,
) (*entity.InventoryRecord, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	rec, err := invRepo.GetForUpdate(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	if rec.AvailableQuantity < qty {
		return nil, domain.ErrInsufficientStock
	}
	rec.ReservedQuantity += qty
	rec.Recalculate()
	rec.LastUpdated = now
	rec.LastUpdatedBy = actorID
	if err := invRepo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	if err := recordMovement(ctx, movRepo, rec, entity.MovementTypeReserve, qty, rec.UnitCost, "", actorID, now, txID); err != nil {
		return nil, err
	}
	return rec, nil
}

// ReleaseInTx libera una reserva: resta min(qty, reservado).
// Falla con ErrInvalidQuantity si qty < 0.
func ReleaseInTx(
	ctx context.Context,
	invRepo repository.InventoryRepository,
	movRepo repository.StockMovementRepository,
	productID, locationID string,
	qty int,
	actorID string,
	now time.Time,
	txID string,
) (*entity.InventoryRecord, error) {
	if qty < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	rec, err := invRepo.GetForUpdate(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	released := qty
	if released > rec.ReservedQuantity {
		released = rec.ReservedQuantity
	}
	rec.ReservedQuantity -= released
	rec.Recalculate()
	rec.LastUpdated = now
	rec.LastUpdatedBy = actorID
	if err := invRepo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	if err := recordMovement(ctx, movRepo, rec, entity.MovementTypeRelease, released, rec.UnitCost, "", actorID, now, txID); err != nil {
		return nil, err
	}
	return rec, nil
}

// CommitInTx confirma la salida del stock reservado (cierre de venta):
// resta qty de actual y de reservado a la vez.
// Falla con ErrInconsistentReservation si reservado < qty.
func CommitInTx(
	ctx context.Context,
	invRepo repository.InventoryRepository,
	movRepo repository.StockMovementRepository,
	productID, locationID string,
	qty int,
	actorID string,
	now time.Time,
	txID string,
) (*entity.InventoryRecord, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	rec, err := invRepo.GetForUpdate(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	if rec.ReservedQuantity < qty {
		return nil, domain.ErrInconsistentReservation
	}
	rec.CurrentQuantity -= qty
	rec.ReservedQuantity -= qty
	rec.Recalculate()
	rec.LastUpdated = now
	rec.LastUpdatedBy = actorID
	if err := invRepo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	if err := recordMovement(ctx, movRepo, rec, entity.MovementTypeCommit, -qty, rec.UnitCost, "", actorID, now, txID); err != nil {
		return nil, err
	}
	return rec, nil
}

// ReceiveInTx suma una entrada de proveedor y recalcula el costo promedio ponderado.
// Nunca toca el reservado.
func ReceiveInTx(
	ctx context.Context,
	invRepo repository.InventoryRepository,
	movRepo repository.StockMovementRepository,
	productID, locationID string,
	qty int,
	unitCost decimal.Decimal,
	actorID string,
	now time.Time,
	txID string,
) (*entity.InventoryRecord, error) {
	if qty <= 0 || unitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	rec, err := invRepo.GetForUpdate(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	rec.UnitCost = domaininv.WeightedAverageCost(rec.CurrentQuantity, rec.UnitCost, qty, unitCost)
	rec.CurrentQuantity += qty
	rec.Recalculate()
	rec.LastUpdated = now
	rec.LastUpdatedBy = actorID
	if err := invRepo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	if err := recordMovement(ctx, movRepo, rec, entity.MovementTypeReceive, qty, unitCost, "", actorID, now, txID); err != nil {
		return nil, err
	}
	return rec, nil
}

// AdjustInTx aplica una corrección directa (merma, conteo físico).
// Falla si el actual resultante quedaría negativo o por debajo del reservado.
func AdjustInTx(
	ctx context.Context,
	invRepo repository.InventoryRepository,
	movRepo repository.StockMovementRepository,
	productID, locationID string,
	delta int,
	reason, actorID string,
	now time.Time,
	txID string,
) (*entity.InventoryRecord, error) {
	if delta == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	rec, err := invRepo.GetForUpdate(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	newQty := rec.CurrentQuantity + delta
	if newQty < 0 || newQty < rec.ReservedQuantity {
		return nil, domain.ErrInsufficientStock
	}
	rec.CurrentQuantity = newQty
	rec.Recalculate()
	rec.LastUpdated = now
	rec.LastUpdatedBy = actorID
	if err := invRepo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	if err := recordMovement(ctx, movRepo, rec, entity.MovementTypeAdjustment, delta, rec.UnitCost, reason, actorID, now, txID); err != nil {
		return nil, err
	}
	return rec, nil
}

// TransferOutInTx resta stock en el origen de un traslado.
// Con fromReservation (flujo aprobado) consume la reserva tomada en la aprobación:
// resta actual y reservado juntos y exige reservado >= qty. Sin reserva previa
// exige disponible >= qty y solo resta el actual.
func TransferOutInTx(
	ctx context.Context,
	invRepo repository.InventoryRepository,
	movRepo repository.StockMovementRepository,
	productID, locationID string,
	qty int,
	fromReservation bool,
	actorID string,
	now time.Time,
	txID string,
) (*entity.InventoryRecord, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	rec, err := invRepo.GetForUpdate(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	if fromReservation {
		if rec.ReservedQuantity < qty {
			return nil, domain.ErrInconsistentReservation
		}
		rec.ReservedQuantity -= qty
	} else if rec.AvailableQuantity < qty {
		return nil, domain.ErrInsufficientStock
	}
	rec.CurrentQuantity -= qty
	rec.Recalculate()
	rec.LastUpdated = now
	rec.LastUpdatedBy = actorID
	if err := invRepo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	if err := recordMovement(ctx, movRepo, rec, entity.MovementTypeTransferOut, -qty, rec.UnitCost, "", actorID, now, txID); err != nil {
		return nil, err
	}
	return rec, nil
}

// TransferInInTx suma stock en el destino de un traslado al costo unitario del origen.
// Debe ejecutarse en la MISMA transacción que su TransferOutInTx pareja: la aplicación
// parcial (origen restado sin destino sumado) es una violación fatal de consistencia
// que el TxRunner hace imposible.
func TransferInInTx(
	ctx context.Context,
	invRepo repository.InventoryRepository,
	movRepo repository.StockMovementRepository,
	productID, locationID string,
	qty int,
	unitCost decimal.Decimal,
	actorID string,
	now time.Time,
	txID string,
) (*entity.InventoryRecord, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	rec, err := invRepo.GetForUpdate(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	rec.UnitCost = domaininv.WeightedAverageCost(rec.CurrentQuantity, rec.UnitCost, qty, unitCost)
	rec.CurrentQuantity += qty
	rec.Recalculate()
	rec.LastUpdated = now
	rec.LastUpdatedBy = actorID
	if err := invRepo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	if err := recordMovement(ctx, movRepo, rec, entity.MovementTypeTransferIn, qty, unitCost, "", actorID, now, txID); err != nil {
		return nil, err
	}
	return rec, nil
}

func recordMovement(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	rec *entity.InventoryRecord,
	movType string,
	qty int,
	unitCost decimal.Decimal,
	reason, actorID string,
	now time.Time,
	txID string,
) error {
	mov := &entity.StockMovement{
		TransactionID: txID,
		ProductID:     rec.ProductID,
		LocationID:    rec.LocationID,
		Type:          movType,
		Quantity:      qty,
		UnitCost:      unitCost,
		TotalCost:     unitCost.Mul(decimal.NewFromInt(int64(qty))),
		Reason:        reason,
		Date:          now,
		CreatedAt:     now,
		CreatedBy:     actorID,
	}
	return movRepo.Create(ctx, mov)
}
