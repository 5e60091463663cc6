package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/multitienda-api/internal/application/events"
	"github.com/jhoicas/multitienda-api/internal/application/ledger"
	"github.com/jhoicas/multitienda-api/internal/domain"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/jhoicas/multitienda-api/internal/domain/repository"
	"github.com/jhoicas/multitienda-api/pkg/logger"
)

// Usecase orquesta el traslado de stock entre ubicaciones a través del flujo
// PENDING → APPROVED → IN_TRANSIT → RECEIVED/PARTIALLY_RECEIVED. Cada transición
// valida el estado con la tabla del dominio y muta el libro dentro de una sola
// transacción; al fallar cualquier línea se revierte todo lo hecho en ese paso.
type Usecase struct {
	txRunner     TxRunner
	transferRepo repository.StockTransferRepository
	publisher    events.Publisher
	log          *logger.Logger
}

// New construye el caso de uso. transferRepo (sobre el pool) atiende las lecturas.
func New(txRunner TxRunner, transferRepo repository.StockTransferRepository, publisher events.Publisher, log *logger.Logger) *Usecase {
	return &Usecase{txRunner: txRunner, transferRepo: transferRepo, publisher: publisher, log: log}
}

// CreateInput datos para crear un traslado.
type CreateInput struct {
	FromStoreID           string
	ToStoreID             string
	FromWarehouseID       string
	ToWarehouseID         string
	Priority              entity.TransferPriority
	Notes                 string
	ShippingMethod        string
	EstimatedDeliveryDate *time.Time
	Items                 []CreateItemInput
}

// CreateItemInput línea solicitada.
type CreateItemInput struct {
	ProductID string
	Quantity  int
}

// ReceiveItemInput cantidades recibidas por línea al recepcionar.
type ReceiveItemInput struct {
	ItemID           string
	ReceivedQuantity int
	DamagedQuantity  int
}

// Create registra el traslado en PENDING con sus items. Por política no toca el
// libro: el stock se reserva recién en la aprobación, para no retener stock de
// solicitudes que nadie aprobó.
func (uc *Usecase) Create(ctx context.Context, in CreateInput, actorID string) (*entity.StockTransfer, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.FromStoreID == "" || in.ToStoreID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.FromStoreID == in.ToStoreID && in.FromWarehouseID == in.ToWarehouseID {
		return nil, domain.ErrInvalidInput
	}
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
	}

	now := time.Now()
	priority := in.Priority
	if priority == "" {
		priority = entity.PriorityNormal
	}
	transfer := &entity.StockTransfer{
		ID:                    uuid.New().String(),
		TransferNo:            generateTransferNo(in.FromStoreID, in.ToStoreID, now),
		FromStoreID:           in.FromStoreID,
		ToStoreID:             in.ToStoreID,
		FromWarehouseID:       in.FromWarehouseID,
		ToWarehouseID:         in.ToWarehouseID,
		Status:                entity.TransferPending,
		Type:                  entity.DetermineTransferType(in.FromWarehouseID, in.ToWarehouseID),
		Priority:              priority,
		RequestedBy:           actorID,
		Notes:                 in.Notes,
		ShippingMethod:        in.ShippingMethod,
		EstimatedDeliveryDate: in.EstimatedDeliveryDate,
		Audit:                 entity.Audit{CreatedAt: now, UpdatedAt: now, CreatedBy: actorID},
	}
	for _, item := range in.Items {
		transfer.Items = append(transfer.Items, &entity.StockTransferItem{
			ID:                uuid.New().String(),
			TransferID:        transfer.ID,
			ProductID:         item.ProductID,
			RequestedQuantity: item.Quantity,
		})
	}

	err := uc.txRunner.RunTransfer(ctx, func(
		_ repository.InventoryRepository,
		_ repository.StockMovementRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		return transferRepo.Create(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, transfer.ID, "", entity.TransferPending, actorID)
	uc.log.Info().Str("transfer_no", transfer.TransferNo).Str("from", in.FromStoreID).Str("to", in.ToStoreID).Msg("traslado creado")
	return transfer, nil
}

// Approve aprueba un traslado PENDING reservando el stock de cada línea en el
// origen, todo o nada: si una sola reserva falla, las anteriores se revierten y
// el traslado sigue en PENDING.
func (uc *Usecase) Approve(ctx context.Context, transferID, actorID string) (*entity.StockTransfer, error) {
	var result *entity.StockTransfer
	now := time.Now()
	txID := uuid.New().String()
	err := uc.txRunner.RunTransfer(ctx, func(
		invRepo repository.InventoryRepository,
		movRepo repository.StockMovementRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		transfer, err := transferRepo.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if transfer == nil {
			return domain.ErrNotFound
		}
		if !transfer.Status.CanTransitionTo(entity.TransferApproved) {
			return domain.ErrIllegalTransition
		}
		source := transfer.SourceLocationID()
		for _, item := range transfer.Items {
			if _, err := ledger.ReserveInTx(ctx, invRepo, movRepo, item.ProductID, source, item.RequestedQuantity, actorID, now, txID); err != nil {
				return err
			}
		}
		transfer.Status = entity.TransferApproved
		transfer.ApprovedBy = actorID
		transfer.TransferDate = &now
		transfer.Touch(now, actorID)
		if err := transferRepo.Update(ctx, transfer); err != nil {
			return err
		}
		result = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, transferID, entity.TransferPending, entity.TransferApproved, actorID)
	return result, nil
}

// Ship despacha un traslado APPROVED: consume la reserva de cada línea en el
// origen (TRANSFER_OUT resta actual y reservado juntos). El destino no se toca
// hasta la recepción.
func (uc *Usecase) Ship(ctx context.Context, transferID, actorID string) (*entity.StockTransfer, error) {
	var result *entity.StockTransfer
	now := time.Now()
	txID := uuid.New().String()
	err := uc.txRunner.RunTransfer(ctx, func(
		invRepo repository.InventoryRepository,
		movRepo repository.StockMovementRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		transfer, err := transferRepo.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if transfer == nil {
			return domain.ErrNotFound
		}
		if !transfer.Status.CanTransitionTo(entity.TransferInTransit) {
			return domain.ErrIllegalTransition
		}
		source := transfer.SourceLocationID()
		for _, item := range transfer.Items {
			if _, err := ledger.TransferOutInTx(ctx, invRepo, movRepo, item.ProductID, source, item.RequestedQuantity, true, actorID, now, txID); err != nil {
				return err
			}
		}
		transfer.Status = entity.TransferInTransit
		transfer.TransferDate = &now
		transfer.Touch(now, actorID)
		if err := transferRepo.Update(ctx, transfer); err != nil {
			return err
		}
		result = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, transferID, entity.TransferApproved, entity.TransferInTransit, actorID)
	return result, nil
}

// Receive recepciona un traslado IN_TRANSIT. Por cada línea suma lo recibido al
// destino; las unidades dañadas quedan registradas en la línea para auditoría
// pero NO entran al stock utilizable. El traslado llega a RECEIVED solo si cada
// línea concilia exacto (recibido + dañado == solicitado); si no, queda en
// PARTIALLY_RECEIVED con las discrepancias registradas, nunca descartadas.
// Un ItemID que no pertenece al traslado invalida la recepción completa.
func (uc *Usecase) Receive(ctx context.Context, transferID, actorID string, received []ReceiveItemInput) (*entity.StockTransfer, error) {
	var result *entity.StockTransfer
	now := time.Now()
	txID := uuid.New().String()
	err := uc.txRunner.RunTransfer(ctx, func(
		invRepo repository.InventoryRepository,
		movRepo repository.StockMovementRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		transfer, err := transferRepo.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if transfer == nil {
			return domain.ErrNotFound
		}
		if transfer.Status != entity.TransferInTransit {
			return domain.ErrIllegalTransition
		}

		byItem := make(map[string]ReceiveItemInput, len(received))
		for _, r := range received {
			byItem[r.ItemID] = r
		}

		source := transfer.SourceLocationID()
		destination := transfer.DestinationLocationID()
		for _, item := range transfer.Items {
			r, ok := byItem[item.ID]
			if !ok {
				continue
			}
			delete(byItem, item.ID)
			if r.ReceivedQuantity < 0 || r.DamagedQuantity < 0 ||
				r.ReceivedQuantity+r.DamagedQuantity > item.RequestedQuantity {
				return domain.ErrInvalidQuantity
			}
			item.ReceivedQuantity = r.ReceivedQuantity
			item.DamagedQuantity = r.DamagedQuantity

			if r.ReceivedQuantity > 0 {
				// El destino hereda el costo promedio vigente en el origen.
				unitCost, err := sourceUnitCost(ctx, invRepo, item.ProductID, source)
				if err != nil {
					return err
				}
				if _, err := ledger.TransferInInTx(ctx, invRepo, movRepo, item.ProductID, destination, r.ReceivedQuantity, unitCost, actorID, now, txID); err != nil {
					return err
				}
			}
		}
		if len(byItem) > 0 {
			return fmt.Errorf("%w: item desconocido en la recepción", domain.ErrInvalidInput)
		}
		if err := transferRepo.UpdateItems(ctx, transfer.Items); err != nil {
			return err
		}

		if transfer.FullyReconciled() {
			transfer.Status = entity.TransferReceived
		} else {
			transfer.Status = entity.TransferPartiallyReceived
		}
		transfer.ReceivedBy = actorID
		transfer.ReceivedDate = &now
		transfer.ActualDeliveryDate = &now
		transfer.Touch(now, actorID)
		if err := transferRepo.Update(ctx, transfer); err != nil {
			return err
		}
		result = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, transferID, entity.TransferInTransit, result.Status, actorID)
	return result, nil
}

// Cancel cancela un traslado PENDING o APPROVED. Si estaba APPROVED primero
// libera, en la misma transacción, todas las reservas tomadas en la aprobación.
func (uc *Usecase) Cancel(ctx context.Context, transferID, actorID, reason string) (*entity.StockTransfer, error) {
	return uc.terminate(ctx, transferID, actorID, reason, entity.TransferCancelled)
}

// Reject rechaza un traslado PENDING o APPROVED (mismas reglas que Cancel).
func (uc *Usecase) Reject(ctx context.Context, transferID, actorID, reason string) (*entity.StockTransfer, error) {
	return uc.terminate(ctx, transferID, actorID, reason, entity.TransferRejected)
}

func (uc *Usecase) terminate(ctx context.Context, transferID, actorID, reason string, terminal entity.TransferStatus) (*entity.StockTransfer, error) {
	var result *entity.StockTransfer
	var oldStatus entity.TransferStatus
	now := time.Now()
	txID := uuid.New().String()
	err := uc.txRunner.RunTransfer(ctx, func(
		invRepo repository.InventoryRepository,
		movRepo repository.StockMovementRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		transfer, err := transferRepo.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if transfer == nil {
			return domain.ErrNotFound
		}
		if !transfer.Status.CanTransitionTo(terminal) {
			return domain.ErrIllegalTransition
		}
		oldStatus = transfer.Status

		// Las reservas solo existen desde la aprobación; devolverlas al disponible.
		if transfer.Status == entity.TransferApproved {
			source := transfer.SourceLocationID()
			for _, item := range transfer.Items {
				if _, err := ledger.ReleaseInTx(ctx, invRepo, movRepo, item.ProductID, source, item.RequestedQuantity, actorID, now, txID); err != nil {
					return err
				}
			}
		}

		transfer.Status = terminal
		if reason != "" {
			if transfer.Notes != "" {
				transfer.Notes += "\n"
			}
			transfer.Notes += fmt.Sprintf("%s: %s", terminalLabel(terminal), reason)
		}
		transfer.Touch(now, actorID)
		if err := transferRepo.Update(ctx, transfer); err != nil {
			return err
		}
		result = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, transferID, oldStatus, terminal, actorID)
	return result, nil
}

// GetByID devuelve un traslado con sus items.
func (uc *Usecase) GetByID(ctx context.Context, transferID string) (*entity.StockTransfer, error) {
	transfer, err := uc.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, domain.ErrNotFound
	}
	return transfer, nil
}

// ListByStore lista traslados donde la tienda participa; status nil = todos.
func (uc *Usecase) ListByStore(ctx context.Context, storeID string, status *entity.TransferStatus, limit, offset int) ([]*entity.StockTransfer, error) {
	return uc.transferRepo.ListByStore(ctx, storeID, status, limit, offset)
}

func (uc *Usecase) emit(ctx context.Context, transferID string, old, next entity.TransferStatus, actorID string) {
	ev := events.TransitionEvent{
		EntityType: events.EntityStockTransfer,
		EntityID:   transferID,
		OldStatus:  string(old),
		NewStatus:  string(next),
		ActorID:    actorID,
		OccurredAt: time.Now(),
	}
	if err := uc.publisher.PublishTransition(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("transfer_id", transferID).Msg("publicar evento de transición")
	}
}

func sourceUnitCost(ctx context.Context, invRepo repository.InventoryRepository, productID, locationID string) (decimal.Decimal, error) {
	rec, err := invRepo.Get(ctx, productID, locationID)
	if err != nil {
		return decimal.Zero, err
	}
	if rec == nil {
		return decimal.Zero, nil
	}
	return rec.UnitCost, nil
}

func generateTransferNo(fromStoreID, toStoreID string, now time.Time) string {
	from := fromStoreID
	if len(from) > 4 {
		from = from[:4]
	}
	to := toStoreID
	if len(to) > 4 {
		to = to[:4]
	}
	return fmt.Sprintf("TR-%s-%s-%d", from, to, now.Unix())
}

func terminalLabel(s entity.TransferStatus) string {
	if s == entity.TransferRejected {
		return "Rechazado"
	}
	return "Cancelado"
}
