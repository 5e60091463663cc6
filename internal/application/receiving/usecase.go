package receiving

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

// Usecase gestiona la verificación de stock recibido de proveedores: registro de
// entregas (individual o carga masiva), verificación contra lo esperado con cálculo
// de faltantes/sobrantes/daños, y entrada de las unidades verificadas al libro.
type Usecase struct {
	txRunner     TxRunner
	receivedRepo repository.ReceivedStockRepository
	publisher    events.Publisher
	log          *logger.Logger
}

// New construye el caso de uso. receivedRepo (sobre el pool) atiende las lecturas.
func New(txRunner TxRunner, receivedRepo repository.ReceivedStockRepository, publisher events.Publisher, log *logger.Logger) *Usecase {
	return &Usecase{txRunner: txRunner, receivedRepo: receivedRepo, publisher: publisher, log: log}
}

// LineInput datos de una línea de entrega de proveedor.
type LineInput struct {
	ProductID   string
	ProductCode string
	ProductName string
	LocationID  string

	ExpectedQuantity int
	ReceivedQuantity int
	UnitPrice        decimal.Decimal

	BatchNumber           string
	SupplierName          string
	SupplierInvoiceNumber string
	DeliveryDate          *time.Time
	ExpectedDeliveryDate  *time.Time
	Notes                 string
}

// VerifyInput datos de la verificación de una línea.
type VerifyInput struct {
	DamageQuantity int
	QualityIssues  string
	Notes          string
}

// RowError error de una fila de la carga masiva. La fila se descarta sin afectar
// al resto del lote.
type RowError struct {
	RowNumber int    `json:"row_number"`
	Message   string `json:"message"`
}

// BatchResult resultado de una carga masiva: líneas creadas y filas rechazadas.
type BatchResult struct {
	UploadID string
	Created  []*entity.ReceivedStock
	Errors   []RowError
}

// Register registra una línea individual de entrega en PENDING. El stock NO entra
// al libro hasta la verificación.
func (uc *Usecase) Register(ctx context.Context, in LineInput, actorID string) (*entity.ReceivedStock, error) {
	rs, err := buildLine(in, uuid.New().String(), 0, actorID, time.Now())
	if err != nil {
		return nil, err
	}
	err = uc.txRunner.RunReceiving(ctx, func(
		_ repository.InventoryRepository,
		_ repository.StockMovementRepository,
		receivedRepo repository.ReceivedStockRepository,
	) error {
		return receivedRepo.Create(ctx, rs)
	})
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, rs.ID, "", entity.ReceivedPending, actorID)
	return rs, nil
}

// RegisterBatch registra una carga masiva. Cada fila se valida y persiste de forma
// independiente: una fila inválida se reporta con su número y NO descarta el lote.
// Todas las líneas creadas comparten el UploadID devuelto.
func (uc *Usecase) RegisterBatch(ctx context.Context, lines []LineInput, actorID string) (*BatchResult, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	result := &BatchResult{UploadID: uuid.New().String()}
	now := time.Now()
	for i, in := range lines {
		rowNumber := i + 1
		rs, err := buildLine(in, result.UploadID, rowNumber, actorID, now)
		if err != nil {
			result.Errors = append(result.Errors, RowError{RowNumber: rowNumber, Message: err.Error()})
			continue
		}
		err = uc.txRunner.RunReceiving(ctx, func(
			_ repository.InventoryRepository,
			_ repository.StockMovementRepository,
			receivedRepo repository.ReceivedStockRepository,
		) error {
			return receivedRepo.Create(ctx, rs)
		})
		if err != nil {
			result.Errors = append(result.Errors, RowError{RowNumber: rowNumber, Message: err.Error()})
			continue
		}
		result.Created = append(result.Created, rs)
	}
	uc.log.Info().Str("upload_id", result.UploadID).
		Int("creadas", len(result.Created)).Int("rechazadas", len(result.Errors)).
		Msg("carga masiva de stock recibido procesada")
	return result, nil
}

// Verify verifica una línea PENDING (o PARTIAL) contra lo esperado. Calcula
// faltante, sobrante y verificado (recibido - dañado), decide el estado final
// (DISCREPANCY si esperado != recibido, si no VERIFIED) y suma las unidades
// verificadas al libro en la MISMA transacción: una línea con discrepancia
// registrada también entrega su stock utilizable.
func (uc *Usecase) Verify(ctx context.Context, id string, in VerifyInput, actorID string) (*entity.ReceivedStock, error) {
	var result *entity.ReceivedStock
	var oldStatus entity.ReceivedStockStatus
	now := time.Now()
	txID := uuid.New().String()
	err := uc.txRunner.RunReceiving(ctx, func(
		invRepo repository.InventoryRepository,
		movRepo repository.StockMovementRepository,
		receivedRepo repository.ReceivedStockRepository,
	) error {
		rs, err := receivedRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rs == nil {
			return domain.ErrNotFound
		}
		oldStatus = rs.Status

		next := entity.ReceivedVerified
		if rs.HasDiscrepancy() {
			next = entity.ReceivedDiscrepancy
		}
		if !rs.Status.CanTransitionTo(next) {
			return domain.ErrIllegalTransition
		}
		if in.DamageQuantity < 0 || in.DamageQuantity > rs.ReceivedQuantity {
			return domain.ErrInvalidQuantity
		}

		rs.DamageQuantity = in.DamageQuantity
		rs.VerifiedQuantity = rs.ReceivedQuantity - in.DamageQuantity
		rs.ShortageQuantity = 0
		rs.ExcessQuantity = 0
		if rs.ExpectedQuantity > rs.ReceivedQuantity {
			rs.ShortageQuantity = rs.ExpectedQuantity - rs.ReceivedQuantity
		} else if rs.ReceivedQuantity > rs.ExpectedQuantity {
			rs.ExcessQuantity = rs.ReceivedQuantity - rs.ExpectedQuantity
		}
		rs.Status = next
		rs.QualityIssues = in.QualityIssues
		if in.Notes != "" {
			rs.Notes = in.Notes
		}
		rs.VerifiedBy = actorID
		rs.VerifiedDate = &now
		rs.Touch(now, actorID)

		// Solo las unidades verificadas entran al stock; las dañadas quedan en
		// la línea para auditoría.
		if rs.VerifiedQuantity > 0 {
			if _, err := ledger.ReceiveInTx(ctx, invRepo, movRepo, rs.ProductID, rs.LocationID, rs.VerifiedQuantity, rs.UnitPrice, actorID, now, txID); err != nil {
				return err
			}
		}
		if err := receivedRepo.Update(ctx, rs); err != nil {
			return err
		}
		result = rs
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, id, oldStatus, result.Status, actorID)
	return result, nil
}

// Reject rechaza una línea PENDING por calidad. No toca el libro.
func (uc *Usecase) Reject(ctx context.Context, id, reason, actorID string) (*entity.ReceivedStock, error) {
	var result *entity.ReceivedStock
	now := time.Now()
	err := uc.txRunner.RunReceiving(ctx, func(
		_ repository.InventoryRepository,
		_ repository.StockMovementRepository,
		receivedRepo repository.ReceivedStockRepository,
	) error {
		rs, err := receivedRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rs == nil {
			return domain.ErrNotFound
		}
		if !rs.Status.CanTransitionTo(entity.ReceivedRejected) {
			return domain.ErrIllegalTransition
		}
		rs.Status = entity.ReceivedRejected
		rs.QualityIssues = reason
		rs.VerifiedBy = actorID
		rs.VerifiedDate = &now
		rs.Touch(now, actorID)
		if err := receivedRepo.Update(ctx, rs); err != nil {
			return err
		}
		result = rs
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, id, entity.ReceivedPending, entity.ReceivedRejected, actorID)
	return result, nil
}

// GetByID devuelve una línea.
func (uc *Usecase) GetByID(ctx context.Context, id string) (*entity.ReceivedStock, error) {
	rs, err := uc.receivedRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rs == nil {
		return nil, domain.ErrNotFound
	}
	return rs, nil
}

// ListPending lista las líneas pendientes de verificación.
func (uc *Usecase) ListPending(ctx context.Context, limit, offset int) ([]*entity.ReceivedStock, error) {
	return uc.receivedRepo.ListPending(ctx, limit, offset)
}

// ListDiscrepancies lista las líneas verificadas con discrepancia.
func (uc *Usecase) ListDiscrepancies(ctx context.Context, limit, offset int) ([]*entity.ReceivedStock, error) {
	return uc.receivedRepo.ListDiscrepancies(ctx, limit, offset)
}

// ListByUpload lista las líneas de una carga masiva en orden de fila.
func (uc *Usecase) ListByUpload(ctx context.Context, uploadID string) ([]*entity.ReceivedStock, error) {
	return uc.receivedRepo.ListByUpload(ctx, uploadID)
}

func (uc *Usecase) emit(ctx context.Context, id string, old, next entity.ReceivedStockStatus, actorID string) {
	ev := events.TransitionEvent{
		EntityType: events.EntityReceivedStock,
		EntityID:   id,
		OldStatus:  string(old),
		NewStatus:  string(next),
		ActorID:    actorID,
		OccurredAt: time.Now(),
	}
	if err := uc.publisher.PublishTransition(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("received_stock_id", id).Msg("publicar evento de transición")
	}
}

func buildLine(in LineInput, uploadID string, rowNumber int, actorID string, now time.Time) (*entity.ReceivedStock, error) {
	if in.ProductID == "" || in.LocationID == "" {
		return nil, fmt.Errorf("%w: producto y ubicación son obligatorios", domain.ErrInvalidInput)
	}
	if in.ExpectedQuantity < 0 || in.ReceivedQuantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.UnitPrice.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: precio unitario negativo", domain.ErrInvalidInput)
	}
	return &entity.ReceivedStock{
		ID:                    uuid.New().String(),
		ProductID:             in.ProductID,
		ProductCode:           in.ProductCode,
		ProductName:           in.ProductName,
		LocationID:            in.LocationID,
		ExpectedQuantity:      in.ExpectedQuantity,
		ReceivedQuantity:      in.ReceivedQuantity,
		UnitPrice:             in.UnitPrice,
		TotalValue:            in.UnitPrice.Mul(decimal.NewFromInt(int64(in.ReceivedQuantity))),
		Status:                entity.ReceivedPending,
		BatchNumber:           in.BatchNumber,
		SupplierName:          in.SupplierName,
		SupplierInvoiceNumber: in.SupplierInvoiceNumber,
		DeliveryDate:          in.DeliveryDate,
		ExpectedDeliveryDate:  in.ExpectedDeliveryDate,
		ReceivedDate:          &now,
		ReceivedBy:            actorID,
		Notes:                 in.Notes,
		UploadID:              uploadID,
		RowNumber:             rowNumber,
		Audit:                 entity.Audit{CreatedAt: now, UpdatedAt: now, CreatedBy: actorID},
	}, nil
}
