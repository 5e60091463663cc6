package shift

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/multitienda-api/internal/application/events"
	"github.com/jhoicas/multitienda-api/internal/domain"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/jhoicas/multitienda-api/internal/domain/repository"
	"github.com/jhoicas/multitienda-api/pkg/logger"
)

// Usecase gestiona los turnos de caja con arqueo al cierre y las solicitudes de
// intercambio de turno. La regla dura es la unicidad: un usuario nunca tiene dos
// turnos ACTIVE a la vez, sin importar la tienda.
type Usecase struct {
	txRunner  TxRunner
	shiftRepo repository.ShiftRepository
	swapRepo  repository.ShiftSwapRepository
	publisher events.Publisher
	log       *logger.Logger
}

// New construye el caso de uso. shiftRepo y swapRepo (sobre el pool) atienden las lecturas.
func New(txRunner TxRunner, shiftRepo repository.ShiftRepository, swapRepo repository.ShiftSwapRepository, publisher events.Publisher, log *logger.Logger) *Usecase {
	return &Usecase{txRunner: txRunner, shiftRepo: shiftRepo, swapRepo: swapRepo, publisher: publisher, log: log}
}

// ScheduleInput datos para programar un turno.
type ScheduleInput struct {
	StoreID           string
	UserID            string
	ShiftDate         time.Time
	ExpectedStartTime *time.Time
	ExpectedEndTime   *time.Time
	StartingCash      decimal.Decimal
	Notes             string
}

// EndInput datos del arqueo de cierre.
type EndInput struct {
	EndingCash   decimal.Decimal
	ExpectedCash *decimal.Decimal
	Notes        string
}

// Schedule programa un turno en PENDING para una fecha futura. Los intercambios
// de turno operan sobre turnos programados.
func (uc *Usecase) Schedule(ctx context.Context, in ScheduleInput, actorID string) (*entity.Shift, error) {
	if in.StoreID == "" || in.UserID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.StartingCash.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	sh := &entity.Shift{
		ID:                uuid.New().String(),
		StoreID:           in.StoreID,
		UserID:            in.UserID,
		ShiftDate:         dateOnly(in.ShiftDate),
		ExpectedStartTime: in.ExpectedStartTime,
		ExpectedEndTime:   in.ExpectedEndTime,
		StartingCash:      in.StartingCash,
		Status:            entity.ShiftPending,
		Notes:             in.Notes,
		Audit:             entity.Audit{CreatedAt: now, UpdatedAt: now, CreatedBy: actorID},
	}
	err := uc.txRunner.RunShift(ctx, func(shiftRepo repository.ShiftRepository, _ repository.ShiftSwapRepository) error {
		return shiftRepo.Create(ctx, sh)
	})
	if err != nil {
		return nil, err
	}
	uc.emitShift(ctx, sh.ID, "", entity.ShiftPending, actorID)
	return sh, nil
}

// Start abre un turno ACTIVE con el fondo de caja inicial. La verificación de que
// el usuario no tenga otro turno activo (en cualquier tienda) y el insert ocurren
// en la misma transacción; dos Start concurrentes del mismo usuario terminan en
// uno ACTIVE y un ErrShiftAlreadyActive.
func (uc *Usecase) Start(ctx context.Context, storeID, userID string, startingCash decimal.Decimal, actorID string) (*entity.Shift, error) {
	if storeID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	if startingCash.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	sh := &entity.Shift{
		ID:           uuid.New().String(),
		StoreID:      storeID,
		UserID:       userID,
		ShiftDate:    dateOnly(now),
		StartedAt:    &now,
		StartingCash: startingCash,
		Status:       entity.ShiftActive,
		Audit:        entity.Audit{CreatedAt: now, UpdatedAt: now, CreatedBy: actorID},
	}
	err := uc.txRunner.RunShift(ctx, func(shiftRepo repository.ShiftRepository, _ repository.ShiftSwapRepository) error {
		active, err := shiftRepo.HasActiveShift(ctx, userID)
		if err != nil {
			return err
		}
		if active {
			return domain.ErrShiftAlreadyActive
		}
		return shiftRepo.Create(ctx, sh)
	})
	if err != nil {
		return nil, err
	}
	uc.emitShift(ctx, sh.ID, "", entity.ShiftActive, actorID)
	uc.log.Info().Str("shift_id", sh.ID).Str("store_id", storeID).Str("user_id", userID).Msg("turno iniciado")
	return sh, nil
}

// Activate inicia un turno programado (PENDING → ACTIVE) respetando la unicidad
// de turno activo por usuario.
func (uc *Usecase) Activate(ctx context.Context, shiftID, actorID string) (*entity.Shift, error) {
	var result *entity.Shift
	now := time.Now()
	err := uc.txRunner.RunShift(ctx, func(shiftRepo repository.ShiftRepository, _ repository.ShiftSwapRepository) error {
		sh, err := shiftRepo.GetForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if sh == nil {
			return domain.ErrNotFound
		}
		if !sh.Status.CanTransitionTo(entity.ShiftActive) {
			return domain.ErrIllegalTransition
		}
		active, err := shiftRepo.HasActiveShift(ctx, sh.UserID)
		if err != nil {
			return err
		}
		if active {
			return domain.ErrShiftAlreadyActive
		}
		sh.Status = entity.ShiftActive
		sh.StartedAt = &now
		sh.Touch(now, actorID)
		if err := shiftRepo.Update(ctx, sh); err != nil {
			return err
		}
		result = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.emitShift(ctx, shiftID, entity.ShiftPending, entity.ShiftActive, actorID)
	return result, nil
}

// End cierra un turno ACTIVE con el arqueo de caja. La diferencia de caja
// (final - esperado) solo se calcula si el monto esperado fue suministrado;
// si no, queda sin definir, nunca en cero.
func (uc *Usecase) End(ctx context.Context, shiftID string, in EndInput, actorID string) (*entity.Shift, error) {
	if in.EndingCash.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.Shift
	now := time.Now()
	err := uc.txRunner.RunShift(ctx, func(shiftRepo repository.ShiftRepository, _ repository.ShiftSwapRepository) error {
		sh, err := shiftRepo.GetForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if sh == nil {
			return domain.ErrNotFound
		}
		if !sh.Status.CanTransitionTo(entity.ShiftCompleted) {
			return domain.ErrIllegalTransition
		}
		sh.Close(now, actorID, in.EndingCash, in.ExpectedCash, in.Notes)
		sh.Touch(now, actorID)
		if err := shiftRepo.Update(ctx, sh); err != nil {
			return err
		}
		result = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.emitShift(ctx, shiftID, entity.ShiftActive, entity.ShiftCompleted, actorID)
	return result, nil
}

// StartDay activa en lote los turnos programados de la tienda para la fecha.
// Rechaza si la tienda ya tiene turnos activos (el día ya fue abierto); los
// usuarios con un turno activo en otra tienda se saltan y se reportan.
func (uc *Usecase) StartDay(ctx context.Context, storeID string, date time.Time, actorID string) ([]*entity.Shift, error) {
	var started []*entity.Shift
	now := time.Now()
	err := uc.txRunner.RunShift(ctx, func(shiftRepo repository.ShiftRepository, _ repository.ShiftSwapRepository) error {
		actives, err := shiftRepo.ListActiveByStore(ctx, storeID)
		if err != nil {
			return err
		}
		if len(actives) > 0 {
			return domain.ErrShiftAlreadyActive
		}
		scheduled, err := shiftRepo.ListByStoreAndDate(ctx, storeID, dateOnly(date))
		if err != nil {
			return err
		}
		for _, sh := range scheduled {
			if sh.Status != entity.ShiftPending {
				continue
			}
			busy, err := shiftRepo.HasActiveShift(ctx, sh.UserID)
			if err != nil {
				return err
			}
			if busy {
				uc.log.Warn().Str("shift_id", sh.ID).Str("user_id", sh.UserID).Msg("usuario con turno activo en otra tienda; turno no iniciado")
				continue
			}
			sh.Status = entity.ShiftActive
			startedAt := now
			sh.StartedAt = &startedAt
			sh.Touch(now, actorID)
			if err := shiftRepo.Update(ctx, sh); err != nil {
				return err
			}
			started = append(started, sh)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, sh := range started {
		uc.emitShift(ctx, sh.ID, entity.ShiftPending, entity.ShiftActive, actorID)
	}
	return started, nil
}

// EndDay cierra el día de la tienda: rechaza mientras queden turnos ACTIVE
// (cada cajero debe cerrar con su arqueo primero) y cancela los turnos
// programados de la fecha que nunca se iniciaron.
func (uc *Usecase) EndDay(ctx context.Context, storeID string, date time.Time, actorID string) ([]*entity.Shift, error) {
	var cancelled []*entity.Shift
	now := time.Now()
	err := uc.txRunner.RunShift(ctx, func(shiftRepo repository.ShiftRepository, _ repository.ShiftSwapRepository) error {
		actives, err := shiftRepo.ListActiveByStore(ctx, storeID)
		if err != nil {
			return err
		}
		if len(actives) > 0 {
			return domain.ErrShiftAlreadyActive
		}
		scheduled, err := shiftRepo.ListByStoreAndDate(ctx, storeID, dateOnly(date))
		if err != nil {
			return err
		}
		for _, sh := range scheduled {
			if sh.Status != entity.ShiftPending {
				continue
			}
			sh.Status = entity.ShiftCancelled
			sh.Touch(now, actorID)
			if err := shiftRepo.Update(ctx, sh); err != nil {
				return err
			}
			cancelled = append(cancelled, sh)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, sh := range cancelled {
		uc.emitShift(ctx, sh.ID, entity.ShiftPending, entity.ShiftCancelled, actorID)
	}
	return cancelled, nil
}

// GetByID devuelve un turno.
func (uc *Usecase) GetByID(ctx context.Context, shiftID string) (*entity.Shift, error) {
	sh, err := uc.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, domain.ErrNotFound
	}
	return sh, nil
}

// ActiveShift devuelve el turno ACTIVE del usuario en la tienda, o ErrNotFound
// si no tiene ninguno abierto.
func (uc *Usecase) ActiveShift(ctx context.Context, storeID, userID string) (*entity.Shift, error) {
	sh, err := uc.shiftRepo.GetActiveShift(ctx, storeID, userID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, domain.ErrNotFound
	}
	return sh, nil
}

// ListByStoreAndDate lista los turnos de una tienda para una fecha.
func (uc *Usecase) ListByStoreAndDate(ctx context.Context, storeID string, date time.Time) ([]*entity.Shift, error) {
	return uc.shiftRepo.ListByStoreAndDate(ctx, storeID, dateOnly(date))
}

// ListByStoreAndStatus lista los turnos de una tienda por estado.
func (uc *Usecase) ListByStoreAndStatus(ctx context.Context, storeID string, status entity.ShiftStatus) ([]*entity.Shift, error) {
	return uc.shiftRepo.ListByStoreAndStatus(ctx, storeID, status)
}

// ListActiveByStore lista los turnos activos de una tienda.
func (uc *Usecase) ListActiveByStore(ctx context.Context, storeID string) ([]*entity.Shift, error) {
	return uc.shiftRepo.ListActiveByStore(ctx, storeID)
}

// ListByDateRange lista los turnos de una tienda en un rango de fechas.
func (uc *Usecase) ListByDateRange(ctx context.Context, storeID string, from, to time.Time) ([]*entity.Shift, error) {
	return uc.shiftRepo.ListByDateRange(ctx, storeID, dateOnly(from), dateOnly(to))
}

func (uc *Usecase) emitShift(ctx context.Context, shiftID string, old, next entity.ShiftStatus, actorID string) {
	ev := events.TransitionEvent{
		EntityType: events.EntityShift,
		EntityID:   shiftID,
		OldStatus:  string(old),
		NewStatus:  string(next),
		ActorID:    actorID,
		OccurredAt: time.Now(),
	}
	if err := uc.publisher.PublishTransition(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("shift_id", shiftID).Msg("publicar evento de transición")
	}
}

// dateOnly trunca a fecha en UTC (las fechas de turno no llevan hora).
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
