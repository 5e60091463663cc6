package shift

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/multitienda-api/internal/application/events"
	"github.com/jhoicas/multitienda-api/internal/domain"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/jhoicas/multitienda-api/internal/domain/repository"
)

// Intercambio de turnos: el empleado solicitado acepta primero (PENDING → APPROVED)
// y el gerente aprueba después (APPROVED → MANAGER_APPROVED). La reasignación del
// turno original ocurre recién con la aprobación del gerente, como paso explícito.

// SwapRequestInput datos de una solicitud de intercambio.
type SwapRequestInput struct {
	OriginalShiftID   string
	RequestedToUserID string
	SwapShiftDate     time.Time
	Reason            string
}

// RequestSwap crea una solicitud de intercambio sobre un turno propio. Rechaza con
// ErrDuplicateSwapRequest si ya existe un intercambio activo (PENDING/APPROVED)
// para ese turno y par de fechas; la verificación y el insert comparten transacción.
func (uc *Usecase) RequestSwap(ctx context.Context, in SwapRequestInput, actorID string) (*entity.ShiftSwap, error) {
	if in.OriginalShiftID == "" || in.RequestedToUserID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.RequestedToUserID == actorID {
		return nil, domain.ErrInvalidInput
	}
	var swap *entity.ShiftSwap
	now := time.Now()
	err := uc.txRunner.RunShift(ctx, func(shiftRepo repository.ShiftRepository, swapRepo repository.ShiftSwapRepository) error {
		sh, err := shiftRepo.GetByID(ctx, in.OriginalShiftID)
		if err != nil {
			return err
		}
		if sh == nil {
			return domain.ErrNotFound
		}
		// Solo el dueño del turno puede ofrecerlo.
		if sh.UserID != actorID {
			return domain.ErrForbidden
		}
		swapDate := dateOnly(in.SwapShiftDate)
		exists, err := swapRepo.ExistsActiveSwap(ctx, sh.ID, sh.ShiftDate, swapDate)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateSwapRequest
		}
		swap = &entity.ShiftSwap{
			ID:                uuid.New().String(),
			StoreID:           sh.StoreID,
			OriginalShiftID:   sh.ID,
			RequestedByUserID: actorID,
			RequestedToUserID: in.RequestedToUserID,
			OriginalShiftDate: sh.ShiftDate,
			SwapShiftDate:     swapDate,
			Status:            entity.SwapPending,
			Reason:            in.Reason,
			Audit:             entity.Audit{CreatedAt: now, UpdatedAt: now, CreatedBy: actorID},
		}
		return swapRepo.Create(ctx, swap)
	})
	if err != nil {
		return nil, err
	}
	uc.emitSwap(ctx, swap.ID, "", entity.SwapPending, actorID)
	return swap, nil
}

// ApproveSwapByEmployee acepta la solicitud (PENDING → APPROVED). Solo el empleado
// solicitado puede aceptar; el turno aún no cambia de dueño.
func (uc *Usecase) ApproveSwapByEmployee(ctx context.Context, swapID, actorID string) (*entity.ShiftSwap, error) {
	var result *entity.ShiftSwap
	now := time.Now()
	err := uc.txRunner.RunShift(ctx, func(_ repository.ShiftRepository, swapRepo repository.ShiftSwapRepository) error {
		swap, err := swapRepo.GetByID(ctx, swapID)
		if err != nil {
			return err
		}
		if swap == nil {
			return domain.ErrNotFound
		}
		if swap.RequestedToUserID != actorID {
			return domain.ErrForbidden
		}
		if swap.Status != entity.SwapPending || !swap.Status.CanTransitionTo(entity.SwapApproved) {
			return domain.ErrIllegalTransition
		}
		swap.Status = entity.SwapApproved
		swap.Touch(now, actorID)
		if err := swapRepo.Update(ctx, swap); err != nil {
			return err
		}
		result = swap
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.emitSwap(ctx, swapID, entity.SwapPending, entity.SwapApproved, actorID)
	return result, nil
}

// ApproveSwapByManager aprueba definitivamente (APPROVED → MANAGER_APPROVED) y
// reasigna el turno original al empleado solicitado, en la misma transacción.
func (uc *Usecase) ApproveSwapByManager(ctx context.Context, swapID, actorID, managerNotes string) (*entity.ShiftSwap, error) {
	var result *entity.ShiftSwap
	now := time.Now()
	err := uc.txRunner.RunShift(ctx, func(shiftRepo repository.ShiftRepository, swapRepo repository.ShiftSwapRepository) error {
		swap, err := swapRepo.GetByID(ctx, swapID)
		if err != nil {
			return err
		}
		if swap == nil {
			return domain.ErrNotFound
		}
		if !swap.Status.CanTransitionTo(entity.SwapManagerApproved) {
			return domain.ErrIllegalTransition
		}
		sh, err := shiftRepo.GetForUpdate(ctx, swap.OriginalShiftID)
		if err != nil {
			return err
		}
		if sh == nil {
			return domain.ErrNotFound
		}
		sh.UserID = swap.RequestedToUserID
		sh.Touch(now, actorID)
		if err := shiftRepo.Update(ctx, sh); err != nil {
			return err
		}

		swap.Status = entity.SwapManagerApproved
		swap.ManagerNotes = managerNotes
		swap.ApprovedBy = actorID
		swap.ApprovedAt = &now
		swap.Touch(now, actorID)
		if err := swapRepo.Update(ctx, swap); err != nil {
			return err
		}
		result = swap
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.emitSwap(ctx, swapID, entity.SwapApproved, entity.SwapManagerApproved, actorID)
	return result, nil
}

// RejectSwap rechaza la solicitud desde PENDING o APPROVED.
func (uc *Usecase) RejectSwap(ctx context.Context, swapID, actorID, notes string) (*entity.ShiftSwap, error) {
	var result *entity.ShiftSwap
	var oldStatus entity.SwapStatus
	now := time.Now()
	err := uc.txRunner.RunShift(ctx, func(_ repository.ShiftRepository, swapRepo repository.ShiftSwapRepository) error {
		swap, err := swapRepo.GetByID(ctx, swapID)
		if err != nil {
			return err
		}
		if swap == nil {
			return domain.ErrNotFound
		}
		if !swap.Status.CanTransitionTo(entity.SwapRejected) {
			return domain.ErrIllegalTransition
		}
		oldStatus = swap.Status
		swap.Status = entity.SwapRejected
		swap.ManagerNotes = notes
		swap.RejectedBy = actorID
		swap.RejectedAt = &now
		swap.Touch(now, actorID)
		if err := swapRepo.Update(ctx, swap); err != nil {
			return err
		}
		result = swap
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.emitSwap(ctx, swapID, oldStatus, entity.SwapRejected, actorID)
	return result, nil
}

// CancelSwap cancela la solicitud. Solo el solicitante puede cancelarla y nunca
// después de la aprobación del gerente.
func (uc *Usecase) CancelSwap(ctx context.Context, swapID, actorID string) (*entity.ShiftSwap, error) {
	var result *entity.ShiftSwap
	var oldStatus entity.SwapStatus
	now := time.Now()
	err := uc.txRunner.RunShift(ctx, func(_ repository.ShiftRepository, swapRepo repository.ShiftSwapRepository) error {
		swap, err := swapRepo.GetByID(ctx, swapID)
		if err != nil {
			return err
		}
		if swap == nil {
			return domain.ErrNotFound
		}
		if swap.RequestedByUserID != actorID {
			return domain.ErrForbidden
		}
		if !swap.Status.CanTransitionTo(entity.SwapCancelled) {
			return domain.ErrIllegalTransition
		}
		oldStatus = swap.Status
		swap.Status = entity.SwapCancelled
		swap.Touch(now, actorID)
		if err := swapRepo.Update(ctx, swap); err != nil {
			return err
		}
		result = swap
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.emitSwap(ctx, swapID, oldStatus, entity.SwapCancelled, actorID)
	return result, nil
}

// GetSwapByID devuelve una solicitud de intercambio.
func (uc *Usecase) GetSwapByID(ctx context.Context, swapID string) (*entity.ShiftSwap, error) {
	swap, err := uc.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap == nil {
		return nil, domain.ErrNotFound
	}
	return swap, nil
}

// ListSwapsByRequestedTo lista las solicitudes dirigidas a un usuario por estado.
func (uc *Usecase) ListSwapsByRequestedTo(ctx context.Context, userID string, status entity.SwapStatus) ([]*entity.ShiftSwap, error) {
	return uc.swapRepo.ListByRequestedTo(ctx, userID, status)
}

// ListSwapsByRequestedBy lista las solicitudes creadas por un usuario.
func (uc *Usecase) ListSwapsByRequestedBy(ctx context.Context, userID string) ([]*entity.ShiftSwap, error) {
	return uc.swapRepo.ListByRequestedBy(ctx, userID)
}

// ListSwapsByStore lista las solicitudes de una tienda.
func (uc *Usecase) ListSwapsByStore(ctx context.Context, storeID string) ([]*entity.ShiftSwap, error) {
	return uc.swapRepo.ListByStore(ctx, storeID)
}

func (uc *Usecase) emitSwap(ctx context.Context, swapID string, old, next entity.SwapStatus, actorID string) {
	ev := events.TransitionEvent{
		EntityType: events.EntityShiftSwap,
		EntityID:   swapID,
		OldStatus:  string(old),
		NewStatus:  string(next),
		ActorID:    actorID,
		OccurredAt: time.Now(),
	}
	if err := uc.publisher.PublishTransition(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("swap_id", swapID).Msg("publicar evento de transición")
	}
}
