package shift_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/multitienda-api/internal/application/events"
	"github.com/jhoicas/multitienda-api/internal/application/shift"
	"github.com/jhoicas/multitienda-api/internal/domain"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/jhoicas/multitienda-api/internal/domain/repository"
	"github.com/jhoicas/multitienda-api/pkg/logger"
)

// memWorld estado en memoria de turnos e intercambios, con snapshot/restore para
// imitar la atomicidad del TxRunner real.
type memWorld struct {
	shifts map[string]*entity.Shift
	swaps  map[string]*entity.ShiftSwap
}

func newMemWorld() *memWorld {
	return &memWorld{
		shifts: make(map[string]*entity.Shift),
		swaps:  make(map[string]*entity.ShiftSwap),
	}
}

func (w *memWorld) snapshot() *memWorld {
	snap := newMemWorld()
	for k, v := range w.shifts {
		cp := *v
		snap.shifts[k] = &cp
	}
	for k, v := range w.swaps {
		cp := *v
		snap.swaps[k] = &cp
	}
	return snap
}

func (w *memWorld) restore(snap *memWorld) {
	w.shifts = snap.shifts
	w.swaps = snap.swaps
}

type memShiftRepo struct{ world *memWorld }

func (r *memShiftRepo) Create(_ context.Context, sh *entity.Shift) error {
	if sh.Status == entity.ShiftActive {
		for _, other := range r.world.shifts {
			if other.UserID == sh.UserID && other.Status == entity.ShiftActive {
				return domain.ErrShiftAlreadyActive
			}
		}
	}
	cp := *sh
	r.world.shifts[sh.ID] = &cp
	return nil
}

func (r *memShiftRepo) Update(_ context.Context, sh *entity.Shift) error {
	if _, ok := r.world.shifts[sh.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *sh
	r.world.shifts[sh.ID] = &cp
	return nil
}

func (r *memShiftRepo) GetByID(_ context.Context, id string) (*entity.Shift, error) {
	sh, ok := r.world.shifts[id]
	if !ok {
		return nil, nil
	}
	cp := *sh
	return &cp, nil
}

func (r *memShiftRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shift, error) {
	return r.GetByID(ctx, id)
}

func (r *memShiftRepo) HasActiveShift(_ context.Context, userID string) (bool, error) {
	for _, sh := range r.world.shifts {
		if sh.UserID == userID && sh.Status == entity.ShiftActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *memShiftRepo) GetActiveShift(_ context.Context, storeID, userID string) (*entity.Shift, error) {
	for _, sh := range r.world.shifts {
		if sh.StoreID == storeID && sh.UserID == userID && sh.Status == entity.ShiftActive {
			cp := *sh
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memShiftRepo) ListByStoreAndDate(_ context.Context, storeID string, date time.Time) ([]*entity.Shift, error) {
	var out []*entity.Shift
	for _, sh := range r.world.shifts {
		if sh.StoreID == storeID && sh.ShiftDate.Equal(date) {
			cp := *sh
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memShiftRepo) ListByStoreAndStatus(_ context.Context, storeID string, status entity.ShiftStatus) ([]*entity.Shift, error) {
	var out []*entity.Shift
	for _, sh := range r.world.shifts {
		if sh.StoreID == storeID && sh.Status == status {
			cp := *sh
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memShiftRepo) ListActiveByStore(ctx context.Context, storeID string) ([]*entity.Shift, error) {
	return r.ListByStoreAndStatus(ctx, storeID, entity.ShiftActive)
}

func (r *memShiftRepo) ListByDateRange(_ context.Context, storeID string, from, to time.Time) ([]*entity.Shift, error) {
	var out []*entity.Shift
	for _, sh := range r.world.shifts {
		if sh.StoreID == storeID && !sh.ShiftDate.Before(from) && !sh.ShiftDate.After(to) {
			cp := *sh
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memSwapRepo struct{ world *memWorld }

func (r *memSwapRepo) Create(_ context.Context, swap *entity.ShiftSwap) error {
	cp := *swap
	r.world.swaps[swap.ID] = &cp
	return nil
}

func (r *memSwapRepo) Update(_ context.Context, swap *entity.ShiftSwap) error {
	if _, ok := r.world.swaps[swap.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *swap
	r.world.swaps[swap.ID] = &cp
	return nil
}

func (r *memSwapRepo) GetByID(_ context.Context, id string) (*entity.ShiftSwap, error) {
	swap, ok := r.world.swaps[id]
	if !ok {
		return nil, nil
	}
	cp := *swap
	return &cp, nil
}

func (r *memSwapRepo) ExistsActiveSwap(_ context.Context, shiftID string, originalDate, swapDate time.Time) (bool, error) {
	for _, swap := range r.world.swaps {
		if swap.OriginalShiftID == shiftID &&
			swap.OriginalShiftDate.Equal(originalDate) &&
			swap.SwapShiftDate.Equal(swapDate) &&
			swap.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (r *memSwapRepo) ListByRequestedTo(_ context.Context, userID string, status entity.SwapStatus) ([]*entity.ShiftSwap, error) {
	var out []*entity.ShiftSwap
	for _, swap := range r.world.swaps {
		if swap.RequestedToUserID == userID && swap.Status == status {
			cp := *swap
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSwapRepo) ListByRequestedBy(_ context.Context, userID string) ([]*entity.ShiftSwap, error) {
	var out []*entity.ShiftSwap
	for _, swap := range r.world.swaps {
		if swap.RequestedByUserID == userID {
			cp := *swap
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSwapRepo) ListByStore(_ context.Context, storeID string) ([]*entity.ShiftSwap, error) {
	var out []*entity.ShiftSwap
	for _, swap := range r.world.swaps {
		if swap.StoreID == storeID {
			cp := *swap
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memTxRunner struct{ world *memWorld }

func (r *memTxRunner) RunShift(_ context.Context, fn func(
	repository.ShiftRepository,
	repository.ShiftSwapRepository,
) error) error {
	snap := r.world.snapshot()
	if err := fn(&memShiftRepo{world: r.world}, &memSwapRepo{world: r.world}); err != nil {
		r.world.restore(snap)
		return err
	}
	return nil
}

type capturePublisher struct{ published []events.TransitionEvent }

func (p *capturePublisher) PublishTransition(_ context.Context, ev events.TransitionEvent) error {
	p.published = append(p.published, ev)
	return nil
}

func newUsecase(world *memWorld) *shift.Usecase {
	log := logger.New(logger.Config{Level: "error"})
	return shift.New(&memTxRunner{world: world}, &memShiftRepo{world: world}, &memSwapRepo{world: world}, &capturePublisher{}, log)
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// ─────────────────────────────────────────────────────────────
// Start / End
// ─────────────────────────────────────────────────────────────

func TestStart_AbreTurnoActivo(t *testing.T) {
	uc := newUsecase(newMemWorld())

	sh, err := uc.Start(context.Background(), "tienda-norte", "cajero-1", dec(100), "cajero-1")
	require.NoError(t, err)

	assert.Equal(t, entity.ShiftActive, sh.Status)
	assert.NotNil(t, sh.StartedAt)
	assert.True(t, sh.StartingCash.Equal(dec(100)))
}

func TestStart_SegundoTurnoDelMismoUsuario_Falla(t *testing.T) {
	uc := newUsecase(newMemWorld())
	ctx := context.Background()

	_, err := uc.Start(ctx, "tienda-norte", "cajero-1", dec(100), "cajero-1")
	require.NoError(t, err)

	// Ni siquiera en otra tienda: la unicidad es por usuario, global.
	_, err = uc.Start(ctx, "tienda-sur", "cajero-1", dec(50), "cajero-1")
	assert.ErrorIs(t, err, domain.ErrShiftAlreadyActive)
}

func TestStart_FondoDeCajaNegativo_Falla(t *testing.T) {
	uc := newUsecase(newMemWorld())

	_, err := uc.Start(context.Background(), "tienda-norte", "cajero-1", dec(-1), "cajero-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEnd_CalculaDiferenciaDeCaja(t *testing.T) {
	world := newMemWorld()
	uc := newUsecase(world)
	ctx := context.Background()

	sh, err := uc.Start(ctx, "tienda-norte", "cajero-1", dec(100), "cajero-1")
	require.NoError(t, err)

	expected := dec(500)
	ended, err := uc.End(ctx, sh.ID, shift.EndInput{
		EndingCash:   dec(495),
		ExpectedCash: &expected,
		Notes:        "faltaron 5",
	}, "cajero-1")
	require.NoError(t, err)

	assert.Equal(t, entity.ShiftCompleted, ended.Status)
	require.NotNil(t, ended.CashDifference)
	assert.True(t, ended.CashDifference.Equal(dec(-5)), "diferencia = %s", ended.CashDifference)
	assert.Equal(t, "faltaron 5", ended.Notes)

	// Cerrado el turno, el usuario puede abrir otro.
	_, err = uc.Start(ctx, "tienda-norte", "cajero-1", dec(100), "cajero-1")
	assert.NoError(t, err)
}

func TestEnd_SinMontoEsperado_DiferenciaIndefinida(t *testing.T) {
	uc := newUsecase(newMemWorld())
	ctx := context.Background()

	sh, err := uc.Start(ctx, "tienda-norte", "cajero-1", dec(100), "cajero-1")
	require.NoError(t, err)

	ended, err := uc.End(ctx, sh.ID, shift.EndInput{EndingCash: dec(480)}, "cajero-1")
	require.NoError(t, err)

	// Sin esperado no hay diferencia: queda sin definir, nunca en cero.
	assert.Nil(t, ended.CashDifference)
	assert.Nil(t, ended.ExpectedCash)
}

func TestActiveShift_DevuelveElTurnoAbierto(t *testing.T) {
	uc := newUsecase(newMemWorld())
	ctx := context.Background()

	sh, err := uc.Start(ctx, "tienda-norte", "cajero-1", dec(100), "cajero-1")
	require.NoError(t, err)

	active, err := uc.ActiveShift(ctx, "tienda-norte", "cajero-1")
	require.NoError(t, err)
	assert.Equal(t, sh.ID, active.ID)

	// Sin turno abierto en esa tienda no hay resultado.
	_, err = uc.ActiveShift(ctx, "tienda-sur", "cajero-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnd_TurnoYaCerrado_TransicionIlegal(t *testing.T) {
	uc := newUsecase(newMemWorld())
	ctx := context.Background()

	sh, err := uc.Start(ctx, "tienda-norte", "cajero-1", dec(100), "cajero-1")
	require.NoError(t, err)
	_, err = uc.End(ctx, sh.ID, shift.EndInput{EndingCash: dec(100)}, "cajero-1")
	require.NoError(t, err)

	_, err = uc.End(ctx, sh.ID, shift.EndInput{EndingCash: dec(100)}, "cajero-1")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

// ─────────────────────────────────────────────────────────────
// Schedule / Activate / StartDay / EndDay
// ─────────────────────────────────────────────────────────────

func TestActivate_TurnoProgramado(t *testing.T) {
	uc := newUsecase(newMemWorld())
	ctx := context.Background()

	sh, err := uc.Schedule(ctx, shift.ScheduleInput{
		StoreID:      "tienda-norte",
		UserID:       "cajero-1",
		ShiftDate:    time.Now(),
		StartingCash: dec(100),
	}, "gerente-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ShiftPending, sh.Status)

	activated, err := uc.Activate(ctx, sh.ID, "cajero-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ShiftActive, activated.Status)
	assert.NotNil(t, activated.StartedAt)
}

func TestActivate_ConOtroTurnoActivo_Falla(t *testing.T) {
	uc := newUsecase(newMemWorld())
	ctx := context.Background()

	_, err := uc.Start(ctx, "tienda-sur", "cajero-1", dec(50), "cajero-1")
	require.NoError(t, err)

	sh, err := uc.Schedule(ctx, shift.ScheduleInput{
		StoreID:      "tienda-norte",
		UserID:       "cajero-1",
		ShiftDate:    time.Now(),
		StartingCash: dec(100),
	}, "gerente-1")
	require.NoError(t, err)

	_, err = uc.Activate(ctx, sh.ID, "cajero-1")
	assert.ErrorIs(t, err, domain.ErrShiftAlreadyActive)
}

func TestStartDay_ActivaLosProgramadosDelDia(t *testing.T) {
	uc := newUsecase(newMemWorld())
	ctx := context.Background()
	today := time.Now()

	for _, userID := range []string{"cajero-1", "cajero-2"} {
		_, err := uc.Schedule(ctx, shift.ScheduleInput{
			StoreID:      "tienda-norte",
			UserID:       userID,
			ShiftDate:    today,
			StartingCash: dec(100),
		}, "gerente-1")
		require.NoError(t, err)
	}

	started, err := uc.StartDay(ctx, "tienda-norte", today, "gerente-1")
	require.NoError(t, err)
	assert.Len(t, started, 2)
	for _, sh := range started {
		assert.Equal(t, entity.ShiftActive, sh.Status)
	}

	// El día ya está abierto: un segundo StartDay se rechaza.
	_, err = uc.StartDay(ctx, "tienda-norte", today, "gerente-1")
	assert.ErrorIs(t, err, domain.ErrShiftAlreadyActive)
}

func TestStartDay_SaltaUsuariosOcupadosEnOtraTienda(t *testing.T) {
	uc := newUsecase(newMemWorld())
	ctx := context.Background()
	today := time.Now()

	_, err := uc.Start(ctx, "tienda-sur", "cajero-1", dec(50), "cajero-1")
	require.NoError(t, err)

	_, err = uc.Schedule(ctx, shift.ScheduleInput{
		StoreID:      "tienda-norte",
		UserID:       "cajero-1",
		ShiftDate:    today,
		StartingCash: dec(100),
	}, "gerente-1")
	require.NoError(t, err)
	_, err = uc.Schedule(ctx, shift.ScheduleInput{
		StoreID:      "tienda-norte",
		UserID:       "cajero-2",
		ShiftDate:    today,
		StartingCash: dec(100),
	}, "gerente-1")
	require.NoError(t, err)

	started, err := uc.StartDay(ctx, "tienda-norte", today, "gerente-1")
	require.NoError(t, err)

	// Solo cajero-2; cajero-1 sigue ocupado en tienda-sur.
	require.Len(t, started, 1)
	assert.Equal(t, "cajero-2", started[0].UserID)
}

func TestEndDay_RechazaConTurnosActivosYCancelaPendientes(t *testing.T) {
	uc := newUsecase(newMemWorld())
	ctx := context.Background()
	today := time.Now()

	active, err := uc.Start(ctx, "tienda-norte", "cajero-1", dec(100), "cajero-1")
	require.NoError(t, err)
	pending, err := uc.Schedule(ctx, shift.ScheduleInput{
		StoreID:      "tienda-norte",
		UserID:       "cajero-2",
		ShiftDate:    today,
		StartingCash: dec(100),
	}, "gerente-1")
	require.NoError(t, err)

	// Cada cajero debe cerrar con su arqueo primero.
	_, err = uc.EndDay(ctx, "tienda-norte", today, "gerente-1")
	assert.ErrorIs(t, err, domain.ErrShiftAlreadyActive)

	_, err = uc.End(ctx, active.ID, shift.EndInput{EndingCash: dec(100)}, "cajero-1")
	require.NoError(t, err)

	cancelled, err := uc.EndDay(ctx, "tienda-norte", today, "gerente-1")
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, pending.ID, cancelled[0].ID)
	assert.Equal(t, entity.ShiftCancelled, cancelled[0].Status)
}
