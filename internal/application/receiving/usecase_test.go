package receiving_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/multitienda-api/internal/application/events"
	"github.com/jhoicas/multitienda-api/internal/application/receiving"
	"github.com/jhoicas/multitienda-api/internal/domain"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/jhoicas/multitienda-api/internal/domain/repository"
	"github.com/jhoicas/multitienda-api/pkg/logger"
)

// memWorld estado en memoria de los repos fake, con snapshot/restore para imitar
// la atomicidad del TxRunner real.
type memWorld struct {
	records   map[string]*entity.InventoryRecord
	movements []*entity.StockMovement
	lines     map[string]*entity.ReceivedStock
}

func newMemWorld() *memWorld {
	return &memWorld{
		records: make(map[string]*entity.InventoryRecord),
		lines:   make(map[string]*entity.ReceivedStock),
	}
}

func recKey(productID, locationID string) string { return productID + "|" + locationID }

func (w *memWorld) record(t *testing.T, productID, locationID string) *entity.InventoryRecord {
	t.Helper()
	rec, ok := w.records[recKey(productID, locationID)]
	require.True(t, ok, "registro %s/%s no existe", productID, locationID)
	return rec
}

func (w *memWorld) snapshot() *memWorld {
	snap := newMemWorld()
	for k, v := range w.records {
		cp := *v
		snap.records[k] = &cp
	}
	snap.movements = make([]*entity.StockMovement, len(w.movements))
	copy(snap.movements, w.movements)
	for k, v := range w.lines {
		cp := *v
		snap.lines[k] = &cp
	}
	return snap
}

func (w *memWorld) restore(snap *memWorld) {
	w.records = snap.records
	w.movements = snap.movements
	w.lines = snap.lines
}

type memInvRepo struct{ world *memWorld }

func (r *memInvRepo) Get(_ context.Context, productID, locationID string) (*entity.InventoryRecord, error) {
	rec, ok := r.world.records[recKey(productID, locationID)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *memInvRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.InventoryRecord, error) {
	rec, err := r.Get(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &entity.InventoryRecord{
			ID:         recKey(productID, locationID),
			ProductID:  productID,
			LocationID: locationID,
			UnitCost:   decimal.Zero,
		}
		rec.Recalculate()
		r.world.records[recKey(productID, locationID)] = rec
		cp := *rec
		return &cp, nil
	}
	return rec, nil
}

func (r *memInvRepo) Upsert(_ context.Context, rec *entity.InventoryRecord) error {
	cp := *rec
	r.world.records[recKey(rec.ProductID, rec.LocationID)] = &cp
	return nil
}

func (r *memInvRepo) ListByLocation(_ context.Context, _ string, _, _ int) ([]*entity.InventoryRecord, error) {
	return nil, nil
}

func (r *memInvRepo) ListByProduct(_ context.Context, _ string) ([]*entity.InventoryRecord, error) {
	return nil, nil
}

func (r *memInvRepo) ListOutOfStock(_ context.Context, _ string) ([]*entity.InventoryRecord, error) {
	return nil, nil
}

type memMovRepo struct{ world *memWorld }

func (r *memMovRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	cp := *movement
	r.world.movements = append(r.world.movements, &cp)
	return nil
}

func (r *memMovRepo) ListByLocation(_ context.Context, _ string, _, _ *time.Time, _, _ int) ([]*entity.StockMovement, error) {
	return nil, nil
}

func (r *memMovRepo) ListByTransaction(_ context.Context, _ string) ([]*entity.StockMovement, error) {
	return nil, nil
}

type memReceivedRepo struct{ world *memWorld }

func (r *memReceivedRepo) Create(_ context.Context, rs *entity.ReceivedStock) error {
	cp := *rs
	r.world.lines[rs.ID] = &cp
	return nil
}

func (r *memReceivedRepo) Update(_ context.Context, rs *entity.ReceivedStock) error {
	if _, ok := r.world.lines[rs.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *rs
	r.world.lines[rs.ID] = &cp
	return nil
}

func (r *memReceivedRepo) GetByID(_ context.Context, id string) (*entity.ReceivedStock, error) {
	rs, ok := r.world.lines[id]
	if !ok {
		return nil, nil
	}
	cp := *rs
	return &cp, nil
}

func (r *memReceivedRepo) GetForUpdate(ctx context.Context, id string) (*entity.ReceivedStock, error) {
	return r.GetByID(ctx, id)
}

func (r *memReceivedRepo) ListByStatus(_ context.Context, status entity.ReceivedStockStatus, _, _ int) ([]*entity.ReceivedStock, error) {
	var out []*entity.ReceivedStock
	for _, rs := range r.world.lines {
		if rs.Status == status {
			cp := *rs
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memReceivedRepo) ListByUpload(_ context.Context, uploadID string) ([]*entity.ReceivedStock, error) {
	var out []*entity.ReceivedStock
	for _, rs := range r.world.lines {
		if rs.UploadID == uploadID {
			cp := *rs
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memReceivedRepo) ListPending(ctx context.Context, limit, offset int) ([]*entity.ReceivedStock, error) {
	return r.ListByStatus(ctx, entity.ReceivedPending, limit, offset)
}

func (r *memReceivedRepo) ListDiscrepancies(ctx context.Context, limit, offset int) ([]*entity.ReceivedStock, error) {
	return r.ListByStatus(ctx, entity.ReceivedDiscrepancy, limit, offset)
}

type memTxRunner struct{ world *memWorld }

func (r *memTxRunner) RunReceiving(_ context.Context, fn func(
	repository.InventoryRepository,
	repository.StockMovementRepository,
	repository.ReceivedStockRepository,
) error) error {
	snap := r.world.snapshot()
	err := fn(&memInvRepo{world: r.world}, &memMovRepo{world: r.world}, &memReceivedRepo{world: r.world})
	if err != nil {
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

func newUsecase(world *memWorld) *receiving.Usecase {
	log := logger.New(logger.Config{Level: "error"})
	return receiving.New(&memTxRunner{world: world}, &memReceivedRepo{world: world}, &capturePublisher{}, log)
}

func line(expected, received int) receiving.LineInput {
	return receiving.LineInput{
		ProductID:        "prod-1",
		LocationID:       "bodega-central",
		ExpectedQuantity: expected,
		ReceivedQuantity: received,
		UnitPrice:        decimal.NewFromInt(10),
		SupplierName:     "Distribuidora Andina",
	}
}

// ─────────────────────────────────────────────────────────────
// Register / RegisterBatch
// ─────────────────────────────────────────────────────────────

func TestRegister_LineaQuedaPendienteSinTocarLibro(t *testing.T) {
	world := newMemWorld()
	uc := newUsecase(world)

	rs, err := uc.Register(context.Background(), line(50, 50), "bodeguero-1")
	require.NoError(t, err)

	assert.Equal(t, entity.ReceivedPending, rs.Status)
	assert.Equal(t, "bodeguero-1", rs.ReceivedBy)
	assert.True(t, rs.TotalValue.Equal(decimal.NewFromInt(500)))
	assert.Empty(t, world.records)
	assert.Empty(t, world.movements)
}

func TestRegister_SinProducto_Falla(t *testing.T) {
	uc := newUsecase(newMemWorld())

	in := line(50, 50)
	in.ProductID = ""
	_, err := uc.Register(context.Background(), in, "bodeguero-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterBatch_FilasIndependientes(t *testing.T) {
	world := newMemWorld()
	uc := newUsecase(world)

	bad := line(10, 10)
	bad.ReceivedQuantity = -1
	result, err := uc.RegisterBatch(context.Background(), []receiving.LineInput{
		line(10, 10),
		bad,
		line(20, 20),
	}, "bodeguero-1")
	require.NoError(t, err)

	// La fila inválida se reporta con su número y no descarta el resto del lote.
	assert.Len(t, result.Created, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].RowNumber)

	for _, rs := range result.Created {
		assert.Equal(t, result.UploadID, rs.UploadID)
	}

	stored, err := uc.ListByUpload(context.Background(), result.UploadID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

// ─────────────────────────────────────────────────────────────
// Verify
// ─────────────────────────────────────────────────────────────

func TestVerify_SinDiscrepancia_EntraAlLibro(t *testing.T) {
	world := newMemWorld()
	uc := newUsecase(world)
	ctx := context.Background()

	rs, err := uc.Register(ctx, line(50, 50), "bodeguero-1")
	require.NoError(t, err)

	verified, err := uc.Verify(ctx, rs.ID, receiving.VerifyInput{DamageQuantity: 2}, "supervisor-1")
	require.NoError(t, err)

	assert.Equal(t, entity.ReceivedVerified, verified.Status)
	assert.Equal(t, 48, verified.VerifiedQuantity)
	assert.Equal(t, 2, verified.DamageQuantity)
	assert.Equal(t, 0, verified.ShortageQuantity)
	assert.Equal(t, 0, verified.ExcessQuantity)

	// Solo las 48 unidades en buen estado entran al stock.
	rec := world.record(t, "prod-1", "bodega-central")
	assert.Equal(t, 48, rec.CurrentQuantity)
	assert.True(t, rec.UnitCost.Equal(decimal.NewFromInt(10)))
}

func TestVerify_Faltante_MarcaDiscrepanciaYEntregaElStock(t *testing.T) {
	world := newMemWorld()
	uc := newUsecase(world)
	ctx := context.Background()

	rs, err := uc.Register(ctx, line(50, 45), "bodeguero-1")
	require.NoError(t, err)

	verified, err := uc.Verify(ctx, rs.ID, receiving.VerifyInput{}, "supervisor-1")
	require.NoError(t, err)

	// La discrepancia queda registrada pero las unidades recibidas sí se usan.
	assert.Equal(t, entity.ReceivedDiscrepancy, verified.Status)
	assert.Equal(t, 5, verified.ShortageQuantity)
	assert.Equal(t, 45, verified.VerifiedQuantity)

	rec := world.record(t, "prod-1", "bodega-central")
	assert.Equal(t, 45, rec.CurrentQuantity)

	discrepancies, err := uc.ListDiscrepancies(ctx, 20, 0)
	require.NoError(t, err)
	assert.Len(t, discrepancies, 1)
}

func TestVerify_Sobrante_QuedaRegistrado(t *testing.T) {
	world := newMemWorld()
	uc := newUsecase(world)
	ctx := context.Background()

	rs, err := uc.Register(ctx, line(50, 55), "bodeguero-1")
	require.NoError(t, err)

	verified, err := uc.Verify(ctx, rs.ID, receiving.VerifyInput{}, "supervisor-1")
	require.NoError(t, err)

	assert.Equal(t, entity.ReceivedDiscrepancy, verified.Status)
	assert.Equal(t, 5, verified.ExcessQuantity)
	assert.Equal(t, 0, verified.ShortageQuantity)

	rec := world.record(t, "prod-1", "bodega-central")
	assert.Equal(t, 55, rec.CurrentQuantity)
}

func TestVerify_DanioMayorQueRecibido_Falla(t *testing.T) {
	world := newMemWorld()
	uc := newUsecase(world)
	ctx := context.Background()

	rs, err := uc.Register(ctx, line(10, 10), "bodeguero-1")
	require.NoError(t, err)

	_, err = uc.Verify(ctx, rs.ID, receiving.VerifyInput{DamageQuantity: 11}, "supervisor-1")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	// La línea sigue pendiente y el libro intacto.
	stored, err := uc.GetByID(ctx, rs.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReceivedPending, stored.Status)
	assert.Empty(t, world.movements)
}

func TestVerify_DosVeces_TransicionIlegal(t *testing.T) {
	world := newMemWorld()
	uc := newUsecase(world)
	ctx := context.Background()

	rs, err := uc.Register(ctx, line(10, 10), "bodeguero-1")
	require.NoError(t, err)

	_, err = uc.Verify(ctx, rs.ID, receiving.VerifyInput{}, "supervisor-1")
	require.NoError(t, err)
	_, err = uc.Verify(ctx, rs.ID, receiving.VerifyInput{}, "supervisor-1")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

// ─────────────────────────────────────────────────────────────
// Reject
// ─────────────────────────────────────────────────────────────

func TestReject_SoloDesdePendiente(t *testing.T) {
	world := newMemWorld()
	uc := newUsecase(world)
	ctx := context.Background()

	rs, err := uc.Register(ctx, line(10, 10), "bodeguero-1")
	require.NoError(t, err)

	rejected, err := uc.Reject(ctx, rs.ID, "empaques rotos", "supervisor-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ReceivedRejected, rejected.Status)
	assert.Equal(t, "empaques rotos", rejected.QualityIssues)

	// El rechazo nunca toca el libro y es terminal.
	assert.Empty(t, world.records)
	_, err = uc.Reject(ctx, rs.ID, "de nuevo", "supervisor-1")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestReject_LineaInexistente(t *testing.T) {
	uc := newUsecase(newMemWorld())

	_, err := uc.Reject(context.Background(), "no-existe", "razón", "supervisor-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
