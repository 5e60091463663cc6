package transfer_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/multitienda-api/internal/application/events"
	"github.com/jhoicas/multitienda-api/internal/application/transfer"
	"github.com/jhoicas/multitienda-api/internal/domain"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/jhoicas/multitienda-api/internal/domain/repository"
	"github.com/jhoicas/multitienda-api/pkg/logger"
)

// memWorld estado en memoria compartido por los repos fake, con snapshot/restore
// para imitar la atomicidad del TxRunner real.
type memWorld struct {
	records   map[string]*entity.InventoryRecord
	movements []*entity.StockMovement
	transfers map[string]*entity.StockTransfer
}

func newMemWorld() *memWorld {
	return &memWorld{
		records:   make(map[string]*entity.InventoryRecord),
		transfers: make(map[string]*entity.StockTransfer),
	}
}

func recKey(productID, locationID string) string { return productID + "|" + locationID }

func (w *memWorld) seed(productID, locationID string, current, reserved int, unitCost decimal.Decimal) {
	rec := &entity.InventoryRecord{
		ID:               recKey(productID, locationID),
		ProductID:        productID,
		LocationID:       locationID,
		CurrentQuantity:  current,
		ReservedQuantity: reserved,
		UnitCost:         unitCost,
	}
	rec.Recalculate()
	w.records[recKey(productID, locationID)] = rec
}

func (w *memWorld) record(t *testing.T, productID, locationID string) *entity.InventoryRecord {
	t.Helper()
	rec, ok := w.records[recKey(productID, locationID)]
	require.True(t, ok, "registro %s/%s no existe", productID, locationID)
	return rec
}

func copyTransfer(tr *entity.StockTransfer) *entity.StockTransfer {
	cp := *tr
	cp.Items = make([]*entity.StockTransferItem, len(tr.Items))
	for i, item := range tr.Items {
		itemCp := *item
		cp.Items[i] = &itemCp
	}
	return &cp
}

func (w *memWorld) snapshot() *memWorld {
	snap := newMemWorld()
	for k, v := range w.records {
		cp := *v
		snap.records[k] = &cp
	}
	snap.movements = make([]*entity.StockMovement, len(w.movements))
	copy(snap.movements, w.movements)
	for k, v := range w.transfers {
		snap.transfers[k] = copyTransfer(v)
	}
	return snap
}

func (w *memWorld) restore(snap *memWorld) {
	w.records = snap.records
	w.movements = snap.movements
	w.transfers = snap.transfers
}

// memInvRepo / memMovRepo / memTransferRepo implementan los puertos sobre memWorld.

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

type memTransferRepo struct{ world *memWorld }

func (r *memTransferRepo) Create(_ context.Context, tr *entity.StockTransfer) error {
	r.world.transfers[tr.ID] = copyTransfer(tr)
	return nil
}

func (r *memTransferRepo) Update(_ context.Context, tr *entity.StockTransfer) error {
	if _, ok := r.world.transfers[tr.ID]; !ok {
		return domain.ErrNotFound
	}
	r.world.transfers[tr.ID] = copyTransfer(tr)
	return nil
}

func (r *memTransferRepo) UpdateItems(_ context.Context, items []*entity.StockTransferItem) error {
	for _, item := range items {
		stored, ok := r.world.transfers[item.TransferID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, si := range stored.Items {
			if si.ID == item.ID {
				si.ReceivedQuantity = item.ReceivedQuantity
				si.DamagedQuantity = item.DamagedQuantity
			}
		}
	}
	return nil
}

func (r *memTransferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	tr, ok := r.world.transfers[id]
	if !ok {
		return nil, nil
	}
	return copyTransfer(tr), nil
}

func (r *memTransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.GetByID(ctx, id)
}

func (r *memTransferRepo) ListByStore(_ context.Context, storeID string, status *entity.TransferStatus, _, _ int) ([]*entity.StockTransfer, error) {
	var out []*entity.StockTransfer
	for _, tr := range r.world.transfers {
		if tr.FromStoreID != storeID && tr.ToStoreID != storeID {
			continue
		}
		if status != nil && tr.Status != *status {
			continue
		}
		out = append(out, copyTransfer(tr))
	}
	return out, nil
}

type memTxRunner struct{ world *memWorld }

func (r *memTxRunner) RunTransfer(_ context.Context, fn func(
	repository.InventoryRepository,
	repository.StockMovementRepository,
	repository.StockTransferRepository,
) error) error {
	snap := r.world.snapshot()
	err := fn(&memInvRepo{world: r.world}, &memMovRepo{world: r.world}, &memTransferRepo{world: r.world})
	if err != nil {
		r.world.restore(snap)
		return err
	}
	return nil
}

// capturePublisher acumula los eventos publicados.
type capturePublisher struct{ published []events.TransitionEvent }

func (p *capturePublisher) PublishTransition(_ context.Context, ev events.TransitionEvent) error {
	p.published = append(p.published, ev)
	return nil
}

func newUsecase(world *memWorld) (*transfer.Usecase, *capturePublisher) {
	pub := &capturePublisher{}
	log := logger.New(logger.Config{Level: "error"})
	uc := transfer.New(&memTxRunner{world: world}, &memTransferRepo{world: world}, pub, log)
	return uc, pub
}

func createTransfer(t *testing.T, uc *transfer.Usecase, items ...transfer.CreateItemInput) *entity.StockTransfer {
	t.Helper()
	tr, err := uc.Create(context.Background(), transfer.CreateInput{
		FromStoreID: "tienda-norte",
		ToStoreID:   "tienda-sur",
		Items:       items,
	}, "vendedor-1")
	require.NoError(t, err)
	return tr
}

// ─────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────

func TestCreate_TrasladoPendingSinTocarLibro(t *testing.T) {
	world := newMemWorld()
	world.seed("prod-1", "tienda-norte", 10, 0, decimal.NewFromInt(5))
	uc, _ := newUsecase(world)

	tr := createTransfer(t, uc, transfer.CreateItemInput{ProductID: "prod-1", Quantity: 4})

	assert.Equal(t, entity.TransferPending, tr.Status)
	assert.Equal(t, entity.TransferStoreToStore, tr.Type)
	assert.NotEmpty(t, tr.TransferNo)
	require.Len(t, tr.Items, 1)
	assert.Equal(t, 4, tr.Items[0].RequestedQuantity)

	// El libro no cambia hasta la aprobación.
	rec := world.record(t, "prod-1", "tienda-norte")
	assert.Equal(t, 0, rec.ReservedQuantity)
	assert.Empty(t, world.movements)
}

func TestCreate_SinItems_Falla(t *testing.T) {
	uc, _ := newUsecase(newMemWorld())

	_, err := uc.Create(context.Background(), transfer.CreateInput{
		FromStoreID: "tienda-norte",
		ToStoreID:   "tienda-sur",
	}, "vendedor-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_MismoOrigenYDestino_Falla(t *testing.T) {
	uc, _ := newUsecase(newMemWorld())

	_, err := uc.Create(context.Background(), transfer.CreateInput{
		FromStoreID: "tienda-norte",
		ToStoreID:   "tienda-norte",
		Items:       []transfer.CreateItemInput{{ProductID: "prod-1", Quantity: 1}},
	}, "vendedor-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─────────────────────────────────────────────────────────────
// Approve / Ship
// ─────────────────────────────────────────────────────────────

func TestApprove_ReservaStockEnOrigen(t *testing.T) {
	world := newMemWorld()
	world.seed("prod-1", "tienda-norte", 10, 0, decimal.NewFromInt(5))
	uc, _ := newUsecase(world)
	tr := createTransfer(t, uc, transfer.CreateItemInput{ProductID: "prod-1", Quantity: 4})

	approved, err := uc.Approve(context.Background(), tr.ID, "gerente-1")
	require.NoError(t, err)

	assert.Equal(t, entity.TransferApproved, approved.Status)
	assert.Equal(t, "gerente-1", approved.ApprovedBy)

	rec := world.record(t, "prod-1", "tienda-norte")
	assert.Equal(t, 10, rec.CurrentQuantity)
	assert.Equal(t, 4, rec.ReservedQuantity)
	assert.Equal(t, 6, rec.AvailableQuantity)
}

func TestApprove_TodoONada(t *testing.T) {
	world := newMemWorld()
	world.seed("prod-1", "tienda-norte", 10, 0, decimal.NewFromInt(5))
	world.seed("prod-2", "tienda-norte", 2, 0, decimal.NewFromInt(5))
	uc, _ := newUsecase(world)
	tr := createTransfer(t, uc,
		transfer.CreateItemInput{ProductID: "prod-1", Quantity: 4},
		transfer.CreateItemInput{ProductID: "prod-2", Quantity: 5}, // sin stock suficiente
	)

	_, err := uc.Approve(context.Background(), tr.ID, "gerente-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// La reserva de la primera línea se revirtió y el traslado sigue en PENDING.
	rec := world.record(t, "prod-1", "tienda-norte")
	assert.Equal(t, 0, rec.ReservedQuantity)
	stored, err := uc.GetByID(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferPending, stored.Status)
}

func TestShip_ConsumeLaReserva(t *testing.T) {
	world := newMemWorld()
	world.seed("prod-1", "tienda-norte", 10, 0, decimal.NewFromInt(5))
	uc, _ := newUsecase(world)
	ctx := context.Background()
	tr := createTransfer(t, uc, transfer.CreateItemInput{ProductID: "prod-1", Quantity: 4})

	_, err := uc.Approve(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)
	shipped, err := uc.Ship(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)

	assert.Equal(t, entity.TransferInTransit, shipped.Status)

	rec := world.record(t, "prod-1", "tienda-norte")
	assert.Equal(t, 6, rec.CurrentQuantity)
	assert.Equal(t, 0, rec.ReservedQuantity)
	assert.True(t, rec.Consistent())
}

func TestShip_DesdePending_TransicionIlegal(t *testing.T) {
	world := newMemWorld()
	world.seed("prod-1", "tienda-norte", 10, 0, decimal.NewFromInt(5))
	uc, _ := newUsecase(world)
	tr := createTransfer(t, uc, transfer.CreateItemInput{ProductID: "prod-1", Quantity: 4})

	_, err := uc.Ship(context.Background(), tr.ID, "gerente-1")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

// ─────────────────────────────────────────────────────────────
// Receive
// ─────────────────────────────────────────────────────────────

func TestReceive_ConciliadoLlegaAReceived(t *testing.T) {
	world := newMemWorld()
	world.seed("prod-1", "tienda-norte", 10, 0, decimal.NewFromInt(12))
	uc, _ := newUsecase(world)
	ctx := context.Background()
	tr := createTransfer(t, uc, transfer.CreateItemInput{ProductID: "prod-1", Quantity: 10})

	_, err := uc.Approve(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)
	_, err = uc.Ship(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)

	// 8 buenas + 2 dañadas = 10 solicitadas: concilia completo.
	received, err := uc.Receive(ctx, tr.ID, "vendedor-2", []transfer.ReceiveItemInput{
		{ItemID: tr.Items[0].ID, ReceivedQuantity: 8, DamagedQuantity: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.TransferReceived, received.Status)
	assert.Equal(t, "vendedor-2", received.ReceivedBy)

	// Solo las unidades en buen estado entran al stock del destino,
	// al costo promedio del origen.
	dst := world.record(t, "prod-1", "tienda-sur")
	assert.Equal(t, 8, dst.CurrentQuantity)
	assert.True(t, dst.UnitCost.Equal(decimal.NewFromInt(12)))
}

func TestReceive_ParcialQuedaPartiallyReceived(t *testing.T) {
	world := newMemWorld()
	world.seed("prod-1", "tienda-norte", 10, 0, decimal.NewFromInt(12))
	uc, _ := newUsecase(world)
	ctx := context.Background()
	tr := createTransfer(t, uc, transfer.CreateItemInput{ProductID: "prod-1", Quantity: 10})

	_, err := uc.Approve(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)
	_, err = uc.Ship(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)

	received, err := uc.Receive(ctx, tr.ID, "vendedor-2", []transfer.ReceiveItemInput{
		{ItemID: tr.Items[0].ID, ReceivedQuantity: 5},
	})
	require.NoError(t, err)

	// La discrepancia queda registrada, nunca descartada.
	assert.Equal(t, entity.TransferPartiallyReceived, received.Status)
	assert.Equal(t, 5, received.Items[0].ReceivedQuantity)

	dst := world.record(t, "prod-1", "tienda-sur")
	assert.Equal(t, 5, dst.CurrentQuantity)
}

func TestReceive_MasDeLoSolicitado_Falla(t *testing.T) {
	world := newMemWorld()
	world.seed("prod-1", "tienda-norte", 10, 0, decimal.NewFromInt(12))
	uc, _ := newUsecase(world)
	ctx := context.Background()
	tr := createTransfer(t, uc, transfer.CreateItemInput{ProductID: "prod-1", Quantity: 4})

	_, err := uc.Approve(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)
	_, err = uc.Ship(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)

	_, err = uc.Receive(ctx, tr.ID, "vendedor-2", []transfer.ReceiveItemInput{
		{ItemID: tr.Items[0].ID, ReceivedQuantity: 3, DamagedQuantity: 2},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestReceive_ItemDesconocido_Falla(t *testing.T) {
	world := newMemWorld()
	world.seed("prod-1", "tienda-norte", 10, 0, decimal.NewFromInt(12))
	world.seed("prod-1", "tienda-sur", 0, 0, decimal.Zero)
	uc, _ := newUsecase(world)
	ctx := context.Background()
	tr := createTransfer(t, uc, transfer.CreateItemInput{ProductID: "prod-1", Quantity: 4})

	_, err := uc.Approve(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)
	_, err = uc.Ship(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)

	_, err = uc.Receive(ctx, tr.ID, "vendedor-2", []transfer.ReceiveItemInput{
		{ItemID: tr.Items[0].ID, ReceivedQuantity: 4},
		{ItemID: "item-fantasma", ReceivedQuantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// La transacción se revierte completa: nada entró al destino.
	dst := world.record(t, "prod-1", "tienda-sur")
	assert.Equal(t, 0, dst.CurrentQuantity)
}

func TestReceive_SinEstarEnTransito_Falla(t *testing.T) {
	world := newMemWorld()
	world.seed("prod-1", "tienda-norte", 10, 0, decimal.NewFromInt(12))
	uc, _ := newUsecase(world)
	tr := createTransfer(t, uc, transfer.CreateItemInput{ProductID: "prod-1", Quantity: 4})

	_, err := uc.Receive(context.Background(), tr.ID, "vendedor-2", []transfer.ReceiveItemInput{
		{ItemID: tr.Items[0].ID, ReceivedQuantity: 4},
	})
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

// ─────────────────────────────────────────────────────────────
// Cancel / Reject
// ─────────────────────────────────────────────────────────────

func TestCancel_DespuesDeAprobar_LiberaLaReserva(t *testing.T) {
	world := newMemWorld()
	world.seed("prod-1", "tienda-norte", 10, 0, decimal.NewFromInt(5))
	uc, _ := newUsecase(world)
	ctx := context.Background()
	tr := createTransfer(t, uc, transfer.CreateItemInput{ProductID: "prod-1", Quantity: 4})

	_, err := uc.Approve(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)

	cancelled, err := uc.Cancel(ctx, tr.ID, "gerente-1", "el destino ya no lo necesita")
	require.NoError(t, err)

	assert.Equal(t, entity.TransferCancelled, cancelled.Status)
	assert.Contains(t, cancelled.Notes, "Cancelado: el destino ya no lo necesita")

	rec := world.record(t, "prod-1", "tienda-norte")
	assert.Equal(t, 0, rec.ReservedQuantity)
	assert.Equal(t, 10, rec.AvailableQuantity)
}

func TestReject_TrasEnviar_TransicionIlegal(t *testing.T) {
	world := newMemWorld()
	world.seed("prod-1", "tienda-norte", 10, 0, decimal.NewFromInt(5))
	uc, _ := newUsecase(world)
	ctx := context.Background()
	tr := createTransfer(t, uc, transfer.CreateItemInput{ProductID: "prod-1", Quantity: 4})

	_, err := uc.Approve(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)
	_, err = uc.Ship(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)

	_, err = uc.Reject(ctx, tr.ID, "gerente-1", "tarde")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

// ─────────────────────────────────────────────────────────────
// Eventos
// ─────────────────────────────────────────────────────────────

func TestEventos_SePublicanTrasCadaTransicion(t *testing.T) {
	world := newMemWorld()
	world.seed("prod-1", "tienda-norte", 10, 0, decimal.NewFromInt(5))
	uc, pub := newUsecase(world)
	ctx := context.Background()
	tr := createTransfer(t, uc, transfer.CreateItemInput{ProductID: "prod-1", Quantity: 4})

	_, err := uc.Approve(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)
	_, err = uc.Ship(ctx, tr.ID, "gerente-1")
	require.NoError(t, err)

	require.Len(t, pub.published, 3) // creado, aprobado, en tránsito
	assert.Equal(t, events.EntityStockTransfer, pub.published[1].EntityType)
	assert.Equal(t, string(entity.TransferApproved), pub.published[1].NewStatus)
	assert.Equal(t, string(entity.TransferInTransit), pub.published[2].NewStatus)
}
