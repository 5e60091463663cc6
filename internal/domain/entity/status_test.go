package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/multitienda-api/internal/domain/entity"
)

func TestTransferStatus_Transiciones(t *testing.T) {
	cases := []struct {
		from, to entity.TransferStatus
		ok       bool
	}{
		{entity.TransferPending, entity.TransferApproved, true},
		{entity.TransferPending, entity.TransferCancelled, true},
		{entity.TransferPending, entity.TransferRejected, true},
		{entity.TransferPending, entity.TransferInTransit, false},
		{entity.TransferApproved, entity.TransferInTransit, true},
		{entity.TransferApproved, entity.TransferCancelled, true},
		{entity.TransferInTransit, entity.TransferReceived, true},
		{entity.TransferInTransit, entity.TransferPartiallyReceived, true},
		{entity.TransferInTransit, entity.TransferCancelled, false},
		{entity.TransferReceived, entity.TransferPending, false},
		{entity.TransferCancelled, entity.TransferApproved, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestTransferStatus_Terminales(t *testing.T) {
	assert.True(t, entity.TransferReceived.Terminal())
	assert.True(t, entity.TransferPartiallyReceived.Terminal())
	assert.True(t, entity.TransferCancelled.Terminal())
	assert.True(t, entity.TransferRejected.Terminal())
	assert.False(t, entity.TransferPending.Terminal())
	assert.False(t, entity.TransferInTransit.Terminal())
}

func TestStockTransfer_Conciliacion(t *testing.T) {
	tr := &entity.StockTransfer{
		Items: []*entity.StockTransferItem{
			{RequestedQuantity: 10, ReceivedQuantity: 8, DamagedQuantity: 2},
			{RequestedQuantity: 5, ReceivedQuantity: 5},
		},
	}
	assert.True(t, tr.FullyReconciled())

	tr.Items[1].ReceivedQuantity = 4
	assert.False(t, tr.FullyReconciled())
}

func TestStockTransfer_Ubicaciones(t *testing.T) {
	tr := &entity.StockTransfer{FromStoreID: "tienda-a", ToStoreID: "tienda-b"}
	assert.Equal(t, "tienda-a", tr.SourceLocationID())
	assert.Equal(t, "tienda-b", tr.DestinationLocationID())

	// La bodega, si está definida, manda sobre la tienda.
	tr.FromWarehouseID = "bodega-1"
	assert.Equal(t, "bodega-1", tr.SourceLocationID())
}

func TestDetermineTransferType(t *testing.T) {
	assert.Equal(t, entity.TransferStoreToStore, entity.DetermineTransferType("", ""))
	assert.Equal(t, entity.TransferWarehouseToStore, entity.DetermineTransferType("bodega-1", ""))
	assert.Equal(t, entity.TransferStoreToWarehouse, entity.DetermineTransferType("", "bodega-2"))
	assert.Equal(t, entity.TransferWarehouseToWarehouse, entity.DetermineTransferType("bodega-1", "bodega-2"))
}

func TestReceivedStockStatus_Transiciones(t *testing.T) {
	cases := []struct {
		from, to entity.ReceivedStockStatus
		ok       bool
	}{
		{entity.ReceivedPending, entity.ReceivedVerified, true},
		{entity.ReceivedPending, entity.ReceivedRejected, true},
		{entity.ReceivedPending, entity.ReceivedDiscrepancy, true},
		{entity.ReceivedPartial, entity.ReceivedVerified, true},
		{entity.ReceivedVerified, entity.ReceivedPending, false},
		{entity.ReceivedRejected, entity.ReceivedVerified, false},
		{entity.ReceivedDiscrepancy, entity.ReceivedVerified, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestReceivedStock_HasDiscrepancy(t *testing.T) {
	rs := &entity.ReceivedStock{ExpectedQuantity: 50, ReceivedQuantity: 50}
	assert.False(t, rs.HasDiscrepancy())

	rs.ReceivedQuantity = 45
	assert.True(t, rs.HasDiscrepancy())
}

func TestShiftStatus_Transiciones(t *testing.T) {
	cases := []struct {
		from, to entity.ShiftStatus
		ok       bool
	}{
		{entity.ShiftPending, entity.ShiftActive, true},
		{entity.ShiftPending, entity.ShiftCancelled, true},
		{entity.ShiftActive, entity.ShiftCompleted, true},
		{entity.ShiftActive, entity.ShiftCancelled, false},
		{entity.ShiftCompleted, entity.ShiftActive, false},
		{entity.ShiftCancelled, entity.ShiftActive, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestShift_Close(t *testing.T) {
	now := time.Now()
	expected := decimal.NewFromInt(500)
	sh := &entity.Shift{Status: entity.ShiftActive}

	sh.Close(now, "cajero-1", decimal.NewFromInt(495), &expected, "turno tranquilo")

	assert.Equal(t, entity.ShiftCompleted, sh.Status)
	assert.Equal(t, "cajero-1", sh.EndedBy)
	require.NotNil(t, sh.CashDifference)
	assert.True(t, sh.CashDifference.Equal(decimal.NewFromInt(-5)))
	assert.Equal(t, "turno tranquilo", sh.Notes)
}

func TestShift_Close_SinEsperado(t *testing.T) {
	sh := &entity.Shift{Status: entity.ShiftActive}
	sh.Close(time.Now(), "cajero-1", decimal.NewFromInt(480), nil, "")

	assert.Nil(t, sh.CashDifference)
	assert.Nil(t, sh.ExpectedCash)
	require.NotNil(t, sh.EndingCash)
	assert.True(t, sh.EndingCash.Equal(decimal.NewFromInt(480)))
}

func TestSwapStatus_Transiciones(t *testing.T) {
	cases := []struct {
		from, to entity.SwapStatus
		ok       bool
	}{
		{entity.SwapPending, entity.SwapApproved, true},
		{entity.SwapPending, entity.SwapRejected, true},
		{entity.SwapPending, entity.SwapCancelled, true},
		{entity.SwapPending, entity.SwapManagerApproved, false},
		{entity.SwapApproved, entity.SwapManagerApproved, true},
		{entity.SwapApproved, entity.SwapCancelled, true},
		{entity.SwapManagerApproved, entity.SwapCancelled, false},
		{entity.SwapRejected, entity.SwapApproved, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestSwapStatus_Active(t *testing.T) {
	assert.True(t, entity.SwapPending.Active())
	assert.True(t, entity.SwapApproved.Active())
	assert.False(t, entity.SwapManagerApproved.Active())
	assert.False(t, entity.SwapRejected.Active())
	assert.False(t, entity.SwapCancelled.Active())
}

func TestInventoryRecord_RecalculateYConsistent(t *testing.T) {
	rec := &entity.InventoryRecord{
		CurrentQuantity:  10,
		ReservedQuantity: 3,
		UnitCost:         decimal.NewFromInt(4),
	}
	rec.Recalculate()

	assert.Equal(t, 7, rec.AvailableQuantity)
	assert.True(t, rec.TotalValue.Equal(decimal.NewFromInt(40)))
	assert.True(t, rec.Consistent())

	rec.ReservedQuantity = 11
	rec.Recalculate()
	assert.False(t, rec.Consistent())
}
