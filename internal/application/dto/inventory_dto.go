package dto

import (
	"time"

	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LedgerOperationRequest body para las operaciones del libro
// (reserve, release, commit, adjust).
type LedgerOperationRequest struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
	Reason     string `json:"reason,omitempty"` // solo ajustes
}

// ReceiveStockRequest body para POST /api/inventory/receive (entrada de proveedor directa).
type ReceiveStockRequest struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

// DirectTransferRequest body para POST /api/inventory/transfer (traslado directo sin flujo).
type DirectTransferRequest struct {
	ProductID      string `json:"product_id"`
	FromLocationID string `json:"from_location_id"`
	ToLocationID   string `json:"to_location_id"`
	Quantity       int    `json:"quantity"`
}

// InventoryRecordResponse foto del registro de stock en respuestas.
type InventoryRecordResponse struct {
	ProductID         string          `json:"product_id"`
	LocationID        string          `json:"location_id"`
	CurrentQuantity   int             `json:"current_quantity"`
	ReservedQuantity  int             `json:"reserved_quantity"`
	AvailableQuantity int             `json:"available_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalValue        decimal.Decimal `json:"total_value"`
	LastUpdated       time.Time       `json:"last_updated"`
	LastUpdatedBy     string          `json:"last_updated_by,omitempty"`
}

// FromInventoryRecord mapea la entidad a la respuesta.
func FromInventoryRecord(r *entity.InventoryRecord) InventoryRecordResponse {
	return InventoryRecordResponse{
		ProductID:         r.ProductID,
		LocationID:        r.LocationID,
		CurrentQuantity:   r.CurrentQuantity,
		ReservedQuantity:  r.ReservedQuantity,
		AvailableQuantity: r.AvailableQuantity,
		UnitCost:          r.UnitCost,
		TotalValue:        r.TotalValue,
		LastUpdated:       r.LastUpdated,
		LastUpdatedBy:     r.LastUpdatedBy,
	}
}

// FromInventoryRecords mapea un listado.
func FromInventoryRecords(records []*entity.InventoryRecord) []InventoryRecordResponse {
	out := make([]InventoryRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, FromInventoryRecord(r))
	}
	return out
}

// StockMovementResponse movimiento en la traza de auditoría.
type StockMovementResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ProductID     string          `json:"product_id"`
	LocationID    string          `json:"location_id"`
	Type          string          `json:"type"`
	Quantity      int             `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Reason        string          `json:"reason,omitempty"`
	Date          time.Time       `json:"date"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

// FromStockMovements mapea un listado.
func FromStockMovements(movements []*entity.StockMovement) []StockMovementResponse {
	out := make([]StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, FromStockMovement(m))
	}
	return out
}

// FromStockMovement mapea la entidad a la respuesta.
func FromStockMovement(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		LocationID:    m.LocationID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		TotalCost:     m.TotalCost,
		Reason:        m.Reason,
		Date:          m.Date,
		CreatedBy:     m.CreatedBy,
	}
}
