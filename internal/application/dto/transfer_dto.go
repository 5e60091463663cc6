package dto

import (
	"time"

	"github.com/jhoicas/multitienda-api/internal/domain/entity"
)

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	FromStoreID           string                      `json:"from_store_id"`
	ToStoreID             string                      `json:"to_store_id"`
	FromWarehouseID       string                      `json:"from_warehouse_id,omitempty"`
	ToWarehouseID         string                      `json:"to_warehouse_id,omitempty"`
	Priority              string                      `json:"priority,omitempty"` // LOW|NORMAL|HIGH|URGENT
	Notes                 string                      `json:"notes,omitempty"`
	ShippingMethod        string                      `json:"shipping_method,omitempty"`
	EstimatedDeliveryDate *time.Time                  `json:"estimated_delivery_date,omitempty"`
	Items                 []CreateTransferItemRequest `json:"items"`
}

// CreateTransferItemRequest línea solicitada del traslado.
type CreateTransferItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ReceiveTransferRequest body para POST /api/transfers/:id/receive.
type ReceiveTransferRequest struct {
	Items []ReceiveTransferItemRequest `json:"items"`
}

// ReceiveTransferItemRequest cantidades recibidas y dañadas por línea.
type ReceiveTransferItemRequest struct {
	ItemID           string `json:"item_id"`
	ReceivedQuantity int    `json:"received_quantity"`
	DamagedQuantity  int    `json:"damaged_quantity"`
}

// TerminateTransferRequest body para cancel/reject.
type TerminateTransferRequest struct {
	Reason string `json:"reason,omitempty"`
}

// TransferItemResponse línea del traslado en respuestas.
type TransferItemResponse struct {
	ID                string `json:"id"`
	ProductID         string `json:"product_id"`
	RequestedQuantity int    `json:"requested_quantity"`
	ReceivedQuantity  int    `json:"received_quantity"`
	DamagedQuantity   int    `json:"damaged_quantity"`
}

// TransferResponse traslado en respuestas.
type TransferResponse struct {
	ID              string `json:"id"`
	TransferNo      string `json:"transfer_no"`
	FromStoreID     string `json:"from_store_id"`
	ToStoreID       string `json:"to_store_id"`
	FromWarehouseID string `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string `json:"to_warehouse_id,omitempty"`
	Status          string `json:"status"`
	Type            string `json:"type"`
	Priority        string `json:"priority"`
	RequestedBy     string `json:"requested_by"`
	ApprovedBy      string `json:"approved_by,omitempty"`
	ReceivedBy      string `json:"received_by,omitempty"`

	TransferDate          *time.Time `json:"transfer_date,omitempty"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date,omitempty"`
	ActualDeliveryDate    *time.Time `json:"actual_delivery_date,omitempty"`
	ReceivedDate          *time.Time `json:"received_date,omitempty"`

	ShippingMethod string                 `json:"shipping_method,omitempty"`
	TrackingNumber string                 `json:"tracking_number,omitempty"`
	Notes          string                 `json:"notes,omitempty"`
	Items          []TransferItemResponse `json:"items"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// FromTransfer mapea la entidad a la respuesta.
func FromTransfer(t *entity.StockTransfer) TransferResponse {
	items := make([]TransferItemResponse, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, TransferItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			RequestedQuantity: item.RequestedQuantity,
			ReceivedQuantity:  item.ReceivedQuantity,
			DamagedQuantity:   item.DamagedQuantity,
		})
	}
	return TransferResponse{
		ID:              t.ID,
		TransferNo:      t.TransferNo,
		FromStoreID:     t.FromStoreID,
		ToStoreID:       t.ToStoreID,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Status:          string(t.Status),
		Type:            string(t.Type),
		Priority:        string(t.Priority),
		RequestedBy:     t.RequestedBy,
		ApprovedBy:      t.ApprovedBy,
		ReceivedBy:      t.ReceivedBy,

		TransferDate:          t.TransferDate,
		EstimatedDeliveryDate: t.EstimatedDeliveryDate,
		ActualDeliveryDate:    t.ActualDeliveryDate,
		ReceivedDate:          t.ReceivedDate,

		ShippingMethod: t.ShippingMethod,
		TrackingNumber: t.TrackingNumber,
		Notes:          t.Notes,
		Items:          items,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// FromTransfers mapea un listado.
func FromTransfers(transfers []*entity.StockTransfer) []TransferResponse {
	out := make([]TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, FromTransfer(t))
	}
	return out
}
