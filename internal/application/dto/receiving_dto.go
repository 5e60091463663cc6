package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/multitienda-api/internal/application/receiving"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
)

// ReceivedLineRequest body de una línea de entrega de proveedor
// (individual o fila de carga masiva).
type ReceivedLineRequest struct {
	ProductID   string `json:"product_id"`
	ProductCode string `json:"product_code,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	LocationID  string `json:"location_id"`

	ExpectedQuantity int             `json:"expected_quantity"`
	ReceivedQuantity int             `json:"received_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`

	BatchNumber           string     `json:"batch_number,omitempty"`
	SupplierName          string     `json:"supplier_name,omitempty"`
	SupplierInvoiceNumber string     `json:"supplier_invoice_number,omitempty"`
	DeliveryDate          *time.Time `json:"delivery_date,omitempty"`
	ExpectedDeliveryDate  *time.Time `json:"expected_delivery_date,omitempty"`
	Notes                 string     `json:"notes,omitempty"`
}

// ToLineInput convierte el request al input del caso de uso.
func (r ReceivedLineRequest) ToLineInput() receiving.LineInput {
	return receiving.LineInput{
		ProductID:   r.ProductID,
		ProductCode: r.ProductCode,
		ProductName: r.ProductName,
		LocationID:  r.LocationID,

		ExpectedQuantity: r.ExpectedQuantity,
		ReceivedQuantity: r.ReceivedQuantity,
		UnitPrice:        r.UnitPrice,

		BatchNumber:           r.BatchNumber,
		SupplierName:          r.SupplierName,
		SupplierInvoiceNumber: r.SupplierInvoiceNumber,
		DeliveryDate:          r.DeliveryDate,
		ExpectedDeliveryDate:  r.ExpectedDeliveryDate,
		Notes:                 r.Notes,
	}
}

// BatchUploadRequest body para POST /api/received-stock/batch.
type BatchUploadRequest struct {
	Lines []ReceivedLineRequest `json:"lines"`
}

// VerifyReceivedRequest body para POST /api/received-stock/:id/verify.
type VerifyReceivedRequest struct {
	DamageQuantity int    `json:"damage_quantity"`
	QualityIssues  string `json:"quality_issues,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// RejectReceivedRequest body para POST /api/received-stock/:id/reject.
type RejectReceivedRequest struct {
	Reason string `json:"reason"`
}

// ReceivedStockResponse línea de stock recibido en respuestas.
type ReceivedStockResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductCode string `json:"product_code,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	LocationID  string `json:"location_id"`

	ExpectedQuantity int `json:"expected_quantity"`
	ReceivedQuantity int `json:"received_quantity"`
	VerifiedQuantity int `json:"verified_quantity"`
	DamageQuantity   int `json:"damage_quantity"`
	ShortageQuantity int `json:"shortage_quantity"`
	ExcessQuantity   int `json:"excess_quantity"`

	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalValue decimal.Decimal `json:"total_value"`
	Status     string          `json:"status"`

	BatchNumber           string `json:"batch_number,omitempty"`
	SupplierName          string `json:"supplier_name,omitempty"`
	SupplierInvoiceNumber string `json:"supplier_invoice_number,omitempty"`

	ReceivedDate *time.Time `json:"received_date,omitempty"`
	VerifiedDate *time.Time `json:"verified_date,omitempty"`
	ReceivedBy   string     `json:"received_by,omitempty"`
	VerifiedBy   string     `json:"verified_by,omitempty"`

	Notes         string `json:"notes,omitempty"`
	QualityIssues string `json:"quality_issues,omitempty"`

	UploadID  string `json:"upload_id,omitempty"`
	RowNumber int    `json:"row_number,omitempty"`
}

// FromReceivedStock mapea la entidad a la respuesta.
func FromReceivedStock(rs *entity.ReceivedStock) ReceivedStockResponse {
	return ReceivedStockResponse{
		ID:          rs.ID,
		ProductID:   rs.ProductID,
		ProductCode: rs.ProductCode,
		ProductName: rs.ProductName,
		LocationID:  rs.LocationID,

		ExpectedQuantity: rs.ExpectedQuantity,
		ReceivedQuantity: rs.ReceivedQuantity,
		VerifiedQuantity: rs.VerifiedQuantity,
		DamageQuantity:   rs.DamageQuantity,
		ShortageQuantity: rs.ShortageQuantity,
		ExcessQuantity:   rs.ExcessQuantity,

		UnitPrice:  rs.UnitPrice,
		TotalValue: rs.TotalValue,
		Status:     string(rs.Status),

		BatchNumber:           rs.BatchNumber,
		SupplierName:          rs.SupplierName,
		SupplierInvoiceNumber: rs.SupplierInvoiceNumber,

		ReceivedDate: rs.ReceivedDate,
		VerifiedDate: rs.VerifiedDate,
		ReceivedBy:   rs.ReceivedBy,
		VerifiedBy:   rs.VerifiedBy,

		Notes:         rs.Notes,
		QualityIssues: rs.QualityIssues,

		UploadID:  rs.UploadID,
		RowNumber: rs.RowNumber,
	}
}

// FromReceivedStocks mapea un listado.
func FromReceivedStocks(lines []*entity.ReceivedStock) []ReceivedStockResponse {
	out := make([]ReceivedStockResponse, 0, len(lines))
	for _, rs := range lines {
		out = append(out, FromReceivedStock(rs))
	}
	return out
}

// BatchUploadResponse resultado de la carga masiva.
type BatchUploadResponse struct {
	UploadID string                  `json:"upload_id"`
	Created  []ReceivedStockResponse `json:"created"`
	Errors   []receiving.RowError    `json:"errors,omitempty"`
}
