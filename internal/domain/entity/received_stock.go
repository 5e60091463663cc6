package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceivedStockStatus estado de una línea de stock recibido de proveedor.
type ReceivedStockStatus string

// Estados de la verificación.
const (
	ReceivedPending     ReceivedStockStatus = "PENDING"     // recibido, sin verificar
	ReceivedVerified    ReceivedStockStatus = "VERIFIED"    // verificado y sumado al inventario
	ReceivedRejected    ReceivedStockStatus = "REJECTED"    // rechazado por calidad
	ReceivedPartial     ReceivedStockStatus = "PARTIAL"     // verificación parcial
	ReceivedDiscrepancy ReceivedStockStatus = "DISCREPANCY" // esperado != recibido
)

// receivedStockTransitions transiciones válidas de la verificación.
var receivedStockTransitions = map[ReceivedStockStatus][]ReceivedStockStatus{
	ReceivedPending: {ReceivedVerified, ReceivedRejected, ReceivedPartial, ReceivedDiscrepancy},
	ReceivedPartial: {ReceivedVerified, ReceivedDiscrepancy},
}

// CanTransitionTo indica si el paso de s a next es válido.
func (s ReceivedStockStatus) CanTransitionTo(next ReceivedStockStatus) bool {
	for _, allowed := range receivedStockTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ReceivedStock línea de una entrega de proveedor: cantidad esperada vs recibida
// vs verificada, con daños, faltantes y sobrantes. Las líneas de una misma carga
// masiva comparten UploadID.
type ReceivedStock struct {
	ID          string
	ProductID   string
	ProductCode string
	ProductName string
	LocationID  string // ubicación donde se suma el stock verificado

	ExpectedQuantity int
	ReceivedQuantity int
	// VerifiedQuantity = ReceivedQuantity - DamageQuantity al finalizar.
	VerifiedQuantity int
	DamageQuantity   int
	ShortageQuantity int
	ExcessQuantity   int

	UnitPrice  decimal.Decimal
	TotalValue decimal.Decimal
	Status     ReceivedStockStatus

	BatchNumber           string
	SupplierName          string
	SupplierInvoiceNumber string

	DeliveryDate         *time.Time
	ExpectedDeliveryDate *time.Time
	ReceivedDate         *time.Time
	VerifiedDate         *time.Time

	ReceivedBy    string
	VerifiedBy    string
	Notes         string
	QualityIssues string

	UploadID  string
	RowNumber int
	Audit
}

// HasDiscrepancy indica si hay discrepancia: esperado distinto de recibido.
func (r *ReceivedStock) HasDiscrepancy() bool {
	return r.ExpectedQuantity != r.ReceivedQuantity
}
