package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementTypeReserve     = "RESERVE"      // aparta stock para una venta o traslado
	MovementTypeRelease     = "RELEASE"      // libera una reserva
	MovementTypeCommit      = "COMMIT"       // confirma la salida del stock reservado (checkout)
	MovementTypeReceive     = "RECEIVE"      // entrada por recepción de proveedor
	MovementTypeAdjustment  = "ADJUSTMENT"   // corrección directa (merma, conteo)
	MovementTypeTransferOut = "TRANSFER_OUT" // salida por traslado entre ubicaciones
	MovementTypeTransferIn  = "TRANSFER_IN"  // entrada por traslado entre ubicaciones
)

// StockMovement es la traza inmutable de cada mutación del libro de inventario.
// TransactionID agrupa los movimientos hechos en la misma unidad atómica
// (ej. TRANSFER_OUT y TRANSFER_IN de un mismo envío).
type StockMovement struct {
	ID            string
	TransactionID string
	ProductID     string
	LocationID    string
	Type          string
	Quantity      int // positivo entrada, negativo salida; reservas en valor absoluto
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	Reason        string
	Date          time.Time
	CreatedAt     time.Time
	CreatedBy     string
}
