package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord es el registro de stock de un producto en una ubicación (tienda o bodega).
// AvailableQuantity es un valor derivado: se recalcula en cada mutación con Recalculate()
// y nunca se asigna de forma independiente.
type InventoryRecord struct {
	ID               string
	ProductID        string
	LocationID       string // ID de tienda o bodega
	CurrentQuantity  int
	ReservedQuantity int
	// AvailableQuantity = CurrentQuantity - ReservedQuantity. Derivado, no asignar a mano.
	AvailableQuantity int
	UnitCost          decimal.Decimal // costo promedio ponderado
	TotalValue        decimal.Decimal
	LastUpdated       time.Time
	LastUpdatedBy     string
	Audit
}

// Recalculate recalcula los campos derivados a partir de sus insumos.
func (r *InventoryRecord) Recalculate() {
	r.AvailableQuantity = r.CurrentQuantity - r.ReservedQuantity
	r.TotalValue = r.UnitCost.Mul(decimal.NewFromInt(int64(r.CurrentQuantity)))
}

// Consistent verifica los invariantes del registro: cantidades no negativas
// y reservado nunca mayor que el stock físico.
func (r *InventoryRecord) Consistent() bool {
	return r.CurrentQuantity >= 0 &&
		r.ReservedQuantity >= 0 &&
		r.ReservedQuantity <= r.CurrentQuantity &&
		r.AvailableQuantity == r.CurrentQuantity-r.ReservedQuantity
}
