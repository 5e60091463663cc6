package entity

import "time"

// TransferStatus estado del traslado de stock.
type TransferStatus string

// Estados del traslado.
const (
	TransferPending           TransferStatus = "PENDING"
	TransferApproved          TransferStatus = "APPROVED"
	TransferInTransit         TransferStatus = "IN_TRANSIT"
	TransferReceived          TransferStatus = "RECEIVED"
	TransferPartiallyReceived TransferStatus = "PARTIALLY_RECEIVED"
	TransferCancelled         TransferStatus = "CANCELLED"
	TransferRejected          TransferStatus = "REJECTED"
)

// transferTransitions tabla exhaustiva de transiciones válidas.
var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferPending:   {TransferApproved, TransferCancelled, TransferRejected},
	TransferApproved:  {TransferInTransit, TransferCancelled, TransferRejected},
	TransferInTransit: {TransferReceived, TransferPartiallyReceived},
	// RECEIVED, PARTIALLY_RECEIVED, CANCELLED y REJECTED son terminales.
}

// CanTransitionTo indica si el paso de s a next es válido según la tabla.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	for _, allowed := range transferTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal indica si el estado no admite más transiciones.
func (s TransferStatus) Terminal() bool {
	return len(transferTransitions[s]) == 0
}

// TransferType tipo de traslado según origen y destino.
type TransferType string

// Tipos de traslado.
const (
	TransferStoreToStore         TransferType = "STORE_TO_STORE"
	TransferWarehouseToStore     TransferType = "WAREHOUSE_TO_STORE"
	TransferStoreToWarehouse     TransferType = "STORE_TO_WAREHOUSE"
	TransferWarehouseToWarehouse TransferType = "WAREHOUSE_TO_WAREHOUSE"
)

// TransferPriority prioridad del traslado.
type TransferPriority string

// Prioridades.
const (
	PriorityLow    TransferPriority = "LOW"
	PriorityNormal TransferPriority = "NORMAL"
	PriorityHigh   TransferPriority = "HIGH"
	PriorityUrgent TransferPriority = "URGENT"
)

// StockTransfer traslado de stock entre dos ubicaciones mediante un flujo de
// aprobación, envío y recepción. Es dueño exclusivo de sus items: se crean y
// destruyen con el traslado.
type StockTransfer struct {
	ID              string
	TransferNo      string
	FromStoreID     string
	ToStoreID       string
	FromWarehouseID string // opcional: vacío = stock de tienda
	ToWarehouseID   string // opcional
	Status          TransferStatus
	Type            TransferType
	Priority        TransferPriority
	RequestedBy     string
	ApprovedBy      string
	ReceivedBy      string

	TransferDate          *time.Time
	EstimatedDeliveryDate *time.Time
	ActualDeliveryDate    *time.Time
	ReceivedDate          *time.Time

	ShippingMethod string
	TrackingNumber string
	Notes          string
	Items          []*StockTransferItem
	Audit
}

// StockTransferItem línea de un traslado: producto y cantidades solicitada,
// recibida y dañada. ReceivedQuantity + DamagedQuantity nunca supera RequestedQuantity.
type StockTransferItem struct {
	ID                string
	TransferID        string
	ProductID         string
	RequestedQuantity int
	ReceivedQuantity  int
	DamagedQuantity   int
}

// Reconciled indica si la línea quedó completamente conciliada
// (recibido + dañado == solicitado).
func (i *StockTransferItem) Reconciled() bool {
	return i.ReceivedQuantity+i.DamagedQuantity == i.RequestedQuantity
}

// FullyReconciled indica si todas las líneas del traslado quedaron conciliadas.
// Solo entonces el traslado puede llegar a RECEIVED.
func (t *StockTransfer) FullyReconciled() bool {
	for _, item := range t.Items {
		if !item.Reconciled() {
			return false
		}
	}
	return true
}

// SourceLocationID ubicación de origen del stock: bodega si está definida, si no la tienda.
func (t *StockTransfer) SourceLocationID() string {
	if t.FromWarehouseID != "" {
		return t.FromWarehouseID
	}
	return t.FromStoreID
}

// DestinationLocationID ubicación de destino del stock.
func (t *StockTransfer) DestinationLocationID() string {
	if t.ToWarehouseID != "" {
		return t.ToWarehouseID
	}
	return t.ToStoreID
}

// DetermineTransferType deduce el tipo según si origen/destino son bodegas.
func DetermineTransferType(fromWarehouseID, toWarehouseID string) TransferType {
	switch {
	case fromWarehouseID != "" && toWarehouseID != "":
		return TransferWarehouseToWarehouse
	case fromWarehouseID != "":
		return TransferWarehouseToStore
	case toWarehouseID != "":
		return TransferStoreToWarehouse
	default:
		return TransferStoreToStore
	}
}
