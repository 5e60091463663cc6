package events

import (
	"context"
	"time"
)

// Tipos de entidad que emiten eventos de transición.
const (
	EntityStockTransfer = "stock_transfer"
	EntityReceivedStock = "received_stock"
	EntityShift         = "shift"
	EntityShiftSwap     = "shift_swap"
)

// TransitionEvent evento de transición de estado de un workflow, para el
// colaborador de reportes. Entrega al menos una vez; los consumidores deben
// deduplicar por (EntityID, NewStatus).
type TransitionEvent struct {
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher define el puerto de publicación de eventos de transición.
// Se invoca después del commit; un fallo de publicación nunca revierte el trabajo
// ya confirmado (se registra y se continúa).
type Publisher interface {
	PublishTransition(ctx context.Context, ev TransitionEvent) error
}

// NopPublisher descarta los eventos. Se usa cuando Redis no está configurado y en tests.
type NopPublisher struct{}

// PublishTransition no hace nada.
func (NopPublisher) PublishTransition(ctx context.Context, ev TransitionEvent) error { return nil }
