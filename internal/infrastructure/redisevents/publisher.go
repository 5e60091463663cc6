package redisevents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/multitienda-api/internal/application/events"
	"github.com/jhoicas/multitienda-api/pkg/config"
)

var _ events.Publisher = (*Publisher)(nil)

// Publisher publica eventos de transición en un stream de Redis (XADD) para el
// colaborador de reportes. Entrega al menos una vez: los consumidores deduplican
// por (entity_id, new_status).
type Publisher struct {
	client *redis.Client
	stream string
}

// New construye el publisher y verifica la conexión.
func New(ctx context.Context, cfg config.RedisConfig) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Publisher{client: client, stream: cfg.Stream}, nil
}

// PublishTransition añade el evento al stream con el payload JSON completo más
// campos planos para filtrar sin deserializar.
func (p *Publisher) PublishTransition(ctx context.Context, ev events.TransitionEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"entity_type": ev.EntityType,
			"entity_id":   ev.EntityID,
			"new_status":  ev.NewStatus,
			"payload":     string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publicar evento en stream: %w", err)
	}
	return nil
}

// Close cierra la conexión con Redis.
func (p *Publisher) Close() error {
	return p.client.Close()
}
