// Package statuscache keeps the redis order-status cache warm from the order
// event stream, so status reads don't have to hit Postgres.
package statuscache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/VinitPatil01/BookStoreApp/internal/kafka"
	"github.com/VinitPatil01/BookStoreApp/internal/orders"
	"github.com/VinitPatil01/BookStoreApp/internal/redisx"
)

// Cache is the slice of redis this service needs.
type Cache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
}

type statusDoc struct {
	Status string `json:"status"`
}

type Service struct {
	Cache Cache
	Log   *slog.Logger
}

// HandleOrderEvent is the consumer handler for all order.* topics.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	var status orders.Status
	switch env.EventType {
	case orders.EventOrderPlaced:
		status = orders.StatusPending
	case orders.EventOrderCancelled:
		status = orders.StatusCancelled
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		status = orders.Status(p.Status)
	default:
		return nil // ignore
	}

	// dedup by event id; a replayed event must not clobber a newer status
	dkey := fmt.Sprintf(redisx.KeyDedup, "statuscache", env.EventID)
	fresh, err := s.Cache.SetNX(ctx, dkey, "1", redisx.TTLDedup)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	key := fmt.Sprintf(redisx.KeyOrderStatus, env.CorrelationID)
	b, _ := json.Marshal(statusDoc{Status: string(status)})
	if err := s.Cache.Set(ctx, key, b, redisx.TTLStatusCache); err != nil {
		return err
	}
	s.Log.DebugContext(ctx, "status cache updated", "order_id", env.CorrelationID, "status", status)
	return nil
}
