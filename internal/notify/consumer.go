package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/saptarimadira/trader-backend/internal/kafkax"
	"github.com/saptarimadira/trader-backend/internal/orders"
	"github.com/saptarimadira/trader-backend/internal/redisx"
)

// Deduper remembers processed event ids so a redelivered message does not
// send a second bill.
type Deduper interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string, ttl time.Duration) error
}

type RedisDeduper struct{ Client *redis.Client }

func (d *RedisDeduper) Seen(ctx context.Context, key string) (bool, error) {
	return redisx.Exists(ctx, d.Client, key)
}

func (d *RedisDeduper) Mark(ctx context.Context, key string, ttl time.Duration) error {
	return d.Client.Set(ctx, key, "1", ttl).Err()
}

// Service is the consumer side of the notification pipeline: it turns
// order.created events into confirmation emails. Delivery is best-effort;
// every failure is logged and the message is still committed.
type Service struct {
	Dedup      Deduper
	Sender     EmailSender
	AdminEmail string
	Log        *zap.Logger
}

func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Log.Warn("dropping undecodable event", zap.Error(err))
		return nil
	}
	if env.EventType != orders.EventOrderCreated {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if seen, _ := s.Dedup.Seen(ctx, dkey); seen {
		return nil
	}
	if err := s.Dedup.Mark(ctx, dkey, redisx.TTLDedup); err != nil {
		s.Log.Warn("dedup mark failed", zap.Error(err))
	}

	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		s.Log.Warn("dropping event with bad payload",
			zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}

	subject, body, err := RenderBill(p.Order)
	if err != nil {
		s.Log.Error("bill render failed", zap.Int64("order_id", p.Order.ID), zap.Error(err))
		return nil
	}

	if p.Order.CustomerEmail != "" {
		if err := s.Sender.Send(ctx, p.Order.CustomerEmail, subject, body); err != nil {
			s.Log.Error("customer email failed",
				zap.Int64("order_id", p.Order.ID),
				zap.String("to", p.Order.CustomerEmail), zap.Error(err))
		} else {
			s.Log.Info("customer email sent", zap.Int64("order_id", p.Order.ID))
		}
	}

	adminSubject := fmt.Sprintf("New Order Received - #%d | %s", p.Order.ID, p.Order.CustomerName)
	if err := s.Sender.Send(ctx, s.AdminEmail, adminSubject, body); err != nil {
		s.Log.Error("admin email failed", zap.Int64("order_id", p.Order.ID), zap.Error(err))
	}

	return nil
}
