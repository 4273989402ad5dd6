package notify

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/saptarimadira/trader-backend/internal/kafkax"
	"github.com/saptarimadira/trader-backend/internal/orders"
)

// KafkaDispatcher satisfies orders.Dispatcher by publishing order events.
// Publish only pushes onto the producer's inbox channel, so the hand-off is
// non-blocking and a broker outage can never fail an order.
type KafkaDispatcher struct {
	Created   *kafkax.Producer
	Cancelled *kafkax.Producer
	Service   string
}

func (d *KafkaDispatcher) OrderCreated(v *orders.OrderView) {
	env := envelope(orders.EventOrderCreated, d.Service, v.ID,
		kafkax.MustMarshal(orders.OrderCreatedPayload{Order: *v}))
	d.Created.Publish(orders.PartitionKey(v.ID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (d *KafkaDispatcher) OrderCancelled(o *orders.Order) {
	env := envelope(orders.EventOrderCancelled, d.Service, o.ID,
		kafkax.MustMarshal(orders.OrderCancelledPayload{
			OrderID:     o.ID,
			CustomerID:  o.CustomerID,
			TotalAmount: o.TotalAmount,
		}))
	d.Cancelled.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCancelled)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func envelope(eventType, producer string, orderID int64, payload []byte) orders.Envelope {
	return orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload:       payload,
	}
}
