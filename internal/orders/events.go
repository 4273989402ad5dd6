package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderCancelled = "OrderCancelled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// OrderCreatedPayload carries the full post-commit view so the notifier can
// render the bill without going back to the database.
type OrderCreatedPayload struct {
	Order OrderView `json:"order"`
}

type OrderCancelledPayload struct {
	OrderID     int64 `json:"order_id"`
	CustomerID  int64 `json:"customer_id"`
	TotalAmount int64 `json:"total_amount"`
}
