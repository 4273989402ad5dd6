package redisx

import "time"

const (
	// Full order view cache: order:view:{order_id} -> JSON response body
	KeyOrderView = "order:view:%d"

	// Notifier dedup: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderView = 5 * time.Minute
	TTLDedup     = 48 * time.Hour
)
