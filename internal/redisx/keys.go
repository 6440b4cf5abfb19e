package redisx

import "time"

const (
	// Idempotent order create: idem:order:create:{user_id}:{key} -> order_id
	KeyIdemOrderCreate = "idem:order:create:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Low-stock alert throttle: alert:lowstock:{product_id}
	KeyLowStockAlert = "alert:lowstock:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
	TTLAlert       = 6 * time.Hour
)
