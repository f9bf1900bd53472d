package redisx

import "time"

const (
	// Session token: session:{token} -> user_id
	KeySession = "session:%s"

	// Idempotency purchase: idem:purchase:{key} -> receipt JSON (or "pending" while in flight)
	KeyIdemPurchase = "idem:purchase:%s"

	// Dedup change events: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLInFlight    = 30 * time.Second
	TTLDedup       = 48 * time.Hour
)
