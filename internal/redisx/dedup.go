package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Deduper records processed event ids per service.
type Deduper struct {
	RDB     redis.Cmdable
	Service string
}

func (d *Deduper) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	return d.RDB.SetNX(ctx, fmt.Sprintf(KeyDedup, d.Service, eventID), 1, TTLDedup).Result()
}
