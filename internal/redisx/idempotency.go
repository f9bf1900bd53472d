package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idemPending = "pending"

var ErrInFlight = errors.New("request with this idempotency key is still in progress")

// Idempotency remembers the response of a request under a client-chosen key.
// A claim lives for InFlightTTL (TTLInFlight when zero) until Finish stores
// the response for TTLIdempotency, so a crashed request frees its key soon.
type Idempotency struct {
	RDB         redis.Cmdable
	InFlightTTL time.Duration
}

func (i *Idempotency) inFlightTTL() time.Duration {
	if i.InFlightTTL > 0 {
		return i.InFlightTTL
	}
	return TTLInFlight
}

// Begin claims key. If an earlier request already finished under it, the
// stored response is returned with claimed=false.
func (i *Idempotency) Begin(ctx context.Context, key string) (stored []byte, claimed bool, err error) {
	k := fmt.Sprintf(KeyIdemPurchase, key)
	ok, err := i.RDB.SetNX(ctx, k, idemPending, i.inFlightTTL()).Result()
	if err != nil {
		return nil, false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if ok {
		return nil, true, nil
	}
	v, err := i.RDB.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return i.Begin(ctx, key)
	}
	if err != nil {
		return nil, false, fmt.Errorf("read idempotency key: %w", err)
	}
	if string(v) == idemPending {
		return nil, false, ErrInFlight
	}
	return v, false, nil
}

// Finish stores the response for key.
func (i *Idempotency) Finish(ctx context.Context, key string, response []byte) error {
	return i.RDB.Set(ctx, fmt.Sprintf(KeyIdemPurchase, key), response, TTLIdempotency).Err()
}

// Abandon releases key so the client may retry.
func (i *Idempotency) Abandon(ctx context.Context, key string) error {
	return i.RDB.Del(ctx, fmt.Sprintf(KeyIdemPurchase, key)).Err()
}
