package redisx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "docker.io/redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate redis container: %v", err)
		}
	})

	addr, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	rdb, err := New(ctx, addr, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestSessions(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	s := &Sessions{RDB: rdb}

	token, err := s.Create(ctx, "user-1")
	require.NoError(t, err)

	uid, err := s.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)

	ttl, err := rdb.TTL(ctx, "session:"+token).Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl, "zero TTL keeps the session")

	require.NoError(t, s.Delete(ctx, token))
	_, err = s.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestIdempotency(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	idem := &Idempotency{RDB: rdb}

	_, claimed, err := idem.Begin(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, claimed)

	_, _, err = idem.Begin(ctx, "k1")
	assert.ErrorIs(t, err, ErrInFlight)

	require.NoError(t, idem.Finish(ctx, "k1", []byte(`{"purchase_id":"PUR-1"}`)))
	stored, claimed, err := idem.Begin(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.JSONEq(t, `{"purchase_id":"PUR-1"}`, string(stored))

	_, claimed, err = idem.Begin(ctx, "k2")
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, idem.Abandon(ctx, "k2"))
	_, claimed, err = idem.Begin(ctx, "k2")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestIdempotencyClaimExpiresQuickly(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	idem := &Idempotency{RDB: rdb, InFlightTTL: time.Second}

	_, claimed, err := idem.Begin(ctx, "crashed")
	require.NoError(t, err)
	require.True(t, claimed)
	ttl, err := rdb.TTL(ctx, "idem:purchase:crashed").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Second)

	// the claimant never finishes; the key frees itself
	assert.Eventually(t, func() bool {
		_, claimed, err := idem.Begin(ctx, "crashed")
		return err == nil && claimed
	}, 5*time.Second, 100*time.Millisecond)

	require.NoError(t, idem.Finish(ctx, "crashed", []byte(`{}`)))
	ttl, err = rdb.TTL(ctx, "idem:purchase:crashed").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Hour, "a finished response is kept for the full window")
}

func TestDeduper(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	d := &Deduper{RDB: rdb, Service: "store-api"}

	first, err := d.FirstSeen(ctx, "ev-1")
	require.NoError(t, err)
	assert.True(t, first)

	first, err = d.FirstSeen(ctx, "ev-1")
	require.NoError(t, err)
	assert.False(t, first)

	n, err := rdb.Exists(ctx, "dedup:store-api:ev-1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
