package cache

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// startTestNATSServer starts an embedded JetStream-enabled NATS server.
func startTestNATSServer(t *testing.T) *natsserver.Server {
	t.Helper()

	opts := &natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1, // random port
		NoLog:     true,
		NoSigs:    true,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()
	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})

	return server
}

func connectTestCache(t *testing.T, ttl time.Duration) *NATS {
	t.Helper()

	server := startTestNATSServer(t)
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	c, err := NewNATS(nc, "plan_cache_test", ttl, zaptest.NewLogger(t), nil)
	require.NoError(t, err)
	return c
}

func TestNATSRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := connectTestCache(t, time.Hour)

	goal := "Launch a podcast"
	want := testPlan(goal)
	require.NoError(t, c.Put(ctx, goal, want))

	got, ok, err := c.Get(ctx, goal)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Goal, got.Goal)
	assert.Equal(t, want.Source, got.Source)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, want.Tasks[0], got.Tasks[0])
}

func TestNATSMiss(t *testing.T) {
	c := connectTestCache(t, time.Hour)

	_, ok, err := c.Get(context.Background(), "never stored")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNATSKeyNormalization(t *testing.T) {
	ctx := context.Background()
	c := connectTestCache(t, time.Hour)

	require.NoError(t, c.Put(ctx, "Ship The Feature", testPlan("Ship The Feature")))

	_, ok, err := c.Get(ctx, "  ship the feature ")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNATSTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := connectTestCache(t, 500*time.Millisecond)

	require.NoError(t, c.Put(ctx, "short lived", testPlan("short lived")))

	_, ok, err := c.Get(ctx, "short lived")
	require.NoError(t, err)
	require.True(t, ok)

	// The server evicts the key once the bucket TTL elapses.
	assert.Eventually(t, func() bool {
		_, ok, err := c.Get(ctx, "short lived")
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}

func TestNATSOverwrite(t *testing.T) {
	ctx := context.Background()
	c := connectTestCache(t, time.Hour)

	require.NoError(t, c.Put(ctx, "goal", testPlan("goal")))
	fresh := testPlan("goal")
	require.NoError(t, c.Put(ctx, "goal", fresh))

	got, ok, err := c.Get(ctx, "goal")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fresh.ID, got.ID)
}

func TestNATSCorruptEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	c := connectTestCache(t, time.Hour)

	key := encodeKey(Key("broken"))
	_, err := c.kv.Put(key, []byte("not json"))
	require.NoError(t, err)

	_, ok, err := c.Get(ctx, "broken")
	require.Error(t, err)
	assert.False(t, ok)

	// The corrupt entry is deleted so the next read is a clean miss.
	_, ok, err = c.Get(ctx, "broken")
	require.NoError(t, err)
	assert.False(t, ok)
}
