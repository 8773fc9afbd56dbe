package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/usmankhan616/Smart-Task-Planner/internal/planner"
)

// NATS is the production PlanCache: a JetStream key-value bucket with
// server-side TTL expiry. Logical keys are encoded to the KV key alphabet;
// the server evicts entries, so Get never has to reason about staleness.
type NATS struct {
	kv      nats.KeyValue
	logger  *zap.Logger
	metrics *Metrics
}

// NewNATS binds (creating if needed) the named KV bucket on nc. The bucket's
// TTL is fixed at creation; reusing an existing bucket keeps its original
// TTL, which is logged when it differs from the requested one.
func NewNATS(nc *nats.Conn, bucket string, ttl time.Duration, logger *zap.Logger, metrics *Metrics) (*NATS, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      bucket,
			Description: "plan cache keyed by normalized goal",
			TTL:         ttl,
			History:     1,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("bind cache bucket %q: %w", bucket, err)
	}

	if status, serr := kv.Status(); serr == nil && status.TTL() != ttl {
		logger.Info("cache bucket already exists with a different TTL",
			zap.String("bucket", bucket),
			zap.Duration("bucket_ttl", status.TTL()),
			zap.Duration("requested_ttl", ttl))
	}

	return &NATS{kv: kv, logger: logger, metrics: metrics}, nil
}

// Get fetches and decodes the cached plan for goal. A missing or expired key
// is a plain miss; anything else is a backend error the caller should log
// and treat as a miss.
func (n *NATS) Get(ctx context.Context, goal string) (*planner.Plan, bool, error) {
	key := encodeKey(Key(goal))

	entry, err := n.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		n.metrics.RecordMiss(ctx, "nats")
		return nil, false, nil
	}
	if err != nil {
		n.metrics.RecordError(ctx, "nats", "get")
		return nil, false, fmt.Errorf("cache get %q: %w", key, err)
	}

	var plan planner.Plan
	if err := json.Unmarshal(entry.Value(), &plan); err != nil {
		// A corrupt entry is useless; drop it so the next write starts clean.
		n.metrics.RecordError(ctx, "nats", "decode")
		if derr := n.kv.Delete(key); derr != nil {
			n.logger.Warn("failed to delete corrupt cache entry",
				zap.String("key", key),
				zap.Error(derr))
		}
		return nil, false, fmt.Errorf("decode cached plan %q: %w", key, err)
	}

	n.metrics.RecordHit(ctx, "nats")
	return &plan, true, nil
}

// Put serializes plan and writes it under the goal's encoded key. The bucket
// TTL governs expiry.
func (n *NATS) Put(ctx context.Context, goal string, plan *planner.Plan) error {
	key := encodeKey(Key(goal))

	data, err := json.Marshal(plan)
	if err != nil {
		n.metrics.RecordError(ctx, "nats", "encode")
		return fmt.Errorf("encode plan for cache: %w", err)
	}

	if _, err := n.kv.Put(key, data); err != nil {
		n.metrics.RecordError(ctx, "nats", "put")
		return fmt.Errorf("cache put %q: %w", key, err)
	}

	n.metrics.RecordPut(ctx, "nats")
	return nil
}

var _ PlanCache = (*NATS)(nil)
