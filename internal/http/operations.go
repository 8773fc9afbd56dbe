package http

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/usmankhan616/Smart-Task-Planner/internal/planner"
)

// operationSubject builds the NATS subject for one lifecycle event.
func operationSubject(opID, event string) string {
	return fmt.Sprintf("plans.operations.%s.%s", opID, event)
}

// defaultOperationRetention is how long a terminal operation stays pollable
// before it is dropped from memory. Plans themselves are persisted; only the
// operation handle expires.
const defaultOperationRetention = time.Hour

// Tracker is the in-process deferred-execution facility: it tracks one
// operation per submitted goal and publishes lifecycle events to NATS for
// observers. It is deliberately not a job queue; dispatch is a goroutine per
// goal, owned by the HTTP layer.
type Tracker struct {
	nc        *nats.Conn
	logger    *zap.Logger
	metrics   *Metrics
	retention time.Duration

	operations sync.Map // operation id -> *trackedOperation
}

// trackedOperation guards one operation's mutable state.
type trackedOperation struct {
	mu sync.Mutex
	op Operation
}

// NewTracker builds a tracker. nc may be nil; lifecycle events are then
// skipped and only in-memory state is kept. metrics may be nil.
func NewTracker(nc *nats.Conn, logger *zap.Logger, metrics *Metrics) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{nc: nc, logger: logger, metrics: metrics, retention: defaultOperationRetention}
}

// Create registers a pending operation for goal and publishes the created
// event. Returns the operation snapshot.
func (t *Tracker) Create(goal, owner string) Operation {
	now := time.Now().UTC()
	tracked := &trackedOperation{op: Operation{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Goal:      goal,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	}}

	t.operations.Store(tracked.op.ID, tracked)
	t.metrics.OperationStarted()
	t.publish(tracked.op, "created")
	return tracked.op
}

// Started moves the operation to running.
func (t *Tracker) Started(id string) {
	t.update(id, "started", func(op *Operation) {
		op.Status = StatusRunning
	})
}

// Completed records the finished plan and whether it was cache-served.
func (t *Tracker) Completed(id string, plan *planner.Plan, cached bool) {
	t.metrics.OperationFinished(string(StatusCompleted))
	t.update(id, "completed", func(op *Operation) {
		op.Status = StatusCompleted
		op.Plan = plan
		op.Cached = cached
	})
	t.scheduleCleanup(id)
}

// Failed records a terminal error for the operation.
func (t *Tracker) Failed(id string, errMsg string) {
	t.metrics.OperationFinished(string(StatusFailed))
	t.update(id, "failed", func(op *Operation) {
		op.Status = StatusFailed
		op.Error = errMsg
	})
	t.scheduleCleanup(id)
}

// scheduleCleanup drops a terminal operation after the retention window so
// the tracker does not grow without bound. Callers that still hold the
// operation id get a 404 afterwards, same as an id that never existed.
func (t *Tracker) scheduleCleanup(id string) {
	time.AfterFunc(t.retention, func() {
		t.operations.Delete(id)
	})
}

// Get returns a snapshot of the operation, if known.
func (t *Tracker) Get(id string) (Operation, bool) {
	value, ok := t.operations.Load(id)
	if !ok {
		return Operation{}, false
	}
	tracked := value.(*trackedOperation)
	tracked.mu.Lock()
	defer tracked.mu.Unlock()
	return tracked.op, true
}

func (t *Tracker) update(id, event string, apply func(*Operation)) {
	value, ok := t.operations.Load(id)
	if !ok {
		t.logger.Warn("update for unknown operation", zap.String("operation_id", id))
		return
	}

	tracked := value.(*trackedOperation)
	tracked.mu.Lock()
	apply(&tracked.op)
	tracked.op.UpdatedAt = time.Now().UTC()
	snapshot := tracked.op
	tracked.mu.Unlock()

	t.publish(snapshot, event)
}

// publish sends one lifecycle event. Event delivery is best-effort: a NATS
// hiccup must not fail the operation it describes.
func (t *Tracker) publish(op Operation, event string) {
	if t.nc == nil {
		return
	}

	data, err := json.Marshal(op)
	if err != nil {
		t.logger.Warn("failed to marshal operation event",
			zap.String("operation_id", op.ID),
			zap.String("event", event),
			zap.Error(err))
		return
	}

	if err := t.nc.Publish(operationSubject(op.ID, event), data); err != nil {
		t.logger.Warn("failed to publish operation event",
			zap.String("operation_id", op.ID),
			zap.String("event", event),
			zap.Error(err))
	}
}
