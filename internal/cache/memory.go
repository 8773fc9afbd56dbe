package cache

import (
	"context"
	"sync"
	"time"

	"github.com/usmankhan616/Smart-Task-Planner/internal/planner"
)

// memoryEntry is one cached plan with its expiry stamp.
type memoryEntry struct {
	plan      *planner.Plan
	expiresAt time.Time
}

// Memory is a process-local PlanCache for tests and single-node development.
// Expired entries are evicted lazily on read plus a sweep on every write;
// when the map is full the entry closest to expiry is dropped first.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
	metrics    *Metrics

	// now is swappable so expiry tests do not need to sleep.
	now func() time.Time
}

// NewMemory builds an in-memory cache. metrics may be nil.
func NewMemory(ttl time.Duration, maxEntries int, metrics *Metrics) *Memory {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Get returns the live plan for goal. Expired entries are removed on the
// spot and reported as misses.
func (m *Memory) Get(ctx context.Context, goal string) (*planner.Plan, bool, error) {
	key := Key(goal)

	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		m.metrics.RecordMiss(ctx, "memory")
		return nil, false, nil
	}

	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a Put may have refreshed it.
		if current, still := m.entries[key]; still && m.now().After(current.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		m.metrics.RecordMiss(ctx, "memory")
		return nil, false, nil
	}

	m.metrics.RecordHit(ctx, "memory")
	return entry.plan, true, nil
}

// Put stores plan for goal, sweeping expired entries and evicting the entry
// closest to expiry when full.
func (m *Memory) Put(ctx context.Context, goal string, plan *planner.Plan) error {
	key := Key(goal)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.evictSoonest()
	}

	m.entries[key] = memoryEntry{plan: plan, expiresAt: now.Add(m.ttl)}
	m.metrics.RecordPut(ctx, "memory")
	return nil
}

// Len reports the number of entries currently held, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// evictSoonest drops the entry with the earliest expiry. Caller holds the
// write lock.
func (m *Memory) evictSoonest() {
	var victim string
	var soonest time.Time
	first := true
	for k, e := range m.entries {
		if first || e.expiresAt.Before(soonest) {
			victim = k
			soonest = e.expiresAt
			first = false
		}
	}
	if victim != "" {
		delete(m.entries, victim)
	}
}

var _ PlanCache = (*Memory)(nil)

// Nop is a PlanCache that never hits and swallows writes, used when caching
// is disabled by configuration.
type Nop struct{}

func (Nop) Get(context.Context, string) (*planner.Plan, bool, error) { return nil, false, nil }

func (Nop) Put(context.Context, string, *planner.Plan) error { return nil }

var _ PlanCache = Nop{}
