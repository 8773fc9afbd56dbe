package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usmankhan616/Smart-Task-Planner/internal/planner"
)

func testPlan(goal string) *planner.Plan {
	return planner.NewPlan(goal, []planner.TaskBreakdown{{
		TaskName:     "Define Requirements & Constraints",
		Description:  "Clarify scope for " + goal,
		Duration:     "1-2 days",
		Dependencies: "None",
		Phase:        "Planning",
		Priority:     "high",
	}}, planner.SourceSingleShot)
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour, 16, nil)

	goal := "Launch a podcast"
	require.NoError(t, m.Put(ctx, goal, testPlan(goal)))

	got, ok, err := m.Get(ctx, goal)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, goal, got.Goal)
	assert.Len(t, got.Tasks, 1)
}

func TestMemoryKeyNormalization(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour, 16, nil)

	require.NoError(t, m.Put(ctx, "Launch a Podcast", testPlan("Launch a Podcast")))

	// Same goal modulo case and surrounding whitespace hits the same key.
	got, ok, err := m.Get(ctx, "  launch a podcast ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Launch a Podcast", got.Goal)
}

func TestMemoryMiss(t *testing.T) {
	_, ok, err := NewMemory(time.Hour, 16, nil).Get(context.Background(), "never stored")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour, 16, nil)

	now := time.Now()
	m.now = func() time.Time { return now }
	require.NoError(t, m.Put(ctx, "goal", testPlan("goal")))

	// Still live just before the TTL elapses.
	m.now = func() time.Time { return now.Add(time.Hour - time.Second) }
	_, ok, err := m.Get(ctx, "goal")
	require.NoError(t, err)
	assert.True(t, ok)

	m.now = func() time.Time { return now.Add(time.Hour + time.Second) }
	_, ok, err = m.Get(ctx, "goal")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, m.Len(), "expired entry should be evicted on read")
}

func TestMemoryEvictsWhenFull(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour, 2, nil)

	require.NoError(t, m.Put(ctx, "first", testPlan("first")))
	require.NoError(t, m.Put(ctx, "second", testPlan("second")))
	require.NoError(t, m.Put(ctx, "third", testPlan("third")))

	assert.Equal(t, 2, m.Len())

	// The oldest write expires soonest, so it is the eviction victim.
	_, ok, err := m.Get(ctx, "first")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryOverwrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour, 16, nil)

	require.NoError(t, m.Put(ctx, "goal", testPlan("goal")))
	fresh := testPlan("goal")
	require.NoError(t, m.Put(ctx, "goal", fresh))

	got, ok, err := m.Get(ctx, "goal")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fresh.ID, got.ID)
	assert.Equal(t, 1, m.Len())
}

func TestNopNeverHits(t *testing.T) {
	ctx := context.Background()
	var n Nop
	require.NoError(t, n.Put(ctx, "goal", testPlan("goal")))
	_, ok, err := n.Get(ctx, "goal")
	require.NoError(t, err)
	assert.False(t, ok)
}
