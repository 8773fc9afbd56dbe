package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/usmankhan616/Smart-Task-Planner/internal/planner"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "plans.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func storedPlan(goal string) *planner.Plan {
	return planner.NewPlan(goal, []planner.TaskBreakdown{
		{
			TaskName:     "Define Requirements & Constraints",
			Description:  "Clarify scope for " + goal,
			Duration:     "1-2 days",
			Dependencies: "None",
			Phase:        "Planning",
			Priority:     "high",
		},
		{
			TaskName:     "Execute Core Implementation",
			Description:  "Do the main work",
			Duration:     "5-7 days",
			Dependencies: "Define Requirements & Constraints",
			Phase:        "Implementation",
			Priority:     "high",
		},
	}, planner.SourceMultiModel)
}

func TestSaveAndGetPlan(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	plan := storedPlan("Launch a podcast")
	require.NoError(t, store.SavePlan(ctx, plan, "owner-1"))

	got, err := store.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)
	assert.Equal(t, plan.Goal, got.Goal)
	assert.Equal(t, "owner-1", got.Owner)
	assert.Equal(t, planner.SourceMultiModel, got.Source)
	require.Len(t, got.Tasks, 2)
	assert.Equal(t, plan.Tasks[0], got.Tasks[0])
	assert.Equal(t, plan.Tasks[1], got.Tasks[1])
}

func TestSavePlanIdempotentByGoal(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := storedPlan("Launch a podcast")
	require.NoError(t, store.SavePlan(ctx, first, "owner-1"))

	// Same goal, different plan: the original must survive untouched.
	second := storedPlan("Launch a podcast")
	second.Tasks = second.Tasks[:1]
	require.NoError(t, store.SavePlan(ctx, second, "owner-2"))

	got, err := store.GetPlanByGoal(ctx, "Launch a podcast")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "owner-1", got.Owner)
	assert.Len(t, got.Tasks, 2)

	records, err := store.ListPlans(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestGetPlanByGoalExactMatch(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	plan := storedPlan("Launch a podcast")
	require.NoError(t, store.SavePlan(ctx, plan, ""))

	// Goal matching is exact, not normalized.
	_, err := store.GetPlanByGoal(ctx, "launch a podcast")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	got, err := store.GetPlanByGoal(ctx, "Launch a podcast")
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)
}

func TestGetPlanNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetPlan(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestListPlansNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	goals := []string{"first goal", "second goal", "third goal"}
	for _, goal := range goals {
		require.NoError(t, store.SavePlan(ctx, storedPlan(goal), ""))
	}

	records, err := store.ListPlans(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, !records[0].CreatedAt.Before(records[1].CreatedAt))
	for _, record := range records {
		assert.Len(t, record.Tasks, 2, "listing includes task rows in order")
	}

	rest, err := store.ListPlans(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestTaskOrderPreserved(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	plan := planner.NewPlan("ordered goal", []planner.TaskBreakdown{
		{TaskName: "C", Description: "third", Duration: "1 day", Dependencies: "B", Phase: "Testing", Priority: "low"},
		{TaskName: "A", Description: "first", Duration: "1 day", Dependencies: "None", Phase: "Planning", Priority: "high"},
		{TaskName: "B", Description: "second", Duration: "1 day", Dependencies: "A", Phase: "Implementation", Priority: "medium"},
	}, planner.SourceSingleShot)
	require.NoError(t, store.SavePlan(ctx, plan, ""))

	got, err := store.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 3)
	assert.Equal(t, "C", got.Tasks[0].TaskName)
	assert.Equal(t, "A", got.Tasks[1].TaskName)
	assert.Equal(t, "B", got.Tasks[2].TaskName)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("", nil)
	assert.Error(t, err)
}
