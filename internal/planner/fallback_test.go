package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackTasks(t *testing.T) {
	goal := "Launch a podcast"
	tasks := fallbackTasks(goal)

	require.Len(t, tasks, 6)
	assert.Equal(t, "Define Goal and Scope", tasks[0].TaskName)
	assert.Equal(t, "Review and Adjust", tasks[5].TaskName)
	assert.Contains(t, tasks[0].Description, goal)

	// Every task arrives fully populated so downstream consumers never
	// see a blank field.
	for i, task := range tasks {
		assert.NotEmpty(t, task.TaskName, "task %d name", i)
		assert.NotEmpty(t, task.Description, "task %d description", i)
		assert.NotEmpty(t, task.Duration, "task %d duration", i)
		assert.NotEmpty(t, task.Dependencies, "task %d dependencies", i)
		assert.NotEmpty(t, task.Phase, "task %d phase", i)
		assert.NotEmpty(t, task.Priority, "task %d priority", i)
	}

	assert.Equal(t, "None", tasks[0].Dependencies)
	assert.Equal(t, "Define Goal and Scope", tasks[1].Dependencies)
}

func TestFallbackTasksTruncatesLongGoal(t *testing.T) {
	goal := strings.Repeat("x", 500)
	tasks := fallbackTasks(goal)

	assert.Contains(t, tasks[0].Description, strings.Repeat("x", fallbackGoalLimit)+"...")
	assert.NotContains(t, tasks[0].Description, strings.Repeat("x", fallbackGoalLimit+1))
}

func TestSyntheticElaboration(t *testing.T) {
	names := []string{"Research market", "Build MVP", "Launch"}
	goal := "Start a bakery"

	first := syntheticElaboration(goal, names, 0)
	assert.Equal(t, "Research market", first.TaskName)
	assert.Equal(t, "None", first.Dependencies)
	assert.Equal(t, "Planning", first.Phase)
	assert.Equal(t, "2-3 days", first.Duration)
	assert.Equal(t, "medium", first.Priority)
	assert.Contains(t, first.Description, "Plan and execute: Research market")
	assert.Contains(t, first.Description, goal)

	second := syntheticElaboration(goal, names, 1)
	assert.Equal(t, "Research market", second.Dependencies)
	assert.Equal(t, "Implementation", second.Phase)

	third := syntheticElaboration(goal, names, 2)
	assert.Equal(t, "Build MVP", third.Dependencies)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "ab", truncateRunes("abcdef", 2))
	// Multibyte runes are never split mid-sequence.
	assert.Equal(t, "héllo", truncateRunes("héllo wörld", 5))
}
