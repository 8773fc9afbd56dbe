package planner

import (
	"time"

	"github.com/google/uuid"
)

// TaskBreakdown is the canonical unit of a plan: one task with all fields
// populated. After synthesis completes every field is non-empty; missing
// provider output is defaulted, never left blank.
type TaskBreakdown struct {
	TaskName     string `json:"task_name"`
	Description  string `json:"description"`
	Duration     string `json:"duration"`
	Dependencies string `json:"dependencies"`
	Phase        string `json:"phase"`
	Priority     string `json:"priority"`
}

// Source records which synthesis stage produced a plan.
type Source string

const (
	// SourceMultiModel marks the draft-then-elaborate path.
	SourceMultiModel Source = "multi_model"
	// SourceSingleShot marks the single-call failover path.
	SourceSingleShot Source = "single_shot"
	// SourceFallback marks the deterministic static fallback.
	SourceFallback Source = "fallback"
)

// Plan is an ordered sequence of task breakdowns for one goal. It is created
// once per synthesis and immutable thereafter.
type Plan struct {
	ID        string          `json:"id"`
	Goal      string          `json:"goal"`
	Tasks     []TaskBreakdown `json:"tasks"`
	Source    Source          `json:"source"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewPlan stamps a fresh identifier and creation time onto a synthesized
// task list.
func NewPlan(goal string, tasks []TaskBreakdown, source Source) *Plan {
	return &Plan{
		ID:        uuid.NewString(),
		Goal:      goal,
		Tasks:     tasks,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// Degraded reports whether the plan came from the static fallback rather
// than a generation backend. Degraded plans are served and persisted but
// never cached, so a transient outage cannot calcify into stale answers.
func (p *Plan) Degraded() bool {
	return p.Source == SourceFallback
}

// Canonical enumeration values. Provider output is not forced into these
// sets; the helpers exist for logging and reporting.
var (
	canonicalPhases = map[string]struct{}{
		"Planning":       {},
		"Research":       {},
		"Design":         {},
		"Implementation": {},
		"Testing":        {},
		"Launch":         {},
		"Maintenance":    {},
	}

	canonicalPriorities = map[string]struct{}{
		"high":   {},
		"medium": {},
		"low":    {},
	}
)

// IsCanonicalPhase reports whether phase is one of the documented project
// phases.
func IsCanonicalPhase(phase string) bool {
	_, ok := canonicalPhases[phase]
	return ok
}

// IsCanonicalPriority reports whether priority is one of high, medium, low.
func IsCanonicalPriority(priority string) bool {
	_, ok := canonicalPriorities[priority]
	return ok
}
