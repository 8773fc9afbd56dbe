// Package cache memoizes finished plans by normalized goal text.
//
// The cache sits in front of the synthesizer: a live entry short-circuits
// generation entirely. Entries expire after a fixed TTL and fallback-sourced
// plans are never written, so a transient provider outage cannot calcify
// into an hour of degraded answers.
package cache

import (
	"context"
	"strings"

	"github.com/usmankhan616/Smart-Task-Planner/internal/planner"
)

// PlanCache is the memoization contract consumed by the plan service. Both
// backends treat their TTL as fixed at construction; Put takes no per-call
// expiry.
type PlanCache interface {
	// Get returns the live plan cached for goal, if any. A backend error
	// is returned alongside a miss so callers can log it and continue.
	Get(ctx context.Context, goal string) (*planner.Plan, bool, error)

	// Put stores plan under the goal's normalized key, overwriting any
	// previous entry.
	Put(ctx context.Context, goal string, plan *planner.Plan) error
}

// Key derives the logical cache key for a goal: the "plan:" prefix plus the
// lower-cased, trimmed goal text. Normalization applies to the key only; the
// cached plan keeps the goal's original casing.
func Key(goal string) string {
	return "plan:" + strings.ToLower(strings.TrimSpace(goal))
}
