// Package planner turns a free-text goal into a structured project plan.
//
// The synthesizer runs a multi-stage pipeline: a draft pass asks the primary
// backend for bare task names, an elaboration pass expands each name with
// the secondary backend, a single-shot pass over every backend covers draft
// failures, and a deterministic six-task fallback covers full provider
// outage. The pipeline is total: Generate always returns a usable plan and
// absorbs generation-domain failures into degraded output instead of
// propagating them.
package planner
