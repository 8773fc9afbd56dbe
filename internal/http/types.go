package http

import (
	"time"

	"github.com/usmankhan616/Smart-Task-Planner/internal/planner"
)

// GeneratePlanRequest is the body of POST /api/v1/plans.
type GeneratePlanRequest struct {
	Goal  string `json:"goal"`
	Owner string `json:"owner,omitempty"`
}

// GeneratePlanAccepted acknowledges an accepted goal; the caller polls the
// operation endpoint for the result.
type GeneratePlanAccepted struct {
	OperationID string `json:"operation_id"`
}

// OperationStatus is the lifecycle state of a submitted goal.
type OperationStatus string

const (
	StatusPending   OperationStatus = "pending"
	StatusRunning   OperationStatus = "running"
	StatusCompleted OperationStatus = "completed"
	StatusFailed    OperationStatus = "failed"
)

// Operation is the externally visible state of one plan-generation request.
type Operation struct {
	ID        string          `json:"id"`
	Status    OperationStatus `json:"status"`
	Goal      string          `json:"goal"`
	Owner     string          `json:"owner,omitempty"`
	Plan      *planner.Plan   `json:"plan,omitempty"`
	Cached    bool            `json:"cached,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// HealthResponse reports daemon component health.
type HealthResponse struct {
	Status    string `json:"status"`
	Providers int    `json:"providers"`
	Cache     string `json:"cache"`
	Store     string `json:"store"`
}

// ErrorResponse carries a machine-readable error message.
type ErrorResponse struct {
	Error string `json:"error"`
}
