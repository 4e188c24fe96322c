package model

import "time"

// Run statuses as stored in the registry.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one registered benchmark run. Label doubles as the run's
// directory name under the logs root (a timestamp like 20250520_142530).
type Run struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Backend     string    `json:"backend"`
	Model       string    `json:"model"`
	PromptStyle string    `json:"prompt_style"`
	Status      string    `json:"status"`
	Total       int       `json:"total"`
	Failed      int       `json:"failed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
