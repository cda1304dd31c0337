package task

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var statusAliases = map[string]Status{
	"pending":      StatusPending,
	"pendente":     StatusPending,
	"in_progress":  StatusInProgress,
	"em_progresso": StatusInProgress,
	"completed":    StatusCompleted,
	"completado":   StatusCompleted,
}

// ParseStatus accepts the canonical spellings and the legacy Portuguese ones.
func ParseStatus(raw string) (Status, bool) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}

// Task is a unit of work owned by one user.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	OwnerID     int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRequest is the payload for a new task.
type CreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Changes is a validated UpdateRequest handed to the repository.
type Changes struct {
	Title       *string
	Description *string
	Status      *Status
}
