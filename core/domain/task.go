// ABOUTME: Task domain model tracks one background fetch-and-extract job
// ABOUTME: Tasks move pending -> processing -> completed|error

package domain

import "time"

// TaskState is the lifecycle state of a background task
type TaskState string

const (
	TaskPending    TaskState = "pending"
	TaskProcessing TaskState = "processing"
	TaskCompleted  TaskState = "completed"
	TaskError      TaskState = "error"
)

// IsTerminal reports whether no further transitions happen from s
func (s TaskState) IsTerminal() bool {
	return s == TaskCompleted || s == TaskError
}

// Task is a background job for one URL
type Task struct {
	ID         string       `json:"id"`
	URL        string       `json:"url"`
	State      TaskState    `json:"state"`
	EnqueuedAt time.Time    `json:"enqueuedAt"`
	StartedAt  time.Time    `json:"startedAt,omitempty"`
	FinishedAt time.Time    `json:"finishedAt,omitempty"`
	Result     *FetchResult `json:"result,omitempty"`
}

// QueueStatus counts tasks per state
type QueueStatus struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Error      int `json:"error"`
	Total      int `json:"total"`
}
