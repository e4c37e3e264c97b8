package models

import "time"

type TaskEventType string

const (
	EventTaskCreated TaskEventType = "created"
	EventTaskUpdated TaskEventType = "updated"
	EventTaskDeleted TaskEventType = "deleted"
)

// TaskEvent describes a completed mutation. Task is nil for deletions.
type TaskEvent struct {
	Type   TaskEventType `json:"type"`
	TaskID string        `json:"taskId"`
	Task   *Task         `json:"task,omitempty"`
	At     time.Time     `json:"at"`
}
