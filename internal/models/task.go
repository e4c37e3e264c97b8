// internal/models/task.go
package models

import (
	"errors"
	"time"
)

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusTodo  TaskStatus = "TODO"
	StatusDoing TaskStatus = "DOING"
	StatusDone  TaskStatus = "DONE"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{StatusTodo, StatusDoing, StatusDone}

var ErrInvalidStatus = errors.New("Invalid task status")

// ParseTaskStatus normalizes untrusted input (form values, query params) into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// Label is the human-readable name shown in badges and selects.
func (s TaskStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To do"
	case StatusDoing:
		return "Doing"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// Task represents the structure of a task in the system.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TaskInput is a validated create/update payload.
type TaskInput struct {
	Title         string
	Content       string
	Status        TaskStatus
	AISuggestions []string
}

// Summary holds aggregate counts over the whole collection.
type Summary struct {
	Total int `json:"total"`
	Todo  int `json:"todo"`
	Doing int `json:"doing"`
	Done  int `json:"done"`
}

func Summarize(tasks []Task) Summary {
	s := Summary{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case StatusTodo:
			s.Todo++
		case StatusDoing:
			s.Doing++
		case StatusDone:
			s.Done++
		}
	}
	return s
}

// Count returns the number of tasks with the given status.
func (s Summary) Count(st TaskStatus) int {
	switch st {
	case StatusTodo:
		return s.Todo
	case StatusDoing:
		return s.Doing
	case StatusDone:
		return s.Done
	}
	return 0
}
