package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"todoboard/internal/models"
	"todoboard/internal/repositories"
)

// TaskService defines the interface for task-related business logic.
type TaskService interface {
	List(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id string) (*models.Task, error)
	// Create and Update report whether AI suggestions were saved as extra tasks.
	Create(ctx context.Context, in models.TaskInput) (*models.Task, bool, error)
	Update(ctx context.Context, id string, in models.TaskInput) (*models.Task, bool, error)
	// Delete reports false when nothing was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// EventPublisher receives every completed mutation (realtime.TaskHub).
type EventPublisher interface {
	Publish(ev models.TaskEvent)
}

type TaskServiceOption func(*taskService)

func WithEvents(p EventPublisher) TaskServiceOption {
	return func(s *taskService) { s.events = p }
}

func WithNotifier(n Notifier) TaskServiceOption {
	return func(s *taskService) { s.notifier = n }
}

func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *taskService) { s.now = now }
}

func WithIDGenerator(gen func() string) TaskServiceOption {
	return func(s *taskService) { s.newID = gen }
}

type taskService struct {
	repo     repositories.TaskRepository
	events   EventPublisher
	notifier Notifier
	now      func() time.Time
	newID    func() string
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(repo repositories.TaskRepository, opts ...TaskServiceOption) TaskService {
	s := &taskService{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *taskService) List(ctx context.Context) ([]models.Task, error) {
	return s.repo.List(ctx)
}

func (s *taskService) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) Create(ctx context.Context, in models.TaskInput) (*models.Task, bool, error) {
	task, err := s.insert(ctx, in.Title, in.Content, in.Status)
	if err != nil {
		return nil, false, err
	}
	aiAdded, err := s.addSuggestions(ctx, in.AISuggestions)
	if err != nil {
		return task, false, err
	}
	return task, aiAdded, nil
}

func (s *taskService) Update(ctx context.Context, id string, in models.TaskInput) (*models.Task, bool, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	existing.Title = in.Title
	existing.Content = in.Content
	existing.Status = in.Status
	existing.UpdatedAt = s.stamp(existing.CreatedAt)

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, false, err
	}
	s.emit(ctx, models.TaskEvent{Type: models.EventTaskUpdated, TaskID: existing.ID, Task: existing, At: existing.UpdatedAt})

	aiAdded, err := s.addSuggestions(ctx, in.AISuggestions)
	if err != nil {
		return existing, false, err
	}
	return existing, aiAdded, nil
}

func (s *taskService) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.emit(ctx, models.TaskEvent{Type: models.EventTaskDeleted, TaskID: id, At: s.now()})
	return true, nil
}

func (s *taskService) insert(ctx context.Context, title, content string, status models.TaskStatus) (*models.Task, error) {
	now := s.now()
	task := &models.Task{
		ID:        s.newID(),
		Title:     title,
		Content:   content,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	s.emit(ctx, models.TaskEvent{Type: models.EventTaskCreated, TaskID: task.ID, Task: task, At: now})
	return task, nil
}

// addSuggestions stores each accepted suggestion as a new TODO task with no content.
func (s *taskService) addSuggestions(ctx context.Context, suggestions []string) (bool, error) {
	added := false
	for _, title := range suggestions {
		if _, err := s.insert(ctx, title, "", models.StatusTodo); err != nil {
			return added, fmt.Errorf("store suggestion %q: %w", title, err)
		}
		added = true
	}
	return added, nil
}

// stamp keeps UpdatedAt >= CreatedAt even if the clock moves backwards.
func (s *taskService) stamp(createdAt time.Time) time.Time {
	now := s.now()
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}

func (s *taskService) emit(ctx context.Context, ev models.TaskEvent) {
	if ev.Task != nil {
		cp := *ev.Task
		ev.Task = &cp
	}
	if s.events != nil {
		s.events.Publish(ev)
	}
	if s.notifier == nil {
		return
	}
	go func() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(nctx, EventMessage(ev)); err != nil {
			log.Printf("[todo][notify][err] type=%s id=%s: %v", ev.Type, ev.TaskID, err)
		}
	}()
}
