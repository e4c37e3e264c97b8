package repositories

import (
	"context"
	"sync"
	"time"

	"todoboard/internal/models"
)

// MemoryTaskRepository keeps tasks in insertion order and sleeps for a fixed
// latency on every call so loading states can be exercised.
type MemoryTaskRepository struct {
	mu      sync.RWMutex
	tasks   []models.Task
	latency time.Duration
}

func NewMemoryTaskRepository(latency time.Duration, seed ...models.Task) *MemoryTaskRepository {
	tasks := make([]models.Task, len(seed))
	copy(tasks, seed)
	return &MemoryTaskRepository{tasks: tasks, latency: latency}
}

func (r *MemoryTaskRepository) wait(ctx context.Context) error {
	if r.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(r.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *MemoryTaskRepository) List(ctx context.Context) ([]models.Task, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Task, len(r.tasks))
	copy(out, r.tasks)
	return out, nil
}

func (r *MemoryTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		t := r.tasks[i]
		return &t, nil
	}
	return nil, ErrTaskNotFound
}

func (r *MemoryTaskRepository) Store(ctx context.Context, task *models.Task) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, *task)
	return nil
}

func (r *MemoryTaskRepository) Update(ctx context.Context, task *models.Task) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(task.ID)
	if i < 0 {
		return ErrTaskNotFound
	}
	// created_at is immutable after creation
	task.CreatedAt = r.tasks[i].CreatedAt
	r.tasks[i] = *task
	return nil
}

func (r *MemoryTaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := r.wait(ctx); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return true, nil
}

// caller holds r.mu
func (r *MemoryTaskRepository) indexOf(id string) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// SeedTasks returns the demo data loaded when store.seed is enabled.
func SeedTasks() []models.Task {
	ts := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	return []models.Task{
		{ID: "1", Title: "Buy groceries", Content: "Milk, eggs, bread", Status: models.StatusTodo,
			CreatedAt: ts("2026-01-01T09:00:00Z"), UpdatedAt: ts("2026-01-01T09:00:00Z")},
		{ID: "2", Title: "Clean the living room", Content: "Vacuum and wipe the floor", Status: models.StatusDoing,
			CreatedAt: ts("2026-01-02T10:00:00Z"), UpdatedAt: ts("2026-01-02T12:00:00Z")},
		{ID: "3", Title: "Write blog post", Content: "VS Code productivity tips", Status: models.StatusTodo,
			CreatedAt: ts("2026-01-03T08:30:00Z"), UpdatedAt: ts("2026-01-03T08:30:00Z")},
		{ID: "4", Title: "Fix login bug", Content: "Resolve auth redirect issue", Status: models.StatusDoing,
			CreatedAt: ts("2026-01-04T09:15:00Z"), UpdatedAt: ts("2026-01-04T11:45:00Z")},
		{ID: "5", Title: "Submit expense report", Content: "April transportation costs", Status: models.StatusDone,
			CreatedAt: ts("2026-01-05T13:00:00Z"), UpdatedAt: ts("2026-01-05T14:00:00Z")},
		{ID: "6", Title: "Review pull request", Content: "Check task-board UI implementation", Status: models.StatusDone,
			CreatedAt: ts("2026-01-06T16:00:00Z"), UpdatedAt: ts("2026-01-06T17:30:00Z")},
	}
}
