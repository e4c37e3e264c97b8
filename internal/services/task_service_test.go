package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoboard/internal/models"
	"todoboard/internal/repositories"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.TaskEvent
}

func (p *recordingPublisher) Publish(ev models.TaskEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []models.TaskEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.TaskEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type chanNotifier chan Message

func (c chanNotifier) Notify(_ context.Context, msg Message) error {
	c <- msg
	return nil
}

// failingRepo wraps a real repository and fails Store after n successful calls.
type failingRepo struct {
	repositories.TaskRepository
	storesLeft int
}

func (r *failingRepo) Store(ctx context.Context, t *models.Task) error {
	if r.storesLeft == 0 {
		return errors.New("disk full")
	}
	r.storesLeft--
	return r.TaskRepository.Store(ctx, t)
}

type fixture struct {
	repo   *repositories.MemoryTaskRepository
	events *recordingPublisher
	svc    TaskService
	now    time.Time
}

func newFixture(t *testing.T, seed ...models.Task) *fixture {
	t.Helper()
	f := &fixture{
		repo:   repositories.NewMemoryTaskRepository(0, seed...),
		events: &recordingPublisher{},
		now:    time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	n := 0
	f.svc = NewTaskService(f.repo,
		WithEvents(f.events),
		WithClock(func() time.Time { return f.now }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	return f
}

func TestTaskService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, aiAdded, err := f.svc.Create(ctx, models.TaskInput{Title: "Buy milk", Content: "2L", Status: models.StatusTodo})
	require.NoError(t, err)
	assert.False(t, aiAdded)
	assert.Equal(t, "id-1", task.ID)
	assert.Equal(t, f.now, task.CreatedAt)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)

	got, err := f.svc.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, *task, *got)
	assert.Equal(t, []models.TaskEventType{models.EventTaskCreated}, f.events.types())
}

func TestTaskService_CreateWithSuggestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, aiAdded, err := f.svc.Create(ctx, models.TaskInput{
		Title:         "Plan trip",
		Status:        models.StatusDoing,
		AISuggestions: []string{"Book flights", "Reserve hotel"},
	})
	require.NoError(t, err)
	assert.True(t, aiAdded)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, extra := range all[1:] {
		assert.Equal(t, models.StatusTodo, extra.Status)
		assert.Empty(t, extra.Content)
	}
	assert.Equal(t, "Book flights", all[1].Title)
	assert.Equal(t, "Reserve hotel", all[2].Title)
}

func TestTaskService_UpdateKeepsCreatedAt(t *testing.T) {
	f := newFixture(t, repositories.SeedTasks()...)
	ctx := context.Background()
	before, err := f.svc.Get(ctx, "2")
	require.NoError(t, err)

	updated, aiAdded, err := f.svc.Update(ctx, "2", models.TaskInput{Title: "Clean kitchen", Status: models.StatusDone})
	require.NoError(t, err)
	assert.False(t, aiAdded)
	assert.Equal(t, before.CreatedAt, updated.CreatedAt)
	assert.Equal(t, f.now, updated.UpdatedAt)
	assert.Equal(t, "Clean kitchen", updated.Title)
	assert.Empty(t, updated.Content)

	got, err := f.svc.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, got.Status)
}

func TestTaskService_UpdateClockSkewNeverPrecedesCreatedAt(t *testing.T) {
	f := newFixture(t, repositories.SeedTasks()...)
	f.now = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	updated, _, err := f.svc.Update(context.Background(), "1", models.TaskInput{Title: "x", Status: models.StatusTodo})
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestTaskService_UpdateMissing(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Update(context.Background(), "nope", models.TaskInput{Title: "x", Status: models.StatusTodo})
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)
	assert.Empty(t, f.events.types())
}

func TestTaskService_UpdateWithSuggestions(t *testing.T) {
	f := newFixture(t, repositories.SeedTasks()...)
	_, aiAdded, err := f.svc.Update(context.Background(), "3", models.TaskInput{
		Title: "Write blog post", Status: models.StatusDoing, AISuggestions: []string{"Outline sections"},
	})
	require.NoError(t, err)
	assert.True(t, aiAdded)

	all, _ := f.svc.List(context.Background())
	assert.Len(t, all, 7)
	assert.Equal(t, []models.TaskEventType{models.EventTaskUpdated, models.EventTaskCreated}, f.events.types())
}

func TestTaskService_Delete(t *testing.T) {
	f := newFixture(t, repositories.SeedTasks()...)
	ctx := context.Background()

	ok, err := f.svc.Delete(ctx, "4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.Delete(ctx, "4")
	require.NoError(t, err)
	assert.False(t, ok, "second delete finds nothing")

	_, err = f.svc.Get(ctx, "4")
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)
	assert.Equal(t, []models.TaskEventType{models.EventTaskDeleted}, f.events.types())
}

func TestTaskService_SuggestionStoreFailure(t *testing.T) {
	repo := &failingRepo{TaskRepository: repositories.NewMemoryTaskRepository(0), storesLeft: 1}
	svc := NewTaskService(repo)

	task, aiAdded, err := svc.Create(context.Background(), models.TaskInput{
		Title: "Main", Status: models.StatusTodo, AISuggestions: []string{"Side"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, aiAdded)
	require.NotNil(t, task, "primary task was saved")
}

func TestTaskService_NotifiesAsynchronously(t *testing.T) {
	notes := make(chanNotifier, 4)
	svc := NewTaskService(repositories.NewMemoryTaskRepository(0), WithNotifier(notes))

	_, _, err := svc.Create(context.Background(), models.TaskInput{Title: "Call mom", Status: models.StatusTodo})
	require.NoError(t, err)

	select {
	case msg := <-notes:
		assert.Equal(t, "Task created: Call mom", msg.Subject)
		assert.Contains(t, msg.Body, "Status: To do")
	case <-time.After(2 * time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestTaskService_EventCarriesCopy(t *testing.T) {
	f := newFixture(t)
	task, _, err := f.svc.Create(context.Background(), models.TaskInput{Title: "A", Status: models.StatusTodo})
	require.NoError(t, err)

	task.Title = "mutated"
	require.Len(t, f.events.events, 1)
	assert.Equal(t, "A", f.events.events[0].Task.Title)
}
