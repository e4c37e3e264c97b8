package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todoboard/internal/models"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskRepository is the storage contract shared by every backend.
// List returns tasks ordered by created_at ascending (ties by insertion/id).
type TaskRepository interface {
	List(ctx context.Context) ([]models.Task, error)
	FindByID(ctx context.Context, id string) (*models.Task, error)
	Store(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	// Delete reports whether a task existed. A missing id is not an error.
	Delete(ctx context.Context, id string) (bool, error)
}

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository returns the Postgres-backed repository (lib/pq).
func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id         TEXT PRIMARY KEY,
	title      VARCHAR(100) NOT NULL,
	content    VARCHAR(500) NOT NULL DEFAULT '',
	status     VARCHAR(8)   NOT NULL CHECK (status IN ('TODO','DOING','DONE')),
	created_at TIMESTAMPTZ  NOT NULL,
	updated_at TIMESTAMPTZ  NOT NULL,
	seq        BIGSERIAL
)`

// Migrate creates the tasks table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, taskSchema); err != nil {
		return fmt.Errorf("migrate tasks: %w", err)
	}
	return nil
}

func (r *taskRepository) List(ctx context.Context) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, content, status, created_at, updated_at
		 FROM tasks ORDER BY created_at ASC, seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Content, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, content, status, created_at, updated_at FROM tasks WHERE id = $1`, id,
	).Scan(&task.ID, &task.Title, &task.Content, &task.Status, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, title, content, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		task.ID, task.Title, task.Content, task.Status, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title=$1, content=$2, status=$3, updated_at=$4 WHERE id=$5`,
		task.Title, task.Content, task.Status, task.UpdatedAt, task.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
