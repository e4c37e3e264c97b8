package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"todoboard/internal/models"
)

// taskRecord is the gorm row for a task.
type taskRecord struct {
	Seq       uint      `gorm:"primaryKey;autoIncrement"`
	ID        string    `gorm:"size:36;uniqueIndex;not null"`
	Title     string    `gorm:"size:100;not null"`
	Content   string    `gorm:"size:500;not null;default:''"`
	Status    string    `gorm:"size:8;not null;index"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (taskRecord) TableName() string { return "tasks" }

func toRecord(t *models.Task) taskRecord {
	return taskRecord{
		ID:        t.ID,
		Title:     t.Title,
		Content:   t.Content,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (r taskRecord) toModel() models.Task {
	return models.Task{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Status:    models.TaskStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// OpenSQLite opens a SQLite database and runs migrations.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return db, nil
}

func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

type gormTaskRepository struct {
	db *gorm.DB
}

func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) List(ctx context.Context) ([]models.Task, error) {
	var rows []taskRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC, seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toModel())
	}
	return tasks, nil
}

func (r *gormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var row taskRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	t := row.toModel()
	return &t, nil
}

func (r *gormTaskRepository) Store(ctx context.Context, task *models.Task) error {
	row := toRecord(task)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *gormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	result := r.db.WithContext(ctx).Model(&taskRecord{}).Where("id = ?", task.ID).Updates(map[string]any{
		"title":      task.Title,
		"content":    task.Content,
		"status":     string(task.Status),
		"updated_at": task.UpdatedAt,
	})
	if err := result.Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *gormTaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&taskRecord{})
	if err := result.Error; err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return result.RowsAffected > 0, nil
}
