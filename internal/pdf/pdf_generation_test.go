package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoboard/internal/models"
)

func TestWriteTaskList(t *testing.T) {
	g := NewDocumentGenerator("")
	ts := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	tasks := []models.Task{
		{ID: "1", Title: "Buy groceries", Content: "Milk, eggs, bread", Status: models.StatusTodo, CreatedAt: ts, UpdatedAt: ts},
		{ID: "2", Title: "Café visit", Status: models.StatusDone, CreatedAt: ts, UpdatedAt: ts},
	}

	var buf bytes.Buffer
	err := g.WriteTaskList(&buf, TaskListData{
		Title:       "Todos",
		Filter:      "Status: To do",
		Summary:     models.Summarize(tasks),
		Tasks:       tasks,
		GeneratedAt: ts,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestWriteTaskList_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDocumentGenerator("").WriteTaskList(&buf, TaskListData{Title: "Todos", GeneratedAt: time.Now()}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestNewDocumentGenerator_MissingFontFallsBack(t *testing.T) {
	g := NewDocumentGenerator("does/not/exist.ttf")
	assert.False(t, g.utf8)
	assert.Equal(t, "Helvetica", g.fontName)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
