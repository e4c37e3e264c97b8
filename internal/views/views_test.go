package views

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoboard/internal/models"
	"todoboard/internal/repositories"
	"todoboard/internal/services"
	"todoboard/internal/validation"
)

func render(t *testing.T, name string, data any) string {
	t.Helper()
	tmpl, err := Templates()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, name, data))
	return buf.String()
}

func TestHeaderTitle(t *testing.T) {
	assert.Equal(t, "Todos", HeaderTitle("/todos"))
	assert.Equal(t, "Todos", HeaderTitle("/todos/"))
	assert.Equal(t, "Create todo", HeaderTitle("/todos/new"))
	assert.Equal(t, "Todos Detail", HeaderTitle("/todos/abc-123"))
	assert.Equal(t, "", HeaderTitle("/todos/abc/suggest-ai"))
	assert.Equal(t, "", HeaderTitle("/"))
	assert.Equal(t, "", HeaderTitle("/elsewhere"))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2026/01/05 13:00", FormatDate(time.Date(2026, 1, 5, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", FormatDate(time.Time{}))
}

func TestURLs(t *testing.T) {
	q := services.ListQuery{Status: models.StatusDone, Sort: services.DefaultSort, Deleted: true}
	assert.Equal(t, "/todos?deleted=true&status=DONE", ListURL(q))
	assert.Equal(t, "/todos/export.pdf?status=DONE", ExportURL(q))
	assert.Equal(t, "/todos", ListURL(services.ListQuery{Sort: services.DefaultSort}))
	assert.Equal(t, "/todos/7", DetailURL("7"))
}

func TestLayoutFlags(t *testing.T) {
	l := NewLayout(PathList)
	assert.False(t, l.ShowBack)
	assert.True(t, l.ShowNew)

	l = NewLayout(PathCreate)
	assert.True(t, l.ShowBack)
	assert.False(t, l.ShowNew)
}

func TestToastFrom(t *testing.T) {
	ok := ToastFrom(services.FormState{Status: services.FormSuccess, Message: "done", DismissAfter: 4 * time.Second})
	assert.Equal(t, Toast{Kind: "success", Message: "done", DismissAfter: 4 * time.Second}, ok)

	bad := ToastFrom(services.FormState{Status: services.FormError, Message: "nope"})
	assert.Equal(t, "error", bad.Kind)
	assert.Zero(t, bad.DismissAfter)

	assert.False(t, ToastFrom(services.FormState{Status: services.FormIdle}).Visible())
}

func TestRenderList(t *testing.T) {
	view := services.NewListViewBuilder("en").Build(repositories.SeedTasks(), services.ListQuery{Sort: services.DefaultSort})
	html := render(t, PageList, NewListPage(view, Toast{Kind: "success", Message: "Todo deleted successfully.", DismissAfter: 4 * time.Second}))

	assert.Contains(t, html, "<h1>Todos</h1>")
	assert.Contains(t, html, "Buy groceries")
	assert.Contains(t, html, "2026/01/06 16:00")
	assert.Contains(t, html, `data-dismiss-after="4000"`)
	assert.Contains(t, html, "Todo deleted successfully.")
	assert.Contains(t, html, `href="/todos?status=DONE"`)
	assert.NotContains(t, html, "Back to Todos")
	assert.NotContains(t, html, "Clear filters")
}

func TestRenderList_EmptyStates(t *testing.T) {
	b := services.NewListViewBuilder("en")

	html := render(t, PageList, NewListPage(b.Build(nil, services.ListQuery{Sort: services.DefaultSort}), Toast{}))
	assert.Contains(t, html, "No tasks yet")

	view := b.Build(repositories.SeedTasks(), services.ListQuery{Keyword: "zzz", Sort: services.DefaultSort})
	html = render(t, PageList, NewListPage(view, Toast{}))
	assert.Contains(t, html, "No tasks match your filters")
	assert.Contains(t, html, "Clear filters")
}

func TestRenderCreateForm(t *testing.T) {
	page := NewCreatePage()
	page.Values = validation.RawTask{Title: "", Status: "TODO"}
	page.Errors = validation.FieldErrors{"title": "Title is required"}
	html := render(t, PageForm, page)

	assert.Contains(t, html, "<h1>Create todo</h1>")
	assert.Contains(t, html, "Title is required")
	assert.Contains(t, html, `action="/todos"`)
	assert.Contains(t, html, `<option value="TODO" selected>`)
	assert.NotContains(t, html, "New task")
	assert.NotContains(t, html, "Delete this item?")
}

func TestRenderDetailForm_WithModalAndPanel(t *testing.T) {
	task := repositories.SeedTasks()[1]
	page := NewDetailPage(task)
	page.DeleteOpen = true
	page.Panel = services.PanelFromResult([]string{"Dust shelves", "Mop floor"}, nil)
	page = page.WithSelection([]string{"Mop floor"})
	html := render(t, PageForm, page)

	assert.Contains(t, html, "<h1>Todos Detail</h1>")
	assert.Contains(t, html, `value="Clean the living room"`)
	assert.Contains(t, html, `<option value="DOING" selected>`)
	assert.Contains(t, html, "Delete this item?")
	assert.Contains(t, html, "Selected items will be added as new tasks when you save.")
	assert.Contains(t, html, `value="Mop floor" form="todo-form" checked`)
	assert.NotContains(t, html, `value="Dust shelves" form="todo-form" checked`)
}

func TestRenderSuggestionsFragment(t *testing.T) {
	page := NewCreatePage()
	page.Panel = services.PanelFromResult(nil, errors.New("boom"))
	html := render(t, PageSuggestions, page)
	assert.Contains(t, html, `data-state="failed"`)
	assert.Contains(t, html, "Failed to generate suggestions. Please try again.")

	page.Panel = services.PanelFromResult(nil, nil)
	assert.Contains(t, render(t, PageSuggestions, page), "No suggestions found.")
}

func TestRenderError(t *testing.T) {
	html := render(t, PageError, NewErrorPage("/todos/x", 404, "Todo not found"))
	assert.Contains(t, html, "404")
	assert.Contains(t, html, "Todo not found")
	assert.Contains(t, html, "Back to list")

	assert.Contains(t, render(t, PageError, NewErrorPage("/todos", 500, "")), "Something went wrong")
}
