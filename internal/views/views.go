// Package views holds the embedded HTML templates and the data each page renders.
package views

import (
	"embed"
	"html/template"
	"strings"
	"time"

	"todoboard/internal/models"
	"todoboard/internal/services"
	"todoboard/internal/validation"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	PathList   = "/todos"
	PathCreate = "/todos/new"

	DateLayout = "2006/01/02 15:04"
)

// Page template names.
const (
	PageList        = "list"
	PageForm        = "form"
	PageError       = "error"
	PageSuggestions = "suggestions"
)

// HeaderTitle maps a route path to the page heading.
func HeaderTitle(path string) string {
	path = strings.TrimSuffix(path, "/")
	switch {
	case path == PathList:
		return "Todos"
	case path == PathCreate:
		return "Create todo"
	case strings.HasPrefix(path, PathList+"/") && !strings.Contains(path[len(PathList)+1:], "/"):
		return "Todos Detail"
	}
	return ""
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func ListURL(q services.ListQuery) string {
	if enc := q.Values().Encode(); enc != "" {
		return PathList + "?" + enc
	}
	return PathList
}

func ExportURL(q services.ListQuery) string {
	if enc := q.WithoutDeleted().Values().Encode(); enc != "" {
		return PathList + "/export.pdf?" + enc
	}
	return PathList + "/export.pdf"
}

func DetailURL(id string) string {
	return PathList + "/" + id
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate":  FormatDate,
		"headerTitle": HeaderTitle,
		"listURL":     ListURL,
		"detailURL":   DetailURL,
		"exportURL":   ExportURL,
		"ms":          func(d time.Duration) int64 { return d.Milliseconds() },
		"checked":     func(set map[string]bool, v string) bool { return set[v] },
	}
}

// Templates parses every embedded template; gin takes it via SetHTMLTemplate.
func Templates() (*template.Template, error) {
	return template.New("todoboard").Funcs(Funcs()).ParseFS(templateFS, "templates/*.tmpl")
}

func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// ===== page data

type Layout struct {
	HeaderTitle string
	ShowBack    bool
	ShowNew     bool
	Toast       Toast
}

func NewLayout(path string) Layout {
	return Layout{
		HeaderTitle: HeaderTitle(path),
		ShowBack:    path != PathList,
		ShowNew:     path != PathCreate,
	}
}

type Toast struct {
	Kind         string // "success" or "error"
	Message      string
	DismissAfter time.Duration // zero keeps it until the user acts
}

func (t Toast) Visible() bool { return t.Message != "" }

// ToastFrom picks the toast for a form state: success dismisses itself, error stays.
func ToastFrom(st services.FormState) Toast {
	switch {
	case st.ShowSuccess():
		return Toast{Kind: "success", Message: st.Message, DismissAfter: st.DismissAfter}
	case st.ShowError():
		return Toast{Kind: "error", Message: st.Message}
	}
	return Toast{}
}

type ListPage struct {
	Layout
	View     services.ListView
	Statuses []models.TaskStatus
	SortKeys []services.SortKey
}

func NewListPage(view services.ListView, toast Toast) ListPage {
	l := NewLayout(PathList)
	l.Toast = toast
	return ListPage{Layout: l, View: view, Statuses: models.TaskStatuses, SortKeys: services.SortKeys}
}

type FormPage struct {
	Layout
	IsNew      bool
	Task       *models.Task // nil on the create page
	Action     string
	SuggestURL string
	Values     validation.RawTask
	Errors     validation.FieldErrors
	Panel      services.SuggestionPanel
	Selected   map[string]bool
	Statuses   []models.TaskStatus
	DeleteOpen bool
	Busy       bool
}

// NewCreatePage is the empty create form; status starts at TODO.
func NewCreatePage() FormPage {
	return FormPage{
		Layout:     NewLayout(PathCreate),
		IsNew:      true,
		Action:     PathList,
		SuggestURL: PathCreate + "/suggest-ai",
		Values:     validation.RawTask{Status: string(models.StatusTodo)},
		Panel:      services.HiddenPanel(),
		Statuses:   models.TaskStatuses,
	}
}

// NewDetailPage is the edit form prefilled from the stored task.
func NewDetailPage(task models.Task) FormPage {
	return FormPage{
		Layout:     NewLayout(DetailURL(task.ID)),
		Task:       &task,
		Action:     DetailURL(task.ID),
		SuggestURL: DetailURL(task.ID) + "/suggest-ai",
		Values:     validation.RawTask{Title: task.Title, Content: task.Content, Status: string(task.Status)},
		Panel:      services.HiddenPanel(),
		Statuses:   models.TaskStatuses,
	}
}

// WithSelection marks the suggestions the user already ticked.
func (p FormPage) WithSelection(selected []string) FormPage {
	p.Selected = make(map[string]bool, len(selected))
	for _, s := range selected {
		p.Selected[s] = true
	}
	return p
}

type ErrorPage struct {
	Layout
	Status      int
	Title       string
	Description string
}

func NewErrorPage(path string, status int, title string) ErrorPage {
	if title == "" {
		title = "Something went wrong"
	}
	l := NewLayout(path)
	l.ShowBack = true
	return ErrorPage{Layout: l, Status: status, Title: title}
}
