package handlers

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"todoboard/internal/models"
	"todoboard/internal/pdf"
	"todoboard/internal/realtime"
	"todoboard/internal/repositories"
	"todoboard/internal/services"
	"todoboard/internal/validation"
	"todoboard/internal/views"
)

const sseHeartbeat = 25 * time.Second

type TaskHandler struct {
	tasks       services.TaskService
	suggestions services.SuggestionService
	lists       *services.ListViewBuilder
	pdf         pdf.Generator
	hub         *realtime.TaskHub
	toastWindow time.Duration
	heartbeat   time.Duration
}

func NewTaskHandler(
	tasks services.TaskService,
	suggestions services.SuggestionService,
	lists *services.ListViewBuilder,
	pdfGen pdf.Generator,
	hub *realtime.TaskHub,
	toastWindow time.Duration,
) *TaskHandler {
	return &TaskHandler{
		tasks:       tasks,
		suggestions: suggestions,
		lists:       lists,
		pdf:         pdfGen,
		hub:         hub,
		toastWindow: toastWindow,
		heartbeat:   sseHeartbeat,
	}
}

// actionRequest is the form/JSON body of create and update/delete actions.
type actionRequest struct {
	validation.RawTask
	Intent string `json:"intent" form:"intent"`
}

type suggestRequest struct {
	Title         string   `json:"title" form:"title"`
	Content       string   `json:"content" form:"content"`
	Status        string   `json:"status" form:"status"`
	AISuggestions []string `json:"aiSuggestions" form:"aiSuggestions"`
}

type listQueryResponse struct {
	Status  models.TaskStatus `json:"status,omitempty"`
	Keyword string            `json:"q,omitempty"`
	Sort    services.SortKey  `json:"sort"`
	Deleted bool              `json:"deleted,omitempty"`
}

type listResponse struct {
	Tasks         []models.Task     `json:"tasks"`
	Summary       models.Summary    `json:"summary"`
	Query         listQueryResponse `json:"query"`
	Empty         bool              `json:"empty"`
	FilteredEmpty bool              `json:"filteredEmpty"`
	Message       string            `json:"message,omitempty"`
}

type taskResponse struct {
	Task     *models.Task `json:"task,omitempty"`
	AIAdded  bool         `json:"aiAdded,omitempty"`
	Deleted  bool         `json:"deleted,omitempty"`
	Redirect string       `json:"redirect"`
}

type suggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Root sends the bare host to the board.
func (h *TaskHandler) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, views.PathList)
}

// @Summary      List tasks
// @Description  Filtered, searched and sorted task list with counts over all tasks
// @Tags         Todos
// @Produce      json,html
// @Param        status   query  string  false  "TODO | DOING | DONE"
// @Param        q        query  string  false  "keyword in title or content"
// @Param        sort     query  string  false  "created_desc | created_asc | title_asc | title_desc"
// @Param        deleted  query  bool    false  "show the deletion toast"
// @Success      200  {object}  listResponse
// @Failure      500  {object}  map[string]string
// @Router       /todos [get]
func (h *TaskHandler) List(c *gin.Context) {
	all, err := h.tasks.List(c.Request.Context())
	if err != nil {
		log.Printf("[todo][list][err] %v", err)
		h.internalError(c, views.PathList)
		return
	}

	q := services.ParseListQuery(c.Request.URL.Query())
	view := h.lists.Build(all, q)

	markers := url.Values{}
	if q.Deleted {
		markers.Set("deleted", "true")
	}
	form := services.FormFromQuery(markers, h.toastWindow)
	defer form.Close()
	toast := views.ToastFrom(form.State())

	if wantsJSON(c) {
		c.JSON(http.StatusOK, listResponse{
			Tasks:         view.Tasks,
			Summary:       view.Summary,
			Query:         listQueryResponse{Status: q.Status, Keyword: q.Keyword, Sort: q.Sort, Deleted: q.Deleted},
			Empty:         view.Empty,
			FilteredEmpty: view.FilteredEmpty,
			Message:       toast.Message,
		})
		return
	}
	c.HTML(http.StatusOK, views.PageList, views.NewListPage(view, toast))
}

// New renders the empty create form.
func (h *TaskHandler) New(c *gin.Context) {
	c.HTML(http.StatusOK, views.PageForm, views.NewCreatePage())
}

// @Summary      Get task
// @Tags         Todos
// @Produce      json,html
// @Param        id   path  string  true  "task id"
// @Success      200  {object}  models.Task
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /todos/{id} [get]
func (h *TaskHandler) Detail(c *gin.Context) {
	id := c.Param("id")
	path := views.DetailURL(id)
	if !validTaskID(id) {
		h.notFound(c, path)
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrTaskNotFound) {
		h.notFound(c, path)
		return
	}
	if err != nil {
		log.Printf("[todo][detail][err] id=%s: %v", id, err)
		h.internalError(c, path)
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, task)
		return
	}

	form := services.FormFromQuery(c.Request.URL.Query(), h.toastWindow)
	defer form.Close()
	if c.Query("confirm") == "delete" {
		form.OpenDelete()
	}
	st := form.State()

	page := views.NewDetailPage(*task)
	page.Toast = views.ToastFrom(st)
	page.DeleteOpen = st.DeleteOpen
	c.HTML(http.StatusOK, views.PageForm, page)
}

// @Summary      Create task
// @Description  Validates the payload, stores it and any accepted AI suggestions, then redirects to the detail page
// @Tags         Todos
// @Accept       json,x-www-form-urlencoded
// @Produce      json,html
// @Param        task  body  validation.RawTask  true  "task fields"
// @Success      201  {object}  taskResponse
// @Success      303  "redirect to /todos/{id}?created=true"
// @Success      200  {object}  map[string]interface{}  "validation or store error"
// @Router       /todos [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Printf("[todo][create][bind][err] %v", err)
		h.actionError(c, views.NewCreatePage, req.RawTask, msgCreateFailed)
		return
	}

	in, err := validation.Task(req.RawTask)
	if err != nil {
		h.validationError(c, views.NewCreatePage, req.RawTask, err)
		return
	}

	task, aiAdded, err := h.tasks.Create(c.Request.Context(), in)
	if err != nil {
		log.Printf("[todo][create][err] title=%q: %v", in.Title, err)
		h.actionError(c, views.NewCreatePage, req.RawTask, msgCreateFailed)
		return
	}
	log.Printf("[todo][create] id=%s ai=%v", task.ID, aiAdded)

	markers := []string{"created"}
	if aiAdded {
		markers = append(markers, "ai")
	}
	target := withMarkers(views.DetailURL(task.ID), markers...)
	if wantsJSON(c) {
		c.JSON(http.StatusCreated, taskResponse{Task: task, AIAdded: aiAdded, Redirect: target})
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

// @Summary      Update or delete task
// @Description  Dispatches on intent: UPDATE saves the fields, DELETE removes the task
// @Tags         Todos
// @Accept       json,x-www-form-urlencoded
// @Produce      json,html
// @Param        id      path  string              true  "task id"
// @Param        intent  formData  string          true  "UPDATE | DELETE"
// @Param        task    body  validation.RawTask  false "task fields for UPDATE"
// @Success      200  {object}  taskResponse
// @Success      303  "redirect"
// @Success      200  {object}  map[string]interface{}  "validation, intent or store error"
// @Router       /todos/{id} [post]
// @Router       /todos/{id} [put]
func (h *TaskHandler) Action(c *gin.Context) {
	id := c.Param("id")

	var req actionRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Printf("[todo][action][bind][err] id=%s: %v", id, err)
	}
	if req.Intent == "" && c.Request.Method == http.MethodPut {
		req.Intent = intentUpdate
	}
	h.dispatch(c, id, req)
}

// Remove is DELETE /todos/:id, the same as intent=DELETE.
//
// @Summary      Delete task
// @Tags         Todos
// @Produce      json,html
// @Param        id   path  string  true  "task id"
// @Success      200  {object}  taskResponse
// @Success      303  "redirect to /todos?deleted=true"
// @Router       /todos/{id} [delete]
func (h *TaskHandler) Remove(c *gin.Context) {
	h.dispatch(c, c.Param("id"), actionRequest{Intent: intentDelete})
}

func (h *TaskHandler) dispatch(c *gin.Context, id string, req actionRequest) {
	page := func() views.FormPage { return h.detailPage(c, id) }
	if !validTaskID(id) {
		h.actionError(c, page, req.RawTask, msgInvalidID)
		return
	}

	switch strings.ToUpper(strings.TrimSpace(req.Intent)) {
	case intentDelete:
		h.delete(c, id, page, req.RawTask)
	case intentUpdate:
		h.update(c, id, page, req.RawTask)
	default:
		log.Printf("[todo][action][deny] id=%s intent=%q", id, req.Intent)
		h.actionError(c, page, req.RawTask, msgInvalidIntent)
	}
}

func (h *TaskHandler) update(c *gin.Context, id string, page func() views.FormPage, raw validation.RawTask) {
	in, err := validation.Task(raw)
	if err != nil {
		h.validationError(c, page, raw, err)
		return
	}

	task, aiAdded, err := h.tasks.Update(c.Request.Context(), id, in)
	switch {
	case errors.Is(err, repositories.ErrTaskNotFound):
		log.Printf("[todo][update][miss] id=%s", id)
		h.actionError(c, page, raw, msgUpdateNotFound)
		return
	case err != nil:
		log.Printf("[todo][update][err] id=%s: %v", id, err)
		h.actionError(c, page, raw, msgUpdateFailed)
		return
	}
	log.Printf("[todo][update] id=%s ai=%v", id, aiAdded)

	markers := []string{"updated"}
	if aiAdded {
		markers = append(markers, "ai")
	}
	target := withMarkers(views.DetailURL(task.ID), markers...)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, taskResponse{Task: task, AIAdded: aiAdded, Redirect: target})
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (h *TaskHandler) delete(c *gin.Context, id string, page func() views.FormPage, raw validation.RawTask) {
	ok, err := h.tasks.Delete(c.Request.Context(), id)
	if err != nil {
		log.Printf("[todo][delete][err] id=%s: %v", id, err)
		h.actionError(c, page, raw, msgDeleteFailed)
		return
	}
	if !ok {
		log.Printf("[todo][delete][miss] id=%s", id)
		h.actionError(c, page, raw, msgDeleteNotFound)
		return
	}
	log.Printf("[todo][delete] id=%s", id)

	target := withMarkers(views.PathList, "deleted")
	if wantsJSON(c) {
		c.JSON(http.StatusOK, taskResponse{Deleted: true, Redirect: target})
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

// @Summary      Suggest task titles
// @Description  Asks the AI model for up to three follow-up task titles
// @Tags         AI
// @Accept       json,x-www-form-urlencoded
// @Produce      json,html
// @Param        title  formData  string  true  "seed title"
// @Success      200  {object}  suggestResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /todos/new/suggest-ai [post]
// @Router       /todos/{id}/suggest-ai [post]
func (h *TaskHandler) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Printf("[ai][suggest][bind][err] %v", err)
	}

	page := views.NewCreatePage()
	if id := c.Param("id"); id != "" {
		page = h.detailPage(c, id)
	}
	page.Values = validation.RawTask{Title: req.Title, Content: req.Content, Status: req.Status, AISuggestions: req.AISuggestions}
	if page.Values.Status == "" {
		page.Values.Status = string(models.StatusTodo)
	}

	title, err := validation.RequireString(req.Title, "title")
	if err != nil {
		h.suggestFailed(c, http.StatusBadRequest, page, err.Error(), err)
		return
	}

	suggestions, err := h.suggestions.Suggest(c.Request.Context(), title)
	if err != nil {
		log.Printf("[ai][suggest][err] title=%q: %v", title, err)
		h.suggestFailed(c, http.StatusInternalServerError, page, services.SuggestErrorMessage(err), err)
		return
	}
	log.Printf("[ai][suggest] title=%q n=%d", title, len(suggestions))

	if wantsJSON(c) {
		c.JSON(http.StatusOK, suggestResponse{Suggestions: suggestions})
		return
	}
	page.Panel = services.PanelFromResult(suggestions, nil)
	page = page.WithSelection(req.AISuggestions)
	h.renderSuggest(c, http.StatusOK, page)
}

func (h *TaskHandler) suggestFailed(c *gin.Context, status int, page views.FormPage, msg string, err error) {
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	page.Panel = services.PanelFromResult(nil, err)
	if status == http.StatusBadRequest {
		page.Panel.Message = msg
		page.Errors = validation.FieldErrors{"title": "Title is required"}
	}
	h.renderSuggest(c, status, page)
}

func (h *TaskHandler) renderSuggest(c *gin.Context, status int, page views.FormPage) {
	if isFragment(c) {
		c.HTML(status, views.PageSuggestions, page)
		return
	}
	c.HTML(status, views.PageForm, page)
}

// @Summary      Export task list as PDF
// @Tags         Todos
// @Produce      application/pdf
// @Param        status  query  string  false  "TODO | DOING | DONE"
// @Param        q       query  string  false  "keyword"
// @Param        sort    query  string  false  "sort key"
// @Success      200  {file}  binary
// @Failure      500  {object}  map[string]string
// @Router       /todos/export.pdf [get]
func (h *TaskHandler) ExportPDF(c *gin.Context) {
	all, err := h.tasks.List(c.Request.Context())
	if err != nil {
		log.Printf("[todo][export][err] list: %v", err)
		h.internalError(c, views.PathList)
		return
	}
	q := services.ParseListQuery(c.Request.URL.Query())
	view := h.lists.Build(all, q)

	var buf bytes.Buffer
	err = h.pdf.WriteTaskList(&buf, pdf.TaskListData{
		Title:       "Todos",
		Filter:      filterLine(q),
		Summary:     view.Summary,
		Tasks:       view.Tasks,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		log.Printf("[todo][export][err] render: %v", err)
		h.internalError(c, views.PathList)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="todos.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func filterLine(q services.ListQuery) string {
	var parts []string
	if q.Status != "" {
		parts = append(parts, "Status: "+q.Status.Label())
	}
	if q.Keyword != "" {
		parts = append(parts, `Search: "`+q.Keyword+`"`)
	}
	if q.Sort != services.DefaultSort && q.Sort != "" {
		parts = append(parts, "Sort: "+q.Sort.Label())
	}
	return strings.Join(parts, " | ")
}

// @Summary      Task change stream
// @Description  Server-sent events: one "task" event per create, update or delete
// @Tags         Todos
// @Produce      text/event-stream
// @Success      200
// @Router       /todos/events [get]
func (h *TaskHandler) Events(c *gin.Context) {
	events, cancel := h.hub.Subscribe()
	defer cancel()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"subscribers": h.hub.Subscribers()})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("task", ev)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}

// Health reports liveness.
func (h *TaskHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "subscribers": h.hub.Subscribers()})
}

// ===== response helpers

// detailPage is the edit form for id, prefilled when the task can be loaded.
func (h *TaskHandler) detailPage(c *gin.Context, id string) views.FormPage {
	if validTaskID(id) && !wantsJSON(c) {
		if task, err := h.tasks.Get(c.Request.Context(), id); err == nil {
			return views.NewDetailPage(*task)
		}
	}
	// unknown task: keep the form usable but show no timestamps
	page := views.NewDetailPage(models.Task{ID: id})
	page.Task = nil
	return page
}

func (h *TaskHandler) validationError(c *gin.Context, newPage func() views.FormPage, raw validation.RawTask, err error) {
	var fe validation.FieldErrors
	if !errors.As(err, &fe) {
		log.Printf("[todo][validate][err] %v", err)
		h.actionError(c, newPage, raw, msgInternal)
		return
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"error": msgValidationFailed, "fields": fe})
		return
	}
	page := newPage()
	page.Values = raw
	page.Errors = fe
	h.keepSuggestions(&page, raw)
	c.HTML(http.StatusOK, views.PageForm, page)
}

// actionError keeps the user on the form with an error toast.
func (h *TaskHandler) actionError(c *gin.Context, newPage func() views.FormPage, raw validation.RawTask, msg string) {
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"error": msg})
		return
	}
	page := newPage()
	form := services.NewFormModel(h.toastWindow)
	defer form.Close()
	_ = form.Submit()
	form.Fail(msg)

	if raw.Title != "" || raw.Content != "" || raw.Status != "" {
		page.Values = raw
	}
	page.Toast = views.ToastFrom(form.State())
	h.keepSuggestions(&page, raw)
	c.HTML(http.StatusOK, views.PageForm, page)
}

// keepSuggestions re-shows the ticked suggestions so a failed save doesn't lose them.
func (h *TaskHandler) keepSuggestions(page *views.FormPage, raw validation.RawTask) {
	if len(raw.AISuggestions) == 0 {
		return
	}
	page.Panel = services.PanelFromResult(raw.AISuggestions, nil)
	*page = page.WithSelection(raw.AISuggestions)
}

func (h *TaskHandler) notFound(c *gin.Context, path string) {
	if wantsJSON(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgTodoNotFound})
		return
	}
	c.HTML(http.StatusNotFound, views.PageError, views.NewErrorPage(path, http.StatusNotFound, msgTodoNotFound))
}

func (h *TaskHandler) internalError(c *gin.Context, path string) {
	if wantsJSON(c) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.HTML(http.StatusInternalServerError, views.PageError, views.NewErrorPage(path, http.StatusInternalServerError, msgInternal))
}
