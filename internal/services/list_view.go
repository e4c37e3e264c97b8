package services

import (
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"todoboard/internal/models"
)

type SortKey string

const (
	SortCreatedDesc SortKey = "created_desc"
	SortCreatedAsc  SortKey = "created_asc"
	SortTitleAsc    SortKey = "title_asc"
	SortTitleDesc   SortKey = "title_desc"

	DefaultSort = SortCreatedDesc
)

// SortKeys lists every option in the order the sort select shows them.
var SortKeys = []SortKey{SortCreatedDesc, SortCreatedAsc, SortTitleAsc, SortTitleDesc}

func (k SortKey) IsValid() bool {
	switch k {
	case SortCreatedDesc, SortCreatedAsc, SortTitleAsc, SortTitleDesc:
		return true
	}
	return false
}

func (k SortKey) Label() string {
	switch k {
	case SortCreatedDesc:
		return "Newest first"
	case SortCreatedAsc:
		return "Oldest first"
	case SortTitleAsc:
		return "Title A-Z"
	case SortTitleDesc:
		return "Title Z-A"
	}
	return string(k)
}

// ListQuery is the list page state carried in the query string.
type ListQuery struct {
	Status  models.TaskStatus // empty = all
	Keyword string
	Sort    SortKey
	Deleted bool
}

// ParseListQuery reads status, q, sort and deleted. Unknown values fall back to defaults.
func ParseListQuery(v url.Values) ListQuery {
	q := ListQuery{
		Keyword: strings.TrimSpace(v.Get("q")),
		Sort:    SortKey(v.Get("sort")),
		Deleted: v.Get("deleted") == "true",
	}
	if st, err := models.ParseTaskStatus(v.Get("status")); err == nil {
		q.Status = st
	}
	if !q.Sort.IsValid() {
		q.Sort = DefaultSort
	}
	return q
}

// Values encodes only non-default fields.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Keyword != "" {
		v.Set("q", q.Keyword)
	}
	if q.Sort != "" && q.Sort != DefaultSort {
		v.Set("sort", string(q.Sort))
	}
	if q.Deleted {
		v.Set("deleted", "true")
	}
	return v
}

func (q ListQuery) IsFiltered() bool {
	return q.Status != "" || q.Keyword != "" || (q.Sort != "" && q.Sort != DefaultSort)
}

// ClearFilters resets search, status and sort. The deleted marker is notification
// state, not filter state, so it survives.
func (q ListQuery) ClearFilters() ListQuery {
	return ListQuery{Sort: DefaultSort, Deleted: q.Deleted}
}

func (q ListQuery) WithStatus(st models.TaskStatus) ListQuery {
	q.Status = st
	return q
}

func (q ListQuery) WithoutDeleted() ListQuery {
	q.Deleted = false
	return q
}

// ListView is what the list page renders.
type ListView struct {
	Tasks   []models.Task
	Summary models.Summary
	Query   ListQuery
	// Empty: there are no tasks at all. FilteredEmpty: tasks exist but none match.
	Empty         bool
	FilteredEmpty bool
}

// ListViewBuilder applies filter, search and sort in that order.
type ListViewBuilder struct {
	locale language.Tag
}

func NewListViewBuilder(locale string) *ListViewBuilder {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &ListViewBuilder{locale: tag}
}

func (b *ListViewBuilder) Build(all []models.Task, q ListQuery) ListView {
	tasks := FilterByStatus(all, q.Status)
	tasks = SearchTasks(tasks, q.Keyword)
	b.Sort(tasks, q.Sort)

	return ListView{
		Tasks:         tasks,
		Summary:       models.Summarize(all),
		Query:         q,
		Empty:         len(all) == 0,
		FilteredEmpty: len(all) > 0 && len(tasks) == 0,
	}
}

// FilterByStatus returns a new slice; an empty status keeps everything.
func FilterByStatus(tasks []models.Task, st models.TaskStatus) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if st == "" || t.Status == st {
			out = append(out, t)
		}
	}
	return out
}

// SearchTasks is a case-insensitive substring match on title or content.
func SearchTasks(tasks []models.Task, keyword string) []models.Task {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return tasks
	}
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), kw) || strings.Contains(strings.ToLower(t.Content), kw) {
			out = append(out, t)
		}
	}
	return out
}

// Sort is stable: equal keys keep their relative order.
func (b *ListViewBuilder) Sort(tasks []models.Task, key SortKey) {
	switch key {
	case SortCreatedAsc:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		})
	case SortTitleAsc, SortTitleDesc:
		// collate.Collator keeps internal buffers; one per call
		col := collate.New(b.locale)
		desc := key == SortTitleDesc
		sort.SliceStable(tasks, func(i, j int) bool {
			c := col.CompareString(tasks[i].Title, tasks[j].Title)
			if desc {
				return c > 0
			}
			return c < 0
		})
	default:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	}
}
