// Package query filters and orders the tasks visible from a view root.
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"planner-cli/internal/calendar"
	"planner-cli/internal/groups"
	"planner-cli/internal/model"
)

// IsVisibleDay reports whether t occupies day on the calendar.
func IsVisibleDay(t model.Task, day string) bool {
	if t.IsBacklog || t.Status == model.StatusDone {
		return false
	}
	start, end, ok := t.Range()
	if !ok {
		return false
	}
	return calendar.InRange(day, start, end)
}

// MatchesQuery is a case-insensitive substring match on title and note.
func MatchesQuery(t model.Task, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	hay := strings.ToLower(t.Title + " " + t.Note)
	return strings.Contains(hay, q)
}

// Counts holds how many visible tasks sit in each status bucket.
type Counts struct {
	InProgress int `json:"inprogress"`
	Planned    int `json:"planned"`
	Backlog    int `json:"backlog"`
	Done       int `json:"done"`
}

func (c Counts) Total() int { return c.InProgress + c.Planned + c.Backlog + c.Done }

// Buckets holds the sorted visible tasks per status.
type Buckets struct {
	InProgress []model.Task `json:"inprogress"`
	Planned    []model.Task `json:"planned"`
	Backlog    []model.Task `json:"backlog"`
	Done       []model.Task `json:"done"`
}

// Engine answers view queries over one document snapshot. It is not safe for
// concurrent use.
type Engine struct {
	doc      *model.Document
	resolver *groups.Resolver
	coll     *collate.Collator
}

// New builds an engine; locale selects title collation and falls back to German.
func New(doc *model.Document, locale string) *Engine {
	if doc == nil {
		doc = model.NewDocument()
	}
	return &Engine{
		doc:      doc,
		resolver: groups.NewResolver(doc),
		coll:     collate.New(parseLocale(locale)),
	}
}

func parseLocale(s string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil || s == "" {
		return language.German
	}
	return tag
}

func (e *Engine) Document() *model.Document { return e.doc }

func (e *Engine) Resolver() *groups.Resolver { return e.resolver }

// TasksVisibleTo returns the tasks assigned to any id in the effective assignee
// set of root, in document order.
func (e *Engine) TasksVisibleTo(root string) []model.Task {
	ids := e.resolver.EffectiveAssignees(root)
	if len(ids) == 0 {
		return nil
	}
	var out []model.Task
	for _, t := range e.doc.Tasks {
		if ids.Intersects(t.Assignees) {
			out = append(out, t)
		}
	}
	return out
}

// TasksForDay returns the sorted tasks visible from root on day matching q.
func (e *Engine) TasksForDay(root, day, q string) []model.Task {
	var out []model.Task
	for _, t := range e.TasksVisibleTo(root) {
		if IsVisibleDay(t, day) && MatchesQuery(t, q) {
			out = append(out, t)
		}
	}
	e.Sort(out)
	return out
}

func (e *Engine) BucketCounts(root, q string) Counts {
	var c Counts
	for _, t := range e.TasksVisibleTo(root) {
		if !MatchesQuery(t, q) {
			continue
		}
		switch t.Status {
		case model.StatusInProgress:
			c.InProgress++
		case model.StatusPlanned:
			c.Planned++
		case model.StatusBacklog:
			c.Backlog++
		case model.StatusDone:
			c.Done++
		}
	}
	return c
}

// Buckets returns the visible tasks matching q grouped by status, each sorted.
func (e *Engine) Buckets(root, q string) Buckets {
	b := Buckets{
		InProgress: []model.Task{},
		Planned:    []model.Task{},
		Backlog:    []model.Task{},
		Done:       []model.Task{},
	}
	for _, t := range e.TasksVisibleTo(root) {
		if !MatchesQuery(t, q) {
			continue
		}
		switch t.Status {
		case model.StatusInProgress:
			b.InProgress = append(b.InProgress, t)
		case model.StatusPlanned:
			b.Planned = append(b.Planned, t)
		case model.StatusBacklog:
			b.Backlog = append(b.Backlog, t)
		case model.StatusDone:
			b.Done = append(b.Done, t)
		}
	}
	e.Sort(b.InProgress)
	e.Sort(b.Planned)
	e.Sort(b.Backlog)
	e.Sort(b.Done)
	return b
}

// DayLoad counts the tasks visible from root on every day in [from, to].
func (e *Engine) DayLoad(root, from, to, q string) map[string]int {
	out := map[string]int{}
	if !calendar.Valid(from) || !calendar.Valid(to) || to < from {
		return out
	}
	visible := e.TasksVisibleTo(root)
	for day := from; day <= to; day = calendar.AddDays(day, 1) {
		n := 0
		for _, t := range visible {
			if IsVisibleDay(t, day) && MatchesQuery(t, q) {
				n++
			}
		}
		if n > 0 {
			out[day] = n
		}
	}
	return out
}

// SortKey is the date a task orders by; backlog tasks sort last.
func SortKey(t model.Task) string {
	if t.IsBacklog {
		return calendar.Far
	}
	if t.End != "" {
		return string(t.End)
	}
	if t.Start != "" {
		return string(t.Start)
	}
	return calendar.Far
}

// Less orders by priority (high first), then sort key, then appointment start
// time (untimed first), then title by locale collation.
func (e *Engine) Less(a, b model.Task) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if ka, kb := SortKey(a), SortKey(b); ka != kb {
		return ka < kb
	}
	if ta, tb := timeKey(a), timeKey(b); ta != tb {
		return ta < tb
	}
	return e.coll.CompareString(a.Title, b.Title) < 0
}

func timeKey(t model.Task) string {
	if t.Kind != model.KindAppointment {
		return ""
	}
	return string(t.TimeStart)
}

// Sort orders tasks in place; equal tasks keep their relative order.
func (e *Engine) Sort(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return e.Less(tasks[i], tasks[j]) })
}
