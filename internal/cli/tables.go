package cli

import (
	"encoding/json"
	"strconv"
	"strings"

	"planner-cli/internal/format"
	"planner-cli/internal/model"
	"planner-cli/internal/view"
)

// peopleList marshals as the plain person array and renders as a table.
type peopleList []model.Person

func (p peopleList) MarshalJSON() ([]byte, error) {
	if p == nil {
		p = peopleList{}
	}
	return json.Marshal([]model.Person(p))
}

func (p peopleList) Table() format.Table {
	t := format.Table{Headers: []string{"ID", "NAME", "TYPE", "ROLE", "MEMBERS"}}
	for _, x := range p {
		t.Rows = append(t.Rows, []string{x.ID, x.Name, string(x.Type), x.Role, strconv.Itoa(len(x.Members))})
	}
	return t
}

// taskList marshals as the plain task array and renders as a table.
type taskList struct {
	tasks  []model.Task
	doc    *model.Document
	labels view.Labels
}

func (l taskList) MarshalJSON() ([]byte, error) {
	if l.tasks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.tasks)
}

func (l taskList) Table() format.Table {
	t := format.Table{Headers: []string{"ID", "TITLE", "DATE", "TIME", "PRIORITY", "STATUS", "REPEAT", "PERSONS"}}
	for _, x := range l.tasks {
		t.Rows = append(t.Rows, []string{
			shortID(x.ID),
			l.labels.Title(x),
			l.labels.Range(x),
			l.labels.TimeRange(x),
			l.labels.Priority(x.Priority),
			l.labels.Status(x.Status),
			l.labels.Repeat(x.Repeat),
			view.Persons(l.doc, x.Assignees),
		})
	}
	return t
}

// rendered pairs structured JSON data with a pre-rendered terminal view.
type rendered struct {
	data any
	text string
}

func (r rendered) MarshalJSON() ([]byte, error) { return json.Marshal(r.data) }

func (r rendered) Text() string { return r.text }

func shortID(id string) string {
	if len(id) > 8 && strings.Count(id, "-") == 4 {
		return id[:8]
	}
	return id
}
