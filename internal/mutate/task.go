package mutate

import (
	"strings"

	"planner-cli/internal/model"
)

// TaskInput is the user-editable part of a task.
type TaskInput struct {
	Title       string
	Note        string
	Priority    int
	Kind        model.Kind
	IsBacklog   bool
	Start       model.Date
	End         model.Date
	TimeStart   model.TimeOfDay
	TimeEnd     model.TimeOfDay
	Repeat      model.Repeat
	RepeatUntil model.Date
	Assignees   []string
}

// InputFromTask seeds an edit with the task's current values.
func InputFromTask(t model.Task) TaskInput {
	return TaskInput{
		Title:       t.Title,
		Note:        t.Note,
		Priority:    t.Priority,
		Kind:        t.Kind,
		IsBacklog:   t.IsBacklog,
		Start:       t.Start,
		End:         t.End,
		TimeStart:   t.TimeStart,
		TimeEnd:     t.TimeEnd,
		Repeat:      t.Repeat,
		RepeatUntil: t.RepeatUntil,
		Assignees:   append([]string{}, t.Assignees...),
	}
}

type TaskResult struct {
	Task    *model.Task
	Changed bool
}

// ValidateTaskInput checks in against doc and returns a cleaned copy. Creation
// rejects a start before today; edits may keep older dates.
func ValidateTaskInput(doc *model.Document, in TaskInput, isEdit bool, today string) (TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Note = strings.TrimSpace(in.Note)
	if in.Title == "" {
		return in, invalid("title", "title is required")
	}

	var assignees []string
	seen := map[string]bool{}
	for _, a := range in.Assignees {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		if _, ok := doc.FindPerson(a); !ok {
			return in, invalid("assignees", "unknown assignee: "+a)
		}
		seen[a] = true
		assignees = append(assignees, a)
	}
	if len(assignees) == 0 {
		return in, ErrEmptyAssignees
	}
	in.Assignees = assignees

	if in.Priority < 0 || in.Priority > 3 {
		return in, invalid("priority", "priority must be between 0 and 3")
	}
	if in.Kind == "" {
		in.Kind = model.KindTask
	}
	if !model.ValidKind(in.Kind) {
		return in, invalid("kind", "unknown kind: "+string(in.Kind))
	}
	if in.Repeat == "" {
		in.Repeat = model.RepeatNone
	}
	if !model.ValidRepeat(in.Repeat) {
		return in, invalid("repeat", "unknown repeat: "+string(in.Repeat))
	}

	if in.IsBacklog {
		in.Start, in.End = "", ""
		in.TimeStart, in.TimeEnd = "", ""
		in.Repeat = model.RepeatNone
		in.RepeatUntil = ""
		return in, nil
	}

	if in.Start == "" {
		return in, invalid("start", "start date is required unless the task goes to the backlog")
	}
	if !in.Start.Valid() {
		return in, invalid("start", "start must be YYYY-MM-DD")
	}
	if in.End == "" {
		in.End = in.Start
	}
	if !in.End.Valid() {
		return in, invalid("end", "end must be YYYY-MM-DD")
	}
	if !isEdit && string(in.Start) < today {
		return in, invalid("start", "start date is in the past; use the backlog or pick today or later")
	}
	if in.End < in.Start {
		return in, invalid("end", "end must be on or after start")
	}
	if in.RepeatUntil != "" {
		if !in.RepeatUntil.Valid() {
			return in, invalid("repeatUntil", "repeat-until must be YYYY-MM-DD")
		}
		if in.RepeatUntil < in.Start {
			return in, invalid("repeatUntil", "repeat-until must be on or after start")
		}
	}

	if in.Kind == model.KindAppointment {
		if in.TimeStart != "" && !in.TimeStart.Valid() {
			return in, invalid("timeStart", "time must be HH:MM")
		}
		if in.TimeEnd != "" && !in.TimeEnd.Valid() {
			return in, invalid("timeEnd", "time must be HH:MM")
		}
		if in.TimeEnd != "" && in.TimeStart == "" {
			return in, invalid("timeEnd", "end time needs a start time")
		}
		if in.TimeEnd != "" && in.TimeEnd < in.TimeStart {
			return in, invalid("timeEnd", "end time must not be before start time")
		}
	}
	return in, nil
}

func apply(t *model.Task, in TaskInput) {
	t.Title = in.Title
	t.Note = in.Note
	t.Priority = in.Priority
	t.Kind = in.Kind
	t.IsBacklog = in.IsBacklog
	t.Start, t.End = in.Start, in.End
	t.TimeStart, t.TimeEnd = in.TimeStart, in.TimeEnd
	t.Repeat = in.Repeat
	t.RepeatUntil = in.RepeatUntil
	t.Assignees = append([]string{}, in.Assignees...)
}

// CreateTask validates in and inserts a new task at the front of the list.
func CreateTask(doc *model.Document, in TaskInput, env model.Env) (TaskResult, error) {
	in, err := ValidateTaskInput(doc, in, false, env.Today())
	if err != nil {
		return TaskResult{}, err
	}
	t := model.Task{ID: env.ID(), CreatedAt: env.Time().UTC()}
	apply(&t, in)
	if in.IsBacklog {
		t.Status = model.StatusBacklog
	} else {
		t.Status = model.StatusPlanned
	}
	for doc.HasTaskID(t.ID) {
		t.ID = env.ID()
	}
	t = model.NormalizeTask(t, env)
	doc.Tasks = append([]model.Task{t}, doc.Tasks...)
	return TaskResult{Task: &doc.Tasks[0], Changed: true}, nil
}

// UpdateTask replaces the editable fields of an existing task. Moving a task to
// the backlog clears its schedule and, unless done, its status becomes backlog;
// moving it out of the backlog turns a backlog status into planned.
func UpdateTask(doc *model.Document, id string, in TaskInput, env model.Env) (TaskResult, error) {
	id = strings.TrimSpace(id)
	t, ok := doc.FindTask(id)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: id}
	}
	in, err := ValidateTaskInput(doc, in, true, env.Today())
	if err != nil {
		return TaskResult{}, err
	}
	before := InputFromTask(*t)
	apply(t, in)
	if t.IsBacklog {
		if t.Status != model.StatusDone {
			t.Status = model.StatusBacklog
		}
	} else if t.Status == model.StatusBacklog {
		t.Status = model.StatusPlanned
	}
	*t = model.NormalizeTask(*t, env)
	return TaskResult{Task: t, Changed: !sameInput(before, InputFromTask(*t))}, nil
}

func sameInput(a, b TaskInput) bool {
	if len(a.Assignees) != len(b.Assignees) {
		return false
	}
	for i := range a.Assignees {
		if a.Assignees[i] != b.Assignees[i] {
			return false
		}
	}
	return a.Title == b.Title && a.Note == b.Note && a.Priority == b.Priority &&
		a.Kind == b.Kind && a.IsBacklog == b.IsBacklog &&
		a.Start == b.Start && a.End == b.End &&
		a.TimeStart == b.TimeStart && a.TimeEnd == b.TimeEnd &&
		a.Repeat == b.Repeat && a.RepeatUntil == b.RepeatUntil
}

type DeleteTaskResult struct {
	Task    model.Task
	Changed bool
}

func DeleteTask(doc *model.Document, id string) (DeleteTaskResult, error) {
	id = strings.TrimSpace(id)
	for i, t := range doc.Tasks {
		if t.ID != id {
			continue
		}
		doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
		return DeleteTaskResult{Task: t, Changed: true}, nil
	}
	return DeleteTaskResult{}, NotFoundError{Kind: "task", ID: id}
}
