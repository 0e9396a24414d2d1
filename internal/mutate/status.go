package mutate

import (
	"strings"

	"planner-cli/internal/model"
	"planner-cli/internal/recur"
)

// StartTask moves a planned task into progress.
func StartTask(doc *model.Document, id string) (TaskResult, error) {
	return transition(doc, id, model.StatusInProgress, model.StatusPlanned)
}

// PauseTask moves an in-progress task back to planned.
func PauseTask(doc *model.Document, id string) (TaskResult, error) {
	return transition(doc, id, model.StatusPlanned, model.StatusInProgress)
}

func transition(doc *model.Document, id string, to, from model.Status) (TaskResult, error) {
	id = strings.TrimSpace(id)
	t, ok := doc.FindTask(id)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: id}
	}
	if t.Status == to {
		return TaskResult{Task: t, Changed: false}, nil
	}
	if t.Status != from {
		return TaskResult{}, TransitionError{ID: id, From: t.Status, To: to}
	}
	t.Status = to
	return TaskResult{Task: t, Changed: true}, nil
}

type CompleteResult struct {
	Task    *model.Task
	Outcome recur.Outcome
	Changed bool
}

// CompleteTask marks a task done. A recurring task advances to its next
// occurrence instead and Outcome reports recur.OutcomeAdvanced.
func CompleteTask(doc *model.Document, id string, env model.Env) (CompleteResult, error) {
	id = strings.TrimSpace(id)
	t, ok := doc.FindTask(id)
	if !ok {
		return CompleteResult{}, NotFoundError{Kind: "task", ID: id}
	}
	if t.Status == model.StatusDone {
		return CompleteResult{Task: t, Outcome: recur.OutcomeDone, Changed: false}, nil
	}
	out := recur.Complete(t, env.Time())
	return CompleteResult{Task: t, Outcome: out, Changed: true}, nil
}

// RestoreTask reopens a done task: dated tasks go back to planned, undated ones
// to the backlog.
func RestoreTask(doc *model.Document, id string) (TaskResult, error) {
	id = strings.TrimSpace(id)
	t, ok := doc.FindTask(id)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: "task", ID: id}
	}
	if t.Status != model.StatusDone {
		return TaskResult{}, TransitionError{ID: id, From: t.Status, To: model.StatusPlanned}
	}
	if _, _, dated := t.Range(); dated {
		t.Status = model.StatusPlanned
	} else {
		t.Status = model.StatusBacklog
	}
	t.DoneAt = nil
	return TaskResult{Task: t, Changed: true}, nil
}
