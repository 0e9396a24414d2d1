package mutate

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"planner-cli/internal/model"
)

func testEnv() model.Env {
	n := 0
	return model.Env{
		Now: func() time.Time { return time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("gen-%d", n)
		},
	}
}

func testDoc() *model.Document {
	doc := &model.Document{
		Version: 2,
		People: []model.Person{
			{ID: "p1", Name: "Anna", Type: model.PersonTypePerson},
			{ID: "p2", Name: "Ben", Type: model.PersonTypePerson},
			{ID: "g1", Name: "Team", Type: model.PersonTypeGroup, Members: []string{"p1", "p2"}},
		},
		Tasks: []model.Task{
			{ID: "t-dated", Title: "Dated", Start: "2025-05-12", End: "2025-05-12", Status: model.StatusPlanned, Assignees: []string{"p1"}},
			{ID: "t-backlog", Title: "Later", IsBacklog: true, Status: model.StatusBacklog, Assignees: []string{"p1", "p2"}},
		},
	}
	doc.Normalize(testEnv())
	return doc
}

func TestValidateTaskInput(t *testing.T) {
	doc := testDoc()
	today := "2025-05-10"
	ok := TaskInput{Title: "T", Start: "2025-05-10", Assignees: []string{"p1"}}

	cases := []struct {
		name  string
		in    TaskInput
		edit  bool
		field string
		err   error
	}{
		{name: "missing title", in: TaskInput{Title: "  ", Assignees: []string{"p1"}}, field: "title"},
		{name: "no assignees", in: TaskInput{Title: "T", Start: "2025-05-10"}, err: ErrEmptyAssignees},
		{name: "unknown assignee", in: TaskInput{Title: "T", Start: "2025-05-10", Assignees: []string{"ghost"}}, field: "assignees"},
		{name: "missing start", in: TaskInput{Title: "T", Assignees: []string{"p1"}}, field: "start"},
		{name: "past on create", in: TaskInput{Title: "T", Start: "2025-05-09", Assignees: []string{"p1"}}, field: "start"},
		{name: "end before start", in: TaskInput{Title: "T", Start: "2025-05-12", End: "2025-05-11", Assignees: []string{"p1"}}, field: "end"},
		{name: "priority", in: TaskInput{Title: "T", Priority: 5, Start: "2025-05-10", Assignees: []string{"p1"}}, field: "priority"},
		{name: "repeat until", in: TaskInput{Title: "T", Start: "2025-05-12", Repeat: model.RepeatDaily, RepeatUntil: "2025-05-11", Assignees: []string{"p1"}}, field: "repeatUntil"},
		{name: "time order", in: TaskInput{Title: "T", Kind: model.KindAppointment, Start: "2025-05-12", TimeStart: "10:00", TimeEnd: "09:00", Assignees: []string{"p1"}}, field: "timeEnd"},
	}
	for _, tc := range cases {
		_, err := ValidateTaskInput(doc, tc.in, tc.edit, today)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%s: expected %v; got %v", tc.name, tc.err, err)
			}
			continue
		}
		var ve ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Fatalf("%s: expected ValidationError on %q; got %v", tc.name, tc.field, err)
		}
	}

	if _, err := ValidateTaskInput(doc, ok, false, today); err != nil {
		t.Fatalf("expected valid input; got %v", err)
	}
	past := ok
	past.Start = "2025-01-01"
	if _, err := ValidateTaskInput(doc, past, true, today); err != nil {
		t.Fatalf("expected edits to keep past dates; got %v", err)
	}
	backlog := TaskInput{Title: "B", IsBacklog: true, Start: "2020-01-01", Repeat: model.RepeatDaily, Assignees: []string{"p1", "p1"}}
	got, err := ValidateTaskInput(doc, backlog, false, today)
	if err != nil {
		t.Fatalf("expected backlog input to be valid; got %v", err)
	}
	if got.Start != "" || got.Repeat != model.RepeatNone || len(got.Assignees) != 1 {
		t.Fatalf("expected cleaned backlog input; got %+v", got)
	}
}

func TestCreateTask(t *testing.T) {
	doc := testDoc()
	res, err := CreateTask(doc, TaskInput{Title: " New ", Start: "2025-05-11", End: "2025-05-13", Assignees: []string{"g1"}}, testEnv())
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	if !res.Changed || doc.Tasks[0].ID != res.Task.ID || res.Task.Title != "New" {
		t.Fatalf("expected new task first; got %+v", doc.Tasks[0])
	}
	if res.Task.Status != model.StatusPlanned || res.Task.End != "2025-05-13" {
		t.Fatalf("unexpected created task: %+v", res.Task)
	}

	before := doc.Clone()
	if _, err := CreateTask(doc, TaskInput{Title: "bad"}, testEnv()); err == nil {
		t.Fatalf("expected error")
	}
	if diff := cmp.Diff(before, doc); diff != "" {
		t.Fatalf("rejected input changed the document:\n%s", diff)
	}
}

func TestUpdateTask_BacklogToggle(t *testing.T) {
	doc := testDoc()
	env := testEnv()

	tk, _ := doc.FindTask("t-dated")
	in := InputFromTask(*tk)
	in.IsBacklog = true
	res, err := UpdateTask(doc, "t-dated", in, env)
	if err != nil {
		t.Fatalf("UpdateTask error: %v", err)
	}
	if !res.Changed || res.Task.Status != model.StatusBacklog || res.Task.Start != "" {
		t.Fatalf("expected task moved to backlog; got %+v", res.Task)
	}

	in = InputFromTask(*res.Task)
	in.IsBacklog = false
	in.Start = "2025-01-02"
	res, err = UpdateTask(doc, "t-dated", in, env)
	if err != nil {
		t.Fatalf("UpdateTask error: %v", err)
	}
	if res.Task.Status != model.StatusPlanned || res.Task.Start != "2025-01-02" || res.Task.End != "2025-01-02" {
		t.Fatalf("expected task planned with past date kept; got %+v", res.Task)
	}

	same, err := UpdateTask(doc, "t-dated", InputFromTask(*res.Task), env)
	if err != nil || same.Changed {
		t.Fatalf("expected unchanged edit to be a no-op; got %+v %v", same, err)
	}

	var nf NotFoundError
	if _, err := UpdateTask(doc, "nope", in, env); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError; got %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	doc := testDoc()
	res, err := DeleteTask(doc, "t-dated")
	if err != nil || !res.Changed || res.Task.ID != "t-dated" {
		t.Fatalf("unexpected delete result: %+v %v", res, err)
	}
	if doc.HasTaskID("t-dated") {
		t.Fatalf("expected task removed")
	}
	if _, err := DeleteTask(doc, "t-dated"); err == nil {
		t.Fatalf("expected NotFoundError on second delete")
	}
}
