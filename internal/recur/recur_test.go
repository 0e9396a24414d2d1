package recur

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"planner-cli/internal/model"
)

func monthly() model.Task {
	return model.Task{
		ID:          "t1",
		Title:       "Rent",
		Kind:        model.KindTask,
		Start:       "2025-01-31",
		End:         "2025-01-31",
		Repeat:      model.RepeatMonthly,
		RepeatUntil: "2025-03-15",
		Status:      model.StatusInProgress,
	}
}

func TestAdvance_MonthlyClampThenExhaust(t *testing.T) {
	tk := monthly()
	if !Advance(&tk) {
		t.Fatalf("expected first advance to succeed")
	}
	if tk.Start != "2025-02-28" || tk.End != "2025-02-28" || tk.Status != model.StatusPlanned {
		t.Fatalf("unexpected first occurrence: %+v", tk)
	}
	before := tk
	if Advance(&tk) {
		t.Fatalf("expected series to be exhausted; got %+v", tk)
	}
	if diff := cmp.Diff(before, tk); diff != "" {
		t.Fatalf("exhausted advance must not change the task (-before +after):\n%s", diff)
	}
}

func TestAdvance_KeepsDuration(t *testing.T) {
	tk := model.Task{Start: "2025-05-05", End: "2025-05-07", Repeat: model.RepeatWeekly, Status: model.StatusPlanned}
	if !Advance(&tk) {
		t.Fatalf("expected advance")
	}
	if tk.Start != "2025-05-12" || tk.End != "2025-05-14" {
		t.Fatalf("expected span shifted by a week; got %s..%s", tk.Start, tk.End)
	}
}

func TestAdvance_KeepsDurationAcrossCenturies(t *testing.T) {
	tk := model.Task{Start: "2025-01-01", End: "2500-01-01", Repeat: model.RepeatDaily, Status: model.StatusPlanned}
	if !Advance(&tk) {
		t.Fatalf("expected advance")
	}
	if tk.Start != "2025-01-02" || tk.End != "2500-01-02" {
		t.Fatalf("expected long span shifted by a day; got %s..%s", tk.Start, tk.End)
	}
}

func TestAdvance_NotRecurring(t *testing.T) {
	for _, tk := range []model.Task{
		{Start: "2025-05-05", End: "2025-05-05", Repeat: model.RepeatNone},
		{IsBacklog: true, Repeat: model.RepeatDaily},
	} {
		c := tk
		if Advance(&c) {
			t.Fatalf("expected no advance for %+v", tk)
		}
	}
}

func TestComplete(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

	tk := monthly()
	if got := Complete(&tk, now); got != OutcomeAdvanced || tk.DoneAt != nil {
		t.Fatalf("expected advanced; got %v %+v", got, tk)
	}
	if got := Complete(&tk, now); got != OutcomeDone {
		t.Fatalf("expected done on exhaustion; got %v", got)
	}
	if tk.Status != model.StatusDone || tk.Repeat != model.RepeatNone || tk.RepeatUntil != "" {
		t.Fatalf("expected one-shot completion; got %+v", tk)
	}
	if tk.DoneAt == nil || !tk.DoneAt.Equal(now) {
		t.Fatalf("expected doneAt=now; got %v", tk.DoneAt)
	}
	if tk.Start != "2025-02-28" {
		t.Fatalf("expected dates of the last occurrence kept; got %s", tk.Start)
	}

	plain := model.Task{Start: "2025-05-01", End: "2025-05-01", Repeat: model.RepeatNone, Status: model.StatusPlanned}
	if got := Complete(&plain, now); got != OutcomeDone || plain.Status != model.StatusDone {
		t.Fatalf("expected plain task done; got %v %+v", got, plain)
	}
}

func TestUpcoming(t *testing.T) {
	tk := model.Task{Start: "2025-05-30", End: "2025-05-30", Repeat: model.RepeatDaily, RepeatUntil: "2025-06-02"}
	got := Upcoming(tk, 10)
	if diff := cmp.Diff([]string{"2025-05-31", "2025-06-01", "2025-06-02"}, got); diff != "" {
		t.Fatalf("upcoming (-want +got):\n%s", diff)
	}
	if tk.Start != "2025-05-30" {
		t.Fatalf("upcoming mutated task")
	}
	if got := Upcoming(model.Task{Start: "2025-01-01", Repeat: model.RepeatWeekly}, 2); len(got) != 2 {
		t.Fatalf("expected two previews for unbounded series; got %v", got)
	}
}
