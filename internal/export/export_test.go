package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/go-cmp/cmp"

	"planner-cli/internal/migrate"
	"planner-cli/internal/model"
	"planner-cli/internal/view"
)

func exportDoc() *model.Document {
	return &model.Document{
		Version: 2,
		People: []model.Person{
			{ID: "p1", Name: "Anna", Type: model.PersonTypePerson, Members: []string{}},
			{ID: "p2", Name: "Ben", Type: model.PersonTypePerson, Members: []string{}},
		},
		Tasks: []model.Task{
			{ID: "t1", Title: `Report "Q2"; final`, Note: "line one\nline two", Priority: 3, Kind: model.KindTask,
				Start: "2025-05-12", End: "2025-05-14", Repeat: model.RepeatNone, Status: model.StatusPlanned, Assignees: []string{"p1", "p2"}},
			{ID: "t2", Title: "Standup", Priority: 1, Kind: model.KindAppointment, Start: "2025-05-12", End: "2025-05-12",
				TimeStart: "09:00", TimeEnd: "09:15", Repeat: model.RepeatWeekly, RepeatUntil: "2025-06-30", Status: model.StatusInProgress, Assignees: []string{"p1"}},
			{ID: "t3", Title: "Idea", Kind: model.KindTask, IsBacklog: true, Repeat: model.RepeatNone, Status: model.StatusBacklog, Assignees: []string{"p2"}},
			{ID: "t4", Title: "Old", Kind: model.KindTask, Start: "2025-05-01", End: "2025-05-01", Repeat: model.RepeatNone, Status: model.StatusDone, Assignees: []string{"p2"}},
		},
	}
}

func TestCSV_BOMAndQuoting(t *testing.T) {
	doc := exportDoc()
	var buf bytes.Buffer
	if err := CSV(&buf, doc, doc.Tasks[:2], view.For("de")); err != nil {
		t.Fatalf("CSV: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\ufeff") {
		t.Fatalf("expected UTF-8 BOM")
	}
	if !strings.Contains(out, `"Report ""Q2""; final"`) {
		t.Fatalf("expected doubled quotes and quoted delimiter:\n%s", out)
	}

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff")))
	r.Comma = ';'
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := [][]string{
		{"Personen", "Art", "Status", "Priorität", "Start", "Ende", "Zeit", "Wiederholung", "Titel", "Notiz"},
		{"Anna, Ben", "Aufgabe", "geplant", "hoch", "2025-05-12", "2025-05-14", "", "—", `Report "Q2"; final`, "line one\nline two"},
		{"Anna", "Termin", "in Arbeit", "niedrig", "2025-05-12", "2025-05-12", "09:00–09:15", "wöchentlich", "Standup", ""},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows (-want +got):\n%s", diff)
	}
}

func TestJSON_Reimportable(t *testing.T) {
	doc := exportDoc()
	var buf bytes.Buffer
	if err := JSON(&buf, doc); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	env := model.Env{Now: func() time.Time { return time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC) }}
	back, err := migrate.Incoming(buf.Bytes(), env)
	if err != nil {
		t.Fatalf("Incoming: %v", err)
	}
	if len(back.People) != 2 || len(back.Tasks) != 4 || back.Tasks[0].Title != doc.Tasks[0].Title {
		t.Fatalf("unexpected round trip: %+v", back)
	}
	if BackupFileName("2025-05-10") != "planner-backup_v2_2025-05-10.json" {
		t.Fatalf("unexpected backup file name %q", BackupFileName("2025-05-10"))
	}
}

func TestICS_Events(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	if err := ICS(&buf, exportDoc().Tasks, ICSOptions{Now: now, Name: "Anna"}); err != nil {
		t.Fatalf("ICS: %v", err)
	}
	cal, err := ical.ParseCalendar(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("parse exported calendar: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("expected backlog and done tasks to be skipped; got %d events", len(events))
	}

	byUID := map[string]*ical.VEvent{}
	for _, ev := range events {
		byUID[ev.Id()] = ev
	}
	allDay := byUID["t1@planner"]
	if allDay == nil {
		t.Fatalf("missing t1 event")
	}
	if v := allDay.GetProperty(ical.ComponentPropertyDtStart).Value; v != "20250512" {
		t.Fatalf("unexpected all-day start %q", v)
	}
	if v := allDay.GetProperty(ical.ComponentPropertyDtEnd).Value; v != "20250515" {
		t.Fatalf("expected exclusive all-day end; got %q", v)
	}

	timed := byUID["t2@planner"]
	if timed == nil {
		t.Fatalf("missing t2 event")
	}
	if v := timed.GetProperty(ical.ComponentPropertyDtStart).Value; v != "20250512T090000" {
		t.Fatalf("unexpected timed start %q", v)
	}
	rule := timed.GetProperty(ical.ComponentPropertyRrule)
	if rule == nil || !strings.Contains(rule.Value, "FREQ=WEEKLY") || !strings.Contains(rule.Value, "UNTIL=20250630T235959Z") {
		t.Fatalf("unexpected rrule %+v", rule)
	}
}

func TestRRule(t *testing.T) {
	cases := []struct {
		task model.Task
		want []string
	}{
		{model.Task{Repeat: model.RepeatNone}, nil},
		{model.Task{Repeat: model.RepeatDaily}, []string{"FREQ=DAILY"}},
		{model.Task{Repeat: model.RepeatMonthly, RepeatUntil: "2025-03-15"}, []string{"FREQ=MONTHLY", "UNTIL=20250315T235959Z"}},
		{model.Task{Repeat: model.RepeatWeekly, IsBacklog: true}, nil},
	}
	for i, c := range cases {
		got := RRule(c.task)
		if len(c.want) == 0 {
			if got != "" {
				t.Fatalf("case %d: expected no rule; got %q", i, got)
			}
			continue
		}
		for _, part := range c.want {
			if !strings.Contains(got, part) {
				t.Fatalf("case %d: expected %q in %q", i, part, got)
			}
		}
	}
}
