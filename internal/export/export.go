// Package export writes planner data as JSON backups, CSV sheets and
// iCalendar feeds.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"planner-cli/internal/calendar"
	"planner-cli/internal/model"
	"planner-cli/internal/view"
)

const (
	ProductID = "-//planner-cli//planner//DE"
	csvBOM    = "\ufeff"
)

// BackupFileName is the default name of a full-document export taken on day.
func BackupFileName(day string) string {
	return fmt.Sprintf("planner-backup_v%d_%s.json", model.CurrentVersion, day)
}

// JSON writes the full v2 document. The output is importable as is.
func JSON(w io.Writer, doc *model.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

var csvHeaders = map[string][]string{
	"de": {"Personen", "Art", "Status", "Priorität", "Start", "Ende", "Zeit", "Wiederholung", "Titel", "Notiz"},
	"en": {"Persons", "Kind", "Status", "Priority", "Start", "End", "Time", "Repeat", "Title", "Note"},
}

// CSV writes one ';'-separated row per task, prefixed with a UTF-8 BOM so
// spreadsheet tools detect the encoding.
func CSV(w io.Writer, doc *model.Document, tasks []model.Task, l view.Labels) error {
	if _, err := io.WriteString(w, csvBOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	header := csvHeaders[l.Locale]
	if header == nil {
		header = csvHeaders["de"]
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, t := range tasks {
		row := []string{
			view.Persons(doc, t.Assignees),
			l.Kind(t.Kind),
			l.Status(t.Status),
			l.Priority(t.Priority),
			t.Start.String(),
			t.End.String(),
			l.TimeRange(t),
			l.Repeat(t.Repeat),
			t.Title,
			t.Note,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ICSOptions controls which tasks become events.
type ICSOptions struct {
	Now time.Time
	// Name is written as X-WR-CALNAME when set.
	Name string
}

// ICS writes dated tasks that are not done as VEVENTs. Tasks and milestones
// become all-day events, appointments with a start time become floating timed
// events. Recurring tasks carry an RRULE bounded by repeatUntil.
func ICS(w io.Writer, tasks []model.Task, o ICSOptions) error {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)
	if o.Name != "" {
		cal.SetXWRCalName(o.Name)
	}
	now := o.Now
	if now.IsZero() {
		now = time.Now()
	}
	for _, t := range tasks {
		if t.IsBacklog || t.Status == model.StatusDone || !t.Start.Valid() {
			continue
		}
		ev := cal.AddEvent(t.ID + "@planner")
		ev.SetDtStampTime(now.UTC())
		ev.SetSummary(t.Title)
		if strings.TrimSpace(t.Note) != "" {
			ev.SetDescription(t.Note)
		}
		ev.SetProperty(ical.ComponentPropertyPriority, icsPriority(t.Priority))
		setSchedule(ev, t)
		if rule := RRule(t); rule != "" {
			ev.AddProperty(ical.ComponentPropertyRrule, rule)
		}
	}
	_, err := io.WriteString(w, cal.Serialize())
	return err
}

func setSchedule(ev *ical.VEvent, t model.Task) {
	start := compactDate(t.Start.String())
	if t.Kind == model.KindAppointment && t.TimeStart.Valid() {
		ev.SetProperty(ical.ComponentPropertyDtStart, start+"T"+compactTime(t.TimeStart))
		endTime := t.TimeEnd
		if !endTime.Valid() {
			endTime = plusHour(t.TimeStart)
		}
		ev.SetProperty(ical.ComponentPropertyDtEnd, start+"T"+compactTime(endTime))
		return
	}
	end := t.End.String()
	if !calendar.Valid(end) {
		end = t.Start.String()
	}
	ev.SetProperty(ical.ComponentPropertyDtStart, start, ical.WithValue(string(ical.ValueDataTypeDate)))
	ev.SetProperty(ical.ComponentPropertyDtEnd, compactDate(calendar.AddDays(end, 1)), ical.WithValue(string(ical.ValueDataTypeDate)))
}

// RRule renders the recurrence of t as an RRULE value, or "" when t does not repeat.
func RRule(t model.Task) string {
	if !t.IsRecurring() {
		return ""
	}
	opt := rrule.ROption{}
	switch t.Repeat {
	case model.RepeatDaily:
		opt.Freq = rrule.DAILY
	case model.RepeatWeekly:
		opt.Freq = rrule.WEEKLY
	case model.RepeatMonthly:
		opt.Freq = rrule.MONTHLY
	default:
		return ""
	}
	if until, ok := calendar.Parse(t.RepeatUntil.String()); ok {
		opt.Until = until.Add(24*time.Hour - time.Second)
	}
	return opt.RRuleString()
}

// icsPriority maps 3 (high) to 1, 2 to 5 and 1 to 9; 0 is undefined.
func icsPriority(p int) string {
	switch p {
	case 3:
		return "1"
	case 2:
		return "5"
	case 1:
		return "9"
	}
	return "0"
}

func compactDate(iso string) string { return strings.ReplaceAll(iso, "-", "") }

func compactTime(t model.TimeOfDay) string {
	return strings.ReplaceAll(t.String(), ":", "") + "00"
}

func plusHour(t model.TimeOfDay) model.TimeOfDay {
	var h, m int
	if _, err := fmt.Sscanf(t.String(), "%d:%d", &h, &m); err != nil {
		return t
	}
	if h >= 23 {
		return "23:59"
	}
	return model.TimeOfDay(fmt.Sprintf("%02d:%02d", h+1, m))
}
