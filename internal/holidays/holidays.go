// Package holidays annotates calendar days with public and school holidays read
// from iCalendar feeds. Lookups are best effort: a source that cannot be read
// or parsed contributes nothing and is only logged.
package holidays

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"planner-cli/internal/calendar"
	appLog "planner-cli/internal/log"
)

// SchoolHoliday is an inclusive range of days.
type SchoolHoliday struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Provider is what the calendar views consume.
type Provider interface {
	HolidayName(ctx context.Context, day string) (string, bool)
	SchoolHolidayRanges(ctx context.Context, year int) []SchoolHoliday
}

// None is a Provider without any holidays.
type None struct{}

func (None) HolidayName(context.Context, string) (string, bool)        { return "", false }
func (None) SchoolHolidayRanges(context.Context, int) []SchoolHoliday { return nil }

type Options struct {
	// Public and School are ICS sources: file paths or http(s) URLs.
	Public  []string
	School  []string
	Timeout time.Duration
	Client  *http.Client
}

// ICSProvider reads holidays from ICS sources and caches results per year.
type ICSProvider struct {
	public []string
	school []string
	client *http.Client

	mu          sync.Mutex
	events      map[string][]event
	publicYears map[int]map[string]string
	schoolYears map[int][]SchoolHoliday
}

func NewICSProvider(o Options) *ICSProvider {
	client := o.Client
	if client == nil {
		timeout := o.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &ICSProvider{
		public:      o.Public,
		school:      o.School,
		client:      client,
		events:      map[string][]event{},
		publicYears: map[int]map[string]string{},
		schoolYears: map[int][]SchoolHoliday{},
	}
}

// HolidayName returns the public holiday on day, if any. Several holidays on
// the same day are joined with " / ".
func (p *ICSProvider) HolidayName(ctx context.Context, day string) (string, bool) {
	year := calendar.Year(day)
	if year == 0 {
		return "", false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	names, ok := p.publicYears[year]
	if !ok {
		names = map[string]string{}
		for _, ev := range p.sourceEvents(ctx, p.public) {
			for _, occ := range ev.occurrences(year) {
				for d := occ.start; d <= occ.end; d = calendar.AddDays(d, 1) {
					if calendar.Year(d) != year {
						continue
					}
					if prev, dup := names[d]; dup && prev != ev.summary {
						names[d] = prev + " / " + ev.summary
					} else {
						names[d] = ev.summary
					}
				}
			}
		}
		p.publicYears[year] = names
	}
	name, ok := names[day]
	return name, ok
}

// SchoolHolidayRanges returns the school holiday ranges that touch year, ordered by start.
func (p *ICSProvider) SchoolHolidayRanges(ctx context.Context, year int) []SchoolHoliday {
	p.mu.Lock()
	defer p.mu.Unlock()
	if out, ok := p.schoolYears[year]; ok {
		return out
	}
	out := []SchoolHoliday{}
	for _, ev := range p.sourceEvents(ctx, p.school) {
		for _, occ := range ev.occurrences(year) {
			out = append(out, SchoolHoliday{Name: ev.summary, Start: occ.start, End: occ.end})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	p.schoolYears[year] = out
	return out
}

// InSchoolHoliday returns the school holiday covering day, if any.
func InSchoolHoliday(ctx context.Context, p Provider, day string) (SchoolHoliday, bool) {
	for _, r := range p.SchoolHolidayRanges(ctx, calendar.Year(day)) {
		if calendar.InRange(day, r.Start, r.End) {
			return r, true
		}
	}
	return SchoolHoliday{}, false
}

// sourceEvents parses every source once; p.mu must be held.
func (p *ICSProvider) sourceEvents(ctx context.Context, sources []string) []event {
	var out []event
	for _, src := range sources {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		evs, ok := p.events[src]
		if !ok {
			body, err := p.read(ctx, src)
			if err == nil {
				evs, err = parseEvents(body)
			}
			if err != nil {
				appLog.Error("holiday source unavailable", err, "source", src)
			}
			p.events[src] = evs
		}
		out = append(out, evs...)
	}
	return out
}

func (p *ICSProvider) read(ctx context.Context, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(src)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// event is an all-day (or date-truncated) VEVENT.
type event struct {
	summary string
	start   string
	end     string // inclusive
	rrule   string
}

type occurrence struct {
	start, end string
}

func parseEvents(body []byte) ([]event, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var out []event
	for _, ve := range cal.Events() {
		ev := event{}
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			ev.summary = strings.TrimSpace(p.Value)
		}
		dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
		if dtStart == nil {
			continue
		}
		start, ok := icsDate(dtStart.Value)
		if !ok {
			continue
		}
		ev.start, ev.end = start, start
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, ok := icsDate(dtEnd.Value); ok && end > start {
				// All-day DTEND is exclusive.
				if !strings.Contains(dtEnd.Value, "T") {
					end = calendar.AddDays(end, -1)
				}
				ev.end = end
			}
		}
		if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
			ev.rrule = strings.TrimSpace(p.Value)
		}
		out = append(out, ev)
	}
	return out, nil
}

// icsDate reads the calendar date of a DATE or DATE-TIME value.
func icsDate(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if len(v) < 8 {
		return "", false
	}
	iso := v[0:4] + "-" + v[4:6] + "-" + v[6:8]
	return iso, calendar.Valid(iso)
}

// occurrences lists the spans of ev that overlap year.
func (ev event) occurrences(year int) []occurrence {
	from := fmt.Sprintf("%04d-01-01", year)
	to := fmt.Sprintf("%04d-12-31", year)
	span := calendar.DaysBetween(ev.end, ev.start)

	if ev.rrule == "" {
		if ev.end < from || ev.start > to {
			return nil
		}
		return []occurrence{{start: ev.start, end: ev.end}}
	}

	r, err := rrule.StrToRRule(ev.rrule)
	if err != nil {
		appLog.Error("holiday rrule invalid", err, "summary", ev.summary, "rrule", ev.rrule)
		return nil
	}
	dtStart, _ := calendar.Parse(ev.start)
	r.DTStart(dtStart)
	lo, _ := calendar.Parse(calendar.AddDays(from, -span))
	hi, _ := calendar.Parse(to)
	var out []occurrence
	for _, t := range r.Between(lo, hi, true) {
		s := calendar.Format(t)
		out = append(out, occurrence{start: s, end: calendar.AddDays(s, span)})
	}
	return out
}
