package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"planner-cli/internal/calendar"
	"planner-cli/internal/model"
)

var (
	reGermanDate = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
	reMonth      = regexp.MustCompile(`^\d{4}-\d{2}$`)

	naturalDates = func() *when.Parser {
		w := when.New(nil)
		w.Add(en.All...)
		w.Add(common.All...)
		return w
	}()

	germanWords = map[string]int{"heute": 0, "morgen": 1, "übermorgen": 2, "gestern": -1}
)

// parseDay parses:
// - YYYY-MM-DD
// - DD.MM.YYYY
// - heute / morgen / übermorgen / gestern
// - natural language ("tomorrow", "next friday", "in 3 days")
//
// The result is an ISO calendar date relative to now.
func parseDay(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}
	if calendar.Valid(s) {
		return s, nil
	}
	if m := reGermanDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		iso := fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
		if calendar.Valid(iso) {
			return iso, nil
		}
	}
	if n, ok := germanWords[strings.ToLower(s)]; ok {
		return calendar.AddDays(calendar.Today(now), n), nil
	}
	r, err := naturalDates.Parse(s, now)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	if r == nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD, DD.MM.YYYY or e.g. \"next friday\")", s)
	}
	return calendar.Format(r.Time), nil
}

func parseOptionalDay(s string, now time.Time) (model.Date, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	d, err := parseDay(s, now)
	return model.Date(d), err
}

// parseMonth accepts YYYY-MM or any day parseDay understands.
func parseMonth(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return calendar.Today(now)[:7], nil
	}
	if reMonth.MatchString(s) {
		if !calendar.Valid(s + "-01") {
			return "", fmt.Errorf("invalid month %q (expected YYYY-MM)", s)
		}
		return s, nil
	}
	d, err := parseDay(s, now)
	if err != nil {
		return "", err
	}
	return d[:7], nil
}

func parseTimeOfDay(s string) (model.TimeOfDay, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	t, ok := model.ParseTimeOfDay(s)
	if !ok {
		return "", fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	return t, nil
}
