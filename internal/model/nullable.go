package model

import (
	"encoding/json"
	"regexp"
	"strings"

	"planner-cli/internal/calendar"
)

// Date is an ISO calendar date (YYYY-MM-DD). The empty value encodes as JSON null.
type Date string

// TimeOfDay is a wall-clock time (HH:MM). The empty value encodes as JSON null.
type TimeOfDay string

var reTimeOfDay = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func (d Date) IsZero() bool { return d == "" }

func (d Date) String() string { return string(d) }

func (d Date) Valid() bool { return calendar.Valid(string(d)) }

func (d Date) MarshalJSON() ([]byte, error) { return marshalNullable(string(d)) }

func (d *Date) UnmarshalJSON(b []byte) error {
	*d = Date(unmarshalNullable(b))
	return nil
}

func (t TimeOfDay) IsZero() bool { return t == "" }

func (t TimeOfDay) String() string { return string(t) }

func (t TimeOfDay) Valid() bool { return reTimeOfDay.MatchString(string(t)) }

func (t TimeOfDay) MarshalJSON() ([]byte, error) { return marshalNullable(string(t)) }

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	*t = TimeOfDay(unmarshalNullable(b))
	return nil
}

// ParseTimeOfDay accepts H:MM or HH:MM and returns the zero-padded form.
func ParseTimeOfDay(s string) (TimeOfDay, bool) {
	s = strings.TrimSpace(s)
	if len(s) == len("9:00") {
		s = "0" + s
	}
	t := TimeOfDay(s)
	if !t.Valid() {
		return "", false
	}
	return t, true
}

func marshalNullable(s string) ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return json.Marshal(s)
}

// unmarshalNullable never fails; anything that is not a JSON string becomes empty
// and is repaired by normalization.
func unmarshalNullable(b []byte) string {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
