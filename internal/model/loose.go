package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Raw records come from parsed JSON of unknown provenance (old exports, hand
// edits). The decoders below coerce loosely typed values and hand the result to
// the normalizers; they never reject a record.

// NormalizePersonRaw decodes and normalizes a loosely typed person record.
func NormalizePersonRaw(raw map[string]any, env Env) Person {
	return NormalizePerson(PersonFromRaw(raw), env)
}

// NormalizeTaskRaw decodes and normalizes a loosely typed task record.
func NormalizeTaskRaw(raw map[string]any, env Env) Task {
	return NormalizeTask(TaskFromRaw(raw), env)
}

func PersonFromRaw(raw map[string]any) Person {
	return Person{
		ID:        looseString(raw["id"]),
		Name:      looseString(raw["name"]),
		Type:      PersonType(strings.ToLower(looseString(raw["type"]))),
		Role:      looseString(raw["role"]),
		Members:   looseStrings(raw["members"]),
		CreatedAt: looseTime(raw["createdAt"]),
	}
}

func TaskFromRaw(raw map[string]any) Task {
	t := Task{
		ID:          looseString(raw["id"]),
		Title:       looseString(raw["title"]),
		Note:        looseString(raw["note"]),
		Priority:    looseInt(raw["priority"]),
		Kind:        Kind(strings.ToLower(looseString(raw["kind"]))),
		IsBacklog:   looseBool(raw["isBacklog"]),
		Start:       Date(looseString(raw["start"])),
		End:         Date(looseString(raw["end"])),
		TimeStart:   looseTimeOfDay(raw["timeStart"]),
		TimeEnd:     looseTimeOfDay(raw["timeEnd"]),
		Repeat:      Repeat(strings.ToLower(looseString(raw["repeat"]))),
		RepeatUntil: Date(looseString(raw["repeatUntil"])),
		Status:      Status(strings.ToLower(looseString(raw["status"]))),
		Assignees:   looseStrings(raw["assignees"]),
		CreatedAt:   looseTime(raw["createdAt"]),
	}
	if ts := looseTime(raw["doneAt"]); !ts.IsZero() {
		t.DoneAt = &ts
	}
	return t
}

// LooseTime exposes the timestamp coercion for document-level fields.
func LooseTime(v any) *time.Time {
	ts := looseTime(v)
	if ts.IsZero() {
		return nil
	}
	return &ts
}

func looseString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func looseStrings(v any) []string {
	xs, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if s := looseString(x); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func looseInt(v any) int {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return int(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return int(f)
	case bool:
		if x {
			return 1
		}
	}
	return 0
}

// looseBool follows JSON-truthiness: non-empty strings and non-zero numbers are true.
func looseBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	case nil:
		return false
	default:
		return true
	}
}

func looseTimeOfDay(v any) TimeOfDay {
	t, ok := ParseTimeOfDay(looseString(v))
	if !ok {
		return ""
	}
	return t
}

func looseTime(v any) time.Time {
	s := looseString(v)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
