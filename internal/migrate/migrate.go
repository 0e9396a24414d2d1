// Package migrate detects the schema generation of persisted planner documents
// and upgrades them to the current generation. Everything here is a pure
// function over raw JSON and documents; persistence lives in internal/store.
package migrate

import (
	"encoding/json"
	"errors"
	"fmt"

	"planner-cli/internal/model"
)

type Generation int

const (
	GenerationUnknown Generation = 0
	GenerationV1      Generation = 1
	GenerationV2      Generation = 2
)

func (g Generation) String() string {
	switch g {
	case GenerationV1:
		return "v1"
	case GenerationV2:
		return "v2"
	default:
		return "unknown"
	}
}

// Source tells where a loaded document came from.
type Source string

const (
	SourceV2    Source = "v2"
	SourceV1    Source = "v1-migrated"
	SourceFresh Source = "fresh"
)

var ErrUnrecognizedFormat = errors.New("unrecognized document format")

// shape is the loosely typed top level shared by both generations.
type shape struct {
	version     float64
	people      []map[string]any
	tasks       []map[string]any
	hasTasks    bool
	lastSavedAt any
}

func decodeShape(raw []byte) (shape, bool) {
	var top map[string]any
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		return shape{}, false
	}
	var s shape
	v, ok := top["version"].(float64)
	if !ok {
		return shape{}, false
	}
	s.version = v
	people, ok := top["people"].([]any)
	if !ok {
		return shape{}, false
	}
	s.people = objects(people)
	if tasks, ok := top["tasks"].([]any); ok {
		s.tasks = objects(tasks)
		s.hasTasks = true
	}
	s.lastSavedAt = top["lastSavedAt"]
	return s, true
}

// objects keeps only the JSON objects of a list; stray scalars are ignored.
func objects(xs []any) []map[string]any {
	out := make([]map[string]any, 0, len(xs))
	for _, x := range xs {
		if m, ok := x.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Detect reports the generation of a raw document; malformed input is unknown.
func Detect(raw []byte) Generation {
	s, ok := decodeShape(raw)
	if !ok {
		return GenerationUnknown
	}
	switch {
	case s.version == 2 && s.hasTasks:
		return GenerationV2
	case s.version == 1:
		return GenerationV1
	default:
		return GenerationUnknown
	}
}

// ParseV2 validates and normalizes a current-generation document.
func ParseV2(raw []byte, env model.Env) (*model.Document, bool) {
	s, ok := decodeShape(raw)
	if !ok || s.version != 2 || !s.hasTasks {
		return nil, false
	}
	doc := model.NewDocument()
	for _, rp := range s.people {
		doc.People = append(doc.People, model.PersonFromRaw(rp))
	}
	for _, rt := range s.tasks {
		doc.Tasks = append(doc.Tasks, model.TaskFromRaw(rt))
	}
	doc.LastSavedAt = model.LooseTime(s.lastSavedAt)
	doc.Normalize(env)
	return doc, true
}

// Report summarizes a v1 to v2 migration.
type Report struct {
	People        int
	Tasks         int
	ReassignedIDs int
}

// MigrateV1 parses a legacy document and lifts it to v2.
func MigrateV1(raw []byte, env model.Env) (*model.Document, Report, bool) {
	s, ok := decodeShape(raw)
	if !ok || s.version != 1 {
		return nil, Report{}, false
	}
	doc, rep := MigrateV1ToV2(s.people, s.lastSavedAt, env)
	return doc, rep, true
}

// MigrateV1ToV2 lifts tasks embedded per person into the flat task list, each
// assigned to its former owner. On task id collisions across persons the first
// occurrence keeps the id and later ones get a fresh id.
func MigrateV1ToV2(people []map[string]any, lastSavedAt any, env model.Env) (*model.Document, Report) {
	doc := model.NewDocument()
	var rep Report
	used := map[string]bool{}

	for _, rp := range people {
		p := model.PersonFromRaw(rp)
		p.Type = model.PersonTypePerson
		p.Members = nil
		p = model.NormalizePerson(p, env)
		doc.People = append(doc.People, p)
		rep.People++

		rawTasks, _ := rp["tasks"].([]any)
		for _, rt := range objects(rawTasks) {
			t := model.NormalizeTaskRaw(rt, env)
			for used[t.ID] {
				t.ID = env.ID()
				rep.ReassignedIDs++
			}
			used[t.ID] = true
			t.Assignees = []string{p.ID}
			doc.Tasks = append(doc.Tasks, t)
			rep.Tasks++
		}
	}
	doc.LastSavedAt = model.LooseTime(lastSavedAt)
	doc.Normalize(env)
	return doc, rep
}

// Resolve runs the load chain: a valid v2 document wins, otherwise a valid v1
// document is migrated, otherwise a fresh empty document is returned.
// Unparsable input at any stage counts as absent.
func Resolve(v2raw, v1raw []byte, env model.Env) (*model.Document, Source) {
	if len(v2raw) > 0 {
		if doc, ok := ParseV2(v2raw, env); ok {
			return doc, SourceV2
		}
	}
	if len(v1raw) > 0 {
		if doc, _, ok := MigrateV1(v1raw, env); ok {
			return doc, SourceV1
		}
	}
	return model.NewDocument(), SourceFresh
}

// Incoming normalizes an import payload of either generation. Anything else is
// reported as ErrUnrecognizedFormat so the caller can surface "import failed".
func Incoming(raw []byte, env model.Env) (*model.Document, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrUnrecognizedFormat)
	}
	switch Detect(raw) {
	case GenerationV2:
		if doc, ok := ParseV2(raw, env); ok {
			return doc, nil
		}
	case GenerationV1:
		if doc, _, ok := MigrateV1(raw, env); ok {
			return doc, nil
		}
	}
	return nil, ErrUnrecognizedFormat
}
