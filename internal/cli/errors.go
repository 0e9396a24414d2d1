package cli

import (
	"errors"
	"fmt"
	"strings"

	"planner-cli/internal/model"
	"planner-cli/internal/mutate"
)

var errNoPeople = errors.New("no people yet; run `planner people add <name>` first")

type ambiguousError struct {
	kind string
	ref  string
	ids  []string
}

func (e ambiguousError) Error() string {
	return fmt.Sprintf("%s %q is ambiguous: %s", e.kind, e.ref, strings.Join(e.ids, ", "))
}

// findPerson resolves ref as an id first, then as a case-insensitive name.
func findPerson(doc *model.Document, ref string) (*model.Person, error) {
	ref = strings.TrimSpace(ref)
	if p, ok := doc.FindPerson(ref); ok {
		return p, nil
	}
	var hits []string
	for _, p := range doc.People {
		if strings.EqualFold(p.Name, ref) {
			hits = append(hits, p.ID)
		}
	}
	switch len(hits) {
	case 0:
		return nil, mutate.NotFoundError{Kind: "person", ID: ref}
	case 1:
		p, _ := doc.FindPerson(hits[0])
		return p, nil
	default:
		return nil, ambiguousError{kind: "person", ref: ref, ids: hits}
	}
}

// findTask resolves ref as an id, or as a unique id prefix.
func findTask(doc *model.Document, ref string) (*model.Task, error) {
	ref = strings.TrimSpace(ref)
	if t, ok := doc.FindTask(ref); ok {
		return t, nil
	}
	var hits []string
	if len(ref) >= 4 {
		for _, t := range doc.Tasks {
			if strings.HasPrefix(t.ID, ref) {
				hits = append(hits, t.ID)
			}
		}
	}
	switch len(hits) {
	case 0:
		return nil, mutate.NotFoundError{Kind: "task", ID: ref}
	case 1:
		t, _ := doc.FindTask(hits[0])
		return t, nil
	default:
		return nil, ambiguousError{kind: "task", ref: ref, ids: hits}
	}
}

func resolvePeople(doc *model.Document, refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		for _, part := range strings.Split(r, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			p, err := findPerson(doc, part)
			if err != nil {
				return nil, err
			}
			out = append(out, p.ID)
		}
	}
	return out, nil
}
