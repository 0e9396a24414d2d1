package migrate

import (
	"strings"

	"planner-cli/internal/model"
)

type Mode string

const (
	ModeMerge   Mode = "merge"
	ModeReplace Mode = "replace"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeMerge, "":
		return ModeMerge, true
	case ModeReplace:
		return ModeReplace, true
	}
	return "", false
}

// MergeReport summarizes what an import changed.
type MergeReport struct {
	PeopleAdded     int `json:"peopleAdded"`
	PeopleMatched   int `json:"peopleMatched"`
	TasksAdded      int `json:"tasksAdded"`
	TasksDropped    int `json:"tasksDropped"`
	TasksReassigned int `json:"tasksReassigned"`
}

// Merge folds an already normalized incoming document into current and returns
// the result; current is left untouched.
//
// Incoming persons match existing ones by id, then by case-insensitive name.
// Name matches remap the incoming id onto the existing one so the incoming
// tasks follow. Unmatched persons are added. Incoming tasks keep only
// assignees that exist after the person merge and are skipped when none
// remain; a task whose id is already taken gets a fresh id.
func Merge(current, incoming *model.Document, env model.Env) (*model.Document, MergeReport) {
	out := current.Clone()
	if out == nil {
		out = model.NewDocument()
	}
	var rep MergeReport
	if incoming == nil {
		return out, rep
	}

	idMap := map[string]string{}
	for _, p := range incoming.People {
		if existing, ok := out.FindPerson(p.ID); ok {
			idMap[p.ID] = existing.ID
			rep.PeopleMatched++
			continue
		}
		if existing, ok := out.FindPersonByName(p.Name); ok {
			idMap[p.ID] = existing.ID
			rep.PeopleMatched++
			continue
		}
		np := p
		np.Members = append([]string{}, p.Members...)
		out.People = append(out.People, np)
		idMap[p.ID] = p.ID
		rep.PeopleAdded++
	}

	// Members of newly added groups may point at persons that were matched by name.
	for i := range out.People {
		g := &out.People[i]
		if !g.IsGroup() {
			continue
		}
		for j, m := range g.Members {
			if to, ok := idMap[m]; ok {
				g.Members[j] = to
			}
		}
	}

	known := out.PersonIDs()
	for _, t := range incoming.Tasks {
		nt := t
		nt.Assignees = make([]string, 0, len(t.Assignees))
		seen := map[string]bool{}
		for _, a := range t.Assignees {
			if to, ok := idMap[a]; ok {
				a = to
			}
			if !known[a] || seen[a] {
				continue
			}
			seen[a] = true
			nt.Assignees = append(nt.Assignees, a)
		}
		if len(nt.Assignees) == 0 {
			rep.TasksDropped++
			continue
		}
		if t.DoneAt != nil {
			ts := *t.DoneAt
			nt.DoneAt = &ts
		}
		for nt.ID == "" || out.HasTaskID(nt.ID) {
			nt.ID = env.ID()
			rep.TasksReassigned++
		}
		out.Tasks = append(out.Tasks, nt)
		rep.TasksAdded++
	}

	out.Normalize(env)
	return out, rep
}

// Replace discards current in favor of incoming.
func Replace(incoming *model.Document, env model.Env) *model.Document {
	out := incoming.Clone()
	if out == nil {
		out = model.NewDocument()
	}
	out.Normalize(env)
	return out
}
