package model

import (
	"strings"
	"time"
)

// NewDocument returns an empty current-generation document.
func NewDocument() *Document {
	return &Document{Version: CurrentVersion, People: []Person{}, Tasks: []Task{}}
}

func (d *Document) FindPerson(id string) (*Person, bool) {
	id = strings.TrimSpace(id)
	for i := range d.People {
		if d.People[i].ID == id {
			return &d.People[i], true
		}
	}
	return nil, false
}

// FindPersonByName matches case-insensitively on the trimmed name.
func (d *Document) FindPersonByName(name string) (*Person, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, false
	}
	for i := range d.People {
		if strings.ToLower(d.People[i].Name) == key {
			return &d.People[i], true
		}
	}
	return nil, false
}

func (d *Document) FindTask(id string) (*Task, bool) {
	id = strings.TrimSpace(id)
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return &d.Tasks[i], true
		}
	}
	return nil, false
}

func (d *Document) HasTaskID(id string) bool {
	_, ok := d.FindTask(id)
	return ok
}

func (d *Document) PersonIDs() map[string]bool {
	out := make(map[string]bool, len(d.People))
	for _, p := range d.People {
		out[p.ID] = true
	}
	return out
}

// Clone returns a deep copy so mutations can be applied all-or-nothing.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{Version: d.Version}
	if d.LastSavedAt != nil {
		ts := *d.LastSavedAt
		out.LastSavedAt = &ts
	}
	out.People = make([]Person, len(d.People))
	for i, p := range d.People {
		p.Members = append([]string{}, p.Members...)
		out.People[i] = p
	}
	out.Tasks = make([]Task, len(d.Tasks))
	for i, t := range d.Tasks {
		t.Assignees = append([]string{}, t.Assignees...)
		if t.DoneAt != nil {
			ts := *t.DoneAt
			t.DoneAt = &ts
		}
		out.Tasks[i] = t
	}
	return out
}

// PruneResult reports what a cleanup pass removed.
type PruneResult struct {
	DroppedAssignees int
	DroppedMembers   int
	RemovedTasks     []string
}

// Prune drops references to persons that no longer exist and removes tasks
// that end up without any assignee. It runs after load and after every mutation.
func (d *Document) Prune() PruneResult {
	var res PruneResult
	known := d.PersonIDs()

	for i := range d.People {
		p := &d.People[i]
		if !p.IsGroup() {
			if len(p.Members) > 0 {
				res.DroppedMembers += len(p.Members)
			}
			p.Members = []string{}
			continue
		}
		kept := p.Members[:0]
		for _, m := range p.Members {
			if m == p.ID || !known[m] {
				res.DroppedMembers++
				continue
			}
			kept = append(kept, m)
		}
		p.Members = kept
	}

	tasks := d.Tasks[:0]
	for _, t := range d.Tasks {
		kept := make([]string, 0, len(t.Assignees))
		for _, a := range t.Assignees {
			if !known[a] {
				res.DroppedAssignees++
				continue
			}
			kept = append(kept, a)
		}
		if len(kept) == 0 {
			res.RemovedTasks = append(res.RemovedTasks, t.ID)
			continue
		}
		t.Assignees = kept
		tasks = append(tasks, t)
	}
	d.Tasks = tasks
	return res
}

// Normalize normalizes every entity, resolves id collisions (first-seen wins;
// duplicate persons are dropped, duplicate tasks get a fresh id) and prunes.
func (d *Document) Normalize(env Env) PruneResult {
	d.Version = CurrentVersion

	people := make([]Person, 0, len(d.People))
	seenPeople := map[string]bool{}
	for _, p := range d.People {
		p = NormalizePerson(p, env)
		if seenPeople[p.ID] {
			continue
		}
		seenPeople[p.ID] = true
		people = append(people, p)
	}
	d.People = people

	tasks := make([]Task, 0, len(d.Tasks))
	seenTasks := map[string]bool{}
	for _, t := range d.Tasks {
		t = NormalizeTask(t, env)
		for seenTasks[t.ID] {
			t.ID = env.ID()
		}
		seenTasks[t.ID] = true
		tasks = append(tasks, t)
	}
	d.Tasks = tasks

	return d.Prune()
}

// Touch stamps the document as saved at now.
func (d *Document) Touch(now time.Time) {
	ts := now.UTC()
	d.LastSavedAt = &ts
}
