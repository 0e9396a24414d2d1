package mutate

import (
	"strings"

	"planner-cli/internal/model"
)

type PersonResult struct {
	Person  *model.Person
	Changed bool
}

// AddPerson creates a person or group at the front of the list.
func AddPerson(doc *model.Document, name, role string, typ model.PersonType, members []string, env model.Env) (PersonResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return PersonResult{}, invalid("name", "name is required")
	}
	if typ == "" {
		typ = model.PersonTypePerson
	}
	if typ != model.PersonTypePerson && typ != model.PersonTypeGroup {
		return PersonResult{}, invalid("type", "type must be person or group")
	}
	if typ == model.PersonTypePerson && len(members) > 0 {
		return PersonResult{}, invalid("members", "only groups can have members")
	}
	for _, m := range members {
		if _, ok := doc.FindPerson(m); !ok {
			return PersonResult{}, NotFoundError{Kind: "person", ID: m}
		}
	}
	p := model.Person{ID: env.ID(), Name: name, Type: typ, Role: role, Members: members, CreatedAt: env.Time().UTC()}
	for {
		if _, taken := doc.FindPerson(p.ID); !taken {
			break
		}
		p.ID = env.ID()
	}
	p = model.NormalizePerson(p, env)
	doc.People = append([]model.Person{p}, doc.People...)
	return PersonResult{Person: &doc.People[0], Changed: true}, nil
}

func RenamePerson(doc *model.Document, id, name string) (PersonResult, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	p, ok := doc.FindPerson(id)
	if !ok {
		return PersonResult{}, NotFoundError{Kind: "person", ID: id}
	}
	if name == "" {
		return PersonResult{}, invalid("name", "name is required")
	}
	if p.Name == name {
		return PersonResult{Person: p, Changed: false}, nil
	}
	p.Name = name
	return PersonResult{Person: p, Changed: true}, nil
}

func SetRole(doc *model.Document, id, role string) (PersonResult, error) {
	id = strings.TrimSpace(id)
	role = strings.TrimSpace(role)
	p, ok := doc.FindPerson(id)
	if !ok {
		return PersonResult{}, NotFoundError{Kind: "person", ID: id}
	}
	if p.Role == role {
		return PersonResult{Person: p, Changed: false}, nil
	}
	p.Role = role
	return PersonResult{Person: p, Changed: true}, nil
}

// DeletePreview tells what deleting a person would do to the tasks.
type DeletePreview struct {
	Person model.Person `json:"person"`
	// TasksRemoved counts tasks assigned only to this person; they go away.
	TasksRemoved int `json:"tasksRemoved"`
	// TasksUnassigned counts shared tasks that survive without this person.
	TasksUnassigned int `json:"tasksUnassigned"`
}

func DeletePersonPreview(doc *model.Document, id string) (DeletePreview, error) {
	id = strings.TrimSpace(id)
	p, ok := doc.FindPerson(id)
	if !ok {
		return DeletePreview{}, NotFoundError{Kind: "person", ID: id}
	}
	out := DeletePreview{Person: *p}
	for _, t := range doc.Tasks {
		has := false
		for _, a := range t.Assignees {
			if a == id {
				has = true
				break
			}
		}
		if !has {
			continue
		}
		if len(t.Assignees) == 1 {
			out.TasksRemoved++
		} else {
			out.TasksUnassigned++
		}
	}
	return out, nil
}

type DeletePersonResult struct {
	Person       model.Person
	RemovedTasks []string
	Changed      bool
}

// DeletePerson removes the person, unassigns it everywhere (tasks and group
// memberships) and drops tasks left without any assignee.
func DeletePerson(doc *model.Document, id string) (DeletePersonResult, error) {
	id = strings.TrimSpace(id)
	idx := -1
	for i := range doc.People {
		if doc.People[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return DeletePersonResult{}, NotFoundError{Kind: "person", ID: id}
	}
	removed := doc.People[idx]
	doc.People = append(doc.People[:idx], doc.People[idx+1:]...)
	pr := doc.Prune()
	return DeletePersonResult{Person: removed, RemovedTasks: pr.RemovedTasks, Changed: true}, nil
}

// AddMember adds memberID to a group. Self-membership is rejected; cycles
// through other groups are allowed.
func AddMember(doc *model.Document, groupID, memberID string) (PersonResult, error) {
	groupID = strings.TrimSpace(groupID)
	memberID = strings.TrimSpace(memberID)
	g, err := findGroup(doc, groupID)
	if err != nil {
		return PersonResult{}, err
	}
	if _, ok := doc.FindPerson(memberID); !ok {
		return PersonResult{}, NotFoundError{Kind: "person", ID: memberID}
	}
	if memberID == groupID {
		return PersonResult{}, invalid("members", "a group cannot contain itself")
	}
	for _, m := range g.Members {
		if m == memberID {
			return PersonResult{Person: g, Changed: false}, nil
		}
	}
	g.Members = append(g.Members, memberID)
	return PersonResult{Person: g, Changed: true}, nil
}

func RemoveMember(doc *model.Document, groupID, memberID string) (PersonResult, error) {
	groupID = strings.TrimSpace(groupID)
	memberID = strings.TrimSpace(memberID)
	g, err := findGroup(doc, groupID)
	if err != nil {
		return PersonResult{}, err
	}
	for i, m := range g.Members {
		if m == memberID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return PersonResult{Person: g, Changed: true}, nil
		}
	}
	return PersonResult{Person: g, Changed: false}, nil
}

func findGroup(doc *model.Document, id string) (*model.Person, error) {
	g, ok := doc.FindPerson(id)
	if !ok {
		return nil, NotFoundError{Kind: "group", ID: id}
	}
	if !g.IsGroup() {
		return nil, invalid("group", id+" is a person, not a group")
	}
	return g, nil
}
