// Package groups expands person-or-group ids over the membership graph.
//
// The graph is not checked for cycles when it is written, and imported data may
// contain them, so every traversal carries a visited set.
package groups

import (
	"sort"

	"planner-cli/internal/model"
)

// IDSet is a set of person or group ids.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s IDSet) Add(id string) { s[id] = struct{}{} }

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Intersects reports whether any id in ids is in s.
func (s IDSet) Intersects(ids []string) bool {
	for _, id := range ids {
		if s.Has(id) {
			return true
		}
	}
	return false
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Resolver answers membership questions for one document snapshot.
type Resolver struct {
	byID map[string]*model.Person
	// parents maps a member id to the groups that list it directly.
	parents map[string][]string
}

func NewResolver(doc *model.Document) *Resolver {
	r := &Resolver{
		byID:    map[string]*model.Person{},
		parents: map[string][]string{},
	}
	if doc == nil {
		return r
	}
	for i := range doc.People {
		p := &doc.People[i]
		r.byID[p.ID] = p
	}
	for i := range doc.People {
		g := &doc.People[i]
		if !g.IsGroup() {
			continue
		}
		for _, m := range g.Members {
			r.parents[m] = append(r.parents[m], g.ID)
		}
	}
	return r
}

// Lookup returns the entity with id, if any.
func (r *Resolver) Lookup(id string) (*model.Person, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// ResolveMembers returns the concrete persons reachable from id. A person id
// resolves to itself; an unknown id resolves to nothing. A group that is
// revisited through a cycle contributes nothing further.
func (r *Resolver) ResolveMembers(id string) IDSet {
	out := IDSet{}
	r.walkMembers(id, IDSet{}, out, nil)
	return out
}

// reachable returns every person and every group reachable below a group.
func (r *Resolver) reachable(id string) (persons, groups IDSet) {
	persons, groups = IDSet{}, IDSet{}
	r.walkMembers(id, IDSet{}, persons, groups)
	return persons, groups
}

func (r *Resolver) walkMembers(id string, visited, persons, groups IDSet) {
	p, ok := r.byID[id]
	if !ok {
		return
	}
	if !p.IsGroup() {
		persons.Add(p.ID)
		return
	}
	if visited.Has(p.ID) {
		return
	}
	visited.Add(p.ID)
	for _, m := range p.Members {
		if groups != nil {
			if child, ok := r.byID[m]; ok && child.IsGroup() {
				groups.Add(child.ID)
			}
		}
		r.walkMembers(m, visited, persons, groups)
	}
}

// ContainingGroups returns every group that includes id directly or through
// nested groups.
func (r *Resolver) ContainingGroups(id string) IDSet {
	out := IDSet{}
	if _, ok := r.byID[id]; !ok {
		return out
	}
	queue := append([]string{}, r.parents[id]...)
	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]
		if out.Has(g) || g == id {
			continue
		}
		out.Add(g)
		queue = append(queue, r.parents[g]...)
	}
	return out
}

// EffectiveAssignees is the set of ids whose tasks are visible from root.
// For a person that is the person and every group containing it; for a group
// it is the group and everything reachable beneath it.
func (r *Resolver) EffectiveAssignees(root string) IDSet {
	p, ok := r.byID[root]
	if !ok {
		return IDSet{}
	}
	if !p.IsGroup() {
		out := r.ContainingGroups(root)
		out.Add(root)
		return out
	}
	persons, groups := r.reachable(root)
	out := IDSet{root: {}}
	for id := range persons {
		out.Add(id)
	}
	for id := range groups {
		out.Add(id)
	}
	return out
}

// ResolveMembers is a convenience over a throwaway Resolver.
func ResolveMembers(doc *model.Document, id string) IDSet {
	return NewResolver(doc).ResolveMembers(id)
}

// EffectiveAssignees is a convenience over a throwaway Resolver.
func EffectiveAssignees(doc *model.Document, root string) IDSet {
	return NewResolver(doc).EffectiveAssignees(root)
}
