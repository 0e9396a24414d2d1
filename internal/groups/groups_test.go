package groups

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"planner-cli/internal/model"
)

func person(id string) model.Person {
	return model.Person{ID: id, Name: id, Type: model.PersonTypePerson}
}

func group(id string, members ...string) model.Person {
	return model.Person{ID: id, Name: id, Type: model.PersonTypeGroup, Members: members}
}

func TestResolveMembers_CycleTerminatesEmpty(t *testing.T) {
	doc := &model.Document{People: []model.Person{group("A", "B"), group("B", "A")}}
	got := ResolveMembers(doc, "A")
	if len(got) != 0 {
		t.Fatalf("expected empty set for pure cycle; got %v", got.Sorted())
	}
}

func TestResolveMembers_NestedWithCycle(t *testing.T) {
	doc := &model.Document{People: []model.Person{
		person("p1"), person("p2"), person("p3"),
		group("A", "p1", "B"),
		group("B", "p2", "A", "C"),
		group("C", "p3", "ghost"),
	}}
	r := NewResolver(doc)
	if diff := cmp.Diff([]string{"p1", "p2", "p3"}, r.ResolveMembers("A").Sorted()); diff != "" {
		t.Fatalf("members (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"p1"}, r.ResolveMembers("p1").Sorted()); diff != "" {
		t.Fatalf("person resolves to itself (-want +got):\n%s", diff)
	}
	if got := r.ResolveMembers("ghost"); len(got) != 0 {
		t.Fatalf("expected unknown id to resolve to nothing; got %v", got.Sorted())
	}
}

func TestContainingGroups_Transitive(t *testing.T) {
	doc := &model.Document{People: []model.Person{
		person("p1"), person("p2"),
		group("inner", "p1"),
		group("outer", "inner"),
		group("loopA", "outer", "loopB"),
		group("loopB", "loopA"),
		group("other", "p2"),
	}}
	got := NewResolver(doc).ContainingGroups("p1")
	if diff := cmp.Diff([]string{"inner", "loopA", "loopB", "outer"}, got.Sorted()); diff != "" {
		t.Fatalf("containing groups (-want +got):\n%s", diff)
	}
}

func TestEffectiveAssignees(t *testing.T) {
	doc := &model.Document{People: []model.Person{
		person("p1"), person("p2"),
		group("team", "p1", "sub"),
		group("sub", "p2"),
	}}
	r := NewResolver(doc)
	if diff := cmp.Diff([]string{"p2", "sub", "team"}, r.EffectiveAssignees("p2").Sorted()); diff != "" {
		t.Fatalf("person root (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"p1", "p2", "sub", "team"}, r.EffectiveAssignees("team").Sorted()); diff != "" {
		t.Fatalf("group root (-want +got):\n%s", diff)
	}
	if got := r.EffectiveAssignees("nobody"); len(got) != 0 {
		t.Fatalf("expected empty set for unknown root; got %v", got.Sorted())
	}
}

func TestIDSet_Intersects(t *testing.T) {
	s := NewIDSet("a", "b")
	if !s.Intersects([]string{"x", "b"}) || s.Intersects([]string{"x"}) || s.Intersects(nil) {
		t.Fatalf("unexpected Intersects behavior on %v", s.Sorted())
	}
}
