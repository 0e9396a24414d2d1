package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"planner-cli/internal/migrate"
	"planner-cli/internal/model"
	"planner-cli/internal/mutate"
)

func testEnv() model.Env {
	n := 0
	return model.Env{
		Now: func() time.Time { return time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("gen-%d", n)
		},
	}
}

const legacyV1 = `{"version":1,"people":[{"id":"p1","name":"Anna","tasks":[{"id":"t1","title":"Old","start":"2025-05-01"}]}]}`

func backends(t *testing.T) map[string]Gateway {
	t.Helper()
	ctx := context.Background()
	sq, err := OpenSQLite(ctx, t.TempDir()+"/planner.sqlite")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	fg, err := OpenFileGateway(t.TempDir())
	if err != nil {
		t.Fatalf("open file gateway: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]Gateway{"sqlite": sq, "file": fg}
}

func TestGateway_GetPut(t *testing.T) {
	ctx := context.Background()
	for name, gw := range backends(t) {
		if _, ok, err := gw.Get(ctx, KeyV2); err != nil || ok {
			t.Fatalf("%s: expected missing key; ok=%v err=%v", name, ok, err)
		}
		if err := gw.Put(ctx, KeyV2, []byte(`{"a":1}`)); err != nil {
			t.Fatalf("%s: put: %v", name, err)
		}
		if err := gw.Put(ctx, KeyV2, []byte(`{"a":2}`)); err != nil {
			t.Fatalf("%s: overwrite: %v", name, err)
		}
		b, ok, err := gw.Get(ctx, KeyV2)
		if err != nil || !ok || string(b) != `{"a":2}` {
			t.Fatalf("%s: unexpected get: %q %v %v", name, b, ok, err)
		}
	}
}

func TestLoad_MigratesLegacyOnce(t *testing.T) {
	ctx := context.Background()
	for name, gw := range backends(t) {
		if err := gw.Put(ctx, KeyV1, []byte(legacyV1)); err != nil {
			t.Fatalf("%s: seed: %v", name, err)
		}
		doc, src, err := Load(ctx, gw, testEnv())
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if src != migrate.SourceV1 || len(doc.Tasks) != 1 || doc.Tasks[0].Assignees[0] != "p1" {
			t.Fatalf("%s: unexpected migration: %s %+v", name, src, doc.Tasks)
		}
		raw, ok, _ := gw.Get(ctx, KeyV2)
		if !ok || migrate.Detect(raw) != migrate.GenerationV2 {
			t.Fatalf("%s: expected migrated document persisted under %s", name, KeyV2)
		}

		_, src, err = Load(ctx, gw, testEnv())
		if err != nil || src != migrate.SourceV2 {
			t.Fatalf("%s: expected second load from v2; got %s %v", name, src, err)
		}
	}
}

func TestLoad_GarbageIsFresh(t *testing.T) {
	ctx := context.Background()
	for name, gw := range backends(t) {
		_ = gw.Put(ctx, KeyV2, []byte(`{nope`))
		_ = gw.Put(ctx, KeyV1, []byte(`[]`))
		doc, src, err := Load(ctx, gw, testEnv())
		if err != nil || src != migrate.SourceFresh || len(doc.People) != 0 {
			t.Fatalf("%s: expected fresh document; got %s %+v %v", name, src, doc, err)
		}
	}
}

func TestWorkspace_MutateDebouncesAndRollsBack(t *testing.T) {
	ctx := context.Background()
	clock := &manualClock{}
	gw, err := OpenFileGateway(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ws, err := OpenWorkspace(ctx, gw, WorkspaceOpts{Env: testEnv(), AfterFunc: clock.AfterFunc})
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}
	env := ws.Env()

	var pid string
	if err := ws.Mutate(func(d *model.Document) error {
		res, err := mutate.AddPerson(d, "Anna", "", model.PersonTypePerson, nil, env)
		if err == nil {
			pid = res.Person.ID
		}
		return err
	}); err != nil {
		t.Fatalf("add person: %v", err)
	}
	if _, ok, _ := gw.Get(ctx, KeyV2); ok {
		t.Fatalf("expected no write before the debounce fires")
	}

	before := ws.Doc()
	err = ws.Mutate(func(d *model.Document) error {
		d.People[0].Name = "half-applied"
		_, err := mutate.CreateTask(d, mutate.TaskInput{Title: "x"}, env)
		return err
	})
	if !errors.Is(err, mutate.ErrEmptyAssignees) {
		t.Fatalf("expected ErrEmptyAssignees; got %v", err)
	}
	if ws.Doc() != before || ws.Doc().People[0].Name != "Anna" {
		t.Fatalf("rejected mutation leaked into the document")
	}

	clock.timers[0].fire()
	raw, ok, _ := gw.Get(ctx, KeyV2)
	if !ok {
		t.Fatalf("expected write after debounce")
	}
	var saved model.Document
	if err := json.Unmarshal(raw, &saved); err != nil {
		t.Fatalf("decode saved: %v", err)
	}
	if len(saved.People) != 1 || saved.People[0].ID != pid || saved.LastSavedAt == nil {
		t.Fatalf("unexpected saved document: %+v", saved)
	}
	if ws.LastSavedAt() == nil {
		t.Fatalf("expected LastSavedAt after save")
	}

	if err := ws.MutateNow(ctx, func(d *model.Document) error {
		_, err := mutate.DeletePerson(d, pid)
		return err
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	raw, _, _ = gw.Get(ctx, KeyV2)
	if err := json.Unmarshal(raw, &saved); err != nil || len(saved.People) != 0 {
		t.Fatalf("expected immediate save after delete; got %+v %v", saved, err)
	}
}

func TestWorkspace_ReloadSkipsOwnWrites(t *testing.T) {
	ctx := context.Background()
	gw, _ := OpenFileGateway(t.TempDir())
	ws, err := OpenWorkspace(ctx, gw, WorkspaceOpts{Env: testEnv(), AfterFunc: (&manualClock{}).AfterFunc})
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}
	if err := ws.MutateNow(ctx, func(d *model.Document) error {
		_, err := mutate.AddPerson(d, "Anna", "", model.PersonTypePerson, nil, ws.Env())
		return err
	}); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if changed, err := ws.Reload(ctx); err != nil || changed {
		t.Fatalf("expected own write to be ignored; changed=%v err=%v", changed, err)
	}

	external := `{"version":2,"people":[{"id":"x","name":"External"}],"tasks":[],"lastSavedAt":null}`
	if err := gw.Put(ctx, KeyV2, []byte(external)); err != nil {
		t.Fatalf("external put: %v", err)
	}
	changed, err := ws.Reload(ctx)
	if err != nil || !changed {
		t.Fatalf("expected reload; changed=%v err=%v", changed, err)
	}
	if p, ok := ws.Doc().FindPerson("x"); !ok || p.Name != "External" {
		t.Fatalf("expected external document; got %+v", ws.Doc().People)
	}
}
