package store

import (
	"bytes"
	"context"
	"sync"
	"time"

	appLog "planner-cli/internal/log"
	"planner-cli/internal/migrate"
	"planner-cli/internal/model"
)

// Workspace owns the in-memory document and its persistence. Mutations run on
// a copy of the document and replace it only when they succeed, so a rejected
// change never leaves the document half updated. Every accepted mutation is
// followed by the orphan cleanup pass and a debounced save.
type Workspace struct {
	gw  Gateway
	env model.Env

	mu      sync.Mutex
	doc     *model.Document
	source  migrate.Source
	written []byte

	saver *Saver
}

type WorkspaceOpts struct {
	Env      model.Env
	Debounce time.Duration
	// AfterFunc overrides the debounce timer (tests).
	AfterFunc AfterFunc
}

// OpenWorkspace loads the document from gw.
func OpenWorkspace(ctx context.Context, gw Gateway, opts WorkspaceOpts) (*Workspace, error) {
	env := opts.Env
	if env.Now == nil && env.NewID == nil {
		env = model.DefaultEnv()
	}
	doc, src, err := Load(ctx, gw, env)
	if err != nil {
		return nil, err
	}
	w := &Workspace{gw: gw, env: env, doc: doc, source: src}
	if raw, ok, _ := gw.Get(ctx, KeyV2); ok {
		w.written = raw
	}
	w.saver = NewSaver(w.write, SaverOpts{Debounce: opts.Debounce, AfterFunc: opts.AfterFunc})
	return w, nil
}

func (w *Workspace) Env() model.Env { return w.env }

// Source tells how the document was found at open time.
func (w *Workspace) Source() migrate.Source { return w.source }

// Doc returns the current snapshot. It must be treated as read-only; mutations
// go through Mutate.
func (w *Workspace) Doc() *model.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doc
}

// LastSavedAt is the time of the most recent successful write, if any.
func (w *Workspace) LastSavedAt() *time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doc.LastSavedAt
}

// Mutate applies fn to a copy of the document. When fn fails the document is
// unchanged and the error is returned.
func (w *Workspace) Mutate(fn func(doc *model.Document) error) error {
	w.mu.Lock()
	next := w.doc.Clone()
	if err := fn(next); err != nil {
		w.mu.Unlock()
		return err
	}
	if pr := next.Prune(); len(pr.RemovedTasks) > 0 {
		appLog.Debug("orphan tasks removed", "count", len(pr.RemovedTasks))
	}
	w.doc = next
	w.mu.Unlock()

	w.saver.Notify()
	return nil
}

// MutateNow is Mutate followed by an immediate write.
func (w *Workspace) MutateNow(ctx context.Context, fn func(doc *model.Document) error) error {
	if err := w.Mutate(fn); err != nil {
		return err
	}
	return w.saver.Flush(ctx)
}

// Replace swaps in a whole document (replace-mode import) and writes it now.
func (w *Workspace) Replace(ctx context.Context, doc *model.Document) error {
	return w.MutateNow(ctx, func(d *model.Document) error {
		*d = *doc.Clone()
		return nil
	})
}

// Flush writes any pending change now.
func (w *Workspace) Flush(ctx context.Context) error {
	return w.saver.Flush(ctx)
}

func (w *Workspace) Pending() bool { return w.saver.Pending() }

// Paths lists the files that hold the stored document.
func (w *Workspace) Paths() []string { return w.gw.Paths() }

// Close flushes pending changes and closes the gateway.
func (w *Workspace) Close(ctx context.Context) error {
	err := w.saver.Close(ctx)
	if cerr := w.gw.Close(); err == nil {
		err = cerr
	}
	return err
}

func (w *Workspace) write(ctx context.Context) error {
	w.mu.Lock()
	snap := w.doc.Clone()
	w.mu.Unlock()

	snap.Touch(w.env.Time())
	b, err := Marshal(snap)
	if err != nil {
		return err
	}
	if err := w.gw.Put(ctx, KeyV2, b); err != nil {
		return err
	}

	w.mu.Lock()
	// Only the timestamp changes; later mutations keep their content.
	cur := w.doc.Clone()
	cur.LastSavedAt = snap.LastSavedAt
	w.doc = cur
	w.written = b
	w.mu.Unlock()
	appLog.Debug("document saved", "people", len(snap.People), "tasks", len(snap.Tasks))
	return nil
}

// Reload re-reads the document after an external write. It reports false and
// keeps the in-memory state when the stored bytes are the ones this workspace
// wrote last or when local changes are still pending.
func (w *Workspace) Reload(ctx context.Context) (bool, error) {
	if w.saver.Pending() {
		return false, nil
	}
	raw, ok, err := w.gw.Get(ctx, KeyV2)
	if err != nil || !ok {
		return false, err
	}
	w.mu.Lock()
	same := bytes.Equal(raw, w.written)
	w.mu.Unlock()
	if same {
		return false, nil
	}
	doc, ok := migrate.ParseV2(raw, w.env)
	if !ok {
		return false, nil
	}
	w.mu.Lock()
	w.doc = doc
	w.written = raw
	w.mu.Unlock()
	appLog.Info("document reloaded", "people", len(doc.People), "tasks", len(doc.Tasks))
	return true, nil
}
