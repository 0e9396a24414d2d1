package store

import (
	"context"
	"sync"
	"time"

	appLog "planner-cli/internal/log"
)

// DefaultDebounce is the trailing-edge delay between the last change and the write.
const DefaultDebounce = 120 * time.Millisecond

// Timer is the part of *time.Timer the saver needs.
type Timer interface {
	Stop() bool
	Reset(d time.Duration) bool
}

// AfterFunc schedules f after d. Tests inject a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Saver coalesces bursts of changes into one write. It is idle until Notify
// marks it dirty and schedules a flush; further Notify calls push the flush back.
type Saver struct {
	flush    func(context.Context) error
	debounce time.Duration
	after    AfterFunc

	// flushMu serializes writes; Flush and Close wait for a running flush.
	flushMu sync.Mutex

	mu      sync.Mutex
	timer   Timer
	pending bool
	lastErr error
}

type SaverOpts struct {
	Debounce  time.Duration
	AfterFunc AfterFunc
}

func NewSaver(flush func(context.Context) error, opts SaverOpts) *Saver {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	after := opts.AfterFunc
	if after == nil {
		after = realAfterFunc
	}
	return &Saver{flush: flush, debounce: debounce, after: after}
}

// Notify marks the document dirty and (re)starts the debounce timer.
func (s *Saver) Notify() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = true
	if s.timer == nil {
		s.timer = s.after(s.debounce, s.onTimer)
		return
	}
	s.timer.Reset(s.debounce)
}

// Pending reports whether a change is waiting to be written.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// LastError returns the error of the most recent flush, if it failed.
func (s *Saver) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Saver) onTimer() {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.mu.Unlock()

	err := s.flush(context.Background())
	if err != nil {
		appLog.Error("debounced save failed", err)
	} else {
		appLog.Debug("debounced save flushed")
	}

	s.mu.Lock()
	s.lastErr = err
	if err != nil {
		// Keep the change; the next Notify or Flush retries.
		s.pending = true
	}
	s.mu.Unlock()
}

// Flush writes immediately, bypassing the debounce. A debounced flush already
// in progress is waited for first. It is a no-op when nothing is pending.
func (s *Saver) Flush(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return nil
	}
	s.pending = false
	s.mu.Unlock()

	err := s.flush(ctx)

	s.mu.Lock()
	s.lastErr = err
	if err != nil {
		s.pending = true
	}
	s.mu.Unlock()
	return err
}

// Close flushes any pending change and stops the timer.
func (s *Saver) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	err := s.Flush(ctx)
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return err
}
