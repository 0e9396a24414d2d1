package model

import (
	"time"

	"github.com/google/uuid"

	"planner-cli/internal/calendar"
)

// Env supplies the clock and id generator used when normalization has to fill
// in absent values. The zero Env uses time.Now and random UUIDs.
type Env struct {
	Now   func() time.Time
	NewID func() string
}

func DefaultEnv() Env {
	return Env{Now: time.Now, NewID: NewID}
}

// NewID returns a globally unique id.
func NewID() string {
	return uuid.NewString()
}

func (e Env) Time() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e Env) ID() string {
	if e.NewID == nil {
		return NewID()
	}
	return e.NewID()
}

// Today is the local civil date of the env clock.
func (e Env) Today() string {
	return calendar.Today(e.Time())
}
