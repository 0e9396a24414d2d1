package mutate

import (
	"errors"
	"fmt"

	"planner-cli/internal/model"
)

var ErrEmptyAssignees = errors.New("at least one assignee is required")

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ValidationError rejects user input before anything is changed.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

type TransitionError struct {
	ID   string
	From model.Status
	To   model.Status
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("task %s: cannot move from %s to %s", e.ID, e.From, e.To)
}

func invalid(field, msg string) error {
	return ValidationError{Field: field, Msg: msg}
}
