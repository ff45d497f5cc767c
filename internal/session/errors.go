package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in
	// the session's current state. No state is changed.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrBusy is returned when another NextQuestion or RecordAnswer call is
	// already in flight on the same session.
	ErrBusy = errors.New("session busy")

	// ErrInvalidSnapshot is returned by Restore for inconsistent snapshots.
	ErrInvalidSnapshot = errors.New("invalid session snapshot")
)

// TransitionError describes a rejected operation.
type TransitionError struct {
	Op      string
	Status  Status
	Pending string
	Got     string
}

func (e *TransitionError) Error() string {
	switch {
	case e.Status != StatusActive:
		return fmt.Sprintf("%s: session is %s", e.Op, e.Status)
	case e.Pending == "":
		return fmt.Sprintf("%s: no question pending (got %q)", e.Op, e.Got)
	default:
		return fmt.Sprintf("%s: answer for %q but %q is pending", e.Op, e.Got, e.Pending)
	}
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
