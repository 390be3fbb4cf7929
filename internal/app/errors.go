package app

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning indicates Run was called on a running application.
var ErrAlreadyRunning = errors.New("application already running")

// InitError reports a component that failed to initialize during
// bootstrap.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("init %s", e.Component)
	}
	return fmt.Sprintf("init %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
