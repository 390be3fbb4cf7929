package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrNoHandler indicates no handler was found for an action.
	ErrNoHandler = errors.New("no handler for action")

	// ErrInvalidAction indicates the action is malformed.
	ErrInvalidAction = errors.New("invalid action")
)
