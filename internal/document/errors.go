package document

import "errors"

// ErrNoDocument is returned by operations that require an open
// document when the session slot is empty.
var ErrNoDocument = errors.New("no document open")
