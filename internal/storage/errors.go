package storage

import "errors"

// ErrInvalidInput is returned when input validation fails. Duplicate
// inserts are deliberately not an error: Record reports them as a
// first-class status so callers can count them.
var ErrInvalidInput = errors.New("invalid input")
