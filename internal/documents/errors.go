package documents

import "errors"

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrInvalidInput indicates missing or malformed input.
var ErrInvalidInput = errors.New("invalid input")
