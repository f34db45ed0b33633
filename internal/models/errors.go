package models

import "errors"

// ErrInvalidInput marks a malformed snapshot: a nil document or a work
// order without an ID. Fatal to the comparison call that hits it; callers
// must not proceed with a partial diff.
var ErrInvalidInput = errors.New("invalid snapshot input")
