package core

import "errors"

// Picking and editing failures. None of them is fatal: callers decline the
// requested change and keep the previous state.
var (
	ErrInvalidTransform = errors.New("invalid transform")
	ErrNoIntersection   = errors.New("no intersection")
	ErrIndexOutOfRange  = errors.New("marker index out of range")
	ErrDegenerateCamera = errors.New("degenerate camera state")
)
