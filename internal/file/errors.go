package file

import (
	"errors"
	"fmt"
	"os"
)

// Error records a recoverable failure on a single path. It never aborts a run.
type Error struct {
	Op   string // "walk", "mkdir", "open", "create", "read", "write", "close"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsPermission reports whether the failure was a permissions error
func (e *Error) IsPermission() bool {
	return errors.Is(e.Err, os.ErrPermission)
}

// NewError wraps err as a per-path failure
func NewError(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: err}
}
