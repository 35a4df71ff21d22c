package record

import (
	"errors"
	"fmt"
)

// ErrIO classifies failures to create or append to an output file.
// Use errors.Is(err, ErrIO) to detect them.
var ErrIO = errors.New("record output failed")

// ErrMarshal classifies failures to serialize a message.
var ErrMarshal = errors.New("record marshal failed")

// Error wraps an underlying failure with the operation and path involved.
type Error struct {
	// Kind is the sentinel used for classification.
	Kind error
	// Op is the failed operation (e.g. "mkdir", "open", "write").
	Op string
	// Path is the file or directory involved.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the classification and the underlying error.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func ioError(op, path string, err error) error {
	return &Error{Kind: ErrIO, Op: op, Path: path, Err: err}
}
