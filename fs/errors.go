package fs

import (
	"fmt"

	"github.com/mit-pdos/go-memfs/common"
)

// Errno is the kind of a failed filesystem operation. Operations return it
// wrapped in a *PathError, *LinkError or *FdError; use errors.Is to test
// for a kind.
type Errno uint8

const (
	ErrNotFound Errno = iota + 1
	ErrAlreadyExists
	ErrResourceExhausted
	ErrNoFreeDescriptor
	ErrNoFreeBlock
	ErrInvalidArgument
	ErrNameTooLong
	ErrTargetTooLong
	ErrNotADirectory
	ErrNotAFile
	ErrNotEmpty
	ErrInvalidOperation
	ErrNotOpen
	ErrTooManyLinks
)

var errnoText = map[Errno]string{
	ErrNotFound:          "no such file or directory",
	ErrAlreadyExists:     "file exists",
	ErrResourceExhausted: "resource exhausted",
	ErrNoFreeDescriptor:  "no free descriptor",
	ErrNoFreeBlock:       "no free block",
	ErrInvalidArgument:   "invalid argument",
	ErrNameTooLong:       "file name too long",
	ErrTargetTooLong:     "symlink target does not fit in a block",
	ErrNotADirectory:     "not a directory",
	ErrNotAFile:          "not a regular file",
	ErrNotEmpty:          "directory not empty",
	ErrInvalidOperation:  "operation not permitted",
	ErrNotOpen:           "file descriptor not open",
	ErrTooManyLinks:      "too many levels of symbolic links",
}

func (e Errno) Error() string {
	if s, ok := errnoText[e]; ok {
		return s
	}
	return fmt.Sprintf("errno %d", uint8(e))
}

// Is reports the refinements: the two exhaustion errors are
// ErrResourceExhausted, and the two length errors are ErrInvalidArgument.
func (e Errno) Is(target error) bool {
	switch target {
	case ErrResourceExhausted:
		return e == ErrNoFreeDescriptor || e == ErrNoFreeBlock
	case ErrInvalidArgument:
		return e == ErrNameTooLong || e == ErrTargetTooLong
	}
	return false
}

// PathError records an error and the operation and path that caused it.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// LinkError records an error during link or symlink.
type LinkError struct {
	Op  string
	Old string
	New string
	Err error
}

func (e *LinkError) Error() string {
	return e.Op + " " + e.Old + " " + e.New + ": " + e.Err.Error()
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// FdError records an error on an open file descriptor.
type FdError struct {
	Op  string
	Fd  common.Fd
	Err error
}

func (e *FdError) Error() string {
	return fmt.Sprintf("%s fd %d: %v", e.Op, e.Fd, e.Err)
}

func (e *FdError) Unwrap() error {
	return e.Err
}

func toPathError(op string, path string, err error) error {
	if err == nil {
		return nil
	}
	return &PathError{Op: op, Path: path, Err: err}
}

func toLinkError(op string, old string, new string, err error) error {
	if err == nil {
		return nil
	}
	return &LinkError{Op: op, Old: old, New: new, Err: err}
}

func toFdError(op string, fd common.Fd, err error) error {
	if err == nil {
		return nil
	}
	return &FdError{Op: op, Fd: fd, Err: err}
}
