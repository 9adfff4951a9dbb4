package model

import (
	"errors"
	"fmt"

	"github.com/zjrosen/mxview/internal/domain/objname"
)

// Error taxonomy. ErrNotRunning wraps ErrNotFound so callers that only care
// about resolution failures can test for ErrNotFound alone.
var (
	ErrNotFound              = errors.New("resource not found")
	ErrNotRunning            = fmt.Errorf("%w: provider not running", ErrNotFound)
	ErrReadOnlyNamespace     = errors.New("read-only namespace")
	ErrOperationNotSupported = errors.New("operation not supported")
	ErrAttributeNotFound     = errors.New("attribute not found")
	ErrAttributeNotWritable  = errors.New("attribute not writable")
	ErrAlreadyExists         = errors.New("resource already registered")
	ErrDomainConflict        = errors.New("domain conflict")
	ErrMalformedName         = objname.ErrMalformedName
)

// Error wraps a taxonomy member with the operation and name it applies to.
type Error struct {
	Op      string
	Name    objname.Name
	Err     error
	Message string
}

// NewError builds an *Error. msg may be empty.
func NewError(op string, name objname.Name, err error, msg string) *Error {
	return &Error{Op: op, Name: name, Err: err, Message: msg}
}

func (e *Error) Error() string {
	s := e.Op + " " + e.Name.String() + ": "
	if e.Message != "" {
		s += e.Message + ": "
	}
	if e.Err != nil {
		s += e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Stable error codes.
const (
	CodeNotRunning            = "not_running"
	CodeNotFound              = "not_found"
	CodeAttributeNotFound     = "attribute_not_found"
	CodeAttributeNotWritable  = "attribute_not_writable"
	CodeReadOnlyNamespace     = "read_only_namespace"
	CodeOperationNotSupported = "operation_not_supported"
	CodeMalformedName         = "malformed_name"
	CodeAlreadyExists         = "already_exists"
	CodeDomainConflict        = "domain_conflict"
	CodeInternal              = "internal"
)

// Code classifies err into one of the stable error codes. Order matters:
// ErrNotRunning also matches ErrNotFound.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotRunning):
		return CodeNotRunning
	case errors.Is(err, ErrAttributeNotFound):
		return CodeAttributeNotFound
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAttributeNotWritable):
		return CodeAttributeNotWritable
	case errors.Is(err, ErrReadOnlyNamespace):
		return CodeReadOnlyNamespace
	case errors.Is(err, ErrOperationNotSupported):
		return CodeOperationNotSupported
	case errors.Is(err, ErrMalformedName):
		return CodeMalformedName
	case errors.Is(err, ErrAlreadyExists):
		return CodeAlreadyExists
	case errors.Is(err, ErrDomainConflict):
		return CodeDomainConflict
	default:
		return CodeInternal
	}
}
