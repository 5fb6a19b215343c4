package common

import (
	"errors"
	"strings"
)

var (
	ErrMissingExtension   = errors.New("file has no extension")
	ErrMissingFileName    = errors.New("file has no name")
	ErrFieldTooLarge      = errors.New("value does not fit in 32 bits")
	ErrTemplateTooShort   = errors.New("template is too short")
	ErrInvalidTemplate    = errors.New("invalid template")
	ErrFileHeaderMismatch = errors.New("unexpected file header")
	ErrCorruptField       = errors.New("corrupt field")
	ErrUnknownDeviceType  = errors.New("unknown device type")
	ErrFileNotFound       = errors.New("file not found")
)

// BuildError carries the operation, file path and field name a failure happened at.
type BuildError struct {
	Op    string
	Path  string
	Field string
	Err   error
}

func (e *BuildError) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Path != "" {
		parts = append(parts, e.Path)
	}
	if e.Field != "" {
		parts = append(parts, "field "+e.Field)
	}
	if len(parts) == 0 {
		return e.Err.Error()
	}
	return strings.Join(parts, " ") + ": " + e.Err.Error()
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
