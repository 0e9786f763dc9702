package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by [Persistence.Load] when no snapshot
	// exists for the requested database name.
	ErrNotFound = errors.New("database snapshot not found")
	// ErrMixedProjection is returned by [Projector.Project] when a
	// projection both includes and excludes fields.
	ErrMixedProjection = errors.New("cannot mix inclusive and exclusive fields in a projection")
	// ErrCannotModifyID reports an update operator targeting _id.
	ErrCannotModifyID = errors.New("cannot modify a document's _id")
	// ErrMultiNotAllowed reports a multi-document remove or update
	// without the multi flag.
	ErrMultiNotAllowed = errors.New("more than one document matches and the multi flag is not set")
)

// ErrStoreUnavailable is the one hard failure of the engine: the requested
// database exists but cannot be read. It propagates to the caller because no
// empty-store default is sensible.
type ErrStoreUnavailable struct {
	Name  string
	Cause error
}

func (e *ErrStoreUnavailable) Error() string {
	return fmt.Sprintf("database %q is unavailable: %v", e.Name, e.Cause)
}

func (e *ErrStoreUnavailable) Unwrap() error { return e.Cause }

// ErrDatabaseName reports an invalid database name, usually one containing a
// path separator or the suffix reserved for crash backup files.
type ErrDatabaseName struct {
	Name string
}

func (e *ErrDatabaseName) Error() string {
	return fmt.Sprintf("invalid database name %q", e.Name)
}

// ErrDocumentType is reported when a value cannot be converted into a
// Document, for example a scalar or a map with non-string keys.
type ErrDocumentType struct {
	Value any
}

func (e *ErrDocumentType) Error() string {
	return fmt.Sprintf("expected map or struct, got %T", e.Value)
}

// ErrFieldName reports a document field created with the reserved $ prefix.
type ErrFieldName struct {
	Field string
}

func (e *ErrFieldName) Error() string {
	return fmt.Sprintf("field names cannot begin with the $ character: %q", e.Field)
}
