package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinels for errors.Is. Every typed error below matches exactly one.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrValidation      = errors.New("validation failed")
	ErrInvalidOperator = errors.New("invalid operator")
	ErrProcedure       = errors.New("procedure execution failed")
)

// Entity kinds used in error context.
const (
	KindMovie         = "movie"
	KindDirector      = "director"
	KindActor         = "actor"
	KindFact          = "movie fact"
	KindMovieActor    = "movie actor"
	KindMovieDirector = "movie director"
)

// NotFoundError reports a lookup by id that found nothing.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AlreadyExistsError reports a create or update that collides with an
// existing row. Key describes the colliding business key.
type AlreadyExistsError struct {
	Kind string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s already exists", e.Kind)
	}
	return fmt.Sprintf("%s with %s already exists", e.Kind, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, f := range names {
		parts[i] = f + ": " + e.Fields[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InvalidOperatorError reports an aggregate operator outside the allow-list.
type InvalidOperatorError struct {
	Value   string
	Allowed []string
}

func (e *InvalidOperatorError) Error() string {
	return fmt.Sprintf("invalid operator %q: must be one of %s", e.Value, strings.Join(e.Allowed, ", "))
}

func (e *InvalidOperatorError) Is(target error) bool { return target == ErrInvalidOperator }

// ProcedureError wraps any failure of a stored procedure call or of the
// transaction around it.
type ProcedureError struct {
	Procedure string
	Err       error
}

func (e *ProcedureError) Error() string {
	return fmt.Sprintf("procedure %s failed: %v", e.Procedure, e.Err)
}

func (e *ProcedureError) Unwrap() error { return e.Err }

func (e *ProcedureError) Is(target error) bool { return target == ErrProcedure }
