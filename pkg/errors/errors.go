// Package errors provides scigo/gbhist's error types and a thin façade over
// github.com/cockroachdb/errors so call sites get stack traces for free
// while staying compatible with the standard errors.Is/errors.As contract.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors shared across the module.
var (
	ErrEmptyData      = errors.New("empty data")
	ErrNotImplemented = errors.New("not implemented")
)

// New, Wrap, Wrapf, and Is re-export cockroachdb/errors so callers never need
// to import it directly; every wrap carries a stack trace.
func New(msg string) error {
	return errors.New(msg)
}

func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// DimensionError reports a shape mismatch between an expected and an actual
// dimension, optionally pinpointing which axis (Dim) disagreed.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Dim      int
}

func NewDimensionError(op string, expected, got, dim int) *DimensionError {
	return &DimensionError{Op: op, Expected: expected, Got: got, Dim: dim}
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: dimension mismatch: expected %d, got %d (axis %d)", e.Op, e.Expected, e.Got, e.Dim)
}

// NotFittedError reports that a method was called before the receiver was
// trained/fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

func NewNotFittedError(modelName, method string) *NotFittedError {
	return &NotFittedError{ModelName: modelName, Method: method}
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s is not fitted: call Fit before %s", e.ModelName, e.Method)
}

// ValueError reports an invalid argument value supplied to Op.
type ValueError struct {
	Op      string
	Message string
}

func NewValueError(op, message string) *ValueError {
	return &ValueError{Op: op, Message: message}
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("value error in %s: %s", e.Op, e.Message)
}

// ValidationError reports that Field failed validation, carrying the
// offending Value for diagnostics.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s (value=%v)", e.Field, e.Message, e.Value)
}

// ModelError wraps a lower-level cause with model name and operation
// context. Error() mirrors the historical "goml: Model: message: cause"
// shape relied on by callers that format it directly.
type ModelError struct {
	ModelName string
	Message   string
	Cause     error
}

func NewModelError(modelName, message string, cause error) *ModelError {
	return &ModelError{ModelName: modelName, Message: message, Cause: cause}
}

func (e *ModelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("goml: %s: %s: %v", e.ModelName, e.Message, e.Cause)
	}
	return fmt.Sprintf("goml: %s: %s", e.ModelName, e.Message)
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}

// InvalidArgumentError reports a request rejected before any dispatch or
// mutation occurred, as with histogram.Builder's precondition checks.
type InvalidArgumentError struct {
	Op      string
	Message string
}

func NewInvalidArgumentError(op, message string) *InvalidArgumentError {
	return &InvalidArgumentError{Op: op, Message: message}
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid argument: %s", e.Op, e.Message)
}

// ResourceExhaustionError reports that an allocation required by Op failed.
type ResourceExhaustionError struct {
	Op      string
	Message string
}

func NewResourceExhaustionError(op, message string) *ResourceExhaustionError {
	return &ResourceExhaustionError{Op: op, Message: message}
}

func (e *ResourceExhaustionError) Error() string {
	return fmt.Sprintf("%s: resource exhausted: %s", e.Op, e.Message)
}

// Recover turns a panic inside a deferred call into an error assigned to
// *errp, tagging it with op. Use as: defer errors.Recover(&err, "Op").
func Recover(errp *error, op string) {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok {
			*errp = Wrapf(err, "%s: recovered from panic", op)
			return
		}
		*errp = fmt.Errorf("%s: recovered from panic: %v", op, r)
	}
}
