// Package apperror defines the engine's structured errors: a stable code,
// severity, optional field and details. Codes surface in JSON responses and
// in the CLI exit status; each code also has a canonical gRPC mapping so
// wrappers exposing the engine over RPC translate errors without tables of
// their own.
package apperror

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode identifies a class of engine errors.
type ErrorCode string

const (
	// Validation
	CodeEmptyGraph         ErrorCode = "EMPTY_GRAPH"
	CodeInvalidCoordinates ErrorCode = "INVALID_COORDINATES"
	CodeInvalidSegment     ErrorCode = "INVALID_SEGMENT"
	CodeDuplicateSegment   ErrorCode = "DUPLICATE_SEGMENT"
	CodeZeroLengthSegment  ErrorCode = "ZERO_LENGTH_SEGMENT"
	CodeInvalidAlgorithm   ErrorCode = "INVALID_ALGORITHM"
	CodeInvalidContext     ErrorCode = "INVALID_CONTEXT"
	CodeInvalidEvent       ErrorCode = "INVALID_EVENT"

	// Connectivity
	CodeNoPath            ErrorCode = "NO_PATH"
	CodeDisconnectedGraph ErrorCode = "DISCONNECTED_GRAPH"
	CodeUnreachableNode   ErrorCode = "UNREACHABLE_NODE"

	// General
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeInvalidArgument   ErrorCode = "INVALID_ARGUMENT"
	CodeNilInput          ErrorCode = "NIL_INPUT"
	CodeInvalidPagination ErrorCode = "INVALID_PAGINATION"
	CodeTimeout           ErrorCode = "TIMEOUT"
	CodeRateLimited       ErrorCode = "RATE_LIMITED"
	CodeUnavailable       ErrorCode = "UNAVAILABLE"
)

// Severity ранжирует ошибки: warning не прерывает расчёт, error прерывает,
// critical требует вмешательства.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error структурированная ошибка движка.
type Error struct {
	Code     ErrorCode
	Message  string
	Field    string // входное поле, вызвавшее ошибку
	Details  map[string]any
	Cause    error
	Severity Severity
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// grpcCodes канонический маппинг кодов движка в gRPC-статусы.
// Невключённые коды считаются Internal.
var grpcCodes = map[ErrorCode]codes.Code{
	// Некорректный запрос
	CodeEmptyGraph:         codes.InvalidArgument,
	CodeInvalidCoordinates: codes.InvalidArgument,
	CodeInvalidSegment:     codes.InvalidArgument,
	CodeDuplicateSegment:   codes.InvalidArgument,
	CodeZeroLengthSegment:  codes.InvalidArgument,
	CodeInvalidAlgorithm:   codes.InvalidArgument,
	CodeInvalidContext:     codes.InvalidArgument,
	CodeInvalidEvent:       codes.InvalidArgument,
	CodeInvalidArgument:    codes.InvalidArgument,
	CodeNilInput:           codes.InvalidArgument,
	CodeInvalidPagination:  codes.InvalidArgument,

	// Запрос корректен, но на этой карте невыполним
	CodeNoPath:            codes.FailedPrecondition,
	CodeDisconnectedGraph: codes.FailedPrecondition,
	CodeUnreachableNode:   codes.FailedPrecondition,

	CodeNotFound:    codes.NotFound,
	CodeTimeout:     codes.DeadlineExceeded,
	CodeRateLimited: codes.ResourceExhausted,
	CodeUnavailable: codes.Unavailable,
}

// GRPCStatus converts the error into a gRPC status.
func (e *Error) GRPCStatus() *status.Status {
	code, ok := grpcCodes[e.Code]
	if !ok {
		code = codes.Internal
	}
	return status.New(code, e.Message)
}

// newError is the shared constructor behind New and its variants.
func newError(code ErrorCode, message string, severity Severity) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: severity,
	}
}

// New creates an error with SeverityError.
func New(code ErrorCode, message string) *Error {
	return newError(code, message, SeverityError)
}

// NewWithField creates an error bound to a specific input field.
func NewWithField(code ErrorCode, message, field string) *Error {
	e := newError(code, message, SeverityError)
	e.Field = field
	return e
}

// NewWarning creates an error with SeverityWarning.
func NewWarning(code ErrorCode, message string) *Error {
	return newError(code, message, SeverityWarning)
}

// NewCritical creates an error with SeverityCritical.
func NewCritical(code ErrorCode, message string) *Error {
	return newError(code, message, SeverityCritical)
}

// Wrap annotates an underlying error with a code and message.
func Wrap(cause error, code ErrorCode, message string) *Error {
	e := newError(code, message, SeverityError)
	e.Cause = cause
	return e
}

// WithDetails attaches a structured detail and returns the error.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithField binds the error to an input field and returns it.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithSeverity overrides the severity and returns the error.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// asAppError unwraps err down to an *Error.
func asAppError(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := asAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// Code extracts the code from err, defaulting to CodeInternal for foreign errors.
func Code(err error) ErrorCode {
	if appErr, ok := asAppError(err); ok {
		return appErr.Code
	}
	return CodeInternal
}

// IsWarning reports whether err is a warning-level engine error.
func IsWarning(err error) bool {
	appErr, ok := asAppError(err)
	return ok && appErr.Severity == SeverityWarning
}

// IsCritical reports whether err is a critical engine error.
func IsCritical(err error) bool {
	appErr, ok := asAppError(err)
	return ok && appErr.Severity == SeverityCritical
}

// ToGRPC converts any error into a gRPC status error. Engine errors use
// their canonical mapping, existing status errors pass through, the rest
// become Internal.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}

	if appErr, ok := asAppError(err); ok {
		return appErr.GRPCStatus().Err()
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	return status.Error(codes.Internal, err.Error())
}

// FromGRPC converts a gRPC status error back into an engine error.
// Statuses without a specific counterpart map to CodeInternal.
func FromGRPC(err error) *Error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return New(CodeInternal, err.Error())
	}

	var code ErrorCode
	switch st.Code() {
	case codes.InvalidArgument:
		code = CodeInvalidArgument
	case codes.NotFound:
		code = CodeNotFound
	case codes.DeadlineExceeded:
		code = CodeTimeout
	case codes.FailedPrecondition:
		code = CodeNoPath
	case codes.ResourceExhausted:
		code = CodeRateLimited
	case codes.Unavailable:
		code = CodeUnavailable
	default:
		code = CodeInternal
	}

	return New(code, st.Message())
}

// Типовые ошибки расчёта маршрута
var (
	ErrEmptyGraph         = New(CodeEmptyGraph, "no road segments supplied")
	ErrInvalidCoordinates = New(CodeInvalidCoordinates, "coordinates must be finite numbers")
	ErrNoPath             = New(CodeNoPath, "no path between start and end")
	ErrNotFound           = New(CodeNotFound, "no graph node near the requested point")
	ErrNilSegments        = New(CodeNilInput, "segment list is nil")
	ErrRateLimited        = New(CodeRateLimited, "request rate limit exceeded")
)
