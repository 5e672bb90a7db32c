package errors

import (
	"fmt"
	"sort"
	"strings"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code.
// A target without a code never matches.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Broadcasting errors ---

// UnknownParameter creates an AppError for a name missing from a bundle
// or not accepted by a declared signature.
func UnknownParameter(name string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownParameter, Message: fmt.Sprintf("unknown parameter %q", name),
		Details: map[string]any{"parameter": name},
	}
}

// LengthMismatch creates an AppError for sequences that cannot be aligned.
// scope names what was being aligned (a bound group, a record set).
func LengthMismatch(scope string, lengths map[string]int) *AppError {
	names := make([]string, 0, len(lengths))
	for k := range lengths {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%d", n, lengths[n])
	}
	return &AppError{
		Code:    ErrCodeLengthMismatch,
		Message: fmt.Sprintf("length mismatch in %s: %s", scope, strings.Join(parts, ", ")),
		Details: map[string]any{"scope": scope, "lengths": lengths},
	}
}

// AggregationDepthExceeded creates an AppError for a spec whose cartesian
// dimension count exceeds the configured maximum.
func AggregationDepthExceeded(depth, maxDepth int) *AppError {
	return &AppError{
		Code:    ErrCodeAggregationDepthExceeded,
		Message: fmt.Sprintf("spec multiplies %d cartesian dimensions, maximum is %d", depth, maxDepth),
		Details: map[string]any{"depth": depth, "max": maxDepth},
	}
}

// --- Composition errors ---

// OutputCardinalityMismatch creates an AppError for an inner result whose
// record count differs from the declared replicate count.
func OutputCardinalityMismatch(got, want int) *AppError {
	return &AppError{
		Code:    ErrCodeOutputCardinalityMismatch,
		Message: fmt.Sprintf("inner call produced %d records, expected %d", got, want),
		Details: map[string]any{"got": got, "want": want},
	}
}

// UnsupportedResultShape creates an AppError for a result that cannot be
// structured by name or converted to records.
func UnsupportedResultShape(callable, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeUnsupportedResultShape,
		Message: fmt.Sprintf("%s: %s", callable, reason),
		Details: map[string]any{"callable": callable},
	}
}

// StageFailed wraps the failure of a named stage.
func StageFailed(stage string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStageFailed, Message: fmt.Sprintf("stage %s failed", stage),
		Details: map[string]any{"stage": stage}, Cause: cause,
	}
}

// --- Construction errors ---

// InvalidInput creates a new AppError for invalid construction input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("missing required field: %s", field),
		Details: map[string]any{"field": field},
	}
}

// NotFound creates a new AppError for a named definition that was not found.
func NotFound(resource, name string) *AppError {
	details := map[string]any{"resource": resource}
	if name != "" {
		details["name"] = name
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("%s %q not found", resource, name),
		Details: details,
	}
}

// Internal creates a new AppError for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "an unexpected error occurred",
		Cause: cause,
	}
}
