package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Broadcasting errors
const (
	// ErrCodeUnknownParameter indicates a spec or signature references a name
	// absent from the parameter bundle, or a bundle carries an unexpected name.
	ErrCodeUnknownParameter ErrorCode = "UNKNOWN_PARAMETER"
	// ErrCodeLengthMismatch indicates sequences that must align have different lengths.
	ErrCodeLengthMismatch ErrorCode = "LENGTH_MISMATCH"
	// ErrCodeAggregationDepthExceeded indicates a spec multiplies more cartesian
	// dimensions than the configured cap allows.
	ErrCodeAggregationDepthExceeded ErrorCode = "AGGREGATION_DEPTH_EXCEEDED"
)

// Composition errors
const (
	// ErrCodeOutputCardinalityMismatch indicates the inner call produced a
	// different number of records than the declared replicate count.
	ErrCodeOutputCardinalityMismatch ErrorCode = "OUTPUT_CARDINALITY_MISMATCH"
	// ErrCodeUnsupportedResultShape indicates a callable result cannot be
	// structured into named results or records.
	ErrCodeUnsupportedResultShape ErrorCode = "UNSUPPORTED_RESULT_SHAPE"
	// ErrCodeStageFailed indicates a named pipeline stage failed.
	ErrCodeStageFailed ErrorCode = "STAGE_FAILED"
)

// Construction errors
const (
	// ErrCodeInvalidInput indicates invalid construction input (spec, options, config).
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeNotFound indicates a named definition was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. They match any AppError carrying the same code.
var (
	ErrUnknownParameter          = &AppError{Code: ErrCodeUnknownParameter}
	ErrLengthMismatch            = &AppError{Code: ErrCodeLengthMismatch}
	ErrAggregationDepthExceeded  = &AppError{Code: ErrCodeAggregationDepthExceeded}
	ErrOutputCardinalityMismatch = &AppError{Code: ErrCodeOutputCardinalityMismatch}
	ErrUnsupportedResultShape    = &AppError{Code: ErrCodeUnsupportedResultShape}
	ErrInvalidInput              = &AppError{Code: ErrCodeInvalidInput}
	ErrNotFound                  = &AppError{Code: ErrCodeNotFound}
)
