// Package errors provides the structured error type used across weave.
// Every failure raised by the replication engine, record marshalling and the
// compositors is an *AppError carrying a machine-readable ErrorCode, so callers
// can branch on the kind of failure with errors.Is against the exported
// sentinels or with IsCode.
package errors
