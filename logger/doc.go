// Package logger provides structured logging for weave using zerolog.
//
// It supports JSON and console output, log level configuration and
// component-scoped loggers with structured fields. The engine packages log
// at debug level only: replicate expansions, memo statistics of mapping
// compositors and split/join branch counts.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("replicate")
//	log.Debug("expanded", logger.Fields(logger.FieldWeave, "maximal", logger.FieldReplicates, 9))
package logger
