// Package engine is the configuration-driven entry point of weave.
//
// An Engine holds the named replication specs declared in config.Config,
// applies the configured defaults (weave type, aggregation depth cap,
// broadcasting and merge type) to the compositors and splits it builds, and
// wraps stages with the configured logging, tracing and metrics middleware.
//
//	cfg, err := config.Load("sweep-service")
//	eng, err := engine.New(*cfg)
//	if err := eng.Start(ctx); err != nil { ... }
//	defer eng.Stop(ctx)
//
//	c, err := eng.IMapping("sweep", bundle.Bundle{}, bundle.Bundle{})
package engine
