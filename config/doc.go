// Package config loads and validates weave engine configuration.
//
// Configuration is read with Viper from a config.yml file, then overridden by
// environment variables and an optional .env file (godotenv). Only variables
// carrying the configured prefix (WEAVE_ by default) are bound, with
// underscores mapped onto nested keys:
//
//	WEAVE_DEFAULTS_WEAVE=strict       -> defaults.weave
//	WEAVE_TRACING_SAMPLE_RATE=0.5     -> tracing.sample_rate
//
// # Usage
//
//	cfg, err := config.Load("sweep-service", config.WithConfigFile("config.yml"))
//
// Spec names are map keys and therefore case-insensitive: Viper lowercases them.
package config
