package config

import (
	"fmt"

	"github.com/kbukum/weave/logger"
	"github.com/kbukum/weave/observability"
	"github.com/kbukum/weave/validation"
)

// Config is the weave engine configuration.
//
// Example:
//
//	name: sweep-service
//	defaults:
//	  weave: maximal
//	specs:
//	  sweep:
//	    entries: [a, {bound: [b, c]}]
//	    weave: strict
type Config struct {
	Name        string                `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string                `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string                `yaml:"version" mapstructure:"version"`
	Logging     logger.Config         `yaml:"logging" mapstructure:"logging"`
	Tracing     observability.Config  `yaml:"tracing" mapstructure:"tracing"`
	Defaults    Defaults              `yaml:"defaults" mapstructure:"defaults"`
	Specs       map[string]SpecConfig `yaml:"specs" mapstructure:"specs" validate:"dive,keys,identifier,endkeys"`
}

// Defaults are applied to every spec and mapping compositor built by the
// engine unless a spec overrides them.
type Defaults struct {
	Weave               string `yaml:"weave" mapstructure:"weave" validate:"oneof=maximal minimal strict"`
	MaxAggregationDepth int    `yaml:"max_aggregation_depth" mapstructure:"max_aggregation_depth" validate:"gte=0"`
	BroadcastOutOfSpec  bool   `yaml:"broadcast_out_of_spec" mapstructure:"broadcast_out_of_spec"`
	Merge               string `yaml:"merge" mapstructure:"merge" validate:"oneof=union intersection"`
}

// SpecConfig declares one named replication spec. Entries use the YAML entry
// syntax: a string is a name, a list is a product group, {bound: [...]} is a
// bound group. File points to a YAML spec document instead.
type SpecConfig struct {
	Entries            []any  `yaml:"entries" mapstructure:"entries"`
	File               string `yaml:"file" mapstructure:"file" validate:"excluded_with=Entries"`
	Weave              string `yaml:"weave" mapstructure:"weave" validate:"omitempty,oneof=maximal minimal strict"`
	Replicates         int    `yaml:"replicates" mapstructure:"replicates" validate:"gte=0"`
	BroadcastOutOfSpec *bool  `yaml:"broadcast_out_of_spec" mapstructure:"broadcast_out_of_spec"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Logging.ApplyDefaults()
	c.Tracing.ApplyDefaults()
	if c.Defaults.Weave == "" {
		c.Defaults.Weave = "maximal"
	}
	if c.Defaults.Merge == "" {
		c.Defaults.Merge = "union"
	}
}

// Validate validates the configuration. Call ApplyDefaults first.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
