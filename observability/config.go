package observability

import "time"

// Config is the tracing section of the weave configuration.
type Config struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint        string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure        bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate      float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Metrics         bool          `yaml:"metrics" mapstructure:"metrics"`
	MetricsInterval time.Duration `yaml:"metrics_interval" mapstructure:"metrics_interval" validate:"gte=0"`
}

// ApplyDefaults fills unset tracing fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricsInterval == 0 {
		c.MetricsInterval = 15 * time.Second
	}
}

// TracerConfig derives the tracer configuration for a service.
func (c Config) TracerConfig(serviceName, environment string) TracerConfig {
	tc := DefaultTracerConfig(serviceName)
	tc.Environment = environment
	tc.Endpoint = c.Endpoint
	tc.Insecure = c.Insecure
	tc.SampleRate = c.SampleRate
	return tc
}

// MeterConfig derives the meter configuration for a service.
func (c Config) MeterConfig(serviceName, environment string) MeterConfig {
	mc := DefaultMeterConfig(serviceName)
	mc.Environment = environment
	mc.Endpoint = c.Endpoint
	mc.Insecure = c.Insecure
	mc.Interval = c.MetricsInterval
	return mc
}
