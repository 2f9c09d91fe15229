package config

// Config holds the full configuration for the proxy pool core (§4.6, §9).
type Config struct {
	ProxyPool ProxyPoolConfig `yaml:"proxy_pool" mapstructure:"proxy_pool"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// ProxyPoolConfig is the wire shape of proxy_pool.* (§4.6 update_config,
// §9 sample configuration).
type ProxyPoolConfig struct {
	Port                  int              `yaml:"port" mapstructure:"port"`
	RequestTimeoutSeconds int              `yaml:"request_timeout_seconds" mapstructure:"request_timeout_seconds"`
	PenaltyIncrement      int              `yaml:"penalty_increment" mapstructure:"penalty_increment"`
	PenaltyDecrement      int              `yaml:"penalty_decrement" mapstructure:"penalty_decrement"`
	RateLimit             RateLimitConfig  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Upstreams             []UpstreamConfig `yaml:"upstreams" mapstructure:"upstreams"`
}

// RateLimitConfig configures the optional loopback limiter (SPEC_FULL
// supplement 3), off by default since the client is always localhost.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// UpstreamConfig is one entry of proxy_pool.upstreams (§2 Upstream).
type UpstreamConfig struct {
	Name           string `yaml:"name" mapstructure:"name"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	Credential     string `yaml:"credential" mapstructure:"credential"`
	StaticPriority int    `yaml:"static_priority" mapstructure:"static_priority"`
}

// LoggingConfig mirrors internal/logger.Config's YAML-facing fields.
type LoggingConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	FileOutput bool   `yaml:"file_output" mapstructure:"file_output"`
	LogDir     string `yaml:"log_dir" mapstructure:"log_dir"`
	Theme      string `yaml:"theme" mapstructure:"theme"`
	MaxSize    int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age_days" mapstructure:"max_age_days"`
}
