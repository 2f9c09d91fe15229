package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/clauderelay/proxypool/internal/core/domain"
)

const (
	DefaultPort                  = 32000
	DefaultRequestTimeoutSeconds = 120
	DefaultPenaltyIncrement      = 10
	DefaultPenaltyDecrement      = 1

	minRequestTimeoutSeconds = 10
	maxRequestTimeoutSeconds = 600

	// debounce window for the fsnotify handler, same rationale as olla's
	// config.Load: editors can fire several write events for one save.
	reloadDebounce = 500 * time.Millisecond
)

// DefaultConfig returns a configuration with sensible defaults (§9).
func DefaultConfig() *Config {
	return &Config{
		ProxyPool: ProxyPoolConfig{
			Port:                  DefaultPort,
			RequestTimeoutSeconds: DefaultRequestTimeoutSeconds,
			PenaltyIncrement:      DefaultPenaltyIncrement,
			PenaltyDecrement:      DefaultPenaltyDecrement,
			RateLimit: RateLimitConfig{
				Enabled: false,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			FileOutput: false,
			LogDir:     "./logs",
			Theme:      "default",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// Provider implements ports.ConfigProvider over a hot-reloadable viper
// config, following the teacher's config.Load pattern of re-unmarshalling on
// fsnotify events rather than restarting the process.
type Provider struct {
	mu  sync.RWMutex
	cfg *Config

	idsMu sync.Mutex
	ids   map[string]uuid.UUID

	lastReload time.Time
}

// Load reads config.yaml from the working directory or ./config (the file
// path cannot be overridden from the environment), validates it, and watches
// it for changes. onChange is invoked after every successful reload so
// callers (the Acceptor, the Dispatcher) can pick up new values; it is never
// invoked on an invalid reload, which is silently ignored (nothing is logged)
// so the last-known-good config keeps serving (§4.6, §7).
func Load(onChange func(*Config)) (*Provider, error) {
	p := &Provider{cfg: DefaultConfig(), ids: make(map[string]uuid.UUID)}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("PROXYPOOL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if writeErr := writeDefaultConfigFile("config.yaml"); writeErr != nil {
			return nil, fmt.Errorf("no config.yaml found and default could not be written: %w", writeErr)
		}
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading newly written config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	p.cfg = cfg

	viper.WatchConfig()
	viper.OnConfigChange(func(_ fsnotify.Event) {
		p.idsMu.Lock()
		now := time.Now()
		if now.Sub(p.lastReload) < reloadDebounce {
			p.idsMu.Unlock()
			return
		}
		p.lastReload = now
		p.idsMu.Unlock()

		reloaded := DefaultConfig()
		if err := viper.Unmarshal(reloaded); err != nil {
			return
		}
		if err := Validate(reloaded); err != nil {
			return
		}

		p.mu.Lock()
		p.cfg = reloaded
		p.mu.Unlock()

		if onChange != nil {
			onChange(reloaded)
		}
	})

	return p, nil
}

// writeDefaultConfigFile marshals DefaultConfig to path so a fresh install
// always has a config.yaml to hot-reload, rather than running off in-memory
// defaults a user can't discover or edit.
func writeDefaultConfigFile(path string) error {
	out, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}

// Validate checks the fields the spec constrains explicitly (§4.6, §9).
func Validate(cfg *Config) error {
	if cfg.ProxyPool.Port < 1 || cfg.ProxyPool.Port > 65535 {
		return domain.NewConfigValidationError("proxy_pool.port", cfg.ProxyPool.Port, "must be between 1 and 65535")
	}
	t := cfg.ProxyPool.RequestTimeoutSeconds
	if t < minRequestTimeoutSeconds || t > maxRequestTimeoutSeconds {
		return domain.NewConfigValidationError("proxy_pool.request_timeout_seconds", t,
			fmt.Sprintf("must be between %d and %d", minRequestTimeoutSeconds, maxRequestTimeoutSeconds))
	}
	if cfg.ProxyPool.PenaltyIncrement < 0 {
		return domain.NewConfigValidationError("proxy_pool.penalty_increment", cfg.ProxyPool.PenaltyIncrement, "must be non-negative")
	}
	if cfg.ProxyPool.PenaltyDecrement < 0 {
		return domain.NewConfigValidationError("proxy_pool.penalty_decrement", cfg.ProxyPool.PenaltyDecrement, "must be non-negative")
	}
	for i, u := range cfg.ProxyPool.Upstreams {
		if u.Credential == "" {
			return domain.NewConfigValidationError(fmt.Sprintf("proxy_pool.upstreams[%d].credential", i), u.Name, "must not be empty")
		}
		if u.BaseURL == "" {
			return domain.NewConfigValidationError(fmt.Sprintf("proxy_pool.upstreams[%d].base_url", i), u.Name, "must not be empty")
		}
	}
	return nil
}

// Port implements ports.ConfigProvider (§4.1).
func (p *Provider) Port() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.ProxyPool.Port
}

// RequestTimeoutSeconds implements ports.ConfigProvider (§4.5 step 3).
func (p *Provider) RequestTimeoutSeconds() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.ProxyPool.RequestTimeoutSeconds
}

// PenaltyIncrement implements ports.ConfigProvider (§4.4).
func (p *Provider) PenaltyIncrement() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.ProxyPool.PenaltyIncrement
}

// PenaltyDecrement implements ports.ConfigProvider (§4.4).
func (p *Provider) PenaltyDecrement() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.ProxyPool.PenaltyDecrement
}

// RateLimit exposes the optional loopback rate limit settings (SPEC_FULL
// supplement 3).
func (p *Provider) RateLimit() RateLimitConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.ProxyPool.RateLimit
}

// LoggingConfig exposes the logging section for wiring internal/logger.
func (p *Provider) LoggingConfig() LoggingConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Logging
}

// SnapshotPool implements ports.ConfigProvider: it builds domain.Upstream
// values from the current config, assigning each upstream name a stable
// uuid.UUID that survives config reloads as long as the name is unchanged
// (§2 Upstream.id is "opaque", §4.6 reload replaces the pool wholesale but
// identity should remain recognisable to the UI and HealthMap).
func (p *Provider) SnapshotPool() []*domain.Upstream {
	p.mu.RLock()
	upstreamCfgs := p.cfg.ProxyPool.Upstreams
	p.mu.RUnlock()

	upstreams := make([]*domain.Upstream, 0, len(upstreamCfgs))
	for _, cfg := range upstreamCfgs {
		id := p.idFor(cfg.Name)
		up, ok := domain.NewUpstream(id, domain.UpstreamConfig{
			Name:           cfg.Name,
			BaseURL:        cfg.BaseURL,
			Credential:     cfg.Credential,
			StaticPriority: cfg.StaticPriority,
		})
		if !ok {
			continue
		}
		upstreams = append(upstreams, up)
	}
	return upstreams
}

func (p *Provider) idFor(name string) uuid.UUID {
	p.idsMu.Lock()
	defer p.idsMu.Unlock()
	if id, ok := p.ids[name]; ok {
		return id
	}
	id := uuid.New()
	p.ids[name] = id
	return id
}
