package config

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauderelay/proxypool/internal/core/domain"
)

func TestValidate_DefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}

func TestValidate_PortOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProxyPool.Port = 70000

	var validationErr *domain.ConfigValidationError
	err := Validate(cfg)
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "proxy_pool.port", validationErr.Field)
}

func TestValidate_RequestTimeoutBelowMinimum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProxyPool.RequestTimeoutSeconds = 5

	assert.Error(t, Validate(cfg))
}

func TestValidate_RequestTimeoutAboveMaximum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProxyPool.RequestTimeoutSeconds = 601

	assert.Error(t, Validate(cfg))
}

func TestValidate_NegativePenaltyRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProxyPool.PenaltyIncrement = -1

	assert.Error(t, Validate(cfg))
}

func TestValidate_UpstreamMissingCredentialRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProxyPool.Upstreams = []UpstreamConfig{{Name: "primary", BaseURL: "https://api.example.com"}}

	assert.Error(t, Validate(cfg))
}

func TestValidate_UpstreamMissingBaseURLRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProxyPool.Upstreams = []UpstreamConfig{{Name: "primary", Credential: "sk-test"}}

	assert.Error(t, Validate(cfg))
}

func TestProvider_SnapshotPool_AssignsStableIDPerUpstreamName(t *testing.T) {
	p := &Provider{
		cfg: &Config{ProxyPool: ProxyPoolConfig{
			Upstreams: []UpstreamConfig{{Name: "primary", BaseURL: "https://api.example.com", Credential: "sk-test"}},
		}},
		ids: make(map[string]uuid.UUID),
	}

	first := p.SnapshotPool()
	second := p.SnapshotPool()

	assert.Len(t, first, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestProvider_SnapshotPool_SkipsInvalidUpstreams(t *testing.T) {
	p := &Provider{
		cfg: &Config{ProxyPool: ProxyPoolConfig{
			Upstreams: []UpstreamConfig{{Name: "no-credential", BaseURL: "https://api.example.com"}},
		}},
		ids: make(map[string]uuid.UUID),
	}

	assert.Empty(t, p.SnapshotPool())
}

func TestProvider_Accessors_ReflectLoadedConfig(t *testing.T) {
	p := &Provider{
		cfg: &Config{
			ProxyPool: ProxyPoolConfig{
				Port:                  9000,
				RequestTimeoutSeconds: 60,
				PenaltyIncrement:      5,
				PenaltyDecrement:      2,
				RateLimit:             RateLimitConfig{Enabled: true, RequestsPerSecond: 10, Burst: 20},
			},
			Logging: LoggingConfig{Level: "debug"},
		},
		ids: make(map[string]uuid.UUID),
	}

	assert.Equal(t, 9000, p.Port())
	assert.Equal(t, 60, p.RequestTimeoutSeconds())
	assert.Equal(t, 5, p.PenaltyIncrement())
	assert.Equal(t, 2, p.PenaltyDecrement())
	assert.True(t, p.RateLimit().Enabled)
	assert.Equal(t, "debug", p.LoggingConfig().Level)
}

// TestLoad_DecodesRealYAMLFile exercises the actual viper.Unmarshal path
// (mapstructure, not yaml.v3) that Load depends on, so a tag regression like
// the missing mapstructure tags would fail this instead of going unnoticed
// by the in-memory struct tests above.
func TestLoad_DecodesRealYAMLFile(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())

	const configYAML = `
proxy_pool:
  port: 9090
  request_timeout_seconds: 45
  penalty_increment: 7
  penalty_decrement: 3
  rate_limit:
    enabled: true
    requests_per_second: 5
    burst: 10
  upstreams:
    - name: primary
      base_url: https://api.example.com
      credential: sk-test
      static_priority: 1
logging:
  level: debug
  file_output: true
  log_dir: ./logs
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(configYAML), 0o644))

	p, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, p.Port())
	assert.Equal(t, 45, p.RequestTimeoutSeconds())
	assert.Equal(t, 7, p.PenaltyIncrement())
	assert.Equal(t, 3, p.PenaltyDecrement())
	assert.True(t, p.RateLimit().Enabled)
	assert.Equal(t, 5.0, p.RateLimit().RequestsPerSecond)
	assert.Equal(t, "debug", p.LoggingConfig().Level)

	upstreams := p.SnapshotPool()
	require.Len(t, upstreams, 1)
	assert.Equal(t, "primary", upstreams[0].Name)
}
