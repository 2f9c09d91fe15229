// Package domain holds the types shared across the proxy pool core: the
// upstream model, the pool snapshot, the buffered request and the outcome of
// a single dispatch attempt.
package domain

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Upstream is an immutable (within a request) description of a provider
// endpoint the pool may route to.
type Upstream struct {
	ID             uuid.UUID
	Name           string
	BaseURL        *url.URL
	Credential     string
	StaticPriority int
}

// Valid reports whether the upstream may ever appear in a snapshot handed to
// the Dispatcher (§3 invariant: no empty credential, no malformed base URL).
func (u *Upstream) Valid() bool {
	if u == nil {
		return false
	}
	if strings.TrimSpace(u.Credential) == "" {
		return false
	}
	if u.BaseURL == nil || u.BaseURL.Scheme == "" || u.BaseURL.Host == "" {
		return false
	}
	return true
}

// NormalizedBaseURL returns the base URL with any trailing slash stripped,
// ready for concatenation with an origin-form request target.
func (u *Upstream) NormalizedBaseURL() string {
	return strings.TrimSuffix(u.BaseURL.String(), "/")
}

func (u *Upstream) String() string {
	if u == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s (%s)", u.Name, u.ID)
}

// UpstreamConfig is the wire/config shape an Upstream is built from,
// before validation and URL parsing turn it into an Upstream.
type UpstreamConfig struct {
	Name           string
	BaseURL        string
	Credential     string
	StaticPriority int
}

// NewUpstream parses and validates a config-level upstream description.
// Upstreams that fail validation are returned with ok=false and must never be
// placed in a PoolSnapshot (§3, §8 invariant 4).
func NewUpstream(id uuid.UUID, cfg UpstreamConfig) (up *Upstream, ok bool) {
	parsed, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	up = &Upstream{
		ID:             id,
		Name:           cfg.Name,
		Credential:     strings.TrimSpace(cfg.Credential),
		StaticPriority: cfg.StaticPriority,
	}
	if err == nil {
		up.BaseURL = parsed
	}
	return up, up.Valid()
}
