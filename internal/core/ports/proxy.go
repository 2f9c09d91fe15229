// Package ports declares the interfaces through which the proxy pool core
// talks to the rest of the application: the configuration layer that owns
// the pool membership (§6 ConfigProvider), the event source that toggles the
// feature on and off, and the surface the menu-bar UI polls for state.
package ports

import (
	"time"

	"github.com/google/uuid"

	"github.com/clauderelay/proxypool/internal/core/domain"
)

// ConfigProvider is the external collaborator that owns persisted pool
// configuration. SnapshotPool must be non-blocking and return an owned copy,
// never a live reference (§6).
type ConfigProvider interface {
	SnapshotPool() []*domain.Upstream
	Port() int
	RequestTimeoutSeconds() int
	PenaltyIncrement() int
	PenaltyDecrement() int
}

// Events is pushed by the configuration layer when the user toggles the
// proxy feature on or off (§6).
type Events interface {
	OnModeChanged(enabled bool)
}

// ProxyService is exposed to collaborators (the menu-bar UI): lifecycle
// control plus read-only observability (§6).
type ProxyService interface {
	Start() error
	Stop() error
	Restart() error

	GetPenalty(upstreamID uuid.UUID) int
	CurrentUpstream() (*domain.Upstream, bool)
	LastSuccess() (*domain.Upstream, time.Time, bool)
	IsRequesting() bool
}

// RequestStats describes a per-request timing breakdown (§9 design notes,
// SPEC_FULL supplement 4). No component in this module fills it in or
// publishes it; the observability record does not carry it.
type RequestStats struct {
	RequestID    string
	StartTime    time.Time
	EndTime      time.Time
	UpstreamName string
	TargetURL    string
	TotalBytes   int

	Latency             int64
	SelectionMs         int64
	HeaderProcessingMs  int64
	BackendResponseMs   int64
	AttemptsMade        int
}

// ProxyStats is the cumulative counter surface (§9).
type ProxyStats struct {
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	AverageLatencyMs   int64
}
