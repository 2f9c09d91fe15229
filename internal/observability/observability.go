// Package observability holds the small publish-subscribe record the proxy
// exposes to the menu-bar UI: which upstream is currently being attempted,
// when the last success happened, and per-upstream penalties (§4.5, §9). The
// UI polls this record; it never drives the proxy.
package observability

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/clauderelay/proxypool/internal/core/domain"
)

// Recorder is a small guarded record, following the teacher's atomic-stats
// pattern (proxy_sherpa.go's proxyStats) but for UI-facing state rather than
// counters.
type Recorder struct {
	mu                 sync.RWMutex
	currentUpstream    *domain.Upstream
	isRequesting       bool
	inFlight           int
	lastSuccessUpstream *domain.Upstream
	lastSuccessTime    time.Time
	hasLastSuccess     bool
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

// SetCurrentUpstream records the upstream currently being attempted.
func (r *Recorder) SetCurrentUpstream(u *domain.Upstream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentUpstream = u
}

// SetRequesting marks one request as started (true) or finished (false).
// The in-flight flag (§4.5 is_requesting) stays set until every started
// request has finished, so concurrent requests do not clear it early.
func (r *Recorder) SetRequesting(requesting bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if requesting {
		r.inFlight++
	} else if r.inFlight > 0 {
		r.inFlight--
	}
	r.isRequesting = r.inFlight > 0
	if !r.isRequesting {
		r.currentUpstream = nil
	}
}

// RecordSuccess updates the last-success upstream/time atomically (§4.5).
func (r *Recorder) RecordSuccess(u *domain.Upstream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSuccessUpstream = u
	r.lastSuccessTime = time.Now()
	r.hasLastSuccess = true
}

// CurrentUpstream returns the upstream currently being attempted, if any.
func (r *Recorder) CurrentUpstream() (*domain.Upstream, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentUpstream, r.currentUpstream != nil
}

// IsRequesting reports whether any attempt is outstanding.
func (r *Recorder) IsRequesting() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isRequesting
}

// LastSuccess returns the most recent successful upstream and when it
// succeeded, if one has ever occurred.
func (r *Recorder) LastSuccess() (*domain.Upstream, time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastSuccessUpstream, r.lastSuccessTime, r.hasLastSuccess
}

// debugSnapshot is the wire shape of the "/internal/health" introspection
// endpoint (SPEC_FULL supplement 1). Callers (tests, the menu-bar UI) query
// it with gjson paths rather than depending on this struct directly, so the
// shape can grow without breaking consumers.
type debugSnapshot struct {
	CurrentUpstream     *string        `json:"current_upstream"`
	LastSuccessUpstream *string        `json:"last_success_upstream"`
	LastSuccessTime     *string        `json:"last_success_time"`
	IsRequesting        bool           `json:"is_requesting"`
	Penalties           map[string]int `json:"penalties"`
}

// DebugJSON renders the record as JSON for the "/internal/health"
// introspection endpoint.
func (r *Recorder) DebugJSON(penalties map[string]int) []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := debugSnapshot{IsRequesting: r.isRequesting, Penalties: penalties}
	if r.currentUpstream != nil {
		name := r.currentUpstream.Name
		snap.CurrentUpstream = &name
	}
	if r.hasLastSuccess {
		name := r.lastSuccessUpstream.Name
		ts := r.lastSuccessTime.Format(time.RFC3339)
		snap.LastSuccessUpstream = &name
		snap.LastSuccessTime = &ts
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return []byte(`{"error":"observability record serialisation failed"}`)
	}
	return body
}
