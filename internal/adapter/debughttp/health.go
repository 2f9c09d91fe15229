// Package debughttp serves the small "/internal/health" introspection
// surface (SPEC_FULL supplement 1): a JSON rendering of the observability
// record, intercepted by the Acceptor before a request ever reaches the
// Dispatcher. It reuses the same response builder as the main proxy path so
// every byte on the wire goes through one serializer.
package debughttp

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/clauderelay/proxypool/internal/adapter/pool"
	"github.com/clauderelay/proxypool/internal/adapter/proxyhttp"
	"github.com/clauderelay/proxypool/internal/core/domain"
	"github.com/clauderelay/proxypool/internal/observability"
)

// Path is the fixed path the Acceptor routes to this handler.
const Path = "/internal/health"

// Handler renders the Recorder + HealthMap state as a debug response.
type Handler struct {
	recorder *observability.Recorder
	health   *pool.HealthMap
	names    func() map[uuid.UUID]string
}

// New builds a debug Handler. names resolves upstream IDs to display names
// for the penalty map at render time (the registry's current snapshot).
func New(recorder *observability.Recorder, health *pool.HealthMap, names func() map[uuid.UUID]string) *Handler {
	return &Handler{recorder: recorder, health: health, names: names}
}

// Matches reports whether req targets this handler's path.
func (h *Handler) Matches(req *domain.BufferedRequest) bool {
	return req.Target == Path || req.Target == Path+"/"
}

// Serve renders the current observability state as a JSON Response.
func (h *Handler) Serve() proxyhttp.Response {
	byName := make(map[string]int)
	idToName := h.names()
	for id, penalty := range h.health.Snapshot() {
		if name, ok := idToName[id]; ok {
			byName[name] = penalty
		}
	}

	body := h.recorder.DebugJSON(byName)
	headers := domain.Headers{
		{Name: "Content-Type", Value: "application/json"},
	}
	return proxyhttp.NewResponse(http.StatusOK, headers, body)
}
