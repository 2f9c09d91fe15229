package pool

import (
	"sort"

	"github.com/clauderelay/proxypool/internal/core/domain"
	"github.com/clauderelay/proxypool/internal/core/ports"
)

// Registry captures a PoolSnapshot from the external ConfigProvider once per
// incoming request (§4.4), filtering out any upstream that fails the
// validity invariant (§3) before the snapshot is ever exposed to the
// Dispatcher.
type Registry struct {
	config ports.ConfigProvider
}

// NewRegistry wires a Registry to the ConfigProvider collaborator.
func NewRegistry(config ports.ConfigProvider) *Registry {
	return &Registry{config: config}
}

// Snapshot captures the current eligible upstreams, ordered by
// static_priority ascending, with invalid upstreams filtered out (§3, §8
// invariant 4).
func (r *Registry) Snapshot() domain.PoolSnapshot {
	all := r.config.SnapshotPool()

	eligible := make([]*domain.Upstream, 0, len(all))
	for _, up := range all {
		if up.Valid() {
			eligible = append(eligible, up)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].StaticPriority < eligible[j].StaticPriority
	})

	return domain.NewPoolSnapshot(eligible)
}
