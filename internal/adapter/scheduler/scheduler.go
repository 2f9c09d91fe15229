// Package scheduler implements the health-weighted ordering of upstream
// candidates (§4.4). It mirrors the teacher's priority balancer
// (internal/adapter/balancer/priority.go) but is pure: given the same
// snapshot and health readings it always returns the same order, with no
// connection tracking of its own (connection-aware balancing belongs to the
// teacher's richer balancers; this spec's scheduler only needs static
// priority plus penalty).
package scheduler

import (
	"sort"

	"github.com/clauderelay/proxypool/internal/adapter/pool"
	"github.com/clauderelay/proxypool/internal/core/domain"
)

// Scheduler orders a PoolSnapshot by ascending effective score
// (static_priority + penalty), breaking ties by ascending static priority
// (lower number first) so the statically-preferred upstream keeps its tie-break
// advantage even after equal penalty accumulation (§4.4).
type Scheduler struct {
	health *pool.HealthMap
}

// New returns a Scheduler reading penalties from health.
func New(health *pool.HealthMap) *Scheduler {
	return &Scheduler{health: health}
}

type scored struct {
	upstream *domain.Upstream
	score    int
}

// Order returns the snapshot's upstreams sorted into dispatch order. The
// input snapshot itself is never mutated (§3 invariant); a new slice is
// always returned.
func (s *Scheduler) Order(snapshot domain.PoolSnapshot) []*domain.Upstream {
	upstreams := snapshot.Upstreams()
	candidates := make([]scored, len(upstreams))
	for i, up := range upstreams {
		candidates[i] = scored{
			upstream: up,
			score:    up.StaticPriority + s.health.Penalty(up.ID),
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		// Tie-break: the statically preferred upstream (lower StaticPriority
		// number) keeps its advantage even once penalties equalise scores.
		return candidates[i].upstream.StaticPriority < candidates[j].upstream.StaticPriority
	})

	ordered := make([]*domain.Upstream, len(candidates))
	for i, c := range candidates {
		ordered[i] = c.upstream
	}
	return ordered
}
