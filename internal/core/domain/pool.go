package domain

// PoolSnapshot is an immutable, per-request copy of the eligible upstreams,
// ordered by static_priority ascending at capture time. Mutations to the
// underlying registry after capture never affect an in-flight request.
type PoolSnapshot struct {
	upstreams []*Upstream
}

// NewPoolSnapshot builds a snapshot, defensively copying the slice so the
// caller's backing array can't be mutated out from under an in-flight
// request.
func NewPoolSnapshot(upstreams []*Upstream) PoolSnapshot {
	cp := make([]*Upstream, len(upstreams))
	copy(cp, upstreams)
	return PoolSnapshot{upstreams: cp}
}

// Upstreams returns the ordered upstreams captured in this snapshot. The
// returned slice must be treated as read-only by callers.
func (s PoolSnapshot) Upstreams() []*Upstream {
	return s.upstreams
}

// Len reports how many upstreams this snapshot holds.
func (s PoolSnapshot) Len() int {
	return len(s.upstreams)
}

// Empty reports whether the snapshot has no eligible upstreams (§7 PoolEmpty).
func (s PoolSnapshot) Empty() bool {
	return len(s.upstreams) == 0
}
