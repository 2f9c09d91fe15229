// Package pool implements the Pool Registry (§4.4) and the HealthMap that
// tracks the per-upstream penalty used for health-weighted scheduling.
package pool

import (
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
)

// HealthMap maps an upstream ID to a non-negative penalty. Absent keys read
// as 0 (§3). It is safe for concurrent use; no caller holds any lock across
// I/O (§5) because xsync.Map stripes its locking internally and every
// operation here is O(1).
type HealthMap struct {
	penalties *xsync.Map[uuid.UUID, int]
}

// NewHealthMap returns an empty HealthMap.
func NewHealthMap() *HealthMap {
	return &HealthMap{penalties: xsync.NewMap[uuid.UUID, int]()}
}

// Penalty returns the current penalty for id, or 0 if never recorded.
func (h *HealthMap) Penalty(id uuid.UUID) int {
	v, ok := h.penalties.Load(id)
	if !ok {
		return 0
	}
	return v
}

// RecordSuccess decrements the penalty by decrement, floored at 0 (§4.5 step 5).
func (h *HealthMap) RecordSuccess(id uuid.UUID, decrement int) {
	h.penalties.Compute(id, func(old int, loaded bool) (int, xsync.ComputeOp) {
		next := old - decrement
		if next < 0 {
			next = 0
		}
		return next, xsync.UpdateOp
	})
}

// RecordSoftFailure increments the penalty by increment (§4.5 step 5).
func (h *HealthMap) RecordSoftFailure(id uuid.UUID, increment int) {
	h.penalties.Compute(id, func(old int, loaded bool) (int, xsync.ComputeOp) {
		return old + increment, xsync.UpdateOp
	})
}

// Snapshot returns a point-in-time copy of all tracked penalties, used by the
// observability hooks.
func (h *HealthMap) Snapshot() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int)
	h.penalties.Range(func(id uuid.UUID, penalty int) bool {
		out[id] = penalty
		return true
	})
	return out
}
