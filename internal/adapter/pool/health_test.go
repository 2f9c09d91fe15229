package pool

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHealthMap_Penalty_DefaultsToZero(t *testing.T) {
	h := NewHealthMap()
	assert.Equal(t, 0, h.Penalty(uuid.New()))
}

func TestHealthMap_RecordSoftFailure_Accumulates(t *testing.T) {
	h := NewHealthMap()
	id := uuid.New()

	h.RecordSoftFailure(id, 10)
	h.RecordSoftFailure(id, 10)

	assert.Equal(t, 20, h.Penalty(id))
}

func TestHealthMap_RecordSuccess_FloorsAtZero(t *testing.T) {
	h := NewHealthMap()
	id := uuid.New()

	h.RecordSoftFailure(id, 5)
	h.RecordSuccess(id, 100)

	assert.Equal(t, 0, h.Penalty(id))
}

func TestHealthMap_RecordSuccess_NeverGoesNegative(t *testing.T) {
	h := NewHealthMap()
	id := uuid.New()

	h.RecordSuccess(id, 1)

	assert.GreaterOrEqual(t, h.Penalty(id), 0)
}

func TestHealthMap_Snapshot_ReflectsAllTrackedIDs(t *testing.T) {
	h := NewHealthMap()
	a, b := uuid.New(), uuid.New()

	h.RecordSoftFailure(a, 10)
	h.RecordSoftFailure(b, 5)

	snap := h.Snapshot()
	assert.Equal(t, 10, snap[a])
	assert.Equal(t, 5, snap[b])
}
