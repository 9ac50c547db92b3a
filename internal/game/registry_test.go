package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szabala94/KalamburyPro-master/internal"
)

func drawerCount(r *Registry) int {
	count := 0
	for _, s := range r.ListActive() {
		if s.IsDrawing {
			count++
		}
	}
	return count
}

func TestRegistryAddActiveConflicts(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddActive("alice", "c1", 0))

	assert.ErrorIs(t, r.AddActive("bob", "c1", 0), internal.ErrConflict)
	assert.ErrorIs(t, r.AddActive("alice", "c2", 0), internal.ErrConflict)
	assert.True(t, r.IsActive("c1"))
	assert.False(t, r.IsActive("c2"))
}

func TestRegistryRemoveActiveIdempotent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddActive("alice", "c1", 0))

	r.RemoveActive("c1")
	assert.False(t, r.IsActive("c1"))

	// A second removal is routine under disconnect races, not an error.
	r.RemoveActive("c1")
	assert.Empty(t, r.ListActive())
}

func TestRegistryFindByConnection(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddActive("alice", "c1", 7))

	s, err := r.FindByConnection("c1")
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, 7, s.Points)

	_, err = r.FindByConnection("missing")
	assert.ErrorIs(t, err, internal.ErrNotFound)

	_, err = r.FindByConnection("")
	assert.ErrorIs(t, err, internal.ErrNotFound)

	_, err = r.FindByConnection("   ")
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestRegistryFindDrawer(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddActive("alice", "c1", 0))
	require.NoError(t, r.AddActive("bob", "c2", 0))

	_, err := r.FindDrawer()
	assert.ErrorIs(t, err, internal.ErrNoDrawer)

	require.NoError(t, r.SetDrawer("c1", "house"))
	drawer, err := r.FindDrawer()
	require.NoError(t, err)
	assert.Equal(t, "c1", drawer.ConnID)
	assert.Equal(t, "house", drawer.Word)
}

func TestRegistryFindDrawerIntegrityViolation(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddActive("alice", "c1", 0))
	require.NoError(t, r.AddActive("bob", "c2", 0))

	// Corrupt the state directly: two drawers must never be tolerated.
	r.mu.Lock()
	r.sessions["c1"].IsDrawing = true
	r.sessions["c1"].Word = "house"
	r.sessions["c2"].IsDrawing = true
	r.sessions["c2"].Word = "guitar"
	r.mu.Unlock()

	_, err := r.FindDrawer()
	assert.ErrorIs(t, err, internal.ErrIntegrity)
}

func TestRegistrySetDrawerClearsPrevious(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddActive("alice", "c1", 0))
	require.NoError(t, r.AddActive("bob", "c2", 0))

	require.NoError(t, r.SetDrawer("c1", "house"))
	require.NoError(t, r.SetDrawer("c2", "guitar"))

	assert.Equal(t, 1, drawerCount(r))
	drawer, err := r.FindDrawer()
	require.NoError(t, err)
	assert.Equal(t, "c2", drawer.ConnID)

	prev, err := r.FindByConnection("c1")
	require.NoError(t, err)
	assert.False(t, prev.IsDrawing)
	assert.Empty(t, prev.Word)

	// Word is set exactly when the session is drawing.
	for _, s := range r.ListActive() {
		assert.Equal(t, s.IsDrawing, s.Word != "")
	}
}

func TestRegistrySetDrawerRejectsBadInput(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddActive("alice", "c1", 0))

	assert.ErrorIs(t, r.SetDrawer("c1", ""), internal.ErrIntegrity)
	assert.ErrorIs(t, r.SetDrawer("c1", "   "), internal.ErrIntegrity)
	assert.ErrorIs(t, r.SetDrawer("missing", "house"), internal.ErrIntegrity)
	assert.Equal(t, 0, drawerCount(r))
}

func TestRegistryAddPoints(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddActive("alice", "c1", 3))

	require.NoError(t, r.AddPoints("c1", 1))
	s, err := r.FindByConnection("c1")
	require.NoError(t, err)
	assert.Equal(t, 4, s.Points)

	// Non-positive deltas are warned no-ops.
	require.NoError(t, r.AddPoints("c1", 0))
	require.NoError(t, r.AddPoints("c1", -5))
	s, err = r.FindByConnection("c1")
	require.NoError(t, err)
	assert.Equal(t, 4, s.Points)

	assert.ErrorIs(t, r.AddPoints("missing", 1), internal.ErrIntegrity)
}

func TestRegistryPickRandom(t *testing.T) {
	r := NewRegistry()
	_, err := r.PickRandom()
	assert.ErrorIs(t, err, internal.ErrIntegrity)

	require.NoError(t, r.AddActive("alice", "c1", 0))
	s, err := r.PickRandom()
	require.NoError(t, err)
	assert.Equal(t, "c1", s.ConnID)
}
