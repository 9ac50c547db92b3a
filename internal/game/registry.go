package game

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/szabala94/KalamburyPro-master/internal"
)

// Registry tracks every currently connected player. It is pure state: no
// network, no storage. Primitive operations are individually guarded by the
// mutex; compound turn transitions are serialized one level up by the
// Coordinator.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*internal.ActiveSession
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*internal.ActiveSession),
	}
}

// IsActive reports whether a session exists for the given connection id.
func (r *Registry) IsActive(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[connID]
	return ok
}

// AddActive registers a new session. A second session for the same player,
// or a reused connection id, is a conflict.
func (r *Registry) AddActive(username, connID string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[connID]; ok {
		return fmt.Errorf("%w: connection %s is already active", internal.ErrConflict, connID)
	}
	for _, s := range r.sessions {
		if s.Username == username {
			return fmt.Errorf("%w: player %s is already active", internal.ErrConflict, username)
		}
	}

	r.sessions[connID] = &internal.ActiveSession{
		ConnID:   connID,
		Username: username,
		Points:   points,
	}
	log.Info().Str("conn", connID).Str("username", username).Msg("player active")
	return nil
}

// RemoveActive drops the session for the given connection id. Removing an
// absent session is a no-op: disconnect races make double removal routine.
func (r *Registry) RemoveActive(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		log.Debug().Str("conn", connID).Msg("session already removed")
		return
	}
	delete(r.sessions, connID)
	log.Info().Str("conn", connID).Str("username", s.Username).Msg("player inactive")
}

// ListActive returns a copy of every active session. Order is not defined.
func (r *Registry) ListActive() []internal.ActiveSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]internal.ActiveSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out
}

// FindByConnection resolves a connection id to its session.
func (r *Registry) FindByConnection(connID string) (internal.ActiveSession, error) {
	if strings.TrimSpace(connID) == "" {
		return internal.ActiveSession{}, fmt.Errorf("%w: blank connection id", internal.ErrNotFound)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connID]
	if !ok {
		return internal.ActiveSession{}, fmt.Errorf("%w: no active session for connection %s", internal.ErrNotFound, connID)
	}
	return *s, nil
}

// FindDrawer returns the single drawing session. Zero drawers yields
// ErrNoDrawer; more than one signals a bug elsewhere and is an integrity
// violation, never silently tolerated.
func (r *Registry) FindDrawer() (internal.ActiveSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findDrawerLocked()
}

func (r *Registry) findDrawerLocked() (internal.ActiveSession, error) {
	var drawer *internal.ActiveSession
	for _, s := range r.sessions {
		if !s.IsDrawing {
			continue
		}
		if drawer != nil {
			return internal.ActiveSession{}, fmt.Errorf("%w: more than one drawing player", internal.ErrIntegrity)
		}
		drawer = s
	}
	if drawer == nil {
		return internal.ActiveSession{}, internal.ErrNoDrawer
	}
	return *drawer, nil
}

// SetDrawer atomically clears the drawing flag and word on every session,
// then marks the target session as drawing with the given word.
func (r *Registry) SetDrawer(connID, word string) error {
	if isWordInvalid(word) {
		return fmt.Errorf("%w: cannot set invalid word", internal.ErrIntegrity)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.sessions[connID]
	if !ok {
		return fmt.Errorf("%w: cannot set unknown connection %s as drawing", internal.ErrIntegrity, connID)
	}

	for _, s := range r.sessions {
		s.IsDrawing = false
		s.Word = ""
	}
	target.IsDrawing = true
	target.Word = word

	log.Info().Str("conn", connID).Str("username", target.Username).Msg("new drawing player")
	return nil
}

// AddPoints increments the cached score of the session behind connID.
// Non-positive deltas are ignored with a warning.
func (r *Registry) AddPoints(connID string, delta int) error {
	if delta <= 0 {
		log.Warn().Str("conn", connID).Int("delta", delta).Msg("cannot add zero or negative points")
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return fmt.Errorf("%w: cannot add points to inactive player", internal.ErrIntegrity)
	}
	s.Points += delta
	return nil
}

// PickRandom chooses a uniformly random active session.
func (r *Registry) PickRandom() (internal.ActiveSession, error) {
	sessions := r.ListActive()
	if len(sessions) == 0 {
		return internal.ActiveSession{}, fmt.Errorf("%w: no active players to pick from", internal.ErrIntegrity)
	}
	return sessions[rand.Intn(len(sessions))], nil
}
