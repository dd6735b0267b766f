package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/chancia/quizlive/internal/domain"
)

// RoomLifecycle is the per-room state machine:
//
//	Waiting -> InProgress -> Finished -> (explicit Reset) -> Waiting
//
// Rooms with no recorded state are Waiting; Forget on disposal guarantees a
// reused key starts fresh.
type RoomLifecycle struct {
	mu     sync.RWMutex
	states map[domain.RoomKey]domain.GameState
}

func NewRoomLifecycle() *RoomLifecycle {
	return &RoomLifecycle{states: make(map[domain.RoomKey]domain.GameState)}
}

func (l *RoomLifecycle) StateOf(room domain.RoomKey) domain.GameState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if s, ok := l.states[room]; ok {
		return s
	}
	return domain.StateWaiting
}

// Start moves Waiting -> InProgress. Any other state is
// domain.ErrInvalidTransition; this is the double-start guard.
func (l *RoomLifecycle) Start(room domain.RoomKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.states[room]; ok && s != domain.StateWaiting {
		return domain.ErrInvalidTransition
	}
	l.states[room] = domain.StateInProgress
	log.Info().Str("module", "core.lifecycle").Str("room", string(room)).Msg("game started")
	return nil
}

// Finish moves InProgress -> Finished and reports whether the transition
// happened. Finishing an already-Finished room is a no-op, not an error;
// finishing a Waiting room is rejected.
func (l *RoomLifecycle) Finish(room domain.RoomKey) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.stateLocked(room) {
	case domain.StateInProgress:
		l.states[room] = domain.StateFinished
		log.Info().Str("module", "core.lifecycle").Str("room", string(room)).Msg("game finished")
		return true, nil
	case domain.StateFinished:
		return false, nil
	default:
		return false, domain.ErrInvalidTransition
	}
}

// Reset moves Finished -> Waiting so the room can host another game.
// Always explicit, never implicit.
func (l *RoomLifecycle) Reset(room domain.RoomKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stateLocked(room) != domain.StateFinished {
		return domain.ErrInvalidTransition
	}
	l.states[room] = domain.StateWaiting
	log.Info().Str("module", "core.lifecycle").Str("room", string(room)).Msg("game reset")
	return nil
}

// CanAcceptAnswer is true only while InProgress.
func (l *RoomLifecycle) CanAcceptAnswer(room domain.RoomKey) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stateLocked(room) == domain.StateInProgress
}

// Forget drops the room's state on disposal.
func (l *RoomLifecycle) Forget(room domain.RoomKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.states, room)
}

func (l *RoomLifecycle) stateLocked(room domain.RoomKey) domain.GameState {
	if s, ok := l.states[room]; ok {
		return s
	}
	return domain.StateWaiting
}
