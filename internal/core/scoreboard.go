package core

import (
	"context"
	"sync"

	"github.com/chancia/quizlive/internal/domain"
)

// scoreHash is one room's counters behind its own lock, so increments in
// unrelated rooms never contend.
type scoreHash struct {
	mu     sync.Mutex
	scores map[domain.MemberID]int
}

// MemoryScoreBoard is the process-local ScoreBoard. State is
// session-lifetime only; RedisScoreBoard in internal/store backs the same
// interface for horizontal scaling.
type MemoryScoreBoard struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey]*scoreHash
}

func NewMemoryScoreBoard() *MemoryScoreBoard {
	return &MemoryScoreBoard{rooms: make(map[domain.RoomKey]*scoreHash)}
}

func (b *MemoryScoreBoard) Initialize(_ context.Context, room domain.RoomKey, id domain.MemberID) error {
	h := b.hash(room, true)
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.scores[id]; !ok {
		h.scores[id] = 0
	}
	return nil
}

func (b *MemoryScoreBoard) Increment(_ context.Context, room domain.RoomKey, id domain.MemberID) (int, error) {
	h := b.hash(room, false)
	if h == nil {
		return 0, domain.ErrUnknownMember
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.scores[id]
	if !ok {
		return 0, domain.ErrUnknownMember
	}
	v++
	h.scores[id] = v
	return v, nil
}

func (b *MemoryScoreBoard) Remove(_ context.Context, room domain.RoomKey, id domain.MemberID) error {
	h := b.hash(room, false)
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.scores, id)
	return nil
}

func (b *MemoryScoreBoard) Snapshot(_ context.Context, room domain.RoomKey) (map[domain.MemberID]int, error) {
	h := b.hash(room, false)
	if h == nil {
		return map[domain.MemberID]int{}, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[domain.MemberID]int, len(h.scores))
	for id, v := range h.scores {
		out[id] = v
	}
	return out, nil
}

func (b *MemoryScoreBoard) ResetAll(_ context.Context, room domain.RoomKey) error {
	h := b.hash(room, false)
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.scores {
		h.scores[id] = 0
	}
	return nil
}

func (b *MemoryScoreBoard) DropRoom(_ context.Context, room domain.RoomKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.rooms, room)
	return nil
}

func (b *MemoryScoreBoard) hash(room domain.RoomKey, create bool) *scoreHash {
	b.mu.RLock()
	h, ok := b.rooms[room]
	b.mu.RUnlock()
	if ok || !create {
		return h
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if h, ok = b.rooms[room]; ok {
		return h
	}
	h = &scoreHash{scores: make(map[domain.MemberID]int)}
	b.rooms[room] = h
	return h
}
