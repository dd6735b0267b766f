package core

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/chancia/quizlive/internal/domain"
)

type memberEntry struct {
	member *domain.Member
	sess   MemberSession
	cancel context.CancelFunc
	room   domain.RoomKey // "" while not joined anywhere
	seq    uint64         // join order, keeps snapshots stable
}

// RoomRegistry owns the set of live rooms, the per-room membership and the
// member -> session binding used for fan-out. Explicitly injectable: tests
// instantiate isolated registries, there is no package-level singleton.
type RoomRegistry struct {
	mu      sync.RWMutex
	members map[domain.MemberID]*memberEntry
	rooms   map[domain.RoomKey]map[domain.MemberID]*memberEntry
	seq     uint64
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		members: make(map[domain.MemberID]*memberEntry),
		rooms:   make(map[domain.RoomKey]map[domain.MemberID]*memberEntry),
	}
}

// Register binds a transport-level identity. No room side effects.
func (r *RoomRegistry) Register(id domain.MemberID, conn SignalConnection, cancel context.CancelFunc) *domain.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.members[id]; ok {
		e.sess = NewMemberSession(e.member, conn)
		e.cancel = cancel
		return e.member
	}
	m := &domain.Member{ID: id, Name: "guest"}
	r.members[id] = &memberEntry{
		member: m,
		sess:   NewMemberSession(m, conn),
		cancel: cancel,
	}
	log.Info().Str("module", "core.registry").Str("sid", string(id)).Msg("registered member")
	return m
}

// Join adds the member to the room, creating the room on first use.
// Idempotent per identity: rejoining updates the display name and reports
// rejoined=true instead of duplicating the entry. The returned slice is the
// full membership snapshot for broadcast.
func (r *RoomRegistry) Join(room domain.RoomKey, id domain.MemberID, name string) (members []domain.Member, rejoined bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.members[id]
	if !ok {
		return nil, false, domain.ErrUnknownMember
	}
	if err := e.member.SetName(name); err != nil {
		return nil, false, err
	}

	occupants, ok := r.rooms[room]
	if !ok {
		occupants = make(map[domain.MemberID]*memberEntry)
		r.rooms[room] = occupants
	}
	if _, present := occupants[id]; present {
		return r.snapshotLocked(room), true, nil
	}

	r.seq++
	e.seq = r.seq
	e.room = room
	occupants[id] = e
	log.Info().Str("module", "core.registry").Str("sid", string(id)).Str("room", string(room)).Msg("member joined room")
	return r.snapshotLocked(room), false, nil
}

// Leave removes the member from whatever room it belongs to and returns the
// remaining membership. No-op (ok=false) when the member is not in a room;
// disconnect may race with cleanup. Empty rooms are dropped immediately so
// a later join starts from a fresh Waiting-state room.
func (r *RoomRegistry) Leave(id domain.MemberID) (room domain.RoomKey, remaining []domain.Member, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, found := r.members[id]
	if !found || e.room == "" {
		return "", nil, false
	}
	room = e.room
	e.room = ""
	delete(r.rooms[room], id)
	if len(r.rooms[room]) == 0 {
		delete(r.rooms, room)
	}
	log.Info().Str("module", "core.registry").Str("sid", string(id)).Str("room", string(room)).Msg("member left room")
	return room, r.snapshotLocked(room), true
}

// Unregister drops the identity entirely. Call after Leave on disconnect.
func (r *RoomRegistry) Unregister(id domain.MemberID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, id)
}

// MembersOf is a read-only snapshot in stable join order.
func (r *RoomRegistry) MembersOf(room domain.RoomKey) []domain.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked(room)
}

// SessionsOf returns the sessions to fan a broadcast out to.
func (r *RoomRegistry) SessionsOf(room domain.RoomKey) []MemberSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	occupants := r.rooms[room]
	out := make([]MemberSession, 0, len(occupants))
	for _, e := range occupants {
		if e.sess != nil {
			out = append(out, e.sess)
		}
	}
	return out
}

func (r *RoomRegistry) SessionOf(id domain.MemberID) (MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.members[id]; ok && e.sess != nil {
		return e.sess, true
	}
	return nil, false
}

func (r *RoomRegistry) RoomOf(id domain.MemberID) (domain.RoomKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.members[id]
	if !ok || e.room == "" {
		return "", false
	}
	return e.room, true
}

// Cancel fires the cancel func bound at Register time, interrupting any
// in-flight work tied to that identity. Used to shed slow consumers.
func (r *RoomRegistry) Cancel(id domain.MemberID) bool {
	r.mu.RLock()
	e, ok := r.members[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.cancel != nil {
		e.cancel()
	}
	log.Info().Str("module", "core.registry").Str("sid", string(id)).Msg("canceled session")
	return true
}

// RoomExists reports whether the room currently has members.
func (r *RoomRegistry) RoomExists(room domain.RoomKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room]
	return ok
}

// RoomCount reports how many rooms are currently live.
func (r *RoomRegistry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *RoomRegistry) snapshotLocked(room domain.RoomKey) []domain.Member {
	occupants := r.rooms[room]
	entries := make([]*memberEntry, 0, len(occupants))
	for _, e := range occupants {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]domain.Member, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e.member)
	}
	return out
}
