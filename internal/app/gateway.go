package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chancia/quizlive/internal/core"
	"github.com/chancia/quizlive/internal/domain"
)

// Gateway is the transport-facing coordinator. It holds no game state of
// its own: RoomRegistry owns membership, ScoreBoard the counters,
// RoomLifecycle the state machine. Every inbound event maps to one method.
//
// All mutating operations against one room run under that room's lock, so
// broadcasts enqueue in a single order per room and every member observes
// the same relative order of events. Unrelated rooms never contend.
type Gateway struct {
	Registry  *core.RoomRegistry
	Scores    core.ScoreBoard
	Lifecycle *core.RoomLifecycle
	Answers   *core.AnswerLog

	Oracle  core.QuestionOracle
	Persist *Persister
	Policy  Policy

	// SingleAnswer caps scoring at one answer per (member, question) per
	// game. Off by default to keep the historical repeat-scoring behavior.
	SingleAnswer bool
	// OracleTimeout bounds the answer lookup so a slow oracle cannot stall
	// a room.
	OracleTimeout time.Duration

	locks roomLocks
}

func NewGateway(reg *core.RoomRegistry, scores core.ScoreBoard, lifecycle *core.RoomLifecycle, answers *core.AnswerLog) *Gateway {
	return &Gateway{
		Registry:      reg,
		Scores:        scores,
		Lifecycle:     lifecycle,
		Answers:       answers,
		Policy:        SimplePolicy{},
		OracleTimeout: 3 * time.Second,
	}
}

// OnConnect registers the transport-level identity. No room side effects.
func (g *Gateway) OnConnect(id domain.MemberID, conn core.SignalConnection, cancel context.CancelFunc) {
	g.Registry.Register(id, conn, cancel)
}

// OnDisconnect removes the member from its room (if any), broadcasts the
// updated membership and drops the identity. Safe to call for identities
// that never joined anything.
func (g *Gateway) OnDisconnect(ctx context.Context, id domain.MemberID) {
	g.leaveRoom(ctx, id)
	g.Registry.Unregister(id)
}

// OnLeaveRoom leaves the current room but keeps the connection registered.
func (g *Gateway) OnLeaveRoom(ctx context.Context, id domain.MemberID) {
	g.leaveRoom(ctx, id)
}

func (g *Gateway) leaveRoom(ctx context.Context, id domain.MemberID) {
	room, ok := g.Registry.RoomOf(id)
	if !ok {
		return
	}
	name := g.memberName(id)

	mu := g.locks.get(room)
	mu.Lock()
	room, remaining, ok := g.Registry.Leave(id)
	if !ok {
		mu.Unlock()
		return
	}
	if err := g.Scores.Remove(ctx, room, id); err != nil {
		log.Warn().Err(err).Str("module", "app.gateway").Str("room", string(room)).Msg("score remove failed")
	}
	g.Answers.ForgetMember(room, id)

	var dropped []domain.MemberID
	if len(remaining) > 0 {
		dropped = g.broadcast(room, membersEvent{Type: "room_members", Room: room, Members: remaining, Count: len(remaining)})
		dropped = append(dropped, g.broadcast(room, noticeEvent{Type: "notice", Room: room, Text: name + " left the room"})...)
	} else {
		// Last member out: dispose the room so a reused key starts fresh.
		g.Lifecycle.Forget(room)
		if err := g.Scores.DropRoom(ctx, room); err != nil {
			log.Warn().Err(err).Str("module", "app.gateway").Str("room", string(room)).Msg("score drop failed")
		}
		g.Answers.DropRoom(room)
	}
	mu.Unlock()

	if len(remaining) == 0 {
		g.locks.drop(room)
		log.Info().Str("module", "app.gateway").Str("room", string(room)).Msg("room disposed")
	}
	g.shedSlow(room, dropped)
}

// broadcast marshals once and fans out to every session in the room.
// Callers hold the room lock; the per-connection send queues preserve the
// enqueue order. Returns the identities whose queues overflowed.
func (g *Gateway) broadcast(room domain.RoomKey, v any) []domain.MemberID {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Msg("broadcast marshal")
		return nil
	}
	var dropped []domain.MemberID
	sent := 0
	for _, sess := range g.Registry.SessionsOf(room) {
		if err := sess.Signal().TrySend(core.Frame(b)); err != nil {
			dropped = append(dropped, sess.Meta().ID)
			continue
		}
		sent++
	}
	log.Debug().Str("module", "app.gateway").Str("room", string(room)).Int("sent_to", sent).Int("dropped", len(dropped)).Msg("broadcast result")
	return dropped
}

// sendTo delivers a requester-only payload.
func (g *Gateway) sendTo(id domain.MemberID, v any) {
	sess, ok := g.Registry.SessionOf(id)
	if !ok {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Msg("sendTo marshal")
		return
	}
	_ = sess.Signal().TrySend(core.Frame(b))
}

// shedSlow applies the backpressure policy to members dropped during a
// broadcast. Runs after the room lock is released: kicking cancels the
// session, and the transport's disconnect path takes the lock itself.
func (g *Gateway) shedSlow(room domain.RoomKey, dropped []domain.MemberID) {
	if g.Policy == nil {
		return
	}
	for _, id := range dropped {
		sess, ok := g.Registry.SessionOf(id)
		if !ok {
			continue
		}
		switch g.Policy.OnBackPressure(room, sess) {
		case KickMember:
			log.Warn().Str("module", "app.gateway").Str("sid", string(id)).Str("room", string(room)).Msg("kicking slow consumer")
			g.Registry.Cancel(id)
		case MarkSlow, DropFrame, NoAction:
		}
	}
}

// inRoom verifies the requester is a member of the room it targets.
func (g *Gateway) inRoom(id domain.MemberID, room domain.RoomKey) bool {
	cur, ok := g.Registry.RoomOf(id)
	return ok && cur == room
}

// guard rejects requests that target a room with no members, or one the
// requester is not in. Returns true when the request may proceed.
func (g *Gateway) guard(id domain.MemberID, room domain.RoomKey) bool {
	if !g.Registry.RoomExists(room) {
		g.sendTo(id, errorEvent{Type: "error", Error: domain.ErrRoomNotFound.Error()})
		return false
	}
	if !g.inRoom(id, room) {
		g.sendTo(id, errorEvent{Type: "error", Error: "not in room"})
		return false
	}
	return true
}

func (g *Gateway) memberName(id domain.MemberID) string {
	if sess, ok := g.Registry.SessionOf(id); ok {
		return sess.Meta().Name
	}
	return "guest"
}

// roomLocks hands out one mutex per live room key. A rejoin racing a
// disposal may briefly see a fresh mutex; registry and scoreboard keep
// their own locks, so state stays consistent either way.
type roomLocks struct {
	mu sync.Mutex
	m  map[domain.RoomKey]*sync.Mutex
}

func (l *roomLocks) get(room domain.RoomKey) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.m == nil {
		l.m = make(map[domain.RoomKey]*sync.Mutex)
	}
	mu, ok := l.m[room]
	if !ok {
		mu = &sync.Mutex{}
		l.m[room] = mu
	}
	return mu
}

func (l *roomLocks) drop(room domain.RoomKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.m, room)
}
