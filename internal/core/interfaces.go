package core

import (
	"context"

	"github.com/chancia/quizlive/internal/domain"
)

// Frame is a marshaled outbound payload.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds domain.Member and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
}

// ScoreBoard owns per-room, per-member counters. An entry exists iff the
// member is currently registered in that room; Increment on an absent
// entry is domain.ErrUnknownMember and callers treat it as a harmless race.
type ScoreBoard interface {
	Initialize(ctx context.Context, room domain.RoomKey, id domain.MemberID) error
	Increment(ctx context.Context, room domain.RoomKey, id domain.MemberID) (int, error)
	Remove(ctx context.Context, room domain.RoomKey, id domain.MemberID) error
	Snapshot(ctx context.Context, room domain.RoomKey) (map[domain.MemberID]int, error)
	ResetAll(ctx context.Context, room domain.RoomKey) error
	DropRoom(ctx context.Context, room domain.RoomKey) error
}

// Question is the read-only view handed to clients; the correct answer
// never leaves the oracle.
type Question struct {
	ID      int64    `json:"id"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
}

// QuestionOracle supplies question sets and authoritative answer lookups.
// Backed by storage outside this core; calls may fail and must be bounded
// by the caller's context.
type QuestionOracle interface {
	CorrectAnswer(ctx context.Context, questionID int64) (int, error)
	Questions(ctx context.Context, limit int) ([]Question, error)
}

// ScorePersister records final results. Fire-and-forget from the core's
// perspective: failures are logged, never block gameplay.
type ScorePersister interface {
	Record(ctx context.Context, id domain.MemberID, room domain.RoomKey, score int) error
}
