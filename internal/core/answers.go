package core

import (
	"sync"

	"github.com/chancia/quizlive/internal/domain"
)

type answerKey struct {
	member   domain.MemberID
	question int64
}

// AnswerLog remembers which (member, question) pairs already scored in the
// current game, so the gateway can cap scoring at one answer per question
// when configured to. Cleared on game start and reset.
type AnswerLog struct {
	mu    sync.Mutex
	rooms map[domain.RoomKey]map[answerKey]struct{}
}

func NewAnswerLog() *AnswerLog {
	return &AnswerLog{rooms: make(map[domain.RoomKey]map[answerKey]struct{})}
}

// Mark records the pair and reports whether this was its first occurrence.
func (a *AnswerLog) Mark(room domain.RoomKey, id domain.MemberID, question int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	marks, ok := a.rooms[room]
	if !ok {
		marks = make(map[answerKey]struct{})
		a.rooms[room] = marks
	}
	k := answerKey{member: id, question: question}
	if _, seen := marks[k]; seen {
		return false
	}
	marks[k] = struct{}{}
	return true
}

// ForgetMember drops a member's marks when it leaves mid-game.
func (a *AnswerLog) ForgetMember(room domain.RoomKey, id domain.MemberID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for k := range a.rooms[room] {
		if k.member == id {
			delete(a.rooms[room], k)
		}
	}
}

// ResetRoom clears all marks for a new game in the same room.
func (a *AnswerLog) ResetRoom(room domain.RoomKey) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.rooms, room)
}

// DropRoom is ResetRoom for a disposed room; kept separate so call sites
// say what they mean.
func (a *AnswerLog) DropRoom(room domain.RoomKey) {
	a.ResetRoom(room)
}
