package app

import (
	"github.com/chancia/quizlive/internal/core"
	"github.com/chancia/quizlive/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

// Policy decides what happens to a member whose send buffer overflowed
// during a room broadcast.
type Policy interface {
	OnBackPressure(room domain.RoomKey, member core.MemberSession) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(room domain.RoomKey, member core.MemberSession) BackpressureAction {
	return KickMember
}
