package domain

import "errors"

// Nothing below is fatal: every one of these is handled at the gateway
// boundary and isolated to the triggering request.
var (
	// ErrUnknownMember is a ScoreBoard op on an entry that does not exist.
	// Usually a disconnect racing the op; callers ignore it.
	ErrUnknownMember = errors.New("unknown member")

	// ErrInvalidTransition is a lifecycle misuse (double start, reset of a
	// running game). The triggering request is rejected.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrRoomNotFound references a room with no members.
	ErrRoomNotFound = errors.New("room not found")

	// ErrQuestionNotFound is returned by the oracle for an unknown question id.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrCollaboratorUnavailable wraps oracle/persister transport failures.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)
