package domain

// RoomKey identifies one quiz room. Caller-supplied, case-sensitive.
type RoomKey string

const MaxRoomKeyLen = 36

// GameState is the per-room lifecycle state.
type GameState string

const (
	StateWaiting    GameState = "waiting"
	StateInProgress GameState = "in_progress"
	StateFinished   GameState = "finished"
)
