package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chancia/quizlive/internal/domain"
)

// OnJoinRoom adds the member to the room, creating it on first use. An
// identity can be in one room at a time: joining a second room leaves the
// first one explicitly, with the usual membership broadcasts there.
// Duplicate joins with the same identity update the display name and never
// re-initialize an existing score. Joins are accepted while the room is
// waiting or a game is running; a finished room rejects joins until it is
// reset or disposed.
func (g *Gateway) OnJoinRoom(ctx context.Context, id domain.MemberID, room domain.RoomKey, name string) {
	if room == "" || len(room) > domain.MaxRoomKeyLen {
		g.sendTo(id, errorEvent{Type: "error", Error: "invalid room key"})
		return
	}
	// Re-checked under the room lock below; rejecting here first keeps a
	// failed move from leaving the current room.
	if g.Lifecycle.StateOf(room) == domain.StateFinished {
		g.sendTo(id, errorEvent{Type: "error", Error: "game already finished"})
		return
	}
	if cur, ok := g.Registry.RoomOf(id); ok && cur != room {
		g.leaveRoom(ctx, id)
	}

	mu := g.locks.get(room)
	mu.Lock()
	if g.Lifecycle.StateOf(room) == domain.StateFinished {
		mu.Unlock()
		g.sendTo(id, errorEvent{Type: "error", Error: "game already finished"})
		return
	}
	members, rejoined, err := g.Registry.Join(room, id, name)
	if err != nil {
		mu.Unlock()
		log.Warn().Err(err).Str("module", "app.gateway").Str("sid", string(id)).Str("room", string(room)).Msg("join rejected")
		g.sendTo(id, errorEvent{Type: "error", Error: "invalid join request"})
		return
	}
	if !rejoined {
		if err := g.Scores.Initialize(ctx, room, id); err != nil {
			log.Warn().Err(err).Str("module", "app.gateway").Str("room", string(room)).Msg("score init failed")
		}
	}
	dropped := g.broadcast(room, membersEvent{Type: "room_members", Room: room, Members: members, Count: len(members)})
	if !rejoined {
		dropped = append(dropped, g.broadcast(room, noticeEvent{Type: "notice", Room: room, Text: name + " joined the room"})...)
	}
	mu.Unlock()
	g.shedSlow(room, dropped)
}

// OnChat broadcasts the message with sender name and a server-assigned
// timestamp. No state mutation; the room lock is still taken so chat lines
// interleave consistently with membership and score broadcasts.
func (g *Gateway) OnChat(ctx context.Context, id domain.MemberID, room domain.RoomKey, text string) {
	if !g.guard(id, room) {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	ev := chatEvent{
		Type:      "chat_message",
		Room:      room,
		From:      g.memberName(id),
		Text:      text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	mu := g.locks.get(room)
	mu.Lock()
	dropped := g.broadcast(room, ev)
	mu.Unlock()
	g.shedSlow(room, dropped)
}
