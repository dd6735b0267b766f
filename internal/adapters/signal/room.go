package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/chancia/quizlive/internal/domain"
)

func (ctl *QuizWSController) handleJoin(
	ctx context.Context,
	sid domain.MemberID,
	conn *WsSignalConn,
	data []byte,
) {
	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Name string `json:"name"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return
	}
	if p.Room == "" {
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "empty room",
		})
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("join")
	ctl.Gw.OnJoinRoom(ctx, sid, domain.RoomKey(p.Room), p.Name)
}

// handleLeave leaves the current room without dropping the connection.
func (ctl *QuizWSController) handleLeave(
	ctx context.Context,
	sid domain.MemberID,
	conn *WsSignalConn,
) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	ctl.Gw.OnLeaveRoom(ctx, sid)
	ctl.sendJSON(conn, map[string]any{
		"type": "left",
	})
}
