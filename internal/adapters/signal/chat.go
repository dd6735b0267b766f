package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/chancia/quizlive/internal/domain"
)

func (ctl *QuizWSController) handleChat(
	ctx context.Context,
	sid domain.MemberID,
	conn *WsSignalConn,
	data []byte,
) {
	type chatPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Text string `json:"text"`
	}
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return
	}
	if !ctl.Limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("chat rate limited")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "rate_limited",
		})
		return
	}
	ctl.Gw.OnChat(ctx, sid, domain.RoomKey(p.Room), p.Text)
}
