package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/chancia/quizlive/internal/domain"
)

type roomPayload struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

func (ctl *QuizWSController) roomFrom(conn *WsSignalConn, data []byte) (domain.RoomKey, bool) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return "", false
	}
	return domain.RoomKey(p.Room), true
}

func (ctl *QuizWSController) handleStart(
	ctx context.Context,
	sid domain.MemberID,
	conn *WsSignalConn,
	data []byte,
) {
	room, ok := ctl.roomFrom(conn, data)
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(room)).Msg("start game")
	ctl.Gw.OnStartGame(ctx, room, sid)
}

func (ctl *QuizWSController) handleAnswer(
	ctx context.Context,
	sid domain.MemberID,
	conn *WsSignalConn,
	data []byte,
) {
	type answerPayload struct {
		Type       string `json:"type"`
		Room       string `json:"room"`
		QuestionID int64  `json:"question_id"`
		Answer     int    `json:"answer"`
	}
	var p answerPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return
	}
	ctl.Gw.OnAnswer(ctx, sid, domain.RoomKey(p.Room), p.QuestionID, p.Answer)
}

func (ctl *QuizWSController) handleFinish(
	ctx context.Context,
	sid domain.MemberID,
	conn *WsSignalConn,
	data []byte,
) {
	room, ok := ctl.roomFrom(conn, data)
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(room)).Msg("finish game")
	ctl.Gw.OnFinishGame(ctx, room, sid)
}

func (ctl *QuizWSController) handleReset(
	ctx context.Context,
	sid domain.MemberID,
	conn *WsSignalConn,
	data []byte,
) {
	room, ok := ctl.roomFrom(conn, data)
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(room)).Msg("reset game")
	ctl.Gw.OnResetGame(ctx, room, sid)
}
