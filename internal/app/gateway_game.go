package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/chancia/quizlive/internal/domain"
)

// OnStartGame moves the room to InProgress and zeroes every score. A start
// on a room that is not Waiting is rejected to the requester only; this is
// the at-most-once-start guard, and in particular a lost double-start race
// never resets scores twice.
func (g *Gateway) OnStartGame(ctx context.Context, room domain.RoomKey, requester domain.MemberID) {
	if !g.guard(requester, room) {
		return
	}

	mu := g.locks.get(room)
	mu.Lock()
	if err := g.Lifecycle.Start(room); err != nil {
		mu.Unlock()
		g.sendTo(requester, errorEvent{Type: "error", Error: "game already started"})
		return
	}
	if err := g.Scores.ResetAll(ctx, room); err != nil {
		log.Warn().Err(err).Str("module", "app.gateway").Str("room", string(room)).Msg("score reset failed")
	}
	g.Answers.ResetRoom(room)
	dropped := g.broadcast(room, gameStartedEvent{Type: "game_started", Room: room})
	mu.Unlock()
	g.shedSlow(room, dropped)
}

// OnAnswer scores one submission. The oracle lookup runs outside the room
// lock under a bounded timeout, so a slow oracle delays only this request.
// A correct answer increments the member's counter and broadcasts the full
// named snapshot; the requester always gets a private feedback message.
// Oracle failures degrade to a soft error, never touching room state.
func (g *Gateway) OnAnswer(ctx context.Context, id domain.MemberID, room domain.RoomKey, questionID int64, answerIndex int) {
	if !g.inRoom(id, room) || !g.Lifecycle.CanAcceptAnswer(room) {
		g.sendTo(id, answerFeedbackEvent{Type: "answer_feedback", QuestionID: questionID, Message: "answers are not being accepted"})
		return
	}
	if g.Oracle == nil {
		g.sendTo(id, answerFeedbackEvent{Type: "answer_feedback", QuestionID: questionID, Message: "scoring unavailable"})
		return
	}

	octx, cancel := context.WithTimeout(ctx, g.OracleTimeout)
	correct, err := g.Oracle.CorrectAnswer(octx, questionID)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			g.sendTo(id, answerFeedbackEvent{Type: "answer_feedback", QuestionID: questionID, Message: "unknown question"})
			return
		}
		log.Error().Err(err).Str("module", "app.gateway").Int64("question", questionID).Msg("oracle lookup failed")
		g.sendTo(id, answerFeedbackEvent{Type: "answer_feedback", QuestionID: questionID, Message: "scoring unavailable"})
		return
	}

	if answerIndex != correct {
		g.sendTo(id, answerFeedbackEvent{Type: "answer_feedback", QuestionID: questionID, Message: "wrong answer"})
		return
	}

	mu := g.locks.get(room)
	mu.Lock()
	// The member may have disconnected or the game may have ended while the
	// oracle call was in flight; discard the result in that case.
	if !g.inRoom(id, room) || !g.Lifecycle.CanAcceptAnswer(room) {
		mu.Unlock()
		return
	}
	if g.SingleAnswer && !g.Answers.Mark(room, id, questionID) {
		mu.Unlock()
		g.sendTo(id, answerFeedbackEvent{Type: "answer_feedback", QuestionID: questionID, Correct: true, Message: "already scored this question"})
		return
	}
	if _, err := g.Scores.Increment(ctx, room, id); err != nil {
		// Entry gone: the member left between checks. Harmless race.
		mu.Unlock()
		log.Debug().Err(err).Str("module", "app.gateway").Str("sid", string(id)).Msg("increment on absent entry")
		return
	}
	dropped := g.broadcastScores(ctx, room, "score_update")
	mu.Unlock()
	g.shedSlow(room, dropped)

	g.sendTo(id, answerFeedbackEvent{Type: "answer_feedback", QuestionID: questionID, Correct: true, Scored: true, Message: "correct answer"})
}

// OnFinishGame ends the game, broadcasts the final snapshot once and hands
// each member's result to the persistence worker. Finishing an already
// finished room is a no-op, so the broadcast and the persist happen at
// most once per game.
func (g *Gateway) OnFinishGame(ctx context.Context, room domain.RoomKey, requester domain.MemberID) {
	if !g.guard(requester, room) {
		return
	}

	mu := g.locks.get(room)
	mu.Lock()
	changed, err := g.Lifecycle.Finish(room)
	if err != nil {
		mu.Unlock()
		g.sendTo(requester, errorEvent{Type: "error", Error: "no game in progress"})
		return
	}
	if !changed {
		mu.Unlock()
		return
	}
	snap, err := g.Scores.Snapshot(ctx, room)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.gateway").Str("room", string(room)).Msg("final snapshot failed")
	}
	dropped := g.broadcast(room, gameFinishedEvent{Type: "game_finished", Room: room, Scores: g.named(room, snap)})
	mu.Unlock()
	g.shedSlow(room, dropped)

	for id, score := range snap {
		g.Persist.Enqueue(Record{Member: id, Room: room, Score: score})
	}
}

// OnResetGame is the explicit Finished -> Waiting transition so a room can
// host another game. Scores and answer marks start over.
func (g *Gateway) OnResetGame(ctx context.Context, room domain.RoomKey, requester domain.MemberID) {
	if !g.guard(requester, room) {
		return
	}

	mu := g.locks.get(room)
	mu.Lock()
	if err := g.Lifecycle.Reset(room); err != nil {
		mu.Unlock()
		g.sendTo(requester, errorEvent{Type: "error", Error: "game is not finished"})
		return
	}
	if err := g.Scores.ResetAll(ctx, room); err != nil {
		log.Warn().Err(err).Str("module", "app.gateway").Str("room", string(room)).Msg("score reset failed")
	}
	g.Answers.ResetRoom(room)
	dropped := g.broadcast(room, gameResetEvent{Type: "game_reset", Room: room})
	mu.Unlock()
	g.shedSlow(room, dropped)
}

// broadcastScores fans out the current snapshot with display names
// resolved from the registry. Callers hold the room lock.
func (g *Gateway) broadcastScores(ctx context.Context, room domain.RoomKey, eventType string) []domain.MemberID {
	snap, err := g.Scores.Snapshot(ctx, room)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.gateway").Str("room", string(room)).Msg("score snapshot failed")
		return nil
	}
	return g.broadcast(room, scoreUpdateEvent{Type: eventType, Room: room, Scores: g.named(room, snap)})
}

func (g *Gateway) named(room domain.RoomKey, snap map[domain.MemberID]int) map[domain.MemberID]scoreEntry {
	names := make(map[domain.MemberID]string)
	for _, m := range g.Registry.MembersOf(room) {
		names[m.ID] = m.Name
	}
	out := make(map[domain.MemberID]scoreEntry, len(snap))
	for id, score := range snap {
		name, ok := names[id]
		if !ok {
			name = "guest"
		}
		out[id] = scoreEntry{Name: name, Score: score}
	}
	return out
}
