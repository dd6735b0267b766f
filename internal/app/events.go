package app

import "github.com/chancia/quizlive/internal/domain"

// Outbound event payloads. Every frame carries a "type" discriminator the
// client switches on, same envelope shape as inbound events.

type membersEvent struct {
	Type    string          `json:"type"`
	Room    domain.RoomKey  `json:"room"`
	Members []domain.Member `json:"members"`
	Count   int             `json:"count"`
}

type noticeEvent struct {
	Type string         `json:"type"`
	Room domain.RoomKey `json:"room"`
	Text string         `json:"text"`
}

type gameStartedEvent struct {
	Type string         `json:"type"`
	Room domain.RoomKey `json:"room"`
}

type scoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type scoreUpdateEvent struct {
	Type   string                        `json:"type"`
	Room   domain.RoomKey                `json:"room"`
	Scores map[domain.MemberID]scoreEntry `json:"scores"`
}

type answerFeedbackEvent struct {
	Type       string `json:"type"`
	QuestionID int64  `json:"question_id"`
	Correct    bool   `json:"correct"`
	Scored     bool   `json:"scored"`
	Message    string `json:"message"`
}

type chatEvent struct {
	Type      string         `json:"type"`
	Room      domain.RoomKey `json:"room"`
	From      string         `json:"from"`
	Text      string         `json:"text"`
	Timestamp string         `json:"timestamp"`
}

type gameFinishedEvent struct {
	Type   string                        `json:"type"`
	Room   domain.RoomKey                `json:"room"`
	Scores map[domain.MemberID]scoreEntry `json:"scores"`
}

type gameResetEvent struct {
	Type string         `json:"type"`
	Room domain.RoomKey `json:"room"`
}

type errorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
