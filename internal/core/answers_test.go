package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chancia/quizlive/internal/core"
)

func TestAnswerLog_MarkOncePerQuestion(t *testing.T) {
	a := core.NewAnswerLog()

	assert.True(t, a.Mark("R1", "m1", 7))
	assert.False(t, a.Mark("R1", "m1", 7), "second mark for the same pair")
	assert.True(t, a.Mark("R1", "m1", 8), "different question")
	assert.True(t, a.Mark("R1", "m2", 7), "different member")
	assert.True(t, a.Mark("R2", "m1", 7), "different room")
}

func TestAnswerLog_ForgetMember(t *testing.T) {
	a := core.NewAnswerLog()
	a.Mark("R1", "m1", 7)
	a.Mark("R1", "m2", 7)

	a.ForgetMember("R1", "m1")

	assert.True(t, a.Mark("R1", "m1", 7))
	assert.False(t, a.Mark("R1", "m2", 7), "other members keep their marks")
}

func TestAnswerLog_ResetRoom(t *testing.T) {
	a := core.NewAnswerLog()
	a.Mark("R1", "m1", 7)
	a.Mark("R2", "m1", 7)

	a.ResetRoom("R1")

	assert.True(t, a.Mark("R1", "m1", 7), "reset room starts over")
	assert.False(t, a.Mark("R2", "m1", 7), "other rooms unaffected")
}
