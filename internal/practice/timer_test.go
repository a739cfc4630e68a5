package practice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimerTick(t *testing.T) {
	timer := NewPracticeTimer()
	timer.BeginQuestion()
	for i := 0; i < 5; i++ {
		timer.tick()
	}
	assert.Equal(t, 5, timer.ElapsedSecond())
	assert.Equal(t, 5, timer.ThinkingSecond())
}

func TestTimerThinkingStopsOnAnswerStart(t *testing.T) {
	timer := NewPracticeTimer()
	timer.BeginQuestion()
	timer.tick()
	timer.tick()
	timer.MarkAnswerStarted()
	timer.tick()
	timer.tick()
	timer.tick()
	assert.Equal(t, 5, timer.ElapsedSecond())
	// 作答开始后思考用时定格。
	assert.Equal(t, 2, timer.ThinkingSecond())
}

func TestTimerPauseFreezesBothCounters(t *testing.T) {
	timer := NewPracticeTimer()
	timer.BeginQuestion()
	timer.tick()
	timer.Pause()
	timer.tick()
	timer.tick()
	assert.Equal(t, 1, timer.ElapsedSecond())
	assert.Equal(t, 1, timer.ThinkingSecond())
	timer.Resume()
	timer.tick()
	assert.Equal(t, 2, timer.ElapsedSecond())
	assert.Equal(t, 2, timer.ThinkingSecond())
}

func TestTimerResumeDoesNotReaccumulateThinking(t *testing.T) {
	timer := NewPracticeTimer()
	timer.BeginQuestion()
	timer.tick()
	timer.MarkAnswerStarted()
	timer.Pause()
	timer.Resume()
	timer.tick()
	timer.tick()
	assert.Equal(t, 1, timer.ThinkingSecond())
	assert.Equal(t, 3, timer.ElapsedSecond())
}

func TestTimerBeginQuestionResetsThinking(t *testing.T) {
	timer := NewPracticeTimer()
	timer.BeginQuestion()
	timer.tick()
	timer.tick()
	timer.MarkAnswerStarted()
	timer.BeginQuestion()
	timer.tick()
	assert.Equal(t, 1, timer.ThinkingSecond())
	assert.Equal(t, 3, timer.ElapsedSecond())
}

func TestTimerStopIsIdempotent(t *testing.T) {
	timer := NewPracticeTimer()
	timer.Start()
	timer.Stop()
	timer.Stop()
	timer.tick()
	assert.Equal(t, 0, timer.ElapsedSecond())
}
