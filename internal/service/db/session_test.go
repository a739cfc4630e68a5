package db

import (
	"testing"

	"github.com/solutions/mock-cube/internal/protodef/model"
	"github.com/stretchr/testify/assert"
)

func transitionAllowed(from, to model.SessionStatusCode) bool {
	for _, allowed := range statusTransitions[to] {
		if from == allowed {
			return true
		}
	}
	return false
}

func TestSessionStatusTransitions(t *testing.T) {
	assert.True(t, transitionAllowed(model.SessionStatusCodeScheduled, model.SessionStatusCodeInProgress))
	assert.True(t, transitionAllowed(model.SessionStatusCodeInProgress, model.SessionStatusCodePaused))
	assert.True(t, transitionAllowed(model.SessionStatusCodePaused, model.SessionStatusCodeInProgress))
	assert.True(t, transitionAllowed(model.SessionStatusCodeInProgress, model.SessionStatusCodeCompleting))
	assert.True(t, transitionAllowed(model.SessionStatusCodeCompleting, model.SessionStatusCodeCompleted))
	assert.True(t, transitionAllowed(model.SessionStatusCodeScheduled, model.SessionStatusCodeCancelled))
	assert.True(t, transitionAllowed(model.SessionStatusCodePaused, model.SessionStatusCodeCancelled))
}

func TestSessionStatusTerminalStates(t *testing.T) {
	terminals := []model.SessionStatusCode{
		model.SessionStatusCodeCompleted,
		model.SessionStatusCodeCancelled,
	}
	targets := []model.SessionStatusCode{
		model.SessionStatusCodeInProgress,
		model.SessionStatusCodePaused,
		model.SessionStatusCodeCompleting,
		model.SessionStatusCodeCompleted,
		model.SessionStatusCodeCancelled,
	}
	// 完成与取消是终态，任何流转都不允许。
	for _, from := range terminals {
		for _, to := range targets {
			assert.False(t, transitionAllowed(from, to), "from %v to %v", from, to)
		}
	}
}

func TestSessionStatusInvalidTransitions(t *testing.T) {
	assert.False(t, transitionAllowed(model.SessionStatusCodeScheduled, model.SessionStatusCodePaused))
	assert.False(t, transitionAllowed(model.SessionStatusCodeScheduled, model.SessionStatusCodeCompleting))
	assert.False(t, transitionAllowed(model.SessionStatusCodeScheduled, model.SessionStatusCodeCompleted))
	assert.False(t, transitionAllowed(model.SessionStatusCodeCompleting, model.SessionStatusCodeInProgress))
	assert.False(t, transitionAllowed(model.SessionStatusCodeCompleting, model.SessionStatusCodePaused))
}
