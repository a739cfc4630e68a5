package db

import (
	"testing"

	model "github.com/solutions/mock-cube/internal/protodef/model"

	"github.com/stretchr/testify/assert"
)

func TestComputeAnalyticsEmpty(t *testing.T) {
	result := ComputeAnalytics("s1", nil, nil)
	assert.Equal(t, "s1", result.SessionId)
	assert.Equal(t, 0, result.ResponseCount)
	assert.Equal(t, 0, result.ScoredCount)
	assert.Equal(t, float64(0), result.TotalScore)
}

func TestComputeAnalytics(t *testing.T) {
	questions := map[string]model.QuestionDo{
		"q1": {Id: "q1", Category: "algorithms"},
		"q2": {Id: "q2", Category: "algorithms"},
		"q3": {Id: "q3", Category: "system-design"},
	}
	responses := []model.ResponseDo{
		{Id: "r1", QuestionId: "q1", Score: 80, Status: model.ResponseStatusScored, DurationSecond: 100, ThinkingSecond: 10},
		{Id: "r2", QuestionId: "q2", Score: 60, Status: model.ResponseStatusScored, DurationSecond: 200, ThinkingSecond: 30},
		{Id: "r3", QuestionId: "q3", Score: 90, Status: model.ResponseStatusScored, DurationSecond: 60, ThinkingSecond: 20},
		// 未评分的回答不计入分数，但计入用时。
		{Id: "r4", QuestionId: "q3", Status: model.ResponseStatusPending, DurationSecond: 40, ThinkingSecond: 20},
	}
	result := ComputeAnalytics("s1", responses, questions)
	assert.Equal(t, 4, result.ResponseCount)
	assert.Equal(t, 3, result.ScoredCount)
	assert.InDelta(t, (80.0+60.0+90.0)/3.0, result.TotalScore, 1e-9)
	assert.InDelta(t, 100.0, result.AvgDuration, 1e-9)
	assert.InDelta(t, 20.0, result.AvgThinking, 1e-9)

	byCategory := map[string]model.CategoryScoreResponse{}
	for _, cs := range result.CategoryScores {
		byCategory[cs.Category] = cs
	}
	assert.Len(t, byCategory, 2)
	assert.InDelta(t, 70.0, byCategory["algorithms"].Score, 1e-9)
	assert.Equal(t, 2, byCategory["algorithms"].Count)
	assert.InDelta(t, 90.0, byCategory["system-design"].Score, 1e-9)
	assert.Equal(t, 1, byCategory["system-design"].Count)
}

func TestComputeAnalyticsUnknownQuestion(t *testing.T) {
	responses := []model.ResponseDo{
		{Id: "r1", QuestionId: "gone", Score: 50, Status: model.ResponseStatusScored},
	}
	result := ComputeAnalytics("s1", responses, map[string]model.QuestionDo{})
	assert.Equal(t, 1, result.ScoredCount)
	assert.InDelta(t, 50.0, result.TotalScore, 1e-9)
	// 找不到题目的回答不产生分类条目。
	assert.Empty(t, result.CategoryScores)
}
