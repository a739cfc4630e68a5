package db

import (
	model "github.com/solutions/mock-cube/internal/protodef/model"

	"github.com/qiniu/x/xlog"
)

// AnalyticsService 会话分析与反馈聚合。基于回答与题库数据计算，不落库。
type AnalyticsService struct {
	response *ResponseService
	question *QuestionService
	xl       *xlog.Logger
}

func NewAnalyticsService(response *ResponseService, question *QuestionService, xl *xlog.Logger) *AnalyticsService {
	if xl == nil {
		xl = xlog.New("mock-cube-analytics")
	}
	return &AnalyticsService{
		response: response,
		question: question,
		xl:       xl,
	}
}

// ComputeAnalytics 对一组回答计算总分、平均用时与按分类的得分。
// questions 以题目ID为key，用于把回答关联到分类。
func ComputeAnalytics(sessionID string, responses []model.ResponseDo, questions map[string]model.QuestionDo) model.AnalyticsResponse {
	result := model.AnalyticsResponse{
		SessionId:     sessionID,
		ResponseCount: len(responses),
	}
	if len(responses) == 0 {
		return result
	}
	var scoreSum, durationSum, thinkingSum float64
	type catAgg struct {
		sum   float64
		count int
	}
	categories := map[string]*catAgg{}
	for _, r := range responses {
		durationSum += float64(r.DurationSecond)
		thinkingSum += float64(r.ThinkingSecond)
		if r.Status != model.ResponseStatusScored {
			continue
		}
		result.ScoredCount++
		scoreSum += r.Score
		question, ok := questions[r.QuestionId]
		if !ok {
			continue
		}
		agg, ok := categories[question.Category]
		if !ok {
			agg = &catAgg{}
			categories[question.Category] = agg
		}
		agg.sum += r.Score
		agg.count++
	}
	if result.ScoredCount > 0 {
		result.TotalScore = scoreSum / float64(result.ScoredCount)
	}
	result.AvgDuration = durationSum / float64(len(responses))
	result.AvgThinking = thinkingSum / float64(len(responses))
	for category, agg := range categories {
		result.CategoryScores = append(result.CategoryScores, model.CategoryScoreResponse{
			Category: category,
			Score:    agg.sum / float64(agg.count),
			Count:    agg.count,
		})
	}
	return result
}

// SessionAnalytics 计算一个会话的分析结果。
func (c *AnalyticsService) SessionAnalytics(xl *xlog.Logger, sessionID string) (*model.AnalyticsResponse, error) {
	if xl == nil {
		xl = c.xl
	}
	responses, err := c.response.ListResponsesBySession(xl, sessionID)
	if err != nil {
		return nil, err
	}
	questions, err := c.loadQuestions(xl, responses)
	if err != nil {
		return nil, err
	}
	result := ComputeAnalytics(sessionID, responses, questions)
	return &result, nil
}

// SessionFeedback 汇总一个会话的逐题反馈。
func (c *AnalyticsService) SessionFeedback(xl *xlog.Logger, session *model.SessionDo) (*model.FeedbackResponse, error) {
	if xl == nil {
		xl = c.xl
	}
	responses, err := c.response.ListResponsesBySession(xl, session.ID)
	if err != nil {
		return nil, err
	}
	questions, err := c.loadQuestions(xl, responses)
	if err != nil {
		return nil, err
	}
	result := &model.FeedbackResponse{
		SessionId: session.ID,
		Ready:     session.FeedbackReady,
	}
	for _, r := range responses {
		item := model.FeedbackItemResponse{
			QuestionIndex:  r.QuestionIndex,
			Score:          r.Score,
			CriteriaScores: r.CriteriaScores,
			Feedback:       r.Feedback,
			MediaURL:       r.MediaURL,
		}
		if question, ok := questions[r.QuestionId]; ok {
			item.QuestionText = question.Text
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func (c *AnalyticsService) loadQuestions(xl *xlog.Logger, responses []model.ResponseDo) (map[string]model.QuestionDo, error) {
	questions := map[string]model.QuestionDo{}
	for _, r := range responses {
		if _, ok := questions[r.QuestionId]; ok {
			continue
		}
		question, err := c.question.GetQuestionByID(xl, r.QuestionId)
		if err != nil {
			// 题目被删除不影响分析结果。
			xl.Infof("question %s of response %s not found, skip", r.QuestionId, r.Id)
			continue
		}
		questions[r.QuestionId] = *question
	}
	return questions, nil
}
