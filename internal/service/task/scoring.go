package task

import (
	"time"

	"github.com/solutions/mock-cube/internal/common/utils"
	model "github.com/solutions/mock-cube/internal/protodef/model"
	"github.com/solutions/mock-cube/internal/service/cloud"
	db "github.com/solutions/mock-cube/internal/service/db"

	"github.com/qiniu/x/xlog"
)

// ScoringTask 异步评分任务。
// 两步走：先把等待评分的回答逐条送外部评分服务回填分数；
// 再检查评分中的会话，全部回答评完后聚合总分、流转为已完成并下发通知。
type ScoringTask struct {
	conf            utils.Config
	sessionService  *db.SessionService
	questionService *db.QuestionService
	responseService *db.ResponseService
	scorerClient    *cloud.ScorerClient
	notifyService   cloud.NotifyService
	xl              *xlog.Logger
}

func NewScoringTask(conf utils.Config) (*ScoringTask, error) {
	xl := xlog.New("scoring task manager")
	sessionService, err := db.NewSessionService(*conf.Mongo, nil)
	if err != nil {
		return nil, err
	}
	questionService, err := db.NewQuestionService(*conf.Mongo, nil)
	if err != nil {
		return nil, err
	}
	responseService, err := db.NewResponseService(*conf.Mongo, nil)
	if err != nil {
		return nil, err
	}
	notifyService, err := cloud.NewNotifyService(conf.IM)
	if err != nil {
		return nil, err
	}
	return &ScoringTask{
		conf:            conf,
		sessionService:  sessionService,
		questionService: questionService,
		responseService: responseService,
		scorerClient:    cloud.NewScorerClient(conf.Scorer),
		notifyService:   notifyService,
		xl:              xl,
	}, nil
}

// Start 评分同步任务入口。
func (t *ScoringTask) Start() {
	t.xl.Infof("scoring task run at %s", time.Now().String())
	t.scorePendingResponses()
	t.finalizeCompletingSessions()
}

// scorePendingResponses 逐条评分等待中的回答。单条失败只记录日志，下一轮重试。
func (t *ScoringTask) scorePendingResponses() {
	responses, err := t.responseService.ListPendingResponses(t.xl, 10)
	if err != nil {
		t.xl.Errorf("scoring task list pending responses, error: %v", err)
		return
	}
	for _, response := range responses {
		question, err := t.questionService.GetQuestionByID(t.xl, response.QuestionId)
		if err != nil {
			t.xl.Errorf("scoring task get question %s of response %s, error: %v", response.QuestionId, response.Id, err)
			continue
		}
		result, err := t.scorerClient.ScoreResponse(t.xl, question, &response)
		if err != nil {
			t.xl.Errorf("scoring task score response %s, error: %v", response.Id, err)
			continue
		}
		err = t.responseService.FillScore(t.xl, response.Id, result.Score, result.CriteriaScores, result.Feedback)
		if err != nil {
			t.xl.Errorf("scoring task fill score of response %s, error: %v", response.Id, err)
			continue
		}
		t.xl.Infof("response %s scored %.1f", response.Id, result.Score)
	}
}

// finalizeCompletingSessions 聚合评分中会话的总分，完成后通知用户。
func (t *ScoringTask) finalizeCompletingSessions() {
	sessions, err := t.sessionService.ListCompletingSessions(t.xl, 10)
	if err != nil {
		t.xl.Errorf("scoring task list completing sessions, error: %v", err)
		return
	}
	for _, session := range sessions {
		responses, err := t.responseService.ListResponsesBySession(t.xl, session.ID)
		if err != nil {
			t.xl.Errorf("scoring task list responses of session %s, error: %v", session.ID, err)
			continue
		}
		scored := 0
		totalScore := 0.0
		for _, response := range responses {
			if response.Status == model.ResponseStatusScored {
				scored++
				totalScore += response.Score
			}
		}
		if len(responses) == 0 || scored < len(responses) {
			continue
		}
		session.TotalScore = totalScore / float64(scored)
		session.ScoredCount = scored
		session.FeedbackReady = true
		_, err = t.sessionService.UpdateSession(t.xl, session.ID, &session)
		if err != nil {
			t.xl.Errorf("scoring task update session %s, error: %v", session.ID, err)
			continue
		}
		_, err = t.sessionService.TransitSessionStatus(t.xl, session.ID, model.SessionStatusCodeCompleted)
		if err != nil {
			t.xl.Errorf("scoring task complete session %s, error: %v", session.ID, err)
			continue
		}
		t.xl.Infof("session %s completed, total score %.1f", session.ID, session.TotalScore)
		err = t.notifyService.NotifyFeedbackReady(t.xl, session.Creator, session.ID, session.TotalScore)
		if err != nil {
			t.xl.Errorf("scoring task notify user %s, error: %v", session.Creator, err)
		}
	}
}
