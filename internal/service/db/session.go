package db

import (
	"time"

	"github.com/solutions/mock-cube/internal/common/utils"
	errors2 "github.com/solutions/mock-cube/internal/protodef/errors"
	model "github.com/solutions/mock-cube/internal/protodef/model"
	dao "github.com/solutions/mock-cube/internal/service/db/dao"

	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// SessionService 练习会话的创建、查询与状态流转。
type SessionService struct {
	mongoClient *mgo.Session
	sessionColl *mgo.Collection
	xl          *xlog.Logger
}

func NewSessionService(conf utils.MongoConfig, xl *xlog.Logger) (*SessionService, error) {
	if xl == nil {
		xl = xlog.New("mock-cube-session-db")
	}
	mongoClient, err := mgo.Dial(conf.URI + "/" + conf.Database)
	if err != nil {
		xl.Errorf("failed to create mongo client, error %v", err)
		return nil, err
	}
	sessionColl := mongoClient.DB(conf.Database).C(dao.CollectionSession)
	return &SessionService{
		mongoClient: mongoClient,
		sessionColl: sessionColl,
		xl:          xl,
	}, nil
}

func (c *SessionService) CreateSession(xl *xlog.Logger, session *model.SessionDo) (*model.SessionDo, error) {
	if xl == nil {
		xl = c.xl
	}
	now := time.Now()
	session.CreateTime = now
	session.UpdateTime = now
	session.Status = int(model.SessionStatusCodeScheduled)
	session.CurrentQuestionIndex = 0
	err := c.sessionColl.Insert(session)
	if err != nil {
		xl.Errorf("failed to insert session of user %s, error %v", session.Creator, err)
		return nil, err
	}
	xl.Infof("user %s CreateSession %s", session.Creator, session.ID)
	return session, nil
}

// GetSessionByFields 根据一组 key/value 关系查找练习会话。
func (c *SessionService) GetSessionByFields(xl *xlog.Logger, fields map[string]interface{}) (*model.SessionDo, error) {
	if xl == nil {
		xl = c.xl
	}
	session := model.SessionDo{}
	err := c.sessionColl.Find(fields).One(&session)
	if err != nil {
		if err == mgo.ErrNotFound {
			xl.Infof("no such session for fields %v", fields)
			return nil, &errors2.ServerError{Code: errors2.ServerErrorSessionNotFound}
		}
		xl.Errorf("failed to get session, error %v", fields)
		return nil, err
	}
	return &session, nil
}

func (c *SessionService) GetSessionByID(xl *xlog.Logger, sessionID string) (*model.SessionDo, error) {
	return c.GetSessionByFields(xl, map[string]interface{}{"_id": sessionID})
}

func (c *SessionService) ListSessionsByPage(xl *xlog.Logger, userID string, pageNum int, pageSize int) ([]model.SessionDo, int, error) {
	if xl == nil {
		xl = c.xl
	}
	skip := (pageNum - 1) * pageSize
	limit := pageSize
	sessions := []model.SessionDo{}
	err := c.sessionColl.Find(bson.M{"creator": userID}).Sort("-createTime").Skip(skip).Limit(limit).All(&sessions)
	if err != nil {
		xl.Errorf("failed to ListSessions of userId %s, error %v", userID, err)
		return nil, 0, err
	}
	total, err := c.sessionColl.Find(bson.M{"creator": userID}).Count()
	if err != nil {
		xl.Errorf("failed to ListSessions of userId %s, error %v", userID, err)
		return nil, 0, err
	}
	return sessions, total, err
}

func (c *SessionService) UpdateSession(xl *xlog.Logger, id string, session *model.SessionDo) (*model.SessionDo, error) {
	if xl == nil {
		xl = c.xl
	}
	session.UpdateTime = time.Now()
	err := c.sessionColl.Update(bson.M{"_id": id}, bson.M{"$set": session})
	if err != nil {
		xl.Errorf("failed to update session %s,error %v", id, err)
		return nil, err
	}
	return session, nil
}

// statusTransitions 允许的状态流转。key为目标状态，value为允许的来源状态集合。
var statusTransitions = map[model.SessionStatusCode][]model.SessionStatusCode{
	model.SessionStatusCodeInProgress: {model.SessionStatusCodeScheduled, model.SessionStatusCodePaused},
	model.SessionStatusCodePaused:     {model.SessionStatusCodeInProgress},
	model.SessionStatusCodeCompleting: {model.SessionStatusCodeInProgress, model.SessionStatusCodePaused},
	model.SessionStatusCodeCompleted:  {model.SessionStatusCodeCompleting, model.SessionStatusCodeInProgress, model.SessionStatusCodePaused},
	model.SessionStatusCodeCancelled:  {model.SessionStatusCodeScheduled, model.SessionStatusCodeInProgress, model.SessionStatusCodePaused},
}

// TransitSessionStatus 校验并执行会话状态流转。非法流转返回ServerErrorBadSessionStatus。
func (c *SessionService) TransitSessionStatus(xl *xlog.Logger, sessionID string, target model.SessionStatusCode) (*model.SessionDo, error) {
	if xl == nil {
		xl = c.xl
	}
	session, err := c.GetSessionByID(xl, sessionID)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, from := range statusTransitions[target] {
		if model.SessionStatusCode(session.Status) == from {
			allowed = true
			break
		}
	}
	if !allowed {
		xl.Infof("session %s status %d cannot transit to %d", sessionID, session.Status, target)
		return nil, &errors2.ServerError{Code: errors2.ServerErrorBadSessionStatus}
	}
	session.Status = int(target)
	now := time.Now()
	session.UpdateTime = now
	switch target {
	case model.SessionStatusCodeInProgress:
		if session.StartTime.IsZero() {
			session.StartTime = now
		}
		session.LastHeartBeatTime = now
	case model.SessionStatusCodeCompleting, model.SessionStatusCodeCompleted, model.SessionStatusCodeCancelled:
		session.EndTime = now
	}
	err = c.sessionColl.Update(bson.M{"_id": sessionID}, bson.M{"$set": session})
	if err != nil {
		xl.Errorf("failed to update session %s status, error %v", sessionID, err)
		return nil, err
	}
	xl.Infof("session %s status -> %d", sessionID, target)
	return session, nil
}

// AdvanceQuestionIndex 提交回答后推进当前题目下标。
// 返回推进后的下标，以及是否已答完全部题目。答完时会话进入评分中状态。
func (c *SessionService) AdvanceQuestionIndex(xl *xlog.Logger, sessionID string) (int, bool, error) {
	if xl == nil {
		xl = c.xl
	}
	session, err := c.GetSessionByID(xl, sessionID)
	if err != nil {
		return 0, false, err
	}
	if model.SessionStatusCode(session.Status) == model.SessionStatusCodeCompleted ||
		model.SessionStatusCode(session.Status) == model.SessionStatusCodeCompleting {
		return session.CurrentQuestionIndex, true, &errors2.ServerError{Code: errors2.ServerErrorSessionCompleted}
	}
	next := session.CurrentQuestionIndex + 1
	completed := next >= session.QuestionCount
	update := bson.M{
		"currentQuestionIndex": next,
		"updateTime":           time.Now(),
	}
	if completed {
		update["status"] = int(model.SessionStatusCodeCompleting)
		update["endTime"] = time.Now()
	}
	err = c.sessionColl.Update(bson.M{"_id": sessionID}, bson.M{"$set": update})
	if err != nil {
		xl.Errorf("failed to advance question index of session %s, error %v", sessionID, err)
		return 0, false, err
	}
	return next, completed, nil
}

// HeartBeat 更新会话保活时间。
func (c *SessionService) HeartBeat(xl *xlog.Logger, sessionID string) error {
	if xl == nil {
		xl = c.xl
	}
	err := c.sessionColl.Update(bson.M{"_id": sessionID}, bson.M{"$set": bson.M{"lastHeartBeatTime": time.Now()}})
	if err == mgo.ErrNotFound {
		return &errors2.ServerError{Code: errors2.ServerErrorSessionNotFound}
	}
	return err
}

func (c *SessionService) DeleteSession(xl *xlog.Logger, sessionID string) error {
	if xl == nil {
		xl = c.xl
	}
	err := c.sessionColl.RemoveId(sessionID)
	if err != nil {
		if err == mgo.ErrNotFound {
			return &errors2.ServerError{Code: errors2.ServerErrorSessionNotFound}
		}
		xl.Errorf("failed to remove session %s, error %v", sessionID, err)
		return err
	}
	return nil
}

// ListStaleSessions 列举超过idleTimeout没有心跳的进行中/已暂停会话，供定时任务清理。
func (c *SessionService) ListStaleSessions(xl *xlog.Logger, idleTimeout time.Duration, limit int) ([]model.SessionDo, error) {
	if xl == nil {
		xl = c.xl
	}
	if limit <= 0 {
		limit = 10
	}
	deadline := time.Now().Add(-idleTimeout)
	sessions := []model.SessionDo{}
	err := c.sessionColl.Find(bson.M{
		"status":            bson.M{"$in": []int{int(model.SessionStatusCodeInProgress), int(model.SessionStatusCodePaused)}},
		"lastHeartBeatTime": bson.M{"$lt": deadline},
	}).Limit(limit).All(&sessions)
	if err != nil {
		xl.Errorf("failed to ListStaleSessions, error %v", err)
		return nil, err
	}
	return sessions, nil
}

// ListCompletingSessions 列举评分中的会话，供评分任务聚合。
func (c *SessionService) ListCompletingSessions(xl *xlog.Logger, limit int) ([]model.SessionDo, error) {
	if xl == nil {
		xl = c.xl
	}
	if limit <= 0 {
		limit = 10
	}
	sessions := []model.SessionDo{}
	err := c.sessionColl.Find(bson.M{"status": int(model.SessionStatusCodeCompleting)}).Limit(limit).All(&sessions)
	if err != nil {
		xl.Errorf("failed to ListCompletingSessions, error %v", err)
		return nil, err
	}
	return sessions, nil
}
