package task

import (
	"time"

	"github.com/solutions/mock-cube/internal/common/utils"
	model "github.com/solutions/mock-cube/internal/protodef/model"
	db "github.com/solutions/mock-cube/internal/service/db"

	"github.com/qiniu/x/log"
	"github.com/qiniu/x/xlog"
)

// SessionTask 会话保活清理任务。
// 进行中/已暂停但长时间没有心跳的会话视为已放弃，流转为已取消。
type SessionTask struct {
	conf           utils.Config
	sessionService *db.SessionService
	idleTimeout    time.Duration
	xl             *xlog.Logger
}

func NewSessionTask(conf utils.Config) (*SessionTask, error) {
	sessionService, err := db.NewSessionService(*conf.Mongo, nil)
	if err != nil {
		log.Errorf("failed to create session service, error %v", err)
		return nil, err
	}
	idleTimeoutMinute := conf.Practice.SessionIdleTimeoutMinute
	if idleTimeoutMinute <= 0 {
		idleTimeoutMinute = 30
	}
	return &SessionTask{
		conf:           conf,
		sessionService: sessionService,
		idleTimeout:    time.Duration(idleTimeoutMinute) * time.Minute,
		xl:             xlog.New("session task manager"),
	}, nil
}

// TaskForCancelStaleSessions 取消长时间无心跳的会话。
func (t *SessionTask) TaskForCancelStaleSessions() {
	t.xl.Infof("taskForCancelStaleSessions run at %s", time.Now().String())

	sessions, err := t.sessionService.ListStaleSessions(t.xl, t.idleTimeout, 10)
	if err != nil {
		t.xl.Errorf("TaskForCancelStaleSessions find sessions, error: %v", err)
		return
	}
	if len(sessions) <= 0 {
		t.xl.Infof("taskForCancelStaleSessions find no sessions")
	}
	for _, session := range sessions {
		t.xl.Infof("TaskForCancelStaleSessions cancel session %s, status: %d, lastHeartBeatTime: %s",
			session.ID, session.Status, session.LastHeartBeatTime)
		_, err := t.sessionService.TransitSessionStatus(t.xl, session.ID, model.SessionStatusCodeCancelled)
		if err != nil {
			t.xl.Errorf("TaskForCancelStaleSessions cancel err, %v", err)
		}
	}
}
