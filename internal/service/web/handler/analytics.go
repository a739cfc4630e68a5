package handler

import (
	"net/http"

	"github.com/solutions/mock-cube/internal/common/utils"
	errors2 "github.com/solutions/mock-cube/internal/protodef/errors"
	model "github.com/solutions/mock-cube/internal/protodef/model"
	"github.com/solutions/mock-cube/internal/service/db"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
)

type AnalyticsApiHandler struct {
	Session   SessionInterface
	Analytics *db.AnalyticsService
}

func NewAnalyticsApiHandler(conf utils.Config) *AnalyticsApiHandler {
	h := new(AnalyticsApiHandler)
	session, err := db.NewSessionService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	response, err := db.NewResponseService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	question, err := db.NewQuestionService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	h.Session = session
	h.Analytics = db.NewAnalyticsService(response, question, nil)
	return h
}

// GetAnalytics 会话分析，总分、平均用时与按分类的得分。
func (h *AnalyticsApiHandler) GetAnalytics(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	sessionID := c.Param("sessionId")
	_, err := h.ownedSession(xl, sessionID, userID)
	if err != nil {
		resp := model.NewFailResponse(*mapOwnershipError(err)).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	analytics, err := h.Analytics.SessionAnalytics(xl, sessionID)
	if err != nil {
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	resp := model.NewSuccessResponse(analytics).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// GetFeedback 逐题反馈。Ready为false时分数可能尚未回填。
func (h *AnalyticsApiHandler) GetFeedback(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	sessionID := c.Param("sessionId")
	session, err := h.ownedSession(xl, sessionID, userID)
	if err != nil {
		resp := model.NewFailResponse(*mapOwnershipError(err)).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	feedback, err := h.Analytics.SessionFeedback(xl, session)
	if err != nil {
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	resp := model.NewSuccessResponse(feedback).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsApiHandler) ownedSession(xl *xlog.Logger, sessionID string, userID string) (*model.SessionDo, error) {
	session, err := h.Session.GetSessionByID(xl, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Creator != userID {
		xl.Infof("user %s try to access session %s of user %s", userID, sessionID, session.Creator)
		return nil, &errors2.ServerError{Code: errors2.ServerErrorUserNoPermission}
	}
	return session, nil
}

func mapOwnershipError(err error) *model.ResponseError {
	serverErr, ok := err.(*errors2.ServerError)
	if !ok {
		return model.NewResponseErrorInternal()
	}
	switch serverErr.Code {
	case errors2.ServerErrorSessionNotFound:
		return model.NewResponseErrorNoSuchSession()
	case errors2.ServerErrorUserNoPermission:
		return model.NewResponseErrorUnauthorized()
	default:
		return model.NewResponseErrorInternal()
	}
}
