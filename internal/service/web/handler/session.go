package handler

import (
	"net/http"
	"time"

	"github.com/solutions/mock-cube/internal/common/utils"
	errors2 "github.com/solutions/mock-cube/internal/protodef/errors"
	"github.com/solutions/mock-cube/internal/protodef/form"
	model "github.com/solutions/mock-cube/internal/protodef/model"
	"github.com/solutions/mock-cube/internal/service/db"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
)

// HeartBeatInterval 客户端上报会话心跳的建议间隔，秒。
const HeartBeatInterval = 30

type SessionInterface interface {
	CreateSession(xl *xlog.Logger, session *model.SessionDo) (*model.SessionDo, error)
	GetSessionByID(xl *xlog.Logger, sessionID string) (*model.SessionDo, error)
	ListSessionsByPage(xl *xlog.Logger, userID string, pageNum int, pageSize int) ([]model.SessionDo, int, error)
	UpdateSession(xl *xlog.Logger, id string, session *model.SessionDo) (*model.SessionDo, error)
	TransitSessionStatus(xl *xlog.Logger, sessionID string, target model.SessionStatusCode) (*model.SessionDo, error)
	AdvanceQuestionIndex(xl *xlog.Logger, sessionID string) (int, bool, error)
	HeartBeat(xl *xlog.Logger, sessionID string) error
	DeleteSession(xl *xlog.Logger, sessionID string) error
}

type SessionApiHandler struct {
	Session         SessionInterface
	Response        *db.ResponseService
	Template        *db.TemplateService
	RequestUrlHost  string
	FrontendUrlHost string
}

func NewSessionApiHandler(conf utils.Config) *SessionApiHandler {
	h := new(SessionApiHandler)
	var err error
	h.Session, err = db.NewSessionService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	h.Response, err = db.NewResponseService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	h.Template, err = db.NewTemplateService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	h.RequestUrlHost = conf.FrontendUrlHost
	h.FrontendUrlHost = conf.FrontendUrlHost
	return h
}

// CreateSession 创建练习会话。
func (h *SessionApiHandler) CreateSession(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	args := form.SessionCreateForm{}
	err := c.Bind(&args)
	if err != nil {
		xl.Infof("CreateSession: invalid args in body, error %v", err)
		responseErr := model.NewResponseErrorBadRequest()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	if err := args.Validate(); err != nil {
		xl.Infof("CreateSession: validate form failed, error %v", err)
		responseErr := model.NewResponseErrorValidation(err)
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}

	session := &model.SessionDo{
		ID:               utils.GenerateID(),
		Title:            args.Title,
		Type:             args.Type,
		QuestionCount:    args.QuestionCount,
		DurationMinute:   args.DurationMinute,
		Difficulty:       args.Difficulty,
		Categories:       args.Categories,
		EnableCamera:     args.EnableCamera,
		EnableMicrophone: args.EnableMicrophone,
		Creator:          userID,
	}
	sessionRes, err := h.Session.CreateSession(xl, session)
	if err != nil {
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}

	xl.Infof("user %s created session: ID %s, title %s", userID, sessionRes.ID, args.Title)
	resp := model.NewSuccessResponse(model.UpsertSessionResponse{
		ID: sessionRes.ID,
	}).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// CreateSessionFromTemplate 按模板创建练习会话。
func (h *SessionApiHandler) CreateSessionFromTemplate(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	templateID := c.Param("templateId")
	template, err := h.Template.GetTemplateByID(xl, templateID)
	if err != nil {
		responseErr := model.NewResponseErrorNoSuchTemplate()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	session := db.NewSessionFromTemplate(template, userID)
	sessionRes, err := h.Session.CreateSession(xl, session)
	if err != nil {
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	xl.Infof("user %s created session %s from template %s", userID, sessionRes.ID, templateID)
	resp := model.NewSuccessResponse(model.UpsertSessionResponse{
		ID: sessionRes.ID,
	}).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// ListAllSessions 列出当前用户的全部练习会话。
func (h *SessionApiHandler) ListAllSessions(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	pageNum := c.GetInt(model.PageNumContextKey)
	pageSize := c.GetInt(model.PageSizeContextKey)
	sessions, total, err := h.Session.ListSessionsByPage(xl, userID, pageNum, pageSize)
	if err != nil {
		xl.Errorf("failed to list sessions, error %v", err)
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	sessionListResp := &model.SessionListResponse{}
	for _, session := range sessions {
		getSessionResp := h.makeGetSessionResponse(&session)
		sessionListResp.List = append(sessionListResp.List, *getSessionResp)
	}
	sessionListResp.Total = total
	sessionListResp.Cnt = len(sessionListResp.List)
	sessionListResp.PageSize = pageSize
	sessionListResp.CurrentPageNum = pageNum
	if len(sessionListResp.List)+(pageNum-1)*pageSize >= total {
		sessionListResp.EndPage = true
		sessionListResp.NextPageNum = pageNum
	} else {
		sessionListResp.EndPage = false
		sessionListResp.NextPageNum = pageNum + 1
	}
	resp := model.NewSuccessResponse(sessionListResp).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// GetSession 会话详情。只有创建者可以查看。
func (h *SessionApiHandler) GetSession(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	sessionID := c.Param("sessionId")
	session, err := h.getOwnedSession(xl, sessionID, userID)
	if err != nil {
		resp := model.NewFailResponse(*h.mapSessionError(err)).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	resp := model.NewSuccessResponse(h.makeGetSessionResponse(session)).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// StartSession 开始练习，待开始/已暂停的会话进入进行中。
func (h *SessionApiHandler) StartSession(c *gin.Context) {
	h.transitSession(c, model.SessionStatusCodeInProgress)
}

// PauseSession 暂停练习。
func (h *SessionApiHandler) PauseSession(c *gin.Context) {
	h.transitSession(c, model.SessionStatusCodePaused)
}

// ResumeSession 继续练习。
func (h *SessionApiHandler) ResumeSession(c *gin.Context) {
	h.transitSession(c, model.SessionStatusCodeInProgress)
}

// CompleteSession 提前结束练习，已提交的回答进入评分。
func (h *SessionApiHandler) CompleteSession(c *gin.Context) {
	h.transitSession(c, model.SessionStatusCodeCompleting)
}

// CancelSession 取消练习。
func (h *SessionApiHandler) CancelSession(c *gin.Context) {
	h.transitSession(c, model.SessionStatusCodeCancelled)
}

func (h *SessionApiHandler) transitSession(c *gin.Context, target model.SessionStatusCode) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	sessionID := c.Param("sessionId")
	_, err := h.getOwnedSession(xl, sessionID, userID)
	if err != nil {
		resp := model.NewFailResponse(*h.mapSessionError(err)).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	session, err := h.Session.TransitSessionStatus(xl, sessionID, target)
	if err != nil {
		resp := model.NewFailResponse(*h.mapSessionError(err)).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	xl.Infof("user %s session %s -> %d", userID, sessionID, target)
	resp := model.NewSuccessResponse(h.makeGetSessionResponse(session)).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// DeleteSession 删除会话，级联删除回答与录制记录。
func (h *SessionApiHandler) DeleteSession(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	sessionID := c.Param("sessionId")
	_, err := h.getOwnedSession(xl, sessionID, userID)
	if err != nil {
		resp := model.NewFailResponse(*h.mapSessionError(err)).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	err = h.Session.DeleteSession(xl, sessionID)
	if err != nil {
		resp := model.NewFailResponse(*h.mapSessionError(err)).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	err = h.Response.DeleteBySession(xl, sessionID)
	if err != nil {
		xl.Errorf("failed to cascade delete responses of session %s, error %v", sessionID, err)
	}
	xl.Infof("user %s deleted session %s", userID, sessionID)
	resp := model.NewSuccessResponse(nil).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// HeartBeat 会话保活。
func (h *SessionApiHandler) HeartBeat(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	sessionID := c.Param("sessionId")
	err := h.Session.HeartBeat(xl, sessionID)
	if err != nil {
		resp := model.NewFailResponse(*h.mapSessionError(err)).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	resp := model.NewSuccessResponse(model.HeartBeatResponse{
		Interval: HeartBeatInterval,
	}).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// getOwnedSession 取会话并校验归属。
func (h *SessionApiHandler) getOwnedSession(xl *xlog.Logger, sessionID string, userID string) (*model.SessionDo, error) {
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

func (h *SessionApiHandler) mapSessionError(err error) *model.ResponseError {
	serverErr, ok := err.(*errors2.ServerError)
	if !ok {
		return model.NewResponseErrorInternal()
	}
	switch serverErr.Code {
	case errors2.ServerErrorSessionNotFound:
		return model.NewResponseErrorNoSuchSession()
	case errors2.ServerErrorUserNoPermission:
		return model.NewResponseErrorUnauthorized()
	case errors2.ServerErrorBadSessionStatus:
		return model.NewResponseErrorBadSessionStatus()
	case errors2.ServerErrorSessionCompleted:
		return model.NewResponseErrorSessionCompleted()
	default:
		return model.NewResponseErrorInternal()
	}
}

func (h *SessionApiHandler) makeGetSessionResponse(session *model.SessionDo) *model.SessionResponse {
	statusCode := model.SessionStatusCode(session.Status)
	options := []model.SessionOptionResponse{}
	switch statusCode {
	case model.SessionStatusCodeScheduled:
		options = append(options, model.SessionOptionResponse{
			Type:       int(model.SessionOptionCodeStart),
			Title:      string(model.SessionOptionNameStart),
			RequestUrl: h.RequestUrlHost + "/v1/startSession/" + session.ID,
			Method:     http.MethodPost,
		})
		options = append(options, model.SessionOptionResponse{
			Type:       int(model.SessionOptionCodeCancel),
			Title:      string(model.SessionOptionNameCancel),
			RequestUrl: h.RequestUrlHost + "/v1/cancelSession/" + session.ID,
			Method:     http.MethodPost,
		})
	case model.SessionStatusCodeInProgress:
		options = append(options, model.SessionOptionResponse{
			Type:       int(model.SessionOptionCodePause),
			Title:      string(model.SessionOptionNamePause),
			RequestUrl: h.RequestUrlHost + "/v1/pauseSession/" + session.ID,
			Method:     http.MethodPost,
		})
		options = append(options, model.SessionOptionResponse{
			Type:       int(model.SessionOptionCodeComplete),
			Title:      string(model.SessionOptionNameComplete),
			RequestUrl: h.RequestUrlHost + "/v1/completeSession/" + session.ID,
			Method:     http.MethodPost,
		})
		options = append(options, model.SessionOptionResponse{
			Type:       int(model.SessionOptionCodeCancel),
			Title:      string(model.SessionOptionNameCancel),
			RequestUrl: h.RequestUrlHost + "/v1/cancelSession/" + session.ID,
			Method:     http.MethodPost,
		})
	case model.SessionStatusCodePaused:
		options = append(options, model.SessionOptionResponse{
			Type:       int(model.SessionOptionCodeResume),
			Title:      string(model.SessionOptionNameResume),
			RequestUrl: h.RequestUrlHost + "/v1/resumeSession/" + session.ID,
			Method:     http.MethodPost,
		})
		options = append(options, model.SessionOptionResponse{
			Type:       int(model.SessionOptionCodeComplete),
			Title:      string(model.SessionOptionNameComplete),
			RequestUrl: h.RequestUrlHost + "/v1/completeSession/" + session.ID,
			Method:     http.MethodPost,
		})
		options = append(options, model.SessionOptionResponse{
			Type:       int(model.SessionOptionCodeCancel),
			Title:      string(model.SessionOptionNameCancel),
			RequestUrl: h.RequestUrlHost + "/v1/cancelSession/" + session.ID,
			Method:     http.MethodPost,
		})
	case model.SessionStatusCodeCompleted:
		options = append(options, model.SessionOptionResponse{
			Type:       int(model.SessionOptionCodeView),
			Title:      string(model.SessionOptionNameView),
			RequestUrl: h.FrontendUrlHost + "/practice-report/" + session.ID,
			Method:     http.MethodGet,
		})
		options = append(options, model.SessionOptionResponse{
			Type:       int(model.SessionOptionCodeExport),
			Title:      string(model.SessionOptionNameExport),
			RequestUrl: h.RequestUrlHost + "/v1/exportReport/" + session.ID,
			Method:     http.MethodGet,
		})
		options = append(options, model.SessionOptionResponse{
			Type:       int(model.SessionOptionCodeDelete),
			Title:      string(model.SessionOptionNameDelete),
			RequestUrl: h.RequestUrlHost + "/v1/session/" + session.ID,
			Method:     http.MethodDelete,
		})
	case model.SessionStatusCodeCancelled:
		options = append(options, model.SessionOptionResponse{
			Type:       int(model.SessionOptionCodeDelete),
			Title:      string(model.SessionOptionNameDelete),
			RequestUrl: h.RequestUrlHost + "/v1/session/" + session.ID,
			Method:     http.MethodDelete,
		})
	}

	startTime := int64(0)
	if !session.StartTime.IsZero() {
		startTime = session.StartTime.Unix()
	}
	endTime := int64(0)
	if !session.EndTime.IsZero() {
		endTime = session.EndTime.Unix()
	}
	return &model.SessionResponse{
		ID:                   session.ID,
		Title:                session.Title,
		Type:                 session.Type,
		QuestionCount:        session.QuestionCount,
		DurationMinute:       session.DurationMinute,
		Difficulty:           session.Difficulty,
		Categories:           session.Categories,
		EnableCamera:         session.EnableCamera,
		EnableMicrophone:     session.EnableMicrophone,
		CurrentQuestionIndex: session.CurrentQuestionIndex,
		Status:               string(model.SessionStatusNameOf(statusCode)),
		StatusCode:           session.Status,
		TotalScore:           session.TotalScore,
		ScoredCount:          session.ScoredCount,
		FeedbackReady:        session.FeedbackReady,
		StartTime:            startTime,
		EndTime:              endTime,
		Options:              options,
	}
}

// ListTemplates 列出可用的会话模板。
func (h *SessionApiHandler) ListTemplates(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	pageNum := c.GetInt(model.PageNumContextKey)
	pageSize := c.GetInt(model.PageSizeContextKey)
	templates, total, err := h.Template.ListTemplatesByPage(xl, pageNum, pageSize)
	if err != nil {
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	templateListResp := &model.TemplateListResponse{}
	for _, template := range templates {
		templateListResp.List = append(templateListResp.List, template)
	}
	templateListResp.Total = total
	templateListResp.Cnt = len(templateListResp.List)
	templateListResp.PageSize = pageSize
	templateListResp.CurrentPageNum = pageNum
	if len(templateListResp.List)+(pageNum-1)*pageSize >= total {
		templateListResp.EndPage = true
		templateListResp.NextPageNum = pageNum
	} else {
		templateListResp.EndPage = false
		templateListResp.NextPageNum = pageNum + 1
	}
	resp := model.NewSuccessResponse(templateListResp).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// CreateTemplate 创建会话模板。
func (h *SessionApiHandler) CreateTemplate(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	args := form.TemplateCreateForm{}
	err := c.Bind(&args)
	if err != nil {
		responseErr := model.NewResponseErrorBadRequest()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	if err := args.Validate(); err != nil {
		responseErr := model.NewResponseErrorValidation(err)
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	template := &model.TemplateDo{
		Id:               utils.GenerateID(),
		Name:             args.Name,
		Desc:             args.Desc,
		Type:             args.Type,
		QuestionCount:    args.QuestionCount,
		DurationMinute:   args.DurationMinute,
		Difficulty:       args.Difficulty,
		Categories:       args.Categories,
		EnableCamera:     args.EnableCamera,
		EnableMicrophone: args.EnableMicrophone,
		Creator:          userID,
		CreatedTime:      time.Now(),
	}
	templateRes, err := h.Template.CreateTemplate(xl, template)
	if err != nil {
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	resp := model.NewSuccessResponse(templateRes).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}
