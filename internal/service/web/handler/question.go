package handler

import (
	"net/http"

	"github.com/solutions/mock-cube/internal/common/utils"
	errors2 "github.com/solutions/mock-cube/internal/protodef/errors"
	"github.com/solutions/mock-cube/internal/protodef/form"
	model "github.com/solutions/mock-cube/internal/protodef/model"
	"github.com/solutions/mock-cube/internal/service/db"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
)

type QuestionApiHandler struct {
	Question *db.QuestionService
	Session  SessionInterface
}

func NewQuestionApiHandler(conf utils.Config) *QuestionApiHandler {
	h := new(QuestionApiHandler)
	var err error
	h.Question, err = db.NewQuestionService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	h.Session, err = db.NewSessionService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	return h
}

// AddQuestion 向题库添加一道题。
func (h *QuestionApiHandler) AddQuestion(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	args := form.QuestionCreateForm{}
	err := c.Bind(&args)
	if err != nil {
		responseErr := model.NewResponseErrorBadRequest()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	if err := args.Validate(); err != nil {
		xl.Infof("AddQuestion: validate form failed, error %v", err)
		responseErr := model.NewResponseErrorValidation(err)
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	question := &model.QuestionDo{
		Id:                     utils.GenerateID(),
		Text:                   args.Text,
		Category:               args.Category,
		Difficulty:             args.Difficulty,
		ExpectedDurationSecond: args.ExpectedDurationSecond,
		EvaluationCriteria:     args.EvaluationCriteria,
		Creator:                userID,
	}
	questionRes, err := h.Question.CreateQuestion(xl, question)
	if err != nil {
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	xl.Infof("user %s added question %s", userID, questionRes.Id)
	resp := model.NewSuccessResponse(questionRes).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// UpdateQuestion 更新题目内容。
func (h *QuestionApiHandler) UpdateQuestion(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	questionID := c.Param("questionId")
	args := form.QuestionUpdateForm{}
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
	question, err := h.Question.GetQuestionByID(xl, questionID)
	if err != nil {
		responseErr := model.NewResponseErrorNoSuchQuestion()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	question.Text = args.Text
	question.Category = args.Category
	question.Difficulty = args.Difficulty
	question.ExpectedDurationSecond = args.ExpectedDurationSecond
	question.EvaluationCriteria = args.EvaluationCriteria
	questionRes, err := h.Question.UpdateQuestion(xl, questionID, question)
	if err != nil {
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	resp := model.NewSuccessResponse(questionRes).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// DeleteQuestion 从题库下架一道题。
func (h *QuestionApiHandler) DeleteQuestion(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	questionID := c.Param("questionId")
	err := h.Question.DeleteQuestion(xl, questionID)
	if err != nil {
		serverErr, ok := err.(*errors2.ServerError)
		if ok && serverErr.Code == errors2.ServerErrorQuestionNotFound {
			responseErr := model.NewResponseErrorNoSuchQuestion()
			resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
			c.JSON(http.StatusOK, resp)
			return
		}
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	resp := model.NewSuccessResponse(nil).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// ListQuestions 分页列出题库，支持按分类过滤。
func (h *QuestionApiHandler) ListQuestions(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	category := c.Query("category")
	pageNum := c.GetInt(model.PageNumContextKey)
	pageSize := c.GetInt(model.PageSizeContextKey)
	questions, total, err := h.Question.ListQuestionsByPage(xl, category, pageNum, pageSize)
	if err != nil {
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	listResp := &model.Pagination{}
	for _, question := range questions {
		listResp.List = append(listResp.List, question)
	}
	listResp.Total = total
	listResp.Cnt = len(listResp.List)
	listResp.PageSize = pageSize
	listResp.CurrentPageNum = pageNum
	if len(listResp.List)+(pageNum-1)*pageSize >= total {
		listResp.EndPage = true
		listResp.NextPageNum = pageNum
	} else {
		listResp.EndPage = false
		listResp.NextPageNum = pageNum + 1
	}
	resp := model.NewSuccessResponse(listResp).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// NextQuestion 取当前会话的下一道题。只有进行中的会话可以取题。
func (h *QuestionApiHandler) NextQuestion(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	sessionID := c.Param("sessionId")
	session, err := h.Session.GetSessionByID(xl, sessionID)
	if err != nil {
		responseErr := model.NewResponseErrorNoSuchSession()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	if session.Creator != userID {
		responseErr := model.NewResponseErrorUnauthorized()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	switch model.SessionStatusCode(session.Status) {
	case model.SessionStatusCodeInProgress:
	case model.SessionStatusCodeCompleting, model.SessionStatusCodeCompleted:
		responseErr := model.NewResponseErrorSessionCompleted()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	default:
		responseErr := model.NewResponseErrorBadSessionStatus()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}

	question, err := h.Question.PickQuestionForSession(xl, session)
	if err != nil {
		serverErr, ok := err.(*errors2.ServerError)
		if ok && serverErr.Code == errors2.ServerErrorQuestionExhausted {
			responseErr := model.NewResponseErrorQuestionExhausted()
			resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
			c.JSON(http.StatusOK, resp)
			return
		}
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	xl.Infof("session %s question #%d -> %s", sessionID, session.CurrentQuestionIndex, question.Id)
	resp := model.NewSuccessResponse(model.NextQuestionResponse{
		Question:      *question,
		QuestionIndex: session.CurrentQuestionIndex,
		Remain:        session.QuestionCount - session.CurrentQuestionIndex,
	}).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}
