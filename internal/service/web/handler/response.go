package handler

import (
	"net/http"
	"strconv"

	"github.com/solutions/mock-cube/internal/common/utils"
	errors2 "github.com/solutions/mock-cube/internal/protodef/errors"
	model "github.com/solutions/mock-cube/internal/protodef/model"
	"github.com/solutions/mock-cube/internal/service/cloud"
	"github.com/solutions/mock-cube/internal/service/db"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
)

type ResponseApiHandler struct {
	conf     utils.Config
	Session  SessionInterface
	Question *db.QuestionService
	Response *db.ResponseService
	Storage  *cloud.StorageService
}

func NewResponseApiHandler(conf utils.Config) *ResponseApiHandler {
	h := new(ResponseApiHandler)
	h.conf = conf
	var err error
	h.Session, err = db.NewSessionService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	h.Question, err = db.NewQuestionService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	h.Response, err = db.NewResponseService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	h.Storage = cloud.NewStorageService(conf)
	return h
}

// SubmitResponse 提交文字回答并推进题目下标。
func (h *ResponseApiHandler) SubmitResponse(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	sessionID := c.Param("sessionId")
	args := model.SubmitResponseArgs{}
	err := c.Bind(&args)
	if err != nil {
		responseErr := model.NewResponseErrorBadRequest()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	if args.Text == "" {
		responseErr := model.NewResponseErrorEmptySubmission()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	response := &model.ResponseDo{
		Id:             utils.GenerateID(),
		SessionId:      sessionID,
		QuestionId:     args.QuestionId,
		UserId:         userID,
		QuestionIndex:  args.QuestionIndex,
		Text:           args.Text,
		DurationSecond: args.DurationSecond,
		ThinkingSecond: args.ThinkingSecond,
	}
	h.saveAndAdvance(c, xl, userID, sessionID, response)
}

// SubmitResponseWithMedia 提交带录制文件的回答。表单字段与文字提交一致，外加file。
func (h *ResponseApiHandler) SubmitResponseWithMedia(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	sessionID := c.Param("sessionId")

	questionID := c.PostForm("questionId")
	questionIndex, _ := strconv.Atoi(c.PostForm("questionIndex"))
	text := c.PostForm("text")
	durationSecond, _ := strconv.Atoi(c.PostForm("durationSecond"))
	thinkingSecond, _ := strconv.Atoi(c.PostForm("thinkingSecond"))

	fileHeader, err := c.FormFile("file")
	if err != nil && text == "" {
		responseErr := model.NewResponseErrorEmptySubmission()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}

	response := &model.ResponseDo{
		Id:             utils.GenerateID(),
		SessionId:      sessionID,
		QuestionId:     questionID,
		UserId:         userID,
		QuestionIndex:  questionIndex,
		Text:           text,
		DurationSecond: durationSecond,
		ThinkingSecond: thinkingSecond,
	}

	if fileHeader != nil {
		fileKey, fileURL, uploadErr := h.Storage.UploadResponseMedia(xl, sessionID, questionIndex, fileHeader)
		if uploadErr != nil {
			xl.Errorf("failed to upload media of session %s, error %v", sessionID, uploadErr)
			responseErr := model.NewResponseErrorExternalService()
			resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
			c.JSON(http.StatusOK, resp)
			return
		}
		response.MediaKey = fileKey
		response.MediaURL = fileURL
		_, err = h.Response.InsertMediaFile(xl, &model.MediaFileDo{
			Id:         utils.GenerateID(),
			SessionId:  sessionID,
			ResponseId: response.Id,
			FileName:   fileHeader.Filename,
			FileKey:    fileKey,
			FileURL:    fileURL,
			SizeByte:   fileHeader.Size,
			MimeType:   fileHeader.Header.Get("Content-Type"),
		})
		if err != nil {
			xl.Errorf("failed to record media file of session %s, error %v", sessionID, err)
		}
	}
	h.saveAndAdvance(c, xl, userID, sessionID, response)
}

// saveAndAdvance 校验会话状态，保存回答并推进题目下标。
func (h *ResponseApiHandler) saveAndAdvance(c *gin.Context, xl *xlog.Logger, userID, sessionID string, response *model.ResponseDo) {
	requestID := xl.ReqId
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
	if _, err := h.Question.GetQuestionByID(xl, response.QuestionId); err != nil {
		responseErr := model.NewResponseErrorNoSuchQuestion()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}

	responseRes, err := h.Response.CreateResponse(xl, response)
	if err != nil {
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	next, completed, err := h.Session.AdvanceQuestionIndex(xl, sessionID)
	if err != nil {
		serverErr, ok := err.(*errors2.ServerError)
		if ok && serverErr.Code == errors2.ServerErrorSessionCompleted {
			responseErr := model.NewResponseErrorSessionCompleted()
			resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
			c.JSON(http.StatusOK, resp)
			return
		}
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	xl.Infof("user %s session %s submitted response for question #%d, completed %v",
		userID, sessionID, responseRes.QuestionIndex, completed)
	resp := model.NewSuccessResponse(model.SubmitResponseResponse{
		ResponseId:           responseRes.Id,
		CurrentQuestionIndex: next,
		Completed:            completed,
	}).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// GetKodoToken 生成客户端直传七牛存储的token。
func (h *ResponseApiHandler) GetKodoToken(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	token := cloud.GenKodoClientToken(h.conf.QiniuKeyPair, h.conf.Storage.Bucket)
	xl.Debugf("kodo token generated")
	resp := model.NewSuccessResponse(model.KodoTokenResponse{
		Token:  token,
		Bucket: h.conf.Storage.Bucket,
	}).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}

// ListResponses 列出会话的全部回答。
func (h *ResponseApiHandler) ListResponses(c *gin.Context) {
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
	responses, err := h.Response.ListResponsesBySession(xl, sessionID)
	if err != nil {
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	resp := model.NewSuccessResponse(responses).WithRequestID(requestID)
	c.JSON(http.StatusOK, resp)
}
