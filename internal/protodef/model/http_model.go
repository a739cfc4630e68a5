// Copyright 2020 Qiniu Cloud (qiniu.com)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

/*
	http_model.go: 规定API的参数与返回值的定义，***Args 表示 *** 接口的参数，***Response表示 *** 接口的返回体格式。
*/

const (
	// RequestIDHeader 七牛 request ID 头部。
	RequestIDHeader = "X-Reqid"
	// XLogKey gin context中，用于获取记录请求相关日志的 xlog logger的key。
	XLogKey = "xlog-logger"

	// UserIDContextKey 存放在请求context 中的用户ID。
	UserIDContextKey = "userID"
	// UserContextKey 存放用户对象
	UserContextKey = "user"

	// ActionLogContentKey 用于存放log
	ActionLogContentKey = "action-log"

	// PageNumContextKey 分页参数。
	PageNumContextKey  = "pageNum"
	PageSizeContextKey = "pageSize"

	// RequestStartKey 存放在gin context中的请求开始的时间戳。
	RequestStartKey = "request-start-timestamp-nano"

	// RequestApiVersion
	RequestApiVersion            = "request-api-version"
	ApiVersionV1      ApiVersion = "v1"

	// 状态码和状态信息
	ResponseStatusCodeSuccess    ResponseStatusCode    = 0
	ResponseStatusMessageSuccess ResponseStatusMessage = "success"
)

// API Version
type ApiVersion string

// 状态码和状态信息
type ResponseStatusCode int
type ResponseStatusMessage string

type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    int(ResponseStatusCodeSuccess),
		Message: string(ResponseStatusMessageSuccess),
		Data:    data,
	}
}

func NewFailResponse(err ResponseError) *Response {
	return &Response{
		Code:    int(err.Code),
		Message: string(err.Message),
	}
}

func (r *Response) WithRequestID(requestID string) *Response {
	r.RequestID = requestID
	return r
}

func (r *Response) WithErrorMessage(message string) *Response {
	r.Message = string(message)
	return r
}

func (r *Response) Send(c *gin.Context) {
	c.JSON(http.StatusOK, r)
}

type Pagination struct {
	Total          int           `json:"total"`
	Cnt            int           `json:"cnt"`
	CurrentPageNum int           `json:"currentPageNum"`
	NextPageNum    int           `json:"nextPageNum"`
	PageSize       int           `json:"pageSize"`
	EndPage        bool          `json:"endPage"`
	List           []interface{} `json:"list"`
}

// UserInfoResponse 用户的信息，包括ID、昵称等。
type UserInfoResponse struct {
	ID       string `json:"accountId"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Phone    string `json:"phone"`
}

// GetSmsCodeArgs 获取短信验证码的参数
type GetSmsCodeArgs struct {
	Phone string `json:"phone" form:"phone"`
}

// SMSLoginArgs 通过短信登录的参数
type SMSLoginArgs struct {
	Phone   string `json:"phone" form:"phone"`
	SMSCode string `json:"smsCode" form:"smsCode"`
}

// SignUpOrInResponse 登录的返回结果。
type SignUpOrInResponse struct {
	UserInfoResponse
	Token string `json:"loginToken"`
}

// 练习会话相关
// UpsertSessionResponse 创建或者更新会话的返回结果
type UpsertSessionResponse struct {
	ID string `json:"id"`
}

// SessionListResponse 会话列表结果
type SessionListResponse struct {
	Pagination
}

type SessionOptionCode int
type SessionOptionName string

const (
	SessionOptionCodeView     SessionOptionCode = 2
	SessionOptionCodeStart    SessionOptionCode = 100
	SessionOptionCodePause    SessionOptionCode = 101
	SessionOptionCodeResume   SessionOptionCode = 102
	SessionOptionCodeComplete SessionOptionCode = 110
	SessionOptionCodeCancel   SessionOptionCode = 50
	SessionOptionCodeDelete   SessionOptionCode = 51
	SessionOptionCodeExport   SessionOptionCode = 200
	SessionOptionNameView     SessionOptionName = "查看会话"
	SessionOptionNameStart    SessionOptionName = "开始练习"
	SessionOptionNamePause    SessionOptionName = "暂停练习"
	SessionOptionNameResume   SessionOptionName = "继续练习"
	SessionOptionNameComplete SessionOptionName = "结束练习"
	SessionOptionNameCancel   SessionOptionName = "取消会话"
	SessionOptionNameDelete   SessionOptionName = "删除会话"
	SessionOptionNameExport   SessionOptionName = "导出报告"
)

type SessionOptionResponse struct {
	Type       int    `json:"type"`
	Title      string `json:"title"`
	RequestUrl string `json:"requestUrl"`
	Method     string `json:"method"`
}

// SessionResponse 会话详情。
type SessionResponse struct {
	ID                   string                  `json:"id"`
	Title                string                  `json:"title"`
	Type                 string                  `json:"type"`
	QuestionCount        int                     `json:"questionCount"`
	DurationMinute       int                     `json:"durationMinute"`
	Difficulty           string                  `json:"difficulty"`
	Categories           []string                `json:"categories"`
	EnableCamera         bool                    `json:"enableCamera"`
	EnableMicrophone     bool                    `json:"enableMicrophone"`
	CurrentQuestionIndex int                     `json:"currentQuestionIndex"`
	Status               string                  `json:"status"`
	StatusCode           int                     `json:"statusCode"`
	TotalScore           float64                 `json:"totalScore"`
	ScoredCount          int                     `json:"scoredCount"`
	FeedbackReady        bool                    `json:"feedbackReady"`
	StartTime            int64                   `json:"startTime"`
	EndTime              int64                   `json:"endTime"`
	Options              []SessionOptionResponse `json:"options"`
}

// NextQuestionResponse 获取下一题的返回结果。
type NextQuestionResponse struct {
	Question      QuestionDo `json:"question"`
	QuestionIndex int        `json:"questionIndex"`
	// Remain 含当前题在内剩余题数。
	Remain int `json:"remain"`
}

// SubmitResponseArgs 提交文字回答的参数。
type SubmitResponseArgs struct {
	QuestionId     string `json:"questionId" form:"questionId"`
	QuestionIndex  int    `json:"questionIndex" form:"questionIndex"`
	Text           string `json:"text" form:"text"`
	DurationSecond int    `json:"durationSecond" form:"durationSecond"`
	ThinkingSecond int    `json:"thinkingSecond" form:"thinkingSecond"`
}

// SubmitResponseResponse 提交回答的返回结果。提交最后一题后Completed为true。
type SubmitResponseResponse struct {
	ResponseId           string `json:"responseId"`
	CurrentQuestionIndex int    `json:"currentQuestionIndex"`
	Completed            bool   `json:"completed"`
}

// KodoTokenResponse 客户端直传token。
type KodoTokenResponse struct {
	Token  string `json:"token"`
	Bucket string `json:"bucket"`
}

// CategoryScoreResponse 按分类聚合的得分。
type CategoryScoreResponse struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Count    int     `json:"count"`
}

// AnalyticsResponse 会话分析结果。
type AnalyticsResponse struct {
	SessionId      string                  `json:"sessionId"`
	TotalScore     float64                 `json:"totalScore"`
	ScoredCount    int                     `json:"scoredCount"`
	ResponseCount  int                     `json:"responseCount"`
	AvgDuration    float64                 `json:"avgDurationSecond"`
	AvgThinking    float64                 `json:"avgThinkingSecond"`
	CategoryScores []CategoryScoreResponse `json:"categoryScores"`
}

// FeedbackItemResponse 单题反馈。
type FeedbackItemResponse struct {
	QuestionIndex  int                `json:"questionIndex"`
	QuestionText   string             `json:"questionText"`
	Score          float64            `json:"score"`
	CriteriaScores []CriterionScoreDo `json:"criteriaScores"`
	Feedback       string             `json:"feedback"`
	MediaURL       string             `json:"mediaUrl,omitempty"`
}

// FeedbackResponse 会话反馈列表。
type FeedbackResponse struct {
	SessionId string                 `json:"sessionId"`
	Ready     bool                   `json:"ready"`
	Items     []FeedbackItemResponse `json:"items"`
}

// ExportReportResponse JSON格式导出的报告。
type ExportReportResponse struct {
	Session   SessionResponse        `json:"session"`
	Analytics AnalyticsResponse      `json:"analytics"`
	Items     []FeedbackItemResponse `json:"items"`
	ExportAt  int64                  `json:"exportAt"`
}

// TemplateListResponse 模板列表结果
type TemplateListResponse struct {
	Pagination
}

// HeartBeatResponse 会话心跳返回。
type HeartBeatResponse struct {
	Interval int `json:"interval"`
}
