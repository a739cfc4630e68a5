package model

import (
	"encoding/json"
	"time"
)

/*
	db_model.go: 规定数据存储的格式。
*/

// AccountDo 用户账号信息。
type AccountDo struct {
	// 用户ID，作为数据库唯一标识。
	ID string `json:"id" bson:"_id"`
	// 手机号，目前要求全局唯一。
	Phone string `json:"phone" bson:"phone"`
	// 用户昵称
	Nickname string `json:"nickname" bson:"nickname"`
	// Avatar 头像URL地址
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	// RegisterIP 用户注册（首次登录）时使用的IP。
	RegisterIP string `json:"registerIP" bson:"registerIP"`
	// RegisterTime 用户注册（首次登录）时间。
	RegisterTime time.Time `json:"registerTime" bson:"registerTime"`
	// LastLoginTime 上次登录时间。
	LastLoginTime time.Time `json:"lastLoginTime" bson:"lastLoginTime"`
}

func (a AccountDo) Map() map[string]interface{} {
	val, _ := json.Marshal(&a)
	res := make(map[string]interface{})
	_ = json.Unmarshal(val, &res)
	return res
}

// AccountTokenDo 已登录用户的信息。
type AccountTokenDo struct {
	ID        string `json:"id" bson:"_id"`
	AccountId string `json:"accountId" bson:"accountId"`
	// Token 本次登录使用的token。
	Token          string    `json:"token" bson:"token"`
	LastModifyTime time.Time `json:"lastModifyTime"`
}

// SMSCodeDo 已发送的验证码记录。
type SMSCodeDo struct {
	ID       string    `json:"id" bson:"_id"`
	Phone    string    `json:"phone" bson:"phone"`
	SMSCode  string    `json:"smsCode" bson:"smsCode"`
	SendTime time.Time `json:"sendTime" bson:"sendTime"`
	ExpireAt time.Time `json:"-" bson:"expireAt"`
}

type SessionStatusCode int
type SessionStatusName string

const (
	SessionStatusCodeScheduled  SessionStatusCode = 0
	SessionStatusCodeInProgress SessionStatusCode = 10
	SessionStatusCodePaused     SessionStatusCode = 20
	SessionStatusCodeCompleting SessionStatusCode = 30
	SessionStatusCodeCompleted  SessionStatusCode = 50
	SessionStatusCodeCancelled  SessionStatusCode = -10
	SessionStatusNameScheduled  SessionStatusName = "待开始"
	SessionStatusNameInProgress SessionStatusName = "进行中"
	SessionStatusNamePaused     SessionStatusName = "已暂停"
	SessionStatusNameCompleting SessionStatusName = "评分中"
	SessionStatusNameCompleted  SessionStatusName = "已完成"
	SessionStatusNameCancelled  SessionStatusName = "已取消"
)

// SessionStatusNameOf 状态码对应的展示名。
func SessionStatusNameOf(code SessionStatusCode) SessionStatusName {
	switch code {
	case SessionStatusCodeScheduled:
		return SessionStatusNameScheduled
	case SessionStatusCodeInProgress:
		return SessionStatusNameInProgress
	case SessionStatusCodePaused:
		return SessionStatusNamePaused
	case SessionStatusCodeCompleting:
		return SessionStatusNameCompleting
	case SessionStatusCodeCompleted:
		return SessionStatusNameCompleted
	case SessionStatusCodeCancelled:
		return SessionStatusNameCancelled
	}
	return ""
}

const (
	SessionTypeTechnical  = "technical"
	SessionTypeBehavioral = "behavioral"
	SessionTypeMixed      = "mixed"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// SessionDo 一场模拟面试练习。
type SessionDo struct {
	ID    string `json:"id" bson:"_id"`
	Title string `json:"title" bson:"title"`
	// Type 面试类型 technical/behavioral/mixed。
	Type string `json:"type" bson:"type"`
	// QuestionCount 本场练习的题目总数。
	QuestionCount  int    `json:"questionCount" bson:"questionCount"`
	DurationMinute int    `json:"durationMinute" bson:"durationMinute"`
	Difficulty     string `json:"difficulty" bson:"difficulty"`
	// Categories 题目分类集合，创建时要求非空。
	Categories       []string `json:"categories" bson:"categories"`
	EnableCamera     bool     `json:"enableCamera" bson:"enableCamera"`
	EnableMicrophone bool     `json:"enableMicrophone" bson:"enableMicrophone"`
	// CurrentQuestionIndex 当前题目下标，从0开始，提交回答后推进。
	CurrentQuestionIndex int `json:"currentQuestionIndex" bson:"currentQuestionIndex"`
	Status               int `json:"status" bson:"status"`
	// TotalScore 所有已评分回答的平均分，评分任务异步更新。
	TotalScore float64 `json:"totalScore" bson:"totalScore"`
	// ScoredCount 已评分的回答数。
	ScoredCount   int       `json:"scoredCount" bson:"scoredCount"`
	FeedbackReady bool      `json:"feedbackReady" bson:"feedbackReady"`
	TemplateId    string    `json:"templateId,omitempty" bson:"templateId,omitempty"`
	Creator       string    `json:"creator" bson:"creator"`
	StartTime     time.Time `json:"startTime" bson:"startTime"`
	EndTime       time.Time `json:"endTime" bson:"endTime"`
	CreateTime    time.Time `json:"createTime" bson:"createTime"`
	UpdateTime    time.Time `json:"updateTime" bson:"updateTime"`
	// LastHeartBeatTime 客户端保活时间，超时的进行中会话由定时任务清理。
	LastHeartBeatTime time.Time `json:"lastHeartBeatTime" bson:"lastHeartBeatTime"`
}

// QuestionDo 题库中的一道面试题。Question可以复用，所以有ID，方便查找。
type QuestionDo struct {
	Id       string `bson:"_id" json:"questionId"`
	Text     string `bson:"text" json:"text"`
	Category string `bson:"category" json:"category"`
	// Difficulty easy/medium/hard。
	Difficulty string `bson:"difficulty" json:"difficulty"`
	// ExpectedDurationSecond 建议作答时长。
	ExpectedDurationSecond int `bson:"expected_duration_s" json:"expectedDurationSecond"`
	// EvaluationCriteria 评分维度列表，评分服务按维度打分。
	EvaluationCriteria []string  `bson:"evaluation_criteria" json:"evaluationCriteria"`
	Creator            string    `bson:"creator" json:"creator"`
	Status             int       `bson:"status" json:"status"`
	CreatedTime        time.Time `bson:"created_time" json:"-"`
	UpdatedTime        time.Time `bson:"updated_time" json:"-"`
}

const (
	_ = iota
	QuestionAvailable
	QuestionUnavailable
)

const (
	_ = iota
	// ResponseStatusPending 已提交，等待评分任务处理。
	ResponseStatusPending
	// ResponseStatusScored 评分服务已回填分数。
	ResponseStatusScored
	// ResponseStatusUnavailable 已删除。
	ResponseStatusUnavailable
)

// CriterionScoreDo 单个评分维度的得分。
type CriterionScoreDo struct {
	Name  string  `bson:"name" json:"name"`
	Score float64 `bson:"score" json:"score"`
}

// ResponseDo 候选人对一道题的回答。客户端提交后创建，分数由评分任务异步回填。
type ResponseDo struct {
	Id         string `bson:"_id" json:"responseId"`
	SessionId  string `bson:"session_id" json:"sessionId"`
	QuestionId string `bson:"question_id" json:"questionId"`
	UserId     string `bson:"user_id" json:"userId"`
	// QuestionIndex 该回答对应的题目下标。
	QuestionIndex int `bson:"question_index" json:"questionIndex"`
	// Text 文字回答，与MediaURL二选一，至少其一非空。
	Text string `bson:"text" json:"text"`
	// MediaKey 录制文件在对象存储中的key。
	MediaKey string `bson:"media_key" json:"-"`
	MediaURL string `bson:"media_url" json:"mediaUrl"`
	// DurationSecond 作答用时。
	DurationSecond int `bson:"duration_s" json:"durationSecond"`
	// ThinkingSecond 题目展示到开始作答之间的思考用时。
	ThinkingSecond int                `bson:"thinking_s" json:"thinkingSecond"`
	Score          float64            `bson:"score" json:"score"`
	CriteriaScores []CriterionScoreDo `bson:"criteria_scores" json:"criteriaScores"`
	Feedback       string             `bson:"feedback" json:"feedback"`
	Status         int                `bson:"status" json:"status"`
	CreatedTime    time.Time          `bson:"created_time" json:"createdTime"`
	UpdatedTime    time.Time          `bson:"updated_time" json:"updatedTime"`
}

const (
	_ = iota
	TemplateAvailable
	TemplateUnavailable
)

// TemplateDo 会话模板，按模板一键创建练习会话。
type TemplateDo struct {
	Id               string    `bson:"_id" json:"templateId"`
	Name             string    `bson:"name" json:"name"`
	Desc             string    `bson:"desc" json:"desc"`
	Type             string    `bson:"type" json:"type"`
	QuestionCount    int       `bson:"question_count" json:"questionCount"`
	DurationMinute   int       `bson:"duration_minute" json:"durationMinute"`
	Difficulty       string    `bson:"difficulty" json:"difficulty"`
	Categories       []string  `bson:"categories" json:"categories"`
	EnableCamera     bool      `bson:"enable_camera" json:"enableCamera"`
	EnableMicrophone bool      `bson:"enable_microphone" json:"enableMicrophone"`
	Creator          string    `bson:"creator" json:"creator"`
	Status           int       `bson:"status" json:"status"`
	CreatedTime      time.Time `bson:"created_time" json:"-"`
	UpdatedTime      time.Time `bson:"updated_time" json:"-"`
}

const (
	_ = iota
	MediaFileStatusNormal
	MediaFileStatusDeleted
)

// MediaFileDo 上传到对象存储的录制文件记录。
type MediaFileDo struct {
	Id          string    `bson:"_id" json:"id"`
	SessionId   string    `bson:"session_id" json:"sessionId"`
	ResponseId  string    `bson:"response_id" json:"responseId"`
	FileName    string    `bson:"file_name" json:"fileName"`
	FileKey     string    `bson:"file_key" json:"-"`
	FileURL     string    `bson:"file_url" json:"fileUrl"`
	SizeByte    int64     `bson:"size_byte" json:"sizeByte"`
	MimeType    string    `bson:"mime_type" json:"mimeType"`
	Status      int       `bson:"status" json:"status"`
	CreatedTime time.Time `bson:"created_time" json:"-"`
}
