package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/qiniu/x/xlog"
	"github.com/solutions/mock-cube/internal/protodef/form"
	"github.com/solutions/mock-cube/internal/protodef/model"
)

// Gateway 练习服务端API的客户端。
// 所有请求带登录token，返回的业务码映射为带类型的错误。
type Gateway struct {
	baseURL string
	token   string
	client  *http.Client
	xl      *xlog.Logger
}

func NewGateway(baseURL string, token string, httpClient *http.Client) *Gateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Gateway{
		baseURL: baseURL,
		token:   token,
		client:  httpClient,
		xl:      xlog.New("mock-cube-gateway"),
	}
}

// SetToken 更新登录token。
func (g *Gateway) SetToken(token string) {
	g.token = token
}

// GetSmsCode 请求发送登录验证码。
func (g *Gateway) GetSmsCode(ctx context.Context, phone string) error {
	args := model.GetSmsCodeArgs{Phone: phone}
	return g.postJSON(ctx, "/v1/getSmsCode", args, nil, "user", phone)
}

// SignUpOrIn 验证码登录，成功后保存返回的token。
func (g *Gateway) SignUpOrIn(ctx context.Context, phone string, smsCode string) (*model.SignUpOrInResponse, error) {
	args := model.SMSLoginArgs{Phone: phone, SMSCode: smsCode}
	result := model.SignUpOrInResponse{}
	err := g.postJSON(ctx, "/v1/signUpOrIn", args, &result, "user", phone)
	if err != nil {
		return nil, err
	}
	g.token = result.Token
	return &result, nil
}

// SignOut 退出登录。服务端作废token失败不阻塞本地退出，只清除本地token。
func (g *Gateway) SignOut(ctx context.Context) error {
	err := g.postJSON(ctx, "/v1/signOut", nil, nil, "user", "")
	if err != nil {
		g.xl.Infof("failed to invalidate token on server, error %v", err)
	}
	g.token = ""
	return err
}

// GetAccountInfo 当前登录用户信息。
func (g *Gateway) GetAccountInfo(ctx context.Context) (*model.UserInfoResponse, error) {
	result := model.UserInfoResponse{}
	err := g.getJSON(ctx, "/v1/accountInfo", &result, "user", "")
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateSession 创建练习会话。表单先在本地校验，不合法的配置不发请求。
func (g *Gateway) CreateSession(ctx context.Context, args *form.SessionCreateForm) (string, error) {
	if err := args.Validate(); err != nil {
		return "", &ValidationError{Err: err}
	}
	result := model.UpsertSessionResponse{}
	err := g.postJSON(ctx, "/v1/session", args, &result, "session", "")
	if err != nil {
		return "", err
	}
	return result.ID, nil
}

// CreateSessionFromTemplate 按模板创建会话。
func (g *Gateway) CreateSessionFromTemplate(ctx context.Context, templateID string) (string, error) {
	result := model.UpsertSessionResponse{}
	err := g.postJSON(ctx, "/v1/sessionFromTemplate/"+templateID, nil, &result, "template", templateID)
	if err != nil {
		return "", err
	}
	return result.ID, nil
}

// ListSessions 分页列出当前用户的会话。
func (g *Gateway) ListSessions(ctx context.Context, pageNum int, pageSize int) (*model.SessionListResponse, error) {
	result := model.SessionListResponse{}
	path := fmt.Sprintf("/v1/session?pageNum=%d&pageSize=%d", pageNum, pageSize)
	err := g.getJSON(ctx, path, &result, "session", "")
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTemplates 分页列出会话模板。
func (g *Gateway) ListTemplates(ctx context.Context, pageNum int, pageSize int) (*model.TemplateListResponse, error) {
	result := model.TemplateListResponse{}
	path := fmt.Sprintf("/v1/template?pageNum=%d&pageSize=%d", pageNum, pageSize)
	err := g.getJSON(ctx, path, &result, "template", "")
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSession 会话详情。
func (g *Gateway) GetSession(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	result := model.SessionResponse{}
	err := g.getJSON(ctx, "/v1/session/"+sessionID, &result, "session", sessionID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// StartSession 开始练习。
func (g *Gateway) StartSession(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	return g.transit(ctx, "/v1/startSession/", sessionID)
}

// PauseSession 暂停练习。
func (g *Gateway) PauseSession(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	return g.transit(ctx, "/v1/pauseSession/", sessionID)
}

// ResumeSession 继续练习。
func (g *Gateway) ResumeSession(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	return g.transit(ctx, "/v1/resumeSession/", sessionID)
}

// CompleteSession 提前结束练习。
func (g *Gateway) CompleteSession(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	return g.transit(ctx, "/v1/completeSession/", sessionID)
}

// CancelSession 取消练习。
func (g *Gateway) CancelSession(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	return g.transit(ctx, "/v1/cancelSession/", sessionID)
}

// DeleteSession 删除会话及其下全部回答。
func (g *Gateway) DeleteSession(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, g.baseURL+"/v1/session/"+sessionID, nil)
	if err != nil {
		return err
	}
	return g.do(req, nil, "session", sessionID)
}

func (g *Gateway) transit(ctx context.Context, path string, sessionID string) (*model.SessionResponse, error) {
	result := model.SessionResponse{}
	err := g.postJSON(ctx, path+sessionID, nil, &result, "session", sessionID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// HeartBeat 会话保活，返回服务端建议的心跳间隔秒数。
func (g *Gateway) HeartBeat(ctx context.Context, sessionID string) (int, error) {
	result := model.HeartBeatResponse{}
	err := g.getJSON(ctx, "/v1/heartBeat/"+sessionID, &result, "session", sessionID)
	if err != nil {
		return 0, err
	}
	return result.Interval, nil
}

// NextQuestion 取下一道题。
func (g *Gateway) NextQuestion(ctx context.Context, sessionID string) (*model.NextQuestionResponse, error) {
	result := model.NextQuestionResponse{}
	err := g.getJSON(ctx, "/v1/nextQuestion/"+sessionID, &result, "session", sessionID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitResponse 提交文字回答。空文本直接拒绝，不发请求。
func (g *Gateway) SubmitResponse(ctx context.Context, sessionID string, args *model.SubmitResponseArgs) (*model.SubmitResponseResponse, error) {
	if args.Text == "" {
		return nil, &ValidationError{Err: fmt.Errorf("empty text")}
	}
	result := model.SubmitResponseResponse{}
	err := g.postJSON(ctx, "/v1/submitResponse/"+sessionID, args, &result, "session", sessionID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitResponseWithMedia 提交带录制内容的回答。media为录制文件内容，可为空。
func (g *Gateway) SubmitResponseWithMedia(ctx context.Context, sessionID string, args *model.SubmitResponseArgs,
	fileName string, media io.Reader) (*model.SubmitResponseResponse, error) {
	if args.Text == "" && media == nil {
		return nil, &ValidationError{Err: fmt.Errorf("either text or recording is required")}
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("questionId", args.QuestionId)
	_ = writer.WriteField("questionIndex", strconv.Itoa(args.QuestionIndex))
	_ = writer.WriteField("text", args.Text)
	_ = writer.WriteField("durationSecond", strconv.Itoa(args.DurationSecond))
	_ = writer.WriteField("thinkingSecond", strconv.Itoa(args.ThinkingSecond))
	if media != nil {
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, media); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	url := g.baseURL + "/v1/submitResponseWithMedia/" + sessionID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	result := model.SubmitResponseResponse{}
	err = g.do(req, &result, "session", sessionID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAnalytics 会话分析。
func (g *Gateway) GetAnalytics(ctx context.Context, sessionID string) (*model.AnalyticsResponse, error) {
	result := model.AnalyticsResponse{}
	err := g.getJSON(ctx, "/v1/analytics/"+sessionID, &result, "session", sessionID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetFeedback 逐题反馈。
func (g *Gateway) GetFeedback(ctx context.Context, sessionID string) (*model.FeedbackResponse, error) {
	result := model.FeedbackResponse{}
	err := g.getJSON(ctx, "/v1/feedback/"+sessionID, &result, "session", sessionID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetKodoToken 客户端直传存储的token。
func (g *Gateway) GetKodoToken(ctx context.Context) (*model.KodoTokenResponse, error) {
	result := model.KodoTokenResponse{}
	err := g.getJSON(ctx, "/v1/token/kodo", &result, "user", "")
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ExportReport 导出JSON格式的练习报告。
func (g *Gateway) ExportReport(ctx context.Context, sessionID string) (*model.ExportReportResponse, error) {
	result := model.ExportReportResponse{}
	err := g.getJSON(ctx, "/v1/exportReport/"+sessionID+"?format=json", &result, "session", sessionID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *Gateway) getJSON(ctx context.Context, path string, result interface{}, kind string, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return err
	}
	return g.do(req, result, kind, id)
}

func (g *Gateway) postJSON(ctx context.Context, path string, args interface{}, result interface{}, kind string, id string) error {
	var body io.Reader
	if args != nil {
		payload, err := json.Marshal(args)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, body)
	if err != nil {
		return err
	}
	if args != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return g.do(req, result, kind, id)
}

// do 发送请求并解包Response信封。业务码非0时映射为带类型错误。
func (g *Gateway) do(req *http.Request, result interface{}, kind string, id string) error {
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return &NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &NetworkError{Op: req.Method + " " + req.URL.Path,
			Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	envelope := struct {
		Code      int             `json:"code"`
		Message   string          `json:"message"`
		Data      json.RawMessage `json:"data"`
		RequestID string          `json:"requestId"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	if envelope.Code != int(model.ResponseStatusCodeSuccess) {
		g.xl.Debugf("%s %s failed, code %d reqid %s", req.Method, req.URL.Path, envelope.Code, envelope.RequestID)
		return mapResponseError(envelope.Code, envelope.Message, kind, id)
	}
	if result != nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return err
		}
	}
	return nil
}
