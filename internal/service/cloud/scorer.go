package cloud

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/solutions/mock-cube/internal/common/utils"
	model "github.com/solutions/mock-cube/internal/protodef/model"

	"github.com/qiniu/x/xlog"
	"github.com/tidwall/gjson"
)

// Scorer Service
// 面向外部评分服务的客户端。评分算法由外部服务实现，这里只负责调用与结果解析。

type CallError struct {
	Api string
	Err error
}

func NewCallError(api string, err error) *CallError {
	return &CallError{Api: api, Err: err}
}

func (c CallError) Error() string {
	return fmt.Sprintf("call api %v error:%v", c.Api, c.Err)
}

type StatusCodeError struct {
	Code int
	Msg  string
}

func NewStatusCodeError(code int, msg string) *StatusCodeError {
	return &StatusCodeError{Code: code, Msg: msg}
}

func (s StatusCodeError) Error() string {
	return fmt.Sprintf("resp status %v", s.Code)
}

// ScoreResult 评分服务返回的单次评分结果。
type ScoreResult struct {
	Score          float64
	CriteriaScores []model.CriterionScoreDo
	Feedback       string
}

type ScorerClient struct {
	appId       string
	apiEndPoint string
	accessToken string
	client      *http.Client
}

func NewScorerClient(conf *utils.ScorerConfig) *ScorerClient {
	timeout := time.Duration(conf.TimeoutSecond) * time.Second
	if conf.TimeoutSecond == 0 {
		timeout = 10 * time.Second
	}
	return &ScorerClient{
		appId:       conf.AppID,
		apiEndPoint: conf.Endpoint,
		accessToken: conf.AppToken,
		client:      &http.Client{Timeout: timeout},
	}
}

// ScoreResponse /evaluate 对一条回答评分，返回分数、维度得分与文字反馈。
func (c *ScorerClient) ScoreResponse(xl *xlog.Logger, question *model.QuestionDo, response *model.ResponseDo) (*ScoreResult, error) {
	if xl == nil {
		xl = xlog.New("ScorerClient")
	}

	url := c.apiEndPoint + "/evaluate"
	var req = map[string]interface{}{
		"appId":        c.appId,
		"responseId":   response.Id,
		"questionText": question.Text,
		"category":     question.Category,
		"criteria":     question.EvaluationCriteria,
		"text":         response.Text,
		"mediaUrl":     response.MediaURL,
		"durationS":    response.DurationSecond,
	}

	resp, err := c.PostWithJson(url, req)
	if err != nil {
		xl.Errorf("call error %+v", err)
		return nil, NewCallError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		xl.Errorf("StatusCode %d", resp.StatusCode)
		return nil, NewStatusCodeError(resp.StatusCode, resp.Status)
	}

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	if err != nil {
		return nil, NewCallError(url, err)
	}
	res := buf.Bytes()
	if !gjson.ValidBytes(res) {
		xl.Errorf("invalid response json %s", string(res))
		return nil, NewCallError(url, fmt.Errorf("invalid response"))
	}
	result := gjson.ParseBytes(res)
	if result.Get("code").Int() != 0 {
		return nil, fmt.Errorf("scorer error code: %d message: %s",
			result.Get("code").Int(), result.Get("message").String())
	}
	score := &ScoreResult{
		Score:    result.Get("data.score").Float(),
		Feedback: result.Get("data.feedback").String(),
	}
	for _, item := range result.Get("data.criteria").Array() {
		score.CriteriaScores = append(score.CriteriaScores, model.CriterionScoreDo{
			Name:  item.Get("name").String(),
			Score: item.Get("score").Float(),
		})
	}
	return score, nil
}

func (c *ScorerClient) PostWithJson(url string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	return c.client.Do(req)
}
