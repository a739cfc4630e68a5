package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solutions/mock-cube/internal/protodef/form"
	model "github.com/solutions/mock-cube/internal/protodef/model"

	"github.com/stretchr/testify/assert"
)

func TestCreateSessionValidatesBeforeNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	g := NewGateway(server.URL, "token", nil)
	// 分类为空，应在本地被拒绝。
	_, err := g.CreateSession(context.Background(), &form.SessionCreateForm{
		Title:         "mock session",
		Type:          model.SessionTypeTechnical,
		QuestionCount: 5,
		Difficulty:    model.DifficultyMedium,
		Categories:    nil,
	})
	assert.Error(t, err)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.False(t, called, "invalid form must not reach the server")
}

func TestCreateSessionSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/session", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"message":"success","data":{"id":"s-123"},"requestId":"req-1"}`))
	}))
	defer server.Close()

	g := NewGateway(server.URL, "token", nil)
	id, err := g.CreateSession(context.Background(), &form.SessionCreateForm{
		Title:         "mock session",
		Type:          model.SessionTypeTechnical,
		QuestionCount: 5,
		Difficulty:    model.DifficultyMedium,
		Categories:    []string{"algorithms"},
	})
	assert.NoError(t, err)
	assert.Equal(t, "s-123", id)
}

func TestGetSessionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":404002,"message":"no such session","data":null,"requestId":"req-2"}`))
	}))
	defer server.Close()

	g := NewGateway(server.URL, "token", nil)
	_, err := g.GetSession(context.Background(), "missing")
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "missing", notFoundErr.ID)
}

func TestGetSessionAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":401006,"message":"operation not allowed in current session status","data":null,"requestId":"req-3"}`))
	}))
	defer server.Close()

	g := NewGateway(server.URL, "token", nil)
	_, err := g.StartSession(context.Background(), "s-1")
	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, model.ResponseErrorBadSessionStatus, apiErr.Code)
}

func TestGatewayNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	g := NewGateway(server.URL, "token", nil)
	_, err := g.GetSession(context.Background(), "s-1")
	var networkErr *NetworkError
	assert.ErrorAs(t, err, &networkErr)
}

func TestSubmitResponseEmptyText(t *testing.T) {
	g := NewGateway("http://127.0.0.1:0", "token", nil)
	_, err := g.SubmitResponse(context.Background(), "s-1", &model.SubmitResponseArgs{})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestSignOutClearsTokenOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":500000,"message":"internal error","data":null,"requestId":"req-5"}`))
	}))
	defer server.Close()

	g := NewGateway(server.URL, "token", nil)
	err := g.SignOut(context.Background())
	// 服务端作废失败照样清除本地token。
	assert.Error(t, err)
	assert.Empty(t, g.token)
}

func TestDeleteSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v1/session/s-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"code":0,"message":"success","data":null,"requestId":"req-6"}`))
	}))
	defer server.Close()

	g := NewGateway(server.URL, "token", nil)
	assert.NoError(t, g.DeleteSession(context.Background(), "s-1"))
}

func TestSubmitResponseSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/submitResponse/s-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"code":0,"message":"success","data":{"responseId":"r-1","currentQuestionIndex":1,"completed":false},"requestId":"req-4"}`))
	}))
	defer server.Close()

	g := NewGateway(server.URL, "token", nil)
	result, err := g.SubmitResponse(context.Background(), "s-1", &model.SubmitResponseArgs{
		QuestionId:     "q-1",
		QuestionIndex:  0,
		Text:           "my answer",
		DurationSecond: 60,
		ThinkingSecond: 10,
	})
	assert.NoError(t, err)
	assert.Equal(t, "r-1", result.ResponseId)
	assert.Equal(t, 1, result.CurrentQuestionIndex)
	assert.False(t, result.Completed)
}
