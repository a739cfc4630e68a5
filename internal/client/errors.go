package client

import (
	"fmt"

	model "github.com/solutions/mock-cube/internal/protodef/model"
)

// NetworkError 请求未到达服务端或响应未完整返回。可安全重试。
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error on %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError 参数在本地校验阶段被拒绝，未发出网络请求。
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NotFoundError 服务端找不到目标资源。
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// APIError 服务端返回了非成功的业务码。
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error code %d: %s", e.Code, e.Message)
}

// mapResponseError 把服务端业务码映射为客户端错误类型。
func mapResponseError(code int, message string, kind string, id string) error {
	switch code {
	case model.ResponseErrorNoSuchSession, model.ResponseErrorNoSuchQuestion,
		model.ResponseErrorNoSuchUser, model.ResponseErrorNoSuchTemplate,
		model.ResponseErrorNotFound:
		return &NotFoundError{Kind: kind, ID: id}
	default:
		return &APIError{Code: code, Message: message}
	}
}
