package model

type ResponseError struct {
	// 自定义错误码。
	Code int `json:"code"`
	// 请求ID。
	RequestID string `json:"requestID"`
	// Message
	Message string `json:"message"`
}

const (
	ResponseErrorBadRequest         = 400000
	ResponseErrorNotLoggedIn        = 401001
	ResponseErrorWrongSMSCode       = 401002
	ResponseErrorBadToken           = 401003
	ResponseErrorValidation         = 401005
	ResponseErrorBadSessionStatus   = 401006
	ResponseErrorSessionCompleted   = 401007
	ResponseErrorEmptySubmission    = 401008
	ResponseErrorNoSuchUser         = 404001
	ResponseErrorNoSuchSession      = 404002
	ResponseErrorNoSuchQuestion     = 404003
	ResponseErrorNoSuchTemplate     = 404004
	ResponseErrorQuestionExhausted  = 404005
	ResponseErrorSMSSendTooFrequent = 429001
	ResponseErrorInternal           = 500000
	ResponseErrorExternalService    = 502001
	ResponseErrorUnauthorized       = 401000
	ResponseErrorNotFound           = 404000
)

// NewResponseErrorBadRequest 参数错误。
func NewResponseErrorBadRequest() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorBadRequest,
		Message: "参数错误",
	}
}

// NewResponseErrorNotLoggedIn 用户未登录。
func NewResponseErrorNotLoggedIn() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNotLoggedIn,
		Message: "not logged in",
	}
}

// NewResponseErrorWrongSMSCode 用户短信验证码错误。
func NewResponseErrorWrongSMSCode() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorWrongSMSCode,
		Message: "wrong sms code",
	}
}

// NewResponseErrorBadToken 登录token错误。
func NewResponseErrorBadToken() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorBadToken,
		Message: "bad token",
	}
}

// NewResponseErrorSMSSendTooFrequent 短信验证码已发送，短时间内不能重复发送。
func NewResponseErrorSMSSendTooFrequent() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorSMSSendTooFrequent,
		Message: "send sms code request limited",
	}
}

// NewResponseErrorInternal 其他内部服务错误。
func NewResponseErrorInternal() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorInternal,
		Message: "internal server error",
	}
}

// NewResponseErrorExternalService 调用外部服务错误。
func NewResponseErrorExternalService() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorExternalService,
		Message: "calling external service failed",
	}
}

// NewResponseErrorNoSuchUser 无此用户。
func NewResponseErrorNoSuchUser() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoSuchUser,
		Message: "no such user",
	}
}

// NewResponseErrorUnauthorized 一般的HTTP Unauthorized 错误。
func NewResponseErrorUnauthorized() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorUnauthorized,
		Message: "unauthorized",
	}
}

func NewResponseErrorNotFound() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNotFound,
		Message: "not found",
	}
}

// NewResponseErrorNoSuchSession 无此练习会话。
func NewResponseErrorNoSuchSession() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoSuchSession,
		Message: "no such session",
	}
}

// NewResponseErrorNoSuchQuestion 无此题目。
func NewResponseErrorNoSuchQuestion() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoSuchQuestion,
		Message: "no such question",
	}
}

// NewResponseErrorNoSuchTemplate 无此模板。
func NewResponseErrorNoSuchTemplate() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoSuchTemplate,
		Message: "no such template",
	}
}

// NewResponseErrorQuestionExhausted 题库中没有满足会话配置的题目。
func NewResponseErrorQuestionExhausted() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorQuestionExhausted,
		Message: "no question fits the session config",
	}
}

// NewResponseErrorBadSessionStatus 会话状态不允许该操作。
func NewResponseErrorBadSessionStatus() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorBadSessionStatus,
		Message: "operation not allowed in current session status",
	}
}

// NewResponseErrorSessionCompleted 会话已结束。
func NewResponseErrorSessionCompleted() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorSessionCompleted,
		Message: "session already completed",
	}
}

// NewResponseErrorEmptySubmission 回答内容为空。
func NewResponseErrorEmptySubmission() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorEmptySubmission,
		Message: "either text or recording is required",
	}
}

func NewResponseErrorValidation(err error) *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorValidation,
		Message: err.Error(),
	}
}

func NewResponseError(code int, message string) *ResponseError {
	return &ResponseError{
		Code:    code,
		Message: message,
	}
}
