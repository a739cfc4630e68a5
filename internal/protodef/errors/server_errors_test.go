package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerErrorCodesDistinct(t *testing.T) {
	codes := []int{
		ServerErrorUserNotLoggedin,
		ServerErrorUserNoPermission,
		ServerErrorUserNotfound,
		ServerErrorSessionNotFound,
		ServerErrorQuestionNotFound,
		ServerErrorResponseNotFound,
		ServerErrorSessionCompleted,
		ServerErrorBadSessionStatus,
		ServerErrorTemplateNotFound,
		ServerErrorSMSSendTooFrequent,
		ServerErrorQuestionExhausted,
		ServerErrorMongoOpFail,
		ServerErrorSMSSendFail,
		ServerErrorScorerFail,
		ServerErrorStorageFail,
		ServerErrorIMNotifyFail,
	}
	seen := map[int]bool{}
	for _, code := range codes {
		assert.False(t, seen[code], "duplicate server error code %d", code)
		seen[code] = true
	}
	// 模板与会话不存在使用各自独立的错误码。
	assert.NotEqual(t, ServerErrorSessionNotFound, ServerErrorTemplateNotFound)
}
