package cloud

import (
	"fmt"

	"github.com/solutions/mock-cube/internal/common/utils"

	"github.com/qiniu/x/xlog"
	rcsdk "github.com/rongcloud/server-sdk-go/v3/sdk"
)

// NotifyService 系统通知下发。评分完成等事件以系统用户身份通过IM私信通知用户。
type NotifyService interface {
	NotifyFeedbackReady(xl *xlog.Logger, userID string, sessionID string, totalScore float64) error
}

// RongCloudNotifyService 融云IM通知控制器。
type RongCloudNotifyService struct {
	appKey    string
	appSecret string
	// systemUserID 系统用户ID，系统通知以该用户身份发送。
	systemUserID    string
	rongCloudClient *rcsdk.RongCloud
	xl              *xlog.Logger
}

// NewRongCloudNotifyService 创建新的融云IM通知控制器。
func NewRongCloudNotifyService(conf *utils.IMConfig) *RongCloudNotifyService {
	c := &RongCloudNotifyService{
		appKey:          conf.RongCloud.AppKey,
		appSecret:       conf.RongCloud.AppSecret,
		systemUserID:    conf.SystemUserID,
		rongCloudClient: rcsdk.NewRongCloud(conf.RongCloud.AppKey, conf.RongCloud.AppSecret),
		xl:              xlog.New("mock-cube-rongcloud-notify"),
	}
	return c
}

// NotifyFeedbackReady 通知用户练习报告已生成。失败只记录日志，不影响评分流程。
func (c *RongCloudNotifyService) NotifyFeedbackReady(xl *xlog.Logger, userID string, sessionID string, totalScore float64) error {
	if xl == nil {
		xl = c.xl
	}
	content := fmt.Sprintf(`{"content":"你的练习报告已生成，总分%.1f，会话ID %s","extra":""}`, totalScore, sessionID)
	msg := rcsdk.TXTMsg{
		Content: content,
	}
	err := c.rongCloudClient.PrivateSend(c.systemUserID, []string{userID}, "RC:TxtMsg", &msg,
		"", "", 0, 0, 0, 0, 0)
	if err != nil {
		xl.Errorf("failed to send feedback notify to user %s, error %v", userID, err)
		return err
	}
	xl.Infof("feedback notify sent to user %s for session %s", userID, sessionID)
	return nil
}

// mockNotifyService 测试环境通知器，仅打日志。
type mockNotifyService struct {
	xl *xlog.Logger
}

func NewMockNotifyService() NotifyService {
	return &mockNotifyService{xl: xlog.New("mock-cube-mock-notify")}
}

func (m *mockNotifyService) NotifyFeedbackReady(xl *xlog.Logger, userID string, sessionID string, totalScore float64) error {
	if xl == nil {
		xl = m.xl
	}
	xl.Infof("mock notify: user %s session %s score %.1f", userID, sessionID, totalScore)
	return nil
}

// NewNotifyService 按配置选择通知器实现。
func NewNotifyService(conf *utils.IMConfig) (NotifyService, error) {
	switch conf.Provider {
	case "test":
		return NewMockNotifyService(), nil
	case "rongcloud":
		return NewRongCloudNotifyService(conf), nil
	}
	return nil, fmt.Errorf("unsupported IM provider %s", conf.Provider)
}
