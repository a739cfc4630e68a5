package handler

import (
	"fmt"
	"math/rand"
	"net/http"
	"regexp"
	"time"

	"github.com/solutions/mock-cube/internal/common/utils"
	errors2 "github.com/solutions/mock-cube/internal/protodef/errors"
	model "github.com/solutions/mock-cube/internal/protodef/model"
	"github.com/solutions/mock-cube/internal/service/web/middleware"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
)

type SmsCodeInterface interface {
	Send(xl *xlog.Logger, phone string) (err error)
	Validate(xl *xlog.Logger, phone string, smsCode string) (err error)
}

type AccountInterface interface {
	// GetAccountByPhone 通过手机号查询账号
	GetAccountByPhone(xl *xlog.Logger, phone string) (*model.AccountDo, error)

	GetAccountByID(xl *xlog.Logger, id string) (*model.AccountDo, error)

	CreateAccount(xl *xlog.Logger, account *model.AccountDo) error

	UpdateAccount(xl *xlog.Logger, id string, account *model.AccountDo) (*model.AccountDo, error)

	AccountLogin(xl *xlog.Logger, id string) (user *model.AccountTokenDo, err error)

	AccountLogout(xl *xlog.Logger, id string) error

	DeleteAccount(xl *xlog.Logger, id string) error
}

type AccountApiHandler struct {
	Account           AccountInterface
	SmsCode           SmsCodeInterface
	DefaultAvatarURLs []string
}

// validatePhone 检查手机号码是否符合规则。
func validatePhone(phone string) bool {
	phoneRegExp := regexp.MustCompile(`1[3-9][0-9]{9}`)
	return phoneRegExp.MatchString(phone)
}

// SendSmsCode 发送验证码短信
func (h *AccountApiHandler) SendSmsCode(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	args := model.GetSmsCodeArgs{}
	err := c.Bind(&args)
	if err != nil {
		responseErr := model.NewResponseErrorBadRequest()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	if !validatePhone(args.Phone) {
		responseErr := model.NewResponseErrorBadRequest()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID).WithErrorMessage("手机号不合法")
		c.JSON(http.StatusOK, resp)
		return
	}
	messageSendErr := h.SmsCode.Send(xl, args.Phone)
	if messageSendErr != nil {
		serverErr, ok := messageSendErr.(*errors2.ServerError)
		if ok && serverErr.Code == errors2.ServerErrorSMSSendTooFrequent {
			xl.Infof("SMS code has been sent to %s, cannot resend in short time", args.Phone)
			responseErr := model.NewResponseErrorSMSSendTooFrequent()
			resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
			c.JSON(http.StatusOK, resp)
			return
		}
		xl.Errorf("failed to send sms code to phone number %s, error %v", args.Phone, messageSendErr)
		c.JSON(http.StatusInternalServerError, messageSendErr)
		return
	}
	xl.Infof("SMS code sent to number %s", args.Phone)
	h.actionLog(c).UserInfo(fmt.Sprintf("unauthorized user %s", args.Phone))
	resp := &model.Response{
		Code:    int(model.ResponseStatusCodeSuccess),
		Message: string(model.ResponseStatusMessageSuccess),
		Data:    nil,
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AccountApiHandler) generateNicknameByPhone(phone string) string {
	namePrefix := "用户_"
	if len(phone) < 4 {
		return namePrefix + phone
	}
	return namePrefix + phone[len(phone)-4:]
}

func (h *AccountApiHandler) generateInitialAvatar() string {
	if len(h.DefaultAvatarURLs) == 0 {
		return ""
	}
	index := rand.Intn(len(h.DefaultAvatarURLs))
	return h.DefaultAvatarURLs[index]
}

func (h *AccountApiHandler) SignUpOrIn(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	args := model.SMSLoginArgs{}
	err := c.Bind(&args)
	if err != nil {
		xl.Infof("SignUpOrIn: invalid args in body, error %v", err)
		responseErr := model.NewResponseErrorBadRequest()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}

	err = h.SmsCode.Validate(xl, args.Phone, args.SMSCode)
	if err != nil {
		xl.Infof("SignUpOrIn: validate SMS code failed, error %v", err)
		responseErr := model.NewResponseErrorWrongSMSCode()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	account, err := h.Account.GetAccountByPhone(xl, args.Phone)
	if err != nil {
		if err.Error() == "not found" {
			xl.Infof("SignUpOrIn: phone number %s not found, create new account", args.Phone)
			newAccount := &model.AccountDo{
				ID:           utils.GenerateID(),
				Nickname:     h.generateNicknameByPhone(args.Phone),
				Phone:        args.Phone,
				Avatar:       h.generateInitialAvatar(),
				RegisterIP:   c.ClientIP(),
				RegisterTime: time.Now(),
			}
			createErr := h.Account.CreateAccount(xl, newAccount)
			if createErr != nil {
				xl.Errorf("SignUpOrIn: failed to create account, error %v", createErr)
				responseErr := model.NewResponseErrorInternal()
				resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
				c.JSON(http.StatusOK, resp)
				return
			}
			account = newAccount
		} else {
			xl.Errorf("SignUpOrIn: get account by phone number failed, error %v", err)
			responseErr := model.NewResponseErrorInternal()
			resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
			c.JSON(http.StatusOK, resp)
			return
		}
	}
	xl.Infof("SignUpOrIn: accountId => %s", account.ID)

	// 更新该账号状态为已登录。
	user, err := h.Account.AccountLogin(xl, account.ID)
	if err != nil {
		xl.Errorf("failed to set account %s to status logged in, error %v", account.ID, err)
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}

	h.actionLog(c).UserInfo(fmt.Sprintf("user %s", args.Phone))
	res := model.NewSuccessResponse(model.SignUpOrInResponse{
		UserInfoResponse: model.UserInfoResponse{
			ID:       account.ID,
			Nickname: account.Nickname,
			Avatar:   account.Avatar,
			Phone:    account.Phone,
		},
		Token: user.Token,
	})
	c.JSON(http.StatusOK, res)
}

func (h *AccountApiHandler) SignOut(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	err := h.Account.AccountLogout(xl, userID)
	if err != nil {
		xl.Errorf("user %s log out error: %v", userID, err)
		responseErr := model.NewResponseErrorNotLoggedIn()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	xl.Infof("user %s logged out", userID)
	res := model.NewSuccessResponse(nil)
	c.JSON(http.StatusOK, res)
}

func (h *AccountApiHandler) GetAccountInfo(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	accountId := c.GetString(model.UserIDContextKey)
	account, err := h.Account.GetAccountByID(xl, accountId)
	if err != nil {
		xl.Infof("cannot find account, error %v", err)
		responseErr := model.NewResponseErrorNoSuchUser()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}

	res := model.NewSuccessResponse(model.UserInfoResponse{
		ID:       account.ID,
		Nickname: account.Nickname,
		Avatar:   account.Avatar,
		Phone:    account.Phone,
	})
	c.JSON(http.StatusOK, res)
}

func (h *AccountApiHandler) actionLog(c *gin.Context) *middleware.Action {
	val, ok := c.Get(model.ActionLogContentKey)
	if ok {
		return val.(*middleware.Action)
	}
	a := &middleware.Action{}
	c.Set(model.ActionLogContentKey, a)
	return a
}
