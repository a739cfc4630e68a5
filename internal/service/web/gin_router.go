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

package web

import (
	"net/http"
	"time"

	"github.com/solutions/mock-cube/internal/common/utils"
	"github.com/solutions/mock-cube/internal/protodef/model"
	"github.com/solutions/mock-cube/internal/service/cloud"
	"github.com/solutions/mock-cube/internal/service/db"
	"github.com/solutions/mock-cube/internal/service/web/handler"
	"github.com/solutions/mock-cube/internal/service/web/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
)

// NewRouter 返回gin router，分流API。
func NewRouter(config *utils.Config) (*gin.Engine, error) {
	// 1. 初始化GIN
	router := gin.New()
	router.Use(gin.Recovery())
	// 1.1. 全局CORS配置
	router.Use(corsMiddleware())

	// 2. 声明Service
	// 2.1 账号Service
	smsCodeService, err := cloud.NewSmsCodeService(config, nil)
	if err != nil {
		return nil, err
	}
	accountService, err := db.NewAccountService(*config.Mongo, config.JwtKey, nil)
	if err != nil {
		return nil, err
	}
	accountApiHandler := &handler.AccountApiHandler{
		Account:           accountService,
		SmsCode:           smsCodeService,
		DefaultAvatarURLs: config.DefaultAvatars,
	}

	// 2.2 业务Handler
	sessionApiHandler := handler.NewSessionApiHandler(*config)
	questionApiHandler := handler.NewQuestionApiHandler(*config)
	responseApiHandler := handler.NewResponseApiHandler(*config)
	analyticsApiHandler := handler.NewAnalyticsApiHandler(*config)
	exportApiHandler := handler.NewExportApiHandler(*config)

	middleware.InitMiddleware(*config)

	// 3. 配置V1路径
	v1 := router.Group("/v1", addApiVersion(model.ApiVersionV1), addRequestID, middleware.FetchPageInfo, middleware.ActionLogMiddleware())
	{
		// 3.1 发送验证码
		v1.POST("getSmsCode", accountApiHandler.SendSmsCode)
		v1.POST("getSmsCode/", accountApiHandler.SendSmsCode)
		// 3.2 登录/注册
		v1.POST("signUpOrIn", accountApiHandler.SignUpOrIn)
		v1.POST("signUpOrIn/", accountApiHandler.SignUpOrIn)
	}
	baseAuth := v1.Group("", middleware.Authenticate)
	{
		// 3.3 登出
		baseAuth.POST("signOut", accountApiHandler.SignOut)
		baseAuth.POST("signOut/", accountApiHandler.SignOut)
		// 3.4 用户信息获取
		baseAuth.GET("accountInfo", accountApiHandler.GetAccountInfo)
		baseAuth.GET("accountInfo/", accountApiHandler.GetAccountInfo)

		// 4.1 练习场景-会话列表
		baseAuth.GET("session", sessionApiHandler.ListAllSessions)
		baseAuth.GET("session/", sessionApiHandler.ListAllSessions)
		// 4.2 练习场景-创建会话
		baseAuth.POST("session", sessionApiHandler.CreateSession)
		baseAuth.POST("session/", sessionApiHandler.CreateSession)
		// 4.3 练习场景-按模板创建会话
		baseAuth.POST("sessionFromTemplate/:templateId", sessionApiHandler.CreateSessionFromTemplate)
		// 4.4 练习场景-会话详情
		baseAuth.GET("session/:sessionId", sessionApiHandler.GetSession)
		// 4.5 练习场景-删除会话
		baseAuth.DELETE("session/:sessionId", sessionApiHandler.DeleteSession)
		// 4.6 练习场景-状态流转
		baseAuth.POST("startSession/:sessionId", sessionApiHandler.StartSession)
		baseAuth.POST("pauseSession/:sessionId", sessionApiHandler.PauseSession)
		baseAuth.POST("resumeSession/:sessionId", sessionApiHandler.ResumeSession)
		baseAuth.POST("completeSession/:sessionId", sessionApiHandler.CompleteSession)
		baseAuth.POST("cancelSession/:sessionId", sessionApiHandler.CancelSession)
		// 4.7 练习场景-心跳
		baseAuth.GET("heartBeat/:sessionId", sessionApiHandler.HeartBeat)

		// 4.8 练习场景-会话模板
		baseAuth.GET("template", sessionApiHandler.ListTemplates)
		baseAuth.GET("template/", sessionApiHandler.ListTemplates)
		baseAuth.POST("template", sessionApiHandler.CreateTemplate)
		baseAuth.POST("template/", sessionApiHandler.CreateTemplate)

		// 5.1 题库管理
		baseAuth.GET("question", questionApiHandler.ListQuestions)
		baseAuth.GET("question/", questionApiHandler.ListQuestions)
		baseAuth.POST("question", questionApiHandler.AddQuestion)
		baseAuth.POST("question/", questionApiHandler.AddQuestion)
		baseAuth.POST("question/:questionId", questionApiHandler.UpdateQuestion)
		baseAuth.DELETE("question/:questionId", questionApiHandler.DeleteQuestion)
		// 5.2 练习场景-取下一题
		baseAuth.GET("nextQuestion/:sessionId", questionApiHandler.NextQuestion)

		// 6.1 练习场景-提交文字回答
		baseAuth.POST("submitResponse/:sessionId", responseApiHandler.SubmitResponse)
		// 6.2 练习场景-提交录制回答
		baseAuth.POST("submitResponseWithMedia/:sessionId", responseApiHandler.SubmitResponseWithMedia)
		// 6.3 练习场景-回答列表
		baseAuth.GET("response/:sessionId", responseApiHandler.ListResponses)
		// 6.4 客户端直传token
		baseAuth.GET("token/kodo", responseApiHandler.GetKodoToken)
		baseAuth.GET("token/kodo/", responseApiHandler.GetKodoToken)

		// 7.1 练习场景-会话分析
		baseAuth.GET("analytics/:sessionId", analyticsApiHandler.GetAnalytics)
		// 7.2 练习场景-逐题反馈
		baseAuth.GET("feedback/:sessionId", analyticsApiHandler.GetFeedback)
		// 7.3 练习场景-导出报告
		baseAuth.GET("exportReport/:sessionId", exportApiHandler.ExportReport)
	}

	router.NoRoute(addRequestID, returnNotFound)
	router.RedirectTrailingSlash = false

	return router, nil
}

// 增加当前接口调用版本
func addApiVersion(version model.ApiVersion) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(model.RequestApiVersion, version)
	}
}

func addRequestID(c *gin.Context) {
	requestID := ""
	if requestID = c.Request.Header.Get(model.RequestIDHeader); requestID == "" {
		requestID = utils.NewReqID()
		c.Request.Header.Set(model.RequestIDHeader, requestID)
	}
	xl := xlog.New(requestID)
	xl.Debugf("request: %s %s", c.Request.Method, c.Request.URL.Path)
	c.Set(model.XLogKey, xl)
	c.Set(model.RequestStartKey, time.Now())
}

func returnNotFound(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	xl.Debugf("%s %s: not found", c.Request.Method, c.Request.URL.Path)
	responseErr := model.NewResponseErrorNotFound()
	resp := model.NewFailResponse(*responseErr)
	c.JSON(http.StatusOK, resp)
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"POST", "OPTIONS", "GET", "PUT", "DELETE", "HEAD"},
		AllowHeaders: []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token",
			"Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		MaxAge: 12 * time.Hour,
	})
}
