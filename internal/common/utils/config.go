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

package utils

import (
	"log"
	"os"

	qconfig "github.com/qiniu/x/config"
)

var (
	DefaultConf Config
)

func InitConf(configFilePath string) {
	err := qconfig.LoadFile(&DefaultConf, configFilePath)
	if err != nil {
		log.Fatalf("failed to load config file, error %v", err)
	}
}

// MongoConfig mongo 数据库配置。
type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// QiniuKeyPair 七牛APIaccess key/secret key配置。
type QiniuKeyPair struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// QiniuSMSConfig 七牛云短信配置。
type QiniuSMSConfig struct {
	SignatureID string `json:"signature_id"`
	TemplateID  string `json:"template_id"`
}

// SMSConfig 短信服务配置。
type SMSConfig struct {
	Provider string `json:"provider"`
	// FixedCodes 固定的手机号->验证码组合，供测试用。
	FixedCodes map[string]string `json:"fixed_codes,omitempty"`
	QiniuSMS   *QiniuSMSConfig   `json:"qiniu_sms"`
}

// QiniuStorageConfig 七牛对象存储服务配置。
// Bucket 上传的面试录制文件所在的bucket。
// URLPrefix 上传的文件的下载URL前缀，一般为该bucket对应的默认域名。
type QiniuStorageConfig struct {
	Bucket    string `json:"bucket"`
	URLPrefix string `json:"url_prefix"`
}

// ScorerConfig 外部评分服务配置。评分服务负责对候选人的回答打分并生成反馈，
// 本服务只通过HTTP接口调用它，评分算法不在本仓库范围内。
type ScorerConfig struct {
	Endpoint string `json:"endpoint"`
	AppID    string `json:"app_id"`
	AppToken string `json:"app_token"`
	// TimeoutSecond 单次评分请求的超时时间。
	TimeoutSecond int `json:"timeout_s"`
}

// RongCloudIMConfig 融云IM服务配置。
type RongCloudIMConfig struct {
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
}

// IMConfig IM服务配置。
type IMConfig struct {
	Provider string `json:"provider"`
	// SystemUserID 系统用户ID。评分完成等系统通知以该用户身份下发。
	SystemUserID string             `json:"system_user_id"`
	RongCloud    *RongCloudIMConfig `json:"rongcloud"`
}

// PracticeConfig 练习会话的默认参数与边界。
type PracticeConfig struct {
	// MaxQuestionCount 单场练习允许配置的最大题目数。
	MaxQuestionCount int `json:"max_question_count"`
	// SessionIdleTimeoutMinute 进行中的会话超过该时间无心跳则被定时任务置为已取消。
	SessionIdleTimeoutMinute int `json:"session_idle_timeout_m"`
}

// Config 后端配置。
type Config struct {
	// debug等级，为1时输出info/warn/error日志，为0除以上外还输出debug日志
	DebugLevel int    `json:"debug_level"`
	ListenAddr string `json:"listen_addr"`
	// 默认头像列表，用户新注册时随机从中选取一个作为初始头像。
	DefaultAvatars []string `json:"default_avatars"`
	// 前端页面host
	FrontendUrlHost string              `json:"frontend_url_host"`
	ActionLogFile   string              `json:"action_log_file"`
	Mongo           *MongoConfig        `json:"mongo"`
	QiniuKeyPair    QiniuKeyPair        `json:"qiniu_key_pair"`
	Storage         *QiniuStorageConfig `json:"storage"`
	SMS             *SMSConfig          `json:"sms"`
	Scorer          *ScorerConfig       `json:"scorer"`
	IM              *IMConfig           `json:"im"`
	Practice        PracticeConfig      `json:"practice"`
	JwtKey          string              `json:"jwt_key"`
}

// NewSample 返回样例配置。
func NewSample() *Config {
	return &Config{
		DebugLevel:     0,
		ListenAddr:     ":8080",
		DefaultAvatars: []string{"1.jpg"},
		Mongo: &MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "mock_cube_test",
		},
		SMS: &SMSConfig{
			Provider: "test",
			QiniuSMS: &QiniuSMSConfig{
				SignatureID: os.Getenv("QINIU_SMS_SIGN_ID"),
				TemplateID:  os.Getenv("QINIU_SMS_TEMP_ID"),
			},
		},
		Storage: &QiniuStorageConfig{
			Bucket: "mock-cube-media",
		},
		Scorer: &ScorerConfig{
			Endpoint:      "http://localhost:9090",
			TimeoutSecond: 10,
		},
		IM: &IMConfig{
			Provider: "test",
			RongCloud: &RongCloudIMConfig{
				AppKey:    os.Getenv("RONGCLOUD_APP_KEY"),
				AppSecret: os.Getenv("RONGCLOUD_APP_SECRET"),
			},
		},
		Practice: PracticeConfig{
			MaxQuestionCount:         50,
			SessionIdleTimeoutMinute: 30,
		},
	}
}
