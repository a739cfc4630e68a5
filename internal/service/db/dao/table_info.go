package dao

const (
	// CollectionAccount 存储账号信息的表。
	CollectionAccount = "accounts"
	// CollectionAccountToken 存储已登录用户的表。
	CollectionAccountToken = "account_token"

	// CollectionSMSCode 存储已发送的短信验证码的表。
	CollectionSMSCode = "sms_code"

	// CollectionSession 练习会话表。
	CollectionSession = "practice_sessions"

	// CollectionQuestion 题库表。
	CollectionQuestion = "questions"

	// CollectionResponse 回答表。
	CollectionResponse = "responses"

	// CollectionTemplate 会话模板表。
	CollectionTemplate = "session_templates"

	// CollectionMediaFile 录制文件记录表。
	CollectionMediaFile = "media_files"

	// ActionCollection 全局日志流水
	ActionCollection = "actions"
)
