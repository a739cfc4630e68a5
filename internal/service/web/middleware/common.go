package middleware

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/solutions/mock-cube/internal/common/utils"
	"github.com/solutions/mock-cube/internal/protodef/model"
	"github.com/solutions/mock-cube/internal/service/db/dao"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	defaultActionManager = NewActionManager(nil)
)

func FetchPageInfo(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	pageNumArg := c.DefaultQuery("pageNum", "1")
	pageSizeArg := c.DefaultQuery("pageSize", "10")
	pageNum, err := strconv.Atoi(pageNumArg)
	if err != nil {
		xl.Infof("FetchPageInfo.pageNum transfer int err, use default value %v", err)
		pageNum = 1
	}
	pageSize, err := strconv.Atoi(pageSizeArg)
	if err != nil {
		xl.Infof("FetchPageInfo.pageSize transfer int err, use default value %v", err)
		pageSize = 10
	}
	c.Set(model.PageNumContextKey, pageNum)
	c.Set(model.PageSizeContextKey, pageSize)
}

func ActionLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		method := c.Request.Method
		actionLog, _ := defaultActionManager.MatchRoute(method, path)
		c.Set(model.ActionLogContentKey, actionLog)
		c.Next()
		val, _ := c.Get(model.ActionLogContentKey)
		fromContext := val.(*Action)
		record := fromContext.With(c).genRecord()
		defaultActionManager.Save(record)
	}
}

var methodMsg = map[string]string{
	"POST":   "创建",
	"GET":    "获取",
	"DELETE": "删除",
	"PUT":    "更新",
}

var routeMsg = map[string]string{
	"GET accountInfo": "账户信息",

	"POST session":   "练习会话",
	"GET session":    "练习会话详情",
	"DELETE session": "练习会话",

	"heartBeat":       "传了会话心跳",
	"getSmsCode":      "获取验证码",
	"signUpOrIn":      "登入",
	"signOut":         "登出",
	"startSession":    "开始练习",
	"pauseSession":    "暂停练习",
	"resumeSession":   "继续练习",
	"completeSession": "提前结束练习",
	"cancelSession":   "取消练习",
	"nextQuestion":    "获取下一题",
	"submitResponse":  "提交回答",
	"GET analytics":   "练习统计",
	"GET feedback":    "练习反馈",
	"exportReport":    "导出报告",
}

type Action struct {
	method    string
	subject   string
	userInfo  string
	userPhone string
	msg       string
	time      time.Time
}

func NewAction(method string, subject string, msg string) *Action {
	return &Action{method: method, subject: subject, msg: msg}
}

type ActionRecord struct {
	Msg       string    `json:"msg"`
	UserPhone string    `json:"user_phone"`
	Time      time.Time `json:"time"`
	Method    string    `json:"method"`
	Subject   string    `json:"subject"`
}

func NewActionRecord(msg string, userPhone string, method string, subject string) *ActionRecord {
	return &ActionRecord{Msg: msg, UserPhone: userPhone, Time: time.Now(), Method: method, Subject: subject}
}

type ActionManager struct {
	Actions    []*Action
	actionColl *mgo.Collection
	fileLogger *lumberjack.Logger
	xl         *xlog.Logger
}

func NewActionManager(actions map[Action]string) *ActionManager {
	am := &ActionManager{xl: xlog.New("middleware.ActionManager")}
	if actions == nil {
		defaultActions := make([]*Action, 0)
		for k, v := range routeMsg {
			method, subject := parseMethodAndSubject(k)
			action := NewAction(method, subject, v)
			defaultActions = append(defaultActions, action)
		}
		am.Actions = defaultActions
	}
	return am
}

func (am *ActionManager) MatchRoute(method, path string) (*Action, bool) {
	pathSpec := parsePath(path)
	subject := strings.Join(pathSpec, " ")
	for _, action := range am.Actions {
		if (action.method == "ALL" || action.method == method) && action.subject == subject {
			return action, true
		}
	}
	return NewAction(method, subject, "default"), false
}

func (am *ActionManager) Save(action *ActionRecord) {
	if am.actionColl == nil {
		client, err := mgo.Dial(utils.DefaultConf.Mongo.URI)
		if err != nil {
			am.xl.Errorf("err connect mongo:%s", err)
			return
		}
		am.actionColl = client.DB(utils.DefaultConf.Mongo.Database).C(dao.ActionCollection)
	}
	err := am.actionColl.Insert(action)
	if err != nil {
		am.xl.Errorf("failed save action:%v", action)
	}
	am.appendToFile(action)
}

// appendToFile 流水同时落到本地文件，按大小滚动。
func (am *ActionManager) appendToFile(action *ActionRecord) {
	if utils.DefaultConf.ActionLogFile == "" {
		return
	}
	if am.fileLogger == nil {
		am.fileLogger = &lumberjack.Logger{
			Filename:   utils.DefaultConf.ActionLogFile,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     30,
		}
	}
	line, err := json.Marshal(action)
	if err != nil {
		return
	}
	_, err = am.fileLogger.Write(append(line, '\n'))
	if err != nil {
		am.xl.Errorf("failed write action log file:%v", err)
	}
}

func (a Action) String() string {
	methodStr := ""
	if a.method != "ALL" {
		methodStr += methodMsg[a.method]
	}
	return fmt.Sprintf("%s %s%s", a.userInfo, methodStr, a.msg)
}

func (a *Action) With(c *gin.Context) *Action {
	val, ok := c.Get(model.UserContextKey)
	if !ok {
		return a
	}
	user, ok := val.(model.AccountDo)
	if !ok {
		return a
	}
	a.userInfo = fmt.Sprintf("user %s", user.Phone)
	a.userPhone = user.Phone
	return a
}

func (a *Action) UserInfo(info string) {
	a.userInfo = info
}

func (a *Action) Msg(msg string) {
	a.msg = msg
}

func (a *Action) genRecord() *ActionRecord {
	return NewActionRecord(a.String(), a.userPhone, a.method, a.subject)
}

// /v1/startSession/:sessionId -> startSession
// parsePath skip first path item && skip param,may return nil
func parsePath(path string) []string {
	fields := strings.Split(path, "/")
	if len(fields) < 2 {
		return nil
	}
	noVersionFields := fields[2:]
	res := make([]string, 0)
	for _, part := range noVersionFields {
		if !strings.HasPrefix(part, ":") {
			res = append(res, part)
		}
	}
	return res
}

// GET session -> method="GET" subject="session"
// signUpOrIn -> method="ALL" subject="signUpOrIn"
func parseMethodAndSubject(val string) (method, subject string) {
	val = strings.TrimSpace(val)
	if val == "" {
		return "", ""
	}
	allowMethods := []string{"GET", "POST", "PUT", "DELETE"}
	for _, m := range allowMethods {
		index := strings.Index(val, m)
		if index != -1 {
			return m, strings.TrimSpace(val[index+len(m):])
		}
	}
	return "ALL", val
}
