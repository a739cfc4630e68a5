package db

import (
	"math/rand"
	"time"

	"github.com/solutions/mock-cube/internal/common/utils"
	errors2 "github.com/solutions/mock-cube/internal/protodef/errors"
	model "github.com/solutions/mock-cube/internal/protodef/model"
	dao "github.com/solutions/mock-cube/internal/service/db/dao"

	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// QuestionService 题库管理与按会话配置选题。
type QuestionService struct {
	mongoClient  *mgo.Session
	questionColl *mgo.Collection
	responseColl *mgo.Collection
	xl           *xlog.Logger
}

func NewQuestionService(conf utils.MongoConfig, xl *xlog.Logger) (*QuestionService, error) {
	if xl == nil {
		xl = xlog.New("mock-cube-question-db")
	}
	mongoClient, err := mgo.Dial(conf.URI + "/" + conf.Database)
	if err != nil {
		xl.Errorf("failed to create mongo client, error %v", err)
		return nil, err
	}
	questionColl := mongoClient.DB(conf.Database).C(dao.CollectionQuestion)
	responseColl := mongoClient.DB(conf.Database).C(dao.CollectionResponse)
	return &QuestionService{
		mongoClient:  mongoClient,
		questionColl: questionColl,
		responseColl: responseColl,
		xl:           xl,
	}, nil
}

func (c *QuestionService) CreateQuestion(xl *xlog.Logger, question *model.QuestionDo) (*model.QuestionDo, error) {
	if xl == nil {
		xl = c.xl
	}
	now := time.Now()
	question.CreatedTime = now
	question.UpdatedTime = now
	question.Status = model.QuestionAvailable
	err := c.questionColl.Insert(question)
	if err != nil {
		xl.Errorf("failed to insert question, error %v", err)
		return nil, err
	}
	return question, nil
}

func (c *QuestionService) GetQuestionByID(xl *xlog.Logger, questionID string) (*model.QuestionDo, error) {
	if xl == nil {
		xl = c.xl
	}
	question := model.QuestionDo{}
	err := c.questionColl.Find(bson.M{"_id": questionID, "status": model.QuestionAvailable}).One(&question)
	if err != nil {
		if err == mgo.ErrNotFound {
			xl.Infof("no such question %s", questionID)
			return nil, &errors2.ServerError{Code: errors2.ServerErrorQuestionNotFound}
		}
		xl.Errorf("failed to get question %s, error %v", questionID, err)
		return nil, err
	}
	return &question, nil
}

func (c *QuestionService) UpdateQuestion(xl *xlog.Logger, id string, question *model.QuestionDo) (*model.QuestionDo, error) {
	if xl == nil {
		xl = c.xl
	}
	question.UpdatedTime = time.Now()
	err := c.questionColl.Update(bson.M{"_id": id}, bson.M{"$set": question})
	if err != nil {
		if err == mgo.ErrNotFound {
			return nil, &errors2.ServerError{Code: errors2.ServerErrorQuestionNotFound}
		}
		xl.Errorf("failed to update question %s,error %v", id, err)
		return nil, err
	}
	return question, nil
}

// DeleteQuestion 软删除题目，已有回答仍可引用。
func (c *QuestionService) DeleteQuestion(xl *xlog.Logger, id string) error {
	if xl == nil {
		xl = c.xl
	}
	err := c.questionColl.Update(bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": model.QuestionUnavailable, "updated_time": time.Now()}})
	if err != nil {
		if err == mgo.ErrNotFound {
			return &errors2.ServerError{Code: errors2.ServerErrorQuestionNotFound}
		}
		xl.Errorf("failed to delete question %s, error %v", id, err)
		return err
	}
	return nil
}

func (c *QuestionService) ListQuestionsByPage(xl *xlog.Logger, category string, pageNum int, pageSize int) ([]model.QuestionDo, int, error) {
	if xl == nil {
		xl = c.xl
	}
	filter := bson.M{"status": model.QuestionAvailable}
	if category != "" {
		filter["category"] = category
	}
	skip := (pageNum - 1) * pageSize
	questions := []model.QuestionDo{}
	err := c.questionColl.Find(filter).Sort("-created_time").Skip(skip).Limit(pageSize).All(&questions)
	if err != nil {
		xl.Errorf("failed to ListQuestions, error %v", err)
		return nil, 0, err
	}
	total, err := c.questionColl.Find(filter).Count()
	if err != nil {
		xl.Errorf("failed to count questions, error %v", err)
		return nil, 0, err
	}
	return questions, total, nil
}

// PickQuestionForSession 按会话配置（分类集合、难度）选题，排除本会话已回答过的题目。
// 题库中没有可用题目时返回ServerErrorQuestionExhausted。
func (c *QuestionService) PickQuestionForSession(xl *xlog.Logger, session *model.SessionDo) (*model.QuestionDo, error) {
	if xl == nil {
		xl = c.xl
	}
	answered := []string{}
	err := c.responseColl.Find(bson.M{"session_id": session.ID}).Distinct("question_id", &answered)
	if err != nil && err != mgo.ErrNotFound {
		xl.Errorf("failed to list answered questions of session %s, error %v", session.ID, err)
		return nil, err
	}
	filter := bson.M{
		"status":     model.QuestionAvailable,
		"category":   bson.M{"$in": session.Categories},
		"difficulty": session.Difficulty,
	}
	if len(answered) > 0 {
		filter["_id"] = bson.M{"$nin": answered}
	}
	candidates := []model.QuestionDo{}
	err = c.questionColl.Find(filter).Limit(50).All(&candidates)
	if err != nil {
		xl.Errorf("failed to pick question for session %s, error %v", session.ID, err)
		return nil, err
	}
	if len(candidates) == 0 {
		// 放宽难度限制再试一次，题库规模小的时候难度不全。
		delete(filter, "difficulty")
		err = c.questionColl.Find(filter).Limit(50).All(&candidates)
		if err != nil {
			xl.Errorf("failed to pick question for session %s, error %v", session.ID, err)
			return nil, err
		}
	}
	if len(candidates) == 0 {
		xl.Infof("question exhausted for session %s", session.ID)
		return nil, &errors2.ServerError{Code: errors2.ServerErrorQuestionExhausted}
	}
	question := candidates[rand.Intn(len(candidates))]
	return &question, nil
}
