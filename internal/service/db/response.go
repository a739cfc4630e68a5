package db

import (
	"time"

	"github.com/solutions/mock-cube/internal/common/utils"
	errors2 "github.com/solutions/mock-cube/internal/protodef/errors"
	model "github.com/solutions/mock-cube/internal/protodef/model"
	dao "github.com/solutions/mock-cube/internal/service/db/dao"

	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// ResponseService 回答的存储与评分回填。
type ResponseService struct {
	mongoClient   *mgo.Session
	responseColl  *mgo.Collection
	mediaFileColl *mgo.Collection
	xl            *xlog.Logger
}

func NewResponseService(conf utils.MongoConfig, xl *xlog.Logger) (*ResponseService, error) {
	if xl == nil {
		xl = xlog.New("mock-cube-response-db")
	}
	mongoClient, err := mgo.Dial(conf.URI + "/" + conf.Database)
	if err != nil {
		xl.Errorf("failed to create mongo client, error %v", err)
		return nil, err
	}
	responseColl := mongoClient.DB(conf.Database).C(dao.CollectionResponse)
	mediaFileColl := mongoClient.DB(conf.Database).C(dao.CollectionMediaFile)
	return &ResponseService{
		mongoClient:   mongoClient,
		responseColl:  responseColl,
		mediaFileColl: mediaFileColl,
		xl:            xl,
	}, nil
}

// CreateResponse 保存一条回答。同一会话同一题目下标只保留一条，重复提交覆盖旧回答。
func (c *ResponseService) CreateResponse(xl *xlog.Logger, response *model.ResponseDo) (*model.ResponseDo, error) {
	if xl == nil {
		xl = c.xl
	}
	now := time.Now()
	response.CreatedTime = now
	response.UpdatedTime = now
	response.Status = model.ResponseStatusPending
	_, err := c.responseColl.Upsert(
		bson.M{"session_id": response.SessionId, "question_index": response.QuestionIndex},
		response)
	if err != nil {
		xl.Errorf("failed to insert response of session %s, error %v", response.SessionId, err)
		return nil, err
	}
	xl.Infof("session %s question #%d response %s saved", response.SessionId, response.QuestionIndex, response.Id)
	return response, nil
}

func (c *ResponseService) GetResponseByID(xl *xlog.Logger, id string) (*model.ResponseDo, error) {
	if xl == nil {
		xl = c.xl
	}
	response := model.ResponseDo{}
	err := c.responseColl.Find(bson.M{"_id": id}).One(&response)
	if err != nil {
		if err == mgo.ErrNotFound {
			return nil, &errors2.ServerError{Code: errors2.ServerErrorResponseNotFound}
		}
		xl.Errorf("failed to get response %s, error %v", id, err)
		return nil, err
	}
	return &response, nil
}

func (c *ResponseService) ListResponsesBySession(xl *xlog.Logger, sessionID string) ([]model.ResponseDo, error) {
	if xl == nil {
		xl = c.xl
	}
	responses := []model.ResponseDo{}
	err := c.responseColl.Find(bson.M{"session_id": sessionID}).Sort("question_index").All(&responses)
	if err != nil {
		xl.Errorf("failed to ListResponses of session %s, error %v", sessionID, err)
		return nil, err
	}
	return responses, nil
}

// ListPendingResponses 列举等待评分的回答，供评分任务消费。
func (c *ResponseService) ListPendingResponses(xl *xlog.Logger, limit int) ([]model.ResponseDo, error) {
	if xl == nil {
		xl = c.xl
	}
	if limit <= 0 {
		limit = 10
	}
	responses := []model.ResponseDo{}
	err := c.responseColl.Find(bson.M{"status": model.ResponseStatusPending}).
		Sort("created_time").Limit(limit).All(&responses)
	if err != nil {
		xl.Errorf("failed to ListPendingResponses, error %v", err)
		return nil, err
	}
	return responses, nil
}

// FillScore 回填评分结果并把回答置为已评分。
func (c *ResponseService) FillScore(xl *xlog.Logger, id string, score float64, criteria []model.CriterionScoreDo, feedback string) error {
	if xl == nil {
		xl = c.xl
	}
	err := c.responseColl.Update(bson.M{"_id": id}, bson.M{"$set": bson.M{
		"score":           score,
		"criteria_scores": criteria,
		"feedback":        feedback,
		"status":          model.ResponseStatusScored,
		"updated_time":    time.Now(),
	}})
	if err != nil {
		if err == mgo.ErrNotFound {
			return &errors2.ServerError{Code: errors2.ServerErrorResponseNotFound}
		}
		xl.Errorf("failed to fill score of response %s, error %v", id, err)
		return err
	}
	return nil
}

// CountBySessionAndStatus 统计会话内某状态的回答数。
func (c *ResponseService) CountBySessionAndStatus(xl *xlog.Logger, sessionID string, status int) (int, error) {
	if xl == nil {
		xl = c.xl
	}
	count, err := c.responseColl.Find(bson.M{"session_id": sessionID, "status": status}).Count()
	if err != nil {
		xl.Errorf("failed to count responses of session %s, error %v", sessionID, err)
		return 0, err
	}
	return count, nil
}

// InsertMediaFile 记录一次录制文件上传。
func (c *ResponseService) InsertMediaFile(xl *xlog.Logger, file *model.MediaFileDo) (*model.MediaFileDo, error) {
	if xl == nil {
		xl = c.xl
	}
	file.CreatedTime = time.Now()
	file.Status = model.MediaFileStatusNormal
	err := c.mediaFileColl.Insert(file)
	if err != nil {
		xl.Errorf("failed to insert media file record, error %v", err)
		return nil, err
	}
	return file, nil
}

// DeleteBySession 删除会话的全部回答与录制记录，删除会话时级联调用。
func (c *ResponseService) DeleteBySession(xl *xlog.Logger, sessionID string) error {
	if xl == nil {
		xl = c.xl
	}
	_, err := c.responseColl.RemoveAll(bson.M{"session_id": sessionID})
	if err != nil {
		xl.Errorf("failed to remove responses of session %s, error %v", sessionID, err)
		return err
	}
	_, err = c.mediaFileColl.RemoveAll(bson.M{"session_id": sessionID})
	if err != nil {
		xl.Errorf("failed to remove media files of session %s, error %v", sessionID, err)
		return err
	}
	return nil
}
