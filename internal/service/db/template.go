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

// TemplateService 会话模板管理。
type TemplateService struct {
	mongoClient  *mgo.Session
	templateColl *mgo.Collection
	xl           *xlog.Logger
}

func NewTemplateService(conf utils.MongoConfig, xl *xlog.Logger) (*TemplateService, error) {
	if xl == nil {
		xl = xlog.New("mock-cube-template-db")
	}
	mongoClient, err := mgo.Dial(conf.URI + "/" + conf.Database)
	if err != nil {
		xl.Errorf("failed to create mongo client, error %v", err)
		return nil, err
	}
	templateColl := mongoClient.DB(conf.Database).C(dao.CollectionTemplate)
	return &TemplateService{
		mongoClient:  mongoClient,
		templateColl: templateColl,
		xl:           xl,
	}, nil
}

func (c *TemplateService) CreateTemplate(xl *xlog.Logger, template *model.TemplateDo) (*model.TemplateDo, error) {
	if xl == nil {
		xl = c.xl
	}
	now := time.Now()
	template.CreatedTime = now
	template.UpdatedTime = now
	template.Status = model.TemplateAvailable
	err := c.templateColl.Insert(template)
	if err != nil {
		xl.Errorf("failed to insert template, error %v", err)
		return nil, err
	}
	return template, nil
}

func (c *TemplateService) GetTemplateByID(xl *xlog.Logger, id string) (*model.TemplateDo, error) {
	if xl == nil {
		xl = c.xl
	}
	template := model.TemplateDo{}
	err := c.templateColl.Find(bson.M{"_id": id, "status": model.TemplateAvailable}).One(&template)
	if err != nil {
		if err == mgo.ErrNotFound {
			xl.Infof("no such template %s", id)
			return nil, &errors2.ServerError{Code: errors2.ServerErrorTemplateNotFound}
		}
		xl.Errorf("failed to get template %s, error %v", id, err)
		return nil, err
	}
	return &template, nil
}

func (c *TemplateService) ListTemplatesByPage(xl *xlog.Logger, pageNum int, pageSize int) ([]model.TemplateDo, int, error) {
	if xl == nil {
		xl = c.xl
	}
	filter := bson.M{"status": model.TemplateAvailable}
	skip := (pageNum - 1) * pageSize
	templates := []model.TemplateDo{}
	err := c.templateColl.Find(filter).Sort("-created_time").Skip(skip).Limit(pageSize).All(&templates)
	if err != nil {
		xl.Errorf("failed to ListTemplates, error %v", err)
		return nil, 0, err
	}
	total, err := c.templateColl.Find(filter).Count()
	if err != nil {
		xl.Errorf("failed to count templates, error %v", err)
		return nil, 0, err
	}
	return templates, total, nil
}

// NewSessionFromTemplate 按模板生成一个未保存的会话对象。
func NewSessionFromTemplate(template *model.TemplateDo, creator string) *model.SessionDo {
	return &model.SessionDo{
		ID:               utils.GenerateID(),
		Title:            template.Name,
		Type:             template.Type,
		QuestionCount:    template.QuestionCount,
		DurationMinute:   template.DurationMinute,
		Difficulty:       template.Difficulty,
		Categories:       template.Categories,
		EnableCamera:     template.EnableCamera,
		EnableMicrophone: template.EnableMicrophone,
		TemplateId:       template.Id,
		Creator:          creator,
	}
}
