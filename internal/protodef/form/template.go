package form

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/solutions/mock-cube/internal/protodef/model"
)

// TemplateCreateForm 创建会话模板的表单。校验规则与会话创建一致。
type TemplateCreateForm struct {
	Name             string   `form:"name" json:"name"`
	Desc             string   `form:"desc" json:"desc"`
	Type             string   `form:"type" json:"type"`
	QuestionCount    int      `form:"questionCount" json:"questionCount"`
	DurationMinute   int      `form:"durationMinute" json:"durationMinute"`
	Difficulty       string   `form:"difficulty" json:"difficulty"`
	Categories       []string `form:"categories[]" json:"categories"`
	EnableCamera     bool     `form:"enableCamera" json:"enableCamera"`
	EnableMicrophone bool     `form:"enableMicrophone" json:"enableMicrophone"`
}

func (f *TemplateCreateForm) Validate() error {
	err := validation.ValidateStruct(f,
		validation.Field(&f.Name, validation.Required, validation.Length(0, 100)),
		validation.Field(&f.Type, validation.Required,
			validation.In(model.SessionTypeTechnical, model.SessionTypeBehavioral, model.SessionTypeMixed)),
		validation.Field(&f.QuestionCount, validation.Required,
			validation.Min(1).Error(ErrCountMsg), validation.Max(50).Error(ErrCountMsg)),
		validation.Field(&f.Difficulty, validation.Required,
			validation.In(model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard)),
		validation.Field(&f.Categories, validation.Required.Error(ErrCategoriesMsg),
			validation.Length(1, 0).Error(ErrCategoriesMsg)),
	)
	return err
}
