package form

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/solutions/mock-cube/internal/protodef/model"
)

type SessionUpdateForm = SessionCreateForm

// SessionCreateForm 创建练习会话的表单。
type SessionCreateForm struct {
	Title            string   `form:"title" json:"title"`
	Type             string   `form:"type" json:"type"`
	QuestionCount    int      `form:"questionCount" json:"questionCount"`
	DurationMinute   int      `form:"durationMinute" json:"durationMinute"`
	Difficulty       string   `form:"difficulty" json:"difficulty"`
	Categories       []string `form:"categories[]" json:"categories"`
	EnableCamera     bool     `form:"enableCamera" json:"enableCamera"`
	EnableMicrophone bool     `form:"enableMicrophone" json:"enableMicrophone"`
}

const (
	ErrTitleMsg      = "标题过长"
	ErrCategoriesMsg = "至少选择一个题目分类"
	ErrCountMsg      = "题目数需在1到50之间"
)

func (f *SessionCreateForm) Validate() error {
	err := validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.Required, validation.Length(0, 100).Error(ErrTitleMsg)),
		validation.Field(&f.Type, validation.Required,
			validation.In(model.SessionTypeTechnical, model.SessionTypeBehavioral, model.SessionTypeMixed)),
		validation.Field(&f.QuestionCount, validation.Required,
			validation.Min(1).Error(ErrCountMsg), validation.Max(50).Error(ErrCountMsg)),
		validation.Field(&f.DurationMinute, validation.Min(0)),
		validation.Field(&f.Difficulty, validation.Required,
			validation.In(model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard)),
		validation.Field(&f.Categories, validation.Required.Error(ErrCategoriesMsg),
			validation.Length(1, 0).Error(ErrCategoriesMsg)),
	)
	return err
}
