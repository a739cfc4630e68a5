package form

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/solutions/mock-cube/internal/protodef/model"
)

type QuestionUpdateForm = QuestionCreateForm

// QuestionCreateForm 题库管理表单。
type QuestionCreateForm struct {
	QuestionId             string   `form:"questionId" json:"questionId"`
	Text                   string   `form:"text" json:"text"`
	Category               string   `form:"category" json:"category"`
	Difficulty             string   `form:"difficulty" json:"difficulty"`
	ExpectedDurationSecond int      `form:"expectedDurationSecond" json:"expectedDurationSecond"`
	EvaluationCriteria     []string `form:"evaluationCriteria[]" json:"evaluationCriteria"`
}

func (f *QuestionCreateForm) Validate() error {
	err := validation.ValidateStruct(f,
		validation.Field(&f.Text, validation.Required, validation.Length(1, 2000)),
		validation.Field(&f.Category, validation.Required),
		validation.Field(&f.Difficulty, validation.Required,
			validation.In(model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard)),
		validation.Field(&f.ExpectedDurationSecond, validation.Min(0)),
	)
	return err
}
