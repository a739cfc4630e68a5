package form

import (
	"strings"
	"testing"
)

func validSessionForm() SessionCreateForm {
	return SessionCreateForm{
		Title:            "后端工程师模拟面试",
		Type:             "technical",
		QuestionCount:    10,
		DurationMinute:   60,
		Difficulty:       "medium",
		Categories:       []string{"algorithms", "system-design"},
		EnableCamera:     true,
		EnableMicrophone: true,
	}
}

func TestSessionCreateFormValidate(t *testing.T) {
	f := validSessionForm()
	if err := f.Validate(); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}
}

func TestSessionCreateFormEmptyCategories(t *testing.T) {
	f := validSessionForm()
	f.Categories = nil
	if err := f.Validate(); err == nil {
		t.Fatal("form with no categories should be rejected")
	}
	f.Categories = []string{}
	if err := f.Validate(); err == nil {
		t.Fatal("form with empty categories should be rejected")
	}
}

func TestSessionCreateFormQuestionCountRange(t *testing.T) {
	f := validSessionForm()
	f.QuestionCount = 0
	if err := f.Validate(); err == nil {
		t.Fatal("questionCount 0 should be rejected")
	}
	f.QuestionCount = 51
	err := f.Validate()
	if err == nil {
		t.Fatal("questionCount 51 should be rejected")
	}
	if !strings.Contains(err.Error(), ErrCountMsg) {
		t.Fatalf("expect %q in error, got %v", ErrCountMsg, err)
	}
}

func TestSessionCreateFormBadType(t *testing.T) {
	f := validSessionForm()
	f.Type = "casual"
	if err := f.Validate(); err == nil {
		t.Fatal("unknown session type should be rejected")
	}
	f = validSessionForm()
	f.Difficulty = "nightmare"
	if err := f.Validate(); err == nil {
		t.Fatal("unknown difficulty should be rejected")
	}
}
