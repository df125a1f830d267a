package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
)

// QuestionTypes lists every supported question type
var QuestionTypes = []QuestionType{MultipleChoice, ShortAnswer, Essay}

// IsAutoGraded reports whether answers of this type are graded without staff input
func (t QuestionType) IsAutoGraded() bool {
	return t == MultipleChoice
}

// IsValid reports whether t is a supported question type
func (t QuestionType) IsValid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	ExamID uint         `json:"exam_id" gorm:"not null;uniqueIndex:idx_exam_question_number"`
	Number int          `json:"number" gorm:"not null;uniqueIndex:idx_exam_question_number"`
	Type   QuestionType `json:"type" gorm:"not null;size:20"`
	Text   string       `json:"text" gorm:"type:text"`
	Points float64      `json:"points" gorm:"not null"`

	Options       datatypes.JSONSlice[QuestionOption] `json:"options,omitempty" gorm:"type:jsonb"`
	CorrectAnswer *string                             `json:"correct_answer,omitempty" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "exam_questions"
}

// HasOption reports whether id names one of the question options
func (q *Question) HasOption(id string) bool {
	for _, opt := range q.Options {
		if opt.ID == id {
			return true
		}
	}
	return false
}

// SumPoints returns the total points of questions
func SumPoints(questions []*Question) float64 {
	var total float64
	for _, q := range questions {
		total += q.Points
	}
	return total
}
