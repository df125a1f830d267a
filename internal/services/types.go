package services

import (
	"github.com/SAP-F-2025/grading-service/internal/grading"
	"github.com/SAP-F-2025/grading-service/internal/models"
)

// ===== EXAM =====

type QuestionInput struct {
	Number        int                     `json:"number" validate:"required,min=1"`
	Type          models.QuestionType     `json:"type" validate:"required,question_type"`
	Text          string                  `json:"text" validate:"required"`
	Points        float64                 `json:"points" validate:"gt=0"`
	Options       []models.QuestionOption `json:"options,omitempty" validate:"omitempty,dive"`
	CorrectAnswer *string                 `json:"correct_answer,omitempty"`
}

type ReplaceQuestionsRequest struct {
	Questions []QuestionInput `json:"questions" validate:"dive"`
}

func (r *ReplaceQuestionsRequest) toModels(examID uint) []*models.Question {
	questions := make([]*models.Question, 0, len(r.Questions))
	for _, in := range r.Questions {
		questions = append(questions, &models.Question{
			ExamID:        examID,
			Number:        in.Number,
			Type:          in.Type,
			Text:          in.Text,
			Points:        in.Points,
			Options:       in.Options,
			CorrectAnswer: in.CorrectAnswer,
		})
	}
	return questions
}

type ExamQuestionsResponse struct {
	Exam      *models.Exam       `json:"exam"`
	Questions []*models.Question `json:"questions"`
}

// ===== GRADING =====

type GradeAnswerRequest struct {
	Grade     *float64 `json:"grade" validate:"omitempty,gte=0"`
	IsCorrect *bool    `json:"is_correct"`
	Feedback  *string  `json:"feedback" validate:"omitempty,max=5000"`

	// ExpectedVersion rejects the write when the answer changed since it was read
	ExpectedVersion *int `json:"expected_version" validate:"omitempty,min=1"`
}

func (r *GradeAnswerRequest) override() *grading.Override {
	if r.Grade == nil && r.IsCorrect == nil && r.Feedback == nil {
		return nil
	}
	return &grading.Override{
		Grade:     r.Grade,
		IsCorrect: r.IsCorrect,
		Feedback:  r.Feedback,
	}
}

type GradeAnswerResponse struct {
	Answer   *models.Answer `json:"answer"`
	Progress float64        `json:"progress"`
}

type AutoGradeResponse struct {
	AttemptID uint    `json:"attempt_id"`
	Graded    int     `json:"graded"`
	Progress  float64 `json:"progress"`
}

type GradingProgressResponse struct {
	AttemptID         uint    `json:"attempt_id"`
	TotalAnswers      int     `json:"total_answers"`
	GradedAnswers     int     `json:"graded_answers"`
	Progress          float64 `json:"progress"`
	UngradedQuestions []int   `json:"ungraded_questions"`
	Finalized         bool    `json:"finalized"`
}

type FinalizeRequest struct {
	Feedback        *string `json:"feedback" validate:"omitempty,max=5000"`
	ExpectedVersion *int    `json:"expected_version" validate:"omitempty,min=1"`
}
