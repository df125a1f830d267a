package grading

import (
	"fmt"
	"strings"

	apperrors "github.com/SAP-F-2025/grading-service/internal/errors"
	"github.com/SAP-F-2025/grading-service/internal/models"
)

// Override carries the staff-supplied judgment for an answer. It is required
// for short_answer and essay questions and replaces the automatic result of
// multiple_choice questions.
type Override struct {
	Grade     *float64 `json:"grade"`
	IsCorrect *bool    `json:"is_correct"`
	Feedback  *string  `json:"feedback"`
}

// AutoGrade judges a multiple_choice answer. An unanswered question is incorrect.
func AutoGrade(q *models.Question, value *string) (bool, float64) {
	if q.CorrectAnswer == nil || value == nil {
		return false, 0
	}
	if strings.TrimSpace(*value) == *q.CorrectAnswer {
		return true, q.Points
	}
	return false, 0
}

// GradeAnswer applies the grading contract of q to answer and returns the
// graded copy. The input answer is not modified.
func GradeAnswer(q *models.Question, answer *models.Answer, override *Override) (*models.Answer, error) {
	if answer.QuestionID != q.ID {
		var errs apperrors.ValidationErrors
		errs.Add("question_id", fmt.Sprintf("answer belongs to question %d, not %d", answer.QuestionID, q.ID), answer.QuestionID)
		return nil, errs
	}

	graded := *answer

	switch q.Type {
	case models.MultipleChoice:
		isCorrect, grade := AutoGrade(q, answer.Value)
		graded.IsCorrect = &isCorrect
		graded.Grade = &grade
		if override != nil {
			if err := applyOverride(&graded, q, override, false); err != nil {
				return nil, err
			}
		}
	case models.ShortAnswer, models.Essay:
		if override == nil {
			override = &Override{}
		}
		if err := applyOverride(&graded, q, override, true); err != nil {
			return nil, err
		}
	default:
		var errs apperrors.ValidationErrors
		errs.Add("type", fmt.Sprintf("unsupported question type %q", q.Type), q.Type)
		return nil, errs
	}

	return &graded, nil
}

func applyOverride(a *models.Answer, q *models.Question, o *Override, gradeRequired bool) error {
	var errs apperrors.ValidationErrors

	if o.Grade == nil {
		if gradeRequired {
			errs.Add("grade", fmt.Sprintf("is required for %s questions", q.Type), nil)
			return errs
		}
	} else {
		if *o.Grade < 0 || *o.Grade > q.Points {
			errs.Add("grade", fmt.Sprintf("must be between 0 and %g", q.Points), *o.Grade)
			return errs
		}
		grade := *o.Grade
		a.Grade = &grade
	}

	if o.IsCorrect != nil {
		isCorrect := *o.IsCorrect
		a.IsCorrect = &isCorrect
	} else if gradeRequired {
		a.IsCorrect = nil
	}

	if o.Feedback != nil {
		feedback := *o.Feedback
		a.Feedback = &feedback
	}
	return nil
}

// GradingProgress returns the share of answers carrying a grade, in percent.
// An attempt without answers has made no progress.
func GradingProgress(answers []*models.Answer) float64 {
	if len(answers) == 0 {
		return 0
	}
	graded := 0
	for _, a := range answers {
		if a.IsGraded() {
			graded++
		}
	}
	return float64(graded) / float64(len(answers)) * 100
}

// UngradedQuestions returns the numbers of questions without a graded answer,
// in question order. A missing answer row counts as ungraded.
func UngradedQuestions(questions []*models.Question, answers []*models.Answer) []int {
	graded := make(map[uint]bool, len(answers))
	for _, a := range answers {
		if a.IsGraded() {
			graded[a.QuestionID] = true
		}
	}
	var missing []int
	for _, q := range questions {
		if !graded[q.ID] {
			missing = append(missing, q.Number)
		}
	}
	return missing
}
