package grading

import (
	"fmt"
	"time"

	apperrors "github.com/SAP-F-2025/grading-service/internal/errors"
	"github.com/SAP-F-2025/grading-service/internal/models"
)

// FinalizeOptions carries the inputs of finalization that do not come from stored rows
type FinalizeOptions struct {
	Feedback *string
	GradedBy *string
	Now      time.Time
}

// Finalization is the outcome of Finalize: the result row to upsert and the
// attempt with its score fields populated.
type Finalization struct {
	Result  *models.ExamResult
	Attempt *models.Attempt
}

// Finalize turns a fully graded attempt into its exam result. Pass/fail uses
// the absolute rule (score ≥ passing grade); the percentage drives only the
// letter grade. Identical inputs produce an identical result.
func Finalize(exam *models.Exam, questions []*models.Question, attempt *models.Attempt, answers []*models.Answer, opts FinalizeOptions) (*Finalization, error) {
	var errs apperrors.ValidationErrors

	if attempt.ExamID != exam.ID {
		errs.Add("exam_id", fmt.Sprintf("attempt %d belongs to exam %d, not %d", attempt.ID, attempt.ExamID, exam.ID), attempt.ExamID)
	}
	if exam.TotalPoints <= 0 {
		errs.Add("total_points", "must be greater than 0", exam.TotalPoints)
	}
	if len(questions) == 0 {
		errs.Add("questions", "exam has no questions", 0)
	}

	byID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	for _, a := range answers {
		if a.AttemptID != attempt.ID {
			errs.Add("answers", fmt.Sprintf("answer %d belongs to attempt %d", a.ID, a.AttemptID), a.ID)
		}
		q, ok := byID[a.QuestionID]
		if !ok {
			errs.Add("answers", fmt.Sprintf("answer %d refers to question %d outside the exam", a.ID, a.QuestionID), a.ID)
			continue
		}
		if a.Grade != nil && (*a.Grade < 0 || *a.Grade > q.Points) {
			errs.Add("answers", fmt.Sprintf("answer %d grade %g is outside 0..%g of question %d", a.ID, *a.Grade, q.Points, q.Number), *a.Grade)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if missing := UngradedQuestions(questions, answers); len(missing) > 0 {
		return nil, &apperrors.IncompleteGradingError{AttemptID: attempt.ID, QuestionNumbers: missing}
	}

	var total float64
	for _, a := range answers {
		total += *a.Grade
	}

	percentage := Percentage(total, exam.TotalPoints)
	letter := LetterGrade(percentage)
	passed := Passed(total, exam.PassingGrade)

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	score := total
	result := &models.ExamResult{
		AttemptID:       attempt.ID,
		ExamID:          exam.ID,
		StudentID:       attempt.StudentID,
		AcademicYear:    exam.AcademicYear,
		CourseID:        exam.CourseID,
		ExamWeight:      exam.EffectiveWeight(),
		Score:           &score,
		MaxScore:        exam.TotalPoints,
		PassingScore:    exam.PassingGrade,
		Percentage:      percentage,
		Passed:          passed,
		LetterGrade:     letter,
		IncidentSummary: IncidentSummary(attempt),
		Feedback:        opts.Feedback,
		GradedBy:        opts.GradedBy,
		GradedAt:        now,
	}

	updated := *attempt
	maxScore := exam.TotalPoints
	updated.Graded = true
	updated.Score = &score
	updated.MaxScore = &maxScore
	updated.Percentage = &percentage
	updated.LetterGrade = &letter
	updated.Passed = &passed
	updated.GradedAt = &now

	return &Finalization{Result: result, Attempt: &updated}, nil
}

// IncidentSummary describes the incidents recorded on attempt, nil when there were none
func IncidentSummary(attempt *models.Attempt) *string {
	if !attempt.HasIncidents && attempt.IncidentCount == 0 {
		return nil
	}
	count := attempt.IncidentCount
	if count == 0 {
		count = 1
	}
	noun := "incidents"
	if count == 1 {
		noun = "incident"
	}
	summary := fmt.Sprintf("%d %s recorded during the exam", count, noun)
	return &summary
}
