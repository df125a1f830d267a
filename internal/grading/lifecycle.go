package grading

import (
	"fmt"
	"strings"

	apperrors "github.com/SAP-F-2025/grading-service/internal/errors"
	"github.com/SAP-F-2025/grading-service/internal/models"
)

// NextStatus returns the status that follows s on the forward path, and false
// for terminal statuses.
func NextStatus(s models.ExamStatus) (models.ExamStatus, bool) {
	switch s {
	case models.ExamDraft:
		return models.ExamPublished, true
	case models.ExamPublished:
		return models.ExamInProgress, true
	case models.ExamInProgress:
		return models.ExamGrading, true
	case models.ExamGrading:
		return models.ExamCompleted, true
	case models.ExamCompleted, models.ExamCancelled:
		return "", false
	default:
		return "", false
	}
}

// CheckTransition validates a single status change. Only the next forward
// status or cancellation of a non-terminal exam are allowed.
func CheckTransition(from, to models.ExamStatus) error {
	if !from.IsValid() {
		return statusError(fmt.Sprintf("unknown current status %q", from), from)
	}
	if !to.IsValid() {
		return statusError(fmt.Sprintf("unknown target status %q", to), to)
	}
	if from.IsTerminal() {
		return statusError(fmt.Sprintf("exam is %s and can no longer change status", from), from)
	}
	if to == models.ExamCancelled {
		return nil
	}
	if next, ok := NextStatus(from); ok && next == to {
		return nil
	}
	return statusError(fmt.Sprintf("cannot transition from %s to %s", from, to), to)
}

func statusError(message string, value interface{}) error {
	var errs apperrors.ValidationErrors
	errs.Add("status", message, value)
	return errs
}

// PublishCheck is the outcome of CanPublish
type PublishCheck struct {
	OK     bool                       `json:"ok"`
	Errors apperrors.ValidationErrors `json:"errors,omitempty"`
}

// Err returns the collected errors, or nil when the exam can be published
func (c PublishCheck) Err() error {
	if c.OK {
		return nil
	}
	return c.Errors
}

// CanPublish collects every rule the draft → published transition requires.
// attemptsCount is the number of students assigned to the exam.
func CanPublish(exam *models.Exam, questions []*models.Question, attemptsCount int) PublishCheck {
	var errs apperrors.ValidationErrors

	if exam.Status != models.ExamDraft {
		errs.Add("status", fmt.Sprintf("only draft exams can be published, exam is %s", exam.Status), exam.Status)
	}
	if strings.TrimSpace(exam.Title) == "" {
		errs.Add("title", "is required", exam.Title)
	}
	if exam.CourseID == nil {
		errs.Add("course_id", "is required", nil)
	}
	if strings.TrimSpace(string(exam.Type)) == "" {
		errs.Add("type", "is required", exam.Type)
	}
	if exam.TotalPoints <= 0 {
		errs.Add("total_points", "must be greater than 0", exam.TotalPoints)
	}
	switch {
	case exam.PassingGrade <= 0:
		errs.Add("passing_grade", "must be greater than 0", exam.PassingGrade)
	case exam.TotalPoints > 0 && exam.PassingGrade > exam.TotalPoints:
		errs.Add("passing_grade", fmt.Sprintf("must not exceed total_points (%g)", exam.TotalPoints), exam.PassingGrade)
	}
	if exam.Date == nil || exam.Date.IsZero() {
		errs.Add("date", "is required", nil)
	}
	if exam.DurationMinutes <= 0 {
		errs.Add("duration_minutes", "must be greater than 0", exam.DurationMinutes)
	}
	if exam.SessionID == nil {
		errs.Add("session_id", "is required", nil)
	}

	if len(questions) == 0 {
		errs.Add("questions", "at least one question is required", 0)
	} else {
		errs = append(errs, ValidateQuestionSet(questions)...)
		if sum := models.SumPoints(questions); exam.TotalPoints > 0 && sum != exam.TotalPoints {
			errs.Add("total_points", fmt.Sprintf("must equal the sum of question points (%g)", sum), exam.TotalPoints)
		}
	}

	if attemptsCount < 1 {
		errs.Add("students", "at least one student must be assigned", attemptsCount)
	}

	return PublishCheck{OK: len(errs) == 0, Errors: errs}
}

// PlanQuestionEdit validates a replacement question set for exam and returns
// the total points the exam must carry afterwards. Drafts keep their declared
// total; published exams are recomputed and must still satisfy passing_grade.
func PlanQuestionEdit(exam *models.Exam, questions []*models.Question) (float64, error) {
	var errs apperrors.ValidationErrors

	switch exam.Status {
	case models.ExamDraft, models.ExamPublished:
	default:
		errs.Add("status", fmt.Sprintf("questions cannot be edited once the exam is %s", exam.Status), exam.Status)
		return 0, errs
	}

	for _, q := range questions {
		if q.ExamID != 0 && q.ExamID != exam.ID {
			errs.Add("questions", fmt.Sprintf("question %d belongs to exam %d", q.Number, q.ExamID), q.ExamID)
		}
	}
	errs = append(errs, ValidateQuestionSet(questions)...)

	if exam.Status == models.ExamDraft {
		return exam.TotalPoints, errs.OrNil()
	}

	total := models.SumPoints(questions)
	if len(questions) == 0 {
		errs.Add("questions", "a published exam needs at least one question", 0)
	}
	if exam.PassingGrade > total {
		errs.Add("passing_grade", fmt.Sprintf("must not exceed the new total_points (%g)", total), exam.PassingGrade)
	}
	return total, errs.OrNil()
}

// QuestionSetChange describes what a replacement question set does to the
// answers stored against the current one. Questions are matched by number.
type QuestionSetChange struct {
	// Removed holds the ids of current questions whose number disappears
	Removed []uint
	// Regrade holds the ids of kept questions whose points, type or correct
	// answer changed; grades given under the old definition no longer hold
	Regrade []uint
	// Added holds the numbers that are new in the replacement
	Added []int
}

// Empty reports whether stored answers are unaffected
func (c QuestionSetChange) Empty() bool {
	return len(c.Removed) == 0 && len(c.Regrade) == 0 && len(c.Added) == 0
}

// DiffQuestionSets compares the stored questions of an exam with their replacement
func DiffQuestionSets(current, next []*models.Question) QuestionSetChange {
	var change QuestionSetChange

	byNumber := make(map[int]*models.Question, len(current))
	for _, q := range current {
		byNumber[q.Number] = q
	}

	kept := make(map[int]bool, len(next))
	for _, q := range next {
		kept[q.Number] = true
		old, ok := byNumber[q.Number]
		if !ok {
			change.Added = append(change.Added, q.Number)
			continue
		}
		if old.Points != q.Points || old.Type != q.Type || !sameAnswerKey(old.CorrectAnswer, q.CorrectAnswer) {
			change.Regrade = append(change.Regrade, old.ID)
		}
	}

	for _, q := range current {
		if !kept[q.Number] {
			change.Removed = append(change.Removed, q.ID)
		}
	}
	return change
}

func sameAnswerKey(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// CanComplete requires every submitted attempt to be finalized before grading closes
func CanComplete(attempts []*models.Attempt) error {
	var pending []string
	for _, a := range attempts {
		if a.Status == models.AttemptSubmitted && !a.Graded {
			pending = append(pending, fmt.Sprintf("%d", a.ID))
		}
	}
	if len(pending) == 0 {
		return nil
	}
	var errs apperrors.ValidationErrors
	errs.Add("attempts", fmt.Sprintf("submitted attempts not yet graded: %s", strings.Join(pending, ", ")), len(pending))
	return errs
}
