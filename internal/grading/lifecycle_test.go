package grading

import (
	"testing"

	apperrors "github.com/SAP-F-2025/grading-service/internal/errors"
	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.ExamStatus
		to      models.ExamStatus
		wantErr bool
	}{
		{"publish draft", models.ExamDraft, models.ExamPublished, false},
		{"start published", models.ExamPublished, models.ExamInProgress, false},
		{"begin grading", models.ExamInProgress, models.ExamGrading, false},
		{"complete grading", models.ExamGrading, models.ExamCompleted, false},
		{"cancel draft", models.ExamDraft, models.ExamCancelled, false},
		{"cancel grading", models.ExamGrading, models.ExamCancelled, false},
		{"skip a step", models.ExamDraft, models.ExamInProgress, true},
		{"go backwards", models.ExamPublished, models.ExamDraft, true},
		{"leave completed", models.ExamCompleted, models.ExamCancelled, true},
		{"leave cancelled", models.ExamCancelled, models.ExamDraft, true},
		{"unknown target", models.ExamDraft, models.ExamStatus("archived"), true},
		{"same status", models.ExamPublished, models.ExamPublished, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNextStatus_TerminalStatuses(t *testing.T) {
	for _, s := range []models.ExamStatus{models.ExamCompleted, models.ExamCancelled} {
		_, ok := NextStatus(s)
		assert.False(t, ok, "%s should be terminal", s)
	}
}

func TestCanPublish_Valid(t *testing.T) {
	questions := []*models.Question{mcQuestion(1, 1, 10, "a"), essayQuestion(2, 2, 10)}

	check := CanPublish(publishableExam(), questions, 3)

	assert.True(t, check.OK)
	assert.NoError(t, check.Err())
}

func TestCanPublish_NoQuestions(t *testing.T) {
	exam := publishableExam()

	check := CanPublish(exam, nil, 3)

	require.False(t, check.OK)
	assert.True(t, check.Errors.Has("questions"))
	assert.Equal(t, models.ExamDraft, exam.Status)
	assert.True(t, apperrors.IsValidation(check.Err()))
}

func TestCanPublish_CollectsEveryViolation(t *testing.T) {
	exam := &models.Exam{ID: 1, Status: models.ExamDraft, TotalPoints: 10, PassingGrade: 12}

	check := CanPublish(exam, nil, 0)

	require.False(t, check.OK)
	fields := check.Errors.FieldNames()
	for _, field := range []string{"title", "course_id", "type", "passing_grade", "date", "duration_minutes", "session_id", "questions", "students"} {
		assert.Contains(t, fields, field)
	}
}

func TestCanPublish_TotalMustMatchQuestionPoints(t *testing.T) {
	questions := []*models.Question{mcQuestion(1, 1, 10, "a"), essayQuestion(2, 2, 5)}

	check := CanPublish(publishableExam(), questions, 1)

	require.False(t, check.OK)
	assert.True(t, check.Errors.Has("total_points"))
}

func TestCanPublish_RejectsNonDraft(t *testing.T) {
	exam := publishableExam()
	exam.Status = models.ExamPublished
	questions := []*models.Question{mcQuestion(1, 1, 20, "a")}

	check := CanPublish(exam, questions, 1)

	require.False(t, check.OK)
	assert.True(t, check.Errors.Has("status"))
}

func TestPlanQuestionEdit(t *testing.T) {
	t.Run("draft keeps declared total", func(t *testing.T) {
		exam := publishableExam()
		total, err := PlanQuestionEdit(exam, []*models.Question{mcQuestion(1, 1, 4, "a")})
		require.NoError(t, err)
		assert.Equal(t, 20.0, total)
	})

	t.Run("published recomputes total", func(t *testing.T) {
		exam := publishableExam()
		exam.Status = models.ExamPublished
		total, err := PlanQuestionEdit(exam, []*models.Question{mcQuestion(1, 1, 12, "a"), essayQuestion(2, 2, 13)})
		require.NoError(t, err)
		assert.Equal(t, 25.0, total)
	})

	t.Run("published total below passing grade", func(t *testing.T) {
		exam := publishableExam()
		exam.Status = models.ExamPublished
		_, err := PlanQuestionEdit(exam, []*models.Question{mcQuestion(1, 1, 5, "a")})
		require.Error(t, err)
		var verrs apperrors.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.True(t, verrs.Has("passing_grade"))
	})

	t.Run("rejected once in progress", func(t *testing.T) {
		exam := publishableExam()
		exam.Status = models.ExamInProgress
		_, err := PlanQuestionEdit(exam, []*models.Question{mcQuestion(1, 1, 20, "a")})
		require.Error(t, err)
		var verrs apperrors.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.True(t, verrs.Has("status"))
	})
}

func TestCanComplete(t *testing.T) {
	attempts := []*models.Attempt{
		{ID: 1, Status: models.AttemptSubmitted, Graded: true},
		{ID: 2, Status: models.AttemptNotStarted},
	}
	assert.NoError(t, CanComplete(attempts))

	attempts = append(attempts, &models.Attempt{ID: 3, Status: models.AttemptSubmitted})
	err := CanComplete(attempts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3")
}

func TestDiffQuestionSets(t *testing.T) {
	current := []*models.Question{
		mcQuestion(11, 1, 5, "a"),
		essayQuestion(12, 2, 10),
		essayQuestion(13, 3, 5),
	}

	t.Run("text only edits keep answers", func(t *testing.T) {
		next := []*models.Question{mcQuestion(0, 1, 5, "a"), essayQuestion(0, 2, 10), essayQuestion(0, 3, 5)}
		next[1].Text = "Discuss in detail"

		assert.True(t, DiffQuestionSets(current, next).Empty())
	})

	t.Run("points type and key changes need regrading", func(t *testing.T) {
		next := []*models.Question{mcQuestion(0, 1, 5, "b"), essayQuestion(0, 2, 2), mcQuestion(0, 3, 5, "a")}

		change := DiffQuestionSets(current, next)

		assert.Equal(t, []uint{11, 12, 13}, change.Regrade)
		assert.Empty(t, change.Removed)
		assert.Empty(t, change.Added)
	})

	t.Run("removed and added numbers", func(t *testing.T) {
		shorter := DiffQuestionSets(current, []*models.Question{mcQuestion(0, 1, 5, "a")})
		assert.Equal(t, []uint{12, 13}, shorter.Removed)

		longer := DiffQuestionSets(current[:1], []*models.Question{mcQuestion(0, 1, 5, "a"), essayQuestion(0, 2, 10)})
		assert.Equal(t, []int{2}, longer.Added)
		assert.Empty(t, longer.Regrade)
	})

	t.Run("first edit of an empty exam", func(t *testing.T) {
		change := DiffQuestionSets(nil, current)
		assert.Equal(t, []int{1, 2, 3}, change.Added)
	})
}
