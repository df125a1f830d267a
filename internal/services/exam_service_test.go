package services

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/SAP-F-2025/grading-service/internal/errors"
	"github.com/SAP-F-2025/grading-service/internal/events"
	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/SAP-F-2025/grading-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestExamService() (ExamService, *MockRepository, *events.MockEventPublisher) {
	repo := NewMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	notifier := NewNotificationEventService(publisher, testLogger())
	return NewExamService(repo, notifier, testLogger(), validator.New()), repo, publisher
}

func publishableQuestions() []*models.Question {
	return []*models.Question{mcQuestion(11, 1, 10, "b"), essayQuestion(12, 2, 10)}
}

func TestExamService_Get(t *testing.T) {
	svc, repo, _ := newTestExamService()
	repo.exams.On("GetByID", uint(1)).Return(draftExam(), nil)
	repo.exams.On("GetByID", uint(9)).Return(nil, apperrors.NewNotFoundError("exam", 9))

	exam, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.ExamDraft, exam.Status)

	_, err = svc.Get(context.Background(), 9)
	assert.True(t, IsNotFound(err))
}

func TestExamService_Publish(t *testing.T) {
	svc, repo, publisher := newTestExamService()
	repo.exams.On("GetByID", uint(1)).Return(draftExam(), nil)
	repo.questions.On("ListByExam", uint(1)).Return(publishableQuestions(), nil)
	repo.attempts.On("CountByExam", uint(1)).Return(int64(2), nil)
	repo.exams.On("UpdateStatus", uint(1), models.ExamPublished).Return(nil)
	repo.attempts.On("ListByExam", uint(1)).Return([]*models.Attempt{
		{ID: 1, ExamID: 1, StudentID: "s-1"},
		{ID: 2, ExamID: 1, StudentID: "s-2"},
	}, nil)

	exam, err := svc.Publish(context.Background(), 1, ownerID)

	require.NoError(t, err)
	assert.Equal(t, models.ExamPublished, exam.Status)
	assert.Equal(t, 2, exam.Version)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventExamPublished, published[0].Type)
	payload := published[0].Data.(events.ExamPublishedEvent)
	assert.Equal(t, []string{"s-1", "s-2"}, payload.StudentIDs)
	assert.Equal(t, ownerID, payload.PublishedBy)
	repo.exams.AssertExpectations(t)

	require.Len(t, repo.audit.entries, 1)
	entry := repo.audit.entries[0]
	assert.Equal(t, models.AuditExamStatusChanged, entry.Action)
	assert.Equal(t, ownerID, entry.ActorID)
	assert.JSONEq(t, `{"from":"draft","to":"published"}`, string(entry.Changes))
}

func TestExamService_Publish_CollectsEveryViolation(t *testing.T) {
	svc, repo, publisher := newTestExamService()
	exam := draftExam()
	exam.Date = nil
	exam.SessionID = nil
	exam.PassingGrade = 25
	repo.exams.On("GetByID", uint(1)).Return(exam, nil)
	repo.questions.On("ListByExam", uint(1)).Return(publishableQuestions(), nil)
	repo.attempts.On("CountByExam", uint(1)).Return(int64(0), nil)

	_, err := svc.Publish(context.Background(), 1, ownerID)

	var errs apperrors.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.ElementsMatch(t, []string{"date", "passing_grade", "session_id", "students"}, errs.FieldNames())
	repo.exams.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestExamService_Publish_OnlyByCreator(t *testing.T) {
	svc, repo, _ := newTestExamService()
	repo.exams.On("GetByID", uint(1)).Return(draftExam(), nil)
	repo.questions.On("ListByExam", uint(1)).Return(publishableQuestions(), nil)
	repo.attempts.On("CountByExam", uint(1)).Return(int64(2), nil)

	_, err := svc.Publish(context.Background(), 1, "someone-else")

	var permErr *PermissionError
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, "publish", permErr.Action)
	assert.True(t, IsUnauthorized(err))
}

func TestExamService_Publish_EventFailureDoesNotFail(t *testing.T) {
	svc, repo, publisher := newTestExamService()
	publisher.Err = errors.New("broker down")
	repo.exams.On("GetByID", uint(1)).Return(draftExam(), nil)
	repo.questions.On("ListByExam", uint(1)).Return(publishableQuestions(), nil)
	repo.attempts.On("CountByExam", uint(1)).Return(int64(1), nil)
	repo.exams.On("UpdateStatus", uint(1), models.ExamPublished).Return(nil)
	repo.attempts.On("ListByExam", uint(1)).Return([]*models.Attempt{{ID: 1, StudentID: "s-1"}}, nil)

	exam, err := svc.Publish(context.Background(), 1, ownerID)

	require.NoError(t, err)
	assert.Equal(t, models.ExamPublished, exam.Status)
}

func TestExamService_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.ExamStatus
		call    func(ExamService) (*models.Exam, error)
		to      models.ExamStatus
		wantErr bool
	}{
		{"start published", models.ExamPublished, func(s ExamService) (*models.Exam, error) { return s.Start(context.Background(), 1, ownerID) }, models.ExamInProgress, false},
		{"begin grading", models.ExamInProgress, func(s ExamService) (*models.Exam, error) { return s.BeginGrading(context.Background(), 1, ownerID) }, models.ExamGrading, false},
		{"start draft", models.ExamDraft, func(s ExamService) (*models.Exam, error) { return s.Start(context.Background(), 1, ownerID) }, models.ExamInProgress, true},
		{"grading skips in_progress", models.ExamPublished, func(s ExamService) (*models.Exam, error) { return s.BeginGrading(context.Background(), 1, ownerID) }, models.ExamGrading, true},
		{"cancel completed", models.ExamCompleted, func(s ExamService) (*models.Exam, error) { return s.Cancel(context.Background(), 1, ownerID) }, models.ExamCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestExamService()
			repo.exams.On("GetByID", uint(1)).Return(examIn(tt.from), nil)
			repo.exams.On("UpdateStatus", uint(1), tt.to).Return(nil)

			exam, err := tt.call(svc)

			if tt.wantErr {
				assert.True(t, IsValidation(err))
				repo.exams.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, exam.Status)
		})
	}
}

func TestExamService_Complete(t *testing.T) {
	t.Run("blocked by ungraded submission", func(t *testing.T) {
		svc, repo, publisher := newTestExamService()
		graded := submittedAttempt(1, "s-1")
		graded.Graded = true
		repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamGrading), nil)
		repo.attempts.On("ListByExam", uint(1)).Return([]*models.Attempt{graded, submittedAttempt(2, "s-2")}, nil)

		_, err := svc.Complete(context.Background(), 1, ownerID)

		var errs apperrors.ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.True(t, errs.Has("attempts"))
		assert.Empty(t, publisher.GetPublishedEvents())
	})

	t.Run("every submission graded", func(t *testing.T) {
		svc, repo, publisher := newTestExamService()
		graded := submittedAttempt(1, "s-1")
		graded.Graded = true
		absent := &models.Attempt{ID: 2, ExamID: 1, StudentID: "s-2", Status: models.AttemptNotStarted}
		repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamGrading), nil)
		repo.attempts.On("ListByExam", uint(1)).Return([]*models.Attempt{graded, absent}, nil)
		repo.exams.On("UpdateStatus", uint(1), models.ExamCompleted).Return(nil)

		exam, err := svc.Complete(context.Background(), 1, ownerID)

		require.NoError(t, err)
		assert.Equal(t, models.ExamCompleted, exam.Status)
		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventExamCompleted, published[0].Type)
	})
}

func TestExamService_Cancel(t *testing.T) {
	svc, repo, publisher := newTestExamService()
	repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamInProgress), nil)
	repo.exams.On("UpdateStatus", uint(1), models.ExamCancelled).Return(nil)

	exam, err := svc.Cancel(context.Background(), 1, "another-staff")

	require.NoError(t, err)
	assert.Equal(t, models.ExamCancelled, exam.Status)
	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventExamCancelled, published[0].Type)
	payload := published[0].Data.(events.ExamStatusChangedEvent)
	assert.Equal(t, "in_progress", payload.FromStatus)
}

func TestExamService_ConcurrentTransitionLoses(t *testing.T) {
	svc, repo, publisher := newTestExamService()
	repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamPublished), nil)
	repo.exams.On("UpdateStatus", uint(1), models.ExamInProgress).
		Return(apperrors.NewConcurrencyConflictError("exam", 1, 1))

	_, err := svc.Start(context.Background(), 1, ownerID)

	assert.True(t, IsConflict(err))
	assert.Empty(t, publisher.GetPublishedEvents())
}

func replaceRequest(points ...float64) *ReplaceQuestionsRequest {
	req := &ReplaceQuestionsRequest{}
	for i, p := range points {
		req.Questions = append(req.Questions, QuestionInput{
			Number: i + 1,
			Type:   models.Essay,
			Text:   "Explain",
			Points: p,
		})
	}
	return req
}

func TestExamService_ReplaceQuestions(t *testing.T) {
	t.Run("draft keeps declared total", func(t *testing.T) {
		svc, repo, _ := newTestExamService()
		repo.exams.On("GetByID", uint(1)).Return(draftExam(), nil)
		repo.questions.On("ListByExam", uint(1)).Return(nil, nil)
		repo.questions.On("ReplaceForExam", uint(1), mock.Anything).Return(nil)
		repo.answers.On("AttemptIDsByExam", uint(1)).Return(nil, nil)

		resp, err := svc.ReplaceQuestions(context.Background(), 1, replaceRequest(5, 5), ownerID)

		require.NoError(t, err)
		assert.Len(t, resp.Questions, 2)
		assert.Equal(t, 20.0, resp.Exam.TotalPoints)
		repo.exams.AssertNotCalled(t, "UpdateTotalPoints", mock.Anything, mock.Anything)
		assert.Equal(t, 1, repo.transactions)
	})

	t.Run("published recomputes total", func(t *testing.T) {
		svc, repo, _ := newTestExamService()
		repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamPublished), nil)
		repo.questions.On("ListByExam", uint(1)).Return(nil, nil)
		repo.questions.On("ReplaceForExam", uint(1), mock.Anything).Return(nil)
		repo.answers.On("AttemptIDsByExam", uint(1)).Return(nil, nil)
		repo.exams.On("UpdateTotalPoints", uint(1), 25.0).Return(nil)

		resp, err := svc.ReplaceQuestions(context.Background(), 1, replaceRequest(10, 15), ownerID)

		require.NoError(t, err)
		assert.Equal(t, 25.0, resp.Exam.TotalPoints)
		repo.exams.AssertExpectations(t)
	})

	t.Run("published edit after grading resets redefined questions", func(t *testing.T) {
		svc, repo, _ := newTestExamService()
		repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamPublished), nil)
		repo.questions.On("ListByExam", uint(1)).Return([]*models.Question{essayQuestion(11, 1, 10), essayQuestion(12, 2, 10)}, nil)
		repo.questions.On("ReplaceForExam", uint(1), mock.Anything).Return(nil)
		repo.answers.On("AttemptIDsByExam", uint(1)).Return([]uint{5}, nil)
		repo.answers.On("DeleteByQuestions", []uint(nil)).Return(nil)
		repo.answers.On("ResetGrades", []uint{11}).Return(nil)
		repo.answers.On("CreateBlank", []uint{5}, []uint(nil)).Return(nil)
		repo.exams.On("UpdateTotalPoints", uint(1), 12.0).Return(nil)

		resp, err := svc.ReplaceQuestions(context.Background(), 1, replaceRequest(2, 10), ownerID)

		require.NoError(t, err)
		assert.Equal(t, 12.0, resp.Exam.TotalPoints)
		assert.Equal(t, []uint{5}, repo.attempts.regraded)
		repo.answers.AssertExpectations(t)
		require.Len(t, repo.audit.entries, 1)
		assert.Contains(t, string(repo.audit.entries[0].Changes), `"regraded_questions":1`)
	})

	t.Run("published edit removing a question drops its answers", func(t *testing.T) {
		svc, repo, _ := newTestExamService()
		repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamPublished), nil)
		repo.questions.On("ListByExam", uint(1)).Return([]*models.Question{essayQuestion(11, 1, 10), essayQuestion(12, 2, 10)}, nil)
		repo.questions.On("ReplaceForExam", uint(1), mock.Anything).Return(nil)
		repo.answers.On("AttemptIDsByExam", uint(1)).Return([]uint{5, 6}, nil)
		repo.answers.On("DeleteByQuestions", []uint{12}).Return(nil)
		repo.answers.On("ResetGrades", []uint(nil)).Return(nil)
		repo.answers.On("CreateBlank", []uint{5, 6}, []uint(nil)).Return(nil)
		repo.exams.On("UpdateTotalPoints", uint(1), 10.0).Return(nil)

		_, err := svc.ReplaceQuestions(context.Background(), 1, replaceRequest(10), ownerID)

		require.NoError(t, err)
		assert.Equal(t, []uint{5, 6}, repo.attempts.regraded)
		repo.answers.AssertExpectations(t)
	})

	t.Run("published edit adding a question creates blank answers", func(t *testing.T) {
		svc, repo, _ := newTestExamService()
		repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamPublished), nil)
		repo.questions.On("ListByExam", uint(1)).Return([]*models.Question{essayQuestion(11, 1, 10)}, nil)
		repo.questions.On("ReplaceForExam", uint(1), mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			for _, q := range args.Get(1).([]*models.Question) {
				q.ID = uint(10 + q.Number)
			}
		})
		repo.answers.On("AttemptIDsByExam", uint(1)).Return([]uint{5, 6}, nil)
		repo.answers.On("DeleteByQuestions", []uint(nil)).Return(nil)
		repo.answers.On("ResetGrades", []uint(nil)).Return(nil)
		repo.answers.On("CreateBlank", []uint{5, 6}, []uint{12}).Return(nil)

		_, err := svc.ReplaceQuestions(context.Background(), 1, replaceRequest(10, 10), ownerID)

		require.NoError(t, err)
		assert.Equal(t, []uint{5, 6}, repo.attempts.regraded)
		repo.answers.AssertExpectations(t)
		repo.exams.AssertNotCalled(t, "UpdateTotalPoints", mock.Anything, mock.Anything)
	})

	t.Run("answer reconciliation failure aborts the edit", func(t *testing.T) {
		svc, repo, _ := newTestExamService()
		repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamPublished), nil)
		repo.questions.On("ListByExam", uint(1)).Return([]*models.Question{essayQuestion(11, 1, 10), essayQuestion(12, 2, 10)}, nil)
		repo.questions.On("ReplaceForExam", uint(1), mock.Anything).Return(nil)
		repo.answers.On("AttemptIDsByExam", uint(1)).Return([]uint{5}, nil)
		repo.answers.On("DeleteByQuestions", []uint{12}).Return(errors.New("deadlock detected"))

		_, err := svc.ReplaceQuestions(context.Background(), 1, replaceRequest(10), ownerID)

		assert.EqualError(t, err, "deadlock detected")
		assert.Empty(t, repo.audit.entries)
		assert.Empty(t, repo.attempts.regraded)
	})

	t.Run("published total below passing grade", func(t *testing.T) {
		svc, repo, _ := newTestExamService()
		repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamPublished), nil)

		_, err := svc.ReplaceQuestions(context.Background(), 1, replaceRequest(4, 4), ownerID)

		var errs apperrors.ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.True(t, errs.Has("passing_grade"))
		repo.questions.AssertNotCalled(t, "ReplaceForExam", mock.Anything, mock.Anything)
	})

	t.Run("locked after start", func(t *testing.T) {
		svc, repo, _ := newTestExamService()
		repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamInProgress), nil)

		_, err := svc.ReplaceQuestions(context.Background(), 1, replaceRequest(10, 10), ownerID)

		var errs apperrors.ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.True(t, errs.Has("status"))
	})

	t.Run("request validation", func(t *testing.T) {
		svc, repo, _ := newTestExamService()
		req := replaceRequest(10)
		req.Questions[0].Type = "matching"

		_, err := svc.ReplaceQuestions(context.Background(), 1, req, ownerID)

		assert.True(t, IsValidation(err))
		repo.exams.AssertNotCalled(t, "GetByID", mock.Anything)
	})
}

func TestExamService_CheckPublish(t *testing.T) {
	svc, repo, _ := newTestExamService()
	repo.exams.On("GetByID", uint(1)).Return(draftExam(), nil)
	repo.questions.On("ListByExam", uint(1)).Return([]*models.Question{}, nil)
	repo.attempts.On("CountByExam", uint(1)).Return(int64(3), nil)

	check, err := svc.CheckPublish(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, check.OK)
	assert.True(t, check.Errors.Has("questions"))
}

func TestExamService_AuditFailureAbortsTransition(t *testing.T) {
	svc, repo, publisher := newTestExamService()
	repo.audit.err = errors.New("audit_logs unavailable")
	repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamPublished), nil)
	repo.exams.On("UpdateStatus", uint(1), models.ExamInProgress).Return(nil)

	_, err := svc.Start(context.Background(), 1, ownerID)

	assert.EqualError(t, err, "audit_logs unavailable")
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestExamService_AuditTrail(t *testing.T) {
	t.Run("lists entries", func(t *testing.T) {
		svc, repo, _ := newTestExamService()
		repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamGrading), nil)
		repo.audit.On("ListByExam", uint(1)).Return([]*models.AuditLog{
			{ID: 1, Action: models.AuditExamStatusChanged, ExamID: 1},
			{ID: 2, Action: models.AuditAnswerGraded, ExamID: 1},
		}, nil)

		entries, err := svc.AuditTrail(context.Background(), 1)

		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("empty trail is not nil", func(t *testing.T) {
		svc, repo, _ := newTestExamService()
		repo.exams.On("GetByID", uint(1)).Return(examIn(models.ExamDraft), nil)
		repo.audit.On("ListByExam", uint(1)).Return(nil, nil)

		entries, err := svc.AuditTrail(context.Background(), 1)

		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("unknown exam", func(t *testing.T) {
		svc, repo, _ := newTestExamService()
		repo.exams.On("GetByID", uint(9)).Return(nil, apperrors.NewNotFoundError("exam", 9))

		_, err := svc.AuditTrail(context.Background(), 9)

		assert.True(t, IsNotFound(err))
		repo.audit.AssertNotCalled(t, "ListByExam", mock.Anything)
	})
}
