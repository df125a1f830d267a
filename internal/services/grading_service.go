package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/SAP-F-2025/grading-service/internal/errors"
	"github.com/SAP-F-2025/grading-service/internal/grading"
	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/SAP-F-2025/grading-service/internal/repositories"
	"github.com/SAP-F-2025/grading-service/internal/validator"
	"gorm.io/gorm"
)

// GradingService writes answer grades and finalizes attempts into exam results
type GradingService interface {
	GradeAnswer(ctx context.Context, answerID uint, req *GradeAnswerRequest, graderID string) (*GradeAnswerResponse, error)
	AutoGradeAttempt(ctx context.Context, attemptID uint, graderID string) (*AutoGradeResponse, error)
	Progress(ctx context.Context, attemptID uint) (*GradingProgressResponse, error)
	Finalize(ctx context.Context, attemptID uint, req *FinalizeRequest, graderID string) (*models.ExamResult, error)
}

type gradingService struct {
	repo        repositories.Repository
	notifier    NotificationEventService
	aggregation AggregationService
	logger      *slog.Logger
	opLogger    *ServiceLogger
	validator   *validator.Validator
	now         func() time.Time
}

func NewGradingService(
	repo repositories.Repository,
	notifier NotificationEventService,
	aggregation AggregationService,
	logger *slog.Logger,
	validator *validator.Validator,
) GradingService {
	return &gradingService{
		repo:        repo,
		notifier:    notifier,
		aggregation: aggregation,
		logger:      logger,
		opLogger:    NewServiceLogger(logger, "grading"),
		validator:   validator,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *gradingService) GradeAnswer(ctx context.Context, answerID uint, req *GradeAnswerRequest, graderID string) (resp *GradeAnswerResponse, err error) {
	op := s.opLogger.WithOperation(ctx, "grade_answer", graderID)
	defer func() { op.LogResult(answerID, "answer", err) }()

	if strings.TrimSpace(graderID) == "" {
		return nil, ErrGraderRequired
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	answer, err := s.repo.Answer().GetByID(ctx, nil, answerID)
	if err != nil {
		return nil, err
	}
	if req.ExpectedVersion != nil && *req.ExpectedVersion != answer.Version {
		return nil, apperrors.NewConcurrencyConflictError("answer", answer.ID, *req.ExpectedVersion)
	}

	attempt, exam, err := s.loadAttemptForGrading(ctx, answer.AttemptID)
	if err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, nil, answer.QuestionID)
	if err != nil {
		return nil, err
	}
	if question.ExamID != exam.ID {
		var errs apperrors.ValidationErrors
		errs.Add("question_id", fmt.Sprintf("question %d is not part of exam %d", question.ID, exam.ID), question.ID)
		return nil, errs
	}

	previous := gradeValue(answer.Grade)
	graded, err := grading.GradeAnswer(question, answer, req.override())
	if err != nil {
		return nil, err
	}
	s.stamp(graded, graderID)

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Answer().UpdateGrade(ctx, tx, graded); err != nil {
			return err
		}
		if err := s.repo.Attempt().MarkForRegrade(ctx, tx, attempt.ID); err != nil {
			return err
		}
		return writeAudit(ctx, s.repo, tx, s.gradeAudit(exam.ID, question, graded, previous, graderID))
	})
	if err != nil {
		return nil, err
	}

	answers, err := s.repo.Answer().ListByAttempt(ctx, nil, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	progress := grading.GradingProgress(answers)

	s.logger.Info("Answer graded",
		"answer_id", graded.ID,
		"attempt_id", attempt.ID,
		"question_number", question.Number,
		"grade", *graded.Grade,
		"progress", progress)

	return &GradeAnswerResponse{Answer: graded, Progress: progress}, nil
}

// AutoGradeAttempt grades every ungraded multiple_choice answer of the attempt
// in one transaction. Answers that already carry a grade keep it.
func (s *gradingService) AutoGradeAttempt(ctx context.Context, attemptID uint, graderID string) (resp *AutoGradeResponse, err error) {
	op := s.opLogger.WithOperation(ctx, "auto_grade_attempt", graderID)
	defer func() { op.LogResult(attemptID, "attempt", err) }()

	if strings.TrimSpace(graderID) == "" {
		return nil, ErrGraderRequired
	}

	attempt, exam, err := s.loadAttemptForGrading(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	questions, err := s.repo.Question().ListByExam(ctx, nil, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	answers, err := s.repo.Answer().ListByAttempt(ctx, nil, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	byID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var pending []*models.Answer
	for i, answer := range answers {
		q, ok := byID[answer.QuestionID]
		if !ok || !q.Type.IsAutoGraded() || answer.IsGraded() {
			continue
		}
		graded, err := grading.GradeAnswer(q, answer, nil)
		if err != nil {
			return nil, err
		}
		s.stamp(graded, graderID)
		answers[i] = graded
		pending = append(pending, graded)
	}

	if len(pending) > 0 {
		err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
			for _, graded := range pending {
				if err := s.repo.Answer().UpdateGrade(ctx, tx, graded); err != nil {
					return err
				}
				entry := s.gradeAudit(exam.ID, byID[graded.QuestionID], graded, nil, graderID)
				if err := writeAudit(ctx, s.repo, tx, entry); err != nil {
					return err
				}
			}
			return s.repo.Attempt().MarkForRegrade(ctx, tx, attempt.ID)
		})
		if err != nil {
			return nil, err
		}
	}

	progress := grading.GradingProgress(answers)
	s.logger.Info("Attempt auto-graded",
		"attempt_id", attempt.ID,
		"graded", len(pending),
		"progress", progress)

	return &AutoGradeResponse{AttemptID: attempt.ID, Graded: len(pending), Progress: progress}, nil
}

func (s *gradingService) Progress(ctx context.Context, attemptID uint) (*GradingProgressResponse, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		return nil, err
	}
	questions, err := s.repo.Question().ListByExam(ctx, nil, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	answers, err := s.repo.Answer().ListByAttempt(ctx, nil, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	graded := 0
	for _, a := range answers {
		if a.IsGraded() {
			graded++
		}
	}

	ungraded := grading.UngradedQuestions(questions, answers)
	if ungraded == nil {
		ungraded = []int{}
	}

	return &GradingProgressResponse{
		AttemptID:         attempt.ID,
		TotalAnswers:      len(answers),
		GradedAnswers:     graded,
		Progress:          grading.GradingProgress(answers),
		UngradedQuestions: ungraded,
		Finalized:         attempt.Graded,
	}, nil
}

// Finalize computes the exam result of a fully graded attempt and stores it
// together with the attempt score. Finalizing again overwrites the result.
func (s *gradingService) Finalize(ctx context.Context, attemptID uint, req *FinalizeRequest, graderID string) (result *models.ExamResult, err error) {
	op := s.opLogger.WithOperation(ctx, "finalize_attempt", graderID)
	defer func() { op.LogResult(attemptID, "attempt", err) }()

	if strings.TrimSpace(graderID) == "" {
		return nil, ErrGraderRequired
	}
	if req == nil {
		req = &FinalizeRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	attempt, exam, err := s.loadAttemptForGrading(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if req.ExpectedVersion != nil && *req.ExpectedVersion != attempt.Version {
		return nil, apperrors.NewConcurrencyConflictError("attempt", attempt.ID, *req.ExpectedVersion)
	}

	questions, err := s.repo.Question().ListByExam(ctx, nil, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	answers, err := s.repo.Answer().ListByAttempt(ctx, nil, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	grader := graderID
	f, err := grading.Finalize(exam, questions, attempt, answers, grading.FinalizeOptions{
		Feedback: req.Feedback,
		GradedBy: &grader,
		Now:      s.now(),
	})
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Attempt().UpdateScore(ctx, tx, f.Attempt); err != nil {
			return err
		}
		if err := s.repo.Result().Upsert(ctx, tx, f.Result); err != nil {
			return err
		}
		return writeAudit(ctx, s.repo, tx, auditEntry{
			action:       models.AuditAttemptFinalized,
			examID:       exam.ID,
			resourceType: "attempt",
			resourceID:   attempt.ID,
			actorID:      graderID,
			description:  fmt.Sprintf("attempt %d of student %s finalized", attempt.ID, attempt.StudentID),
			changes: map[string]interface{}{
				"score":        gradeValue(f.Result.Score),
				"max_score":    f.Result.MaxScore,
				"letter_grade": f.Result.LetterGrade,
				"passed":       f.Result.Passed,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Attempt finalized",
		"attempt_id", attempt.ID,
		"exam_id", exam.ID,
		"student_id", attempt.StudentID,
		"score", *f.Result.Score,
		"letter_grade", f.Result.LetterGrade,
		"passed", f.Result.Passed)

	if s.aggregation != nil {
		if err := s.aggregation.Invalidate(ctx, attempt.StudentID); err != nil {
			s.logger.Warn("Failed to invalidate transcripts", "student_id", attempt.StudentID, "error", err)
		}
	}

	// The result is stored; a lost notification must not fail the call
	if err := s.notifier.NotifyExamGraded(ctx, exam, f.Result); err != nil {
		s.logger.Error("Failed to publish exam graded event",
			"attempt_id", attempt.ID,
			"error", err)
	}

	return f.Result, nil
}

// loadAttemptForGrading loads the attempt and its exam and rejects grade
// writes outside the published → grading window.
func (s *gradingService) loadAttemptForGrading(ctx context.Context, attemptID uint) (*models.Attempt, *models.Exam, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		return nil, nil, err
	}
	exam, err := s.repo.Exam().GetByID(ctx, nil, attempt.ExamID)
	if err != nil {
		return nil, nil, err
	}
	if !exam.Status.AcceptsGrading() {
		return nil, nil, NewBusinessRuleError(RuleGradingWindow,
			fmt.Sprintf("exam %d is %s and does not accept grades", exam.ID, exam.Status),
			map[string]interface{}{"exam_id": exam.ID, "status": exam.Status})
	}
	return attempt, exam, nil
}

func (s *gradingService) gradeAudit(examID uint, question *models.Question, answer *models.Answer, previous interface{}, graderID string) auditEntry {
	return auditEntry{
		action:       models.AuditAnswerGraded,
		examID:       examID,
		resourceType: "answer",
		resourceID:   answer.ID,
		actorID:      graderID,
		description:  fmt.Sprintf("answer %d to question %d graded", answer.ID, question.Number),
		changes: map[string]interface{}{
			"grade_before": previous,
			"grade_after":  gradeValue(answer.Grade),
			"is_correct":   answer.IsCorrect,
		},
	}
}

func (s *gradingService) stamp(answer *models.Answer, graderID string) {
	now := s.now()
	grader := graderID
	answer.GradedBy = &grader
	answer.GradedAt = &now
}
