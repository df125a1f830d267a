package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/grading-service/internal/grading"
	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/SAP-F-2025/grading-service/internal/repositories"
	"github.com/SAP-F-2025/grading-service/internal/validator"
	"gorm.io/gorm"
)

// ExamService drives the exam lifecycle: draft → published → in_progress →
// grading → completed, with cancellation from any non-terminal status.
type ExamService interface {
	Get(ctx context.Context, id uint) (*models.Exam, error)
	CheckPublish(ctx context.Context, id uint) (*grading.PublishCheck, error)

	Publish(ctx context.Context, id uint, actorID string) (*models.Exam, error)
	Start(ctx context.Context, id uint, actorID string) (*models.Exam, error)
	BeginGrading(ctx context.Context, id uint, actorID string) (*models.Exam, error)
	Complete(ctx context.Context, id uint, actorID string) (*models.Exam, error)
	Cancel(ctx context.Context, id uint, actorID string) (*models.Exam, error)

	ReplaceQuestions(ctx context.Context, id uint, req *ReplaceQuestionsRequest, actorID string) (*ExamQuestionsResponse, error)

	// AuditTrail lists the recorded changes of an exam, oldest first
	AuditTrail(ctx context.Context, id uint) ([]*models.AuditLog, error)
}

type examService struct {
	repo      repositories.Repository
	notifier  NotificationEventService
	logger    *slog.Logger
	opLogger  *ServiceLogger
	validator *validator.Validator
}

func NewExamService(
	repo repositories.Repository,
	notifier NotificationEventService,
	logger *slog.Logger,
	validator *validator.Validator,
) ExamService {
	return &examService{
		repo:      repo,
		notifier:  notifier,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, "exam"),
		validator: validator,
	}
}

func (s *examService) Get(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return exam, nil
}

// CheckPublish reports every rule that currently blocks publication without changing the exam
func (s *examService) CheckPublish(ctx context.Context, id uint) (*grading.PublishCheck, error) {
	exam, questions, count, err := s.loadForPublish(ctx, id)
	if err != nil {
		return nil, err
	}
	check := grading.CanPublish(exam, questions, int(count))
	return &check, nil
}

func (s *examService) Publish(ctx context.Context, id uint, actorID string) (exam *models.Exam, err error) {
	op := s.opLogger.WithOperation(ctx, "publish_exam", actorID)
	defer func() { op.LogResult(id, "exam", err) }()

	s.logger.Info("Publishing exam", "exam_id", id, "actor_id", actorID)

	exam, questions, count, err := s.loadForPublish(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(exam, actorID, "publish"); err != nil {
		return nil, err
	}
	if err := grading.CanPublish(exam, questions, int(count)).Err(); err != nil {
		return nil, err
	}

	if err := s.updateStatus(ctx, exam, models.ExamPublished, actorID); err != nil {
		return nil, err
	}

	studentIDs, err := s.assignedStudents(ctx, exam.ID)
	if err != nil {
		s.logger.Error("Failed to list assigned students for publish event", "exam_id", exam.ID, "error", err)
		return exam, nil
	}
	if err := s.notifier.NotifyExamPublished(ctx, exam, studentIDs, actorID); err != nil {
		s.logger.Error("Failed to publish exam published event", "exam_id", exam.ID, "error", err)
	}

	return exam, nil
}

func (s *examService) Start(ctx context.Context, id uint, actorID string) (*models.Exam, error) {
	return s.transition(ctx, id, models.ExamInProgress, actorID, nil)
}

func (s *examService) BeginGrading(ctx context.Context, id uint, actorID string) (*models.Exam, error) {
	return s.transition(ctx, id, models.ExamGrading, actorID, nil)
}

// Complete closes grading; every submitted attempt must already be finalized
func (s *examService) Complete(ctx context.Context, id uint, actorID string) (*models.Exam, error) {
	return s.transition(ctx, id, models.ExamCompleted, actorID, func(exam *models.Exam) error {
		attempts, err := s.repo.Attempt().ListByExam(ctx, nil, exam.ID)
		if err != nil {
			return fmt.Errorf("failed to load attempts: %w", err)
		}
		return grading.CanComplete(attempts)
	})
}

func (s *examService) Cancel(ctx context.Context, id uint, actorID string) (*models.Exam, error) {
	return s.transition(ctx, id, models.ExamCancelled, actorID, func(exam *models.Exam) error {
		return s.checkOwnership(exam, actorID, "cancel")
	})
}

func (s *examService) transition(ctx context.Context, id uint, to models.ExamStatus, actorID string, guard func(*models.Exam) error) (exam *models.Exam, err error) {
	op := s.opLogger.WithOperation(ctx, "transition_exam_"+string(to), actorID)
	defer func() { op.LogResult(id, "exam", err) }()

	exam, err = s.repo.Exam().GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	from := exam.Status
	if err := grading.CheckTransition(from, to); err != nil {
		return nil, err
	}
	if guard != nil {
		if err := guard(exam); err != nil {
			return nil, err
		}
	}

	if err := s.updateStatus(ctx, exam, to, actorID); err != nil {
		return nil, err
	}

	s.logger.Info("Exam status changed",
		"exam_id", exam.ID,
		"from_status", from,
		"to_status", to,
		"actor_id", actorID)

	if err := s.notifier.NotifyExamStatusChanged(ctx, exam, from, actorID); err != nil {
		s.logger.Error("Failed to publish exam status event", "exam_id", exam.ID, "error", err)
	}

	return exam, nil
}

// ReplaceQuestions swaps the whole question set. Published exams get their
// total points recomputed in the same transaction.
func (s *examService) ReplaceQuestions(ctx context.Context, id uint, req *ReplaceQuestionsRequest, actorID string) (resp *ExamQuestionsResponse, err error) {
	op := s.opLogger.WithOperation(ctx, "replace_questions", actorID)
	defer func() { op.LogResult(id, "exam", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exam, err := s.repo.Exam().GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(exam, actorID, "edit questions of"); err != nil {
		return nil, err
	}

	questions := req.toModels(exam.ID)
	total, err := grading.PlanQuestionEdit(exam, questions)
	if err != nil {
		return nil, err
	}

	previousTotal := exam.TotalPoints
	var change grading.QuestionSetChange
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		current, err := s.repo.Question().ListByExam(ctx, tx, exam.ID)
		if err != nil {
			return fmt.Errorf("failed to load questions: %w", err)
		}
		change = grading.DiffQuestionSets(current, questions)

		if err := s.repo.Question().ReplaceForExam(ctx, tx, exam.ID, questions); err != nil {
			return err
		}
		if err := s.reconcileAnswers(ctx, tx, questions, change, exam.ID); err != nil {
			return err
		}
		if exam.Status == models.ExamPublished && total != exam.TotalPoints {
			if err := s.repo.Exam().UpdateTotalPoints(ctx, tx, exam, total); err != nil {
				return err
			}
		}
		return writeAudit(ctx, s.repo, tx, auditEntry{
			action:       models.AuditQuestionsReplaced,
			examID:       exam.ID,
			resourceType: "exam",
			resourceID:   exam.ID,
			actorID:      actorID,
			description:  fmt.Sprintf("question set of exam %d replaced with %d questions", exam.ID, len(questions)),
			changes: map[string]interface{}{
				"questions":           len(questions),
				"total_points_before": previousTotal,
				"total_points_after":  exam.TotalPoints,
				"removed_questions":   len(change.Removed),
				"regraded_questions":  len(change.Regrade),
				"added_questions":     len(change.Added),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Exam questions replaced",
		"exam_id", exam.ID,
		"questions", len(questions),
		"total_points", exam.TotalPoints)

	return &ExamQuestionsResponse{Exam: exam, Questions: questions}, nil
}

// reconcileAnswers keeps stored answers consistent with a replaced question
// set: answers to removed questions go, answers to redefined questions lose
// their grade, and every attempt with answer rows gets a blank row per added
// question. Touched attempts must be finalized again.
func (s *examService) reconcileAnswers(ctx context.Context, tx *gorm.DB, questions []*models.Question, change grading.QuestionSetChange, examID uint) error {
	if change.Empty() {
		return nil
	}
	attemptIDs, err := s.repo.Answer().AttemptIDsByExam(ctx, tx, examID)
	if err != nil {
		return err
	}
	if len(attemptIDs) == 0 {
		return nil
	}

	if err := s.repo.Answer().DeleteByQuestions(ctx, tx, change.Removed); err != nil {
		return err
	}
	if err := s.repo.Answer().ResetGrades(ctx, tx, change.Regrade); err != nil {
		return err
	}

	added := make(map[int]bool, len(change.Added))
	for _, n := range change.Added {
		added[n] = true
	}
	var addedIDs []uint
	for _, q := range questions {
		if added[q.Number] {
			addedIDs = append(addedIDs, q.ID)
		}
	}
	if err := s.repo.Answer().CreateBlank(ctx, tx, attemptIDs, addedIDs); err != nil {
		return err
	}

	return s.repo.Attempt().MarkForRegrade(ctx, tx, attemptIDs...)
}

func (s *examService) AuditTrail(ctx context.Context, id uint) ([]*models.AuditLog, error) {
	if _, err := s.repo.Exam().GetByID(ctx, nil, id); err != nil {
		return nil, err
	}
	entries, err := s.repo.Audit().ListByExam(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.AuditLog{}
	}
	return entries, nil
}

// updateStatus writes the new status and its audit entry in one transaction
func (s *examService) updateStatus(ctx context.Context, exam *models.Exam, to models.ExamStatus, actorID string) error {
	from := exam.Status
	return s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Exam().UpdateStatus(ctx, tx, exam, to); err != nil {
			return err
		}
		return writeAudit(ctx, s.repo, tx, auditEntry{
			action:       models.AuditExamStatusChanged,
			examID:       exam.ID,
			resourceType: "exam",
			resourceID:   exam.ID,
			actorID:      actorID,
			description:  fmt.Sprintf("exam %d moved from %s to %s", exam.ID, from, to),
			changes:      map[string]interface{}{"from": from, "to": to},
		})
	})
}

func (s *examService) loadForPublish(ctx context.Context, id uint) (*models.Exam, []*models.Question, int64, error) {
	exam, err := s.repo.Exam().GetByID(ctx, nil, id)
	if err != nil {
		return nil, nil, 0, err
	}
	questions, err := s.repo.Question().ListByExam(ctx, nil, id)
	if err != nil {
		return nil, nil, 0, err
	}
	count, err := s.repo.Attempt().CountByExam(ctx, nil, id)
	if err != nil {
		return nil, nil, 0, err
	}
	return exam, questions, count, nil
}

func (s *examService) assignedStudents(ctx context.Context, examID uint) ([]string, error) {
	attempts, err := s.repo.Attempt().ListByExam(ctx, nil, examID)
	if err != nil {
		return nil, err
	}
	studentIDs := make([]string, 0, len(attempts))
	for _, a := range attempts {
		studentIDs = append(studentIDs, a.StudentID)
	}
	return studentIDs, nil
}

// checkOwnership restricts changes to a draft exam to the staff member who created it
func (s *examService) checkOwnership(exam *models.Exam, actorID, action string) error {
	if exam.Status != models.ExamDraft || exam.CreatedBy == actorID {
		return nil
	}
	return NewPermissionError(actorID, exam.ID, "exam", action, "draft exams can only be changed by their creator")
}
