package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/grading-service/internal/events"
	"github.com/SAP-F-2025/grading-service/internal/models"
)

// NotificationEventService turns lifecycle and grading outcomes into events.
// Delivery to students and staff is done by the consumers of the topic.
type NotificationEventService interface {
	// Exam notifications
	NotifyExamPublished(ctx context.Context, exam *models.Exam, studentIDs []string, publishedBy string) error
	NotifyExamStatusChanged(ctx context.Context, exam *models.Exam, from models.ExamStatus, changedBy string) error

	// Grading notifications
	NotifyExamGraded(ctx context.Context, exam *models.Exam, result *models.ExamResult) error
}

type notificationEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewNotificationEventService(
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
) NotificationEventService {
	return &notificationEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// ===== EXAM NOTIFICATIONS =====

func (s *notificationEventService) NotifyExamPublished(ctx context.Context, exam *models.Exam, studentIDs []string, publishedBy string) error {
	s.logger.Info("Publishing exam published event",
		"exam_id", exam.ID,
		"students", len(studentIDs))

	event := events.NewExamPublishedEvent(events.ExamPublishedEvent{
		ExamID:          exam.ID,
		ExamTitle:       exam.Title,
		CourseID:        exam.CourseID,
		Date:            exam.Date,
		DurationMinutes: exam.DurationMinutes,
		StudentIDs:      studentIDs,
		PublishedBy:     publishedBy,
	})

	return s.publish(ctx, event)
}

func (s *notificationEventService) NotifyExamStatusChanged(ctx context.Context, exam *models.Exam, from models.ExamStatus, changedBy string) error {
	event := events.NewExamStatusChangedEvent(events.ExamStatusChangedEvent{
		ExamID:     exam.ID,
		ExamTitle:  exam.Title,
		FromStatus: string(from),
		ToStatus:   string(exam.Status),
		ChangedAt:  time.Now().UTC(),
		ChangedBy:  changedBy,
	})
	if event == nil {
		return nil
	}

	s.logger.Info("Publishing exam status event",
		"exam_id", exam.ID,
		"from_status", from,
		"to_status", exam.Status)

	return s.publish(ctx, event)
}

// ===== GRADING NOTIFICATIONS =====

func (s *notificationEventService) NotifyExamGraded(ctx context.Context, exam *models.Exam, result *models.ExamResult) error {
	s.logger.Info("Publishing exam graded event",
		"attempt_id", result.AttemptID,
		"student_id", result.StudentID)

	var score float64
	if result.Score != nil {
		score = *result.Score
	}

	event := events.NewExamGradedEvent(events.ExamGradedEvent{
		AttemptID:   result.AttemptID,
		ExamID:      result.ExamID,
		StudentID:   result.StudentID,
		ExamTitle:   exam.Title,
		Score:       score,
		MaxScore:    result.MaxScore,
		Percentage:  result.Percentage,
		LetterGrade: result.LetterGrade,
		Passed:      result.Passed,
		GradedAt:    result.GradedAt,
	})

	return s.publish(ctx, event)
}

func (s *notificationEventService) publish(ctx context.Context, event *events.NotificationEvent) error {
	if err := s.eventPublisher.PublishNotificationEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
