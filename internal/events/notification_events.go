package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of events the grading service emits
type EventType string

const (
	// EventExamGraded is emitted once per successful finalization
	EventExamGraded EventType = "exam_graded"

	EventExamPublished EventType = "exam.published"
	EventExamCompleted EventType = "exam.completed"
	EventExamCancelled EventType = "exam.cancelled"
)

const (
	eventSource  = "grading-service"
	eventVersion = "1.0"
)

// NotificationEvent is the envelope every event is published in
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ExamGradedEvent tells the delivery collaborator a student's result is available
type ExamGradedEvent struct {
	AttemptID   uint      `json:"attempt_id"`
	ExamID      uint      `json:"exam_id"`
	StudentID   string    `json:"student_id"`
	ExamTitle   string    `json:"exam_title"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"max_score"`
	Percentage  float64   `json:"percentage"`
	LetterGrade string    `json:"letter_grade"`
	Passed      bool      `json:"passed"`
	GradedAt    time.Time `json:"graded_at"`
}

type ExamPublishedEvent struct {
	ExamID          uint       `json:"exam_id"`
	ExamTitle       string     `json:"exam_title"`
	CourseID        *uint      `json:"course_id,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	StudentIDs      []string   `json:"student_ids"`
	PublishedBy     string     `json:"published_by,omitempty"`
}

// ExamStatusChangedEvent covers the completed and cancelled transitions
type ExamStatusChangedEvent struct {
	ExamID     uint      `json:"exam_id"`
	ExamTitle  string    `json:"exam_title"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedAt  time.Time `json:"changed_at"`
	ChangedBy  string    `json:"changed_by,omitempty"`
}

func newEvent(eventType EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewExamGradedEvent(payload ExamGradedEvent) *NotificationEvent {
	return newEvent(EventExamGraded, payload)
}

func NewExamPublishedEvent(payload ExamPublishedEvent) *NotificationEvent {
	return newEvent(EventExamPublished, payload)
}

// NewExamStatusChangedEvent builds the event for a terminal transition, nil
// for statuses that are not announced.
func NewExamStatusChangedEvent(payload ExamStatusChangedEvent) *NotificationEvent {
	switch payload.ToStatus {
	case "completed":
		return newEvent(EventExamCompleted, payload)
	case "cancelled":
		return newEvent(EventExamCancelled, payload)
	default:
		return nil
	}
}

// GenerateEventID returns a random event id
func GenerateEventID() string {
	return uuid.NewString()
}
