package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditExamStatusChanged AuditAction = "exam_status_changed"
	AuditQuestionsReplaced AuditAction = "questions_replaced"
	AuditAnswerGraded      AuditAction = "answer_graded"
	AuditAttemptFinalized  AuditAction = "attempt_finalized"
)

// AuditLog is one grading-relevant change, written in the same transaction
// as the change itself
type AuditLog struct {
	ID     uint        `json:"id" gorm:"primaryKey"`
	Action AuditAction `json:"action" gorm:"not null;size:40;index"`

	// Every entry belongs to an exam so its trail can be read in one query
	ExamID uint `json:"exam_id" gorm:"not null;index"`

	// Target information
	ResourceType string `json:"resource_type" gorm:"not null;size:20"` // exam, answer, attempt
	ResourceID   uint   `json:"resource_id" gorm:"not null"`

	ActorID     string         `json:"actor_id" gorm:"not null;size:255;index"`
	Description string         `json:"description" gorm:"not null;type:text"`
	Changes     datatypes.JSON `json:"changes" gorm:"type:jsonb"` // Before/after values

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
