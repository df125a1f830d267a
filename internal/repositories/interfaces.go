package repositories

import (
	"context"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"gorm.io/gorm"
)

// Repository groups every store the grading service reads or writes. Methods
// of the sub-repositories take an optional tx; nil means the default connection.
type Repository interface {
	Exam() ExamRepository
	Question() QuestionRepository
	Attempt() AttemptRepository
	Answer() AnswerRepository
	Result() ResultRepository
	Course() CourseRepository
	Audit() AuditRepository

	// WithTransaction runs fn inside one database transaction
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
	Close() error
}

// ExamRepository persists exams. Writes are compare-and-set on the status and
// version the caller read, and bump the version on success.
type ExamRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, exam *models.Exam, to models.ExamStatus) error
	UpdateTotalPoints(ctx context.Context, tx *gorm.DB, exam *models.Exam, totalPoints float64) error
}

type QuestionRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	// ListByExam returns the questions of an exam ordered by number
	ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Question, error)
	// ReplaceForExam swaps the full question set of an exam
	ReplaceForExam(ctx context.Context, tx *gorm.DB, examID uint, questions []*models.Question) error
}

type AttemptRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error)
	ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Attempt, error)
	CountByExam(ctx context.Context, tx *gorm.DB, examID uint) (int64, error)
	// UpdateScore writes the finalization fields if the stored version still
	// equals attempt.Version, then bumps it.
	UpdateScore(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error
	// MarkForRegrade clears the graded flag of the attempts and bumps their
	// version so a finalization computed from older answers cannot commit.
	MarkForRegrade(ctx context.Context, tx *gorm.DB, attemptIDs ...uint) error
}

type AnswerRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error)
	ListByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error)
	// UpdateGrade writes the grading fields if the stored version still
	// equals answer.Version, then bumps it.
	UpdateGrade(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	// AttemptIDsByExam returns the attempts of an exam that have answer rows
	AttemptIDsByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]uint, error)
	DeleteByQuestions(ctx context.Context, tx *gorm.DB, questionIDs []uint) error
	// ResetGrades clears the grading fields of every answer to the questions
	ResetGrades(ctx context.Context, tx *gorm.DB, questionIDs []uint) error
	// CreateBlank adds an unanswered row per (attempt, question) pair
	CreateBlank(ctx context.Context, tx *gorm.DB, attemptIDs, questionIDs []uint) error
}

type ResultRepository interface {
	// Upsert inserts the result or overwrites the one of the same attempt
	Upsert(ctx context.Context, tx *gorm.DB, result *models.ExamResult) error
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID, academicYear string) ([]*models.ExamResult, error)
	ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.ExamResult, error)
}

type CourseRepository interface {
	ListByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Course, error)
	// ListEnrolled returns the courses a student follows in an academic year
	ListEnrolled(ctx context.Context, tx *gorm.DB, studentID, academicYear string) ([]*models.Course, error)
}

// AuditRepository is append-only
type AuditRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error
	// ListByExam returns the trail of an exam, oldest first
	ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.AuditLog, error)
}
