package postgres

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/grading-service/internal/errors"
	"github.com/SAP-F-2025/grading-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the PostgreSQL implementation of repositories.Repository
type Repository struct {
	db *gorm.DB

	exam     *ExamPostgreSQL
	question *QuestionPostgreSQL
	attempt  *AttemptPostgreSQL
	answer   *AnswerPostgreSQL
	result   *ResultPostgreSQL
	course   *CoursePostgreSQL
	audit    *AuditPostgreSQL
}

func NewRepository(db *gorm.DB) *Repository {
	b := base{db: db}
	return &Repository{
		db:       db,
		exam:     &ExamPostgreSQL{base: b},
		question: &QuestionPostgreSQL{base: b},
		attempt:  &AttemptPostgreSQL{base: b},
		answer:   &AnswerPostgreSQL{base: b},
		result:   &ResultPostgreSQL{base: b},
		course:   &CoursePostgreSQL{base: b},
		audit:    &AuditPostgreSQL{base: b},
	}
}

func (r *Repository) Exam() repositories.ExamRepository         { return r.exam }
func (r *Repository) Question() repositories.QuestionRepository { return r.question }
func (r *Repository) Attempt() repositories.AttemptRepository   { return r.attempt }
func (r *Repository) Answer() repositories.AnswerRepository     { return r.answer }
func (r *Repository) Result() repositories.ResultRepository     { return r.result }
func (r *Repository) Course() repositories.CourseRepository     { return r.course }
func (r *Repository) Audit() repositories.AuditRepository       { return r.audit }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// base carries the shared connection of every sub-repository
type base struct {
	db *gorm.DB
}

// getDB returns tx when the caller runs inside a transaction
func (b base) getDB(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return b.db.WithContext(ctx)
}

func notFound(err error, resource string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFoundError(resource, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", resource, id, err)
}

// versionConflict tells a lost race apart from a missing row after a
// conditional update matched nothing.
func versionConflict(db *gorm.DB, model interface{}, resource string, id uint, expected int) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s %d: %w", resource, id, err)
	}
	if count == 0 {
		return apperrors.NewNotFoundError(resource, id)
	}
	return apperrors.NewConcurrencyConflictError(resource, id, expected)
}
