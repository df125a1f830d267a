package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"gorm.io/gorm"
)

type AuditPostgreSQL struct {
	base
}

func (a *AuditPostgreSQL) Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	if err := a.getDB(ctx, tx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write audit entry %s for %s %d: %w", entry.Action, entry.ResourceType, entry.ResourceID, err)
	}
	return nil
}

func (a *AuditPostgreSQL) ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.AuditLog, error) {
	var entries []*models.AuditLog
	if err := a.getDB(ctx, tx).
		Where("exam_id = ?", examID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit trail of exam %d: %w", examID, err)
	}
	return entries, nil
}
