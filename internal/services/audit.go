package services

import (
	"context"
	"encoding/json"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/SAP-F-2025/grading-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type auditEntry struct {
	action       models.AuditAction
	examID       uint
	resourceType string
	resourceID   uint
	actorID      string
	description  string
	changes      map[string]interface{}
}

// writeAudit appends entry inside tx so the trail never disagrees with the data
func writeAudit(ctx context.Context, repo repositories.Repository, tx *gorm.DB, entry auditEntry) error {
	log := &models.AuditLog{
		Action:       entry.action,
		ExamID:       entry.examID,
		ResourceType: entry.resourceType,
		ResourceID:   entry.resourceID,
		ActorID:      entry.actorID,
		Description:  entry.description,
	}
	if len(entry.changes) > 0 {
		data, err := json.Marshal(entry.changes)
		if err != nil {
			return err
		}
		log.Changes = datatypes.JSON(data)
	}
	return repo.Audit().Create(ctx, tx, log)
}

func gradeValue(grade *float64) interface{} {
	if grade == nil {
		return nil
	}
	return *grade
}
