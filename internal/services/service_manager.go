package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/grading-service/internal/cache"
	"github.com/SAP-F-2025/grading-service/internal/events"
	"github.com/SAP-F-2025/grading-service/internal/repositories"
	"github.com/SAP-F-2025/grading-service/internal/validator"
)

// ServiceManager gives handlers access to every service
type ServiceManager interface {
	Exam() ExamService
	Grading() GradingService
	Aggregation() AggregationService
	Export() ExportService
}

type serviceManager struct {
	exam        ExamService
	grading     GradingService
	aggregation AggregationService
	export      ExportService
}

type ServiceDeps struct {
	Repo               repositories.Repository
	Cache              cache.CacheService
	EventPublisher     events.EventPublisher
	TranscriptCacheTTL time.Duration
	Logger             *slog.Logger
	Validator          *validator.Validator
}

func NewServiceManager(deps ServiceDeps) ServiceManager {
	notifier := NewNotificationEventService(deps.EventPublisher, deps.Logger)
	aggregation := NewAggregationService(deps.Repo, deps.Cache, deps.TranscriptCacheTTL, deps.Logger)

	return &serviceManager{
		exam:        NewExamService(deps.Repo, notifier, deps.Logger, deps.Validator),
		grading:     NewGradingService(deps.Repo, notifier, aggregation, deps.Logger, deps.Validator),
		aggregation: aggregation,
		export:      NewExportService(deps.Repo, aggregation, deps.Logger),
	}
}

func (m *serviceManager) Exam() ExamService               { return m.exam }
func (m *serviceManager) Grading() GradingService         { return m.grading }
func (m *serviceManager) Aggregation() AggregationService { return m.aggregation }
func (m *serviceManager) Export() ExportService           { return m.export }
