package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/grading-service/internal/services"
	"github.com/SAP-F-2025/grading-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	examHandler     *ExamHandler
	questionHandler *QuestionHandler
	gradingHandler  *GradingHandler
	studentHandler  *StudentHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		examHandler:     NewExamHandler(serviceManager.Exam(), serviceManager.Export(), logger),
		questionHandler: NewQuestionHandler(serviceManager.Exam(), logger),
		gradingHandler:  NewGradingHandler(serviceManager.Grading(), logger),
		studentHandler:  NewStudentHandler(serviceManager.Aggregation(), serviceManager.Export(), logger),
	}
}

// SetupRoutes sets up all API routes. auth guards everything under /api/v1.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	if auth != nil {
		v1.Use(auth)
	}
	{
		// Exam lifecycle routes
		exams := v1.Group("/exams")
		{
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.GET("/:id/publish-check", hm.examHandler.CheckPublish)
			exams.POST("/:id/publish", hm.examHandler.PublishExam)
			exams.POST("/:id/start", hm.examHandler.StartExam)
			exams.POST("/:id/grading", hm.examHandler.BeginGrading)
			exams.POST("/:id/complete", hm.examHandler.CompleteExam)
			exams.POST("/:id/cancel", hm.examHandler.CancelExam)

			// Question set management
			exams.PUT("/:id/questions", hm.questionHandler.ReplaceQuestions)

			exams.GET("/:id/results.xlsx", hm.examHandler.ExportResults)
			exams.GET("/:id/audit", hm.examHandler.GetAuditTrail)
		}

		// Grading routes
		grading := v1.Group("/grading")
		{
			grading.POST("/answers/:answer_id", hm.gradingHandler.GradeAnswer)
			grading.POST("/attempts/:attempt_id/auto", hm.gradingHandler.AutoGradeAttempt)
			grading.GET("/attempts/:attempt_id/progress", hm.gradingHandler.GetProgress)
			grading.POST("/attempts/:attempt_id/finalize", hm.gradingHandler.FinalizeAttempt)
		}

		// Aggregation routes
		students := v1.Group("/students")
		{
			students.GET("/:student_id/averages", hm.studentHandler.GetAverages)
			students.GET("/:student_id/transcript.xlsx", hm.studentHandler.ExportTranscript)
		}
	}
}

// HealthCheck reports that the service is up
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "grading-service",
	})
}
