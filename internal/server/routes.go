// internal/server/routes.go

// Package server exposes the review pipeline over HTTP: application
// submission plus the four pipeline operations, with Prometheus metrics and
// a health probe.
package server

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/common/validation"
	"review-pipeline/internal/models"
	"review-pipeline/internal/pipeline"
	"review-pipeline/internal/store"
)

// Pipeline is the orchestrator surface the handlers depend on.
type Pipeline interface {
	Run(ctx context.Context, applicationID string) error
	RetryStage(ctx context.Context, applicationID string, stage models.StageType) error
	GetStatus(ctx context.Context, applicationID string) (*pipeline.PipelineStatus, error)
	GetDetailedReport(ctx context.Context, applicationID string) (*pipeline.DetailedReport, error)
}

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Pipeline  Pipeline
	Store     store.RecordStore
	Validator *validation.Validator
	Logger    logger.Logger
	Version   string
}

type Handlers struct {
	Health      *HealthHandler
	Application *ApplicationHandler
	Pipeline    *PipelineHandler
}

func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(deps.Version),
		Application: NewApplicationHandler(deps.Store, deps.Validator, deps.Logger),
		Pipeline:    NewPipelineHandler(deps.Pipeline, deps.Logger),
	}
}

// New builds the echo instance with middleware, error handling, and routes.
func New(deps *Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler
	e.Use(middleware.Recover())

	RegisterRoutes(e, NewHandlers(deps))
	return e
}

func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/healthz", handlers.Health.HandleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/api/applications", handlers.Application.HandleSubmit)

	pipelineGroup := e.Group("/api/pipeline")
	pipelineGroup.POST("/:id/run", handlers.Pipeline.HandleRun)
	pipelineGroup.POST("/:id/retry/:stage", handlers.Pipeline.HandleRetryStage)
	pipelineGroup.GET("/:id/status", handlers.Pipeline.HandleStatus)
	pipelineGroup.GET("/:id/report", handlers.Pipeline.HandleReport)
}
