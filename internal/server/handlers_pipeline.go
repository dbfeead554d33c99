// internal/server/handlers_pipeline.go
package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/models"
)

type PipelineHandler struct {
	pipeline Pipeline
	logger   logger.Logger
}

func NewPipelineHandler(p Pipeline, log logger.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipeline: p,
		logger:   log.WithFields(map[string]interface{}{"handler": "pipeline"}),
	}
}

// HandleRun drives the full stage sequence synchronously and returns the
// resulting status summary.
func (h *PipelineHandler) HandleRun(c echo.Context) error {
	id := c.Param("id")

	if err := h.pipeline.Run(c.Request().Context(), id); err != nil {
		return err
	}

	status, err := h.pipeline.GetStatus(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

func (h *PipelineHandler) HandleRetryStage(c echo.Context) error {
	id := c.Param("id")
	stage, ok := models.ParseStageType(c.Param("stage"))
	if !ok {
		return NewBadRequestError(fmt.Sprintf("unknown stage %q", c.Param("stage")))
	}

	if err := h.pipeline.RetryStage(c.Request().Context(), id, stage); err != nil {
		return err
	}

	status, err := h.pipeline.GetStatus(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

func (h *PipelineHandler) HandleStatus(c echo.Context) error {
	status, err := h.pipeline.GetStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

func (h *PipelineHandler) HandleReport(c echo.Context) error {
	report, err := h.pipeline.GetDetailedReport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
