// internal/server/handlers_application.go
package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/common/validation"
	"review-pipeline/internal/models"
	"review-pipeline/internal/store"
)

type ApplicationHandler struct {
	store     store.RecordStore
	validator *validation.Validator
	logger    logger.Logger
}

func NewApplicationHandler(recordStore store.RecordStore, validator *validation.Validator, log logger.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		store:     recordStore,
		validator: validator,
		logger:    log.WithFields(map[string]interface{}{"handler": "application"}),
	}
}

type submitRequest struct {
	SubmitterID      string   `json:"submitterId"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ProblemStatement string   `json:"problemStatement"`
	Solution         string   `json:"solution"`
	TechStack        []string `json:"techStack"`
	TeamSize         int      `json:"teamSize"`
	TeamMembers      []string `json:"teamMembers"`
	EstimatedCost    *float64 `json:"estimatedCost"`
}

// HandleSubmit validates the payload against the application schema and
// stores a new SUBMITTED application ready for a pipeline run.
func (h *ApplicationHandler) HandleSubmit(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewBadRequestError("unable to read request body")
	}

	violations, err := h.validator.Validate(payload)
	if err != nil {
		return NewBadRequestError("request body is not valid JSON")
	}
	if len(violations) > 0 {
		return NewValidationError(violations)
	}

	var req submitRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewBadRequestError("request body is not valid JSON")
	}

	app := &models.Application{
		SubmitterID:      req.SubmitterID,
		Title:            req.Title,
		Description:      req.Description,
		ProblemStatement: req.ProblemStatement,
		Solution:         req.Solution,
		TechStack:        req.TechStack,
		TeamSize:         req.TeamSize,
		TeamMembers:      req.TeamMembers,
		EstimatedCost:    req.EstimatedCost,
		Status:           models.StatusSubmitted,
		IsActive:         true,
	}

	id, err := h.store.CreateApplication(c.Request().Context(), app)
	if err != nil {
		return err
	}

	h.logger.Info("application submitted", map[string]interface{}{
		"applicationId": id,
		"submitterId":   req.SubmitterID,
	})

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"id":     id,
		"status": models.StatusSubmitted,
	})
}
