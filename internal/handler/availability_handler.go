package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	"github.com/noah-isme/tutor-sessions-api/pkg/response"
)

type availabilityService interface {
	Create(ctx context.Context, tutorID string, req models.CreateAvailabilityRequest) (*models.Availability, error)
	ListActive(ctx context.Context, tutorID string) ([]models.Availability, error)
	Delete(ctx context.Context, windowID, tutorID string) error
}

// AvailabilityHandler exposes a tutor's recurring weekly windows.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// Create godoc
// @Summary Declare an availability window
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body models.CreateAvailabilityRequest true "Window"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions/availability [post]
func (h *AvailabilityHandler) Create(c *gin.Context) {
	tutorID := callerID(c)
	if tutorID == "" {
		return
	}
	var req models.CreateAvailabilityRequest
	if !bindJSON(c, &req, "invalid availability payload") {
		return
	}
	window, err := h.service.Create(c.Request.Context(), tutorID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, window)
}

// List godoc
// @Summary List the caller's active availability
// @Tags Availability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions/availability [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	tutorID := callerID(c)
	if tutorID == "" {
		return
	}
	windows, err := h.service.ListActive(c.Request.Context(), tutorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

// Delete godoc
// @Summary Remove an availability window
// @Tags Availability
// @Param id path string true "Window ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/availability/{id} [delete]
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	tutorID := callerID(c)
	if tutorID == "" {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), tutorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
