package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	"github.com/noah-isme/tutor-sessions-api/pkg/response"
)

type requestService interface {
	SubmitReschedule(ctx context.Context, tutorID string, payload models.CreateRescheduleRequest) (*models.RescheduleRequest, error)
	ListRescheduleForTutor(ctx context.Context, tutorID string) ([]models.RescheduleRequestDetail, error)
	ListPendingReschedule(ctx context.Context) ([]models.RescheduleRequestDetail, error)
	ReviewReschedule(ctx context.Context, requestID, adminID string, payload models.ReviewRequest) (*models.RescheduleRequest, error)
	SubmitAddSession(ctx context.Context, tutorID string, payload models.CreateAddSessionRequest) (*models.AddSessionRequest, error)
	ListAddSessionForTutor(ctx context.Context, tutorID string) ([]models.AddSessionRequestDetail, error)
	ListPendingAddSession(ctx context.Context) ([]models.AddSessionRequestDetail, error)
	ReviewAddSession(ctx context.Context, requestID, adminID string, payload models.ReviewRequest) (*models.AddSessionRequest, error)
}

// RequestHandler exposes the reschedule and add-session workflows.
type RequestHandler struct {
	service requestService
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(service requestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// SubmitReschedule godoc
// @Summary Propose new times for a session
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body models.CreateRescheduleRequest true "Proposal"
// @Success 201 {object} response.Envelope
// @Router /requests/reschedule [post]
func (h *RequestHandler) SubmitReschedule(c *gin.Context) {
	tutorID := callerID(c)
	if tutorID == "" {
		return
	}
	var payload models.CreateRescheduleRequest
	if !bindJSON(c, &payload, "invalid reschedule request payload") {
		return
	}
	req, err := h.service.SubmitReschedule(c.Request.Context(), tutorID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, req)
}

// ListMyReschedule godoc
// @Summary List the caller's reschedule requests
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/reschedule/mine [get]
func (h *RequestHandler) ListMyReschedule(c *gin.Context) {
	tutorID := callerID(c)
	if tutorID == "" {
		return
	}
	list, err := h.service.ListRescheduleForTutor(c.Request.Context(), tutorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// ListPendingReschedule godoc
// @Summary List reschedule requests awaiting review
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/reschedule/pending [get]
func (h *RequestHandler) ListPendingReschedule(c *gin.Context) {
	list, err := h.service.ListPendingReschedule(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// ReviewReschedule godoc
// @Summary Approve or reject a reschedule request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body models.ReviewRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/reschedule/{id} [patch]
func (h *RequestHandler) ReviewReschedule(c *gin.Context) {
	adminID := callerID(c)
	if adminID == "" {
		return
	}
	var payload models.ReviewRequest
	if !bindJSON(c, &payload, "invalid review payload") {
		return
	}
	req, err := h.service.ReviewReschedule(c.Request.Context(), c.Param("id"), adminID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// SubmitAddSession godoc
// @Summary Propose an extra session on a published course
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body models.CreateAddSessionRequest true "Proposal"
// @Success 201 {object} response.Envelope
// @Router /requests/add-session [post]
func (h *RequestHandler) SubmitAddSession(c *gin.Context) {
	tutorID := callerID(c)
	if tutorID == "" {
		return
	}
	var payload models.CreateAddSessionRequest
	if !bindJSON(c, &payload, "invalid add-session request payload") {
		return
	}
	req, err := h.service.SubmitAddSession(c.Request.Context(), tutorID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, req)
}

// ListMyAddSession godoc
// @Summary List the caller's add-session requests
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/add-session/mine [get]
func (h *RequestHandler) ListMyAddSession(c *gin.Context) {
	tutorID := callerID(c)
	if tutorID == "" {
		return
	}
	list, err := h.service.ListAddSessionForTutor(c.Request.Context(), tutorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// ListPendingAddSession godoc
// @Summary List add-session requests awaiting review
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/add-session/pending [get]
func (h *RequestHandler) ListPendingAddSession(c *gin.Context) {
	list, err := h.service.ListPendingAddSession(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// ReviewAddSession godoc
// @Summary Approve or reject an add-session request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body models.ReviewRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /requests/add-session/{id} [patch]
func (h *RequestHandler) ReviewAddSession(c *gin.Context) {
	adminID := callerID(c)
	if adminID == "" {
		return
	}
	var payload models.ReviewRequest
	if !bindJSON(c, &payload, "invalid review payload") {
		return
	}
	req, err := h.service.ReviewAddSession(c.Request.Context(), c.Param("id"), adminID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}
