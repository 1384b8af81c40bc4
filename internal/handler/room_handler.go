package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	"github.com/noah-isme/tutor-sessions-api/pkg/response"
)

type roomAuthorizer interface {
	Authorize(ctx context.Context, sessionID, callerID string) (*models.RoomAccess, error)
}

// RoomHandler issues live-room tokens.
type RoomHandler struct {
	service roomAuthorizer
}

// NewRoomHandler constructs the handler.
func NewRoomHandler(service roomAuthorizer) *RoomHandler {
	return &RoomHandler{service: service}
}

// Token godoc
// @Summary Get a token to join a session's live room
// @Tags Rooms
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Failure 425 {object} response.Envelope
// @Router /sessions/{id}/room-token [post]
func (h *RoomHandler) Token(c *gin.Context) {
	userID := callerID(c)
	if userID == "" {
		return
	}
	access, err := h.service.Authorize(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, access, nil)
}
