package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	"github.com/noah-isme/tutor-sessions-api/pkg/response"
)

type bookingService interface {
	Book(ctx context.Context, sessionID, studentID string) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, studentID string) (*models.Booking, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.BookingDetail, error)
	FanOut(ctx context.Context, courseID string) (*models.FanOutResult, error)
}

// BookingHandler exposes the booking ledger.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(service bookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Book godoc
// @Summary Book a seat in a session
// @Tags Bookings
// @Produce json
// @Param id path string true "Session ID"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/book [post]
func (h *BookingHandler) Book(c *gin.Context) {
	studentID := callerID(c)
	if studentID == "" {
		return
	}
	booking, err := h.service.Book(c.Request.Context(), c.Param("id"), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// ListMine godoc
// @Summary List the caller's bookings
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions/bookings [get]
func (h *BookingHandler) ListMine(c *gin.Context) {
	studentID := callerID(c)
	if studentID == "" {
		return
	}
	list, err := h.service.ListForStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// Cancel godoc
// @Summary Cancel one of the caller's bookings
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/bookings/{id} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	studentID := callerID(c)
	if studentID == "" {
		return
	}
	booking, err := h.service.Cancel(c.Request.Context(), c.Param("id"), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// FanOut godoc
// @Summary Book every active student into every live session of a course
// @Tags Bookings
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/bookings/fan-out [post]
func (h *BookingHandler) FanOut(c *gin.Context) {
	result, err := h.service.FanOut(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
