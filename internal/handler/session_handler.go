package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	"github.com/noah-isme/tutor-sessions-api/pkg/response"
)

type sessionService interface {
	Create(ctx context.Context, tutorID string, req models.CreateSessionRequest) (*models.Session, error)
	Duplicate(ctx context.Context, sessionID, tutorID string, req models.DuplicateSessionRequest) (*models.Session, error)
	Cancel(ctx context.Context, sessionID, tutorID string) error
	ListByCourse(ctx context.Context, courseID string) ([]models.SessionDetail, error)
	ListByTutor(ctx context.Context, tutorID string) ([]models.SessionDetail, error)
}

type slotSuggester interface {
	Suggest(ctx context.Context, q models.SlotQuery) ([]models.Slot, error)
}

type calendarExporter interface {
	ExportTutorCalendar(ctx context.Context, tutorID, format string) (*models.CalendarExport, error)
}

// SessionHandler exposes the session registry, slot suggestions and calendar export.
type SessionHandler struct {
	sessions sessionService
	slots    slotSuggester
	exporter calendarExporter
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(sessions sessionService, slots slotSuggester, exporter calendarExporter) *SessionHandler {
	return &SessionHandler{sessions: sessions, slots: slots, exporter: exporter}
}

// Create godoc
// @Summary Schedule a session on a draft course
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body models.CreateSessionRequest true "Session"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	tutorID := callerID(c)
	if tutorID == "" {
		return
	}
	var req models.CreateSessionRequest
	if !bindJSON(c, &req, "invalid session payload") {
		return
	}
	session, err := h.sessions.Create(c.Request.Context(), tutorID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Duplicate godoc
// @Summary Copy a session to a new interval
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Source session ID"
// @Param payload body models.DuplicateSessionRequest true "New interval"
// @Success 201 {object} response.Envelope
// @Router /sessions/{id}/duplicate [post]
func (h *SessionHandler) Duplicate(c *gin.Context) {
	tutorID := callerID(c)
	if tutorID == "" {
		return
	}
	var req models.DuplicateSessionRequest
	if !bindJSON(c, &req, "invalid duplicate payload") {
		return
	}
	session, err := h.sessions.Duplicate(c.Request.Context(), c.Param("id"), tutorID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Cancel godoc
// @Summary Cancel a session and its bookings
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Cancel(c *gin.Context) {
	tutorID := callerID(c)
	if tutorID == "" {
		return
	}
	if err := h.sessions.Cancel(c.Request.Context(), c.Param("id"), tutorID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByCourse godoc
// @Summary List a course's sessions with bookings
// @Tags Sessions
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/course/{courseId} [get]
func (h *SessionHandler) ListByCourse(c *gin.Context) {
	list, err := h.sessions.ListByCourse(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNilSessions(list), nil)
}

// ListByTutor godoc
// @Summary List the caller's sessions with bookings
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions/tutor [get]
func (h *SessionHandler) ListByTutor(c *gin.Context) {
	tutorID := callerID(c)
	if tutorID == "" {
		return
	}
	list, err := h.sessions.ListByTutor(c.Request.Context(), tutorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNilSessions(list), nil)
}

// SuggestedSlots godoc
// @Summary Suggest free slots for a course
// @Description Unparseable or inverted ranges return an empty list.
// @Tags Sessions
// @Produce json
// @Param courseId query string true "Course ID"
// @Param from query string true "Range start (RFC 3339)"
// @Param to query string true "Range end (RFC 3339)"
// @Param duration query int false "Slot length in minutes (default 60)"
// @Param maxResults query int false "Result cap (default 50)"
// @Success 200 {object} response.Envelope
// @Router /sessions/suggested-slots [get]
func (h *SessionHandler) SuggestedSlots(c *gin.Context) {
	tutorID := callerID(c)
	if tutorID == "" {
		return
	}
	from, errFrom := time.Parse(time.RFC3339, strings.TrimSpace(c.Query("from")))
	to, errTo := time.Parse(time.RFC3339, strings.TrimSpace(c.Query("to")))
	if errFrom != nil || errTo != nil || !from.Before(to) {
		response.JSON(c, http.StatusOK, []models.Slot{}, nil)
		return
	}

	slots, err := h.slots.Suggest(c.Request.Context(), models.SlotQuery{
		TutorID:         tutorID,
		CourseID:        strings.TrimSpace(c.Query("courseId")),
		From:            from,
		To:              to,
		DurationMinutes: queryInt(c, "duration"),
		MaxResults:      queryInt(c, "maxResults"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// ExportCalendar godoc
// @Summary Download the caller's calendar
// @Tags Sessions
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /sessions/tutor/export [get]
func (h *SessionHandler) ExportCalendar(c *gin.Context) {
	tutorID := callerID(c)
	if tutorID == "" {
		return
	}
	doc, err := h.exporter.ExportTutorCalendar(c.Request.Context(), tutorID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, doc.ContentType, doc.Filename, doc.Body)
}

// queryInt returns 0 for missing or malformed values so services apply their defaults.
func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return v
}

func nonNilSessions(list []models.SessionDetail) []models.SessionDetail {
	if list == nil {
		return []models.SessionDetail{}
	}
	return list
}
