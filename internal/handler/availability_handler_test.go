package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-sessions-api/internal/models"
	appErrors "github.com/noah-isme/tutor-sessions-api/pkg/errors"
	"github.com/noah-isme/tutor-sessions-api/pkg/timewindow"
)

type availabilityServiceMock struct {
	deleteErr error
	created   models.CreateAvailabilityRequest
}

func (m *availabilityServiceMock) Create(ctx context.Context, tutorID string, req models.CreateAvailabilityRequest) (*models.Availability, error) {
	m.created = req
	return &models.Availability{ID: "window-1", TutorID: tutorID, DayOfWeek: timewindow.Monday, StartTime: req.StartTime, EndTime: req.EndTime, IsAvailable: true}, nil
}

func (m *availabilityServiceMock) ListActive(ctx context.Context, tutorID string) ([]models.Availability, error) {
	return []models.Availability{}, nil
}

func (m *availabilityServiceMock) Delete(ctx context.Context, windowID, tutorID string) error {
	return m.deleteErr
}

func TestAvailabilityHandlerCreate(t *testing.T) {
	svc := &availabilityServiceMock{}
	h := NewAvailabilityHandler(svc)
	c, w := newTestContext(http.MethodPost, "/sessions/availability", []byte(`{"dayOfWeek":"MONDAY","startTime":"09:00","endTime":"12:00"}`), tutor())

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "09:00", svc.created.StartTime)
	assert.Contains(t, string(decode(t, w).Data), `"dayOfWeek":"MONDAY"`)
}

func TestAvailabilityHandlerListAndDelete(t *testing.T) {
	h := NewAvailabilityHandler(&availabilityServiceMock{deleteErr: appErrors.Clone(appErrors.ErrForbidden, "not yours")})

	c, w := newTestContext(http.MethodGet, "/sessions/availability", nil, tutor())
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodDelete, "/sessions/availability/window-1", nil, tutor())
	c.Params = gin.Params{{Key: "id", Value: "window-1"}}
	h.Delete(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
