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
)

type roomAuthorizerMock struct {
	err error
}

func (m *roomAuthorizerMock) Authorize(ctx context.Context, sessionID, callerID string) (*models.RoomAccess, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.RoomAccess{
		Token:       "jwt",
		URL:         "wss://media.example.com",
		RoomName:    "session-" + sessionID,
		Participant: models.RoomParticipant{Role: models.RoomRoleStudent, Name: "Sam"},
	}, nil
}

func TestRoomHandlerToken(t *testing.T) {
	h := NewRoomHandler(&roomAuthorizerMock{})
	c, w := newTestContext(http.MethodPost, "/sessions/s1/room-token", nil, student())
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.Token(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"roomName":"session-s1"`)
}

func TestRoomHandlerTokenTooEarly(t *testing.T) {
	h := NewRoomHandler(&roomAuthorizerMock{err: appErrors.Clone(appErrors.ErrTooEarly, "You can join this session closer to the start time (10 minutes remaining).")})
	c, w := newTestContext(http.MethodPost, "/sessions/s1/room-token", nil, student())
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.Token(c)

	require.Equal(t, http.StatusTooEarly, w.Code)
	env := decode(t, w)
	assert.Equal(t, "TOO_EARLY", env.Error.Code)
	assert.Contains(t, env.Error.Message, "10 minutes remaining")
}
