package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-sessions-api/internal/middleware"
	"github.com/noah-isme/tutor-sessions-api/internal/models"
)

func newTestContext(method, target string, body []byte, user *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	c.Request = req
	if user != nil {
		c.Set(middleware.ContextUserKey, user)
	}
	return c, w
}

func tutor() *models.JWTClaims { return &models.JWTClaims{UserID: "tutor-1", Role: models.RoleTutor} }
func student() *models.JWTClaims { return &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent} }
func admin() *models.JWTClaims { return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin} }

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
