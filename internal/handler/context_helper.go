package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-sessions-api/internal/middleware"
	"github.com/noah-isme/tutor-sessions-api/internal/models"
	appErrors "github.com/noah-isme/tutor-sessions-api/pkg/errors"
	"github.com/noah-isme/tutor-sessions-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// callerID writes 401 and returns "" when the request carries no authenticated user.
func callerID(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil || claims.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return ""
	}
	return claims.UserID
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message))
		return false
	}
	return true
}
