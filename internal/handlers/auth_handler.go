package handlers

import (
	"net/http"

	"adminlite/internal/middlewares"
	"adminlite/internal/responses"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Me handles GET /api/v1/auth/me and echoes the caller's token claims.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"subject": claims.Subject,
		"role":    claims.Role,
	}, "Authenticated")
}
