package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adminlite/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(secret []byte) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Authenticate(secret))
	router.GET("/read", func(c *gin.Context) {
		claims, _ := ClaimsFrom(c)
		c.String(http.StatusOK, claims.Role)
	})
	router.POST("/write", RequireRole("admin", "editor"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func serve(router *gin.Engine, method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticateDisabled(t *testing.T) {
	router := newAuthRouter(nil)

	w := serve(router, http.MethodGet, "/read", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, AnonymousRole, w.Body.String())

	w = serve(router, http.MethodPost, "/write", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthenticateBearer(t *testing.T) {
	secret := []byte("s3cret")
	router := newAuthRouter(secret)

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/read", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/read", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/read", "Bearer abc").Code)

	editor, err := utils.GenerateJWT("u1", "editor", time.Hour, secret)
	require.NoError(t, err)
	w := serve(router, http.MethodGet, "/read", "Bearer "+editor)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "editor", w.Body.String())
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodPost, "/write", "Bearer "+editor).Code)

	viewer, err := utils.GenerateJWT("u2", "viewer", time.Hour, secret)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/write", "Bearer "+viewer).Code)

	expired, err := utils.GenerateJWT("u3", "admin", -time.Minute, secret)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/read", "Bearer "+expired).Code)
}
