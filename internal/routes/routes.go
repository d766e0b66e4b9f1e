package routes

import (
	"net/http"

	"adminlite/internal/handlers"
	"adminlite/internal/middlewares"

	"github.com/gin-gonic/gin"
)

// WriteRoles may insert and update records.
var WriteRoles = []string{middlewares.AnonymousRole, "editor", "service_role"}

type Handlers struct {
	Auth      *handlers.AuthHandler
	Schema    *handlers.SchemaHandler
	Record    *handlers.RecordHandler
	Workspace *handlers.WorkspaceHandler
}

func RegisterRoutes(router *gin.Engine, h Handlers, jwtSecret []byte) {
	api := router.Group("/api/v1")
	auth := middlewares.Authenticate(jwtSecret)

	authRoutes := NewAuthRoutes(h.Auth, auth)
	authRoutes.RegisterRoutes(api)

	tableRoutes := NewTableRoutes(h.Schema, h.Record, auth)
	tableRoutes.RegisterRoutes(api)

	workspaceRoutes := NewWorkspaceRoutes(h.Workspace, auth)
	workspaceRoutes.RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
