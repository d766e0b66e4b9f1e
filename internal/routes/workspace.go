package routes

import (
	"adminlite/internal/handlers"
	"adminlite/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type WorkspaceRoutes struct {
	handler *handlers.WorkspaceHandler
	auth    gin.HandlerFunc
}

func NewWorkspaceRoutes(handler *handlers.WorkspaceHandler, auth gin.HandlerFunc) *WorkspaceRoutes {
	return &WorkspaceRoutes{handler: handler, auth: auth}
}

func (r *WorkspaceRoutes) RegisterRoutes(router *gin.RouterGroup) {
	workspaces := router.Group("/workspaces")
	workspaces.Use(r.auth)
	{
		workspaces.POST("", r.handler.CreateWorkspace)
		workspaces.GET("/:id", r.handler.GetWorkspace)
		workspaces.DELETE("/:id", r.handler.DeleteWorkspace)

		panels := workspaces.Group("/:id/panels/:panel")
		panels.GET("", r.handler.GetPanel)
		panels.POST("/select", r.handler.SelectTable)
		panels.POST("/reload", r.handler.ReloadPanel)
		panels.POST("/sort", r.handler.ToggleSort)
		panels.POST("/columns/:column/toggle", r.handler.ToggleColumn)
		panels.POST("/editor", r.handler.OpenEditor)

		editor := workspaces.Group("/:id/editor")
		editor.GET("", r.handler.GetEditor)
		editor.PATCH("", r.handler.SetField)
		editor.DELETE("", r.handler.CloseEditor)
		editor.POST("/save", middlewares.RequireRole(WriteRoles...), r.handler.SaveEditor)
	}
}
