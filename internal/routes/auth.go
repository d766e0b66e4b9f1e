package routes

import (
	"adminlite/internal/handlers"

	"github.com/gin-gonic/gin"
)

type AuthRoutes struct {
	handler *handlers.AuthHandler
	auth    gin.HandlerFunc
}

func NewAuthRoutes(handler *handlers.AuthHandler, auth gin.HandlerFunc) *AuthRoutes {
	return &AuthRoutes{handler: handler, auth: auth}
}

func (r *AuthRoutes) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	auth.Use(r.auth)
	{
		auth.GET("/me", r.handler.Me)
	}
}
