package routes

import (
	"adminlite/internal/handlers"
	"adminlite/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type TableRoutes struct {
	schemaHandler *handlers.SchemaHandler
	recordHandler *handlers.RecordHandler
	auth          gin.HandlerFunc
}

func NewTableRoutes(schemaHandler *handlers.SchemaHandler, recordHandler *handlers.RecordHandler, auth gin.HandlerFunc) *TableRoutes {
	return &TableRoutes{
		schemaHandler: schemaHandler,
		recordHandler: recordHandler,
		auth:          auth,
	}
}

func (r *TableRoutes) RegisterRoutes(router *gin.RouterGroup) {
	tables := router.Group("/tables")
	tables.Use(r.auth)
	{
		tables.GET("", r.schemaHandler.ListTables)
		tables.POST("/refresh", r.schemaHandler.RefreshTables)
		tables.GET("/diagram", r.schemaHandler.Diagram)
		tables.GET("/:table", r.schemaHandler.GetTable)
		tables.GET("/:table/columns/:column/options", r.schemaHandler.ColumnOptions)

		tables.GET("/:table/rows", r.recordHandler.ListRows)
		tables.GET("/:table/scaffold", r.recordHandler.Scaffold)
		tables.POST("/:table/form", r.recordHandler.BuildForm)

		writes := tables.Group("")
		writes.Use(middlewares.RequireRole(WriteRoles...))
		writes.POST("/:table/records", r.recordHandler.InsertRecord)
		writes.PATCH("/:table/records", r.recordHandler.UpdateRecord)
	}
}
