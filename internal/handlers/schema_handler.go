package handlers

import (
	"net/http"

	"adminlite/internal/responses"
	"adminlite/internal/services"

	"github.com/gin-gonic/gin"
)

type SchemaHandler struct {
	schemaService     *services.SchemaService
	foreignKeyService *services.ForeignKeyService
}

func NewSchemaHandler(schemaService *services.SchemaService, foreignKeyService *services.ForeignKeyService) *SchemaHandler {
	return &SchemaHandler{
		schemaService:     schemaService,
		foreignKeyService: foreignKeyService,
	}
}

// ListTables handles GET /api/v1/tables
func (h *SchemaHandler) ListTables(c *gin.Context) {
	tables, err := h.schemaService.Tables(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to fetch tables")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"tables": tables,
	}, "Tables fetched successfully")
}

// RefreshTables handles POST /api/v1/tables/refresh
func (h *SchemaHandler) RefreshTables(c *gin.Context) {
	tables, err := h.schemaService.Refresh(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to refresh tables")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"tables": tables,
	}, "Tables refreshed successfully")
}

// GetTable handles GET /api/v1/tables/:table
func (h *SchemaHandler) GetTable(c *gin.Context) {
	schema, err := h.schemaService.Lookup(c.Request.Context(), c.Param("table"))
	if err != nil {
		fail(c, err, "Failed to describe table")
		return
	}

	responses.Success(c, http.StatusOK, schema, "Table described successfully")
}

// Diagram handles GET /api/v1/tables/diagram
func (h *SchemaHandler) Diagram(c *gin.Context) {
	mermaid, err := h.schemaService.Diagram(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to visualize schema")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"mermaid": mermaid,
	}, "Schema visualization generated successfully")
}

// ColumnOptions handles GET /api/v1/tables/:table/columns/:column/options
func (h *SchemaHandler) ColumnOptions(c *gin.Context) {
	schema, err := h.schemaService.Lookup(c.Request.Context(), c.Param("table"))
	if err != nil {
		fail(c, err, "Failed to describe table")
		return
	}

	set, err := h.foreignKeyService.LoadColumn(c.Request.Context(), schema, c.Param("column"))
	if err != nil {
		fail(c, err, "Failed to load options")
		return
	}

	responses.Success(c, http.StatusOK, set, "Options loaded successfully")
}
