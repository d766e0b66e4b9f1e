package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"adminlite/internal/models"
	"adminlite/internal/responses"
	"adminlite/internal/services"
	"adminlite/internal/utils"

	"github.com/gin-gonic/gin"
)

// RecordRequest carries a record keyed by column. String values are parsed
// the way the editor parses its inputs.
type RecordRequest struct {
	Record map[string]models.Value `json:"record" binding:"required"`
	IsNew  bool                    `json:"is_new"`
}

type RecordHandler struct {
	schemaService *services.SchemaService
	recordService *services.RecordService
	fkService     *services.ForeignKeyService
	formBuilder   *services.FormBuilder
	rowLimit      int
}

func NewRecordHandler(
	schemaService *services.SchemaService,
	recordService *services.RecordService,
	fkService *services.ForeignKeyService,
	formBuilder *services.FormBuilder,
	rowLimit int,
) *RecordHandler {
	return &RecordHandler{
		schemaService: schemaService,
		recordService: recordService,
		fkService:     fkService,
		formBuilder:   formBuilder,
		rowLimit:      rowLimit,
	}
}

// ListRows handles GET /api/v1/tables/:table/rows
func (h *RecordHandler) ListRows(c *gin.Context) {
	ctx := c.Request.Context()

	schema, err := h.schemaService.Lookup(ctx, c.Param("table"))
	if err != nil {
		fail(c, err, "Failed to describe table")
		return
	}

	limit := h.rowLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			responses.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw), "Limit must be a positive integer")
			return
		}
		limit = n
	}

	state := models.SortState{Column: c.Query("sort")}
	if state.Column != "" {
		if !schema.HasColumn(state.Column) {
			fail(c, fmt.Errorf("%w: %s.%s", services.ErrColumnNotFound, schema.Name, state.Column), "Unknown sort column")
			return
		}
		switch dir := models.SortDirection(c.DefaultQuery("direction", string(models.SortAsc))); dir {
		case models.SortAsc, models.SortDesc:
			state.Direction = dir
		default:
			responses.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid direction %q", dir), "Direction must be asc or desc")
			return
		}
	}

	records, err := h.recordService.FetchRows(ctx, schema, limit)
	if err != nil {
		fail(c, err, "Failed to fetch rows")
		return
	}

	view := services.NewGridView(schema, records, state, utils.SplitList(c.Query("hidden")))
	responses.Success(c, http.StatusOK, view, "Rows fetched successfully")
}

// Scaffold handles GET /api/v1/tables/:table/scaffold
func (h *RecordHandler) Scaffold(c *gin.Context) {
	schema, err := h.schemaService.Lookup(c.Request.Context(), c.Param("table"))
	if err != nil {
		fail(c, err, "Failed to describe table")
		return
	}

	record := h.formBuilder.Scaffold(schema)
	responses.Success(c, http.StatusOK, gin.H{
		"record": record,
		"fields": h.formBuilder.BuildFields(schema, record, true, nil),
	}, "Record scaffolded successfully")
}

// BuildForm handles POST /api/v1/tables/:table/form
func (h *RecordHandler) BuildForm(c *gin.Context) {
	ctx := c.Request.Context()

	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	schema, err := h.schemaService.Lookup(ctx, c.Param("table"))
	if err != nil {
		fail(c, err, "Failed to describe table")
		return
	}

	record := h.parseRecord(schema, req.Record)
	options := h.fkService.LoadForSchema(ctx, schema)
	responses.Success(c, http.StatusOK, gin.H{
		"fields":  h.formBuilder.BuildFields(schema, record, req.IsNew, options),
		"options": options,
	}, "Form built successfully")
}

// InsertRecord handles POST /api/v1/tables/:table/records
func (h *RecordHandler) InsertRecord(c *gin.Context) {
	h.save(c, true)
}

// UpdateRecord handles PATCH /api/v1/tables/:table/records
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	h.save(c, false)
}

func (h *RecordHandler) save(c *gin.Context, isNew bool) {
	ctx := c.Request.Context()

	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	schema, err := h.schemaService.Lookup(ctx, c.Param("table"))
	if err != nil {
		fail(c, err, "Failed to describe table")
		return
	}

	saved, err := h.recordService.Save(ctx, schema, h.parseRecord(schema, req.Record), isNew)
	if err != nil {
		fail(c, err, "Failed to save record")
		return
	}

	status, message := http.StatusOK, "Record updated successfully"
	if isNew {
		status, message = http.StatusCreated, "Record created successfully"
	}
	responses.Success(c, status, gin.H{"record": saved}, message)
}

func (h *RecordHandler) parseRecord(schema models.TableSchema, raw map[string]models.Value) models.Record {
	record := make(models.Record, len(raw))
	for name, value := range raw {
		col, ok := schema.Column(name)
		if !ok {
			continue
		}
		if value.Kind() == models.KindText {
			record[name] = h.formBuilder.ParseInput(col, value.String())
			continue
		}
		record[name] = value
	}
	return record
}
