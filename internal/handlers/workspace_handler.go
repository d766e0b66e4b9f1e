package handlers

import (
	"net/http"

	"adminlite/internal/models"
	"adminlite/internal/responses"
	"adminlite/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SelectTableRequest struct {
	Table string `json:"table" binding:"required"`
}

type SortRequest struct {
	Column string `json:"column" binding:"required"`
}

// OpenEditorRequest opens the row at Row, or a new record when Row is absent.
type OpenEditorRequest struct {
	Row *int `json:"row"`
}

type SetFieldRequest struct {
	Column string `json:"column" binding:"required"`
	Value  string `json:"value"`
}

type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
}

func NewWorkspaceHandler(workspaceService *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
	}
}

// CreateWorkspace handles POST /api/v1/workspaces
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	view := h.workspaceService.Create()
	responses.Success(c, http.StatusCreated, view, "Workspace created successfully")
}

// GetWorkspace handles GET /api/v1/workspaces/:id
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}

	view, err := h.workspaceService.Get(id)
	if err != nil {
		fail(c, err, "Failed to fetch workspace")
		return
	}
	responses.Success(c, http.StatusOK, view, "Workspace fetched successfully")
}

// DeleteWorkspace handles DELETE /api/v1/workspaces/:id
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}

	if err := h.workspaceService.Delete(id); err != nil {
		fail(c, err, "Failed to delete workspace")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Workspace deleted successfully")
}

// GetPanel handles GET /api/v1/workspaces/:id/panels/:panel
func (h *WorkspaceHandler) GetPanel(c *gin.Context) {
	id, panel, ok := workspacePanel(c)
	if !ok {
		return
	}

	view, err := h.workspaceService.View(id, panel)
	if err != nil {
		fail(c, err, "Failed to fetch panel")
		return
	}
	responses.Success(c, http.StatusOK, view, "Panel fetched successfully")
}

// SelectTable handles POST /api/v1/workspaces/:id/panels/:panel/select
func (h *WorkspaceHandler) SelectTable(c *gin.Context) {
	id, panel, ok := workspacePanel(c)
	if !ok {
		return
	}

	var req SelectTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	view, err := h.workspaceService.SelectTable(c.Request.Context(), id, panel, req.Table)
	if err != nil {
		fail(c, err, "Failed to load table")
		return
	}
	responses.Success(c, http.StatusOK, view, "Table loaded successfully")
}

// ReloadPanel handles POST /api/v1/workspaces/:id/panels/:panel/reload
func (h *WorkspaceHandler) ReloadPanel(c *gin.Context) {
	id, panel, ok := workspacePanel(c)
	if !ok {
		return
	}

	view, err := h.workspaceService.Reload(c.Request.Context(), id, panel)
	if err != nil {
		fail(c, err, "Failed to reload table")
		return
	}
	responses.Success(c, http.StatusOK, view, "Table reloaded successfully")
}

// ToggleSort handles POST /api/v1/workspaces/:id/panels/:panel/sort
func (h *WorkspaceHandler) ToggleSort(c *gin.Context) {
	id, panel, ok := workspacePanel(c)
	if !ok {
		return
	}

	var req SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	view, err := h.workspaceService.ToggleSort(id, panel, req.Column)
	if err != nil {
		fail(c, err, "Failed to sort panel")
		return
	}
	responses.Success(c, http.StatusOK, view, "Panel sorted successfully")
}

// ToggleColumn handles POST /api/v1/workspaces/:id/panels/:panel/columns/:column/toggle
func (h *WorkspaceHandler) ToggleColumn(c *gin.Context) {
	id, panel, ok := workspacePanel(c)
	if !ok {
		return
	}

	view, err := h.workspaceService.ToggleColumn(id, panel, c.Param("column"))
	if err != nil {
		fail(c, err, "Failed to toggle column")
		return
	}
	responses.Success(c, http.StatusOK, view, "Column toggled successfully")
}

// OpenEditor handles POST /api/v1/workspaces/:id/panels/:panel/editor
func (h *WorkspaceHandler) OpenEditor(c *gin.Context) {
	id, panel, ok := workspacePanel(c)
	if !ok {
		return
	}

	var req OpenEditorRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
			return
		}
	}

	ctx := c.Request.Context()
	var err error
	var status int
	var editor models.EditorView
	if req.Row == nil {
		editor, err = h.workspaceService.OpenNewEditor(ctx, id, panel)
		status = http.StatusCreated
	} else {
		editor, err = h.workspaceService.OpenEditor(ctx, id, panel, *req.Row)
		status = http.StatusOK
	}
	if err != nil {
		fail(c, err, "Failed to open editor")
		return
	}
	responses.Success(c, status, editor, "Editor opened successfully")
}

// GetEditor handles GET /api/v1/workspaces/:id/editor
func (h *WorkspaceHandler) GetEditor(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}

	editor, err := h.workspaceService.Editor(id)
	if err != nil {
		fail(c, err, "Failed to fetch editor")
		return
	}
	responses.Success(c, http.StatusOK, editor, "Editor fetched successfully")
}

// SetField handles PATCH /api/v1/workspaces/:id/editor
func (h *WorkspaceHandler) SetField(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}

	var req SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	editor, err := h.workspaceService.SetField(id, req.Column, req.Value)
	if err != nil {
		fail(c, err, "Failed to update field")
		return
	}
	responses.Success(c, http.StatusOK, editor, "Field updated successfully")
}

// SaveEditor handles POST /api/v1/workspaces/:id/editor/save
func (h *WorkspaceHandler) SaveEditor(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}

	result, err := h.workspaceService.SaveEditor(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to save record")
		return
	}
	responses.Success(c, http.StatusOK, result, "Record saved successfully")
}

// CloseEditor handles DELETE /api/v1/workspaces/:id/editor
func (h *WorkspaceHandler) CloseEditor(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}

	if err := h.workspaceService.CloseEditor(id); err != nil {
		fail(c, err, "Failed to close editor")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Editor closed successfully")
}

func workspaceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid workspace ID format")
		return uuid.Nil, false
	}
	return id, true
}

func workspacePanel(c *gin.Context) (uuid.UUID, services.PanelID, bool) {
	id, ok := workspaceID(c)
	if !ok {
		return uuid.Nil, "", false
	}
	panel, err := services.ParsePanel(c.Param("panel"))
	if err != nil {
		fail(c, err, "Invalid panel")
		return uuid.Nil, "", false
	}
	return id, panel, true
}
