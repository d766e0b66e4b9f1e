package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"adminlite/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrReadOnlyColumn = errors.New("column is read-only")
	ErrPanelChanged   = errors.New("panel changed while loading")
	ErrSaveInProgress = errors.New("save already in progress")
)

type PanelID string

const (
	PanelLeft  PanelID = "left"
	PanelRight PanelID = "right"
)

func ParsePanel(s string) (PanelID, error) {
	switch PanelID(s) {
	case PanelLeft, PanelRight:
		return PanelID(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPanel, s)
}

// panelState is one grid. generation increases on every fetch so a fetch
// that finishes after a newer one is dropped. selection increases only when
// the panel switches tables.
type panelState struct {
	schema     models.TableSchema
	generation uint64
	selection  uint64
	records    []models.Record
	loading    bool
	err        string
	sort       models.SortState
	hidden     []string
}

type editorState struct {
	panel     PanelID
	schema    models.TableSchema
	selection uint64
	isNew     bool
	rowIndex  int
	working   models.Record
	options   map[string]models.OptionSet
	saving    bool
	err       string
}

// Workspace is the state of one admin session: two panels and at most one
// open editor.
type Workspace struct {
	ID uuid.UUID

	mu       sync.Mutex
	panels   map[PanelID]*panelState
	editor   *editorState
	lastUsed time.Time
}

// SaveResult is the stored row plus the refreshed panel it landed in.
type SaveResult struct {
	Record models.Record   `json:"record"`
	Panel  models.GridView `json:"panel"`
}

type WorkspaceService struct {
	schemas  *SchemaService
	records  *RecordService
	fks      *ForeignKeyService
	forms    *FormBuilder
	log      logrus.FieldLogger
	rowLimit int
	idleTTL  time.Duration
	now      func() time.Time

	mu         sync.RWMutex
	workspaces map[uuid.UUID]*Workspace
}

func NewWorkspaceService(
	schemas *SchemaService,
	records *RecordService,
	fks *ForeignKeyService,
	forms *FormBuilder,
	log logrus.FieldLogger,
	rowLimit int,
	idleTTL time.Duration,
) *WorkspaceService {
	return &WorkspaceService{
		schemas:    schemas,
		records:    records,
		fks:        fks,
		forms:      forms,
		log:        log,
		rowLimit:   rowLimit,
		idleTTL:    idleTTL,
		now:        time.Now,
		workspaces: make(map[uuid.UUID]*Workspace),
	}
}

func (s *WorkspaceService) Create() models.WorkspaceView {
	ws := &Workspace{
		ID: uuid.New(),
		panels: map[PanelID]*panelState{
			PanelLeft:  {},
			PanelRight: {},
		},
		lastUsed: s.now(),
	}

	s.mu.Lock()
	s.workspaces[ws.ID] = ws
	s.mu.Unlock()

	s.log.WithField("workspace", ws.ID).Info("Workspace created")

	ws.mu.Lock()
	defer ws.mu.Unlock()
	return s.viewLocked(ws)
}

func (s *WorkspaceService) Get(id uuid.UUID) (models.WorkspaceView, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return models.WorkspaceView{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return s.viewLocked(ws), nil
}

func (s *WorkspaceService) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[id]; !ok {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	delete(s.workspaces, id)
	return nil
}

func (s *WorkspaceService) workspace(id uuid.UUID) (*Workspace, error) {
	s.mu.RLock()
	ws, ok := s.workspaces[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}

	ws.mu.Lock()
	ws.lastUsed = s.now()
	ws.mu.Unlock()
	return ws, nil
}

// ExpireIdle drops workspaces unused for longer than the idle TTL and returns
// how many were removed. A zero TTL keeps workspaces forever.
func (s *WorkspaceService) ExpireIdle() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, ws := range s.workspaces {
		ws.mu.Lock()
		idle := ws.lastUsed.Before(cutoff) && (ws.editor == nil || !ws.editor.saving)
		ws.mu.Unlock()
		if idle {
			delete(s.workspaces, id)
			expired++
		}
	}
	if expired > 0 {
		s.log.WithField("count", expired).Info("Expired idle workspaces")
	}
	return expired
}

// RunExpiry calls ExpireIdle every interval until ctx is done.
func (s *WorkspaceService) RunExpiry(ctx context.Context, interval time.Duration) {
	if s.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ExpireIdle()
		}
	}
}

func (s *WorkspaceService) workspacePanel(id uuid.UUID, panel PanelID) (*Workspace, error) {
	if _, err := ParsePanel(string(panel)); err != nil {
		return nil, err
	}
	return s.workspace(id)
}

// SelectTable points a panel at table and loads its rows. The fetch runs
// without holding the workspace lock; if the panel was switched again in the
// meantime the result is discarded. A failed fetch only marks this panel.
func (s *WorkspaceService) SelectTable(ctx context.Context, id uuid.UUID, panel PanelID, table string) (models.GridView, error) {
	ws, err := s.workspacePanel(id, panel)
	if err != nil {
		return models.GridView{}, err
	}
	schema, err := s.schemas.Lookup(ctx, table)
	if err != nil {
		return models.GridView{}, err
	}

	ws.mu.Lock()
	p := ws.panels[panel]
	p.generation++
	p.selection++
	gen := p.generation
	p.schema = schema
	p.records = nil
	p.err = ""
	p.loading = true
	p.sort = models.SortState{}
	p.hidden = nil
	if ws.editor != nil && ws.editor.panel == panel {
		ws.editor = nil
	}
	ws.mu.Unlock()

	return s.load(ctx, ws, panel, gen)
}

// Reload fetches the rows of the panel's current table again, keeping sort
// and hidden columns. An open editor on the panel stays open.
func (s *WorkspaceService) Reload(ctx context.Context, id uuid.UUID, panel PanelID) (models.GridView, error) {
	ws, err := s.workspacePanel(id, panel)
	if err != nil {
		return models.GridView{}, err
	}

	ws.mu.Lock()
	p := ws.panels[panel]
	if p.schema.Name == "" {
		ws.mu.Unlock()
		return models.GridView{}, ErrNoTableSelected
	}
	p.generation++
	gen := p.generation
	p.loading = true
	p.err = ""
	ws.mu.Unlock()

	return s.load(ctx, ws, panel, gen)
}

func (s *WorkspaceService) load(ctx context.Context, ws *Workspace, panel PanelID, gen uint64) (models.GridView, error) {
	ws.mu.Lock()
	schema := ws.panels[panel].schema
	ws.mu.Unlock()

	records, fetchErr := s.records.FetchRows(ctx, schema, s.rowLimit)

	ws.mu.Lock()
	defer ws.mu.Unlock()

	p := ws.panels[panel]
	if p.generation != gen {
		s.log.WithFields(logrus.Fields{
			"workspace": ws.ID,
			"panel":     panel,
			"table":     schema.Name,
		}).Debug("Dropping stale row fetch")
		return p.view(panel), nil
	}

	p.loading = false
	if fetchErr != nil {
		p.err = fetchErr.Error()
		return p.view(panel), fetchErr
	}
	p.records = records
	return p.view(panel), nil
}

func (s *WorkspaceService) View(id uuid.UUID, panel PanelID) (models.GridView, error) {
	ws, err := s.workspacePanel(id, panel)
	if err != nil {
		return models.GridView{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.panels[panel].view(panel), nil
}

// ToggleSort advances the sort of column: asc, desc, unsorted.
func (s *WorkspaceService) ToggleSort(id uuid.UUID, panel PanelID, column string) (models.GridView, error) {
	return s.updatePanel(id, panel, column, func(p *panelState) {
		p.sort = NextDirection(p.sort, column)
	})
}

func (s *WorkspaceService) ToggleColumn(id uuid.UUID, panel PanelID, column string) (models.GridView, error) {
	return s.updatePanel(id, panel, column, func(p *panelState) {
		p.hidden = ToggleHidden(p.hidden, column)
	})
}

func (s *WorkspaceService) updatePanel(id uuid.UUID, panel PanelID, column string, fn func(p *panelState)) (models.GridView, error) {
	ws, err := s.workspacePanel(id, panel)
	if err != nil {
		return models.GridView{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	p := ws.panels[panel]
	if p.schema.Name == "" {
		return models.GridView{}, ErrNoTableSelected
	}
	if !p.schema.HasColumn(column) {
		return models.GridView{}, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, p.schema.Name, column)
	}
	fn(p)
	return p.view(panel), nil
}

// OpenEditor opens a working copy of the row at index in the panel's
// unsorted data.
func (s *WorkspaceService) OpenEditor(ctx context.Context, id uuid.UUID, panel PanelID, index int) (models.EditorView, error) {
	ws, err := s.workspacePanel(id, panel)
	if err != nil {
		return models.EditorView{}, err
	}

	ws.mu.Lock()
	p := ws.panels[panel]
	if p.schema.Name == "" {
		ws.mu.Unlock()
		return models.EditorView{}, ErrNoTableSelected
	}
	if index < 0 || index >= len(p.records) {
		ws.mu.Unlock()
		return models.EditorView{}, fmt.Errorf("%w: %d", ErrRowNotFound, index)
	}
	ed := &editorState{
		panel:     panel,
		schema:    p.schema,
		selection: p.selection,
		rowIndex:  index,
		working:   p.records[index].Clone(),
	}
	ws.mu.Unlock()

	return s.openEditor(ctx, ws, ed)
}

// OpenNewEditor opens a scaffolded record for insertion.
func (s *WorkspaceService) OpenNewEditor(ctx context.Context, id uuid.UUID, panel PanelID) (models.EditorView, error) {
	ws, err := s.workspacePanel(id, panel)
	if err != nil {
		return models.EditorView{}, err
	}

	ws.mu.Lock()
	p := ws.panels[panel]
	if p.schema.Name == "" {
		ws.mu.Unlock()
		return models.EditorView{}, ErrNoTableSelected
	}
	ed := &editorState{
		panel:     panel,
		schema:    p.schema,
		selection: p.selection,
		isNew:     true,
		rowIndex:  -1,
		working:   s.forms.Scaffold(p.schema),
	}
	ws.mu.Unlock()

	return s.openEditor(ctx, ws, ed)
}

func (s *WorkspaceService) openEditor(ctx context.Context, ws *Workspace, ed *editorState) (models.EditorView, error) {
	ed.options = s.fks.LoadForSchema(ctx, ed.schema)

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.panels[ed.panel].selection != ed.selection {
		return models.EditorView{}, ErrPanelChanged
	}
	ws.editor = ed
	return s.editorView(ed), nil
}

func (s *WorkspaceService) Editor(id uuid.UUID) (models.EditorView, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return models.EditorView{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.editor == nil {
		return models.EditorView{}, ErrNoEditor
	}
	return s.editorView(ws.editor), nil
}

// SetField parses raw for column into the working copy.
func (s *WorkspaceService) SetField(id uuid.UUID, column, raw string) (models.EditorView, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return models.EditorView{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ed := ws.editor
	if ed == nil {
		return models.EditorView{}, ErrNoEditor
	}
	col, ok := ed.schema.Column(column)
	if !ok {
		return models.EditorView{}, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, ed.schema.Name, column)
	}
	if IsReadOnly(col, ed.isNew) {
		return models.EditorView{}, fmt.Errorf("%w: %s", ErrReadOnlyColumn, column)
	}

	ed.working[column] = s.forms.ParseInput(col, raw)
	ed.err = ""
	return s.editorView(ed), nil
}

// SaveEditor stores the working copy. On success an inserted row is
// prepended to the panel and an updated row replaces the one with the same
// primary key, provided the panel still shows the same table; the editor
// then closes. On failure the editor stays open and the rows are untouched.
func (s *WorkspaceService) SaveEditor(ctx context.Context, id uuid.UUID) (SaveResult, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return SaveResult{}, err
	}

	ws.mu.Lock()
	ed := ws.editor
	if ed == nil {
		ws.mu.Unlock()
		return SaveResult{}, ErrNoEditor
	}
	if ed.saving {
		ws.mu.Unlock()
		return SaveResult{}, ErrSaveInProgress
	}
	ed.saving = true
	working := ed.working.Clone()
	ws.mu.Unlock()

	saved, saveErr := s.records.Save(ctx, ed.schema, working, ed.isNew)

	ws.mu.Lock()
	defer ws.mu.Unlock()

	ed.saving = false
	p := ws.panels[ed.panel]
	if saveErr != nil {
		if ws.editor == ed {
			ed.err = saveErr.Error()
		}
		return SaveResult{}, saveErr
	}

	if p.selection == ed.selection {
		p.records = reconcile(p.records, saved, working, ed)
	}
	if ws.editor == ed {
		ws.editor = nil
	}
	return SaveResult{Record: saved, Panel: p.view(ed.panel)}, nil
}

func reconcile(records []models.Record, saved, working models.Record, ed *editorState) []models.Record {
	pks := ed.schema.PrimaryKeys()
	key := working
	if ed.isNew {
		key = saved
	}

	out := append([]models.Record(nil), records...)
	for i, rec := range out {
		if models.SameKeys(rec, key, pks) {
			out[i] = saved
			return out
		}
	}
	if ed.isNew {
		return append([]models.Record{saved}, out...)
	}
	return out
}

func (s *WorkspaceService) CloseEditor(id uuid.UUID) error {
	ws, err := s.workspace(id)
	if err != nil {
		return err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.editor == nil {
		return ErrNoEditor
	}
	ws.editor = nil
	return nil
}

func (s *WorkspaceService) viewLocked(ws *Workspace) models.WorkspaceView {
	view := models.WorkspaceView{
		ID:    ws.ID.String(),
		Left:  ws.panels[PanelLeft].view(PanelLeft),
		Right: ws.panels[PanelRight].view(PanelRight),
	}
	if ws.editor != nil {
		ed := s.editorView(ws.editor)
		view.Editor = &ed
	}
	return view
}

func (s *WorkspaceService) editorView(ed *editorState) models.EditorView {
	return models.EditorView{
		Panel:    string(ed.panel),
		Table:    ed.schema.Name,
		IsNew:    ed.isNew,
		RowIndex: ed.rowIndex,
		Fields:   s.forms.BuildFields(ed.schema, ed.working, ed.isNew, ed.options),
		Options:  ed.options,
		Error:    ed.err,
	}
}

func (p *panelState) view(panel PanelID) models.GridView {
	view := NewGridView(p.schema, p.records, p.sort, p.hidden)
	view.Panel = string(panel)
	view.Loading = p.loading
	view.Error = p.err
	return view
}
