package services

import (
	"sort"
	"strings"
	"time"

	"adminlite/internal/models"
	"adminlite/internal/utils"
)

// CellWidth is the rune limit of a compact grid cell.
const CellWidth = 50

// NextDirection cycles a header click: asc, desc, then unsorted.
func NextDirection(current models.SortState, column string) models.SortState {
	if current.Column != column {
		return models.SortState{Column: column, Direction: models.SortAsc}
	}
	switch current.Direction {
	case models.SortAsc:
		return models.SortState{Column: column, Direction: models.SortDesc}
	case models.SortDesc:
		return models.SortState{}
	default:
		return models.SortState{Column: column, Direction: models.SortAsc}
	}
}

// SortRows returns the rows ordered by column without touching the input.
// Empty cells go first ascending and last descending.
func SortRows(rows []models.GridRow, column string, direction models.SortDirection) []models.GridRow {
	out := append([]models.GridRow(nil), rows...)
	if column == "" || direction == models.SortNone {
		return out
	}
	desc := direction == models.SortDesc

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Record.Get(column), out[j].Record.Get(column)
		aEmpty, bEmpty := a.IsEmpty(), b.IsEmpty()
		switch {
		case aEmpty && bEmpty:
			return false
		case aEmpty:
			return !desc
		case bEmpty:
			return desc
		}
		cmp := CompareValues(a, b)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

// CompareValues orders two non-empty values. Values of different kinds are
// ranked numbers, booleans, instants, then text so the order stays
// consistent within a mixed column. Within a kind, numbers compare
// numerically, instants chronologically, booleans false first and text
// case-insensitively.
func CompareValues(a, b models.Value) int {
	ra, rb := sortRank(a), sortRank(b)
	if ra != rb {
		return compareInt(int64(ra), int64(rb))
	}

	switch ra {
	case rankNumber:
		if x, ok := a.Int(); ok {
			if y, ok := b.Int(); ok {
				return compareInt(x, y)
			}
		}
		x, _ := a.Number()
		y, _ := b.Number()
		return compareFloat(x, y)
	case rankBool:
		x, _ := a.Bool()
		y, _ := b.Bool()
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case rankInstant:
		x, _ := instant(a)
		y, _ := instant(b)
		return x.Compare(y)
	}
	return strings.Compare(strings.ToLower(a.String()), strings.ToLower(b.String()))
}

type valueRank int

const (
	rankNumber valueRank = iota
	rankBool
	rankInstant
	rankText
)

func sortRank(v models.Value) valueRank {
	switch v.Kind() {
	case models.KindNumber:
		return rankNumber
	case models.KindBool:
		return rankBool
	}
	if _, ok := instant(v); ok {
		return rankInstant
	}
	return rankText
}

func instant(v models.Value) (time.Time, bool) {
	if t, ok := v.Time(); ok {
		return t, true
	}
	if v.Kind() == models.KindText {
		return models.ParseTimestamp(v.String())
	}
	return time.Time{}, false
}

func compareInt(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func compareFloat(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// VisibleColumns drops hidden columns, keeping order.
func VisibleColumns(columns, hidden []string) []string {
	visible := make([]string, 0, len(columns))
	for _, col := range columns {
		if !utils.Contains(hidden, col) {
			visible = append(visible, col)
		}
	}
	return visible
}

// ToggleHidden flips the visibility of column.
func ToggleHidden(hidden []string, column string) []string {
	out := make([]string, 0, len(hidden)+1)
	found := false
	for _, col := range hidden {
		if col == column {
			found = true
			continue
		}
		out = append(out, col)
	}
	if !found {
		out = append(out, column)
	}
	return out
}

// IndexRows pairs each record with its position in the unsorted data.
func IndexRows(records []models.Record) []models.GridRow {
	rows := make([]models.GridRow, len(records))
	for i, rec := range records {
		rows[i] = models.GridRow{Index: i, Record: rec}
	}
	return rows
}

// CompactCell renders a value for a narrow grid cell.
func CompactCell(v models.Value) string {
	return utils.Truncate(v.String(), CellWidth)
}

// NewGridView lays out records of schema with the given sort and hidden
// columns.
func NewGridView(schema models.TableSchema, records []models.Record, state models.SortState, hidden []string) models.GridView {
	return models.GridView{
		Table:          schema.Name,
		Columns:        VisibleColumns(schema.ColumnNames(), hidden),
		DisplayColumns: append([]string(nil), schema.DisplayColumns...),
		Hidden:         append([]string{}, hidden...),
		Sort:           state,
		Rows:           SortRows(IndexRows(records), state.Column, state.Direction),
	}
}
