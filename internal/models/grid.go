package models

type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type SortState struct {
	Column    string        `json:"column,omitempty"`
	Direction SortDirection `json:"direction,omitempty"`
}

func (s SortState) Active() bool {
	return s.Column != "" && s.Direction != SortNone
}

// GridRow keeps the position of the row in the unsorted panel data so edits
// can address it after sorting.
type GridRow struct {
	Index  int    `json:"index"`
	Record Record `json:"record"`
}

type GridView struct {
	Panel          string    `json:"panel,omitempty"`
	Table          string    `json:"table"`
	Columns        []string  `json:"columns"`
	DisplayColumns []string  `json:"display_columns"`
	Hidden         []string  `json:"hidden"`
	Sort           SortState `json:"sort"`
	Rows           []GridRow `json:"rows"`
	Loading        bool      `json:"loading,omitempty"`
	Error          string    `json:"error,omitempty"`
}
