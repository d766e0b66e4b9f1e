package models

import "strings"

type Nullability string

const (
	NullableYes Nullability = "YES"
	NullableNo  Nullability = "NO"
)

// ColumnDetail is one row of the describe_table RPC.
type ColumnDetail struct {
	ColumnName       string      `json:"column_name"`
	DataType         string      `json:"data_type"`
	OrdinalPosition  int         `json:"ordinal_position"`
	IsNullable       Nullability `json:"is_nullable"`
	IsPrimaryKey     bool        `json:"is_primary_key"`
	ForeignKeyTable  *string     `json:"foreign_key_table"`
	ForeignKeyColumn *string     `json:"foreign_key_column"`
}

// Normalize enforces that foreign_key_table and foreign_key_column are either
// both set or both nil, and defaults an empty nullability to YES.
func (c *ColumnDetail) Normalize() {
	if c.ForeignKeyTable == nil || c.ForeignKeyColumn == nil ||
		*c.ForeignKeyTable == "" || *c.ForeignKeyColumn == "" {
		c.ForeignKeyTable = nil
		c.ForeignKeyColumn = nil
	}
	switch strings.ToUpper(string(c.IsNullable)) {
	case "NO":
		c.IsNullable = NullableNo
	default:
		c.IsNullable = NullableYes
	}
}

func (c ColumnDetail) Nullable() bool {
	return c.IsNullable != NullableNo
}

func (c ColumnDetail) IsForeignKey() bool {
	return c.ForeignKeyTable != nil && c.ForeignKeyColumn != nil &&
		*c.ForeignKeyTable != "" && *c.ForeignKeyColumn != ""
}

// ForeignKey returns the referenced table and column.
func (c ColumnDetail) ForeignKey() (table, column string, ok bool) {
	if !c.IsForeignKey() {
		return "", "", false
	}
	return *c.ForeignKeyTable, *c.ForeignKeyColumn, true
}

func (c ColumnDetail) Family() TypeFamily {
	return FamilyOf(c.DataType)
}

// TableSchema is the resolved shape of one table.
type TableSchema struct {
	Name           string         `json:"name"`
	Columns        []ColumnDetail `json:"columns"`
	DisplayColumns []string       `json:"display_columns"`
}

func (t TableSchema) Column(name string) (ColumnDetail, bool) {
	for _, col := range t.Columns {
		if col.ColumnName == name {
			return col, true
		}
	}
	return ColumnDetail{}, false
}

func (t TableSchema) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

func (t TableSchema) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		names = append(names, col.ColumnName)
	}
	return names
}

func (t TableSchema) PrimaryKeys() []ColumnDetail {
	var pks []ColumnDetail
	for _, col := range t.Columns {
		if col.IsPrimaryKey {
			pks = append(pks, col)
		}
	}
	return pks
}

func (t TableSchema) ForeignKeyColumns() []ColumnDetail {
	var fks []ColumnDetail
	for _, col := range t.Columns {
		if col.IsForeignKey() {
			fks = append(fks, col)
		}
	}
	return fks
}

// RowSet keeps the column order reported by the store next to the rows.
type RowSet struct {
	Columns []string
	Rows    []map[string]any
}

func StringPtr(s string) *string {
	return &s
}
