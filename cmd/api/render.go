package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"adminlite/internal/models"
	"adminlite/internal/services"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

func renderTables(w io.Writer, tables []models.TableSchema) {
	if len(tables) == 0 {
		_, _ = fmt.Fprintln(w, "(0 tables)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Columns", "Display columns"})
	for _, schema := range tables {
		t.AppendRow(table.Row{schema.Name, len(schema.Columns), strings.Join(schema.DisplayColumns, ", ")})
	}
	t.Render()
}

func renderSchema(w io.Writer, schema models.TableSchema, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(schema)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(schemaDocument(schema))
	case "table", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(schema.Name)
	t.AppendHeader(table.Row{"#", "Column", "Type", "Nullable", "PK", "References", "Widget"})
	for _, col := range schema.Columns {
		ref := ""
		if fkTable, fkColumn, ok := col.ForeignKey(); ok {
			ref = fkTable + "." + fkColumn
		}
		t.AppendRow(table.Row{
			col.OrdinalPosition,
			col.ColumnName,
			col.DataType,
			col.IsNullable,
			pkMark(col.IsPrimaryKey),
			ref,
			services.WidgetFor(col),
		})
	}
	t.Render()
	return nil
}

// schemaDocument gives the YAML output the same keys as the JSON one.
func schemaDocument(schema models.TableSchema) map[string]any {
	columns := make([]map[string]any, 0, len(schema.Columns))
	for _, col := range schema.Columns {
		doc := map[string]any{
			"column_name":      col.ColumnName,
			"data_type":        col.DataType,
			"ordinal_position": col.OrdinalPosition,
			"is_nullable":      string(col.IsNullable),
			"is_primary_key":   col.IsPrimaryKey,
		}
		if fkTable, fkColumn, ok := col.ForeignKey(); ok {
			doc["foreign_key_table"] = fkTable
			doc["foreign_key_column"] = fkColumn
		}
		columns = append(columns, doc)
	}
	return map[string]any{
		"name":            schema.Name,
		"columns":         columns,
		"display_columns": schema.DisplayColumns,
	}
}

func renderRows(w io.Writer, schema models.TableSchema, records []models.Record) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	columns := schema.ColumnNames()
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, rec := range records {
		row := make(table.Row, len(columns))
		for i, col := range columns {
			row[i] = services.CompactCell(rec.Get(col))
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d rows", len(records))})
	t.Render()
}

func pkMark(pk bool) string {
	if pk {
		return "yes"
	}
	return ""
}
