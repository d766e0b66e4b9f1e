package services

import (
	"context"
	"fmt"
	"strings"

	"adminlite/internal/models"
)

const (
	maxJunctionTableColumns = 6
	minJunctionTableFKs     = 2
)

// relationship is one edge of the ER diagram in Mermaid cardinality syntax.
type relationship struct {
	from, to, kind string
}

// Diagram renders the cached schemas as a Mermaid ER diagram.
func (s *SchemaService) Diagram(ctx context.Context) (string, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return "", err
	}
	return GenerateMermaid(tables), nil
}

// GenerateMermaid draws every table with its columns, a one-to-many edge per
// foreign key and a many-to-many edge across junction tables.
func GenerateMermaid(tables []models.TableSchema) string {
	var sb strings.Builder
	sb.WriteString("erDiagram\n")

	relationships := buildRelationships(tables)
	if len(relationships) > 0 {
		seen := make(map[string]bool)
		for _, rel := range relationships {
			key := rel.from + ":" + rel.kind + ":" + rel.to
			if seen[key] {
				continue
			}
			seen[key] = true

			// Mermaid requires a label; an empty one hides it.
			fmt.Fprintf(&sb, "    %s %s %s : \"\"\n",
				strings.ToUpper(rel.from), rel.kind, strings.ToUpper(rel.to))
		}
		sb.WriteString("\n")
	}

	for _, table := range tables {
		fmt.Fprintf(&sb, "    %s {\n", strings.ToUpper(table.Name))
		for _, col := range table.Columns {
			annotations := ""
			if col.IsPrimaryKey {
				annotations = " PK"
			}
			if col.IsForeignKey() {
				annotations += " FK"
			}
			fmt.Fprintf(&sb, "        %s %s%s\n", simplifyDataType(col.DataType), col.ColumnName, annotations)
		}
		sb.WriteString("    }\n\n")
	}

	return sb.String()
}

func buildRelationships(tables []models.TableSchema) []relationship {
	var relationships []relationship
	junctions := detectJunctionTables(tables)

	for _, table := range tables {
		fks := table.ForeignKeyColumns()
		if junctions[table.Name] {
			for i := 0; i < len(fks); i++ {
				for j := i + 1; j < len(fks); j++ {
					relationships = append(relationships, relationship{
						from: *fks[i].ForeignKeyTable,
						to:   *fks[j].ForeignKeyTable,
						kind: "}o--o{",
					})
				}
			}
			continue
		}
		for _, fk := range fks {
			target, _, _ := fk.ForeignKey()
			relationships = append(relationships, relationship{
				from: target,
				to:   table.Name,
				kind: "||--o{",
			})
		}
	}
	return relationships
}

// detectJunctionTables finds small tables whose primary key is made of at
// least two foreign keys.
func detectJunctionTables(tables []models.TableSchema) map[string]bool {
	junctions := make(map[string]bool)
	for _, table := range tables {
		fks := table.ForeignKeyColumns()
		pks := table.PrimaryKeys()
		if len(fks) < minJunctionTableFKs || len(pks) < minJunctionTableFKs ||
			len(table.Columns) > maxJunctionTableColumns {
			continue
		}

		fkInPK := 0
		allInPK := true
		for _, fk := range fks {
			if fk.IsPrimaryKey {
				fkInPK++
			} else {
				allInPK = false
			}
		}
		if allInPK && fkInPK >= minJunctionTableFKs {
			junctions[table.Name] = true
		}
	}
	return junctions
}

func simplifyDataType(dataType string) string {
	dt := strings.ToLower(dataType)

	switch {
	case dt == "integer":
		return "int"
	case strings.HasPrefix(dt, "character varying"):
		return "varchar"
	case strings.HasPrefix(dt, "character"):
		return "char"
	case strings.HasPrefix(dt, "timestamp without time zone"):
		return "timestamp"
	case strings.HasPrefix(dt, "timestamp with time zone"):
		return "timestamptz"
	case strings.HasPrefix(dt, "time without time zone"):
		return "time"
	case dt == "double precision":
		return "double"
	case strings.HasPrefix(dt, "numeric"):
		return "numeric"
	case strings.HasPrefix(dt, "array"):
		return "array"
	case dt == "":
		return models.UnknownDataType
	default:
		return strings.ReplaceAll(dt, " ", "_")
	}
}
