package services

import (
	"strconv"
	"strings"
	"time"

	"adminlite/internal/models"
	"adminlite/internal/utils"
)

// DatetimeInputLayout is the fixed-width local time shown in datetime inputs.
const DatetimeInputLayout = "2006-01-02T15:04"

var multilineMarkers = []string{"description", "content", "notes", "comment", "detail"}

// FormBuilder decides how each column is edited and converts values between
// their typed form and the strings of an input.
type FormBuilder struct {
	loc *time.Location
}

func NewFormBuilder(loc *time.Location) *FormBuilder {
	if loc == nil {
		loc = time.Local
	}
	return &FormBuilder{loc: loc}
}

// WidgetFor picks the input for a column. Foreign keys always get a select.
func WidgetFor(col models.ColumnDetail) models.Widget {
	if col.IsForeignKey() {
		return models.WidgetSelect
	}
	switch col.Family() {
	case models.FamilyTimestamp:
		return models.WidgetDatetime
	case models.FamilyBool:
		return models.WidgetCheckbox
	case models.FamilyNumber:
		return models.WidgetNumber
	}
	if isTextType(col.DataType) && containsAnyFold(col.ColumnName, multilineMarkers) {
		return models.WidgetTextarea
	}
	return models.WidgetText
}

// IsReadOnly reports whether a column is locked in the editor.
func IsReadOnly(col models.ColumnDetail, isNew bool) bool {
	if col.IsPrimaryKey && !isNew {
		return true
	}
	if col.IsPrimaryKey && isNew && col.Family() == models.FamilyUUID {
		return true
	}
	return isTimestampName(col.ColumnName) &&
		strings.Contains(strings.ToLower(col.DataType), "timestamp")
}

func isTimestampName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), "_at")
}

// isAutoGenerated reports a UUID primary key of a record not yet stored.
func isAutoGenerated(col models.ColumnDetail, isNew bool) bool {
	return isNew && col.IsPrimaryKey && col.Family() == models.FamilyUUID
}

// FieldLabel title-cases the column name and names the referenced column of a
// foreign key.
func FieldLabel(col models.ColumnDetail) string {
	label := utils.ColumnLabel(col.ColumnName)
	if table, column, ok := col.ForeignKey(); ok {
		label += " (FK to " + table + "." + column + ")"
	}
	return label
}

// BuildFields returns one field per schema column in ordinal order. options
// may be nil; select fields then carry no choices.
func (b *FormBuilder) BuildFields(schema models.TableSchema, record models.Record, isNew bool, options map[string]models.OptionSet) []models.FieldSpec {
	fields := make([]models.FieldSpec, 0, len(schema.Columns))
	for _, col := range schema.Columns {
		field := models.FieldSpec{
			Column:   col.ColumnName,
			Label:    FieldLabel(col),
			Widget:   WidgetFor(col),
			ReadOnly: IsReadOnly(col, isNew),
			Nullable: col.Nullable(),
		}

		if isAutoGenerated(col, isNew) {
			field.Widget = models.WidgetAuto
			field.ReadOnly = true
			field.Value = models.AutoGeneratedUUID
			fields = append(fields, field)
			continue
		}

		value := record.Get(col.ColumnName)
		field.Value = b.FormatValue(field.Widget, value)
		if field.Widget == models.WidgetCheckbox {
			field.Checked = isChecked(value)
		}

		switch {
		case col.Nullable():
			field.Placeholder = "Optional"
		case field.Widget == models.WidgetNumber:
			field.Placeholder = "0"
		}

		if field.Widget == models.WidgetSelect {
			if set, ok := options[col.ColumnName]; ok {
				field.Options = set.Options
			}
		}
		fields = append(fields, field)
	}
	return fields
}

// FormatValue renders a value for an input. Null renders as "".
func (b *FormBuilder) FormatValue(widget models.Widget, v models.Value) string {
	if v.IsNull() {
		return ""
	}
	if widget == models.WidgetDatetime {
		if t, ok := v.Time(); ok {
			return t.In(b.loc).Format(DatetimeInputLayout)
		}
		if t, ok := models.ParseTimestamp(v.String()); ok {
			return t.In(b.loc).Format(DatetimeInputLayout)
		}
	}
	return v.String()
}

// ParseInput converts the raw input of col back into a typed value.
func (b *FormBuilder) ParseInput(col models.ColumnDetail, raw string) models.Value {
	trimmed := strings.TrimSpace(raw)

	switch WidgetFor(col) {
	case models.WidgetSelect:
		if trimmed == "" {
			return models.Null()
		}
		return models.Text(trimmed).Coerce(col.Family())
	case models.WidgetDatetime:
		if trimmed == "" {
			return models.Null()
		}
		if t, err := time.ParseInLocation(DatetimeInputLayout, trimmed, b.loc); err == nil {
			return models.Timestamp(t)
		}
		if t, ok := models.ParseTimestamp(trimmed); ok {
			return models.Timestamp(t)
		}
		return models.Text(raw)
	case models.WidgetNumber:
		if trimmed == "" {
			if col.Nullable() {
				return models.Null()
			}
			return models.Number(0)
		}
		if n, ok := models.Decimal(trimmed); ok {
			return n
		}
		return models.Text(raw)
	case models.WidgetCheckbox:
		if strings.EqualFold(trimmed, "on") {
			return models.Bool(true)
		}
		checked, _ := strconv.ParseBool(trimmed)
		return models.Bool(checked)
	default:
		return models.Text(raw)
	}
}

// Scaffold builds the working copy of a new record. Primary keys and
// datetime columns stay unset so the store fills them, foreign keys start
// null and every other column starts as "".
func (b *FormBuilder) Scaffold(schema models.TableSchema) models.Record {
	rec := make(models.Record, len(schema.Columns))
	for _, col := range schema.Columns {
		switch {
		case col.IsPrimaryKey:
			continue
		case col.IsForeignKey():
			rec[col.ColumnName] = models.Null()
		case WidgetFor(col) == models.WidgetDatetime, isTimestampName(col.ColumnName):
			continue
		default:
			rec[col.ColumnName] = models.Text("")
		}
	}
	return rec
}

func isChecked(v models.Value) bool {
	if b, ok := v.Bool(); ok {
		return b
	}
	checked, _ := strconv.ParseBool(v.String())
	return checked
}

func isTextType(dataType string) bool {
	dt := strings.ToLower(dataType)
	return strings.Contains(dt, "text") || strings.Contains(dt, "char")
}

func containsAnyFold(s string, markers []string) bool {
	lower := strings.ToLower(s)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
