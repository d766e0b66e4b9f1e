package services

import (
	"testing"
	"time"

	"adminlite/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidgetFor(t *testing.T) {
	tests := []struct {
		name string
		col  models.ColumnDetail
		want models.Widget
	}{
		{"timestamp", column("created", "timestamp with time zone", 1), models.WidgetDatetime},
		{"date", column("birthday", "date", 1), models.WidgetDatetime},
		{"boolean", column("active", "boolean", 1), models.WidgetCheckbox},
		{"integer", column("qty", "integer", 1), models.WidgetNumber},
		{"numeric", column("price", "numeric", 1), models.WidgetNumber},
		{"double", column("ratio", "double precision", 1), models.WidgetNumber},
		{"bigint", column("views", "bigint", 1), models.WidgetNumber},
		{"description text", column("description", "text", 1), models.WidgetTextarea},
		{"notes varchar", column("admin_notes", "character varying", 1), models.WidgetTextarea},
		{"plain text", column("status", "text", 1), models.WidgetText},
		{"unknown type", column("description", "unknown", 1), models.WidgetText},
		{"uuid", column("token", "uuid", 1), models.WidgetText},
		{"fk wins over type", fk(column("created_by", "timestamp", 1), "users", "id"), models.WidgetSelect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WidgetFor(tt.col))
		})
	}
}

func TestIsReadOnly(t *testing.T) {
	tests := []struct {
		name  string
		col   models.ColumnDetail
		isNew bool
		want  bool
	}{
		{"pk on existing record", pk(column("id", "integer", 1)), false, true},
		{"integer pk on new record", pk(column("id", "integer", 1)), true, false},
		{"uuid pk on new record", pk(column("id", "uuid", 1)), true, true},
		{"timestamp _at column", column("updated_at", "timestamp without time zone", 1), true, true},
		{"date _at column", column("due_at", "date", 1), false, false},
		{"upper case _AT column", column("Created_AT", "timestamptz", 1), false, true},
		{"plain column", column("status", "text", 1), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReadOnly(tt.col, tt.isNew))
		})
	}
}

func TestBuildFieldsNewRecord(t *testing.T) {
	fb := NewFormBuilder(time.UTC)
	schema := ordersSchema()
	options := map[string]models.OptionSet{
		"user_id": {Options: []models.FkOption{{Value: models.Null(), Label: models.NoneLabel, None: true}}},
	}

	fields := fb.BuildFields(schema, fb.Scaffold(schema), true, options)
	require.Len(t, fields, 5)

	id := fields[0]
	assert.Equal(t, models.WidgetAuto, id.Widget)
	assert.True(t, id.ReadOnly)
	assert.Equal(t, models.AutoGeneratedUUID, id.Value)

	user := fields[1]
	assert.Equal(t, models.WidgetSelect, user.Widget)
	assert.Equal(t, "User Id (FK to users.id)", user.Label)
	assert.Equal(t, "", user.Value)
	assert.Len(t, user.Options, 1)

	assert.Equal(t, "Total Amount", fields[2].Label)
	assert.Equal(t, models.WidgetNumber, fields[2].Widget)
	assert.Equal(t, "Optional", fields[2].Placeholder)

	assert.Equal(t, models.WidgetDatetime, fields[4].Widget)
	assert.Equal(t, "", fields[4].Value)
}

func TestBuildFieldsExistingRecord(t *testing.T) {
	fb := NewFormBuilder(time.UTC)
	schema := models.TableSchema{
		Name: "items",
		Columns: []models.ColumnDetail{
			pk(column("id", "integer", 1)),
			notNull(column("qty", "integer", 2)),
			column("active", "boolean", 3),
			column("created_at", "timestamp with time zone", 4),
		},
	}
	record := models.Record{
		"id":         models.Number(42),
		"qty":        models.Number(3),
		"active":     models.Bool(true),
		"created_at": models.Timestamp(time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)),
	}

	fields := fb.BuildFields(schema, record, false, nil)
	require.Len(t, fields, 4)

	assert.True(t, fields[0].ReadOnly)
	assert.Equal(t, "42", fields[0].Value)
	assert.Equal(t, "0", fields[1].Placeholder)
	assert.True(t, fields[2].Checked)
	assert.True(t, fields[3].ReadOnly)
	assert.Equal(t, "2024-03-05T14:07", fields[3].Value)
}

func TestFormatValueUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	fb := NewFormBuilder(loc)

	ts := models.Timestamp(time.Date(2024, 1, 1, 22, 30, 0, 0, time.UTC))
	assert.Equal(t, "2024-01-02T00:30", fb.FormatValue(models.WidgetDatetime, ts))
	assert.Equal(t, "2024-01-02T00:30", fb.FormatValue(models.WidgetDatetime, models.Text("2024-01-01T22:30:00Z")))
	assert.Equal(t, "", fb.FormatValue(models.WidgetText, models.Null()))
}

func TestParseInput(t *testing.T) {
	fb := NewFormBuilder(time.UTC)

	tests := []struct {
		name string
		col  models.ColumnDetail
		raw  string
		want models.Value
	}{
		{"nullable number empty", column("qty", "integer", 1), "", models.Null()},
		{"not null number empty", notNull(column("qty", "integer", 1)), "", models.Number(0)},
		{"number", column("price", "numeric", 1), " 12.5 ", models.Number(12.5)},
		{"bigint beyond float range", column("id", "bigint", 1), "9007199254740993", models.Integer(9007199254740993)},
		{"number garbage kept", column("price", "numeric", 1), "abc", models.Text("abc")},
		{"checkbox true", column("active", "boolean", 1), "true", models.Bool(true)},
		{"checkbox on", column("active", "boolean", 1), "on", models.Bool(true)},
		{"checkbox empty", column("active", "boolean", 1), "", models.Bool(false)},
		{"datetime input", column("order_date", "timestamptz", 1), "2024-05-06T07:08", models.Timestamp(time.Date(2024, 5, 6, 7, 8, 0, 0, time.UTC))},
		{"datetime empty", column("order_date", "timestamptz", 1), "", models.Null()},
		{"select empty", fk(column("user_id", "integer", 1), "users", "id"), "", models.Null()},
		{"select typed", fk(column("user_id", "integer", 1), "users", "id"), "9", models.Number(9)},
		{"text kept verbatim", column("status", "text", 1), " open ", models.Text(" open ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fb.ParseInput(tt.col, tt.raw)
			assert.True(t, tt.want.Equal(got), "want %s (%s), got %s (%s)", tt.want, tt.want.Kind(), got, got.Kind())
		})
	}
}

func TestScaffoldOrders(t *testing.T) {
	fb := NewFormBuilder(time.UTC)

	rec := fb.Scaffold(ordersSchema())

	assert.False(t, rec.Has("id"))
	assert.False(t, rec.Has("order_date"))
	assert.True(t, rec.Has("user_id"))
	assert.True(t, rec.Get("user_id").IsNull())
	assert.True(t, rec.Get("total_amount").IsEmptyText())
	assert.True(t, rec.Get("status").IsEmptyText())
	assert.Len(t, rec, 3)
}

func TestScaffoldSkipsMixedCaseTimestampNames(t *testing.T) {
	fb := NewFormBuilder(time.UTC)
	schema := models.TableSchema{Name: "events", Columns: []models.ColumnDetail{
		pk(column("id", "integer", 1)),
		column("Logged_At", "text", 2),
		column("title", "text", 3),
	}}

	rec := fb.Scaffold(schema)

	assert.False(t, rec.Has("Logged_At"))
	assert.True(t, rec.Get("title").IsEmptyText())
}
