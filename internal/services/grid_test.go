package services

import (
	"strings"
	"testing"
	"time"

	"adminlite/internal/models"

	"github.com/stretchr/testify/assert"
)

func gridRows(column string, values ...models.Value) []models.GridRow {
	records := make([]models.Record, len(values))
	for i, v := range values {
		records[i] = models.Record{column: v}
	}
	return IndexRows(records)
}

func columnValues(rows []models.GridRow, column string) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.Record.Get(column).String()
	}
	return out
}

func TestSortRowsDates(t *testing.T) {
	rows := gridRows("d",
		models.Null(),
		models.Text("2024-01-01T00:00:00Z"),
		models.Text("2023-01-01T00:00:00Z"),
	)

	asc := SortRows(rows, "d", models.SortAsc)
	assert.Equal(t, []string{"", "2023-01-01T00:00:00Z", "2024-01-01T00:00:00Z"}, columnValues(asc, "d"))

	desc := SortRows(rows, "d", models.SortDesc)
	assert.Equal(t, []string{"2024-01-01T00:00:00Z", "2023-01-01T00:00:00Z", ""}, columnValues(desc, "d"))

	assert.Equal(t, []string{"", "2024-01-01T00:00:00Z", "2023-01-01T00:00:00Z"}, columnValues(rows, "d"), "input untouched")
}

func TestSortRowsNumbersAndText(t *testing.T) {
	nums := gridRows("n", models.Number(10), models.Number(9), models.Text(""), models.Number(100))
	assert.Equal(t, []string{"", "9", "10", "100"}, columnValues(SortRows(nums, "n", models.SortAsc), "n"))

	words := gridRows("w", models.Text("banana"), models.Text("Apple"), models.Text("cherry"))
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, columnValues(SortRows(words, "w", models.SortAsc), "w"))
}

func TestSortRowsMixedKindsIndependentOfInputOrder(t *testing.T) {
	values := []models.Value{models.Number(9), models.Number(10), models.Text("5"), models.Bool(true), models.Text("apple")}
	want := []string{"9", "10", "true", "5", "apple"}

	for shift := range values {
		rotated := append(append([]models.Value(nil), values[shift:]...), values[:shift]...)
		sorted := SortRows(gridRows("m", rotated...), "m", models.SortAsc)
		assert.Equal(t, want, columnValues(sorted, "m"), "rotation %d", shift)
	}
}

func TestCompareValuesBigIntegers(t *testing.T) {
	a := models.Integer(9007199254740993)
	b := models.Integer(9007199254740992)
	assert.Equal(t, 1, CompareValues(a, b))
	assert.Equal(t, -1, CompareValues(b, a))
	assert.Equal(t, 0, CompareValues(a, models.Integer(9007199254740993)))
}

func TestSortRowsTimestampsAndMissing(t *testing.T) {
	late := models.Timestamp(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	early := models.Timestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	records := []models.Record{{"t": late}, {}, {"t": early}}

	sorted := SortRows(IndexRows(records), "t", models.SortAsc)
	assert.Equal(t, []int{1, 2, 0}, []int{sorted[0].Index, sorted[1].Index, sorted[2].Index})
}

func TestSortRowsStableAndUnsorted(t *testing.T) {
	rows := gridRows("k", models.Text("b"), models.Text("a"), models.Text("B"))

	sorted := SortRows(rows, "k", models.SortAsc)
	assert.Equal(t, []int{1, 0, 2}, []int{sorted[0].Index, sorted[1].Index, sorted[2].Index})

	assert.Equal(t, rows, SortRows(rows, "k", models.SortNone))
}

func TestNextDirection(t *testing.T) {
	s := NextDirection(models.SortState{}, "name")
	assert.Equal(t, models.SortState{Column: "name", Direction: models.SortAsc}, s)

	s = NextDirection(s, "name")
	assert.Equal(t, models.SortDesc, s.Direction)

	s = NextDirection(s, "name")
	assert.False(t, s.Active())

	s = NextDirection(models.SortState{Column: "name", Direction: models.SortDesc}, "email")
	assert.Equal(t, models.SortState{Column: "email", Direction: models.SortAsc}, s)
}

func TestVisibleColumns(t *testing.T) {
	columns := []string{"id", "name", "email"}
	assert.Equal(t, columns, VisibleColumns(columns, nil))

	hidden := ToggleHidden(nil, "name")
	assert.Equal(t, []string{"id", "email"}, VisibleColumns(columns, hidden))

	hidden = ToggleHidden(hidden, "name")
	assert.Empty(t, hidden)
}

func TestCompactCell(t *testing.T) {
	long := models.Text(strings.Repeat("x", 80))
	cell := CompactCell(long)
	assert.Len(t, []rune(cell), CellWidth)
	assert.True(t, strings.HasSuffix(cell, "..."))

	assert.Equal(t, "short", CompactCell(models.Text("short")))
}
