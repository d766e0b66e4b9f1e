package services

import (
	"context"
	"fmt"
	"sync"

	"adminlite/internal/logger"
	"adminlite/internal/models"

	"github.com/sirupsen/logrus"
)

type fakeStore struct {
	listTablesFunc    func(ctx context.Context) ([]string, error)
	describeTableFunc func(ctx context.Context, table string) ([]models.ColumnDetail, error)
	selectRowsFunc    func(ctx context.Context, table string, columns []string, limit int) (models.RowSet, error)
	insertFunc        func(ctx context.Context, table string, values map[string]any) (map[string]any, error)
	updateFunc        func(ctx context.Context, table string, values, match map[string]any) (map[string]any, error)

	mu    sync.Mutex
	calls []string
}

func (f *fakeStore) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStore) ListTables(ctx context.Context) ([]string, error) {
	f.record("list_tables")
	if f.listTablesFunc != nil {
		return f.listTablesFunc(ctx)
	}
	return nil, nil
}

func (f *fakeStore) DescribeTable(ctx context.Context, table string) ([]models.ColumnDetail, error) {
	f.record("describe:" + table)
	if f.describeTableFunc != nil {
		return f.describeTableFunc(ctx, table)
	}
	return nil, nil
}

func (f *fakeStore) SelectRows(ctx context.Context, table string, columns []string, limit int) (models.RowSet, error) {
	f.record(fmt.Sprintf("select:%s:%v:%d", table, columns, limit))
	if f.selectRowsFunc != nil {
		return f.selectRowsFunc(ctx, table, columns, limit)
	}
	return models.RowSet{}, nil
}

func (f *fakeStore) Insert(ctx context.Context, table string, values map[string]any) (map[string]any, error) {
	f.record("insert:" + table)
	if f.insertFunc != nil {
		return f.insertFunc(ctx, table, values)
	}
	return values, nil
}

func (f *fakeStore) Update(ctx context.Context, table string, values, match map[string]any) (map[string]any, error) {
	f.record("update:" + table)
	if f.updateFunc != nil {
		return f.updateFunc(ctx, table, values, match)
	}
	return values, nil
}

func testLogger() logrus.FieldLogger {
	return logger.Discard()
}

func column(name, dataType string, ordinal int) models.ColumnDetail {
	return models.ColumnDetail{
		ColumnName:      name,
		DataType:        dataType,
		OrdinalPosition: ordinal,
		IsNullable:      models.NullableYes,
	}
}

func pk(col models.ColumnDetail) models.ColumnDetail {
	col.IsPrimaryKey = true
	col.IsNullable = models.NullableNo
	return col
}

func notNull(col models.ColumnDetail) models.ColumnDetail {
	col.IsNullable = models.NullableNo
	return col
}

func fk(col models.ColumnDetail, table, key string) models.ColumnDetail {
	col.ForeignKeyTable = models.StringPtr(table)
	col.ForeignKeyColumn = models.StringPtr(key)
	return col
}

// ordersSchema is the orders table used across the editor tests.
func ordersSchema() models.TableSchema {
	columns := []models.ColumnDetail{
		pk(column("id", "uuid", 1)),
		fk(column("user_id", "uuid", 2), "users", "id"),
		column("total_amount", "numeric", 3),
		column("status", "text", 4),
		column("order_date", "timestamp with time zone", 5),
	}
	return models.TableSchema{
		Name:           "orders",
		Columns:        columns,
		DisplayColumns: SelectDisplayColumns(columns),
	}
}
