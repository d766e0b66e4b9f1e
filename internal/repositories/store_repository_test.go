package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*StoreRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewStoreRepository(db, "public"), mock
}

func TestListTables(t *testing.T) {
	repo, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT table_name FROM "public".list_tables()`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("orders").AddRow("users"))

	tables, err := repo.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, tables)
}

func TestListTablesMissingFunction(t *testing.T) {
	repo, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT table_name FROM "public".list_tables()`).
		WillReturnError(&pgconn.PgError{
			Message: "function public.list_tables() does not exist",
			Hint:    "No function matches the given name and argument types.",
			Code:    "42883",
		})

	_, err := repo.ListTables(context.Background())
	require.Error(t, err)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "42883", storeErr.Code)
	assert.Equal(t, "function public.list_tables() does not exist", storeErr.Message)
	assert.Contains(t, err.Error(), "list_tables: ")
}

func TestDescribeTable(t *testing.T) {
	repo, mock := newMockStore(t)

	cols := []string{"column_name", "data_type", "ordinal_position", "is_nullable", "is_primary_key", "foreign_key_table", "foreign_key_column"}
	mock.ExpectQuery(`SELECT column_name, data_type, ordinal_position, is_nullable, is_primary_key, foreign_key_table, foreign_key_column FROM "public".describe_table($1)`).
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("user_id", "uuid", 2, "YES", false, "users", "id").
			AddRow("id", "uuid", 1, "NO", true, nil, nil).
			AddRow("note", nil, 3, nil, nil, "users", nil))

	columns, err := repo.DescribeTable(context.Background(), "orders")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	assert.Equal(t, "id", columns[0].ColumnName)
	assert.True(t, columns[0].IsPrimaryKey)
	assert.False(t, columns[0].Nullable())

	table, key, ok := columns[1].ForeignKey()
	assert.True(t, ok)
	assert.Equal(t, "users", table)
	assert.Equal(t, "id", key)

	assert.Equal(t, "unknown", columns[2].DataType)
	assert.True(t, columns[2].Nullable())
	assert.False(t, columns[2].IsForeignKey(), "half a foreign key is dropped")
}

func TestSelectRows(t *testing.T) {
	repo, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT * FROM "public"."orders" LIMIT $1`).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "meta"}).
			AddRow("o-1", "new", []byte(`{"a":1}`)))

	set, err := repo.SelectRows(context.Background(), "orders", nil, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "status", "meta"}, set.Columns)
	require.Len(t, set.Rows, 1)
	assert.Equal(t, `{"a":1}`, set.Rows[0]["meta"])
}

func TestSelectRowsProjection(t *testing.T) {
	repo, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT "id", "display name" FROM "public"."Users" LIMIT $1`).
		WithArgs(200).
		WillReturnRows(sqlmock.NewRows([]string{"id", "display name"}))

	set, err := repo.SelectRows(context.Background(), "Users", []string{"id", "display name"}, 200)
	require.NoError(t, err)
	assert.Empty(t, set.Rows)
}

func TestSelectRowsRejectsBadIdentifier(t *testing.T) {
	repo, _ := newMockStore(t)

	_, err := repo.SelectRows(context.Background(), "bad\x00name", nil, 1)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestInsert(t *testing.T) {
	repo, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO "public"."orders" ("status", "total_amount", "user_id") VALUES ($1, $2, $3) RETURNING *`).
		WithArgs("new", 19.9, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("o-9", "new"))

	row, err := repo.Insert(context.Background(), "orders", map[string]any{
		"user_id":      nil,
		"total_amount": 19.9,
		"status":       "new",
	})
	require.NoError(t, err)
	assert.Equal(t, "o-9", row["id"])
}

func TestInsertDefaults(t *testing.T) {
	repo, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO "public"."events" DEFAULT VALUES RETURNING *`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	row, err := repo.Insert(context.Background(), "events", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), row["id"])
}

func TestUpdate(t *testing.T) {
	repo, mock := newMockStore(t)

	mock.ExpectQuery(`UPDATE "public"."order_items" SET "qty" = $1, "status" = $2 WHERE "item_id" = $3 AND "order_id" = $4 RETURNING *`).
		WithArgs(3, "shipped", 7, "o-1").
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "item_id", "qty", "status"}).AddRow("o-1", 7, 3, "shipped"))

	row, err := repo.Update(context.Background(), "order_items",
		map[string]any{"status": "shipped", "qty": 3},
		map[string]any{"order_id": "o-1", "item_id": 7})
	require.NoError(t, err)
	assert.Equal(t, "shipped", row["status"])
}

func TestUpdateWithoutValuesReadsRow(t *testing.T) {
	repo, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT * FROM "public"."orders" WHERE "id" = $1 LIMIT 1`).
		WithArgs("o-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("o-1"))

	row, err := repo.Update(context.Background(), "orders", nil, map[string]any{"id": "o-1"})
	require.NoError(t, err)
	assert.Equal(t, "o-1", row["id"])
}

func TestUpdateNoMatchingRow(t *testing.T) {
	repo, mock := newMockStore(t)

	mock.ExpectQuery(`UPDATE "public"."orders" SET "status" = $1 WHERE "id" = $2 RETURNING *`).
		WithArgs("shipped", "gone").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))

	_, err := repo.Update(context.Background(), "orders",
		map[string]any{"status": "shipped"}, map[string]any{"id": "gone"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestUpdateRequiresMatch(t *testing.T) {
	repo, _ := newMockStore(t)

	_, err := repo.Update(context.Background(), "orders", map[string]any{"status": "x"}, nil)
	assert.Error(t, err)
}

func TestTransportErrorIsNotStoreError(t *testing.T) {
	repo, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT * FROM "public"."orders" LIMIT $1`).
		WithArgs(1).
		WillReturnError(sql.ErrConnDone)

	_, err := repo.SelectRows(context.Background(), "orders", nil, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrConnDone))

	var storeErr *StoreError
	assert.False(t, errors.As(err, &storeErr))
}
