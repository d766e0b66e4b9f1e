package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"adminlite/internal/models"
	"adminlite/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInsertPayload(t *testing.T) {
	svc := NewRecordService(&fakeStore{}, testLogger())
	schema := models.TableSchema{
		Name: "products",
		Columns: []models.ColumnDetail{
			pk(column("id", "uuid", 1)),
			column("name", "text", 2),
			column("price", "numeric", 3),
			notNull(column("stock", "integer", 4)),
			column("released", "date", 5),
		},
	}

	payload := svc.BuildInsertPayload(schema, models.Record{
		"id":       models.Text("9b2d2f5e-0d51-4a57-9a3f-1c1b5a8c3e11"),
		"name":     models.Text(""),
		"price":    models.Text(""),
		"stock":    models.Text(""),
		"released": models.Timestamp(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		"unknown":  models.Text("ignored"),
	})

	assert.NotContains(t, payload, "id", "uuid primary key is generated by the store")
	assert.Equal(t, "", payload["name"], "text keeps the empty string")
	assert.Contains(t, payload, "price")
	assert.Nil(t, payload["price"], "empty non-text nullable becomes null")
	assert.NotContains(t, payload, "stock", "empty non-text not-null is left to the default")
	assert.NotContains(t, payload, "unknown")
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), payload["released"])
}

func TestBuildInsertPayloadKeepsEnteredKey(t *testing.T) {
	svc := NewRecordService(&fakeStore{}, testLogger())
	schema := models.TableSchema{
		Name:    "countries",
		Columns: []models.ColumnDetail{pk(column("code", "text", 1)), column("name", "text", 2)},
	}

	payload := svc.BuildInsertPayload(schema, models.Record{"code": models.Text("NL"), "name": models.Text("Netherlands")})
	assert.Equal(t, map[string]any{"code": "NL", "name": "Netherlands"}, payload)

	payload = svc.BuildInsertPayload(schema, models.Record{"code": models.Text(""), "name": models.Text("x")})
	assert.NotContains(t, payload, "code")
}

func TestBuildUpdatePayload(t *testing.T) {
	svc := NewRecordService(&fakeStore{}, testLogger())
	schema := models.TableSchema{
		Name: "order_items",
		Columns: []models.ColumnDetail{
			pk(column("order_id", "integer", 1)),
			pk(column("line", "integer", 2)),
			column("qty", "integer", 3),
			column("note", "text", 4),
		},
	}

	values, match, err := svc.BuildUpdatePayload(schema, models.Record{
		"order_id": models.Number(10),
		"line":     models.Number(2),
		"qty":      models.Number(5),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"qty": int64(5)}, values)
	assert.Equal(t, map[string]any{"order_id": int64(10), "line": int64(2)}, match)

	_, _, err = svc.BuildUpdatePayload(schema, models.Record{"order_id": models.Number(10), "qty": models.Number(1)})
	assert.ErrorIs(t, err, ErrMissingPrimaryKey)

	_, _, err = svc.BuildUpdatePayload(schema, models.Record{"order_id": models.Number(10), "line": models.Null()})
	assert.ErrorIs(t, err, ErrMissingPrimaryKey)

	noKey := models.TableSchema{Name: "log", Columns: []models.ColumnDetail{column("msg", "text", 1)}}
	_, _, err = svc.BuildUpdatePayload(noKey, models.Record{"msg": models.Text("x")})
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
}

func TestBuildUpdatePayloadKeepsBigintKeyExact(t *testing.T) {
	svc := NewRecordService(&fakeStore{}, testLogger())
	schema := models.TableSchema{
		Name: "events",
		Columns: []models.ColumnDetail{
			pk(column("id", "bigint", 1)),
			column("amount", "numeric", 2),
		},
	}

	rec := models.RecordFromDB(schema, map[string]any{
		"id":     int64(9007199254740993),
		"amount": "12345678901234567890.123456789",
	})

	values, match, err := svc.BuildUpdatePayload(schema, rec)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(9007199254740993)}, match)
	assert.Equal(t, map[string]any{"amount": "12345678901234567890.123456789"}, values)
}

func TestSaveNewOrderSendsNullForeignKey(t *testing.T) {
	var sent map[string]any
	store := &fakeStore{
		insertFunc: func(ctx context.Context, table string, values map[string]any) (map[string]any, error) {
			sent = values
			return map[string]any{
				"id":           "5f0c6a8e-2b7d-4c1e-9d3a-6e2f1b0a9c44",
				"user_id":      nil,
				"total_amount": "19.90",
				"status":       "new",
				"order_date":   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	svc := NewRecordService(store, testLogger())
	fb := NewFormBuilder(time.UTC)
	schema := ordersSchema()

	rec := fb.Scaffold(schema)
	rec["total_amount"] = models.Number(19.9)
	rec["status"] = models.Text("new")

	saved, err := svc.Save(context.Background(), schema, rec, true)
	require.NoError(t, err)

	assert.Contains(t, sent, "user_id")
	assert.Nil(t, sent["user_id"])
	assert.NotContains(t, sent, "id")
	assert.NotContains(t, sent, "order_date")

	id, ok := saved.Get("id").UUID()
	assert.True(t, ok)
	assert.Equal(t, "5f0c6a8e-2b7d-4c1e-9d3a-6e2f1b0a9c44", id.String())
	amount, ok := saved.Get("total_amount").Number()
	assert.True(t, ok)
	assert.Equal(t, 19.9, amount)
}

func TestSaveUpdateMatchesOnKeys(t *testing.T) {
	store := &fakeStore{
		updateFunc: func(ctx context.Context, table string, values, match map[string]any) (map[string]any, error) {
			assert.Equal(t, "orders", table)
			assert.NotContains(t, values, "id")
			assert.Equal(t, map[string]any{"id": "5f0c6a8e-2b7d-4c1e-9d3a-6e2f1b0a9c44"}, match)
			return map[string]any{"id": match["id"], "status": values["status"]}, nil
		},
	}
	svc := NewRecordService(store, testLogger())

	rec := models.RecordFromDB(ordersSchema(), map[string]any{
		"id":     "5f0c6a8e-2b7d-4c1e-9d3a-6e2f1b0a9c44",
		"status": "shipped",
	})
	saved, err := svc.Save(context.Background(), ordersSchema(), rec, false)
	require.NoError(t, err)
	assert.Equal(t, "shipped", saved.Get("status").String())
}

func TestSaveWrapsStoreFailure(t *testing.T) {
	store := &fakeStore{
		insertFunc: func(ctx context.Context, table string, values map[string]any) (map[string]any, error) {
			return nil, &repositories.StoreError{Message: "null value in column \"status\"", Code: "23502"}
		},
	}
	svc := NewRecordService(store, testLogger())

	_, err := svc.Save(context.Background(), ordersSchema(), models.Record{}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSaveFailed)
	assert.Contains(t, err.Error(), "Code: 23502")
}

func TestFetchRows(t *testing.T) {
	store := &fakeStore{
		selectRowsFunc: func(ctx context.Context, table string, columns []string, limit int) (models.RowSet, error) {
			if table == "broken" {
				return models.RowSet{}, errors.New("timeout")
			}
			assert.Equal(t, 50, limit)
			return models.RowSet{
				Columns: []string{"id", "total_amount"},
				Rows:    []map[string]any{{"id": "5f0c6a8e-2b7d-4c1e-9d3a-6e2f1b0a9c44", "total_amount": "3.50"}},
			}, nil
		},
	}
	svc := NewRecordService(store, testLogger())

	rows, err := svc.FetchRows(context.Background(), ordersSchema(), 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	amount, ok := rows[0].Get("total_amount").Number()
	assert.True(t, ok)
	assert.Equal(t, 3.5, amount)

	_, err = svc.FetchRows(context.Background(), models.TableSchema{Name: "broken"}, 50)
	assert.ErrorIs(t, err, ErrRowFetchFailed)
	assert.Contains(t, err.Error(), "timeout")
}
