package services

import (
	"context"

	"adminlite/internal/models"
)

// Store is the data-access surface of the administered database.
// *repositories.StoreRepository implements it.
type Store interface {
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) ([]models.ColumnDetail, error)
	SelectRows(ctx context.Context, table string, columns []string, limit int) (models.RowSet, error)
	Insert(ctx context.Context, table string, values map[string]any) (map[string]any, error)
	Update(ctx context.Context, table string, values, match map[string]any) (map[string]any, error)
}
