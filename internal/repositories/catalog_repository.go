package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// IntrospectionFunctions are the database functions the store relies on.
var IntrospectionFunctions = []string{"list_tables", "describe_table"}

// Querier is the subset of pgxpool.Pool and pgx.Conn the catalog needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CatalogRepository reads the Postgres system catalogs directly. It is used
// to check an installation, not to serve the admin screens.
type CatalogRepository struct {
	db Querier
}

func NewCatalogRepository(db Querier) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// BaseTables returns all table names in the specified schema
func (r *CatalogRepository) BaseTables(ctx context.Context, schema string) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	return r.names(ctx, query, schema)
}

// MissingFunctions returns the introspection functions not defined in schema.
func (r *CatalogRepository) MissingFunctions(ctx context.Context, schema string) ([]string, error) {
	query := `
		SELECT DISTINCT p.proname
		FROM pg_catalog.pg_proc p
		JOIN pg_catalog.pg_namespace n ON n.oid = p.pronamespace
		WHERE n.nspname = $1
		AND p.proname = ANY($2)
	`
	found, err := r.names(ctx, query, schema, IntrospectionFunctions)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, fn := range IntrospectionFunctions {
		present := false
		for _, name := range found {
			if name == fn {
				present = true
				break
			}
		}
		if !present {
			missing = append(missing, fn)
		}
	}
	return missing, nil
}

func (r *CatalogRepository) names(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreError("catalog", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("catalog: failed to scan row: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStoreError("catalog", err)
	}

	return names, nil
}
