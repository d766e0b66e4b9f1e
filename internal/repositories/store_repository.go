package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"adminlite/internal/models"
	"adminlite/internal/utils"

	"github.com/jackc/pgx/v5"
)

// StoreRepository talks to the administered database: the two introspection
// functions plus generic row select, insert and update.
type StoreRepository struct {
	db     *sql.DB
	schema string
}

func NewStoreRepository(db *sql.DB, schema string) *StoreRepository {
	if schema == "" {
		schema = "public"
	}
	return &StoreRepository{db: db, schema: schema}
}

// ListTables calls the list_tables() function.
func (r *StoreRepository) ListTables(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT table_name FROM %s.list_tables()", r.quote(r.schema))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapStoreError("list_tables", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list_tables: failed to scan row: %w", err)
		}
		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStoreError("list_tables", err)
	}

	return tables, nil
}

// DescribeTable calls describe_table(p_table_name). An unknown table yields
// no rows rather than an error.
func (r *StoreRepository) DescribeTable(ctx context.Context, table string) ([]models.ColumnDetail, error) {
	query := fmt.Sprintf("SELECT column_name, data_type, ordinal_position, is_nullable, is_primary_key, foreign_key_table, foreign_key_column FROM %s.describe_table($1)", r.quote(r.schema))

	rows, err := r.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, wrapStoreError("describe_table", err)
	}
	defer rows.Close()

	var columns []models.ColumnDetail
	for rows.Next() {
		var (
			col      models.ColumnDetail
			nullable sql.NullString
			pk       sql.NullBool
			fkTable  sql.NullString
			fkColumn sql.NullString
			dataType sql.NullString
			ordinal  sql.NullInt64
		)
		if err := rows.Scan(&col.ColumnName, &dataType, &ordinal, &nullable, &pk, &fkTable, &fkColumn); err != nil {
			return nil, fmt.Errorf("describe_table: failed to scan row: %w", err)
		}
		col.DataType = dataType.String
		if col.DataType == "" {
			col.DataType = models.UnknownDataType
		}
		col.OrdinalPosition = int(ordinal.Int64)
		if col.OrdinalPosition < 1 {
			col.OrdinalPosition = len(columns) + 1
		}
		col.IsNullable = models.Nullability(nullable.String)
		col.IsPrimaryKey = pk.Valid && pk.Bool
		if fkTable.Valid {
			col.ForeignKeyTable = models.StringPtr(fkTable.String)
		}
		if fkColumn.Valid {
			col.ForeignKeyColumn = models.StringPtr(fkColumn.String)
		}
		col.Normalize()
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStoreError("describe_table", err)
	}

	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].OrdinalPosition < columns[j].OrdinalPosition
	})
	return columns, nil
}

// SelectRows reads up to limit rows. An empty column list selects every column.
func (r *StoreRepository) SelectRows(ctx context.Context, table string, columns []string, limit int) (models.RowSet, error) {
	target, err := r.tableRef(table)
	if err != nil {
		return models.RowSet{}, err
	}

	projection := "*"
	if len(columns) > 0 {
		quoted, err := quoteAll(columns)
		if err != nil {
			return models.RowSet{}, err
		}
		projection = strings.Join(quoted, ", ")
	}

	query := fmt.Sprintf("SELECT %s FROM %s LIMIT $1", projection, target)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return models.RowSet{}, wrapStoreError("select "+table, err)
	}
	defer rows.Close()

	set, err := scanRowSet(rows)
	if err != nil {
		return models.RowSet{}, wrapStoreError("select "+table, err)
	}
	return set, nil
}

// Insert writes one row and returns it as stored. An empty payload inserts a
// row made of column defaults.
func (r *StoreRepository) Insert(ctx context.Context, table string, values map[string]any) (map[string]any, error) {
	target, err := r.tableRef(table)
	if err != nil {
		return nil, err
	}

	var query string
	var args []any
	if len(values) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", target)
	} else {
		names := sortedKeys(values)
		quoted, err := quoteAll(names)
		if err != nil {
			return nil, err
		}
		placeholders := make([]string, len(names))
		for i, name := range names {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args = append(args, values[name])
		}
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
			target, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	}

	return r.returningOne(ctx, "insert into "+table, query, args)
}

// Update applies values to the row identified by match and returns the row
// as stored. With no values the current row is returned unchanged.
func (r *StoreRepository) Update(ctx context.Context, table string, values, match map[string]any) (map[string]any, error) {
	target, err := r.tableRef(table)
	if err != nil {
		return nil, err
	}
	if len(match) == 0 {
		return nil, fmt.Errorf("update %s: empty match", table)
	}

	var args []any
	sets := []string{}
	for _, name := range sortedKeys(values) {
		if !utils.IsValidIdentifier(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
		args = append(args, values[name])
		sets = append(sets, fmt.Sprintf("%s = $%d", r.quote(name), len(args)))
	}

	conds := []string{}
	for _, name := range sortedKeys(match) {
		if !utils.IsValidIdentifier(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
		args = append(args, match[name])
		conds = append(conds, fmt.Sprintf("%s = $%d", r.quote(name), len(args)))
	}

	var query string
	if len(sets) == 0 {
		query = fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT 1", target, strings.Join(conds, " AND "))
	} else {
		query = fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING *",
			target, strings.Join(sets, ", "), strings.Join(conds, " AND "))
	}

	return r.returningOne(ctx, "update "+table, query, args)
}

func (r *StoreRepository) returningOne(ctx context.Context, op, query string, args []any) (map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	defer rows.Close()

	set, err := scanRowSet(rows)
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	if len(set.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrRecordNotFound)
	}
	return set.Rows[0], nil
}

func (r *StoreRepository) tableRef(table string) (string, error) {
	if !utils.IsValidIdentifier(table) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, table)
	}
	return pgx.Identifier{r.schema, table}.Sanitize(), nil
}

func (r *StoreRepository) quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quoteAll(names []string) ([]string, error) {
	out := make([]string, len(names))
	for i, name := range names {
		if !utils.IsValidIdentifier(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
		out[i] = pgx.Identifier{name}.Sanitize()
	}
	return out, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func scanRowSet(rows *sql.Rows) (models.RowSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return models.RowSet{}, err
	}

	set := models.RowSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return models.RowSet{}, err
		}

		row := make(map[string]any, len(columns))
		for i, name := range columns {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
				continue
			}
			row[name] = values[i]
		}
		set.Rows = append(set.Rows, row)
	}

	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.RowSet{}, err
	}
	return set, nil
}
