package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"adminlite/internal/models"
	"adminlite/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const maxDisplayColumns = 4

var preferredDisplayColumns = []string{"name", "title", "label", "description"}

// resolveStrategy returns ok=false when it has no answer for the table.
type resolveStrategy struct {
	name    string
	resolve func(ctx context.Context, table string) ([]models.ColumnDetail, bool, error)
}

// SchemaService resolves table schemas and caches the last full pass.
type SchemaService struct {
	store       Store
	log         logrus.FieldLogger
	concurrency int

	mu     sync.RWMutex
	tables []models.TableSchema
	loaded bool
}

func NewSchemaService(store Store, log logrus.FieldLogger, concurrency int) *SchemaService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SchemaService{
		store:       store,
		log:         log,
		concurrency: concurrency,
	}
}

func (s *SchemaService) strategies() []resolveStrategy {
	return []resolveStrategy{
		{name: "describe_table", resolve: s.fromDescribe},
		{name: "sample_row", resolve: s.fromSample},
		{name: "synthetic_id", resolve: syntheticColumns},
	}
}

// Resolve builds the schema of one table from the first strategy that
// answers. Store-side strategy errors are logged and skipped; transport and
// cancellation errors abort.
func (s *SchemaService) Resolve(ctx context.Context, table string) (models.TableSchema, error) {
	for _, strategy := range s.strategies() {
		columns, ok, err := strategy.resolve(ctx, table)
		if err != nil {
			if isHardFailure(err) {
				return models.TableSchema{}, fmt.Errorf("%w %s: %w", ErrDescribeTableFailed, table, err)
			}
			s.log.WithFields(logrus.Fields{
				"table":    table,
				"strategy": strategy.name,
			}).WithError(err).Warn("Schema strategy failed, falling back")
			continue
		}
		if !ok {
			continue
		}

		schema := models.TableSchema{
			Name:           table,
			Columns:        columns,
			DisplayColumns: SelectDisplayColumns(columns),
		}
		if len(schema.DisplayColumns) == 0 {
			return models.TableSchema{}, fmt.Errorf("%w: %s", ErrSchemaUnavailable, table)
		}
		s.log.WithFields(logrus.Fields{
			"table":    table,
			"strategy": strategy.name,
			"columns":  len(columns),
		}).Debug("Resolved schema")
		return schema, nil
	}
	return models.TableSchema{}, fmt.Errorf("%w: %s", ErrSchemaUnavailable, table)
}

func (s *SchemaService) fromDescribe(ctx context.Context, table string) ([]models.ColumnDetail, bool, error) {
	columns, err := s.store.DescribeTable(ctx, table)
	if err != nil {
		return nil, false, err
	}
	if len(columns) == 0 {
		return nil, false, nil
	}
	for i := range columns {
		columns[i].Normalize()
	}
	return columns, true, nil
}

func (s *SchemaService) fromSample(ctx context.Context, table string) ([]models.ColumnDetail, bool, error) {
	sample, err := s.store.SelectRows(ctx, table, nil, 1)
	if err != nil {
		return nil, false, err
	}
	if len(sample.Rows) == 0 || len(sample.Columns) == 0 {
		return nil, false, nil
	}

	columns := make([]models.ColumnDetail, 0, len(sample.Columns))
	for i, name := range sample.Columns {
		columns = append(columns, models.ColumnDetail{
			ColumnName:      name,
			DataType:        models.UnknownDataType,
			OrdinalPosition: i + 1,
			IsNullable:      models.NullableYes,
			IsPrimaryKey:    name == "id",
		})
	}
	return columns, true, nil
}

func syntheticColumns(context.Context, string) ([]models.ColumnDetail, bool, error) {
	return []models.ColumnDetail{{
		ColumnName:      "id",
		DataType:        "uuid",
		OrdinalPosition: 1,
		IsNullable:      models.NullableNo,
		IsPrimaryKey:    true,
	}}, true, nil
}

// SelectDisplayColumns picks up to four columns for compact display: the first
// preferred label column, else id, then the rest in ordinal order.
func SelectDisplayColumns(columns []models.ColumnDetail) []string {
	selected := make([]string, 0, maxDisplayColumns)
	has := func(name string) bool {
		for _, col := range columns {
			if col.ColumnName == name {
				return true
			}
		}
		return false
	}

	for _, preferred := range preferredDisplayColumns {
		if has(preferred) {
			selected = append(selected, preferred)
			break
		}
	}
	if len(selected) == 0 && has("id") {
		selected = append(selected, "id")
	}

	for _, col := range columns {
		if len(selected) >= maxDisplayColumns {
			break
		}
		if utils.Contains(selected, col.ColumnName) {
			continue
		}
		selected = append(selected, col.ColumnName)
	}
	return selected
}

// ListSchemas lists every table and resolves them concurrently, keeping the
// listing order. Tables without display columns are left out. The result
// replaces the cached table list.
func (s *SchemaService) ListSchemas(ctx context.Context) ([]models.TableSchema, error) {
	names, err := s.store.ListTables(ctx)
	if err != nil {
		s.log.WithError(err).Error("Listing tables failed")
		return nil, fmt.Errorf("%w: %s", ErrListTablesFailed, DescribeError(err))
	}

	resolved := make([]*models.TableSchema, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, name := range names {
		g.Go(func() error {
			schema, err := s.Resolve(gctx, name)
			if errors.Is(err, ErrSchemaUnavailable) {
				s.log.WithField("table", name).Warn("Skipping table without columns")
				return nil
			}
			if err != nil {
				return err
			}
			resolved[i] = &schema
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.log.WithError(err).Error("Schema resolve pass aborted")
		return nil, fmt.Errorf("%w: %s", ErrListTablesFailed, DescribeError(err))
	}

	tables := make([]models.TableSchema, 0, len(resolved))
	for _, schema := range resolved {
		if schema != nil {
			tables = append(tables, *schema)
		}
	}

	s.mu.Lock()
	s.tables = tables
	s.loaded = true
	s.mu.Unlock()

	s.log.WithField("tables", len(tables)).Info("Schema resolve pass complete")
	return cloneSchemas(tables), nil
}

// Tables returns the cached pass, running one if nothing is cached yet.
func (s *SchemaService) Tables(ctx context.Context) ([]models.TableSchema, error) {
	s.mu.RLock()
	if s.loaded {
		tables := cloneSchemas(s.tables)
		s.mu.RUnlock()
		return tables, nil
	}
	s.mu.RUnlock()
	return s.ListSchemas(ctx)
}

// Refresh discards the cache and rebuilds it.
func (s *SchemaService) Refresh(ctx context.Context) ([]models.TableSchema, error) {
	return s.ListSchemas(ctx)
}

func (s *SchemaService) Lookup(ctx context.Context, table string) (models.TableSchema, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return models.TableSchema{}, err
	}
	for _, schema := range tables {
		if schema.Name == table {
			return schema, nil
		}
	}
	return models.TableSchema{}, fmt.Errorf("%w: %s", ErrTableNotFound, table)
}

func cloneSchemas(in []models.TableSchema) []models.TableSchema {
	out := make([]models.TableSchema, len(in))
	for i, schema := range in {
		out[i] = models.TableSchema{
			Name:           schema.Name,
			Columns:        append([]models.ColumnDetail(nil), schema.Columns...),
			DisplayColumns: append([]string(nil), schema.DisplayColumns...),
		}
	}
	return out
}
