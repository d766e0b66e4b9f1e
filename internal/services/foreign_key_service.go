package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"adminlite/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultOptionLimit = 100
	MaxOptionLimit     = 200
)

var labelColumnPreferences = []string{"name", "title", "code", "label", "city", "email"}

// ForeignKeyService loads the choices offered for foreign key columns.
type ForeignKeyService struct {
	store Store
	log   logrus.FieldLogger
	limit int
}

// NewForeignKeyService clamps limit to [DefaultOptionLimit, MaxOptionLimit].
func NewForeignKeyService(store Store, log logrus.FieldLogger, limit int) *ForeignKeyService {
	switch {
	case limit < DefaultOptionLimit:
		limit = DefaultOptionLimit
	case limit > MaxOptionLimit:
		limit = MaxOptionLimit
	}
	return &ForeignKeyService{store: store, log: log, limit: limit}
}

func (s *ForeignKeyService) Limit() int {
	return s.limit
}

// LoadOptions returns the choices for a column referencing
// foreignTable.keyColumn. Loading errors never fail the call: the set comes
// back empty with Error filled in. Nullable columns always get exactly one
// leading none option.
func (s *ForeignKeyService) LoadOptions(ctx context.Context, foreignTable, keyColumn string, nullable bool) models.OptionSet {
	return s.load(ctx, foreignTable, keyColumn, nullable, models.FamilyUnknown)
}

func (s *ForeignKeyService) load(ctx context.Context, foreignTable, keyColumn string, nullable bool, family models.TypeFamily) models.OptionSet {
	set := models.OptionSet{Table: foreignTable, Column: keyColumn}

	options, err := s.fetch(ctx, foreignTable, keyColumn, family)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"table":  foreignTable,
			"column": keyColumn,
		}).WithError(err).Warn("Loading foreign key options failed")
		set.Error = DescribeError(err)
		options = nil
	}
	set.Empty = len(options) == 0

	set.Options = make([]models.FkOption, 0, len(options)+1)
	if nullable {
		set.Options = append(set.Options, models.FkOption{
			Value: models.Null(),
			Label: models.NoneLabel,
			None:  true,
		})
	}
	set.Options = append(set.Options, options...)
	return set
}

func (s *ForeignKeyService) fetch(ctx context.Context, table, keyColumn string, family models.TypeFamily) ([]models.FkOption, error) {
	sample, err := s.store.SelectRows(ctx, table, nil, 1)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", table, err)
	}

	labelColumn := ChooseLabelColumn(sample.Columns, keyColumn)
	columns := []string{keyColumn}
	if labelColumn != keyColumn {
		columns = append(columns, labelColumn)
	}

	rows, err := s.store.SelectRows(ctx, table, columns, s.limit)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}

	options := make([]models.FkOption, 0, len(rows.Rows))
	for _, row := range rows.Rows {
		value := models.FromAny(row[keyColumn]).Coerce(family)
		label := models.FromAny(row[labelColumn])
		text := label.String()
		if label.IsNull() {
			text = value.String()
		}
		options = append(options, models.FkOption{Value: value, Label: text})
	}
	return options, nil
}

// ChooseLabelColumn picks the column shown for each option: the first
// preference found as a case-insensitive substring of a column name, else the
// first non-key column, else the key itself.
func ChooseLabelColumn(columns []string, keyColumn string) string {
	for _, preferred := range labelColumnPreferences {
		for _, col := range columns {
			if strings.Contains(strings.ToLower(col), preferred) {
				return col
			}
		}
	}
	if len(columns) > 1 {
		for _, col := range columns {
			if col != keyColumn {
				return col
			}
		}
	}
	return keyColumn
}

// LoadForSchema loads options for every foreign key column of schema. Each
// column is sampled and fetched independently.
func (s *ForeignKeyService) LoadForSchema(ctx context.Context, schema models.TableSchema) map[string]models.OptionSet {
	fks := schema.ForeignKeyColumns()
	result := make(map[string]models.OptionSet, len(fks))
	if len(fks) == 0 {
		return result
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(4)

	for _, col := range fks {
		g.Go(func() error {
			table, key, _ := col.ForeignKey()
			set := s.load(ctx, table, key, col.Nullable(), col.Family())
			mu.Lock()
			result[col.ColumnName] = set
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result
}

// LoadColumn loads the options of one named column of schema.
func (s *ForeignKeyService) LoadColumn(ctx context.Context, schema models.TableSchema, column string) (models.OptionSet, error) {
	col, ok := schema.Column(column)
	if !ok {
		return models.OptionSet{}, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, schema.Name, column)
	}
	table, key, ok := col.ForeignKey()
	if !ok {
		return models.OptionSet{}, fmt.Errorf("%w: %s.%s", ErrNotForeignKey, schema.Name, column)
	}
	return s.load(ctx, table, key, col.Nullable(), col.Family()), nil
}
