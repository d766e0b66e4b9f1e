package services

import (
	"context"
	"fmt"

	"adminlite/internal/models"

	"github.com/sirupsen/logrus"
)

// RecordService reads rows and turns edited records into store writes.
type RecordService struct {
	store Store
	log   logrus.FieldLogger
}

func NewRecordService(store Store, log logrus.FieldLogger) *RecordService {
	return &RecordService{store: store, log: log}
}

// FetchRows reads up to limit rows of the table, typed by its schema.
func (s *RecordService) FetchRows(ctx context.Context, schema models.TableSchema, limit int) ([]models.Record, error) {
	set, err := s.store.SelectRows(ctx, schema.Name, nil, limit)
	if err != nil {
		s.log.WithField("table", schema.Name).WithError(err).Error("Fetching rows failed")
		return nil, fmt.Errorf("%w from %s: %s", ErrRowFetchFailed, schema.Name, DescribeError(err))
	}
	return models.RecordsFromDB(schema, set.Rows), nil
}

// BuildInsertPayload keeps only the columns the record actually carries.
// Empty or auto-generated primary keys are dropped so the store assigns them.
func (s *RecordService) BuildInsertPayload(schema models.TableSchema, record models.Record) map[string]any {
	payload := make(map[string]any, len(record))
	for name, value := range record {
		col, ok := schema.Column(name)
		if !ok {
			continue
		}
		if col.IsPrimaryKey && (value.IsEmpty() || col.Family() == models.FamilyUUID) {
			continue
		}
		if v, keep := payloadValue(col, value); keep {
			payload[name] = v
		}
	}
	return payload
}

// BuildUpdatePayload splits the record into the mutated columns and the
// primary key values that identify the row.
func (s *RecordService) BuildUpdatePayload(schema models.TableSchema, record models.Record) (values, match map[string]any, err error) {
	pks := schema.PrimaryKeys()
	if len(pks) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoPrimaryKey, schema.Name)
	}

	match = make(map[string]any, len(pks))
	for _, pk := range pks {
		value, ok := record[pk.ColumnName]
		if !ok || value.IsEmpty() {
			return nil, nil, fmt.Errorf("%w: %s.%s", ErrMissingPrimaryKey, schema.Name, pk.ColumnName)
		}
		match[pk.ColumnName] = value.Any()
	}

	values = make(map[string]any, len(record))
	for name, value := range record {
		col, ok := schema.Column(name)
		if !ok || col.IsPrimaryKey {
			continue
		}
		if v, keep := payloadValue(col, value); keep {
			values[name] = v
		}
	}
	return values, match, nil
}

// payloadValue maps "" on non-text columns to null when nullable, and leaves
// the column out otherwise.
func payloadValue(col models.ColumnDetail, value models.Value) (any, bool) {
	if value.IsEmptyText() && !isTextual(col) {
		if col.Nullable() {
			return nil, true
		}
		return nil, false
	}
	return value.Any(), true
}

func isTextual(col models.ColumnDetail) bool {
	if col.IsForeignKey() {
		return false
	}
	switch col.Family() {
	case models.FamilyText, models.FamilyUnknown:
		return true
	}
	return false
}

// Save inserts or updates the record and returns the row as stored.
func (s *RecordService) Save(ctx context.Context, schema models.TableSchema, record models.Record, isNew bool) (models.Record, error) {
	var (
		row map[string]any
		err error
	)

	if isNew {
		payload := s.BuildInsertPayload(schema, record)
		row, err = s.store.Insert(ctx, schema.Name, payload)
	} else {
		values, match, perr := s.BuildUpdatePayload(schema, record)
		if perr != nil {
			return nil, perr
		}
		row, err = s.store.Update(ctx, schema.Name, values, match)
	}

	if err != nil {
		s.log.WithFields(logrus.Fields{
			"table":  schema.Name,
			"insert": isNew,
		}).WithError(err).Error("Saving record failed")
		return nil, fmt.Errorf("%w: %s", ErrSaveFailed, DescribeError(err))
	}

	s.log.WithFields(logrus.Fields{"table": schema.Name, "insert": isNew}).Info("Record saved")
	return models.RecordFromDB(schema, row), nil
}
