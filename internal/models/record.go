package models

// Record holds one row keyed by column name. A missing key means the column
// was never set, which is different from an explicit null.
type Record map[string]Value

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (r Record) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// Get returns the column value, or null when the column is absent.
func (r Record) Get(column string) Value {
	return r[column]
}

// RecordFromDB converts a raw store row, coercing each value by the declared
// column type. Columns the schema does not know are inferred.
func RecordFromDB(schema TableSchema, raw map[string]any) Record {
	rec := make(Record, len(raw))
	for name, v := range raw {
		if col, ok := schema.Column(name); ok {
			rec[name] = FromDB(col.DataType, v)
			continue
		}
		rec[name] = FromAny(v)
	}
	return rec
}

// RecordsFromDB converts every row of a result set.
func RecordsFromDB(schema TableSchema, rows []map[string]any) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, RecordFromDB(schema, row))
	}
	return out
}

// SameKeys reports whether both records carry equal, non-null values for
// every given primary key column.
func SameKeys(a, b Record, keys []ColumnDetail) bool {
	if len(keys) == 0 {
		return false
	}
	for _, pk := range keys {
		av, bv := a.Get(pk.ColumnName), b.Get(pk.ColumnName)
		if av.IsNull() || bv.IsNull() {
			return false
		}
		if !av.Equal(bv) && av.String() != bv.String() {
			return false
		}
	}
	return true
}
