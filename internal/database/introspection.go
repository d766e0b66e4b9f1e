package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// InstallIntrospection creates or replaces the list_tables and describe_table
// functions in schema. Both report the tables of that same schema and are
// idempotent.
func InstallIntrospection(ctx context.Context, db Execer, schema string, log logrus.FieldLogger) error {
	if schema == "" {
		schema = "public"
	}
	statements := IntrospectionStatements(schema)

	for i, stmt := range statements {
		log.WithField("schema", schema).Debugf("Installing introspection statement %d/%d", i+1, len(statements))
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("introspection statement %d failed: %w", i+1, err)
		}
	}

	log.WithField("schema", schema).Info("Introspection functions installed")
	return nil
}

// IntrospectionStatements renders the install script for schema.
func IntrospectionStatements(schema string) []string {
	r := strings.NewReplacer(
		"{{schema}}", pgx.Identifier{schema}.Sanitize(),
		"{{schema_name}}", "'"+strings.ReplaceAll(schema, "'", "''")+"'",
	)
	return []string{
		r.Replace(listTablesFunction),
		r.Replace(describeTableFunction),
		r.Replace(grantIntrospection),
	}
}

var _ Execer = (*pgxpool.Pool)(nil)

const listTablesFunction = `
CREATE OR REPLACE FUNCTION {{schema}}.list_tables()
RETURNS TABLE (table_name text)
LANGUAGE sql
STABLE
SECURITY DEFINER
AS $$
  SELECT t.table_name::text
  FROM information_schema.tables t
  WHERE t.table_schema = {{schema_name}}
    AND t.table_type = 'BASE TABLE'
    AND t.table_name NOT LIKE 'pg\_%'
    AND t.table_name NOT LIKE 'sql\_%'
  ORDER BY t.table_name;
$$;
`

const describeTableFunction = `
CREATE OR REPLACE FUNCTION {{schema}}.describe_table(p_table_name text)
RETURNS TABLE (
  column_name text,
  data_type text,
  ordinal_position integer,
  is_nullable text,
  is_primary_key boolean,
  foreign_key_table text,
  foreign_key_column text
)
LANGUAGE sql
STABLE
SECURITY DEFINER
AS $$
  SELECT
    c.column_name::text,
    c.data_type::text,
    c.ordinal_position::integer,
    c.is_nullable::text,
    EXISTS (
      SELECT 1
      FROM information_schema.table_constraints tc
      JOIN information_schema.key_column_usage kcu
        ON tc.constraint_name = kcu.constraint_name
        AND tc.table_schema = kcu.table_schema
      WHERE tc.constraint_type = 'PRIMARY KEY'
        AND tc.table_schema = c.table_schema
        AND tc.table_name = c.table_name
        AND kcu.column_name = c.column_name
    ) AS is_primary_key,
    fk.foreign_table::text AS foreign_key_table,
    fk.foreign_column::text AS foreign_key_column
  FROM information_schema.columns c
  LEFT JOIN LATERAL (
    SELECT
      ccu.table_name AS foreign_table,
      ccu.column_name AS foreign_column
    FROM information_schema.table_constraints tc
    JOIN information_schema.key_column_usage kcu
      ON tc.constraint_name = kcu.constraint_name
      AND tc.table_schema = kcu.table_schema
    JOIN information_schema.constraint_column_usage ccu
      ON ccu.constraint_name = tc.constraint_name
      AND ccu.table_schema = tc.table_schema
    WHERE tc.constraint_type = 'FOREIGN KEY'
      AND tc.table_schema = c.table_schema
      AND tc.table_name = c.table_name
      AND kcu.column_name = c.column_name
    LIMIT 1
  ) fk ON true
  WHERE c.table_schema = {{schema_name}}
    AND c.table_name = p_table_name
  ORDER BY c.ordinal_position;
$$;
`

const grantIntrospection = `
DO $$
BEGIN
  IF EXISTS (SELECT 1 FROM pg_roles WHERE rolname = 'anon') THEN
    GRANT EXECUTE ON FUNCTION {{schema}}.list_tables() TO anon;
    GRANT EXECUTE ON FUNCTION {{schema}}.describe_table(text) TO anon;
  END IF;
END$$;
`
