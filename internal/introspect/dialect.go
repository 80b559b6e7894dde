package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Dialect supplies the information_schema queries of one database engine.
type Dialect interface {
	Name() string
	TablesQuery() string
	ColumnsQuery() string
	// CurrentSchema is used when no schema is given.
	CurrentSchema(ctx context.Context, db *sql.DB) (string, error)
}

// DetectDriver guesses the driver from the DSN.
func DetectDriver(dsn string) string {
	if strings.Contains(dsn, "postgres") || strings.Contains(dsn, "sslmode") {
		return DriverPostgres
	}
	return DriverMySQL
}

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverPostgres:
		return postgresDialect{}, nil
	case DriverMySQL:
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return DriverPostgres }

func (postgresDialect) TablesQuery() string {
	return `SELECT t.table_name,
       COALESCE(obj_description(c.oid, 'pg_class'), '')
FROM information_schema.tables t
LEFT JOIN pg_catalog.pg_namespace n ON n.nspname = t.table_schema
LEFT JOIN pg_catalog.pg_class c ON c.relname = t.table_name AND c.relnamespace = n.oid
WHERE t.table_schema = $1 AND t.table_type = 'BASE TABLE'
ORDER BY t.table_name`
}

func (postgresDialect) ColumnsQuery() string {
	return `SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1
ORDER BY table_name, ordinal_position`
}

func (postgresDialect) CurrentSchema(context.Context, *sql.DB) (string, error) {
	return "public", nil
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return DriverMySQL }

func (mysqlDialect) TablesQuery() string {
	return `SELECT TABLE_NAME, TABLE_COMMENT FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`
}

func (mysqlDialect) ColumnsQuery() string {
	return `SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? ORDER BY TABLE_NAME, ORDINAL_POSITION`
}

func (mysqlDialect) CurrentSchema(ctx context.Context, db *sql.DB) (string, error) {
	var name sql.NullString
	if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return "", fmt.Errorf("get database name: %w", err)
	}
	if !name.Valid || name.String == "" {
		return "", fmt.Errorf("no database selected in DSN")
	}
	return name.String, nil
}
