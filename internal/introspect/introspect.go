// Package introspect builds a raw schema description from a live database.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/petasbytes/dimensional-agent/specs"
)

// TableRow is one row of the tables query.
type TableRow struct {
	Name    string
	Comment string
}

// ColumnRow is one row of the columns query, in ordinal order per table.
type ColumnRow struct {
	Table    string
	Column   string
	DataType string
}

var integerTypes = []string{
	"int", "integer", "smallint", "bigint", "tinyint", "mediumint",
	"int2", "int4", "int8", "serial", "smallserial", "bigserial", "year",
}

// ColumnTypeFor maps an engine data type onto the column type vocabulary.
// Unknown types fall back to str.
func ColumnTypeFor(dataType string) specs.ColumnType {
	t := strings.ToLower(strings.TrimSpace(dataType))
	switch {
	case t == "date":
		return specs.ColumnDate
	case strings.HasPrefix(t, "timestamp"), t == "datetime":
		return specs.ColumnDatetime
	case t == "boolean", t == "bool", t == "bit":
		return specs.ColumnBoolean
	case slices.Contains(integerTypes, t):
		return specs.ColumnInteger
	case t == "numeric", t == "decimal", t == "real", t == "float", t == "double",
		t == "double precision", t == "money", strings.HasPrefix(t, "float"):
		return specs.ColumnFloat
	default:
		return specs.ColumnString
	}
}

// Assemble groups column rows under their tables. Tables keep the order of
// tables, columns the order in which they were read. Columns of tables not
// listed are dropped.
func Assemble(tables []TableRow, columns []ColumnRow) (specs.RawSchemaSpecs, error) {
	out := specs.RawSchemaSpecs{Tables: make([]specs.Table, 0, len(tables))}
	index := make(map[string]int, len(tables))
	for _, t := range tables {
		if _, dup := index[t.Name]; dup {
			return specs.RawSchemaSpecs{}, fmt.Errorf("duplicate table %q", t.Name)
		}
		index[t.Name] = len(out.Tables)
		out.Tables = append(out.Tables, specs.Table{
			Name:        t.Name,
			Type:        specs.TableRaw,
			Description: t.Comment,
			Columns:     specs.NewColumns(),
		})
	}
	for _, c := range columns {
		i, ok := index[c.Table]
		if !ok {
			continue
		}
		out.Tables[i].Columns.Set(c.Column, ColumnTypeFor(c.DataType))
	}
	if err := out.Validate(); err != nil {
		return specs.RawSchemaSpecs{}, err
	}
	return out, nil
}

// Open connects and pings the database.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	return db, nil
}

// Schema reads tables and columns of schema through d. An empty schema means
// the dialect's current schema.
func Schema(ctx context.Context, db *sql.DB, d Dialect, schema string) (specs.RawSchemaSpecs, error) {
	if schema == "" {
		s, err := d.CurrentSchema(ctx, db)
		if err != nil {
			return specs.RawSchemaSpecs{}, err
		}
		schema = s
	}
	ancli.Noticef("introspecting %s schema %q\n", d.Name(), schema)

	tables, err := queryTables(ctx, db, d, schema)
	if err != nil {
		return specs.RawSchemaSpecs{}, err
	}
	columns, err := queryColumns(ctx, db, d, schema)
	if err != nil {
		return specs.RawSchemaSpecs{}, err
	}
	return Assemble(tables, columns)
}

func queryTables(ctx context.Context, db *sql.DB, d Dialect, schema string) ([]TableRow, error) {
	rows, err := db.QueryContext(ctx, d.TablesQuery(), schema)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var out []TableRow
	for rows.Next() {
		var name string
		var comment sql.NullString
		if err := rows.Scan(&name, &comment); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		out = append(out, TableRow{Name: name, Comment: comment.String})
	}
	return out, rows.Err()
}

func queryColumns(ctx context.Context, db *sql.DB, d Dialect, schema string) ([]ColumnRow, error) {
	rows, err := db.QueryContext(ctx, d.ColumnsQuery(), schema)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var out []ColumnRow
	for rows.Next() {
		var r ColumnRow
		if err := rows.Scan(&r.Table, &r.Column, &r.DataType); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
