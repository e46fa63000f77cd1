// Package emit renders TableSchema values (and collections of entities) as
// SQL text: CREATE TABLE bodies, foreign key and index statements, and the
// UUID-generation setup script. It mirrors the teacher's per-dialect
// SQLGenerator split in internal/database/migrations/sql_generators.go,
// but over this generator's own schema model.
package emit

import (
	"fmt"
	"strings"

	"github.com/entgen/migrator/internal/descriptor"
	"github.com/entgen/migrator/internal/typemap"
	"github.com/entgen/migrator/pkg/schema"
)

// CreateTable renders a full CREATE TABLE statement for table, preceded by
// header comments naming the entity and target dialect.
func CreateTable(table *schema.TableSchema, entityName string, dialect typemap.Dialect) string {
	var b strings.Builder

	fmt.Fprintf(&b, "-- create_%s_table\n", table.Name)
	fmt.Fprintf(&b, "-- Entity: %s\n", entityName)
	fmt.Fprintf(&b, "-- Database: %s\n", dialect)

	nameWidth, typeWidth := 0, 0
	for _, c := range table.Columns {
		if len(c.Name) > nameWidth {
			nameWidth = len(c.Name)
		}
		if len(c.Type) > typeWidth {
			typeWidth = len(c.Type)
		}
	}

	lines := make([]string, 0, len(table.Columns))
	for _, c := range table.Columns {
		lines = append(lines, renderColumn(c, nameWidth, typeWidth))
	}

	fmt.Fprintf(&b, "CREATE TABLE %s (\n%s\n);\n", table.Name, strings.Join(lines, ",\n"))
	return b.String()
}

func renderColumn(c schema.ColumnSchema, nameWidth, typeWidth int) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("    %-*s %-*s", nameWidth, c.Name, typeWidth, c.Type))

	if c.IsPrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	}
	if !c.Nullable && !c.IsPrimaryKey {
		parts = append(parts, "NOT NULL")
	}
	if c.Unique {
		parts = append(parts, "UNIQUE")
	}
	if c.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}
	if c.HasDefault() {
		parts = append(parts, "DEFAULT "+c.Default)
	}

	return strings.TrimRight(strings.Join(parts, " "), " ")
}

// ForeignKeys renders one ALTER TABLE ADD CONSTRAINT statement per foreign
// key across all entities, in table order.
func ForeignKeys(tables []*schema.TableSchema) string {
	var b strings.Builder
	for _, t := range tables {
		for _, fk := range t.SortedForeignKeys() {
			name := fkConstraintName(t.Name, fk.ColumnName)
			fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE %s;\n",
				t.Name, name, fk.ColumnName, fk.ReferencedTable, fk.ReferencedColumn, fk.OnDelete)
		}
	}
	return b.String()
}

func fkConstraintName(table, column string) string {
	return "fk_" + table + "_" + column
}

// Indexes renders one CREATE [UNIQUE] INDEX statement per index across all
// entities, in table order.
func Indexes(tables []*schema.TableSchema) string {
	var b strings.Builder
	for _, t := range tables {
		for _, idx := range t.SortedIndexes() {
			unique := ""
			if idx.Unique {
				unique = "UNIQUE "
			}
			fmt.Fprintf(&b, "CREATE %sINDEX %s ON %s (%s);\n", unique, idx.Name, t.Name, strings.Join(idx.Columns, ", "))
		}
	}
	return b.String()
}

// UUIDSetup renders the extension/function installation SQL for the given
// UUID policy and dialect. MariaDB needs no setup (uses the builtin
// UUID() function inline), so it returns "" and the caller skips the file.
func UUIDSetup(uuid descriptor.UUIDVersion, dialect typemap.Dialect) string {
	if dialect == typemap.MariaDB {
		return ""
	}

	if uuid == descriptor.UUIDV7 {
		return pgUUIDv7Setup
	}
	return "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\" SCHEMA public;\n"
}

const pgUUIDv7Setup = `CREATE EXTENSION IF NOT EXISTS pgcrypto SCHEMA public;

CREATE OR REPLACE FUNCTION public.uuid_generate_v7()
RETURNS uuid
AS $$
DECLARE
    unix_ts_ms bytea;
    rand_bytes bytea;
    result uuid;
BEGIN
    unix_ts_ms := substring(int8send(floor(extract(epoch FROM clock_timestamp()) * 1000)::bigint) FROM 3 FOR 6);
    rand_bytes := public.gen_random_bytes(10);
    rand_bytes := set_byte(rand_bytes, 0, (get_byte(rand_bytes, 0) & 15) | 112);
    rand_bytes := set_byte(rand_bytes, 2, (get_byte(rand_bytes, 2) & 63) | 128);
    result := encode(unix_ts_ms || rand_bytes, 'hex')::uuid;
    RETURN result;
END;
$$ LANGUAGE plpgsql VOLATILE;
`
