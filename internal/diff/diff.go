// Package diff implements MigrationDiffer: comparing an old and a new
// TableSchema and producing the ALTER-script body text that transforms one
// into the other, following the normalize-then-compare policy of spec
// section 4.5.
package diff

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/entgen/migrator/pkg/schema"
)

// Diff compares oldSchema to newSchema and returns the ALTER body text, or
// "" if nothing changed. Both schemas are normalized before comparison;
// neither argument is mutated.
func Diff(tableName string, oldSchema, newSchema *schema.TableSchema) string {
	oldN := normalize(oldSchema)
	newN := normalize(newSchema)

	var sections []string
	if cols := diffColumns(tableName, oldN, newN); cols != "" {
		sections = append(sections, "-- Column changes\n"+cols)
	}
	if idx := diffIndexes(tableName, oldN, newN); idx != "" {
		sections = append(sections, "-- Index changes\n"+idx)
	}
	if fks := diffForeignKeys(tableName, oldN, newN); fks != "" {
		sections = append(sections, "-- Foreign key changes\n"+fks)
	}

	if len(sections) == 0 {
		return ""
	}
	return strings.Join(sections, "\n")
}

// normalize returns a copy of t with whitespace trimmed, types uppercased
// with internal whitespace collapsed, NOW() case-folded, and columns,
// indexes and foreign keys sorted into the canonical comparison order.
func normalize(t *schema.TableSchema) *schema.TableSchema {
	out := &schema.TableSchema{Name: t.Name}

	for _, c := range t.SortedColumns() {
		c.Name = strings.TrimSpace(c.Name)
		c.Type = collapseWhitespace(strings.ToUpper(strings.TrimSpace(c.Type)))
		c.Default = canonicalizeDefault(strings.TrimSpace(c.Default))
		out.Columns = append(out.Columns, c)
	}
	out.Indexes = t.SortedIndexes()
	out.ForeignKeys = t.SortedForeignKeys()
	return out
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

func canonicalizeDefault(s string) string {
	if strings.EqualFold(s, "NOW()") {
		return "NOW()"
	}
	return s
}

func diffColumns(tableName string, oldT, newT *schema.TableSchema) string {
	var b strings.Builder

	oldByName := columnIndex(oldT.Columns)
	newByName := columnIndex(newT.Columns)

	for _, nc := range newT.Columns {
		if _, existed := oldByName[nc.Name]; !existed {
			b.WriteString(renderAddColumn(tableName, nc))
		}
	}

	for _, nc := range newT.Columns {
		oc, existed := oldByName[nc.Name]
		if !existed || columnsEqual(oc, nc) {
			continue
		}
		b.WriteString(renderModifyColumn(tableName, oc, nc))
	}

	for _, oc := range oldT.Columns {
		if oc.IsPrimaryKey {
			continue
		}
		if _, stillPresent := newByName[oc.Name]; stillPresent {
			continue
		}
		fmt.Fprintf(&b, "-- WARNING: Column '%s' was removed from entity\n", oc.Name)
		fmt.Fprintf(&b, "-- Consider: ALTER TABLE %s DROP COLUMN %s;\n", tableName, oc.Name)
	}

	return b.String()
}

func columnIndex(cols []schema.ColumnSchema) map[string]schema.ColumnSchema {
	m := make(map[string]schema.ColumnSchema, len(cols))
	for _, c := range cols {
		m[c.Name] = c
	}
	return m
}

func columnsEqual(a, b schema.ColumnSchema) bool {
	return a.Type == b.Type && a.Nullable == b.Nullable && a.Unique == b.Unique && a.Default == b.Default
}

func renderAddColumn(tableName string, c schema.ColumnSchema) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tableName, c.Name, c.Type))
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if c.Unique {
		parts = append(parts, "UNIQUE")
	}
	if c.HasDefault() {
		parts = append(parts, "DEFAULT "+c.Default)
	}
	return strings.Join(parts, " ") + ";\n"
}

func renderModifyColumn(tableName string, oc, nc schema.ColumnSchema) string {
	var b strings.Builder
	if oc.Type != nc.Type {
		fmt.Fprintf(&b, "ALTER TABLE %s ALTER COLUMN %s TYPE %s;\n", tableName, nc.Name, nc.Type)
	}
	if oc.Nullable != nc.Nullable {
		if nc.Nullable {
			fmt.Fprintf(&b, "ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL;\n", tableName, nc.Name)
		} else {
			fmt.Fprintf(&b, "ALTER TABLE %s ALTER COLUMN %s SET NOT NULL;\n", tableName, nc.Name)
		}
	}
	if oc.Unique != nc.Unique {
		constraint := fmt.Sprintf("uq_%s_%s", tableName, nc.Name)
		if nc.Unique {
			fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s);\n", tableName, constraint, nc.Name)
		} else {
			fmt.Fprintf(&b, "ALTER TABLE %s DROP CONSTRAINT %s;\n", tableName, constraint)
		}
	}
	return b.String()
}

func diffIndexes(tableName string, oldT, newT *schema.TableSchema) string {
	var b strings.Builder

	oldByKey := indexKeyMap(oldT.Indexes)
	newByKey := indexKeyMap(newT.Indexes)

	for _, idx := range newT.Indexes {
		if _, existed := oldByKey[indexKey(idx)]; !existed {
			unique := ""
			if idx.Unique {
				unique = "UNIQUE "
			}
			fmt.Fprintf(&b, "CREATE %sINDEX %s ON %s (%s);\n", unique, idx.Name, tableName, strings.Join(idx.Columns, ", "))
		}
	}

	for _, idx := range oldT.Indexes {
		if _, stillPresent := newByKey[indexKey(idx)]; !stillPresent {
			fmt.Fprintf(&b, "DROP INDEX IF EXISTS %s;\n", idx.Name)
		}
	}

	return b.String()
}

func indexKey(idx schema.IndexSchema) string {
	return strings.Join(idx.Columns, ",")
}

func indexKeyMap(indexes []schema.IndexSchema) map[string]schema.IndexSchema {
	m := make(map[string]schema.IndexSchema, len(indexes))
	for _, idx := range indexes {
		m[indexKey(idx)] = idx
	}
	return m
}

func diffForeignKeys(tableName string, oldT, newT *schema.TableSchema) string {
	var b strings.Builder

	oldByCol := fkColumnMap(oldT.ForeignKeys)
	newByCol := fkColumnMap(newT.ForeignKeys)

	for _, fk := range newT.ForeignKeys {
		old, existed := oldByCol[fk.ColumnName]
		name := fmt.Sprintf("fk_%s_%s", tableName, fk.ColumnName)
		if !existed {
			fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE %s;\n",
				tableName, name, fk.ColumnName, fk.ReferencedTable, fk.ReferencedColumn, fk.OnDelete)
			continue
		}
		if old.ReferencedTable != fk.ReferencedTable || old.ReferencedColumn != fk.ReferencedColumn || old.OnDelete != fk.OnDelete {
			fmt.Fprintf(&b, "ALTER TABLE %s DROP CONSTRAINT %s;\n", tableName, name)
			fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE %s;\n",
				tableName, name, fk.ColumnName, fk.ReferencedTable, fk.ReferencedColumn, fk.OnDelete)
		}
	}

	for _, fk := range oldT.ForeignKeys {
		if _, stillPresent := newByCol[fk.ColumnName]; !stillPresent {
			name := fmt.Sprintf("fk_%s_%s", tableName, fk.ColumnName)
			fmt.Fprintf(&b, "ALTER TABLE %s DROP CONSTRAINT %s;\n", tableName, name)
		}
	}

	return b.String()
}

func fkColumnMap(fks []schema.ForeignKeySchema) map[string]schema.ForeignKeySchema {
	m := make(map[string]schema.ForeignKeySchema, len(fks))
	for _, fk := range fks {
		m[fk.ColumnName] = fk
	}
	return m
}
