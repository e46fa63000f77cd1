// Package schema holds the pure data model shared by every stage of the
// migration pipeline: projection from entity descriptors, extraction from
// previously emitted SQL, diffing, and rendering.
package schema

import "sort"

// ColumnSchema describes one physical column of a table.
type ColumnSchema struct {
	Name          string
	Type          string
	Nullable      bool
	Unique        bool
	IsPrimaryKey  bool
	AutoIncrement bool   // MariaDB identity columns only
	Default       string // raw SQL fragment emitted after DEFAULT, empty if none
}

// HasDefault reports whether the column carries a DEFAULT clause.
func (c ColumnSchema) HasDefault() bool {
	return c.Default != ""
}

// IndexSchema describes one index declared on a table.
type IndexSchema struct {
	Name    string
	Columns []string // ordered, non-empty
	Unique  bool
}

// ForeignKeySchema describes one foreign key constraint.
type ForeignKeySchema struct {
	ColumnName       string
	ReferencedTable  string
	ReferencedColumn string
	OnDelete         string // CASCADE | SET NULL | RESTRICT | NO ACTION
}

const (
	OnDeleteCascade    = "CASCADE"
	OnDeleteSetNull    = "SET NULL"
	OnDeleteRestrict   = "RESTRICT"
	OnDeleteNoAction   = "NO ACTION"
)

// TableSchema is the normalized shape of one table: its columns in
// insertion order plus its indexes and foreign keys. Instances are
// immutable once built by a projector or extractor.
type TableSchema struct {
	Name        string
	Columns     []ColumnSchema
	Indexes     []IndexSchema
	ForeignKeys []ForeignKeySchema
}

// Column returns the column with the given name, or nil if absent.
func (t *TableSchema) Column(name string) *ColumnSchema {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// PrimaryKeyColumn returns the sole column marked IsPrimaryKey, or nil if
// there isn't exactly one (composite or absent primary keys both return
// nil, per the extractor's compound-PK tolerance).
func (t *TableSchema) PrimaryKeyColumn() *ColumnSchema {
	var found *ColumnSchema
	count := 0
	for i := range t.Columns {
		if t.Columns[i].IsPrimaryKey {
			found = &t.Columns[i]
			count++
		}
	}
	if count != 1 {
		return nil
	}
	return found
}

// SortedColumns returns a copy of Columns sorted lexicographically by name,
// the order MigrationDiffer normalizes on before comparing two schemas.
func (t *TableSchema) SortedColumns() []ColumnSchema {
	out := make([]ColumnSchema, len(t.Columns))
	copy(out, t.Columns)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SortedIndexes returns a copy of Indexes sorted by (column-count,
// joined-columns, name), the diff-normalization order from spec section 4.5.
func (t *TableSchema) SortedIndexes() []IndexSchema {
	out := make([]IndexSchema, len(t.Indexes))
	copy(out, t.Indexes)
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Columns) != len(out[j].Columns) {
			return len(out[i].Columns) < len(out[j].Columns)
		}
		ji, jj := joinColumns(out[i].Columns), joinColumns(out[j].Columns)
		if ji != jj {
			return ji < jj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SortedForeignKeys returns a copy of ForeignKeys sorted by column name.
func (t *TableSchema) SortedForeignKeys() []ForeignKeySchema {
	out := make([]ForeignKeySchema, len(t.ForeignKeys))
	copy(out, t.ForeignKeys)
	sort.Slice(out, func(i, j int) bool { return out[i].ColumnName < out[j].ColumnName })
	return out
}

func joinColumns(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ","
		}
		out += c
	}
	return out
}
