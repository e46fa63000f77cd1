// Package project implements EntityProjector: turning an entity descriptor
// into a normalized TableSchema, the way the teacher's column/index/foreign
// key builders assemble a TableDefinition, except driven by a declarative
// descriptor instead of fluent builder calls.
package project

import (
	"fmt"

	"github.com/entgen/migrator/internal/descriptor"
	"github.com/entgen/migrator/internal/typemap"
	"github.com/entgen/migrator/pkg/schema"
)

// heuristicIndexColumns are the physical column names that earn an
// automatic single-column index when not already covered.
var heuristicIndexColumns = map[string]bool{
	"email":    true,
	"username": true,
	"subject":  true,
	"code":     true,
}

// Project derives entity's TableSchema under the given dialect and UUID
// generation policy. Relation fields are resolved against their
// TargetEntity descriptor inline; cyclic to-one references between two
// entities are safe, since only the target's PK type is ever consulted.
func Project(entity *descriptor.Entity, dialect typemap.Dialect, uuid descriptor.UUIDVersion) (*schema.TableSchema, error) {
	tbl := &schema.TableSchema{Name: entity.TableName()}

	for i := range entity.Fields {
		f := &entity.Fields[i]
		switch f.Kind {
		case descriptor.KindID:
			tbl.Columns = append(tbl.Columns, projectID(f, dialect, uuid))
		case descriptor.KindToOne:
			col, fk, err := projectToOne(f, dialect, uuid)
			if err != nil {
				return nil, err
			}
			tbl.Columns = append(tbl.Columns, col)
			tbl.ForeignKeys = append(tbl.ForeignKeys, fk)
		case descriptor.KindToMany:
			// join tables are out of scope; skipped entirely.
		case descriptor.KindEmbedded:
			tbl.Columns = append(tbl.Columns, projectEmbedded(f, dialect)...)
		case descriptor.KindPlain:
			tbl.Columns = append(tbl.Columns, projectPlain(f, dialect))
		default:
			return nil, fmt.Errorf("project: entity %q field %q has unknown field kind %d", entity.Name, f.GoName, f.Kind)
		}
	}

	tbl.Indexes = buildIndexes(entity, tbl)
	return tbl, nil
}

func projectID(f *descriptor.Field, dialect typemap.Dialect, uuid descriptor.UUIDVersion) schema.ColumnSchema {
	col := schema.ColumnSchema{
		Name:         f.ColumnName(),
		Nullable:     false,
		IsPrimaryKey: true,
	}

	switch f.GeneratedValue {
	case descriptor.GeneratedUUID:
		if dialect == typemap.MariaDB {
			col.Type = "CHAR(36)"
			col.Default = "(UUID())"
			return col
		}
		col.Type = "UUID"
		if uuid == descriptor.UUIDV7 {
			col.Default = "public.uuid_generate_v7()"
		} else {
			col.Default = "public.uuid_generate_v4()"
		}
		return col
	case descriptor.GeneratedIdentity:
		if dialect == typemap.MariaDB {
			col.Type = "BIGINT"
			col.AutoIncrement = true
			return col
		}
		col.Type = "BIGSERIAL"
		return col
	default:
		col.Type = typemap.MapType(typemap.FieldType(f.FieldType), toTypemapMeta(f.Meta, f.IsEnum), dialect)
		return col
	}
}

// idColumnType is the projector's id-type subroutine: given a target
// entity's descriptor, it resolves the SQL type its primary key column
// would carry, without building the rest of the target's TableSchema.
func idColumnType(target *descriptor.Entity, dialect typemap.Dialect, uuid descriptor.UUIDVersion) (string, error) {
	id := target.IDField()
	if id == nil {
		return "", fmt.Errorf("project: to-one relation target %q has no Id field", target.Name)
	}
	return projectID(id, dialect, uuid).Type, nil
}

func projectToOne(f *descriptor.Field, dialect typemap.Dialect, uuid descriptor.UUIDVersion) (schema.ColumnSchema, schema.ForeignKeySchema, error) {
	if f.ToOne.TargetEntity == nil {
		return schema.ColumnSchema{}, schema.ForeignKeySchema{}, fmt.Errorf("project: to-one field %q has no TargetEntity", f.GoName)
	}

	colType, err := idColumnType(f.ToOne.TargetEntity, dialect, uuid)
	if err != nil {
		return schema.ColumnSchema{}, schema.ForeignKeySchema{}, err
	}

	name := f.ToOne.JoinColumn
	if name == "" {
		name = descriptor.SnakeCase(f.GoName) + "_id"
	}

	nullable := true
	if f.ToOne.Nullable != nil {
		nullable = *f.ToOne.Nullable
	}

	onDelete := schema.OnDeleteCascade
	if nullable {
		onDelete = schema.OnDeleteSetNull
	}

	col := schema.ColumnSchema{
		Name:     name,
		Type:     colType,
		Nullable: nullable,
	}

	fk := schema.ForeignKeySchema{
		ColumnName:       name,
		ReferencedTable:  f.ToOne.TargetEntity.TableName(),
		ReferencedColumn: "id",
		OnDelete:         onDelete,
	}

	return col, fk, nil
}

func projectEmbedded(f *descriptor.Field, dialect typemap.Dialect) []schema.ColumnSchema {
	cols := make([]schema.ColumnSchema, 0, len(f.Embedded.InnerFields))
	outerSnake := descriptor.SnakeCase(f.GoName)
	for i := range f.Embedded.InnerFields {
		inner := &f.Embedded.InnerFields[i]
		name := inner.Column
		if name == "" {
			name = outerSnake + "_" + descriptor.SnakeCase(inner.GoName)
		}
		cols = append(cols, schema.ColumnSchema{
			Name:     name,
			Type:     typemap.MapType(typemap.FieldType(inner.FieldType), toTypemapMeta(inner.Meta, inner.IsEnum), dialect),
			Nullable: inner.Nullable,
			Unique:   inner.Unique,
			Default:  inner.Default,
		})
	}
	return cols
}

func projectPlain(f *descriptor.Field, dialect typemap.Dialect) schema.ColumnSchema {
	name := f.ColumnName()
	col := schema.ColumnSchema{
		Name:     name,
		Type:     typemap.MapType(typemap.FieldType(f.FieldType), toTypemapMeta(f.Meta, f.IsEnum), dialect),
		Nullable: f.Nullable,
		Unique:   f.Unique,
		Default:  f.Default,
	}
	if col.Default == "" && (name == "created_at" || name == "updated_at") {
		col.Default = "CURRENT_TIMESTAMP"
	}
	return col
}

// buildIndexes assembles the index list: explicit Table.indexes first,
// then a heuristic index per uncovered to-one FK column, then a heuristic
// index per uncovered email/username/subject/code column, de-duplicated
// by (name, columns).
func buildIndexes(entity *descriptor.Entity, tbl *schema.TableSchema) []schema.IndexSchema {
	var indexes []schema.IndexSchema
	seen := map[string]bool{}
	covered := map[string]bool{}

	addIndex := func(idx schema.IndexSchema) {
		key := idx.Name + "|" + joinCols(idx.Columns)
		if seen[key] {
			return
		}
		seen[key] = true
		indexes = append(indexes, idx)
		for _, c := range idx.Columns {
			covered[c] = true
		}
	}

	for _, decl := range entity.ExplicitIndexes {
		addIndex(schema.IndexSchema{Name: decl.Name, Columns: decl.Columns, Unique: decl.Unique})
	}

	for _, fk := range tbl.ForeignKeys {
		if covered[fk.ColumnName] {
			continue
		}
		addIndex(schema.IndexSchema{
			Name:    "idx_" + tbl.Name + "_" + fk.ColumnName,
			Columns: []string{fk.ColumnName},
		})
	}

	for _, col := range tbl.Columns {
		if covered[col.Name] || !heuristicIndexColumns[col.Name] {
			continue
		}
		addIndex(schema.IndexSchema{
			Name:    "idx_" + tbl.Name + "_" + col.Name,
			Columns: []string{col.Name},
		})
	}

	return indexes
}

func joinCols(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ","
		}
		out += c
	}
	return out
}

func toTypemapMeta(m descriptor.ColumnMeta, isEnum bool) typemap.ColumnMeta {
	return typemap.ColumnMeta{
		Length:                   m.Length,
		Precision:                m.Precision,
		Scale:                    m.Scale,
		ColumnDefinitionOverride: m.ColumnDefinitionOverride,
		IsEnum:                   isEnum,
	}
}
