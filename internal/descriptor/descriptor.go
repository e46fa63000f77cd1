// Package descriptor defines the abstract, read-only view of a persistent
// class that EntityProjector consumes. It is deliberately not tied to Go's
// reflect package: per the design notes, the source system projects from
// runtime annotations, and the Go port expresses the same contract as a
// plain value a caller populates from whatever metadata source it has
// (struct tags, a code-gen pass, a config file) -- no reflection machinery
// lives in the core.
package descriptor

// GeneratedValueStrategy is the PK generation policy of an Id field.
type GeneratedValueStrategy string

const (
	GeneratedNone     GeneratedValueStrategy = ""
	GeneratedUUID     GeneratedValueStrategy = "UUID"
	GeneratedIdentity GeneratedValueStrategy = "IDENTITY"
)

// UUIDVersion selects which UUID generation function a UUID primary key
// defaults to.
type UUIDVersion string

const (
	UUIDV4 UUIDVersion = "V4"
	UUIDV7 UUIDVersion = "V7"
)

// FieldKind discriminates the five shapes a persistent field can take.
// Exactly one of the accompanying metadata structs on Field is meaningful
// for a given Kind; callers populating a Field only need to fill in the
// one that matches.
type FieldKind int

const (
	// KindPlain is an ordinary scalar column.
	KindPlain FieldKind = iota
	// KindID is the primary key field.
	KindID
	// KindToOne is a ManyToOne/OneToOne relation, synthesized as an FK column.
	KindToOne
	// KindToMany is a OneToMany/ManyToMany relation; skipped by the projector.
	KindToMany
	// KindEmbedded is a value-object whose own fields flatten into columns.
	KindEmbedded
)

// Field is one persistent field of an entity, in descriptor declaration
// order (first-seen, inherited fields included -- ordering is the caller's
// responsibility to establish before handing the descriptor to the
// projector).
type Field struct {
	// GoName is the field's identifier in the source type, used only to
	// derive a default column name (snake_case) when no override is given.
	GoName string
	Kind   FieldKind

	// FieldType is the logical type used by TypeMapper for KindPlain,
	// KindID (when not UUID/IDENTITY) and KindEmbedded's inner fields.
	FieldType typemapFieldType
	Meta      ColumnMeta

	// Column overrides the physical column name; blank means
	// snake_case(GoName).
	Column string
	// Nullable/Unique mirror the @Column annotation for KindPlain and
	// KindEmbedded inner fields.
	Nullable bool
	Unique   bool
	// Default is an explicit DEFAULT expression already present on the
	// field; when set, the projector never injects a created_at/updated_at
	// default over it.
	Default string
	// IsEnum marks a plain field whose logical type should map to the
	// enum column policy regardless of FieldType.
	IsEnum bool

	// --- KindID only ---
	GeneratedValue GeneratedValueStrategy

	// --- KindToOne only ---
	ToOne ToOneMeta

	// --- KindEmbedded only ---
	Embedded EmbeddedMeta
}

// ColumnMeta is re-exported here (rather than imported from typemap
// directly) so descriptor has no dependency on the typemap package; project
// translates between the two.
type ColumnMeta struct {
	Length                   *int
	Precision                *int
	Scale                    *int
	ColumnDefinitionOverride string
}

// typemapFieldType avoids an import cycle: project.go converts this string
// to typemap.FieldType.
type typemapFieldType = string

// ToOneMeta describes a ManyToOne/OneToOne relation field.
type ToOneMeta struct {
	// TargetEntity is the descriptor of the referenced entity -- the
	// projector only needs its table name and PK type, so cyclic
	// references between two entities are benign (design notes, section 9).
	TargetEntity *Entity
	// JoinColumn overrides the synthesized FK column name; blank means
	// snake(FieldName)+"_id".
	JoinColumn string
	// Nullable controls both the column's nullability and, by the
	// projector's policy, the FK's ON DELETE action (nullable -> SET NULL,
	// not nullable -> CASCADE). Defaults to true when unset by the caller.
	Nullable *bool
}

// EmbeddedMeta describes an @Embedded value-object field.
type EmbeddedMeta struct {
	// InnerFields are the embedded type's own persistent fields, in
	// declaration order. Each inner field's Column (if set) is treated as
	// an AttributeOverride; otherwise the column name is
	// snake(outerField)+"_"+snake(innerField).
	InnerFields []Field
}

// Entity is the full descriptor for one persistent class.
type Entity struct {
	// Name is the entity's simple name, used to derive the default table
	// name and for the "-- Entity: <name>" emitter header comment.
	Name string
	// TableOverride is Table.name; blank means snake_case(Name).
	TableOverride string
	// SchemaOverride is Table.schema, lowercased when non-blank.
	SchemaOverride string
	// PackagePath is used to derive the partition folder (its last
	// segment) when SchemaOverride is blank.
	PackagePath string
	// ExplicitIndexes are Table.indexes declarations, applied before the
	// projector's heuristic indexes.
	ExplicitIndexes []IndexDecl
	// Fields are the entity's persistent fields, transient/static fields
	// already excluded by whatever populates this descriptor.
	Fields []Field
}

// IndexDecl is an explicit, entity-level index declaration.
type IndexDecl struct {
	Name    string
	Columns []string
	Unique  bool
}

// TableName resolves the entity's physical table name.
func (e *Entity) TableName() string {
	if e.TableOverride != "" {
		return e.TableOverride
	}
	return SnakeCase(e.Name)
}

// IDField returns the entity's KindID field, or nil if it has none
// (composite/absent primary keys are out of scope for projection, per
// spec section 3).
func (e *Entity) IDField() *Field {
	for i := range e.Fields {
		if e.Fields[i].Kind == KindID {
			return &e.Fields[i]
		}
	}
	return nil
}

// ColumnName resolves a field's physical column name.
func (f *Field) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return SnakeCase(f.GoName)
}

// SnakeCase converts a PascalCase/camelCase Go identifier into a snake_case
// SQL identifier, e.g. "CreatedAt" -> "created_at", "URLPath" -> "url_path".
func SnakeCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	var out []rune
	for i, r := range runes {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper {
			if i > 0 {
				prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
				nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				if prevLower || nextLower {
					out = append(out, '_')
				}
			}
			out = append(out, r-'A'+'a')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}
