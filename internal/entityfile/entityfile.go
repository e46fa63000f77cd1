// Package entityfile is a concrete EntityDiscovery collaborator for
// cmd/entmigrate: it reads a JSON document describing a set of entities
// and populates internal/descriptor values from it. The core generator
// treats entity discovery as an external collaborator (spec section 1);
// this package is one way to satisfy that collaborator for a standalone
// CLI, not part of the core pipeline itself.
package entityfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/entgen/migrator/internal/descriptor"
	"github.com/entgen/migrator/internal/generrors"
)

type jsonField struct {
	Name       string      `json:"name"`
	Kind       string      `json:"kind"`
	FieldType  string      `json:"fieldType,omitempty"`
	Column     string      `json:"column,omitempty"`
	Nullable   bool        `json:"nullable,omitempty"`
	Unique     bool        `json:"unique,omitempty"`
	Default    string      `json:"default,omitempty"`
	Enum       bool        `json:"enum,omitempty"`
	Length     *int        `json:"length,omitempty"`
	Precision  *int        `json:"precision,omitempty"`
	Scale      *int        `json:"scale,omitempty"`
	Override   string      `json:"columnDefinitionOverride,omitempty"`
	Generated  string      `json:"generated,omitempty"`
	Target     string      `json:"target,omitempty"`
	JoinColumn string      `json:"joinColumn,omitempty"`
	ToOneNull  *bool       `json:"toOneNullable,omitempty"`
	Inner      []jsonField `json:"inner,omitempty"`
}

type jsonIndex struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
}

type jsonEntity struct {
	Name    string      `json:"name"`
	Table   string      `json:"table,omitempty"`
	Schema  string      `json:"schema,omitempty"`
	Package string      `json:"package,omitempty"`
	Fields  []jsonField `json:"fields"`
	Indexes []jsonIndex `json:"indexes,omitempty"`
}

// Load reads path as a JSON array of entity definitions and returns the
// resolved descriptor.Entity values, with ToOne relations' TargetEntity
// pointers wired up by name.
func Load(path string) ([]*descriptor.Entity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &generrors.EntityDiscoveryError{Err: err}
	}

	var jsonEntities []jsonEntity
	if err := json.Unmarshal(raw, &jsonEntities); err != nil {
		return nil, &generrors.EntityDiscoveryError{Err: fmt.Errorf("parsing %s: %w", path, err)}
	}

	// pendingToOne records (entity, field index) -> target entity name
	// rather than a *descriptor.Field: e.Fields keeps growing via append as
	// the loop below builds it, and append is free to reallocate the
	// backing array, which would leave an already-taken field pointer
	// dangling on a stale copy. Indexing e.Fields fresh after every
	// entity's fields are fully built avoids that.
	type pendingRef struct {
		entity *descriptor.Entity
		index  int
		target string
	}

	entities := make([]*descriptor.Entity, 0, len(jsonEntities))
	byName := map[string]*descriptor.Entity{}
	var pendingToOne []pendingRef

	for _, je := range jsonEntities {
		e := &descriptor.Entity{
			Name:           je.Name,
			TableOverride:  je.Table,
			SchemaOverride: je.Schema,
			PackagePath:    je.Package,
		}
		for _, ji := range je.Indexes {
			e.ExplicitIndexes = append(e.ExplicitIndexes, descriptor.IndexDecl{Name: ji.Name, Columns: ji.Columns, Unique: ji.Unique})
		}
		for _, jf := range je.Fields {
			f, target := convertField(jf)
			e.Fields = append(e.Fields, f)
			if target != "" {
				pendingToOne = append(pendingToOne, pendingRef{entity: e, index: len(e.Fields) - 1, target: target})
			}
		}
		entities = append(entities, e)
		byName[e.Name] = e
	}

	for _, ref := range pendingToOne {
		target, ok := byName[ref.target]
		if !ok {
			field := ref.entity.Fields[ref.index]
			return nil, &generrors.EntityDiscoveryError{Err: fmt.Errorf("to-one field %q references unknown entity %q", field.GoName, ref.target)}
		}
		ref.entity.Fields[ref.index].ToOne.TargetEntity = target
	}

	return entities, nil
}

func convertField(jf jsonField) (descriptor.Field, string) {
	f := descriptor.Field{
		GoName:    jf.Name,
		FieldType: jf.FieldType,
		Column:    jf.Column,
		Nullable:  jf.Nullable,
		Unique:    jf.Unique,
		Default:   jf.Default,
		IsEnum:    jf.Enum,
		Meta: descriptor.ColumnMeta{
			Length:                   jf.Length,
			Precision:                jf.Precision,
			Scale:                    jf.Scale,
			ColumnDefinitionOverride: jf.Override,
		},
	}

	switch jf.Kind {
	case "id":
		f.Kind = descriptor.KindID
		f.GeneratedValue = descriptor.GeneratedValueStrategy(jf.Generated)
		return f, ""
	case "toOne":
		f.Kind = descriptor.KindToOne
		f.ToOne = descriptor.ToOneMeta{JoinColumn: jf.JoinColumn, Nullable: jf.ToOneNull}
		return f, jf.Target
	case "toMany":
		f.Kind = descriptor.KindToMany
		return f, ""
	case "embedded":
		f.Kind = descriptor.KindEmbedded
		for _, inner := range jf.Inner {
			innerField, _ := convertField(inner)
			f.Embedded.InnerFields = append(f.Embedded.InnerFields, innerField)
		}
		return f, ""
	default:
		f.Kind = descriptor.KindPlain
		return f, ""
	}
}
