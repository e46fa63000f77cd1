package entityfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/entgen/migrator/internal/descriptor"
)

func writeJSON(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "entities.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_PlainAndIDFields(t *testing.T) {
	path := writeJSON(t, `[
		{
			"name": "Account",
			"fields": [
				{"name": "ID", "kind": "id", "fieldType": "UUID", "generated": "UUID"},
				{"name": "Email", "kind": "plain", "fieldType": "String", "unique": true}
			]
		}
	]`)

	entities, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(entities))
	}
	e := entities[0]
	if e.Name != "Account" {
		t.Fatalf("expected Account, got %s", e.Name)
	}
	if len(e.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(e.Fields))
	}
	if e.Fields[0].Kind != descriptor.KindID || e.Fields[0].GeneratedValue != descriptor.GeneratedUUID {
		t.Fatalf("expected UUID-generated id field, got %+v", e.Fields[0])
	}
	if !e.Fields[1].Unique {
		t.Fatal("expected email field to be unique")
	}
}

func TestLoad_ToOneResolvesTargetEntity(t *testing.T) {
	path := writeJSON(t, `[
		{
			"name": "Account",
			"fields": [{"name": "ID", "kind": "id", "fieldType": "UUID", "generated": "UUID"}]
		},
		{
			"name": "Order",
			"fields": [
				{"name": "ID", "kind": "id", "fieldType": "UUID", "generated": "UUID"},
				{"name": "Account", "kind": "toOne", "target": "Account"}
			]
		}
	]`)

	entities, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	var order *descriptor.Entity
	for _, e := range entities {
		if e.Name == "Order" {
			order = e
		}
	}
	if order == nil {
		t.Fatal("expected Order entity")
	}

	var toOne *descriptor.Field
	for i := range order.Fields {
		if order.Fields[i].Kind == descriptor.KindToOne {
			toOne = &order.Fields[i]
		}
	}
	if toOne == nil {
		t.Fatal("expected a to-one field")
	}
	if toOne.ToOne.TargetEntity == nil || toOne.ToOne.TargetEntity.Name != "Account" {
		t.Fatalf("expected target entity Account, got %+v", toOne.ToOne.TargetEntity)
	}
}

func TestLoad_ToOneInEarlyFieldPositionSurvivesSliceGrowth(t *testing.T) {
	// The to-one field sits first, followed by enough plain fields to
	// force e.Fields to reallocate its backing array at least once
	// (append growth: 1 -> 2 -> 4 -> 8 ...). Resolution must still land on
	// the entity's real field, not a stale pre-growth copy.
	path := writeJSON(t, `[
		{"name": "Account", "fields": [{"name": "ID", "kind": "id", "fieldType": "UUID", "generated": "UUID"}]},
		{
			"name": "Order",
			"fields": [
				{"name": "Account", "kind": "toOne", "target": "Account"},
				{"name": "Title", "kind": "plain", "fieldType": "String"},
				{"name": "Body", "kind": "plain", "fieldType": "String"},
				{"name": "Status", "kind": "plain", "fieldType": "String"},
				{"name": "Total", "kind": "plain", "fieldType": "String"},
				{"name": "Notes", "kind": "plain", "fieldType": "String"},
				{"name": "Tag", "kind": "plain", "fieldType": "String"},
				{"name": "Extra", "kind": "plain", "fieldType": "String"}
			]
		}
	]`)

	entities, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	var order *descriptor.Entity
	for _, e := range entities {
		if e.Name == "Order" {
			order = e
		}
	}
	if order == nil {
		t.Fatal("expected Order entity")
	}
	if order.Fields[0].Kind != descriptor.KindToOne {
		t.Fatalf("expected first field to be the to-one relation, got %+v", order.Fields[0])
	}
	if order.Fields[0].ToOne.TargetEntity == nil || order.Fields[0].ToOne.TargetEntity.Name != "Account" {
		t.Fatalf("expected to-one field's TargetEntity to resolve to Account, got %+v", order.Fields[0].ToOne.TargetEntity)
	}
}

func TestLoad_UnknownToOneTargetErrors(t *testing.T) {
	path := writeJSON(t, `[
		{
			"name": "Order",
			"fields": [{"name": "Account", "kind": "toOne", "target": "NoSuchEntity"}]
		}
	]`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unresolvable to-one target")
	}
}

func TestLoad_EmbeddedFlattensInnerFields(t *testing.T) {
	path := writeJSON(t, `[
		{
			"name": "Account",
			"fields": [
				{"name": "Address", "kind": "embedded", "inner": [
					{"name": "Street", "kind": "plain", "fieldType": "String"},
					{"name": "City", "kind": "plain", "fieldType": "String"}
				]}
			]
		}
	]`)

	entities, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	embedded := entities[0].Fields[0]
	if embedded.Kind != descriptor.KindEmbedded {
		t.Fatalf("expected embedded kind, got %v", embedded.Kind)
	}
	if len(embedded.Embedded.InnerFields) != 2 {
		t.Fatalf("expected 2 inner fields, got %d", len(embedded.Embedded.InnerFields))
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
