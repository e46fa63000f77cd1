package diff

import (
	"strings"
	"testing"

	"github.com/entgen/migrator/pkg/schema"
)

func TestDiff_NoChangesReturnsEmpty(t *testing.T) {
	tbl := &schema.TableSchema{
		Name:    "sample",
		Columns: []schema.ColumnSchema{{Name: "id", Type: "BIGSERIAL", IsPrimaryKey: true}},
	}
	if got := Diff("sample", tbl, tbl); got != "" {
		t.Fatalf("expected empty diff, got %q", got)
	}
}

func TestDiff_AddedColumn(t *testing.T) {
	oldT := &schema.TableSchema{Name: "sample", Columns: []schema.ColumnSchema{{Name: "id", Type: "BIGSERIAL", IsPrimaryKey: true}}}
	newT := &schema.TableSchema{Name: "sample", Columns: []schema.ColumnSchema{
		{Name: "id", Type: "BIGSERIAL", IsPrimaryKey: true},
		{Name: "name", Type: "VARCHAR(255)", Nullable: false},
	}}

	got := Diff("sample", oldT, newT)
	want := "ALTER TABLE sample ADD COLUMN name VARCHAR(255) NOT NULL;"
	if !strings.Contains(got, want) {
		t.Fatalf("want substring %q, got %q", want, got)
	}
}

func TestDiff_RemovedColumnWarnsInsteadOfDropping(t *testing.T) {
	oldT := &schema.TableSchema{Name: "sample", Columns: []schema.ColumnSchema{
		{Name: "id", Type: "BIGSERIAL", IsPrimaryKey: true},
		{Name: "legacy", Type: "VARCHAR(255)"},
	}}
	newT := &schema.TableSchema{Name: "sample", Columns: []schema.ColumnSchema{{Name: "id", Type: "BIGSERIAL", IsPrimaryKey: true}}}

	got := Diff("sample", oldT, newT)
	if !strings.Contains(got, "-- WARNING: Column 'legacy' was removed from entity") {
		t.Fatalf("expected removal warning, got %q", got)
	}
	if !strings.Contains(got, "-- Consider: ALTER TABLE sample DROP COLUMN legacy;") {
		t.Fatalf("expected removal suggestion, got %q", got)
	}
}

func TestDiff_ModifiedColumnTypeThenNullThenUnique(t *testing.T) {
	oldT := &schema.TableSchema{Name: "sample", Columns: []schema.ColumnSchema{
		{Name: "score", Type: "INTEGER", Nullable: true, Unique: false},
	}}
	newT := &schema.TableSchema{Name: "sample", Columns: []schema.ColumnSchema{
		{Name: "score", Type: "BIGINT", Nullable: false, Unique: true},
	}}

	got := Diff("sample", oldT, newT)
	typeIdx := strings.Index(got, "ALTER COLUMN score TYPE BIGINT")
	nullIdx := strings.Index(got, "SET NOT NULL")
	uniqueIdx := strings.Index(got, "ADD CONSTRAINT uq_sample_score UNIQUE")
	if typeIdx < 0 || nullIdx < 0 || uniqueIdx < 0 {
		t.Fatalf("expected all three modifications, got %q", got)
	}
	if !(typeIdx < nullIdx && nullIdx < uniqueIdx) {
		t.Fatalf("expected type, then null, then unique order, got %q", got)
	}
}

func TestDiff_IndexAddedAndRemoved(t *testing.T) {
	oldT := &schema.TableSchema{Name: "sample", Indexes: []schema.IndexSchema{{Name: "idx_old", Columns: []string{"a"}}}}
	newT := &schema.TableSchema{Name: "sample", Indexes: []schema.IndexSchema{{Name: "idx_new", Columns: []string{"b"}}}}

	got := Diff("sample", oldT, newT)
	if !strings.Contains(got, "CREATE INDEX idx_new ON sample (b);") {
		t.Fatalf("expected new index creation, got %q", got)
	}
	if !strings.Contains(got, "DROP INDEX IF EXISTS idx_old;") {
		t.Fatalf("expected old index drop, got %q", got)
	}
}

func TestDiff_ForeignKeyModified(t *testing.T) {
	oldT := &schema.TableSchema{Name: "order", ForeignKeys: []schema.ForeignKeySchema{
		{ColumnName: "account_id", ReferencedTable: "account", ReferencedColumn: "id", OnDelete: schema.OnDeleteSetNull},
	}}
	newT := &schema.TableSchema{Name: "order", ForeignKeys: []schema.ForeignKeySchema{
		{ColumnName: "account_id", ReferencedTable: "account", ReferencedColumn: "id", OnDelete: schema.OnDeleteCascade},
	}}

	got := Diff("order", oldT, newT)
	if !strings.Contains(got, "DROP CONSTRAINT fk_order_account_id;") {
		t.Fatalf("expected drop before re-add, got %q", got)
	}
	if !strings.Contains(got, "ON DELETE CASCADE;") {
		t.Fatalf("expected re-add with new action, got %q", got)
	}
}

func TestDiff_NormalizeIgnoresTypeCase(t *testing.T) {
	oldT := &schema.TableSchema{Name: "sample", Columns: []schema.ColumnSchema{{Name: "id", Type: "varchar(255)"}}}
	newT := &schema.TableSchema{Name: "sample", Columns: []schema.ColumnSchema{{Name: "id", Type: "VARCHAR(255)"}}}
	if got := Diff("sample", oldT, newT); got != "" {
		t.Fatalf("expected case-insensitive type match to produce no diff, got %q", got)
	}
}
