package schema

import "testing"

func TestPrimaryKeyColumn_SingleWins(t *testing.T) {
	tbl := &TableSchema{Columns: []ColumnSchema{
		{Name: "id", IsPrimaryKey: true},
		{Name: "email"},
	}}

	pk := tbl.PrimaryKeyColumn()
	if pk == nil || pk.Name != "id" {
		t.Fatalf("expected id as primary key, got %+v", pk)
	}
}

func TestPrimaryKeyColumn_CompositeReturnsNil(t *testing.T) {
	tbl := &TableSchema{Columns: []ColumnSchema{
		{Name: "a", IsPrimaryKey: true},
		{Name: "b", IsPrimaryKey: true},
	}}

	if pk := tbl.PrimaryKeyColumn(); pk != nil {
		t.Fatalf("expected nil for composite primary key, got %+v", pk)
	}
}

func TestSortedColumns(t *testing.T) {
	tbl := &TableSchema{Columns: []ColumnSchema{
		{Name: "zeta"},
		{Name: "alpha"},
		{Name: "mid"},
	}}

	sorted := tbl.SortedColumns()
	want := []string{"alpha", "mid", "zeta"}
	for i, w := range want {
		if sorted[i].Name != w {
			t.Fatalf("index %d: want %s, got %s", i, w, sorted[i].Name)
		}
	}
	// original order untouched
	if tbl.Columns[0].Name != "zeta" {
		t.Fatal("SortedColumns must not mutate the receiver")
	}
}

func TestSortedIndexes_OrdersByColumnCountThenNames(t *testing.T) {
	tbl := &TableSchema{Indexes: []IndexSchema{
		{Name: "idx_b", Columns: []string{"b", "c"}},
		{Name: "idx_a", Columns: []string{"a"}},
		{Name: "idx_z", Columns: []string{"z"}},
	}}

	sorted := tbl.SortedIndexes()
	if sorted[0].Name != "idx_a" || sorted[1].Name != "idx_z" || sorted[2].Name != "idx_b" {
		t.Fatalf("unexpected order: %+v", sorted)
	}
}

func TestColumn_Lookup(t *testing.T) {
	tbl := &TableSchema{Columns: []ColumnSchema{{Name: "email"}}}
	if tbl.Column("email") == nil {
		t.Fatal("expected to find email column")
	}
	if tbl.Column("missing") != nil {
		t.Fatal("expected nil for missing column")
	}
}
