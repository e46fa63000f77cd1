package descriptor

import "testing"

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"CreatedAt":  "created_at",
		"ID":         "id",
		"URLPath":    "url_path",
		"email":      "email",
		"UserID":     "user_id",
		"":           "",
	}
	for in, want := range cases {
		if got := SnakeCase(in); got != want {
			t.Errorf("SnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEntity_TableName_DefaultsToSnakeCase(t *testing.T) {
	e := &Entity{Name: "OrderLine"}
	if got := e.TableName(); got != "order_line" {
		t.Fatalf("want order_line, got %s", got)
	}
}

func TestEntity_TableName_Override(t *testing.T) {
	e := &Entity{Name: "OrderLine", TableOverride: "ol"}
	if got := e.TableName(); got != "ol" {
		t.Fatalf("want ol, got %s", got)
	}
}

func TestEntity_IDField(t *testing.T) {
	e := &Entity{Fields: []Field{
		{GoName: "Name", Kind: KindPlain},
		{GoName: "ID", Kind: KindID},
	}}
	id := e.IDField()
	if id == nil || id.GoName != "ID" {
		t.Fatalf("expected ID field, got %+v", id)
	}
}

func TestEntity_IDField_AbsentReturnsNil(t *testing.T) {
	e := &Entity{Fields: []Field{{GoName: "Name", Kind: KindPlain}}}
	if id := e.IDField(); id != nil {
		t.Fatalf("expected nil, got %+v", id)
	}
}

func TestField_ColumnName_Override(t *testing.T) {
	f := &Field{GoName: "EmailAddress", Column: "email"}
	if got := f.ColumnName(); got != "email" {
		t.Fatalf("want email, got %s", got)
	}
}

func TestField_ColumnName_DefaultsToSnakeCase(t *testing.T) {
	f := &Field{GoName: "EmailAddress"}
	if got := f.ColumnName(); got != "email_address" {
		t.Fatalf("want email_address, got %s", got)
	}
}
