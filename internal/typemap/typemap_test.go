package typemap

import "testing"

func intp(i int) *int { return &i }

func TestMapType_OverrideWins(t *testing.T) {
	got := MapType(TypeString, ColumnMeta{ColumnDefinitionOverride: "TEXT"}, Postgres)
	if got != "TEXT" {
		t.Fatalf("want TEXT, got %s", got)
	}
}

func TestMapType_StringDefaultLength(t *testing.T) {
	got := MapType(TypeString, ColumnMeta{}, Postgres)
	if got != "VARCHAR(255)" {
		t.Fatalf("want VARCHAR(255), got %s", got)
	}
}

func TestMapType_StringExplicitLength(t *testing.T) {
	got := MapType(TypeString, ColumnMeta{Length: intp(64)}, MariaDB)
	if got != "VARCHAR(64)" {
		t.Fatalf("want VARCHAR(64), got %s", got)
	}
}

func TestMapType_UUIDByDialect(t *testing.T) {
	if got := MapType(TypeUUID, ColumnMeta{}, Postgres); got != "UUID" {
		t.Fatalf("want UUID, got %s", got)
	}
	if got := MapType(TypeUUID, ColumnMeta{}, MariaDB); got != "CHAR(36)" {
		t.Fatalf("want CHAR(36), got %s", got)
	}
}

func TestMapType_DecimalDefaults(t *testing.T) {
	got := MapType(TypeDecimal, ColumnMeta{}, Postgres)
	if got != "DECIMAL(19,2)" {
		t.Fatalf("want DECIMAL(19,2), got %s", got)
	}
}

func TestMapType_DecimalExplicit(t *testing.T) {
	got := MapType(TypeDecimal, ColumnMeta{Precision: intp(10), Scale: intp(4)}, Postgres)
	if got != "DECIMAL(10,4)" {
		t.Fatalf("want DECIMAL(10,4), got %s", got)
	}
}

func TestMapType_TemporalByDialect(t *testing.T) {
	if got := MapType(TypeDateTime, ColumnMeta{}, Postgres); got != "TIMESTAMP" {
		t.Fatalf("want TIMESTAMP, got %s", got)
	}
	if got := MapType(TypeDateTime, ColumnMeta{}, MariaDB); got != "DATETIME" {
		t.Fatalf("want DATETIME, got %s", got)
	}
}

func TestMapType_Enum(t *testing.T) {
	got := MapType(TypeString, ColumnMeta{IsEnum: true}, Postgres)
	if got != "VARCHAR(50)" {
		t.Fatalf("want VARCHAR(50), got %s", got)
	}
}

func TestMapType_JSONByDialect(t *testing.T) {
	if got := MapType(TypeJSON, ColumnMeta{}, Postgres); got != "JSONB" {
		t.Fatalf("want JSONB, got %s", got)
	}
	if got := MapType(TypeJSON, ColumnMeta{}, MariaDB); got != "JSON" {
		t.Fatalf("want JSON, got %s", got)
	}
}

func TestMapType_UnknownFallsBackToVarchar(t *testing.T) {
	got := MapType(FieldType("SomethingWeird"), ColumnMeta{}, Postgres)
	if got != "VARCHAR(255)" {
		t.Fatalf("want VARCHAR(255), got %s", got)
	}
}

func TestMapType_ByteArrayByDialect(t *testing.T) {
	if got := MapType(TypeByteArray, ColumnMeta{}, Postgres); got != "BYTEA" {
		t.Fatalf("want BYTEA, got %s", got)
	}
	if got := MapType(TypeByteArray, ColumnMeta{}, MariaDB); got != "BLOB" {
		t.Fatalf("want BLOB, got %s", got)
	}
}
