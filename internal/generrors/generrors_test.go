package generrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSqlParseError_Unwraps(t *testing.T) {
	inner := errors.New("unexpected token")
	err := &SqlParseError{File: "V1__create.sql", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatal("expected errors.Is to see through Unwrap")
	}
}

func TestFileIOError_AsMatchesType(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", &FileIOError{Path: "/tmp/x.sql", Err: errors.New("disk full")})
	var target *FileIOError
	if !errors.As(wrapped, &target) {
		t.Fatal("expected errors.As to find FileIOError")
	}
	if target.Path != "/tmp/x.sql" {
		t.Fatalf("unexpected path: %s", target.Path)
	}
}

func TestDuplicateTableNameError_Message(t *testing.T) {
	err := &DuplicateTableNameError{TableName: "sample", EntityA: "Sample", EntityB: "SampleAlt"}
	want := `duplicate table name "sample": entities Sample and SampleAlt both project to it`
	if err.Error() != want {
		t.Fatalf("want %q, got %q", want, err.Error())
	}
}
