// Package generrors defines the generator's typed error kinds (spec
// section 7), each satisfying errors.Is/errors.As so callers can branch on
// failure class without string matching.
package generrors

import "fmt"

// DuplicateTableNameError reports two entities projecting to the same
// physical table name. Fatal: raised before any file is written.
type DuplicateTableNameError struct {
	TableName string
	EntityA   string
	EntityB   string
}

func (e *DuplicateTableNameError) Error() string {
	return fmt.Sprintf("duplicate table name %q: entities %s and %s both project to it", e.TableName, e.EntityA, e.EntityB)
}

// EntityDiscoveryError wraps a failure to discover/list entity
// descriptors. Fatal.
type EntityDiscoveryError struct {
	Err error
}

func (e *EntityDiscoveryError) Error() string {
	return fmt.Sprintf("entity discovery failed: %v", e.Err)
}

func (e *EntityDiscoveryError) Unwrap() error {
	return e.Err
}

// SqlParseError describes a file SqlExtractor could not parse. Non-fatal.
// SqlExtractor does not return it: it logs the parse failure as a warning
// and yields no schema, and the orchestrator then skips the table as
// having no prior schema.
type SqlParseError struct {
	File string
	Err  error
}

func (e *SqlParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.File, e.Err)
}

func (e *SqlParseError) Unwrap() error {
	return e.Err
}

// MissingPriorSchemaError reports ALTER mode running against a table with
// no CREATE TABLE found on disk. Non-fatal: the orchestrator logs it and
// skips that table.
type MissingPriorSchemaError struct {
	TableName string
	Partition string
}

func (e *MissingPriorSchemaError) Error() string {
	return fmt.Sprintf("no prior schema found for table %q in partition %q", e.TableName, e.Partition)
}

// FileIOError wraps a write failure. Fatal: no partial-file cleanup is
// attempted, since the next run's hash check treats a truncated file as
// differing content and emits a fresh one.
type FileIOError struct {
	Path string
	Err  error
}

func (e *FileIOError) Error() string {
	return fmt.Sprintf("file I/O error writing %s: %v", e.Path, e.Err)
}

func (e *FileIOError) Unwrap() error {
	return e.Err
}
