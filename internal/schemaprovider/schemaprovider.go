// Package schemaprovider defines the pluggable collaborator that maps
// entities to partition folders and controls the generated file naming
// scheme, per spec section 6.
package schemaprovider

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/entgen/migrator/internal/descriptor"
)

// SchemaProvider is injected into the Orchestrator to control where each
// entity's migrations land and how files are named within a partition.
type SchemaProvider interface {
	// FolderFor returns the partition folder name for entity; the caller
	// uses it as returned (Default lowercases it), and an empty return
	// means "default".
	FolderFor(entity *descriptor.Entity) string
	// SetupFolder returns the folder used for UUID/extension setup files;
	// an empty return means the root output directory.
	SetupFolder() string
	// FileName builds the on-disk filename for one migration file.
	FileName(timestamp string, sortNumber int, baseName string) string
	// Regex returns a pattern matching any filename previously produced by
	// FileName for this (sortNumber, baseName), across any timestamp.
	Regex(sortNumber int, baseName string) string
}

// Default is the naming policy fixed by spec section 9's open question:
// V<yyyyMMddHHmmss><sortNumber>__<baseName>.sql, partitioned by the last
// segment of the entity's package path.
type Default struct{}

// NewDefault constructs the default SchemaProvider.
func NewDefault() *Default {
	return &Default{}
}

// FolderFor returns the entity's explicit schema override if set, else the
// last segment of its package path, else "" (caller treats as "default").
func (d *Default) FolderFor(entity *descriptor.Entity) string {
	if entity.SchemaOverride != "" {
		return strings.ToLower(entity.SchemaOverride)
	}
	if entity.PackagePath == "" {
		return ""
	}
	parts := strings.Split(entity.PackagePath, "/")
	last := parts[len(parts)-1]
	if last == "" && len(parts) > 1 {
		last = parts[len(parts)-2]
	}
	return strings.ToLower(last)
}

// SetupFolder returns "" so setup files land in the output root.
func (d *Default) SetupFolder() string {
	return ""
}

// FileName renders "V<timestamp><sortNumber>__<baseName>.sql" with
// sortNumber zero-padded to 4 digits.
func (d *Default) FileName(timestamp string, sortNumber int, baseName string) string {
	return fmt.Sprintf("V%s%04d__%s.sql", timestamp, sortNumber, baseName)
}

// Regex returns the lookup pattern matching any timestamp for this
// (sortNumber, baseName) pair: V\d{14}<sortNumber>__<baseName>\.sql
func (d *Default) Regex(sortNumber int, baseName string) string {
	return fmt.Sprintf(`^V\d{14}%04d__%s\.sql$`, sortNumber, regexp.QuoteMeta(baseName))
}
