// Package orchmode defines the Orchestrator's run mode, kept as its own
// tiny package so both genconfig and orchestrate can depend on it without
// an import cycle.
package orchmode

// Mode selects which path the Orchestrator takes per entity.
type Mode string

const (
	// CreateOnly emits CREATE TABLE files for every entity, ignoring any
	// previously materialized schema.
	CreateOnly Mode = "CREATE_ONLY"
	// AlterOnly loads each entity's previous schema and emits an ALTER
	// body; entities with no prior schema are logged and skipped.
	AlterOnly Mode = "ALTER_ONLY"
	// Smart partitions entities into new (no prior schema found) and
	// existing, applying CreateOnly to the former and AlterOnly to the
	// latter.
	Smart Mode = "SMART"
)
