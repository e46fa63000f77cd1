// Package orchestrate implements the Orchestrator: the pipeline driver
// that discovers/validates entities, chooses the CREATE_ONLY/ALTER_ONLY/
// SMART path, and invokes EntityProjector, SqlExtractor, MigrationDiffer,
// SqlEmitter and MigrationWriter in order, per spec section 4.7.
package orchestrate

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/entgen/migrator/internal/descriptor"
	"github.com/entgen/migrator/internal/diff"
	"github.com/entgen/migrator/internal/emit"
	"github.com/entgen/migrator/internal/extract"
	"github.com/entgen/migrator/internal/generrors"
	"github.com/entgen/migrator/internal/genconfig"
	"github.com/entgen/migrator/internal/logging"
	"github.com/entgen/migrator/internal/orchmode"
	"github.com/entgen/migrator/internal/project"
	"github.com/entgen/migrator/internal/schemaprovider"
	"github.com/entgen/migrator/internal/writer"
	"github.com/entgen/migrator/pkg/schema"
)

const (
	sortUUIDSetup    = 1
	sortCreateBase   = 1000
	sortForeignKeys  = 5000
	sortIndexes      = 9000
	timestampLayout  = "20060102150405"
)

// Orchestrator drives one generate() run. All configuration is passed to
// New explicitly; nothing here reads process-wide state.
type Orchestrator struct {
	config   genconfig.GeneratorConfig
	provider schemaprovider.SchemaProvider
	log      logging.Logger
	now      func() time.Time
}

// New constructs an Orchestrator. provider and log may be nil, in which
// case schemaprovider.NewDefault() and logging.NewNullLogger() are used.
func New(config genconfig.GeneratorConfig, provider schemaprovider.SchemaProvider, log logging.Logger) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if provider == nil {
		provider = schemaprovider.NewDefault()
	}
	if log == nil {
		log = logging.NewNullLogger()
	}
	return &Orchestrator{config: config, provider: provider, log: log, now: time.Now}, nil
}

// Validate performs the fatal pre-flight checks (currently: unique table
// names) without touching the filesystem. Callers that only want to
// sanity-check a descriptor set before wiring up an Orchestrator can call
// this standalone.
func Validate(entities []*descriptor.Entity) error {
	seen := map[string]string{}
	for _, e := range entities {
		key := strings.ToLower(e.TableName())
		if other, exists := seen[key]; exists {
			return &generrors.DuplicateTableNameError{TableName: e.TableName(), EntityA: other, EntityB: e.Name}
		}
		seen[key] = e.Name
	}
	return nil
}

// Generate runs one full pipeline pass over entities.
func (o *Orchestrator) Generate(entities []*descriptor.Entity) error {
	if err := Validate(entities); err != nil {
		return err
	}

	sorted := make([]*descriptor.Entity, len(entities))
	copy(sorted, entities)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].TableName()) < strings.ToLower(sorted[j].TableName())
	})

	timestamp := o.now().Format(timestampLayout)

	tables := make([]*schema.TableSchema, len(sorted))
	for i, e := range sorted {
		tbl, err := project.Project(e, o.config.Dialect, o.config.UUID)
		if err != nil {
			return fmt.Errorf("orchestrate: projecting entity %q: %w", e.Name, err)
		}
		tables[i] = tbl
	}

	switch o.config.Mode {
	case orchmode.CreateOnly:
		return o.generateCreate(timestamp, sorted, tables)
	case orchmode.AlterOnly:
		return o.generateAlter(timestamp, sorted, tables)
	case orchmode.Smart:
		return o.generateSmart(timestamp, sorted, tables)
	default:
		return fmt.Errorf("orchestrate: unknown mode %q", o.config.Mode)
	}
}

func (o *Orchestrator) generateCreate(timestamp string, entities []*descriptor.Entity, tables []*schema.TableSchema) error {
	if err := o.emitUUIDSetupIfNeeded(timestamp, entities); err != nil {
		return err
	}

	byFolder := map[string][]*schema.TableSchema{}

	for i, e := range entities {
		folder := o.folderFor(e)
		targetDir := filepath.Join(o.config.OutDir, folder)
		body := emit.CreateTable(tables[i], e.Name, o.config.Dialect)
		baseName := "create_" + tables[i].Name + "_table"
		if err := o.write(targetDir, timestamp, sortCreateBase+i, baseName, body); err != nil {
			return err
		}
		byFolder[folder] = append(byFolder[folder], tables[i])
	}

	return o.emitForeignKeysAndIndexes(timestamp, byFolder)
}

func (o *Orchestrator) generateAlter(timestamp string, entities []*descriptor.Entity, tables []*schema.TableSchema) error {
	for i, e := range entities {
		folder := o.folderFor(e)
		targetDir := filepath.Join(o.config.OutDir, folder)

		prev := extract.LoadTableSchema(targetDir, tables[i].Name, o.log)
		if prev == nil {
			o.log.Warn((&generrors.MissingPriorSchemaError{TableName: tables[i].Name, Partition: folder}).Error())
			continue
		}

		body := diff.Diff(tables[i].Name, prev, tables[i])
		if body == "" {
			continue
		}

		baseName := "alter_" + tables[i].Name + "_table"
		if err := o.write(targetDir, timestamp, sortCreateBase+i, baseName, body); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) generateSmart(timestamp string, entities []*descriptor.Entity, tables []*schema.TableSchema) error {
	existingByFolder := map[string]map[string]bool{}

	var newEntities, existingEntities []*descriptor.Entity
	var newTables, existingTables []*schema.TableSchema

	for i, e := range entities {
		folder := o.folderFor(e)
		if _, ok := existingByFolder[folder]; !ok {
			existing, err := extract.GetExistingTables(filepath.Join(o.config.OutDir, folder))
			if err != nil {
				return fmt.Errorf("orchestrate: listing existing tables in %s: %w", folder, err)
			}
			existingByFolder[folder] = existing
		}

		if existingByFolder[folder][tables[i].Name] {
			existingEntities = append(existingEntities, e)
			existingTables = append(existingTables, tables[i])
		} else {
			newEntities = append(newEntities, e)
			newTables = append(newTables, tables[i])
		}
	}

	if len(newEntities) > 0 {
		if err := o.generateCreate(timestamp, newEntities, newTables); err != nil {
			return err
		}
	}
	if len(existingEntities) > 0 {
		if err := o.generateAlter(timestamp, existingEntities, existingTables); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) emitUUIDSetupIfNeeded(timestamp string, entities []*descriptor.Entity) error {
	if !needsUUIDSetup(entities) {
		return nil
	}
	body := emit.UUIDSetup(o.config.UUID, o.config.Dialect)
	if body == "" {
		return nil
	}
	setupFolder := o.provider.SetupFolder()
	targetDir := o.config.OutDir
	if setupFolder != "" {
		targetDir = filepath.Join(o.config.OutDir, setupFolder)
	}
	return o.write(targetDir, timestamp, sortUUIDSetup, "setup_uuid_extension", body)
}

func needsUUIDSetup(entities []*descriptor.Entity) bool {
	for _, e := range entities {
		if id := e.IDField(); id != nil && id.GeneratedValue == descriptor.GeneratedUUID {
			return true
		}
	}
	return false
}

func (o *Orchestrator) emitForeignKeysAndIndexes(timestamp string, byFolder map[string][]*schema.TableSchema) error {
	for folder, tables := range byFolder {
		targetDir := filepath.Join(o.config.OutDir, folder)

		if fkBody := emit.ForeignKeys(tables); fkBody != "" {
			if err := o.write(targetDir, timestamp, sortForeignKeys, "add_foreign_keys", fkBody); err != nil {
				return err
			}
		}
		if idxBody := emit.Indexes(tables); idxBody != "" {
			if err := o.write(targetDir, timestamp, sortIndexes, "add_indexes", idxBody); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *Orchestrator) folderFor(e *descriptor.Entity) string {
	folder := o.provider.FolderFor(e)
	if folder == "" {
		return "default"
	}
	return folder
}

func (o *Orchestrator) write(targetDir, timestamp string, sortNumber int, baseName, body string) error {
	if _, err := writer.Write(o.provider, targetDir, timestamp, sortNumber, baseName, body, o.log); err != nil {
		return &generrors.FileIOError{Path: filepath.Join(targetDir, baseName), Err: err}
	}
	return nil
}
