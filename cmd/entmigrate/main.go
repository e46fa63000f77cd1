// Command entmigrate drives the migration generator from the command
// line: generate writes SQL files for a set of entity descriptors, status
// reports which tables already exist in the output directory, and watch
// re-runs generate on a schedule. Dispatch follows the same
// Command{Name,Description,Action} table the framework's own CLI uses.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"

	"github.com/entgen/migrator/internal/descriptor"
	"github.com/entgen/migrator/internal/dsn"
	"github.com/entgen/migrator/internal/entityfile"
	"github.com/entgen/migrator/internal/extract"
	"github.com/entgen/migrator/internal/genconfig"
	"github.com/entgen/migrator/internal/logging"
	"github.com/entgen/migrator/internal/orchestrate"
	"github.com/entgen/migrator/internal/schemaprovider"
)

// Command is one entmigrate subcommand.
type Command struct {
	Name        string
	Description string
	Action      func(args []string) error
}

var commands = []Command{
	{
		Name:        "generate",
		Description: "Project entity descriptors into create/alter migration files",
		Action:      runGenerate,
	},
	{
		Name:        "status",
		Description: "List tables already present in the migration output directory",
		Action:      runStatus,
	},
	{
		Name:        "watch",
		Description: "Run generate on a recurring schedule",
		Action:      runWatch,
	},
}

func main() {
	if len(os.Args) < 2 {
		showHelp()
		os.Exit(1)
	}

	name := os.Args[1]
	args := os.Args[2:]

	for _, cmd := range commands {
		if cmd.Name == name {
			if err := cmd.Action(args); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
	showHelp()
	os.Exit(1)
}

func showHelp() {
	fmt.Println("entmigrate - migration script generator")
	fmt.Println()
	fmt.Println("Usage: entmigrate <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	for _, cmd := range commands {
		fmt.Printf("  %-10s %s\n", cmd.Name, cmd.Description)
	}
}

// addLoggingFlags registers the logging destination flags shared by every
// command that logs: by default entmigrate logs colorized text to the
// console; -log-file routes logging to a rotating file instead, and
// -log-json switches the active channel's encoding to structured JSON
// (written to -log-file if given, otherwise stdout).
func addLoggingFlags(fs *flag.FlagSet) (logFile *string, logJSON *bool) {
	logFile = fs.String("log-file", "", "write logs to this file instead of the console")
	logJSON = fs.Bool("log-json", false, "emit structured JSON logs instead of colorized console text")
	return logFile, logJSON
}

// newLogger builds a logging.Service from the teacher's channel/driver
// config and returns the active channel's Logger plus its Close func.
func newLogger(logFile string, logJSON bool) (logging.Logger, func() error, error) {
	cfg := logging.DefaultConfig()
	switch {
	case logJSON:
		cfg.JSON.Enabled = true
		cfg.JSON.Path = logFile
		cfg.DefaultChannel = "json"
	case logFile != "":
		cfg.File.Enabled = true
		cfg.File.Path = logFile
		cfg.DefaultChannel = "file"
	}

	service, err := logging.NewService(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("entmigrate: setting up logging: %w", err)
	}
	return service.Logger(), service.Close, nil
}

func loadConfig(fs *flag.FlagSet) (genconfig.GeneratorConfig, error) {
	dotEnv := fs.Lookup("env").Value.String()
	return genconfig.Load(dotEnv)
}

func loadEntities(entitiesPath string) ([]*descriptor.Entity, error) {
	if entitiesPath == "" {
		return nil, fmt.Errorf("entmigrate: -entities is required")
	}
	return entityfile.Load(entitiesPath)
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	entitiesPath := fs.String("entities", "", "path to a JSON file describing the entities to project")
	fromDSN := fs.String("from-dsn", "", "infer the dialect from a connection string, overriding ENTMIGRATE_DIALECT")
	fs.String("env", ".env", "path to a .env file with ENTMIGRATE_ overrides")
	logFile, logJSON := addLoggingFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}

	if *fromDSN != "" {
		inferred, err := dsn.Detect(*fromDSN)
		if err != nil {
			return fmt.Errorf("entmigrate: %w", err)
		}
		cfg.Dialect = inferred.Dialect
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	entities, err := loadEntities(*entitiesPath)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(*logFile, *logJSON)
	if err != nil {
		return err
	}
	defer closeLog()

	o, err := orchestrate.New(cfg, schemaprovider.NewDefault(), log)
	if err != nil {
		return err
	}

	if err := o.Generate(entities); err != nil {
		return err
	}

	fmt.Printf("generated migrations for %d entities into %s\n", len(entities), cfg.OutDir)
	return nil
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.String("env", ".env", "path to a .env file with ENTMIGRATE_ overrides")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}

	tables, err := extract.GetExistingTables(cfg.OutDir)
	if err != nil {
		return err
	}
	entries, _ := os.ReadDir(cfg.OutDir)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub, err := extract.GetExistingTables(filepath.Join(cfg.OutDir, e.Name()))
		if err != nil {
			return err
		}
		for name := range sub {
			tables[name] = true
		}
	}

	if len(tables) == 0 {
		fmt.Println("no tables found in", cfg.OutDir)
		return nil
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	fmt.Printf("%d tables found in %s:\n", len(names), cfg.OutDir)
	for _, name := range names {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	entitiesPath := fs.String("entities", "", "path to a JSON file describing the entities to project")
	schedule := fs.String("schedule", "@every 1m", "cron schedule to re-run generate on")
	fs.String("env", ".env", "path to a .env file with ENTMIGRATE_ overrides")
	logFile, logJSON := addLoggingFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(*logFile, *logJSON)
	if err != nil {
		return err
	}
	defer closeLog()

	c := cron.New()
	_, err = c.AddFunc(*schedule, func() {
		entities, err := loadEntities(*entitiesPath)
		if err != nil {
			log.Error(fmt.Sprintf("watch: loading entities: %v", err))
			return
		}
		o, err := orchestrate.New(cfg, schemaprovider.NewDefault(), log)
		if err != nil {
			log.Error(fmt.Sprintf("watch: building orchestrator: %v", err))
			return
		}
		if err := o.Generate(entities); err != nil {
			log.Error(fmt.Sprintf("watch: generate failed: %v", err))
			return
		}
		log.Info(fmt.Sprintf("watch: generated migrations for %d entities", len(entities)))
	})
	if err != nil {
		return fmt.Errorf("entmigrate: invalid schedule %q: %w", *schedule, err)
	}

	fmt.Printf("watching on schedule %q, writing to %s (ctrl-c to stop)\n", *schedule, cfg.OutDir)
	c.Run()
	return nil
}
