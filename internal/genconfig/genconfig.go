// Package genconfig holds the generator's explicit configuration record.
// Per the design note in spec section 9, dialect/UUID policy/mode/schema
// provider are passed as an explicit value to the Orchestrator
// constructor; nothing here reads process-wide state at call time. The
// Load helper adapts the teacher's EnvProvider/DotEnvProvider style (see
// internal/config/providers.go) to populate that record from the
// environment, for the cmd/entmigrate CLI layer only.
package genconfig

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/entgen/migrator/internal/descriptor"
	"github.com/entgen/migrator/internal/orchmode"
	"github.com/entgen/migrator/internal/typemap"
)

// GeneratorConfig is the full set of knobs the Orchestrator needs for one
// generate() run.
type GeneratorConfig struct {
	Dialect typemap.Dialect
	UUID    descriptor.UUIDVersion
	Mode    orchmode.Mode
	OutDir  string
}

// Validate reports a descriptive error for any field left at its zero
// value or set to an unrecognized option.
func (c GeneratorConfig) Validate() error {
	switch c.Dialect {
	case typemap.Postgres, typemap.MariaDB:
	default:
		return fmt.Errorf("genconfig: unknown dialect %q", c.Dialect)
	}
	switch c.UUID {
	case descriptor.UUIDV4, descriptor.UUIDV7:
	default:
		return fmt.Errorf("genconfig: unknown uuid policy %q", c.UUID)
	}
	switch c.Mode {
	case orchmode.CreateOnly, orchmode.AlterOnly, orchmode.Smart:
	default:
		return fmt.Errorf("genconfig: unknown mode %q", c.Mode)
	}
	if c.OutDir == "" {
		return fmt.Errorf("genconfig: OutDir must not be empty")
	}
	return nil
}

// envPrefix namespaces the environment variables Load reads, following the
// teacher's ENV_PREFIX convention for avoiding collisions with unrelated
// process environment.
const envPrefix = "ENTMIGRATE_"

// Load builds a GeneratorConfig from environment variables (and, if
// present, a .env file at dotEnvPath), falling back to defaults
// (dialect=POSTGRES, uuid=V7, mode=SMART) for anything unset. It never
// mutates process state; the returned value is the caller's to use or
// discard.
func Load(dotEnvPath string) (GeneratorConfig, error) {
	values := map[string]string{}
	if dotEnvPath != "" {
		fileValues, err := parseDotEnv(dotEnvPath)
		if err != nil && !os.IsNotExist(err) {
			return GeneratorConfig{}, fmt.Errorf("genconfig: reading %s: %w", dotEnvPath, err)
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 && strings.HasPrefix(parts[0], envPrefix) {
			values[strings.TrimPrefix(parts[0], envPrefix)] = parts[1]
		}
	}

	cfg := GeneratorConfig{
		Dialect: typemap.Postgres,
		UUID:    descriptor.UUIDV7,
		Mode:    orchmode.Smart,
		OutDir:  "migrations",
	}

	if v, ok := values["DIALECT"]; ok {
		cfg.Dialect = typemap.Dialect(strings.ToUpper(v))
	}
	if v, ok := values["UUID"]; ok {
		cfg.UUID = descriptor.UUIDVersion(strings.ToUpper(v))
	}
	if v, ok := values["MODE"]; ok {
		cfg.Mode = orchmode.Mode(strings.ToUpper(v))
	}
	if v, ok := values["OUT_DIR"]; ok {
		cfg.OutDir = v
	}

	return cfg, cfg.Validate()
}

// parseDotEnv reads KEY=VALUE pairs from a .env-style file, skipping blank
// lines and lines starting with '#', and stripping matching surrounding
// quotes from values -- the same tolerances as the teacher's DotEnvProvider.
func parseDotEnv(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := removeQuotes(strings.TrimSpace(parts[1]))
		result[key] = value
	}
	return result, scanner.Err()
}

func removeQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
