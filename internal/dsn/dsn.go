// Package dsn infers dialect and schema/database name from a connection
// string, without ever dialing the database -- the generator's Non-goals
// exclude live execution, so these parsers are used purely as structured
// DSN decoders. Postgres URLs are parsed with lib/pq's ParseURL; MariaDB/
// MySQL DSNs are parsed with go-sql-driver/mysql's ParseDSN.
package dsn

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/entgen/migrator/internal/typemap"
)

// Inference is what Detect resolves from a connection string: which
// dialect it belongs to and, where the DSN names one, the database/schema
// it points at.
type Inference struct {
	Dialect typemap.Dialect
	Schema  string
}

// Detect classifies raw as a Postgres or MariaDB DSN. Postgres URLs use
// the postgres:// or postgresql:// scheme; anything else is attempted as
// a MySQL/MariaDB DSN. Detect never opens a connection -- pq.ParseURL and
// mysql.ParseDSN are pure decoders.
func Detect(raw string) (Inference, error) {
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return detectPostgres(raw)
	}
	return detectMariaDB(raw)
}

func detectPostgres(raw string) (Inference, error) {
	connStr, err := pq.ParseURL(raw)
	if err != nil {
		return Inference{}, fmt.Errorf("dsn: parsing postgres URL: %w", err)
	}

	schema := ""
	for _, field := range strings.Fields(connStr) {
		if strings.HasPrefix(field, "dbname='") {
			schema = strings.TrimSuffix(strings.TrimPrefix(field, "dbname='"), "'")
		}
	}

	return Inference{Dialect: typemap.Postgres, Schema: schema}, nil
}

func detectMariaDB(raw string) (Inference, error) {
	cfg, err := mysql.ParseDSN(raw)
	if err != nil {
		return Inference{}, fmt.Errorf("dsn: parsing mysql DSN: %w", err)
	}
	return Inference{Dialect: typemap.MariaDB, Schema: cfg.DBName}, nil
}
