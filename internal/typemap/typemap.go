// Package typemap resolves a logical field type plus column metadata into
// a dialect-specific SQL type literal, the way the teacher's SQLGenerator
// implementations resolve a ColumnDefinition.Type into a column type string
// for CREATE/ALTER statements.
package typemap

import "fmt"

// Dialect identifies the target SQL flavor.
type Dialect string

const (
	Postgres Dialect = "POSTGRES"
	MariaDB  Dialect = "MARIADB"
)

// FieldType is the logical type identifier carried by an entity descriptor
// field, e.g. "String", "Long", "UUID".
type FieldType string

const (
	TypeString       FieldType = "String"
	TypeByte         FieldType = "Byte"
	TypeShort        FieldType = "Short"
	TypeInt          FieldType = "Int"
	TypeLong         FieldType = "Long"
	TypeFloat        FieldType = "Float"
	TypeDouble       FieldType = "Double"
	TypeDecimal      FieldType = "BigDecimal"
	TypeBoolean      FieldType = "Boolean"
	TypeDateTime     FieldType = "LocalDateTime"
	TypeInstant      FieldType = "Instant"
	TypeDate         FieldType = "LocalDate"
	TypeTime         FieldType = "LocalTime"
	TypeZonedDate    FieldType = "ZonedDateTime"
	TypeOffsetDate   FieldType = "OffsetDateTime"
	TypeDuration     FieldType = "Duration"
	TypePeriod       FieldType = "Period"
	TypeUUID         FieldType = "UUID"
	TypeJSON         FieldType = "JsonNode"
	TypeURL          FieldType = "URL"
	TypeEnum         FieldType = "Enum"
	TypeByteArray    FieldType = "ByteArray"
)

// ColumnMeta carries the optional sizing hints a descriptor field may
// declare alongside its logical type.
type ColumnMeta struct {
	Length                 *int
	Precision              *int
	Scale                  *int
	ColumnDefinitionOverride string
	IsEnum                 bool
}

const (
	defaultStringLength  = 255
	defaultDecimalPrec   = 19
	defaultDecimalScale  = 2
)

// MapType resolves fieldType/meta/dialect to a SQL type literal. Every
// logical type resolves to something: unknown types fall back to VARCHAR,
// mirroring the "Unknown" row of the type-mapping policy table.
func MapType(fieldType FieldType, meta ColumnMeta, dialect Dialect) string {
	if meta.ColumnDefinitionOverride != "" {
		return meta.ColumnDefinitionOverride
	}

	if meta.IsEnum {
		return "VARCHAR(50)"
	}

	switch fieldType {
	case TypeString:
		return varchar(meta.Length)
	case TypeByte, TypeShort:
		if dialect == MariaDB {
			if fieldType == TypeByte {
				return "TINYINT"
			}
			return "SMALLINT"
		}
		return "SMALLINT"
	case TypeInt:
		if dialect == MariaDB {
			return "INT"
		}
		return "INTEGER"
	case TypeLong:
		return "BIGINT"
	case TypeFloat:
		if dialect == MariaDB {
			return "FLOAT"
		}
		return "REAL"
	case TypeDouble:
		if dialect == MariaDB {
			return "DOUBLE"
		}
		return "DOUBLE PRECISION"
	case TypeDecimal:
		prec, scale := defaultDecimalPrec, defaultDecimalScale
		if meta.Precision != nil {
			prec = *meta.Precision
		}
		if meta.Scale != nil {
			scale = *meta.Scale
		}
		return fmt.Sprintf("DECIMAL(%d,%d)", prec, scale)
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDateTime, TypeInstant:
		if dialect == MariaDB {
			return "DATETIME"
		}
		return "TIMESTAMP"
	case TypeDate:
		return "DATE"
	case TypeTime:
		return "TIME"
	case TypeZonedDate, TypeOffsetDate:
		if dialect == MariaDB {
			return "DATETIME"
		}
		return "TIMESTAMP WITH TIME ZONE"
	case TypeDuration:
		return "BIGINT"
	case TypePeriod:
		return "VARCHAR(50)"
	case TypeUUID:
		if dialect == MariaDB {
			return "CHAR(36)"
		}
		return "UUID"
	case TypeJSON:
		if dialect == MariaDB {
			return "JSON"
		}
		return "JSONB"
	case TypeURL:
		return "VARCHAR(2048)"
	case TypeEnum:
		return "VARCHAR(50)"
	case TypeByteArray:
		if dialect == MariaDB {
			return "BLOB"
		}
		return "BYTEA"
	default:
		return varchar(meta.Length)
	}
}

func varchar(length *int) string {
	l := defaultStringLength
	if length != nil {
		l = *length
	}
	return fmt.Sprintf("VARCHAR(%d)", l)
}
