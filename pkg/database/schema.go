package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SchemaVersion tells the repositories whether chat_sessions carries the
// dedicated conversation_id column.
type SchemaVersion string

const (
	SchemaCurrent SchemaVersion = "current"
	SchemaLegacy  SchemaVersion = "legacy"
)

func (v SchemaVersion) HasConversationColumn() bool {
	return v != SchemaLegacy
}

// ParseSchemaVersion maps the DB_SCHEMA_VERSION setting. "auto" and empty
// return ok=false so the caller falls back to DetectSchemaVersion.
func ParseSchemaVersion(s string) (SchemaVersion, bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return "", false, nil
	case string(SchemaCurrent):
		return SchemaCurrent, true, nil
	case string(SchemaLegacy):
		return SchemaLegacy, true, nil
	default:
		return "", false, fmt.Errorf("unknown schema version %q", s)
	}
}

// DetectSchemaVersion probes information_schema once at startup.
func DetectSchemaVersion(ctx context.Context, db *gorm.DB) (SchemaVersion, error) {
	query := `SELECT COUNT(*) FROM information_schema.columns WHERE table_name = ? AND column_name = ?`
	switch db.Dialector.Name() {
	case DriverMySQL:
		query += ` AND table_schema = DATABASE()`
	case DriverPostgres:
		query += ` AND table_schema = current_schema()`
	}

	var count int64
	if err := db.WithContext(ctx).Raw(query, "chat_sessions", "conversation_id").Scan(&count).Error; err != nil {
		return "", fmt.Errorf("probe chat_sessions schema: %w", err)
	}
	if count > 0 {
		return SchemaCurrent, nil
	}
	return SchemaLegacy, nil
}

// ResolveSchemaVersion honours an explicit setting and probes otherwise.
func ResolveSchemaVersion(ctx context.Context, db *gorm.DB, setting string) (SchemaVersion, error) {
	v, explicit, err := ParseSchemaVersion(setting)
	if err != nil {
		return "", err
	}
	if explicit {
		return v, nil
	}
	return DetectSchemaVersion(ctx, db)
}

// IsUndefinedColumn reports whether err is a driver error for a missing column
// (postgres 42703, mysql 1054).
func IsUndefinedColumn(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42703"
	}
	var myErr *mysqlDriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1054
	}
	return false
}
