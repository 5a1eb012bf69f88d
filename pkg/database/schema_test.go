package database

import (
	"errors"
	"fmt"
	"testing"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestParseSchemaVersion(t *testing.T) {
	tests := []struct {
		in           string
		want         SchemaVersion
		wantExplicit bool
		wantErr      bool
	}{
		{in: "", wantExplicit: false},
		{in: "auto", wantExplicit: false},
		{in: "current", want: SchemaCurrent, wantExplicit: true},
		{in: " LEGACY ", want: SchemaLegacy, wantExplicit: true},
		{in: "v2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, explicit, err := ParseSchemaVersion(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantExplicit, explicit)
		})
	}
}

func TestIsUndefinedColumn(t *testing.T) {
	assert.True(t, IsUndefinedColumn(fmt.Errorf("update: %w", &pgconn.PgError{Code: "42703"})))
	assert.True(t, IsUndefinedColumn(&mysqlDriver.MySQLError{Number: 1054}))
	assert.False(t, IsUndefinedColumn(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUndefinedColumn(errors.New("connection refused")))
}

func TestSchemaVersionHasConversationColumn(t *testing.T) {
	assert.True(t, SchemaCurrent.HasConversationColumn())
	assert.False(t, SchemaLegacy.HasConversationColumn())
}
