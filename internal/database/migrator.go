package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/deppfellow/swiftsave-helpdesk/internal/config"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// schemaVersionTable is where tern records the applied version.
const schemaVersionTable = "schema_version"

// Migrate applies the embedded migrations up to the latest version.
//
// Migrations are templates: {{.table}} expands to the configured table name,
// so the schema follows SWIFTSAVE_DATABASE.TABLE. See migrationData for the
// other identifiers.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	conn, err := pgx.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, schemaVersionTable)
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}
	m.Data = migrationData(cfg.Database.Table)

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	if from == int32(len(m.Migrations)) {
		logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}

// migrationData holds the template values for the migrations. Every value is
// an already quoted identifier; constraint and index names are derived from
// the table name before quoting so they stay valid whatever it contains.
func migrationData(table string) map[string]interface{} {
	return map[string]interface{}{
		"table":              pgx.Identifier{table}.Sanitize(),
		"documento_key":      pgx.Identifier{table + "_documento_key"}.Sanitize(),
		"fecha_creacion_idx": pgx.Identifier{table + "_fecha_creacion_idx"}.Sanitize(),
		"estado_idx":         pgx.Identifier{table + "_estado_idx"}.Sanitize(),
	}
}
