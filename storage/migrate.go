package storage

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrNoChange возвращается, когда база уже на целевой версии.
var ErrNoChange = migrate.ErrNoChange

const defaultMigrationsTable = "schema_migrations"

type migrationData struct {
	Table            string
	CoordinatesIndex string
	CreatedAtIndex   string
}

// Migrate применяет встроенные миграции Postgres для таблицы table в направлении
// "up" или "down". У каждой таблицы своя таблица версий.
func Migrate(dsn, table, direction string) error {
	if dsn == "" {
		return errors.New("storage: migrate: empty dsn")
	}
	if direction != "up" && direction != "down" {
		return fmt.Errorf("storage: migrate: direction must be up or down, got %q", direction)
	}
	if table == "" {
		table = DefaultTable
	}

	dsn, err := withMigrationsTable(dsn, table)
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "geo-logger-migrations-")
	if err != nil {
		return fmt.Errorf("storage: migrate: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := renderMigrations(dir, table); err != nil {
		return err
	}

	source, err := iofs.New(os.DirFS(dir), ".")
	if err != nil {
		return fmt.Errorf("storage: migrate source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("storage: migrate %s %s: %w", table, direction, err)
	}
	return err
}

// renderMigrations подставляет имя таблицы и индексов во встроенные шаблоны и пишет их в dir.
func renderMigrations(dir, table string) error {
	parts := strings.Split(table, ".")
	base := parts[len(parts)-1]
	data := migrationData{
		Table:            quoteTable(table),
		CoordinatesIndex: pgx.Identifier{base + "_coordinates_idx"}.Sanitize(),
		CreatedAtIndex:   pgx.Identifier{base + "_created_at_idx"}.Sanitize(),
	}

	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("storage: migrate: list migrations: %w", err)
	}
	for _, name := range names {
		tmpl, err := template.ParseFS(migrationFS, name)
		if err != nil {
			return fmt.Errorf("storage: migrate: parse %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("storage: migrate: render %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, path.Base(name)), buf.Bytes(), 0o600); err != nil {
			return fmt.Errorf("storage: migrate: write %s: %w", name, err)
		}
	}
	return nil
}

// withMigrationsTable задаёт x-migrations-table, чтобы версии разных таблиц не смешивались.
func withMigrationsTable(dsn, table string) (string, error) {
	if table == DefaultTable {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("storage: migrate: parse dsn: %w", err)
	}
	q := u.Query()
	q.Set("x-migrations-table", defaultMigrationsTable+"_"+strings.ReplaceAll(table, ".", "_"))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
