package storage

import (
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDSN = "postgres://u:p@localhost:5432/db?sslmode=disable"

func TestMigrateRejectsEmptyDSN(t *testing.T) {
	err := Migrate("", DefaultTable, "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty dsn")
}

func TestMigrateRejectsInvalidDirection(t *testing.T) {
	for _, direction := range []string{"", "sideways", "UP"} {
		err := Migrate(testDSN, DefaultTable, direction)
		require.Error(t, err, direction)
		assert.Contains(t, err.Error(), "direction must be up or down")
	}
}

func TestMigrationsAreEmbedded(t *testing.T) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"migrations/000001_create_tweets.up.sql",
		"migrations/000001_create_tweets.down.sql",
	}, names)
}

func readRendered(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestRenderMigrationsUsesConfiguredTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, renderMigrations(dir, "geo.tweets_sf"))

	up := readRendered(t, dir, "000001_create_tweets.up.sql")
	assert.Contains(t, up, `create table if not exists "geo"."tweets_sf" (`)
	assert.Contains(t, up, `create index if not exists "tweets_sf_coordinates_idx" on "geo"."tweets_sf" using gist (coordinates);`)
	assert.Contains(t, up, `create index if not exists "tweets_sf_created_at_idx" on "geo"."tweets_sf" (created_at);`)
	assert.NotContains(t, up, "{{")

	down := readRendered(t, dir, "000001_create_tweets.down.sql")
	assert.Equal(t, "drop table if exists \"geo\".\"tweets_sf\";\n", down)
}

func TestRenderMigrationsDefaultTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, renderMigrations(dir, DefaultTable))

	up := readRendered(t, dir, "000001_create_tweets.up.sql")
	assert.Contains(t, up, `create table if not exists "tweets" (`)
	assert.Contains(t, up, `"tweets_coordinates_idx"`)
}

func TestMigrationsTablePerStoreTable(t *testing.T) {
	dsn, err := withMigrationsTable(testDSN, DefaultTable)
	require.NoError(t, err)
	assert.Equal(t, testDSN, dsn)

	dsn, err = withMigrationsTable(testDSN, "geo.tweets_sf")
	require.NoError(t, err)
	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "schema_migrations_geo_tweets_sf", u.Query().Get("x-migrations-table"))
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
}
