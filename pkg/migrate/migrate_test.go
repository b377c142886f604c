package migrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var testMigrations = fstest.MapFS{
	"001_create_notes.up.sql":   {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT);")},
	"001_create_notes.down.sql": {Data: []byte("DROP TABLE notes;")},
	"002_add_author.up.sql":     {Data: []byte("ALTER TABLE notes ADD COLUMN author TEXT;")},
	"002_add_author.down.sql":   {Data: []byte("ALTER TABLE notes DROP COLUMN author;")},
	"README.md":                 {Data: []byte("not a migration")},
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFSProviderMigrations(t *testing.T) {
	migrations, err := NewFSProvider(testMigrations, "", SQLite).Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	byVersion := map[int]Migration{}
	for _, m := range migrations {
		byVersion[m.Version] = m
	}
	assert.Equal(t, "create notes", byVersion[1].Name)
	assert.Contains(t, byVersion[2].Up, "ADD COLUMN author")
	assert.Contains(t, byVersion[2].Down, "DROP COLUMN author")
}

func TestMigratorUpAndDown(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	m := NewMigrator(db, NewFSProvider(testMigrations, "", SQLite))

	applied, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	v, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = db.Exec("INSERT INTO notes (body, author) VALUES ('wet', 'ops')")
	require.NoError(t, err)

	applied, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)

	require.NoError(t, m.DownTo(ctx, 1))
	v, err = m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)

	assert.Error(t, m.DownTo(ctx, 1))
}

func TestMigratorRollsBackFailedMigration(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	broken := fstest.MapFS{
		"001_ok.up.sql":     {Data: []byte("CREATE TABLE ok (id INTEGER);")},
		"002_broken.up.sql": {Data: []byte("CREATE TABLE ok (id INTEGER);")},
	}
	m := NewMigrator(db, NewFSProvider(broken, "", SQLite))

	applied, err := m.Up(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, applied)

	v, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
