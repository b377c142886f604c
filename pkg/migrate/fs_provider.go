package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"regexp"
	"strconv"
	"strings"
)

// Dialect selects the SQL flavour used for the version table.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

const DefaultVersionTable = "schema_migrations"

// Files are named 001_initial_schema.up.sql and 001_initial_schema.down.sql.
var migrationFile = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// FSProvider reads migrations from the top level of an fs.FS, typically an
// embedded directory.
type FSProvider struct {
	fsys    fs.FS
	table   string
	dialect Dialect
}

func NewFSProvider(fsys fs.FS, table string, dialect Dialect) *FSProvider {
	if table == "" {
		table = DefaultVersionTable
	}
	return &FSProvider{fsys: fsys, table: table, dialect: dialect}
}

func (p *FSProvider) Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(p.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationFile.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}

		version, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("invalid version number in %s: %w", e.Name(), err)
		}
		body, err := fs.ReadFile(p.fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: strings.ReplaceAll(m[2], "_", " ")}
			byVersion[version] = mig
		}
		if m[3] == "up" {
			mig.Up = string(body)
		} else {
			mig.Down = string(body)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		out = append(out, *mig)
	}
	return out, nil
}

func (p *FSProvider) EnsureVersionTable(ctx context.Context, db *sql.DB) error {
	appliedType := "TEXT"
	if p.dialect == Postgres {
		appliedType = "TIMESTAMPTZ"
	}
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		version INTEGER PRIMARY KEY,
		applied_at %s DEFAULT CURRENT_TIMESTAMP
	)`, p.table, appliedType)

	if _, err := db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("failed to create version table: %w", err)
	}
	return nil
}

func (p *FSProvider) CurrentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	q := fmt.Sprintf("SELECT COALESCE(MAX(version), 0) FROM %s", p.table)
	if err := db.QueryRowContext(ctx, q).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// SetVersion records version as the newest applied migration, forgetting any
// newer ones left over from a rollback.
func (p *FSProvider) SetVersion(ctx context.Context, db Execer, version int) error {
	placeholder := "?"
	if p.dialect == Postgres {
		placeholder = "$1"
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE version > %s", p.table, placeholder), version); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	if version == 0 {
		return nil
	}

	q := fmt.Sprintf("INSERT INTO %s (version) VALUES (%s) ON CONFLICT (version) DO NOTHING", p.table, placeholder)
	if _, err := db.ExecContext(ctx, q, version); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}
