// Package migrate applies numbered SQL schema migrations and records the
// applied version in a tracking table.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Migration is one numbered schema change.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Execer is satisfied by both *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Provider loads migrations and tracks which version a database is at.
type Provider interface {
	Migrations() ([]Migration, error)
	EnsureVersionTable(ctx context.Context, db *sql.DB) error
	CurrentVersion(ctx context.Context, db *sql.DB) (int, error)
	SetVersion(ctx context.Context, db Execer, version int) error
}

// Migrator runs migrations from a Provider against one database.
type Migrator struct {
	db       *sql.DB
	provider Provider
}

func NewMigrator(db *sql.DB, provider Provider) *Migrator {
	return &Migrator{db: db, provider: provider}
}

// Up applies every pending migration and returns how many were applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}

	for i, mig := range pending {
		if err := m.apply(ctx, mig, true); err != nil {
			return i, fmt.Errorf("failed to apply migration %d (%s): %w", mig.Version, mig.Name, err)
		}
	}
	return len(pending), nil
}

// DownTo reverts applied migrations, newest first, until the database is at
// target.
func (m *Migrator) DownTo(ctx context.Context, target int) error {
	current, err := m.Version(ctx)
	if err != nil {
		return err
	}
	if target >= current {
		return fmt.Errorf("target version %d must be less than current version %d", target, current)
	}

	migrations, err := m.sorted()
	if err != nil {
		return err
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		mig := migrations[i]
		if mig.Version <= target || mig.Version > current {
			continue
		}
		if err := m.apply(ctx, mig, false); err != nil {
			return fmt.Errorf("failed to roll back migration %d (%s): %w", mig.Version, mig.Name, err)
		}
	}
	return nil
}

// Version returns the highest applied migration version, or 0.
func (m *Migrator) Version(ctx context.Context) (int, error) {
	if err := m.provider.EnsureVersionTable(ctx, m.db); err != nil {
		return 0, err
	}
	return m.provider.CurrentVersion(ctx, m.db)
}

// Pending lists migrations newer than the current version in ascending order.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	current, err := m.Version(ctx)
	if err != nil {
		return nil, err
	}

	migrations, err := m.sorted()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, mig := range migrations {
		if mig.Version > current {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

func (m *Migrator) sorted() ([]Migration, error) {
	migrations, err := m.provider.Migrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// apply runs one migration and its version update in a single transaction.
func (m *Migrator) apply(ctx context.Context, mig Migration, up bool) error {
	stmt, version := mig.Up, mig.Version
	if !up {
		stmt, version = mig.Down, mig.Version-1
	}
	if stmt == "" {
		return fmt.Errorf("migration has no SQL for this direction")
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if err := m.provider.SetVersion(ctx, tx, version); err != nil {
		return err
	}

	return tx.Commit()
}
