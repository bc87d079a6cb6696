package localstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/mandaditos/internal/client/migrations"
	"github.com/dmitrijs2005/mandaditos/internal/client/repositories/collections"
	"github.com/dmitrijs2005/mandaditos/internal/dbx"
	"github.com/dmitrijs2005/mandaditos/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// RunMigrations brings the client schema up to date.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// OpenDatabase opens (creating if needed) the SQLite file at path and
// migrates it. A single connection keeps writes serialized.
func OpenDatabase(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, err
		}
	}
	db, err := dbx.Open(ctx, "sqlite", path, dbx.PoolOptions{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return db, nil
}

// NewSQLiteStorage exposes the collections table as a Storage.
func NewSQLiteStorage(db dbx.DBTX) Storage {
	return collections.NewSQLiteRepository(db)
}
