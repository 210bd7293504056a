// Package ingest loads every tabular file in a data directory into a
// SQLite database, one table per file, schema inferred from a bounded
// row sample. Reloads are full: each table is dropped and recreated.
package ingest

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"ecomdb/config"
	"ecomdb/schema"
	"ecomdb/sources"
)

// Loader runs the ingest pipeline. Failures are isolated per file and
// converted to log entries; Run only returns an error when the store
// itself is unusable.
type Loader struct {
	cfg *config.Config
	log *slog.Logger
	out io.Writer
}

// NewLoader creates a Loader. The summary table is written to out,
// normally os.Stdout.
func NewLoader(cfg *config.Config, logger *slog.Logger, out io.Writer) *Loader {
	if out == nil {
		out = os.Stdout
	}
	return &Loader{cfg: cfg, log: logger, out: out}
}

// Run loads every supported file in the configured data directory.
// A missing directory or an empty one ends the run normally after a log
// entry; per-file failures roll back that file's writes and move on.
func (l *Loader) Run() error {
	files, ok := l.listSourceFiles()
	if !ok {
		return nil
	}

	db, err := sql.Open("sqlite", l.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// One connection avoids locking issues and keeps tx.Stmt cheap
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to set PRAGMA: %w", err)
	}
	l.log.Info("connected to database", "path", l.cfg.DBPath)

	// The whole run is one transaction committed at the end; each file
	// gets a savepoint so its writes roll back without touching the
	// files already loaded.
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	for _, path := range files {
		name := filepath.Base(path)
		l.log.Info("processing file", "file", name)

		if _, err := tx.Exec("SAVEPOINT load_file"); err != nil {
			return fmt.Errorf("failed to create savepoint: %w", err)
		}
		if err := l.loadFile(tx, path); err != nil {
			l.log.Error("failed to process file", "file", name, "error", err)
			if _, err := tx.Exec("ROLLBACK TO SAVEPOINT load_file"); err != nil {
				return fmt.Errorf("failed to roll back savepoint: %w", err)
			}
		}
		if _, err := tx.Exec("RELEASE SAVEPOINT load_file"); err != nil {
			return fmt.Errorf("failed to release savepoint: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	committed = true
	l.log.Info("all changes committed")

	return l.printSummary(db)
}

// listSourceFiles returns the loadable files in the data directory in
// name order. The second result is false when the run should end early.
func (l *Loader) listSourceFiles() ([]string, bool) {
	entries, err := os.ReadDir(l.cfg.DataDir)
	if err != nil {
		l.log.Error("data directory does not exist", "dir", l.cfg.DataDir, "error", err)
		return nil, false
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := sources.DriverForExt(filepath.Ext(entry.Name())); err != nil {
			l.log.Warn("skipping unsupported file", "file", entry.Name())
			continue
		}
		files = append(files, filepath.Join(l.cfg.DataDir, entry.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		l.log.Warn("no source files found", "dir", l.cfg.DataDir)
		return nil, false
	}
	l.log.Info("found source files", "count", len(files))
	return files, true
}

// loadFile drops, recreates and fills the table named after one file.
func (l *Loader) loadFile(tx *sql.Tx, path string) error {
	driverName, err := sources.DriverForExt(filepath.Ext(path))
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tableName := schema.GenTableName(stem)

	provider, err := sources.Open(driverName, f, &sources.ReadConfig{
		TableName:  tableName,
		SampleSize: l.cfg.SampleSize,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize source: %w", err)
	}
	if c, ok := provider.(io.Closer); ok {
		defer c.Close()
	}

	headers := provider.Headers()
	if len(headers) == 0 {
		l.log.Warn("skipping file without headers", "file", filepath.Base(path))
		return nil
	}

	// Full-reload semantics: prior contents for this table are gone
	if _, err := tx.Exec("DROP TABLE IF EXISTS " + tableName); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	colTypes := provider.ColumnTypes()
	createSQL := schema.GenCreateTableSQL(tableName, headers, colTypes)
	if _, err := tx.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	l.log.Info("created table", "table", tableName)

	insertSQL, err := schema.GenInsertSQL(tableName, headers)
	if err != nil {
		return fmt.Errorf("failed to generate insert statement for table %s: %w", tableName, err)
	}
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement for table %s: %w", tableName, err)
	}
	defer stmt.Close()

	rowCount := 0
	args := make([]interface{}, len(headers))
	err = provider.ScanRows(func(rec sources.Record, rowErr error) error {
		if rowErr != nil {
			return rowErr
		}

		// Reorder values into the declared column sequence. A column
		// the record is missing inserts as NULL.
		for i, col := range headers {
			if val, ok := rec[col]; ok {
				args[i] = val
			} else {
				args[i] = nil
			}
		}

		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert row in table %s: %w", tableName, err)
		}
		rowCount++
		if l.cfg.BatchSize > 0 && rowCount%l.cfg.BatchSize == 0 {
			l.log.Debug("insert progress", "table", tableName, "rows", rowCount)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan rows for table %s: %w", tableName, err)
	}

	if rowCount == 0 {
		l.log.Warn("file has no data rows, skipping insert", "file", filepath.Base(path))
		return nil
	}

	// Verify insertion
	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM " + tableName).Scan(&count); err != nil {
		return fmt.Errorf("failed to verify table %s: %w", tableName, err)
	}
	l.log.Info("inserted rows", "table", tableName, "rows", count)

	return nil
}
