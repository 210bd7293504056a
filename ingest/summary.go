package ingest

import (
	"database/sql"
	"fmt"
	"strings"
)

// printSummary writes the row count of every table in the store, not
// just ones loaded this run, in the report's banner style.
func (l *Loader) printSummary(db *sql.DB) error {
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	border := strings.Repeat("=", 50)
	fmt.Fprintf(l.out, "\n%s\n", border)
	fmt.Fprintln(l.out, "DATABASE SUMMARY")
	fmt.Fprintln(l.out, border)

	for _, table := range tables {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return fmt.Errorf("failed to count rows in %s: %w", table, err)
		}
		fmt.Fprintf(l.out, "Table: %-20s | Rows: %d\n", table, count)
	}

	fmt.Fprintln(l.out, border)
	return nil
}
