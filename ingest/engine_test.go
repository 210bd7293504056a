package ingest

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"ecomdb/config"
	"ecomdb/logging"
	_ "ecomdb/sources/all"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

// newTestLoader returns a loader wired to a temp store plus buffers
// capturing its summary output and log lines.
func newTestLoader(t *testing.T, dataDir string) (*Loader, *config.Config, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir
	cfg.DBPath = filepath.Join(t.TempDir(), "test.db")

	var out, logBuf bytes.Buffer
	logger := logging.NewLogger("debug", false, &logBuf)
	return NewLoader(cfg, logger, &out), cfg, &out, &logBuf
}

func openStore(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func tableCount(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return count
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("failed to check table %s: %v", table, err)
	}
	return true
}

func TestLoaderEndToEnd(t *testing.T) {
	dataDir := t.TempDir()
	writeFiles(t, dataDir, map[string]string{
		"users.csv": "user_id,name,email\n1,Alice,alice@example.com\n2,Bob,\n",
		"orders.csv": "order_id,user_id,total_amount\n" +
			"1,1,59.98\n2,2,19.99\n3,1,5.50\n",
	})

	loader, cfg, out, _ := newTestLoader(t, dataDir)
	if err := loader.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	db := openStore(t, cfg.DBPath)
	if got := tableCount(t, db, "users"); got != 2 {
		t.Errorf("users: expected 2 rows, got %d", got)
	}
	if got := tableCount(t, db, "orders"); got != 3 {
		t.Errorf("orders: expected 3 rows, got %d", got)
	}

	// Type inference and the primary key heuristic shape the DDL
	var ddl string
	if err := db.QueryRow("SELECT sql FROM sqlite_master WHERE name='orders'").Scan(&ddl); err != nil {
		t.Fatalf("failed to read DDL: %v", err)
	}
	if !strings.Contains(ddl, "order_id INTEGER PRIMARY KEY") {
		t.Errorf("orders DDL missing heuristic primary key: %s", ddl)
	}
	if !strings.Contains(ddl, "total_amount REAL") {
		t.Errorf("orders DDL missing REAL column: %s", ddl)
	}

	// Empty values are stored as given, not dropped
	var email string
	if err := db.QueryRow("SELECT email FROM users WHERE user_id=2").Scan(&email); err != nil {
		t.Fatalf("failed to read email: %v", err)
	}
	if email != "" {
		t.Errorf("expected empty email, got %q", email)
	}

	summary := out.String()
	if !strings.Contains(summary, "DATABASE SUMMARY") {
		t.Errorf("summary banner missing:\n%s", summary)
	}
	if !strings.Contains(summary, "Table: orders") || !strings.Contains(summary, "Rows: 3") {
		t.Errorf("summary missing orders line:\n%s", summary)
	}
}

func TestLoaderReloadIdempotent(t *testing.T) {
	dataDir := t.TempDir()
	writeFiles(t, dataDir, map[string]string{
		"products.csv": "product_id,name\n1,laptop\n2,mouse\n3,keyboard\n",
	})

	loader, cfg, _, _ := newTestLoader(t, dataDir)
	if err := loader.Run(); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := loader.Run(); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	db := openStore(t, cfg.DBPath)
	if got := tableCount(t, db, "products"); got != 3 {
		t.Errorf("expected 3 rows after reload, got %d", got)
	}
}

func TestLoaderPerFileIsolation(t *testing.T) {
	dataDir := t.TempDir()
	writeFiles(t, dataDir, map[string]string{
		"users.csv": "user_id,name\n1,Alice\n2,Bob\n",
		// duplicate primary key: insertion fails mid-file
		"orders.csv": "order_id,user_id\n1,1\n1,2\n",
	})

	loader, cfg, out, logBuf := newTestLoader(t, dataDir)
	if err := loader.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	db := openStore(t, cfg.DBPath)
	if got := tableCount(t, db, "users"); got != 2 {
		t.Errorf("users should load despite orders failing, got %d rows", got)
	}
	if tableExists(t, db, "orders") {
		t.Error("orders should be rolled back entirely")
	}
	if !strings.Contains(logBuf.String(), "failed to process file") {
		t.Errorf("expected a per-file error log:\n%s", logBuf.String())
	}
	if !strings.Contains(out.String(), "Table: users") {
		t.Errorf("summary should still list users:\n%s", out.String())
	}
}

func TestLoaderMalformedFileIsolation(t *testing.T) {
	dataDir := t.TempDir()
	writeFiles(t, dataDir, map[string]string{
		"products.csv": "product_id,name\n1,laptop\n",
		"broken.csv":   "a,b\n1,2\n\"bare,3\n",
	})

	loader, cfg, _, _ := newTestLoader(t, dataDir)
	if err := loader.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	db := openStore(t, cfg.DBPath)
	if got := tableCount(t, db, "products"); got != 1 {
		t.Errorf("products should load despite the broken file, got %d rows", got)
	}
	if tableExists(t, db, "broken") {
		t.Error("broken should be rolled back entirely")
	}
}

func TestLoaderHeaderOnlyFile(t *testing.T) {
	dataDir := t.TempDir()
	writeFiles(t, dataDir, map[string]string{
		"payments.csv": "payment_id,order_id,amount\n",
	})

	loader, cfg, _, logBuf := newTestLoader(t, dataDir)
	if err := loader.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	db := openStore(t, cfg.DBPath)
	if !tableExists(t, db, "payments") {
		t.Fatal("header-only file should still create its table")
	}
	if got := tableCount(t, db, "payments"); got != 0 {
		t.Errorf("expected 0 rows, got %d", got)
	}
	if !strings.Contains(logBuf.String(), "no data rows") {
		t.Errorf("expected a skip warning:\n%s", logBuf.String())
	}
}

func TestLoaderMissingDataDir(t *testing.T) {
	loader, cfg, _, logBuf := newTestLoader(t, filepath.Join(t.TempDir(), "nope"))
	if err := loader.Run(); err != nil {
		t.Fatalf("Run should end normally on a missing directory, got %v", err)
	}
	if !strings.Contains(logBuf.String(), "data directory") {
		t.Errorf("expected a missing-directory log:\n%s", logBuf.String())
	}
	if _, err := os.Stat(cfg.DBPath); !os.IsNotExist(err) {
		t.Error("no database should be created for a missing directory")
	}
}

func TestLoaderSkipsUnsupportedFiles(t *testing.T) {
	dataDir := t.TempDir()
	writeFiles(t, dataDir, map[string]string{
		"users.csv": "user_id,name\n1,Alice\n",
		"README.md": "# not data\n",
	})

	loader, cfg, _, logBuf := newTestLoader(t, dataDir)
	if err := loader.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	db := openStore(t, cfg.DBPath)
	if tableExists(t, db, "readme") {
		t.Error("markdown file should not produce a table")
	}
	if !strings.Contains(logBuf.String(), "skipping unsupported file") {
		t.Errorf("expected a skip log:\n%s", logBuf.String())
	}
}

func TestLoaderSummaryListsPreexistingTables(t *testing.T) {
	dataDir := t.TempDir()
	writeFiles(t, dataDir, map[string]string{
		"users.csv": "user_id,name\n1,Alice\n",
	})

	loader, cfg, out, _ := newTestLoader(t, dataDir)

	// A table this run never touches
	db := openStore(t, cfg.DBPath)
	if _, err := db.Exec("CREATE TABLE legacy (id INTEGER)"); err != nil {
		t.Fatalf("failed to create legacy table: %v", err)
	}

	if err := loader.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Table: legacy") {
		t.Errorf("summary should list every table in the store:\n%s", out.String())
	}
}
