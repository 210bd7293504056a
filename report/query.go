// Package report runs the fixed order-analysis join against a store
// populated by ingest and renders it as a bordered text table.
package report

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"ecomdb/config"
)

// orderDetailsQuery joins each order line item with its customer,
// product and, when one exists, payment. Payments are outer-joined:
// unpaid orders still appear, payment columns NULL.
const orderDetailsQuery = `
SELECT
    o.order_id,
    o.order_date,
    u.name AS customer_name,
    u.email,
    u.city,
    u.state,
    pr.name AS product_name,
    pr.category,
    oi.quantity,
    oi.price AS unit_price,
    (oi.quantity * oi.price) AS item_total,
    o.total_amount AS order_total,
    o.status AS order_status,
    p.payment_method,
    p.payment_date,
    p.status AS payment_status
FROM orders o
INNER JOIN users u ON o.user_id = u.user_id
INNER JOIN order_items oi ON o.order_id = oi.order_id
INNER JOIN products pr ON oi.product_id = pr.product_id
LEFT JOIN payments p ON o.order_id = p.order_id
ORDER BY o.order_date DESC, o.order_id, oi.order_item_id
LIMIT ?`

// Runner executes the report pipeline against an existing store.
// It has read-only access and owns none of the schema.
type Runner struct {
	cfg *config.Config
	log *slog.Logger
	out io.Writer
}

// NewRunner creates a Runner writing its tables to out, normally os.Stdout.
func NewRunner(cfg *config.Config, logger *slog.Logger, out io.Writer) *Runner {
	if out == nil {
		out = os.Stdout
	}
	return &Runner{cfg: cfg, log: logger, out: out}
}

// Run executes the fixed join query. A missing database or a failing
// query ends the run normally after a log entry.
func (r *Runner) Run() error {
	if _, err := os.Stat(r.cfg.DBPath); err != nil {
		r.log.Error("database not found, run ingest first", "path", r.cfg.DBPath, "error", err)
		return nil
	}

	db, err := sql.Open("sqlite", r.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	r.log.Info("connected to database", "path", r.cfg.DBPath)

	r.runQuery(db, orderDetailsQuery, "Complete Order Details - Multi-Table JOIN", r.cfg.RowLimit)
	return nil
}

// runQuery executes one query and renders its result set. Execution
// errors are logged and do not propagate.
func (r *Runner) runQuery(db *sql.DB, query, description string, limit int) {
	banner := strings.Repeat("=", 100)
	fmt.Fprintf(r.out, "\n%s\n", banner)
	fmt.Fprintf(r.out, "QUERY: %s\n", description)
	fmt.Fprintln(r.out, banner)

	columns, rows, err := fetchAll(db, query, limit)
	if err != nil {
		r.log.Error("query failed", "error", err)
		return
	}

	if len(rows) == 0 {
		fmt.Fprintln(r.out, "No results found.")
		return
	}

	RenderTable(r.out, columns, rows)
	fmt.Fprintf(r.out, "\nTotal rows: %d\n", len(rows))
}

// fetchAll runs the query and stringifies the full result set. The
// result is bounded by the query's LIMIT, so buffering it is fine.
func fetchAll(db *sql.DB, query string, args ...interface{}) ([]string, [][]string, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var result [][]string
	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		record := make([]string, len(columns))
		for i, v := range values {
			record[i] = stringify(v)
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return columns, result, nil
}

// stringify renders one scanned value for display. NULL is an empty cell.
func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
