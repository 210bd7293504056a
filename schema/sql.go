package schema

import (
	"fmt"
	"strings"
)

// IsHeuristicPrimaryKey reports whether a column looks like its table's
// primary key: the column name ends in "_id" and starts with the table
// name minus its final character (naive singularization). The
// singularization is deliberately naive: "orders"/"order_id" matches,
// while "categories" singularizes to "categorie" and never matches its
// "category_id" column. Callers depend on this exact behavior.
func IsHeuristicPrimaryKey(tableName, columnName string) bool {
	if tableName == "" {
		return false
	}
	if !strings.HasSuffix(columnName, "_id") {
		return false
	}
	return strings.HasPrefix(columnName, tableName[:len(tableName)-1])
}

// GenCreateTableSQL generates a CREATE TABLE IF NOT EXISTS statement
// with one type per column. At most one column, the first that passes
// the primary key heuristic, is marked PRIMARY KEY.
func GenCreateTableSQL(tableName string, columnNames, columnTypes []string) string {
	var builder strings.Builder
	builder.Grow(len(tableName) + len(columnNames)*24)

	builder.WriteString("CREATE TABLE IF NOT EXISTS ")
	builder.WriteString(tableName)
	builder.WriteString(" (")
	marked := false
	for i, name := range columnNames {
		builder.WriteString(name)
		builder.WriteByte(' ')
		builder.WriteString(columnTypes[i])
		if !marked && IsHeuristicPrimaryKey(tableName, name) {
			builder.WriteString(" PRIMARY KEY")
			marked = true
		}
		if i < len(columnNames)-1 {
			builder.WriteString(", ")
		}
	}
	builder.WriteByte(')')
	return builder.String()
}

// GenInsertSQL generates a positional-parameter INSERT naming every column.
func GenInsertSQL(tableName string, columnNames []string) (string, error) {
	if tableName == "" || len(columnNames) == 0 {
		return "", fmt.Errorf("table name and columns are required")
	}

	stmtSQL := fmt.Sprintf(`
INSERT INTO %s (
	%s
) VALUES (%s)`,
		tableName,
		strings.Join(columnNames, ","),
		strings.Repeat("?,", len(columnNames)-1)+"?",
	)

	return strings.TrimSpace(stmtSQL), nil
}
