// Package sources defines the tabular source drivers the loader reads
// from. Drivers register themselves by name, database/sql style, and
// hand back a RowProvider for one file.
package sources

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Record is one row keyed by sanitized column name. Insertion never
// relies on map iteration order; the engine reorders values into the
// table's declared column sequence.
type Record map[string]string

// ReadConfig stores per-file options for a driver.
type ReadConfig struct {
	Delimiter  rune   // Delimiter used for CSV/text parsing; 0 means detect
	TableName  string // Name of the table the file loads into
	SampleSize int    // Max data rows buffered for type inference
}

// RowProvider supplies one table's schema sample and rows.
type RowProvider interface {
	// TableName returns the table this provider loads.
	TableName() string

	// Headers returns the sanitized column names in file order.
	Headers() []string

	// ColumnTypes returns one inferred SQLite type per header, based on
	// a bounded sample of data rows.
	ColumnTypes() []string

	// ScanRows iterates over all data rows in file order, calling yield
	// for each. A read error is passed through to yield with a nil
	// record. If yield returns an error, iteration stops and that error
	// is returned.
	ScanRows(yield func(Record, error) error) error
}

// Driver opens a RowProvider for one input stream.
type Driver interface {
	Open(source io.Reader, config *ReadConfig) (RowProvider, error)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a source driver available by the provided name.
// If Register is called twice with the same name or if driver is nil, it panics.
func Register(name string, driver Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if driver == nil {
		panic("sources: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("sources: Register called twice for driver " + name)
	}
	drivers[name] = driver
}

// Open opens a source by driver name and input reader.
func Open(driverName string, source io.Reader, config *ReadConfig) (RowProvider, error) {
	driversMu.RLock()
	driver, ok := drivers[driverName]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("sources: unknown driver %q (forgotten import?)", driverName)
	}
	return driver.Open(source, config)
}

// Drivers returns a sorted list of the names of the registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	list := make([]string, 0, len(drivers))
	for name := range drivers {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// DriverForExt maps a file extension (with leading dot, any case) to a
// registered driver name. Delimited text variants all route to csv,
// which detects the actual delimiter itself.
func DriverForExt(ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".csv", ".tsv", ".txt":
		return "csv", nil
	case ".xlsx", ".xls":
		return "excel", nil
	case ".html", ".htm":
		return "html", nil
	}
	return "", fmt.Errorf("unsupported file type: %s", ext)
}

// DetectDelimiter attempts to detect the delimiter from a raw line of text.
// It checks common delimiters and returns the one that produces the most fields.
// Defaults to comma if line is empty or no clear winner.
func DetectDelimiter(line string) rune {
	if line == "" {
		return ','
	}

	delimiters := []rune{',', '\t', ';', '|'}
	maxCount := -1
	winner := ','

	for _, delim := range delimiters {
		count := strings.Count(line, string(delim))
		if count > maxCount {
			maxCount = count
			winner = delim
		}
	}

	return winner
}
