// Package csv reads delimited text files. The delimiter is detected
// from the first line when not set, so .tsv and delimited .txt files
// route here too.
package csv

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"ecomdb/schema"
	"ecomdb/sources"
)

const (
	CSVTB = "tb0"

	// DefaultSampleSize bounds how many data rows are buffered for
	// type inference. Rows past the sample are never inspected.
	DefaultSampleSize = 100
)

func init() {
	sources.Register("csv", &csvDriver{})
}

type csvDriver struct{}

func (d *csvDriver) Open(source io.Reader, config *sources.ReadConfig) (sources.RowProvider, error) {
	return NewCSVSource(source, config)
}

// CSVSource provides rows from one delimited file as one table.
type CSVSource struct {
	table      string
	headers    []string
	sampleRows [][]string
	sampleErr  error
	csvReader  *csv.Reader
}

var _ sources.RowProvider = (*CSVSource)(nil)

// NewCSVSource creates a CSVSource from an io.Reader with optional config.
// The first line is the header; up to SampleSize following rows are
// buffered for inference and replayed by ScanRows.
func NewCSVSource(r io.Reader, config *sources.ReadConfig) (*CSVSource, error) {
	if config == nil {
		config = &sources.ReadConfig{}
	}
	tableName := config.TableName
	if tableName == "" {
		tableName = CSVTB
	}
	sampleSize := config.SampleSize
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	br := bufio.NewReaderSize(r, 65536)

	// Detect delimiter if not set
	delimiter := config.Delimiter
	if delimiter == 0 {
		peekBytes, _ := br.Peek(2048)
		sample := string(peekBytes)
		if idx := strings.IndexAny(sample, "\r\n"); idx != -1 {
			sample = sample[:idx]
		}
		delimiter = sources.DetectDelimiter(sample)
	}

	reader := csv.NewReader(br)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	h, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("CSV file is empty")
		}
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	headers := schema.GenColumnNames(h)

	var sampleRows [][]string
	var sampleErr error
	for len(sampleRows) < sampleSize {
		row, err := reader.Read()
		if err != nil {
			// Stop buffering. A parse error is held and resurfaced from
			// ScanRows after the sample replay, so it is not swallowed.
			if err != io.EOF {
				sampleErr = fmt.Errorf("failed to read CSV row: %w", err)
			}
			break
		}
		sampleRows = append(sampleRows, row)
	}

	return &CSVSource{
		table:      tableName,
		headers:    headers,
		sampleRows: sampleRows,
		sampleErr:  sampleErr,
		csvReader:  reader,
	}, nil
}

// TableName implements RowProvider
func (c *CSVSource) TableName() string {
	return c.table
}

// Headers implements RowProvider
func (c *CSVSource) Headers() []string {
	return c.headers
}

// ColumnTypes implements RowProvider
func (c *CSVSource) ColumnTypes() []string {
	return schema.InferColumnTypes(c.sampleRows, len(c.headers))
}

func (c *CSVSource) record(row []string) sources.Record {
	rec := make(sources.Record, len(c.headers))
	for i, val := range row {
		if i >= len(c.headers) {
			break
		}
		rec[c.headers[i]] = val
	}
	return rec
}

// ScanRows implements RowProvider. Buffered sample rows are replayed
// first, then the rest of the file is streamed. ScanRows can only be
// called once per source.
func (c *CSVSource) ScanRows(yield func(sources.Record, error) error) error {
	if c.csvReader == nil {
		return fmt.Errorf("CSV reader is not initialized")
	}

	for _, row := range c.sampleRows {
		if err := yield(c.record(row), nil); err != nil {
			return err
		}
	}
	if c.sampleErr != nil {
		if err := yield(nil, c.sampleErr); err != nil {
			return err
		}
	}

	for {
		row, err := c.csvReader.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if err := yield(nil, fmt.Errorf("failed to read CSV row: %w", err)); err != nil {
				return err
			}
			continue
		}
		if err := yield(c.record(row), nil); err != nil {
			return err
		}
	}
}
