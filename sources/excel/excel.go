// Package excel reads xlsx workbooks. One file loads one table: the
// first sheet, header in its first row.
package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ecomdb/schema"
	"ecomdb/sources"
)

const XLSTB = "tb0"

func init() {
	sources.Register("excel", &excelDriver{})
}

type excelDriver struct{}

func (d *excelDriver) Open(source io.Reader, config *sources.ReadConfig) (sources.RowProvider, error) {
	return NewExcelSource(source, config)
}

// ExcelSource provides rows from the first sheet of a workbook.
type ExcelSource struct {
	table      string
	sheet      string
	headers    []string
	sampleRows [][]string
	file       *excelize.File
}

var _ sources.RowProvider = (*ExcelSource)(nil)
var _ io.Closer = (*ExcelSource)(nil)

// NewExcelSource creates an ExcelSource from an io.Reader with optional config.
func NewExcelSource(r io.Reader, config *sources.ReadConfig) (*ExcelSource, error) {
	if config == nil {
		config = &sources.ReadConfig{}
	}
	tableName := config.TableName
	if tableName == "" {
		tableName = XLSTB
	}
	sampleSize := config.SampleSize
	if sampleSize <= 0 {
		sampleSize = 100
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel stream: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("no sheets found in Excel file")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get rows iterator for sheet %s: %w", sheet, err)
	}

	var headers []string
	var sampleRows [][]string
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			rows.Close()
			f.Close()
			return nil, fmt.Errorf("failed to read row for sheet %s: %w", sheet, err)
		}
		if headers == nil {
			headers = schema.GenColumnNames(cols)
			continue
		}
		sampleRows = append(sampleRows, cols)
		if len(sampleRows) >= sampleSize {
			break
		}
	}
	rows.Close()

	if len(headers) == 0 {
		f.Close()
		return nil, fmt.Errorf("sheet %s has no header row", sheet)
	}

	return &ExcelSource{
		table:      tableName,
		sheet:      sheet,
		headers:    headers,
		sampleRows: sampleRows,
		file:       f,
	}, nil
}

// TableName implements RowProvider
func (e *ExcelSource) TableName() string {
	return e.table
}

// Headers implements RowProvider
func (e *ExcelSource) Headers() []string {
	return e.headers
}

// ColumnTypes implements RowProvider
func (e *ExcelSource) ColumnTypes() []string {
	return schema.InferColumnTypes(e.sampleRows, len(e.headers))
}

// ScanRows implements RowProvider. Unlike the csv source, the workbook
// is seekable, so rows are re-iterated from the sheet rather than
// replayed from the sample buffer.
func (e *ExcelSource) ScanRows(yield func(sources.Record, error) error) error {
	rows, err := e.file.Rows(e.sheet)
	if err != nil {
		return fmt.Errorf("failed to get rows iterator for sheet %s: %w", e.sheet, err)
	}
	defer rows.Close()

	// Skip the header row
	if rows.Next() {
		if _, err := rows.Columns(); err != nil {
			return err
		}
	}

	for rows.Next() {
		row, err := rows.Columns()
		if err != nil {
			if err := yield(nil, fmt.Errorf("failed to read row: %w", err)); err != nil {
				return err
			}
			continue
		}

		rec := make(sources.Record, len(e.headers))
		for i, val := range row {
			if i >= len(e.headers) {
				break
			}
			rec[e.headers[i]] = val
		}
		if err := yield(rec, nil); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the underlying workbook.
func (e *ExcelSource) Close() error {
	if e.file != nil {
		return e.file.Close()
	}
	return nil
}
