// Package html reads HTML documents. One file loads one table: the
// first <table> element, header in its first row.
package html

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"ecomdb/schema"
	"ecomdb/sources"
)

const HTMLTB = "tb0"

func init() {
	sources.Register("html", &htmlDriver{})
}

type htmlDriver struct{}

func (d *htmlDriver) Open(source io.Reader, config *sources.ReadConfig) (sources.RowProvider, error) {
	return NewHTMLSource(source, config)
}

// HTMLSource provides rows from the first table of an HTML document.
// The whole document is parsed up front; HTML inputs are small report
// exports, not streams.
type HTMLSource struct {
	table      string
	headers    []string
	rows       [][]string
	sampleSize int
}

var _ sources.RowProvider = (*HTMLSource)(nil)

// NewHTMLSource creates an HTMLSource from an io.Reader with optional config.
func NewHTMLSource(r io.Reader, config *sources.ReadConfig) (*HTMLSource, error) {
	if config == nil {
		config = &sources.ReadConfig{}
	}
	tableName := config.TableName
	if tableName == "" {
		tableName = HTMLTB
	}
	sampleSize := config.SampleSize
	if sampleSize <= 0 {
		sampleSize = 100
	}

	headers, rows, err := parseFirstTable(bufio.NewReaderSize(r, 65536))
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("no table with a header row found in HTML")
	}

	return &HTMLSource{
		table:      tableName,
		headers:    schema.GenColumnNames(headers),
		rows:       rows,
		sampleSize: sampleSize,
	}, nil
}

// TableName implements RowProvider
func (c *HTMLSource) TableName() string {
	return c.table
}

// Headers implements RowProvider
func (c *HTMLSource) Headers() []string {
	return c.headers
}

// ColumnTypes implements RowProvider
func (c *HTMLSource) ColumnTypes() []string {
	sample := c.rows
	if len(sample) > c.sampleSize {
		sample = sample[:c.sampleSize]
	}
	return schema.InferColumnTypes(sample, len(c.headers))
}

// ScanRows implements RowProvider
func (c *HTMLSource) ScanRows(yield func(sources.Record, error) error) error {
	for _, row := range c.rows {
		rec := make(sources.Record, len(c.headers))
		for i, val := range row {
			if i >= len(c.headers) {
				break
			}
			rec[c.headers[i]] = val
		}
		if err := yield(rec, nil); err != nil {
			return err
		}
	}
	return nil
}

func parseFirstTable(reader io.Reader) (headers []string, rows [][]string, err error) {
	doc, err := html.Parse(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var tableNode *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if tableNode != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "table" {
			tableNode = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)

	if tableNode == nil {
		return nil, nil, fmt.Errorf("no table found in HTML")
	}

	all := extractRows(tableNode)
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

func extractRows(n *html.Node) [][]string {
	var rows [][]string
	var visitRows func(*html.Node)
	visitRows = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "tr" {
			var row []string
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, extractText(c))
				}
			}
			rows = append(rows, row)
			return // Don't look for TRs inside TRs
		}

		for c := node.FirstChild; c != nil; c = c.NextSibling {
			// Don't traverse into nested tables here
			if c.Type == html.ElementNode && c.Data == "table" {
				continue
			}
			visitRows(c)
		}
	}
	visitRows(n)
	return rows
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	extractTextRecursive(n, &sb)
	return strings.TrimSpace(sb.String())
}

func extractTextRecursive(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractTextRecursive(c, sb)
	}
}
