package dataload

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

// LoadHTMLFile parses an HTML document from disk and extracts one table.
func LoadHTMLFile(path string, opts Options) (table.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return table.RawTable{}, apperrors.NewStorageError("open html file", err)
	}
	defer f.Close()
	if opts.Name == "" {
		opts.Name = tableNameFromPath(path)
	}
	return ReadHTML(f, opts)
}

// ReadHTML extracts the TableIndex-th <table> element from the document.
// The first row supplies the header whether or not the page uses <th>
// markup.
func ReadHTML(r io.Reader, opts Options) (table.RawTable, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return table.RawTable{}, apperrors.NewParsingError("parse html document", err)
	}
	tables := findTables(doc)
	if len(tables) == 0 {
		return table.RawTable{}, apperrors.NewParsingError("document contains no table elements", nil)
	}
	if opts.TableIndex < 0 || opts.TableIndex >= len(tables) {
		return table.RawTable{}, apperrors.NewAppValidationError(
			fmt.Sprintf("table index %d out of range, document has %d tables", opts.TableIndex, len(tables)))
	}
	rows := extractRows(tables[opts.TableIndex])
	if len(rows) == 0 {
		return table.RawTable{}, apperrors.NewParsingError("table element has no rows", nil)
	}
	return buildRawTable(opts.Name, rows[0], rows[1:], opts)
}

func findTables(doc *html.Node) []*html.Node {
	var tables []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			tables = append(tables, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tables
}

// extractRows collects the tr elements of one table while skipping rows
// that belong to tables nested inside a cell.
func extractRows(tableNode *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "table":
				continue
			case "tr":
				rows = append(rows, extractCells(c))
			default:
				walk(c)
			}
		}
	}
	walk(tableNode)
	return rows
}

func extractCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, nodeText(c))
		}
	}
	return cells
}

// nodeText flattens the text content of a node, collapsing whitespace runs
// the way a browser renders them.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
