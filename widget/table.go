/*
 *
 * pageflow - page-object UI automation for content management screens
 * Copyright (C) 2026 pageflow authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package widget

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/liuxd6825/pageflow/common"
)

// CellWidget builds the widget living inside a table cell.
type CellWidget func(cell Parent) Widget

// Table reads an HTML table. Reads work on one outerHTML snapshot parsed
// with goquery; interactions address cells by XPath position.
type Table struct {
	base
	columns    map[string]CellWidget
	expandable bool
}

var _ Readable = &Table{}

const (
	expandableRowClass = "pf-c-table__expandable-row"
	detailRowsFilter   = "[not(contains(@class, '" + expandableRowClass + "'))]"
)

// NewTable binds a Table to loc.
func NewTable(parent Parent, loc string) *Table {
	return &Table{base: newBase(parent, loc), columns: make(map[string]CellWidget)}
}

// NewOUIATable binds a PatternFly table by OUIA component id.
func NewOUIATable(parent Parent, id string) *Table {
	return NewTable(parent, ".//table[@data-ouia-component-id="+common.XPathLiteral(id)+"]")
}

// NewExpandableTable binds a PatternFly table whose rows expand into detail
// rows. Detail rows are not table rows: reads and row positions skip them.
func NewExpandableTable(parent Parent, id string) *Table {
	t := NewOUIATable(parent, id)
	t.expandable = true
	return t
}

// WithColumn sets the widget of a column, addressed by header text or by
// zero based column index ("0").
func (t *Table) WithColumn(column string, w CellWidget) *Table {
	t.columns[column] = w
	return t
}

type tableSnapshot struct {
	headers []string
	rows    [][]string
}

func (t *Table) snapshot(ctx context.Context) (tableSnapshot, error) {
	if err := t.activate(ctx); err != nil {
		return tableSnapshot{}, err
	}
	b := t.browser()
	present, err := b.IsPresent(ctx, t.Locator())
	if err != nil {
		return tableSnapshot{}, err
	}
	if !present {
		return tableSnapshot{}, &common.NotFoundError{What: "table", Query: t.Locator()}
	}
	html, err := b.OuterHTML(ctx, t.Locator())
	if err != nil {
		return tableSnapshot{}, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return tableSnapshot{}, fmt.Errorf("parsing table %s: %w", t.Locator(), err)
	}
	return parseTable(doc.Find("table").First(), t.expandable), nil
}

func parseTable(table *goquery.Selection, skipDetails bool) tableSnapshot {
	var snap tableSnapshot
	// only the table's own rows: cells may hold nested tables
	table.ChildrenFiltered("thead").ChildrenFiltered("tr").First().ChildrenFiltered("th, td").Each(func(_ int, s *goquery.Selection) {
		snap.headers = append(snap.headers, strings.TrimSpace(s.Text()))
	})
	trs := table.ChildrenFiltered("tbody").ChildrenFiltered("tr")
	trs.Each(func(_ int, tr *goquery.Selection) {
		if skipDetails && tr.HasClass(expandableRowClass) {
			return
		}
		cells := tr.ChildrenFiltered("td, th")
		if _, span := cells.Attr("colspan"); span && cells.Length() == 1 && trs.Length() == 1 {
			// "No Results" placeholder row
			return
		}
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, s *goquery.Selection) {
			row = append(row, strings.TrimSpace(s.Text()))
		})
		snap.rows = append(snap.rows, row)
	})
	return snap
}

// column resolves a column key to an index: the header text, its
// attributized form ("errata_id") or a numeric index.
func (s tableSnapshot) column(key string) (int, bool) {
	for i, h := range s.headers {
		if h != "" && (h == key || Attributize(h) == key) {
			return i, true
		}
	}
	if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(s.headers) {
		return i, true
	}
	return 0, false
}

// Headers returns the column headers.
func (t *Table) Headers(ctx context.Context) ([]string, error) {
	snap, err := t.snapshot(ctx)
	return snap.headers, err
}

// Matrix returns the raw header and cell texts, headerless columns included.
func (t *Table) Matrix(ctx context.Context) ([]string, [][]string, error) {
	snap, err := t.snapshot(ctx)
	return snap.headers, snap.rows, err
}

// Read implements Readable.
func (t *Table) Read(ctx context.Context) (any, error) {
	return t.ReadRows(ctx)
}

// ReadRows returns every row keyed by header. Columns without a header are left out.
func (t *Table) ReadRows(ctx context.Context) ([]map[string]string, error) {
	snap, err := t.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]string, 0, len(snap.rows))
	for i := range snap.rows {
		rows = append(rows, t.newRow(snap, i).Read())
	}
	return rows, nil
}

// Row returns the first row whose cells equal every filter value. Filter
// keys are header texts or their attributized form.
func (t *Table) Row(ctx context.Context, filters map[string]string) (*Row, error) {
	rows, err := t.Rows(ctx, filters)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &common.NotFoundError{What: "table row", Query: formatFilters(filters)}
	}
	return rows[0], nil
}

// Rows returns every row matching filters.
func (t *Table) Rows(ctx context.Context, filters map[string]string) ([]*Row, error) {
	snap, err := t.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	cols := make(map[int]string, len(filters))
	for key, want := range filters {
		i, ok := snap.column(key)
		if !ok {
			return nil, fmt.Errorf("table %s has no column %q (headers: %s)",
				t.Locator(), key, strings.Join(snap.headers, ", "))
		}
		cols[i] = want
	}

	var rows []*Row
	for ri, cells := range snap.rows {
		match := true
		for ci, want := range cols {
			if ci >= len(cells) || cells[ci] != want {
				match = false
				break
			}
		}
		if match {
			rows = append(rows, t.newRow(snap, ri))
		}
	}
	return rows, nil
}

// RowAt returns the i-th (zero based) row.
func (t *Table) RowAt(ctx context.Context, i int) (*Row, error) {
	snap, err := t.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(snap.rows) {
		return nil, &common.NotFoundError{What: "table row", Query: strconv.Itoa(i)}
	}
	return t.newRow(snap, i), nil
}

func (t *Table) newRow(snap tableSnapshot, i int) *Row {
	return &Row{table: t, index: i, headers: snap.headers, cells: snap.rows[i]}
}

func formatFilters(filters map[string]string) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+filters[k])
	}
	return strings.Join(parts, ",")
}

// Row is a table row as it was when the table was read.
type Row struct {
	table   *Table
	index   int
	headers []string
	cells   []string
}

// Index returns the zero based row position.
func (r *Row) Index() int { return r.index }

// Locator returns the XPath of the row.
func (r *Row) Locator() string {
	rows := "./tbody/tr"
	if r.table.expandable {
		rows += detailRowsFilter
	}
	return r.table.sub(rows) + "[" + strconv.Itoa(r.index+1) + "]"
}

// Read returns the row keyed by header.
func (r *Row) Read() map[string]string {
	res := make(map[string]string, len(r.headers))
	for i, h := range r.headers {
		if h == "" || i >= len(r.cells) {
			continue
		}
		res[h] = r.cells[i]
	}
	return res
}

// Cell returns the cell of the given column.
func (r *Row) Cell(column string) (*Cell, error) {
	snap := tableSnapshot{headers: r.headers}
	i, ok := snap.column(column)
	if !ok {
		return nil, fmt.Errorf("table %s has no column %q", r.table.Locator(), column)
	}
	text := ""
	if i < len(r.cells) {
		text = r.cells[i]
	}
	key := strconv.Itoa(i)
	if i < len(r.headers) && r.headers[i] != "" {
		if _, ok := r.table.columns[r.headers[i]]; ok {
			key = r.headers[i]
		}
	}
	return &Cell{row: r, index: i, text: text, widget: r.table.columns[key]}, nil
}

// Cell is a table cell. It is the Parent of the column widget.
type Cell struct {
	row    *Row
	index  int
	text   string
	widget CellWidget
}

var _ Parent = &Cell{}

// Browser implements Parent.
func (c *Cell) Browser() common.Browser { return c.row.table.browser() }

// Locator implements Parent.
func (c *Cell) Locator() string {
	return c.row.Locator() + "/*[self::td or self::th][" + strconv.Itoa(c.index+1) + "]"
}

// Activate implements Parent.
func (c *Cell) Activate(ctx context.Context) error { return c.row.table.activate(ctx) }

// Text returns the cell text from the snapshot.
func (c *Cell) Text() string { return c.text }

// Widget returns the column widget, or a Text spanning the cell.
func (c *Cell) Widget() Widget {
	if c.widget != nil {
		return c.widget(c)
	}
	return NewText(c, ".")
}

// Click clicks the cell widget.
func (c *Cell) Click(ctx context.Context) error {
	w, ok := c.Widget().(Clickable)
	if !ok {
		return fmt.Errorf("widget of cell %s is not clickable", c.Locator())
	}
	return w.Click(ctx)
}

// Fill fills the cell widget.
func (c *Cell) Fill(ctx context.Context, value any) (bool, error) {
	w, ok := c.Widget().(Fillable)
	if !ok {
		return false, fmt.Errorf("widget of cell %s is not fillable", c.Locator())
	}
	return w.Fill(ctx, value)
}
