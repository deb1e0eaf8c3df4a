package lake

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Placeholder is the value every cell holds until its row is written.
const Placeholder = 1.0

// Table is the lake table: one row per simulation, one column per merged
// parameter or variable. Rows start filled with Placeholder and carry a
// flag recording whether they have been written.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
	data    *mat.Dense
	set     []bool
}

type tableOptions struct {
	override bool
}

// TableOption configures BuildLakeTable.
type TableOption func(*tableOptions)

// WithOverride lets the variables group replace a parameter column of the
// same name instead of failing.
func WithOverride() TableOption {
	return func(o *tableOptions) { o.override = true }
}

// BuildLakeTable allocates an empty lake table from the descriptor's
// parameters and variables groups.
func BuildLakeTable(desc Descriptor, parametersKey, variablesKey string, opts ...TableOption) (*Table, error) {
	var o tableOptions
	for _, opt := range opts {
		opt(&o)
	}

	if desc.SimulationNumber < 0 {
		return nil, NewConfigError(fmt.Sprintf("simulation number %d", desc.SimulationNumber), ErrNegativeRows)
	}
	params, ok := desc.Group(parametersKey)
	if !ok {
		return nil, NewConfigError("parameters group "+parametersKey, ErrMissingGroup)
	}
	vars, ok := desc.Group(variablesKey)
	if !ok {
		return nil, NewConfigError("variables group "+variablesKey, ErrMissingGroup)
	}

	columns, err := mergeColumns(o.override,
		namedGroup{name: parametersKey, columns: params},
		namedGroup{name: variablesKey, columns: vars},
	)
	if err != nil {
		return nil, err
	}
	return NewTable(columns, desc.SimulationNumber), nil
}

// NewTable allocates a placeholder-filled table with the given columns.
func NewTable(columns []Column, rows int) *Table {
	t := &Table{
		columns: append([]Column(nil), columns...),
		index:   make(map[string]int, len(columns)),
		rows:    rows,
		set:     make([]bool, rows),
	}
	for i, c := range t.columns {
		t.index[c.Name] = i
	}
	// mat.NewDense panics on a zero dimension.
	if rows > 0 && len(columns) > 0 {
		cells := make([]float64, rows*len(columns))
		for i := range cells {
			cells[i] = Placeholder
		}
		t.data = mat.NewDense(rows, len(columns), cells)
	}
	return t
}

func (t *Table) Rows() int { return t.rows }
func (t *Table) Cols() int { return len(t.columns) }

// Columns returns the columns in merge order.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

// ColumnNames returns the column names in merge order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

func (t *Table) checkRow(i int) error {
	if i < 0 || i >= t.rows {
		return fmt.Errorf("row %d of %d: %w", i, t.rows, ErrRowOutOfRange)
	}
	return nil
}

// At returns the cell at row i, column j.
func (t *Table) At(i, j int) float64 {
	return t.data.At(i, j)
}

// SetRow overwrites row i and marks it set.
func (t *Table) SetRow(i int, values []float64) error {
	if err := t.checkRow(i); err != nil {
		return err
	}
	if len(values) != len(t.columns) {
		return fmt.Errorf("row %d has %d values, table has %d columns: %w", i, len(values), len(t.columns), ErrColumnCount)
	}
	if t.data != nil {
		t.data.SetRow(i, values)
	}
	t.set[i] = true
	return nil
}

// SetCell writes a single named cell. It does not mark the row set.
func (t *Table) SetCell(i int, name string, v float64) error {
	if err := t.checkRow(i); err != nil {
		return err
	}
	j, ok := t.index[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownColumn)
	}
	t.data.Set(i, j, v)
	return nil
}

// MarkSet flags row i as written, for rows filled cell by cell.
func (t *Table) MarkSet(i int) error {
	if err := t.checkRow(i); err != nil {
		return err
	}
	t.set[i] = true
	return nil
}

// Row returns a copy of row i and whether it has been written.
func (t *Table) Row(i int) ([]float64, bool, error) {
	if err := t.checkRow(i); err != nil {
		return nil, false, err
	}
	if t.data == nil {
		return []float64{}, t.set[i], nil
	}
	return mat.Row(nil, i, t.data), t.set[i], nil
}

// IsSet reports whether row i has been written.
func (t *Table) IsSet(i int) bool {
	return i >= 0 && i < t.rows && t.set[i]
}

// Unset returns the indices of rows that still hold placeholders.
func (t *Table) Unset() []int {
	var idx []int
	for i, ok := range t.set {
		if !ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// Column returns a copy of the named column over all rows.
func (t *Table) Column(name string) ([]float64, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownColumn)
	}
	if t.data == nil {
		return []float64{}, nil
	}
	return mat.Col(nil, j, t.data), nil
}

// Records renders the header and every row as strings.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, t.rows+1)
	records = append(records, t.ColumnNames())
	for i := 0; i < t.rows; i++ {
		row := make([]string, len(t.columns))
		for j := range t.columns {
			row[j] = strconv.FormatFloat(t.data.At(i, j), 'g', -1, 64)
		}
		records = append(records, row)
	}
	return records
}
