package parser

import "fmt"

// Layout selects the column set of a Lotus force file.
type Layout string

const (
	Layout3D Layout = "3d"
	Layout2D Layout = "2d"
)

const (
	ColTime           = "time"
	ColPressureForceX = "pressureForceX"
	ColPressureForceY = "pressureForceY"
	ColPressureForceZ = "pressureForceZ"
	ColViscousForceX  = "viscousForceX"
	ColViscousForceY  = "viscousForceY"
	ColViscousForceZ  = "viscousForceZ"
)

var layoutColumns = map[Layout][]string{
	Layout3D: {ColTime, ColPressureForceX, ColPressureForceY, ColPressureForceZ, ColViscousForceX, ColViscousForceY, ColViscousForceZ},
	Layout2D: {ColTime, ColPressureForceX, ColPressureForceY, ColViscousForceX, ColViscousForceY},
}

// Columns returns the column names of the layout in file order.
func (l Layout) Columns() ([]string, error) {
	cols, ok := layoutColumns[l]
	if !ok {
		return nil, fmt.Errorf("unknown force file layout %q", string(l))
	}
	return append([]string(nil), cols...), nil
}

// ForceData holds the samples of a force file, one slice per column.
type ForceData struct {
	Columns     []string
	Data        map[string][]float64
	NumSamples  int
	ParseErrors []string // rows skipped while reading
}

// NewForceData creates empty data with the given columns.
func NewForceData(columns []string) *ForceData {
	d := &ForceData{
		Columns:     append([]string(nil), columns...),
		Data:        make(map[string][]float64, len(columns)),
		ParseErrors: make([]string, 0),
	}
	for _, c := range columns {
		d.Data[c] = make([]float64, 0)
	}
	return d
}

// Column returns the samples of the named column.
func (d *ForceData) Column(name string) ([]float64, bool) {
	v, ok := d.Data[name]
	return v, ok
}

// AddColumn appends a derived column. It must have one value per sample.
func (d *ForceData) AddColumn(name string, values []float64) error {
	if len(values) != d.NumSamples {
		return fmt.Errorf("column %s has %d values, data has %d samples", name, len(values), d.NumSamples)
	}
	if _, exists := d.Data[name]; !exists {
		d.Columns = append(d.Columns, name)
	}
	d.Data[name] = values
	return nil
}

// Skip returns a copy of d without its first n samples.
func (d *ForceData) Skip(n int) *ForceData {
	if n < 0 {
		n = 0
	}
	if n > d.NumSamples {
		n = d.NumSamples
	}
	out := &ForceData{
		Columns:     append([]string(nil), d.Columns...),
		Data:        make(map[string][]float64, len(d.Data)),
		NumSamples:  d.NumSamples - n,
		ParseErrors: append([]string(nil), d.ParseErrors...),
	}
	for name, values := range d.Data {
		out.Data[name] = append([]float64(nil), values[n:]...)
	}
	return out
}
