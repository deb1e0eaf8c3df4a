package report

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/lotuslake_go/internal/lake"
)

// lakeGrid lays a table variable out over two parameters. Cells without a
// simulation hold NaN.
type lakeGrid struct {
	xs, ys []float64
	z      [][]float64 // [row][col]
}

func (g *lakeGrid) Dims() (c, r int)   { return len(g.xs), len(g.ys) }
func (g *lakeGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g *lakeGrid) X(c int) float64    { return g.xs[c] }
func (g *lakeGrid) Y(r int) float64    { return g.ys[r] }

func (g *lakeGrid) Min() float64 {
	min := math.Inf(1)
	for _, row := range g.z {
		for _, v := range row {
			if !math.IsNaN(v) && v < min {
				min = v
			}
		}
	}
	return min
}

func (g *lakeGrid) Max() float64 {
	max := math.Inf(-1)
	for _, row := range g.z {
		for _, v := range row {
			if !math.IsNaN(v) && v > max {
				max = v
			}
		}
	}
	return max
}

func distinctSorted(values []float64) ([]float64, map[float64]int) {
	index := make(map[float64]int)
	var out []float64
	for _, v := range values {
		if _, ok := index[v]; !ok {
			index[v] = 0
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	for i, v := range out {
		index[v] = i
	}
	return out, index
}

func newLakeGrid(table *lake.Table, x, y, z string) (*lakeGrid, error) {
	xcol, err := table.Column(x)
	if err != nil {
		return nil, err
	}
	ycol, err := table.Column(y)
	if err != nil {
		return nil, err
	}
	zcol, err := table.Column(z)
	if err != nil {
		return nil, err
	}

	var xv, yv []float64
	var rows []int
	for i := range xcol {
		if table.IsSet(i) {
			xv = append(xv, xcol[i])
			yv = append(yv, ycol[i])
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no written rows for heatmap")
	}

	g := &lakeGrid{}
	var xi, yi map[float64]int
	g.xs, xi = distinctSorted(xv)
	g.ys, yi = distinctSorted(yv)
	g.z = make([][]float64, len(g.ys))
	for r := range g.z {
		g.z[r] = make([]float64, len(g.xs))
		for c := range g.z[r] {
			g.z[r][c] = math.NaN()
		}
	}
	for _, i := range rows {
		g.z[yi[ycol[i]]][xi[xcol[i]]] = zcol[i]
	}
	return g, nil
}

// PlotLakeHeatmap draws variable z over the parameter plane (x, y). Where
// several runs share a parameter pair the later row wins.
func PlotLakeHeatmap(table *lake.Table, x, y, z string, width, height vg.Length) (*Figure, error) {
	if table == nil {
		return nil, fmt.Errorf("no lake table to plot")
	}
	grid, err := newLakeGrid(table, x, y, z)
	if err != nil {
		return nil, err
	}
	min, max := grid.Min(), grid.Max()
	if math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, fmt.Errorf("column %s has no finite values", z)
	}
	if min == max {
		max = min + 1
	}

	hm := plotter.NewHeatMap(grid, palette.Heat(16, 1))
	hm.Min = min
	hm.Max = max
	hm.NaN = color.Gray{Y: 200}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s over %s and %s (%s to %s)", z, x, y, formatValue(min), formatValue(max))
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(hm)

	return newFigure(width, height, p), nil
}
