package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/lotuslake_go/internal/analysis"
	"github.com/user/lotuslake_go/internal/lake"
	"github.com/user/lotuslake_go/internal/parser"
)

// ErrSubplotsNeedGroup is returned when subplots are requested without a group column.
var ErrSubplotsNeedGroup = errors.New("subplots require a group column")

var plotColors = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}, // blue
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255}, // orange
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255}, // green
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255}, // red
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 255}, // purple
	color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 255}, // brown
}

// PlotOptions controls PlotLakeTable.
type PlotOptions struct {
	GroupBy  string
	Subplots bool
	Width    vg.Length
	Height   vg.Length
}

type group struct {
	value float64
	pts   plotter.XYs
}

// PlotLakeTable draws y against x from the written rows of a lake table.
// With GroupBy set, rows are split by the distinct values of that column
// and drawn as one line per group, or one axis per group with Subplots.
func PlotLakeTable(table *lake.Table, x, y string, opts PlotOptions) (*Figure, error) {
	if opts.Subplots && opts.GroupBy == "" {
		return nil, ErrSubplotsNeedGroup
	}
	if table == nil || table.Rows() == 0 {
		return nil, fmt.Errorf("no lake table rows to plot")
	}

	groups, err := groupRows(table, x, y, opts.GroupBy)
	if err != nil {
		return nil, err
	}

	if opts.GroupBy == "" {
		p := newAxis(x, y, "")
		if err := addLine(p, groups[0].pts, 0, ""); err != nil {
			return nil, err
		}
		return newFigure(opts.Width, opts.Height, p), nil
	}

	if opts.Subplots {
		axes := make([]*plot.Plot, 0, len(groups))
		for _, g := range groups {
			p := newAxis(x, y, fmt.Sprintf("%s %s", opts.GroupBy, formatValue(g.value)))
			if err := addLine(p, g.pts, 0, ""); err != nil {
				return nil, err
			}
			axes = append(axes, p)
		}
		return newFigure(opts.Width, opts.Height, axes...), nil
	}

	p := newAxis(x, y, fmt.Sprintf("%s vs %s, per %s", x, y, opts.GroupBy))
	for i, g := range groups {
		if err := addLine(p, g.pts, i, formatValue(g.value)); err != nil {
			return nil, err
		}
	}
	p.Legend.Top = true
	return newFigure(opts.Width, opts.Height, p), nil
}

// groupRows collects the (x, y) points of written rows in row order, split
// by groupBy values in ascending order. Without groupBy there is one group.
func groupRows(table *lake.Table, x, y, groupBy string) ([]group, error) {
	xs, err := table.Column(x)
	if err != nil {
		return nil, err
	}
	ys, err := table.Column(y)
	if err != nil {
		return nil, err
	}
	var gs []float64
	if groupBy != "" {
		if gs, err = table.Column(groupBy); err != nil {
			return nil, err
		}
	}

	byValue := make(map[float64]*group)
	var order []float64
	for i := range xs {
		if !table.IsSet(i) || math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		key := 0.0
		if gs != nil {
			key = gs[i]
		}
		g, ok := byValue[key]
		if !ok {
			g = &group{value: key}
			byValue[key] = g
			order = append(order, key)
		}
		g.pts = append(g.pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("no written rows with values for %s and %s", x, y)
	}

	sort.Float64s(order)
	groups := make([]group, len(order))
	for i, v := range order {
		groups[i] = *byValue[v]
	}
	return groups, nil
}

func newAxis(x, y, title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())
	return p
}

func addLine(p *plot.Plot, pts plotter.XYs, colorIndex int, label string) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to create line %s: %w", label, err)
	}
	line.Color = plotColors[colorIndex%len(plotColors)]
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	if label != "" {
		p.Legend.Add(label, line)
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SignalPlotOptions controls the lift and drag signal figures.
type SignalPlotOptions struct {
	ShowViscous bool
	PlotStats   bool
	Width       vg.Length
	Height      vg.Length
}

// PlotLiftSignal draws the total lift force against time.
func PlotLiftSignal(data *parser.ForceData, stats analysis.SignalStats, opts SignalPlotOptions) (*Figure, error) {
	return plotSignal(data, analysis.ColTotalForceY, parser.ColViscousForceY, "Lift", stats, opts)
}

// PlotDragSignal draws the total drag force against time.
func PlotDragSignal(data *parser.ForceData, stats analysis.SignalStats, opts SignalPlotOptions) (*Figure, error) {
	return plotSignal(data, analysis.ColTotalForceX, parser.ColViscousForceX, "Drag", stats, opts)
}

func plotSignal(data *parser.ForceData, column, viscousColumn, title string, stats analysis.SignalStats, opts SignalPlotOptions) (*Figure, error) {
	times, ok := data.Column(parser.ColTime)
	if !ok {
		return nil, fmt.Errorf("force data has no %s column", parser.ColTime)
	}
	values, ok := data.Column(column)
	if !ok {
		return nil, fmt.Errorf("force data has no %s column", column)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no samples to plot for %s", column)
	}

	p := newAxis("time", column, title)

	total, err := plotter.NewLine(seriesXYs(times, values))
	if err != nil {
		return nil, fmt.Errorf("failed to create line for %s: %w", column, err)
	}
	total.Color = plotColors[0]
	total.LineStyle.Width = vg.Points(1)
	p.Add(total)
	p.Legend.Add(column, total)

	if opts.ShowViscous {
		if viscous, ok := data.Column(viscousColumn); ok {
			vl, err := plotter.NewLine(seriesXYs(times, viscous))
			if err != nil {
				return nil, fmt.Errorf("failed to create line for %s: %w", viscousColumn, err)
			}
			vl.Color = color.Gray{Y: 128}
			vl.LineStyle.Width = vg.Points(0.8)
			p.Add(vl)
			p.Legend.Add(viscousColumn, vl)
		}
	}

	start, end := stats.Range.Bounds(len(times))
	if opts.PlotStats && stats.Samples > 0 && start < end && end <= len(times) {
		t0, t1 := times[start], times[end-1]

		mean, err := hline(t0, t1, stats.Mean, color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255}, []vg.Length{vg.Points(5), vg.Points(5)})
		if err != nil {
			return nil, err
		}
		p.Add(mean)
		p.Legend.Add(fmt.Sprintf("mean = %.4g", stats.Mean), mean)

		for i, v := range []float64{stats.Mean + stats.MAD, stats.Mean - stats.MAD} {
			band, err := hline(t0, t1, v, plotColors[1], []vg.Length{vg.Points(2), vg.Points(2)})
			if err != nil {
				return nil, err
			}
			p.Add(band)
			if i == 0 {
				p.Legend.Add(fmt.Sprintf("mad = %.4g", stats.MAD), band)
			}
		}
	}

	p.Legend.Top = true
	return newFigure(opts.Width, opts.Height, p), nil
}

func seriesXYs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if i >= len(ys) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

func hline(x0, x1, y float64, c color.Color, dashes []vg.Length) (*plotter.Line, error) {
	line, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y}, {X: x1, Y: y}})
	if err != nil {
		return nil, fmt.Errorf("failed to create reference line: %w", err)
	}
	line.Color = c
	line.LineStyle.Dashes = dashes
	return line, nil
}
