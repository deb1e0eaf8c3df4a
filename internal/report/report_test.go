package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/lotuslake_go/internal/analysis"
	"github.com/user/lotuslake_go/internal/lake"
	"github.com/user/lotuslake_go/internal/parser"
)

var pngMagic = []byte("\x89PNG")

// gapTable holds two dimensions x three gaps, the last row left unwritten.
func gapTable(t *testing.T) *lake.Table {
	t.Helper()
	cols := []lake.Column{{Name: "dimensions"}, {Name: "gap"}, {Name: "lift_mad"}, {Name: "drag_mean"}}
	tbl := lake.NewTable(cols, 7)
	rows := [][]float64{
		{1, 0.2, 0.05, 1.4},
		{1, 0.4, 0.03, 1.3},
		{1, 0.8, 0.02, 1.2},
		{2, 0.2, 0.09, 1.6},
		{2, 0.4, 0.06, 1.5},
		{2, 0.8, 0.04, 1.45},
	}
	for i, r := range rows {
		require.NoError(t, tbl.SetRow(i, r))
	}
	return tbl
}

func TestPlotLakeTableSingle(t *testing.T) {
	fig, err := PlotLakeTable(gapTable(t), "gap", "lift_mad", PlotOptions{})
	require.NoError(t, err)

	require.Len(t, fig.Axes(), 1)
	p := fig.Last()
	assert.Equal(t, "gap", p.X.Label.Text)
	assert.Equal(t, "lift_mad", p.Y.Label.Text)
	assert.Equal(t, DefaultWidth, fig.Width)
	assert.Equal(t, DefaultHeight, fig.Height)

	png, err := fig.PNG()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestPlotLakeTableGrouped(t *testing.T) {
	fig, err := PlotLakeTable(gapTable(t), "gap", "lift_mad", PlotOptions{GroupBy: "dimensions"})
	require.NoError(t, err)

	require.Len(t, fig.Axes(), 1)
	assert.Equal(t, "gap vs lift_mad, per dimensions", fig.Last().Title.Text)
}

func TestPlotLakeTableSubplots(t *testing.T) {
	fig, err := PlotLakeTable(gapTable(t), "gap", "lift_mad", PlotOptions{GroupBy: "dimensions", Subplots: true})
	require.NoError(t, err)

	axes := fig.Axes()
	require.Len(t, axes, 2)
	assert.Equal(t, "dimensions 1", axes[0].Title.Text)
	assert.Equal(t, "dimensions 2", axes[1].Title.Text)
	assert.Same(t, axes[1], fig.Last())

	path := filepath.Join(t.TempDir(), "study.png")
	require.NoError(t, fig.Save(path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, pngMagic))
}

func TestPlotLakeTableErrors(t *testing.T) {
	tbl := gapTable(t)

	_, err := PlotLakeTable(tbl, "gap", "lift_mad", PlotOptions{Subplots: true})
	assert.ErrorIs(t, err, ErrSubplotsNeedGroup)

	_, err = PlotLakeTable(tbl, "reynolds", "lift_mad", PlotOptions{})
	assert.ErrorIs(t, err, lake.ErrUnknownColumn)

	_, err = PlotLakeTable(lake.NewTable([]lake.Column{{Name: "gap"}}, 2), "gap", "gap", PlotOptions{})
	assert.Error(t, err)
}

func TestFigureSaveFormats(t *testing.T) {
	fig, err := PlotLakeTable(gapTable(t), "gap", "drag_mean", PlotOptions{GroupBy: "dimensions"})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, fig.Save(filepath.Join(dir, "study.svg")))
	require.NoError(t, fig.Save(filepath.Join(dir, "study.pdf")))
	require.NoError(t, fig.Save(filepath.Join(dir, "Gap study")))
	assert.FileExists(t, filepath.Join(dir, "Gap study.png"))

	assert.Error(t, fig.Save(filepath.Join(dir, "study.bmp")))
}

func TestPlotLakeHeatmap(t *testing.T) {
	fig, err := PlotLakeHeatmap(gapTable(t), "gap", "dimensions", "lift_mad", 0, 0)
	require.NoError(t, err)

	grid, err := newLakeGrid(gapTable(t), "gap", "dimensions", "lift_mad")
	require.NoError(t, err)
	c, r := grid.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 2, r)
	assert.Equal(t, 0.09, grid.Z(0, 1))
	assert.Equal(t, 0.02, grid.Min())
	assert.Equal(t, 0.09, grid.Max())

	png, err := fig.PNG()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func signalData(t *testing.T) (*parser.ForceData, analysis.SignalStats, analysis.SignalStats) {
	t.Helper()
	var b strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "%g 1.0 %g 0.0 0.1 0.01 0.0\n", float64(i)*0.1, 0.5-float64(i%2))
	}
	data, err := parser.ParseForces(strings.NewReader(b.String()), parser.Layout3D)
	require.NoError(t, err)
	require.NoError(t, analysis.TotalForces(data))

	lift, err := analysis.CalculateSignalStats(data, analysis.ColTotalForceY, analysis.DefaultRange)
	require.NoError(t, err)
	drag, err := analysis.CalculateSignalStats(data, analysis.ColTotalForceX, analysis.DefaultRange)
	require.NoError(t, err)
	return data, lift, drag
}

func TestSignalPlotsToPDF(t *testing.T) {
	data, lift, drag := signalData(t)
	opts := SignalPlotOptions{ShowViscous: true, PlotStats: true}

	liftFig, err := PlotLiftSignal(data, lift, opts)
	require.NoError(t, err)
	assert.Equal(t, "Lift", liftFig.Last().Title.Text)
	dragFig, err := PlotDragSignal(data, drag, opts)
	require.NoError(t, err)

	liftImg, err := liftFig.Image("lift", "Lift force")
	require.NoError(t, err)
	dragImg, err := dragFig.Image("drag", "Drag force")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "d1_g0.2.pdf")
	require.NoError(t, SaveFiguresToPDF(path, "d1_g0.2", []FigureImage{liftImg, dragImg}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	assert.Error(t, SaveFiguresToPDF(path, "empty", nil))
}

func TestPlotSignalMissingColumn(t *testing.T) {
	data := parser.NewForceData([]string{parser.ColTime})
	_, err := PlotLiftSignal(data, analysis.SignalStats{}, SignalPlotOptions{})
	assert.Error(t, err)
}

func TestBuildLakeReport(t *testing.T) {
	tbl := gapTable(t)
	fig, err := PlotLakeTable(tbl, "gap", "lift_mad", PlotOptions{GroupBy: "dimensions"})
	require.NoError(t, err)
	img, err := fig.Image("study", "lift_mad against gap")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report", "lake.pdf")
	err = BuildLakeReport(path, LakeReport{
		Descriptor:  lake.Descriptor{ProjectName: "Gap study", GridProps: map[string]float64{"ppd": 64}},
		Table:       tbl,
		Simulations: []string{"d1_g0.2", "d1_g0.4", "d1_g0.8", "d2_g0.2", "d2_g0.4", "d2_g0.8"},
		Figures:     []FigureImage{img},
	})
	require.NoError(t, err)
	assert.FileExists(t, path)

	assert.Error(t, BuildLakeReport(path, LakeReport{}))
}

func TestASCIIPreview(t *testing.T) {
	out, err := ASCIIPreview(gapTable(t), "gap", "lift_mad", "dimensions")
	require.NoError(t, err)
	assert.Contains(t, out, "lift_mad vs gap, per dimensions: 1, 2")

	_, err = ASCIIPreview(gapTable(t), "gap", "missing", "")
	assert.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(gapTable(t), []string{"d1_g0.2"})
	assert.Contains(t, out, "simulation")
	assert.Contains(t, out, "lift_mad")
	assert.Contains(t, out, "d1_g0.2")
	assert.Contains(t, out, "0.05")
	assert.Contains(t, out, "-")
}
