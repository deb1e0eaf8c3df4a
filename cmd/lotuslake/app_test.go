package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/lotuslake_go/internal/config"
	"github.com/user/lotuslake_go/internal/export"
	"github.com/user/lotuslake_go/internal/lake"
)

// writeRun writes a 3d force file whose pressure lift alternates between
// +gap and -gap and whose pressure drag is the constant dim.
func writeRun(t *testing.T, root, name string, dim, gap float64) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))

	var b strings.Builder
	b.WriteString("# time px py pz vx vy vz\n")
	for i := 0; i < 40; i++ {
		lift := gap
		if i%2 == 1 {
			lift = -gap
		}
		fmt.Fprintf(&b, "%g %g %g 0 0 0 0\n", float64(i)*0.05, dim, lift)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, lake.DefaultMarkerFile), []byte(b.String()), 0644))
}

func gapLake(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeRun(t, root, "d1_g0.2", 1, 0.2)
	writeRun(t, root, "d1_g0.4", 1, 0.4)
	writeRun(t, root, "d2_g0.2", 2, 0.2)
	// no marker: not a finished run
	require.NoError(t, os.MkdirAll(filepath.Join(root, "d2_g0.4"), 0755))
	return root
}

func gapConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ProjectName = "gap study"
	cfg.RootPath = root
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.Groups = map[string]config.ColumnMap{
		config.DefaultParametersKey: {{Name: "dimensions", Key: "d"}, {Name: "gap", Key: "g"}},
		config.DefaultVariablesKey:  {{Name: "lift_mad", Key: "lMad"}, {Name: "drag_mean", Key: "dMean"}},
	}
	cfg.Signal.SkipRows = 0
	cfg.Signal.Range = []float64{0.5, 1}
	cfg.Plot.X = "gap"
	cfg.Plot.Y = "lift_mad"
	cfg.Plot.GroupBy = "dimensions"
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRun(t *testing.T) {
	cfg := gapConfig(t, gapLake(t))
	cfg.Plot.Heatmap = "lift_mad"
	cfg.Export.XLSX = true
	cfg.Export.Report = true

	var status bytes.Buffer
	res, err := NewApp(cfg, &status).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"d1_g0.2", "d1_g0.4", "d2_g0.2"}, res.Simulations)
	tbl := res.Table
	require.Equal(t, 3, tbl.Rows())
	assert.Equal(t, []string{"dimensions", "gap", "lift_mad", "drag_mean"}, tbl.ColumnNames())
	assert.Empty(t, tbl.Unset())

	want := [][]float64{
		{1, 0.2, 0.2, 1},
		{1, 0.4, 0.4, 1},
		{2, 0.2, 0.2, 2},
	}
	for i, w := range want {
		row, set, err := tbl.Row(i)
		require.NoError(t, err)
		assert.True(t, set)
		assert.InDeltaSlice(t, w, row, 1e-12, "row %d", i)
	}

	out := cfg.OutputDir
	for _, f := range []string{
		"d1_g0.2.pdf", "d1_g0.4.pdf", "d2_g0.2.pdf",
		"gap study.png", "gap study_heatmap.png",
		"gap study.csv", "gap study.xlsx", "gap study_report.pdf",
	} {
		assert.FileExists(t, filepath.Join(out, f))
		assert.Contains(t, res.Files, filepath.Join(out, f))
	}
	assert.Contains(t, status.String(), "Found 3 simulations.")

	back, err := export.ReadCSV(filepath.Join(out, "gap study.csv"))
	require.NoError(t, err)
	assert.Equal(t, tbl.Records(), back.Records())
}

func TestRunSimulationNumber(t *testing.T) {
	root := gapLake(t)

	cfg := gapConfig(t, root)
	cfg.SimulationNumber = 3
	_, err := NewApp(cfg, nil).Run(context.Background())
	require.NoError(t, err)

	cfg = gapConfig(t, root)
	cfg.SimulationNumber = 4
	_, err = NewApp(cfg, nil).Run(context.Background())
	require.Error(t, err)
	assert.True(t, lake.IsConfigError(err))
	assert.ErrorIs(t, err, lake.ErrRowCountMismatch)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "d1_g0.2.pdf"))
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		check  func(error) bool
	}{
		{
			name: "unknown stat selector",
			mutate: func(cfg *config.Config) {
				cfg.Groups[config.DefaultVariablesKey] = config.ColumnMap{{Name: "lift_skew", Key: "lSkew"}}
			},
			check: lake.IsConfigError,
		},
		{
			name: "parameter missing from names",
			mutate: func(cfg *config.Config) {
				cfg.Groups[config.DefaultParametersKey] = config.ColumnMap{{Name: "reynolds", Key: "re"}}
			},
			check: lake.IsParseError,
		},
		{
			name: "duplicate column",
			mutate: func(cfg *config.Config) {
				cfg.Groups[config.DefaultVariablesKey] = config.ColumnMap{{Name: "gap", Key: "lMad"}}
			},
			check: lake.IsConfigError,
		},
		{
			name:   "missing root",
			mutate: func(cfg *config.Config) { cfg.RootPath = filepath.Join(cfg.RootPath, "nope") },
			check:  lake.IsFilesystemError,
		},
		{
			name:   "no finished runs",
			mutate: func(cfg *config.Config) { cfg.MarkerFile = "fort.10" },
			check:  lake.IsFilesystemError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := gapConfig(t, gapLake(t))
			tt.mutate(cfg)
			_, err := NewApp(cfg, nil).Run(context.Background())
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error class: %v", err)
		})
	}
}

func TestRunOverride(t *testing.T) {
	cfg := gapConfig(t, gapLake(t))
	cfg.AllowOverride = true
	cfg.Plot.Y = "gap"
	cfg.Groups[config.DefaultVariablesKey] = config.ColumnMap{{Name: "gap", Key: "lMad"}}

	res, err := NewApp(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"dimensions", "gap"}, res.Table.ColumnNames())
	col, err := res.Table.Column("gap")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.2, 0.4, 0.2}, col, 1e-12)
}

func TestRunCancelled(t *testing.T) {
	cfg := gapConfig(t, gapLake(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewApp(cfg, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScanCommand(t *testing.T) {
	root := gapLake(t)
	out, err := execute(t, "scan", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, "d1_g0.2\nd1_g0.4\nd2_g0.2\n", out)
}

func TestParseCommand(t *testing.T) {
	out, err := execute(t, "parse", "d1.5_g0.2", "re100")
	require.NoError(t, err)
	assert.Equal(t, "d1.5_g0.2: d=1.5 g=0.2\nre100: re=100\n", out)

	_, err = execute(t, "parse", "d_g0.2")
	assert.Error(t, err)
}

func TestInitRunPlotCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "lotuslake.yaml")

	_, err := execute(t, "init-config", "-o", cfgPath)
	require.NoError(t, err)
	_, err = execute(t, "init-config", "-o", cfgPath)
	assert.Error(t, err)

	cfg := gapConfig(t, gapLake(t))
	require.NoError(t, cfg.Write(cfgPath))

	out, err := execute(t, "run", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "d1_g0.4")
	assert.Contains(t, out, "lift_mad")

	out, err = execute(t, "plot", "-c", cfgPath, "--ascii")
	require.NoError(t, err)
	assert.Contains(t, out, "lift_mad vs gap, per dimensions: 1, 2")

	require.NoError(t, os.Remove(filepath.Join(cfg.OutputDir, "gap study.png")))
	_, err = execute(t, "plot", "-c", cfgPath, "--y", "drag_mean")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "gap study.png"))
}
