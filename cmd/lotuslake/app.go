package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot/vg"

	"github.com/user/lotuslake_go/internal/analysis"
	"github.com/user/lotuslake_go/internal/config"
	"github.com/user/lotuslake_go/internal/ctxlog"
	"github.com/user/lotuslake_go/internal/export"
	"github.com/user/lotuslake_go/internal/lake"
	"github.com/user/lotuslake_go/internal/parser"
	"github.com/user/lotuslake_go/internal/report"
)

// App runs one lake study.
type App struct {
	cfg *config.Config
	out io.Writer
}

// RunResult is what a completed study produced.
type RunResult struct {
	Table       *lake.Table
	Simulations []string
	Files       []string
}

// NewApp creates an App for cfg; status lines go to out.
func NewApp(cfg *config.Config, out io.Writer) *App {
	if out == nil {
		out = io.Discard
	}
	return &App{cfg: cfg, out: out}
}

func (a *App) sendStatus(ctx context.Context, message string, args ...any) {
	ctxlog.FromContext(ctx).Info(message, args...)
	fmt.Fprintln(a.out, message)
}

func (a *App) sendWarning(ctx context.Context, message string, args ...any) {
	ctxlog.FromContext(ctx).Warn(message, args...)
	fmt.Fprintln(a.out, "warning: "+message)
}

// Run scans the lake, post-processes every simulation into the lake table
// and writes the configured plots and exports. Any failure aborts the run.
func (a *App) Run(ctx context.Context) (*RunResult, error) {
	cfg := a.cfg

	selectors, err := a.variableSelectors()
	if err != nil {
		return nil, err
	}

	a.sendStatus(ctx, fmt.Sprintf("Scanning: %s", cfg.RootPath), "marker", cfg.MarkerFile)
	sims, err := lake.NewScanner(cfg.RootPath, cfg.MarkerFile).Scan()
	if err != nil {
		return nil, err
	}
	if len(sims) == 0 {
		return nil, lake.NewFilesystemError(fmt.Sprintf("no simulation directories with %s under %s", cfg.MarkerFile, cfg.RootPath), nil).
			WithContext("path", cfg.RootPath)
	}
	a.sendStatus(ctx, fmt.Sprintf("Found %d simulations.", len(sims)))

	n := cfg.SimulationNumber
	if n == 0 {
		n = len(sims)
	} else if n != len(sims) {
		return nil, lake.NewConfigError(fmt.Sprintf("simulation_number is %d but %d directories were found", n, len(sims)), lake.ErrRowCountMismatch).
			WithContext("expected", n).
			WithContext("found", len(sims))
	}

	var opts []lake.TableOption
	if cfg.AllowOverride {
		opts = append(opts, lake.WithOverride())
	}
	desc := cfg.Descriptor().WithSimulationNumber(n)
	tbl, err := lake.BuildLakeTable(desc, cfg.ParametersKey, cfg.VariablesKey, opts...)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, lake.NewFilesystemError("failed to create output directory", err).WithContext("path", cfg.OutputDir)
	}

	res := &RunResult{Table: tbl}
	analysisOpts := cfg.AnalysisOptions()
	for i, sim := range sims {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a.sendStatus(ctx, fmt.Sprintf("Processing %d/%d: %s", i+1, len(sims), sim.Name))

		params, err := parser.ParseSimulationName(sim.Name)
		if err != nil {
			return nil, err
		}
		post, err := analysis.PostProcess(sim.Name, sim.DataFile, analysisOpts)
		if err != nil {
			return nil, lake.NewParseError("failed to post-process "+sim.Name, err).WithContext("path", sim.DataFile)
		}
		for _, w := range post.Warnings {
			a.sendWarning(ctx, fmt.Sprintf("%s: %s", sim.Name, w))
		}

		if cfg.Signal.PDF {
			path := filepath.Join(cfg.OutputDir, sim.Name+".pdf")
			if err := a.writeSignalPDF(path, post); err != nil {
				return nil, err
			}
			res.Files = append(res.Files, path)
		}

		row, err := fillRow(tbl, cfg.ParametersKey, sim.Name, params, post, selectors)
		if err != nil {
			return nil, err
		}
		if err := tbl.SetRow(i, row); err != nil {
			return nil, err
		}
		res.Simulations = append(res.Simulations, sim.Name)
	}
	a.sendStatus(ctx, fmt.Sprintf("Lake table complete: %d rows, %d columns.", tbl.Rows(), tbl.Cols()))

	files, err := a.writeOutputs(ctx, desc, res)
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, files...)
	return res, nil
}

// variableSelectors parses every variable key up front so a typo fails
// before any data file is read.
func (a *App) variableSelectors() (map[string]analysis.Selector, error) {
	vars, ok := a.cfg.Groups[a.cfg.VariablesKey]
	if !ok {
		return nil, lake.NewConfigError("variables group "+a.cfg.VariablesKey, lake.ErrMissingGroup)
	}
	selectors := make(map[string]analysis.Selector, len(vars))
	for _, v := range vars {
		sel, err := analysis.ParseSelector(v.Key)
		if err != nil {
			return nil, lake.NewConfigError("column "+v.Name, err).WithContext("column", v.Name)
		}
		if sel.Signal == analysis.SignalSide && a.cfg.Signal.Layout == string(parser.Layout2D) {
			return nil, lake.NewConfigError(fmt.Sprintf("column %s selects the side force, which 2d data does not have", v.Name), nil).
				WithContext("column", v.Name)
		}
		selectors[v.Key] = sel
	}
	return selectors, nil
}

func fillRow(tbl *lake.Table, parametersKey, name string, params map[string]float64, post *analysis.Result, selectors map[string]analysis.Selector) ([]float64, error) {
	cols := tbl.Columns()
	row := make([]float64, len(cols))
	for j, col := range cols {
		if col.Source == parametersKey {
			v, ok := params[col.Key]
			if !ok {
				return nil, lake.NewParseError(fmt.Sprintf("simulation %s has no parameter %q for column %s", name, col.Key, col.Name), nil).
					WithContext("simulation", name)
			}
			row[j] = v
			continue
		}
		sel, ok := selectors[col.Key]
		if !ok {
			return nil, lake.NewConfigError("no stat selector for column "+col.Name, nil)
		}
		v, err := post.Select(sel)
		if err != nil {
			return nil, lake.NewConfigError("column "+col.Name, err)
		}
		row[j] = v
	}
	return row, nil
}

func (a *App) writeSignalPDF(path string, post *analysis.Result) error {
	sc := a.cfg.Signal
	opts := report.SignalPlotOptions{
		ShowViscous: sc.ShowViscous,
		PlotStats:   sc.PlotStats,
		Width:       vg.Length(sc.WidthIn) * vg.Inch,
		Height:      vg.Length(sc.HeightIn) * vg.Inch,
	}

	lift, err := report.PlotLiftSignal(post.Data, post.Lift, opts)
	if err != nil {
		return fmt.Errorf("%s: lift plot: %w", post.Name, err)
	}
	drag, err := report.PlotDragSignal(post.Data, post.Drag, opts)
	if err != nil {
		return fmt.Errorf("%s: drag plot: %w", post.Name, err)
	}

	var images []report.FigureImage
	for _, f := range []struct {
		fig           *report.Figure
		name, caption string
	}{
		{lift, "lift", fmt.Sprintf("Lift: mean %.4g, mad %.4g", post.Lift.Mean, post.Lift.MAD)},
		{drag, "drag", fmt.Sprintf("Drag: mean %.4g, mad %.4g", post.Drag.Mean, post.Drag.MAD)},
	} {
		img, err := f.fig.Image(f.name, f.caption)
		if err != nil {
			return fmt.Errorf("%s: %w", post.Name, err)
		}
		images = append(images, img)
	}
	return report.SaveFiguresToPDF(path, post.Name, images)
}

// writeOutputs writes the study plot, heatmap and exports. Plot errors
// abort like any other failure.
func (a *App) writeOutputs(ctx context.Context, desc lake.Descriptor, res *RunResult) ([]string, error) {
	cfg := a.cfg
	var files []string
	var images []report.FigureImage
	base := filepath.Join(cfg.OutputDir, cfg.ProjectName)

	if cfg.Plot.X != "" && cfg.Plot.Y != "" {
		a.sendStatus(ctx, fmt.Sprintf("Plot: %s against %s", cfg.Plot.Y, cfg.Plot.X))
		fig, err := report.PlotLakeTable(res.Table, cfg.Plot.X, cfg.Plot.Y, plotOptions(cfg.Plot))
		if err != nil {
			return nil, err
		}
		path := base + "." + cfg.Plot.Format
		if err := fig.Save(path); err != nil {
			return nil, err
		}
		files = append(files, path)
		if cfg.Export.Report {
			img, err := fig.Image("study", fmt.Sprintf("%s against %s", cfg.Plot.Y, cfg.Plot.X))
			if err != nil {
				return nil, err
			}
			images = append(images, img)
		}
	}

	if cfg.Plot.Heatmap != "" {
		if cfg.Plot.GroupBy == "" {
			a.sendWarning(ctx, "heatmap needs plot.group_by as its second axis, skipping")
		} else {
			a.sendStatus(ctx, fmt.Sprintf("Heatmap: %s", cfg.Plot.Heatmap))
			fig, err := report.PlotLakeHeatmap(res.Table, cfg.Plot.X, cfg.Plot.GroupBy, cfg.Plot.Heatmap,
				vg.Length(cfg.Plot.WidthIn)*vg.Inch, vg.Length(cfg.Plot.HeightIn)*vg.Inch)
			if err != nil {
				return nil, err
			}
			path := base + "_heatmap.png"
			if err := fig.Save(path); err != nil {
				return nil, err
			}
			files = append(files, path)
			if cfg.Export.Report {
				img, err := fig.Image("heatmap", cfg.Plot.Heatmap)
				if err != nil {
					return nil, err
				}
				images = append(images, img)
			}
		}
	}

	if cfg.Export.CSV {
		path := base + ".csv"
		if err := export.WriteCSV(path, res.Table); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	if cfg.Export.XLSX {
		path := base + ".xlsx"
		if err := export.WriteXLSX(path, "lake", res.Table); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	if cfg.Export.Report {
		path := base + "_report.pdf"
		a.sendStatus(ctx, fmt.Sprintf("Generating PDF: %s", path))
		err := report.BuildLakeReport(path, report.LakeReport{
			Descriptor:  desc,
			Table:       res.Table,
			Simulations: res.Simulations,
			Figures:     images,
		})
		if err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	for _, f := range files {
		a.sendStatus(ctx, "Wrote "+f)
	}
	return files, nil
}

func plotOptions(pc config.PlotConfig) report.PlotOptions {
	return report.PlotOptions{
		GroupBy:  pc.GroupBy,
		Subplots: pc.Subplots,
		Width:    vg.Length(pc.WidthIn) * vg.Inch,
		Height:   vg.Length(pc.HeightIn) * vg.Inch,
	}
}
