package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/user/lotuslake_go/internal/config"
	"github.com/user/lotuslake_go/internal/ctxlog"
	"github.com/user/lotuslake_go/internal/export"
	"github.com/user/lotuslake_go/internal/lake"
	"github.com/user/lotuslake_go/internal/logging"
	"github.com/user/lotuslake_go/internal/parser"
	"github.com/user/lotuslake_go/internal/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "lotuslake",
		Short:        "collect Lotus simulation runs into a lake table",
		SilenceUsage: true,
	}

	var root, marker string
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "list simulation directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := lake.ListSimulationDirectories(root, marker)
			if err != nil {
				return err
			}
			for _, d := range dirs {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
	scanCmd.Flags().StringVar(&root, "root", ".", "lake directory")
	scanCmd.Flags().StringVar(&marker, "marker", lake.DefaultMarkerFile, "marker file name")

	parseCmd := &cobra.Command{
		Use:   "parse [name]...",
		Short: "print the parameters encoded in simulation names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				params, err := parser.ParseSimulationName(name)
				if err != nil {
					return err
				}
				keys := make([]string, 0, len(params))
				for k := range params {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				fmt.Fprintf(cmd.OutOrStdout(), "%s:", name)
				for _, k := range keys {
					fmt.Fprintf(cmd.OutOrStdout(), " %s=%g", k, params[k])
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	var configFile string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "build the lake table and write plots and exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), cfg)
			res, err := NewApp(cfg, cmd.OutOrStdout()).Run(ctx)
			if err != nil {
				ctxlog.FromContext(ctx).Error("run failed", "error", err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.RenderTable(res.Table, res.Simulations))
			return nil
		},
	}
	runCmd.Flags().StringVarP(&configFile, "config", "c", "lotuslake.yaml", "config file path (yaml)")

	var tablePath, x, y, groupBy string
	var ascii bool
	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot a previously exported lake table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if x != "" {
				cfg.Plot.X = x
			}
			if y != "" {
				cfg.Plot.Y = y
			}
			if groupBy != "" {
				cfg.Plot.GroupBy = groupBy
			}
			if tablePath == "" {
				tablePath = filepath.Join(cfg.OutputDir, cfg.ProjectName+".csv")
			}
			return replot(withLogger(cmd.Context(), cfg), cmd, cfg, tablePath, ascii)
		},
	}
	plotCmd.Flags().StringVarP(&configFile, "config", "c", "lotuslake.yaml", "config file path (yaml)")
	plotCmd.Flags().StringVar(&tablePath, "table", "", "exported lake table (csv), defaults to <output_dir>/<project_name>.csv")
	plotCmd.Flags().StringVar(&x, "x", "", "x column, overrides plot.x")
	plotCmd.Flags().StringVar(&y, "y", "", "y column, overrides plot.y")
	plotCmd.Flags().StringVar(&groupBy, "group", "", "group column, overrides plot.group_by")
	plotCmd.Flags().BoolVar(&ascii, "ascii", false, "print a terminal preview instead of writing a figure")

	var outPath string
	initCmd := &cobra.Command{
		Use:   "init-config",
		Short: "write an example configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists", outPath)
			}
			if err := config.Example().Write(outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&outPath, "output", "o", "lotuslake.yaml", "config file to create")

	rootCmd.AddCommand(scanCmd, parseCmd, runCmd, plotCmd, initCmd)
	return rootCmd
}

func withLogger(ctx context.Context, cfg *config.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctxlog.WithLogger(ctx, logging.New(cfg.Logging, os.Stderr))
}

func replot(ctx context.Context, cmd *cobra.Command, cfg *config.Config, tablePath string, ascii bool) error {
	if cfg.Plot.X == "" || cfg.Plot.Y == "" {
		return lake.NewConfigError("plot needs x and y columns", nil)
	}
	tbl, err := export.ReadCSV(tablePath)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("loaded lake table", "path", tablePath, "rows", tbl.Rows())

	if ascii {
		out, err := report.ASCIIPreview(tbl, cfg.Plot.X, cfg.Plot.Y, cfg.Plot.GroupBy)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	fig, err := report.PlotLakeTable(tbl, cfg.Plot.X, cfg.Plot.Y, plotOptions(cfg.Plot))
	if err != nil {
		return err
	}
	path := filepath.Join(cfg.OutputDir, cfg.ProjectName+"."+cfg.Plot.Format)
	if err := fig.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
