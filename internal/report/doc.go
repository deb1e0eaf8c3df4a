// Package report renders lake study output: line plots of the lake table,
// lift and drag signal figures, parameter heatmaps, PDF reports and
// terminal previews.
//
// PlotLakeTable mirrors the usual study plot: a variable against a
// parameter, optionally one line (or one axis with Subplots) per value of a
// grouping parameter. The returned Figure keeps every axis; Last returns the
// bottom one.
package report
