// Package lake discovers Lotus simulation runs in a lake directory and
// builds the lake table that collects one row of parameters and study
// variables per run.
//
// A lake is a directory whose immediate subdirectories are simulation runs.
// A subdirectory counts as a run when it contains the marker file (fort.9
// by default):
//
//	sims, err := lake.NewScanner("/data/gapStudy", "").Scan()
//
// The table columns come from a Descriptor's parameters and variables
// groups, merged in order:
//
//	tbl, err := lake.BuildLakeTable(desc, "simulation_parameters", "study_parameters")
//	err = tbl.SetRow(i, values)
//
// Rows start filled with Placeholder and are tracked as unset until written,
// so Unset reports runs that were never processed.
package lake
