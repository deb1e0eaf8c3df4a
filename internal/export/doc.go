// Package export writes lake tables to CSV and Excel workbooks and reads
// exported CSV tables back for re-plotting.
package export
