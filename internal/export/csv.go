package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/user/lotuslake_go/internal/lake"
)

// WriteCSV writes the table with a header row to path, creating parent
// directories as needed. Rows never written are left as empty fields.
func WriteCSV(path string, table *lake.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(csvRecords(table)); err != nil {
		file.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}
	return file.Close()
}

func csvRecords(table *lake.Table) [][]string {
	records := table.Records()
	for i := 1; i < len(records); i++ {
		if table.IsSet(i - 1) {
			continue
		}
		for j := range records[i] {
			records[i][j] = ""
		}
	}
	return records
}

// ReadCSV loads a table written by WriteCSV. Rows whose fields are all empty
// stay unset; every other row is marked set.
func ReadCSV(path string) (*lake.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}

	columns := make([]lake.Column, len(records[0]))
	for i, name := range records[0] {
		columns[i] = lake.Column{Name: name}
	}
	table := lake.NewTable(columns, len(records)-1)
	for i, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		values := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, lake.NewParseError(fmt.Sprintf("%s row %d column %s", path, i+2, columns[j].Name), err)
			}
			values[j] = v
		}
		if err := table.SetRow(i, values); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func blankRecord(rec []string) bool {
	for _, field := range rec {
		if field != "" {
			return false
		}
	}
	return true
}
