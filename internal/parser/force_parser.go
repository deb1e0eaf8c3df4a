package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseForceFile reads a whitespace separated Lotus force file such as fort.9.
func ParseForceFile(path string, layout Layout) (*ForceData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open force file: %w", err)
	}
	defer file.Close()

	data, err := ParseForces(file, layout)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// ParseForces reads force samples from r. Blank lines and lines starting
// with '#' are ignored. Rows with too few fields or a bad number are skipped
// and reported in ParseErrors; fields beyond the layout are ignored.
func ParseForces(r io.Reader, layout Layout) (*ForceData, error) {
	columns, err := layout.Columns()
	if err != nil {
		return nil, err
	}
	data := NewForceData(columns)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	row := make([]float64, len(columns))
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < len(columns) {
			data.ParseErrors = append(data.ParseErrors, fmt.Sprintf("line %d: expected %d values, found %d", lineNo, len(columns), len(fields)))
			continue
		}

		ok := true
		for i := range columns {
			v, err := parseFortranFloat(fields[i])
			if err != nil {
				data.ParseErrors = append(data.ParseErrors, fmt.Sprintf("line %d: column %s: %v", lineNo, columns[i], err))
				ok = false
				break
			}
			row[i] = v
		}
		if !ok {
			continue
		}
		for i, c := range columns {
			data.Data[c] = append(data.Data[c], row[i])
		}
		data.NumSamples++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// parseFortranFloat accepts Fortran double precision exponents (1.0D-03).
func parseFortranFloat(s string) (float64, error) {
	s = strings.NewReplacer("D", "E", "d", "e").Replace(s)
	return strconv.ParseFloat(s, 64)
}
