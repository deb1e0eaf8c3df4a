package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guptarohit/asciigraph"

	"github.com/user/lotuslake_go/internal/lake"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	unsetStyle  = cellStyle.Foreground(lipgloss.Color("241"))
)

// ASCIIPreview renders y against x as a terminal chart, one series per
// group. Points are ordered by x within a series.
func ASCIIPreview(tbl *lake.Table, x, y, groupBy string) (string, error) {
	if tbl == nil || tbl.Rows() == 0 {
		return "", fmt.Errorf("no lake table rows to plot")
	}
	groups, err := groupRows(tbl, x, y, groupBy)
	if err != nil {
		return "", err
	}

	series := make([][]float64, len(groups))
	labels := make([]string, len(groups))
	for i, g := range groups {
		pts := append(g.pts[:0:0], g.pts...)
		sort.SliceStable(pts, func(a, b int) bool { return pts[a].X < pts[b].X })
		ys := make([]float64, len(pts))
		for j, p := range pts {
			ys[j] = p.Y
		}
		series[i] = ys
		labels[i] = formatValue(g.value)
	}

	caption := fmt.Sprintf("%s vs %s", y, x)
	if groupBy != "" {
		caption += fmt.Sprintf(", per %s: %s", groupBy, strings.Join(labels, ", "))
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(12),
		asciigraph.Width(60),
		asciigraph.Caption(caption),
	), nil
}

// RenderTable renders the lake table for the terminal. Row labels come from
// names when given; rows never written are dimmed and shown as "-".
func RenderTable(tbl *lake.Table, names []string) string {
	headers := append([]string{"simulation"}, tbl.ColumnNames()...)

	rows := make([][]string, 0, tbl.Rows())
	for i := 0; i < tbl.Rows(); i++ {
		label := strconv.Itoa(i)
		if i < len(names) {
			label = names[i]
		}
		values, set, _ := tbl.Row(i)
		row := []string{label}
		for _, v := range values {
			if set {
				row = append(row, fmt.Sprintf("%.4g", v))
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && !tbl.IsSet(row):
				return unsetStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}
