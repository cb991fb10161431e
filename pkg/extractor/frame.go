package extractor

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// frame is a header plus string rows, the common shape of a sheet and
// a CSV file. Every row has exactly len(columns) cells.
type frame struct {
	columns []string
	rows    [][]string
}

func newFrame(records [][]string) *frame {
	if len(records) == 0 {
		return &frame{}
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		header[i] = name
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(header))
		copy(row, rec)
		rows = append(rows, row)
	}
	return &frame{columns: header, rows: rows}
}

func (f *frame) empty() bool {
	return len(f.columns) == 0 || len(f.rows) == 0
}

func (f *frame) head(n int) [][]string {
	if n > len(f.rows) {
		n = len(f.rows)
	}
	return f.rows[:n]
}

func (f *frame) column(idx int) []string {
	values := make([]string, len(f.rows))
	for i, row := range f.rows {
		values[i] = strings.TrimSpace(row[idx])
	}
	return values
}

// numericColumns returns the columns where every non-empty cell parses
// as a float and at least one cell is present.
func (f *frame) numericColumns() []int {
	var idx []int
	for c := range f.columns {
		seen := 0
		numeric := true
		for _, v := range f.column(c) {
			if v == "" {
				continue
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric = false
				break
			}
			seen++
		}
		if numeric && seen > 0 {
			idx = append(idx, c)
		}
	}
	return idx
}

func (f *frame) categoricalColumns() []int {
	numeric := make(map[int]bool)
	for _, c := range f.numericColumns() {
		numeric[c] = true
	}
	var idx []int
	for c := range f.columns {
		if !numeric[c] {
			idx = append(idx, c)
		}
	}
	return idx
}

// distinct returns the non-empty values of a column in order of first
// appearance.
func (f *frame) distinct(idx int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range f.column(idx) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func (f *frame) names(idx []int) []string {
	out := make([]string, len(idx))
	for i, c := range idx {
		out[i] = f.columns[c]
	}
	return out
}

var describeRows = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// describe renders count, mean, sample std, min, quartiles and max for
// the given numeric columns.
func (f *frame) describe(idx []int) string {
	stats := make([][]float64, len(idx))
	for i, c := range idx {
		stats[i] = summarize(parseFloats(f.column(c)))
	}

	rows := make([][]string, len(describeRows))
	for r, label := range describeRows {
		row := []string{label}
		for i := range idx {
			row = append(row, formatStat(stats[i][r]))
		}
		rows[r] = row
	}

	header := append([]string{""}, f.names(idx)...)
	return renderTable(header, rows)
}

func parseFloats(values []string) []float64 {
	var out []float64
	for _, v := range values {
		if v == "" {
			continue
		}
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			out = append(out, x)
		}
	}
	return out
}

// summarize returns the statistics in describeRows order.
func summarize(xs []float64) []float64 {
	n := float64(len(xs))
	if len(xs) == 0 {
		nan := math.NaN()
		return []float64{0, nan, nan, nan, nan, nan, nan, nan}
	}

	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / n

	std := math.NaN()
	if len(xs) > 1 {
		var ss float64
		for _, x := range xs {
			ss += (x - mean) * (x - mean)
		}
		std = math.Sqrt(ss / (n - 1))
	}

	return []float64{
		n,
		mean,
		std,
		sorted[0],
		quantile(sorted, 0.25),
		quantile(sorted, 0.50),
		quantile(sorted, 0.75),
		sorted[len(sorted)-1],
	}
}

// quantile interpolates linearly between closest ranks of sorted.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// renderTable prints rows under header as whitespace-aligned columns
// without borders.
func renderTable(header []string, rows [][]string) string {
	var sb strings.Builder
	table := tablewriter.NewWriter(&sb)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator(" ")
	table.SetCenterSeparator(" ")
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeaderAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(rows)
	table.Render()

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}
