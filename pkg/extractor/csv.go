package extractor

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

func (e *Extractor) extractCSV(path, name string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open csv: %w", err)
	}
	defer fh.Close()

	reader := csv.NewReader(fh)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("csv has no header row")
	}

	df := newFrame(records)

	var sb strings.Builder
	fmt.Fprintf(&sb, "CSV File: %s\n", name)
	fmt.Fprintf(&sb, "Shape: %d rows, %d columns\n\n", len(df.rows), len(df.columns))
	fmt.Fprintf(&sb, "Columns: %s\n\n", strings.Join(df.columns, ", "))

	sample := df.head(e.config.CSVSampleRows)
	fmt.Fprintf(&sb, "Sample data (first %d of %d rows):\n", len(sample), len(df.rows))
	sb.WriteString(renderTable(df.columns, sample))
	sb.WriteString("\n\n")

	if numeric := df.numericColumns(); len(numeric) > 0 {
		fmt.Fprintf(&sb, "Summary statistics for %d numeric columns:\n", len(numeric))
		sb.WriteString(df.describe(numeric))
		sb.WriteString("\n\n")
	}

	if categorical := df.categoricalColumns(); len(categorical) > 0 {
		fmt.Fprintf(&sb, "Categorical columns (%d):\n", len(categorical))
		for _, c := range categorical {
			values := df.distinct(c)
			fmt.Fprintf(&sb, "  %s: %d unique values", df.columns[c], len(values))
			if len(values) <= e.config.MaxListedValues {
				fmt.Fprintf(&sb, " -> %s", strings.Join(values, ", "))
			}
			sb.WriteString("\n")
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
