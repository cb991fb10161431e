package extractor

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/xhad/stressdocs/pkg/logger"
)

func (e *Extractor) extractExcel(path string, log *logger.Logger) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return e.writeWorkbook(f, log), nil
}

// workbook is the part of *excelize.File the sheet summaries read.
type workbook interface {
	GetSheetList() []string
	GetRows(sheet string, opts ...excelize.Options) ([][]string, error)
}

func (e *Extractor) writeWorkbook(wb workbook, log *logger.Logger) string {
	sheets := wb.GetSheetList()
	log.Info("found sheets", "count", len(sheets), "sheets", strings.Join(sheets, ", "))

	var sb strings.Builder
	for _, sheet := range sheets {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			log.Warn("could not read sheet", "sheet", sheet, "error", err)
			fmt.Fprintf(&sb, "\n=== SHEET: %s (ERROR) ===\nError reading sheet: %v\n", sheet, err)
			continue
		}
		e.writeSheet(&sb, sheet, newFrame(rows))
	}

	return strings.TrimSpace(sb.String())
}

func (e *Extractor) writeSheet(sb *strings.Builder, name string, df *frame) {
	fmt.Fprintf(sb, "\n=== SHEET: %s ===\n", name)
	if df.empty() {
		sb.WriteString("(Empty sheet)\n")
		return
	}

	fmt.Fprintf(sb, "Columns: %s\n", strings.Join(df.columns, ", "))

	sample := df.head(e.config.ExcelSampleRows)
	fmt.Fprintf(sb, "Sample data (%d of %d rows):\n", len(sample), len(df.rows))
	sb.WriteString(renderTable(df.columns, sample))
	sb.WriteString("\n")

	if numeric := df.numericColumns(); len(numeric) > 0 {
		fmt.Fprintf(sb, "\nNumeric summary for %d columns:\n", len(numeric))
		sb.WriteString(df.describe(numeric))
		sb.WriteString("\n")
	}
}
