package extractor

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/xhad/stressdocs/pkg/logger"
)

func (e *Extractor) extractPDF(path string, log *logger.Logger) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	if total == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}
	log.Info("processing pdf", "pages", total)

	return e.joinPages(total, func(num int) (string, error) {
		p := r.Page(num)
		if p.V.IsNull() {
			return "", nil
		}
		return p.GetPlainText(nil)
	}, log), nil
}

// joinPages reads pages 1..total in order and joins the non-blank ones
// with newlines. A page that errors or panics is logged and left out.
func (e *Extractor) joinPages(total int, read func(int) (string, error), log *logger.Logger) string {
	var sb strings.Builder
	for i := 1; i <= total; i++ {
		pageText, err := readPage(read, i)
		if err != nil {
			log.Warn("could not extract page", "page", i, "error", err)
		} else if pageText = strings.TrimSpace(pageText); pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n")
		}

		if i%e.config.PDFProgressEvery == 0 {
			log.Info("pdf progress", "processed", i, "pages", total)
		}
	}

	return strings.TrimSpace(sb.String())
}

func readPage(read func(int) (string, error), num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d: %v", num, rec)
		}
	}()

	return read(num)
}
