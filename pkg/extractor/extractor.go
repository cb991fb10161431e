// Package extractor turns PDF, Excel and CSV files into plain text.
//
// Extraction never fails loudly: parse errors and library panics are
// logged and the file yields an empty string, which callers treat as
// "skip this file".
package extractor

import (
	"fmt"
	"strings"

	"github.com/xhad/stressdocs/internal/models"
	"github.com/xhad/stressdocs/pkg/logger"
)

type ExtractorConfig struct {
	// Logged every PDFProgressEvery pages.
	PDFProgressEvery int
	ExcelSampleRows  int
	CSVSampleRows    int
	// Columns with at most this many distinct values list them.
	MaxListedValues int
	Logger          *logger.Logger
}

type Extractor struct {
	config ExtractorConfig
	log    *logger.Logger
}

func NewWithConfig(config ExtractorConfig) *Extractor {
	if config.PDFProgressEvery == 0 {
		config.PDFProgressEvery = 10
	}
	if config.ExcelSampleRows == 0 {
		config.ExcelSampleRows = 20
	}
	if config.CSVSampleRows == 0 {
		config.CSVSampleRows = 25
	}
	if config.MaxListedValues == 0 {
		config.MaxListedValues = 10
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}

	return &Extractor{
		config: config,
		log:    config.Logger,
	}
}

func New() *Extractor {
	return NewWithConfig(ExtractorConfig{})
}

// Extract dispatches on the lowercased extension. Unsupported
// extensions, parse failures and panics all return "".
func (e *Extractor) Extract(file models.SourceFile) (text string) {
	log := e.log.With("file", file.Name)

	defer func() {
		if r := recover(); r != nil {
			log.Error("extractor panicked", "panic", fmt.Sprint(r))
			text = ""
		}
	}()

	var err error
	switch strings.ToLower(file.Ext) {
	case ".pdf":
		text, err = e.extractPDF(file.Path, log)
	case ".xlsx":
		text, err = e.extractExcel(file.Path, log)
	case ".csv":
		text, err = e.extractCSV(file.Path, file.Name)
	default:
		log.Warn("unsupported file type", "ext", file.Ext)
		return ""
	}
	if err != nil {
		log.Error("failed to extract content", "error", err)
		return ""
	}

	log.Info("extracted content", "characters", len(text))
	return text
}
