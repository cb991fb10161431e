package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/xhad/stressdocs/pkg/ingest"
)

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("chunks"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// progressPrinter renders pipeline events on the terminal: one line per
// file, a bar while its chunks are embedded and one line per batch.
type progressPrinter struct {
	bar *progressbar.ProgressBar
}

func (p *progressPrinter) finishBar() {
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Println()
		p.bar = nil
	}
}

func (p *progressPrinter) handle(e ingest.Event) {
	switch e.Stage {
	case ingest.StageDiscovering:
		color.Cyan("Scanning for documents...")
	case ingest.StageExtracting:
		p.finishBar()
		color.Blue("\n[%d/%d] %s", e.FileIndex, e.FileCount, e.File)
	case ingest.StageChunking:
		color.Blue("  Splitting into chunks...")
	case ingest.StageEmbedding:
		if p.bar == nil || e.Chunk == 1 {
			p.finishBar()
			p.bar = getProgressBar(e.Chunks, " Embedding chunks")
		}
		_ = p.bar.Set(e.Chunk - 1)
		if e.Chunk == e.Chunks {
			_ = p.bar.Set(e.Chunks)
		}
	case ingest.StageUploading:
		if p.bar != nil {
			_ = p.bar.Clear()
		}
		b := e.Batch
		switch {
		case b.Err != nil:
			color.Red("  ✗ Batch %d failed: %v", b.Number, b.Err)
		case b.Failed > 0:
			color.Yellow("  ! Batch %d: %d uploaded, %d failed", b.Number, b.Succeeded, b.Failed)
		default:
			color.Green("  ✓ Batch %d: %d documents uploaded", b.Number, b.Succeeded)
		}
	case ingest.StageDone:
		p.finishBar()
	}
}

func printSummary(s ingest.Summary) {
	fmt.Println()
	color.Cyan("Run %s finished in %s", s.RunID, s.Duration.Round(time.Millisecond))
	fmt.Printf("  Files found:       %d\n", s.FilesFound)
	fmt.Printf("  Files processed:   %d\n", s.FilesProcessed)
	fmt.Printf("  Files skipped:     %d\n", s.FilesSkipped)
	fmt.Printf("  Chunks created:    %d\n", s.ChunksCreated)
	if s.TruncatedFiles > 0 {
		color.Yellow("  Truncated files:   %d", s.TruncatedFiles)
	}
	if s.ChunksDropped > 0 {
		color.Yellow("  Chunks dropped:    %d", s.ChunksDropped)
	}
	fmt.Printf("  Batches sent:      %d\n", s.Batches)
	if s.Failed > 0 {
		color.Red("  Failed documents:  %d", s.Failed)
	}
	color.Green("✓ Total documents uploaded: %d/%d", s.Uploaded, s.Attempted)
}
