package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cfgPkg "github.com/xhad/stressdocs/pkg/config"
	"github.com/xhad/stressdocs/pkg/extractor"
	"github.com/xhad/stressdocs/pkg/ingest"
	"github.com/xhad/stressdocs/pkg/metadata"
	"github.com/xhad/stressdocs/pkg/processor"
	"github.com/xhad/stressdocs/pkg/store"
)

var ingestFlags struct {
	dir       string
	chunkSize int
	overlap   int
	batchSize int
	backend   string
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Extract, embed and upload every document in the input directory",
	Args:  cobra.NoArgs,
	RunE:  runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVarP(&ingestFlags.dir, "dir", "d", "", "Directory containing the documents (default financial_data)")
	f.IntVar(&ingestFlags.chunkSize, "chunk-size", 0, "Maximum tokens per chunk (default 800)")
	f.IntVar(&ingestFlags.overlap, "overlap", 0, "Tokens shared by consecutive chunks (default 150)")
	f.IntVar(&ingestFlags.batchSize, "batch-size", 0, "Documents per upload request (default 8)")
	f.StringVar(&ingestFlags.backend, "backend", "", "Index backend: azure, pgvector or sqlite")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(c *cfgPkg.Config) {
		flags := cmd.Flags()
		if flags.Changed("dir") {
			c.Input.Dir = ingestFlags.dir
		}
		if flags.Changed("chunk-size") {
			c.Processor.ChunkSize = ingestFlags.chunkSize
		}
		if flags.Changed("overlap") {
			c.Processor.ChunkOverlap = ingestFlags.overlap
		}
		if flags.Changed("batch-size") {
			c.Index.BatchSize = ingestFlags.batchSize
		}
		if flags.Changed("backend") {
			c.Index.Backend = ingestFlags.backend
		}
	})
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tokenizer, err := processor.NewTikToken(cfg.Processor.TokenizerModel)
	if err != nil {
		return err
	}
	chunker, err := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    cfg.Processor.ChunkSize,
		ChunkOverlap: cfg.Processor.ChunkOverlap,
		MaxChunks:    cfg.Processor.MaxChunks,
		Tokenizer:    tokenizer,
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chunker: %v", err)
	}

	embedder, err := newEmbedder(cfg, log)
	if err != nil {
		return err
	}

	index, err := store.Open(ctx, cfg.Index)
	if err != nil {
		return fmt.Errorf("failed to open %s index: %v", cfg.Index.Backend, err)
	}
	defer index.Close()

	printer := &progressPrinter{}
	pipeline, err := ingest.NewWithConfig(ingest.PipelineConfig{
		InputDir:   cfg.Input.Dir,
		Include:    cfg.Input.Include,
		Exclude:    cfg.Input.Exclude,
		BatchSize:  cfg.Index.BatchSize,
		Extractor:  extractor.NewWithConfig(extractor.ExtractorConfig{Logger: log}),
		Classifier: metadata.NewDefault(),
		Chunker:    chunker,
		Embedder:   embedder,
		Index:      index,
		Logger:     log,
		OnProgress: printer.handle,
	})
	if err != nil {
		return err
	}

	color.Cyan("Ingesting %s into %s index (chunk size %d, overlap %d, batch size %d)",
		cfg.Input.Dir, cfg.Index.Backend, cfg.Processor.ChunkSize, cfg.Processor.ChunkOverlap, cfg.Index.BatchSize)

	summary, err := pipeline.Run(ctx)
	if err != nil {
		printer.finishBar()
		return err
	}

	printSummary(summary)
	return nil
}
