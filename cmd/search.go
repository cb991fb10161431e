package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xhad/stressdocs/internal/models"
	cfgPkg "github.com/xhad/stressdocs/pkg/config"
	"github.com/xhad/stressdocs/pkg/store"
)

var searchFlags struct {
	top     int
	backend string
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a hybrid keyword and vector query against the index",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchFlags.top, "top", "k", 5, "Number of results to return")
	searchCmd.Flags().StringVar(&searchFlags.backend, "backend", "", "Index backend: azure, pgvector or sqlite")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg, err := loadConfig(func(c *cfgPkg.Config) {
		if cmd.Flags().Changed("backend") {
			c.Index.Backend = searchFlags.backend
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

	ctx := context.Background()

	embedder, err := newEmbedder(cfg, log)
	if err != nil {
		return err
	}

	index, err := store.Open(ctx, cfg.Index)
	if err != nil {
		return fmt.Errorf("failed to open %s index: %v", cfg.Index.Backend, err)
	}
	defer index.Close()

	spinner := getSpinner(" Searching documents...")
	vector := embedder.Embed(ctx, query)
	if len(vector) == 0 {
		log.Warn("query embedding failed, falling back to keyword search")
	}
	results, err := index.Search(ctx, models.SearchQuery{Text: query, Vector: vector, Top: searchFlags.top})
	_ = spinner.Finish()
	fmt.Println()

	if err != nil {
		return fmt.Errorf("failed to search: %v", err)
	}
	if len(results) == 0 {
		color.Yellow("No documents matched %q", query)
		return nil
	}

	title := color.New(color.FgGreen, color.Bold).PrintfFunc()
	for i, r := range results {
		title("%d. %s\n", i+1, r.Title)
		color.Cyan("   %s | %s | %d | score %.4f", r.Institution, r.DocumentType, r.Year, r.Score)
		fmt.Printf("   %s\n\n", preview(r.Content, 300))
	}
	return nil
}

func preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
