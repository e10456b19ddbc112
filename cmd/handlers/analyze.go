package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"distill/internal/analyze"
	"distill/internal/config"
	"distill/internal/core"
	"distill/internal/embedcache"
	"distill/internal/llm"
	"distill/internal/logger"
	"distill/internal/modelcfg"
	"distill/internal/pipeline"
	"distill/internal/segment"
)

// NewAnalyzeCmd creates the article analysis command
func NewAnalyzeCmd() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Run the full analysis pipeline over an article file",
		Long: `Read an article from a text or markdown file, detect its language,
select a model, run segmented analysis, and optionally refine the result with
a reflection pass. The result is printed as JSON.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			title, _ := cmd.Flags().GetString("title")
			author, _ := cmd.Flags().GetString("author")
			model, _ := cmd.Flags().GetString("model")
			noReflection, _ := cmd.Flags().GetBool("no-reflection")
			dedupe, _ := cmd.Flags().GetBool("dedupe")
			output, _ := cmd.Flags().GetString("output")

			if err := runAnalyze(cmd.Context(), args[0], title, author, model, noReflection, dedupe, output); err != nil {
				logger.Error("Analysis failed", err, map[string]interface{}{"file": args[0]})
				os.Exit(1)
			}
		},
	}

	analyzeCmd.Flags().String("title", "", "Article title (defaults to the file name)")
	analyzeCmd.Flags().String("author", "", "Article author")
	analyzeCmd.Flags().String("model", "", "Override the analysis model")
	analyzeCmd.Flags().Bool("no-reflection", false, "Skip the reflection pass")
	analyzeCmd.Flags().Bool("dedupe", false, "Deduplicate key points with cached embeddings")
	analyzeCmd.Flags().StringP("output", "o", "", "Write the result JSON to a file instead of stdout")

	return analyzeCmd
}

func runAnalyze(ctx context.Context, path, title, author, model string, noReflection, dedupe bool, output string) error {
	cfg := config.Get()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read article file: %w", err)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	article := core.Article{Content: string(data), Title: title, Author: author}

	client, err := llm.NewClient(ctx, cfg.Analysis.AnalysisModel)
	if err != nil {
		return fmt.Errorf("failed to initialize model client: %w", err)
	}

	opts := pipeline.Options{
		EnableReflection:    cfg.Analysis.EnableReflection && !noReflection,
		MaxReflectionRounds: cfg.Analysis.MaxReflectionRounds,
		QualityThreshold:    cfg.Analysis.QualityThreshold,
		AnalysisModel:       model,
		ReflectionModel:     cfg.Analysis.ReflectionModel,
		MaxCost:             cfg.Analysis.MaxCost,
		MaxConcurrency:      cfg.Analysis.MaxConcurrency,
		SegmentOptions: segment.Options{
			SegmentSize: cfg.Analysis.SegmentSize,
			MaxOverlap:  cfg.Analysis.SegmentOverlap,
		},
	}
	if model == "" {
		opts.AnalysisModel = cfg.Analysis.AnalysisModel
	}
	if dedupe {
		opts.Deduper = analyze.NewEmbeddingDeduper(client, newEmbedCache(cfg), 0)
	}

	result, err := pipeline.New(client, modelcfg.NewRegistry(), opts).Run(ctx, article)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return writeOutput(output, encoded)
}

// newEmbedCache builds the two-tier cache from configuration. An unreachable
// Redis degrades to memory-only at call time, so the client is created
// unconditionally.
func newEmbedCache(cfg *config.Config) *embedcache.Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	return embedcache.New(embedcache.Options{
		RedisClient: rdb,
		MemoryLimit: cfg.Cache.MemoryLimit,
		TTL:         parseTTL(cfg.Cache.TTL),
	})
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
