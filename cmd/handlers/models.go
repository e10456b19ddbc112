package handlers

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"distill/internal/logger"
	"distill/internal/modelcfg"
)

// NewModelsCmd creates the model registry command
func NewModelsCmd() *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect the model registry and its recommendations",
	}

	modelsCmd.AddCommand(newModelsListCmd())
	modelsCmd.AddCommand(newModelsRecommendCmd())
	modelsCmd.AddCommand(newModelsCostCmd())

	return modelsCmd
}

func newModelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered model with its cost and quality tier",
		Run: func(cmd *cobra.Command, args []string) {
			registry := modelcfg.NewRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tPROVIDER\tCOST/1K\tQUALITY\tSPEED")
			for _, key := range registry.Keys() {
				cfg := registry.Get(key)
				fmt.Fprintf(w, "%s\t%s\t$%.5f\t%.1f\t%.1f\n", key, cfg.Provider, cfg.CostPer1kTokens, cfg.Quality, cfg.Speed)
			}
			if err := w.Flush(); err != nil {
				logger.Error("Failed to render model table", err, nil)
				os.Exit(1)
			}
		},
	}
}

func newModelsRecommendCmd() *cobra.Command {
	recommendCmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend a model for a language and pipeline stage",
		Run: func(cmd *cobra.Command, args []string) {
			language, _ := cmd.Flags().GetString("language")
			stage, _ := cmd.Flags().GetString("stage")
			maxCost, _ := cmd.Flags().GetFloat64("max-cost")
			minQuality, _ := cmd.Flags().GetFloat64("min-quality")
			priority, _ := cmd.Flags().GetString("priority")

			registry := modelcfg.NewRegistry()
			cfg := registry.Recommend(modelcfg.Request{
				Language:   language,
				Stage:      modelcfg.Stage(stage),
				MaxCost:    maxCost,
				MinQuality: minQuality,
				Priority:   modelcfg.Priority(priority),
			})
			fmt.Printf("%s (provider %s, $%.5f/1k tokens, quality %.1f)\n",
				cfg.Model, cfg.Provider, cfg.CostPer1kTokens, cfg.Quality)
		},
	}

	recommendCmd.Flags().String("language", "en", "Article language code")
	recommendCmd.Flags().String("stage", "analysis", "Pipeline stage: preliminary, analysis, reflection, embedding")
	recommendCmd.Flags().Float64("max-cost", 0, "Cost ceiling in USD per 1k tokens (0 = none)")
	recommendCmd.Flags().Float64("min-quality", 0, "Minimum quality tier")
	recommendCmd.Flags().String("priority", "", "Selection priority: cost, quality, or speed")

	return recommendCmd
}

func newModelsCostCmd() *cobra.Command {
	costCmd := &cobra.Command{
		Use:   "cost [model]",
		Short: "Estimate the cost of a call against one model",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			inputTokens, _ := cmd.Flags().GetInt("input")
			outputTokens, _ := cmd.Flags().GetInt("output")

			registry := modelcfg.NewRegistry()
			cost := registry.CalculateCost(args[0], inputTokens, outputTokens)
			fmt.Printf("$%.6f for %d input + %d output tokens on %s\n", cost, inputTokens, outputTokens, args[0])
		},
	}

	costCmd.Flags().Int("input", 1000, "Input token count")
	costCmd.Flags().Int("output", 1000, "Output token count")

	return costCmd
}
