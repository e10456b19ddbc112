package handlers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"distill/internal/core"
	"distill/internal/logger"
	"distill/internal/personal"
)

// NewScoreCmd creates the personalized scoring command
func NewScoreCmd() *cobra.Command {
	scoreCmd := &cobra.Command{
		Use:   "score",
		Short: "Score a stored analysis result against a user profile",
		Long: `Combine an article's analysis result with a user preference profile to
produce a personalized score and a recommended action. Without a profile the
score falls back to the article's objective dimensions.`,
		Run: func(cmd *cobra.Command, args []string) {
			analysisPath, _ := cmd.Flags().GetString("analysis")
			profilePath, _ := cmd.Flags().GetString("profile")
			output, _ := cmd.Flags().GetString("output")

			if err := runScore(analysisPath, profilePath, output); err != nil {
				logger.Error("Scoring failed", err, map[string]interface{}{"analysis": analysisPath})
				os.Exit(1)
			}
		},
	}

	scoreCmd.Flags().String("analysis", "", "Path to an analysis result JSON file (required)")
	scoreCmd.Flags().String("profile", "", "Path to a preference profile JSON file (optional)")
	scoreCmd.Flags().StringP("output", "o", "", "Write the score JSON to a file instead of stdout")
	_ = scoreCmd.MarkFlagRequired("analysis")

	return scoreCmd
}

func runScore(analysisPath, profilePath, output string) error {
	var analysis core.ArticleAnalysisResult
	if err := readJSON(analysisPath, &analysis); err != nil {
		return fmt.Errorf("failed to load analysis: %w", err)
	}

	var profile *core.UserPreferenceProfile
	if profilePath != "" {
		profile = &core.UserPreferenceProfile{}
		if err := readJSON(profilePath, profile); err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
	}

	result := personal.NewScorer().CalculateScore(analysis, profile)
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode score: %w", err)
	}
	return writeOutput(output, encoded)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
