package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"distill/internal/langdetect"
	"distill/internal/logger"
)

// NewDetectCmd creates the language detection command
func NewDetectCmd() *cobra.Command {
	detectCmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Detect the language of an article file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			quick, _ := cmd.Flags().GetBool("quick")
			if err := runDetect(args[0], quick); err != nil {
				logger.Error("Detection failed", err, map[string]interface{}{"file": args[0]})
				os.Exit(1)
			}
		},
	}

	detectCmd.Flags().Bool("quick", false, "Use the fast script-probe variant (no confidence)")

	return detectCmd
}

func runDetect(path string, quick bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	detector := langdetect.NewDetector()
	if quick {
		fmt.Println(detector.QuickDetect(string(data)))
		return nil
	}

	d := detector.Detect(string(data))
	fmt.Printf("Language:   %s\n", d.Language)
	fmt.Printf("Script:     %s\n", d.Script)
	fmt.Printf("Confidence: %.2f\n", d.Confidence)
	return nil
}
