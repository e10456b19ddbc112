package handlers

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"distill/internal/config"
	"distill/internal/embedcache"
	"distill/internal/logger"
)

// NewCacheCmd creates the embedding cache management command
func NewCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the embedding cache",
	}

	cacheCmd.AddCommand(newCacheStatsCmd())
	cacheCmd.AddCommand(newCacheClearCmd())

	return cacheCmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entry counts per cache tier",
		Run: func(cmd *cobra.Command, args []string) {
			cache := newEmbedCache(config.Get())
			stats := cache.Stats(cmd.Context())

			fmt.Printf("Memory tier:      %d entries\n", stats.MemoryEntries)
			if stats.DistributedEnabled {
				fmt.Printf("Distributed tier: %d entries\n", stats.DistributedEntries)
			} else {
				fmt.Println("Distributed tier: disabled")
			}
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached embedding from both tiers",
		Run: func(cmd *cobra.Command, args []string) {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if err := runCacheClear(cmd, confirm); err != nil {
				logger.Error("Failed to clear cache", err, nil)
				os.Exit(1)
			}
		},
	}

	clearCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	return clearCmd
}

func runCacheClear(cmd *cobra.Command, confirm bool) error {
	if !confirm {
		fmt.Print("Clear all cached embeddings? [y/N] ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cache := newEmbedCache(config.Get())
	cache.ClearAll(cmd.Context())
	fmt.Println("Cache cleared.")
	return nil
}

// parseTTL parses the configured cache TTL, falling back to the default on a
// malformed value.
func parseTTL(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return embedcache.DefaultTTL
	}
	return d
}
