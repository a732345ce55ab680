// internal/cli/cache.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/snip/internal/ui"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear the component cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache hit rate and occupancy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats := GetApp().Cache.Stats()
		fmt.Printf("entries:     %d\n", stats.Entries)
		fmt.Printf("total bytes: %d\n", stats.TotalBytes)
		fmt.Printf("hits:        %d\n", stats.Hits)
		fmt.Printf("misses:      %d\n", stats.Misses)
		fmt.Printf("hit rate:    %.1f%%\n", stats.HitRate*100)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached components",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		removed := GetApp().Cache.InvalidateAll()
		fmt.Println(ui.Success(fmt.Sprintf("Removed %d cached components", removed)))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
