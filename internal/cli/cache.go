package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/commitgate/internal/cache"
	"github.com/dshills/commitgate/internal/config"
)

var cacheShowJSON bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the review response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached review",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Clearing works even when reuse is switched off in config
		c, err := openCache(true)
		if err != nil {
			return err
		}
		n, err := c.Clear()
		if err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached review(s) from %s\n", n, c.Dir())
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache location and usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(false)
		if err != nil {
			return err
		}
		stats, err := c.GetStats()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		return writeCacheStats(cmd.OutOrStdout(), stats, cacheShowJSON)
	},
}

// openCache opens the configured cache. force enables it regardless of
// AI_CACHE_ENABLED.
func openCache(force bool) (*cache.Cache, error) {
	res, err := config.Load(config.Options{})
	if err != nil {
		return nil, err
	}
	cc := res.Config.Cache
	c, err := cache.New(force || cc.Enabled, cc.Dir, cc.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

func writeCacheStats(w io.Writer, stats cache.Stats, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	if !stats.Enabled {
		_, err := fmt.Fprintln(w, "Cache is disabled (AI_CACHE_ENABLED=false).")
		return err
	}
	_, err := fmt.Fprintf(w, "Directory: %s\nEntries:   %d (%d expired)\nSize:      %d bytes\n",
		stats.Dir, stats.Entries, stats.Expired, stats.TotalBytes)
	return err
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheShowCmd.Flags().BoolVar(&cacheShowJSON, "json", false, "Print statistics as JSON")
}
