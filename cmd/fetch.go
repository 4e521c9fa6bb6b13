package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/energy-cli/internal/config"
	"github.com/sells-group/energy-cli/internal/fetcher"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the raw MER tables from EIA",
	Long:  "Downloads MER Table 1.1 and Table 11.1 into data.raw_dir. Unchanged files are skipped using the stored ETag.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}
		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.EIA.UserAgent,
			Timeout:    time.Duration(cfg.EIA.TimeoutSecs) * time.Second,
			MaxRetries: cfg.EIA.MaxRetries,
		})
		return runFetch(cmd.Context(), f, cfg, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

// runFetch refreshes both raw tables.
func runFetch(ctx context.Context, f fetcher.Fetcher, c *config.Config, w io.Writer) error {
	targets := []struct{ url, file string }{
		{c.EIA.EnergyURL, c.Data.EnergyFile},
		{c.EIA.CO2URL, c.Data.CO2File},
	}
	for _, t := range targets {
		res, err := fetcher.Refresh(ctx, f, t.url, filepath.Join(c.Data.RawDir, t.file))
		if err != nil {
			return err
		}
		if res.Changed {
			_, _ = fmt.Fprintf(w, "downloaded %s (%d bytes)\n", res.Path, res.Bytes)
		} else {
			_, _ = fmt.Fprintf(w, "unchanged  %s\n", res.Path)
		}
	}
	return nil
}
