package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the content cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePathCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cache, err := ctx.cache(cfg, logger)
			if err != nil {
				return err
			}
			entries, err := cache.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}
			const stampLayout = "2006-01-02 15:04"
			rows := make([][]string, 0, len(entries))
			var total int64
			for _, entry := range entries {
				key := entry.Key
				if len(key) > 12 {
					key = key[:12]
				}
				rows = append(rows, []string{
					entry.Type,
					key,
					humanBytes(entry.Size),
					entry.ModTime.Local().Format(stampLayout),
				})
				total += entry.Size
			}
			fmt.Fprintln(out, tableLayout{
				Headers: []string{"Type", "Key", "Size", "Updated"},
				Rows:    rows,
				Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				Footer:  []string{"", fmt.Sprintf("%d entries", len(entries)), humanBytes(total), ""},
			}.render())
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [type]",
		Short: "Remove cached entries, optionally only those of one type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cache, err := ctx.cache(cfg, logger)
			if err != nil {
				return err
			}
			cacheType := ""
			if len(args) == 1 {
				cacheType = args[0]
			}
			removed, err := cache.Clear(cacheType)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", removed)
			return nil
		},
	}
}

func newCachePathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Paths.CacheDir)
			return nil
		},
	}
}
