package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/praetorian-inc/blackcat/internal/message"
	op "github.com/praetorian-inc/blackcat/internal/output_providers"
	"github.com/praetorian-inc/blackcat/pkg/cache"
	o "github.com/praetorian-inc/blackcat/pkg/options"
	"github.com/praetorian-inc/blackcat/pkg/types"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Response cache inspection and maintenance",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

var (
	statsPartition  string
	statsCompressed string
	statsMinSize    int64
	statsMaxSize    int64
	statsMaxAge     time.Duration
	statsSort       string
	statsTop        int
)

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report cache analytics (counts, memory, histogram, recommendations)",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := newSession(cmd)

		filter := cache.Filter{
			Partition: statsPartition,
			MinSize:   statsMinSize,
			MaxSize:   statsMaxSize,
			MaxAge:    statsMaxAge,
			SortBy:    cache.SortField(statsSort),
			Top:       statsTop,
		}
		if statsCompressed != "" {
			compressed, err := strconv.ParseBool(statsCompressed)
			if err != nil {
				return fmt.Errorf("--compressed must be true or false: %w", err)
			}
			filter.Compressed = &compressed
		}

		report, err := sess.Cache.Stats(filter)
		if err != nil {
			return err
		}

		outputDir, _ := cmd.Flags().GetString(o.OutputOpt.Name)
		opts := []*types.Option{types.WithValue(o.OutputOpt, outputDir)}

		format, _ := cmd.Flags().GetString(o.FormatOpt.Name)
		if report.TotalEntries == 0 && format != "json" && format != "csv" {
			// Raw json/csv stay machine-parseable; the empty document is the signal.
			message.Info("Cache is empty (no entries match the filter)")
		}
		switch format {
		case "json":
			return report.WriteJSON(os.Stdout)
		case "csv":
			return report.WriteCSV(os.Stdout)
		case "json-file":
			writeResult([]types.OutputProvider{op.NewJsonFileProvider(opts)},
				types.NewResult(types.Azure, "cache-stats", report))
			return nil
		case "csv-file":
			writeResult([]types.OutputProvider{op.NewCsvFileProvider(opts)},
				types.NewResult(types.Azure, "cache-stats", report))
			return nil
		case "md-file":
			writeResult([]types.OutputProvider{op.NewMarkdownFileProvider(opts)},
				types.NewResult(types.Azure, "cache-stats", reportTable(report)))
			return nil
		case "table":
			writeResult([]types.OutputProvider{op.NewConsoleProvider(opts)},
				types.NewResult(types.Azure, "cache-stats", reportTable(report)))
			for _, rec := range report.Recommendations {
				message.Warning("%s", rec)
			}
			return nil
		default:
			return fmt.Errorf("unknown format %q (expected table, json, csv, json-file, csv-file, md-file)", format)
		}
	},
}

var (
	clearPartition string
	clearKey       string
)

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Invalidate a cache partition or a single entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if clearPartition == "" {
			return fmt.Errorf("--partition is required")
		}

		sess := newSession(cmd)

		var removed int
		if clearKey != "" {
			removed = sess.Cache.Invalidate(clearPartition, clearKey)
		} else {
			removed = sess.Cache.Invalidate(clearPartition)
		}

		message.Success("Removed %d entries from partition %s", removed, clearPartition)
		return nil
	},
}

// reportTable renders the aggregate report as a markdown table for console
// output.
func reportTable(report *cache.Report) types.MarkdownTable {
	table := types.MarkdownTable{
		TableHeading: "Cache Statistics",
		Headers:      []string{"Partition", "Total", "Valid", "Expired", "Size (KB)", "Compressed"},
	}

	for _, ps := range report.Partitions {
		table.Rows = append(table.Rows, []string{
			ps.Partition,
			strconv.Itoa(ps.Total),
			strconv.Itoa(ps.Valid),
			strconv.Itoa(ps.Expired),
			strconv.FormatInt(ps.SizeBytes/1024, 10),
			strconv.Itoa(ps.Compressed),
		})
	}

	table.Rows = append(table.Rows, []string{
		"TOTAL",
		strconv.Itoa(report.TotalEntries),
		strconv.Itoa(report.ValidEntries),
		strconv.Itoa(report.ExpiredEntries),
		strconv.FormatInt(report.TotalSizeBytes/1024, 10),
		strconv.Itoa(report.CompressedCount),
	})

	return table
}

func init() {
	cacheStatsCmd.Flags().StringVar(&statsPartition, "partition", "", "limit report to one partition")
	cacheStatsCmd.Flags().StringVar(&statsCompressed, "compressed", "", "filter by compressed flag (true/false)")
	cacheStatsCmd.Flags().Int64Var(&statsMinSize, "min-size", 0, "minimum entry size in bytes")
	cacheStatsCmd.Flags().Int64Var(&statsMaxSize, "max-size", 0, "maximum entry size in bytes")
	cacheStatsCmd.Flags().DurationVar(&statsMaxAge, "max-age", 0, "maximum entry age (e.g. 30m)")
	cacheStatsCmd.Flags().StringVar(&statsSort, "sort", "size", "sort entries by size, age, or expiry")
	cacheStatsCmd.Flags().IntVar(&statsTop, "top", 0, "cap the number of reported entries")
	option2Flag(types.WithDescription(o.FormatOpt, "Output format (table, json, csv, json-file, csv-file, md-file)"), cacheStatsCmd)

	cacheClearCmd.Flags().StringVar(&clearPartition, "partition", "", "partition to clear")
	cacheClearCmd.Flags().StringVar(&clearKey, "key", "", "single key to remove")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
