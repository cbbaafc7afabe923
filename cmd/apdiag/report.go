package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"apdiag/internal/results"
)

var reportWindow time.Duration

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize recorded samples",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := appConfig.Client.ResultsPath
		if path == "" {
			return errors.New("results path required (--results or client.results_path)")
		}
		items, err := results.ReadCSV(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		s := results.Summarize(items, time.Now().UTC().Add(-reportWindow))
		if s.Count == 0 {
			fmt.Fprintln(out, "no samples in window")
			return nil
		}

		fmt.Fprintf(out, "samples=%d from=%s to=%s\n", s.Count, s.From.Format(time.RFC3339), s.To.Format(time.RFC3339))
		if p := s.Ping; p.Sent > 0 {
			fmt.Fprintf(out, "ping sent=%d loss=%.1f%% rtt avg=%.2fms p95=%.2fms min=%.2fms max=%.2fms jitter=%.2fms\n",
				p.Sent, p.LossPct, p.AvgMs, p.P95Ms, p.MinMs, p.MaxMs, p.JitterMs)
		}
		for _, row := range []struct {
			name string
			sum  results.TransferSummary
		}{
			{"download", s.Download},
			{"upload", s.Upload},
		} {
			if row.sum.Count == 0 && row.sum.Failures == 0 {
				continue
			}
			fmt.Fprintf(out, "%s runs=%d failed=%d moved=%s avg=%.2f Mbps min=%.2f max=%.2f\n",
				row.name, row.sum.Count, row.sum.Failures, humanize.IBytes(uint64(row.sum.Bytes)),
				row.sum.AvgMbps, row.sum.MinMbps, row.sum.MaxMbps)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().DurationVar(&reportWindow, "window", 5*time.Minute, "time window")
	rootCmd.AddCommand(reportCmd)
}
