package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/ratelimit"

	"apdiag/internal/addrutil"
	"apdiag/internal/api"
	"apdiag/internal/logger"
	"apdiag/internal/model"
	"apdiag/internal/results"
)

var (
	jsonOutput bool

	pingCount int
	pingRate  int

	transferSize  int64
	transferCount int
)

func init() {
	for _, c := range []*cobra.Command{statusCmd, scanCmd, clientsCmd, uplinkCmd} {
		c.Flags().BoolVar(&jsonOutput, "json", false, "print raw JSON")
		rootCmd.AddCommand(c)
	}

	pingCmd.Flags().IntVar(&pingCount, "count", 20, "number of probes")
	pingCmd.Flags().IntVar(&pingRate, "rate", 10, "probes per second")
	rootCmd.AddCommand(pingCmd)

	for _, c := range []*cobra.Command{downloadCmd, uploadCmd} {
		c.Flags().Int64Var(&transferSize, "size", 1<<20, "bytes per transfer")
		c.Flags().IntVar(&transferCount, "count", 1, "number of transfers")
		rootCmd.AddCommand(c)
	}
}

func newClient() (*api.Client, string, error) {
	base, err := addrutil.BaseURL(appConfig.Client.Target)
	if err != nil {
		return nil, "", err
	}
	return api.NewClient(base), base, nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the service health snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		st, err := client.Status(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, st)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "ip\t%s\n", st.IP)
		fmt.Fprintf(tw, "mac\t%s\n", st.MAC)
		fmt.Fprintf(tw, "uptime\t%s\n", time.Duration(st.Uptime)*time.Second)
		fmt.Fprintf(tw, "free memory\t%s\n", humanize.IBytes(st.Heap))
		fmt.Fprintf(tw, "tx power\t%.2f dBm\n", st.TxPower)
		fmt.Fprintf(tw, "cpu\t%d MHz\n", st.CPUFreq)
		if st.TCPRexmit != nil {
			fmt.Fprintf(tw, "tcp retransmits\t%s\n", humanize.Comma(int64(*st.TCPRexmit)))
		}
		fmt.Fprintf(tw, "disconnects\t%d\n", st.Disconnects)
		return tw.Flush()
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Survey nearby networks through the service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		nets, err := client.Scan(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, nets)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SSID\tRSSI\tCH\tAUTH")
		for _, n := range nets {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", n.SSID, n.RSSI, n.Channel, n.Auth)
		}
		return tw.Flush()
	},
}

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List stations associated with the access point",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		stations, err := client.Clients(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, stations)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MAC\tRSSI")
		for _, s := range stations {
			fmt.Fprintf(tw, "%s\t%d\n", s.MAC, s.RSSI)
		}
		return tw.Flush()
	},
}

var uplinkCmd = &cobra.Command{
	Use:   "uplink",
	Short: "Show the public address and NAT class of the station uplink",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		report, err := client.Uplink(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput || !report.Available {
			return printJSON(out, report)
		}
		fmt.Fprintf(out, "public %s nat %s\n", report.PublicAddr, report.NATType)
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Measure round trips to the latency probe",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if pingCount <= 0 || pingRate <= 0 {
			return fmt.Errorf("--count and --rate must be positive")
		}
		client, base, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		samples := runPing(ctx, client, base, pingCount, ratelimit.New(pingRate), cmd.OutOrStdout())
		s := results.SummarizePing(samples)
		fmt.Fprintf(cmd.OutOrStdout(), "%d sent, %d received, %.1f%% loss\n", s.Sent, s.Received, s.LossPct)
		if s.Received > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "rtt min/avg/max/p95 = %.2f/%.2f/%.2f/%.2f ms, jitter %.2f ms\n",
				s.MinMs, s.AvgMs, s.MaxMs, s.P95Ms, s.JitterMs)
		}
		return appendSamples(samples)
	},
}

// runPing issues count probes paced by rl. Failed probes are recorded as
// lost.
func runPing(ctx context.Context, client *api.Client, base string, count int, rl ratelimit.Limiter, out io.Writer) []model.Sample {
	log := logger.WithComponent("ping")
	samples := make([]model.Sample, 0, count)
	for seq := 1; seq <= count; seq++ {
		if ctx.Err() != nil {
			break
		}
		rl.Take()

		sample := model.Sample{Timestamp: time.Now().UTC(), Target: base, Kind: model.KindPing, Seq: seq}
		rtt, serverMs, err := client.Ping(ctx)
		if err != nil {
			log.Debug().Err(err).Int("seq", seq).Msg("probe failed")
			sample.Lost = true
			fmt.Fprintf(out, "seq=%d lost\n", seq)
		} else {
			sample.RTTMs = float64(rtt.Microseconds()) / 1000
			fmt.Fprintf(out, "seq=%d rtt=%.2fms uptime=%dms\n", seq, sample.RTTMs, serverMs)
		}
		samples = append(samples, sample)
	}
	return samples
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Measure download throughput",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTransfers(cmd, model.KindDownload, func(ctx context.Context, c *api.Client) (api.TransferResult, error) {
			return c.Download(ctx, transferSize)
		})
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Measure upload throughput",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTransfers(cmd, model.KindUpload, func(ctx context.Context, c *api.Client) (api.TransferResult, error) {
			return c.Upload(ctx, transferSize)
		})
	},
}

func runTransfers(cmd *cobra.Command, kind string, run func(context.Context, *api.Client) (api.TransferResult, error)) error {
	if transferSize < 0 || transferCount <= 0 {
		return fmt.Errorf("--size must not be negative and --count must be positive")
	}
	client, base, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	samples := make([]model.Sample, 0, transferCount)
	var firstErr error
	for i := 1; i <= transferCount && ctx.Err() == nil; i++ {
		sample := model.Sample{Timestamp: time.Now().UTC(), Target: base, Kind: kind, Seq: i}
		res, err := run(ctx, client)
		if err != nil {
			sample.Lost = true
			fmt.Fprintf(out, "%s #%d failed: %v\n", kind, i, err)
			if firstErr == nil {
				firstErr = err
			}
		} else {
			sample.Bytes = res.Bytes
			sample.DurationMs = float64(res.Elapsed.Microseconds()) / 1000
			sample.ThroughputMbps = results.Mbps(res.Bytes, res.Elapsed)
			fmt.Fprintf(out, "%s #%d: %s in %s, %.2f Mbps\n",
				kind, i, humanize.IBytes(uint64(res.Bytes)), res.Elapsed.Round(time.Millisecond), sample.ThroughputMbps)
		}
		samples = append(samples, sample)
	}

	if err := appendSamples(samples); err != nil {
		return err
	}
	return firstErr
}

func appendSamples(samples []model.Sample) error {
	path := appConfig.Client.ResultsPath
	if path == "" || len(samples) == 0 {
		return nil
	}
	if err := results.AppendCSV(path, samples); err != nil {
		return fmt.Errorf("append results: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
