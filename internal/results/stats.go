package results

import (
	"math"
	"sort"
	"time"

	"apdiag/internal/model"
)

// PingSummary aggregates a probe series. RTT figures ignore lost probes.
type PingSummary struct {
	Sent     int
	Received int
	LossPct  float64
	MinMs    float64
	AvgMs    float64
	MaxMs    float64
	P95Ms    float64
	JitterMs float64
}

// TransferSummary aggregates download or upload runs.
type TransferSummary struct {
	Count    int
	Bytes    int64
	AvgMbps  float64
	MaxMbps  float64
	MinMbps  float64
	Failures int
}

// Summary is a windowed view over a sample file.
type Summary struct {
	Count    int
	From     time.Time
	To       time.Time
	Ping     PingSummary
	Download TransferSummary
	Upload   TransferSummary
}

// Summarize computes per-kind statistics for items at or after since.
func Summarize(items []model.Sample, since time.Time) Summary {
	var (
		out   Summary
		pings []model.Sample
		down  []model.Sample
		up    []model.Sample
	)
	for _, s := range items {
		if s.Timestamp.Before(since) {
			continue
		}
		if out.Count == 0 || s.Timestamp.Before(out.From) {
			out.From = s.Timestamp
		}
		if out.Count == 0 || s.Timestamp.After(out.To) {
			out.To = s.Timestamp
		}
		out.Count++

		switch s.Kind {
		case model.KindPing:
			pings = append(pings, s)
		case model.KindDownload:
			down = append(down, s)
		case model.KindUpload:
			up = append(up, s)
		}
	}

	out.Ping = SummarizePing(pings)
	out.Download = summarizeTransfers(down)
	out.Upload = summarizeTransfers(up)
	return out
}

// SummarizePing computes loss, RTT spread and jitter. Jitter is the mean
// absolute difference between consecutive received RTTs.
func SummarizePing(samples []model.Sample) PingSummary {
	out := PingSummary{Sent: len(samples)}
	if len(samples) == 0 {
		return out
	}

	rtts := make([]float64, 0, len(samples))
	for _, s := range samples {
		if !s.Lost {
			rtts = append(rtts, s.RTTMs)
		}
	}
	out.Received = len(rtts)
	out.LossPct = 100 * float64(out.Sent-out.Received) / float64(out.Sent)
	if len(rtts) == 0 {
		return out
	}

	var sum, jitter float64
	for i, v := range rtts {
		sum += v
		if i > 0 {
			jitter += math.Abs(v - rtts[i-1])
		}
	}
	out.AvgMs = sum / float64(len(rtts))
	if len(rtts) > 1 {
		out.JitterMs = jitter / float64(len(rtts)-1)
	}

	sorted := append([]float64(nil), rtts...)
	sort.Float64s(sorted)
	out.MinMs = sorted[0]
	out.MaxMs = sorted[len(sorted)-1]
	out.P95Ms = percentile(sorted, 0.95)
	return out
}

func summarizeTransfers(samples []model.Sample) TransferSummary {
	var out TransferSummary
	var sum float64
	for _, s := range samples {
		if s.Lost {
			out.Failures++
			continue
		}
		out.Count++
		out.Bytes += s.Bytes
		sum += s.ThroughputMbps
		if out.Count == 1 || s.ThroughputMbps < out.MinMbps {
			out.MinMbps = s.ThroughputMbps
		}
		if s.ThroughputMbps > out.MaxMbps {
			out.MaxMbps = s.ThroughputMbps
		}
	}
	if out.Count > 0 {
		out.AvgMbps = sum / float64(out.Count)
	}
	return out
}

// Mbps converts a byte count moved in d to megabits per second.
func Mbps(bytes int64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(bytes) * 8 / d.Seconds() / 1e6
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p <= 0 {
		return values[0]
	}
	if p >= 1 {
		return values[len(values)-1]
	}
	idx := int(math.Ceil(p*float64(len(values)))) - 1
	if idx < 0 {
		idx = 0
	}
	return values[idx]
}
