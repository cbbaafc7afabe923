package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"apdiag/internal/model"
)

func TestSummarizePing(t *testing.T) {
	t.Parallel()

	samples := []model.Sample{
		{Kind: model.KindPing, RTTMs: 10},
		{Kind: model.KindPing, RTTMs: 14},
		{Kind: model.KindPing, Lost: true},
		{Kind: model.KindPing, RTTMs: 12},
	}
	s := SummarizePing(samples)
	assert.Equal(t, 4, s.Sent)
	assert.Equal(t, 3, s.Received)
	assert.InDelta(t, 25, s.LossPct, 1e-9)
	assert.Equal(t, 10.0, s.MinMs)
	assert.Equal(t, 14.0, s.MaxMs)
	assert.InDelta(t, 12, s.AvgMs, 1e-9)
	assert.Equal(t, 14.0, s.P95Ms)
	assert.InDelta(t, 3, s.JitterMs, 1e-9)
}

func TestSummarizePing_AllLost(t *testing.T) {
	t.Parallel()

	s := SummarizePing([]model.Sample{{Lost: true}, {Lost: true}})
	assert.Equal(t, 100.0, s.LossPct)
	assert.Zero(t, s.AvgMs)
}

func TestSummarize_WindowAndKinds(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	items := []model.Sample{
		{Timestamp: now.Add(-time.Hour), Kind: model.KindPing, RTTMs: 500},
		{Timestamp: now.Add(-10 * time.Second), Kind: model.KindPing, RTTMs: 10},
		{Timestamp: now.Add(-9 * time.Second), Kind: model.KindPing, RTTMs: 20},
		{Timestamp: now.Add(-8 * time.Second), Kind: model.KindDownload, Bytes: 1000, ThroughputMbps: 8},
		{Timestamp: now.Add(-7 * time.Second), Kind: model.KindDownload, Bytes: 1000, ThroughputMbps: 12},
		{Timestamp: now.Add(-6 * time.Second), Kind: model.KindUpload, Lost: true},
	}

	s := Summarize(items, now.Add(-time.Minute))
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, items[1].Timestamp, s.From)
	assert.Equal(t, items[5].Timestamp, s.To)
	assert.Equal(t, 2, s.Ping.Received)
	assert.InDelta(t, 15, s.Ping.AvgMs, 1e-9)
	assert.Equal(t, 2, s.Download.Count)
	assert.Equal(t, int64(2000), s.Download.Bytes)
	assert.InDelta(t, 10, s.Download.AvgMbps, 1e-9)
	assert.Equal(t, 8.0, s.Download.MinMbps)
	assert.Equal(t, 12.0, s.Download.MaxMbps)
	assert.Equal(t, 1, s.Upload.Failures)
	assert.Zero(t, s.Upload.Count)
}

func TestMbps(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 8.0, Mbps(1_000_000, time.Second), 1e-9)
	assert.Zero(t, Mbps(1000, 0))
}

func TestPercentile_Edges(t *testing.T) {
	t.Parallel()

	values := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, percentile(values, 0))
	assert.Equal(t, 4.0, percentile(values, 1))
	assert.Equal(t, 2.0, percentile(values, 0.5))
}
