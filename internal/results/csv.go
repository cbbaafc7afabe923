// Package results stores and summarizes client-side measurement samples.
package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"apdiag/internal/model"
)

var header = []string{
	"timestamp",
	"target",
	"kind",
	"seq",
	"rtt_ms",
	"bytes",
	"duration_ms",
	"throughput_mbps",
	"lost",
}

// WriteCSV writes samples with a header row.
func WriteCSV(w io.Writer, items []model.Sample) error {
	return writeRows(w, items, true)
}

// AppendCSV appends samples to path, writing the header only when the
// file is new or empty.
func AppendCSV(path string, items []model.Sample) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	return writeRows(file, items, info.Size() == 0)
}

func writeRows(w io.Writer, items []model.Sample, withHeader bool) error {
	writer := csv.NewWriter(w)
	if withHeader {
		if err := writer.Write(header); err != nil {
			return err
		}
	}
	for _, s := range items {
		record := []string{
			s.Timestamp.UTC().Format(time.RFC3339Nano),
			s.Target,
			s.Kind,
			strconv.Itoa(s.Seq),
			strconv.FormatFloat(s.RTTMs, 'f', 3, 64),
			strconv.FormatInt(s.Bytes, 10),
			strconv.FormatFloat(s.DurationMs, 'f', 3, 64),
			strconv.FormatFloat(s.ThroughputMbps, 'f', 3, 64),
			strconv.FormatBool(s.Lost),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV loads samples from a CSV file.
func ReadCSV(path string) ([]model.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return readCSV(file)
}

func readCSV(r io.Reader) ([]model.Sample, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	start := 0
	if len(records[0]) > 0 && records[0][0] == header[0] {
		start = 1
	}

	items := make([]model.Sample, 0, len(records)-start)
	for i := start; i < len(records); i++ {
		rec := records[i]
		if len(rec) < len(header) {
			return nil, fmt.Errorf("invalid record at line %d", i+1)
		}
		ts, err := time.Parse(time.RFC3339Nano, rec[0])
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp at line %d: %w", i+1, err)
		}
		seq, _ := strconv.Atoi(rec[3])
		rtt, _ := strconv.ParseFloat(rec[4], 64)
		n, _ := strconv.ParseInt(rec[5], 10, 64)
		dur, _ := strconv.ParseFloat(rec[6], 64)
		mbps, _ := strconv.ParseFloat(rec[7], 64)
		lost, _ := strconv.ParseBool(rec[8])
		items = append(items, model.Sample{
			Timestamp:      ts,
			Target:         rec[1],
			Kind:           rec[2],
			Seq:            seq,
			RTTMs:          rtt,
			Bytes:          n,
			DurationMs:     dur,
			ThroughputMbps: mbps,
			Lost:           lost,
		})
	}

	return items, nil
}
