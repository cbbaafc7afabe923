package transfer

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"apdiag/internal/config"
	"apdiag/internal/timeutil"
)

// Engine serves /api/download and /api/upload.
type Engine struct {
	sender      *Sender
	defaultSize int64
	writeSlice  time.Duration
	control     func() net.Conn
	log         zerolog.Logger
}

// NewEngine builds an engine from cfg. control, when set, returns the
// unwrapped connection of the active session for socket-level checks.
func NewEngine(cfg config.TransferConfig, clock timeutil.Clock, control func() net.Conn, log zerolog.Logger) *Engine {
	defaultSize := cfg.DefaultSize
	if defaultSize <= 0 {
		defaultSize = config.DefaultDownloadSize
	}
	return &Engine{
		sender:      NewSender(cfg.ChunkSize, cfg.BackpressureYield, clock, log),
		defaultSize: defaultSize,
		writeSlice:  cfg.WriteSlice,
		control:     control,
		log:         log,
	}
}

// ParseSize interprets the size query value. Absent, malformed and
// negative values fall back to def; zero is honoured.
func ParseSize(raw string, def int64) int64 {
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// ServeDownload streams size bytes of pattern with an exact Content-Length.
func (e *Engine) ServeDownload(w http.ResponseWriter, r *http.Request) {
	size := ParseSize(r.URL.Query().Get("size"), e.defaultSize)
	start := time.Now()

	hj, ok := w.(http.Hijacker)
	if !ok {
		e.serveBuffered(w, r, size, start)
		return
	}
	conn, rw, err := hj.Hijack()
	if err != nil {
		e.log.Debug().Err(err).Msg("hijack unavailable, streaming through response writer")
		e.serveBuffered(w, r, size, start)
		return
	}
	defer conn.Close()

	header := fmt.Sprintf("HTTP/1.1 200 OK\r\n"+
		"Content-Type: application/octet-stream\r\n"+
		"Content-Length: %d\r\n"+
		"Connection: close\r\n\r\n", size)
	if _, err := rw.WriteString(header); err != nil {
		e.log.Debug().Err(err).Msg("download header write failed")
		return
	}
	if err := rw.Flush(); err != nil {
		e.log.Debug().Err(err).Msg("download header flush failed")
		return
	}

	var ctl net.Conn
	if e.control != nil {
		ctl = e.control()
	}
	tc := newTCPConn(conn, ctl, e.writeSlice)
	if err := tc.SetNoDelay(); err != nil {
		e.log.Debug().Err(err).Msg("set nodelay failed")
	}

	sent := e.sender.Send(r.Context(), tc, size)
	e.logDone(size, sent, start)
}

func (e *Engine) serveBuffered(w http.ResponseWriter, r *http.Request, size int64, start time.Time) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)

	fl, _ := w.(http.Flusher)
	conn := &responseConn{
		w:         flushWriter{w: w, f: fl},
		connected: func() bool { return r.Context().Err() == nil },
	}
	sent := e.sender.Send(r.Context(), conn, size)
	e.logDone(size, sent, start)
}

func (e *Engine) logDone(size, sent int64, start time.Time) {
	ev := e.log.Debug()
	if sent < size {
		ev = e.log.Info()
	}
	ev.Str("sent", humanize.Bytes(uint64(sent))).
		Str("size", humanize.Bytes(uint64(size))).
		Dur("elapsed", time.Since(start)).
		Bool("complete", sent == size).
		Msg("download finished")
}

type flushWriter struct {
	w io.Writer
	f http.Flusher
}

func (fw flushWriter) Write(p []byte) (int, error) { return fw.w.Write(p) }

func (fw flushWriter) Flush() {
	if fw.f != nil {
		fw.f.Flush()
	}
}

// ServeUpload consumes and discards the request body, then acknowledges.
func (e *Engine) ServeUpload(w http.ResponseWriter, r *http.Request) {
	n, err := Drain(r)
	if err != nil {
		e.log.Debug().Err(err).Msg("upload body ended early")
	}
	e.log.Debug().Str("received", humanize.Bytes(uint64(n))).Msg("upload drained")

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "OK")
}

// Drain reads every multipart part of r and discards it. Non-multipart
// bodies are read to the end. It returns the payload bytes consumed.
func Drain(r *http.Request) (int64, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return io.Copy(io.Discard, r.Body)
	}

	var total int64
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			n, _ := io.Copy(io.Discard, r.Body)
			return total + n, fmt.Errorf("next part: %w", err)
		}
		n, err := io.Copy(io.Discard, part)
		total += n
		part.Close()
		if err != nil {
			return total, fmt.Errorf("read part %q: %w", part.FormName(), err)
		}
	}
}
