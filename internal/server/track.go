package server

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// track reports routing, handling and the first response byte of every
// request to the session machine. Violations are logged by the machine
// and never block the request.
func (s *Server) track(h http.HandlerFunc) http.HandlerFunc {
	m := s.deps.Machine
	return func(w http.ResponseWriter, r *http.Request) {
		_ = m.Route(r.Method, r.URL.Path)
		_ = m.Handle()

		tw := &trackingWriter{ResponseWriter: w, respond: m.Respond}
		h(tw, r)
		tw.responding()
	}
}

type trackingWriter struct {
	http.ResponseWriter
	once    sync.Once
	respond func() error
}

func (w *trackingWriter) responding() {
	w.once.Do(func() { _ = w.respond() })
}

func (w *trackingWriter) WriteHeader(code int) {
	w.responding()
	w.ResponseWriter.WriteHeader(code)
}

func (w *trackingWriter) Write(p []byte) (int, error) {
	w.responding()
	return w.ResponseWriter.Write(p)
}

func (w *trackingWriter) Flush() {
	w.responding()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *trackingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	w.responding()
	return hj.Hijack()
}
