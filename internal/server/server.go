// Package server exposes the diagnostic HTTP API.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"apdiag/internal/config"
	"apdiag/internal/model"
	"apdiag/internal/session"
	"apdiag/internal/timeutil"
)

//go:embed web/index.html
var indexHTML []byte

const notFoundBody = "404: Not Found"

type StatusSource interface {
	Snapshot(ctx context.Context) model.StatusSnapshot
}

type NetworkSource interface {
	Networks(ctx context.Context) []model.NetworkRecord
}

type ClientSource interface {
	Clients(ctx context.Context) []model.ClientRecord
}

type UplinkSource interface {
	Report(ctx context.Context) model.UplinkReport
}

type TransferHandler interface {
	ServeDownload(w http.ResponseWriter, r *http.Request)
	ServeUpload(w http.ResponseWriter, r *http.Request)
}

// Deps are the collaborators behind each endpoint. Uplink may be nil.
type Deps struct {
	Machine  *session.Machine
	Uptime   *timeutil.Uptime
	Status   StatusSource
	Networks NetworkSource
	Clients  ClientSource
	Uplink   UplinkSource
	Transfer TransferHandler
}

// Server routes requests of the single active session.
type Server struct {
	cfg    config.ServerConfig
	deps   Deps
	router *mux.Router
	log    zerolog.Logger
}

func New(cfg config.ServerConfig, deps Deps, log zerolog.Logger) *Server {
	if deps.Machine == nil {
		deps.Machine = session.NewMachine(nil, log)
	}
	if deps.Uptime == nil {
		deps.Uptime = timeutil.NewUptime(nil)
	}
	s := &Server{cfg: cfg, deps: deps, log: log}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter().SkipClean(true)
	r.HandleFunc("/", s.track(s.handleIndex)).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.track(s.handleStatus)).Methods(http.MethodGet)
	r.HandleFunc("/api/scan", s.track(s.handleScan)).Methods(http.MethodGet)
	r.HandleFunc("/api/clients", s.track(s.handleClients)).Methods(http.MethodGet)
	r.HandleFunc("/api/ping", s.track(s.handlePing)).Methods(http.MethodGet)
	r.HandleFunc("/api/download", s.track(s.deps.Transfer.ServeDownload)).Methods(http.MethodGet)
	r.HandleFunc("/api/upload", s.track(s.deps.Transfer.ServeUpload)).Methods(http.MethodPost)
	r.HandleFunc("/api/uplink", s.track(s.handleUplink)).Methods(http.MethodGet)

	fallback := s.track(handleNotFound)
	r.NotFoundHandler = fallback
	r.MethodNotAllowedHandler = fallback
	return r
}

// Handler returns the routing handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on the configured address until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve handles one connection at a time from l until ctx is done. Each
// connection carries exactly one request.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}
	srv.SetKeepAlivesEnabled(false)

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.log.Warn().Err(err).Msg("http shutdown")
			}
		case <-stopped:
		}
	}()

	s.log.Info().Str("listen", l.Addr().String()).Msg("http server listening")
	err := srv.Serve(session.Listener(l, s.deps.Machine))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Status.Snapshot(r.Context()))
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Networks.Networks(r.Context()))
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Clients.Clients(r.Context()))
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(strconv.FormatInt(s.deps.Uptime.Millis(), 10)))
}

func (s *Server) handleUplink(w http.ResponseWriter, r *http.Request) {
	if s.deps.Uplink == nil {
		writeJSON(w, http.StatusOK, model.UplinkReport{})
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Uplink.Report(r.Context()))
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(notFoundBody))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(v)
}
