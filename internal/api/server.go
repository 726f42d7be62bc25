package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/schematic-core/internal/audit"
	"github.com/nerrad567/schematic-core/internal/editor"
	"github.com/nerrad567/schematic-core/internal/infrastructure/config"
	"github.com/nerrad567/schematic-core/internal/infrastructure/logging"
)

// shutdownGrace bounds how long Close waits for in-flight requests.
const shutdownGrace = 10 * time.Second

var (
	ErrMissingDependency = errors.New("api: missing dependency")
	ErrNotStarted        = errors.New("api: server not started")
)

// Deps wires the server to the rest of the service.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Session  *editor.Session
	Version  string

	// Audit records mutations. Optional.
	Audit audit.Repository

	// Hub is shared with the notification relay. When nil the server runs
	// its own from Start.
	Hub *Hub
}

// Server exposes an editor session over HTTP and WebSocket.
type Server struct {
	cfg     config.APIConfig
	wsCfg   config.WebSocketConfig
	secCfg  config.SecurityConfig
	logger  *logging.Logger
	session *editor.Session
	audit   audit.Repository
	version string
	hub     *Hub

	http     *http.Server
	listener net.Listener
	cancel   context.CancelFunc
}

// New checks deps and returns an unstarted server.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, fmt.Errorf("%w: logger", ErrMissingDependency)
	case deps.Session == nil:
		return nil, fmt.Errorf("%w: editor session", ErrMissingDependency)
	case deps.Security.JWT.Secret == "":
		return nil, fmt.Errorf("%w: jwt secret", ErrMissingDependency)
	}

	s := &Server{
		cfg:     deps.Config,
		wsCfg:   deps.WS,
		secCfg:  deps.Security,
		logger:  deps.Logger,
		session: deps.Session,
		audit:   deps.Audit,
		version: deps.Version,
		hub:     deps.Hub,
	}
	if s.hub != nil {
		s.hub.SetSnapshot(s.syncSnapshot)
	}
	return s, nil
}

func (s *Server) syncSnapshot() any {
	return s.snapshot()
}

// Hub returns the WebSocket hub, nil before Start unless one was injected.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start binds the listener and serves in the background until Close. A
// bind failure is returned here rather than logged later.
func (s *Server) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger.Component("websocket"))
		s.hub.SetSnapshot(s.syncSnapshot)
		go s.hub.Run(ctx)
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln

	s.http = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.Timeouts.Read.Duration(),
		ReadHeaderTimeout: s.cfg.Timeouts.Read.Duration(),
		WriteTimeout:      s.cfg.Timeouts.Write.Duration(),
		IdleTimeout:       s.cfg.Timeouts.Idle.Duration(),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	tls := s.cfg.TLS
	s.logger.Info("API server listening", "address", ln.Addr().String(), "tls", tls.Enabled)
	go func() {
		var err error
		if tls.Enabled {
			err = s.http.ServeTLS(ln, tls.CertFile, tls.KeyFile)
		} else {
			err = s.http.Serve(ln)
		}
		if !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, useful when the configured port is 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close stops accepting requests and waits up to shutdownGrace for those
// in flight. It is a no-op before Start.
func (s *Server) Close() error {
	if s.http == nil {
		return nil
	}
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	s.logger.Info("API server shutting down")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports ErrNotStarted until Start succeeds.
func (s *Server) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("api health check: %w", err)
	}
	if s.http == nil {
		return ErrNotStarted
	}
	return nil
}
