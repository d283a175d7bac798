// Package httpserver exposes the CMRP application services as a JSON API
// and serves the dashboard pages.
package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/application/services"
)

const defaultShutdownTimeout = 5 * time.Second

// Options configures the HTTP server
type Options struct {
	Services        *services.Services
	StaticDir       string
	CookieName      string
	SecureCookie    bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Logger          *zap.Logger
}

// Server routes HTTP requests to the application services
type Server struct {
	svc    *services.Services
	opts   Options
	router *mux.Router
	srv    *http.Server
	lis    net.Listener
	logger *zap.Logger
}

// New builds a server with every route registered
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.CookieName == "" {
		opts.CookieName = "cmrp_session"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{
		svc:    opts.Services,
		opts:   opts,
		router: mux.NewRouter(),
		logger: opts.Logger.Named("http"),
	}
	s.routes()
	s.srv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// Handler returns the root handler, middleware included
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("listening", zap.String("addr", l.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(cctx); err != nil {
			s.logger.Warn("shutdown did not complete", zap.Error(err))
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Close stops accepting connections
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}
