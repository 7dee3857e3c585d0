package dashboard

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"arsat/finanzas/internal/logging"

	"github.com/sirupsen/logrus"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server runs the dashboard HTTP server until its context ends.
type Server struct {
	srv    *http.Server
	logger logging.Logger
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, handler http.Handler, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	// net/http reports connection errors through a *log.Logger
	if la, ok := logger.(*logging.LogrusAdapter); ok {
		srv.ErrorLog = log.New(la.Logrus().WriterLevel(logrus.WarnLevel), "", 0)
	}
	return &Server{srv: srv, logger: logger}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Dashboard listening", logging.F("addr", ln.Addr().String()))
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
