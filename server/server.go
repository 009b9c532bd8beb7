package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/techagentng/healthtrack/config"
	"github.com/techagentng/healthtrack/services"
	"github.com/techagentng/healthtrack/views"
	"golang.org/x/sync/errgroup"
)

// Server serves the app pages and the JSON API.
type Server struct {
	Config        *config.Config
	Router        *views.Router
	Messages      services.Translator
	AuthService   services.AuthService
	ReportService services.ReportService
	ScanService   services.ScanService
}

// Start listens on Config.Port until ctx is cancelled or the process is
// interrupted, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Config.Port),
		Handler:           s.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server started on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Println("Shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
