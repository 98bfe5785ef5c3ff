// Package api is the local control API: a headless way to drive the player
// and read what it is doing.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"briefcast/coordinator"
	"briefcast/gateway"
	"briefcast/history"
	"briefcast/lyrics"
	"briefcast/session"

	"github.com/gin-gonic/gin"
)

// History is the listening history the API reads.
type History interface {
	Recent(n int) ([]history.Play, error)
}

// Options wires a Server. History and Metrics are optional.
type Options struct {
	Session *session.Session
	History History
	Metrics http.Handler
}

// Server serves the control API.
type Server struct {
	session    *session.Session
	history    History
	metrics    http.Handler
	httpServer *http.Server
}

func NewServer(opts Options) *Server {
	return &Server{session: opts.Session, history: opts.History, metrics: opts.Metrics}
}

// NewRouter constructs a Gin engine with registered routes.
func (s *Server) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", handleHealth)
	s.RegisterPlaybackRoutes(r)
	s.RegisterGenerationRoutes(r)
	s.RegisterViewRoutes(r)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}
	return r
}

// Start listens on addr in the background.
func (s *Server) Start(addr string) {
	s.httpServer = &http.Server{Addr: addr, Handler: s.NewRouter()}
	log.Printf("Starting control API on %s", addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("❌ HTTP server error: %v", err)
		}
	}()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Println("Shutting down control API...")
	return s.httpServer.Shutdown(ctx)
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps domain errors to status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, coordinator.ErrGenerationInFlight):
		status = http.StatusConflict
	case errors.Is(err, coordinator.ErrNotCached), errors.Is(err, lyrics.ErrNoSegment):
		status = http.StatusNotFound
	case errors.Is(err, coordinator.ErrNoSource):
		status = http.StatusBadRequest
	case errors.Is(err, gateway.ErrPremiumRequired):
		status = http.StatusForbidden
	case errors.Is(err, session.ErrNoStudio):
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		log.Printf("❌ API Error: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
