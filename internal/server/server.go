// Package server exposes tiles, world creation and lookup, and the static
// map client over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	billy "gopkg.in/src-d/go-billy.v4"
	"golang.org/x/sync/semaphore"

	"github.com/lawnchairsociety/planetmap/internal/config"
	"github.com/lawnchairsociety/planetmap/internal/logger"
	"github.com/lawnchairsociety/planetmap/internal/tile"
	"github.com/lawnchairsociety/planetmap/internal/worlds"
)

// Server routes HTTP requests to the tile service and world factory.
type Server struct {
	cfg     config.ServerConfig
	tiles   *tile.Service
	factory *worlds.Factory
	static  billy.Filesystem
	limiter *ConnLimiter
	renders *semaphore.Weighted

	handler    http.Handler
	httpServer *http.Server
}

// NewServer wires the routes and admission control. static is the
// directory holding the map client.
func NewServer(cfg config.ServerConfig, tiles *tile.Service, factory *worlds.Factory, static billy.Filesystem) *Server {
	s := &Server{
		cfg:     cfg,
		tiles:   tiles,
		factory: factory,
		static:  static,
		limiter: NewConnLimiter(cfg.Connections),
		renders: semaphore.NewWeighted(cfg.Render.MaxConcurrent),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /tiles", s.handleTile)
	mux.HandleFunc("GET /tiles/{path...}", s.handleTile)
	mux.HandleFunc("POST /new", s.handleNewWorld)
	mux.HandleFunc("GET /new", s.handleNewWorld)
	// A lookup with no id or extra segments still gets a JSON error.
	mux.HandleFunc("GET /get", s.handleGetWorld)
	mux.HandleFunc("GET /get/{id...}", s.handleGetWorld)
	mux.HandleFunc("GET /client/{file}", s.handleClientFile)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /{id}", s.handleWorldPage)
	mux.HandleFunc("/", handleFallback)

	s.handler = withRequestID(withCORS(cfg.HTTP.AllowOrigin, s.limiter.Middleware(mux)))
	s.httpServer = &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      s.handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	return s
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.HTTP.Address)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown. It returns nil after a
// clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	logger.Info("Planet map server listening", "address", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// expires.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	total, ips := s.limiter.Stats()
	logger.Info("Server shutdown complete", "in_flight", total, "clients", ips)
	return err
}
