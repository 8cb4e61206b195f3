// Package server provides the HTTP API for semdex.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/semdex/semdex/internal/config"
	"github.com/semdex/semdex/internal/indexer"
	"github.com/semdex/semdex/internal/keyword"
	"github.com/semdex/semdex/internal/search"
	"github.com/semdex/semdex/internal/storage"
	"go.uber.org/zap"
)

// Server is the HTTP server for the semdex API.
type Server struct {
	engine  *search.Engine
	indexer *indexer.Indexer
	storage storage.Storage
	keyword keyword.Index
	cfg     *config.Config
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	idx *indexer.Indexer,
	store storage.Storage,
	kw keyword.Index,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if kw == nil {
		kw = keyword.NopIndex{}
	}
	return &Server{
		engine:  engine,
		indexer: idx,
		storage: store,
		keyword: kw,
		cfg:     cfg,
		logger:  logger,
	}
}

// Routes builds the API router. File routes take the path as a query
// parameter because absolute paths contain slashes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/index", s.handleIndex)
	r.Get("/api/v1/files", s.handleGetFile)
	r.Delete("/api/v1/files", s.handleDeleteFile)
	r.Get("/api/v1/status", s.handleStatus)
	r.Post("/api/v1/reset", s.handleReset)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
