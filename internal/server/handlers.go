package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/semdex/semdex/internal/embedding"
	"github.com/semdex/semdex/internal/extract"
	"github.com/semdex/semdex/internal/keyword"
	"github.com/semdex/semdex/internal/models"
	"github.com/semdex/semdex/internal/storage"
	"go.uber.org/zap"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query.Normalize(s.cfg.Search.DefaultLimit, s.cfg.Search.MaxLimit)
	s.logger.Debug("search request",
		zap.String("query", query.Query),
		zap.Int("limit", query.Limit),
		zap.Bool("keyword", query.Keyword))

	var (
		response *models.SearchResponse
		err      error
	)
	if query.Keyword {
		response, err = s.engine.SearchKeyword(r.Context(), &query)
	} else {
		response, err = s.engine.Search(r.Context(), &query)
	}
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, statusForError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

type indexRequest struct {
	Path string `json:"path"`
}

// handleIndex ingests the file or directory named in the request body. A
// single file responds 201 with the stored record; a directory responds 200
// with the ingestion report.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	info, err := os.Stat(req.Path)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "path not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("index request", zap.String("path", req.Path), zap.Bool("dir", info.IsDir()))

	if info.IsDir() {
		report, err := s.indexer.IndexDirectory(r.Context(), req.Path)
		if err != nil {
			s.logger.Error("directory indexing failed", zap.Error(err))
			s.respondError(w, statusForError(err), err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, report)
		return
	}

	rec, err := s.indexer.IndexFile(r.Context(), req.Path)
	if err != nil {
		s.logger.Error("indexing failed", zap.String("path", req.Path), zap.Error(err))
		s.respondError(w, statusForError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	rec, err := s.storage.Get(r.Context(), abs)
	if err != nil {
		s.respondError(w, statusForError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	s.logger.Debug("delete request", zap.String("path", path))
	if err := s.indexer.Delete(r.Context(), path); err != nil {
		s.logger.Error("deletion failed", zap.String("path", path), zap.Error(err))
		s.respondError(w, statusForError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"path": path, "status": "deleted"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	fileCount, err := s.storage.Count(r.Context())
	if err != nil {
		s.logger.Error("status: count failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"files": fileCount,
	}
	if docs, err := s.keyword.DocCount(); err == nil {
		resp["keyword_docs"] = docs
	}
	if diskBytes, err := storage.DiskUsageBytes(
		s.cfg.Storage.DatabasePath,
		s.cfg.Storage.KeywordIndexPath,
	); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = map[string]interface{}{
		"embedding_provider":   s.cfg.Embedding.Provider,
		"embedding_dimensions": s.cfg.Embedding.Dimensions,
		"database_path":        s.cfg.Storage.DatabasePath,
		"keyword_index_path":   s.cfg.Storage.KeywordIndexPath,
		"keyword_enabled":      s.cfg.Storage.KeywordEnabledOrDefault(),
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.indexer.Reset(r.Context()); err != nil {
		s.logger.Error("reset failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusForError maps the domain sentinels onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicatePath):
		return http.StatusConflict
	case errors.Is(err, extract.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, extract.ErrPDF):
		return http.StatusUnprocessableEntity
	case errors.Is(err, keyword.ErrDisabled):
		return http.StatusBadRequest
	case errors.Is(err, embedding.ErrEmbed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
