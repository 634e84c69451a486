package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lawnchairsociety/planetmap/internal/tile"
	"github.com/lawnchairsociety/planetmap/internal/worlds"
)

const fallbackPage = "<html><body>Unable to complete request</body></html>\r\n"

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)
	addr := tile.ParsePath(r.URL.Path)

	if err := s.renders.Acquire(r.Context(), 1); err != nil {
		log.Debug("Tile request abandoned while queued", "tile", addr.String(), "error", err)
		http.Error(w, "Tile request cancelled", http.StatusServiceUnavailable)
		return
	}
	start := time.Now()
	data, err := s.tiles.Tile(addr)
	s.renders.Release(1)

	if err != nil {
		log.Error("Failed to encode tile", "tile", addr.String(), "error", err)
		http.Error(w, "Unable to render tile", http.StatusInternalServerError)
		return
	}

	log.Debug("Tile rendered",
		"tile", addr.String(),
		"size", humanize.Bytes(uint64(len(data))),
		"duration", time.Since(start))

	w.Header().Set("Content-Type", s.tiles.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		log.Warn("Failed to write tile", "tile", addr.String(), "error", err)
	}
}

func (s *Server) handleNewWorld(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)

	body, err := readCreateBody(r.Body, s.cfg.HTTP.MaxBodyBytes)
	switch {
	case errors.Is(err, errBodyTooLarge):
		log.Warn("Ignoring oversized world request body",
			"limit", humanize.Bytes(uint64(s.cfg.HTTP.MaxBodyBytes)))
	case err != nil:
		log.Debug("Ignoring unreadable world request body", "error", err)
		body = nil
	}

	// The journal write outlives a client that hangs up.
	ctx := context.WithoutCancel(r.Context())
	world := s.factory.Create(ctx, worlds.ParseCreateRequest(body))

	log.Info("World created", "world_id", world.ID, "name", world.Name)
	writeJSON(w, r, http.StatusOK, world)
}

var errBodyTooLarge = errors.New("request body too large")

// readCreateBody reads at most limit bytes of body. A body past the limit is
// discarded whole and reported as errBodyTooLarge, so the caller creates a
// world with no overrides instead of parsing a truncated payload.
func readCreateBody(body io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(body)
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

func (s *Server) handleGetWorld(w http.ResponseWriter, r *http.Request) {
	world, err := s.factory.Registry().Lookup(r.PathValue("id"))
	if err != nil {
		status := http.StatusNotFound
		if errors.Is(err, worlds.ErrInvalidID) {
			status = http.StatusBadRequest
		}
		writeJSON(w, r, status, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, r, http.StatusOK, world)
}

func (s *Server) handleClientFile(w http.ResponseWriter, r *http.Request) {
	s.serveStatic(w, r, r.PathValue("file"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.serveStatic(w, r, indexPage)
}

// handleWorldPage serves the client for /{id} when id is a world ID.
func (s *Server) handleWorldPage(w http.ResponseWriter, r *http.Request) {
	if _, err := strconv.ParseUint(r.PathValue("id"), 10, 64); err != nil {
		handleFallback(w, r)
		return
	}
	s.serveStatic(w, r, indexPage)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthBody{
		Status: "ok",
		Worlds: s.factory.Registry().Len(),
	})
}

func handleFallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	w.WriteHeader(http.StatusNotFound)
	if _, err := io.WriteString(w, fallbackPage); err != nil {
		requestLogger(r).Warn("Failed to write fallback page", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

type healthBody struct {
	Status string `json:"status"`
	Worlds int    `json:"worlds"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		requestLogger(r).Error("Failed to encode response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		requestLogger(r).Warn("Failed to write response", "error", err)
	}
}
