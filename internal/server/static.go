package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// indexPage is served for / and /{id}.
const indexPage = "client.html"

// contentTypes maps everything after the first dot of a file name.
var contentTypes = map[string]string{
	"html": "text/html; charset=UTF-8",
	"js":   "text/javascript; charset=UTF-8",
	"css":  "text/css; charset=UTF-8",
	"png":  "image/png",
	"jpg":  "image/jpeg",
}

func contentType(name string) string {
	if _, ext, ok := strings.Cut(name, "."); ok {
		if ct, known := contentTypes[ext]; known {
			return ct
		}
	}
	return "text/plain; charset=UTF-8"
}

// serveStatic copies one file from the client filesystem. Names must be a
// single path element.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request, name string) {
	log := requestLogger(r)

	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		http.Error(w, fmt.Sprintf("Invalid file name %q", name), http.StatusNotFound)
		return
	}

	f, err := s.static.Open(name)
	if err != nil {
		log.Debug("Static file unavailable", "file", name, "error", err)
		http.Error(w, fmt.Sprintf("Unable to open %s", name), http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType(name))
	if _, err := io.Copy(w, f); err != nil {
		log.Warn("Failed to write static file", "file", name, "error", err)
	}
}

