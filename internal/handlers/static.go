package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/photocard-tools/cardfolio/internal/mode"
)

// Root serves the page and its assets from the public directory. A bare
// navigation with no mode parameters first checks for a catalog published
// next to the page and, when present, redirects to view it.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	if path == "" {
		_, err := os.Stat(filepath.Join(h.publicDir, "catalog.json"))
		target, redirect := mode.RedirectToDiscoveredCatalog(
			r.URL.Query(), err == nil, "/", requestOrigin(r)+"/catalog.json")
		if redirect {
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		path = "index.html"
	}

	// Prevent directory traversal attacks
	if strings.Contains(path, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	// Set appropriate content type based on file extension
	switch {
	case strings.HasSuffix(path, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(path, ".html"):
		w.Header().Set("Content-Type", "text/html")
	case strings.HasSuffix(path, ".json"):
		w.Header().Set("Content-Type", "application/json")
	}

	http.ServeFile(w, r, filepath.Join(h.publicDir, path))
}
