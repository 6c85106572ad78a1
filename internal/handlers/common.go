// Package handlers exposes the catalog over HTTP for the browser UI. Every
// request resolves its operating mode from the query string, exactly like
// the page invocation parameters the UI carries around.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/photocard-tools/cardfolio/internal/catalog"
	"github.com/photocard-tools/cardfolio/internal/mode"
	"github.com/photocard-tools/cardfolio/internal/store"
)

type Handler struct {
	kv        store.KV
	sessions  *catalog.Sessions
	publicDir string
	client    *http.Client
}

// New creates the HTTP handler set on top of the given persistence adapter.
func New(kv store.KV, publicDir string) *Handler {
	return &Handler{
		kv:        kv,
		sessions:  catalog.NewSessions(),
		publicDir: publicDir,
		client:    nil, // managers create their own default client
	}
}

// managerFor returns the state manager for the request's resolved mode,
// loading the catalog source on first use.
func (h *Handler) managerFor(w http.ResponseWriter, r *http.Request) (*catalog.Manager, bool) {
	m := mode.Resolve(r.URL.Query())
	mgr, err := h.sessions.GetOrCreate(catalog.Key(m), func() (*catalog.Manager, error) {
		mgr := catalog.NewManager(h.kv, m, h.client)
		if err := mgr.Load(r.Context()); err != nil {
			return nil, err
		}
		return mgr, nil
	})
	if err != nil {
		h.writeError(w, "Failed to load catalog: "+err.Error(), statusFor(err))
		return nil, false
	}
	return mgr, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrNotEditable):
		return http.StatusForbidden
	case errors.Is(err, catalog.ErrLoad):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}
