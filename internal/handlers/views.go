package handlers

import (
	"net/http"

	"github.com/photocard-tools/cardfolio/internal/catalog"
	"github.com/photocard-tools/cardfolio/internal/models"
	"github.com/photocard-tools/cardfolio/internal/share"
	"github.com/photocard-tools/cardfolio/internal/view"
)

type viewResponse struct {
	Mode          modeInfo     `json:"mode"`
	Meta          catalog.Meta `json:"meta"`
	Groups        []view.Group `json:"groups"`
	EventOptions  []string     `json:"eventOptions"`
	VendorOptions []string     `json:"vendorOptions"`
}

type modeInfo struct {
	Editable          bool   `json:"editable"`
	AdminPanelVisible bool   `json:"adminPanelVisible"`
	ReadOnlyShare     bool   `json:"readOnlyShare"`
	Source            string `json:"source"`
}

// GetView returns the grouped display structure for the current filters,
// plus the mode flags the page needs to decide what controls to show.
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	groups := mgr.View(view.Options{
		Query:       q.Get("q"),
		EventFilter: q.Get("event"),
		YearFilter:  q.Get("year"),
		GroupBy:     view.GroupBy(q.Get("group")),
	})

	m := mgr.Mode()
	h.writeJSON(w, viewResponse{
		Mode: modeInfo{
			Editable:          m.Editable,
			AdminPanelVisible: m.AdminPanelVisible,
			ReadOnlyShare:     m.ReadOnlyShare,
			Source:            string(m.Source),
		},
		Meta:          mgr.Meta(),
		Groups:        groups,
		EventOptions:  models.EventOptions,
		VendorOptions: models.VendorOptions,
	})
}

// Export returns the catalog as a download. Embedded image payloads are
// dropped unless images=1 is passed.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}

	cat := mgr.ExportSnapshot(r.URL.Query().Get("images") == "1")
	w.Header().Set("Content-Disposition", `attachment; filename="catalog.json"`)
	h.writeJSON(w, cat)
}

// ShareLink builds a read-only link embedding the whole catalog. The page
// base defaults to the request origin but can be overridden with base= so
// links point at a published copy of the page.
func (h *Handler) ShareLink(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}

	base := r.URL.Query().Get("base")
	if base == "" {
		base = requestOrigin(r) + "/"
	}

	meta := mgr.Meta()
	title := r.URL.Query().Get("title")
	if title == "" {
		title = meta.Title
	}
	note := r.URL.Query().Get("note")
	if note == "" {
		note = meta.Note
	}

	link, err := share.Link(base, share.NewSnapshot(title, note, mgr.Records()))
	if err != nil {
		h.writeError(w, "Failed to build share link: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]string{"url": link})
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
