package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/photocard-tools/cardfolio/internal/catalog"
	"github.com/photocard-tools/cardfolio/internal/models"
)

// Register wires every route onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthcheck", h.Healthcheck)
	mux.HandleFunc("GET /api/view", h.GetView)
	mux.HandleFunc("GET /api/records", h.ListRecords)
	mux.HandleFunc("POST /api/records", h.CreateRecord)
	mux.HandleFunc("GET /api/records/{id}", h.GetRecord)
	mux.HandleFunc("PUT /api/records/{id}", h.UpdateRecord)
	mux.HandleFunc("DELETE /api/records/{id}", h.DeleteRecord)
	mux.HandleFunc("POST /api/records/{id}/have", h.ToggleHave)
	mux.HandleFunc("POST /api/import", h.ImportRecords)
	mux.HandleFunc("POST /api/samples", h.LoadSamples)
	mux.HandleFunc("GET /api/export", h.Export)
	mux.HandleFunc("GET /api/share", h.ShareLink)
	mux.HandleFunc("/", h.Root)
}

func (h *Handler) Healthcheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, mgr.Records())
}

func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}

	var draft models.Record
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.writeError(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := mgr.Create(draft)
	if err != nil {
		h.writeError(w, "Failed to create record: "+err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, created)
}

func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	for _, record := range mgr.Records() {
		if record.ID == id {
			mgr.SetDetail(id)
			h.writeJSON(w, record)
			return
		}
	}
	h.writeError(w, "No record with id "+id, http.StatusNotFound)
}

func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}

	var patch catalog.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := mgr.Update(r.PathValue("id"), patch)
	if err != nil {
		h.writeError(w, "Failed to update record: "+err.Error(), statusFor(err))
		return
	}
	h.writeJSON(w, updated)
}

func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}

	if err := mgr.Delete(r.PathValue("id")); err != nil {
		h.writeError(w, "Failed to delete record: "+err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleHave(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}

	var body struct {
		Have bool `json:"have"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := mgr.ToggleHave(r.PathValue("id"), body.Have); err != nil {
		h.writeError(w, "Failed to toggle ownership: "+err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ImportRecords(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}
	if !mgr.Mode().Editable {
		h.writeError(w, "Catalog is not editable in this mode", http.StatusForbidden)
		return
	}

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.writeError(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	records, err := models.NormalizeRecords(raw)
	if err != nil {
		h.writeError(w, "Failed to parse records: "+err.Error(), http.StatusBadRequest)
		return
	}

	mgr.BulkImport(records)
	h.writeJSON(w, map[string]int{"imported": len(records)})
}

func (h *Handler) LoadSamples(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}
	if !mgr.Mode().Editable {
		h.writeError(w, "Catalog is not editable in this mode", http.StatusForbidden)
		return
	}

	mgr.LoadSamples()
	h.writeJSON(w, map[string]int{"imported": len(mgr.Records())})
}
