// Package catalog owns the working record list for a session: loading it
// from whichever source the resolved mode names, applying mutations, and
// writing through to the persistence adapter after every change.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/photocard-tools/cardfolio/internal/mode"
	"github.com/photocard-tools/cardfolio/internal/models"
	"github.com/photocard-tools/cardfolio/internal/share"
	"github.com/photocard-tools/cardfolio/internal/store"
	"github.com/photocard-tools/cardfolio/internal/view"
)

// Meta is the share metadata of the active catalog source.
type Meta struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Note  string `json:"note"`
}

// Patch carries the fields of an update; nil pointers leave the existing
// value alone.
type Patch struct {
	Title        *string `json:"title"`
	PurchaseDate *string `json:"purchaseDate"`
	Event        *string `json:"event"`
	Vendor       *string `json:"vendor"`
	Notes        *string `json:"notes"`
	Have         *bool   `json:"have"`
	ImageDataURL *string `json:"imageDataUrl"`
	ImageURL     *string `json:"imageUrl"`
}

// Manager is the single owner of the in-memory catalog and, in share mode,
// the ownership overlay. Handlers re-enter it concurrently, so state is
// guarded the same way the session store guards its map.
type Manager struct {
	mu     sync.RWMutex
	kv     store.KV
	mode   mode.Mode
	client *http.Client

	meta       Meta
	records    []models.Record
	overlay    map[string]bool
	overlayKey string
	detailID   string
	nextIndex  int
}

// NewManager creates a manager for the given resolved mode. The HTTP client
// is only used for remote catalog sources; pass nil to get a default with a
// sane timeout.
func NewManager(kv store.KV, m mode.Mode, client *http.Client) *Manager {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Manager{
		kv:      kv,
		mode:    m,
		client:  client,
		overlay: make(map[string]bool),
	}
}

// Mode returns the resolved mode this manager was created for.
func (m *Manager) Mode() mode.Mode {
	return m.mode
}

// Load populates the working list from the mode's catalog source. Load and
// parse failures are returned for user display; the catalog stays empty
// rather than partially applied.
func (m *Manager) Load(ctx context.Context) error {
	switch m.mode.Source {
	case mode.SourceRemoteURL:
		return m.loadRemote(ctx)
	case mode.SourceSnapshot:
		return m.loadSnapshot()
	default:
		return m.loadLocal(ctx)
	}
}

func (m *Manager) loadLocal(ctx context.Context) error {
	m.mu.Lock()
	data, ok, err := m.kv.Get(store.KeyCatalog)
	if err != nil {
		slog.Error("Failed to read local catalog, starting empty", "error", err)
	}
	if ok && err == nil {
		var records []models.Record
		if err := json.Unmarshal(data, &records); err != nil {
			slog.Error("Local catalog is corrupt, starting empty", "error", err)
		} else {
			m.setRecordsLocked(records)
		}
	}
	m.mu.Unlock()

	// An edit/admin session pointed at a src URL imports the remote
	// catalog into the local store once, best effort.
	if m.mode.Editable && m.mode.SourceURL != "" {
		cat, err := m.fetchCatalog(ctx, m.mode.SourceURL)
		if err != nil {
			slog.Warn("Failed to import src catalog into edit session", "url", m.mode.SourceURL, "error", err)
			return nil
		}
		m.BulkImport(cat.Items)
	}
	return nil
}

func (m *Manager) loadRemote(ctx context.Context) error {
	cat, err := m.fetchCatalog(ctx, m.mode.SourceURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta = Meta{ID: m.mode.SourceURL, Title: cat.Title, Note: cat.Note}
	m.setRecordsLocked(cat.Items)
	m.overlayKey = store.KeyShareCheckPrefix + m.mode.SourceURL
	m.loadOverlayLocked()
	return nil
}

func (m *Manager) loadSnapshot() error {
	snap, err := share.Decode(m.mode.Snapshot)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta = Meta{ID: snap.ID, Title: snap.Title, Note: snap.Note}
	m.setRecordsLocked(snap.Items)
	m.overlayKey = store.KeyShareCheckPrefix + snap.ID
	m.loadOverlayLocked()
	return nil
}

func (m *Manager) fetchCatalog(ctx context.Context, url string) (*models.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 50*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog body: %w", err)
	}
	return models.ParseCatalog(body)
}

func (m *Manager) setRecordsLocked(records []models.Record) {
	m.records = records
	m.nextIndex = 0
	for _, r := range records {
		if r.InsertionIndex >= m.nextIndex {
			m.nextIndex = r.InsertionIndex + 1
		}
	}
}

func (m *Manager) loadOverlayLocked() {
	m.overlay = make(map[string]bool)
	data, ok, err := m.kv.Get(m.overlayKey)
	if err != nil {
		slog.Error("Failed to read ownership overlay, starting empty", "key", m.overlayKey, "error", err)
		return
	}
	if !ok {
		return
	}
	if err := json.Unmarshal(data, &m.overlay); err != nil {
		slog.Error("Ownership overlay is corrupt, starting empty", "key", m.overlayKey, "error", err)
		m.overlay = make(map[string]bool)
	}
}

// Create validates the draft, assigns id and insertion index, appends it and
// persists. Records sharing a purchase date display in creation order, so
// new entries always land at the end.
func (m *Manager) Create(draft models.Record) (models.Record, error) {
	if !m.mode.Editable {
		return models.Record{}, ErrNotEditable
	}
	if draft.PurchaseDate == "" {
		return models.Record{}, fmt.Errorf("%w: purchase date is required", ErrValidation)
	}
	year := models.DeriveYear(draft.PurchaseDate)
	if year == "" {
		return models.Record{}, fmt.Errorf("%w: purchase date %q does not resolve to a year", ErrValidation, draft.PurchaseDate)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	draft.ID = models.NewID()
	draft.Year = year
	draft.InsertionIndex = m.nextIndex
	m.nextIndex++
	m.records = append(m.records, draft)
	m.persistLocked()
	return draft, nil
}

// Update merges the patch into the record with the given id, re-deriving
// the year when the purchase date changes. Unknown ids are a no-op.
func (m *Manager) Update(id string, patch Patch) (models.Record, error) {
	if !m.mode.Editable {
		return models.Record{}, ErrNotEditable
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOfLocked(id)
	if idx < 0 {
		return models.Record{}, ErrNotFound
	}

	r := &m.records[idx]
	if patch.Title != nil {
		r.Title = *patch.Title
	}
	if patch.Event != nil {
		r.Event = *patch.Event
	}
	if patch.Vendor != nil {
		r.Vendor = *patch.Vendor
	}
	if patch.Notes != nil {
		r.Notes = *patch.Notes
	}
	if patch.Have != nil {
		r.Have = *patch.Have
	}
	if patch.ImageDataURL != nil {
		r.ImageDataURL = *patch.ImageDataURL
	}
	if patch.ImageURL != nil {
		r.ImageURL = *patch.ImageURL
	}
	if patch.PurchaseDate != nil && *patch.PurchaseDate != r.PurchaseDate {
		r.PurchaseDate = *patch.PurchaseDate
		r.Year = models.DeriveYear(r.PurchaseDate)
	}

	m.persistLocked()
	return *r, nil
}

// Delete removes exactly one record. Confirmation is the caller's concern;
// a runtime without a confirmation mechanism proceeds, since the action was
// explicitly requested. An open detail view on the deleted record is
// cleared.
func (m *Manager) Delete(id string) error {
	if !m.mode.Editable {
		return ErrNotEditable
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOfLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	m.records = append(m.records[:idx], m.records[idx+1:]...)
	if m.detailID == id {
		m.detailID = ""
	}
	m.persistLocked()
	return nil
}

// ToggleHave flips ownership. In share mode only the local overlay changes;
// the shared catalog is never mutated.
func (m *Manager) ToggleHave(id string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode.ReadOnlyShare {
		m.overlay[id] = value
		m.persistOverlayLocked()
		return nil
	}

	idx := m.indexOfLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	m.records[idx].Have = value
	m.persistLocked()
	return nil
}

// BulkImport replaces the entire working list. Used by JSON/Parquet import
// and by "load samples"; the caller confirms before discarding work.
func (m *Manager) BulkImport(records []models.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	normalized := make([]models.Record, len(records))
	for i, r := range records {
		if r.ID == "" {
			r.ID = models.NewID()
		}
		if r.Year == "" {
			r.Year = models.DeriveYear(r.PurchaseDate)
		}
		r.InsertionIndex = i
		normalized[i] = r
	}
	m.records = normalized
	m.nextIndex = len(normalized)
	m.detailID = ""
	m.persistLocked()
}

// LoadSamples replaces the catalog with the starter data set.
func (m *Manager) LoadSamples() {
	m.BulkImport(models.SampleRecords())
}

// ExportSnapshot produces a serializable catalog. With includeImages false
// the embedded image payloads are dropped, keeping the export small; link
// based sharing goes further and strips images entirely (see share package).
func (m *Manager) ExportSnapshot(includeImages bool) models.Catalog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]models.Record, len(m.records))
	copy(items, m.records)
	if !includeImages {
		for i := range items {
			items[i].ImageDataURL = ""
		}
	}
	return models.Catalog{
		Version: models.SchemaVersion,
		ID:      m.meta.ID,
		Title:   m.meta.Title,
		Note:    m.meta.Note,
		Items:   items,
	}
}

// View derives the grouped display structure for the current state. The
// overlay is applied only in share mode.
func (m *Manager) View(opts view.Options) []view.Group {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var overlay map[string]bool
	if m.mode.ReadOnlyShare {
		overlay = m.overlay
	}
	return view.Derive(m.records, overlay, opts)
}

// Records returns a copy of the working list in insertion order.
func (m *Manager) Records() []models.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Record, len(m.records))
	copy(out, m.records)
	return out
}

// Overlay returns a copy of the ownership overlay.
func (m *Manager) Overlay() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.overlay))
	for k, v := range m.overlay {
		out[k] = v
	}
	return out
}

// Meta returns the share metadata of the loaded source.
func (m *Manager) Meta() Meta {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta
}

// SetDetail records which record the detail view shows.
func (m *Manager) SetDetail(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detailID = id
}

// Detail returns the id the detail view currently shows, or empty.
func (m *Manager) Detail() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.detailID
}

func (m *Manager) indexOfLocked(id string) int {
	for i, r := range m.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the working list through to the store. Failures are
// logged and swallowed; the in-memory state stays authoritative for the
// rest of the session.
func (m *Manager) persistLocked() {
	data, err := json.Marshal(m.records)
	if err != nil {
		slog.Error("Failed to marshal catalog for persistence", "error", err)
		return
	}
	if err := m.kv.Set(store.KeyCatalog, data); err != nil {
		slog.Error("Failed to persist catalog", "error", err)
	}
}

func (m *Manager) persistOverlayLocked() {
	if m.overlayKey == "" {
		return
	}
	data, err := json.Marshal(m.overlay)
	if err != nil {
		slog.Error("Failed to marshal ownership overlay", "error", err)
		return
	}
	if err := m.kv.Set(m.overlayKey, data); err != nil {
		slog.Error("Failed to persist ownership overlay", "key", m.overlayKey, "error", err)
	}
}
