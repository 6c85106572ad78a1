package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/photocard-tools/cardfolio/internal/models"
	"github.com/photocard-tools/cardfolio/internal/share"
	"github.com/photocard-tools/cardfolio/internal/store"
	"github.com/photocard-tools/cardfolio/internal/view"
)

func newTestServer(t *testing.T, publicDir string) *httptest.Server {
	t.Helper()
	if publicDir == "" {
		publicDir = t.TempDir()
	}
	mux := http.NewServeMux()
	New(store.NewMemoryStore(), publicDir).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestCreateAndView(t *testing.T) {
	srv := newTestServer(t, "")

	resp := postJSON(t, srv.URL+"/api/records", `{"title":"first card","purchaseDate":"2025-10-07"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created models.Record
	decodeBody(t, resp, &created)
	if created.ID == "" || created.Year != "2025" {
		t.Errorf("created record incomplete: %+v", created)
	}

	resp, err := http.Get(srv.URL + "/api/view?group=year")
	if err != nil {
		t.Fatal(err)
	}
	var body viewResponse
	decodeBody(t, resp, &body)
	if !body.Mode.Editable {
		t.Error("default session should be editable")
	}
	if len(body.Groups) != 1 || body.Groups[0].Key != "2025" {
		t.Fatalf("unexpected groups: %+v", body.Groups)
	}
	if body.Groups[0].Records[0].ID != created.ID {
		t.Errorf("view does not contain the created record")
	}
	if len(body.EventOptions) == 0 || len(body.VendorOptions) == 0 {
		t.Error("suggestion lists missing from view response")
	}
}

func TestCreateValidationError(t *testing.T) {
	srv := newTestServer(t, "")

	resp := postJSON(t, srv.URL+"/api/records", `{"title":"no date"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	srv := newTestServer(t, "")

	resp := postJSON(t, srv.URL+"/api/records", `{"title":"card","purchaseDate":"2025-01-01"}`)
	var created models.Record
	decodeBody(t, resp, &created)

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/records/"+created.ID,
		strings.NewReader(`{"purchaseDate":"2024-06-01"}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var updated models.Record
	decodeBody(t, resp, &updated)
	if updated.Year != "2024" {
		t.Errorf("year not re-derived: %+v", updated)
	}

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/api/records/"+created.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/api/records/"+created.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestImportWithAliases(t *testing.T) {
	srv := newTestServer(t, "")

	resp := postJSON(t, srv.URL+"/api/import",
		`[{"name":"aliased","date":"2023-03-01","buyer":"Trade","memo":"m"}]`)
	var result map[string]int
	decodeBody(t, resp, &result)
	if result["imported"] != 1 {
		t.Fatalf("imported = %d", result["imported"])
	}

	resp, err := http.Get(srv.URL + "/api/records")
	if err != nil {
		t.Fatal(err)
	}
	var records []models.Record
	decodeBody(t, resp, &records)
	if len(records) != 1 || records[0].Title != "aliased" || records[0].Vendor != "Trade" {
		t.Errorf("aliases not folded: %+v", records)
	}
	if records[0].Year != "2023" {
		t.Errorf("year not derived on import: %+v", records[0])
	}
}

func TestSamplesEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	resp := postJSON(t, srv.URL+"/api/samples", "")
	var result map[string]int
	decodeBody(t, resp, &result)
	if result["imported"] == 0 {
		t.Error("samples did not populate the catalog")
	}
}

func TestSnapshotModeIsReadOnly(t *testing.T) {
	srv := newTestServer(t, "")

	snap := share.NewSnapshot("shared", "", []models.Record{
		{ID: "a", Title: "shared card", PurchaseDate: "2025-05-05", Year: "2025", Have: true},
	})
	encoded, err := share.Encode(snap)
	if err != nil {
		t.Fatal(err)
	}
	q := "?catalog=" + encoded

	resp := postJSON(t, srv.URL+"/api/records"+q, `{"title":"x","purchaseDate":"2025-01-01"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("create in snapshot mode status = %d, want 403", resp.StatusCode)
	}

	// Ownership toggles work and go to the overlay, so the view reflects
	// them without the source changing.
	resp = postJSON(t, srv.URL+"/api/records/a/have"+q, `{"have":false}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("toggle status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/view" + q)
	if err != nil {
		t.Fatal(err)
	}
	var body viewResponse
	decodeBody(t, resp, &body)
	if !body.Mode.ReadOnlyShare || body.Mode.Editable {
		t.Errorf("mode flags wrong: %+v", body.Mode)
	}
	if body.Meta.Title != "shared" {
		t.Errorf("meta not exposed: %+v", body.Meta)
	}
	records := view.Flatten(body.Groups)
	if len(records) != 1 || records[0].Have {
		t.Errorf("overlay not applied to view: %+v", records)
	}
}

func TestShareLinkRoundTrips(t *testing.T) {
	srv := newTestServer(t, "")

	postJSON(t, srv.URL+"/api/records", `{"title":"to share","purchaseDate":"2025-10-07"}`).Body.Close()

	resp, err := http.Get(srv.URL + "/api/share?base=https://example.github.io/cards/&title=My+Cards")
	if err != nil {
		t.Fatal(err)
	}
	var result map[string]string
	decodeBody(t, resp, &result)
	link := result["url"]
	if !strings.HasPrefix(link, "https://example.github.io/cards/?catalog=") {
		t.Fatalf("unexpected link: %q", link)
	}

	_, raw, _ := strings.Cut(link, "?catalog=")
	snap, err := share.Decode(raw)
	if err != nil {
		t.Fatalf("share link does not decode: %v", err)
	}
	if snap.Title != "My Cards" || len(snap.Items) != 1 || snap.Items[0].Title != "to share" {
		t.Errorf("snapshot content wrong: %+v", snap)
	}
}

func TestExportDropsImagesByDefault(t *testing.T) {
	srv := newTestServer(t, "")

	postJSON(t, srv.URL+"/api/records",
		`{"title":"card","purchaseDate":"2025-01-01","imageDataUrl":"data:image/png;base64,AAAA"}`).Body.Close()

	resp, err := http.Get(srv.URL + "/api/export")
	if err != nil {
		t.Fatal(err)
	}
	var cat models.Catalog
	decodeBody(t, resp, &cat)
	if cat.Version != models.SchemaVersion {
		t.Errorf("version = %d", cat.Version)
	}
	if cat.Items[0].ImageDataURL != "" {
		t.Error("export should drop embedded images by default")
	}

	resp, err = http.Get(srv.URL + "/api/export?images=1")
	if err != nil {
		t.Fatal(err)
	}
	decodeBody(t, resp, &cat)
	if cat.Items[0].ImageDataURL == "" {
		t.Error("export with images=1 should keep embedded images")
	}
}

func TestRootRedirectsToDiscoveredCatalog(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "catalog.json"), []byte(`{"v":1,"items":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0644); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, dir)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	resp, err := client.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if got := loc.Query().Get("src"); !strings.HasSuffix(got, "/catalog.json") {
		t.Errorf("redirect src = %q", got)
	}

	// A navigation already carrying a mode parameter is never redirected.
	for _, q := range []string{"?edit=1", "?admin=1", "?src=http://x/catalog.json"} {
		resp, err := client.Get(srv.URL + "/" + q)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusFound {
			t.Errorf("navigation %q was redirected", q)
		}
	}
}

func TestRootServesIndexWithoutCatalog(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>cards</html>"), 0644); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, dir)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
}

func TestRootBlocksTraversal(t *testing.T) {
	h := New(store.NewMemoryStore(), t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.Path = "/../secret"
	rec := httptest.NewRecorder()
	h.Root(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("traversal status = %d, want 400", rec.Code)
	}
}

func TestRemoteSourceLoadFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	srv := newTestServer(t, "")
	resp, err := http.Get(srv.URL + "/api/view?src=" + url.QueryEscape(upstream.URL+"/catalog.json"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestSessionsShareStateAcrossRequests(t *testing.T) {
	srv := newTestServer(t, "")

	postJSON(t, srv.URL+"/api/records", `{"title":"persists","purchaseDate":"2025-01-01"}`).Body.Close()

	resp, err := http.Get(srv.URL + "/api/records?edit=1")
	if err != nil {
		t.Fatal(err)
	}
	var records []models.Record
	decodeBody(t, resp, &records)
	if len(records) != 1 {
		t.Errorf("edit session does not see local state: %+v", records)
	}
}
