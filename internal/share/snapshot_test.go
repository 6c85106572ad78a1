package share

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/photocard-tools/cardfolio/internal/models"
)

func rawEncode(raw string) string {
	return url.QueryEscape(base64.StdEncoding.EncodeToString([]byte(raw)))
}

func TestRoundTripNonASCII(t *testing.T) {
	s := Snapshot{
		Version: 1,
		ID:      "snap-1",
		Title:   "포카 카탈로그 ❤️ & イメージ",
		Note:    "메모 with symbols: ?&=#% and emoji 🎴",
		Items: []models.Record{
			{ID: "x", Title: "제목", Event: "시그 기본포카", Vendor: "현장", PurchaseDate: "2025-10-07", Year: "2025", Notes: "메모"},
			{ID: "y", Title: "second", PurchaseDate: "2025-10-08", Year: "2025", InsertionIndex: 1},
		},
	}

	encoded, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if strings.ContainsAny(encoded, "+/= ") {
		t.Errorf("encoded payload is not query-safe: %q", encoded)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(*decoded, s) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *decoded, s)
	}
}

// Parsed query values arrive with percent escapes already resolved, so the
// payload may contain literal + characters. A second unescape would turn
// those into spaces and break the base64.
func TestDecodeAcceptsUnescapedParam(t *testing.T) {
	s := Snapshot{
		Version: 1,
		ID:      "snap-2",
		Note:    strings.Repeat("~", 9), // guarantees a + in the base64
		Items:   []models.Record{},
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	b64 := base64.StdEncoding.EncodeToString(data)
	if !strings.Contains(b64, "+") {
		t.Fatalf("payload does not exercise the + case: %q", b64)
	}

	decoded, err := Decode(b64)
	if err != nil {
		t.Fatalf("Decode of unescaped payload failed: %v", err)
	}
	if !reflect.DeepEqual(*decoded, s) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *decoded, s)
	}
}

func TestNewSnapshotStripsImages(t *testing.T) {
	records := []models.Record{
		{ID: "a", Title: "with image", ImageDataURL: "data:image/jpeg;base64,xyz", ImageURL: "images/a.jpg"},
	}

	s := NewSnapshot("title", "note", records)
	if s.Version != models.SchemaVersion {
		t.Errorf("Version = %d, want %d", s.Version, models.SchemaVersion)
	}
	if s.ID == "" {
		t.Error("snapshot id not assigned")
	}
	if s.Items[0].ImageDataURL != "" || s.Items[0].ImageURL != "" {
		t.Errorf("images not stripped: %+v", s.Items[0])
	}
	if records[0].ImageDataURL == "" {
		t.Error("NewSnapshot mutated its input")
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	good, err := Encode(Snapshot{Version: 1, ID: "s", Items: []models.Record{}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if _, err := Decode(good); err != nil {
		t.Fatalf("Decode of valid payload failed: %v", err)
	}

	tests := []struct {
		name  string
		param string
	}{
		{name: "not base64", param: "%%%"},
		{name: "base64 of garbage", param: "bm90LWpzb24"},
		{name: "wrong version", param: mustEncodeJSON(t, `{"v":2,"items":[]}`)},
		{name: "missing version", param: mustEncodeJSON(t, `{"items":[]}`)},
		{name: "items not array", param: mustEncodeJSON(t, `{"v":1,"items":{}}`)},
		{name: "missing items", param: mustEncodeJSON(t, `{"v":1}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.param); err == nil {
				t.Errorf("Decode(%q) succeeded, want error", tt.param)
			}
		})
	}
}

func mustEncodeJSON(t *testing.T, raw string) string {
	t.Helper()
	// Same wire transform Encode applies, without the Snapshot struct in
	// the way, so malformed shapes can be produced.
	return rawEncode(raw)
}

func TestLinkFormat(t *testing.T) {
	s := Snapshot{Version: 1, ID: "s", Items: []models.Record{}}
	link, err := Link("https://example.github.io/cards/", s)
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if !strings.HasPrefix(link, "https://example.github.io/cards/?catalog=") {
		t.Errorf("unexpected link shape: %q", link)
	}
}
