package mode

import (
	"net/url"
	"testing"
)

func query(pairs ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Set(pairs[i], pairs[i+1])
	}
	return v
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		query    url.Values
		expected Mode
	}{
		{
			name:     "no params is editable local",
			query:    query(),
			expected: Mode{Editable: true, Source: SourceLocalStore},
		},
		{
			name:     "edit flag forces editable",
			query:    query("edit", "1"),
			expected: Mode{Editable: true, Source: SourceLocalStore},
		},
		{
			name:     "edit beats src",
			query:    query("edit", "1", "src", "https://example.com/catalog.json"),
			expected: Mode{Editable: true, Source: SourceLocalStore, SourceURL: "https://example.com/catalog.json"},
		},
		{
			name:     "edit beats snapshot",
			query:    query("edit", "1", "catalog", "abc"),
			expected: Mode{Editable: true, Source: SourceLocalStore},
		},
		{
			name:     "admin shows panel",
			query:    query("admin", "1"),
			expected: Mode{Editable: true, AdminPanelVisible: true, Source: SourceLocalStore},
		},
		{
			name:     "edit beats admin",
			query:    query("edit", "1", "admin", "1"),
			expected: Mode{Editable: true, Source: SourceLocalStore},
		},
		{
			name:     "src is read-only share",
			query:    query("src", "https://example.com/catalog.json"),
			expected: Mode{ReadOnlyShare: true, Source: SourceRemoteURL, SourceURL: "https://example.com/catalog.json"},
		},
		{
			name:     "snapshot is read-only share",
			query:    query("catalog", "payload"),
			expected: Mode{ReadOnlyShare: true, Source: SourceSnapshot, Snapshot: "payload"},
		},
		{
			name:     "src beats snapshot",
			query:    query("src", "https://example.com/c.json", "catalog", "payload"),
			expected: Mode{ReadOnlyShare: true, Source: SourceRemoteURL, SourceURL: "https://example.com/c.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.query); got != tt.expected {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestRedirectToDiscoveredCatalog(t *testing.T) {
	base := "https://example.github.io/cards/"
	discovered := base + "catalog.json"

	tests := []struct {
		name    string
		query   url.Values
		probeOK bool
		wantOK  bool
	}{
		{name: "plain navigation with probe hit", query: query(), probeOK: true, wantOK: true},
		{name: "probe miss", query: query(), probeOK: false, wantOK: false},
		{name: "edit skips redirect", query: query("edit", "1"), probeOK: true, wantOK: false},
		{name: "admin skips redirect", query: query("admin", "1"), probeOK: true, wantOK: false},
		{name: "existing src skips redirect", query: query("src", discovered), probeOK: true, wantOK: false},
		{name: "existing snapshot skips redirect", query: query("catalog", "abc"), probeOK: true, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, ok := RedirectToDiscoveredCatalog(tt.query, tt.probeOK, base, discovered)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			want := base + "?src=" + "https%3A%2F%2Fexample.github.io%2Fcards%2Fcatalog.json"
			if target != want {
				t.Errorf("target = %q, want %q", target, want)
			}

			// The produced URL must not redirect again.
			u, err := url.Parse(target)
			if err != nil {
				t.Fatalf("target does not parse: %v", err)
			}
			if _, again := RedirectToDiscoveredCatalog(u.Query(), true, base, discovered); again {
				t.Error("redirect target would redirect again")
			}
		})
	}
}
