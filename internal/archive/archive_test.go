package archive

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/photocard-tools/cardfolio/internal/models"
)

func testCatalog() models.Catalog {
	return models.Catalog{
		Version: models.SchemaVersion,
		ID:      "cat-1",
		Title:   "포카 컬렉션",
		Note:    "test note",
		Items: []models.Record{
			{ID: "a", Title: "first", PurchaseDate: "2025-01-01", Event: "Fan Meeting", Vendor: "On-site", Year: "2025", Notes: "메모", Have: true},
			{ID: "b", Title: "second", PurchaseDate: "2025-02-02", Year: "2025", ImageURL: "images/b.jpg", InsertionIndex: 1},
		},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	want := testCatalog()

	if err := Write(path, want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *got, want)
	}
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.parquet")
	want := testCatalog()

	if err := Write(path, want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Title != want.Title || got.Note != want.Note || got.ID != want.ID {
		t.Errorf("catalog metadata lost: %+v", got)
	}
	if !reflect.DeepEqual(got.Items, want.Items) {
		t.Errorf("items mismatch:\n got %+v\nwant %+v", got.Items, want.Items)
	}
}

func TestUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	if err := Write(filepath.Join(dir, "catalog.csv"), testCatalog()); err == nil {
		t.Error("Write to .csv should fail")
	}
	if _, err := Read(filepath.Join(dir, "catalog.csv")); err == nil {
		t.Error("Read of .csv should fail")
	}
}
