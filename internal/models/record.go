package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the catalog wire format version. Catalogs with any other
// version tag are rejected at the load boundary.
const SchemaVersion = 1

// Record represents one catalog entry (a single photocard).
type Record struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PurchaseDate string `json:"purchaseDate"` // YYYY-MM-DD or empty
	Event        string `json:"event"`
	Vendor       string `json:"vendor"`
	Year         string `json:"year"` // derived from PurchaseDate, never independently authoritative
	Notes        string `json:"notes"`
	Have         bool   `json:"have"`
	ImageDataURL string `json:"imageDataUrl,omitempty"` // embedded base64 data URL
	ImageURL     string `json:"imageUrl,omitempty"`     // external or repo-relative URL

	// InsertionIndex orders records created on the same purchase date. It is
	// assigned once at creation time and never shown to the user.
	InsertionIndex int `json:"insertionIndex,omitempty"`
}

// Catalog is the ordered collection of records plus share metadata.
type Catalog struct {
	Version int      `json:"v"`
	ID      string   `json:"id,omitempty"`
	Title   string   `json:"title,omitempty"`
	Note    string   `json:"note,omitempty"`
	Items   []Record `json:"items"`
}

// NewID returns a fresh opaque record identifier.
func NewID() string {
	return uuid.NewString()
}

// DeriveYear extracts the four-digit year from a YYYY-MM-DD date string.
// Empty or unparseable input yields the empty string, never an error.
func DeriveYear(purchaseDate string) string {
	if purchaseDate == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", purchaseDate)
	if err != nil {
		return ""
	}
	return strconv.Itoa(t.Year())
}

// DisplayImage returns the canonical image reference for display. The
// embedded payload wins when both are present.
func (r Record) DisplayImage() string {
	if r.ImageDataURL != "" {
		return r.ImageDataURL
	}
	return r.ImageURL
}

// EffectiveYear returns the stored year, falling back to the derived one.
func (r Record) EffectiveYear() string {
	if r.Year != "" {
		return r.Year
	}
	return DeriveYear(r.PurchaseDate)
}

// YearSortValue maps a year string to a numeric sort key. Years outside the
// supported 2000-2099 window and unparseable placeholders sort last.
func YearSortValue(year string) int {
	n, err := strconv.Atoi(year)
	if err != nil || n < 2000 || n > 2099 {
		return 1 << 30
	}
	return n
}

// StripImages returns a copy of the records with every image field cleared.
// Share links never carry images.
func StripImages(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.ImageDataURL = ""
		r.ImageURL = ""
		out[i] = r
	}
	return out
}
