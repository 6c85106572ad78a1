package models

import (
	"encoding/json"
	"fmt"
)

// wireRecord tolerates the field aliases that accumulated across catalog
// exports. Everything is folded into the canonical Record at the load
// boundary so the rest of the system never sees an alias.
type wireRecord struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	PurchaseDate string `json:"purchaseDate"`
	Date         string `json:"date"`
	Event        string `json:"event"`
	Vendor       string `json:"vendor"`
	Buyer        string `json:"buyer"`
	Year         string `json:"year"`
	Notes        string `json:"notes"`
	Memo         string `json:"memo"`
	Have         bool   `json:"have"`
	Image        string `json:"image"`
	ImageURL     string `json:"imageUrl"`
	ImageDataURL string `json:"imageDataUrl"`
}

type wireEnvelope struct {
	Version *int            `json:"v"`
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Note    string          `json:"note"`
	Items   json.RawMessage `json:"items"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (w wireRecord) normalize() Record {
	r := Record{
		ID:           w.ID,
		Title:        firstNonEmpty(w.Title, w.Name),
		PurchaseDate: firstNonEmpty(w.PurchaseDate, w.Date),
		Event:        w.Event,
		Vendor:       firstNonEmpty(w.Vendor, w.Buyer),
		Year:         w.Year,
		Notes:        firstNonEmpty(w.Notes, w.Memo),
		Have:         w.Have,
		ImageDataURL: w.ImageDataURL,
		ImageURL:     firstNonEmpty(w.ImageURL, w.Image),
	}
	if r.ID == "" {
		r.ID = NewID()
	}
	if r.Year == "" {
		r.Year = DeriveYear(r.PurchaseDate)
	}
	return r
}

// NormalizeRecords parses a JSON array of record-shaped objects into
// canonical records, assigning ids and insertion indexes where missing.
func NormalizeRecords(raw json.RawMessage) ([]Record, error) {
	var wire []wireRecord
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("items is not an array of records: %w", err)
	}
	records := make([]Record, len(wire))
	for i, w := range wire {
		r := w.normalize()
		r.InsertionIndex = i
		records[i] = r
	}
	return records, nil
}

// ParseCatalog parses an external catalog document: either a bare JSON array
// of records or a version-1 envelope with an items array. Anything else is a
// load failure.
func ParseCatalog(data []byte) (*Catalog, error) {
	trimmed := firstByte(data)
	if trimmed == '[' {
		items, err := NormalizeRecords(data)
		if err != nil {
			return nil, err
		}
		return &Catalog{Version: SchemaVersion, Items: items}, nil
	}

	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("catalog is not valid JSON: %w", err)
	}
	if env.Version == nil || *env.Version != SchemaVersion {
		return nil, fmt.Errorf("unsupported catalog version tag")
	}
	if len(env.Items) == 0 {
		return nil, fmt.Errorf("catalog has no items array")
	}
	items, err := NormalizeRecords(env.Items)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		Version: SchemaVersion,
		ID:      env.ID,
		Title:   env.Title,
		Note:    env.Note,
		Items:   items,
	}, nil
}

func firstByte(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b
	}
	return 0
}
