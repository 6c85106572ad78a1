// Package share encodes a whole catalog into a URL query parameter so a
// read-only snapshot can be passed around without any network fetch.
package share

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/photocard-tools/cardfolio/internal/models"
)

// Snapshot is the payload embedded in a share link. Items never carry
// images; a link with embedded image payloads would blow past every URL
// length limit.
type Snapshot struct {
	Version int             `json:"v"`
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Note    string          `json:"note"`
	Items   []models.Record `json:"items"`
}

// NewSnapshot builds a share payload from the working list, stripping
// images and assigning a fresh snapshot id.
func NewSnapshot(title, note string, records []models.Record) Snapshot {
	return Snapshot{
		Version: models.SchemaVersion,
		ID:      uuid.NewString(),
		Title:   title,
		Note:    note,
		Items:   models.StripImages(records),
	}
}

// Encode serializes the snapshot for use as a query parameter value:
// JSON, UTF-8 bytes through standard base64, then percent-escaped. The
// result round-trips non-ASCII titles and notes exactly.
func Encode(s Snapshot) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	b64 := base64.StdEncoding.EncodeToString(data)
	return url.QueryEscape(b64), nil
}

// Decode reverses Encode. The parameter may arrive still percent-escaped
// (taken verbatim from a URL) or already unescaped (pulled from parsed query
// values); both forms are accepted. A payload whose version tag is not 1 or
// whose items is not an array is rejected.
func Decode(param string) (*Snapshot, error) {
	data, err := base64.StdEncoding.DecodeString(param)
	if err != nil {
		b64, uerr := url.QueryUnescape(param)
		if uerr != nil {
			return nil, fmt.Errorf("share link is not a valid query value: %w", uerr)
		}
		data, err = base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("share link is not valid base64: %w", err)
		}
	}

	var wire struct {
		Version *int            `json:"v"`
		ID      string          `json:"id"`
		Title   string          `json:"title"`
		Note    string          `json:"note"`
		Items   json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("share link does not contain valid JSON: %w", err)
	}
	if wire.Version == nil || *wire.Version != models.SchemaVersion {
		return nil, fmt.Errorf("share link has an unsupported version tag")
	}
	if len(wire.Items) == 0 {
		return nil, fmt.Errorf("share link has no items array")
	}
	items, err := models.NormalizeRecords(wire.Items)
	if err != nil {
		return nil, fmt.Errorf("share link items are malformed: %w", err)
	}

	s := &Snapshot{
		Version: *wire.Version,
		ID:      wire.ID,
		Title:   wire.Title,
		Note:    wire.Note,
		Items:   items,
	}
	if s.ID == "" {
		s.ID = "catalog"
	}
	return s, nil
}

// Link assembles a full share URL for the given page base.
func Link(base string, s Snapshot) (string, error) {
	encoded, err := Encode(s)
	if err != nil {
		return "", err
	}
	return base + "?catalog=" + encoded, nil
}
