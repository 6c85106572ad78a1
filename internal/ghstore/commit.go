package ghstore

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/photocard-tools/cardfolio/internal/models"
)

// Paths inside the published repository. The page is hosted from public/,
// so committed image URLs are relative to it.
const (
	CatalogPath    = "public/catalog.json"
	ImageDirPath   = "public/images"
	ImageURLPrefix = "images/"
)

var extByMIME = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// ParseDataURL splits an embedded data URL into its MIME type and decoded
// bytes.
func ParseDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	mime, _, _ := strings.Cut(meta, ";")
	if !strings.Contains(meta, "base64") {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("data URL payload is not valid base64: %w", err)
	}
	return mime, data, nil
}

// ImageFileName names a committed image by record id and content hash, so a
// retried or repeated commit writes the same path instead of piling up
// timestamped copies.
func ImageFileName(recordID, mime string, data []byte) string {
	ext, ok := extByMIME[mime]
	if !ok {
		ext = "jpg"
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s_%s.%s", recordID, hex.EncodeToString(sum[:])[:12], ext)
}

// UploadImage commits one image file under the image directory and returns
// the page-relative URL records should reference.
func (c *Client) UploadImage(ctx context.Context, name string, data []byte) (string, error) {
	repoPath := path.Join(ImageDirPath, name)
	if err := c.PutFile(ctx, repoPath, data, "upload image "+name); err != nil {
		return "", err
	}
	return ImageURLPrefix + name, nil
}

// CommitCatalog publishes the catalog. Records carrying only an embedded
// image get that image committed first and are rewritten to reference the
// committed URL; the catalog document itself never contains embedded
// payloads. Nothing is assumed committed when an error is returned.
func (c *Client) CommitCatalog(ctx context.Context, cat models.Catalog) error {
	if c.Token == "" {
		return ErrNoToken
	}

	items := make([]models.Record, len(cat.Items))
	copy(items, cat.Items)

	for i := range items {
		r := &items[i]
		if r.ImageDataURL == "" {
			continue
		}
		if r.ImageURL == "" {
			mime, data, err := ParseDataURL(r.ImageDataURL)
			if err != nil {
				return fmt.Errorf("record %s has an unusable embedded image: %w", r.ID, err)
			}
			name := ImageFileName(r.ID, mime, data)
			imageURL, err := c.UploadImage(ctx, name, data)
			if err != nil {
				return err
			}
			slog.Info("Committed record image", "record", r.ID, "path", imageURL)
			r.ImageURL = imageURL
		}
		r.ImageDataURL = ""
	}

	payload := models.Catalog{
		Version: models.SchemaVersion,
		ID:      cat.ID,
		Title:   cat.Title,
		Note:    cat.Note,
		Items:   items,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return c.PutFile(ctx, CatalogPath, data, "update catalog.json")
}
