// Package imagesync copies photocard images from a source folder into the
// published public/images directory and merges matching entries into
// public/catalog.json, keyed by each image's page-relative URL.
package imagesync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/photocard-tools/cardfolio/internal/archive"
	"github.com/photocard-tools/cardfolio/internal/models"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Defaults are applied to every newly created catalog entry.
type Defaults struct {
	PurchaseDate string
	Event        string
	Vendor       string
}

// Summary reports what one sync pass did.
type Summary struct {
	Copied  int
	Added   int
	Updated int
	Total   int
}

type Syncer struct {
	publicDir   string
	imagesDir   string
	catalogPath string
}

func New(publicDir string) *Syncer {
	return &Syncer{
		publicDir:   publicDir,
		imagesDir:   filepath.Join(publicDir, "images"),
		catalogPath: filepath.Join(publicDir, "catalog.json"),
	}
}

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	invalidRE    = regexp.MustCompile(`[^a-z0-9._-]`)
	dashRunRE    = regexp.MustCompile(`-+`)
)

// slugify makes a file name safe for a URL path segment.
func slugify(name string) string {
	s := strings.ToLower(name)
	s = whitespaceRE.ReplaceAllString(s, "-")
	s = invalidRE.ReplaceAllString(s, "")
	return dashRunRE.ReplaceAllString(s, "-")
}

// idFromName derives a readable record id from the image name plus a short
// time stamp, so re-adding a renamed image never collides.
func idFromName(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	stamp := strconv.FormatInt(time.Now().UnixMilli(), 36)
	if len(stamp) > 4 {
		stamp = stamp[len(stamp)-4:]
	}
	return slugify(base) + "-" + stamp
}

// Sync copies every recognized image from srcDir and merges the catalog.
// Images already present with the same size and an mtime at least as new are
// left alone. Existing catalog entries are never overwritten; only images
// without an entry get one.
func (s *Syncer) Sync(srcDir string, d Defaults) (Summary, error) {
	var sum Summary

	if err := os.MkdirAll(s.imagesDir, 0755); err != nil {
		return sum, fmt.Errorf("failed to create images directory: %w", err)
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return sum, fmt.Errorf("failed to read source directory: %w", err)
	}

	cat := s.loadCatalog()
	byURL := make(map[string]bool, len(cat.Items))
	for _, it := range cat.Items {
		byURL[it.ImageURL] = true
	}

	for _, entry := range entries {
		if entry.IsDir() || !imageExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		sum.Total++

		safeName := slugify(entry.Name())
		copied, err := copyIfNeeded(filepath.Join(srcDir, entry.Name()), filepath.Join(s.imagesDir, safeName))
		if err != nil {
			return sum, err
		}
		if copied {
			sum.Copied++
		}

		relURL := "images/" + safeName
		if byURL[relURL] {
			sum.Updated++
			continue
		}
		cat.Items = append(cat.Items, models.Record{
			ID:             idFromName(safeName),
			Title:          strings.TrimSuffix(safeName, filepath.Ext(safeName)),
			PurchaseDate:   d.PurchaseDate,
			Event:          d.Event,
			Vendor:         d.Vendor,
			Year:           models.DeriveYear(d.PurchaseDate),
			ImageURL:       relURL,
			InsertionIndex: len(cat.Items),
		})
		byURL[relURL] = true
		sum.Added++
	}

	if err := archive.Write(s.catalogPath, cat); err != nil {
		return sum, err
	}
	slog.Info("Image sync complete",
		"copied", sum.Copied, "added", sum.Added, "updated", sum.Updated, "catalog_items", len(cat.Items))
	return sum, nil
}

// Watch runs an initial sync and then re-syncs whenever the source
// directory changes, until the context is cancelled.
func (s *Syncer) Watch(ctx context.Context, srcDir string, d Defaults) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(srcDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", srcDir, err)
	}

	if _, err := s.Sync(srcDir, d); err != nil {
		return err
	}

	// Editors fire bursts of events per save, so changes settle briefly
	// before a re-sync.
	const settle = 300 * time.Millisecond
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", "error", err)
		case <-pending:
			pending = nil
			if _, err := s.Sync(srcDir, d); err != nil {
				slog.Error("Sync after change failed", "error", err)
			}
		}
	}
}

// loadCatalog reads the published catalog, falling back to a fresh one when
// the file is missing or unreadable.
func (s *Syncer) loadCatalog() models.Catalog {
	fresh := models.Catalog{
		Version: models.SchemaVersion,
		Title:   "포카 카탈로그",
		Note:    "자동 생성됨",
		Items:   []models.Record{},
	}

	cat, err := archive.Read(s.catalogPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Published catalog unreadable, starting fresh", "path", s.catalogPath, "error", err)
		}
		return fresh
	}
	return *cat
}

func copyIfNeeded(src, dest string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if destInfo, err := os.Stat(dest); err == nil {
		if srcInfo.Size() == destInfo.Size() && !srcInfo.ModTime().After(destInfo.ModTime()) {
			return false, nil
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return false, fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return true, nil
}
