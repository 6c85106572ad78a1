// Package archive reads and writes catalog files on disk. The format is
// detected from the file extension: .json for the portable envelope the
// page exchanges, .parquet for a columnar copy of the record list.
package archive

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/photocard-tools/cardfolio/internal/models"
)

// row is the flat parquet schema for one record. Catalog level metadata
// rides along on every row so a parquet file round-trips it.
type row struct {
	ID             string `parquet:"id"`
	Title          string `parquet:"title"`
	PurchaseDate   string `parquet:"purchase_date"`
	Event          string `parquet:"event"`
	Vendor         string `parquet:"vendor"`
	Year           string `parquet:"year"`
	Notes          string `parquet:"notes"`
	Have           bool   `parquet:"have"`
	ImageDataURL   string `parquet:"image_data_url"`
	ImageURL       string `parquet:"image_url"`
	InsertionIndex int32  `parquet:"insertion_index"`
	CatalogID      string `parquet:"catalog_id"`
	CatalogTitle   string `parquet:"catalog_title"`
	CatalogNote    string `parquet:"catalog_note"`
}

// Write saves the catalog to path, choosing the format by extension.
func Write(path string, cat models.Catalog) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return writeJSON(path, cat)
	case ".parquet":
		return writeParquet(path, cat)
	default:
		return fmt.Errorf("unsupported file format: %s (supported: .json, .parquet)", ext)
	}
}

// Read loads a catalog from path, choosing the format by extension. JSON
// files may be either the envelope form or a bare record array.
func Read(path string) (*models.Catalog, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return readJSON(path)
	case ".parquet":
		return readParquet(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .json, .parquet)", ext)
	}
}

func writeJSON(path string, cat models.Catalog) error {
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	slog.Debug("Wrote JSON catalog", "path", path, "records", len(cat.Items))
	return nil
}

func readJSON(path string) (*models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	cat, err := models.ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cat, nil
}

func writeParquet(path string, cat models.Catalog) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	rows := make([]row, len(cat.Items))
	for i, r := range cat.Items {
		rows[i] = row{
			ID:             r.ID,
			Title:          r.Title,
			PurchaseDate:   r.PurchaseDate,
			Event:          r.Event,
			Vendor:         r.Vendor,
			Year:           r.Year,
			Notes:          r.Notes,
			Have:           r.Have,
			ImageDataURL:   r.ImageDataURL,
			ImageURL:       r.ImageURL,
			InsertionIndex: int32(r.InsertionIndex),
			CatalogID:      cat.ID,
			CatalogTitle:   cat.Title,
			CatalogNote:    cat.Note,
		}
	}

	writer := parquet.NewGenericWriter[row](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	slog.Debug("Wrote parquet catalog", "path", path, "records", len(rows))
	return nil
}

func readParquet(path string) (*models.Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[row](pf)
	defer reader.Close()

	var rows []row
	batch := make([]row, 128)
	for {
		n, err := reader.Read(batch)
		if n > 0 {
			rows = append(rows, batch[:n]...)
		}
		if err != nil {
			break
		}
	}

	cat := &models.Catalog{
		Version: models.SchemaVersion,
		Items:   make([]models.Record, len(rows)),
	}
	for i, r := range rows {
		if i == 0 {
			cat.ID = r.CatalogID
			cat.Title = r.CatalogTitle
			cat.Note = r.CatalogNote
		}
		cat.Items[i] = models.Record{
			ID:             r.ID,
			Title:          r.Title,
			PurchaseDate:   r.PurchaseDate,
			Event:          r.Event,
			Vendor:         r.Vendor,
			Year:           r.Year,
			Notes:          r.Notes,
			Have:           r.Have,
			ImageDataURL:   r.ImageDataURL,
			ImageURL:       r.ImageURL,
			InsertionIndex: int(r.InsertionIndex),
		}
	}
	slog.Debug("Read parquet catalog", "path", path, "records", len(rows))
	return cat, nil
}
