// package formatter provides functions to export the photo journal to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/shared"
)

// TimestampLayout is how capture times are shown to people.
const TimestampLayout = "Jan 2, 2006 at 3:04 PM"

// Document filenames written by the Write* functions when no path is given.
const (
	JSONFilename     = "journal.json"
	CSVFilename      = "journal.csv"
	MarkdownFilename = "README.md"
	TextFilename     = "journal.txt"
)

// FormatTimestamp renders the capture time of p in the local time zone.
func FormatTimestamp(p models.Photo) string {
	return p.CreatedAt().Local().Format(TimestampLayout)
}

// Location renders the coordinates of p, or "-" when it has none.
func Location(p models.Photo) string {
	if p.Coordinates == nil {
		return "-"
	}
	return p.Coordinates.String()
}

// ExportToCSV converts photos to CSV format with columns: ID, Timestamp, Taken, Latitude, Longitude, Address, Weather, File
func ExportToCSV(photos []models.Photo) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Timestamp", "Taken", "Latitude", "Longitude", "Address", "Weather", "File"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range photos {
		var lat, lon string
		if p.Coordinates != nil {
			lat = strconv.FormatFloat(p.Coordinates.Latitude, 'f', -1, 64)
			lon = strconv.FormatFloat(p.Coordinates.Longitude, 'f', -1, 64)
		}

		record := []string{
			p.ID,
			strconv.FormatInt(p.Timestamp, 10),
			p.CreatedAt().UTC().Format(time.RFC3339),
			lat,
			lon,
			shared.Deref(p.Address, ""),
			shared.Deref(p.Weather, ""),
			filepath.Base(p.URI),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts photos to a Markdown journal. When imageDir is set, each entry embeds
// imageDir/<file> as its picture.
func ExportToMarkdown(photos []models.Photo, imageDir string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Reminis Journal\n\n")
	buf.WriteString(fmt.Sprintf("**Memories**: %d\n\n", len(photos)))

	for _, p := range photos {
		buf.WriteString(fmt.Sprintf("## %s\n\n", FormatTimestamp(p)))

		if imageDir != "" {
			buf.WriteString(fmt.Sprintf("![%s](%s)\n\n", p.ID, path.Join(imageDir, filepath.Base(p.URI))))
		}
		if p.Address != nil {
			buf.WriteString(fmt.Sprintf("- **Place**: %s\n", *p.Address))
		}
		if p.Coordinates != nil {
			buf.WriteString(fmt.Sprintf("- **Location**: %s\n", p.Coordinates))
		}
		if p.Weather != nil {
			buf.WriteString(fmt.Sprintf("- **Weather**: %s\n", *p.Weather))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts photos to plain text format
func ExportToText(photos []models.Photo) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Memories: %d\n\n", len(photos)))

	for i, p := range photos {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, FormatTimestamp(p), shared.Deref(p.Address, "Unknown location")))
		if p.Weather != nil {
			buf.WriteString(fmt.Sprintf("   %s\n", *p.Weather))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes photos exactly as they are persisted.
func ExportToJSON(photos []models.Photo) ([]byte, error) {
	if photos == nil {
		photos = []models.Photo{}
	}
	return shared.MarshalJSON(photos, true)
}

// ParseJSONExport decodes a journal written by [ExportToJSON]. Records failing validation are rejected.
func ParseJSONExport(data []byte) ([]models.Photo, error) {
	var photos []models.Photo
	if err := json.Unmarshal(data, &photos); err != nil {
		return nil, fmt.Errorf("%w: failed to parse journal: %v", shared.ErrInvalidInput, err)
	}

	for i, p := range photos {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", shared.ErrInvalidInput, i, err)
		}
	}
	return photos, nil
}

// Export renders photos in format: json, csv, markdown or txt.
func Export(photos []models.Photo, format, imageDir string) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(photos)
	case "markdown", "md":
		return ExportToMarkdown(photos, imageDir)
	case "txt", "text":
		return ExportToText(photos)
	case "json", "":
		return ExportToJSON(photos)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// DocumentFilename returns the default journal filename for format.
func DocumentFilename(format string) string {
	switch format {
	case "csv":
		return CSVFilename
	case "markdown", "md":
		return MarkdownFilename
	case "txt", "text":
		return TextFilename
	default:
		return JSONFilename
	}
}

// WriteExport renders photos in format and writes the document into dir.
//
// Returns the path of the written document.
func WriteExport(photos []models.Photo, format, dir, imageDir string) (string, error) {
	data, err := Export(photos, format, imageDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	out := filepath.Join(dir, DocumentFilename(format))
	if err := os.WriteFile(out, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	return out, nil
}
