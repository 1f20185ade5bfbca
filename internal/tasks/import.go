package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/desertthunder/reminis/internal/formatter"
	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/shared"
)

// PhotoImportResult is the outcome of importing one file.
type PhotoImportResult struct {
	Source string
	Photo  *models.Photo
	Error  error
}

// BulkImportResult summarizes a bulk import.
type BulkImportResult struct {
	FromJournal bool // Whether records came from a journal.json
	Total       int
	Imported    int
	Failed      int
	Results     []PhotoImportResult
}

type importItem struct {
	src    string
	record models.Photo
}

// BulkImport adds the photos found in dir to the journal.
//
// A directory written by [JournalEngine.BulkExport] in json format is restored record by record with its
// timestamps and context. Any other directory is scanned for JPEG files, each recorded without context
// and stamped with its modification time.
func (e *JournalEngine) BulkImport(ctx context.Context, prog chan<- ProgressUpdate, dir string) (*BulkImportResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: photo store not initialized", shared.ErrServiceUnavailable)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidArgument, dir)
	}

	result := &BulkImportResult{}

	items, fromJournal, err := collectImports(dir)
	if err != nil {
		return nil, err
	}
	result.FromJournal = fromJournal
	result.Total = len(items)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		name := filepath.Base(item.src)
		photo, err := e.store.Restore(ctx, item.src, item.record)
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, PhotoImportResult{Source: item.src, Error: err})
			e.sendProgress(prog, importUpdate(i+1, len(items), name, err))
			continue
		}

		result.Imported++
		result.Results = append(result.Results, PhotoImportResult{Source: item.src, Photo: &photo})
		e.sendProgress(prog, importUpdate(i+1, len(items), name, nil))
	}

	return result, nil
}

// collectImports lists what to import from dir, oldest first.
func collectImports(dir string) ([]importItem, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, formatter.JSONFilename))
	switch {
	case err == nil:
		records, err := formatter.ParseJSONExport(data)
		if err != nil {
			return nil, true, err
		}

		items := make([]importItem, 0, len(records))
		for i := len(records) - 1; i >= 0; i-- {
			r := records[i]
			items = append(items, importItem{src: journalSource(dir, r.URI), record: r})
		}
		return items, true, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, true, fmt.Errorf("failed to read journal: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read directory: %w", err)
	}

	var items []importItem
	for _, entry := range entries {
		if entry.IsDir() || !isJPEG(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, importItem{
			src:    filepath.Join(dir, entry.Name()),
			record: models.Photo{Timestamp: info.ModTime().UnixMilli()},
		})
	}

	slices.SortStableFunc(items, func(a, b importItem) int {
		switch {
		case a.record.Timestamp < b.record.Timestamp:
			return -1
		case a.record.Timestamp > b.record.Timestamp:
			return 1
		default:
			return strings.Compare(a.src, b.src)
		}
	})
	return items, false, nil
}

// journalSource resolves a record's uri against an export directory. Relative uris point into the export;
// absolute ones are used as they are.
func journalSource(dir, uri string) string {
	if filepath.IsAbs(uri) {
		return uri
	}
	return filepath.Join(dir, filepath.FromSlash(uri))
}

func isJPEG(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}
