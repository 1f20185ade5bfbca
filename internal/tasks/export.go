package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/reminis/internal/formatter"
	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/shared"
	"golang.org/x/time/rate"
)

// ImagesDir is the subdirectory of an export holding the image files.
const ImagesDir = "images"

// BulkExportOpts contains configuration for bulk journal exports.
type BulkExportOpts struct {
	Format     string   // Journal document format: json, csv, markdown, txt
	OutputDir  string   // Base output directory (default: reminis_export_{epoch})
	IDs        []string // Photos to export (default: all)
	NumWorkers int      // Concurrent copy workers (default: 5)
	RateLimit  float64  // Copies per second (default: unlimited)
}

// PhotoExportResult is the outcome of exporting one photo.
type PhotoExportResult struct {
	Photo models.Photo
	File  string // Path relative to the output directory
	Error error
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalPhotos     int
	Successful      int
	Failed          int
	OutputDirectory string
	DocumentPath    string
	ManifestPath    string
	Results         []PhotoExportResult // In journal order
}

type exportJob struct {
	index int
	photo models.Photo
}

// BulkExport copies photos into opts.OutputDir concurrently and writes a journal document and manifest.
//
// Individual copy failures are reported in the result and the manifest; they do not fail the export.
func (e *JournalEngine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: photo store not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = "json"
	}
	if _, err := formatter.Export(nil, opts.Format, ""); err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("reminis_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	selected, err := e.selectPhotos(opts.IDs)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Join(opts.OutputDir, ImagesDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	result := &BulkExportResult{
		TotalPhotos:     len(selected),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PhotoExportResult, len(selected)),
	}

	jobs := make(chan exportJob, len(selected))
	results := make(chan exportJob, len(selected))
	outcomes := make([]PhotoExportResult, len(selected))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, outcomes, opts.OutputDir)
	}

	go func() {
		defer close(jobs)
		e.sendProgress(prog, copyingImagesUpdate(len(selected)))
		for i, p := range selected {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- exportJob{index: i, photo: p}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	done := make([]bool, len(selected))
	completed := 0
	for job := range results {
		completed++
		done[job.index] = true
		res := outcomes[job.index]

		if res.Error == nil {
			result.Successful++
			e.sendProgress(prog, copyCompletedUpdate(completed, len(selected), res.Photo.ID))
		} else {
			result.Failed++
			e.sendProgress(prog, copyFailedUpdate(completed, len(selected), res.Photo.ID, res.Error))
		}
	}

	exported := make([]models.Photo, 0, result.Successful)
	manifest := formatter.Manifest{
		Format:          opts.Format,
		ExportedAt:      time.Now().UTC(),
		OutputDirectory: opts.OutputDir,
		TotalPhotos:     len(selected),
		Entries:         make([]formatter.ManifestEntry, 0, len(selected)),
	}

	for i, p := range selected {
		res := outcomes[i]
		if !done[i] {
			res = PhotoExportResult{Photo: p, Error: fmt.Errorf("export cancelled: %w", context.Cause(ctx))}
			result.Failed++
		}
		result.Results[i] = res
		manifest.Entries = append(manifest.Entries, formatter.NewManifestEntry(p.ID, res.File, res.Error))

		if res.Error == nil {
			exported = append(exported, withURI(p, res.File))
		}
	}
	manifest.Successful = result.Successful
	manifest.Failed = result.Failed

	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	e.sendProgress(prog, writeDocumentUpdate(formatter.DocumentFilename(opts.Format)))
	docPath, err := formatter.WriteExport(exported, opts.Format, opts.OutputDir, ImagesDir)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to write journal: %w", err)
	}
	result.DocumentPath = docPath
	manifest.Document = filepath.Base(docPath)

	manifestPath := filepath.Join(opts.OutputDir, formatter.ManifestFilename)
	if err := formatter.WriteManifest(manifest, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that copies images from the jobs channel.
func (e *JournalEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- exportJob,
	outcomes []PhotoExportResult,
	outputDir string,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcomes[job.index] = e.exportSinglePhoto(job.photo, outputDir)
		results <- job
	}
}

// exportSinglePhoto copies one stored image into the export's image directory.
func (e *JournalEngine) exportSinglePhoto(p models.Photo, outputDir string) PhotoExportResult {
	rel := filepath.Join(ImagesDir, filepath.Base(p.URI))
	if err := shared.CopyFile(p.URI, filepath.Join(outputDir, rel)); err != nil {
		e.logger.Warn("failed to export photo", "id", p.ID, "error", err)
		return PhotoExportResult{Photo: p, Error: err}
	}
	return PhotoExportResult{Photo: p, File: rel}
}

// selectPhotos returns the photos named by ids in journal order, or every photo when ids is empty.
func (e *JournalEngine) selectPhotos(ids []string) ([]models.Photo, error) {
	all := e.store.Photos()
	if len(ids) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	selected := make([]models.Photo, 0, len(ids))
	for _, p := range all {
		if wanted[p.ID] {
			selected = append(selected, p)
			delete(wanted, p.ID)
		}
	}

	for _, id := range ids {
		if wanted[id] {
			return nil, fmt.Errorf("%w: %s", shared.ErrPhotoNotFound, id)
		}
	}
	return selected, nil
}

// withURI returns p pointing at its exported copy.
func withURI(p models.Photo, rel string) models.Photo {
	p.URI = filepath.ToSlash(rel)
	return p
}
