package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reminis/internal/formatter"
	"github.com/desertthunder/reminis/internal/geo"
	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/shared"
	"github.com/desertthunder/reminis/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PhotosAdd captures an image file with its context.
func (r *Runner) PhotosAdd(ctx context.Context, cmd *cli.Command) error {
	src := cmd.StringArg("path")
	if src == "" {
		return fmt.Errorf("%w: image path is required", shared.ErrMissingArgument)
	}

	coords, err := coordinatesFrom(cmd)
	if err != nil {
		return err
	}

	if err := r.open(ctx); err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := r.reportProgress(progressCh)
	result, err := r.engine.Capture(ctx, progressCh, src, coords)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Photo, cmd.Bool("pretty"))
	}

	r.writePlainln("✓ Memory saved: %s", result.Photo.ID)
	r.writePhoto(result.Photo)
	if result.AddressErr != nil {
		r.writePlain("  ! address unavailable: %v\n", result.AddressErr)
	}
	if result.WeatherErr != nil {
		r.writePlain("  ! weather unavailable: %v\n", result.WeatherErr)
	}
	return nil
}

// coordinatesFrom reads the optional --lat/--lon pair. Both or neither must be given.
func coordinatesFrom(cmd *cli.Command) (*models.Coordinates, error) {
	hasLat, hasLon := cmd.IsSet("lat"), cmd.IsSet("lon")
	if !hasLat && !hasLon {
		return nil, nil
	}
	if hasLat != hasLon {
		return nil, fmt.Errorf("%w: --lat and --lon must be given together", shared.ErrInvalidArgument)
	}

	coords := &models.Coordinates{Latitude: cmd.Float("lat"), Longitude: cmd.Float("lon")}
	if err := coords.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return coords, nil
}

// PhotosList lists the collection, newest first.
func (r *Runner) PhotosList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	photos := r.store.Photos()
	if limit := cmd.Int("limit"); limit > 0 && limit < len(photos) {
		photos = photos[:limit]
	}

	if cmd.Bool("json") {
		if photos == nil {
			photos = []models.Photo{}
		}
		return r.writeJSON(photos, cmd.Bool("pretty"))
	}

	if len(photos) == 0 {
		return r.writePlain("No memories yet. Capture one with 'reminis photos add <image>'.\n")
	}

	r.writePlain("Found %d memories:\n\n", len(photos))
	for i, p := range photos {
		r.writePlain("%d. %s\n", i+1, formatter.FormatTimestamp(p))
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Location: %s\n", formatter.Location(p))
		if p.Address != nil {
			r.writePlain("   Address: %s\n", *p.Address)
		}
		if p.Weather != nil {
			r.writePlain("   Weather: %s\n", *p.Weather)
		}
		r.writePlain("\n")
	}
	return nil
}

// PhotosShow prints one memory.
func (r *Runner) PhotosShow(ctx context.Context, cmd *cli.Command) error {
	photo, err := r.lookup(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(photo, cmd.Bool("pretty"))
	}

	r.writePlainHeader(formatter.FormatTimestamp(photo))
	r.writePlain("ID: %s\n", photo.ID)
	r.writePhoto(photo)
	return nil
}

// PhotosDelete removes a memory and its image.
func (r *Runner) PhotosDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: photo id is required", shared.ErrMissingArgument)
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if !r.store.DeletePhoto(ctx, id) {
		return notFound(id)
	}
	return r.writePlain("✓ Deleted %s\n", id)
}

// PhotosSave copies a memory's image into the media library.
func (r *Runner) PhotosSave(ctx context.Context, cmd *cli.Command) error {
	photo, err := r.lookup(ctx, cmd)
	if err != nil {
		return err
	}

	if !r.store.SaveToGallery(ctx, photo.ID) {
		return fmt.Errorf("%w: could not save %s to %s", shared.ErrPermissionDenied, photo.ID, r.config.Media.LibraryDir)
	}
	return r.writePlain("✓ Saved %s to %s\n", photo.ID, r.config.Media.LibraryDir)
}

// PhotosOpen opens a memory's image with the system viewer.
func (r *Runner) PhotosOpen(ctx context.Context, cmd *cli.Command) error {
	photo, err := r.lookup(ctx, cmd)
	if err != nil {
		return err
	}

	r.logger.Debug("opening image", "uri", photo.URI)
	return shared.OpenPath(photo.URI)
}

// PhotosClusters groups located memories by place.
func (r *Runner) PhotosClusters(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	clusters := r.store.Clusters()
	if cmd.Bool("json") {
		if clusters == nil {
			clusters = []geo.Cluster{}
		}
		return r.writeJSON(clusters, cmd.Bool("pretty"))
	}

	located := geo.WithLocation(r.store.Photos())
	if len(located) == 0 {
		return r.writePlain("No memories with a location.\n")
	}

	center := geo.Center(located, models.Coordinates{})
	r.writePlain("%d memories at %d places (most recent at %s)\n\n", len(located), len(clusters), center)
	for _, c := range clusters {
		r.writePlain("%s (%d)\n", c.Key, c.Size())
		for _, m := range c.Markers {
			r.writePlain("  • %.6f, %.6f  %s  %s\n", m.Latitude, m.Longitude, m.Photo.ID, formatter.FormatTimestamp(m.Photo))
		}
	}
	return nil
}

// PhotosExport writes the journal document, the images and a manifest to a directory.
func (r *Runner) PhotosExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		IDs:        cmd.StringSlice("id"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := r.reportProgress(progressCh)
	result, err := r.engine.BulkExport(ctx, progressCh, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"output_directory": result.OutputDirectory,
			"document":         result.DocumentPath,
			"manifest":         result.ManifestPath,
			"total_photos":     result.TotalPhotos,
			"successful":       result.Successful,
			"failed":           result.Failed,
		}, cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Document: %s\n", result.DocumentPath)
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	r.writePlain("Images: %d/%d copied\n", result.Successful, result.TotalPhotos)

	if result.Failed > 0 {
		r.writePlain("\nFailed to copy %d images:\n", result.Failed)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  - %s: %v\n", res.Photo.ID, res.Error)
			}
		}
	}
	return nil
}

// PhotosImport restores memories from an export directory or a folder of JPEGs.
func (r *Runner) PhotosImport(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg("dir")
	if dir == "" {
		return fmt.Errorf("%w: directory is required", shared.ErrMissingArgument)
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := r.reportProgress(progressCh)
	result, err := r.engine.BulkImport(ctx, progressCh, dir)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	source := "images"
	if result.FromJournal {
		source = formatter.JSONFilename
	}
	r.writePlain("\n✓ Imported %d/%d memories from %s\n", result.Imported, result.Total, source)
	if result.Failed > 0 {
		r.writePlain("\nFailed to import %d:\n", result.Failed)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  - %s: %v\n", res.Source, res.Error)
			}
		}
	}
	return nil
}

// lookup opens the store and finds the memory named by the id argument.
func (r *Runner) lookup(ctx context.Context, cmd *cli.Command) (models.Photo, error) {
	id := cmd.StringArg("id")
	if id == "" {
		return models.Photo{}, fmt.Errorf("%w: photo id is required", shared.ErrMissingArgument)
	}
	if err := r.open(ctx); err != nil {
		return models.Photo{}, err
	}

	photo, ok := r.store.Get(id)
	if !ok {
		return models.Photo{}, notFound(id)
	}
	return photo, nil
}

func (r *Runner) writePhoto(p models.Photo) {
	r.writePlain("  Taken: %s\n", formatter.FormatTimestamp(p))
	r.writePlain("  Location: %s\n", formatter.Location(p))
	r.writePlain("  Address: %s\n", shared.Deref(p.Address, "-"))
	r.writePlain("  Weather: %s\n", shared.Deref(p.Weather, "-"))
	r.writePlain("  File: %s\n", p.URI)
}
