// package tasks implements multi-step journal operations on top of the photo store.
//
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/services"
	"github.com/desertthunder/reminis/internal/shared"
)

// PhotoStore is the part of [photos.Store] the engine drives.
type PhotoStore interface {
	AddPhoto(ctx context.Context, src string, coords *models.Coordinates, address, weather *string) (models.Photo, error)
	Restore(ctx context.Context, src string, record models.Photo) (models.Photo, error)
	Photos() []models.Photo
}

// CaptureResult contains the stored record and the context lookups that fed it.
type CaptureResult struct {
	Photo      models.Photo
	AddressErr error // Why the address is empty, if it is
	WeatherErr error // Why the weather is empty, if it is
}

// EngineOpts contains the collaborators of a [JournalEngine]. Geocoder and Weather are optional.
type EngineOpts struct {
	Store    PhotoStore
	Geocoder services.Geocoder
	Weather  services.WeatherProvider
	Logger   *log.Logger
}

// JournalEngine runs capture, export and import operations.
type JournalEngine struct {
	store    PhotoStore
	geocoder services.Geocoder
	weather  services.WeatherProvider
	logger   *log.Logger
}

// NewJournalEngine creates a new JournalEngine with the provided collaborators.
func NewJournalEngine(opts EngineOpts) *JournalEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &JournalEngine{
		store:    opts.Store,
		geocoder: opts.Geocoder,
		weather:  opts.Weather,
		logger:   shared.WithLogger(opts.Logger, "component", "tasks"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *JournalEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Enrich looks up the address and then the weather at coords. Failed or unavailable lookups yield nil.
func (e *JournalEngine) Enrich(ctx context.Context, progress chan<- ProgressUpdate, coords *models.Coordinates) (address, weather *string, addrErr, weatherErr error) {
	if coords == nil {
		return nil, nil, nil, nil
	}

	if e.geocoder != nil {
		e.sendProgress(progress, resolveAddressUpdate(*coords))
		a, err := e.geocoder.Reverse(ctx, *coords)
		switch {
		case errors.Is(err, shared.ErrAddressNotFound):
			e.logger.Debug("no address at capture location", "coords", coords.String())
			addrErr = err
		case err != nil:
			e.logger.Warn("error fetching address", "error", err)
			addrErr = err
		default:
			address = shared.StringPtr(a)
		}
	}

	if e.weather != nil {
		e.sendProgress(progress, fetchWeatherUpdate(*coords))
		w, err := e.weather.Current(ctx, *coords)
		if err != nil {
			e.logger.Warn("error fetching weather", "error", err)
			weatherErr = err
		} else {
			weather = shared.StringPtr(w)
		}
	}

	return address, weather, addrErr, weatherErr
}

// Capture records the image at src with the context available at coords.
func (e *JournalEngine) Capture(ctx context.Context, progress chan<- ProgressUpdate, src string, coords *models.Coordinates) (*CaptureResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: photo store not initialized", shared.ErrServiceUnavailable)
	}

	address, weather, addrErr, weatherErr := e.Enrich(ctx, progress, coords)

	e.sendProgress(progress, storePhotoUpdate(nil))
	photo, err := e.store.AddPhoto(ctx, src, coords, address, weather)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, storePhotoUpdate(&photo))

	return &CaptureResult{Photo: photo, AddressErr: addrErr, WeatherErr: weatherErr}, nil
}
