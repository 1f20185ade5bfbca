package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reminis/internal/geo"
	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/shared"
	"github.com/desertthunder/reminis/internal/tasks"
)

// MaxUploadSize caps the body of a capture upload.
const MaxUploadSize = 32 << 20

// PhotoStore is the part of the photo store the API exposes.
type PhotoStore interface {
	Photos() []models.Photo
	Get(id string) (models.Photo, bool)
	DeletePhoto(ctx context.Context, id string) bool
	SaveToGallery(ctx context.Context, id string) bool
	Clusters() []geo.Cluster
}

// Capturer records a new capture with its context.
type Capturer interface {
	Capture(ctx context.Context, progress chan<- tasks.ProgressUpdate, src string, coords *models.Coordinates) (*tasks.CaptureResult, error)
}

// PhotoHandler serves the photo journal API. Implements [Handler].
type PhotoHandler struct {
	store    PhotoStore
	capturer Capturer
	logger   *log.Logger
}

// NewPhotoHandler creates a handler. Without a capturer, POST /photos is not registered.
func NewPhotoHandler(store PhotoStore, capturer Capturer, logger *log.Logger) *PhotoHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PhotoHandler{store: store, capturer: capturer, logger: logger}
}

const (
	routeList     = "GET /photos"
	routeCreate   = "POST /photos"
	routeGet      = "GET /photos/{id}"
	routeDelete   = "DELETE /photos/{id}"
	routeImage    = "GET /photos/{id}/image"
	routeGallery  = "POST /photos/{id}/gallery"
	routeClusters = "GET /clusters"
)

// Routes returns the path patterns served by the handler.
func (h *PhotoHandler) Routes() []string {
	routes := []string{routeList, routeGet, routeDelete, routeImage, routeGallery, routeClusters}
	if h.capturer != nil {
		routes = append(routes, routeCreate)
	}
	return routes
}

// ServeHTTP dispatches on the matched route pattern.
func (h *PhotoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeList:
		writeJSON(w, http.StatusOK, nonNil(h.store.Photos()))
	case routeCreate:
		h.create(w, r)
	case routeGet:
		h.get(w, r)
	case routeDelete:
		h.delete(w, r)
	case routeImage:
		h.image(w, r)
	case routeGallery:
		h.gallery(w, r)
	case routeClusters:
		clusters := h.store.Clusters()
		if clusters == nil {
			clusters = []geo.Cluster{}
		}
		writeJSON(w, http.StatusOK, clusters)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *PhotoHandler) get(w http.ResponseWriter, r *http.Request) {
	photo, ok := h.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, shared.ErrPhotoNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

func (h *PhotoHandler) delete(w http.ResponseWriter, r *http.Request) {
	if !h.store.DeletePhoto(r.Context(), r.PathValue("id")) {
		writeError(w, http.StatusNotFound, shared.ErrPhotoNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PhotoHandler) image(w http.ResponseWriter, r *http.Request) {
	photo, ok := h.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, shared.ErrPhotoNotFound.Error())
		return
	}

	f, err := os.Open(photo.URI)
	if err != nil {
		h.logger.Warn("stored image unavailable", "id", photo.ID, "error", err)
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "image unreadable")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeContent(w, r, photo.ID+".jpg", info.ModTime(), f)
}

func (h *PhotoHandler) gallery(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.store.Get(id); !ok {
		writeError(w, http.StatusNotFound, shared.ErrPhotoNotFound.Error())
		return
	}

	saved := h.store.SaveToGallery(r.Context(), id)
	status := http.StatusOK
	if !saved {
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]bool{"saved": saved})
}

func (h *PhotoHandler) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with a photo file")
		return
	}

	coords, err := parseCoordinates(r.FormValue("latitude"), r.FormValue("longitude"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing photo file")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "reminis-upload-*.jpg")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to buffer upload")
		return
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, file)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to buffer upload")
		return
	}

	res, err := h.capturer.Capture(r.Context(), nil, tmp.Name(), coords)
	if err != nil {
		h.logger.Error("capture failed", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, shared.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("Location", "/photos/"+res.Photo.ID)
	writeJSON(w, http.StatusCreated, res.Photo)
}

// parseCoordinates reads an optional latitude/longitude pair. Both or neither must be given.
func parseCoordinates(lat, lon string) (*models.Coordinates, error) {
	if lat == "" && lon == "" {
		return nil, nil
	}
	if lat == "" || lon == "" {
		return nil, fmt.Errorf("%w: latitude and longitude must be given together", shared.ErrInvalidInput)
	}

	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: latitude: %v", shared.ErrInvalidInput, err)
	}
	longitude, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: longitude: %v", shared.ErrInvalidInput, err)
	}

	coords := &models.Coordinates{Latitude: latitude, Longitude: longitude}
	if err := coords.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return coords, nil
}

// Health reports liveness along with the number of stored photos.
func Health(store PhotoStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "photos": len(store.Photos())})
	})
}

// NewRouter assembles the API: middleware, the photo routes and /health.
func NewRouter(store PhotoStore, capturer Capturer, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(RequestID(), Logging(logger), Recover(logger))
	router.Handler(NewPhotoHandler(store, capturer, logger))
	router.Handle(http.MethodGet, "/health", Health(store))
	return router
}

func nonNil(photos []models.Photo) []models.Photo {
	if photos == nil {
		return []models.Photo{}
	}
	return photos
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
