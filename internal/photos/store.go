package photos

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reminis/internal/geo"
	"github.com/desertthunder/reminis/internal/media"
	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/repositories"
	"github.com/desertthunder/reminis/internal/shared"
)

const (
	// DefaultKey is the key-value key holding the collection.
	DefaultKey = "@memory_photos"
	// DefaultDir is the private photo directory used when none is configured.
	DefaultDir = "~/.reminis/photos"

	maxIDAttempts = 5
)

// Notifier is the notification collaborator of the store.
type Notifier interface {
	NotifyNewPhoto(ctx context.Context, p models.Photo) error
	Scheduled(ctx context.Context) ([]models.Notification, error)
	Cancel(ctx context.Context, identifier string) error
}

// StoreOpts contains the collaborators of a [Store]. Zero-valued fields fall back to defaults,
// except Library: without one, [Store.SaveToGallery] always reports false.
type StoreOpts struct {
	KV       repositories.KeyValueStore
	Key      string
	Files    *FileStore
	Library  media.Library
	Notifier Notifier
	Logger   *log.Logger
	Now      func() time.Time
	NewID    func() string
}

// Store owns the photo collection.
type Store struct {
	kv       repositories.KeyValueStore
	key      string
	files    *FileStore
	library  media.Library
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
	newID    func() string

	mu     sync.RWMutex
	photos []models.Photo
}

// NewStore creates an empty Store. Call [Store.Load] to read the persisted collection.
func NewStore(opts StoreOpts) *Store {
	if opts.KV == nil {
		opts.KV = repositories.NewMemoryStore()
	}
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Files == nil {
		opts.Files = NewFileStore(DefaultDir)
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = shared.GenerateID
	}

	return &Store{
		kv:       opts.KV,
		key:      opts.Key,
		files:    opts.Files,
		library:  opts.Library,
		notifier: opts.Notifier,
		logger:   shared.WithLogger(opts.Logger, "component", "store"),
		now:      opts.Now,
		newID:    opts.NewID,
	}
}

// Load replaces the in-memory collection with the persisted one.
//
// A missing key, a backend failure or malformed JSON leaves an empty collection.
func (s *Store) Load(ctx context.Context) {
	var loaded []models.Photo

	err := repositories.GetJSON(ctx, s.kv, s.key, &loaded)
	switch {
	case repositories.IsNotFound(err):
		s.logger.Debug("no saved photos", "key", s.key)
		loaded = nil
	case err != nil:
		s.logger.Error("error loading photos", "key", s.key, "error", err)
		loaded = nil
	}

	seen := make(map[string]struct{}, len(loaded))
	photos := make([]models.Photo, 0, len(loaded))
	for _, p := range loaded {
		if _, dup := seen[p.ID]; dup {
			s.logger.Warn("skipping duplicate photo id", "id", p.ID)
			continue
		}
		seen[p.ID] = struct{}{}
		photos = append(photos, p)
	}

	s.mu.Lock()
	s.photos = photos
	s.mu.Unlock()

	s.logger.Debug("loaded photos", "count", len(photos))
}

// Photos returns a snapshot of the collection, newest first.
func (s *Store) Photos() []models.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	photos := make([]models.Photo, len(s.photos))
	for i, p := range s.photos {
		photos[i] = p.Clone()
	}
	return photos
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos)
}

// Get looks up a record by id.
func (s *Store) Get(id string) (models.Photo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.photos[i].Clone(), true
	}
	return models.Photo{}, false
}

// Clusters groups the located photos for map display.
func (s *Store) Clusters() []geo.Cluster {
	return geo.GroupByLocation(s.Photos())
}

// AddPhoto copies the capture at src into private storage and records it with its context.
//
// Errors wrap [shared.ErrStorage] when the copy fails; nothing is recorded or persisted in that case.
func (s *Store) AddPhoto(ctx context.Context, src string, coords *models.Coordinates, address, weather *string) (models.Photo, error) {
	if coords != nil {
		if err := coords.Validate(); err != nil {
			return models.Photo{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
	}

	s.mu.Lock()
	id, err := s.uniqueIDLocked()
	if err != nil {
		s.mu.Unlock()
		return models.Photo{}, err
	}

	uri, err := s.files.Import(src, id)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("failed to store photo", "source", src, "error", err)
		return models.Photo{}, err
	}

	photo := models.NewPhoto(id, uri, s.now(), coords, address, weather).Clone()
	s.photos = append([]models.Photo{photo}, s.photos...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.Info("photo added", "id", photo.ID, "uri", photo.URI)

	if err := s.notifier.NotifyNewPhoto(context.WithoutCancel(ctx), photo.Clone()); err != nil {
		s.logger.Warn("failed to send notification", "id", photo.ID, "error", err)
	}

	return photo.Clone(), nil
}

// Restore copies the image at src into private storage and records it with the timestamp and context of
// record, as when importing a previously exported journal. The record gets a fresh id when its own is
// empty or already taken. It is placed so the collection stays ordered newest first.
func (s *Store) Restore(ctx context.Context, src string, record models.Photo) (models.Photo, error) {
	if record.Coordinates != nil {
		if err := record.Coordinates.Validate(); err != nil {
			return models.Photo{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
	}
	if record.Timestamp <= 0 {
		record.Timestamp = s.now().UnixMilli()
	}
	record = record.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" || s.indexLocked(record.ID) >= 0 {
		id, err := s.uniqueIDLocked()
		if err != nil {
			return models.Photo{}, err
		}
		record.ID = id
	}

	uri, err := s.files.Import(src, record.ID)
	if err != nil {
		s.logger.Error("failed to restore photo", "source", src, "error", err)
		return models.Photo{}, err
	}
	record.URI = uri

	i, _ := slices.BinarySearchFunc(s.photos, record.Timestamp, func(p models.Photo, ts int64) int {
		switch {
		case p.Timestamp > ts:
			return -1
		case p.Timestamp < ts:
			return 1
		default:
			return 0
		}
	})
	s.photos = slices.Insert(s.photos, i, record)
	s.persistLocked(ctx)

	s.logger.Info("photo restored", "id", record.ID, "uri", record.URI)
	return record.Clone(), nil
}

// SaveToGallery exports the stored image of id into the media library.
//
// Unknown ids, refused permission and export errors all report false.
func (s *Store) SaveToGallery(ctx context.Context, id string) bool {
	photo, ok := s.Get(id)
	if !ok {
		s.logger.Debug("save to gallery: unknown photo", "id", id)
		return false
	}

	if s.library == nil {
		s.logger.Warn("save to gallery: no media library configured")
		return false
	}

	status, err := s.library.RequestPermission(ctx)
	if err != nil {
		s.logger.Error("error requesting media permission", "error", err)
		return false
	}
	if status != media.PermissionGranted {
		s.logger.Info("media library permission not granted", "status", status)
		return false
	}

	asset, err := s.library.CreateAsset(ctx, photo.URI)
	if err != nil {
		s.logger.Error("error saving to gallery", "id", id, "error", err)
		return false
	}

	s.logger.Info("saved to gallery", "id", id, "asset", asset.Path)
	return true
}

// DeletePhoto removes the record of id and its image file, then withdraws pending notifications for it.
//
// The record is removed even when the file cannot be deleted. Unknown ids are a no-op and report false.
func (s *Store) DeletePhoto(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}

	photo := s.photos[i]
	if !s.files.Contains(photo.URI) {
		s.logger.Warn("not removing file outside photo directory", "id", id, "uri", photo.URI)
	} else if err := s.files.Remove(photo.URI); err != nil {
		s.logger.Error("error deleting photo file", "id", id, "error", err)
	}

	s.photos = slices.Delete(s.photos, i, i+1)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.Info("photo deleted", "id", id)
	s.cancelNotifications(context.WithoutCancel(ctx), id)
	return true
}

// cancelNotifications withdraws every pending notification whose payload references id.
func (s *Store) cancelNotifications(ctx context.Context, id string) {
	scheduled, err := s.notifier.Scheduled(ctx)
	if err != nil {
		s.logger.Warn("failed to list scheduled notifications", "error", err)
		return
	}

	for _, n := range scheduled {
		if n.Data.PhotoID != id {
			continue
		}
		if err := s.notifier.Cancel(ctx, n.Identifier); err != nil {
			s.logger.Warn("failed to cancel notification", "identifier", n.Identifier, "error", err)
		}
	}
}

// persistLocked writes the whole collection. Failures are logged; the in-memory change stands.
//
// The write ignores cancellation of ctx so a finished mutation is always persisted.
func (s *Store) persistLocked(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	photos := s.photos
	if photos == nil {
		photos = []models.Photo{}
	}

	if err := repositories.SetJSON(ctx, s.kv, s.key, photos); err != nil {
		s.logger.Error("error saving photos", "key", s.key, "error", err)
	}
}

// uniqueIDLocked draws ids until one is not in use.
func (s *Store) uniqueIDLocked() (string, error) {
	for range maxIDAttempts {
		if id := s.newID(); id != "" && s.indexLocked(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no unused photo id after %d attempts", shared.ErrStorage, maxIDAttempts)
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.photos, func(p models.Photo) bool { return p.ID == id })
}

type nopNotifier struct{}

func (nopNotifier) NotifyNewPhoto(context.Context, models.Photo) error { return nil }
func (nopNotifier) Scheduled(context.Context) ([]models.Notification, error) {
	return nil, nil
}
func (nopNotifier) Cancel(context.Context, string) error { return nil }
