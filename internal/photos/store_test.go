package photos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/reminis/internal/media"
	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/repositories"
	"github.com/desertthunder/reminis/internal/shared"
	tu "github.com/desertthunder/reminis/internal/testing"
)

type fixture struct {
	store    *Store
	kv       *repositories.MemoryStore
	files    *FileStore
	notifier *tu.MockNotifier
	library  *tu.MockLibrary
	captures string
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		kv:       repositories.NewMemoryStore(),
		files:    NewFileStore(filepath.Join(t.TempDir(), "photos")),
		notifier: &tu.MockNotifier{},
		library:  &tu.MockLibrary{Status: media.PermissionGranted},
		captures: t.TempDir(),
		logs:     &bytes.Buffer{},
	}
	f.store = f.newStore()
	return f
}

// newStore builds a store over the fixture's backend, as a restarted process would
func (f *fixture) newStore() *Store {
	return NewStore(StoreOpts{
		KV:       f.kv,
		Files:    f.files,
		Library:  f.library,
		Notifier: f.notifier,
		Logger:   shared.NewLogger(f.logs),
	})
}

func (f *fixture) persisted(t *testing.T) []models.Photo {
	t.Helper()
	raw, err := f.kv.GetItem(context.Background(), DefaultKey)
	if err != nil {
		t.Fatalf("failed to read persisted collection: %v", err)
	}
	var photos []models.Photo
	if err := json.Unmarshal([]byte(raw), &photos); err != nil {
		t.Fatalf("persisted collection is not JSON: %v", err)
	}
	return photos
}

func (f *fixture) add(t *testing.T, name string) models.Photo {
	t.Helper()
	src := tu.WriteCapture(t, f.captures, name)
	p, err := f.store.AddPhoto(context.Background(), src, nil, nil, nil)
	if err != nil {
		t.Fatalf("failed to add photo: %v", err)
	}
	return p
}

func TestAddPhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("end to end", func(t *testing.T) {
		f := newFixture(t)
		src := tu.WriteCapture(t, f.captures, "cap.jpg")
		address := "123 Main St"
		weather := "Clear • 18°C"

		before := f.store.Len()
		p, err := f.store.AddPhoto(ctx, src, &models.Coordinates{Latitude: 40.7, Longitude: -74.0}, &address, &weather)
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}

		if p.ID == "" {
			t.Error("expected an id")
		}
		if p.URI == src {
			t.Error("uri must not point at the capture file")
		}
		if !f.files.Contains(p.URI) {
			t.Errorf("uri %s should be inside %s", p.URI, f.files.Dir())
		}
		if *p.Address != address || *p.Weather != weather {
			t.Errorf("unexpected context: %v / %v", *p.Address, *p.Weather)
		}
		if p.Coordinates.Latitude != 40.7 || p.Coordinates.Longitude != -74.0 {
			t.Errorf("unexpected coordinates: %+v", p.Coordinates)
		}
		if f.store.Len() != before+1 {
			t.Errorf("expected collection to grow by one, got %d", f.store.Len())
		}

		tu.AssertFileExists(t, p.URI)
		tu.AssertFileExists(t, src)
		if got := tu.MustReadFile(t, p.URI); got != tu.MustReadFile(t, src) {
			t.Error("stored copy differs from capture")
		}

		persisted := f.persisted(t)
		if len(persisted) != 1 || persisted[0].ID != p.ID {
			t.Errorf("persisted store should have the new record at index 0: %+v", persisted)
		}
	})

	t.Run("prepends newest first", func(t *testing.T) {
		f := newFixture(t)
		a := f.add(t, "a.jpg")
		b := f.add(t, "b.jpg")

		photos := f.store.Photos()
		if len(photos) != 2 || photos[0].ID != b.ID || photos[1].ID != a.ID {
			t.Errorf("expected [b, a], got %v", ids(photos))
		}

		persisted := f.persisted(t)
		if persisted[0].ID != b.ID || persisted[1].ID != a.ID {
			t.Errorf("persisted order should match, got %v", ids(persisted))
		}
	})

	t.Run("unique ids", func(t *testing.T) {
		f := newFixture(t)
		frozen := time.UnixMilli(1718000000000)
		f.store.now = func() time.Time { return frozen }

		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			p := f.add(t, fmt.Sprintf("c%d.jpg", i))
			if seen[p.ID] {
				t.Fatalf("duplicate id %s", p.ID)
			}
			seen[p.ID] = true
		}
	})

	t.Run("copy failure records nothing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.store.AddPhoto(ctx, filepath.Join(f.captures, "missing.jpg"), nil, nil, nil)
		if !errors.Is(err, shared.ErrStorage) {
			t.Fatalf("expected ErrStorage, got %v", err)
		}
		if f.store.Len() != 0 {
			t.Error("no record should be added")
		}
		if _, err := f.kv.GetItem(ctx, DefaultKey); !repositories.IsNotFound(err) {
			t.Error("no persistence write should happen")
		}
		if len(f.notifier.Notified) != 0 {
			t.Error("no notification should be sent")
		}
	})

	t.Run("directory failure", func(t *testing.T) {
		f := newFixture(t)
		blocker := tu.WriteCapture(t, f.captures, "blocker")
		f.store.files = NewFileStore(filepath.Join(blocker, "photos"))

		_, err := f.store.AddPhoto(ctx, tu.WriteCapture(t, f.captures, "a.jpg"), nil, nil, nil)
		if !errors.Is(err, shared.ErrStorage) {
			t.Fatalf("expected ErrStorage, got %v", err)
		}
		if f.store.Len() != 0 {
			t.Error("no record should be added")
		}
	})

	t.Run("notifier failure does not roll back", func(t *testing.T) {
		f := newFixture(t)
		f.notifier.NotifyErr = errors.New("notifications unavailable")

		p := f.add(t, "a.jpg")
		if _, ok := f.store.Get(p.ID); !ok {
			t.Error("record should survive a notifier failure")
		}
		if len(f.persisted(t)) != 1 {
			t.Error("record should be persisted despite notifier failure")
		}
		if !strings.Contains(f.logs.String(), "failed to send notification") {
			t.Error("notifier failure should be logged")
		}
	})

	t.Run("notifies with the new record", func(t *testing.T) {
		f := newFixture(t)
		p := f.add(t, "a.jpg")
		if len(f.notifier.Notified) != 1 || f.notifier.Notified[0].ID != p.ID {
			t.Errorf("expected notification for %s, got %+v", p.ID, f.notifier.Notified)
		}
	})

	t.Run("persist failure keeps in-memory change", func(t *testing.T) {
		f := newFixture(t)
		f.store.kv = tu.FailingKV{}

		p := f.add(t, "a.jpg")
		if _, ok := f.store.Get(p.ID); !ok {
			t.Error("in-memory state should reflect the change")
		}
		if !strings.Contains(f.logs.String(), "error saving photos") {
			t.Error("persist failure should be logged")
		}
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		f := newFixture(t)
		src := tu.WriteCapture(t, f.captures, "a.jpg")
		_, err := f.store.AddPhoto(ctx, src, &models.Coordinates{Latitude: 120}, nil, nil)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("concurrent adds are all kept", func(t *testing.T) {
		f := newFixture(t)
		srcs := make([]string, 20)
		for i := range srcs {
			srcs[i] = tu.WriteCapture(t, f.captures, fmt.Sprintf("c%d.jpg", i))
		}

		var wg sync.WaitGroup
		for _, src := range srcs {
			wg.Add(1)
			go func(src string) {
				defer wg.Done()
				if _, err := f.store.AddPhoto(ctx, src, nil, nil, nil); err != nil {
					t.Errorf("add failed: %v", err)
				}
			}(src)
		}
		wg.Wait()

		if f.store.Len() != len(srcs) {
			t.Errorf("expected %d records, got %d", len(srcs), f.store.Len())
		}
		if got := len(f.persisted(t)); got != len(srcs) {
			t.Errorf("expected %d persisted records, got %d", len(srcs), got)
		}
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		f := newFixture(t)
		address := "Flatiron"
		weather := "Fog • 9°C"
		src := tu.WriteCapture(t, f.captures, "x.jpg")
		if _, err := f.store.AddPhoto(ctx, src, &models.Coordinates{Latitude: 40.74, Longitude: -73.99}, &address, &weather); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		f.add(t, "y.jpg")

		want := f.store.Photos()

		reloaded := f.newStore()
		reloaded.Load(ctx)
		got := reloaded.Photos()

		if len(got) != len(want) {
			t.Fatalf("expected %d records, got %d", len(want), len(got))
		}
		for i := range want {
			a, _ := json.Marshal(want[i])
			b, _ := json.Marshal(got[i])
			if string(a) != string(b) {
				t.Errorf("record %d differs:\n got %s\nwant %s", i, b, a)
			}
		}
	})

	t.Run("missing key", func(t *testing.T) {
		f := newFixture(t)
		f.store.Load(ctx)
		if f.store.Len() != 0 {
			t.Errorf("expected empty collection, got %d", f.store.Len())
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		f := newFixture(t)
		if err := f.kv.SetItem(ctx, DefaultKey, "{{not json"); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		f.store.Load(ctx)
		if f.store.Len() != 0 {
			t.Errorf("expected empty collection, got %d", f.store.Len())
		}
		if !strings.Contains(f.logs.String(), "error loading photos") {
			t.Error("load failure should be logged")
		}
	})

	t.Run("backend failure", func(t *testing.T) {
		f := newFixture(t)
		f.store.kv = tu.FailingKV{}
		f.store.Load(ctx)
		if f.store.Len() != 0 {
			t.Errorf("expected empty collection, got %d", f.store.Len())
		}
	})

	t.Run("duplicate ids are dropped", func(t *testing.T) {
		f := newFixture(t)
		raw := `[{"id":"a","uri":"/p/a.jpg","timestamp":2,"coordinates":null,"address":null,"weather":null},
		         {"id":"a","uri":"/p/a2.jpg","timestamp":1,"coordinates":null,"address":null,"weather":null}]`
		if err := f.kv.SetItem(ctx, DefaultKey, raw); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		f.store.Load(ctx)
		photos := f.store.Photos()
		if len(photos) != 1 || photos[0].URI != "/p/a.jpg" {
			t.Errorf("expected first occurrence to win, got %+v", photos)
		}
	})
}

func TestDeletePhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("removes exactly one", func(t *testing.T) {
		f := newFixture(t)
		a := f.add(t, "a.jpg")
		b := f.add(t, "b.jpg")
		c := f.add(t, "c.jpg")

		if !f.store.DeletePhoto(ctx, b.ID) {
			t.Fatal("expected delete to report a removal")
		}

		photos := f.store.Photos()
		if len(photos) != 2 || photos[0].ID != c.ID || photos[1].ID != a.ID {
			t.Errorf("expected [c, a], got %v", ids(photos))
		}
		tu.AssertFileMissing(t, b.URI)
		tu.AssertFileExists(t, a.URI)

		if persisted := f.persisted(t); len(persisted) != 2 {
			t.Errorf("expected 2 persisted records, got %d", len(persisted))
		}
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "a.jpg")

		if f.store.DeletePhoto(ctx, "nope") {
			t.Error("expected delete of unknown id to report false")
		}
		if f.store.Len() != 1 {
			t.Errorf("size should be unchanged, got %d", f.store.Len())
		}
		if len(f.notifier.Cancelled) != 0 {
			t.Error("no notifications should be cancelled")
		}
	})

	t.Run("missing backing file", func(t *testing.T) {
		f := newFixture(t)
		a := f.add(t, "a.jpg")
		if err := shared.RemoveFile(a.URI); err != nil {
			t.Fatalf("failed to remove file: %v", err)
		}

		if !f.store.DeletePhoto(ctx, a.ID) {
			t.Fatal("expected delete to succeed")
		}
		if f.store.Len() != 0 {
			t.Error("record should be removed")
		}
	})

	t.Run("file outside the photo directory is left alone", func(t *testing.T) {
		f := newFixture(t)
		outside := tu.WriteCapture(t, f.captures, "keep.jpg")
		raw := fmt.Sprintf(`[{"id":"x","uri":%q,"timestamp":1,"coordinates":null,"address":null,"weather":null}]`, outside)
		if err := f.kv.SetItem(ctx, DefaultKey, raw); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		f.store.Load(ctx)

		if !f.store.DeletePhoto(ctx, "x") {
			t.Fatal("expected delete to succeed")
		}
		tu.AssertFileExists(t, outside)
	})

	t.Run("cancels pending notifications for the photo", func(t *testing.T) {
		f := newFixture(t)
		a := f.add(t, "a.jpg")
		b := f.add(t, "b.jpg")

		f.store.DeletePhoto(ctx, a.ID)

		if len(f.notifier.Cancelled) != 1 || f.notifier.Cancelled[0] != "n-"+a.ID {
			t.Errorf("expected only %s's notification cancelled, got %v", a.ID, f.notifier.Cancelled)
		}
		pending, _ := f.notifier.Scheduled(ctx)
		if len(pending) != 1 || pending[0].Data.PhotoID != b.ID {
			t.Errorf("unexpected pending notifications: %+v", pending)
		}
	})

	t.Run("notification listing failure does not fail delete", func(t *testing.T) {
		f := newFixture(t)
		a := f.add(t, "a.jpg")
		f.notifier.ListErr = errors.New("unavailable")

		if !f.store.DeletePhoto(ctx, a.ID) {
			t.Fatal("expected delete to succeed")
		}
		if f.store.Len() != 0 {
			t.Error("record should be removed")
		}
	})
}

func TestSaveToGallery(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id", func(t *testing.T) {
		f := newFixture(t)
		if f.store.SaveToGallery(ctx, "nope") {
			t.Error("expected false for unknown id")
		}
		if len(f.library.Created) != 0 {
			t.Error("no asset should be created")
		}
	})

	t.Run("granted", func(t *testing.T) {
		f := newFixture(t)
		a := f.add(t, "a.jpg")
		if !f.store.SaveToGallery(ctx, a.ID) {
			t.Fatal("expected save to succeed")
		}
		if len(f.library.Created) != 1 || f.library.Created[0] != a.URI {
			t.Errorf("expected stored file exported, got %v", f.library.Created)
		}
	})

	tc := []struct {
		name    string
		library *tu.MockLibrary
	}{
		{name: "permission denied", library: &tu.MockLibrary{Status: media.PermissionDenied}},
		{name: "permission error", library: &tu.MockLibrary{Status: media.PermissionGranted, RequestErr: errors.New("boom")}},
		{name: "export error", library: &tu.MockLibrary{Status: media.PermissionGranted, CreateErr: errors.New("disk full")}},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			a := f.add(t, "a.jpg")
			f.store.library = tt.library

			if f.store.SaveToGallery(ctx, a.ID) {
				t.Error("expected false")
			}
		})
	}

	t.Run("no library", func(t *testing.T) {
		f := newFixture(t)
		a := f.add(t, "a.jpg")
		f.store.library = nil
		if f.store.SaveToGallery(ctx, a.ID) {
			t.Error("expected false without a library")
		}
	})

	t.Run("directory library", func(t *testing.T) {
		f := newFixture(t)
		a := f.add(t, "a.jpg")
		lib := media.NewDirLibrary(filepath.Join(t.TempDir(), "Pictures"), true)
		f.store.library = lib

		if !f.store.SaveToGallery(ctx, a.ID) {
			t.Fatal("expected save to succeed")
		}
		tu.AssertFileExists(t, filepath.Join(lib.Dir(), filepath.Base(a.URI)))
	})
}

func TestClusters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, c := range []models.Coordinates{
		{Latitude: 40.73581000, Longitude: -73.99155000},
		{Latitude: 40.73581004, Longitude: -73.99155004},
		{Latitude: 10, Longitude: 10},
	} {
		src := tu.WriteCapture(t, f.captures, fmt.Sprintf("%d.jpg", i))
		if _, err := f.store.AddPhoto(ctx, src, &c, nil, nil); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	f.add(t, "nowhere.jpg")

	clusters := f.store.Clusters()
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if clusters[0].Key != "10.00000,10.00000" || clusters[1].Size() != 2 {
		t.Errorf("unexpected clusters: %s (%d), %s (%d)", clusters[0].Key, clusters[0].Size(), clusters[1].Key, clusters[1].Size())
	}
}

func ids(photos []models.Photo) []string {
	out := make([]string, len(photos))
	for i, p := range photos {
		out[i] = p.ID
	}
	return out
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps timestamp and context", func(t *testing.T) {
		f := newFixture(t)
		src := tu.WriteCapture(t, f.captures, "old.jpg")
		record := models.Photo{
			ID:          "old-id",
			URI:         "/elsewhere/old-id.jpg",
			Timestamp:   1718029800000,
			Coordinates: &models.Coordinates{Latitude: 1, Longitude: 2},
			Address:     shared.StringPtr("Somewhere"),
		}

		got, err := f.store.Restore(ctx, src, record)
		if err != nil {
			t.Fatalf("restore failed: %v", err)
		}
		if got.ID != "old-id" || got.Timestamp != record.Timestamp || *got.Address != "Somewhere" {
			t.Errorf("unexpected record: %+v", got)
		}
		if !f.files.Contains(got.URI) {
			t.Errorf("uri %s should be inside the photo directory", got.URI)
		}
		tu.AssertFileExists(t, got.URI)
		if len(f.notifier.Notified) != 0 {
			t.Error("restoring should not notify")
		}
	})

	t.Run("taken id gets a fresh one", func(t *testing.T) {
		f := newFixture(t)
		a := f.add(t, "a.jpg")

		got, err := f.store.Restore(ctx, tu.WriteCapture(t, f.captures, "b.jpg"), models.Photo{ID: a.ID, Timestamp: 1})
		if err != nil {
			t.Fatalf("restore failed: %v", err)
		}
		if got.ID == a.ID || got.ID == "" {
			t.Errorf("expected a fresh id, got %q", got.ID)
		}
		if f.store.Len() != 2 {
			t.Errorf("expected 2 records, got %d", f.store.Len())
		}
	})

	t.Run("ordered newest first", func(t *testing.T) {
		f := newFixture(t)
		for _, ts := range []int64{3000, 1000, 2000} {
			src := tu.WriteCapture(t, f.captures, fmt.Sprintf("%d.jpg", ts))
			if _, err := f.store.Restore(ctx, src, models.Photo{ID: fmt.Sprint(ts), Timestamp: ts}); err != nil {
				t.Fatalf("restore failed: %v", err)
			}
		}

		got := ids(f.store.Photos())
		if strings.Join(got, ",") != "3000,2000,1000" {
			t.Errorf("expected newest first, got %v", got)
		}
		if persisted := ids(f.persisted(t)); strings.Join(persisted, ",") != "3000,2000,1000" {
			t.Errorf("persisted order should match, got %v", persisted)
		}
	})

	t.Run("copy failure records nothing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.store.Restore(ctx, filepath.Join(f.captures, "missing.jpg"), models.Photo{ID: "x", Timestamp: 1})
		if !errors.Is(err, shared.ErrStorage) {
			t.Fatalf("expected ErrStorage, got %v", err)
		}
		if f.store.Len() != 0 {
			t.Error("no record should be added")
		}
	})
}

func TestCancelledContext(t *testing.T) {
	db, err := shared.NewDatabase(filepath.Join(t.TempDir(), "reminis.db"))
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	files := NewFileStore(filepath.Join(t.TempDir(), "photos"))
	captures := t.TempDir()
	newStore := func() *Store {
		s := NewStore(StoreOpts{
			KV:     repositories.NewSQLiteStore(db),
			Files:  files,
			Logger: shared.NewLogger(&bytes.Buffer{}),
		})
		s.Load(context.Background())
		return s
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	store := newStore()
	p, err := store.AddPhoto(cancelled, tu.WriteCapture(t, captures, "cap.jpg"), nil, nil, nil)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	t.Run("add is persisted", func(t *testing.T) {
		reloaded := newStore()
		if _, ok := reloaded.Get(p.ID); !ok || reloaded.Len() != 1 {
			t.Errorf("expected the added record after reload, got %d records", reloaded.Len())
		}
	})

	t.Run("delete is persisted", func(t *testing.T) {
		if !store.DeletePhoto(cancelled, p.ID) {
			t.Fatal("expected delete to succeed")
		}
		reloaded := newStore()
		if reloaded.Len() != 0 {
			t.Errorf("deleted record came back after reload: %v", ids(reloaded.Photos()))
		}
	})
}

func TestRecordIsolation(t *testing.T) {
	ctx := context.Background()

	t.Run("caller values are copied", func(t *testing.T) {
		f := newFixture(t)
		address := "123 Main St"
		weather := "Clear • 18°C"
		coords := &models.Coordinates{Latitude: 40.7, Longitude: -74.0}

		p, err := f.store.AddPhoto(ctx, tu.WriteCapture(t, f.captures, "cap.jpg"), coords, &address, &weather)
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		address = "changed"
		weather = "changed"
		coords.Latitude = 0

		got, _ := f.store.Get(p.ID)
		if *got.Address != "123 Main St" || *got.Weather != "Clear • 18°C" || got.Coordinates.Latitude != 40.7 {
			t.Errorf("record changed with caller values: %+v", got)
		}
	})

	t.Run("snapshots are copies", func(t *testing.T) {
		f := newFixture(t)
		address := "123 Main St"
		p, err := f.store.AddPhoto(ctx, tu.WriteCapture(t, f.captures, "cap.jpg"), &models.Coordinates{Latitude: 40.7, Longitude: -74.0}, &address, nil)
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}

		*p.Address = "from result"
		snap := f.store.Photos()
		snap[0].Coordinates.Latitude = 0
		one, _ := f.store.Get(p.ID)
		*one.Address = "from get"

		got, _ := f.store.Get(p.ID)
		if *got.Address != "123 Main St" || got.Coordinates.Latitude != 40.7 {
			t.Errorf("record changed through a returned copy: %+v", got)
		}

		persisted := f.persisted(t)
		if *persisted[0].Address != *got.Address || persisted[0].Coordinates.Latitude != got.Coordinates.Latitude {
			t.Errorf("persisted %+v differs from in-memory %+v", persisted[0], got)
		}
	})

	t.Run("restored record is copied", func(t *testing.T) {
		f := newFixture(t)
		record := models.Photo{ID: "old-id", Timestamp: 1718029800000, Address: shared.StringPtr("Somewhere")}

		if _, err := f.store.Restore(ctx, tu.WriteCapture(t, f.captures, "old.jpg"), record); err != nil {
			t.Fatalf("restore failed: %v", err)
		}
		*record.Address = "changed"

		if got, _ := f.store.Get("old-id"); *got.Address != "Somewhere" {
			t.Errorf("restored record changed with caller value: %q", *got.Address)
		}
	})
}

func TestIDCollision(t *testing.T) {
	ctx := context.Background()

	t.Run("repeated id is redrawn", func(t *testing.T) {
		f := newFixture(t)
		seq := []string{"a", "a", "b"}
		f.store.newID = func() string {
			id := seq[0]
			seq = seq[1:]
			return id
		}

		f.add(t, "first.jpg")
		p := f.add(t, "second.jpg")
		if p.ID != "b" {
			t.Errorf("expected redrawn id b, got %s", p.ID)
		}
		if f.store.Len() != 2 {
			t.Errorf("expected 2 records, got %d", f.store.Len())
		}
	})

	t.Run("exhausted ids are rejected", func(t *testing.T) {
		f := newFixture(t)
		f.store.newID = func() string { return "same" }

		first := f.add(t, "first.jpg")
		original := tu.MustReadFile(t, first.URI)

		src := filepath.Join(f.captures, "second.jpg")
		if err := os.WriteFile(src, []byte("other image"), 0o644); err != nil {
			t.Fatalf("failed to write capture: %v", err)
		}
		_, err := f.store.AddPhoto(ctx, src, nil, nil, nil)
		if !errors.Is(err, shared.ErrStorage) {
			t.Fatalf("expected ErrStorage, got %v", err)
		}
		if f.store.Len() != 1 {
			t.Errorf("expected 1 record, got %d", f.store.Len())
		}
		if got := tu.MustReadFile(t, first.URI); got != original {
			t.Error("existing image was overwritten")
		}
	})
}
