// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/reminis/internal/media"
	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/shared"
)

// MockNotifier is a test double for photos.Notifier that records calls and keeps notifications pending
type MockNotifier struct {
	mu        sync.Mutex
	Notified  []models.Photo
	Pending   []models.Notification
	Cancelled []string
	NotifyErr error
	ListErr   error
}

func (m *MockNotifier) NotifyNewPhoto(ctx context.Context, p models.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.NotifyErr != nil {
		return m.NotifyErr
	}
	m.Notified = append(m.Notified, p)
	m.Pending = append(m.Pending, models.Notification{
		Identifier: "n-" + p.ID,
		Title:      "Photo Captured!",
		Data:       models.NotificationData{PhotoID: p.ID},
	})
	return nil
}

func (m *MockNotifier) Scheduled(ctx context.Context) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append([]models.Notification(nil), m.Pending...), nil
}

func (m *MockNotifier) Cancel(ctx context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cancelled = append(m.Cancelled, identifier)
	for i, n := range m.Pending {
		if n.Identifier == identifier {
			m.Pending = append(m.Pending[:i], m.Pending[i+1:]...)
			break
		}
	}
	return nil
}

// MockLibrary is a test double for [media.Library]
type MockLibrary struct {
	Status     media.PermissionStatus
	RequestErr error
	CreateErr  error
	Created    []string
}

func (m *MockLibrary) RequestPermission(ctx context.Context) (media.PermissionStatus, error) {
	return m.Status, m.RequestErr
}

func (m *MockLibrary) CreateAsset(ctx context.Context, path string) (*media.Asset, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.Created = append(m.Created, path)
	return &media.Asset{ID: "asset-1", Path: path}, nil
}

// FailingKV is a key-value store whose every operation fails
type FailingKV struct{}

func (FailingKV) GetItem(ctx context.Context, key string) (string, error) {
	return "", shared.ErrPersistence
}
func (FailingKV) SetItem(ctx context.Context, key, value string) error { return shared.ErrPersistence }
func (FailingKV) RemoveItem(ctx context.Context, key string) error { return shared.ErrPersistence }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// FCloser is a response body whose Read always fails
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// WriteCapture writes a fake JPEG capture into dir and returns its path
func WriteCapture(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("\xff\xd8\xff\xe0fake-jpeg"), 0644); err != nil {
		t.Fatalf("Failed to write capture %s: %v", path, err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
