// Package notify raises local notifications when photos are captured.
//
// A [Dispatcher] delivers immediately or, with a reminder delay, keeps the notification pending on a timer
// until it fires. Pending notifications can be listed and cancelled, which is how deleting a photo withdraws
// the reminder that was scheduled for it.
package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reminis/internal/models"
	"github.com/desertthunder/reminis/internal/shared"
)

// Sink receives notifications when they fire.
type Sink interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// LogSink delivers notifications as log entries.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a sink writing to logger
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Deliver logs n at info level
func (s *LogSink) Deliver(_ context.Context, n models.Notification) error {
	s.logger.Info(n.Title, "body", n.Body, "photo_id", n.Data.PhotoID)
	return nil
}

// ForPhoto builds the capture notification for p.
func ForPhoto(p models.Photo) models.Notification {
	body := "New memory saved"
	if p.Address != nil && *p.Address != "" {
		body = fmt.Sprintf("Memory saved from %s", *p.Address)
	}

	return models.Notification{
		Identifier: shared.GenerateID(),
		Title:      "Photo Captured!",
		Body:       body,
		Data:       models.NotificationData{PhotoID: p.ID},
	}
}

type pending struct {
	notification models.Notification
	timer        *time.Timer
}

// DispatcherOpts configures a [Dispatcher].
type DispatcherOpts struct {
	Enabled bool          // Enabled grants notification permission
	Delay   time.Duration // Delay before capture notifications fire; zero delivers immediately
	Sink    Sink
	Logger  *log.Logger
}

// Dispatcher schedules and delivers notifications.
type Dispatcher struct {
	enabled bool
	delay   time.Duration
	sink    Sink
	logger  *log.Logger
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]*pending
}

// NewDispatcher creates a Dispatcher. A nil sink delivers to the logger.
func NewDispatcher(opts DispatcherOpts) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Sink == nil {
		opts.Sink = NewLogSink(opts.Logger)
	}

	return &Dispatcher{
		enabled: opts.Enabled,
		delay:   opts.Delay,
		sink:    opts.Sink,
		logger:  opts.Logger,
		now:     time.Now,
		pending: make(map[string]*pending),
	}
}

// RequestPermissions reports whether notifications may be shown.
func (d *Dispatcher) RequestPermissions(_ context.Context) bool {
	return d.enabled
}

// NotifyNewPhoto announces a captured photo.
func (d *Dispatcher) NotifyNewPhoto(ctx context.Context, p models.Photo) error {
	if !d.RequestPermissions(ctx) {
		return fmt.Errorf("%w: notifications disabled", shared.ErrPermissionDenied)
	}

	_, err := d.Schedule(ctx, ForPhoto(p), d.delay)
	return err
}

// Schedule delivers n after delay and returns its identifier.
//
// A non-positive delay delivers synchronously and leaves nothing pending.
func (d *Dispatcher) Schedule(ctx context.Context, n models.Notification, delay time.Duration) (string, error) {
	if n.Identifier == "" {
		n.Identifier = shared.GenerateID()
	}

	if delay <= 0 {
		if err := d.sink.Deliver(ctx, n); err != nil {
			return "", fmt.Errorf("failed to deliver notification: %w", err)
		}
		return n.Identifier, nil
	}

	n.TriggerAt = d.now().Add(delay)

	d.mu.Lock()
	defer d.mu.Unlock()

	entry := &pending{notification: n}
	entry.timer = time.AfterFunc(delay, func() { d.fire(n.Identifier) })
	d.pending[n.Identifier] = entry

	return n.Identifier, nil
}

// fire delivers a pending notification unless it was cancelled first.
func (d *Dispatcher) fire(identifier string) {
	d.mu.Lock()
	entry, ok := d.pending[identifier]
	if ok {
		delete(d.pending, identifier)
	}
	d.mu.Unlock()

	if !ok {
		return
	}

	if err := d.sink.Deliver(context.Background(), entry.notification); err != nil {
		d.logger.Error("failed to deliver notification", "identifier", identifier, "error", err)
	}
}

// Scheduled lists pending notifications, soonest first.
func (d *Dispatcher) Scheduled(_ context.Context) ([]models.Notification, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]models.Notification, 0, len(d.pending))
	for _, entry := range d.pending {
		out = append(out, entry.notification)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].TriggerAt.Before(out[j].TriggerAt)
	})

	return out, nil
}

// Cancel withdraws a pending notification. Unknown identifiers are ignored.
func (d *Dispatcher) Cancel(_ context.Context, identifier string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if entry, ok := d.pending[identifier]; ok {
		entry.timer.Stop()
		delete(d.pending, identifier)
	}
	return nil
}

// CancelAll withdraws every pending notification.
func (d *Dispatcher) CancelAll(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, entry := range d.pending {
		entry.timer.Stop()
		delete(d.pending, id)
	}
	return nil
}
