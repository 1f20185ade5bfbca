package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reminis/internal/media"
	"github.com/desertthunder/reminis/internal/notify"
	"github.com/desertthunder/reminis/internal/photos"
	"github.com/desertthunder/reminis/internal/repositories"
	"github.com/desertthunder/reminis/internal/services"
	"github.com/desertthunder/reminis/internal/shared"
	"github.com/desertthunder/reminis/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The storage backend and everything built on it are opened lazily by the first command that needs them.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	kv       repositories.KeyValueStore
	closer   io.Closer
	store    *photos.Store
	notifier *notify.Dispatcher
	engine   *tasks.JournalEngine
	auth     *services.AuthService
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	KV         repositories.KeyValueStore // Overrides the configured backend
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		kv:         opts.KV,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the logger used by the runner and everything it opens afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, photosCommand, serveCommand, tuiCommand, authCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file named by --config before any action runs.
//
// An injected config is kept unless --config is given explicitly; a missing file falls back to built-in defaults.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")

	if r.config == nil || cmd.IsSet("config") {
		r.config = shared.DefaultConfig()
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", path)
		}
	}
	r.configPath = path

	if cmd.Bool("ephemeral") {
		r.config.Storage.Backend = "memory"
	}

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	if level != "" {
		ll, err := log.ParseLevel(level)
		if err != nil {
			return ctx, fmt.Errorf("%w: log level %q", shared.ErrInvalidFlag, level)
		}
		shared.SetLogLevel(r.logger, ll)
	}

	return ctx, nil
}

// shutdown releases the storage backend once the command has finished.
func (r *Runner) shutdown(ctx context.Context, cmd *cli.Command) error {
	if r.notifier != nil {
		if pending, _ := r.notifier.Scheduled(ctx); len(pending) > 0 {
			r.logger.Warn("discarding scheduled notifications", "count", len(pending))
		}
		r.notifier.CancelAll(ctx)
	}
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

// openKV connects the configured key-value backend, migrating SQLite on first use.
func (r *Runner) openKV(ctx context.Context) (repositories.KeyValueStore, error) {
	if r.kv != nil {
		return r.kv, nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	switch backend := r.config.Storage.Backend; backend {
	case "memory":
		r.kv = repositories.NewMemoryStore()
	case "redis":
		store, err := repositories.DialRedis(ctx, r.config.Redis)
		if err != nil {
			return nil, err
		}
		r.kv, r.closer = store, store
	case "sqlite":
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		r.kv, r.closer = repositories.NewSQLiteStore(db), db
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", shared.ErrInvalidConfig, backend)
	}

	r.logger.Debug("storage backend ready", "backend", r.config.Storage.Backend)
	return r.kv, nil
}

// open builds the photo store, its collaborators and the journal engine, then loads the collection.
func (r *Runner) open(ctx context.Context) error {
	if r.store != nil {
		return nil
	}

	kv, err := r.openKV(ctx)
	if err != nil {
		return err
	}
	cfg := r.config

	r.notifier = notify.NewDispatcher(notify.DispatcherOpts{
		Enabled: cfg.Notifications.Enabled,
		Delay:   time.Duration(cfg.Notifications.ReminderDelaySeconds) * time.Second,
		Logger:  shared.WithLogger(r.logger, "component", "notify"),
	})

	r.store = photos.NewStore(photos.StoreOpts{
		KV:       kv,
		Key:      cfg.Storage.Key,
		Files:    photos.NewFileStore(cfg.Storage.PhotoDir),
		Library:  media.NewDirLibrary(cfg.Media.LibraryDir, cfg.Media.Allow),
		Notifier: r.notifier,
		Logger:   r.logger,
	})
	r.store.Load(ctx)

	r.engine = tasks.NewJournalEngine(tasks.EngineOpts{
		Store:    r.store,
		Geocoder: services.NewNominatimGeocoder(r.upstream(cfg.Services.GeocoderURL)),
		Weather:  services.NewOpenMeteoProvider(r.upstream(cfg.Services.WeatherURL)),
		Logger:   r.logger,
	})

	return nil
}

// openAuth builds the auth service over the configured key-value backend.
func (r *Runner) openAuth(ctx context.Context) (*services.AuthService, error) {
	if r.auth != nil {
		return r.auth, nil
	}

	kv, err := r.openKV(ctx)
	if err != nil {
		return nil, err
	}
	if r.config.Auth.APIKey == "" || r.config.Auth.APIKey == "your_api_key" {
		return nil, fmt.Errorf("%w: set auth.api_key in %s", shared.ErrMissingConfig, r.configPath)
	}

	r.auth = services.NewAuthService(services.AuthOpts{
		APIKey:   r.config.Auth.APIKey,
		Identity: services.NewAPIClient(services.ClientOpts{BaseURL: r.config.Auth.IdentityURL, HTTPClient: r.httpClient}),
		Token:    services.NewAPIClient(services.ClientOpts{BaseURL: r.config.Auth.TokenURL, HTTPClient: r.httpClient}),
		KV:       kv,
	})
	return r.auth, nil
}

// upstream creates a throttled client for a context provider. A zero rate disables throttling.
func (r *Runner) upstream(baseURL string) *services.APIClient {
	var limiter *rate.Limiter
	if rps := r.config.Services.RateLimit; rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return services.NewAPIClient(services.ClientOpts{
		BaseURL:    baseURL,
		HTTPClient: r.httpClient,
		UserAgent:  r.config.Services.UserAgent,
		Limiter:    limiter,
	})
}

// reportProgress prints updates from ch until it is closed. Wait on the returned channel after closing ch.
func (r *Runner) reportProgress(ch <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range ch {
			if update.Total > 0 {
				r.writePlain("  [%d/%d] %s\n", update.Step, update.Total, update.Message)
			} else {
				r.writePlain("  %s\n", update.Message)
			}
		}
	}()
	return done
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// notFound wraps ErrPhotoNotFound with the id that missed.
func notFound(id string) error {
	return fmt.Errorf("%w: %s", shared.ErrPhotoNotFound, id)
}
