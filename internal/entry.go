package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/starford/scrawl/internal/account"
	"github.com/starford/scrawl/internal/detail"
	"github.com/starford/scrawl/internal/drafts"
	"github.com/starford/scrawl/internal/feed"
	"github.com/starford/scrawl/internal/gateway"
	"github.com/starford/scrawl/internal/remote"
	"github.com/starford/scrawl/internal/session"
	"github.com/starford/scrawl/internal/storage"
	"github.com/starford/scrawl/internal/toggle"
)

// App is the assembled client: the session store, the typed API client, and
// the view controllers, all sharing one gateway.
type App struct {
	Config *Config
	Logger *slog.Logger

	Sessions  *session.Store
	API       *remote.Client
	Feed      *feed.Controller
	Detail    *detail.Controller
	Toggles   *toggle.Toggler
	Account   *account.Controller
	Favorites *account.Favorites
	Drafts    *drafts.DB

	sessionPath string
	skipDrafts  bool
}

// New builds the application with the given options.
func New(opts ...Option) (*App, error) {
	app := &App{}
	for _, opt := range opts {
		opt(app)
	}
	if app.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.Config

	// Structured JSON logs go to stderr; stdout belongs to command output.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	app.Logger = logger

	provider, err := storage.NewFile(cfg.Session.Dir)
	if err != nil {
		return nil, fmt.Errorf("init session storage: %w", err)
	}
	app.sessionPath = provider.Path()

	sessions, err := session.NewStore(provider)
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}
	app.Sessions = sessions

	gw, err := gateway.New(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout()}, sessions)
	if err != nil {
		return nil, fmt.Errorf("init gateway: %w", err)
	}

	api := remote.New(gw)
	sessions.SetAuthClient(api)
	app.API = api

	app.Feed = feed.NewController(api, logger)
	app.Detail = detail.NewController(api, sessions, logger)
	app.Toggles = toggle.New(api, sessions, logger)
	app.Account = account.NewController(api, sessions, logger)
	app.Favorites = account.NewFavorites(api, logger)

	if !app.skipDrafts {
		if err := os.MkdirAll(filepath.Dir(cfg.Drafts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create drafts dir: %w", err)
		}
		db, err := drafts.Open(cfg.Drafts.Path)
		if err != nil {
			return nil, fmt.Errorf("init drafts: %w", err)
		}
		app.Drafts = db
	}

	logger.Debug("client assembled",
		slog.String("base_url", cfg.API.BaseURL),
		slog.String("session_path", app.sessionPath),
		slog.Bool("authenticated", sessions.IsAuthenticated()))

	return app, nil
}

// Close releases local resources.
func (a *App) Close() error {
	if a.Drafts != nil {
		return a.Drafts.Close()
	}
	return nil
}

// SessionPath returns the absolute path of the persisted session record.
func (a *App) SessionPath() string { return a.sessionPath }

// WatchSession runs the session-record reload loop until ctx is cancelled.
func (a *App) WatchSession(ctx context.Context) error {
	return a.Sessions.Watch(ctx, a.sessionPath, a.Logger)
}
