package internal

// Option is a functional option for building the application.
type Option func(*App)

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) {
		a.Config = cfg
	}
}

// WithoutDrafts skips opening the local drafts database.
func WithoutDrafts() Option {
	return func(a *App) {
		a.skipDrafts = true
	}
}
