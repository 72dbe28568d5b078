package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	mcpMode bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMCPMode serves the Model Context Protocol on stdio instead of the
// HTTP API and watcher.
func WithMCPMode(on bool) Option {
	return func(a *application) {
		a.mcpMode = on
	}
}
