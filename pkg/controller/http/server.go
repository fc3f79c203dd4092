package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// config holds internal HTTP server configuration
type config struct {
	addr      string
	staticDir string
	baseURL   string
	uiConfig  map[string]any
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithStaticDir serves the bundle from an on-disk directory instead of
// the embedded copy
func WithStaticDir(dir string) Option {
	return func(c *config) {
		c.staticDir = dir
	}
}

// WithBaseURL sets the agent base URL injected into the UI
func WithBaseURL(u string) Option {
	return func(c *config) {
		c.baseURL = u
	}
}

// WithUIConfig sets the UI configuration object injected into the UI
func WithUIConfig(cfg map[string]any) Option {
	return func(c *config) {
		c.uiConfig = cfg
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server serving the web UI
func NewServer(
	ctx context.Context,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(AccessLogMiddleware(ctx))
	router.Use(CacheControlMiddleware)
	router.Use(middleware.Recoverer)

	ui := NewUIHandler(ctx, cfg.staticDir, cfg.baseURL, cfg.uiConfig)
	router.Get("/", ui.HandleIndex)
	router.Get("/health", ui.HandleHealth)
	router.Handle("/static/*", http.StripPrefix("/static/", ui.StaticHandler()))

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
