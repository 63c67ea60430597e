package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hy-sato/picket/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr     string
	maxItems int
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithMaxItems sets the multipart part ceiling enforced before any item
// processing
func WithMaxItems(n int) Option {
	return func(c *config) {
		c.maxItems = n
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	bundleUC interfaces.BundleUseCase,
	tickets interfaces.TicketStore,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr:     "localhost:8080",
		maxItems: 10,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// The web frontend is served from a different origin
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	// Health check
	router.Get("/health", handleHealth)

	validateHandler := NewValidateHandler(bundleUC, cfg.maxItems)
	router.Post("/validate", validateHandler.Handle)

	downloadHandler := NewDownloadHandler(tickets)
	router.Get("/download/{ticket}", downloadHandler.Handle)

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
