package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hongminglow/mposter-be/internal/account"
	"github.com/hongminglow/mposter-be/internal/auth"
	"github.com/hongminglow/mposter-be/internal/config"
	"github.com/hongminglow/mposter-be/internal/http/handlers"
	"github.com/hongminglow/mposter-be/internal/middleware"
	"github.com/hongminglow/mposter-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, accounts *account.Service, tokens *auth.TokenManager) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewRouter(cfg, store, accounts, tokens),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewRouter builds the full handler tree. API routes are mounted under
// cfg.APIBasePath; /health always sits at the root.
func NewRouter(cfg config.Config, store storage.Store, accounts *account.Service, tokens *auth.TokenManager) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	handlers.NewHealthHandler(time.Now()).Register(r)

	api := func(r chi.Router) {
		handlers.NewAuthHandler(accounts, tokens).Register(r)
		handlers.NewUserHandler(accounts).Register(r)
		handlers.NewPartyHandler(store).Register(r)
		handlers.NewBannerHandler(store).Register(r)
	}
	if cfg.APIBasePath == "" {
		api(r)
	} else {
		r.Route(cfg.APIBasePath, api)
	}
	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Run serves until ctx is cancelled or the listener fails. On cancellation it
// shuts down gracefully, waiting at most shutdownTimeout for open requests.
// A listener failure is returned as is.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(ctxShutdown)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
