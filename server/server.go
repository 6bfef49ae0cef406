// Package server implements the place-search HTTP API: prompt search over
// persisted conversations, batch place hydration, conversation history and
// favorite toggling.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	placechat "github.com/wayfare-labs/place-chat-sdk"
	"github.com/wayfare-labs/place-chat-sdk/catalog"
	"github.com/wayfare-labs/place-chat-sdk/ranker"
	"github.com/wayfare-labs/place-chat-sdk/store"
)

// Authenticator resolves the calling user from a request. Session issuance is
// a collaborator outside this system; the default trusts an X-User-ID header
// set by an upstream gateway.
type Authenticator func(r *http.Request) (string, error)

// HeaderAuthenticator reads the user ID from the given header.
func HeaderAuthenticator(header string) Authenticator {
	return func(r *http.Request) (string, error) {
		userID := r.Header.Get(header)
		if userID == "" {
			return "", placechat.ErrUnauthorized
		}
		return userID, nil
	}
}

// Deps are the collaborators the server is built from.
type Deps struct {
	// Conversations persists conversations. Required.
	Conversations store.ConversationStore

	// Collections persists favorite collections. Required.
	Collections store.CollectionStore

	// Catalog resolves place IDs into records. Required.
	Catalog catalog.Catalog

	// Ranker orders candidate places for a prompt. Required.
	Ranker ranker.Ranker

	// Authenticator resolves the calling user.
	// Optional - defaults to HeaderAuthenticator("X-User-ID").
	Authenticator Authenticator

	// Logger is the structured logger.
	// Optional - defaults to slog.Default().
	Logger *slog.Logger
}

func (d Deps) validate() error {
	if d.Conversations == nil {
		return placechat.NewError(placechat.ErrCodeValidation, "Conversations store is required", nil)
	}
	if d.Collections == nil {
		return placechat.NewError(placechat.ErrCodeValidation, "Collections store is required", nil)
	}
	if d.Catalog == nil {
		return placechat.NewError(placechat.ErrCodeValidation, "Catalog is required", nil)
	}
	if d.Ranker == nil {
		return placechat.NewError(placechat.ErrCodeValidation, "Ranker is required", nil)
	}
	return nil
}

// Server is the HTTP server for the place-search API.
type Server struct {
	router        *chi.Mux
	conversations store.ConversationStore
	collections   store.CollectionStore
	catalog       catalog.Catalog
	ranker        ranker.Ranker
	auth          Authenticator
	logger        *slog.Logger
	searchLimit   int
	metrics       *metrics
}

// New creates a server from its collaborators and config.
func New(deps Deps, cfg Config) (*Server, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	auth := deps.Authenticator
	if auth == nil {
		auth = HeaderAuthenticator("X-User-ID")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:        chi.NewRouter(),
		conversations: deps.Conversations,
		collections:   deps.Collections,
		catalog:       deps.Catalog,
		ranker:        deps.Ranker,
		auth:          auth,
		logger:        logger,
		searchLimit:   cfg.SearchLimit,
		metrics:       newMetrics(),
	}

	s.setupMiddleware(cfg)
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupMiddleware(cfg Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(cfg.RequestTimeout))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "X-Request-ID", "X-User-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(s.metrics.middleware)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthHandler)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.handler())

	s.router.Route("/places", func(r chi.Router) {
		r.Post("/search", s.searchHandler)
		r.Post("/batch-chat", s.batchChatHandler)
		r.Get("/batch", s.batchHandler)
		r.Post("/toggle-favorite", s.toggleFavoriteHandler)
	})

	s.router.Route("/chat-histories", func(r chi.Router) {
		r.Get("/users/me", s.listConversationsHandler)
		r.Get("/{id}", s.getConversationHandler)
		r.Delete("/{id}", s.deleteConversationHandler)
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the server.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}
