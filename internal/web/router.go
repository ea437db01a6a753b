// Package web exposes the provisioned facades as a JSON REST API. Each
// entity is mounted at its relation name with the usual CRUD verbs;
// view-kind entities expose only reads.
package web

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joinery-data/joinery/internal/model"
)

// Option configures the handler.
type Option func(*options)

type options struct {
	log    *zap.Logger
	tokens *TokenService
}

// WithLogger sets the logger used for request logs and failures.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithTokenService puts the API behind bearer token authentication.
// The health endpoint stays public.
func WithTokenService(tokens *TokenService) Option {
	return func(o *options) {
		o.tokens = tokens
	}
}

// New builds the API handler over the provisioned facades.
func New(facades map[string]*model.Facade, opts ...Option) http.Handler {
	o := &options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	mux := chi.NewRouter()
	mux.Use(requestLogger(o.log))
	mux.Use(recoverer(o.log))
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderNotFound(w, "")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	names := make([]string, 0, len(facades))
	for name := range facades {
		names = append(names, name)
	}
	sort.Strings(names)

	mux.Group(func(api chi.Router) {
		if o.tokens != nil {
			api.Use(bearerAuth(o.tokens))
		}

		for _, name := range names {
			res := &resource{facade: facades[name], log: o.log}
			base := "/" + res.entity().SchemaName()

			api.Get(base, res.list)
			if res.entity().IsView() {
				continue
			}
			api.Post(base, res.create)
			api.Get(base+"/{id}", res.show)
			api.Patch(base+"/{id}", res.update)
			api.Delete(base+"/{id}", res.remove)
		}
	})

	return mux
}
