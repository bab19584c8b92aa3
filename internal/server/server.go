// Package server Orpheus
//
// The Orpheus is a social-graph service which provides access to users,
// posts, profiles and membership tiers through a resource API and a
// query-graph API over one shared in-memory store.
//
//     Schemes: http
//     BasePath: /v1
//
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/tomasen/realip"

	"github.com/orpheus-net/orpheus/internal/graph"
	"github.com/orpheus-net/orpheus/internal/service"
)

const maxBodySize = 64 * 1024

// Version is set at build time.
var Version = "dev"

type server struct {
	s service.Service
	r *graph.Resolver
}

// SetupRouter setups handlers to chi router.
func SetupRouter(s service.Service, res *graph.Resolver, r chi.Router, timeout time.Duration) {
	r.Use(
		loggerMiddleware,
		middleware.StripSlashes,
		cors.AllowAll().Handler,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		bodyLimiterMiddleware(maxBodySize),
	)

	srv := server{
		s: s,
		r: res,
	}

	r.Get("/health", healthHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", srv.listUsers)
			r.Post("/", srv.createUser)
			r.Get("/{id}", srv.getUser)
			r.Patch("/{id}", srv.updateUser)
			r.Delete("/{id}", srv.deleteUser)
			r.Post("/{id}/subscribeTo", srv.subscribeTo)
			r.Post("/{id}/unsubscribeFrom", srv.unsubscribeFrom)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", srv.listPosts)
			r.Post("/", srv.createPost)
			r.Get("/{id}", srv.getPost)
			r.Patch("/{id}", srv.updatePost)
			r.Delete("/{id}", srv.deletePost)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", srv.listProfiles)
			r.Post("/", srv.createProfile)
			r.Get("/{id}", srv.getProfile)
			r.Patch("/{id}", srv.updateProfile)
			r.Delete("/{id}", srv.deleteProfile)
		})

		r.Route("/member-types", func(r chi.Router) {
			r.Get("/", srv.listMemberTypes)
			r.Get("/{id}", srv.getMemberType)
			r.Patch("/{id}", srv.updateMemberType)
		})

		r.Post("/graphql", srv.graphql)
	})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, map[string]string{"version": Version})
}

func loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		logrus.WithFields(logrus.Fields{
			"ip":       realip.FromRequest(r),
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("request processed")
	})
}

func bodyLimiterMiddleware(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
