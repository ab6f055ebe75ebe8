// Package router sets up all HTTP routes and middleware chains for the
// Dev Flink API. It organizes routes into public, form, auth and admin
// groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"devflink/internal/handlers"
	"devflink/internal/middleware"
	"devflink/internal/respond"
	"devflink/internal/session"
)

// Handlers bundles the handler groups the router mounts.
type Handlers struct {
	Public *handlers.Public
	Forms  *handlers.Forms
	Auth   *handlers.Auth
	Admin  *handlers.Admin
}

// Options tunes the middleware stack. Nil limiters disable rate limiting
// for their routes.
type Options struct {
	CORSOrigins  []string
	SecureCookie bool
	FormLimiter  *middleware.RateLimiter
	LoginLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessions *session.Manager, h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(corsHandler(opts.CORSOrigins))
	r.Use(middleware.LoadSession(sessions))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.ErrorMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.ErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Public read endpoints.
	r.Get("/health", h.Public.Health)
	r.Get("/posts", h.Public.ListPosts)
	r.Get("/posts/{slug}", h.Public.GetPost)
	r.Get("/jobs", h.Public.ListJobs)
	r.Get("/jobs/{id}", h.Public.GetJob)
	r.Route("/articles", func(r chi.Router) {
		r.Get("/", h.Public.ListArticles)
		r.Get("/categories", h.Public.ArticleCategories)
		r.Get("/tags", h.Public.ArticleTags)
		r.Get("/{slug}", h.Public.GetArticle)
	})

	// Public forms, rate limited per client IP.
	r.Group(func(r chi.Router) {
		r.Use(limit(opts.FormLimiter))
		r.Post("/contact", h.Forms.Contact)
		r.Post("/careers/apply", h.Forms.Apply)
		r.Post("/careers/cv", h.Forms.UploadCV)
	})

	csrf := middleware.NewCSRF(opts.SecureCookie)

	r.Route("/auth", func(r chi.Router) {
		r.Use(csrf)

		r.With(limit(opts.LoginLimiter)).Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", h.Auth.Me)
			r.Post("/2fa/setup", h.Auth.SetupTOTP)
			r.Post("/2fa/enable", h.Auth.EnableTOTP)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Use(csrf)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.Admin.ListPosts)
			r.Post("/", h.Admin.CreatePost)
			r.Put("/{id}", h.Admin.UpdatePost)
			r.Delete("/{id}", h.Admin.DeletePost)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", h.Admin.ListJobs)
			r.Post("/", h.Admin.CreateJob)
			r.Put("/{id}", h.Admin.UpdateJob)
			r.Delete("/{id}", h.Admin.DeleteJob)
		})

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", h.Admin.ListArticles)
			r.Post("/", h.Admin.CreateArticle)
			r.Put("/{slug}", h.Admin.UpdateArticle)
			r.Delete("/{slug}", h.Admin.DeleteArticle)
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Get("/", h.Admin.ListSubmissions)
			r.Put("/{id}/status", h.Admin.UpdateSubmissionStatus)
			r.Delete("/{id}", h.Admin.DeleteSubmission)
		})

		r.Route("/applications", func(r chi.Router) {
			r.Get("/", h.Admin.ListApplications)
			r.Put("/{id}/status", h.Admin.UpdateApplicationStatus)
			r.Delete("/{id}", h.Admin.DeleteApplication)
			r.Get("/{id}/cv", h.Admin.ApplicationCV)
		})

		r.Post("/media", h.Admin.UploadMedia)
		r.Delete("/media", h.Admin.DeleteMedia)
	})

	return r
}

// corsHandler allows the site's origins to call the API. Credentials are
// only allowed for an explicit origin list.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.CSRFHeaderName},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	})
}

func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}
