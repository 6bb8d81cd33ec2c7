// Package router wires the HTTP routes: public pages at the root, the
// auth endpoints, and the admin JSON API behind the session gate.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"eventpress/internal/handlers"
	"eventpress/internal/middleware"
	"eventpress/internal/session"
)

// Deps carries everything the router needs. The rate limiter guards the
// login endpoint only; the public pages and the session-gated admin API
// are not throttled.
type Deps struct {
	Sessions     *session.Store
	Auth         *handlers.Auth
	Admin        *handlers.Admin
	Public       *handlers.Public
	LoginLimiter *middleware.RateLimiter
}

// New builds the chi router with all routes mounted.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.LoadSession(d.Sessions))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth. The limiter slows credential guessing; logout is harmless
	// and stays open.
	r.Group(func(r chi.Router) {
		r.Use(d.LoginLimiter.Middleware)
		r.Post("/auth/login", d.Auth.Login)
	})
	r.Post("/logout", d.Auth.Logout)

	// Admin JSON API. Every route requires an admin session; the gate
	// answers a uniform 401 so callers cannot probe why they were
	// rejected.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", d.Admin.CategoriesList)
			r.Post("/", d.Admin.CategoryCreate)
			r.Put("/{id}", d.Admin.CategoryUpdate)
			r.Patch("/{id}", d.Admin.CategoryArchive)
			r.Delete("/{id}", d.Admin.CategoryDelete)
		})

		r.Route("/packages", func(r chi.Router) {
			r.Get("/", d.Admin.CatalogList)
			r.Post("/", d.Admin.PackageCreate)
			r.Put("/{id}", d.Admin.PackageUpdate)
			r.Patch("/{id}", d.Admin.PackageArchive)
			r.Delete("/{id}", d.Admin.PackageDelete)
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/list", d.Admin.ServicesList)
			r.Post("/upsert", d.Admin.ServiceUpsert)
			r.Post("/upload", d.Admin.ServiceUpload)
			r.Get("/{slug}", d.Admin.ServiceGet)
			r.Patch("/{slug}", d.Admin.ServicePatch)
			r.Post("/{slug}/archive", d.Admin.ServiceArchive)
			r.Post("/{slug}/move", d.Admin.ServiceMove)
			r.Delete("/{slug}", d.Admin.ServiceDelete)
		})
	})

	// Public pages.
	r.Get("/", d.Public.Home)
	r.Get("/hizmetlerimiz", d.Public.Services)
	r.Get("/hizmet/{slug}", d.Public.Service)
	r.Get("/paketler", d.Public.Packages)
	r.Get("/paketler/{slug}", d.Public.Category)

	return r
}

// DefaultLoginLimiter returns the limiter used for /auth/login: ten
// attempts per client IP per minute.
func DefaultLoginLimiter() *middleware.RateLimiter {
	return middleware.NewRateLimiter(10, time.Minute)
}
