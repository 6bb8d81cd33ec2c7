package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"eventpress/internal/models"
	"eventpress/internal/render"
	"eventpress/internal/store"
)

// Public serves the server-rendered marketing pages. Everything here is
// read-only and shows published, non-archived content only.
type Public struct {
	renderer      *render.Renderer
	serviceStore  *store.ServiceStore
	categoryStore *store.CategoryStore
	packageStore  *store.PackageStore
}

// NewPublic creates the public page handler group.
func NewPublic(renderer *render.Renderer, serviceStore *store.ServiceStore, categoryStore *store.CategoryStore, packageStore *store.PackageStore) *Public {
	return &Public{
		renderer:      renderer,
		serviceStore:  serviceStore,
		categoryStore: categoryStore,
		packageStore:  packageStore,
	}
}

// Pages are cheap to render, so they are served fresh with a short
// shared-cache window for proxies.
func setPageCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "public, max-age=60, must-revalidate")
}

type homeData struct {
	Services []models.Service
}

// Home renders the landing page with the published services.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	services, err := p.serviceStore.ListPublished()
	if err != nil {
		slog.Error("list published services failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	setPageCache(w)
	p.renderer.Page(w, "home", &render.PageData{
		Title: "Anasayfa",
		Data:  homeData{Services: services},
	})
}

// Services renders the full service listing.
func (p *Public) Services(w http.ResponseWriter, r *http.Request) {
	services, err := p.serviceStore.ListPublished()
	if err != nil {
		slog.Error("list published services failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	setPageCache(w)
	p.renderer.Page(w, "services", &render.PageData{
		Title: "Hizmetlerimiz",
		Data:  services,
	})
}

// Service renders a single service page. Unpublished and archived
// services 404 even when the slug exists.
func (p *Public) Service(w http.ResponseWriter, r *http.Request) {
	svc, err := p.serviceStore.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("find service failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if svc == nil || !svc.IsVisible() {
		http.NotFound(w, r)
		return
	}
	setPageCache(w)
	p.renderer.Page(w, "service", &render.PageData{
		Title: svc.Title,
		Data:  svc,
	})
}

// Packages renders every published category with its published packages.
func (p *Public) Packages(w http.ResponseWriter, r *http.Request) {
	cats, err := p.publishedCatalog()
	if err != nil {
		slog.Error("load catalog failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	setPageCache(w)
	p.renderer.Page(w, "packages", &render.PageData{
		Title: "Paketlerimiz",
		Data:  cats,
	})
}

// Category renders one category with its published packages. Archived and
// unpublished categories 404.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	cat, err := p.categoryStore.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("find category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if cat == nil || !cat.IsPublished || cat.IsArchived() {
		http.NotFound(w, r)
		return
	}

	packs, err := p.packageStore.ListPublished()
	if err != nil {
		slog.Error("list published packages failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	for _, pk := range packs {
		if pk.CategoryID == cat.ID {
			cat.Packages = append(cat.Packages, pk)
		}
	}

	setPageCache(w)
	p.renderer.Page(w, "category", &render.PageData{
		Title: cat.Title,
		Data:  cat,
	})
}

// publishedCatalog joins published categories with their published
// packages, keeping the category ordering from the store.
func (p *Public) publishedCatalog() ([]models.Category, error) {
	cats, err := p.categoryStore.List(false)
	if err != nil {
		return nil, err
	}
	packs, err := p.packageStore.ListPublished()
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID][]models.Package)
	for _, pk := range packs {
		byCategory[pk.CategoryID] = append(byCategory[pk.CategoryID], pk)
	}

	var out []models.Category
	for _, c := range cats {
		if !c.IsPublished {
			continue
		}
		c.Packages = byCategory[c.ID]
		out = append(out, c)
	}
	return out, nil
}
