package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"eventpress/internal/models"
	"eventpress/internal/slug"
	"eventpress/internal/storage"
	"eventpress/internal/store"
)

// Admin groups the back-office JSON API handlers. Every route in this
// group sits behind the session gate; handlers are thin orchestration
// over the stores and always let the console refetch after a write.
type Admin struct {
	categoryStore *store.CategoryStore
	packageStore  *store.PackageStore
	serviceStore  *store.ServiceStore
	storageClient *storage.Client
}

// NewAdmin creates a new Admin handler group. storageClient may be nil if
// S3 is not configured; the upload endpoint then reports 503.
func NewAdmin(categoryStore *store.CategoryStore, packageStore *store.PackageStore, serviceStore *store.ServiceStore, storageClient *storage.Client) *Admin {
	return &Admin{
		categoryStore: categoryStore,
		packageStore:  packageStore,
		serviceStore:  serviceStore,
		storageClient: storageClient,
	}
}

// urlID parses the {id} route parameter as a UUID.
func urlID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

type categoryRequest struct {
	Title       string  `json:"title" validate:"required"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	OrderNo     int     `json:"order_no"`
	IsPublished *bool   `json:"is_published"`
}

// archiveRequest toggles the soft-delete state of an entity.
type archiveRequest struct {
	Archived *bool `json:"archived" validate:"required"`
}

// CategoriesList returns all categories ordered by order_no, archived
// included; the console filters them behind its "show archived" toggle.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.categoryStore.List(true)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// CategoryCreate inserts a new category. Title is required; slug may be
// blank and is normalized when present.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	c := &models.Category{
		Title:       req.Title,
		Slug:        normalizeSlug(req.Slug),
		Description: req.Description,
		OrderNo:     req.OrderNo,
		IsPublished: boolOr(req.IsPublished, true),
	}

	created, err := a.categoryStore.Create(c)
	if err != nil {
		slog.Error("create category failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": created.ID})
}

// CategoryUpdate replaces the editable fields of a category. Archive
// state is handled by CategoryArchive, never here.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	existing, err := a.categoryStore.FindByID(id)
	if err != nil {
		slog.Error("find category failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	existing.Title = req.Title
	existing.Slug = normalizeSlug(req.Slug)
	existing.Description = req.Description
	existing.OrderNo = req.OrderNo
	existing.IsPublished = boolOr(req.IsPublished, true)

	if err := a.categoryStore.Update(existing); err != nil {
		slog.Error("update category failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// CategoryArchive toggles archived_at. Category archive does not force
// the publish flag either way; the archive filter alone hides it.
func (a *Admin) CategoryArchive(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req archiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if err := a.categoryStore.SetArchived(id, *req.Archived); err != nil {
		slog.Error("archive category failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// CategoryDelete hard-deletes a category. Deletion is refused with 409
// while packages still reference it, so no dangling category_id can be
// left behind.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	err = a.categoryStore.Delete(id)
	if errors.Is(err, store.ErrCategoryInUse) {
		writeError(w, http.StatusConflict, "kategori silinemedi: pakete sahip")
		return
	}
	if err != nil {
		slog.Error("delete category failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// normalizeSlug lowercases and transliterates a submitted slug, leaving
// blanks blank (categories and packages may omit the slug).
func normalizeSlug(s string) string {
	if s == "" {
		return ""
	}
	return slug.Generate(s)
}

// boolOr returns the pointed-to value, or fallback when nil.
func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}
