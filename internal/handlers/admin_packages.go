package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"eventpress/internal/models"
)

type packageCreateRequest struct {
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Subtitle    *string   `json:"subtitle"`
	Slug        *string   `json:"slug"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	IsFeatured  bool      `json:"is_featured"`
	OrderNo     int       `json:"order_no"`
	IsPublished *bool     `json:"is_published"`
	Features    []string  `json:"features"`
}

type packageUpdateRequest struct {
	Title       string   `json:"title" validate:"required"`
	Subtitle    *string  `json:"subtitle"`
	Slug        *string  `json:"slug"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	IsFeatured  bool     `json:"is_featured"`
	OrderNo     int      `json:"order_no"`
	IsPublished *bool    `json:"is_published"`
	Features    []string `json:"features"`
}

// CatalogList returns the full catalog (categories, packages, and
// features) in one payload, archived rows included.
func (a *Admin) CatalogList(w http.ResponseWriter, r *http.Request) {
	catalog, err := a.packageStore.ListAll()
	if err != nil {
		slog.Error("list catalog failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

// PackageCreate inserts a package and its feature list. The submitted
// feature array order is authoritative; blank entries are dropped.
func (a *Admin) PackageCreate(w http.ResponseWriter, r *http.Request) {
	var req packageCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	p := &models.Package{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Slug:        packageSlug(req.Slug),
		Price:       req.Price,
		Currency:    currencyOr(req.Currency),
		IsFeatured:  req.IsFeatured,
		OrderNo:     req.OrderNo,
		IsPublished: boolOr(req.IsPublished, true),
	}

	created, err := a.packageStore.Create(p, req.Features)
	if err != nil {
		slog.Error("create package failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": created.ID})
}

// PackageUpdate replaces every scalar field of a package and its entire
// feature list atomically: either everything is committed or nothing is.
func (a *Admin) PackageUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req packageUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	p := &models.Package{
		ID:          id,
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Slug:        packageSlug(req.Slug),
		Price:       req.Price,
		Currency:    currencyOr(req.Currency),
		IsFeatured:  req.IsFeatured,
		OrderNo:     req.OrderNo,
		IsPublished: boolOr(req.IsPublished, true),
	}

	err = a.packageStore.UpdateWithFeatures(p, req.Features)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		slog.Error("update package failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// PackageArchive toggles the archive state. Archiving drops the package
// from publication; unarchiving force-republishes (unlike categories).
func (a *Admin) PackageArchive(w http.ResponseWriter, r *http.Request) {
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

	if err := a.packageStore.SetArchived(id, *req.Archived); err != nil {
		slog.Error("archive package failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// PackageDelete hard-deletes a package together with its features.
func (a *Admin) PackageDelete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := a.packageStore.Delete(id); err != nil {
		slog.Error("delete package failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// packageSlug normalizes an optional package slug.
func packageSlug(s *string) *string {
	if s == nil {
		return nil
	}
	normalized := normalizeSlug(*s)
	if normalized == "" {
		return nil
	}
	return &normalized
}

// currencyOr defaults a blank currency to TRY.
func currencyOr(c string) string {
	if c == "" {
		return models.DefaultCurrency
	}
	return c
}
