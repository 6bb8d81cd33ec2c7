package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"eventpress/internal/models"
	"eventpress/internal/slug"
	"eventpress/internal/store"
)

type serviceUpsertRequest struct {
	Slug        string   `json:"slug" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	ImageURL    *string  `json:"image_url"`
	Description *string  `json:"description"`
	SourceURL   *string  `json:"source_url"`
	OrderNo     *int     `json:"order_no"`
	IsPublished *bool    `json:"is_published"`
	IsArchived  bool     `json:"is_archived"`
	Keywords    []string `json:"keywords"`
}

type serviceMoveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// ServicesList returns every service for the back-office table, archived
// rows sorted last.
func (a *Admin) ServicesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.serviceStore.ListAdmin()
	if err != nil {
		slog.Error("list services failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []models.Service{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// ServiceUpsert creates a service or overwrites the one with the same slug.
func (a *Admin) ServiceUpsert(w http.ResponseWriter, r *http.Request) {
	var req serviceUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	// A fresh upsert without explicit flags is live: published, ranked
	// after every manually ordered row.
	orderNo := req.OrderNo
	if orderNo == nil {
		def := models.DefaultServiceOrder
		orderNo = &def
	}

	svc := &models.Service{
		Slug:        slug.Generate(req.Slug),
		Title:       strings.TrimSpace(req.Title),
		ImageURL:    req.ImageURL,
		Description: req.Description,
		SourceURL:   req.SourceURL,
		OrderNo:     orderNo,
		IsPublished: boolOr(req.IsPublished, true),
		IsArchived:  req.IsArchived,
		Keywords:    cleanKeywords(req.Keywords),
	}
	if svc.Slug == "" || svc.Title == "" {
		writeError(w, http.StatusBadRequest, "slug and title are required")
		return
	}

	saved, err := a.serviceStore.Upsert(svc)
	if err != nil {
		slog.Error("upsert service failed", "slug", svc.Slug, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": saved.ID, "slug": saved.Slug})
}

// ServiceGet returns a single service by slug for the edit form.
func (a *Admin) ServiceGet(w http.ResponseWriter, r *http.Request) {
	svc := a.serviceBySlug(w, r)
	if svc == nil {
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// ServicePatch applies a partial update to the service with the given
// slug. Absent fields stay untouched; an explicit JSON null clears the
// column.
func (a *Admin) ServicePatch(w http.ResponseWriter, r *http.Request) {
	update, err := parseServiceUpdate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if update.Empty() {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	svc, err := a.serviceStore.UpdateBySlug(chi.URLParam(r, "slug"), update)
	if err != nil {
		slog.Error("update service failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if svc == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// serviceBySlug resolves the {slug} route parameter to a service row,
// writing the error response itself when the lookup fails.
func (a *Admin) serviceBySlug(w http.ResponseWriter, r *http.Request) *models.Service {
	svc, err := a.serviceStore.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("find service failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil
	}
	if svc == nil {
		writeError(w, http.StatusNotFound, "not found")
		return nil
	}
	return svc
}

// ServiceArchive toggles the archive flag. Archiving always unpublishes;
// unarchiving leaves the service unpublished until republished explicitly.
func (a *Admin) ServiceArchive(w http.ResponseWriter, r *http.Request) {
	svc := a.serviceBySlug(w, r)
	if svc == nil {
		return
	}

	var req archiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if err := a.serviceStore.SetArchived(svc.ID, *req.Archived); err != nil {
		slog.Error("archive service failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ServiceMove swaps the service one position up or down in the manual
// order. Boundary moves are accepted and do nothing.
func (a *Admin) ServiceMove(w http.ResponseWriter, r *http.Request) {
	svc := a.serviceBySlug(w, r)
	if svc == nil {
		return
	}

	var req serviceMoveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if err := a.serviceStore.Move(svc.ID, store.MoveDirection(req.Direction)); err != nil {
		slog.Error("move service failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ServiceDelete hard-deletes a service row.
func (a *Admin) ServiceDelete(w http.ResponseWriter, r *http.Request) {
	svc := a.serviceBySlug(w, r)
	if svc == nil {
		return
	}

	if err := a.serviceStore.Delete(svc.ID); err != nil {
		slog.Error("delete service failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// parseServiceUpdate reads a PATCH body into a ServiceUpdate. It decodes
// into raw messages first so that an absent key can be told apart from an
// explicit null. Unknown keys are rejected.
func parseServiceUpdate(r *http.Request) (*models.ServiceUpdate, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid body")
	}

	u := &models.ServiceUpdate{}
	for key, val := range raw {
		isNull := string(val) == "null"
		switch key {
		case "title":
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return nil, fmt.Errorf("title must be a string")
			}
			// A blank title never overwrites the stored one.
			if t := strings.TrimSpace(s); t != "" {
				u.Title = &t
			}
		case "description":
			if isNull {
				u.ClearDescription = true
				continue
			}
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return nil, fmt.Errorf("description must be a string")
			}
			u.Description = &s
		case "image_url":
			if isNull {
				u.ClearImageURL = true
				continue
			}
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return nil, fmt.Errorf("image_url must be a string")
			}
			u.ImageURL = &s
		case "source_url":
			if isNull {
				u.ClearSourceURL = true
				continue
			}
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return nil, fmt.Errorf("source_url must be a string")
			}
			u.SourceURL = &s
		case "order_no":
			if isNull {
				u.ClearOrderNo = true
				continue
			}
			var n int
			if err := json.Unmarshal(val, &n); err != nil {
				return nil, fmt.Errorf("order_no must be a number")
			}
			u.OrderNo = &n
		case "is_published":
			if isNull {
				continue
			}
			var b bool
			if err := json.Unmarshal(val, &b); err != nil {
				return nil, fmt.Errorf("is_published must be a boolean")
			}
			u.IsPublished = &b
		case "is_archived":
			if isNull {
				continue
			}
			var b bool
			if err := json.Unmarshal(val, &b); err != nil {
				return nil, fmt.Errorf("is_archived must be a boolean")
			}
			u.IsArchived = &b
		case "keywords":
			if isNull {
				u.ClearKeywords = true
				continue
			}
			var kw []string
			if err := json.Unmarshal(val, &kw); err != nil {
				return nil, fmt.Errorf("keywords must be a list of strings")
			}
			u.Keywords = cleanKeywords(kw)
			if u.Keywords == nil {
				u.ClearKeywords = true
			}
		default:
			return nil, fmt.Errorf("unknown field: %s", key)
		}
	}
	return u, nil
}

// cleanKeywords trims every keyword and drops the blank ones. An empty
// result collapses to nil so the column stores NULL, not an empty array.
func cleanKeywords(kw []string) []string {
	var out []string
	for _, k := range kw {
		if t := strings.TrimSpace(k); t != "" {
			out = append(out, t)
		}
	}
	return out
}
