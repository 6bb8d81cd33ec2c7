package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultServiceOrder is the order_no assigned to services created without
// an explicit rank, placing them after manually ordered rows.
const DefaultServiceOrder = 1000

// Service is a publishable content card on the public site (e.g. "Düğün").
// Each service has exactly one image, stored in the object bucket with its
// public URL persisted on the row. Services are independent of the
// category/package catalog and are addressed by slug.
type Service struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	ImageURL    *string   `json:"image_url"`
	Description *string   `json:"description"`
	SourceURL   *string   `json:"source_url"`
	OrderNo     *int      `json:"order_no"`
	IsPublished bool      `json:"is_published"`
	IsArchived  bool      `json:"is_archived"`
	Keywords    []string  `json:"keywords"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsVisible returns true if the service should appear on public pages.
func (s *Service) IsVisible() bool {
	return s.IsPublished && !s.IsArchived
}

// EffectiveOrder returns the service's rank, falling back to the given
// position-based rank when order_no is null.
func (s *Service) EffectiveOrder(fallback int) int {
	if s.OrderNo != nil {
		return *s.OrderNo
	}
	return fallback
}

// ServiceUpdate carries a partial update for a service. Nil fields are
// left untouched. The Clear flags distinguish "set the column to null"
// from "don't change it", mirroring the null/absent distinction of the
// JSON PATCH body.
type ServiceUpdate struct {
	Title            *string
	Description      *string
	ClearDescription bool
	ImageURL         *string
	ClearImageURL    bool
	SourceURL        *string
	ClearSourceURL   bool
	OrderNo          *int
	ClearOrderNo     bool
	IsPublished      *bool
	IsArchived       *bool
	Keywords         []string
	ClearKeywords    bool
}

// Empty returns true if the update would change nothing.
func (u *ServiceUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && !u.ClearDescription &&
		u.ImageURL == nil && !u.ClearImageURL &&
		u.SourceURL == nil && !u.ClearSourceURL &&
		u.OrderNo == nil && !u.ClearOrderNo &&
		u.IsPublished == nil && u.IsArchived == nil &&
		u.Keywords == nil && !u.ClearKeywords
}
