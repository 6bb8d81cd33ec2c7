package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups service packages for the public pricing pages.
// Archiving a category hides it from public views without touching its
// packages; packages keep their category_id until explicitly moved.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description"`
	OrderNo     int        `json:"order_no"`
	IsPublished bool       `json:"is_published"`
	ArchivedAt  *time.Time `json:"archived_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual field populated by catalog read methods.
	Packages []Package `json:"packages,omitempty"`
}

// IsArchived returns true if the category has been soft-deleted.
func (c *Category) IsArchived() bool {
	return c.ArchivedAt != nil
}
