// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCurrency is the currency assigned to packages created without one.
const DefaultCurrency = "TRY"

// Package is a priced offering inside a category (e.g. a wedding package).
// It owns an ordered list of features that is replaced wholesale on every
// update rather than diffed.
type Package struct {
	ID          uuid.UUID  `json:"id"`
	CategoryID  uuid.UUID  `json:"category_id"`
	Title       string     `json:"title"`
	Subtitle    *string    `json:"subtitle"`
	Slug        *string    `json:"slug"`
	Price       float64    `json:"price"`
	Currency    string     `json:"currency"`
	IsFeatured  bool       `json:"is_featured"`
	IsPublished bool       `json:"is_published"`
	OrderNo     int        `json:"order_no"`
	ArchivedAt  *time.Time `json:"archived_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual field populated by catalog read methods.
	Features []Feature `json:"features,omitempty"`
}

// IsArchived returns true if the package has been soft-deleted.
func (p *Package) IsArchived() bool {
	return p.ArchivedAt != nil
}

// Feature is a single bullet line belonging to a package. Features only
// exist as children of a package; order_no is the 1-based position in the
// list the admin submitted.
type Feature struct {
	ID        uuid.UUID `json:"id"`
	PackageID uuid.UUID `json:"package_id"`
	Text      string    `json:"text"`
	OrderNo   int       `json:"order_no"`
}
