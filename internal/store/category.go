package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"eventpress/internal/models"
)

// ErrCategoryInUse is returned when deleting a category that still has
// packages referencing it. Hard delete is only allowed once the packages
// have been deleted or moved, so no package can be left with a dangling
// category reference.
var ErrCategoryInUse = errors.New("category has packages")

// CategoryStore manages service categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, title, slug, description, order_no, is_published, archived_at, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description, &c.OrderNo,
		&c.IsPublished, &c.ArchivedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by order_no. Ties are broken by
// creation time so the ordering is stable; order_no is not unique.
// When includeArchived is false, archived rows are filtered out (the
// public-facing rule).
func (s *CategoryStore) List(includeArchived bool) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM service_categories`
	if !includeArchived {
		query += ` WHERE archived_at IS NULL`
	}
	query += ` ORDER BY order_no, created_at`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM service_categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM service_categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		INSERT INTO service_categories (title, slug, description, order_no, is_published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		c.Title, c.Slug, c.Description, c.OrderNo, c.IsPublished,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update replaces the editable fields of a category. The archived state is
// managed exclusively by SetArchived, never by a general update.
func (s *CategoryStore) Update(c *models.Category) error {
	_, err := s.db.Exec(`
		UPDATE service_categories SET
			title = $1, slug = $2, description = $3, order_no = $4,
			is_published = $5, updated_at = NOW()
		WHERE id = $6
	`, c.Title, c.Slug, c.Description, c.OrderNo, c.IsPublished, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// SetArchived sets or clears archived_at. Unlike packages, archiving a
// category does not touch is_published: archived rows are hidden from
// public reads by the archive filter alone, and unarchiving restores the
// category with whatever publish state it had.
func (s *CategoryStore) SetArchived(id uuid.UUID, archived bool) error {
	var err error
	if archived {
		_, err = s.db.Exec(`
			UPDATE service_categories SET archived_at = NOW(), updated_at = NOW() WHERE id = $1
		`, id)
	} else {
		_, err = s.db.Exec(`
			UPDATE service_categories SET archived_at = NULL, updated_at = NOW() WHERE id = $1
		`, id)
	}
	if err != nil {
		return fmt.Errorf("set category archived: %w", err)
	}
	return nil
}

// PackageCount returns the number of packages referencing the category.
func (s *CategoryStore) PackageCount(id uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM service_packages WHERE category_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count category packages: %w", err)
	}
	return count, nil
}

// Delete hard-deletes a category. Returns ErrCategoryInUse while packages
// still reference it.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	count, err := s.PackageCount(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if _, err := s.db.Exec(`DELETE FROM service_categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
