package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"eventpress/internal/models"
)

// ServiceStore manages the publishable service cards shown on the public
// site. Services are keyed by slug for upserts and admin edits, and carry
// a manual order_no rank that the move operation swaps pairwise.
type ServiceStore struct {
	db *sql.DB
}

// NewServiceStore returns a new ServiceStore.
func NewServiceStore(db *sql.DB) *ServiceStore {
	return &ServiceStore{db: db}
}

const serviceColumns = `id, slug, title, image_url, description, source_url, order_no, is_published, is_archived, keywords, created_at, updated_at`

// scanService scans a row into a Service struct.
func scanService(scanner interface{ Scan(...any) error }) (*models.Service, error) {
	var s models.Service
	var kw pq.StringArray
	err := scanner.Scan(
		&s.ID, &s.Slug, &s.Title, &s.ImageURL, &s.Description, &s.SourceURL,
		&s.OrderNo, &s.IsPublished, &s.IsArchived, &kw,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Keywords = []string(kw)
	return &s, nil
}

// Upsert creates or updates a service keyed by slug and returns the row.
func (s *ServiceStore) Upsert(svc *models.Service) (*models.Service, error) {
	row := s.db.QueryRow(`
		INSERT INTO services (slug, title, image_url, description, source_url, order_no, is_published, is_archived, keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			image_url = EXCLUDED.image_url,
			description = EXCLUDED.description,
			source_url = EXCLUDED.source_url,
			order_no = EXCLUDED.order_no,
			is_published = EXCLUDED.is_published,
			is_archived = EXCLUDED.is_archived,
			keywords = EXCLUDED.keywords,
			updated_at = NOW()
		RETURNING `+serviceColumns,
		svc.Slug, svc.Title, svc.ImageURL, svc.Description, svc.SourceURL,
		svc.OrderNo, svc.IsPublished, svc.IsArchived, keywordsArg(svc.Keywords),
	)
	result, err := scanService(row)
	if err != nil {
		return nil, fmt.Errorf("upsert service: %w", err)
	}
	return result, nil
}

// FindBySlug retrieves a service by slug. Returns nil if not found.
func (s *ServiceStore) FindBySlug(slug string) (*models.Service, error) {
	row := s.db.QueryRow(`SELECT `+serviceColumns+` FROM services WHERE slug = $1`, slug)
	svc, err := scanService(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find service by slug: %w", err)
	}
	return svc, nil
}

// FindByID retrieves a service by ID. Returns nil if not found.
func (s *ServiceStore) FindByID(id uuid.UUID) (*models.Service, error) {
	row := s.db.QueryRow(`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	svc, err := scanService(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find service by id: %w", err)
	}
	return svc, nil
}

// UpdateBySlug applies a partial update: only fields present in the
// ServiceUpdate are written, everything else keeps its value. Returns the
// updated row, or nil if no service matches the slug.
func (s *ServiceStore) UpdateBySlug(slug string, u *models.ServiceUpdate) (*models.Service, error) {
	set := []string{"updated_at = NOW()"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if u.Title != nil {
		set = append(set, "title = "+arg(*u.Title))
	}
	if u.ClearDescription {
		set = append(set, "description = NULL")
	} else if u.Description != nil {
		set = append(set, "description = "+arg(*u.Description))
	}
	if u.ClearImageURL {
		set = append(set, "image_url = NULL")
	} else if u.ImageURL != nil {
		set = append(set, "image_url = "+arg(*u.ImageURL))
	}
	if u.ClearSourceURL {
		set = append(set, "source_url = NULL")
	} else if u.SourceURL != nil {
		set = append(set, "source_url = "+arg(*u.SourceURL))
	}
	if u.ClearOrderNo {
		set = append(set, "order_no = NULL")
	} else if u.OrderNo != nil {
		set = append(set, "order_no = "+arg(*u.OrderNo))
	}
	if u.IsPublished != nil {
		set = append(set, "is_published = "+arg(*u.IsPublished))
	}
	if u.IsArchived != nil {
		set = append(set, "is_archived = "+arg(*u.IsArchived))
		// Archiving forces the service off the public site. Unarchiving
		// does NOT republish; that needs an explicit is_published update.
		if *u.IsArchived && u.IsPublished == nil {
			set = append(set, "is_published = FALSE")
		}
	}
	if u.ClearKeywords {
		set = append(set, "keywords = NULL")
	} else if u.Keywords != nil {
		set = append(set, "keywords = "+arg(pq.Array(u.Keywords)))
	}

	query := "UPDATE services SET " + joinSet(set) + " WHERE slug = " + arg(slug) +
		" RETURNING " + serviceColumns

	row := s.db.QueryRow(query, args...)
	svc, err := scanService(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update service by slug: %w", err)
	}
	return svc, nil
}

// joinSet joins SET clause fragments with commas.
func joinSet(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

// keywordsArg converts a keyword slice to a driver value; nil maps to NULL.
func keywordsArg(kw []string) any {
	if kw == nil {
		return nil
	}
	return pq.Array(kw)
}

// ListAdmin returns every service for the back-office listing: archived
// rows last, then by order_no (nulls last), ties broken newest-first.
func (s *ServiceStore) ListAdmin() ([]models.Service, error) {
	return s.list(`
		SELECT ` + serviceColumns + ` FROM services
		ORDER BY is_archived ASC, order_no ASC NULLS LAST, updated_at DESC`)
}

// ListPublished returns the services visible on the public site, ordered
// by order_no with ties broken newest-first.
func (s *ServiceStore) ListPublished() ([]models.Service, error) {
	return s.list(`
		SELECT ` + serviceColumns + ` FROM services
		WHERE is_published = TRUE AND is_archived = FALSE
		ORDER BY order_no ASC NULLS LAST, created_at DESC`)
}

func (s *ServiceStore) list(query string, args ...any) ([]models.Service, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var items []models.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		items = append(items, *svc)
	}
	return items, rows.Err()
}

// SetArchived toggles the archive flag. Archiving unpublishes; unarchiving
// leaves is_published false until the admin republishes explicitly.
func (s *ServiceStore) SetArchived(id uuid.UUID, archived bool) error {
	var err error
	if archived {
		_, err = s.db.Exec(`
			UPDATE services SET is_archived = TRUE, is_published = FALSE, updated_at = NOW()
			WHERE id = $1
		`, id)
	} else {
		_, err = s.db.Exec(`
			UPDATE services SET is_archived = FALSE, updated_at = NOW()
			WHERE id = $1
		`, id)
	}
	if err != nil {
		return fmt.Errorf("set service archived: %w", err)
	}
	return nil
}

// SetImageURL persists the public URL of an uploaded image on the service.
func (s *ServiceStore) SetImageURL(id uuid.UUID, url string) error {
	_, err := s.db.Exec(`
		UPDATE services SET image_url = $1, updated_at = NOW() WHERE id = $2
	`, url, id)
	if err != nil {
		return fmt.Errorf("set service image url: %w", err)
	}
	return nil
}

// Delete hard-deletes a service.
func (s *ServiceStore) Delete(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM services WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	return nil
}

// MoveDirection is the direction of a manual reorder.
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// Move swaps the order_no of the target service with its neighbor in the
// given direction. Archived rows are excluded from the ranking and are
// never selected as neighbors. Moving past either end of the list, or
// moving an unknown/archived id, is a silent no-op.
//
// Both writes happen inside one transaction with the candidate rows
// locked, so a concurrent move cannot interleave and produce a duplicate
// order_no pairing.
func (s *ServiceStore) Move(id uuid.UUID, dir MoveDirection) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		SELECT id, order_no FROM services
		WHERE is_archived = FALSE
		ORDER BY order_no ASC NULLS LAST, created_at DESC
		FOR UPDATE`)
	if err != nil {
		return fmt.Errorf("lock services for move: %w", err)
	}

	type rankedRow struct {
		id    uuid.UUID
		order int
	}
	var list []rankedRow
	for rows.Next() {
		var rowID uuid.UUID
		var orderNo *int
		if err := rows.Scan(&rowID, &orderNo); err != nil {
			rows.Close()
			return fmt.Errorf("scan service for move: %w", err)
		}
		// Null order_no falls back to a dense positional rank.
		effective := len(list) + 1
		if orderNo != nil {
			effective = *orderNo
		}
		list = append(list, rankedRow{id: rowID, order: effective})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	idx := -1
	for i, r := range list {
		if r.id == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	swapIdx := idx - 1
	if dir == MoveDown {
		swapIdx = idx + 1
	}
	if swapIdx < 0 || swapIdx >= len(list) {
		// Boundary move: not an error, just nothing to do.
		return nil
	}

	a, b := list[idx], list[swapIdx]
	if _, err := tx.Exec(`UPDATE services SET order_no = $1, updated_at = NOW() WHERE id = $2`, b.order, a.id); err != nil {
		return fmt.Errorf("move service %s: %w", a.id, err)
	}
	if _, err := tx.Exec(`UPDATE services SET order_no = $1, updated_at = NOW() WHERE id = $2`, a.order, b.id); err != nil {
		return fmt.Errorf("move service %s: %w", b.id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit move: %w", err)
	}
	return nil
}
