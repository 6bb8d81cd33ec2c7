package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"eventpress/internal/models"
)

// PackageStore manages service packages and their ordered features.
// Features are a pure child of packages: every write that touches them
// replaces the full list, and they are never left behind when a package
// is deleted.
type PackageStore struct {
	db *sql.DB
}

// NewPackageStore returns a new PackageStore.
func NewPackageStore(db *sql.DB) *PackageStore {
	return &PackageStore{db: db}
}

const packageColumns = `id, category_id, title, subtitle, slug, price, currency, is_featured, is_published, order_no, archived_at, created_at, updated_at`

// scanPackage scans a row into a Package struct.
func scanPackage(scanner interface{ Scan(...any) error }) (*models.Package, error) {
	var p models.Package
	err := scanner.Scan(
		&p.ID, &p.CategoryID, &p.Title, &p.Subtitle, &p.Slug,
		&p.Price, &p.Currency, &p.IsFeatured, &p.IsPublished,
		&p.OrderNo, &p.ArchivedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Catalog is the full admin catalog payload: all categories, packages, and
// features, archived rows included. The admin console filters client-side.
type Catalog struct {
	Categories []models.Category `json:"cats"`
	Packages   []models.Package  `json:"packs"`
	Features   []models.Feature  `json:"feats"`
}

// ListAll returns the complete catalog ordered by order_no (ties broken by
// creation time). Features are ordered by their position within each package.
func (s *PackageStore) ListAll() (*Catalog, error) {
	cats, err := NewCategoryStore(s.db).List(true)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT ` + packageColumns + ` FROM service_packages ORDER BY order_no, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var packs []models.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		packs = append(packs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	feats, err := s.listFeatures(``)
	if err != nil {
		return nil, err
	}

	return &Catalog{Categories: cats, Packages: packs, Features: feats}, nil
}

// ListPublished returns non-archived, published packages ordered by
// order_no, with their features populated. Used by the public pages.
func (s *PackageStore) ListPublished() ([]models.Package, error) {
	rows, err := s.db.Query(`
		SELECT ` + packageColumns + ` FROM service_packages
		WHERE is_published = TRUE AND archived_at IS NULL
		ORDER BY order_no, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list published packages: %w", err)
	}
	defer rows.Close()

	var packs []models.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		packs = append(packs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	feats, err := s.listFeatures(``)
	if err != nil {
		return nil, err
	}

	byPackage := make(map[uuid.UUID][]models.Feature)
	for _, f := range feats {
		byPackage[f.PackageID] = append(byPackage[f.PackageID], f)
	}
	for i := range packs {
		packs[i].Features = byPackage[packs[i].ID]
	}
	return packs, nil
}

// listFeatures returns features ordered by order_no, optionally filtered
// by an extra WHERE clause.
func (s *PackageStore) listFeatures(where string, args ...any) ([]models.Feature, error) {
	query := `SELECT id, package_id, text, order_no FROM package_features`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY order_no`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	defer rows.Close()

	var feats []models.Feature
	for rows.Next() {
		var f models.Feature
		if err := rows.Scan(&f.ID, &f.PackageID, &f.Text, &f.OrderNo); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		feats = append(feats, f)
	}
	return feats, rows.Err()
}

// FeaturesByPackage returns the ordered feature list for one package.
func (s *PackageStore) FeaturesByPackage(packageID uuid.UUID) ([]models.Feature, error) {
	return s.listFeatures(`package_id = $1`, packageID)
}

// FindByID retrieves a package by ID. Returns nil if not found.
func (s *PackageStore) FindByID(id uuid.UUID) (*models.Package, error) {
	row := s.db.QueryRow(`SELECT `+packageColumns+` FROM service_packages WHERE id = $1`, id)
	p, err := scanPackage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find package by id: %w", err)
	}
	return p, nil
}

// cleanFeatureTexts drops blank and whitespace-only entries, preserving
// the order of the rest. The resulting positions become the features'
// order_no values (1-based).
func cleanFeatureTexts(texts []string) []string {
	var out []string
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}

// insertFeatures inserts one feature row per text, numbered by position.
func insertFeatures(tx *sql.Tx, packageID uuid.UUID, texts []string) error {
	for i, t := range texts {
		_, err := tx.Exec(`
			INSERT INTO package_features (package_id, text, order_no)
			VALUES ($1, $2, $3)
		`, packageID, t, i+1)
		if err != nil {
			return fmt.Errorf("insert feature %d: %w", i+1, err)
		}
	}
	return nil
}

// Create inserts a package and its feature list in one transaction.
// The array order of featureTexts is authoritative: each surviving entry
// gets order_no = position + 1.
func (s *PackageStore) Create(p *models.Package, featureTexts []string) (*models.Package, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		INSERT INTO service_packages (category_id, title, subtitle, slug, price, currency, is_featured, is_published, order_no)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+packageColumns,
		p.CategoryID, p.Title, p.Subtitle, p.Slug, p.Price, p.Currency,
		p.IsFeatured, p.IsPublished, p.OrderNo,
	)
	created, err := scanPackage(row)
	if err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}

	if err := insertFeatures(tx, created.ID, cleanFeatureTexts(featureTexts)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create package: %w", err)
	}
	return created, nil
}

// UpdateWithFeatures replaces every scalar field of the package and its
// entire feature list in a single transaction. The operation is
// all-or-nothing: a failure at any point leaves both the package row and
// its features untouched.
func (s *PackageStore) UpdateWithFeatures(p *models.Package, featureTexts []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE service_packages SET
			title = $1, subtitle = $2, slug = $3, price = $4, currency = $5,
			is_featured = $6, is_published = $7, order_no = $8, updated_at = NOW()
		WHERE id = $9
	`, p.Title, p.Subtitle, p.Slug, p.Price, p.Currency,
		p.IsFeatured, p.IsPublished, p.OrderNo, p.ID)
	if err != nil {
		return fmt.Errorf("update package: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.Exec(`DELETE FROM package_features WHERE package_id = $1`, p.ID); err != nil {
		return fmt.Errorf("delete old features: %w", err)
	}

	if err := insertFeatures(tx, p.ID, cleanFeatureTexts(featureTexts)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update package: %w", err)
	}
	return nil
}

// SetArchived toggles the archive state. Archiving forces the package off
// the public site (is_published = false); unarchiving force-republishes.
// This is deliberately stricter than the category rule, where unarchiving
// leaves the publish flag alone.
func (s *PackageStore) SetArchived(id uuid.UUID, archived bool) error {
	var err error
	if archived {
		_, err = s.db.Exec(`
			UPDATE service_packages
			SET archived_at = NOW(), is_published = FALSE, updated_at = NOW()
			WHERE id = $1
		`, id)
	} else {
		_, err = s.db.Exec(`
			UPDATE service_packages
			SET archived_at = NULL, is_published = TRUE, updated_at = NOW()
			WHERE id = $1
		`, id)
	}
	if err != nil {
		return fmt.Errorf("set package archived: %w", err)
	}
	return nil
}

// Delete hard-deletes a package and its features. Features go first so no
// orphan feature can exist even transiently; both deletes share one
// transaction.
func (s *PackageStore) Delete(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM package_features WHERE package_id = $1`, id); err != nil {
		return fmt.Errorf("delete package features: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM service_packages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete package: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete package: %w", err)
	}
	return nil
}
