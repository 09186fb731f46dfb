package store

import (
	"fmt"

	"github.com/vrsandeep/cropduster/internal/models"
)

// GetSizeSetBySlug retrieves a size set and its sizes in position order.
// It returns ErrNotFound when no set has the slug.
func (s *Store) GetSizeSetBySlug(slug string) (*models.SizeSet, error) {
	var ss models.SizeSet
	err := s.db.QueryRow("SELECT id, name, slug FROM size_sets WHERE slug = ?", slug).Scan(&ss.ID, &ss.Name, &ss.Slug)
	if err != nil {
		return nil, notFound(err)
	}
	if ss.Sizes, err = s.listSizes(ss.ID); err != nil {
		return nil, err
	}
	return &ss, nil
}

// GetSizeSetByID retrieves a size set and its sizes in position order.
func (s *Store) GetSizeSetByID(id int64) (*models.SizeSet, error) {
	var ss models.SizeSet
	err := s.db.QueryRow("SELECT id, name, slug FROM size_sets WHERE id = ?", id).Scan(&ss.ID, &ss.Name, &ss.Slug)
	if err != nil {
		return nil, notFound(err)
	}
	if ss.Sizes, err = s.listSizes(ss.ID); err != nil {
		return nil, err
	}
	return &ss, nil
}

// ListSizeSets returns every size set without its sizes.
func (s *Store) ListSizeSets() ([]*models.SizeSet, error) {
	rows, err := s.db.Query("SELECT id, name, slug FROM size_sets ORDER BY slug ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sets := make([]*models.SizeSet, 0)
	for rows.Next() {
		var ss models.SizeSet
		if err := rows.Scan(&ss.ID, &ss.Name, &ss.Slug); err != nil {
			return nil, err
		}
		sets = append(sets, &ss)
	}
	return sets, rows.Err()
}

func (s *Store) listSizes(sizeSetID int64) ([]*models.Size, error) {
	rows, err := s.db.Query(`
		SELECT id, size_set_id, name, slug, width, height, min_width, min_height, aspect_ratio, position
		FROM sizes WHERE size_set_id = ?
		ORDER BY position ASC, id ASC`, sizeSetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sizes := make([]*models.Size, 0)
	for rows.Next() {
		var size models.Size
		if err := rows.Scan(&size.ID, &size.SizeSetID, &size.Name, &size.Slug, &size.Width, &size.Height,
			&size.MinWidth, &size.MinHeight, &size.AspectRatio, &size.Position); err != nil {
			return nil, err
		}
		sizes = append(sizes, &size)
	}
	return sizes, rows.Err()
}

// SaveSizeSet creates the size set identified by ss.Slug, or replaces the
// name and sizes of an existing one. The whole operation is one transaction.
func (s *Store) SaveSizeSet(ss *models.SizeSet) (*models.SizeSet, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO size_sets (name, slug) VALUES (?, ?)
		ON CONFLICT(slug) DO UPDATE SET name = excluded.name`, ss.Name, ss.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to save size set %q: %w", ss.Slug, err)
	}

	var id int64
	if err := tx.QueryRow("SELECT id FROM size_sets WHERE slug = ?", ss.Slug).Scan(&id); err != nil {
		return nil, err
	}
	if _, err := tx.Exec("DELETE FROM sizes WHERE size_set_id = ?", id); err != nil {
		return nil, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO sizes (size_set_id, name, slug, width, height, min_width, min_height, aspect_ratio, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for i, size := range ss.Sizes {
		if _, err := stmt.Exec(id, size.Name, size.Slug, size.Width, size.Height,
			size.MinWidth, size.MinHeight, size.AspectRatio, i); err != nil {
			return nil, fmt.Errorf("failed to save size %q: %w", size.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetSizeSetByID(id)
}
