package store

import (
	"fmt"
	"time"

	"github.com/vrsandeep/cropduster/internal/models"
)

const thumbColumns = `t.id, t.image_id, t.name, t.width, t.height, t.crop_x, t.crop_y, t.crop_w, t.crop_h,
	t.created_at, (SELECT COUNT(*) FROM image_thumbs x WHERE x.thumb_id = t.id)`

func scanThumb(row rowScanner) (*models.Thumb, error) {
	var t models.Thumb
	err := row.Scan(&t.ID, &t.ImageID, &t.Name, &t.Width, &t.Height,
		&t.CropX, &t.CropY, &t.CropW, &t.CropH, &t.CreatedAt, &t.ImageCount)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) queryThumbs(query string, args ...interface{}) ([]*models.Thumb, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	thumbs := make([]*models.Thumb, 0)
	for rows.Next() {
		t, err := scanThumb(rows)
		if err != nil {
			return nil, err
		}
		thumbs = append(thumbs, t)
	}
	return thumbs, rows.Err()
}

// GetThumbByID retrieves a single thumb together with the number of images
// it is attached to. It returns ErrNotFound on a miss.
func (s *Store) GetThumbByID(id int64) (*models.Thumb, error) {
	row := s.db.QueryRow("SELECT "+thumbColumns+" FROM thumbs t WHERE t.id = ?", id)
	t, err := scanThumb(row)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// ListThumbsByIDs returns the thumbs with the given IDs that were cropped
// from ownerID, ordered by ID. A zero ownerID owns nothing.
func (s *Store) ListThumbsByIDs(ids []int64, ownerID int64) ([]*models.Thumb, error) {
	if len(ids) == 0 || ownerID == 0 {
		return make([]*models.Thumb, 0), nil
	}
	placeholders, args := inClause(ids)
	args = append(args, ownerID)
	return s.queryThumbs("SELECT "+thumbColumns+" FROM thumbs t WHERE t.id IN ("+placeholders+") AND t.image_id = ? ORDER BY t.id ASC", args...)
}

// SaveCrop creates or updates the thumb called thumb.Name for its image and
// detaches it from every image, so it is temporary until a form attaches it
// again.
func (s *Store) SaveCrop(thumb *models.Thumb) (*models.Thumb, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO thumbs (image_id, name, width, height, crop_x, crop_y, crop_w, crop_h, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(image_id, name) DO UPDATE SET
			width = excluded.width,
			height = excluded.height,
			crop_x = excluded.crop_x,
			crop_y = excluded.crop_y,
			crop_w = excluded.crop_w,
			crop_h = excluded.crop_h,
			created_at = excluded.created_at`,
		thumb.ImageID, thumb.Name, thumb.Width, thumb.Height,
		thumb.CropX, thumb.CropY, thumb.CropW, thumb.CropH, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to save thumb %q: %w", thumb.Name, err)
	}

	var id int64
	if err := tx.QueryRow("SELECT id FROM thumbs WHERE image_id = ? AND name = ?", thumb.ImageID, thumb.Name).Scan(&id); err != nil {
		return nil, err
	}
	if _, err := tx.Exec("DELETE FROM image_thumbs WHERE thumb_id = ?", id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetThumbByID(id)
}

// ListStaleTempThumbs returns thumbs that are attached to no image and were
// created before cutoff.
func (s *Store) ListStaleTempThumbs(cutoff time.Time) ([]*models.Thumb, error) {
	return s.queryThumbs(`
		SELECT `+thumbColumns+`
		FROM thumbs t
		WHERE t.created_at < ?
		AND NOT EXISTS (SELECT 1 FROM image_thumbs x WHERE x.thumb_id = t.id)
		ORDER BY t.id ASC`, cutoff)
}

// DeleteThumb removes a thumb row.
func (s *Store) DeleteThumb(id int64) error {
	_, err := s.db.Exec("DELETE FROM thumbs WHERE id = ?", id)
	return err
}
