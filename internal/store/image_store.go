package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vrsandeep/cropduster/internal/models"
)

const imageColumns = `id, content_type, object_id, size_set_id, path, width, height,
	attribution, attribution_link, caption, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanImage(row rowScanner) (*models.Image, error) {
	var img models.Image
	var sizeSetID sql.NullInt64
	err := row.Scan(&img.ID, &img.Parent.ContentType, &img.Parent.ObjectID, &sizeSetID,
		&img.Path, &img.Width, &img.Height, &img.Attribution, &img.AttributionLink,
		&img.Caption, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if sizeSetID.Valid {
		id := sizeSetID.Int64
		img.SizeSetID = &id
	}
	return &img, nil
}

// CreateImage inserts a new image and returns it with its ID set.
func (s *Store) CreateImage(img *models.Image) (*models.Image, error) {
	now := time.Now()
	res, err := s.db.Exec(`
		INSERT INTO images (content_type, object_id, size_set_id, path, width, height,
			attribution, attribution_link, caption, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		img.Parent.ContentType, img.Parent.ObjectID, img.SizeSetID, img.Path, img.Width, img.Height,
		img.Attribution, img.AttributionLink, img.Caption, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create image: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	created := *img
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

// GetImageByID retrieves a single image. It returns ErrNotFound on a miss.
func (s *Store) GetImageByID(id int64) (*models.Image, error) {
	row := s.db.QueryRow("SELECT "+imageColumns+" FROM images WHERE id = ?", id)
	img, err := scanImage(row)
	if err != nil {
		return nil, notFound(err)
	}
	return img, nil
}

// ListImagesByParent returns the images attached to a parent object in
// creation order.
func (s *Store) ListImagesByParent(parent models.ParentRef) ([]*models.Image, error) {
	rows, err := s.db.Query("SELECT "+imageColumns+" FROM images WHERE content_type = ? AND object_id = ? ORDER BY id ASC",
		parent.ContentType, parent.ObjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]*models.Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// UpdateImageDetails saves the parent reference and the editable metadata
// of an image.
func (s *Store) UpdateImageDetails(img *models.Image) error {
	res, err := s.db.Exec(`
		UPDATE images SET content_type = ?, object_id = ?, attribution = ?, attribution_link = ?,
			caption = ?, updated_at = ?
		WHERE id = ?`,
		img.Parent.ContentType, img.Parent.ObjectID, img.Attribution, img.AttributionLink,
		img.Caption, time.Now(), img.ID)
	if err != nil {
		return fmt.Errorf("failed to update image %d: %w", img.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListImageThumbs returns the thumbs attached to an image, ordered by ID.
func (s *Store) ListImageThumbs(imageID int64) ([]*models.Thumb, error) {
	return s.queryThumbs(`
		SELECT `+thumbColumns+`
		FROM thumbs t
		JOIN image_thumbs it ON it.thumb_id = t.id
		WHERE it.image_id = ?
		ORDER BY t.id ASC`, imageID)
}

// ListImageThumbsByWidth returns the thumbs attached to an image, widest
// first. Equal widths fall back to ID order.
func (s *Store) ListImageThumbsByWidth(imageID int64) ([]*models.Thumb, error) {
	return s.queryThumbs(`
		SELECT `+thumbColumns+`
		FROM thumbs t
		JOIN image_thumbs it ON it.thumb_id = t.id
		WHERE it.image_id = ?
		ORDER BY t.width DESC, t.id ASC`, imageID)
}

// SetImageThumbs replaces the thumbs attached to an image with thumbIDs.
// Only thumbs cropped from the image itself are attached; other IDs are
// ignored. It returns the IDs that ended up attached.
func (s *Store) SetImageThumbs(imageID int64, thumbIDs []int64) ([]int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM image_thumbs WHERE image_id = ?", imageID); err != nil {
		return nil, fmt.Errorf("failed to clear thumbs of image %d: %w", imageID, err)
	}

	attached := make([]int64, 0, len(thumbIDs))
	if len(thumbIDs) > 0 {
		placeholders, args := inClause(thumbIDs)
		args = append([]interface{}{imageID, imageID}, args...)
		_, err := tx.Exec(`
			INSERT OR IGNORE INTO image_thumbs (image_id, thumb_id)
			SELECT ?, id FROM thumbs WHERE image_id = ? AND id IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to attach thumbs to image %d: %w", imageID, err)
		}

		rows, err := tx.Query("SELECT thumb_id FROM image_thumbs WHERE image_id = ? ORDER BY thumb_id", imageID)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			attached = append(attached, id)
		}
		rows.Close()
	}

	return attached, tx.Commit()
}
