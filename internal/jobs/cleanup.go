package jobs

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/vrsandeep/cropduster/internal/models"
	"github.com/vrsandeep/cropduster/internal/store"
)

// ThumbCleanupJobID identifies the temporary thumbnail cleanup job.
const ThumbCleanupJobID = "thumb-cleanup"

// RunThumbCleanup deletes thumbs that were cropped but never attached to an
// image by a saved form, together with their temporary files, once they are
// older than the configured maximum age.
func RunThumbCleanup(ctx JobContext) error {
	maxAge := time.Duration(ctx.Config().Cleanup.MaxAge) * time.Hour
	st := store.New(ctx.DB())

	stale, err := st.ListStaleTempThumbs(time.Now().Add(-maxAge))
	if err != nil {
		return fmt.Errorf("failed to list stale thumbs: %w", err)
	}

	removed := 0
	for _, thumb := range stale {
		img, err := st.GetImageByID(thumb.ImageID)
		switch {
		case err == nil:
			if err := removeThumbFiles(ctx, img, thumb.Name); err != nil {
				log.Printf("Failed to remove files of thumb %d: %v", thumb.ID, err)
				continue
			}
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		if err := st.DeleteThumb(thumb.ID); err != nil {
			return fmt.Errorf("failed to delete thumb %d: %w", thumb.ID, err)
		}
		removed++
	}

	log.Printf("Thumbnail cleanup removed %d of %d stale thumbs.", removed, len(stale))
	return nil
}

// removeThumbFiles deletes both the temporary and the final file of a
// detached thumb. Either may be missing.
func removeThumbFiles(ctx JobContext, img *models.Image, name string) error {
	for _, tmp := range []bool{true, false} {
		if err := ctx.Media().Remove(img.ThumbPath(name, tmp)); err != nil {
			return err
		}
	}
	return nil
}
