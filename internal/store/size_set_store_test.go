package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/cropduster/internal/models"
	"github.com/vrsandeep/cropduster/internal/store"
	"github.com/vrsandeep/cropduster/internal/testutil"
)

func TestSizeSetStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	t.Run("Save and get by slug", func(t *testing.T) {
		ss := testutil.CreateSizeSet(t, s, "article",
			&models.Size{Name: "Large", Slug: "large", Width: 1600, Height: 900},
			&models.Size{Name: "Square", Slug: "square", AspectRatio: 1, MinWidth: 300},
		)
		assert.Len(t, ss.Sizes, 2)

		got, err := s.GetSizeSetBySlug("article")
		require.NoError(t, err)
		require.Len(t, got.Sizes, 2)
		assert.Equal(t, "large", got.Sizes[0].Slug)
		assert.Equal(t, 1, got.Sizes[1].Position)
		assert.Equal(t, 300, got.Sizes[1].MinWidth)
	})

	t.Run("Saving again replaces the sizes", func(t *testing.T) {
		ss, err := s.SaveSizeSet(&models.SizeSet{Name: "Article", Slug: "article", Sizes: []*models.Size{
			{Name: "Thumb", Slug: "thumb", Width: 100, Height: 100},
		}})
		require.NoError(t, err)
		assert.Equal(t, "Article", ss.Name)
		require.Len(t, ss.Sizes, 1)
		assert.Equal(t, "thumb", ss.Sizes[0].Slug)

		sets, err := s.ListSizeSets()
		require.NoError(t, err)
		assert.Len(t, sets, 1)
	})

	t.Run("Unknown slug", func(t *testing.T) {
		_, err := s.GetSizeSetBySlug("nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
