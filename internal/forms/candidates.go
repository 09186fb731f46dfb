package forms

import (
	"fmt"

	"github.com/vrsandeep/cropduster/internal/models"
)

// CandidateKind says where the selectable thumbs of a row come from.
type CandidateKind int

const (
	// CandidatesEmpty offers nothing: a new image row.
	CandidatesEmpty CandidateKind = iota
	// CandidatesDatabase offers the thumbs attached to the row's image.
	CandidatesDatabase
	// CandidatesExplicit offers the thumbs named in the submitted data.
	CandidatesExplicit
)

// CandidateSet is the per-row scope of the thumbs field, fixed when the
// row is constructed.
type CandidateSet struct {
	Kind CandidateKind
	// ImageID is the row's image for CandidatesDatabase and the image the
	// thumbs must have been cropped from for CandidatesExplicit.
	ImageID int64
	IDs     []int64
}

// EmptyCandidates offers no thumbs.
func EmptyCandidates() CandidateSet {
	return CandidateSet{Kind: CandidatesEmpty}
}

// DatabaseCandidates offers the thumbs currently attached to an image.
func DatabaseCandidates(imageID int64) CandidateSet {
	return CandidateSet{Kind: CandidatesDatabase, ImageID: imageID}
}

// ExplicitCandidates offers exactly the thumbs with the given IDs that
// belong to ownerID.
func ExplicitCandidates(ownerID int64, ids []int64) CandidateSet {
	return CandidateSet{Kind: CandidatesExplicit, ImageID: ownerID, IDs: ids}
}

// Thumbs resolves the set against the store, ordered by ID.
func (c CandidateSet) Thumbs(st CandidateStore) ([]*models.Thumb, error) {
	switch c.Kind {
	case CandidatesEmpty:
		return make([]*models.Thumb, 0), nil
	case CandidatesDatabase:
		return st.ListImageThumbs(c.ImageID)
	case CandidatesExplicit:
		return st.ListThumbsByIDs(c.IDs, c.ImageID)
	}
	return nil, fmt.Errorf("unknown candidate kind %d", c.Kind)
}

// ThumbIDs resolves the set and returns only the IDs.
func (c CandidateSet) ThumbIDs(st CandidateStore) ([]int64, error) {
	thumbs, err := c.Thumbs(st)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(thumbs))
	for i, t := range thumbs {
		ids[i] = t.ID
	}
	return ids, nil
}

func (c CandidateSet) String() string {
	switch c.Kind {
	case CandidatesEmpty:
		return "empty"
	case CandidatesDatabase:
		return fmt.Sprintf("database(image=%d)", c.ImageID)
	case CandidatesExplicit:
		return fmt.Sprintf("explicit(image=%d, ids=%v)", c.ImageID, c.IDs)
	}
	return "unknown"
}
