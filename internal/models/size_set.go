package models

import (
	"fmt"
	"math"
	"regexp"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidSlug reports whether s can name a size set or a size. Size slugs end
// up in thumbnail file names.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// SizeSet is a named collection of crop target sizes.
type SizeSet struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
	Sizes []*Size `json:"sizes"`
}

// Size is one crop target. A zero Width or Height leaves that dimension
// unconstrained.
type Size struct {
	ID          int64   `json:"id"`
	SizeSetID   int64   `json:"size_set_id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	MinWidth    int     `json:"min_width"`
	MinHeight   int     `json:"min_height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Position    int     `json:"position"`
}

// Ratio returns the width/height ratio of the size, derived from its fixed
// dimensions when both are set. Zero means free-form.
func (s *Size) Ratio() float64 {
	if s.Width > 0 && s.Height > 0 {
		return float64(s.Width) / float64(s.Height)
	}
	return s.AspectRatio
}

// UniqueRatios returns the sizes of the set with distinct aspect ratios, in
// position order, keeping the first size seen for each ratio. Free-form sizes
// have no ratio to share and are always kept.
func (ss *SizeSet) UniqueRatios() []*Size {
	if ss == nil {
		return nil
	}
	seen := make(map[string]bool)
	var unique []*Size
	for _, size := range ss.Sizes {
		r := size.Ratio()
		if r > 0 {
			key := fmt.Sprintf("%.4f", math.Round(r*10000)/10000)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		unique = append(unique, size)
	}
	return unique
}

// SizeBySlug returns the size with the given slug, or nil.
func (ss *SizeSet) SizeBySlug(slug string) *Size {
	if ss == nil {
		return nil
	}
	for _, size := range ss.Sizes {
		if size.Slug == slug {
			return size
		}
	}
	return nil
}

// Validate checks the slugs of the set and its sizes, that size slugs are
// unique within the set and that no dimension is negative.
func (ss *SizeSet) Validate() error {
	if !ValidSlug(ss.Slug) {
		return fmt.Errorf("invalid size set slug %q", ss.Slug)
	}
	seen := make(map[string]bool, len(ss.Sizes))
	for _, s := range ss.Sizes {
		if s == nil {
			return fmt.Errorf("size set %q: empty size", ss.Slug)
		}
		if !ValidSlug(s.Slug) {
			return fmt.Errorf("size set %q: invalid size slug %q", ss.Slug, s.Slug)
		}
		if seen[s.Slug] {
			return fmt.Errorf("size set %q: duplicate size slug %q", ss.Slug, s.Slug)
		}
		seen[s.Slug] = true
		if s.Width < 0 || s.Height < 0 || s.MinWidth < 0 || s.MinHeight < 0 || s.AspectRatio < 0 {
			return fmt.Errorf("size set %q: size %q has negative dimensions", ss.Slug, s.Slug)
		}
	}
	return nil
}
