package forms

import (
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/vrsandeep/cropduster/internal/models"
)

// SizeConstraint is the client-side description of one crop target.
type SizeConstraint struct {
	Width       int     `json:"w,omitempty"`
	Height      int     `json:"h,omitempty"`
	MinWidth    int     `json:"min_w,omitempty"`
	MinHeight   int     `json:"min_h,omitempty"`
	AspectRatio float64 `json:"aspect_ratio,omitempty"`
}

// SizeConfig maps size names to their constraints.
type SizeConfig map[string]SizeConstraint

// SizeConfigFromSet converts the sizes of a size set, keyed by slug.
func SizeConfigFromSet(ss *models.SizeSet) SizeConfig {
	if ss == nil {
		return nil
	}
	cfg := make(SizeConfig, len(ss.Sizes))
	for _, size := range ss.Sizes {
		cfg[size.Slug] = SizeConstraint{
			Width:       size.Width,
			Height:      size.Height,
			MinWidth:    size.MinWidth,
			MinHeight:   size.MinHeight,
			AspectRatio: size.AspectRatio,
		}
	}
	return cfg
}

// SizesSource produces the size configuration of an image field. parent is
// the object the edited image is attached to, or nil.
type SizesSource interface {
	Resolve(parent *models.ParentRef) (SizeConfig, error)
}

// StaticSizes is a fixed size configuration.
type StaticSizes SizeConfig

// Resolve returns the configuration regardless of parent.
func (s StaticSizes) Resolve(*models.ParentRef) (SizeConfig, error) {
	return SizeConfig(s), nil
}

// ComputedSizes derives the size configuration from the parent object at
// render time.
type ComputedSizes func(parent *models.ParentRef) (SizeConfig, error)

// Resolve calls the function with parent.
func (f ComputedSizes) Resolve(parent *models.ParentRef) (SizeConfig, error) {
	return f(parent)
}

// encodeSizes resolves src for parent and JSON-encodes the result for the
// client script. A nil source encodes as null.
func encodeSizes(src SizesSource, parent *models.ParentRef) (template.JS, error) {
	var sizes SizeConfig
	if src != nil {
		var err error
		if sizes, err = src.Resolve(parent); err != nil {
			return "", fmt.Errorf("failed to resolve sizes: %w", err)
		}
	}
	data, err := json.Marshal(sizes)
	if err != nil {
		return "", err
	}
	return template.JS(data), nil
}
