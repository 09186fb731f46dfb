package models

import "testing"

func TestImageThumbPath(t *testing.T) {
	img := &Image{Path: "uploads/abc/original.JPG"}

	if got := img.ThumbPath("large", false); got != "uploads/abc/large.jpg" {
		t.Errorf("expected uploads/abc/large.jpg, got %s", got)
	}
	if got := img.ThumbPath("large", true); got != "uploads/abc/large_tmp.jpg" {
		t.Errorf("expected uploads/abc/large_tmp.jpg, got %s", got)
	}

	bare := &Image{Path: "plain"}
	if got := bare.ThumbPath("square", false); got != "square.jpg" {
		t.Errorf("expected square.jpg for an extensionless original, got %s", got)
	}
}

func TestImageContentObject(t *testing.T) {
	var nilImage *Image
	if nilImage.ContentObject() != nil {
		t.Error("nil image should have no content object")
	}
	if (&Image{}).ContentObject() != nil {
		t.Error("unattached image should have no content object")
	}
	img := &Image{Parent: ParentRef{ContentType: "article", ObjectID: 4}}
	parent := img.ContentObject()
	if parent == nil || parent.ContentType != "article" || parent.ObjectID != 4 {
		t.Errorf("unexpected content object %+v", parent)
	}
}

func TestThumbIsTemporary(t *testing.T) {
	thumb := &Thumb{}
	if !thumb.IsTemporary() {
		t.Error("thumb with no image rows should be temporary")
	}
	thumb.ImageCount = 1
	if thumb.IsTemporary() {
		t.Error("attached thumb should not be temporary")
	}
}

func TestSizeSetUniqueRatios(t *testing.T) {
	ss := &SizeSet{Sizes: []*Size{
		{Slug: "large", Width: 1600, Height: 900},
		{Slug: "medium", Width: 800, Height: 450},
		{Slug: "square", AspectRatio: 1},
		{Slug: "square-small", Width: 100, Height: 100},
		{Slug: "free"},
		{Slug: "free-too"},
	}}

	unique := ss.UniqueRatios()
	var slugs []string
	for _, s := range unique {
		slugs = append(slugs, s.Slug)
	}
	want := []string{"large", "square", "free", "free-too"}
	if len(slugs) != len(want) {
		t.Fatalf("expected %v, got %v", want, slugs)
	}
	for i := range want {
		if slugs[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], slugs[i])
		}
	}

	var nilSet *SizeSet
	if nilSet.UniqueRatios() != nil {
		t.Error("nil size set should have no sizes")
	}
	if ss.SizeBySlug("medium") == nil || ss.SizeBySlug("missing") != nil {
		t.Error("SizeBySlug returned the wrong size")
	}
}

func TestSizeSetValidate(t *testing.T) {
	valid := &SizeSet{Slug: "article", Sizes: []*Size{
		{Slug: "large", Width: 1600, Height: 900},
		{Slug: "square_1", AspectRatio: 1, MinWidth: 100},
	}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected a valid size set, got %v", err)
	}

	tests := map[string]*SizeSet{
		"bad set slug":        {Slug: "Bad Slug"},
		"empty set slug":      {Slug: ""},
		"path in size slug":   {Slug: "a", Sizes: []*Size{{Slug: "../x"}}},
		"negative min width":  {Slug: "a", Sizes: []*Size{{Slug: "x", MinWidth: -5}}},
		"negative ratio":      {Slug: "a", Sizes: []*Size{{Slug: "x", AspectRatio: -1}}},
		"duplicate size slug": {Slug: "a", Sizes: []*Size{{Slug: "x"}, {Slug: "x"}}},
		"nil size":            {Slug: "a", Sizes: []*Size{nil}},
	}
	for name, ss := range tests {
		t.Run(name, func(t *testing.T) {
			if err := ss.Validate(); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}
