package forms

import (
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/vrsandeep/cropduster/internal/models"
	"github.com/vrsandeep/cropduster/internal/render"
	"github.com/vrsandeep/cropduster/internal/store"
)

const (
	// DefaultPrefix is the form prefix of the image formset.
	DefaultPrefix = "images"

	maxForms       = 1000
	maxTextLength  = 255
	totalFormsKey  = "TOTAL_FORMS"
	initialFormKey = "INITIAL_FORMS"
)

// ErrManagementForm is returned for bound data without a usable management
// form.
var ErrManagementForm = errors.New("ManagementForm data is missing or has been tampered with")

// ImageFormData is the cleaned data of one row.
type ImageFormData struct {
	ImageID         int64
	ThumbIDs        []int64
	Attribution     string
	AttributionLink string
	Caption         string
}

// ImageForm is one row of the formset: one image attached to the parent.
type ImageForm struct {
	Index  int
	Prefix string
	// Instance is the existing image the row edits, nil for a new row.
	Instance   *models.Image
	Thumbs     *ThumbSelectField
	Errors     map[string][]string
	// ErrorCodes holds the code of each message in Errors.
	ErrorCodes map[string][]string
	Cleaned    ImageFormData

	data          url.Values
	initial       *models.Image
	initialThumbs []string
	upload        *models.Image
	cleaned       bool
}

// AddPrefix returns the input name of a field of this row.
func (f *ImageForm) AddPrefix(field string) string {
	return f.Prefix + "-" + field
}

// IsBound reports whether the row was built from submitted data.
func (f *ImageForm) IsBound() bool {
	return f.data != nil
}

// Value returns the current value of a single-valued field: the submitted
// one for bound rows, the initial one otherwise.
func (f *ImageForm) Value(field string) string {
	if f.IsBound() {
		return f.data.Get(f.AddPrefix(field))
	}
	if f.initial == nil {
		return ""
	}
	switch field {
	case "id", "image":
		return strconv.FormatInt(f.initial.ID, 10)
	case "attribution":
		return f.initial.Attribution
	case "attribution_link":
		return f.initial.AttributionLink
	case "caption":
		return f.initial.Caption
	}
	return ""
}

// ThumbValues returns the selected thumb IDs as strings.
func (f *ImageForm) ThumbValues() []string {
	if f.IsBound() {
		return f.data[f.AddPrefix("thumbs")]
	}
	return f.initialThumbs
}

// Image returns the image the row refers to: the edited instance, or the
// freshly uploaded image named by the image field.
func (f *ImageForm) Image() *models.Image {
	if f.Instance != nil {
		return f.Instance
	}
	return f.upload
}

// HasChanged reports whether a new row carries any data. Unchanged extra
// rows are neither validated nor saved.
func (f *ImageForm) HasChanged() bool {
	if f.Instance != nil {
		return true
	}
	if !f.IsBound() {
		return false
	}
	for _, field := range []string{"image", "attribution", "attribution_link", "caption"} {
		if f.Value(field) != "" {
			return true
		}
	}
	return len(f.ThumbValues()) > 0
}

// RenderImageField renders the image field of the row with w.
func (f *ImageForm) RenderImageField(w *ImageFieldWidget, parent models.ParentRef) (template.HTML, error) {
	value := f.Value("image")
	if value == "" && f.Instance != nil {
		value = strconv.FormatInt(f.Instance.ID, 10)
	}
	return w.Render(f.AddPrefix("image"), value, nil, &BoundField{
		Instance: f.Image(),
		Parent:   &parent,
		Errors:   f.Errors["image"],
	})
}

// RenderThumbsField renders the row's thumbnail select box.
func (f *ImageForm) RenderThumbsField() (template.HTML, error) {
	return f.Thumbs.Render(f.AddPrefix("thumbs"), f.ThumbValues(), map[string]string{
		"class": "cropduster-thumbs",
		"id":    "id_" + f.AddPrefix("thumbs"),
	})
}

func (f *ImageForm) addError(field string, verr *ValidationError) {
	if f.Errors == nil {
		f.Errors = make(map[string][]string)
		f.ErrorCodes = make(map[string][]string)
	}
	f.Errors[field] = append(f.Errors[field], verr.Message)
	f.ErrorCodes[field] = append(f.ErrorCodes[field], verr.Code)
}

// IsValid cleans the row once and reports whether it has no errors.
func (f *ImageForm) IsValid() (bool, error) {
	if !f.IsBound() {
		return false, nil
	}
	if !f.cleaned {
		if err := f.clean(); err != nil {
			return false, err
		}
		f.cleaned = true
	}
	return len(f.Errors) == 0, nil
}

func (f *ImageForm) clean() error {
	if !f.HasChanged() {
		return nil
	}

	img := f.Image()
	if img == nil {
		f.addError("image", newValidationError(CodeRequired, "Upload an image before saving this row."))
	} else {
		f.Cleaned.ImageID = img.ID
	}

	result, err := f.Thumbs.Clean(f.ThumbValues())
	if err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		f.addError("thumbs", verr)
	} else {
		f.Cleaned.ThumbIDs = result.IDs
	}

	for _, field := range []string{"attribution", "attribution_link", "caption"} {
		if n := utf8.RuneCountInString(f.Value(field)); n > maxTextLength {
			f.addError(field, newValidationError(CodeMaxLength, "Ensure this value has at most %d characters (it has %d).", maxTextLength, n))
		}
	}
	f.Cleaned.Attribution = f.Value("attribution")
	f.Cleaned.Caption = f.Value("caption")

	link := f.Value("attribution_link")
	if link != "" {
		u, err := url.ParseRequestURI(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			f.addError("attribution_link", newValidationError(CodeInvalid, "Enter a valid URL."))
		}
	}
	f.Cleaned.AttributionLink = link
	return nil
}

// ImageInlineFormSet is the set of image rows attached to one parent object.
type ImageInlineFormSet struct {
	Parent models.ParentRef
	Prefix string
	Extra  int
	Forms  []*ImageForm

	store   Store
	data    url.Values
	initial []*models.Image
}

// NewImageInlineFormSet builds the rows for parent. A nil data builds an
// unbound formset with one row per attached image plus one empty row.
func NewImageInlineFormSet(st Store, parent models.ParentRef, data url.Values) (*ImageInlineFormSet, error) {
	initial, err := st.ListImagesByParent(parent)
	if err != nil {
		return nil, fmt.Errorf("failed to list images of %s %d: %w", parent.ContentType, parent.ObjectID, err)
	}
	fs := &ImageInlineFormSet{
		Parent:  parent,
		Prefix:  DefaultPrefix,
		Extra:   1,
		store:   st,
		data:    data,
		initial: initial,
	}

	total := len(initial) + fs.Extra
	if fs.IsBound() {
		total, err = strconv.Atoi(data.Get(fs.Prefix + "-" + totalFormsKey))
		if err != nil || total < 0 {
			return nil, ErrManagementForm
		}
		if total > maxForms {
			total = maxForms
		}
	}

	fs.Forms = make([]*ImageForm, 0, total)
	for i := 0; i < total; i++ {
		form, err := fs.constructForm(i)
		if err != nil {
			return nil, err
		}
		fs.Forms = append(fs.Forms, form)
	}
	return fs, nil
}

// IsBound reports whether the formset was built from submitted data.
func (fs *ImageInlineFormSet) IsBound() bool {
	return fs.data != nil
}

// constructForm builds row i and fixes its thumbs candidate set. The set
// is scoped to the row's own image so the select never lists thumbs of
// every image. When the submitted thumbs differ from the stored ones, for
// instance because another row failed validation and the page is shown
// again, the submitted thumbs are offered instead.
func (fs *ImageInlineFormSet) constructForm(i int) (*ImageForm, error) {
	form := &ImageForm{
		Index:  i,
		Prefix: fmt.Sprintf("%s-%d", fs.Prefix, i),
		data:   fs.data,
	}
	if i < len(fs.initial) {
		form.initial = fs.initial[i]
	}

	instance, err := fs.resolveImage(form.Value("id"), false)
	if err != nil {
		return nil, err
	}
	form.Instance = instance

	candidates := EmptyCandidates()
	if instance != nil {
		candidates = DatabaseCandidates(instance.ID)
	} else if form.IsBound() {
		if form.upload, err = fs.resolveImage(form.Value("image"), true); err != nil {
			return nil, err
		}
	}

	if form.IsBound() {
		// A row without an image has no thumbs to offer, whatever it submits.
		if img := form.Image(); img != nil {
			if ids, ok := parseAllIDs(form.ThumbValues()); ok && len(ids) > 0 {
				current, err := candidates.ThumbIDs(fs.store)
				if err != nil {
					return nil, err
				}
				if !equalIDs(ids, current) {
					candidates = ExplicitCandidates(img.ID, ids)
				}
			}
		}
	} else if instance != nil {
		ids, err := candidates.ThumbIDs(fs.store)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			form.initialThumbs = append(form.initialThumbs, strconv.FormatInt(id, 10))
		}
	}

	form.Thumbs = NewThumbSelectField(fs.store, candidates)
	return form, nil
}

// resolveImage looks up the image named by value. Malformed IDs, misses and
// images attached to another parent resolve to nil. Unattached images are
// accepted only when allowUnattached is set.
func (fs *ImageInlineFormSet) resolveImage(value string, allowUnattached bool) (*models.Image, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, nil
	}
	img, err := fs.store.GetImageByID(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	switch {
	case img.Parent == fs.Parent:
		return img, nil
	case allowUnattached && img.Parent.IsZero():
		return img, nil
	}
	return nil, nil
}

// ManagementForm renders the hidden inputs that carry the row counts.
func (fs *ImageInlineFormSet) ManagementForm() template.HTML {
	initial := len(fs.initial)
	if initial > len(fs.Forms) {
		initial = len(fs.Forms)
	}
	input := func(key string, n int) string {
		return "<input" + string(render.Attrs(map[string]string{
			"type":  "hidden",
			"name":  fs.Prefix + "-" + key,
			"id":    "id_" + fs.Prefix + "-" + key,
			"value": strconv.Itoa(n),
		})) + ">"
	}
	return template.HTML(input(totalFormsKey, len(fs.Forms)) + input(initialFormKey, initial))
}

// IsValid cleans every row and reports whether all of them are valid.
// Unchanged extra rows count as valid.
func (fs *ImageInlineFormSet) IsValid() (bool, error) {
	if !fs.IsBound() {
		return false, nil
	}
	valid := true
	for _, form := range fs.Forms {
		ok, err := form.IsValid()
		if err != nil {
			return false, err
		}
		valid = valid && ok
	}
	return valid, nil
}

// ThumbFiles moves thumb files between their temporary and final names.
type ThumbFiles interface {
	PromoteThumb(img *models.Image, name string) error
	DemoteThumb(img *models.Image, name string) error
}

// Save writes every changed row: the image is attached to the parent, its
// details are updated and its attached thumbs become exactly the cleaned
// thumb IDs it owns. Files of attached thumbs are promoted from their
// temporary names and files of thumbs that were let go are moved back.
// Call IsValid first.
func (fs *ImageInlineFormSet) Save(files ThumbFiles) ([]*models.Image, error) {
	saved := make([]*models.Image, 0, len(fs.Forms))
	for _, form := range fs.Forms {
		if !form.cleaned || !form.HasChanged() {
			continue
		}
		if len(form.Errors) > 0 {
			return nil, fmt.Errorf("row %d has errors and cannot be saved", form.Index)
		}

		img := *form.Image()
		img.Parent = fs.Parent
		img.Attribution = form.Cleaned.Attribution
		img.AttributionLink = form.Cleaned.AttributionLink
		img.Caption = form.Cleaned.Caption
		if err := fs.store.UpdateImageDetails(&img); err != nil {
			return nil, err
		}

		before, err := fs.store.ListImageThumbs(img.ID)
		if err != nil {
			return nil, err
		}
		attached, err := fs.store.SetImageThumbs(img.ID, form.Cleaned.ThumbIDs)
		if err != nil {
			return nil, err
		}
		kept := make(map[int64]bool, len(attached))
		for _, id := range attached {
			kept[id] = true
		}
		for _, t := range before {
			if !kept[t.ID] {
				if err := files.DemoteThumb(&img, t.Name); err != nil {
					return nil, err
				}
			}
		}
		thumbs, err := fs.store.ListImageThumbs(img.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range thumbs {
			if err := files.PromoteThumb(&img, t.Name); err != nil {
				return nil, err
			}
		}
		saved = append(saved, &img)
	}
	return saved, nil
}

// parseAllIDs parses every value as an integer ID. It fails if any value
// does not parse.
func parseAllIDs(values []string) ([]int64, bool) {
	ids, parsed := parseIDs(values)
	for _, ok := range parsed {
		if !ok {
			return nil, false
		}
	}
	return ids, true
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
