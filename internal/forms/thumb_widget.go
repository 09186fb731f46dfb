package forms

import (
	"errors"
	"html/template"
	"log"
	"strconv"
	"strings"

	"github.com/vrsandeep/cropduster/internal/render"
	"github.com/vrsandeep/cropduster/internal/store"
)

// Choice is one selectable option.
type Choice struct {
	Value string
	Label string
}

// SelectedSet holds the option values that render as selected. The same
// set is shared by every option of one render pass.
type SelectedSet map[string]struct{}

// NewSelectedSet returns a set of values.
func NewSelectedSet(values []string) SelectedSet {
	set := make(SelectedSet, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Has reports whether value is selected.
func (s SelectedSet) Has(value string) bool {
	_, ok := s[value]
	return ok
}

// ThumbSelectWidget renders thumbs as options of a select box, annotated
// with their dimensions and whether their file is still temporary.
type ThumbSelectWidget struct {
	AllowMultiple bool
	store         ThumbLookup
}

// NewThumbSelectWidget returns a multiple-select widget.
func NewThumbSelectWidget(st ThumbLookup) *ThumbSelectWidget {
	return &ThumbSelectWidget{AllowMultiple: true, store: st}
}

// RenderOption renders one <option>. Values that are not thumb IDs, or name
// no thumb, render without metadata. Without multiple selection a matched
// value is removed from selected so a repeated value is selected only once.
func (w *ThumbSelectWidget) RenderOption(selected SelectedSet, value, label string) template.HTML {
	attrs := make(map[string]string, 4)
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		thumb, err := w.store.GetThumbByID(id)
		switch {
		case err == nil:
			// A thumb with no images has not been saved yet, so its file
			// still carries the _tmp suffix.
			attrs["data-width"] = strconv.Itoa(thumb.Width)
			attrs["data-height"] = strconv.Itoa(thumb.Height)
			attrs["data-tmp-file"] = strconv.FormatBool(thumb.IsTemporary())
		case !errors.Is(err, store.ErrNotFound):
			log.Printf("Warning: could not load thumb %d for option: %v", id, err)
		}
	}

	if selected.Has(value) {
		attrs["selected"] = "selected"
		if !w.AllowMultiple {
			delete(selected, value)
		}
	}
	attrs["value"] = value

	return template.HTML("<option" + string(render.Attrs(attrs)) + ">" + template.HTMLEscapeString(label) + "</option>")
}

// Render renders the whole <select> with one option per choice.
func (w *ThumbSelectWidget) Render(name string, values []string, attrs map[string]string, choices []Choice) template.HTML {
	final := cloneAttrs(attrs)
	final["name"] = name
	if w.AllowMultiple {
		final["multiple"] = "multiple"
	}

	selected := NewSelectedSet(values)
	var b strings.Builder
	b.WriteString("<select")
	b.WriteString(string(render.Attrs(final)))
	b.WriteString(">\n")
	for _, c := range choices {
		b.WriteString(string(w.RenderOption(selected, c.Value, c.Label)))
		b.WriteByte('\n')
	}
	b.WriteString("</select>")
	return template.HTML(b.String())
}
