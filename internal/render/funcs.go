package render

import (
	"html/template"
	"sort"
	"strings"
)

var funcs = template.FuncMap{
	"attrs": Attrs,
}

// Attrs renders a map of HTML attributes as ` key="value"` pairs in key
// order, escaping every value. An empty map renders nothing.
func Attrs(attrs map[string]string) template.HTMLAttr {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(template.HTMLEscapeString(k))
		b.WriteString(`="`)
		b.WriteString(template.HTMLEscapeString(attrs[k]))
		b.WriteByte('"')
	}
	return template.HTMLAttr(b.String())
}
